package server

import (
	"net/url"
	"strings"
	"time"

	"makerboards/internal/middleware"
	"makerboards/internal/models"

	"github.com/gofiber/fiber/v2"
)

// render executes a page template inside the base layout, adding the signed-in
// user and the CSRF token every page needs.
func (s *Server) render(c *fiber.Ctx, name string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	if user := middleware.CurrentUser(c); user != nil {
		data["user"] = user
	}
	if token, ok := c.Locals(csrfLocal).(string); ok {
		data["csrf"] = token
	} else {
		data["csrf"] = ""
	}
	return c.Render(name, data)
}

// parseID extracts a route parameter by name as a positive uint.
// Anything else is treated as an unknown resource.
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		return 0, models.NewNotFoundError(param, c.Params(param))
	}
	return uint(id), nil
}

// safeNext returns next when it is a local path, otherwise "/". Control characters are
// rejected outright: browsers drop tabs and newlines, turning "/\t/host" into "//host".
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return "/"
	}
	if strings.IndexFunc(next, func(r rune) bool { return r < 0x20 || r == 0x7f }) >= 0 {
		return "/"
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" || u.User != nil {
		return "/"
	}
	return next
}

// startSession signs user in on this response.
func (s *Server) startSession(c *fiber.Ctx, user *models.User) error {
	token, claims, err := s.sessions.Issue(user)
	if err != nil {
		return models.NewInternalError(err)
	}
	middleware.SetSessionCookie(c, token, claims.ExpiresAt.Time, s.config.IsProduction())
	middleware.SetCurrentUser(c, user, claims)
	return nil
}

// endSession revokes the current session token, if any, and clears the cookie.
func (s *Server) endSession(c *fiber.Ctx) {
	if claims := middleware.CurrentSession(c); claims != nil && s.redis != nil {
		ctx := c.UserContext()
		if err := s.blacklist.Revoke(ctx, claims.ID, claims.Remaining(time.Now())); err != nil {
			middleware.Logger.WarnContext(ctx, "failed to revoke session", "error", err)
		}
	}
	middleware.ClearSessionCookie(c)
}
