package middleware

import (
	"context"
	"net/url"
	"strings"
	"time"

	"makerboards/internal/auth"
	"makerboards/internal/models"

	"github.com/gofiber/fiber/v2"
)

const (
	// SessionCookieName is the cookie carrying the signed session token.
	SessionCookieName = "sessionid"

	LocalUserID        = "userID"
	LocalUser          = "user"
	LocalSessionClaims = "sessionClaims"
)

// UserLoader looks up the account a session belongs to.
type UserLoader interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
}

// RevocationChecker reports whether a session token id was revoked at logout.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Session resolves the session cookie into the current user. Requests without a valid
// session continue anonymously; a stale or tampered cookie is cleared.
func Session(sessions *auth.SessionManager, users UserLoader, revocations RevocationChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Cookies(SessionCookieName)
		if raw == "" {
			return c.Next()
		}

		ctx := c.UserContext()
		user, claims, ok := resolveSession(ctx, raw, sessions, users, revocations)
		if !ok {
			ClearSessionCookie(c)
			return c.Next()
		}

		SetCurrentUser(c, user, claims)
		return c.Next()
	}
}

func resolveSession(ctx context.Context, raw string, sessions *auth.SessionManager, users UserLoader, revocations RevocationChecker) (*models.User, *auth.SessionClaims, bool) {
	claims, err := sessions.Parse(raw)
	if err != nil {
		return nil, nil, false
	}

	if revocations != nil {
		revoked, err := revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			// Redis trouble must not log everyone out.
			Logger.WarnContext(ctx, "session revocation check failed", "error", err)
		} else if revoked {
			return nil, nil, false
		}
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, nil, false
	}

	user, err := users.GetByID(ctx, userID)
	if err != nil {
		if !models.IsNotFound(err) {
			Logger.ErrorContext(ctx, "failed to load session user", "user_id", userID, "error", err)
		}
		return nil, nil, false
	}

	if !sessions.Matches(claims, user) {
		return nil, nil, false
	}
	return user, claims, true
}

// SetCurrentUser marks the request as authenticated as user.
func SetCurrentUser(c *fiber.Ctx, user *models.User, claims *auth.SessionClaims) {
	c.Locals(LocalUser, user)
	c.Locals(LocalUserID, user.ID)
	if claims != nil {
		c.Locals(LocalSessionClaims, claims)
	}
	c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, user.ID))
}

// CurrentUser returns the authenticated user, or nil for anonymous requests.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(LocalUser).(*models.User)
	return user
}

// CurrentSession returns the claims of the request's session, if any.
func CurrentSession(c *fiber.Ctx) *auth.SessionClaims {
	claims, _ := c.Locals(LocalSessionClaims).(*auth.SessionClaims)
	return claims
}

// LoginRequired redirects anonymous requests to loginURL with the requested path as next.
func LoginRequired(loginURL string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if CurrentUser(c) != nil {
			return c.Next()
		}
		return c.Redirect(LoginRedirectURL(loginURL, c.OriginalURL()), fiber.StatusFound)
	}
}

// LoginRedirectURL builds "<loginURL>?next=<next>", keeping slashes readable in next.
func LoginRedirectURL(loginURL, next string) string {
	q := strings.ReplaceAll(url.QueryEscape(next), "%2F", "/")
	return loginURL + "?next=" + q
}

// SetSessionCookie stores token in the session cookie until expires.
func SetSessionCookie(c *fiber.Ctx, token string, expires time.Time, secure bool) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
