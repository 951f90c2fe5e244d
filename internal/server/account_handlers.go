package server

import (
	"makerboards/internal/forms"
	"makerboards/internal/middleware"
	"makerboards/internal/models"
	"makerboards/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Signup shows and handles the account creation form. A new account is signed in
// straight away.
func (s *Server) Signup(c *fiber.Ctx) error {
	form := forms.NewSignupForm()
	data := fiber.Map{"title": "Sign up", "form": form}

	if c.Method() != fiber.MethodPost {
		return s.render(c, "accounts/signup", data)
	}

	if err := form.Bind(c); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Malformed form submission.")
	}
	if !form.Validate() {
		return s.render(c, "accounts/signup", data)
	}

	user, err := s.accountService.Signup(c.UserContext(), service.SignupInput{
		Username: form.Data.Username,
		Email:    form.Data.Email,
		Password: form.Data.Password1,
	})
	if err != nil {
		if form.ApplyError(err) {
			return s.render(c, "accounts/signup", data)
		}
		return err
	}

	if err := s.startSession(c, user); err != nil {
		return err
	}
	return c.Redirect("/", fiber.StatusFound)
}

// Login shows and handles the sign-in form, then follows a local next URL.
func (s *Server) Login(c *fiber.Ctx) error {
	form := forms.NewLoginForm()
	data := fiber.Map{"title": "Log in", "form": form, "next": c.Query("next")}

	if c.Method() != fiber.MethodPost {
		return s.render(c, "accounts/login", data)
	}

	if err := form.Bind(c); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Malformed form submission.")
	}
	if form.Data.Next != "" {
		data["next"] = form.Data.Next
	}
	if !form.Validate() {
		return s.render(c, "accounts/login", data)
	}

	user, err := s.accountService.Authenticate(c.UserContext(), form.Data.Username, form.Data.Password)
	if err != nil {
		if models.IsUnauthorized(err) {
			form.AddError("", forms.InvalidLoginMessage)
			return s.render(c, "accounts/login", data)
		}
		return err
	}

	if err := s.startSession(c, user); err != nil {
		return err
	}

	next, _ := data["next"].(string)
	return c.Redirect(safeNext(next), fiber.StatusFound)
}

// Logout ends the current session, if any.
func (s *Server) Logout(c *fiber.Ctx) error {
	if user := middleware.CurrentUser(c); user != nil {
		middleware.Logger.InfoContext(c.UserContext(), "user logged out", "user_id", user.ID)
	}
	s.endSession(c)
	return c.Redirect("/", fiber.StatusFound)
}
