package server

import (
	"makerboards/internal/forms"
	"makerboards/internal/middleware"
	"makerboards/internal/models"

	"github.com/gofiber/fiber/v2"
)

// PasswordReset shows and handles the reset request form. A well-formed address always
// leads to the done page, whether or not an account uses it.
func (s *Server) PasswordReset(c *fiber.Ctx) error {
	form := forms.NewPasswordResetForm()
	data := fiber.Map{"title": "Reset your password", "form": form}

	if c.Method() != fiber.MethodPost {
		return s.render(c, "accounts/password_reset", data)
	}

	if err := form.Bind(c); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Malformed form submission.")
	}
	if !form.Validate() {
		return s.render(c, "accounts/password_reset", data)
	}

	if _, err := s.accountService.RequestPasswordReset(c.UserContext(), form.Data.Email); err != nil {
		return err
	}
	return c.Redirect("/accounts/reset/done/", fiber.StatusFound)
}

func (s *Server) PasswordResetDone(c *fiber.Ctx) error {
	return s.render(c, "accounts/password_reset_done", fiber.Map{"title": "Reset your password"})
}

// PasswordResetConfirm checks the link on every request. A bad link renders the
// invalid-link page and never touches the account.
func (s *Server) PasswordResetConfirm(c *fiber.Ctx) error {
	uid, token := c.Params("uid"), c.Params("token")
	ctx := c.UserContext()

	data := fiber.Map{"title": "Change password", "validlink": false}

	user, err := s.accountService.ResolveResetLink(ctx, uid, token)
	if err != nil {
		if models.IsUnauthorized(err) {
			return s.render(c, "accounts/password_reset_confirm", data)
		}
		return err
	}

	form := forms.NewSetPasswordForm()
	data["validlink"] = true
	data["resetUser"] = user
	data["form"] = form

	if c.Method() != fiber.MethodPost {
		return s.render(c, "accounts/password_reset_confirm", data)
	}

	if err := form.Bind(c); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Malformed form submission.")
	}
	if !form.Validate(user) {
		return s.render(c, "accounts/password_reset_confirm", data)
	}

	if _, err := s.accountService.ResetPassword(ctx, uid, token, form.Data.NewPassword1); err != nil {
		switch {
		case models.IsUnauthorized(err):
			data["validlink"] = false
			return s.render(c, "accounts/password_reset_confirm", data)
		case form.ApplyError(err):
			return s.render(c, "accounts/password_reset_confirm", data)
		}
		return err
	}
	return c.Redirect("/accounts/reset/complete/", fiber.StatusFound)
}

func (s *Server) PasswordResetComplete(c *fiber.Ctx) error {
	return s.render(c, "accounts/password_reset_complete", fiber.Map{"title": "Password changed!"})
}

// PasswordChange shows and handles the change form for the signed-in account. The
// session is re-issued afterwards so the account stays signed in.
func (s *Server) PasswordChange(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	form := forms.NewPasswordChangeForm()
	data := fiber.Map{"title": "Change password", "form": form}

	if c.Method() != fiber.MethodPost {
		return s.render(c, "accounts/password_change", data)
	}

	if err := form.Bind(c); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Malformed form submission.")
	}
	form.Validate(user)
	if form.Data.OldPassword != "" {
		if err := s.accountService.VerifyOldPassword(user, form.Data.OldPassword); err != nil {
			form.ApplyError(err)
		}
	}
	if !form.Valid() {
		return s.render(c, "accounts/password_change", data)
	}

	ctx := c.UserContext()
	if err := s.accountService.ChangePassword(ctx, user, form.Data.OldPassword, form.Data.NewPassword1); err != nil {
		if form.ApplyError(err) {
			return s.render(c, "accounts/password_change", data)
		}
		return err
	}

	// The old token no longer matches the password; replace it
	s.endSession(c)
	if err := s.startSession(c, user); err != nil {
		return err
	}
	return c.Redirect("/accounts/password_change/done/", fiber.StatusFound)
}

func (s *Server) PasswordChangeDone(c *fiber.Ctx) error {
	return s.render(c, "accounts/password_change_done", fiber.Map{"title": "Password changed"})
}
