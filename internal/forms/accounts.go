package forms

import (
	"errors"

	"makerboards/internal/models"
	"makerboards/internal/validation"

	"github.com/gofiber/fiber/v2"
)

const (
	PasswordMismatchMessage = "The two password fields didn’t match."
	InvalidLoginMessage     = "Please enter a correct username and password. Note that both fields may be case-sensitive."
	IncorrectOldPassword    = "Your old password was entered incorrectly. Please enter it again."
)

var passwordHelp = "Your password can’t be too similar to your other personal information. " +
	"Your password must contain at least 8 characters. " +
	"Your password can’t be a commonly used password. " +
	"Your password can’t be entirely numeric."

// ApplyError records a validation AppError on the form. It reports whether err was one.
func (f *Form) ApplyError(err error) bool {
	var appErr *models.AppError
	if !errors.As(err, &appErr) || appErr.Code != models.CodeValidation {
		return false
	}
	f.AddError(appErr.Field, appErr.Message)
	return true
}

// checkPasswordPair validates a new password and its confirmation, reporting on the confirmation field.
func (f *Form) checkPasswordPair(field1, pw1, field2, pw2 string, attrs ...string) {
	if len(f.Errors(field1)) > 0 || len(f.Errors(field2)) > 0 {
		return
	}
	if pw1 != pw2 {
		f.AddError(field2, PasswordMismatchMessage)
		return
	}
	var errs validation.Errors
	if err := validation.ValidatePassword(pw2, attrs...); errors.As(err, &errs) {
		for _, msg := range errs {
			f.AddError(field2, msg)
		}
	}
}

type SignupData struct {
	Username  string `form:"username" validate:"required,max=150"`
	Email     string `form:"email" validate:"required,max=254"`
	Password1 string `form:"password1" validate:"required"`
	Password2 string `form:"password2" validate:"required"`
}

// SignupForm creates an account.
type SignupForm struct {
	*Form
	Data SignupData
}

func NewSignupForm() *SignupForm {
	return &SignupForm{Form: New(
		Field{Name: "username", Label: "Username", Widget: TextInput, MaxLength: 150, Required: true,
			HelpText: "Required. 150 characters or fewer. Letters, digits and @/./+/-/_ only."},
		Field{Name: "email", Label: "Email", Widget: EmailInput, MaxLength: 254, Required: true},
		Field{Name: "password1", Label: "Password", Widget: PasswordInput, Required: true, HelpText: passwordHelp},
		Field{Name: "password2", Label: "Password confirmation", Widget: PasswordInput, Required: true,
			HelpText: "Enter the same password as before, for verification."},
	)}
}

func (f *SignupForm) Bind(c *fiber.Ctx) error { return f.parse(c, &f.Data) }

// Validate checks every field; username uniqueness is left to the account service.
func (f *SignupForm) Validate() bool {
	f.check(&f.Data)
	if len(f.Errors("username")) == 0 {
		if err := validation.ValidateUsername(f.Data.Username); err != nil {
			f.AddError("username", err.Error())
		}
	}
	if len(f.Errors("email")) == 0 {
		if err := validation.ValidateEmail(f.Data.Email); err != nil {
			f.AddError("email", err.Error())
		}
	}
	f.checkPasswordPair("password1", f.Data.Password1, "password2", f.Data.Password2,
		"username="+f.Data.Username, "email="+f.Data.Email)
	return f.Valid()
}

type LoginData struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
	Next     string `form:"next"`
}

// LoginForm authenticates an existing account.
type LoginForm struct {
	*Form
	Data LoginData
}

func NewLoginForm() *LoginForm {
	return &LoginForm{Form: New(
		Field{Name: "username", Label: "Username", Widget: TextInput, MaxLength: 150, Required: true},
		Field{Name: "password", Label: "Password", Widget: PasswordInput, Required: true},
	)}
}

func (f *LoginForm) Bind(c *fiber.Ctx) error { return f.parse(c, &f.Data) }

func (f *LoginForm) Validate() bool {
	f.check(&f.Data)
	return f.Valid()
}

type PasswordResetData struct {
	Email string `form:"email" validate:"required,max=254"`
}

// PasswordResetForm requests a reset link by email.
type PasswordResetForm struct {
	*Form
	Data PasswordResetData
}

func NewPasswordResetForm() *PasswordResetForm {
	return &PasswordResetForm{Form: New(
		Field{Name: "email", Label: "Email", Widget: EmailInput, MaxLength: 254, Required: true},
	)}
}

func (f *PasswordResetForm) Bind(c *fiber.Ctx) error { return f.parse(c, &f.Data) }

func (f *PasswordResetForm) Validate() bool {
	f.check(&f.Data)
	if len(f.Errors("email")) == 0 {
		if err := validation.ValidateEmail(f.Data.Email); err != nil {
			f.AddError("email", err.Error())
		}
	}
	return f.Valid()
}

type SetPasswordData struct {
	NewPassword1 string `form:"new_password1" validate:"required"`
	NewPassword2 string `form:"new_password2" validate:"required"`
}

var setPasswordFields = []Field{
	{Name: "new_password1", Label: "New password", Widget: PasswordInput, Required: true, HelpText: passwordHelp},
	{Name: "new_password2", Label: "New password confirmation", Widget: PasswordInput, Required: true},
}

// SetPasswordForm chooses a new password after following a reset link.
type SetPasswordForm struct {
	*Form
	Data SetPasswordData
}

func NewSetPasswordForm() *SetPasswordForm {
	return &SetPasswordForm{Form: New(setPasswordFields...)}
}

func (f *SetPasswordForm) Bind(c *fiber.Ctx) error { return f.parse(c, &f.Data) }

// Validate checks the new password pair against user's attributes.
func (f *SetPasswordForm) Validate(user *models.User) bool {
	f.check(&f.Data)
	f.checkPasswordPair("new_password1", f.Data.NewPassword1, "new_password2", f.Data.NewPassword2, userAttrs(user)...)
	return f.Valid()
}

type PasswordChangeData struct {
	OldPassword  string `form:"old_password" validate:"required"`
	NewPassword1 string `form:"new_password1" validate:"required"`
	NewPassword2 string `form:"new_password2" validate:"required"`
}

// PasswordChangeForm replaces the password of a signed-in account.
// The old password is verified by the account service.
type PasswordChangeForm struct {
	*Form
	Data PasswordChangeData
}

func NewPasswordChangeForm() *PasswordChangeForm {
	fields := append([]Field{{Name: "old_password", Label: "Old password", Widget: PasswordInput, Required: true}}, setPasswordFields...)
	return &PasswordChangeForm{Form: New(fields...)}
}

func (f *PasswordChangeForm) Bind(c *fiber.Ctx) error { return f.parse(c, &f.Data) }

func (f *PasswordChangeForm) Validate(user *models.User) bool {
	f.check(&f.Data)
	f.checkPasswordPair("new_password1", f.Data.NewPassword1, "new_password2", f.Data.NewPassword2, userAttrs(user)...)
	return f.Valid()
}

func userAttrs(user *models.User) []string {
	if user == nil {
		return nil
	}
	return []string{"username=" + user.Username, "email=" + user.Email}
}
