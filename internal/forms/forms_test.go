package forms

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"makerboards/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type binder interface {
	Bind(c *fiber.Ctx) error
}

// bindForm runs f.Bind against a form-encoded POST carrying data.
func bindForm(t *testing.T, f binder, data url.Values) {
	t.Helper()
	app := fiber.New()
	app.Post("/", func(c *fiber.Ctx) error { return f.Bind(c) })

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(data.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestSignupForm_HasFields(t *testing.T) {
	f := NewSignupForm()
	assert.Equal(t, []string{"username", "email", "password1", "password2"}, f.FieldNames())
	assert.False(t, f.IsBound())
}

func TestSignupForm_Valid(t *testing.T) {
	f := NewSignupForm()
	bindForm(t, f, url.Values{
		"username":  {"  john "},
		"email":     {"john@doe.com"},
		"password1": {"abcdef123456"},
		"password2": {"abcdef123456"},
	})

	assert.True(t, f.Validate())
	assert.Equal(t, "john", f.Data.Username)
	assert.Equal(t, "john", f.Value("username"))
	assert.Empty(t, f.Value("password1"))
}

func TestSignupForm_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		data  url.Values
		field string
		msg   string
	}{
		{"Empty", url.Values{}, "username", RequiredMessage},
		{"Password mismatch", url.Values{
			"username": {"john"}, "email": {"john@doe.com"},
			"password1": {"abcdef123456"}, "password2": {"abcdef654321"},
		}, "password2", PasswordMismatchMessage},
		{"Bad email", url.Values{
			"username": {"john"}, "email": {"john"},
			"password1": {"abcdef123456"}, "password2": {"abcdef123456"},
		}, "email", "Enter a valid email address."},
		{"Bad username", url.Values{
			"username": {"john doe"}, "email": {"john@doe.com"},
			"password1": {"abcdef123456"}, "password2": {"abcdef123456"},
		}, "username", "Enter a valid username."},
		{"Weak password", url.Values{
			"username": {"john"}, "email": {"john@doe.com"},
			"password1": {"12345678"}, "password2": {"12345678"},
		}, "password2", "This password is too common."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewSignupForm()
			bindForm(t, f, tt.data)
			assert.False(t, f.Validate())
			require.NotEmpty(t, f.Errors(tt.field))
			assert.Contains(t, strings.Join(f.Errors(tt.field), " "), tt.msg)
		})
	}
}

func TestNewTopicForm(t *testing.T) {
	f := NewNewTopicForm()
	bindForm(t, f, url.Values{"subject": {"Test Title"}, "message": {"Test Message"}})
	assert.True(t, f.Validate())

	f = NewNewTopicForm()
	bindForm(t, f, url.Values{"subject": {""}, "message": {""}})
	assert.False(t, f.Validate())
	assert.Equal(t, []string{RequiredMessage}, f.Errors("subject"))
	assert.Equal(t, []string{RequiredMessage}, f.Errors("message"))

	f = NewNewTopicForm()
	bindForm(t, f, url.Values{"subject": {strings.Repeat("s", 256)}, "message": {strings.Repeat("m", 4001)}})
	assert.False(t, f.Validate())
	assert.Equal(t, []string{"Ensure this value has at most 255 characters (it has 256)."}, f.Errors("subject"))
	assert.Equal(t, []string{"Ensure this value has at most 4000 characters (it has 4001)."}, f.Errors("message"))
}

func TestPasswordResetForm(t *testing.T) {
	f := NewPasswordResetForm()
	bindForm(t, f, url.Values{"email": {"john@doe.com"}})
	assert.True(t, f.Validate())

	f = NewPasswordResetForm()
	bindForm(t, f, url.Values{"email": {"not-an-email"}})
	assert.False(t, f.Validate())
	assert.NotEmpty(t, f.Errors("email"))
}

func TestSetPasswordForm(t *testing.T) {
	user := &models.User{Username: "john", Email: "john@doe.com"}

	f := NewSetPasswordForm()
	bindForm(t, f, url.Values{"new_password1": {"abcdef123456"}, "new_password2": {"abcdef123456"}})
	assert.True(t, f.Validate(user))

	f = NewSetPasswordForm()
	bindForm(t, f, url.Values{"new_password1": {"abcdef123456"}, "new_password2": {"abcdef12345"}})
	assert.False(t, f.Validate(user))
	assert.Equal(t, []string{PasswordMismatchMessage}, f.Errors("new_password2"))
}

func TestPasswordChangeForm(t *testing.T) {
	f := NewPasswordChangeForm()
	assert.Equal(t, []string{"old_password", "new_password1", "new_password2"}, f.FieldNames())

	bindForm(t, f, url.Values{"new_password1": {"abcdef123456"}, "new_password2": {"abcdef123456"}})
	assert.False(t, f.Validate(&models.User{Username: "john"}))
	assert.Equal(t, []string{RequiredMessage}, f.Errors("old_password"))
}

func TestForm_ApplyError(t *testing.T) {
	f := NewSignupForm()
	assert.True(t, f.ApplyError(models.NewFieldError("username", "A user with that username already exists.")))
	assert.True(t, f.ApplyError(models.NewValidationError("Something is off.")))
	assert.False(t, f.ApplyError(models.NewNotFoundError("Board", 1)))

	assert.Equal(t, []string{"A user with that username already exists."}, f.Errors("username"))
	assert.Equal(t, []string{"Something is off."}, f.NonFieldErrors())
}
