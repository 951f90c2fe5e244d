// Package service holds the account and board use cases behind the HTTP handlers.
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"makerboards/internal/auth"
	"makerboards/internal/mail"
	"makerboards/internal/middleware"
	"makerboards/internal/models"
	"makerboards/internal/observability"
	"makerboards/internal/repository"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/crypto/bcrypt"
)

const (
	ResetEmailSubject = "[Maker Boards] Please reset your password"

	invalidResetLink = "invalid password reset link"
)

var resetEmailTemplate = template.Must(template.New("password_reset_email").Parse(`Hi {{.Username}},

Someone asked for a password reset for the email address {{.Email}}.
Follow the link below to choose a new password:

{{.ResetURL}}

In case you forgot your Maker Boards username: {{.Username}}

If clicking the link above doesn't work, please copy and paste the URL
in a new browser window instead.

If you did not request a reset you can ignore this email.

Thanks,
The Maker Boards Team
`))

// AccountService implements signup, login and both password flows.
type AccountService struct {
	users      repository.UserRepository
	resets     *auth.ResetTokenGenerator
	mailer     mail.Sender
	siteURL    string
	bcryptCost int
	now        func() time.Time
}

func NewAccountService(users repository.UserRepository, resets *auth.ResetTokenGenerator, mailer mail.Sender, siteURL string) *AccountService {
	return &AccountService{
		users:      users,
		resets:     resets,
		mailer:     mailer,
		siteURL:    strings.TrimRight(siteURL, "/"),
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
	}
}

// WithBcryptCost overrides the hashing cost; tests use bcrypt.MinCost.
func (s *AccountService) WithBcryptCost(cost int) *AccountService {
	s.bcryptCost = cost
	return s
}

type SignupInput struct {
	Username string
	Email    string
	Password string
}

// Signup creates an account. A taken username is reported as a field error on "username".
func (s *AccountService) Signup(ctx context.Context, in SignupInput) (user *models.User, err error) {
	ctx, end := observability.StartSpan(ctx, "AccountService.Signup")
	defer func() { end(err) }()

	existing, err := s.users.GetByUsername(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewFieldError("username", repository.DuplicateUsernameMessage)
	}

	hash, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}

	user = &models.User{Username: in.Username, Email: in.Email, Password: hash}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	observability.SignupsTotal.Inc()
	middleware.Logger.InfoContext(ctx, "account created", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Authenticate checks credentials and records the login time.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (user *models.User, err error) {
	ctx, end := observability.StartSpan(ctx, "AccountService.Authenticate")
	defer func() { end(err) }()

	user, err = s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		observability.LoginsTotal.WithLabelValues("failure").Inc()
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}

	now := s.now()
	if err := s.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		return nil, err
	}
	user.LastLogin = &now

	observability.LoginsTotal.WithLabelValues("success").Inc()
	return user, nil
}

// VerifyOldPassword returns an old_password field error unless password is user's current one.
func (s *AccountService) VerifyOldPassword(user *models.User, password string) error {
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return models.NewFieldError("old_password", "Your old password was entered incorrectly. Please enter it again.")
	}
	return nil
}

// ChangePassword replaces user's password after verifying oldPassword.
func (s *AccountService) ChangePassword(ctx context.Context, user *models.User, oldPassword, newPassword string) (err error) {
	ctx, end := observability.StartSpan(ctx, "AccountService.ChangePassword", attribute.Int("user.id", int(user.ID)))
	defer func() { end(err) }()

	if err := s.VerifyOldPassword(user, oldPassword); err != nil {
		return err
	}
	if err := s.setPassword(ctx, user, newPassword); err != nil {
		return err
	}
	observability.PasswordChangesTotal.WithLabelValues("change").Inc()
	return nil
}

// RequestPasswordReset mails a reset link to every account registered with email and
// returns how many were sent. Unknown addresses are not an error.
func (s *AccountService) RequestPasswordReset(ctx context.Context, email string) (sent int, err error) {
	ctx, end := observability.StartSpan(ctx, "AccountService.RequestPasswordReset")
	defer func() { end(err) }()

	users, err := s.users.ListByEmail(ctx, email)
	if err != nil {
		return 0, err
	}

	for i := range users {
		user := &users[i]
		msg, err := s.resetMessage(user)
		if err != nil {
			return sent, models.NewInternalError(err)
		}
		if err := s.mailer.Send(ctx, msg); err != nil {
			observability.PasswordResetEmailsTotal.WithLabelValues("failed").Inc()
			// Delivery problems must not reveal whether the address exists.
			middleware.Logger.ErrorContext(ctx, "failed to send password reset email", "user_id", user.ID, "error", err)
			continue
		}
		observability.PasswordResetEmailsTotal.WithLabelValues("sent").Inc()
		sent++
	}
	return sent, nil
}

// ResetLink builds the absolute confirmation URL for user.
func (s *AccountService) ResetLink(user *models.User) (string, error) {
	token, err := s.resets.MakeToken(user)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/accounts/reset/%s/%s/", s.siteURL, auth.EncodeUID(user.ID), token), nil
}

func (s *AccountService) resetMessage(user *models.User) (mail.Message, error) {
	link, err := s.ResetLink(user)
	if err != nil {
		return mail.Message{}, err
	}

	var body bytes.Buffer
	if err := resetEmailTemplate.Execute(&body, map[string]string{
		"Username": user.Username,
		"Email":    user.Email,
		"ResetURL": link,
	}); err != nil {
		return mail.Message{}, err
	}

	return mail.Message{
		To:      []string{user.Email},
		Subject: ResetEmailSubject,
		Body:    body.String(),
	}, nil
}

// ResolveResetLink returns the account a reset link belongs to. Any problem with the
// link is reported as an UNAUTHORIZED error.
func (s *AccountService) ResolveResetLink(ctx context.Context, uid, token string) (*models.User, error) {
	id, err := auth.DecodeUID(uid)
	if err != nil {
		return nil, models.NewUnauthorizedError(invalidResetLink)
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, models.NewUnauthorizedError(invalidResetLink)
		}
		return nil, err
	}

	if !s.resets.CheckToken(user, token) {
		return nil, models.NewUnauthorizedError(invalidResetLink)
	}
	return user, nil
}

// ResetPassword sets a new password through a reset link, re-checking the link first.
func (s *AccountService) ResetPassword(ctx context.Context, uid, token, newPassword string) (user *models.User, err error) {
	ctx, end := observability.StartSpan(ctx, "AccountService.ResetPassword")
	defer func() { end(err) }()

	user, err = s.ResolveResetLink(ctx, uid, token)
	if err != nil {
		return nil, err
	}
	if err := s.setPassword(ctx, user, newPassword); err != nil {
		return nil, err
	}
	observability.PasswordChangesTotal.WithLabelValues("reset").Inc()
	return user, nil
}

func (s *AccountService) setPassword(ctx context.Context, user *models.User, password string) error {
	hash, err := s.hash(password)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}
	user.Password = hash
	middleware.Logger.InfoContext(ctx, "password updated", "user_id", user.ID)
	return nil
}

func (s *AccountService) hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", models.NewFieldError("", "Password is too long.")
		}
		return "", models.NewInternalError(err)
	}
	return string(hash), nil
}
