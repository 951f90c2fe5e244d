// Package auth issues and verifies the signed tokens behind browser sessions and password resets.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"time"

	"makerboards/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	SessionIssuer   = "makerboards"
	SessionAudience = "makerboards-web"
)

var (
	ErrInvalidSession = errors.New("invalid or expired session")
	ErrMissingSecret  = errors.New("session secret not configured")
)

// SessionClaims are carried by the session cookie. PasswordHash is a fingerprint of the
// account's password hash at login so a password change elsewhere ends the session.
type SessionClaims struct {
	Username     string `json:"username"`
	PasswordHash string `json:"phash"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim.
func (c *SessionClaims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid user ID in token: %w", err)
	}
	return uint(id), nil
}

// Remaining is how long the token stays valid from now.
func (c *SessionClaims) Remaining(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return c.ExpiresAt.Sub(now)
}

// SessionManager signs and parses HS256 session tokens.
type SessionManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionManager(secret string, ttl time.Duration) *SessionManager {
	return &SessionManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue creates a signed session token for user.
func (m *SessionManager) Issue(user *models.User) (string, *SessionClaims, error) {
	if len(m.secret) == 0 {
		return "", nil, ErrMissingSecret
	}

	now := m.now()
	claims := &SessionClaims{
		Username:     user.Username,
		PasswordHash: m.Fingerprint(user.Password),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			Issuer:    SessionIssuer,
			Audience:  jwt.ClaimStrings{SessionAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", nil, err
	}
	return token, claims, nil
}

// Parse validates signature, issuer, audience and expiry and returns the claims.
func (m *SessionManager) Parse(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithIssuer(SessionIssuer),
		jwt.WithAudience(SessionAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	return claims, nil
}

// Matches reports whether claims were issued for user's current password.
func (m *SessionManager) Matches(claims *SessionClaims, user *models.User) bool {
	return hmac.Equal([]byte(claims.PasswordHash), []byte(m.Fingerprint(user.Password)))
}

// Fingerprint is a keyed digest of a password hash, so the hash itself never leaves the server.
func (m *SessionManager) Fingerprint(passwordHash string) string {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte("session-auth-hash:"))
	mac.Write([]byte(passwordHash))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil)[:16])
}
