package auth

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"makerboards/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/hkdf"
)

const (
	resetPurpose = "password_reset"
	resetSalt    = "makerboards.auth.password-reset"
)

var ErrInvalidUID = errors.New("invalid uid")

type resetClaims struct {
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// ResetTokenGenerator makes single-use password reset tokens. The signing key is derived
// from the server secret and the account's password hash, last login and email, so any of
// those changing invalidates every outstanding token.
type ResetTokenGenerator struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewResetTokenGenerator(secret string, ttl time.Duration) *ResetTokenGenerator {
	return &ResetTokenGenerator{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// MakeToken returns a token for user valid for the generator's ttl.
func (g *ResetTokenGenerator) MakeToken(user *models.User) (string, error) {
	key, err := g.key(user)
	if err != nil {
		return "", err
	}

	now := g.now()
	claims := resetClaims{
		Purpose: resetPurpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(g.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
}

// CheckToken reports whether token was made for user's current state and has not expired.
func (g *ResetTokenGenerator) CheckToken(user *models.User, token string) bool {
	if user == nil || token == "" {
		return false
	}
	key, err := g.key(user)
	if err != nil {
		return false
	}

	claims := &resetClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return key, nil
	},
		jwt.WithExpirationRequired(),
		jwt.WithSubject(strconv.FormatUint(uint64(user.ID), 10)),
		jwt.WithTimeFunc(g.now),
	)
	if err != nil || !parsed.Valid {
		return false
	}
	return claims.Purpose == resetPurpose
}

func (g *ResetTokenGenerator) key(user *models.User) ([]byte, error) {
	lastLogin := ""
	if user.LastLogin != nil {
		lastLogin = strconv.FormatInt(user.LastLogin.UTC().Unix(), 10)
	}
	info := fmt.Sprintf("%d|%s|%s|%s", user.ID, user.Password, lastLogin, user.Email)

	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, g.secret, []byte(resetSalt), []byte(info)), key); err != nil {
		return nil, fmt.Errorf("derive reset key: %w", err)
	}
	return key, nil
}

// EncodeUID renders an account id for use in a reset URL.
func EncodeUID(id uint) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.FormatUint(uint64(id), 10)))
}

// DecodeUID reverses EncodeUID.
func DecodeUID(uid string) (uint, error) {
	raw, err := base64.RawURLEncoding.DecodeString(uid)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidUID, err)
	}
	id, err := strconv.ParseUint(string(raw), 10, 32)
	if err != nil || id == 0 {
		return 0, ErrInvalidUID
	}
	return uint(id), nil
}
