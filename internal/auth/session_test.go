package auth

import (
	"testing"
	"time"

	"makerboards/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-at-least-32-chars"

func testUser() *models.User {
	return &models.User{ID: 7, Username: "john", Email: "john@doe.com", Password: "$2a$10$hash-one"}
}

func TestSessionManager_IssueAndParse(t *testing.T) {
	m := NewSessionManager(testSecret, time.Hour)
	user := testUser()

	token, issued, err := m.Issue(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.NotEmpty(t, issued.ID)

	claims, err := m.Parse(token)
	require.NoError(t, err)

	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, uint(7), id)
	assert.Equal(t, "john", claims.Username)
	assert.Equal(t, issued.ID, claims.ID)
	assert.True(t, m.Matches(claims, user))
	assert.InDelta(t, time.Hour.Seconds(), claims.Remaining(time.Now()).Seconds(), 5)
}

func TestSessionManager_PasswordChangeInvalidates(t *testing.T) {
	m := NewSessionManager(testSecret, time.Hour)
	user := testUser()

	token, _, err := m.Issue(user)
	require.NoError(t, err)
	claims, err := m.Parse(token)
	require.NoError(t, err)

	user.Password = "$2a$10$hash-two"
	assert.False(t, m.Matches(claims, user))
}

func TestSessionManager_RejectsBadTokens(t *testing.T) {
	m := NewSessionManager(testSecret, time.Hour)
	token, _, err := m.Issue(testUser())
	require.NoError(t, err)

	t.Run("Wrong secret", func(t *testing.T) {
		other := NewSessionManager("another-secret-that-is-long-enough!!", time.Hour)
		_, err := other.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("Expired", func(t *testing.T) {
		late := NewSessionManager(testSecret, time.Hour)
		late.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := late.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("Wrong audience", func(t *testing.T) {
		claims := SessionClaims{RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "7",
			Issuer:    SessionIssuer,
			Audience:  jwt.ClaimStrings{"someone-else"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}}
		forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)
		_, err = m.Parse(forged)
		assert.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := m.Parse("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidSession)
	})
}

func TestSessionManager_MissingSecret(t *testing.T) {
	_, _, err := NewSessionManager("", time.Hour).Issue(testUser())
	assert.ErrorIs(t, err, ErrMissingSecret)
}
