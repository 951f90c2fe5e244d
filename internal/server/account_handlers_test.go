package server

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"makerboards/internal/cache"
	"makerboards/internal/middleware"
	"makerboards/internal/models"
	"makerboards/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignup_Get(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, body := env.get(t, "/accounts/signup/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "csrfmiddlewaretoken")

	assert.Equal(t, 5, strings.Count(body, "<input"))
	assert.Equal(t, 1, strings.Count(body, `type="text"`))
	assert.Equal(t, 1, strings.Count(body, `type="email"`))
	assert.Equal(t, 2, strings.Count(body, `type="password"`))
}

func validSignup() url.Values {
	return url.Values{
		"username":  {"john"},
		"email":     {"john@example.com"},
		"password1": {"abcdef123456"},
		"password2": {"abcdef123456"},
	}
}

func TestSignup_Valid(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, _ := env.post(t, "/accounts/signup/", validSignup())
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
	assert.Equal(t, int64(1), countRows(t, env.db, &models.User{}))

	session := findCookie(resp, middleware.SessionCookieName)
	require.NotNil(t, session, "signup signs the new account in")
	assert.True(t, session.HttpOnly)

	_, body := env.get(t, "/", session)
	assert.Contains(t, body, "<strong>john</strong>")
}

func TestSignup_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(v url.Values)
		message string
	}{
		{"Empty body", func(v url.Values) {
			for k := range v {
				delete(v, k)
			}
		}, "This field is required."},
		{"Password mismatch", func(v url.Values) { v.Set("password2", "abcdef123457") }, "The two password fields didn’t match."},
		{"Bad email", func(v url.Values) { v.Set("email", "not-an-email") }, "Enter a valid email address."},
		{"Bad username", func(v url.Values) { v.Set("username", "john doe") }, "Enter a valid username."},
		{"Numeric password", func(v url.Values) {
			v.Set("password1", "83749201934")
			v.Set("password2", "83749201934")
		}, "This password is entirely numeric."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, nil)
			form := validSignup()
			tt.mutate(form)

			resp, body := env.post(t, "/accounts/signup/", form)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Contains(t, body, tt.message)
			assert.Zero(t, countRows(t, env.db, &models.User{}))
			assert.Nil(t, findCookie(resp, middleware.SessionCookieName))
		})
	}
}

func TestSignup_DuplicateUsername(t *testing.T) {
	env := newTestEnv(t, nil)
	testutil.CreateUser(t, env.db, "john", "other@example.com", "old-password-123")

	resp, body := env.post(t, "/accounts/signup/", validSignup())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "A user with that username already exists.")
	assert.Equal(t, int64(1), countRows(t, env.db, &models.User{}))
}

func TestSignup_ReRendersEnteredValues(t *testing.T) {
	env := newTestEnv(t, nil)
	form := validSignup()
	form.Set("password2", "something-else-1")

	_, body := env.post(t, "/accounts/signup/", form)
	assert.Contains(t, body, `value="john"`)
	assert.Contains(t, body, `value="john@example.com"`)
	assert.NotContains(t, body, "abcdef123456", "passwords are never echoed back")
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t, nil)
	testutil.CreateUser(t, env.db, "john", "john@example.com", "old-password-123")

	t.Run("Get carries next", func(t *testing.T) {
		resp, body := env.get(t, "/accounts/login/?next=/accounts/password_change/")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, body, `name="next" value="/accounts/password_change/"`)
		assert.Contains(t, body, "csrfmiddlewaretoken")
	})

	t.Run("Valid credentials", func(t *testing.T) {
		resp, _ := env.post(t, "/accounts/login/", url.Values{"username": {"john"}, "password": {"old-password-123"}})
		require.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "/", resp.Header.Get("Location"))
		assert.NotNil(t, findCookie(resp, middleware.SessionCookieName))

		var user models.User
		require.NoError(t, env.db.Where("username = ?", "john").First(&user).Error)
		assert.NotNil(t, user.LastLogin)
	})

	t.Run("Follows local next", func(t *testing.T) {
		resp, _ := env.post(t, "/accounts/login/", url.Values{
			"username": {"john"}, "password": {"old-password-123"}, "next": {"/boards/1/"},
		})
		require.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "/boards/1/", resp.Header.Get("Location"))
	})

	t.Run("Ignores external next", func(t *testing.T) {
		resp, _ := env.post(t, "/accounts/login/", url.Values{
			"username": {"john"}, "password": {"old-password-123"}, "next": {"//evil.example.com/"},
		})
		require.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "/", resp.Header.Get("Location"))
	})

	t.Run("Ignores next with control characters", func(t *testing.T) {
		for _, next := range []string{"/\t/evil.example.com", "/\n/evil.example.com", "/\r\nSet-Cookie: x=1"} {
			resp, _ := env.post(t, "/accounts/login/", url.Values{
				"username": {"john"}, "password": {"old-password-123"}, "next": {next},
			})
			require.Equal(t, http.StatusFound, resp.StatusCode)
			assert.Equal(t, "/", resp.Header.Get("Location"))
		}
	})

	t.Run("Wrong password", func(t *testing.T) {
		resp, body := env.post(t, "/accounts/login/", url.Values{"username": {"john"}, "password": {"nope"}})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, body, "Please enter a correct username and password.")
		assert.Nil(t, findCookie(resp, middleware.SessionCookieName))
	})

	t.Run("Unknown user", func(t *testing.T) {
		resp, body := env.post(t, "/accounts/login/", url.Values{"username": {"nobody"}, "password": {"whatever"}})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, body, "Please enter a correct username and password.")
	})
}

func TestLogout_ClearsCookie(t *testing.T) {
	env := newTestEnv(t, nil)
	user := testutil.CreateUser(t, env.db, "john", "john@example.com", "old-password-123")

	resp, _ := env.get(t, "/accounts/logout/", env.signIn(t, user))
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	cleared := findCookie(resp, middleware.SessionCookieName)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
}

func TestLogout_RevokesSessionInRedis(t *testing.T) {
	mr, rdb := newTestRedis(t)
	env := newTestEnv(t, rdb)
	user := testutil.CreateUser(t, env.db, "john", "john@example.com", "old-password-123")

	token, claims, err := env.srv.sessions.Issue(user)
	require.NoError(t, err)
	session := &http.Cookie{Name: middleware.SessionCookieName, Value: token}

	_, body := env.get(t, "/", session)
	require.Contains(t, body, "<strong>john</strong>")

	resp, _ := env.post(t, "/accounts/logout/", url.Values{}, session)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.True(t, mr.Exists(cache.BlacklistKey(claims.ID)))

	// A copy of the old cookie no longer authenticates
	_, body = env.get(t, "/", session)
	assert.NotContains(t, body, "<strong>john</strong>")
	resp, _ = env.get(t, "/accounts/password_change/", session)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestSession_TamperedCookieIsAnonymous(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, body := env.get(t, "/", &http.Cookie{Name: middleware.SessionCookieName, Value: "not-a-token"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `href="/accounts/signup/"`)

	cleared := findCookie(resp, middleware.SessionCookieName)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
}
