package server

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"makerboards/internal/models"
	"makerboards/internal/service"
	"makerboards/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHome(t *testing.T) {
	env := newTestEnv(t, nil)
	board := testutil.CreateBoard(t, env.db, "Django", "Django board.")

	resp, body := env.get(t, "/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Django board.")
	assert.Contains(t, body, `href="/boards/1/"`)
	assert.Equal(t, uint(1), board.ID)
	assert.Contains(t, body, `href="/accounts/login/"`, "anonymous visitors get a login link")
}

func TestHome_ShowsSignedInUser(t *testing.T) {
	env := newTestEnv(t, nil)
	user := testutil.CreateUser(t, env.db, "jane", "jane@example.com", "old-password-123")

	resp, body := env.get(t, "/", env.signIn(t, user))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "<strong>jane</strong>")
	assert.Contains(t, body, `href="/accounts/logout/"`)
}

func TestBoardTopics(t *testing.T) {
	env := newTestEnv(t, nil)
	testutil.CreateBoard(t, env.db, "Django", "Django board.")

	t.Run("Existing board", func(t *testing.T) {
		resp, body := env.get(t, "/boards/1/")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, body, `href="/"`, "breadcrumb links back home")
		assert.Contains(t, body, `href="/boards/1/new/"`)
	})

	t.Run("Unknown board", func(t *testing.T) {
		resp, _ := env.get(t, "/boards/99/")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("Non-numeric id", func(t *testing.T) {
		resp, _ := env.get(t, "/boards/abc/")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestBoardTopics_ListsTopicsWithStarter(t *testing.T) {
	env := newTestEnv(t, nil)
	board := testutil.CreateBoard(t, env.db, "Django", "Django board.")
	user := testutil.CreateUser(t, env.db, "john", "john@example.com", "old-password-123")

	_, err := env.srv.boardService.StartTopic(t.Context(), service.StartTopicInput{
		BoardID: board.ID, Subject: "Hello, world", Message: "First!", Author: user,
	})
	require.NoError(t, err)

	resp, body := env.get(t, "/boards/1/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Hello, world")
	assert.Contains(t, body, "john")
}

func TestNewTopic_Get(t *testing.T) {
	env := newTestEnv(t, nil)
	testutil.CreateBoard(t, env.db, "Django", "Django board.")

	resp, body := env.get(t, "/boards/1/new/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "csrfmiddlewaretoken")
	assert.Contains(t, body, `href="/boards/1/"`)
	assert.Contains(t, body, `name="subject"`)
	assert.Contains(t, body, "<textarea")
}

func TestNewTopic_UnknownBoard(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, _ := env.get(t, "/boards/99/new/")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Board lookup wins over validation
	resp, _ = env.post(t, "/boards/99/new/", url.Values{})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestNewTopic_ValidPost(t *testing.T) {
	env := newTestEnv(t, nil)
	testutil.CreateBoard(t, env.db, "Django", "Django board.")
	user := testutil.CreateUser(t, env.db, "john", "john@example.com", "old-password-123")

	resp, _ := env.post(t, "/boards/1/new/", url.Values{
		"subject": {"Test Title"},
		"message": {"Test Message"},
	})
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/boards/1/", resp.Header.Get("Location"))

	var topics []models.Topic
	require.NoError(t, env.db.Find(&topics).Error)
	require.Len(t, topics, 1)
	assert.Equal(t, "Test Title", topics[0].Subject)
	assert.Equal(t, uint(1), topics[0].BoardID)
	assert.Equal(t, user.ID, topics[0].StarterID)

	var posts []models.Post
	require.NoError(t, env.db.Find(&posts).Error)
	require.Len(t, posts, 1)
	assert.Equal(t, "Test Message", posts[0].Message)
	assert.Equal(t, topics[0].ID, posts[0].TopicID)
	assert.Equal(t, user.ID, posts[0].CreatedByID)
}

func TestNewTopic_UsesSignedInAuthor(t *testing.T) {
	env := newTestEnv(t, nil)
	testutil.CreateBoard(t, env.db, "Django", "Django board.")
	testutil.CreateUser(t, env.db, "first", "first@example.com", "old-password-123")
	jane := testutil.CreateUser(t, env.db, "jane", "jane@example.com", "old-password-123")

	resp, _ := env.post(t, "/boards/1/new/", url.Values{
		"subject": {"Mine"},
		"message": {"Posted while signed in"},
	}, env.signIn(t, jane))
	require.Equal(t, http.StatusFound, resp.StatusCode)

	var topic models.Topic
	require.NoError(t, env.db.First(&topic).Error)
	assert.Equal(t, jane.ID, topic.StarterID)
}

func TestNewTopic_InvalidPost(t *testing.T) {
	tests := []struct {
		name string
		form url.Values
	}{
		{"Empty body", url.Values{}},
		{"Empty fields", url.Values{"subject": {""}, "message": {""}}},
		{"Missing message", url.Values{"subject": {"Only a subject"}}},
		{"Message too long", url.Values{"subject": {"Long"}, "message": {strings.Repeat("x", 4001)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, nil)
			testutil.CreateBoard(t, env.db, "Django", "Django board.")
			testutil.CreateUser(t, env.db, "john", "john@example.com", "old-password-123")

			resp, body := env.post(t, "/boards/1/new/", tt.form)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Contains(t, body, "invalid-feedback")

			assert.Zero(t, countRows(t, env.db, &models.Topic{}))
			assert.Zero(t, countRows(t, env.db, &models.Post{}))
		})
	}
}

func TestNewTopic_NoAccountAtAll(t *testing.T) {
	env := newTestEnv(t, nil)
	testutil.CreateBoard(t, env.db, "Django", "Django board.")

	resp, body := env.post(t, "/boards/1/new/", url.Values{
		"subject": {"Test Title"},
		"message": {"Test Message"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "no account exists yet")
	assert.Zero(t, countRows(t, env.db, &models.Topic{}))
}
