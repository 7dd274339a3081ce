package happythoughts

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LindaSchonfeldt/happy-thoughts-client/internal/config"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.Default()
	cfg.ApiBaseURL = server.URL
	cfg.StatePath = filepath.Join(t.TempDir(), "state.db")
	cfg.NotificationTTL = 50 * time.Millisecond
	cfg.HighlightTTL = 50 * time.Millisecond

	client, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func signToken(t *testing.T, userId string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": userId,
		"exp":    time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("test_secret"))
	require.NoError(t, err)
	return token
}

func TestClientFetchesFeed(t *testing.T) {
	router := chi.NewRouter()
	router.Get("/thoughts", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": true, "response": {
			"thoughts": [
				{"_id": "a", "message": "first thought here", "hearts": 2, "createdAt": "2025-09-02T10:00:00Z"},
				{"_id": "b", "message": "second thought here", "hearts": 0, "createdAt": "2025-09-01T10:00:00Z"}
			],
			"pagination": {"current": 1, "pages": 1, "total": 2}}}`))
	})

	client := newTestClient(t, router)
	require.NoError(t, client.Thoughts.FetchPage(context.Background(), 1))

	snap := client.Thoughts.Snapshot()
	require.Len(t, snap.Items, 2)
	assert.Equal(t, "a", snap.Items[0].Id, "newest first")
	assert.Equal(t, 1, snap.TotalPages)
}

func TestClientLoginSeedsLikedSet(t *testing.T) {
	token := ""
	router := chi.NewRouter()
	router.Post("/users/login", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": true, "token": "` + token + `", "user": {"_id": "u1", "username": "linda"}}`))
	})
	router.Get("/users/liked-thoughts", func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("Authorization"), "Bearer ")
		w.Write([]byte(`{"success": true, "response": [
			{"_id": "x", "message": "a liked thought here", "createdAt": "2025-09-01T10:00:00Z"}]}`))
	})

	client := newTestClient(t, router)
	token = signToken(t, "u1")

	require.NoError(t, client.Login(context.Background(), "linda", "secret1"))

	assert.Equal(t, "u1", client.Auth.CurrentUserId())
	assert.True(t, client.Likes.IsLiked("x"), "server-confirmed like seeded")
	assert.False(t, client.Likes.IsLiked("y"))

	client.Logout()
	assert.Nil(t, client.Auth.CurrentSession())
}

func TestClientTokenSurvivesRestart(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "state.db")
	token := signToken(t, "u1")

	router := chi.NewRouter()
	router.Post("/users/login", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": true, "token": "` + token + `", "user": {"_id": "u1", "username": "linda"}}`))
	})
	router.Get("/users/liked-thoughts", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": true, "response": []}`))
	})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	cfg := config.Default()
	cfg.ApiBaseURL = server.URL
	cfg.StatePath = statePath

	first, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, first.Login(context.Background(), "linda", "secret1"))
	require.NoError(t, first.Close())

	second, err := New(cfg)
	require.NoError(t, err)
	defer second.Close()

	assert.Equal(t, "u1", second.Auth.CurrentUserId(), "session restored from disk")
}
