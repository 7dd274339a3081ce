package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LindaSchonfeldt/happy-thoughts-client/internal/domain"
)

// fakeStorage is an in-memory Storage for tests.
type fakeStorage struct {
	data map[string]string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{data: map[string]string{}}
}

func (f *fakeStorage) Get(key string) (string, bool, error) {
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *fakeStorage) Set(key, value string) error {
	f.data[key] = value
	return nil
}

func (f *fakeStorage) Delete(key string) error {
	delete(f.data, key)
	return nil
}

func makeToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test_secret"))
	require.NoError(t, err)
	return token
}

func TestLoginAndSnapshot(t *testing.T) {
	storage := newFakeStorage()
	store := New(storage)

	token := makeToken(t, jwt.MapClaims{
		"userId":   "u1",
		"username": "linda",
		"exp":      time.Now().Add(time.Hour).Unix(),
	})

	session, err := store.Login(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", session.UserId)
	assert.Equal(t, "linda", session.Username)

	assert.Equal(t, "u1", store.CurrentUserId())
	assert.Equal(t, token, store.Token())
	assert.Equal(t, token, storage.data["token"])

	// Snapshots are copies, not aliases of internal state.
	snapshot := store.CurrentSession()
	snapshot.UserId = "tampered"
	assert.Equal(t, domain.UserId("u1"), store.CurrentUserId())
}

func TestClaimAliases(t *testing.T) {
	tests := []struct {
		name   string
		claims jwt.MapClaims
	}{
		{"userId claim", jwt.MapClaims{"userId": "u9"}},
		{"id claim", jwt.MapClaims{"id": "u9"}},
		{"sub claim", jwt.MapClaims{"sub": "u9"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := New(newFakeStorage())
			session, err := store.Login(makeToken(t, tt.claims))
			require.NoError(t, err)
			assert.Equal(t, domain.UserId("u9"), session.UserId)
		})
	}
}

func TestLoginRejectsBadTokens(t *testing.T) {
	t.Run("malformed", func(t *testing.T) {
		store := New(newFakeStorage())
		_, err := store.Login("not-a-jwt")
		assert.Error(t, err)
		assert.Nil(t, store.CurrentSession())
	})
	t.Run("expired", func(t *testing.T) {
		store := New(newFakeStorage())
		token := makeToken(t, jwt.MapClaims{"userId": "u1", "exp": time.Now().Add(-time.Hour).Unix()})
		_, err := store.Login(token)
		assert.Error(t, err)
	})
	t.Run("no user id claim", func(t *testing.T) {
		store := New(newFakeStorage())
		_, err := store.Login(makeToken(t, jwt.MapClaims{"foo": "bar"}))
		assert.Error(t, err)
	})
}

func TestLogout(t *testing.T) {
	storage := newFakeStorage()
	store := New(storage)

	_, err := store.Login(makeToken(t, jwt.MapClaims{"userId": "u1"}))
	require.NoError(t, err)

	var published []*domain.Session
	store.Subscribe(func(s *domain.Session) {
		published = append(published, s)
	})

	store.Logout()

	assert.Nil(t, store.CurrentSession())
	assert.Empty(t, store.Token())
	_, ok := storage.data["token"]
	assert.False(t, ok)
	require.Len(t, published, 1)
	assert.Nil(t, published[0])
}

func TestInitFromPersistedStorage(t *testing.T) {
	t.Run("valid token restores the session", func(t *testing.T) {
		storage := newFakeStorage()
		storage.data["token"] = makeToken(t, jwt.MapClaims{
			"userId": "u1", "exp": time.Now().Add(time.Hour).Unix(),
		})
		store := New(storage)
		assert.Equal(t, domain.UserId("u1"), store.CurrentUserId())
	})
	t.Run("expired token is cleared silently", func(t *testing.T) {
		storage := newFakeStorage()
		storage.data["token"] = makeToken(t, jwt.MapClaims{
			"userId": "u1", "exp": time.Now().Add(-time.Hour).Unix(),
		})
		store := New(storage)
		assert.Nil(t, store.CurrentSession())
		_, ok := storage.data["token"]
		assert.False(t, ok)
	})
	t.Run("garbage token is cleared silently", func(t *testing.T) {
		storage := newFakeStorage()
		storage.data["token"] = "garbage"
		store := New(storage)
		assert.Nil(t, store.CurrentSession())
		_, ok := storage.data["token"]
		assert.False(t, ok)
	})
}

func TestLazyExpiry(t *testing.T) {
	storage := newFakeStorage()
	store := New(storage)

	// A token that expires almost immediately (exp has one-second
	// resolution).
	token := makeToken(t, jwt.MapClaims{
		"userId": "u1", "exp": time.Now().Add(time.Second).Unix(),
	})
	_, err := store.Login(token)
	require.NoError(t, err)

	time.Sleep(2100 * time.Millisecond)

	assert.Nil(t, store.CurrentSession())
	assert.Empty(t, store.Token())
	_, ok := storage.data["token"]
	assert.False(t, ok, "expired token cleared lazily")
}
