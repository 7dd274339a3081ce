// Package auth owns the bearer token and the session derived from it.
// Every other component reads snapshots or subscribes to change events
// instead of re-decoding the token ad hoc.
package auth

import (
	"fmt"
	"sync"

	"github.com/golang-jwt/jwt/v5"

	"github.com/LindaSchonfeldt/happy-thoughts-client/internal/apperr"
	"github.com/LindaSchonfeldt/happy-thoughts-client/internal/domain"
	"github.com/LindaSchonfeldt/happy-thoughts-client/internal/logger"
)

const tokenKey = "token"

// Storage is the minimal durable key-value surface the store needs.
type Storage interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

type Store struct {
	storage Storage

	mu          sync.RWMutex
	token       string
	session     *domain.Session
	subscribers []func(*domain.Session)
}

// New initializes the store from persisted storage. A missing, malformed or
// expired persisted token is treated identically to no token: logged,
// cleared, never surfaced as an error.
func New(storage Storage) *Store {
	s := &Store{storage: storage}

	token, ok, err := storage.Get(tokenKey)
	if err != nil {
		logger.Log.Error("reading persisted token failed", "error", err)
		return s
	}
	if !ok || token == "" {
		return s
	}
	session, err := decode(token)
	if err != nil {
		logger.Log.Warn("persisted token is malformed, clearing it", "error", err)
		_ = storage.Delete(tokenKey)
		return s
	}
	if session.Expired() {
		logger.Log.Info("persisted token expired, clearing it", "expiresAt", session.ExpiresAt)
		_ = storage.Delete(tokenKey)
		return s
	}
	s.token = token
	s.session = session
	return s
}

// Login persists token, derives the session from its claims and publishes
// it. The token signature is not verified client-side: verification is the
// backend's responsibility and the client has no key material.
func (s *Store) Login(token string) (*domain.Session, error) {
	session, err := decode(token)
	if err != nil {
		logger.Log.Error("login token could not be decoded", "error", err)
		return nil, apperr.ErrTokenInvalid
	}
	if session.Expired() {
		return nil, apperr.ErrTokenInvalid
	}
	if err := s.storage.Set(tokenKey, token); err != nil {
		logger.Log.Error("persisting token failed", "error", err)
	}

	s.mu.Lock()
	s.token = token
	s.session = session
	s.mu.Unlock()

	s.publish(session)
	return session, nil
}

// Logout clears the persisted token and publishes a nil session.
func (s *Store) Logout() {
	if err := s.storage.Delete(tokenKey); err != nil {
		logger.Log.Error("clearing persisted token failed", "error", err)
	}

	s.mu.Lock()
	cleared := s.token != "" || s.session != nil
	s.token = ""
	s.session = nil
	s.mu.Unlock()

	if cleared {
		s.publish(nil)
	}
}

// CurrentSession returns a snapshot of the session, or nil when logged out.
// An expired token is detected lazily here and cleared as if the user had
// logged out.
func (s *Store) CurrentSession() *domain.Session {
	s.mu.RLock()
	session := s.session
	s.mu.RUnlock()

	if session == nil {
		return nil
	}
	if session.Expired() {
		logger.Log.Info("session expired, logging out", "userId", session.UserId)
		s.Logout()
		return nil
	}
	snapshot := *session
	return &snapshot
}

// CurrentUserId is a convenience accessor; empty string when logged out.
func (s *Store) CurrentUserId() domain.UserId {
	if session := s.CurrentSession(); session != nil {
		return session.UserId
	}
	return ""
}

// Token returns the bearer token for the Authorization header, or "" when
// there is no live session.
func (s *Store) Token() string {
	if s.CurrentSession() == nil {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Subscribe registers fn to be called with the new session (nil on logout)
// after every change.
func (s *Store) Subscribe(fn func(*domain.Session)) {
	s.mu.Lock()
	s.subscribers = append(s.subscribers, fn)
	s.mu.Unlock()
}

func (s *Store) publish(session *domain.Session) {
	s.mu.RLock()
	subs := make([]func(*domain.Session), len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.RUnlock()

	for _, fn := range subs {
		fn(session)
	}
}

// decode parses the token payload without verifying the signature and maps
// the claim aliases the backend has used for the user id.
func decode(token string) (*domain.Session, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	session := &domain.Session{}
	for _, key := range []string{"userId", "id", "sub"} {
		if v, ok := claims[key].(string); ok && v != "" {
			session.UserId = v
			break
		}
	}
	if session.UserId == "" {
		return nil, fmt.Errorf("token carries no user id claim")
	}
	if v, ok := claims["username"].(string); ok {
		session.Username = v
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		session.ExpiresAt = exp.Time
	}
	return session, nil
}
