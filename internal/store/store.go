// Package store is the feed state machine: the current page of thoughts,
// optimistic create/update/delete, like reconciliation, ownership tagging
// and the transient notification queue. All mutations follow the same
// three-phase shape: snapshot, apply optimistically, reconcile or roll back
// when the backend answers.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/LindaSchonfeldt/happy-thoughts-client/internal/apperr"
	"github.com/LindaSchonfeldt/happy-thoughts-client/internal/domain"
	"github.com/LindaSchonfeldt/happy-thoughts-client/internal/likes"
	"github.com/LindaSchonfeldt/happy-thoughts-client/internal/logger"
	"github.com/LindaSchonfeldt/happy-thoughts-client/internal/normalize"
)

type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusError:
		return "error"
	default:
		return "idle"
	}
}

// API is the slice of the api client the store drives.
type API interface {
	GetThoughts(ctx context.Context, page, limit int) (normalize.Result, error)
	PostThought(ctx context.Context, message domain.MsgText) (*domain.Thought, error)
	UpdateThought(ctx context.Context, id domain.ThoughtId, message domain.MsgText) (*domain.Thought, error)
	DeleteThought(ctx context.Context, id domain.ThoughtId) error
}

// AuthStore is the identity surface the store consults for ownership and
// session invalidation.
type AuthStore interface {
	CurrentSession() *domain.Session
	CurrentUserId() domain.UserId
	Logout()
	Subscribe(fn func(*domain.Session))
}

// Liker is the like controller surface.
type Liker interface {
	Toggle(ctx context.Context, id domain.ThoughtId, currentHearts int, onOptimistic func(likes.ToggleResult)) (likes.ToggleResult, error)
	IsLiked(id domain.ThoughtId) bool
}

// Options tunes store behavior; zero values fall back to defaults.
type Options struct {
	PageLimit       int
	NotificationTTL time.Duration
	HighlightTTL    time.Duration
}

type Store struct {
	api   API
	auth  AuthStore
	likes Liker

	pageLimit       int
	notificationTTL time.Duration
	highlightTTL    time.Duration

	mu             sync.Mutex
	items          []domain.Thought
	page           int
	totalPages     int
	status         Status
	lastError      string
	retryable      bool
	serverStarting bool
	newThoughtId   domain.ThoughtId
	notifications  []domain.Notification

	// Fetch fencing: every fetch gets a monotonically increasing id and a
	// result is applied only if nothing newer (a newer fetch or any local
	// mutation) has been applied since. A slow page response can therefore
	// never resurrect a deleted thought.
	fetchSeq    uint64
	lastApplied uint64

	subscribers []func()
}

// New creates the store. auth and liker may be nil for a read-only
// anonymous feed.
func New(api API, auth AuthStore, liker Liker, opts Options) *Store {
	if opts.PageLimit <= 0 {
		opts.PageLimit = 10
	}
	if opts.NotificationTTL <= 0 {
		opts.NotificationTTL = 3 * time.Second
	}
	if opts.HighlightTTL <= 0 {
		opts.HighlightTTL = 3 * time.Second
	}
	s := &Store{
		api:             api,
		auth:            auth,
		likes:           liker,
		pageLimit:       opts.PageLimit,
		notificationTTL: opts.NotificationTTL,
		highlightTTL:    opts.HighlightTTL,
		page:            1,
		totalPages:      1,
		status:          StatusIdle,
	}
	if auth != nil {
		// Identity can change without a re-fetch; retag ownership whenever
		// it does.
		auth.Subscribe(func(*domain.Session) {
			s.retagOwnership()
		})
	}
	return s
}

// Subscribe registers fn to run after every state change (the UI layer's
// re-render hook).
func (s *Store) Subscribe(fn func()) {
	s.mu.Lock()
	s.subscribers = append(s.subscribers, fn)
	s.mu.Unlock()
}

func (s *Store) notify() {
	s.mu.Lock()
	subs := make([]func(), len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.Unlock()
	for _, fn := range subs {
		fn()
	}
}

// Snapshot is an immutable view of the store for rendering.
type Snapshot struct {
	Items          []domain.Thought
	Page           int
	TotalPages     int
	Status         Status
	LastError      string
	Retryable      bool
	ServerStarting bool
	NewThoughtId   domain.ThoughtId
	Notifications  []domain.Notification
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		Page:           s.page,
		TotalPages:     s.totalPages,
		Status:         s.status,
		LastError:      s.lastError,
		Retryable:      s.retryable,
		ServerStarting: s.serverStarting,
		NewThoughtId:   s.newThoughtId,
	}
	snap.Items = make([]domain.Thought, len(s.items))
	copy(snap.Items, s.items)
	snap.Notifications = make([]domain.Notification, len(s.notifications))
	copy(snap.Notifications, s.notifications)
	return snap
}

// CanEdit applies the ownership rule against the live session.
func (s *Store) CanEdit(t *domain.Thought) bool {
	if s.auth == nil {
		return false
	}
	return t.CanEdit(s.auth.CurrentUserId())
}

// ServiceAvailable clears the cold-start state (called by the health
// watcher once the backend answers).
func (s *Store) ServiceAvailable() {
	s.mu.Lock()
	changed := s.serverStarting
	s.serverStarting = false
	s.mu.Unlock()
	if changed {
		s.notify()
	}
}

// ServerStarting reports whether the backend looks like it is cold
// starting.
func (s *Store) ServerStarting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.serverStarting
}

func (s *Store) currentUserId() domain.UserId {
	if s.auth == nil {
		return ""
	}
	return s.auth.CurrentUserId()
}

// retagOwnership recomputes IsOwn for every item after an auth change.
func (s *Store) retagOwnership() {
	uid := s.currentUserId()
	s.mu.Lock()
	for i := range s.items {
		s.items[i].IsOwn = s.items[i].CanEdit(uid)
	}
	s.mu.Unlock()
	s.notify()
}

// bumpFenceLocked invalidates every fetch started before now.
func (s *Store) bumpFenceLocked() {
	s.fetchSeq++
	s.lastApplied = s.fetchSeq
}

func (s *Store) pushNotification(typ domain.NotificationType, message string) {
	n := domain.Notification{Id: uuid.NewString(), Type: typ, Message: message}
	s.mu.Lock()
	s.notifications = append(s.notifications, n)
	s.mu.Unlock()
	s.notify()

	time.AfterFunc(s.notificationTTL, func() {
		s.mu.Lock()
		for i := range s.notifications {
			if s.notifications[i].Id == n.Id {
				s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
				break
			}
		}
		s.mu.Unlock()
		s.notify()
	})
}

// noteError records an operation failure, distinguishing a cold-starting
// backend (503) from a plain error state.
func (s *Store) noteErrorLocked(err error) {
	s.status = StatusError
	s.lastError = apperr.UserMessage(err)
	s.retryable = apperr.Retryable(err)
	if apperr.IsStatus(err, 503) {
		s.serverStarting = true
	}
}

// sortByCreatedAtDesc orders newest first; ties keep their existing
// (document) order, which the "new thought appears on top" UX relies on.
func sortByCreatedAtDesc(items []domain.Thought) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}

func logDiscardedFetch(page int, seq, lastApplied uint64) {
	logger.Log.Debug("discarding stale fetch result",
		"page", page, "seq", seq, "lastApplied", lastApplied)
}
