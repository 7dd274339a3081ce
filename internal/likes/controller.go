// Package likes implements the per-thought like toggle: optimistic counter
// updates, a durable local record for anonymous viewers and a
// server-confirmed set for authenticated ones.
package likes

import (
	"context"
	"sync"

	"github.com/LindaSchonfeldt/happy-thoughts-client/internal/domain"
	"github.com/LindaSchonfeldt/happy-thoughts-client/internal/logger"
)

// API is the slice of the api client the controller needs.
type API interface {
	LikeThought(ctx context.Context, id domain.ThoughtId, action string) (*domain.Thought, error)
}

// SessionReader provides the current viewer identity snapshot.
type SessionReader interface {
	CurrentSession() *domain.Session
}

// ToggleResult is the like state after one phase of a toggle.
type ToggleResult struct {
	IsLiked bool
	Hearts  int
}

type Controller struct {
	api   API
	auth  SessionReader
	liked *LikedIds

	mu          sync.Mutex
	sessionLike map[domain.ThoughtId]bool // authenticated viewer, server-confirmed + session-local
}

func NewController(api API, auth SessionReader, liked *LikedIds) *Controller {
	return &Controller{
		api:         api,
		auth:        auth,
		liked:       liked,
		sessionLike: make(map[domain.ThoughtId]bool),
	}
}

// IsLiked reports whether the current viewer has liked the thought:
// the server-confirmed session set for authenticated viewers, the durable
// local record for anonymous ones.
func (c *Controller) IsLiked(id domain.ThoughtId) bool {
	if c.authenticated() {
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.sessionLike[id]
	}
	return c.liked.Contains(id)
}

// SeedServerLiked replaces the authenticated viewer's liked set with the
// server-provided list (GET /users/liked-thoughts after login).
func (c *Controller) SeedServerLiked(ids []domain.ThoughtId) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessionLike = make(map[domain.ThoughtId]bool, len(ids))
	for _, id := range ids {
		c.sessionLike[id] = true
	}
}

// Toggle flips the like state of a thought. The optimistic state is passed
// to onOptimistic (if non-nil) before the network call; on failure every
// effect is reverted, including the durable local record, and the pre-toggle
// state is returned alongside the error. The counter is clamped at zero so
// no race can render a negative heart count.
func (c *Controller) Toggle(ctx context.Context, id domain.ThoughtId, currentHearts int, onOptimistic func(ToggleResult)) (ToggleResult, error) {
	wasLiked := c.IsLiked(id)
	newLiked := !wasLiked

	optimistic := ToggleResult{IsLiked: newLiked, Hearts: currentHearts}
	if newLiked {
		optimistic.Hearts++
	} else {
		optimistic.Hearts--
	}
	if optimistic.Hearts < 0 {
		optimistic.Hearts = 0
	}

	c.record(id, newLiked)
	if onOptimistic != nil {
		onOptimistic(optimistic)
	}

	action := "unlike"
	if newLiked {
		action = "like"
	}
	thought, err := c.api.LikeThought(ctx, id, action)
	if err != nil {
		logger.Log.Warn("like toggle failed, reverting", "thoughtId", id, "error", err)
		c.record(id, wasLiked)
		return ToggleResult{IsLiked: wasLiked, Hearts: currentHearts}, err
	}

	// Reconcile to the server-authoritative count when one was returned.
	result := optimistic
	if thought != nil {
		result.Hearts = thought.Hearts
		if result.Hearts < 0 {
			result.Hearts = 0
		}
	}
	return result, nil
}

// record updates whichever liked set belongs to the current viewer.
func (c *Controller) record(id domain.ThoughtId, liked bool) {
	if c.authenticated() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if liked {
			c.sessionLike[id] = true
		} else {
			delete(c.sessionLike, id)
		}
		return
	}
	if liked {
		c.liked.Add(id)
	} else {
		c.liked.Remove(id)
	}
}

func (c *Controller) authenticated() bool {
	return c.auth != nil && c.auth.CurrentSession() != nil
}
