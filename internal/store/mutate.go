package store

import (
	"context"
	"errors"
	"time"

	"github.com/LindaSchonfeldt/happy-thoughts-client/internal/apperr"
	"github.com/LindaSchonfeldt/happy-thoughts-client/internal/domain"
	"github.com/LindaSchonfeldt/happy-thoughts-client/internal/likes"
	"github.com/LindaSchonfeldt/happy-thoughts-client/internal/logger"
)

// Create posts a new thought. On success the returned thought is prepended
// optimistically (no re-fetch) and highlighted for the configured window.
// Validation failures never touch the network or the items.
func (s *Store) Create(ctx context.Context, message domain.MsgText) (*domain.Thought, error) {
	thought, err := s.api.PostThought(ctx, message)
	if err != nil {
		var ve *apperr.ValidationError
		if errors.As(err, &ve) {
			s.pushNotification(domain.NotificationError, ve.Message)
			return nil, err
		}
		s.mu.Lock()
		s.noteErrorLocked(err)
		s.mu.Unlock()
		s.pushNotification(domain.NotificationError, apperr.UserMessage(err))
		return nil, err
	}

	created := *thought
	created.IsOwn = created.CanEdit(s.currentUserId())

	s.mu.Lock()
	s.bumpFenceLocked()
	s.items = append([]domain.Thought{created}, s.items...)
	s.newThoughtId = created.Id
	s.mu.Unlock()
	s.notify()
	s.pushNotification(domain.NotificationSuccess, "Thought posted!")

	// Transient highlight for the freshly created thought.
	id := created.Id
	time.AfterFunc(s.highlightTTL, func() {
		s.mu.Lock()
		if s.newThoughtId == id {
			s.newThoughtId = ""
		}
		s.mu.Unlock()
		s.notify()
	})
	return &created, nil
}

// Delete removes a thought optimistically and rolls the removal back, at
// the original position, if the backend refuses. A 404 means the thought
// was already gone and counts as success.
func (s *Store) Delete(ctx context.Context, id domain.ThoughtId) error {
	if err := s.requireSession(); err != nil {
		return err
	}

	s.mu.Lock()
	idx := -1
	for i := range s.items {
		if s.items[i].Id == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		s.mu.Unlock()
		logger.Log.Warn("delete requested for unknown thought", "thoughtId", id)
		return nil
	}
	removed := s.items[idx]
	s.items = append(s.items[:idx:idx], s.items[idx+1:]...)
	s.bumpFenceLocked()
	s.mu.Unlock()
	s.notify()

	err := s.api.DeleteThought(ctx, id)
	if err != nil && !apperr.IsStatus(err, 404) {
		// Roll back: reinsert where the item was, keeping sort order intact.
		s.mu.Lock()
		if idx > len(s.items) {
			idx = len(s.items)
		}
		s.items = append(s.items[:idx], append([]domain.Thought{removed}, s.items[idx:]...)...)
		sortByCreatedAtDesc(s.items)
		s.bumpFenceLocked()
		s.mu.Unlock()
		s.notify()

		if apperr.IsStatus(err, 401) {
			s.invalidateSession()
			return err
		}
		if apperr.IsStatus(err, 403) {
			s.pushNotification(domain.NotificationError, "You can only delete your own thoughts")
			return errors.Join(apperr.ErrNotOwner, err)
		}
		s.pushNotification(domain.NotificationError, apperr.UserMessage(err))
		return err
	}

	s.pushNotification(domain.NotificationSuccess, "Thought deleted")
	return nil
}

// Update replaces a thought's message in place, preserving its position.
// A 401 clears the session; any other failure leaves the items untouched.
func (s *Store) Update(ctx context.Context, id domain.ThoughtId, message domain.MsgText) error {
	if err := s.requireSession(); err != nil {
		return err
	}

	updated, err := s.api.UpdateThought(ctx, id, message)
	if err != nil {
		var ve *apperr.ValidationError
		if errors.As(err, &ve) {
			s.pushNotification(domain.NotificationError, ve.Message)
			return err
		}
		if apperr.IsStatus(err, 401) {
			s.invalidateSession()
			return err
		}
		if apperr.IsStatus(err, 403) {
			s.pushNotification(domain.NotificationError, "You can only edit your own thoughts")
			return errors.Join(apperr.ErrNotOwner, err)
		}
		s.pushNotification(domain.NotificationError, apperr.UserMessage(err))
		return err
	}

	s.mu.Lock()
	for i := range s.items {
		if s.items[i].Id == id {
			s.items[i].Message = updated.Message
			s.items[i].Tags = domain.DeriveTags(updated.Message, updated.Tags)
			break
		}
	}
	s.bumpFenceLocked()
	s.mu.Unlock()
	s.notify()
	s.pushNotification(domain.NotificationSuccess, "Thought updated")
	return nil
}

// ToggleLike delegates to the like controller and reconciles the returned
// heart count into the matching item. The optimistic flip is applied
// immediately; on failure the controller reverts and so does the item.
func (s *Store) ToggleLike(ctx context.Context, id domain.ThoughtId) (likes.ToggleResult, error) {
	if s.likes == nil {
		return likes.ToggleResult{}, errors.New("likes are not enabled")
	}

	s.mu.Lock()
	hearts := 0
	for i := range s.items {
		if s.items[i].Id == id {
			hearts = s.items[i].Hearts
			break
		}
	}
	s.mu.Unlock()

	result, err := s.likes.Toggle(ctx, id, hearts, func(optimistic likes.ToggleResult) {
		s.setHearts(id, optimistic.Hearts)
	})
	// Reconcile (on success) or revert (on failure): result carries the
	// authoritative count either way.
	s.setHearts(id, result.Hearts)
	if err != nil {
		s.pushNotification(domain.NotificationError, "Could not update like, please try again")
	}
	return result, err
}

func (s *Store) setHearts(id domain.ThoughtId, hearts int) {
	if hearts < 0 {
		hearts = 0
	}
	s.mu.Lock()
	for i := range s.items {
		if s.items[i].Id == id {
			s.items[i].Hearts = hearts
			break
		}
	}
	s.mu.Unlock()
	s.notify()
}

// requireSession guards authenticated-only mutations. CurrentSession
// performs lazy expiry, so an expired token logs the user out here without
// any network call being made with it.
func (s *Store) requireSession() error {
	if s.auth == nil || s.auth.CurrentSession() == nil {
		s.pushNotification(domain.NotificationError, "Please log in again")
		return apperr.ErrTokenInvalid
	}
	return nil
}

func (s *Store) invalidateSession() {
	if s.auth != nil {
		s.auth.Logout()
	}
	s.pushNotification(domain.NotificationError, "Please log in again")
}
