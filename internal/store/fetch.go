package store

import (
	"context"

	"github.com/LindaSchonfeldt/happy-thoughts-client/internal/domain"
)

// FetchPage loads page n of the feed, replacing the current items. Requests
// past the known boundary are clamped rather than rejected; a stale
// response (one overtaken by a newer fetch or any local mutation) is
// discarded silently.
func (s *Store) FetchPage(ctx context.Context, n int) error {
	s.mu.Lock()
	if n < 1 {
		n = 1
	}
	if n > s.totalPages {
		n = s.totalPages
	}
	s.fetchSeq++
	seq := s.fetchSeq
	s.status = StatusLoading
	s.lastError = ""
	s.mu.Unlock()
	s.notify()

	res, err := s.api.GetThoughts(ctx, n, s.pageLimit)

	// Read the viewer id before taking the lock: the auth store's lazy
	// expiry can fire here and publish a session change that re-enters the
	// store through retagOwnership.
	uid := s.currentUserId()

	s.mu.Lock()
	if seq <= s.lastApplied {
		s.mu.Unlock()
		logDiscardedFetch(n, seq, s.lastApplied)
		return nil
	}

	if err != nil {
		s.lastApplied = seq
		s.noteErrorLocked(err)
		s.mu.Unlock()
		s.notify()
		return err
	}
	if !res.Success {
		s.lastApplied = seq
		s.status = StatusError
		s.lastError = res.Message
		s.retryable = true
		s.mu.Unlock()
		s.notify()
		return nil
	}

	s.lastApplied = seq
	s.applyPageLocked(n, res.Data, res.TotalPages, uid)
	s.mu.Unlock()
	s.notify()
	return nil
}

// LoadMore appends the next page to the current items (infinite-scroll
// mode) instead of replacing them.
func (s *Store) LoadMore(ctx context.Context) error {
	s.mu.Lock()
	if s.page >= s.totalPages || s.status == StatusLoading {
		s.mu.Unlock()
		return nil
	}
	next := s.page + 1
	s.fetchSeq++
	seq := s.fetchSeq
	s.status = StatusLoading
	s.mu.Unlock()
	s.notify()

	res, err := s.api.GetThoughts(ctx, next, s.pageLimit)

	uid := s.currentUserId() // before the lock, same reason as FetchPage

	s.mu.Lock()
	if seq <= s.lastApplied {
		s.mu.Unlock()
		logDiscardedFetch(next, seq, s.lastApplied)
		return nil
	}
	s.lastApplied = seq

	if err != nil {
		s.noteErrorLocked(err)
		s.mu.Unlock()
		s.notify()
		return err
	}
	if !res.Success {
		s.status = StatusError
		s.lastError = res.Message
		s.retryable = true
		s.mu.Unlock()
		s.notify()
		return nil
	}

	merged := append(s.items, dedupeById(s.items, res.Data)...)
	s.applyPageLocked(next, merged, res.TotalPages, uid)
	s.mu.Unlock()
	s.notify()
	return nil
}

// Refresh re-fetches the current page (the manual "try again" affordance).
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	page := s.page
	s.mu.Unlock()
	return s.FetchPage(ctx, page)
}

// applyPageLocked installs fetched items: sorted newest first, ownership
// retagged against uid. The caller supplies the viewer id because reading
// it from the auth store can re-enter the store and must not happen under
// s.mu.
func (s *Store) applyPageLocked(page int, items []domain.Thought, totalPages int, uid domain.UserId) {
	if totalPages < 1 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}
	sortByCreatedAtDesc(items)
	for i := range items {
		items[i].IsOwn = items[i].CanEdit(uid)
	}
	s.items = items
	s.page = page
	s.totalPages = totalPages
	s.status = StatusIdle
	s.lastError = ""
	s.retryable = false
	s.serverStarting = false
}

// dedupeById returns the members of incoming not already present in
// existing.
func dedupeById(existing, incoming []domain.Thought) []domain.Thought {
	seen := make(map[domain.ThoughtId]bool, len(existing))
	for i := range existing {
		seen[existing[i].Id] = true
	}
	out := make([]domain.Thought, 0, len(incoming))
	for i := range incoming {
		if !seen[incoming[i].Id] {
			out = append(out, incoming[i])
		}
	}
	return out
}
