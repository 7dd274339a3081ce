package likes

import (
	"encoding/json"
	"sort"
	"sync"

	"github.com/LindaSchonfeldt/happy-thoughts-client/internal/domain"
	"github.com/LindaSchonfeldt/happy-thoughts-client/internal/logger"
)

const likedKey = "likedThoughts"

// Storage is the durable key-value surface for the anonymous liked-ids set.
type Storage interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

// LikedIds is the durable set of thought ids an anonymous viewer has liked,
// the stand-in for the web client's localStorage "likedPosts" array.
type LikedIds struct {
	storage Storage

	mu  sync.Mutex
	ids map[domain.ThoughtId]bool
}

func NewLikedIds(storage Storage) *LikedIds {
	l := &LikedIds{storage: storage, ids: make(map[domain.ThoughtId]bool)}

	raw, ok, err := storage.Get(likedKey)
	if err != nil {
		logger.Log.Error("reading liked ids failed", "error", err)
		return l
	}
	if !ok {
		return l
	}
	var ids []domain.ThoughtId
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		logger.Log.Warn("liked ids record is corrupt, resetting it", "error", err)
		_ = storage.Delete(likedKey)
		return l
	}
	for _, id := range ids {
		l.ids[id] = true
	}
	return l
}

func (l *LikedIds) Add(id domain.ThoughtId) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ids[id] {
		return
	}
	l.ids[id] = true
	l.persistLocked()
}

func (l *LikedIds) Remove(id domain.ThoughtId) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.ids[id] {
		return
	}
	delete(l.ids, id)
	l.persistLocked()
}

func (l *LikedIds) Contains(id domain.ThoughtId) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ids[id]
}

func (l *LikedIds) All() []domain.ThoughtId {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.ThoughtId, 0, len(l.ids))
	for id := range l.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (l *LikedIds) persistLocked() {
	ids := make([]domain.ThoughtId, 0, len(l.ids))
	for id := range l.ids {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	raw, err := json.Marshal(ids)
	if err != nil {
		logger.Log.Error("marshaling liked ids failed", "error", err)
		return
	}
	if err := l.storage.Set(likedKey, string(raw)); err != nil {
		logger.Log.Error("persisting liked ids failed", "error", err)
	}
}
