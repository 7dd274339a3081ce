// Package dedup collapses concurrent identical requests into a single
// in-flight call. Rapid repeated user input (double-clicking like, double
// submitting a form) produces one network request; every caller shares its
// result.
package dedup

import (
	"golang.org/x/sync/singleflight"

	"github.com/LindaSchonfeldt/happy-thoughts-client/internal/logger"
)

type Deduplicator struct {
	group singleflight.Group
}

func New() *Deduplicator {
	return &Deduplicator{}
}

// Do executes fn once per key. While the call is in flight, further calls
// with the same key attach to it instead of invoking fn again. The key is
// released exactly once, when the call settles, so a later call always
// starts fresh.
func (d *Deduplicator) Do(key string, fn func() ([]byte, error)) ([]byte, error) {
	v, err, shared := d.group.Do(key, func() (interface{}, error) {
		return fn()
	})
	if shared {
		logger.Log.Debug("duplicate request collapsed", "key", key)
	}
	if err != nil {
		return nil, err
	}
	body, _ := v.([]byte)
	return body, nil
}

// Key builds a structural dedup key from an operation name and a stable id.
// Keys are never derived from free-text content: identical message text
// from two users must not collide.
func Key(op, id string) string {
	return op + ":" + id
}
