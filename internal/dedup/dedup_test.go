package dedup

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConcurrentCallsShareOneExecution(t *testing.T) {
	d := New()
	var calls atomic.Int32
	release := make(chan struct{})

	fn := func() ([]byte, error) {
		calls.Add(1)
		<-release
		return []byte("result"), nil
	}

	var wg sync.WaitGroup
	results := make([][]byte, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			body, err := d.Do(Key("like", "t1"), fn)
			require.NoError(t, err)
			results[i] = body
		}(i)
	}

	// Give every goroutine time to attach to the in-flight call.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load(), "exactly one network call per key")
	for _, body := range results {
		assert.Equal(t, []byte("result"), body)
	}
}

func TestKeyReleasedAfterSettle(t *testing.T) {
	d := New()
	var calls atomic.Int32

	fn := func() ([]byte, error) {
		calls.Add(1)
		return nil, errors.New("boom")
	}

	_, err := d.Do(Key("post", "thought"), fn)
	assert.Error(t, err)
	_, err = d.Do(Key("post", "thought"), fn)
	assert.Error(t, err)

	assert.Equal(t, int32(2), calls.Load(), "a settled key starts fresh")
}

func TestDistinctKeysDoNotCollide(t *testing.T) {
	d := New()
	var calls atomic.Int32

	fn := func() ([]byte, error) {
		calls.Add(1)
		return nil, nil
	}

	_, _ = d.Do(Key("like", "t1"), fn)
	_, _ = d.Do(Key("like", "t2"), fn)

	assert.Equal(t, int32(2), calls.Load())
}

func TestKey(t *testing.T) {
	assert.Equal(t, "like:abc123", Key("like", "abc123"))
}
