package health

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeProber struct {
	failures int32 // probes to fail before answering healthy
	calls    atomic.Int32
}

func (f *fakeProber) Health(ctx context.Context) error {
	n := f.calls.Add(1)
	if n <= f.failures {
		return errors.New("connection refused")
	}
	return nil
}

func TestWatchImmediateSuccess(t *testing.T) {
	var up atomic.Bool
	prober := &fakeProber{}
	w := New(prober, time.Hour, func() { up.Store(true) })

	done := make(chan struct{})
	go func() {
		w.Watch(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watch did not return after a healthy probe")
	}
	assert.True(t, up.Load())
	assert.Equal(t, int32(1), prober.calls.Load(), "no ticks needed")
}

func TestWatchRecoversAfterFailures(t *testing.T) {
	var up atomic.Bool
	prober := &fakeProber{failures: 2}
	w := New(prober, 10*time.Millisecond, func() { up.Store(true) })

	done := make(chan struct{})
	go func() {
		w.Watch(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watch did not recover")
	}
	assert.True(t, up.Load())
	assert.Equal(t, int32(3), prober.calls.Load())
}

func TestWatchStopsOnContextCancel(t *testing.T) {
	var up atomic.Bool
	prober := &fakeProber{failures: 1 << 30} // never healthy
	w := New(prober, 5*time.Millisecond, func() { up.Store(true) })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Watch(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watch did not stop on cancel")
	}
	assert.False(t, up.Load())
}
