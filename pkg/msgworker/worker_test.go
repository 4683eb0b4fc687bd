package msgworker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStartedWorker(t *testing.T) *SequentialWorker {
	t.Helper()
	w := NewSequentialWorker()
	w.Start(context.Background())
	t.Cleanup(w.Stop)
	return w
}

func TestSequentialWorker_FIFOOrder(t *testing.T) {
	w := newStartedWorker(t)

	var mu sync.Mutex
	var results []string
	var wg sync.WaitGroup

	for _, key := range []string{"A", "B", "C"} {
		key := key
		wg.Add(1)
		w.Enqueue(Job{Key: key, Handler: func(ctx context.Context) error {
			defer wg.Done()
			time.Sleep(5 * time.Millisecond)
			mu.Lock()
			results = append(results, key)
			mu.Unlock()
			return nil
		}})
	}

	wg.Wait()
	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"A", "B", "C"}, results)
}

func TestSequentialWorker_NeverRunsTwoJobsAtOnce(t *testing.T) {
	w := newStartedWorker(t)

	var running, maxRunning int32
	var wg sync.WaitGroup

	// Producers enqueue concurrently to hit the empty/non-empty boundary.
	for p := 0; p < 8; p++ {
		go func() {
			for i := 0; i < 10; i++ {
				wg.Add(1)
				w.Enqueue(Job{Key: "job", Handler: func(ctx context.Context) error {
					defer wg.Done()
					n := atomic.AddInt32(&running, 1)
					for {
						m := atomic.LoadInt32(&maxRunning)
						if n <= m || atomic.CompareAndSwapInt32(&maxRunning, m, n) {
							break
						}
					}
					time.Sleep(time.Millisecond)
					atomic.AddInt32(&running, -1)
					return nil
				}})
				time.Sleep(time.Duration(i%3) * time.Millisecond)
			}
		}()
	}

	assert.Eventually(t, func() bool {
		return w.Stats().TotalProcessed == 80
	}, 5*time.Second, 10*time.Millisecond)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&maxRunning))
	assert.Equal(t, StateIdle, w.State())
}

func TestSequentialWorker_ContinuesAfterFailure(t *testing.T) {
	w := newStartedWorker(t)

	var ends []error
	var mu sync.Mutex
	w.OnJobEnd = func(job Job, err error) {
		mu.Lock()
		ends = append(ends, err)
		mu.Unlock()
	}

	boom := errors.New("boom")
	done := make(chan struct{})
	w.Enqueue(
		Job{Key: "fails", Handler: func(ctx context.Context) error { return boom }},
		Job{Key: "panics", Handler: func(ctx context.Context) error { panic("kaboom") }},
		Job{Key: "ok", Handler: func(ctx context.Context) error { close(done); return nil }},
	)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("queue stopped draining after a failing job")
	}

	assert.Eventually(t, func() bool { return w.Stats().TotalProcessed == 3 }, time.Second, 5*time.Millisecond)
	stats := w.Stats()
	assert.Equal(t, int64(2), stats.TotalFailed)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, ends, 3)
	assert.ErrorIs(t, ends[0], boom)
	var panicErr *PanicError
	require.ErrorAs(t, ends[1], &panicErr)
	assert.Equal(t, "panics", panicErr.Key)
	assert.NoError(t, ends[2])
}

func TestSequentialWorker_EnqueueAfterIdleIsPickedUp(t *testing.T) {
	w := newStartedWorker(t)

	first := make(chan struct{})
	w.Enqueue(Job{Key: "first", Handler: func(ctx context.Context) error { close(first); return nil }})
	<-first
	assert.Eventually(t, func() bool { return w.State() == StateIdle }, time.Second, time.Millisecond)

	second := make(chan struct{})
	w.Enqueue(Job{Key: "second", Handler: func(ctx context.Context) error { close(second); return nil }})
	select {
	case <-second:
	case <-time.After(time.Second):
		t.Fatal("job enqueued on an idle worker was never run")
	}
}

func TestSequentialWorker_StopDiscardsPending(t *testing.T) {
	w := NewSequentialWorker()
	w.Start(context.Background())

	started := make(chan struct{})
	var cancelled int32
	var ranSecond int32

	w.Enqueue(
		Job{Key: "slow", Handler: func(ctx context.Context) error {
			close(started)
			<-ctx.Done()
			atomic.StoreInt32(&cancelled, 1)
			return ctx.Err()
		}},
		Job{Key: "never", Handler: func(ctx context.Context) error {
			atomic.StoreInt32(&ranSecond, 1)
			return nil
		}},
	)

	<-started
	w.Stop()

	assert.Equal(t, int32(1), atomic.LoadInt32(&cancelled))
	assert.Equal(t, int32(0), atomic.LoadInt32(&ranSecond))
	assert.Equal(t, StateStopped, w.State())
	assert.Equal(t, int64(1), w.Stats().TotalDiscarded)
	assert.Zero(t, w.Stats().QueueDepth)

	assert.Equal(t, 0, w.Enqueue(Job{Key: "late", Handler: func(ctx context.Context) error { return nil }}))
	w.Stop()
}

func TestSequentialWorker_StopWithoutStart(t *testing.T) {
	w := NewSequentialWorker()
	w.Enqueue(Job{Key: "pending", Handler: func(ctx context.Context) error { return nil }})
	w.Stop()

	assert.Equal(t, StateStopped, w.State())
	assert.Equal(t, int64(1), w.Stats().TotalDiscarded)
}
