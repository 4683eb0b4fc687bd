package msgworker

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

type State string

const (
	StateIdle     State = "idle"
	StateDraining State = "draining"
	StateStopped  State = "stopped"
)

// Job is one unit of work. Key is what gets logged for it (a link, for the relay queue).
type Job struct {
	ID      string
	Key     string
	Handler func(ctx context.Context) error
}

// PanicError is what a job that panicked is reported as.
type PanicError struct {
	Key   string
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic while processing %s: %v", e.Key, e.Value)
}

type WorkerStats struct {
	State          State     `json:"state"`
	QueueDepth     int       `json:"queue_depth"`
	IsProcessing   bool      `json:"is_processing"`
	CurrentKey     string    `json:"current_key,omitempty"`
	TotalEnqueued  int64     `json:"total_enqueued"`
	TotalProcessed int64     `json:"total_processed"`
	TotalFailed    int64     `json:"total_failed"`
	TotalDiscarded int64     `json:"total_discarded"`
	StartedAt      time.Time `json:"started_at"`
}

// SequentialWorker runs jobs one at a time in the order they were enqueued.
// A single consumer goroutine owns the drain; producers only append and signal.
type SequentialWorker struct {
	mu      sync.Mutex
	pending []Job
	state   State
	current string
	started bool

	wake     chan struct{}
	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once

	isProcessing   int32
	totalEnqueued  int64
	totalProcessed int64
	totalFailed    int64
	totalDiscarded int64
	startedAt      time.Time

	// Hooks para monitoreo externo
	OnJobStart func(job Job)
	OnJobEnd   func(job Job, err error)
}

func NewSequentialWorker() *SequentialWorker {
	return &SequentialWorker{
		state: StateIdle,
		wake:  make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
}

// Start launches the consumer goroutine. Calling it twice is a no-op.
func (w *SequentialWorker) Start(ctx context.Context) {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return
	}
	w.started = true
	w.startedAt = time.Now()
	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.mu.Unlock()

	go w.run(runCtx)
	logrus.Info("[QUEUE] sequential worker started")
}

// Enqueue appends jobs at the tail and wakes the consumer. It returns how
// many jobs were accepted; nothing is accepted after Stop.
func (w *SequentialWorker) Enqueue(jobs ...Job) int {
	if len(jobs) == 0 {
		return 0
	}

	w.mu.Lock()
	if w.state == StateStopped {
		w.mu.Unlock()
		atomic.AddInt64(&w.totalDiscarded, int64(len(jobs)))
		logrus.Warnf("[QUEUE] worker stopped, discarding %d job(s)", len(jobs))
		return 0
	}
	w.pending = append(w.pending, jobs...)
	w.mu.Unlock()

	atomic.AddInt64(&w.totalEnqueued, int64(len(jobs)))

	// The wake slot holds at most one signal; a full slot already
	// guarantees the consumer will look at the queue again.
	select {
	case w.wake <- struct{}{}:
	default:
	}
	return len(jobs)
}

// Stop cancels the in-flight job's context, waits for it to return and
// discards whatever is still pending.
func (w *SequentialWorker) Stop() {
	w.stopOnce.Do(func() {
		w.mu.Lock()
		started := w.started
		cancel := w.cancel
		w.mu.Unlock()

		if started {
			cancel()
			<-w.done
		}

		w.mu.Lock()
		w.state = StateStopped
		dropped := w.pending
		w.pending = nil
		w.mu.Unlock()

		for _, job := range dropped {
			logrus.WithField("key", job.Key).Warn("[QUEUE] discarding pending job on shutdown")
		}
		atomic.AddInt64(&w.totalDiscarded, int64(len(dropped)))
		logrus.Infof("[QUEUE] sequential worker stopped, %d pending job(s) discarded", len(dropped))
	})
}

func (w *SequentialWorker) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *SequentialWorker) Stats() WorkerStats {
	w.mu.Lock()
	depth := len(w.pending)
	state := w.state
	current := w.current
	startedAt := w.startedAt
	w.mu.Unlock()

	return WorkerStats{
		State:          state,
		QueueDepth:     depth,
		IsProcessing:   atomic.LoadInt32(&w.isProcessing) == 1,
		CurrentKey:     current,
		TotalEnqueued:  atomic.LoadInt64(&w.totalEnqueued),
		TotalProcessed: atomic.LoadInt64(&w.totalProcessed),
		TotalFailed:    atomic.LoadInt64(&w.totalFailed),
		TotalDiscarded: atomic.LoadInt64(&w.totalDiscarded),
		StartedAt:      startedAt,
	}
}

func (w *SequentialWorker) run(ctx context.Context) {
	defer close(w.done)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.wake:
			w.drain(ctx)
		}
	}
}

// drain processes jobs until the queue is observed empty under the lock.
func (w *SequentialWorker) drain(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			w.setIdle()
			return
		}

		w.mu.Lock()
		if len(w.pending) == 0 {
			w.state = StateIdle
			w.current = ""
			w.mu.Unlock()
			return
		}
		job := w.pending[0]
		w.pending[0] = Job{}
		w.pending = w.pending[1:]
		w.state = StateDraining
		w.current = job.Key
		w.mu.Unlock()

		w.process(ctx, job)
	}
}

func (w *SequentialWorker) setIdle() {
	w.mu.Lock()
	w.state = StateIdle
	w.current = ""
	w.mu.Unlock()
}

func (w *SequentialWorker) process(ctx context.Context, job Job) {
	var err error

	if w.OnJobStart != nil {
		w.OnJobStart(job)
	}
	atomic.StoreInt32(&w.isProcessing, 1)
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Key: job.Key, Value: r}
		}
		atomic.StoreInt32(&w.isProcessing, 0)
		atomic.AddInt64(&w.totalProcessed, 1)

		if err != nil {
			atomic.AddInt64(&w.totalFailed, 1)
			logrus.WithError(err).WithField("key", job.Key).Error("[QUEUE] job failed")
		}
		if w.OnJobEnd != nil {
			w.OnJobEnd(job, err)
		}
	}()

	err = job.Handler(ctx)
}
