package botmonitor

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
)

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Event is the outcome of one relayed link.
type Event struct {
	Timestamp  time.Time `json:"timestamp"`
	JobID      string    `json:"job_id"`
	Link       string    `json:"link"`
	Kind       string    `json:"kind,omitempty"`
	Status     string    `json:"status"`          // ok | error
	Error      string    `json:"error,omitempty"` // optional
	ErrCode    string    `json:"err_code,omitempty"`
	Size       int64     `json:"size,omitempty"`
	DurationMs int64     `json:"duration_ms"`
}

type Stats struct {
	TotalForwarded int64   `json:"total_forwarded"`
	TotalErrors    int64   `json:"total_errors"`
	BytesRelayed   string  `json:"bytes_relayed"`
	RecentEvents   []Event `json:"recent_events"`
}

// Monitor keeps the last outcomes in a ring buffer plus running totals.
type Monitor struct {
	eventsMu sync.Mutex
	events   []Event
	idx      int
	count    int

	totalForwarded int64
	totalErrors    int64
	totalBytes     int64
}

func New(size int) *Monitor {
	if size <= 0 {
		size = 200
	}
	return &Monitor{events: make([]Event, size)}
}

func (m *Monitor) Record(e Event) {
	if m == nil {
		return
	}
	e.Timestamp = time.Now().UTC()

	switch e.Status {
	case StatusOK:
		atomic.AddInt64(&m.totalForwarded, 1)
		atomic.AddInt64(&m.totalBytes, e.Size)
	case StatusError:
		atomic.AddInt64(&m.totalErrors, 1)
	}

	m.eventsMu.Lock()
	m.events[m.idx] = e
	m.idx = (m.idx + 1) % len(m.events)
	if m.count < len(m.events) {
		m.count++
	}
	m.eventsMu.Unlock()
}

// GetStats returns the totals and the buffered events, oldest first.
func (m *Monitor) GetStats() Stats {
	if m == nil {
		return Stats{BytesRelayed: humanize.IBytes(0), RecentEvents: []Event{}}
	}

	m.eventsMu.Lock()
	res := make([]Event, 0, m.count)
	start := (m.idx - m.count) % len(m.events)
	if start < 0 {
		start += len(m.events)
	}
	for i := 0; i < m.count; i++ {
		res = append(res, m.events[(start+i)%len(m.events)])
	}
	m.eventsMu.Unlock()

	return Stats{
		TotalForwarded: atomic.LoadInt64(&m.totalForwarded),
		TotalErrors:    atomic.LoadInt64(&m.totalErrors),
		BytesRelayed:   humanize.IBytes(uint64(atomic.LoadInt64(&m.totalBytes))),
		RecentEvents:   res,
	}
}
