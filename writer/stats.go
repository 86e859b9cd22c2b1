package writer

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/philipp01105/fastlogging/core"
)

// Stats tracks writer statistics
type Stats struct {
	// ProcessedTotal counts records written to the destination
	ProcessedTotal uint64
	// DroppedTotal counts records dropped because the queue was full or
	// was discarded
	DroppedTotal uint64
	// ErrorsTotal counts failed writes, sends and flushes
	ErrorsTotal uint64
	// ReconnectsTotal counts established network connections
	ReconnectsTotal uint64

	mu      sync.Mutex
	lastErr error
	pending uint64 // errors since the last TakeError
}

// NewStats creates a new Stats instance
func NewStats() *Stats {
	return &Stats{}
}

// IncrementProcessed atomically increments the processed counter
func (s *Stats) IncrementProcessed() {
	atomic.AddUint64(&s.ProcessedTotal, 1)
}

// AddProcessed atomically adds n to the processed counter
func (s *Stats) AddProcessed(n int) {
	atomic.AddUint64(&s.ProcessedTotal, uint64(n))
}

// AddDropped atomically adds n to the dropped counter
func (s *Stats) AddDropped(n int) {
	atomic.AddUint64(&s.DroppedTotal, uint64(n))
}

// IncrementReconnects atomically increments the reconnect counter
func (s *Stats) IncrementReconnects() {
	atomic.AddUint64(&s.ReconnectsTotal, 1)
}

// RecordError counts err and keeps it for the next TakeError
func (s *Stats) RecordError(err error) {
	atomic.AddUint64(&s.ErrorsTotal, 1)
	s.mu.Lock()
	s.lastErr = err
	s.pending++
	s.mu.Unlock()
}

// TakeError returns an ErrTransientIO summary of the errors recorded since
// the previous call, or nil.
func (s *Stats) TakeError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == 0 {
		return nil
	}
	err := fmt.Errorf("%w: %d failed since last flush, last: %w", core.ErrTransientIO, s.pending, s.lastErr)
	s.lastErr = nil
	s.pending = 0
	return err
}

// Snapshot is a point in time copy of the counters
type Snapshot struct {
	ProcessedTotal  uint64
	DroppedTotal    uint64
	ErrorsTotal     uint64
	ReconnectsTotal uint64
}

// GetSnapshot returns a snapshot of current statistics
func (s *Stats) GetSnapshot() Snapshot {
	return Snapshot{
		ProcessedTotal:  atomic.LoadUint64(&s.ProcessedTotal),
		DroppedTotal:    atomic.LoadUint64(&s.DroppedTotal),
		ErrorsTotal:     atomic.LoadUint64(&s.ErrorsTotal),
		ReconnectsTotal: atomic.LoadUint64(&s.ReconnectsTotal),
	}
}
