package writer

import (
	"context"
	"sync"
	"time"

	"github.com/philipp01105/fastlogging/core"
)

// DefaultBatchSize is the number of records a consumer takes at once
const DefaultBatchSize = 256

type item struct {
	rec *core.Record
	seq uint64
}

// Queue is a bounded FIFO of records with many producers and a single
// consumer. When full, Push drops the oldest queued record.
//
// The consumer takes records in batches. A taken batch stays in flight until
// the consumer calls Done (written) or Requeue (put back in front). Flush
// waits until everything pushed before the call has left the queue for good.
type Queue struct {
	mu       sync.Mutex
	buf      []item
	head     int
	n        int
	nextSeq  uint64
	inflight []item
	taken    []*core.Record
	closed   bool

	notify   chan struct{}
	progress chan struct{}
	stats    *Stats
}

// NewQueue creates a queue holding at most capacity records. Drops are
// counted in stats.
func NewQueue(capacity int, stats *Stats) *Queue {
	if capacity <= 0 {
		capacity = 1
	}
	return &Queue{
		buf:      make([]item, capacity),
		notify:   make(chan struct{}, 1),
		progress: make(chan struct{}),
		stats:    stats,
	}
}

// Cap returns the capacity of the queue
func (q *Queue) Cap() int {
	return len(q.buf)
}

// Len returns the number of queued records, not counting a batch in flight
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.n
}

// Notify returns a channel that receives a value after records are pushed
func (q *Queue) Notify() <-chan struct{} {
	return q.notify
}

// Push appends rec. It never blocks beyond the queue lock. Pushes after
// Close are ignored.
func (q *Queue) Push(rec *core.Record) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	if q.n == len(q.buf) {
		q.buf[q.head] = item{}
		q.head = (q.head + 1) % len(q.buf)
		q.n--
		q.stats.AddDropped(1)
		q.advanceLocked()
	}
	q.buf[(q.head+q.n)%len(q.buf)] = item{rec: rec, seq: q.nextSeq}
	q.nextSeq++
	q.n++
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Take moves up to limit records into flight and returns them. It returns
// nil when the queue is empty or a batch is already in flight. The
// returned slice is reused by the next Take.
func (q *Queue) Take(limit int) []*core.Record {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.n == 0 || len(q.inflight) > 0 {
		return nil
	}
	if limit <= 0 || limit > q.n {
		limit = q.n
	}
	q.taken = q.taken[:0]
	for i := 0; i < limit; i++ {
		it := q.buf[q.head]
		q.buf[q.head] = item{}
		q.head = (q.head + 1) % len(q.buf)
		q.inflight = append(q.inflight, it)
		q.taken = append(q.taken, it.rec)
	}
	q.n -= limit
	return q.taken
}

// Done resolves the batch in flight
func (q *Queue) Done() {
	q.mu.Lock()
	q.clearInflightLocked()
	q.advanceLocked()
	q.mu.Unlock()
}

// Requeue puts the batch in flight back in front of the queue. If that
// exceeds the capacity, the oldest records are dropped.
func (q *Queue) Requeue() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.inflight) == 0 {
		return
	}
	room := len(q.buf) - q.n
	keep := q.inflight
	if len(keep) > room {
		q.stats.AddDropped(len(keep) - room)
		keep = keep[len(keep)-room:]
	}
	for i := len(keep) - 1; i >= 0; i-- {
		q.head = (q.head - 1 + len(q.buf)) % len(q.buf)
		q.buf[q.head] = keep[i]
		q.n++
	}
	q.clearInflightLocked()
	q.advanceLocked()
	if q.n > 0 {
		select {
		case q.notify <- struct{}{}:
		default:
		}
	}
}

// Drain hands batches to write and resolves them until the queue is empty
// or stop fires. A nil stop never fires.
func (q *Queue) Drain(stop <-chan time.Time, write func(batch []*core.Record)) {
	for {
		select {
		case <-stop:
			return
		default:
		}
		batch := q.Take(DefaultBatchSize)
		if len(batch) == 0 {
			return
		}
		write(batch)
		q.Done()
	}
}

// DrainQueued is like Drain but stops after the records that were queued
// when it was called, so producers cannot keep it busy.
func (q *Queue) DrainQueued(write func(batch []*core.Record)) {
	for pending := q.Len(); pending > 0; {
		batch := q.Take(min(pending, DefaultBatchSize))
		if len(batch) == 0 {
			return
		}
		pending -= len(batch)
		write(batch)
		q.Done()
	}
}

// Discard drops every queued record. A batch in flight is not affected.
func (q *Queue) Discard() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.n == 0 {
		return
	}
	q.stats.AddDropped(q.n)
	for i := 0; i < q.n; i++ {
		q.buf[(q.head+i)%len(q.buf)] = item{}
	}
	q.head = 0
	q.n = 0
	q.advanceLocked()
}

// Close stops accepting records. Queued records stay until taken or
// discarded.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
}

// Flush waits until every record pushed before the call has been resolved
// by Done or dropped. It leaves the queue untouched when ctx ends first.
func (q *Queue) Flush(ctx context.Context) error {
	q.mu.Lock()
	target := q.nextSeq
	for q.watermarkLocked() < target {
		progress := q.progress
		q.mu.Unlock()
		select {
		case <-progress:
		case <-ctx.Done():
			return ctx.Err()
		}
		q.mu.Lock()
	}
	q.mu.Unlock()
	return nil
}

// watermarkLocked returns the sequence number of the oldest unresolved
// record. Everything below it has been resolved.
func (q *Queue) watermarkLocked() uint64 {
	if len(q.inflight) > 0 {
		return q.inflight[0].seq
	}
	if q.n > 0 {
		return q.buf[q.head].seq
	}
	return q.nextSeq
}

func (q *Queue) advanceLocked() {
	close(q.progress)
	q.progress = make(chan struct{})
}

func (q *Queue) clearInflightLocked() {
	for i := range q.inflight {
		q.inflight[i] = item{}
	}
	q.inflight = q.inflight[:0]
}
