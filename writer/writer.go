package writer

import (
	"context"
	"net"

	"github.com/philipp01105/fastlogging/core"
	"github.com/philipp01105/fastlogging/netproto"
)

// Writer is a destination for records. Every writer owns one background
// goroutine that performs the physical I/O, so Enqueue never blocks on it.
type Writer interface {
	// Key identifies the writer inside a Logging instance
	Key() core.WriterKey

	Level() core.Level
	SetLevel(level core.Level)
	Enabled() bool
	SetEnabled(enabled bool)

	// Enqueue hands a record to the writer. It returns after the record is
	// queued. When the queue is full the oldest queued record is dropped.
	Enqueue(rec *core.Record)

	// Flush waits until every record enqueued before the call has been
	// written or dropped. It returns the I/O errors seen since the last
	// Flush, or ctx.Err() when ctx ends first.
	Flush(ctx context.Context) error

	// Discard drops all records that are still queued
	Discard()

	// Close drains the queue (bounded by the writer's drain timeout) and
	// releases all resources. Records still queued afterwards are dropped.
	Close() error

	// Stats returns a snapshot of the writer's counters
	Stats() Snapshot
}

// Accepts reports whether a record of the given level is delivered to w.
func Accepts(w Writer, level core.Level) bool {
	wl := w.Level()
	return wl != core.NoLogLevel && level >= wl && w.Enabled()
}

// Rotator is implemented by writers that support out-of-band rotation.
type Rotator interface {
	Rotate(ctx context.Context) error
}

// Encrypter is implemented by network writers whose credentials can be
// replaced at runtime.
type Encrypter interface {
	SetEncryption(enc netproto.Encryption) error
}

// Addresser is implemented by writers that listen on a network address.
type Addresser interface {
	Addr() net.Addr
}

// Dispatcher routes records received from remote peers.
type Dispatcher interface {
	Dispatch(rec *core.Record)
}

// DispatcherFunc adapts a function to the Dispatcher interface
type DispatcherFunc func(rec *core.Record)

// Dispatch calls f(rec)
func (f DispatcherFunc) Dispatch(rec *core.Record) { f(rec) }
