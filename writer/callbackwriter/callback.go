package callbackwriter

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/philipp01105/fastlogging/core"
	"github.com/philipp01105/fastlogging/writer"
)

// Func receives every record delivered to a callback writer
type Func func(level core.Level, domain, message string)

// Config holds configuration for the callback writer
type Config struct {
	Level core.Level
	// BufferSize is the size of the queue (default: 1000)
	BufferSize int
	// DrainTimeout is the timeout for draining the queue on Close (default: 5s)
	DrainTimeout time.Duration
}

// Writer calls a function for every record. The function runs on the
// writer's goroutine, one record at a time.
type Writer struct {
	writer.Base
	cfg  Config
	fn   Func
	diag *zap.Logger

	queue     *writer.Queue
	wg        sync.WaitGroup
	closed    chan struct{}
	closeOnce sync.Once
}

// New creates a callback writer. A callback writer cannot be stored in a
// configuration file.
func New(cfg Config, fn Func, opts ...writer.Option) (*Writer, error) {
	if fn == nil {
		return nil, fmt.Errorf("%w: callback writer needs a function", core.ErrConfiguration)
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1000
	}
	if cfg.DrainTimeout == 0 {
		cfg.DrainTimeout = writer.DefaultDrainTimeout
	}
	o := writer.NewOptions(opts...)

	w := &Writer{
		cfg:    cfg,
		fn:     fn,
		diag:   o.Diagnostics.With(zap.String("writer", "callback")),
		closed: make(chan struct{}),
	}
	writer.InitBase(&w.Base, core.WriterKey{Kind: core.KindCallback}, cfg.Level)
	w.queue = writer.NewQueue(cfg.BufferSize, w.Counters())

	w.wg.Add(1)
	go w.process()
	return w, nil
}

// Enqueue implements writer.Writer
func (w *Writer) Enqueue(rec *core.Record) {
	w.queue.Push(rec)
}

func (w *Writer) call(rec *core.Record) {
	defer func() {
		if r := recover(); r != nil {
			w.Counters().RecordError(fmt.Errorf("callback panicked: %v", r))
			w.diag.Error("callback panicked", zap.Any("panic", r))
		}
	}()
	w.fn(rec.Level, rec.Domain, rec.Message)
	w.Counters().IncrementProcessed()
}

func (w *Writer) writeBatch(batch []*core.Record) {
	for _, rec := range batch {
		w.call(rec)
	}
}

func (w *Writer) process() {
	defer w.wg.Done()

	for {
		select {
		case <-w.queue.Notify():
			w.queue.Drain(nil, w.writeBatch)
		case <-w.closed:
			w.queue.Drain(time.After(w.cfg.DrainTimeout), w.writeBatch)
			return
		}
	}
}

// Flush implements writer.Writer
func (w *Writer) Flush(ctx context.Context) error {
	if err := w.queue.Flush(ctx); err != nil {
		return err
	}
	return w.Counters().TakeError()
}

// Discard implements writer.Writer
func (w *Writer) Discard() {
	w.queue.Discard()
}

// Close drains the queue with a timeout and stops the writer
func (w *Writer) Close() error {
	w.closeOnce.Do(func() {
		close(w.closed)
		w.wg.Wait()
		w.queue.Close()
		w.queue.Discard()
	})
	return nil
}
