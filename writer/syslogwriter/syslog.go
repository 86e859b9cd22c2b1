//go:build !windows && !plan9

package syslogwriter

import (
	"context"
	"fmt"
	"log/syslog"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/philipp01105/fastlogging/core"
	"github.com/philipp01105/fastlogging/formatter"
	"github.com/philipp01105/fastlogging/writer"
)

// Writer sends records to a syslog daemon
type Writer struct {
	writer.Base
	cfg  Config
	sw   *syslog.Writer
	diag *zap.Logger

	queue     *writer.Queue
	wg        sync.WaitGroup
	closed    chan struct{}
	closeOnce sync.Once
}

// New connects to the syslog daemon selected by cfg
func New(cfg Config, opts ...writer.Option) (*Writer, error) {
	applySyslogDefaults(&cfg)
	facility, err := parseFacility(cfg.Facility)
	if err != nil {
		return nil, err
	}
	o := writer.NewOptions(opts...)

	sw, err := syslog.Dial(cfg.Network, cfg.Address, syslog.Priority(facility)|syslog.LOG_INFO, cfg.Tag)
	if err != nil {
		return nil, fmt.Errorf("%w: syslog: %w", core.ErrConfiguration, err)
	}

	w := &Writer{
		cfg:    cfg,
		sw:     sw,
		diag:   o.Diagnostics.With(zap.String("writer", "syslog")),
		closed: make(chan struct{}),
	}
	writer.InitBase(&w.Base, core.WriterKey{Kind: core.KindSyslog}, cfg.Level)
	w.queue = writer.NewQueue(cfg.BufferSize, w.Counters())

	w.wg.Add(1)
	go w.process()
	return w, nil
}

// Config returns the configuration the writer was created with
func (w *Writer) Config() Config {
	cfg := w.cfg
	cfg.Level = w.Level()
	return cfg
}

// Enqueue implements writer.Writer
func (w *Writer) Enqueue(rec *core.Record) {
	w.queue.Push(rec)
}

// message renders the syslog message body. Plain records are sent as
// "domain: message" since the daemon adds its own header, structured
// records use their JSON or XML rendering without the trailing newline.
func message(rec *core.Record) string {
	buf := formatter.GetBuffer()
	defer formatter.PutBuffer(buf)
	if rec.Structured == core.StructString {
		if rec.Domain != "" {
			buf.WriteString(rec.Domain)
			buf.WriteString(": ")
		}
		buf.WriteString(rec.Message)
	} else {
		formatter.Format(rec, buf)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func (w *Writer) send(rec *core.Record) error {
	m := message(rec)
	switch SeverityOf(rec.Level) {
	case SevAlert:
		return w.sw.Alert(m)
	case SevCrit:
		return w.sw.Crit(m)
	case SevErr:
		return w.sw.Err(m)
	case SevWarning:
		return w.sw.Warning(m)
	case SevNotice:
		return w.sw.Notice(m)
	case SevInfo:
		return w.sw.Info(m)
	default:
		return w.sw.Debug(m)
	}
}

func (w *Writer) writeBatch(batch []*core.Record) {
	for _, rec := range batch {
		if err := w.send(rec); err != nil {
			w.Counters().RecordError(err)
			w.diag.Debug("syslog write failed", zap.Error(err))
			continue
		}
		w.Counters().IncrementProcessed()
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

// Close drains the queue with a timeout and closes the connection.
func (w *Writer) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.closed)
		w.wg.Wait()
		w.queue.Close()
		w.queue.Discard()
		err = w.sw.Close()
	})
	return err
}
