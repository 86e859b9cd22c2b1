package filewriter

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/philipp01105/fastlogging/core"
	"github.com/philipp01105/fastlogging/formatter"
	"github.com/philipp01105/fastlogging/writer"
)

// MaxBacklog is the largest number of rolled files a writer keeps
const MaxBacklog = 1000

// Compression selects how rolled files are stored
type Compression uint8

const (
	// Store keeps rolled files as they are (default)
	Store Compression = iota
	// Deflate compresses rolled files with gzip
	Deflate
	// Zstd compresses rolled files with zstandard
	Zstd
	// Lzma compresses rolled files with lzma
	Lzma
)

var compressionNames = [...]string{Store: "store", Deflate: "deflate", Zstd: "zstd", Lzma: "lzma"}

// extensions lists the suffix of rolled files for each compression
var extensions = [...]string{Store: "", Deflate: ".gz", Zstd: ".zst", Lzma: ".lzma"}

func (c Compression) String() string {
	if int(c) < len(compressionNames) {
		return compressionNames[c]
	}
	return "unknown"
}

// Ext returns the file name suffix of files compressed with c
func (c Compression) Ext() string {
	if int(c) < len(extensions) {
		return extensions[c]
	}
	return ""
}

// MarshalText implements encoding.TextMarshaler
func (c Compression) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (c *Compression) UnmarshalText(text []byte) error {
	s := strings.ToLower(string(text))
	if s == "" {
		*c = Store
		return nil
	}
	for i, name := range compressionNames {
		if name == s {
			*c = Compression(i)
			return nil
		}
	}
	return fmt.Errorf("%w: unknown compression %q", core.ErrConfiguration, text)
}

// Config holds configuration for the file writer
type Config struct {
	Level core.Level `yaml:"level" json:"level" xml:"level"`
	// Path is the path to the active log file
	Path string `yaml:"path" json:"path" xml:"path"`
	// MaxSize is the size in bytes that triggers a rotation (0 = no size rotation)
	MaxSize int64 `yaml:"size,omitempty" json:"size,omitempty" xml:"size,omitempty"`
	// Backlog is the number of rolled files to keep. Required when rotating.
	Backlog int `yaml:"backlog,omitempty" json:"backlog,omitempty" xml:"backlog,omitempty"`
	// Interval triggers a rotation after this much time (0 = no interval rotation)
	Interval    time.Duration `yaml:"interval,omitempty" json:"interval,omitempty" xml:"interval,omitempty"`
	Compression Compression   `yaml:"compression,omitempty" json:"compression,omitempty" xml:"compression,omitempty"`
	// BufferSize is the size of the queue (default: 10000)
	BufferSize int `yaml:"buffer_size,omitempty" json:"buffer_size,omitempty" xml:"buffer_size,omitempty"`
	// DrainTimeout is the timeout for draining the queue on Close (default: 5s)
	DrainTimeout time.Duration `yaml:"drain_timeout,omitempty" json:"drain_timeout,omitempty" xml:"drain_timeout,omitempty"`
}

// applyFileDefaults fills in zero-value fields with defaults.
func applyFileDefaults(cfg *Config) {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 10000
	}
	if cfg.DrainTimeout == 0 {
		cfg.DrainTimeout = writer.DefaultDrainTimeout
	}
}

func validate(cfg Config) error {
	if cfg.Path == "" {
		return fmt.Errorf("%w: file path is required", core.ErrConfiguration)
	}
	if cfg.MaxSize < 0 || cfg.Interval < 0 {
		return fmt.Errorf("%w: negative rotation threshold", core.ErrConfiguration)
	}
	if cfg.Backlog < 0 || cfg.Backlog > MaxBacklog {
		return fmt.Errorf("%w: backlog %d outside 0..%d", core.ErrConfiguration, cfg.Backlog, MaxBacklog)
	}
	if (cfg.MaxSize > 0 || cfg.Interval > 0) && cfg.Backlog == 0 {
		return fmt.Errorf("%w: rotation of %s requires a backlog", core.ErrConfiguration, cfg.Path)
	}
	if int(cfg.Compression) >= len(compressionNames) {
		return fmt.Errorf("%w: unknown compression %d", core.ErrConfiguration, cfg.Compression)
	}
	return nil
}

// Writer appends formatted records to a file and rotates it. All file
// state is owned by the background goroutine.
type Writer struct {
	writer.Base
	cfg  Config
	diag *zap.Logger

	file        *os.File
	bufWriter   *bufio.Writer
	currentSize int64
	lastRotate  time.Time
	fmtBuf      bytes.Buffer

	queue     *writer.Queue
	rotateReq chan chan error
	wg        sync.WaitGroup
	closed    chan struct{}
	closeOnce sync.Once
}

// New creates a file writer. The directory is created and the file is
// opened before New returns; failures are configuration errors.
func New(cfg Config, opts ...writer.Option) (*Writer, error) {
	if err := validate(cfg); err != nil {
		return nil, err
	}
	applyFileDefaults(&cfg)
	o := writer.NewOptions(opts...)

	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrConfiguration, err)
	}

	w := &Writer{
		cfg:       cfg,
		diag:      o.Diagnostics.With(zap.String("writer", "file"), zap.String("path", cfg.Path)),
		rotateReq: make(chan chan error),
		closed:    make(chan struct{}),
	}
	writer.InitBase(&w.Base, core.WriterKey{Kind: core.KindFile}, cfg.Level)
	if err := w.open(os.O_APPEND); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrConfiguration, err)
	}

	w.queue = writer.NewQueue(cfg.BufferSize, w.Counters())
	w.wg.Add(1)
	go w.process()
	return w, nil
}

// Path returns the path of the active file
func (w *Writer) Path() string {
	return w.cfg.Path
}

// Config returns the configuration the writer was created with
func (w *Writer) Config() Config {
	cfg := w.cfg
	cfg.Level = w.Level()
	return cfg
}

// open opens the active file with the extra flag (O_APPEND or O_TRUNC)
func (w *Writer) open(flag int) error {
	file, err := os.OpenFile(w.cfg.Path, os.O_CREATE|os.O_WRONLY|flag, 0644)
	if err != nil {
		return err
	}
	info, err := file.Stat()
	if err != nil {
		return multierr.Append(err, file.Close())
	}
	w.file = file
	if w.bufWriter == nil {
		w.bufWriter = bufio.NewWriterSize(file, 64*1024)
	} else {
		w.bufWriter.Reset(file)
	}
	w.currentSize = info.Size()
	w.lastRotate = time.Now()
	return nil
}

// Enqueue implements writer.Writer
func (w *Writer) Enqueue(rec *core.Record) {
	w.queue.Push(rec)
}

// process handles queued records, rotation requests and interval rotation
func (w *Writer) process() {
	defer w.wg.Done()

	var tick <-chan time.Time
	if w.cfg.Interval > 0 {
		ticker := time.NewTicker(w.cfg.Interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-w.queue.Notify():
			w.queue.Drain(nil, w.writeBatch)
		case reply := <-w.rotateReq:
			w.queue.DrainQueued(w.writeBatch)
			reply <- w.rotate()
		case <-tick:
			if time.Since(w.lastRotate) >= w.cfg.Interval {
				if err := w.rotate(); err != nil {
					w.fail("interval rotation failed", err)
				}
			}
		case <-w.closed:
			w.queue.Drain(time.After(w.cfg.DrainTimeout), w.writeBatch)
			return
		}
	}
}

// writeBatch formats and writes a batch, then flushes the buffer once
func (w *Writer) writeBatch(batch []*core.Record) {
	for _, rec := range batch {
		if w.cfg.MaxSize > 0 && w.currentSize >= w.cfg.MaxSize {
			if err := w.rotate(); err != nil {
				w.fail("size rotation failed", err)
			}
		}
		w.fmtBuf.Reset()
		formatter.Format(rec, &w.fmtBuf)
		n, err := w.bufWriter.Write(w.fmtBuf.Bytes())
		w.currentSize += int64(n)
		if err != nil {
			w.fail("write failed", err)
			continue
		}
		w.Counters().IncrementProcessed()
	}
	if err := w.bufWriter.Flush(); err != nil {
		w.fail("flush failed", err)
	}
}

func (w *Writer) fail(msg string, err error) {
	w.Counters().RecordError(err)
	w.diag.Warn(msg, zap.Error(err))
}

// Rotate rolls the active file after writing every record queued before
// the call. Rotating an empty file does nothing.
func (w *Writer) Rotate(ctx context.Context) error {
	reply := make(chan error, 1)
	select {
	case w.rotateReq <- reply:
	case <-w.closed:
		return core.ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
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

// Close drains the queue with a timeout, then flushes, syncs and closes
// the file.
func (w *Writer) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.closed)
		w.wg.Wait()
		w.queue.Close()
		w.queue.Discard()

		if w.file != nil {
			err = multierr.Combine(
				w.bufWriter.Flush(),
				w.file.Sync(),
				w.file.Close(),
			)
		}
	})
	return err
}
