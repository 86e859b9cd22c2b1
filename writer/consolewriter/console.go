package consolewriter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"

	"github.com/philipp01105/fastlogging/core"
	"github.com/philipp01105/fastlogging/formatter"
	"github.com/philipp01105/fastlogging/writer"
)

// Target selects the output stream
type Target uint8

const (
	// TargetStdout writes every record to stdout (default)
	TargetStdout Target = iota
	// TargetStderr writes every record to stderr
	TargetStderr
	// TargetBoth writes records below ERROR to stdout and the rest to stderr
	TargetBoth
)

func (t Target) String() string {
	switch t {
	case TargetStderr:
		return "stderr"
	case TargetBoth:
		return "both"
	default:
		return "stdout"
	}
}

// MarshalText implements encoding.TextMarshaler
func (t Target) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (t *Target) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "", "stdout":
		*t = TargetStdout
	case "stderr":
		*t = TargetStderr
	case "both":
		*t = TargetBoth
	default:
		return fmt.Errorf("%w: unknown console target %q", core.ErrConfiguration, text)
	}
	return nil
}

// Config holds configuration for the console writer
type Config struct {
	Level core.Level `yaml:"level" json:"level" xml:"level"`
	// Colors colors each line by level when the stream is a terminal
	Colors bool `yaml:"colors" json:"colors" xml:"colors"`
	// ForceColors colors even when the stream is not a terminal
	ForceColors bool   `yaml:"force_colors,omitempty" json:"force_colors,omitempty" xml:"force_colors,omitempty"`
	Target      Target `yaml:"target" json:"target" xml:"target"`
	// Async moves writes to a background goroutine (default: false)
	Async bool `yaml:"async,omitempty" json:"async,omitempty" xml:"async,omitempty"`
	// BufferSize is the size of the async queue (default: 1000)
	BufferSize int `yaml:"buffer_size,omitempty" json:"buffer_size,omitempty" xml:"buffer_size,omitempty"`
	// DrainTimeout is the timeout for draining the queue on Close (default: 5s)
	DrainTimeout time.Duration `yaml:"drain_timeout,omitempty" json:"drain_timeout,omitempty" xml:"drain_timeout,omitempty"`
	// DomainFilter drops records whose domain does not match the expression
	DomainFilter string `yaml:"domain_filter,omitempty" json:"domain_filter,omitempty" xml:"domain_filter,omitempty"`
	// MessageFilter drops records whose message does not match the expression
	MessageFilter string `yaml:"message_filter,omitempty" json:"message_filter,omitempty" xml:"message_filter,omitempty"`

	// Stdout and Stderr replace the process streams (default: os.Stdout, os.Stderr)
	Stdout io.Writer `yaml:"-" json:"-" xml:"-"`
	Stderr io.Writer `yaml:"-" json:"-" xml:"-"`
}

// applyConsoleDefaults fills in zero-value fields with defaults.
func applyConsoleDefaults(cfg *Config) {
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	if cfg.Stderr == nil {
		cfg.Stderr = os.Stderr
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1000
	}
	if cfg.DrainTimeout == 0 {
		cfg.DrainTimeout = writer.DefaultDrainTimeout
	}
}

var levelColors = []struct {
	min   core.Level
	attrs []color.Attribute
}{
	{core.ExceptionLevel, []color.Attribute{color.FgRed, color.Bold}},
	{core.CriticalLevel, []color.Attribute{color.FgRed}},
	{core.ErrorLevel, []color.Attribute{color.FgMagenta}},
	{core.WarningLevel, []color.Attribute{color.FgYellow}},
	{core.SuccessLevel, []color.Attribute{color.FgCyan}},
	{core.InfoLevel, []color.Attribute{color.FgGreen}},
	{core.DebugLevel, []color.Attribute{color.FgBlue}},
	{core.NotSetLevel, []color.Attribute{color.FgWhite}},
}

// isTerminal reports whether w is a terminal
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Writer writes formatted records to stdout and stderr.
type Writer struct {
	writer.Base
	cfg       Config
	domainRe  *regexp.Regexp
	messageRe *regexp.Regexp
	palette   []*color.Color
	colorOut  bool
	colorErr  bool
	diag      *zap.Logger

	mu      sync.Mutex // protects syncBuf and the streams
	syncBuf bytes.Buffer

	queue     *writer.Queue // nil in sync mode
	wg        sync.WaitGroup
	closed    chan struct{}
	closeOnce sync.Once
	failed    atomic.Bool
}

// New creates a console writer. Invalid filter expressions are
// configuration errors.
func New(cfg Config, opts ...writer.Option) (*Writer, error) {
	applyConsoleDefaults(&cfg)
	o := writer.NewOptions(opts...)

	w := &Writer{
		cfg:    cfg,
		diag:   o.Diagnostics.With(zap.String("writer", "console")),
		closed: make(chan struct{}),
	}
	writer.InitBase(&w.Base, core.WriterKey{Kind: core.KindConsole}, cfg.Level)

	var err error
	if cfg.DomainFilter != "" {
		if w.domainRe, err = regexp.Compile(cfg.DomainFilter); err != nil {
			return nil, fmt.Errorf("%w: domain filter: %w", core.ErrConfiguration, err)
		}
	}
	if cfg.MessageFilter != "" {
		if w.messageRe, err = regexp.Compile(cfg.MessageFilter); err != nil {
			return nil, fmt.Errorf("%w: message filter: %w", core.ErrConfiguration, err)
		}
	}

	if cfg.Colors {
		w.colorOut = cfg.ForceColors || isTerminal(cfg.Stdout)
		w.colorErr = cfg.ForceColors || isTerminal(cfg.Stderr)
		w.palette = make([]*color.Color, len(levelColors))
		for i, lc := range levelColors {
			c := color.New(lc.attrs...)
			c.EnableColor()
			w.palette[i] = c
		}
	}

	if cfg.Async {
		w.queue = writer.NewQueue(cfg.BufferSize, w.Counters())
		w.wg.Add(1)
		go w.process()
	}
	return w, nil
}

// Config returns the configuration the writer was created with
func (w *Writer) Config() Config {
	cfg := w.cfg
	cfg.Level = w.Level()
	return cfg
}

// Enqueue writes rec on the calling goroutine in sync mode and queues it
// otherwise.
func (w *Writer) Enqueue(rec *core.Record) {
	if w.domainRe != nil && !w.domainRe.MatchString(rec.Domain) {
		return
	}
	if w.messageRe != nil && !w.messageRe.MatchString(rec.Message) {
		return
	}
	if w.queue == nil {
		select {
		case <-w.closed:
			return
		default:
		}
		if w.failed.Load() {
			return
		}
		w.write(rec)
		return
	}
	w.queue.Push(rec)
}

// stream returns the output for level and whether it gets colors
func (w *Writer) stream(level core.Level) (io.Writer, bool) {
	switch {
	case w.cfg.Target == TargetStderr,
		w.cfg.Target == TargetBoth && level >= core.ErrorLevel:
		return w.cfg.Stderr, w.colorErr
	default:
		return w.cfg.Stdout, w.colorOut
	}
}

func (w *Writer) colorFor(level core.Level) *color.Color {
	for i, lc := range levelColors {
		if level >= lc.min {
			return w.palette[i]
		}
	}
	return w.palette[len(w.palette)-1]
}

// write formats and writes a single record under the writer lock
func (w *Writer) write(rec *core.Record) {
	out, colored := w.stream(rec.Level)

	w.mu.Lock()
	w.syncBuf.Reset()
	formatter.Format(rec, &w.syncBuf)
	var err error
	if colored {
		line := w.syncBuf.Bytes()
		_, err = io.WriteString(out, w.colorFor(rec.Level).Sprint(string(line[:len(line)-1]))+"\n")
	} else {
		_, err = out.Write(w.syncBuf.Bytes())
	}
	w.mu.Unlock()

	if err != nil {
		w.fail(err)
		return
	}
	w.Counters().IncrementProcessed()
}

func (w *Writer) writeBatch(batch []*core.Record) {
	for _, rec := range batch {
		w.write(rec)
	}
}

// fail counts err and disables the writer the first time output breaks
func (w *Writer) fail(err error) {
	w.Counters().RecordError(err)
	if w.failed.CompareAndSwap(false, true) {
		w.diag.Warn("console output failed, disabling writer", zap.Error(err))
		w.SetEnabled(false)
	}
}

// process handles async writing
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
	if w.queue != nil {
		if err := w.queue.Flush(ctx); err != nil {
			return err
		}
	}
	return w.Counters().TakeError()
}

// Discard implements writer.Writer
func (w *Writer) Discard() {
	if w.queue != nil {
		w.queue.Discard()
	}
}

// Close drains the queue with a timeout and stops the writer.
func (w *Writer) Close() error {
	w.closeOnce.Do(func() {
		close(w.closed)
		if w.queue != nil {
			w.wg.Wait()
			w.queue.Close()
			w.queue.Discard()
		}
	})
	return nil
}
