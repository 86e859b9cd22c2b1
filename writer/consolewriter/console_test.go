package consolewriter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/philipp01105/fastlogging/core"
	"github.com/philipp01105/fastlogging/writer"
)

// syncBuffer is a bytes.Buffer safe for use from the async goroutine
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

type countingFailWriter struct{ calls atomic.Int32 }

func (c *countingFailWriter) Write([]byte) (int, error) {
	c.calls.Add(1)
	return 0, errors.New("broken pipe")
}

func record(level core.Level, domain, msg string) *core.Record {
	return &core.Record{Time: time.Now(), Level: level, Domain: domain, Message: msg}
}

func TestConsoleWriter_Sync(t *testing.T) {
	var out bytes.Buffer
	w, err := New(Config{Stdout: &out})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	w.Enqueue(record(core.InfoLevel, "app", "test message"))

	if !strings.Contains(out.String(), "app INFO: test message") {
		t.Errorf("Expected the record in output, got: %q", out.String())
	}
	if p := w.Stats().ProcessedTotal; p != 1 {
		t.Errorf("ProcessedTotal = %d, want 1", p)
	}
	if w.Key() != (core.WriterKey{Kind: core.KindConsole}) {
		t.Errorf("Key() = %v", w.Key())
	}
}

func TestConsoleWriter_AsyncFlush(t *testing.T) {
	var out syncBuffer
	w, err := New(Config{Stdout: &out, Async: true, BufferSize: 100})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	for i := 0; i < 50; i++ {
		w.Enqueue(record(core.InfoLevel, "app", fmt.Sprintf("async %d", i)))
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := w.Flush(ctx); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 50 {
		t.Fatalf("Expected 50 lines, got %d", len(lines))
	}
	for i, line := range lines {
		if !strings.HasSuffix(line, fmt.Sprintf("async %d", i)) {
			t.Errorf("line %d = %q, out of order", i, line)
		}
	}
}

func TestConsoleWriter_CloseDrains(t *testing.T) {
	var out syncBuffer
	w, err := New(Config{Stdout: &out, Async: true})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	for i := 0; i < 20; i++ {
		w.Enqueue(record(core.InfoLevel, "", "drained"))
	}
	w.Close()

	if count := strings.Count(out.String(), "drained"); count != 20 {
		t.Errorf("Expected 20 messages after Close, got %d", count)
	}
}

func TestConsoleWriter_TargetBoth(t *testing.T) {
	var stdout, stderr bytes.Buffer
	w, err := New(Config{Stdout: &stdout, Stderr: &stderr, Target: TargetBoth})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	w.Enqueue(record(core.WarningLevel, "", "to stdout"))
	w.Enqueue(record(core.ErrorLevel, "", "to stderr"))
	w.Enqueue(record(core.ExceptionLevel, "", "also stderr"))

	if !strings.Contains(stdout.String(), "to stdout") || strings.Contains(stdout.String(), "stderr") {
		t.Errorf("stdout = %q", stdout.String())
	}
	if !strings.Contains(stderr.String(), "to stderr") || !strings.Contains(stderr.String(), "also stderr") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestConsoleWriter_Filters(t *testing.T) {
	var out bytes.Buffer
	w, err := New(Config{Stdout: &out, DomainFilter: "^db", MessageFilter: "slow"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	w.Enqueue(record(core.InfoLevel, "db.pool", "slow query"))
	w.Enqueue(record(core.InfoLevel, "http", "slow request"))
	w.Enqueue(record(core.InfoLevel, "db.pool", "fast query"))

	if got := strings.Count(out.String(), "\n"); got != 1 {
		t.Errorf("Expected 1 line through the filters, got %d: %q", got, out.String())
	}
	if !strings.Contains(out.String(), "slow query") {
		t.Errorf("output = %q", out.String())
	}
}

func TestConsoleWriter_InvalidFilter(t *testing.T) {
	_, err := New(Config{DomainFilter: "("})
	if !errors.Is(err, core.ErrConfiguration) {
		t.Errorf("New() error = %v, want ErrConfiguration", err)
	}
}

func TestConsoleWriter_Colors(t *testing.T) {
	var plain, colored bytes.Buffer
	wp, _ := New(Config{Stdout: &plain, Colors: true})
	wc, _ := New(Config{Stdout: &colored, Colors: true, ForceColors: true})
	defer wp.Close()
	defer wc.Close()

	rec := record(core.WarningLevel, "", "careful")
	wp.Enqueue(rec)
	wc.Enqueue(rec)

	if strings.Contains(plain.String(), "\x1b[") {
		t.Errorf("non-terminal output without ForceColors was colored: %q", plain.String())
	}
	if !strings.HasPrefix(colored.String(), "\x1b[33m") {
		t.Errorf("Expected yellow escape sequence, got %q", colored.String())
	}
	if !strings.Contains(colored.String(), "careful\x1b[") || !strings.HasSuffix(colored.String(), "m\n") {
		t.Errorf("Expected reset before newline, got %q", colored.String())
	}
}

func TestConsoleWriter_WriteErrorDisables(t *testing.T) {
	w, err := New(Config{Stdout: failingWriter{}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	w.Enqueue(record(core.InfoLevel, "", "lost"))
	if w.Enabled() {
		t.Error("writer should disable itself after an output error")
	}
	err = w.Flush(context.Background())
	if !errors.Is(err, core.ErrTransientIO) {
		t.Errorf("Flush() error = %v, want ErrTransientIO", err)
	}
	if writer.Accepts(w, core.ExceptionLevel) {
		t.Error("a disabled writer must not accept records")
	}
}

func TestConsoleWriter_NoWritesAfterFailure(t *testing.T) {
	out := &countingFailWriter{}
	w, err := New(Config{Stdout: out})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	for i := 0; i < 5; i++ {
		w.Enqueue(record(core.ErrorLevel, "", "lost"))
	}
	if n := out.calls.Load(); n != 1 {
		t.Errorf("output written %d times, want 1", n)
	}
}

func TestTarget_Text(t *testing.T) {
	var tg Target
	if err := tg.UnmarshalText([]byte("BOTH")); err != nil || tg != TargetBoth {
		t.Errorf("UnmarshalText(BOTH) = %v, %v", tg, err)
	}
	if err := tg.UnmarshalText([]byte("printer")); !errors.Is(err, core.ErrConfiguration) {
		t.Errorf("UnmarshalText(printer) error = %v", err)
	}
}

func TestIsTerminal(t *testing.T) {
	if isTerminal(&bytes.Buffer{}) {
		t.Error("a bytes.Buffer is not a terminal")
	}
}
