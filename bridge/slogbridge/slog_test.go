package slogbridge

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/philipp01105/fastlogging/core"
)

type emitted struct {
	level   core.Level
	domain  string
	message string
}

type fakeEmitter struct {
	mu   sync.Mutex
	recs []emitted
}

func (f *fakeEmitter) Emit(level core.Level, domain, message, _ string) {
	f.mu.Lock()
	f.recs = append(f.recs, emitted{level, domain, message})
	f.mu.Unlock()
}

func TestHandler_Enabled(t *testing.T) {
	h := NewHandler(&fakeEmitter{}, core.InfoLevel, "")

	if h.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("Debug should not be enabled when level is Info")
	}
	for _, l := range []slog.Level{slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		if !h.Enabled(context.Background(), l) {
			t.Errorf("%v should be enabled when level is Info", l)
		}
	}
}

func TestHandler_Handle(t *testing.T) {
	e := &fakeEmitter{}
	logger := slog.New(NewHandler(e, core.DebugLevel, "app"))

	logger.Info("test message", "key", "value", "count", 42)
	logger.Debug("hidden?")

	if len(e.recs) != 2 {
		t.Fatalf("got %d records, want 2", len(e.recs))
	}
	got := e.recs[0]
	if got.level != core.InfoLevel || got.domain != "app" {
		t.Errorf("record = %+v", got)
	}
	if got.message != "test message key=value count=42" {
		t.Errorf("message = %q", got.message)
	}
}

func TestHandler_AttrsAndGroups(t *testing.T) {
	e := &fakeEmitter{}
	logger := slog.New(NewHandler(e, core.DebugLevel, "")).
		With("service", "api").
		WithGroup("req").
		With("id", "r-1")

	logger.Warn("slow", slog.Group("timing", slog.Int("ms", 250)), "path", "/users")

	want := "slow service=api req.id=r-1 req.timing.ms=250 req.path=/users"
	if len(e.recs) != 1 || e.recs[0].message != want {
		t.Errorf("records = %+v, want message %q", e.recs, want)
	}
	if e.recs[0].level != core.WarningLevel {
		t.Errorf("level = %v, want WARNING", e.recs[0].level)
	}
}

func TestLevelOf(t *testing.T) {
	tests := []struct {
		in   slog.Level
		want core.Level
	}{
		{slog.LevelDebug - 4, core.TraceLevel},
		{slog.LevelDebug, core.DebugLevel},
		{slog.LevelInfo, core.InfoLevel},
		{slog.LevelWarn, core.WarningLevel},
		{slog.LevelError, core.ErrorLevel},
		{slog.LevelError + 4, core.CriticalLevel},
	}
	for _, tt := range tests {
		if got := LevelOf(tt.in); got != tt.want {
			t.Errorf("LevelOf(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
