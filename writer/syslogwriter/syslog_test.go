//go:build !windows && !plan9

package syslogwriter

import (
	"context"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/philipp01105/fastlogging/core"
)

func TestSeverityOf(t *testing.T) {
	tests := []struct {
		level core.Level
		want  Severity
	}{
		{core.TraceLevel, SevDebug},
		{core.DebugLevel, SevDebug},
		{core.InfoLevel, SevInfo},
		{core.SuccessLevel, SevNotice},
		{core.WarningLevel, SevWarning},
		{core.Level(35), SevWarning},
		{core.ErrorLevel, SevErr},
		{core.CriticalLevel, SevCrit},
		{core.ExceptionLevel, SevAlert},
	}
	for _, tt := range tests {
		if got := SeverityOf(tt.level); got != tt.want {
			t.Errorf("SeverityOf(%v) = %d, want %d", tt.level, got, tt.want)
		}
	}
}

func TestWriter_SendsToRemoteDaemon(t *testing.T) {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("ListenPacket() error = %v", err)
	}
	defer pc.Close()

	w, err := New(Config{Network: "udp", Address: pc.LocalAddr().String(), Tag: "fastlogging"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	w.Enqueue(&core.Record{Time: time.Now(), Level: core.WarningLevel, Domain: "app", Message: "disk full"})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := w.Flush(ctx); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	_ = pc.SetReadDeadline(time.Now().Add(5 * time.Second))
	buf := make([]byte, 2048)
	n, _, err := pc.ReadFrom(buf)
	if err != nil {
		t.Fatalf("ReadFrom() error = %v", err)
	}
	msg := string(buf[:n])
	// user facility (1) and warning severity (4)
	if !strings.HasPrefix(msg, "<12>") {
		t.Errorf("message %q does not start with <12>", msg)
	}
	if !strings.Contains(msg, "fastlogging") || !strings.Contains(msg, "app: disk full") {
		t.Errorf("message %q misses tag or text", msg)
	}
	if got := w.Stats().ProcessedTotal; got != 1 {
		t.Errorf("ProcessedTotal = %d, want 1", got)
	}
}

func TestMessage(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		rec  core.Record
		want string
	}{
		{"plain", core.Record{Time: ts, Level: core.InfoLevel, Domain: "app", Message: "started"}, "app: started"},
		{"no domain", core.Record{Time: ts, Level: core.InfoLevel, Message: "started"}, "started"},
		{"json", core.Record{Time: ts, Level: core.ErrorLevel, Domain: "app", Message: "boom", Structured: core.StructJSON},
			`{"time":"2024.05.01 12:00:00","level":"ERROR","domain":"app","message":"boom"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := message(&tt.rec); got != tt.want {
				t.Errorf("message() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWriter_SendsStructuredRecords(t *testing.T) {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("ListenPacket() error = %v", err)
	}
	defer pc.Close()

	w, err := New(Config{Network: "udp", Address: pc.LocalAddr().String(), Tag: "fastlogging"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	w.Enqueue(&core.Record{Time: time.Now(), Level: core.InfoLevel, Domain: "app", Message: "ready", Structured: core.StructXML})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := w.Flush(ctx); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	_ = pc.SetReadDeadline(time.Now().Add(5 * time.Second))
	buf := make([]byte, 2048)
	n, _, err := pc.ReadFrom(buf)
	if err != nil {
		t.Fatalf("ReadFrom() error = %v", err)
	}
	msg := string(buf[:n])
	if !strings.Contains(msg, "<domain>app</domain>") || !strings.Contains(msg, "<message>ready</message>") {
		t.Errorf("message %q is not the XML rendering", msg)
	}
}

func TestNew_BadFacility(t *testing.T) {
	_, err := New(Config{Network: "udp", Address: "127.0.0.1:514", Facility: "kitchen"})
	if !errors.Is(err, core.ErrConfiguration) {
		t.Errorf("New() error = %v, want ErrConfiguration", err)
	}
}

func TestParseFacility(t *testing.T) {
	f, err := parseFacility("LOCAL3")
	if err != nil || f != 19<<3 {
		t.Errorf("parseFacility(LOCAL3) = %d, %v", f, err)
	}
}
