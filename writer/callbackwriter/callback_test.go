package callbackwriter

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/philipp01105/fastlogging/core"
)

func TestWriter_CallsInOrder(t *testing.T) {
	var mu sync.Mutex
	var got []string
	w, err := New(Config{}, func(level core.Level, domain, message string) {
		mu.Lock()
		got = append(got, domain+"/"+level.String()+"/"+message)
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	w.Enqueue(&core.Record{Level: core.InfoLevel, Domain: "a", Message: "1"})
	w.Enqueue(&core.Record{Level: core.ErrorLevel, Domain: "b", Message: "2"})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := w.Flush(ctx); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	want := []string{"a/INFO/1", "b/ERROR/2"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestWriter_PanicIsCounted(t *testing.T) {
	w, err := New(Config{}, func(core.Level, string, string) { panic("boom") })
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	w.Enqueue(&core.Record{Level: core.InfoLevel})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := w.Flush(ctx); !errors.Is(err, core.ErrTransientIO) {
		t.Errorf("Flush() error = %v, want ErrTransientIO", err)
	}
	if s := w.Stats(); s.ErrorsTotal != 1 || s.ProcessedTotal != 0 {
		t.Errorf("Stats() = %+v", s)
	}
}

func TestNew_NilFunc(t *testing.T) {
	if _, err := New(Config{}, nil); !errors.Is(err, core.ErrConfiguration) {
		t.Errorf("New(nil) error = %v, want ErrConfiguration", err)
	}
}
