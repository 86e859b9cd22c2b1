//go:build windows || plan9

package syslogwriter

import (
	"context"
	"fmt"

	"github.com/philipp01105/fastlogging/core"
	"github.com/philipp01105/fastlogging/writer"
)

// Writer is not available on this platform; New always fails.
type Writer struct {
	writer.Base
	cfg Config
}

// New always fails on this platform
func New(cfg Config, opts ...writer.Option) (*Writer, error) {
	return nil, fmt.Errorf("%w: syslog is not available on this platform", core.ErrConfiguration)
}

func (w *Writer) Config() Config              { return w.cfg }
func (w *Writer) Enqueue(*core.Record)        {}
func (w *Writer) Flush(context.Context) error { return nil }
func (w *Writer) Discard()                    {}
func (w *Writer) Close() error                { return nil }
