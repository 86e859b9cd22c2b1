package writer

import (
	"time"

	"go.uber.org/zap"
)

// DefaultDrainTimeout bounds how long Close waits for queued records
const DefaultDrainTimeout = 5 * time.Second

// Options carries the collaborators a writer is constructed with.
type Options struct {
	// Diagnostics receives the engine's own messages: reconnects,
	// rotation failures, rejected handshakes. Defaults to a no-op logger.
	Diagnostics *zap.Logger
	// Dispatcher receives records read from remote peers (server writers)
	Dispatcher Dispatcher
}

// Option configures Options
type Option func(*Options)

// WithDiagnostics sets the logger for internal diagnostics
func WithDiagnostics(l *zap.Logger) Option {
	return func(o *Options) {
		o.Diagnostics = l
	}
}

// WithDispatcher sets the dispatcher for records received from peers
func WithDispatcher(d Dispatcher) Option {
	return func(o *Options) {
		o.Dispatcher = d
	}
}

// NewOptions applies opts over the defaults
func NewOptions(opts ...Option) Options {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	if o.Diagnostics == nil {
		o.Diagnostics = zap.NewNop()
	}
	return o
}
