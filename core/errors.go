package core

import "errors"

// Error kinds. Concrete errors wrap one of these so callers can classify
// them with errors.Is.
var (
	// ErrConfiguration reports a bad parameter, a failed bind or an
	// unopenable path. Returned synchronously from constructors.
	ErrConfiguration = errors.New("configuration error")
	// ErrTransientIO reports a failed write, send or flush. It is counted
	// by the writer and surfaced through Flush.
	ErrTransientIO = errors.New("transient I/O error")
	// ErrProtocol reports a failed handshake, an authentication mismatch
	// or a malformed frame.
	ErrProtocol = errors.New("protocol error")
	// ErrCapacity reports records dropped because a queue was full.
	ErrCapacity = errors.New("queue capacity exceeded")

	ErrInvalidLevel   = errors.New("invalid level")
	ErrWriterExists   = errors.New("writer already exists")
	ErrWriterNotFound = errors.New("writer not found")
	ErrClosed         = errors.New("logging is shut down")
	ErrTimeout        = errors.New("sync timed out")
	ErrUnsupported    = errors.New("operation not supported by writer")
)
