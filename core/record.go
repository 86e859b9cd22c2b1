package core

import (
	"strconv"
	"time"

	"github.com/trickstertwo/xclock"
)

// Enrichment is a bit set of the optional process facts a Record carries.
type Enrichment uint8

const (
	WithHostname Enrichment = 1 << iota
	WithProcessName
	WithPID
	WithThreadName
	WithThreadID
)

// Has reports whether all bits of f are set in e
func (e Enrichment) Has(f Enrichment) bool {
	return e&f == f
}

// Record is a single log event. A Record is built once, before it is
// routed, and is never modified afterwards; every writer it is routed to
// reads the same instance.
type Record struct {
	Time    time.Time
	Level   Level
	Domain  string
	Message string

	Hostname    string
	ProcessName string
	PID         int
	ThreadName  string
	ThreadID    uint64
	Present     Enrichment

	// Structured and Syms describe how formatters render the record.
	Structured MessageStruct
	Syms       LevelSyms
}

// NewRecord builds a Record stamped with the current time and the process
// facts selected by ext. A nil ext attaches nothing. An empty thread name
// falls back to the goroutine id when ext asks for it.
func NewRecord(level Level, domain, message, thread string, ext *ExtConfig, syms LevelSyms) *Record {
	rec := &Record{
		Time:    xclock.Now(),
		Level:   level,
		Domain:  domain,
		Message: message,
		Syms:    syms,
	}
	if ext == nil {
		return rec
	}
	rec.Structured = ext.Structured
	if ext.Hostname || ext.ProcessName || ext.PID {
		p := Process()
		if ext.Hostname {
			rec.Hostname = p.Hostname
			rec.Present |= WithHostname
		}
		if ext.ProcessName {
			rec.ProcessName = p.Name
			rec.Present |= WithProcessName
		}
		if ext.PID {
			rec.PID = p.PID
			rec.Present |= WithPID
		}
	}
	if ext.ThreadID || (ext.ThreadName && thread == "") {
		id := GoroutineID()
		if ext.ThreadID {
			rec.ThreadID = id
			rec.Present |= WithThreadID
		}
		if thread == "" {
			thread = "goroutine-" + strconv.FormatUint(id, 10)
		}
	}
	if ext.ThreadName {
		rec.ThreadName = thread
		rec.Present |= WithThreadName
	}
	return rec
}

// Restyle returns a copy of r that is rendered with the given structure and
// level symbols. It is used for records received from remote peers.
func (r *Record) Restyle(structured MessageStruct, syms LevelSyms) *Record {
	if r.Structured == structured && r.Syms == syms {
		return r
	}
	c := *r
	c.Structured = structured
	c.Syms = syms
	return &c
}
