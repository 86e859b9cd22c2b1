package core

import (
	"fmt"
	"strings"
)

// WriterKind identifies the type of a destination.
type WriterKind uint8

const (
	KindConsole WriterKind = iota + 1
	KindFile
	KindClient
	KindServer
	KindSyslog
	KindCallback
)

var kindNames = map[WriterKind]string{
	KindConsole:  "console",
	KindFile:     "file",
	KindClient:   "client",
	KindServer:   "server",
	KindSyslog:   "syslog",
	KindCallback: "callback",
}

func (k WriterKind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler
func (k WriterKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (k *WriterKind) UnmarshalText(text []byte) error {
	s := strings.ToLower(string(text))
	for kind, name := range kindNames {
		if name == s {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("%w: unknown writer kind %q", ErrConfiguration, text)
}

// WriterKey identifies a writer inside a Logging instance. Address is only
// set for client and server writers.
type WriterKey struct {
	Kind    WriterKind
	Address string
}

func (k WriterKey) String() string {
	if k.Address == "" {
		return k.Kind.String()
	}
	return k.Kind.String() + "(" + k.Address + ")"
}
