package syslogwriter

import (
	"fmt"
	"strings"
	"time"

	"github.com/philipp01105/fastlogging/core"
	"github.com/philipp01105/fastlogging/writer"
)

// Config holds configuration for the syslog writer
type Config struct {
	Level core.Level `yaml:"level" json:"level" xml:"level"`
	// Network and Address select a remote daemon ("udp", "host:514").
	// Both empty means the local daemon.
	Network string `yaml:"network,omitempty" json:"network,omitempty" xml:"network,omitempty"`
	Address string `yaml:"address,omitempty" json:"address,omitempty" xml:"address,omitempty"`
	// Facility is a facility name such as "user", "daemon" or "local0" (default: user)
	Facility string `yaml:"facility,omitempty" json:"facility,omitempty" xml:"facility,omitempty"`
	// Tag prefixes every message (default: the executable name)
	Tag string `yaml:"tag,omitempty" json:"tag,omitempty" xml:"tag,omitempty"`
	// BufferSize is the size of the queue (default: 1000)
	BufferSize int `yaml:"buffer_size,omitempty" json:"buffer_size,omitempty" xml:"buffer_size,omitempty"`
	// DrainTimeout is the timeout for draining the queue on Close (default: 5s)
	DrainTimeout time.Duration `yaml:"drain_timeout,omitempty" json:"drain_timeout,omitempty" xml:"drain_timeout,omitempty"`
}

func applySyslogDefaults(cfg *Config) {
	if cfg.Facility == "" {
		cfg.Facility = "user"
	}
	if cfg.Tag == "" {
		cfg.Tag = core.Process().Name
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1000
	}
	if cfg.DrainTimeout == 0 {
		cfg.DrainTimeout = writer.DefaultDrainTimeout
	}
}

// facilities maps names to facility codes, already shifted into place
var facilities = map[string]int{
	"kern": 0 << 3, "user": 1 << 3, "mail": 2 << 3, "daemon": 3 << 3,
	"auth": 4 << 3, "syslog": 5 << 3, "lpr": 6 << 3, "news": 7 << 3,
	"uucp": 8 << 3, "cron": 9 << 3, "authpriv": 10 << 3, "ftp": 11 << 3,
	"local0": 16 << 3, "local1": 17 << 3, "local2": 18 << 3, "local3": 19 << 3,
	"local4": 20 << 3, "local5": 21 << 3, "local6": 22 << 3, "local7": 23 << 3,
}

func parseFacility(name string) (int, error) {
	f, ok := facilities[strings.ToLower(name)]
	if !ok {
		return 0, fmt.Errorf("%w: unknown syslog facility %q", core.ErrConfiguration, name)
	}
	return f, nil
}

// Severity is a syslog severity
type Severity int

const (
	SevEmerg Severity = iota
	SevAlert
	SevCrit
	SevErr
	SevWarning
	SevNotice
	SevInfo
	SevDebug
)

// SeverityOf maps a level to the syslog severity it is sent with
func SeverityOf(l core.Level) Severity {
	switch l.Canonical() {
	case core.NoLogLevel, core.ExceptionLevel:
		return SevAlert
	case core.CriticalLevel:
		return SevCrit
	case core.ErrorLevel:
		return SevErr
	case core.WarningLevel:
		return SevWarning
	case core.SuccessLevel:
		return SevNotice
	case core.InfoLevel:
		return SevInfo
	default:
		return SevDebug
	}
}
