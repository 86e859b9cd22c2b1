package logging

import (
	"encoding/xml"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/philipp01105/fastlogging/core"
	"github.com/philipp01105/fastlogging/writer"
	"github.com/philipp01105/fastlogging/writer/clientwriter"
	"github.com/philipp01105/fastlogging/writer/consolewriter"
	"github.com/philipp01105/fastlogging/writer/filewriter"
	"github.com/philipp01105/fastlogging/writer/serverwriter"
	"github.com/philipp01105/fastlogging/writer/syslogwriter"
)

// DefaultDomain is the domain used when none is configured
const DefaultDomain = "root"

// Config holds configuration for a Logging instance. It is also the
// document stored by SaveConfig and read by LoadConfig.
type Config struct {
	XMLName xml.Name `yaml:"-" json:"-" xml:"logging"`

	// Level is the global level. Records below it are rejected before
	// any writer is consulted.
	Level     core.Level     `yaml:"level" json:"level" xml:"level"`
	Domain    string         `yaml:"domain" json:"domain" xml:"domain"`
	LevelSyms core.LevelSyms `yaml:"level_syms" json:"level_syms" xml:"level_syms"`
	Ext       core.ExtConfig `yaml:"ext" json:"ext" xml:"ext"`

	Writers []WriterConfig `yaml:"writers" json:"writers" xml:"writers>writer"`

	// DrainTimeout bounds Shutdown(false) (default: 5s)
	DrainTimeout time.Duration `yaml:"drain_timeout,omitempty" json:"drain_timeout,omitempty" xml:"drain_timeout,omitempty"`

	// Diagnostics receives the engine's own messages (default: no-op)
	Diagnostics *zap.Logger `yaml:"-" json:"-" xml:"-"`
}

// WriterConfig describes one writer. Exactly one field is set.
type WriterConfig struct {
	Console *consolewriter.Config `yaml:"console,omitempty" json:"console,omitempty" xml:"console,omitempty"`
	File    *filewriter.Config    `yaml:"file,omitempty" json:"file,omitempty" xml:"file,omitempty"`
	Client  *clientwriter.Config  `yaml:"client,omitempty" json:"client,omitempty" xml:"client,omitempty"`
	Server  *serverwriter.Config  `yaml:"server,omitempty" json:"server,omitempty" xml:"server,omitempty"`
	Syslog  *syslogwriter.Config  `yaml:"syslog,omitempty" json:"syslog,omitempty" xml:"syslog,omitempty"`
}

// applyLoggingDefaults fills in zero-value fields with defaults.
func applyLoggingDefaults(cfg *Config) {
	if cfg.Domain == "" {
		cfg.Domain = DefaultDomain
	}
	if cfg.DrainTimeout == 0 {
		cfg.DrainTimeout = writer.DefaultDrainTimeout
	}
	if cfg.Diagnostics == nil {
		cfg.Diagnostics = zap.NewNop()
	}
}

func (wc WriterConfig) count() int {
	n := 0
	for _, set := range []bool{wc.Console != nil, wc.File != nil, wc.Client != nil, wc.Server != nil, wc.Syslog != nil} {
		if set {
			n++
		}
	}
	return n
}

// build creates the writer described by wc
func (wc WriterConfig) build(opts ...writer.Option) (writer.Writer, error) {
	if n := wc.count(); n != 1 {
		return nil, fmt.Errorf("%w: writer config must describe exactly one writer, got %d", core.ErrConfiguration, n)
	}
	switch {
	case wc.Console != nil:
		return consolewriter.New(*wc.Console, opts...)
	case wc.File != nil:
		return filewriter.New(*wc.File, opts...)
	case wc.Client != nil:
		return clientwriter.New(*wc.Client, opts...)
	case wc.Server != nil:
		return serverwriter.New(*wc.Server, opts...)
	default:
		return syslogwriter.New(*wc.Syslog, opts...)
	}
}

// describe returns the configuration of w. Writers that cannot be
// described, such as callback writers, return false.
func describe(w writer.Writer) (WriterConfig, bool) {
	switch w := w.(type) {
	case *consolewriter.Writer:
		cfg := w.Config()
		cfg.Stdout, cfg.Stderr = nil, nil
		return WriterConfig{Console: &cfg}, true
	case *filewriter.Writer:
		cfg := w.Config()
		return WriterConfig{File: &cfg}, true
	case *clientwriter.Writer:
		cfg := w.Config()
		return WriterConfig{Client: &cfg}, true
	case *serverwriter.Writer:
		cfg := w.Config()
		return WriterConfig{Server: &cfg}, true
	case *syslogwriter.Writer:
		cfg := w.Config()
		return WriterConfig{Syslog: &cfg}, true
	}
	return WriterConfig{}, false
}
