package logging

import (
	"fmt"
	"os"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/philipp01105/fastlogging/core"
)

// ConfigEnv names the environment variable holding the path of the
// configuration file picked up by DefaultConfigFile.
const ConfigEnv = "FASTLOGGING_CONFIG_FILE"

// defaultConfigNames are looked up in the working directory, in order
var defaultConfigNames = []string{"fastlogging.json", "fastlogging.yaml", "fastlogging.xml"}

// MergeMode selects how Merge combines a configuration with a running
// instance.
type MergeMode int

const (
	// ReplaceAll takes every setting from the configuration and replaces
	// all writers, callback writers included.
	ReplaceAll MergeMode = iota
	// MergeNew applies the settings present in the configuration and adds
	// the writers whose key is not in use yet.
	MergeNew
	// MergeReplace is MergeNew, except that a writer whose key is in use
	// replaces the existing one.
	MergeReplace
)

func (m MergeMode) String() string {
	switch m {
	case ReplaceAll:
		return "replace"
	case MergeNew:
		return "merge"
	case MergeReplace:
		return "merge_replace"
	}
	return fmt.Sprintf("MergeMode(%d)", int(m))
}

// DefaultConfigFile returns the configuration file used by default: the
// file named by $FASTLOGGING_CONFIG_FILE when it exists and has a known
// extension, otherwise the first of fastlogging.json, fastlogging.yaml
// and fastlogging.xml found in the working directory.
func DefaultConfigFile() (string, bool) {
	if path := os.Getenv(ConfigEnv); path != "" {
		if _, err := formatOf(path); err == nil && isFile(path) {
			return path, true
		}
	}
	for _, name := range defaultConfigNames {
		if isFile(name) {
			return name, true
		}
	}
	return "", false
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// key returns the key the writer described by wc will be registered under
func (wc WriterConfig) key() (core.WriterKey, error) {
	if n := wc.count(); n != 1 {
		return core.WriterKey{}, fmt.Errorf("%w: writer config must describe exactly one writer, got %d", core.ErrConfiguration, n)
	}
	switch {
	case wc.Console != nil:
		return core.WriterKey{Kind: core.KindConsole}, nil
	case wc.File != nil:
		return core.WriterKey{Kind: core.KindFile}, nil
	case wc.Client != nil:
		return core.WriterKey{Kind: core.KindClient, Address: wc.Client.Address}, nil
	case wc.Server != nil:
		return core.WriterKey{Kind: core.KindServer, Address: wc.Server.Address}, nil
	default:
		return core.WriterKey{Kind: core.KindSyslog}, nil
	}
}

// Merge applies cfg to the running instance as selected by mode. The
// DrainTimeout and Diagnostics of cfg are ignored. Writers that cannot be
// created are skipped and their errors returned together; the others are
// still applied.
func (l *Logging) Merge(cfg Config, mode MergeMode) error {
	if l.closed.Load() {
		return core.ErrClosed
	}

	var err error
	if mode == ReplaceAll {
		if cfg.Domain == "" {
			cfg.Domain = DefaultDomain
		}
		err = multierr.Combine(
			l.SetLevel(cfg.Level),
			l.SetDomain(cfg.Domain),
			l.SetLevelSyms(cfg.LevelSyms),
			l.SetExtConfig(cfg.Ext),
		)
		l.mu.RLock()
		keys := append([]core.WriterKey(nil), l.order...)
		l.mu.RUnlock()
		for _, key := range keys {
			err = multierr.Append(err, l.RemoveWriter(key))
		}
	} else {
		if cfg.Level != core.NotSetLevel {
			err = multierr.Append(err, l.SetLevel(cfg.Level))
		}
		if cfg.Domain != "" {
			err = multierr.Append(err, l.SetDomain(cfg.Domain))
		}
		if cfg.LevelSyms != core.SymsStr {
			err = multierr.Append(err, l.SetLevelSyms(cfg.LevelSyms))
		}
		if cfg.Ext != (core.ExtConfig{}) {
			err = multierr.Append(err, l.SetExtConfig(cfg.Ext))
		}
	}

	for _, wc := range cfg.Writers {
		key, kerr := wc.key()
		if kerr != nil {
			err = multierr.Append(err, kerr)
			continue
		}
		if _, werr := l.Writer(key); werr == nil {
			if mode == MergeNew {
				l.diag.Debug("merge keeps existing writer", zap.Stringer("writer", key))
				continue
			}
			// The writer is gone even when closing it fails.
			err = multierr.Append(err, l.RemoveWriter(key))
		}
		if _, aerr := l.AddWriterConfig(wc); aerr != nil {
			err = multierr.Append(err, aerr)
		}
	}
	return err
}

// MergeFile loads the configuration at path and merges it with mode
func (l *Logging) MergeFile(path string, mode MergeMode) error {
	cfg, err := LoadConfig(path)
	if err != nil {
		return err
	}
	return l.Merge(cfg, mode)
}
