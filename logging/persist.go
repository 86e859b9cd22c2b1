package logging

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/philipp01105/fastlogging/core"
	"github.com/philipp01105/fastlogging/netproto"
)

// MaxConfigSize is the largest configuration file LoadConfig reads
const MaxConfigSize = 64 * 1024

// KeysSuffix is appended to a configuration path to name its key file
const KeysSuffix = ".keys"

type format int

const (
	formatYAML format = iota
	formatJSON
	formatXML
)

func formatOf(path string) (format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return formatYAML, nil
	case ".json":
		return formatJSON, nil
	case ".xml":
		return formatXML, nil
	}
	return 0, fmt.Errorf("%w: unknown configuration format %q", core.ErrConfiguration, filepath.Ext(path))
}

func marshal(cfg Config, f format) ([]byte, error) {
	switch f {
	case formatJSON:
		data, err := json.MarshalIndent(cfg, "", "  ")
		return append(data, '\n'), err
	case formatXML:
		data, err := xml.MarshalIndent(cfg, "", "  ")
		return append(data, '\n'), err
	default:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return nil, err
		}
		err := enc.Close()
		return buf.Bytes(), err
	}
}

func unmarshal(data []byte, f format, cfg *Config) error {
	switch f {
	case formatJSON:
		return json.Unmarshal(data, cfg)
	case formatXML:
		return xml.Unmarshal(data, cfg)
	default:
		return yaml.Unmarshal(data, cfg)
	}
}

// EncodeConfig renders cfg in the format selected by a file extension
// such as ".yaml", ".json" or ".xml". Keys are not included.
func EncodeConfig(cfg Config, ext string) ([]byte, error) {
	f, err := formatOf("config" + ext)
	if err != nil {
		return nil, err
	}
	return marshal(cfg, f)
}

// ConfigDocument returns the configuration of l as it is now. Callback
// writers are not part of it. Keys are present in the returned value but
// never serialized.
func (l *Logging) ConfigDocument() Config {
	cfg := Config{
		Level:        l.Level(),
		Domain:       l.Domain(),
		LevelSyms:    l.LevelSyms(),
		Ext:          l.ExtConfig(),
		DrainTimeout: l.drainTimeout,
	}
	for _, w := range l.Writers() {
		if wc, ok := describe(w); ok {
			cfg.Writers = append(cfg.Writers, wc)
		}
	}
	return cfg
}

// GetConfigString returns the configuration of l as YAML
func (l *Logging) GetConfigString() (string, error) {
	if l.closed.Load() {
		return "", core.ErrClosed
	}
	data, err := marshal(l.ConfigDocument(), formatYAML)
	return string(data), err
}

// SaveConfig writes the configuration of l to path. The format follows
// the extension: .yaml, .yml, .json or .xml. Keys are not written; see
// SaveKeys.
func (l *Logging) SaveConfig(path string) error {
	if l.closed.Load() {
		return core.ErrClosed
	}
	f, err := formatOf(path)
	if err != nil {
		return err
	}
	data, err := marshal(l.ConfigDocument(), f)
	if err != nil {
		return err
	}
	return writeFileAtomic(path, data, 0o644)
}

// keyEntry is one record of a key file
type keyEntry struct {
	Method netproto.EncryptionMethod `yaml:"method"`
	Key    string                    `yaml:"key"`
}

// SaveKeys writes the keys of all client and server writers to the key
// file of the configuration at path, readable by the owner only.
// LoadConfig picks the file up.
func (l *Logging) SaveKeys(path string) error {
	if l.closed.Load() {
		return core.ErrClosed
	}
	keys := make(map[string]keyEntry)
	for _, wc := range l.ConfigDocument().Writers {
		switch {
		case wc.Client != nil && len(wc.Client.Key) > 0:
			key := core.WriterKey{Kind: core.KindClient, Address: wc.Client.Address}
			keys[key.String()] = keyEntry{wc.Client.Encryption, base64.StdEncoding.EncodeToString(wc.Client.Key)}
		case wc.Server != nil && len(wc.Server.Key) > 0:
			key := core.WriterKey{Kind: core.KindServer, Address: wc.Server.Address}
			keys[key.String()] = keyEntry{wc.Server.Encryption, base64.StdEncoding.EncodeToString(wc.Server.Key)}
		}
	}
	data, err := yaml.Marshal(keys)
	if err != nil {
		return err
	}
	return writeFileAtomic(path+KeysSuffix, data, 0o600)
}

// writeFileAtomic replaces path with data so readers never see a partial
// file.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func readLimited(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > MaxConfigSize {
		return nil, fmt.Errorf("%w: %s is larger than %d bytes", core.ErrConfiguration, path, MaxConfigSize)
	}
	return os.ReadFile(path)
}

// LoadConfig reads a configuration written by SaveConfig. When the key
// file written by SaveKeys exists next to it, the keys are filled in.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	f, err := formatOf(path)
	if err != nil {
		return cfg, err
	}
	data, err := readLimited(path)
	if err != nil {
		return cfg, fmt.Errorf("%w: %w", core.ErrConfiguration, err)
	}
	if err := unmarshal(data, f, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: %s: %w", core.ErrConfiguration, path, err)
	}
	if err := loadKeys(path+KeysSuffix, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func loadKeys(path string, cfg *Config) error {
	data, err := readLimited(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %w", core.ErrConfiguration, err)
	}
	var keys map[string]keyEntry
	if err := yaml.Unmarshal(data, &keys); err != nil {
		return fmt.Errorf("%w: %s: %w", core.ErrConfiguration, path, err)
	}
	lookup := func(key core.WriterKey, method netproto.EncryptionMethod) ([]byte, error) {
		e, ok := keys[key.String()]
		if !ok || e.Method != method {
			return nil, nil
		}
		b, err := base64.StdEncoding.DecodeString(e.Key)
		if err != nil {
			return nil, fmt.Errorf("%w: key of %s: %w", core.ErrConfiguration, key, err)
		}
		return b, nil
	}
	for _, wc := range cfg.Writers {
		switch {
		case wc.Client != nil && len(wc.Client.Key) == 0:
			if wc.Client.Key, err = lookup(core.WriterKey{Kind: core.KindClient, Address: wc.Client.Address}, wc.Client.Encryption); err != nil {
				return err
			}
		case wc.Server != nil && len(wc.Server.Key) == 0:
			if wc.Server.Key, err = lookup(core.WriterKey{Kind: core.KindServer, Address: wc.Server.Address}, wc.Server.Encryption); err != nil {
				return err
			}
		}
	}
	return nil
}

// NewFromFile creates a Logging instance from a configuration file
func NewFromFile(path string) (*Logging, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return New(cfg)
}
