package core

import (
	"fmt"
	"strings"
)

// MessageStruct selects the layout of a formatted record.
type MessageStruct uint8

const (
	// StructString renders a single text line (default)
	StructString MessageStruct = iota
	// StructJSON renders one JSON object per line
	StructJSON
	// StructXML renders one XML element per line
	StructXML
)

func (m MessageStruct) String() string {
	switch m {
	case StructJSON:
		return "json"
	case StructXML:
		return "xml"
	default:
		return "string"
	}
}

// MarshalText implements encoding.TextMarshaler
func (m MessageStruct) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (m *MessageStruct) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "", "string":
		*m = StructString
	case "json":
		*m = StructJSON
	case "xml":
		*m = StructXML
	default:
		return fmt.Errorf("%w: unknown message structure %q", ErrConfiguration, text)
	}
	return nil
}

// ExtConfig controls the structuring mode and which process facts are
// attached to every record built afterwards.
type ExtConfig struct {
	Structured  MessageStruct `yaml:"structured" json:"structured" xml:"structured"`
	Hostname    bool          `yaml:"hostname" json:"hostname" xml:"hostname"`
	ProcessName bool          `yaml:"pname" json:"pname" xml:"pname"`
	PID         bool          `yaml:"pid" json:"pid" xml:"pid"`
	ThreadName  bool          `yaml:"tname" json:"tname" xml:"tname"`
	ThreadID    bool          `yaml:"tid" json:"tid" xml:"tid"`
}
