package netproto

import (
	"crypto/rand"
	"fmt"
	"strings"

	"github.com/philipp01105/fastlogging/core"
)

// EncryptionMethod selects how a client and a server authenticate each
// other and protect the stream.
type EncryptionMethod uint8

const (
	// EncryptionNone sends records in clear text without authentication
	EncryptionNone EncryptionMethod = iota
	// EncryptionAuthKey authenticates both peers with a shared token
	EncryptionAuthKey
	// EncryptionAES authenticates both peers with a shared 256 bit key
	EncryptionAES
)

// AESKeySize is the required key length for EncryptionAES
const AESKeySize = 32

func (m EncryptionMethod) String() string {
	switch m {
	case EncryptionNone:
		return "NONE"
	case EncryptionAuthKey:
		return "AuthKey"
	case EncryptionAES:
		return "AES"
	default:
		return "UNKNOWN"
	}
}

// MarshalText implements encoding.TextMarshaler
func (m EncryptionMethod) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (m *EncryptionMethod) UnmarshalText(text []byte) error {
	switch strings.ToUpper(string(text)) {
	case "", "NONE":
		*m = EncryptionNone
	case "AUTHKEY":
		*m = EncryptionAuthKey
	case "AES":
		*m = EncryptionAES
	default:
		return fmt.Errorf("%w: unknown encryption method %q", core.ErrConfiguration, text)
	}
	return nil
}

// Encryption holds a method and its secret.
type Encryption struct {
	Method EncryptionMethod
	Key    []byte
}

// Validate checks that the key fits the method
func (e Encryption) Validate() error {
	switch e.Method {
	case EncryptionNone:
		return nil
	case EncryptionAuthKey:
		if len(e.Key) == 0 {
			return fmt.Errorf("%w: AuthKey requires a non-empty key", core.ErrConfiguration)
		}
		return nil
	case EncryptionAES:
		if len(e.Key) != AESKeySize {
			return fmt.Errorf("%w: AES requires a %d byte key, got %d", core.ErrConfiguration, AESKeySize, len(e.Key))
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown encryption method %d", core.ErrConfiguration, e.Method)
	}
}

// CreateRandomKey returns a fresh random key suitable for m. It returns
// nil for EncryptionNone.
func CreateRandomKey(m EncryptionMethod) ([]byte, error) {
	switch m {
	case EncryptionNone:
		return nil, nil
	case EncryptionAuthKey, EncryptionAES:
		key := make([]byte, AESKeySize)
		if _, err := rand.Read(key); err != nil {
			return nil, err
		}
		return key, nil
	default:
		return nil, fmt.Errorf("%w: unknown encryption method %d", core.ErrConfiguration, m)
	}
}
