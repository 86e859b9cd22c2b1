package netproto

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/philipp01105/fastlogging/core"
)

// ProtocolVersion is announced in the client hello
const ProtocolVersion = 1

var magic = [4]byte{'F', 'L', 'O', 'G'}

const (
	statusOK        = 0x00
	statusChallenge = 0x01
	statusRejected  = 0xFF

	helloSize     = len(magic) + 2 + 16
	challengeSize = 32
	proofSize     = sha256.Size
)

var serverLabel = []byte("server")

func mac(key []byte, parts ...[]byte) []byte {
	h := hmac.New(sha256.New, key)
	for _, p := range parts {
		h.Write(p)
	}
	return h.Sum(nil)
}

// ClientHandshake announces id and the method of enc to the server and
// completes mutual authentication for keyed methods. A server configured
// with another method rejects the connection; there is no downgrade.
func ClientHandshake(rw io.ReadWriter, enc Encryption, id uuid.UUID) (*Session, error) {
	if err := enc.Validate(); err != nil {
		return nil, err
	}
	hello := make([]byte, 0, helloSize)
	hello = append(hello, magic[:]...)
	hello = append(hello, ProtocolVersion, byte(enc.Method))
	hello = append(hello, id[:]...)
	if _, err := rw.Write(hello); err != nil {
		return nil, err
	}

	status, err := readStatus(rw)
	if err != nil {
		return nil, err
	}
	switch status {
	case statusOK:
		if enc.Method != EncryptionNone {
			return nil, fmt.Errorf("%w: server skipped authentication", core.ErrProtocol)
		}
		return newSession(enc, id, nil)
	case statusChallenge:
		if enc.Method == EncryptionNone {
			return nil, fmt.Errorf("%w: unexpected challenge", core.ErrProtocol)
		}
	case statusRejected:
		return nil, fmt.Errorf("%w: handshake rejected by server", core.ErrProtocol)
	default:
		return nil, fmt.Errorf("%w: unknown handshake status %#x", core.ErrProtocol, status)
	}

	challenge := make([]byte, challengeSize)
	if _, err := io.ReadFull(rw, challenge); err != nil {
		return nil, err
	}
	if _, err := rw.Write(mac(enc.Key, challenge, id[:])); err != nil {
		return nil, err
	}

	if status, err = readStatus(rw); err != nil {
		return nil, err
	}
	if status != statusOK {
		return nil, fmt.Errorf("%w: authentication rejected by server", core.ErrProtocol)
	}
	proof := make([]byte, proofSize)
	if _, err := io.ReadFull(rw, proof); err != nil {
		return nil, err
	}
	if !hmac.Equal(proof, mac(enc.Key, serverLabel, challenge, id[:])) {
		return nil, fmt.Errorf("%w: server failed to authenticate", core.ErrProtocol)
	}
	return newSession(enc, id, challenge)
}

// ServerHandshake reads a client hello and authenticates the client with
// the method and key of enc. On failure the client is told so before the
// error is returned.
func ServerHandshake(rw io.ReadWriter, enc Encryption) (*Session, error) {
	hello := make([]byte, helloSize)
	if _, err := io.ReadFull(rw, hello); err != nil {
		return nil, err
	}
	if [4]byte(hello[:4]) != magic {
		return nil, fmt.Errorf("%w: bad magic", core.ErrProtocol)
	}
	if hello[4] != ProtocolVersion {
		reject(rw)
		return nil, fmt.Errorf("%w: unsupported protocol version %d", core.ErrProtocol, hello[4])
	}
	method := EncryptionMethod(hello[5])
	id, _ := uuid.FromBytes(hello[6:])
	if method != enc.Method {
		reject(rw)
		return nil, fmt.Errorf("%w: client %s asked for %s, server requires %s", core.ErrProtocol, id, method, enc.Method)
	}

	if enc.Method == EncryptionNone {
		if _, err := rw.Write([]byte{statusOK}); err != nil {
			return nil, err
		}
		return newSession(enc, id, nil)
	}

	challenge := make([]byte, challengeSize)
	if _, err := rand.Read(challenge); err != nil {
		return nil, err
	}
	if _, err := rw.Write(append([]byte{statusChallenge}, challenge...)); err != nil {
		return nil, err
	}
	proof := make([]byte, proofSize)
	if _, err := io.ReadFull(rw, proof); err != nil {
		return nil, err
	}
	if !hmac.Equal(proof, mac(enc.Key, challenge, id[:])) {
		reject(rw)
		return nil, fmt.Errorf("%w: client %s failed to authenticate", core.ErrProtocol, id)
	}
	reply := append([]byte{statusOK}, mac(enc.Key, serverLabel, challenge, id[:])...)
	if _, err := rw.Write(reply); err != nil {
		return nil, err
	}
	return newSession(enc, id, challenge)
}

func readStatus(r io.Reader) (byte, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, fmt.Errorf("%w: handshake aborted: %v", core.ErrProtocol, err)
	}
	return b[0], nil
}

func reject(w io.Writer) {
	_, _ = w.Write([]byte{statusRejected})
}
