package netproto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/philipp01105/fastlogging/core"
)

var additionalData = []byte("FastLogging")

// Session frames the stream of an established connection. For keyed
// methods every payload is sealed with AES-256-GCM under a key derived for
// this connection only. The frame type and a per-direction sequence number
// are authenticated with the payload, so frames cannot be retyped,
// replayed or reordered. A Session is not safe for concurrent use; a
// connection has one writing and one reading goroutine at most, and they
// use separate buffers.
type Session struct {
	method EncryptionMethod
	peer   uuid.UUID
	aead   cipher.AEAD

	wseq uint64
	rseq uint64

	wbuf    []byte
	sealBuf []byte
	waad    []byte
	rbuf    []byte
	openBuf []byte
	raad    []byte
}

// aad appends the authenticated data of a frame to buf
func aad(buf []byte, typ FrameType, seq uint64) []byte {
	buf = append(buf[:0], additionalData...)
	buf = append(buf, byte(typ))
	return binary.BigEndian.AppendUint64(buf, seq)
}

func newSession(enc Encryption, peer uuid.UUID, challenge []byte) (*Session, error) {
	s := &Session{method: enc.Method, peer: peer}
	if enc.Method == EncryptionNone {
		return s, nil
	}
	block, err := aes.NewCipher(mac(enc.Key, []byte("session"), challenge))
	if err != nil {
		return nil, err
	}
	s.aead, err = cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Method returns the encryption method the session was negotiated with
func (s *Session) Method() EncryptionMethod { return s.method }

// Peer returns the client id announced in the handshake
func (s *Session) Peer() uuid.UUID { return s.peer }

// WriteFrame seals payload if needed and writes it as one frame
func (s *Session) WriteFrame(w io.Writer, typ FrameType, payload []byte) error {
	if s.aead != nil {
		nonce := make([]byte, s.aead.NonceSize())
		if _, err := rand.Read(nonce); err != nil {
			return err
		}
		s.waad = aad(s.waad, typ, s.wseq)
		s.sealBuf = s.aead.Seal(append(s.sealBuf[:0], nonce...), nonce, payload, s.waad)
		s.wseq++
		payload = s.sealBuf
	}
	var err error
	s.wbuf, err = writeFrame(w, s.wbuf, typ, payload)
	return err
}

// ReadFrame reads one frame and opens it if needed. The returned payload
// is valid until the next call.
func (s *Session) ReadFrame(r io.Reader) (FrameType, []byte, error) {
	typ, payload, buf, err := readFrame(r, s.rbuf)
	s.rbuf = buf
	if err != nil {
		return 0, nil, err
	}
	if s.aead == nil {
		return typ, payload, nil
	}
	ns := s.aead.NonceSize()
	if len(payload) < ns+s.aead.Overhead() {
		return 0, nil, fmt.Errorf("%w: sealed frame too short", core.ErrProtocol)
	}
	s.raad = aad(s.raad, typ, s.rseq)
	s.openBuf, err = s.aead.Open(s.openBuf[:0], payload[:ns], payload[ns:], s.raad)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: cannot open frame %d: %v", core.ErrProtocol, s.rseq, err)
	}
	s.rseq++
	return typ, s.openBuf, nil
}
