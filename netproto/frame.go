package netproto

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/philipp01105/fastlogging/core"
)

// FrameType tags the payload of a frame
type FrameType uint8

const (
	// FrameRecord carries one encoded record
	FrameRecord FrameType = 1
	// FramePing keeps an idle connection alive
	FramePing FrameType = 2
)

// MaxFrameSize bounds the payload of a single frame
const MaxFrameSize = 1 << 20

const frameHeaderSize = 5

// writeFrame writes a 4 byte big endian length, the type byte and payload
// with a single Write call. buf is scratch space and is returned grown.
func writeFrame(w io.Writer, buf []byte, typ FrameType, payload []byte) ([]byte, error) {
	if len(payload) > MaxFrameSize {
		return buf, fmt.Errorf("%w: frame of %d bytes exceeds %d", core.ErrProtocol, len(payload), MaxFrameSize)
	}
	buf = binary.BigEndian.AppendUint32(buf[:0], uint32(len(payload)+1))
	buf = append(buf, byte(typ))
	buf = append(buf, payload...)
	_, err := w.Write(buf)
	return buf, err
}

// readFrame reads one frame into buf, growing it when needed.
func readFrame(r io.Reader, buf []byte) (FrameType, []byte, []byte, error) {
	var hdr [frameHeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return 0, nil, buf, err
	}
	n := binary.BigEndian.Uint32(hdr[:4])
	if n == 0 || n-1 > MaxFrameSize {
		return 0, nil, buf, fmt.Errorf("%w: invalid frame length %d", core.ErrProtocol, n)
	}
	size := int(n - 1)
	if cap(buf) < size {
		buf = make([]byte, size)
	}
	buf = buf[:size]
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, nil, buf, err
	}
	return FrameType(hdr[4]), buf, buf, nil
}
