package netproto

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/philipp01105/fastlogging/core"
)

// MaxRecordSize bounds an encoded record so that it still fits a sealed frame
const MaxRecordSize = MaxFrameSize - 64

// AppendRecord appends the wire encoding of rec to dst:
//
//	level u8 | present u8 | unix nanos i64 | domain | message | enrichment
//
// Strings are uvarint length prefixed. Only the enrichment fields flagged
// in rec.Present follow, in the order hostname, pname, pid, tname, tid.
// The rendering style of the record is not sent; the receiving side
// applies its own.
func AppendRecord(dst []byte, rec *core.Record) ([]byte, error) {
	start := len(dst)
	dst = append(dst, byte(rec.Level), byte(rec.Present))
	dst = binary.BigEndian.AppendUint64(dst, uint64(rec.Time.UnixNano()))
	dst = appendString(dst, rec.Domain)
	dst = appendString(dst, rec.Message)
	if rec.Present.Has(core.WithHostname) {
		dst = appendString(dst, rec.Hostname)
	}
	if rec.Present.Has(core.WithProcessName) {
		dst = appendString(dst, rec.ProcessName)
	}
	if rec.Present.Has(core.WithPID) {
		dst = binary.AppendUvarint(dst, uint64(rec.PID))
	}
	if rec.Present.Has(core.WithThreadName) {
		dst = appendString(dst, rec.ThreadName)
	}
	if rec.Present.Has(core.WithThreadID) {
		dst = binary.AppendUvarint(dst, rec.ThreadID)
	}
	if len(dst)-start > MaxRecordSize {
		return dst[:start], fmt.Errorf("%w: encoded record of %d bytes exceeds %d", core.ErrProtocol, len(dst)-start, MaxRecordSize)
	}
	return dst, nil
}

func appendString(dst []byte, s string) []byte {
	dst = binary.AppendUvarint(dst, uint64(len(s)))
	return append(dst, s...)
}

// DecodeRecord parses a record produced by AppendRecord. The result does
// not reference b.
func DecodeRecord(b []byte) (*core.Record, error) {
	d := decoder{b: b}
	rec := &core.Record{}
	rec.Level = core.Level(d.u8())
	rec.Present = core.Enrichment(d.u8())
	rec.Time = time.Unix(0, int64(d.u64())).UTC()
	rec.Domain = d.str()
	rec.Message = d.str()
	if rec.Present.Has(core.WithHostname) {
		rec.Hostname = d.str()
	}
	if rec.Present.Has(core.WithProcessName) {
		rec.ProcessName = d.str()
	}
	if rec.Present.Has(core.WithPID) {
		rec.PID = int(d.uvarint())
	}
	if rec.Present.Has(core.WithThreadName) {
		rec.ThreadName = d.str()
	}
	if rec.Present.Has(core.WithThreadID) {
		rec.ThreadID = d.uvarint()
	}
	if d.err != nil {
		return nil, d.err
	}
	if len(d.b) != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes after record", core.ErrProtocol, len(d.b))
	}
	return rec, nil
}

var errTruncated = fmt.Errorf("%w: truncated record", core.ErrProtocol)

type decoder struct {
	b   []byte
	err error
}

func (d *decoder) u8() byte {
	if d.err != nil || len(d.b) < 1 {
		d.err = errTruncated
		return 0
	}
	v := d.b[0]
	d.b = d.b[1:]
	return v
}

func (d *decoder) u64() uint64 {
	if d.err != nil || len(d.b) < 8 {
		d.err = errTruncated
		return 0
	}
	v := binary.BigEndian.Uint64(d.b)
	d.b = d.b[8:]
	return v
}

func (d *decoder) uvarint() uint64 {
	if d.err != nil {
		return 0
	}
	v, n := binary.Uvarint(d.b)
	if n <= 0 {
		d.err = errTruncated
		return 0
	}
	d.b = d.b[n:]
	return v
}

func (d *decoder) str() string {
	n := d.uvarint()
	if d.err != nil {
		return ""
	}
	if uint64(len(d.b)) < n {
		d.err = errTruncated
		return ""
	}
	s := string(d.b[:n])
	d.b = d.b[n:]
	return s
}
