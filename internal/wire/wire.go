// Package wire implements the little-endian primitives, null-terminated
// strings, base64 codec, CRC-32 checksum, and IBT value encoding that every
// higher layer of the protocol is built on.
package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrTruncated is returned when a Reader runs out of bytes mid-field.
var ErrTruncated = errors.New("wire: truncated")

// Writer accumulates a packet body in wire byte order.
type Writer struct {
	buf bytes.Buffer
}

func NewWriter() *Writer { return &Writer{} }

func (w *Writer) Bytes() []byte { return w.buf.Bytes() }
func (w *Writer) Len() int      { return w.buf.Len() }

func (w *Writer) U8(v uint8)   { w.buf.WriteByte(v) }
func (w *Writer) U16(v uint16) { var b [2]byte; binary.LittleEndian.PutUint16(b[:], v); w.buf.Write(b[:]) }
func (w *Writer) U32(v uint32) { var b [4]byte; binary.LittleEndian.PutUint32(b[:], v); w.buf.Write(b[:]) }
func (w *Writer) U64(v uint64) { var b [8]byte; binary.LittleEndian.PutUint64(b[:], v); w.buf.Write(b[:]) }

func (w *Writer) Raw(b []byte) { w.buf.Write(b) }

// CString writes s followed by a NUL terminator.
func (w *Writer) CString(s string) {
	w.buf.WriteString(s)
	w.buf.WriteByte(0)
}

// Reader consumes a packet body in wire byte order.
type Reader struct {
	b   []byte
	pos int
}

func NewReader(b []byte) *Reader { return &Reader{b: b} }

func (r *Reader) Remaining() int { return len(r.b) - r.pos }

func (r *Reader) need(n int) error {
	if r.Remaining() < n {
		return fmt.Errorf("%w: need %d have %d", ErrTruncated, n, r.Remaining())
	}
	return nil
}

func (r *Reader) U8() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.b[r.pos]
	r.pos++
	return v, nil
}

func (r *Reader) U16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(r.b[r.pos:])
	r.pos += 2
	return v, nil
}

func (r *Reader) U32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.b[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *Reader) U64() (uint64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(r.b[r.pos:])
	r.pos += 8
	return v, nil
}

func (r *Reader) Raw(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	v := r.b[r.pos : r.pos+n]
	r.pos += n
	return v, nil
}

// CString reads up to and including the next NUL byte, returning the string
// without the terminator.
func (r *Reader) CString() (string, error) {
	idx := bytes.IndexByte(r.b[r.pos:], 0)
	if idx < 0 {
		return "", fmt.Errorf("%w: unterminated cstring", ErrTruncated)
	}
	s := string(r.b[r.pos : r.pos+idx])
	r.pos += idx + 1
	return s, nil
}
