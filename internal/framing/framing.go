// Package framing implements the textual frame envelope that wraps every
// packet payload on the wire: "!CPC"/"!CPD" magic, hex length, base64
// payload, hex CRC-32, trailing newline. See spec.md §4.2 and §6.
package framing

import (
	"bytes"
	"errors"
	"fmt"
	"log"

	"craftraw/internal/wire"
)

const (
	shortMagic = "!CPC"
	longMagic  = "!CPD"

	// maxShortPayload is the largest base64 payload a short (!CPC) frame
	// can carry: a 4-hex-digit length field tops out at 0xFFFF.
	maxShortPayload = 0xFFFF

	// HandshakeKind is the packet kind that always checksums the base64
	// domain regardless of the negotiated binary-checksum flag (spec.md §4.2).
	HandshakeKind = 6
)

// ErrChecksumMismatch is returned by Decode when the trailing CRC does not
// match. Per spec.md §7 the caller must treat this as "drop the frame
// silently, keep reading" rather than desynchronizing the stream — this
// error exists so callers can do exactly that without it looking like a
// fatal decode failure.
var ErrChecksumMismatch = errors.New("framing: checksum mismatch")

// ErrFrameTooLarge is returned by Encode when the payload exceeds the
// short-frame limit and long frames are not available (v1.0 path, or v1.1
// peer hasn't negotiated them). Per spec.md §9 this module refuses rather
// than silently truncating the 16-bit length field.
var ErrFrameTooLarge = errors.New("framing: payload exceeds 65535 bytes and long frames are unavailable")

// Options carries the capability flags that affect how a frame is built or
// interpreted. They mirror CapabilityFlags (spec.md §3).
type Options struct {
	LongFrames     bool // is_version_11 (any kind-6 observed)
	BinaryChecksum bool // CRC domain is pre-base64 octets, not base64 text
}

// Encode wraps payload (a raw binary packet body, kind byte included) into
// a textual frame ready to hand to Transport.send. kind is the packet kind
// byte at payload[0]; callers pass it explicitly so the handshake checksum
// special-case doesn't require re-parsing payload.
func Encode(payload []byte, kind byte, opts Options) (string, error) {
	b64 := wire.Base64Encode(payload)

	long := opts.LongFrames && len(b64) > maxShortPayload
	if len(b64) > maxShortPayload && !opts.LongFrames {
		return "", ErrFrameTooLarge
	}

	magic := shortMagic
	lenDigits := 4
	if long {
		magic = longMagic
		lenDigits = 12
	}

	checksumDomain := opts.BinaryChecksum
	if kind == HandshakeKind {
		checksumDomain = false
	}
	var crc uint32
	if checksumDomain {
		crc = wire.CRC32(payload)
	} else {
		crc = wire.CRC32([]byte(b64))
	}

	var buf bytes.Buffer
	buf.WriteString(magic)
	fmt.Fprintf(&buf, "%0*X", lenDigits, len(b64))
	buf.WriteString(b64)
	fmt.Fprintf(&buf, "%08X", crc)
	buf.WriteByte('\n')
	return buf.String(), nil
}

// Decode parses a single textual frame (trailing newline optional) and
// returns the decoded binary payload. On checksum mismatch it returns
// ErrChecksumMismatch; callers must treat that as "discard, keep reading",
// never as a reason to resync the byte stream (spec.md §7).
func Decode(frame []byte, opts Options) ([]byte, error) {
	frame = bytes.TrimRight(frame, "\n")

	idx := bytes.Index(frame, []byte(shortMagic[:3])) // scan for "!CP"
	if idx < 0 {
		return nil, fmt.Errorf("framing: no magic found")
	}
	frame = frame[idx:]
	if len(frame) < 4 {
		return nil, fmt.Errorf("framing: frame too short")
	}

	var lenDigits int
	switch frame[3] {
	case 'C':
		lenDigits = 4
	case 'D':
		lenDigits = 12
	default:
		return nil, fmt.Errorf("framing: unknown magic %q", frame[:4])
	}
	frame = frame[4:]

	if len(frame) < lenDigits {
		return nil, fmt.Errorf("framing: truncated length field")
	}
	var payloadLen int
	if _, err := fmt.Sscanf(string(frame[:lenDigits]), "%X", &payloadLen); err != nil {
		return nil, fmt.Errorf("framing: bad length field: %w", err)
	}
	frame = frame[lenDigits:]

	// spec.md §9: the source is lenient about stray newlines embedded in
	// long frames. Strip all of them before treating payloadLen as an
	// authoritative byte offset into what remains.
	clean := bytes.ReplaceAll(frame, []byte{'\n'}, nil)
	if len(clean) < payloadLen+8 {
		return nil, fmt.Errorf("framing: truncated body (have %d, want %d)", len(clean), payloadLen+8)
	}
	b64 := string(clean[:payloadLen])
	crcField := clean[payloadLen : payloadLen+8]

	var wantCRC uint32
	if _, err := fmt.Sscanf(string(crcField), "%X", &wantCRC); err != nil {
		return nil, fmt.Errorf("framing: bad checksum field: %w", err)
	}

	payload, err := wire.Base64Decode(b64)
	if err != nil {
		return nil, fmt.Errorf("framing: base64 decode: %w", err)
	}

	checksumDomain := opts.BinaryChecksum
	if len(payload) > 0 && payload[0] == HandshakeKind {
		checksumDomain = false
	}
	var gotCRC uint32
	if checksumDomain {
		gotCRC = wire.CRC32(payload)
	} else {
		gotCRC = wire.CRC32([]byte(b64))
	}
	if gotCRC != wantCRC {
		log.Printf("[FRAME] checksum mismatch: got %08X want %08X, dropping frame", gotCRC, wantCRC)
		return nil, ErrChecksumMismatch
	}
	return payload, nil
}
