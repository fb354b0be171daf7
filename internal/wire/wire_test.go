package wire

import (
	"bytes"
	"testing"
)

func TestCRC32Reference(t *testing.T) {
	got := CRC32([]byte("123456789"))
	const want = 0xCBF43926
	if got != want {
		t.Fatalf("CRC32(123456789) = %#x, want %#x", got, want)
	}
}

func TestBase64RoundTrip(t *testing.T) {
	for n := 0; n < 16; n++ {
		b := make([]byte, n)
		for i := range b {
			b[i] = byte(i*7 + 1)
		}
		enc := Base64Encode(b)
		switch n % 3 {
		case 1:
			if len(enc) < 2 || enc[len(enc)-2:] != "==" {
				t.Fatalf("n=%d: expected == padding, got %q", n, enc)
			}
		case 2:
			if len(enc) < 1 || enc[len(enc)-1] != '=' || (len(enc) >= 2 && enc[len(enc)-2] == '=') {
				t.Fatalf("n=%d: expected single = padding, got %q", n, enc)
			}
		}
		dec, err := Base64Decode(enc)
		if err != nil {
			t.Fatalf("n=%d: decode error: %v", n, err)
		}
		if !bytes.Equal(dec, b) {
			t.Fatalf("n=%d: round trip mismatch: got %v want %v", n, dec, b)
		}
	}
}

func TestBase64LenientTrailingGroup(t *testing.T) {
	// A well-formed 2-leftover-byte group is 3 chars + "=". Tolerate a
	// caller handing us only the first 2 chars (lossy, per spec.md §9).
	full := Base64Encode([]byte{0xAB, 0xCD, 0xEF, 0x01, 0x02})
	// full has length 8, ending in a 3-char group plus "="; chop the pad
	// and one char before it to simulate a short 2-char trailing group.
	short := full[:len(full)-2]
	if _, err := Base64Decode(short); err != nil {
		t.Fatalf("expected lenient decode of short trailing group, got %v", err)
	}
}

func TestWireIntegers(t *testing.T) {
	w := NewWriter()
	w.U8(0x42)
	w.U16(0x1234)
	w.U32(0xDEADBEEF)
	w.U64(0x0102030405060708)
	w.CString("hi")

	r := NewReader(w.Bytes())
	if v, err := r.U8(); err != nil || v != 0x42 {
		t.Fatalf("U8 = %v, %v", v, err)
	}
	if v, err := r.U16(); err != nil || v != 0x1234 {
		t.Fatalf("U16 = %v, %v", v, err)
	}
	if v, err := r.U32(); err != nil || v != 0xDEADBEEF {
		t.Fatalf("U32 = %v, %v", v, err)
	}
	if v, err := r.U64(); err != nil || v != 0x0102030405060708 {
		t.Fatalf("U64 = %v, %v", v, err)
	}
	if s, err := r.CString(); err != nil || s != "hi" {
		t.Fatalf("CString = %q, %v", s, err)
	}
}

func TestReaderTruncated(t *testing.T) {
	r := NewReader([]byte{0x01})
	if _, err := r.U32(); err == nil {
		t.Fatal("expected truncation error")
	}
}
