package wire

import (
	"encoding/base64"
	"fmt"
)

// Base64Encode encodes b with the standard alphabet (A-Z a-z 0-9 + /) and
// standard padding: "==" for one leftover byte, "=" for two. This is
// RFC 4648 §4 and matches encoding/base64.StdEncoding exactly, so the
// encoder is a direct pass-through — see DESIGN.md for why no custom
// encoder is warranted.
func Base64Encode(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// Base64Decode decodes s, tolerating a non-canonical final quartet: per
// spec.md §9, some encoders in the wild drop the final d-component of a
// len%3==2 trailing group, leaving a 2-character non-padded group where
// RFC 4648 expects 3 characters plus one "=". encoding/base64's strict
// decoder rejects that input outright, so this is a hand-written decoder
// rather than a stdlib call.
func Base64Decode(s string) ([]byte, error) {
	// Strip any padding; we reconstruct it ourselves from group length.
	trimmed := s
	for len(trimmed) > 0 && trimmed[len(trimmed)-1] == '=' {
		trimmed = trimmed[:len(trimmed)-1]
	}

	out := make([]byte, 0, len(trimmed)*3/4+3)
	var group [4]byte
	n := 0
	for i := 0; i < len(trimmed); i++ {
		v, err := b64Val(trimmed[i])
		if err != nil {
			return nil, err
		}
		group[n] = v
		n++
		if n == 4 {
			out = append(out, group[0]<<2|group[1]>>4, group[1]<<4|group[2]>>2, group[2]<<6|group[3])
			n = 0
		}
	}

	switch n {
	case 0:
		// exact multiple of 4, nothing left
	case 1:
		return nil, fmt.Errorf("wire: base64 dangling single char")
	case 2:
		// one leftover output byte (canonical case: 2 chars + "==")
		out = append(out, group[0]<<2|group[1]>>4)
	case 3:
		// two leftover output bytes (canonical case: 3 chars + "=")
		out = append(out, group[0]<<2|group[1]>>4, group[1]<<4|group[2]>>2)
	}
	return out, nil
}

func b64Val(c byte) (byte, error) {
	switch {
	case c >= 'A' && c <= 'Z':
		return c - 'A', nil
	case c >= 'a' && c <= 'z':
		return c - 'a' + 26, nil
	case c >= '0' && c <= '9':
		return c - '0' + 52, nil
	case c == '+':
		return 62, nil
	case c == '/':
		return 63, nil
	default:
		return 0, fmt.Errorf("wire: invalid base64 character %q", c)
	}
}
