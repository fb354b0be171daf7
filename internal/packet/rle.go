package packet

import (
	"fmt"

	"craftraw/internal/wire"
)

// rleEncode run-length-encodes data as a sequence of (byte, count) pairs,
// count in 1..=255, cutting runs at 255 (spec.md §4.3).
func rleEncode(data []byte) []byte {
	out := make([]byte, 0, len(data)/4+2)
	i := 0
	for i < len(data) {
		v := data[i]
		run := 1
		for i+run < len(data) && data[i+run] == v && run < 255 {
			run++
		}
		out = append(out, v, byte(run))
		i += run
	}
	return out
}

// rleDecode reads (byte, count) pairs from r until it has produced exactly
// total bytes.
func rleDecode(r *wire.Reader, total int) ([]byte, error) {
	out := make([]byte, 0, total)
	for len(out) < total {
		v, err := r.U8()
		if err != nil {
			return nil, fmt.Errorf("rle: %w", err)
		}
		count, err := r.U8()
		if err != nil {
			return nil, fmt.Errorf("rle: %w", err)
		}
		if count == 0 {
			return nil, fmt.Errorf("rle: zero-length run")
		}
		if len(out)+int(count) > total {
			return nil, fmt.Errorf("rle: run overruns expected length %d", total)
		}
		for n := 0; n < int(count); n++ {
			out = append(out, v)
		}
	}
	return out, nil
}
