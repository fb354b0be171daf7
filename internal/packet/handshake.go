package packet

import (
	"fmt"

	"craftraw/internal/wire"
)

// Handshake feature bits, spec.md §4.3.
const (
	FeatureBinaryChecksum = 0x01
	FeatureFilesystem     = 0x02
	FeatureWantWindowInfo = 0x04
)

// Handshake is kind 6 (both directions): the version-1.1 feature probe.
type Handshake struct {
	FeatureBits uint16
}

func encodeHandshake(w *wire.Writer, h *Handshake) error {
	if h == nil {
		return fmt.Errorf("packet: nil Handshake body")
	}
	w.U16(h.FeatureBits)
	return nil
}

func decodeHandshake(r *wire.Reader) (*Handshake, error) {
	bits, err := r.U16()
	if err != nil {
		return nil, err
	}
	return &Handshake{FeatureBits: bits}, nil
}
