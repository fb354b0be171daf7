// Package handshake implements the version-1.1 feature-negotiation state
// machine (spec.md §4.7): on attach each side announces its own feature
// bits via kind 6, and on observing the peer's kind 6 both sides converge
// on the AND of the two bit sets (modulo the local allow-list), while
// is_version_11 latches permanently true and gates long frames regardless
// of which bits were actually set.
package handshake

import (
	"sync"

	"craftraw/internal/packet"
)

// State tracks one side's local capability bits and the negotiated
// effective set, updated by a single handshake handler and read from
// framing/codec per spec.md §5's "CapabilityFlags... updates are monotone"
// note — a mutex keeps Observe and the readers consistent regardless of
// that invariant.
type State struct {
	mu         sync.Mutex
	local      uint16
	version11  bool
	effective  uint16
}

// New creates negotiation state announcing local as this side's own
// supported feature bits (e.g. a server that permits filesystem access
// builds local with FeatureFilesystem set).
func New(local uint16) *State {
	return &State{local: local}
}

// Announce builds the outgoing kind-6 packet sent on attach.
func (s *State) Announce() *packet.Handshake {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &packet.Handshake{FeatureBits: s.local}
}

// Observe processes a peer kind-6 packet, latching is_version_11 and
// recomputing the effective bit set as local&peer. It returns the
// effective bits and whether the peer requested an immediate window-info
// packet (bit 0x04, which is a one-shot request, not a capability, so it
// is reported separately rather than folded into the AND).
func (s *State) Observe(peerBits uint16) (effective uint16, wantsWindowInfo bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.version11 = true
	s.effective = s.local & peerBits
	return s.effective, peerBits&packet.FeatureWantWindowInfo != 0
}

// IsVersion11 reports whether any kind-6 packet has been observed.
func (s *State) IsVersion11() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version11
}

// SupportsLongFrames reports whether framing may use the !CPD long-frame
// magic, gated purely on is_version_11 rather than any specific bit
// (spec.md §3.3).
func (s *State) SupportsLongFrames() bool {
	return s.IsVersion11()
}

// SupportsBinaryChecksum reports whether the negotiated checksum domain
// is binary rather than the base64 text (spec.md §3.3/§3.4).
func (s *State) SupportsBinaryChecksum() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.effective&packet.FeatureBinaryChecksum != 0
}

// SupportsFilesystem reports whether kind 7/8/9 FSBridge traffic is
// permitted.
func (s *State) SupportsFilesystem() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.effective&packet.FeatureFilesystem != 0
}

// Local returns this side's own configured feature bits.
func (s *State) Local() uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.local
}

// ServerAllowedBits builds a server's own feature-bit set given whether
// filesystem access is permitted, matching the source's constant
// "always binary-checksum-capable, +filesystem if not blocked" shape
// (spec.md §4.3).
func ServerAllowedBits(filesystemAllowed bool) uint16 {
	bits := uint16(packet.FeatureBinaryChecksum)
	if filesystemAllowed {
		bits |= packet.FeatureFilesystem
	}
	return bits
}
