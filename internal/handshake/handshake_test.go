package handshake

import (
	"testing"

	"craftraw/internal/packet"
)

func TestServerAllowedBits(t *testing.T) {
	if got := ServerAllowedBits(true); got != 0x03 {
		t.Fatalf("got %#x, want 0x03", got)
	}
	if got := ServerAllowedBits(false); got != 0x01 {
		t.Fatalf("got %#x, want 0x01", got)
	}
}

// TestConvergenceScenarioS4 mirrors spec.md S4: client announces 0x07,
// server (filesystem permitted) replies with its own allowed set 0x03;
// both sides converge on 0x03 (long frames + filesystem, no binary
// checksum from the client's side since client only wants it, doesn't
// offer it... here client offers all three so effective is server's AND).
func TestConvergenceScenarioS4(t *testing.T) {
	server := New(ServerAllowedBits(true))
	eff, wantsWin := server.Observe(0x07)
	if eff != 0x03 {
		t.Fatalf("server effective = %#x, want 0x03", eff)
	}
	if !wantsWin {
		t.Fatal("expected window-info request observed")
	}
	if !server.IsVersion11() {
		t.Fatal("expected is_version_11 latched")
	}
	if !server.SupportsFilesystem() {
		t.Fatal("expected filesystem enabled")
	}
	if server.SupportsBinaryChecksum() {
		t.Fatal("binary checksum should not be in server's allowed set here")
	}

	reply := server.Announce()
	if reply.FeatureBits != 0x03 {
		t.Fatalf("reply bits = %#x, want 0x03", reply.FeatureBits)
	}
}

func TestObserveWithoutWindowInfoRequest(t *testing.T) {
	client := New(0x01)
	_, wantsWin := client.Observe(0x03)
	if wantsWin {
		t.Fatal("did not expect window-info request")
	}
}

func TestEffectiveIsAndOfBothSides(t *testing.T) {
	s := New(uint16(packet.FeatureBinaryChecksum | packet.FeatureFilesystem))
	eff, _ := s.Observe(uint16(packet.FeatureFilesystem))
	if eff != uint16(packet.FeatureFilesystem) {
		t.Fatalf("got %#x, want FeatureFilesystem only", eff)
	}
	if s.SupportsBinaryChecksum() {
		t.Fatal("binary checksum should not survive the AND")
	}
}

func TestLongFramesGatedOnVersion11Only(t *testing.T) {
	s := New(0x00)
	if s.SupportsLongFrames() {
		t.Fatal("should not support long frames before any handshake")
	}
	s.Observe(0x00)
	if !s.SupportsLongFrames() {
		t.Fatal("should support long frames once is_version_11 latches, regardless of bits")
	}
}
