package keymap

import "testing"

func TestScancodeRoundTrip(t *testing.T) {
	for _, k := range []Key{KeyA, KeyZ, Key1, KeyEnter, KeyF5, KeyUp} {
		sc, ok := KeyToScancode(k)
		if !ok {
			t.Fatalf("KeyToScancode(%q) not found", k)
		}
		if got := ScancodeToKey(sc); got != k {
			t.Fatalf("round trip: key %q -> scancode %#x -> key %q", k, sc, got)
		}
	}
}

func TestUnknownScancode(t *testing.T) {
	if got := ScancodeToKey(0xFE); got != KeyUnknown {
		t.Fatalf("expected unknown, got %q", got)
	}
}

func TestCharacterScancodeForA(t *testing.T) {
	// spec.md S2: scancode for 'A' is 30 (0x1E).
	if sc, _ := KeyToScancode(KeyA); sc != 0x1E {
		t.Fatalf("expected scancode 0x1E for 'a', got %#x", sc)
	}
}

func TestNumpadDigitsDoNotCollideWithNavigationCluster(t *testing.T) {
	numpad := []Key{KeyNum0, KeyNum1, KeyNum2, KeyNum3, KeyNum4, KeyNum5, KeyNum6, KeyNum7, KeyNum8, KeyNum9}
	nav := []Key{KeyUp, KeyDown, KeyLeft, KeyRight, KeyHome, KeyEnd, KeyPageUp, KeyPageDown, KeyInsert, KeyDelete}

	seen := map[uint8]Key{}
	for _, k := range append(append([]Key{}, numpad...), nav...) {
		sc, ok := KeyToScancode(k)
		if !ok {
			t.Fatalf("KeyToScancode(%q) not found", k)
		}
		if prior, dup := seen[sc]; dup {
			t.Fatalf("scancode %#x maps to both %q and %q", sc, prior, k)
		}
		seen[sc] = k
		if got := ScancodeToKey(sc); got != k {
			t.Fatalf("round trip: key %q -> scancode %#x -> key %q", k, sc, got)
		}
	}
}
