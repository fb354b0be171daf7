package packet

import (
	"fmt"

	"craftraw/internal/wire"
)

// KeyInput flag bits, spec.md §4.3.
const (
	KeyFlagUp        = 1 << 0
	KeyFlagHeld      = 1 << 1
	KeyFlagCharacter = 1 << 3
)

// KeyInput is kind 1 (C->S).
type KeyInput struct {
	Scancode uint8 // or the raw character byte when Flags&KeyFlagCharacter is set
	Flags    uint8
}

func (k KeyInput) IsUp() bool        { return k.Flags&KeyFlagUp != 0 }
func (k KeyInput) IsHeld() bool      { return k.Flags&KeyFlagHeld != 0 }
func (k KeyInput) IsCharacter() bool { return k.Flags&KeyFlagCharacter != 0 }

func encodeKeyInput(w *wire.Writer, k *KeyInput) error {
	if k == nil {
		return fmt.Errorf("packet: nil KeyInput body")
	}
	w.U8(k.Scancode)
	w.U8(k.Flags)
	return nil
}

func decodeKeyInput(r *wire.Reader) (*KeyInput, error) {
	sc, err := r.U8()
	if err != nil {
		return nil, err
	}
	fl, err := r.U8()
	if err != nil {
		return nil, err
	}
	return &KeyInput{Scancode: sc, Flags: fl}, nil
}

// MouseInput event kinds, spec.md §4.3.
const (
	MouseClick  = 0
	MouseUp     = 1
	MouseScroll = 2
	MouseDrag   = 3
)

// Scroll button values, only meaningful when Event == MouseScroll.
const (
	ScrollUp   = 0
	ScrollDown = 1
)

// MouseInput is kind 2 (C->S).
type MouseInput struct {
	Event  uint8
	Button uint8
	X      uint32
	Y      uint32
}

// ScrollDelta maps a scroll MouseInput's Button to the server-side
// direction: -1 for up, +1 for down (spec.md §4.3).
func (m MouseInput) ScrollDelta() int {
	if m.Button == ScrollDown {
		return 1
	}
	return -1
}

func encodeMouseInput(w *wire.Writer, m *MouseInput) error {
	if m == nil {
		return fmt.Errorf("packet: nil MouseInput body")
	}
	w.U8(m.Event)
	w.U8(m.Button)
	w.U32(m.X)
	w.U32(m.Y)
	return nil
}

func decodeMouseInput(r *wire.Reader) (*MouseInput, error) {
	ev, err := r.U8()
	if err != nil {
		return nil, err
	}
	btn, err := r.U8()
	if err != nil {
		return nil, err
	}
	x, err := r.U32()
	if err != nil {
		return nil, err
	}
	y, err := r.U32()
	if err != nil {
		return nil, err
	}
	return &MouseInput{Event: ev, Button: btn, X: x, Y: y}, nil
}
