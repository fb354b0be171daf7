package packet

import (
	"fmt"

	"craftraw/internal/wire"
)

// RGB is one palette entry, three bytes in [0,255] (spec.md §4.3).
type RGB [3]byte

// ScreenUpdate is kind 0 (S->C): a full repaint of one window.
type ScreenUpdate struct {
	Mode      uint8
	Blink     bool
	Width     uint16
	Height    uint16
	CursorX   uint16
	CursorY   uint16
	Grayscale bool

	// Chars/Colors are populated in text mode (Mode == 0), each
	// Width*Height bytes, row-major.
	Chars  []byte
	Colors []byte

	// Pixels is populated in pixel modes (Mode == 1 or 2): (Height*9) rows
	// of (Width*6) bytes, row-major.
	Pixels []byte

	// Palette has 16 entries (Mode 0 or 1) or 256 entries (Mode 2).
	Palette []RGB
}

func paletteSize(mode uint8) int {
	if mode == 2 {
		return 256
	}
	return 16
}

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

func encodeScreenUpdate(w *wire.Writer, s *ScreenUpdate) error {
	if s == nil {
		return fmt.Errorf("packet: nil ScreenUpdate body")
	}
	w.U8(s.Mode)
	w.U8(boolByte(s.Blink))
	w.U16(s.Width)
	w.U16(s.Height)
	w.U16(s.CursorX)
	w.U16(s.CursorY)
	w.U8(boolByte(s.Grayscale))
	w.U8(0)
	w.U8(0)
	w.U8(0)

	if s.Mode == 0 {
		want := int(s.Width) * int(s.Height)
		if len(s.Chars) != want {
			return fmt.Errorf("packet: ScreenUpdate.Chars has %d bytes, want %d", len(s.Chars), want)
		}
		if len(s.Colors) != want {
			return fmt.Errorf("packet: ScreenUpdate.Colors has %d bytes, want %d", len(s.Colors), want)
		}
		w.Raw(rleEncode(s.Chars))
		w.Raw(rleEncode(s.Colors))
	} else {
		want := int(s.Height) * 9 * int(s.Width) * 6
		if len(s.Pixels) != want {
			return fmt.Errorf("packet: ScreenUpdate.Pixels has %d bytes, want %d", len(s.Pixels), want)
		}
		w.Raw(rleEncode(s.Pixels))
	}

	want := paletteSize(s.Mode)
	if len(s.Palette) != want {
		return fmt.Errorf("packet: ScreenUpdate.Palette has %d entries, want %d", len(s.Palette), want)
	}
	for _, c := range s.Palette {
		w.U8(c[0])
		w.U8(c[1])
		w.U8(c[2])
	}
	return nil
}

func decodeScreenUpdate(r *wire.Reader) (*ScreenUpdate, error) {
	s := &ScreenUpdate{}
	mode, err := r.U8()
	if err != nil {
		return nil, err
	}
	s.Mode = mode
	blink, err := r.U8()
	if err != nil {
		return nil, err
	}
	s.Blink = blink != 0
	if s.Width, err = r.U16(); err != nil {
		return nil, err
	}
	if s.Height, err = r.U16(); err != nil {
		return nil, err
	}
	if s.CursorX, err = r.U16(); err != nil {
		return nil, err
	}
	if s.CursorY, err = r.U16(); err != nil {
		return nil, err
	}
	gray, err := r.U8()
	if err != nil {
		return nil, err
	}
	s.Grayscale = gray != 0
	if _, err = r.U8(); err != nil { // pad
		return nil, err
	}
	if _, err = r.U8(); err != nil {
		return nil, err
	}
	if _, err = r.U8(); err != nil {
		return nil, err
	}

	if s.Mode == 0 {
		want := int(s.Width) * int(s.Height)
		if s.Chars, err = rleDecode(r, want); err != nil {
			return nil, fmt.Errorf("packet: decode chars: %w", err)
		}
		if s.Colors, err = rleDecode(r, want); err != nil {
			return nil, fmt.Errorf("packet: decode colors: %w", err)
		}
	} else {
		want := int(s.Height) * 9 * int(s.Width) * 6
		if s.Pixels, err = rleDecode(r, want); err != nil {
			return nil, fmt.Errorf("packet: decode pixels: %w", err)
		}
	}

	n := paletteSize(s.Mode)
	s.Palette = make([]RGB, n)
	for i := 0; i < n; i++ {
		rr, err := r.U8()
		if err != nil {
			return nil, err
		}
		g, err := r.U8()
		if err != nil {
			return nil, err
		}
		b, err := r.U8()
		if err != nil {
			return nil, err
		}
		s.Palette[i] = RGB{rr, g, b}
	}
	return s, nil
}
