// Package server implements ServerTerminal (spec.md §4.4): per-window
// TerminalState, drawing operations, scroll/resize, RLE repaint emission,
// input-packet dispatch, and the server half of FSBridge.
package server

import (
	"craftraw/internal/display"
	"craftraw/internal/packet"
)

const (
	ModeText     = 0
	ModePixel16  = 1
	ModePixel256 = 2
)

// TerminalState is one window's full drawing state (spec.md §3).
type TerminalState struct {
	Mode   uint8
	Width  uint16
	Height uint16

	CursorX, CursorY uint16
	Blink            bool
	Visible          bool
	Closed           bool

	CurrentColor uint8 // (bg<<4)|fg, palette indices 0..15

	Screen []byte // height*width, row-major
	Colors []byte // height*width, row-major
	Pixels []byte // (height*9)*(width*6), row-major

	Palette [256]packet.RGB

	Title     string
	IsMonitor bool

	Changed bool

	parent display.Display
}

// defaultPalette16 mirrors the classic CGA-like 16-color palette CraftOS
// ships with; entries 16..255 stay black until a client sets them.
var defaultPalette16 = [16]packet.RGB{
	{0xf0, 0xf0, 0xf0}, {0xf2, 0xb2, 0x33}, {0xe5, 0x7f, 0xd8}, {0x99, 0xb2, 0xf2},
	{0xde, 0xde, 0x6c}, {0x7f, 0xcc, 0x19}, {0xf2, 0xb2, 0xcc}, {0x4c, 0x4c, 0x4c},
	{0x99, 0x99, 0x99}, {0x4c, 0x99, 0xb2}, {0xb2, 0x66, 0xe5}, {0x33, 0x66, 0xcc},
	{0x7f, 0x66, 0x4c}, {0x57, 0xa6, 0x4e}, {0xcc, 0x4c, 0x4c}, {0x11, 0x11, 0x11},
}

// NewTerminalState creates a window of the given cell size, clipped to
// 1..65535 per spec.md §3, defaulting to text mode, visible, white-on-black.
func NewTerminalState(width, height uint16, parent display.Display) *TerminalState {
	if width == 0 {
		width = 1
	}
	if height == 0 {
		height = 1
	}
	t := &TerminalState{
		Mode:         ModeText,
		Width:        width,
		Height:       height,
		CursorX:      1,
		CursorY:      1,
		Blink:        true,
		Visible:      true,
		CurrentColor: 0xF0,
		parent:       parent,
	}
	for i, c := range defaultPalette16 {
		t.Palette[i] = c
	}
	t.allocateGrids()
	t.Changed = true
	return t
}

func (t *TerminalState) allocateGrids() {
	cells := int(t.Width) * int(t.Height)
	t.Screen = make([]byte, cells)
	for i := range t.Screen {
		t.Screen[i] = ' '
	}
	t.Colors = make([]byte, cells)
	for i := range t.Colors {
		t.Colors[i] = t.CurrentColor
	}
	t.Pixels = make([]byte, int(t.Height)*9*int(t.Width)*6)
	for i := range t.Pixels {
		t.Pixels[i] = 0x0F
	}
}

func (t *TerminalState) inBounds(x, y uint16) bool {
	return x >= 1 && x <= t.Width && y >= 1 && y <= t.Height
}

func (t *TerminalState) index(x, y uint16) int {
	return int(y-1)*int(t.Width) + int(x-1)
}

// BlitChar writes one character cell at 1-indexed (x, y) with fg/bg
// palette indices. Writes outside the visible region move the cursor but
// draw nothing (spec.md §7).
func (t *TerminalState) BlitChar(x, y uint16, ch byte, fg, bg uint8) {
	t.CursorX, t.CursorY = x+1, y
	if !t.inBounds(x, y) {
		t.Changed = true
		return
	}
	i := t.index(x, y)
	t.Screen[i] = ch
	t.Colors[i] = (bg << 4) | (fg & 0x0F)
	t.CurrentColor = t.Colors[i]
	t.Changed = true
	if mirror, ok := t.parent.(interface {
		BlitChar(col, row uint16, ch byte, fg, bg uint8)
	}); ok && mirror != nil {
		mirror.BlitChar(x, y, ch, fg, bg)
	}
}

// Write draws s starting at (x, y) left to right using CurrentColor,
// clipping any cells past the row's width. A fatal caller error (mismatched
// fg/bg length) is not possible here since Write always uses the single
// CurrentColor; per-cell color mismatches are the caller's job via
// BlitChar (spec.md §7).
func (t *TerminalState) Write(x, y uint16, s string) {
	fg := t.CurrentColor & 0x0F
	bg := t.CurrentColor >> 4
	for i := 0; i < len(s); i++ {
		t.BlitChar(x+uint16(i), y, s[i], fg, bg)
	}
}

// SetCursor positions the text cursor; it may stray outside the visible
// grid (spec.md §3: "allowed to stray... writes clip; cursor value is
// preserved").
func (t *TerminalState) SetCursor(x, y uint16, blink bool) {
	t.CursorX, t.CursorY = x, y
	t.Blink = blink
	t.Changed = true
}

// SetVisible toggles whether the window is drawn at all.
func (t *TerminalState) SetVisible(visible bool) {
	t.Visible = visible
	t.Changed = true
	if t.parent != nil {
		t.parent.SetVisible(visible)
	}
}

// SetMode switches between text and pixel rendering, reallocating grids
// for the new mode's shape.
func (t *TerminalState) SetMode(mode uint8) {
	t.Mode = mode
	t.allocateGrids()
	t.Changed = true
	if t.parent != nil {
		t.parent.SetMode(mode)
	}
}

// Clear blanks the surface for the current mode.
func (t *TerminalState) Clear() {
	for i := range t.Screen {
		t.Screen[i] = ' '
	}
	for i := range t.Colors {
		t.Colors[i] = t.CurrentColor
	}
	for i := range t.Pixels {
		t.Pixels[i] = t.CurrentColor & 0x0F
	}
	t.Changed = true
	if t.parent != nil {
		t.parent.Clear()
	}
}

// BlitPixelRow draws one full row of pixel-mode data (width*6 palette
// indices).
func (t *TerminalState) BlitPixelRow(row uint16, pixels []byte) {
	rowWidth := int(t.Width) * 6
	if len(pixels) != rowWidth {
		panic("server: BlitPixelRow length mismatch") // spec.md §7: fatal caller error
	}
	start := int(row) * rowWidth
	copy(t.Pixels[start:start+rowWidth], pixels)
	t.Changed = true
	if t.parent != nil {
		t.parent.BlitPixelRow(row, pixels)
	}
}

// SetPalette assigns a palette entry. In text/pixel-16 mode, index is the
// color-bit value (a power of two in 1..32768); in pixel-256 mode it is a
// raw index 0..255 (spec.md §4.4).
func (t *TerminalState) SetPalette(index uint32, rgb packet.RGB) {
	idx := paletteIndex(t.Mode, index)
	t.Palette[idx] = rgb
	t.Changed = true
	if t.parent != nil {
		t.parent.SetPaletteEntry(uint8(idx), rgb)
	}
}

// GetPalette is SetPalette's inverse.
func (t *TerminalState) GetPalette(index uint32) packet.RGB {
	return t.Palette[paletteIndex(t.Mode, index)]
}

func paletteIndex(mode uint8, index uint32) int {
	if mode == ModePixel256 {
		return int(index) & 0xFF
	}
	// a power of two in 1..32768: the bit position is the color index.
	for bit := 0; bit < 16; bit++ {
		if index == 1<<uint(bit) {
			return bit
		}
	}
	return 0
}

// Scroll moves content by n rows: positive scrolls up, negative scrolls
// down; |n| >= height clears the whole buffer. Cleared rows take the
// current background color (spec.md §4.4).
func (t *TerminalState) Scroll(n int) {
	h := int(t.Height)
	w := int(t.Width)
	if n == 0 {
		return
	}
	if n >= h || -n >= h {
		t.Clear()
		return
	}
	bg := t.CurrentColor >> 4
	blankColor := bg<<4 | bg
	if n > 0 {
		copy(t.Screen, t.Screen[n*w:])
		copy(t.Colors, t.Colors[n*w:])
		for y := h - n; y < h; y++ {
			for x := 0; x < w; x++ {
				t.Screen[y*w+x] = ' '
				t.Colors[y*w+x] = blankColor
			}
		}
	} else {
		n = -n
		copy(t.Screen[n*w:], t.Screen[:(h-n)*w])
		copy(t.Colors[n*w:], t.Colors[:(h-n)*w])
		for y := 0; y < n; y++ {
			for x := 0; x < w; x++ {
				t.Screen[y*w+x] = ' '
				t.Colors[y*w+x] = blankColor
			}
		}
	}
	t.Changed = true
	if t.parent != nil {
		t.parent.Clear() // the parent mirror only tracks final state, repainted wholesale
	}
}

// Resize truncates or pads the grids to new dimensions, preserving
// whatever content overlaps the old and new bounds.
func (t *TerminalState) Resize(width, height uint16) {
	if width == 0 {
		width = 1
	}
	if height == 0 {
		height = 1
	}
	old := *t
	t.Width, t.Height = width, height
	t.allocateGrids()
	minW := int(width)
	if int(old.Width) < minW {
		minW = int(old.Width)
	}
	minH := int(height)
	if int(old.Height) < minH {
		minH = int(old.Height)
	}
	for y := 0; y < minH; y++ {
		copy(t.Screen[y*int(width):y*int(width)+minW], old.Screen[y*int(old.Width):y*int(old.Width)+minW])
		copy(t.Colors[y*int(width):y*int(width)+minW], old.Colors[y*int(old.Width):y*int(old.Width)+minW])
	}

	// Pixels is (height*9) rows of (width*6) palette-index bytes; overlap
	// copies on the same truncate-or-pad basis as Screen/Colors above.
	pxMinW := minW * 6
	pxMinH := minH * 9
	newPxW := int(width) * 6
	oldPxW := int(old.Width) * 6
	for y := 0; y < pxMinH; y++ {
		copy(t.Pixels[y*newPxW:y*newPxW+pxMinW], old.Pixels[y*oldPxW:y*oldPxW+pxMinW])
	}

	t.Changed = true
}

// Snapshot builds the kind-0 packet body representing the current state,
// matching the dimensions of the ScreenUpdate shape the packet package
// expects for this mode.
func (t *TerminalState) Snapshot() *packet.ScreenUpdate {
	s := &packet.ScreenUpdate{
		Mode:    t.Mode,
		Blink:   t.Blink,
		Width:   t.Width,
		Height:  t.Height,
		CursorX: t.CursorX,
		CursorY: t.CursorY,
	}
	n := 16
	if t.Mode == ModePixel256 {
		n = 256
	}
	s.Palette = make([]packet.RGB, n)
	copy(s.Palette, t.Palette[:n])
	if t.Mode == ModeText {
		s.Chars = append([]byte(nil), t.Screen...)
		s.Colors = append([]byte(nil), t.Colors...)
	} else {
		s.Pixels = append([]byte(nil), t.Pixels...)
	}
	return s
}
