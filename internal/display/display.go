// Package display defines the narrow Display contract ClientRenderer (and,
// as a "parent" mirror, ServerTerminal) draw through. The host terminal or
// parent surface behind it is out of core scope (spec.md §1); this package
// only names the interface the core actually calls.
package display

import "craftraw/internal/packet"

// Display is the drawing surface spec.md §6 describes: mode switch, cursor,
// per-index palette, character/pixel blits, and size queries. Optional
// capabilities (title, messages, unknown-window notification) are modeled
// as separate interfaces a concrete Display may additionally satisfy,
// replacing the source's "fall through to parent's fields" idiom
// (spec.md §9) with explicit type assertions at the call site.
type Display interface {
	// SetMode switches the rendering mode (0 text, 1 pixel-16, 2 pixel-256).
	SetMode(mode uint8)

	// SetVisible toggles whether the window is drawn at all.
	SetVisible(visible bool)

	// Clear blanks the surface for mode.
	Clear()

	// SetCursor positions and configures the text cursor. Only meaningful
	// in text mode.
	SetCursor(x, y uint16, blink bool)

	// SetPaletteEntry assigns one of the 16 or 256 palette slots.
	SetPaletteEntry(index uint8, rgb packet.RGB)

	// BlitChar draws a single character cell in text mode with its
	// foreground/background palette indices.
	BlitChar(col, row uint16, ch byte, fg, bg uint8)

	// BlitPixelRow draws one row of (width*6)-wide palette-index pixels in
	// a pixel mode.
	BlitPixelRow(row uint16, pixels []byte)

	// Size reports the current cell-grid and pixel-grid dimensions.
	Size() (cols, rowsN, pxWidth, pxHeight uint16)
}

// TitleSetter is implemented by a Display that can show a window title.
type TitleSetter interface {
	SetTitle(title string)
}

// MessageShower is implemented by a Display that can surface a one-off
// message (error/warning/info) distinct from the screen contents.
type MessageShower interface {
	ShowMessage(kind, title, body string)
}

// WindowNotifier is implemented by a Display that wants to hear about
// kind-4 WindowInfo packets addressed to a window id it doesn't recognize
// (spec.md §7 "Unknown window id").
type WindowNotifier interface {
	WindowNotification(windowID uint8)
}

// MessageKind constants for MessageShower.ShowMessage, mirroring
// packet.ServerMessage.Kind().
const (
	KindError   = "error"
	KindWarning = "warning"
	KindInfo    = "info"
)
