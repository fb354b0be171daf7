package packet

import (
	"fmt"

	"craftraw/internal/wire"
)

// WindowInfo flags, spec.md §4.3.
const (
	WindowUpdate     = 0 // may include resize/title
	WindowCloseSoft  = 1 // keep-alive close
	WindowCloseFull  = 2 // tear down
)

// WindowInfo is kind 4 (both directions).
type WindowInfo struct {
	Flags       uint8
	SecondaryID uint8 // computer id mod 256, or 0 for a monitor window
	Width       uint16
	Height      uint16
	Title       string
}

func encodeWindowInfo(w *wire.Writer, wi *WindowInfo) error {
	if wi == nil {
		return fmt.Errorf("packet: nil WindowInfo body")
	}
	w.U8(wi.Flags)
	w.U8(wi.SecondaryID)
	w.U16(wi.Width)
	w.U16(wi.Height)
	w.CString(wi.Title)
	return nil
}

func decodeWindowInfo(r *wire.Reader) (*WindowInfo, error) {
	flags, err := r.U8()
	if err != nil {
		return nil, err
	}
	sec, err := r.U8()
	if err != nil {
		return nil, err
	}
	width, err := r.U16()
	if err != nil {
		return nil, err
	}
	height, err := r.U16()
	if err != nil {
		return nil, err
	}
	title, err := r.CString()
	if err != nil {
		return nil, err
	}
	return &WindowInfo{Flags: flags, SecondaryID: sec, Width: width, Height: height, Title: title}, nil
}
