package packet

import (
	"fmt"

	"craftraw/internal/wire"
)

// ServerMessage flag bits, spec.md §4.3.
const (
	MessageError   = 0x10
	MessageWarning = 0x20
	MessageInfo    = 0x40
)

// ServerMessage is kind 5 (S->C).
type ServerMessage struct {
	Flags uint32
	Title string
	Body  string
}

func (m ServerMessage) Kind() string {
	switch {
	case m.Flags&MessageError != 0:
		return "error"
	case m.Flags&MessageWarning != 0:
		return "warning"
	case m.Flags&MessageInfo != 0:
		return "info"
	default:
		return "unknown"
	}
}

func encodeServerMessage(w *wire.Writer, m *ServerMessage) error {
	if m == nil {
		return fmt.Errorf("packet: nil ServerMessage body")
	}
	w.U32(m.Flags)
	w.CString(m.Title)
	w.CString(m.Body)
	return nil
}

func decodeServerMessage(r *wire.Reader) (*ServerMessage, error) {
	flags, err := r.U32()
	if err != nil {
		return nil, err
	}
	title, err := r.CString()
	if err != nil {
		return nil, err
	}
	body, err := r.CString()
	if err != nil {
		return nil, err
	}
	return &ServerMessage{Flags: flags, Title: title, Body: body}, nil
}
