package packet

import (
	"fmt"

	"craftraw/internal/wire"
)

// EventQueue is kind 3 (C->S): a named custom event with IBT-encoded
// parameters, spec.md §4.3.
type EventQueue struct {
	Name   string
	Params []wire.Value
}

func encodeEventQueue(w *wire.Writer, e *EventQueue) error {
	if e == nil {
		return fmt.Errorf("packet: nil EventQueue body")
	}
	if len(e.Params) > 255 {
		return fmt.Errorf("packet: EventQueue has %d params, max 255", len(e.Params))
	}
	w.U8(uint8(len(e.Params)))
	w.CString(e.Name)
	for _, p := range e.Params {
		if err := wire.EncodeIBT(w, p); err != nil {
			return fmt.Errorf("packet: EventQueue param: %w", err)
		}
	}
	return nil
}

func decodeEventQueue(r *wire.Reader) (*EventQueue, error) {
	n, err := r.U8()
	if err != nil {
		return nil, err
	}
	name, err := r.CString()
	if err != nil {
		return nil, err
	}
	params := make([]wire.Value, n)
	for i := range params {
		params[i], err = wire.DecodeIBT(r)
		if err != nil {
			return nil, fmt.Errorf("packet: EventQueue param %d: %w", i, err)
		}
	}
	return &EventQueue{Name: name, Params: params}, nil
}
