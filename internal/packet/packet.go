// Package packet implements the ten packet kinds defined in spec.md §4.3 on
// top of internal/wire. Each kind has a Go struct and a pair of
// encode/decode functions; Packet is the tagged union the codec dispatches
// on, the static-language translation of the source's dynamic dispatch
// table (spec.md §9).
package packet

import (
	"fmt"

	"craftraw/internal/wire"
)

// Kind identifies one of the ten packet bodies multiplexed over a window.
type Kind uint8

const (
	KindScreenUpdate  Kind = 0
	KindKeyInput      Kind = 1
	KindMouseInput    Kind = 2
	KindEventQueue    Kind = 3
	KindWindowInfo    Kind = 4
	KindServerMessage Kind = 5
	KindHandshake     Kind = 6
	KindFSRequest     Kind = 7
	KindFSResponse    Kind = 8
	KindFSData        Kind = 9
)

func (k Kind) String() string {
	switch k {
	case KindScreenUpdate:
		return "ScreenUpdate"
	case KindKeyInput:
		return "KeyInput"
	case KindMouseInput:
		return "MouseInput"
	case KindEventQueue:
		return "EventQueue"
	case KindWindowInfo:
		return "WindowInfo"
	case KindServerMessage:
		return "ServerMessage"
	case KindHandshake:
		return "Handshake"
	case KindFSRequest:
		return "FSRequest"
	case KindFSResponse:
		return "FSResponse"
	case KindFSData:
		return "FSData"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Packet is the decoded envelope: a kind, a window id, and exactly one of
// the typed bodies populated, matching Kind.
type Packet struct {
	Kind   Kind
	Window uint8

	Screen    *ScreenUpdate
	Key       *KeyInput
	Mouse     *MouseInput
	Event     *EventQueue
	WinInfo   *WindowInfo
	Message   *ServerMessage
	Handshake *Handshake
	FSReq     *FSRequest
	FSResp    *FSResponse
	FSData    *FSData
}

// ErrUnknownKind is returned by Decode for a kind byte outside 0..9.
// spec.md §7: the caller must ignore the frame, not treat this as fatal.
var ErrUnknownKind = fmt.Errorf("packet: unknown kind")

// Encode serializes p into a raw payload ([kind][window][body...]) ready
// for framing.Encode.
func Encode(p Packet) ([]byte, error) {
	w := wire.NewWriter()
	w.U8(uint8(p.Kind))
	w.U8(p.Window)

	var err error
	switch p.Kind {
	case KindScreenUpdate:
		err = encodeScreenUpdate(w, p.Screen)
	case KindKeyInput:
		err = encodeKeyInput(w, p.Key)
	case KindMouseInput:
		err = encodeMouseInput(w, p.Mouse)
	case KindEventQueue:
		err = encodeEventQueue(w, p.Event)
	case KindWindowInfo:
		err = encodeWindowInfo(w, p.WinInfo)
	case KindServerMessage:
		err = encodeServerMessage(w, p.Message)
	case KindHandshake:
		err = encodeHandshake(w, p.Handshake)
	case KindFSRequest:
		err = encodeFSRequest(w, p.FSReq)
	case KindFSResponse:
		err = encodeFSResponse(w, p.FSResp)
	case KindFSData:
		err = encodeFSData(w, p.FSData)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, p.Kind)
	}
	if err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// Decode parses a raw payload (as produced by framing.Decode) into a
// Packet. Returns ErrUnknownKind for a kind byte this codec doesn't
// recognize; the caller decides whether to ignore or log it.
func Decode(raw []byte) (Packet, error) {
	r := wire.NewReader(raw)
	kindByte, err := r.U8()
	if err != nil {
		return Packet{}, err
	}
	window, err := r.U8()
	if err != nil {
		return Packet{}, err
	}
	p := Packet{Kind: Kind(kindByte), Window: window}

	switch p.Kind {
	case KindScreenUpdate:
		p.Screen, err = decodeScreenUpdate(r)
	case KindKeyInput:
		p.Key, err = decodeKeyInput(r)
	case KindMouseInput:
		p.Mouse, err = decodeMouseInput(r)
	case KindEventQueue:
		p.Event, err = decodeEventQueue(r)
	case KindWindowInfo:
		p.WinInfo, err = decodeWindowInfo(r)
	case KindServerMessage:
		p.Message, err = decodeServerMessage(r)
	case KindHandshake:
		p.Handshake, err = decodeHandshake(r)
	case KindFSRequest:
		p.FSReq, err = decodeFSRequest(r)
	case KindFSResponse:
		p.FSResp, err = decodeFSResponse(r)
	case KindFSData:
		p.FSData, err = decodeFSData(r)
	default:
		return Packet{}, fmt.Errorf("%w: %d", ErrUnknownKind, p.Kind)
	}
	if err != nil {
		return Packet{}, err
	}
	return p, nil
}
