// Package client implements ClientRenderer (spec.md §4.5): decoding server
// screen/title/message/handshake packets and driving a Display, issuing
// input/resize packets, and the client half of FSBridge's synchronous
// request/response correlation.
package client

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"craftraw/internal/display"
	"craftraw/internal/framing"
	"craftraw/internal/handshake"
	"craftraw/internal/metricsx"
	"craftraw/internal/packet"
	"craftraw/internal/transport"
	"craftraw/internal/wire"
)

// Event is what the renderer surfaces for window lifecycle changes it
// can't express as a Display call (spec.md §4.5, S6 "win_close").
type Event struct {
	Name   string
	Window uint8
}

// Renderer is ClientRenderer: one Transport, one Display, the handshake
// state for that Transport, and the client-side FSBridge call table.
type Renderer struct {
	transport transport.Transport
	display   display.Display
	hs        *handshake.State

	mu           sync.Mutex
	pending      map[uint8]chan packet.Packet
	nextReqID    uint8
	closed       bool
	knownWindows map[uint8]struct{}

	events chan Event
}

// New creates a Renderer bound to t, drawing through disp (nil is valid
// for a headless client driving only FSBridge). local is this side's
// announced feature bits.
func New(t transport.Transport, disp display.Display, local uint16) *Renderer {
	return &Renderer{
		transport:    t,
		display:      disp,
		hs:           handshake.New(local),
		pending:      make(map[uint8]chan packet.Packet),
		knownWindows: make(map[uint8]struct{}),
		events:       make(chan Event, 16),
	}
}

// Attach sends this side's kind-6 handshake announcement.
func (r *Renderer) Attach(ctx context.Context) error {
	return r.sendPacket(ctx, 0, packet.Packet{Kind: packet.KindHandshake, Handshake: r.hs.Announce()})
}

func (r *Renderer) frameOptions() framing.Options {
	return framing.Options{
		LongFrames:     r.hs.SupportsLongFrames(),
		BinaryChecksum: r.hs.SupportsBinaryChecksum(),
	}
}

func (r *Renderer) sendPacket(ctx context.Context, window uint8, p packet.Packet) error {
	p.Window = window
	body, err := packet.Encode(p)
	if err != nil {
		return fmt.Errorf("client: encode: %w", err)
	}
	frame, err := framing.Encode(body, body[0], r.frameOptions())
	if err != nil {
		return fmt.Errorf("client: frame: %w", err)
	}
	return r.transport.Send(ctx, []byte(frame))
}

// Events returns the channel window-lifecycle events are delivered on.
func (r *Renderer) Events() <-chan Event { return r.events }

// Run decodes frames off Transport until ctx is cancelled or the
// Transport closes (spec.md §4.5's "run" operation, here split from the
// host-input pump since that source lives entirely outside the core).
func (r *Renderer) Run(ctx context.Context) error {
	for {
		frame, err := r.transport.Receive(ctx)
		if err != nil {
			if errors.Is(err, transport.ErrClosed) {
				r.mu.Lock()
				r.closed = true
				r.mu.Unlock()
				return nil
			}
			return err
		}
		body, err := framing.Decode(frame, r.frameOptions())
		if err != nil {
			if err == framing.ErrChecksumMismatch {
				metricsx.RecordChecksumMismatch()
				continue
			}
			log.Printf("[CLI] decode frame: %v", err)
			continue
		}
		p, err := packet.Decode(body)
		if err != nil {
			if errors.Is(err, packet.ErrUnknownKind) {
				continue
			}
			log.Printf("[CLI] decode packet: %v", err)
			continue
		}
		metricsx.RecordFrameDecoded(body[0])
		r.dispatch(ctx, p)
	}
}

func (r *Renderer) dispatch(ctx context.Context, p packet.Packet) {
	switch p.Kind {
	case packet.KindScreenUpdate:
		r.markWindowKnown(p.Window)
		r.renderScreen(p.Screen)
	case packet.KindWindowInfo:
		r.handleWindowInfo(p.Window, p.WinInfo)
	case packet.KindServerMessage:
		r.handleMessage(p.Message)
	case packet.KindHandshake:
		r.hs.Observe(p.Handshake.FeatureBits)
	case packet.KindFSResponse:
		r.deliver(p.FSResp.ReqID, p)
	case packet.KindFSData:
		r.deliver(p.FSData.ReqID, p)
	}
}

func (r *Renderer) renderScreen(s *packet.ScreenUpdate) {
	if r.display == nil || s == nil {
		return
	}
	r.display.SetVisible(false)
	r.display.SetMode(s.Mode)
	r.display.Clear()

	if s.Mode == 0 {
		for y := uint16(0); y < s.Height; y++ {
			for x := uint16(0); x < s.Width; x++ {
				i := int(y)*int(s.Width) + int(x)
				ch := s.Chars[i]
				color := s.Colors[i]
				r.display.BlitChar(x, y, ch, color&0x0F, color>>4)
			}
		}
	} else {
		rowWidth := int(s.Width) * 6
		rows := int(s.Height) * 9
		for y := 0; y < rows; y++ {
			r.display.BlitPixelRow(uint16(y), s.Pixels[y*rowWidth:(y+1)*rowWidth])
		}
	}

	for i, c := range s.Palette {
		r.display.SetPaletteEntry(uint8(i), c)
	}
	r.display.SetCursor(s.CursorX, s.CursorY, s.Blink)
	r.display.SetVisible(true)
}

// handleWindowInfo dispatches a kind-4 packet. Close variants are honored
// even for a window id the renderer has never seen (nothing to track was
// lost by missing them); WindowUpdate on an id with no prior ScreenUpdate
// or WindowUpdate is the "unknown window id" case spec.md §7 describes,
// surfaced to the Display via WindowNotifier instead of being applied.
func (r *Renderer) handleWindowInfo(window uint8, wi *packet.WindowInfo) {
	switch wi.Flags {
	case packet.WindowCloseSoft, packet.WindowCloseFull:
		r.pushEvent(Event{Name: "win_close", Window: window})
		if wi.Flags == packet.WindowCloseFull {
			_ = r.transport.Close()
		}
	default:
		if !r.isWindowKnown(window) {
			if notifier, ok := r.display.(display.WindowNotifier); ok {
				notifier.WindowNotification(window)
			}
			r.markWindowKnown(window)
			return
		}
		if ts, ok := r.display.(display.TitleSetter); ok && wi.Title != "" {
			ts.SetTitle(wi.Title)
		}
	}
}

func (r *Renderer) markWindowKnown(window uint8) {
	r.mu.Lock()
	r.knownWindows[window] = struct{}{}
	r.mu.Unlock()
}

func (r *Renderer) isWindowKnown(window uint8) bool {
	r.mu.Lock()
	_, ok := r.knownWindows[window]
	r.mu.Unlock()
	return ok
}

func (r *Renderer) handleMessage(m *packet.ServerMessage) {
	if shower, ok := r.display.(display.MessageShower); ok {
		shower.ShowMessage(m.Kind(), m.Title, m.Body)
	}
}

func (r *Renderer) pushEvent(e Event) {
	select {
	case r.events <- e:
	default:
		log.Printf("[CLI] event queue full, dropping %q", e.Name)
	}
}

// SendKey issues a kind-1 scancode key event.
func (r *Renderer) SendKey(ctx context.Context, window uint8, scancode, flags uint8) error {
	return r.sendPacket(ctx, window, packet.Packet{Kind: packet.KindKeyInput, Key: &packet.KeyInput{Scancode: scancode, Flags: flags}})
}

// SendChar issues a kind-1 character event for ch (spec.md S2).
func (r *Renderer) SendChar(ctx context.Context, window uint8, ch byte) error {
	return r.SendKey(ctx, window, ch, packet.KeyFlagCharacter)
}

// SendMouse issues a kind-2 mouse event.
func (r *Renderer) SendMouse(ctx context.Context, window uint8, event, button uint8, x, y uint32) error {
	return r.sendPacket(ctx, window, packet.Packet{Kind: packet.KindMouseInput, Mouse: &packet.MouseInput{Event: event, Button: button, X: x, Y: y}})
}

// SendCustomEvent issues a kind-3 custom event with IBT-encoded params.
func (r *Renderer) SendCustomEvent(ctx context.Context, window uint8, name string, params []wire.Value) error {
	return r.sendPacket(ctx, window, packet.Packet{Kind: packet.KindEventQueue, Event: &packet.EventQueue{Name: name, Params: params}})
}

// SendResize issues a kind-4 update announcing new dimensions/title.
func (r *Renderer) SendResize(ctx context.Context, window uint8, width, height uint16, title string) error {
	return r.sendPacket(ctx, window, packet.Packet{
		Kind:    packet.KindWindowInfo,
		WinInfo: &packet.WindowInfo{Flags: packet.WindowUpdate, Width: width, Height: height, Title: title},
	})
}
