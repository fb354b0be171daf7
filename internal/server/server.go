package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"craftraw/internal/display"
	"craftraw/internal/framing"
	"craftraw/internal/handshake"
	"craftraw/internal/hostfs"
	"craftraw/internal/keymap"
	"craftraw/internal/metricsx"
	"craftraw/internal/packet"
	"craftraw/internal/transport"
	"craftraw/internal/wire"
)

// Event is what PullEvent returns: a named event with positional
// arguments, mirroring the host event-queue shape spec.md §4.4 describes
// (key/mouse/custom events, plus the synthetic "win_close").
type Event struct {
	Name string
	Args []wire.Value
}

// PullOptions controls which sources PullEvent considers (spec.md §4.4).
type PullOptions struct {
	SuppressLocal bool // ignore events sourced from the host input system
	SuppressAll   bool // ignore both sources; PullEvent blocks on ctx only
}

type fileWriteBuffer struct {
	path   string
	mode   string
	handle hostfs.WriteHandle
}

// Server is ServerTerminal: one Transport, one or more per-window
// TerminalStates, the handshake/capability state for that Transport, and
// (when filesystem access is enabled) the FSBridge dispatch table.
type Server struct {
	transport transport.Transport
	hs        *handshake.State
	fs        hostfs.HostFS

	defaultWidth, defaultHeight uint16

	mu           sync.Mutex
	windows      map[uint8]*TerminalState
	writeHandles map[uint8]*fileWriteBuffer
	closed       bool

	localEvents chan Event
	hostEvents  <-chan Event

	limiter *rate.Limiter
}

// Options configures a new Server.
type Options struct {
	DefaultWidth, DefaultHeight uint16
	FilesystemAllowed           bool
	HostFS                      hostfs.HostFS
	// HostEvents, when non-nil, is the host's input-event source (spec.md
	// §1: out of core scope). PullEvent races it against Transport.
	HostEvents <-chan Event
}

// New creates a Server bound to t. Call Attach before driving it.
func New(t transport.Transport, opts Options) *Server {
	w, h := opts.DefaultWidth, opts.DefaultHeight
	if w == 0 {
		w = 51
	}
	if h == 0 {
		h = 19
	}
	return &Server{
		transport:     t,
		hs:            handshake.New(handshake.ServerAllowedBits(opts.FilesystemAllowed)),
		fs:            opts.HostFS,
		defaultWidth:  w,
		defaultHeight: h,
		windows:       make(map[uint8]*TerminalState),
		writeHandles:  make(map[uint8]*fileWriteBuffer),
		localEvents:   make(chan Event, 64),
		hostEvents:    opts.HostEvents,
		limiter:       rate.NewLimiter(rate.Every(50*time.Millisecond), 1),
	}
}

// Window returns the TerminalState for id, creating a default-sized one
// (mirrored to parent, which may be nil) on first use.
func (s *Server) Window(id uint8, parent display.Display) *TerminalState {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.windows[id]
	if !ok {
		t = NewTerminalState(s.defaultWidth, s.defaultHeight, parent)
		s.windows[id] = t
		metricsx.SetActiveWindows(len(s.windows))
	}
	return t
}

// Attach sends this side's kind-6 handshake announcement (spec.md §4.7).
func (s *Server) Attach(ctx context.Context) error {
	return s.sendPacket(ctx, 0, packet.Packet{
		Kind:      packet.KindHandshake,
		Handshake: s.hs.Announce(),
	})
}

func (s *Server) frameOptions() framing.Options {
	return framing.Options{
		LongFrames:     s.hs.SupportsLongFrames(),
		BinaryChecksum: s.hs.SupportsBinaryChecksum(),
	}
}

func (s *Server) sendPacket(ctx context.Context, window uint8, p packet.Packet) error {
	p.Window = window
	body, err := packet.Encode(p)
	if err != nil {
		return fmt.Errorf("server: encode: %w", err)
	}
	frame, err := framing.Encode(body, body[0], s.frameOptions())
	if err != nil {
		return fmt.Errorf("server: frame: %w", err)
	}
	return s.transport.Send(ctx, []byte(frame))
}

// RunRepaintLoop emits a kind-0 packet for every changed, visible window
// every 50ms, coalescing bursts of mutation into one packet (spec.md §5).
// It returns when ctx is cancelled.
func (s *Server) RunRepaintLoop(ctx context.Context) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !s.limiter.Allow() {
				continue
			}
			s.emitRepaints(ctx)
		}
	}
}

func (s *Server) emitRepaints(ctx context.Context) {
	s.mu.Lock()
	type due struct {
		id uint8
		t  *TerminalState
	}
	var pending []due
	for id, t := range s.windows {
		if t.Visible && t.Changed {
			pending = append(pending, due{id, t})
		}
	}
	s.mu.Unlock()

	for _, d := range pending {
		snap := d.t.Snapshot()
		if err := s.sendPacket(ctx, d.id, packet.Packet{Kind: packet.KindScreenUpdate, Screen: snap}); err != nil {
			log.Printf("[SRV] repaint window %d: %v", d.id, err)
			continue
		}
		metricsx.RecordRepaintEmitted(d.id)
		s.mu.Lock()
		d.t.Changed = false
		s.mu.Unlock()
	}
}

// Close emits a kind-4 close packet for window id: flags=1 keeps the
// window alive (soft close), flags=2 tears it down fully (spec.md §4.4).
func (s *Server) Close(ctx context.Context, window uint8, full bool) error {
	flags := uint8(packet.WindowCloseSoft)
	if full {
		flags = packet.WindowCloseFull
	}
	err := s.sendPacket(ctx, window, packet.Packet{
		Kind:    packet.KindWindowInfo,
		WinInfo: &packet.WindowInfo{Flags: flags},
	})
	if full {
		s.mu.Lock()
		delete(s.windows, window)
		metricsx.SetActiveWindows(len(s.windows))
		s.mu.Unlock()
	}
	return err
}

// RunReadLoop decodes frames off Transport until ctx is cancelled or the
// Transport closes, dispatching each packet to its handler (spec.md §4.4):
// key/mouse enqueue a local event, custom events decode their IBT params,
// window-info 1/2 closes the window, fs-request is handled synchronously,
// handshake updates capability flags and replies.
func (s *Server) RunReadLoop(ctx context.Context) error {
	for {
		frame, err := s.transport.Receive(ctx)
		if err != nil {
			if errors.Is(err, transport.ErrClosed) {
				s.mu.Lock()
				s.closed = true
				s.mu.Unlock()
				return nil
			}
			return err
		}
		body, err := framing.Decode(frame, s.frameOptions())
		if err != nil {
			if err == framing.ErrChecksumMismatch {
				metricsx.RecordChecksumMismatch()
				continue // spec.md §7: drop silently, keep reading
			}
			log.Printf("[SRV] decode frame: %v", err)
			continue
		}
		p, err := packet.Decode(body)
		if err != nil {
			if errors.Is(err, packet.ErrUnknownKind) {
				continue // spec.md §7: ignore
			}
			log.Printf("[SRV] decode packet: %v", err)
			continue
		}
		metricsx.RecordFrameDecoded(body[0])
		s.dispatch(ctx, p)
	}
}

func (s *Server) dispatch(ctx context.Context, p packet.Packet) {
	switch p.Kind {
	case packet.KindKeyInput:
		s.handleKeyInput(p.Window, p.Key)
	case packet.KindMouseInput:
		s.handleMouseInput(p.Window, p.Mouse)
	case packet.KindEventQueue:
		s.pushLocal(Event{Name: p.Event.Name, Args: p.Event.Params})
	case packet.KindWindowInfo:
		switch p.WinInfo.Flags {
		case packet.WindowCloseSoft, packet.WindowCloseFull:
			s.mu.Lock()
			delete(s.windows, p.Window)
			metricsx.SetActiveWindows(len(s.windows))
			s.mu.Unlock()
		case packet.WindowUpdate:
			s.handleWindowUpdate(ctx, p.Window, p.WinInfo)
		}
	case packet.KindFSRequest:
		if err := s.handleFSRequest(ctx, p.Window, p.FSReq); err != nil {
			log.Printf("[FS] request op=%d: %v", p.FSReq.Op, err)
		}
	case packet.KindFSData:
		if err := s.handleFSData(ctx, p.FSData); err != nil {
			log.Printf("[FS] data commit req=%d: %v", p.FSData.ReqID, err)
		}
	case packet.KindHandshake:
		s.handleHandshake(ctx, p.Handshake)
	}
}

func (s *Server) handleKeyInput(window uint8, k *packet.KeyInput) {
	if k.IsCharacter() {
		s.pushLocal(Event{Name: "char", Args: []wire.Value{wire.StringValue(string(rune(k.Scancode)))}})
		return
	}
	key := keymap.ScancodeToKey(k.Scancode)
	name := "key"
	if k.IsUp() {
		name = "key_up"
	}
	s.pushLocal(Event{Name: name, Args: []wire.Value{
		wire.StringValue(string(key)),
		wire.BoolValue(k.IsHeld()),
	}})
}

func (s *Server) handleMouseInput(window uint8, m *packet.MouseInput) {
	var name string
	var args []wire.Value
	switch m.Event {
	case packet.MouseClick:
		name = "mouse_click"
		args = []wire.Value{wire.NumberValue(float64(m.Button)), wire.NumberValue(float64(m.X)), wire.NumberValue(float64(m.Y))}
	case packet.MouseUp:
		name = "mouse_up"
		args = []wire.Value{wire.NumberValue(float64(m.Button)), wire.NumberValue(float64(m.X)), wire.NumberValue(float64(m.Y))}
	case packet.MouseScroll:
		name = "mouse_scroll"
		args = []wire.Value{wire.NumberValue(float64(m.ScrollDelta())), wire.NumberValue(float64(m.X)), wire.NumberValue(float64(m.Y))}
	case packet.MouseDrag:
		name = "mouse_drag"
		args = []wire.Value{wire.NumberValue(float64(m.Button)), wire.NumberValue(float64(m.X)), wire.NumberValue(float64(m.Y))}
	default:
		return
	}
	s.pushLocal(Event{Name: name, Args: args})
}

func (s *Server) handleHandshake(ctx context.Context, h *packet.Handshake) {
	_, wantsWindowInfo := s.hs.Observe(h.FeatureBits)
	if err := s.sendPacket(ctx, 0, packet.Packet{Kind: packet.KindHandshake, Handshake: s.hs.Announce()}); err != nil {
		log.Printf("[HS] reply: %v", err)
	}
	if wantsWindowInfo {
		s.mu.Lock()
		ids := make([]uint8, 0, len(s.windows))
		for id := range s.windows {
			ids = append(ids, id)
		}
		s.mu.Unlock()
		for _, id := range ids {
			s.sendWindowInfo(ctx, id)
		}
	}
}

// handleWindowUpdate applies a client-initiated resize/retitle (spec.md
// §4.3: WindowInfo flags=0 "may include resize if width and height
// nonzero and new title") and re-announces the window's new state.
func (s *Server) handleWindowUpdate(ctx context.Context, id uint8, wi *packet.WindowInfo) {
	s.mu.Lock()
	t, ok := s.windows[id]
	s.mu.Unlock()
	if !ok {
		return
	}
	if wi.Width != 0 && wi.Height != 0 {
		t.Resize(wi.Width, wi.Height)
	}
	if wi.Title != "" {
		t.Title = wi.Title
	}
	if err := s.sendWindowInfo(ctx, id); err != nil {
		log.Printf("[SRV] window %d update reply: %v", id, err)
	}
}

func (s *Server) sendWindowInfo(ctx context.Context, id uint8) error {
	s.mu.Lock()
	t, ok := s.windows[id]
	s.mu.Unlock()
	if !ok {
		return nil
	}
	return s.sendPacket(ctx, id, packet.Packet{
		Kind: packet.KindWindowInfo,
		WinInfo: &packet.WindowInfo{
			Flags: packet.WindowUpdate, Width: t.Width, Height: t.Height, Title: t.Title,
		},
	})
}

func (s *Server) pushLocal(e Event) {
	select {
	case s.localEvents <- e:
	default:
		log.Printf("[SRV] local event queue full, dropping %q", e.Name)
	}
}

// PullEvent blocks until a local or host event arrives (whichever races
// first wins; the other is simply left pending — see spec.md §5's
// cancellation note on why dropping the losing read is always safe), or
// until ctx is cancelled. filter, when non-empty, restricts which event
// name satisfies the pull; non-matching events are discarded.
func (s *Server) PullEvent(ctx context.Context, filter string, opts PullOptions) (Event, error) {
	for {
		var ev Event
		var err error
		if opts.SuppressAll {
			<-ctx.Done()
			return Event{}, ctx.Err()
		} else if opts.SuppressLocal || s.hostEvents == nil {
			select {
			case ev = <-s.localEvents:
			case <-ctx.Done():
				return Event{}, ctx.Err()
			}
		} else {
			select {
			case ev = <-s.localEvents:
			case ev = <-s.hostEvents:
			case <-ctx.Done():
				return Event{}, ctx.Err()
			}
		}
		if err != nil {
			return Event{}, err
		}
		if filter == "" || ev.Name == filter {
			return ev, nil
		}
	}
}
