package client

import (
	"context"
	"testing"
	"time"

	"craftraw/internal/display"
	"craftraw/internal/framing"
	"craftraw/internal/packet"
	"craftraw/internal/transport"
)

type fakeDisplay struct {
	mode    uint8
	visible []bool
	chars   map[[2]uint16]byte
	colors  map[[2]uint16][2]uint8
	palette [256]packet.RGB
	cursorX, cursorY uint16
	blink   bool
	cols, rows, pxW, pxH uint16
	title   string
	message struct{ kind, title, body string }
	notifiedWindows []uint8
}

func newFakeDisplay() *fakeDisplay {
	return &fakeDisplay{chars: map[[2]uint16]byte{}, colors: map[[2]uint16][2]uint8{}, cols: 10, rows: 5}
}

func (d *fakeDisplay) SetMode(mode uint8)         { d.mode = mode }
func (d *fakeDisplay) SetVisible(v bool)          { d.visible = append(d.visible, v) }
func (d *fakeDisplay) Clear()                     { d.chars = map[[2]uint16]byte{} }
func (d *fakeDisplay) SetCursor(x, y uint16, blink bool) {
	d.cursorX, d.cursorY, d.blink = x, y, blink
}
func (d *fakeDisplay) SetPaletteEntry(i uint8, rgb packet.RGB) { d.palette[i] = rgb }
func (d *fakeDisplay) BlitChar(col, row uint16, ch byte, fg, bg uint8) {
	d.chars[[2]uint16{col, row}] = ch
	d.colors[[2]uint16{col, row}] = [2]uint8{fg, bg}
}
func (d *fakeDisplay) BlitPixelRow(row uint16, pixels []byte) {}
func (d *fakeDisplay) Size() (uint16, uint16, uint16, uint16) { return d.cols, d.rows, d.pxW, d.pxH }
func (d *fakeDisplay) SetTitle(title string)                  { d.title = title }
func (d *fakeDisplay) ShowMessage(kind, title, body string) {
	d.message.kind, d.message.title, d.message.body = kind, title, body
}
func (d *fakeDisplay) WindowNotification(windowID uint8) {
	d.notifiedWindows = append(d.notifiedWindows, windowID)
}

var _ display.Display = (*fakeDisplay)(nil)
var _ display.TitleSetter = (*fakeDisplay)(nil)
var _ display.MessageShower = (*fakeDisplay)(nil)
var _ display.WindowNotifier = (*fakeDisplay)(nil)

func sendRaw(t *testing.T, end transport.Transport, p packet.Packet) {
	t.Helper()
	body, err := packet.Encode(p)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	frame, err := framing.Encode(body, body[0], framing.Options{})
	if err != nil {
		t.Fatalf("frame: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := end.Send(ctx, []byte(frame)); err != nil {
		t.Fatalf("send: %v", err)
	}
}

// TestScenarioS1ServerWriteRendersOnClient mirrors spec.md S1.
func TestScenarioS1ServerWriteRendersOnClient(t *testing.T) {
	a, b := transport.NewBus(4)
	defer a.Close()
	defer b.Close()

	disp := newFakeDisplay()
	cl := New(a, disp, 0)

	screen := &packet.ScreenUpdate{
		Mode: 0, Width: 2, Height: 1, CursorX: 1, CursorY: 1, Blink: true,
		Chars:  []byte{'h', 'i'},
		Colors: []byte{0xF0, 0xF0},
		Palette: make([]packet.RGB, 16),
	}
	sendRaw(t, b, packet.Packet{Kind: packet.KindScreenUpdate, Screen: screen})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- cl.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	if disp.chars[[2]uint16{0, 0}] != 'h' || disp.chars[[2]uint16{1, 0}] != 'i' {
		t.Fatalf("expected h,i rendered, got %+v", disp.chars)
	}
	if len(disp.visible) < 2 || disp.visible[0] != false || disp.visible[len(disp.visible)-1] != true {
		t.Fatalf("expected visible toggled off then on, got %v", disp.visible)
	}
}

func TestWindowCloseSurfacesEvent(t *testing.T) {
	a, b := transport.NewBus(4)
	defer a.Close()
	defer b.Close()

	cl := New(a, nil, 0)
	sendRaw(t, b, packet.Packet{Kind: packet.KindWindowInfo, Window: 3, WinInfo: &packet.WindowInfo{Flags: packet.WindowCloseFull}})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	go cl.Run(ctx)

	select {
	case ev := <-cl.Events():
		if ev.Name != "win_close" || ev.Window != 3 {
			t.Fatalf("got %+v", ev)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for win_close event")
	}
}

// TestUnknownWindowUpdateNotifiesThenApplies mirrors spec.md §7's "unknown
// window id" row: the first WindowUpdate for a window the renderer has
// never seen a ScreenUpdate/WindowUpdate for notifies WindowNotifier and
// is not applied; a subsequent update for the same id is applied normally.
func TestUnknownWindowUpdateNotifiesThenApplies(t *testing.T) {
	a, b := transport.NewBus(4)
	defer a.Close()
	defer b.Close()

	disp := newFakeDisplay()
	cl := New(a, disp, 0)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	go cl.Run(ctx)

	sendRaw(t, b, packet.Packet{Kind: packet.KindWindowInfo, Window: 5, WinInfo: &packet.WindowInfo{Flags: packet.WindowUpdate, Title: "first"}})
	time.Sleep(50 * time.Millisecond)
	if len(disp.notifiedWindows) != 1 || disp.notifiedWindows[0] != 5 {
		t.Fatalf("expected a notification for unknown window 5, got %v", disp.notifiedWindows)
	}
	if disp.title != "" {
		t.Fatalf("expected the unknown-window update not applied, got title %q", disp.title)
	}

	sendRaw(t, b, packet.Packet{Kind: packet.KindWindowInfo, Window: 5, WinInfo: &packet.WindowInfo{Flags: packet.WindowUpdate, Title: "second"}})
	time.Sleep(50 * time.Millisecond)
	if disp.title != "second" {
		t.Fatalf("expected the second update applied now that window 5 is known, got title %q", disp.title)
	}
	if len(disp.notifiedWindows) != 1 {
		t.Fatalf("expected no additional notification, got %v", disp.notifiedWindows)
	}
}
