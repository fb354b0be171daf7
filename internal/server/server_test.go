package server

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"craftraw/internal/framing"
	"craftraw/internal/hostfs/osfs"
	"craftraw/internal/packet"
	"craftraw/internal/transport"
)

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

// TestScenarioS2CharacterKeyEvent mirrors spec.md S2: a char key event
// surfaces as a "char" local event.
func TestScenarioS2CharacterKeyEvent(t *testing.T) {
	a, b := transport.NewBus(4)
	defer a.Close()
	defer b.Close()
	srv := New(a, Options{})

	sendRaw(t, b, packet.Packet{Kind: packet.KindKeyInput, Key: &packet.KeyInput{
		Scancode: 'A', Flags: packet.KeyFlagCharacter,
	}})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	go srv.RunReadLoop(ctx)

	ev, err := srv.PullEvent(ctx, "", PullOptions{})
	if err != nil {
		t.Fatalf("pull: %v", err)
	}
	if ev.Name != "char" {
		t.Fatalf("got event %q, want char", ev.Name)
	}
	if ev.Args[0].Str != "A" {
		t.Fatalf("got char %q, want A", ev.Args[0].Str)
	}
}

// TestScenarioS3MouseScroll mirrors spec.md S3.
func TestScenarioS3MouseScroll(t *testing.T) {
	a, b := transport.NewBus(4)
	defer a.Close()
	defer b.Close()
	srv := New(a, Options{})

	sendRaw(t, b, packet.Packet{Kind: packet.KindMouseInput, Mouse: &packet.MouseInput{
		Event: packet.MouseScroll, Button: packet.ScrollUp, X: 5, Y: 7,
	}})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	go srv.RunReadLoop(ctx)

	ev, err := srv.PullEvent(ctx, "", PullOptions{})
	if err != nil {
		t.Fatalf("pull: %v", err)
	}
	if ev.Name != "mouse_scroll" {
		t.Fatalf("got %q", ev.Name)
	}
	if ev.Args[0].Int != -1 || ev.Args[1].Int != 5 || ev.Args[2].Int != 7 {
		t.Fatalf("got args %+v", ev.Args)
	}
}

// TestScenarioS4HandshakeConvergence mirrors spec.md S4.
func TestScenarioS4HandshakeConvergence(t *testing.T) {
	a, b := transport.NewBus(4)
	defer a.Close()
	defer b.Close()
	srv := New(a, Options{FilesystemAllowed: true})

	sendRaw(t, b, packet.Packet{Kind: packet.KindHandshake, Handshake: &packet.Handshake{FeatureBits: 0x07}})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	go srv.RunReadLoop(ctx)

	frame, err := b.Receive(ctx)
	if err != nil {
		t.Fatalf("receive reply: %v", err)
	}
	body, err := framing.Decode(frame, framing.Options{})
	if err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	p, err := packet.Decode(body)
	if err != nil {
		t.Fatalf("decode packet: %v", err)
	}
	if p.Kind != packet.KindHandshake || p.Handshake.FeatureBits != 0x03 {
		t.Fatalf("got reply %+v, want feature_bits=0x03", p)
	}
	if !srv.hs.SupportsFilesystem() {
		t.Fatal("expected filesystem enabled after convergence")
	}
}

// TestScenarioS5FSExists mirrors spec.md S5.
func TestScenarioS5FSExists(t *testing.T) {
	root := t.TempDir()
	os.WriteFile(filepath.Join(root, "x"), []byte("y"), 0644)

	a, b := transport.NewBus(4)
	defer a.Close()
	defer b.Close()
	srv := New(a, Options{FilesystemAllowed: true, HostFS: osfs.New(root)})
	srv.hs.Observe(0x02) // converge filesystem capability without the handshake round trip

	sendRaw(t, b, packet.Packet{Kind: packet.KindFSRequest, FSReq: &packet.FSRequest{
		Op: packet.FSOpExists, ReqID: 0, Path: "/x",
	}})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	go srv.RunReadLoop(ctx)

	frame, err := b.Receive(ctx)
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	body, err := framing.Decode(frame, framing.Options{})
	if err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	p, err := packet.Decode(body)
	if err != nil {
		t.Fatalf("decode packet: %v", err)
	}
	if p.Kind != packet.KindFSResponse || !p.FSResp.Bool || p.FSResp.BoolError {
		t.Fatalf("got %+v, want exists=true", p.FSResp)
	}
}

func TestRepaintEmittedWhenChangedAndVisible(t *testing.T) {
	a, b := transport.NewBus(4)
	defer a.Close()
	defer b.Close()
	srv := New(a, Options{})
	srv.Window(0, nil).Write(1, 1, "hi")

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	go srv.RunRepaintLoop(ctx)

	frame, err := b.Receive(ctx)
	if err != nil {
		t.Fatalf("expected a repaint frame: %v", err)
	}
	body, err := framing.Decode(frame, framing.Options{})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	p, err := packet.Decode(body)
	if err != nil {
		t.Fatalf("decode packet: %v", err)
	}
	if p.Kind != packet.KindScreenUpdate {
		t.Fatalf("got kind %v", p.Kind)
	}
	if p.Screen.Chars[0] != 'h' {
		t.Fatalf("got chars %q", p.Screen.Chars)
	}
}

// TestClientWindowUpdateResizesAndRetitles mirrors spec.md §4.3's
// bidirectional WindowInfo flags=0 case: the client requests a resize and
// retitle, and the server applies it and echoes the new state back.
func TestClientWindowUpdateResizesAndRetitles(t *testing.T) {
	a, b := transport.NewBus(4)
	defer a.Close()
	defer b.Close()
	srv := New(a, Options{})
	srv.Window(0, nil)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	go srv.RunReadLoop(ctx)

	sendRaw(t, b, packet.Packet{
		Kind: packet.KindWindowInfo,
		WinInfo: &packet.WindowInfo{Flags: packet.WindowUpdate, Width: 7, Height: 3, Title: "new title"},
	})

	frame, err := b.Receive(ctx)
	if err != nil {
		t.Fatalf("expected a window-info reply: %v", err)
	}
	body, err := framing.Decode(frame, framing.Options{})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	p, err := packet.Decode(body)
	if err != nil {
		t.Fatalf("decode packet: %v", err)
	}
	if p.Kind != packet.KindWindowInfo || p.WinInfo.Width != 7 || p.WinInfo.Height != 3 || p.WinInfo.Title != "new title" {
		t.Fatalf("got %+v", p.WinInfo)
	}

	ts := srv.Window(0, nil)
	if ts.Width != 7 || ts.Height != 3 || ts.Title != "new title" {
		t.Fatalf("terminal state not updated: %+v", ts)
	}
}
