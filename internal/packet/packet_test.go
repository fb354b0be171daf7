package packet

import (
	"reflect"
	"testing"

	"craftraw/internal/wire"
)

func roundTrip(t *testing.T, p Packet) Packet {
	t.Helper()
	raw, err := Encode(p)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return got
}

func TestScreenUpdateTextModeRoundTrip(t *testing.T) {
	width, height := uint16(3), uint16(2)
	chars := []byte("hi!lo!")
	colors := []byte{0xF0, 0xF0, 0xF0, 0xF0, 0xF0, 0xF0}
	palette := make([]RGB, 16)
	for i := range palette {
		palette[i] = RGB{byte(i), byte(i * 2), byte(i * 3)}
	}
	p := Packet{
		Kind:   KindScreenUpdate,
		Window: 0,
		Screen: &ScreenUpdate{
			Mode: 0, Blink: true, Width: width, Height: height,
			CursorX: 1, CursorY: 1, Grayscale: false,
			Chars: chars, Colors: colors, Palette: palette,
		},
	}
	got := roundTrip(t, p)
	if !reflect.DeepEqual(got.Screen.Chars, chars) {
		t.Fatalf("chars mismatch: %v", got.Screen.Chars)
	}
	if !reflect.DeepEqual(got.Screen.Colors, colors) {
		t.Fatalf("colors mismatch: %v", got.Screen.Colors)
	}
	if !reflect.DeepEqual(got.Screen.Palette, palette) {
		t.Fatalf("palette mismatch")
	}
	if got.Screen.Width != width || got.Screen.Height != height {
		t.Fatalf("dims mismatch")
	}
}

func TestScreenUpdatePixelModeRoundTrip(t *testing.T) {
	width, height := uint16(2), uint16(1)
	pixels := make([]byte, int(height)*9*int(width)*6)
	for i := range pixels {
		pixels[i] = byte(i % 7)
	}
	palette := make([]RGB, 256)
	p := Packet{
		Kind: KindScreenUpdate, Window: 3,
		Screen: &ScreenUpdate{Mode: 2, Width: width, Height: height, Pixels: pixels, Palette: palette},
	}
	got := roundTrip(t, p)
	if !reflect.DeepEqual(got.Screen.Pixels, pixels) {
		t.Fatal("pixel round trip mismatch")
	}
}

func TestKeyInputCharEvent(t *testing.T) {
	// scancode for 'A' = 30 decimal (0x1E), character event flag set.
	p := Packet{Kind: KindKeyInput, Window: 0, Key: &KeyInput{Scancode: 0x1E, Flags: KeyFlagCharacter}}
	raw, err := Encode(p)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{1, 0, 0x1E, 0x08}
	if !reflect.DeepEqual(raw, want) {
		t.Fatalf("got %v want %v", raw, want)
	}
	got := roundTrip(t, p)
	if !got.Key.IsCharacter() || got.Key.Scancode != 0x1E {
		t.Fatalf("got %+v", got.Key)
	}
}

func TestMouseScrollEncoding(t *testing.T) {
	p := Packet{Kind: KindMouseInput, Window: 0, Mouse: &MouseInput{Event: MouseScroll, Button: ScrollUp, X: 5, Y: 7}}
	raw, err := Encode(p)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{2, 0, 2, 0, 5, 0, 0, 0, 7, 0, 0, 0}
	if !reflect.DeepEqual(raw, want) {
		t.Fatalf("got %v want %v", raw, want)
	}
	got := roundTrip(t, p)
	if got.Mouse.ScrollDelta() != -1 {
		t.Fatalf("expected scroll up = -1, got %d", got.Mouse.ScrollDelta())
	}
}

func TestEventQueueRoundTrip(t *testing.T) {
	p := Packet{Kind: KindEventQueue, Window: 0, Event: &EventQueue{
		Name:   "char",
		Params: []wire.Value{wire.StringValue("A")},
	}}
	got := roundTrip(t, p)
	if got.Event.Name != "char" || len(got.Event.Params) != 1 || got.Event.Params[0].Str != "A" {
		t.Fatalf("got %+v", got.Event)
	}
}

func TestWindowInfoRoundTrip(t *testing.T) {
	p := Packet{Kind: KindWindowInfo, Window: 1, WinInfo: &WindowInfo{
		Flags: WindowUpdate, SecondaryID: 7, Width: 80, Height: 25, Title: "shell",
	}}
	got := roundTrip(t, p)
	if got.WinInfo.Width != 80 || got.WinInfo.Title != "shell" {
		t.Fatalf("got %+v", got.WinInfo)
	}
}

func TestServerMessageRoundTrip(t *testing.T) {
	p := Packet{Kind: KindServerMessage, Window: 0, Message: &ServerMessage{
		Flags: MessageError, Title: "oops", Body: "disk full",
	}}
	got := roundTrip(t, p)
	if got.Message.Kind() != "error" || got.Message.Body != "disk full" {
		t.Fatalf("got %+v", got.Message)
	}
}

func TestHandshakeRoundTrip(t *testing.T) {
	p := Packet{Kind: KindHandshake, Window: 0, Handshake: &Handshake{FeatureBits: 0x07}}
	got := roundTrip(t, p)
	if got.Handshake.FeatureBits != 0x07 {
		t.Fatalf("got %+v", got.Handshake)
	}
}

func TestFSRequestExists(t *testing.T) {
	p := Packet{Kind: KindFSRequest, Window: 0, FSReq: &FSRequest{Op: FSOpExists, ReqID: 0, Path: "/x"}}
	raw, err := Encode(p)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{7, 0, FSOpExists, 0, '/', 'x', 0}
	if !reflect.DeepEqual(raw, want) {
		t.Fatalf("got %v want %v", raw, want)
	}
}

func TestFSRequestCopyHasPath2(t *testing.T) {
	p := Packet{Kind: KindFSRequest, Window: 0, FSReq: &FSRequest{Op: FSOpCopy, ReqID: 1, Path: "/a", Path2: "/b"}}
	got := roundTrip(t, p)
	if got.FSReq.Path2 != "/b" {
		t.Fatalf("got %+v", got.FSReq)
	}
}

func TestFSRequestOpenModeTable(t *testing.T) {
	mode, writeClass := FSOpenModeOf(FSOpOpenBase | 1)
	if mode != "w" || !writeClass {
		t.Fatalf("got mode=%q writeClass=%v", mode, writeClass)
	}
	mode, writeClass = FSOpenModeOf(FSOpOpenBase | 4)
	if mode != "rb" || writeClass {
		t.Fatalf("got mode=%q writeClass=%v", mode, writeClass)
	}
}

func TestFSResponseBoolExists(t *testing.T) {
	p := Packet{Kind: KindFSResponse, Window: 0, FSResp: &FSResponse{Op: FSOpExists, ReqID: 0, Bool: true}}
	raw, err := Encode(p)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{8, 0, FSOpExists, 0, 1}
	if !reflect.DeepEqual(raw, want) {
		t.Fatalf("got %v want %v", raw, want)
	}
}

func TestFSResponseNumericError(t *testing.T) {
	p := Packet{Kind: KindFSResponse, Window: 0, FSResp: &FSResponse{Op: FSOpGetSize, Number: 0xFFFFFFFF}}
	got := roundTrip(t, p)
	if !got.FSResp.NumberIsError() {
		t.Fatal("expected numeric error sentinel preserved")
	}
}

func TestFSResponseAttributes(t *testing.T) {
	p := Packet{Kind: KindFSResponse, Window: 0, FSResp: &FSResponse{
		Op: FSOpAttributes,
		Attrs: FSAttributes{Size: 100, Created: 111, Modified: 222, IsDir: true, IsReadOnly: false, ErrorCode: 0},
	}}
	got := roundTrip(t, p)
	if got.FSResp.Attrs.Size != 100 || !got.FSResp.Attrs.IsDir {
		t.Fatalf("got %+v", got.FSResp.Attrs)
	}
}

func TestFSResponseVoidSuccessIsEmptyString(t *testing.T) {
	p := Packet{Kind: KindFSResponse, Window: 0, FSResp: &FSResponse{Op: FSOpMakeDir, ErrorMessage: ""}}
	got := roundTrip(t, p)
	if got.FSResp.ErrorMessage != "" {
		t.Fatalf("expected empty error message for success, got %q", got.FSResp.ErrorMessage)
	}
}

func TestFSDataRoundTrip(t *testing.T) {
	p := Packet{Kind: KindFSData, Window: 0, FSData: &FSData{Subtype: FSDataChunk, ReqID: 5, Data: []byte("hello")}}
	got := roundTrip(t, p)
	if string(got.FSData.Data) != "hello" || got.FSData.ReqID != 5 {
		t.Fatalf("got %+v", got.FSData)
	}
}

func TestDecodeUnknownKind(t *testing.T) {
	_, err := Decode([]byte{99, 0})
	if err == nil {
		t.Fatal("expected error for unknown kind")
	}
}
