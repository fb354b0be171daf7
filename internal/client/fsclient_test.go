package client

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"craftraw/internal/hostfs/osfs"
	"craftraw/internal/server"
	"craftraw/internal/transport"
)

// TestFSBridgeEndToEnd wires a real server.Server and client.Renderer
// across an in-process bus and exercises the filesystem calls spec.md
// §4.6 describes, including the write-open/commit/confirm sequence.
func TestFSBridgeEndToEnd(t *testing.T) {
	root := t.TempDir()
	os.WriteFile(filepath.Join(root, "x"), []byte("hello"), 0644)

	a, b := transport.NewBus(8)
	defer a.Close()
	defer b.Close()

	srv := server.New(a, server.Options{FilesystemAllowed: true, HostFS: osfs.New(root)})
	cl := New(b, nil, 0x03)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	go srv.RunReadLoop(ctx)
	go cl.Run(ctx)

	if err := cl.Attach(ctx); err != nil {
		t.Fatalf("attach: %v", err)
	}
	time.Sleep(50 * time.Millisecond) // let the handshake round trip settle

	exists, err := cl.Exists(ctx, 0, "/x")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if !exists {
		t.Fatal("expected /x to exist")
	}

	body, err := cl.ReadFile(ctx, 0, "/x", false)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(body) != "hello" {
		t.Fatalf("got %q", body)
	}

	if err := cl.WriteFile(ctx, 0, "/y", "w", []byte("world")); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := os.ReadFile(filepath.Join(root, "y"))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(got) != "world" {
		t.Fatalf("got %q", got)
	}
}

func TestFSCallFailsWhenNotNegotiated(t *testing.T) {
	a, _ := transport.NewBus(4)
	defer a.Close()
	cl := New(a, nil, 0)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := cl.Exists(ctx, 0, "/x")
	if err != ErrFSDisabled {
		t.Fatalf("expected ErrFSDisabled, got %v", err)
	}
}
