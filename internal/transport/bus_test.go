package transport

import (
	"context"
	"testing"
	"time"
)

func TestBusRoundTrip(t *testing.T) {
	a, b := NewBus(4)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := a.Send(ctx, []byte("hello")); err != nil {
		t.Fatalf("send: %v", err)
	}
	got, err := b.Receive(ctx)
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if string(got) != "hello" {
		t.Fatalf("got %q", got)
	}
}

func TestBusCloseUnblocksReceive(t *testing.T) {
	a, b := NewBus(1)
	_ = a.Close()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := b.Receive(ctx); err != ErrClosed {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}
