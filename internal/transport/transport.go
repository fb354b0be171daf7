// Package transport defines the Delegate interface (spec.md §6 "Transport
// contract") that the server and client consume, plus three convenience
// implementations the core never assumes but that let a host wire things
// up quickly: two WebSocket adapters and an in-process message bus.
package transport

import (
	"context"
	"errors"
)

// ErrClosed is returned by Receive once the transport has been closed, and
// by Send after Close. Per spec.md §7 ("Transport closed") the core must
// set its own closed flag and never retry once it sees this.
var ErrClosed = errors.New("transport: closed")

// Transport is the single collaborator the core needs to move frames. It
// intentionally says nothing about the underlying medium — spec.md §1
// keeps WebSocket/datagram/etc. out of THE CORE.
type Transport interface {
	// Send delivers one textual frame verbatim. Ordered, reliable.
	Send(ctx context.Context, frame []byte) error

	// Receive returns the next frame, blocking until one arrives or ctx is
	// done. Returns ErrClosed (wrapped or bare) at clean end of stream.
	Receive(ctx context.Context) ([]byte, error)

	// Close releases the underlying medium. Idempotent.
	Close() error
}
