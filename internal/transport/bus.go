package transport

import (
	"context"
	"log"
	"sync"

	"github.com/google/uuid"
)

// busEnvelope tags every frame crossing the bus with a correlation id, the
// shape a real message-bus client (the second convenience Transport
// spec.md §6 describes externally) would use for routing/tracing. Logged
// on the drop path below so a cancelled send can be matched against the
// attempt that produced it.
type busEnvelope struct {
	id    uuid.UUID
	frame []byte
}

// Bus is a simple in-process message-bus Transport: two BusEnds reading
// from each other's outbox channel. Useful for tests and same-process
// demos standing in for a real broker-backed Transport.
type Bus struct {
	mu     sync.Mutex
	closed bool
	aToB   chan busEnvelope
	bToA   chan busEnvelope
}

// NewBus creates a connected pair of BusEnds.
func NewBus(buffer int) (a, b *BusEnd) {
	bus := &Bus{
		aToB: make(chan busEnvelope, buffer),
		bToA: make(chan busEnvelope, buffer),
	}
	return &BusEnd{bus: bus, out: bus.aToB, in: bus.bToA},
		&BusEnd{bus: bus, out: bus.bToA, in: bus.aToB}
}

// BusEnd is one side of a Bus; it implements Transport.
type BusEnd struct {
	bus *Bus
	out chan busEnvelope
	in  chan busEnvelope
}

func (e *BusEnd) Send(ctx context.Context, frame []byte) error {
	e.bus.mu.Lock()
	closed := e.bus.closed
	e.bus.mu.Unlock()
	if closed {
		return ErrClosed
	}
	cp := make([]byte, len(frame))
	copy(cp, frame)
	env := busEnvelope{id: uuid.New(), frame: cp}
	select {
	case e.out <- env:
		return nil
	case <-ctx.Done():
		log.Printf("[BUS] dropping frame %s: %v", env.id, ctx.Err())
		return ctx.Err()
	}
}

func (e *BusEnd) Receive(ctx context.Context) ([]byte, error) {
	select {
	case env, ok := <-e.in:
		if !ok {
			return nil, ErrClosed
		}
		return env.frame, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (e *BusEnd) Close() error {
	e.bus.mu.Lock()
	defer e.bus.mu.Unlock()
	if e.bus.closed {
		return nil
	}
	e.bus.closed = true
	close(e.bus.aToB)
	close(e.bus.bToA)
	return nil
}
