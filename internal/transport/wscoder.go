package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/coder/websocket"
)

// CoderWS adapts a github.com/coder/websocket connection to Transport.
// Grounded on the teacher's internal/ws_coder.go coderConn adapter, here
// specialized to carry one frame per WS text message instead of a generic
// byte stream.
type CoderWS struct {
	conn *websocket.Conn
}

// NewCoderWS wraps an already-established connection.
func NewCoderWS(conn *websocket.Conn) *CoderWS {
	return &CoderWS{conn: conn}
}

// DialCoderWS dials url and returns a ready-to-use Transport.
func DialCoderWS(ctx context.Context, url string) (*CoderWS, error) {
	opts := &websocket.DialOptions{
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
	conn, _, err := websocket.Dial(ctx, url, opts)
	if err != nil {
		return nil, fmt.Errorf("transport: coder websocket dial: %w", err)
	}
	return &CoderWS{conn: conn}, nil
}

func (c *CoderWS) Send(ctx context.Context, frame []byte) error {
	if err := c.conn.Write(ctx, websocket.MessageText, frame); err != nil {
		return fmt.Errorf("transport: coder websocket write: %w", err)
	}
	return nil
}

func (c *CoderWS) Receive(ctx context.Context) ([]byte, error) {
	_, data, err := c.conn.Read(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrClosed, err)
	}
	return data, nil
}

func (c *CoderWS) Close() error {
	return c.conn.Close(websocket.StatusNormalClosure, "close")
}
