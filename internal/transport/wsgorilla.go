package transport

import (
	"context"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
)

// GorillaWS adapts a gorilla/websocket connection to Transport. Grounded on
// the teacher's internal/transport/websocket.go WebSocketConn, here carrying
// one frame per WS text message rather than implementing net.Conn.
type GorillaWS struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func NewGorillaWS(conn *websocket.Conn) *GorillaWS {
	return &GorillaWS{conn: conn}
}

// DialGorillaWS dials url and returns a ready-to-use Transport.
func DialGorillaWS(ctx context.Context, url string) (*GorillaWS, error) {
	dialer := websocket.Dialer{EnableCompression: true}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("transport: gorilla websocket dial: %w", err)
	}
	return &GorillaWS{conn: conn}, nil
}

func (g *GorillaWS) Send(ctx context.Context, frame []byte) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		return fmt.Errorf("transport: gorilla websocket write: %w", err)
	}
	return nil
}

func (g *GorillaWS) Receive(ctx context.Context) ([]byte, error) {
	// gorilla/websocket has no native context-aware read; a done channel
	// would need its own reader goroutine. For the scope of this adapter
	// we rely on the connection's own deadlines/close to unblock reads,
	// matching how the teacher's WebSocketConn.Read works (no context
	// plumbing either).
	_, data, err := g.conn.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrClosed, err)
	}
	return data, nil
}

func (g *GorillaWS) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	_ = g.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return g.conn.Close()
}
