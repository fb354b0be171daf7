// Package craftraw provides a small public surface for reusing this
// repository as a library.
// The implementation lives in internal/ and may change without notice.
package craftraw

import (
	"context"

	"craftraw/internal/client"
	"craftraw/internal/config"
	"craftraw/internal/display"
	"craftraw/internal/handshake"
	"craftraw/internal/hostfs"
	"craftraw/internal/hostfs/osfs"
	"craftraw/internal/metricsx"
	"craftraw/internal/packet"
	"craftraw/internal/server"
	"craftraw/internal/transport"
)

// --- Config ---

type ServerConfig = config.ServerConfig

type ClientConfig = config.ClientConfig

type WindowConfig = config.WindowConfig

type FilesystemConfig = config.FilesystemConfig

type FeaturesConfig = config.FeaturesConfig

type MetricsConfig = config.MetricsConfig

// LoadServerConfig loads the YAML configuration for cmd/craftraw-server.
func LoadServerConfig(path string) (*ServerConfig, error) { return config.LoadServerConfig(path) }

// LoadClientConfig loads the YAML configuration for cmd/craftraw-client.
func LoadClientConfig(path string) (*ClientConfig, error) { return config.LoadClientConfig(path) }

// --- Transport ---

type Transport = transport.Transport

// DialWS dials a CraftOS-PC raw-mode WebSocket endpoint.
func DialWS(ctx context.Context, url string) (Transport, error) {
	return transport.DialGorillaWS(ctx, url)
}

// NewBus creates a pair of in-process transports, useful for embedding a
// server and client in the same process without a real socket.
func NewBus(buffer int) (a, b Transport) { return transport.NewBus(buffer) }

// --- Server (ServerTerminal) ---

type Server = server.Server

type ServerOptions = server.Options

type TerminalState = server.TerminalState

type ServerEvent = server.Event

// NewServer creates a Server bound to t. Call Attach before driving it.
func NewServer(t Transport, opts ServerOptions) *Server { return server.New(t, opts) }

// --- Client (ClientRenderer) ---

type Renderer = client.Renderer

type Display = display.Display

type TitleSetter = display.TitleSetter

type MessageShower = display.MessageShower

type ClientEvent = client.Event

// NewClient creates a Renderer bound to t, driving disp as packets arrive.
// local is the client's announced feature bitmask (spec.md §4.3).
func NewClient(t Transport, disp Display, local uint16) *Renderer {
	return client.New(t, disp, local)
}

// --- Handshake / capability negotiation ---

type HandshakeState = handshake.State

// NewHandshake creates negotiation state announcing local as this side's
// supported feature bits.
func NewHandshake(local uint16) *HandshakeState { return handshake.New(local) }

// ServerAllowedBits computes the feature bitmask a server should announce.
func ServerAllowedBits(filesystemAllowed bool) uint16 {
	return handshake.ServerAllowedBits(filesystemAllowed)
}

// --- Filesystem bridge ---

type HostFS = hostfs.HostFS

type FSAttributes = packet.FSAttributes

// NewOSFileSystem creates a HostFS rooted at root on the local filesystem.
func NewOSFileSystem(root string) HostFS { return osfs.New(root) }

// --- Metrics ---

// EnableMetrics starts the /metrics HTTP listener until ctx is cancelled.
func EnableMetrics(ctx context.Context, addr string) error { return metricsx.Serve(ctx, addr) }
