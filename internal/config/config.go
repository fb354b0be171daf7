// Package config is the YAML-driven configuration for the server and
// client demo binaries, shaped after the teacher's internal/config.go:
// one struct per concern, yaml tags, LoadServerConfig/LoadClientConfig
// applying defaults for anything left zero.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ServerConfig configures cmd/craftraw-server.
type ServerConfig struct {
	Listen struct {
		Transport string `yaml:"transport"` // "ws" or "bus" (demo/test only)
		Addr      string `yaml:"addr"`
	} `yaml:"listen"`

	Window WindowConfig `yaml:"window"`

	Filesystem FilesystemConfig `yaml:"filesystem"`

	Metrics MetricsConfig `yaml:"metrics"`
}

// ClientConfig configures cmd/craftraw-client.
type ClientConfig struct {
	Connect struct {
		Transport string `yaml:"transport"`
		URL       string `yaml:"url"`
	} `yaml:"connect"`

	Features FeaturesConfig `yaml:"features"`

	Metrics MetricsConfig `yaml:"metrics"`
}

// WindowConfig sets the default per-window terminal geometry a new
// ServerTerminal window starts at (spec.md §3 TerminalState).
type WindowConfig struct {
	Width  uint16 `yaml:"width"`
	Height uint16 `yaml:"height"`
}

// FilesystemConfig gates the server's FSBridge half.
type FilesystemConfig struct {
	Enable bool   `yaml:"enable"`
	Root   string `yaml:"root"`
}

// FeaturesConfig is the client's own announced handshake feature bits
// (spec.md §4.7), expressed as named flags rather than a raw bitmask for
// readability in YAML.
type FeaturesConfig struct {
	BinaryChecksum bool `yaml:"binary_checksum"`
	Filesystem     bool `yaml:"filesystem"`
	WantWindowInfo bool `yaml:"want_window_info"`
}

// MetricsConfig is the /metrics listener both binaries expose.
type MetricsConfig struct {
	Enable bool   `yaml:"enable"`
	Addr   string `yaml:"addr"`
}

// RepaintInterval is the fixed repaint-coalescing tick spec.md §5 fixes
// at 50ms; not configurable, but named here so cmd/ code has one place to
// reference it instead of a bare literal.
const RepaintInterval = 50 * time.Millisecond

// LoadServerConfig reads and defaults a ServerConfig from a YAML file.
func LoadServerConfig(path string) (*ServerConfig, error) {
	var c ServerConfig
	if err := loadYAML(path, &c); err != nil {
		return nil, err
	}
	if c.Listen.Transport == "" {
		c.Listen.Transport = "ws"
	}
	if c.Listen.Addr == "" {
		c.Listen.Addr = "127.0.0.1:8765"
	}
	if c.Window.Width == 0 {
		c.Window.Width = 51
	}
	if c.Window.Height == 0 {
		c.Window.Height = 19
	}
	if c.Filesystem.Root == "" {
		c.Filesystem.Root = "."
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = "127.0.0.1:9090"
	}
	return &c, nil
}

// LoadClientConfig reads and defaults a ClientConfig from a YAML file.
func LoadClientConfig(path string) (*ClientConfig, error) {
	var c ClientConfig
	if err := loadYAML(path, &c); err != nil {
		return nil, err
	}
	if c.Connect.Transport == "" {
		c.Connect.Transport = "ws"
	}
	if c.Connect.URL == "" {
		c.Connect.URL = "ws://127.0.0.1:8765"
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = "127.0.0.1:9091"
	}
	return &c, nil
}

func loadYAML(path string, out interface{}) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(b, out)
}

// FeatureBits packs FeaturesConfig into the kind-6 wire bitmask (spec.md §4.3).
func (f FeaturesConfig) FeatureBits() uint16 {
	var bits uint16
	if f.BinaryChecksum {
		bits |= 0x01
	}
	if f.Filesystem {
		bits |= 0x02
	}
	if f.WantWindowInfo {
		bits |= 0x04
	}
	return bits
}
