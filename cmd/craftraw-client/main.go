package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"craftraw/internal/client"
	"craftraw/internal/config"
	"craftraw/internal/metricsx"
	"craftraw/internal/packet"
	"craftraw/internal/transport"
)

// logDisplay is a minimal Display that logs what it would draw, standing
// in for a real terminal UI (out of core scope, spec.md §1).
type logDisplay struct {
	cols, rows uint16
}

func (d *logDisplay) SetMode(mode uint8)    { log.Printf("[display] mode=%d", mode) }
func (d *logDisplay) SetVisible(v bool)     { log.Printf("[display] visible=%v", v) }
func (d *logDisplay) Clear()                { log.Printf("[display] clear") }
func (d *logDisplay) SetCursor(x, y uint16, blink bool) {}
func (d *logDisplay) SetPaletteEntry(i uint8, rgb packet.RGB) {}
func (d *logDisplay) BlitChar(col, row uint16, ch byte, fg, bg uint8) {}
func (d *logDisplay) BlitPixelRow(row uint16, pixels []byte) {}
func (d *logDisplay) Size() (uint16, uint16, uint16, uint16) {
	if d.cols == 0 {
		d.cols, d.rows = 51, 19
	}
	return d.cols, d.rows, d.cols * 6, d.rows * 9
}
func (d *logDisplay) SetTitle(title string) { log.Printf("[display] title=%q", title) }
func (d *logDisplay) ShowMessage(kind, title, body string) {
	log.Printf("[display] message kind=%s title=%q: %s", kind, title, body)
}

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "c", "client.yaml", "config file path")
	flag.Parse()

	cfg, err := config.LoadClientConfig(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cfg.Metrics.Enable {
		go func() {
			if err := metricsx.Serve(ctx, cfg.Metrics.Addr); err != nil {
				log.Printf("metrics server stopped: %v", err)
			}
		}()
		log.Printf("metrics listening on %s", cfg.Metrics.Addr)
	}

	t, err := transport.DialGorillaWS(ctx, cfg.Connect.URL)
	if err != nil {
		log.Fatalf("dial %s: %v", cfg.Connect.URL, err)
	}
	defer t.Close()

	cl := client.New(t, &logDisplay{}, cfg.Features.FeatureBits())
	if err := cl.Attach(ctx); err != nil {
		log.Fatalf("attach: %v", err)
	}

	go func() {
		for ev := range cl.Events() {
			log.Printf("[event] window=%d name=%s", ev.Window, ev.Name)
		}
	}()

	log.Printf("craftraw-client connected to %s", cfg.Connect.URL)
	if err := cl.Run(ctx); err != nil {
		log.Printf("run loop: %v", err)
	}
	os.Exit(0)
}
