package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"craftraw/internal/config"
	"craftraw/internal/handshake"
	"craftraw/internal/hostfs/osfs"
	"craftraw/internal/metricsx"
	"craftraw/internal/server"
	"craftraw/internal/transport"
)

var (
	configPath string
	cfg        *config.ServerConfig
	nextWindow uint32
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

var rootCmd = &cobra.Command{
	Use:   "craftraw-server",
	Short: "CraftOS-PC raw-mode remote terminal server",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadServerConfig(configPath)
		return err
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

func serve() error {
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

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("upgrade: %v", err)
			return
		}
		id := atomic.AddUint32(&nextWindow, 1)
		go handleConn(ctx, id, conn)
	})

	httpSrv := &http.Server{Addr: cfg.Listen.Addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	log.Printf("craftraw-server listening on %s (filesystem=%v)", cfg.Listen.Addr, cfg.Filesystem.Enable)
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("listen: %w", err)
	}
	return nil
}

func handleConn(ctx context.Context, id uint32, conn *websocket.Conn) {
	t := transport.NewGorillaWS(conn)
	defer t.Close()

	srv := server.New(t, server.Options{
		DefaultWidth:      cfg.Window.Width,
		DefaultHeight:     cfg.Window.Height,
		FilesystemAllowed: cfg.Filesystem.Enable,
		HostFS:            osfs.New(cfg.Filesystem.Root),
	})

	if err := srv.Attach(ctx); err != nil {
		log.Printf("[conn %d] attach: %v", id, err)
		return
	}
	log.Printf("[conn %d] attached, announcing bits %#x", id, handshake.ServerAllowedBits(cfg.Filesystem.Enable))

	go srv.RunRepaintLoop(ctx)
	if err := srv.RunReadLoop(ctx); err != nil {
		log.Printf("[conn %d] read loop: %v", id, err)
	}
	log.Printf("[conn %d] closed", id)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "server.yaml", "config file path")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
