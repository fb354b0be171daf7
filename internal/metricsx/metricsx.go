// Package metricsx exposes Prometheus collectors for the core's hot paths,
// replacing the hand-rolled map-based telemetry the teacher's
// internal/metrics.go kept per-upstream with a standard
// github.com/prometheus/client_golang registry.
package metricsx

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ChecksumMismatches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "craftraw_checksum_mismatches_total",
		Help: "Frames dropped for a CRC-32 mismatch.",
	})

	FramesDecoded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "craftraw_frames_decoded_total",
		Help: "Frames successfully decoded, by packet kind.",
	}, []string{"kind"})

	RepaintsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "craftraw_repaints_emitted_total",
		Help: "Kind-0 ScreenUpdate packets emitted, by window id.",
	}, []string{"window"})

	FSCallLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "craftraw_fs_call_duration_seconds",
		Help:    "FSBridge client call latency, by op.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})

	ActiveWindows = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "craftraw_active_windows",
		Help: "Windows currently open on the server.",
	})
)

// ObserveFSCall records one FSBridge client call's wall-clock duration.
func ObserveFSCall(op uint8, start time.Time) {
	FSCallLatency.WithLabelValues(strconv.Itoa(int(op))).Observe(time.Since(start).Seconds())
}

// RecordChecksumMismatch counts one frame dropped for a CRC-32 mismatch
// (spec.md §7 "Checksum mismatch").
func RecordChecksumMismatch() {
	ChecksumMismatches.Inc()
}

// RecordFrameDecoded counts one successfully decoded packet, by kind.
func RecordFrameDecoded(kind uint8) {
	FramesDecoded.WithLabelValues(strconv.Itoa(int(kind))).Inc()
}

// RecordRepaintEmitted counts one kind-0 ScreenUpdate sent for window.
func RecordRepaintEmitted(window uint8) {
	RepaintsEmitted.WithLabelValues(strconv.Itoa(int(window))).Inc()
}

// SetActiveWindows reports the server's current open-window count.
func SetActiveWindows(n int) {
	ActiveWindows.Set(float64(n))
}

// Serve starts a minimal /metrics HTTP server, shutting down when ctx is
// cancelled. Mirrors the teacher's StartMetricsServer shape.
func Serve(ctx context.Context, addr string) error {
	if strings.TrimSpace(addr) == "" {
		return errors.New("metricsx: empty listen address")
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
