package metrics

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Resolutions counts finished link resolutions. The outcome label is
	// "ok" or the failure kind.
	Resolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zippy_resolutions_total",
			Help: "Total number of link resolutions, labeled by outcome kind.",
		},
		[]string{"outcome"},
	)
	// ResolutionDuration observes the fetch, evaluate and total stages of
	// resolving one link.
	ResolutionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "zippy_resolution_duration_seconds",
			Help:    "Duration of resolution stages in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"},
	)
	// Downloads counts files by result: downloaded, skipped or failed.
	Downloads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zippy_downloads_total",
			Help: "Total number of file downloads, labeled by result.",
		},
		[]string{"result"},
	)
	// DownloadedBytes counts bytes written to disk.
	DownloadedBytes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "zippy_downloaded_bytes_total",
			Help: "Total number of bytes written to disk by downloads.",
		},
	)
)

func init() {
	prometheus.MustRegister(Resolutions)
	prometheus.MustRegister(ResolutionDuration)
	prometheus.MustRegister(Downloads)
	prometheus.MustRegister(DownloadedBytes)
}

// Handler serves the default registry.
func Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// Expose serves /metrics on addr until the server fails. Run it in a goroutine.
func Expose(addr string) {
	slog.Info("Exposing Prometheus metrics", "address", addr)
	if err := http.ListenAndServe(addr, Handler()); err != nil {
		slog.Error("Failed to start Prometheus metrics server", "error", err)
	}
}
