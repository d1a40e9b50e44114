// Package metrics defines the Prometheus collectors for resolutions and
// downloads and serves them over HTTP.
//
// The collectors are registered with the default registry on import:
//
//	metrics.Resolutions.WithLabelValues("ok").Inc()
//	metrics.Downloads.WithLabelValues("skipped").Inc()
//
// # Exposing
//
// Expose blocks, so it is started in its own goroutine:
//
//	if settings.MetricsAddr != "" {
//	    go metrics.Expose(settings.MetricsAddr)
//	}
//
// Handler returns the same /metrics mux for tests or an existing server.
package metrics
