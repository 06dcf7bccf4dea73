// Package metrics exposes the server's Prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts HTTP requests by status code and method.
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ezshare",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests served.",
	}, []string{"code", "method"})

	// DownloadBytes counts bytes streamed to clients, files and archives
	// combined.
	DownloadBytes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ezshare",
		Name:      "download_bytes_total",
		Help:      "Total bytes streamed in downloads.",
	})

	// UploadFiles counts files accepted through the upload endpoint.
	UploadFiles = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ezshare",
		Name:      "upload_files_total",
		Help:      "Total files saved from uploads.",
	})

	// ActiveSessions tracks the number of live login sessions.
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "ezshare",
		Name:      "active_sessions",
		Help:      "Number of live sessions.",
	})

	// LoginFailures counts rejected login attempts.
	LoginFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ezshare",
		Name:      "login_failures_total",
		Help:      "Total rejected login attempts.",
	})
)
