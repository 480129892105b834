package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/FranksOps/scout/internal/results"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SearchPagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scout_search_pages_total",
			Help: "Total number of search API pages requested",
		},
		[]string{"status"},
	)

	SearchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scout_search_duration_seconds",
			Help:    "Duration of search API page requests in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
	)

	EnrichTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scout_enrich_total",
			Help: "Total number of result pages enriched",
		},
		[]string{"domain", "outcome", "detected", "detection_src"},
	)

	EnrichDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scout_enrich_duration_seconds",
			Help:    "Duration of result page fetches in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"domain"},
	)

	EnrichBytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scout_enrich_bytes_total",
			Help: "Total bytes downloaded while enriching result pages",
		},
		[]string{"domain"},
	)

	ProxyFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scout_proxy_failures_total",
			Help: "Total number of proxy failures during page fetches",
		},
		[]string{"proxy_url"},
	)
)

// RecordSearchPage counts one search API request.
func RecordSearchPage(d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	SearchPagesTotal.WithLabelValues(status).Inc()
	SearchDuration.Observe(d.Seconds())
}

// RecordEnrich updates the enrichment metrics for one entry.
func RecordEnrich(domain string, e results.Entry) {
	outcome := "ok"
	if e.Failed() {
		outcome = "error"
	}

	EnrichTotal.WithLabelValues(domain, outcome, strconv.FormatBool(e.DetectedBot), e.DetectionSrc).Inc()
	EnrichDuration.WithLabelValues(domain).Observe(e.Duration.Seconds())
	EnrichBytesTotal.WithLabelValues(domain).Add(float64(e.Bytes))
}

// Handler exposes the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Server encapsulates an HTTP server for Prometheus metrics.
type Server struct {
	srv *http.Server
}

// Start begins listening on port and exposes /metrics.
func Start(port int, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "addr", srv.Addr, "err", err)
		}
	}()

	return &Server{srv: srv}
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) error {
	if s == nil || s.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
