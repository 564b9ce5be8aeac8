package main

import (
	"log/slog"
	"net/http"

	"github.com/jourq/jourq/internal/config"
	"github.com/jourq/jourq/internal/crossref"
	"github.com/jourq/jourq/internal/openalex"
	"github.com/jourq/jourq/internal/stats"
)

// newCrossrefClient builds the Crossref client with global-config
// overrides applied.
func newCrossrefClient(logger *slog.Logger, metrics *stats.Metrics) *crossref.Client {
	opts := []crossref.ClientOption{crossref.WithLogger(logger)}
	if metrics != nil {
		opts = append(opts, crossref.WithMetrics(metrics))
	}
	if v := config.GetMailto(); v != "" {
		opts = append(opts, crossref.WithMailto(v))
	}
	if v := config.GetUserAgent(); v != "" {
		opts = append(opts, crossref.WithUserAgent(v))
	}
	if v := config.GetCrossrefRate(); v > 0 {
		opts = append(opts, crossref.WithRateLimit(v))
	}
	if v := config.GetCrossrefBaseURL(); v != "" {
		opts = append(opts, crossref.WithBaseURL(v))
	}
	return crossref.NewClient(opts...)
}

// newOpenAlexClient builds the OpenAlex client with global-config
// overrides applied.
func newOpenAlexClient(logger *slog.Logger, metrics *stats.Metrics) *openalex.Client {
	opts := []openalex.ClientOption{openalex.WithLogger(logger)}
	if metrics != nil {
		opts = append(opts, openalex.WithMetrics(metrics))
	}
	if v := config.GetMailto(); v != "" {
		opts = append(opts, openalex.WithMailto(v))
	}
	if v := config.GetUserAgent(); v != "" {
		opts = append(opts, openalex.WithUserAgent(v))
	}
	if v := config.GetOpenAlexRate(); v > 0 {
		opts = append(opts, openalex.WithRateLimit(v))
	}
	if v := config.GetOpenAlexBaseURL(); v != "" {
		opts = append(opts, openalex.WithBaseURL(v))
	}
	return openalex.NewClient(opts...)
}

// resolveConcurrency picks the worker count: flag first, then config file.
// Zero means "use the engine default".
func resolveConcurrency(flag int) int {
	if flag > 0 {
		return flag
	}
	return config.GetConcurrency()
}

// serveMetrics exposes Prometheus metrics while a long command runs.
func serveMetrics(addr string, m *stats.Metrics, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	logger.Info("serving metrics", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Warn("metrics server stopped", "error", err)
	}
}
