package app

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"chatnotify/internal/config"
	"chatnotify/internal/core"
	"chatnotify/internal/lifecycle"
	"chatnotify/internal/metrics"
	"chatnotify/internal/toast"
	"chatnotify/internal/unread"
)

// Providers that adapt constructors to the dependency graph.

func ProvideMetrics(registry *prometheus.Registry) *metrics.Metrics {
	return metrics.New(registry)
}

func ProvideUnreadFetcher(cfg *config.Config, logger *zap.Logger) unread.Fetcher {
	return unread.NewClient(cfg.APIBaseURL, &http.Client{Timeout: 10 * time.Second}, logger)
}

func ProvideWatcher(src *lifecycle.SignalSource, c *core.Core, logger *zap.Logger) *lifecycle.Watcher {
	return lifecycle.NewWatcher(src, c.RefreshUnreadTotal, logger)
}

func ProvideDisplay(cfg *config.Config, logger *zap.Logger) toast.Display {
	return toast.NewLogDisplay(cfg, logger)
}
