package app

import (
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/specialistvlad/patchgrid/internal/metrics"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW    io.Writer
	outMu   sync.Mutex
	logger  *slog.Logger
	config  *Config
	metrics *metrics.Metrics

	httpServer *http.Server
}

// NewApp is the constructor for the main application. Logs and diagnostics
// go to outW, and every App gets its own logger and metrics registry.
func NewApp(outW io.Writer, cfg *Config) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	logger.Debug("Logger configured successfully.")

	return &App{
		outW:    outW,
		logger:  logger,
		config:  cfg,
		metrics: metrics.New(prometheus.NewRegistry()),
	}
}

// Metrics returns the application's collectors. This is primarily for testing.
func (a *App) Metrics() *metrics.Metrics {
	return a.metrics
}
