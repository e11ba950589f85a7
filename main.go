package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/refset/returns-assistant/internal/config"
	"github.com/refset/returns-assistant/internal/logger"
	"github.com/refset/returns-assistant/internal/metrics"
	"github.com/refset/returns-assistant/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.NewLogger(nil).Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	log := logger.NewLogger(&logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		Output:     os.Stderr,
		JSON:       cfg.LogJSON,
		TimeFormat: time.RFC3339,
	})

	// Handle shutdown signals
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	ctx = logger.ContextWithLogger(ctx, log)

	m := metrics.New()
	srv := &http.Server{Addr: cfg.Metrics.Addr, Handler: metricsMux(m), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Metrics server failed", "addr", cfg.Metrics.Addr, "error", err)
		}
	}()

	p, err := pipeline.New(ctx, cfg, log, m)
	if err != nil {
		log.Error("Failed to create pipeline", "error", err)
		os.Exit(1)
	}

	runErr := p.Run(ctx)

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	_ = srv.Shutdown(shutdownCtx)

	if runErr != nil {
		log.Error("Pipeline error", "error", runErr)
		os.Exit(1)
	}
}

func metricsMux(m *metrics.Metrics) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}
