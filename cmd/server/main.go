package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"regdesk/internal/platform/config"
	"regdesk/internal/platform/httpserver"
	"regdesk/internal/platform/logger"
	"regdesk/internal/platform/metrics"
	"regdesk/internal/registration"
	"regdesk/internal/registration/service"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal/registration.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	log := logger.New(os.Stdout, cfg.LogFormat, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	m := metrics.New(prometheus.DefaultRegisterer)

	svc := registration.NewService(registration.NewStore(),
		service.WithLogger(log),
		service.WithMetrics(m),
		service.WithLogHashKey([]byte(cfg.LogHashKey)),
	)
	h := registration.NewHandler(svc, log, m, cfg.AdminToken).WithRequestTimeout(cfg.RequestTimeout)

	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h.Register(r)

	apiServer := httpserver.New(cfg.Addr, r)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting regdesk", "addr", cfg.Addr, "env", cfg.Environment)
		return httpserver.Serve(ctx, apiServer, cfg.ShutdownTimeout)
	})
	if cfg.MetricsAddr != "" {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.Handler())
		metricsServer := httpserver.New(cfg.MetricsAddr, metricsMux)
		g.Go(func() error {
			log.Info("starting metrics listener", "addr", cfg.MetricsAddr)
			return httpserver.Serve(ctx, metricsServer, cfg.ShutdownTimeout)
		})
	}
	return g.Wait()
}
