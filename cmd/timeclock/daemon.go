package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/timeclock/internal/config"
	"git.home.luguber.info/inful/timeclock/internal/logfields"
	"git.home.luguber.info/inful/timeclock/internal/maintenance"
	"git.home.luguber.info/inful/timeclock/internal/metrics"
	"git.home.luguber.info/inful/timeclock/internal/store"
)

// runDaemon keeps the process resident: it exposes Prometheus metrics, runs
// periodic store maintenance, and reloads the logging level when the config
// file changes on disk.
func runDaemon(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var rec metrics.Recorder = metrics.NoopRecorder{}
	var metricsSrv *http.Server
	var reg *prom.Registry
	if cfg.Metrics.Enabled {
		reg = prom.NewRegistry()
		rec = metrics.NewPrometheusRecorder(reg)
	}

	// The daemon's manager carries the recorder so connection retries during
	// maintenance show up on the metrics endpoint.
	mgr := store.NewManager(cfg.Database, cfg.Policy(), store.WithRecorder(rec))
	if err := mgr.Migrate(ctx); err != nil {
		return err
	}

	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.HTTPHandler(reg))
		metricsSrv = &http.Server{
			Addr:              cfg.Metrics.Listen,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			slog.Info("Metrics endpoint listening", slog.String("addr", cfg.Metrics.Listen))
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("Metrics server failed", logfields.Error(err))
			}
		}()
	}

	if cfg.Maintenance.Enabled {
		sched, err := maintenance.NewScheduler(mgr, cfg.Maintenance.IntervalDuration())
		if err != nil {
			return err
		}
		if err := sched.Start(ctx); err != nil {
			return err
		}
		defer func() {
			if err := sched.Stop(); err != nil {
				slog.Warn("Maintenance scheduler stop failed", logfields.Error(err))
			}
		}()
	}

	watcher, err := config.NewWatcher(CLI.Config, func(next *config.Config) {
		logLevel.Set(parseLevel(next.Logging.Level))
		slog.Info("Configuration reloaded", slog.String("log_level", next.Logging.Level))
	})
	if err != nil {
		slog.Warn("Config watching unavailable", logfields.Error(err))
	} else {
		if err := watcher.Start(ctx); err != nil {
			slog.Warn("Config watching unavailable", logfields.Error(err))
		} else {
			defer func() {
				if err := watcher.Stop(); err != nil {
					slog.Warn("Config watcher stop failed", logfields.Error(err))
				}
			}()
		}
	}

	slog.Info("Daemon started", slog.Int("pid", os.Getpid()))
	<-ctx.Done()
	slog.Info("Shutting down")

	if metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("Metrics server shutdown failed", logfields.Error(err))
		}
	}
	return nil
}
