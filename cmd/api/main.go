package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hamed0406/backlinkmonitor/internal/batch"
	"github.com/hamed0406/backlinkmonitor/internal/config"
	"github.com/hamed0406/backlinkmonitor/internal/httpapi"
	"github.com/hamed0406/backlinkmonitor/internal/logging"
	"github.com/hamed0406/backlinkmonitor/internal/metrics"
	"github.com/hamed0406/backlinkmonitor/internal/probe"
	"github.com/hamed0406/backlinkmonitor/internal/repo"
	"github.com/hamed0406/backlinkmonitor/internal/repo/memory"
	"github.com/hamed0406/backlinkmonitor/internal/report"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()
	logger, err := logging.NewLogger(cfg.LogDir, os.Stdout)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Fresh in-process results win; otherwise serve the last CSV written by the batch.
	mem := memory.New()
	store := repo.Fallback{mem, report.NewCSVStore(cfg.OutputCSV)}

	checker := probe.NewBacklinkChecker(cfg.HTTPTimeout)
	if cfg.UserAgent != "" {
		checker.UserAgent = cfg.UserAgent
	}
	checker.DiagnoseDNS = cfg.DiagnoseDNS

	api := httpapi.NewServer(logger, store, m.Instrument(checker), promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	api.CheckKeys = cfg.APIKeys
	api.CheckPerMin, api.CheckBurst = cfg.CheckPerMin, cfg.CheckBurst
	api.TrustProxy = cfg.TrustProxy

	if cfg.RunOnStart {
		go runOnce(ctx, cfg, logger, m, mem)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("api_listen", zap.String("addr", cfg.Addr), zap.Bool("check_auth", len(cfg.APIKeys) > 0))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("api_failed", zap.Error(err))
	}
}

func runOnce(ctx context.Context, cfg config.Config, logger *zap.Logger, m *metrics.Metrics, mem *memory.Store) {
	targets, err := config.LoadTargets(cfg.TargetsFile)
	if err != nil {
		logger.Error("startup_run_skipped", zap.Error(err))
		return
	}
	if _, err := batch.FromConfig(cfg, logger, m, mem).Run(ctx, targets); err != nil {
		logger.Error("startup_run_failed", zap.Error(err))
	}
}
