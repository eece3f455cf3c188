package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/CleanExpo/Zenith-Fresh-sub004/api/httpapi"
	"github.com/CleanExpo/Zenith-Fresh-sub004/internal/config"
	"github.com/CleanExpo/Zenith-Fresh-sub004/internal/logging"
	"github.com/CleanExpo/Zenith-Fresh-sub004/internal/observability"
	"github.com/CleanExpo/Zenith-Fresh-sub004/internal/scheduler"
	"github.com/CleanExpo/Zenith-Fresh-sub004/internal/store"
	"github.com/CleanExpo/Zenith-Fresh-sub004/internal/worker"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		panic(err)
	}

	logger, err := logging.New(logging.Config{Level: cfg.LogLevel, Env: cfg.Env})
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	observability.RegisterMetrics()

	shutdownTracing, err := observability.InitTracing(context.Background(), observability.OTelConfig{
		ServiceName: firstNonEmpty(cfg.OTELServiceName, "zenith-processor"),
		Endpoint:    cfg.OTELExporterOTLPEndpoint,
		Env:         cfg.Env,
		SampleRatio: cfg.OTELSampleRatio,
	})
	if err != nil {
		logger.Fatal("otel init failed", zap.Error(err))
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	st := store.New()
	registry := worker.DefaultHandlers()

	sched := scheduler.New(st, registry, logger, scheduler.Config{
		MaxConcurrent: cfg.MaxConcurrentTasks,
	})
	sched.Start()

	server := httpapi.NewServer(httpapi.Config{Port: cfg.HTTPPort}, logger, sched)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		// stop taking requests first, then let in-flight tasks drain
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown error", zap.Error(err))
		}
		if err := sched.Stop(shutdownCtx); err != nil {
			logger.Warn("scheduler drain incomplete", zap.Error(err))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("fatal error", zap.Error(err))
	}
	logger.Info("process exited cleanly")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
