// Package main wires together the site monitor service binary.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/Stalin-143/monitor/internal/api"
	"github.com/Stalin-143/monitor/internal/clock/system"
	"github.com/Stalin-143/monitor/internal/config"
	"github.com/Stalin-143/monitor/internal/events"
	"github.com/Stalin-143/monitor/internal/events/sinks"
	collyfetch "github.com/Stalin-143/monitor/internal/fetch/colly"
	"github.com/Stalin-143/monitor/internal/hash/sha256"
	"github.com/Stalin-143/monitor/internal/id/uuid"
	"github.com/Stalin-143/monitor/internal/logging"
	"github.com/Stalin-143/monitor/internal/metrics"
	"github.com/Stalin-143/monitor/internal/monitor"
	"github.com/Stalin-143/monitor/internal/registry"
)

func main() {
	cfgPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if syncErr := logger.Sync(); syncErr != nil {
			fmt.Fprintf(os.Stderr, "logger sync failed: %v\n", syncErr)
		}
	}()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.Init()

	promSink, err := sinks.NewPrometheusSink(prometheus.DefaultRegisterer)
	if err != nil {
		logger.Fatal("prometheus sink init failed", zap.Error(err))
	}
	statsSink := sinks.NewStatsSink()
	hub := events.NewHub(events.Config{
		BufferSize:     cfg.Events.BufferSize,
		MaxBatchEvents: cfg.Events.MaxBatchEvents,
		MaxBatchWait:   time.Duration(cfg.Events.MaxBatchWaitMs) * time.Millisecond,
		Logger:         logger.Named("events"),
	}, sinks.NewLogSink(logger.Named("sink")), promSink, statsSink)

	fetcher := collyfetch.New(collyfetch.Config{
		UserAgent: cfg.Fetch.UserAgent,
	}, logger.Named("fetch"))

	reg := registry.New(
		fetcher,
		sha256.New(),
		system.New(),
		uuid.NewGenerator(),
		hub,
		monitor.FetchConfig{
			ProxyAddress: cfg.Fetch.ProxyAddress,
			Timeout:      cfg.FetchTimeout(),
		},
		logger.Named("registry"),
	)

	apiServer := api.NewServer(reg, statsSink, cfg, logger.Named("api"))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server started", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
	if err := hub.Close(shutdownCtx); err != nil {
		logger.Error("event hub close error", zap.Error(err))
	}
	logger.Info("shutdown complete")
}
