package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/erp/omnisync/internal/application/insight"
	"github.com/erp/omnisync/internal/application/ordersync"
	"github.com/erp/omnisync/internal/bootstrap"
	"github.com/erp/omnisync/internal/infrastructure/config"
	"github.com/erp/omnisync/internal/infrastructure/ecommerce"
	"github.com/erp/omnisync/internal/infrastructure/messaging"
	"github.com/erp/omnisync/internal/infrastructure/persistence"
	"github.com/erp/omnisync/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

func main() {
	os.Exit(run())
}

func run() int {
	if len(os.Args) < 2 {
		printUsage()
		return 2
	}
	command := os.Args[1]

	fs := flag.NewFlagSet(command, flag.ContinueOnError)
	thresholdDays := fs.Int("threshold-days", 0, "Days without stock movement before a product is flagged (default: insight.threshold_days)")
	if err := fs.Parse(os.Args[2:]); err != nil {
		return 2
	}
	if command != taskSync && command != taskInsights {
		fmt.Fprintf(os.Stderr, "unknown command %q\n", command)
		printUsage()
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := bootstrap.Start(ctx, cfg, "worker")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start: %v\n", err)
		return 1
	}
	log := rt.Logger
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := rt.Close(closeCtx); err != nil {
			log.Error("Error releasing resources", zap.Error(err))
		}
	}()

	pushURL := ""
	if cfg.Pushgateway.Enabled {
		pushURL = cfg.Pushgateway.URL
	}
	jobMetrics := telemetry.NewJobMetrics(pushURL, cfg.Pushgateway.Job, command, log)

	log.Info("Worker started", zap.String("command", command), zap.String("env", cfg.App.Env))

	switch command {
	case taskSync:
		err = runSync(ctx, newSyncService(cfg, rt), jobMetrics, log)
	case taskInsights:
		var gen *insight.Generator
		gen, err = newGenerator(cfg, rt)
		if err == nil {
			err = runInsights(ctx, gen, *thresholdDays, jobMetrics, log)
		}
	}
	if err != nil {
		log.Error("Worker failed", zap.String("command", command), zap.Error(err))
		return 1
	}
	log.Info("Worker finished", zap.String("command", command))
	return 0
}

func newSyncService(cfg *config.Config, rt *bootstrap.Runtime) *ordersync.Service {
	db := rt.DB.DB
	registry := ecommerce.NewRegistry(ecommerce.SettingsFromConfig(cfg.Sync))
	return ordersync.NewService(
		persistence.NewGormOrderRepository(db),
		persistence.NewGormConnectionRepository(db),
		registry,
		rt.DB,
		rt.Logger,
		ordersync.WithMetrics(rt.Metrics),
	)
}

func newGenerator(cfg *config.Config, rt *bootstrap.Runtime) (*insight.Generator, error) {
	opts := []insight.Option{insight.WithMetrics(rt.Metrics)}
	if cfg.Kafka.Enabled {
		publisher, err := messaging.NewKafkaCandidatePublisher(cfg.Kafka, rt.Logger)
		if err != nil {
			return nil, fmt.Errorf("create candidate publisher: %w", err)
		}
		// closed after the pass, before the database
		rt.OnClose(func(context.Context) error { return publisher.Close() })
		opts = append(opts, insight.WithNotifier(publisher))
	}
	return insight.NewGenerator(
		persistence.NewGormTransactionScope(rt.DB.DB),
		insight.Config{ThresholdDays: cfg.Insight.ThresholdDays, PageSize: cfg.Insight.PageSize},
		rt.Logger,
		opts...,
	), nil
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `omnisync worker

Usage:
  worker sync                          Pull orders for every enabled channel connection once
  worker insights [-threshold-days N]  Generate inventory insights and reallocation candidates once

Exits non-zero when the pass aborts. Intended to run from cron or a Kubernetes CronJob.`)
}
