package main

import (
	"context"
	"time"

	"github.com/erp/omnisync/internal/application/ordersync"
	"github.com/erp/omnisync/internal/domain/inventory"
	"go.uber.org/zap"
)

const (
	taskSync     = "sync"
	taskInsights = "insights"
)

type orderSyncer interface {
	SyncAllUsers(ctx context.Context) (*ordersync.PassReport, error)
}

type insightGenerator interface {
	Generate(ctx context.Context, thresholdDays int) ([]inventory.Insight, error)
}

// jobRecorder is satisfied by telemetry.JobMetrics
type jobRecorder interface {
	Observe(started time.Time, err error)
	SetItems(kind string, n int)
	Push(ctx context.Context) error
}

func runSync(ctx context.Context, svc orderSyncer, rec jobRecorder, log *zap.Logger) error {
	started := time.Now()
	report, err := svc.SyncAllUsers(ctx)
	if report != nil {
		rec.SetItems("users", report.Users)
		rec.SetItems("inserted", report.Inserted)
		rec.SetItems("failed_channels", report.FailedChannels)
	}
	rec.Observe(started, err)
	pushMetrics(ctx, rec, taskSync, log)
	return err
}

func runInsights(ctx context.Context, gen insightGenerator, thresholdDays int, rec jobRecorder, log *zap.Logger) error {
	started := time.Now()
	created, err := gen.Generate(ctx, thresholdDays)
	if err == nil {
		rec.SetItems("insights", len(created))
	}
	rec.Observe(started, err)
	pushMetrics(ctx, rec, taskInsights, log)
	return err
}

// pushMetrics never fails the job
func pushMetrics(ctx context.Context, rec jobRecorder, task string, log *zap.Logger) {
	pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := rec.Push(pushCtx); err != nil {
		log.Warn("Failed to push job metrics", zap.String("task", task), zap.Error(err))
	}
}
