package main

import (
	"errors"

	appwebhook "github.com/erp/omnisync/internal/application/webhook"
	"github.com/erp/omnisync/internal/domain/shared"
	"github.com/erp/omnisync/internal/infrastructure/config"
	"github.com/erp/omnisync/internal/infrastructure/telemetry"
	infrawebhook "github.com/erp/omnisync/internal/infrastructure/webhook"
	"github.com/erp/omnisync/internal/interfaces/http/handler"
	"go.uber.org/zap"
)

// newWebhookProcessor returns nil when no usable secret is configured; the
// handler then rejects deliveries as not configured.
func newWebhookProcessor(
	cfg config.WebhookConfig,
	store shared.ReplayStore,
	syncer appwebhook.OrderSyncer,
	metrics *telemetry.EngineMetrics,
	log *zap.Logger,
) (handler.WebhookProcessor, error) {
	verifier, err := infrawebhook.NewVerifier(cfg.Secrets, store, cfg.ReplayWindow, log)
	if errors.Is(err, infrawebhook.ErrNoSecrets) {
		log.Warn("No webhook secret configured; order webhooks will be rejected")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	normalizer, err := infrawebhook.NewNormalizer()
	if err != nil {
		return nil, err
	}
	return appwebhook.NewService(verifier, normalizer, syncer, metrics, log), nil
}
