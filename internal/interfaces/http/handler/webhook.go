package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	appwebhook "github.com/erp/omnisync/internal/application/webhook"
	"github.com/erp/omnisync/internal/domain/channel"
	infrawebhook "github.com/erp/omnisync/internal/infrastructure/webhook"
	"github.com/erp/omnisync/internal/interfaces/http/dto"
	"github.com/erp/omnisync/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// DefaultSignatureHeader carries the hex HMAC-SHA256 of the raw body
const DefaultSignatureHeader = "X-Signature"

// WebhookProcessor verifies, parses and stores one delivery
type WebhookProcessor interface {
	Handle(ctx context.Context, payload []byte, signature string) (*appwebhook.Outcome, error)
}

// WebhookHandler receives signed order webhooks
type WebhookHandler struct {
	BaseHandler
	processor       WebhookProcessor
	signatureHeader string
	maxPayload      int64
}

// NewWebhookHandler creates a new WebhookHandler. A nil processor means no
// signing secret is configured; every delivery is then rejected with 400.
func NewWebhookHandler(processor WebhookProcessor, signatureHeader string) *WebhookHandler {
	if signatureHeader == "" {
		signatureHeader = DefaultSignatureHeader
	}
	return &WebhookHandler{processor: processor, signatureHeader: signatureHeader}
}

// WithMaxPayload caps the webhook body below the engine-wide limit
func (h *WebhookHandler) WithMaxPayload(n int64) *WebhookHandler {
	h.maxPayload = n
	return h
}

// ReceiveOrder handles POST /webhooks/orders. It answers 204 once the order
// is stored or already known.
func (h *WebhookHandler) ReceiveOrder(c *gin.Context) {
	if h.processor == nil {
		h.ErrorWithCode(c, dto.ErrCodeWebhookNotConfigured, "Webhook secret is not configured")
		return
	}

	signature := c.GetHeader(h.signatureHeader)
	if signature == "" {
		h.ErrorWithCode(c, dto.ErrCodeSignatureMissing, "Missing "+h.signatureHeader+" header")
		return
	}

	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			middleware.AbortTooLarge(c)
			return
		}
		h.BadRequest(c, "Failed to read request body")
		return
	}

	if _, err := h.processor.Handle(c.Request.Context(), payload, signature); err != nil {
		h.handleWebhookError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *WebhookHandler) handleWebhookError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, infrawebhook.ErrReplayDetected):
		h.ErrorWithCode(c, dto.ErrCodeReplayDetected, "Delivery was already received")
	case errors.Is(err, infrawebhook.ErrSignatureMissing):
		h.ErrorWithCode(c, dto.ErrCodeSignatureMissing, "Signature is empty")
	case errors.Is(err, infrawebhook.ErrVerificationFailed):
		h.ErrorWithCode(c, dto.ErrCodeSignatureInvalid, "Signature verification failed")
	case errors.Is(err, channel.ErrMalformedPayload):
		h.ErrorWithCode(c, dto.ErrCodeMalformedPayload, err.Error())
	default:
		h.HandleDomainError(c, err)
	}
}

// RegisterRoutes mounts the webhook routes on rg
func (h *WebhookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/webhooks/orders", middleware.BodyLimit(h.maxPayload), h.ReceiveOrder)
}
