package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/erp/omnisync/internal/domain/channel"
	"github.com/erp/omnisync/internal/domain/inventory"
	"github.com/erp/omnisync/internal/domain/shared"
	"github.com/erp/omnisync/internal/interfaces/http/dto"
	"github.com/erp/omnisync/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// InsightLister lists the insight audit trail
type InsightLister interface {
	List(ctx context.Context, filter inventory.InsightFilter, page shared.PageRequest) (shared.Paginated[inventory.Insight], error)
}

// InsightHandler serves generated insights
type InsightHandler struct {
	BaseHandler
	insights InsightLister
}

// NewInsightHandler creates a new InsightHandler
func NewInsightHandler(insights InsightLister) *InsightHandler {
	return &InsightHandler{insights: insights}
}

// InsightQuery binds GET /insights filters
type InsightQuery struct {
	dto.PageQuery
	SKU     string `form:"sku" binding:"omitempty,max=64"`
	Channel string `form:"channel" binding:"omitempty,channel"`
	Status  string `form:"status" binding:"omitempty,oneof=out-of-stock slow-mover"`
}

// InsightResponse represents one insight in API responses
type InsightResponse struct {
	ID            uuid.UUID `json:"id"`
	ProductSKU    string    `json:"product_sku"`
	Channel       string    `json:"channel"`
	Status        string    `json:"status"`
	GeneratedDate time.Time `json:"generated_date"`
}

func toInsightResponse(i inventory.Insight) InsightResponse {
	return InsightResponse{
		ID:            i.ID,
		ProductSKU:    i.ProductSKU,
		Channel:       i.Channel.String(),
		Status:        i.Status.String(),
		GeneratedDate: i.GeneratedDate,
	}
}

// List handles GET /insights
func (h *InsightHandler) List(c *gin.Context) {
	var q InsightQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	filter := inventory.InsightFilter{
		SKU:    q.SKU,
		Status: inventory.InsightStatus(q.Status),
	}
	if q.Channel != "" {
		// validated by the binding tag
		filter.Channel, _ = channel.Parse(q.Channel)
	}

	page, err := h.insights.List(c.Request.Context(), filter, q.PageRequest())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	items := make([]InsightResponse, len(page.Items))
	for i, in := range page.Items {
		items[i] = toInsightResponse(in)
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(items, page.Total, page.Page, page.PageSize))
}

// RegisterRoutes mounts the insight routes on rg
func (h *InsightHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/insights", h.List)
}
