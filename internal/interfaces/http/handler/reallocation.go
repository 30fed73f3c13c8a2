package handler

import (
	"context"
	"net/http"

	"github.com/erp/omnisync/internal/application/reallocation"
	"github.com/erp/omnisync/internal/domain/shared"
	"github.com/erp/omnisync/internal/interfaces/http/dto"
	"github.com/erp/omnisync/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// ReallocationService is the reallocation use-case surface used by the handler
type ReallocationService interface {
	List(ctx context.Context, page shared.PageRequest) (shared.Paginated[reallocation.ReallocationResponse], error)
	ListAll(ctx context.Context) ([]reallocation.ReallocationResponse, error)
	Exists(ctx context.Context, sku, channelOrigin, reason string) (bool, error)
	Create(ctx context.Context, req reallocation.CreateReallocationRequest) (*reallocation.ReallocationResponse, error)
}

// ReallocationHandler serves reallocation candidates
type ReallocationHandler struct {
	BaseHandler
	service ReallocationService
}

// NewReallocationHandler creates a new ReallocationHandler
func NewReallocationHandler(service ReallocationService) *ReallocationHandler {
	return &ReallocationHandler{service: service}
}

// ExistsQuery binds GET /reallocations/exists
type ExistsQuery struct {
	SKU           string `form:"sku" binding:"required"`
	ChannelOrigin string `form:"channel_origin" binding:"required"`
	Reason        string `form:"reason" binding:"required"`
}

// ExistsResponse answers GET /reallocations/exists
type ExistsResponse struct {
	Exists bool `json:"exists"`
}

// List handles GET /reallocations
func (h *ReallocationHandler) List(c *gin.Context) {
	var q dto.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	page, err := h.service.List(c.Request.Context(), q.PageRequest())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginatedResponse(page))
}

// ListAll handles GET /reallocations/all
func (h *ReallocationHandler) ListAll(c *gin.Context) {
	items, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	if items == nil {
		items = []reallocation.ReallocationResponse{}
	}
	h.Success(c, items)
}

// Exists handles GET /reallocations/exists
func (h *ReallocationHandler) Exists(c *gin.Context) {
	var q ExistsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	exists, err := h.service.Exists(c.Request.Context(), q.SKU, q.ChannelOrigin, q.Reason)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, ExistsResponse{Exists: exists})
}

// Create handles POST /reallocations. A duplicate key answers 409.
func (h *ReallocationHandler) Create(c *gin.Context) {
	var req reallocation.CreateReallocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	created, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, created)
}

// RegisterRoutes mounts the reallocation routes on rg
func (h *ReallocationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/reallocations")
	g.GET("", h.List)
	g.GET("/all", h.ListAll)
	g.GET("/exists", h.Exists)
	g.POST("", h.Create)
}
