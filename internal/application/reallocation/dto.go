package reallocation

import (
	"time"

	"github.com/erp/omnisync/internal/domain/inventory"
	"github.com/google/uuid"
)

// CreateReallocationRequest is the manual creation payload
type CreateReallocationRequest struct {
	SKU           string `json:"sku" binding:"required,min=1,max=64"`
	ChannelOrigin string `json:"channel_origin" binding:"required,channel"`
	Reason        string `json:"reason" binding:"required,oneof=out-of-stock slow-mover"`
}

// ReallocationResponse represents a reallocation candidate in API responses
type ReallocationResponse struct {
	ID            uuid.UUID `json:"id"`
	SKU           string    `json:"sku"`
	ChannelOrigin string    `json:"channel_origin"`
	Reason        string    `json:"reason"`
	AddedDate     time.Time `json:"added_date"`
}

// ToReallocationResponse converts a domain candidate into its API shape
func ToReallocationResponse(r inventory.Reallocation) ReallocationResponse {
	return ReallocationResponse{
		ID:            r.ID,
		SKU:           r.SKU,
		ChannelOrigin: r.ChannelOrigin.String(),
		Reason:        r.Reason.String(),
		AddedDate:     r.AddedDate,
	}
}

// ToReallocationResponses converts a slice of candidates
func ToReallocationResponses(items []inventory.Reallocation) []ReallocationResponse {
	out := make([]ReallocationResponse, len(items))
	for i, r := range items {
		out[i] = ToReallocationResponse(r)
	}
	return out
}
