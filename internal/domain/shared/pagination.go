package shared

// PageRequest is a 1-indexed page request
type PageRequest struct {
	Page     int
	PageSize int
}

const (
	// DefaultPageSize is used when a request carries no page size
	DefaultPageSize = 20
	// MaxPageSize caps page sizes coming from the API
	MaxPageSize = 100
)

// Normalize applies defaults and bounds to the request
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// Offset returns the row offset for the page
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Paginated represents a paginated result
type Paginated[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// NewPaginated creates a new paginated result
func NewPaginated[T any](items []T, total int64, req PageRequest) Paginated[T] {
	totalPages := 0
	if req.PageSize > 0 {
		totalPages = int(total) / req.PageSize
		if int(total)%req.PageSize > 0 {
			totalPages++
		}
	}
	return Paginated[T]{
		Items:      items,
		Total:      total,
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalPages: totalPages,
	}
}
