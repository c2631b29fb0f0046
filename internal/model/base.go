package model

// Pagination represents common pagination parameters. Pages are 1-indexed.
type Pagination struct {
	Page     int `json:"page" form:"page"`
	PageSize int `json:"page_size" form:"page_size"`
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Normalize clamps pagination to sane bounds.
func (p *Pagination) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
}

// Offset returns the row offset for the current page.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// SortOrder represents sorting parameters
type SortOrder struct {
	Field string `json:"field" form:"sort_field"`
	Dir   string `json:"direction" form:"sort_dir"`
}

// PageInfo describes the shape of a paginated result set.
type PageInfo struct {
	Page        int  `json:"page"`
	PageSize    int  `json:"page_size"`
	TotalItems  int  `json:"total_items"`
	TotalPages  int  `json:"total_pages"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
}

// NewPageInfo computes page counts from a normalized pagination and a total
// row count.
func NewPageInfo(p Pagination, totalItems int) PageInfo {
	totalPages := 0
	if totalItems > 0 {
		totalPages = (totalItems + p.PageSize - 1) / p.PageSize
	}
	return PageInfo{
		Page:        p.Page,
		PageSize:    p.PageSize,
		TotalItems:  totalItems,
		TotalPages:  totalPages,
		HasNext:     p.Page < totalPages,
		HasPrevious: p.Page > 1 && totalItems > 0,
	}
}

// JSONMap represents a generic JSON object
type JSONMap map[string]interface{}
