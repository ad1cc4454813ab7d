package domain

const (
	DefaultPage    = 1
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// Pagination carries paging params.
type Pagination struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

// NewPagination falls back to defaults for non-positive values and caps
// PerPage at MaxPerPage.
func NewPagination(page, perPage int) Pagination {
	if page <= 0 {
		page = DefaultPage
	}
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return Pagination{Page: page, PerPage: perPage}
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Pages returns the page count for total items.
func (p Pagination) Pages(total int) int {
	if total <= 0 || p.PerPage <= 0 {
		return 0
	}
	return (total + p.PerPage - 1) / p.PerPage
}

// RequestContext carries the authenticated admin for a request.
type RequestContext struct {
	UserID    int64  `json:"user_id"`
	Username  string `json:"username"`
	SessionID string `json:"session_id"`
}
