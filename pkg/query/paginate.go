package query

// DefaultPageSize is used when a caller passes a non-positive page size.
const DefaultPageSize = 50

// PageInfo describes one page of a paginated result.
type PageInfo struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	TotalItems int  `json:"total_items"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// Paginate returns the requested 1-indexed page of items.
// Out-of-range pages are clamped to the nearest valid page.
func Paginate[T any](items []T, page, pageSize int) ([]T, PageInfo) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	total := len(items)
	totalPages := 0
	if total > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}

	page = min(page, max(totalPages, 1))
	page = max(page, 1)

	start := (page - 1) * pageSize
	end := min(start+pageSize, total)
	var slice []T
	if start < total {
		slice = items[start:end]
	}

	return slice, PageInfo{
		Page:       page,
		PageSize:   pageSize,
		TotalItems: total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

// Shown returns how many items the page actually holds.
func (p PageInfo) Shown() int {
	start := (p.Page - 1) * p.PageSize
	if start >= p.TotalItems {
		return 0
	}
	return min(p.PageSize, p.TotalItems-start)
}
