package models

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Offset     int `json:"offset"`
	TotalCount int `json:"total_count"`
	TotalPages int `json:"total_pages"`
}

// NewPagination derives offset and page totals from a 1-based page number.
// TotalPages is floored at 1 so an empty result set still reports one page.
func NewPagination(page, pageSize, totalCount int) *Pagination {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}
	totalPages := (totalCount + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	return &Pagination{
		Page:       page,
		PageSize:   pageSize,
		Offset:     (page - 1) * pageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}
}
