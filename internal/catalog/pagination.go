package catalog

// PageInfo is the navigation part of a list envelope.
type PageInfo struct {
	CurrentPage int  `json:"page"`
	TotalPages  int  `json:"total_pages"`
	HasNext     bool `json:"has_next"`
	HasPrev     bool `json:"has_prev"`
}

// Paginate derives navigation from a row count. An empty result is still
// page 1 of 1, and out-of-range requests are clamped rather than rejected.
func Paginate(totalRows int64, pageSize, requestedPage int) PageInfo {
	if pageSize < 1 {
		pageSize = 1
	}
	if totalRows < 0 {
		totalRows = 0
	}

	totalPages := int((totalRows + int64(pageSize) - 1) / int64(pageSize))
	if totalPages < 1 {
		totalPages = 1
	}

	current := requestedPage
	if current < 1 {
		current = 1
	}
	if current > totalPages {
		current = totalPages
	}

	return PageInfo{
		CurrentPage: current,
		TotalPages:  totalPages,
		HasNext:     current < totalPages,
		HasPrev:     current > 1,
	}
}
