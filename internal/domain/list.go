// Package domain provides shared types for the business layer.
package domain

// ListFilter contains common filtering options for list operations.
type ListFilter struct {
	// Search performs a substring match on searchable fields
	Search string

	// OrderBy specifies sorting (e.g., "part_no", "-date")
	OrderBy string

	// Pagination
	Limit  int
	Offset int
}

// DefaultListFilter returns sensible defaults.
func DefaultListFilter() ListFilter {
	return ListFilter{
		Limit: 50,
	}
}

// ListResult contains paginated results.
type ListResult[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}
