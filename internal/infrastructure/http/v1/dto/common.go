// Package dto defines request and response shapes for the HTTP API.
package dto

// IDResponse is returned on resource creation.
type IDResponse struct {
	ID string `json:"id"`
}

// SuccessResponse is a generic acknowledgement.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ListResponse wraps a paginated collection.
type ListResponse[T any] struct {
	Items      []T `json:"items"`
	TotalCount int `json:"totalCount"`
	Limit      int `json:"limit"`
	Offset     int `json:"offset"`
}
