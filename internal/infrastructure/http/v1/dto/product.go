package dto

import (
	"time"

	"stockbook/internal/domain/product"
)

// CreateProductRequest registers a new product.
type CreateProductRequest struct {
	PartNo      string `json:"partNo" binding:"required"`
	Description string `json:"description"`
}

// UpdateProductRequest edits product identity. Omitted fields are kept.
type UpdateProductRequest struct {
	PartNo      *string `json:"partNo"`
	Description *string `json:"description"`
}

// ProductResponse is the API shape of a product.
type ProductResponse struct {
	ID           string    `json:"id"`
	PartNo       string    `json:"partNo"`
	Description  string    `json:"description,omitempty"`
	CurrentStock int64     `json:"currentStock"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// FromProduct converts a domain product to its API shape.
func FromProduct(p *product.Product) ProductResponse {
	return ProductResponse{
		ID:           p.ID.String(),
		PartNo:       p.PartNo,
		Description:  p.Description,
		CurrentStock: p.CurrentStock,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// FromProducts converts a slice of domain products.
func FromProducts(products []*product.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, FromProduct(p))
	}
	return out
}

// InventoryItem is one row of the inventory snapshot.
type InventoryItem struct {
	PartNo       string `json:"partNo"`
	Description  string `json:"description,omitempty"`
	CurrentStock int64  `json:"currentStock"`
}

// InventoryResponse is the full stock snapshot, ordered by part number.
type InventoryResponse struct {
	Items []InventoryItem `json:"items"`
	AsOf  time.Time       `json:"asOf"`
}

// FromInventory builds the snapshot response.
func FromInventory(products []*product.Product, asOf time.Time) InventoryResponse {
	items := make([]InventoryItem, 0, len(products))
	for _, p := range products {
		items = append(items, InventoryItem{
			PartNo:       p.PartNo,
			Description:  p.Description,
			CurrentStock: p.CurrentStock,
		})
	}
	return InventoryResponse{Items: items, AsOf: asOf}
}
