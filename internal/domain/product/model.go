// Package product provides the product registry: identity and the
// denormalized running stock counter for every part in the warehouse.
package product

import (
	"context"
	"time"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/id"
)

// Product represents a warehouse part with its current stock level.
// CurrentStock is mutated only by the ledger engine as a side effect of
// transaction-line operations; it is never written directly by callers.
type Product struct {
	// ID is the primary key (UUIDv7)
	ID id.ID `db:"id" json:"id"`

	// PartNo is the globally unique part number
	PartNo string `db:"part_no" json:"partNo"`

	// Description is an optional human-readable description
	Description string `db:"description" json:"description,omitempty"`

	// CurrentStock is the running stock counter.
	// Invariant: equals the net sum of all IN minus OUT line quantities
	// referencing this product, and is never negative.
	CurrentStock int64 `db:"current_stock" json:"currentStock"`

	// Version for optimistic locking (incremented on each update)
	Version int `db:"version" json:"version"`

	// Audit fields
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// New creates a new Product with generated ID and zero stock.
func New(partNo, description string) *Product {
	now := time.Now().UTC()
	return &Product{
		ID:          id.New(),
		PartNo:      partNo,
		Description: description,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Validate checks entity invariants.
func (p *Product) Validate(ctx context.Context) error {
	if p.PartNo == "" {
		return apperror.NewValidation("part number is required").
			WithDetail("field", "partNo")
	}

	if p.CurrentStock < 0 {
		return apperror.NewValidation("current stock cannot be negative").
			WithDetail("field", "currentStock")
	}

	return nil
}

// Touch updates the UpdatedAt timestamp and increments the version.
func (p *Product) Touch() {
	p.UpdatedAt = time.Now().UTC()
	p.Version++
}
