package product

import (
	"context"

	"stockbook/internal/core/id"
	"stockbook/internal/domain"
)

// Repository defines the interface for Product persistence.
type Repository interface {
	// Create inserts a new product.
	// Returns a duplicate error if the part number is already taken.
	Create(ctx context.Context, p *Product) error

	// GetByID retrieves a product by ID.
	GetByID(ctx context.Context, productID id.ID) (*Product, error)

	// GetByPartNo retrieves a product by part number.
	GetByPartNo(ctx context.Context, partNo string) (*Product, error)

	// GetForUpdate retrieves a product with a row lock.
	// Must be called inside a transaction; serializes concurrent stock
	// mutations on the same product.
	GetForUpdate(ctx context.Context, productID id.ID) (*Product, error)

	// AdjustStock applies a signed delta to the product's stock counter.
	// Used exclusively by the ledger engine; the store-level guard refuses
	// any adjustment that would drive the counter negative.
	AdjustStock(ctx context.Context, productID id.ID, delta int64) error

	// Update modifies product identity fields (with optimistic locking).
	Update(ctx context.Context, p *Product) error

	// Delete removes a product. The store refuses deletion while
	// transaction lines still reference it.
	Delete(ctx context.Context, productID id.ID) error

	// List retrieves products ordered by part number.
	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Product], error)

	// ExistsByPartNo checks if a product with the given part number exists.
	ExistsByPartNo(ctx context.Context, partNo string) (bool, error)
}
