package transaction

import (
	"context"
	"time"

	"stockbook/internal/core/id"
	"stockbook/internal/domain"
)

// Repository defines operations for transaction persistence.
// Writes that affect stock must happen inside the ledger engine's
// atomic unit; the repository itself never touches product counters.
type Repository interface {
	// Header operations

	// Create inserts a new transaction header.
	Create(ctx context.Context, t *Transaction) error

	// GetByID retrieves a header by ID.
	GetByID(ctx context.Context, transactionID id.ID) (*Transaction, error)

	// GetByCode retrieves a header by its unique code.
	GetByCode(ctx context.Context, code string) (*Transaction, error)

	// ExistsByCode checks if a transaction with the given code exists.
	ExistsByCode(ctx context.Context, code string) (bool, error)

	// Delete removes a header; detail lines cascade in the store.
	Delete(ctx context.Context, transactionID id.ID) error

	// List retrieves headers with filtering, newest first.
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Transaction], error)

	// Line operations

	// InsertLines batch inserts detail lines.
	InsertLines(ctx context.Context, lines []Detail) error

	// GetLines retrieves all lines of a transaction.
	GetLines(ctx context.Context, transactionID id.ID) ([]Detail, error)

	// GetLine retrieves a single line by ID.
	GetLine(ctx context.Context, lineID id.ID) (*Detail, error)

	// UpdateLine modifies a line's product or quantity.
	UpdateLine(ctx context.Context, d *Detail) error

	// DeleteLine removes a single line.
	DeleteLine(ctx context.Context, lineID id.ID) error

	// Reporting

	// ListMovements returns lines referencing a product joined with their
	// headers, newest first.
	ListMovements(ctx context.Context, productID id.ID, filter MovementFilter) ([]Movement, error)
}

// ListFilter for filtering transaction headers.
type ListFilter struct {
	domain.ListFilter

	// Type filters by movement direction
	Type *Type

	// Date range
	DateFrom *time.Time
	DateTo   *time.Time
}

// MovementFilter for filtering movement history.
type MovementFilter struct {
	Type     *Type
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    int
	Offset   int
}
