// Package transaction provides stock transaction documents: a header
// carrying a direction (IN/OUT) and a unique code, with detail lines
// binding products to quantities.
package transaction

import (
	"context"
	"time"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/id"
)

// Type defines the movement direction of a transaction.
type Type string

const (
	// TypeIn increases stock (goods receipt)
	TypeIn Type = "IN"
	// TypeOut decreases stock (dispatch)
	TypeOut Type = "OUT"
)

// Valid reports whether t is a known transaction type.
func (t Type) Valid() bool {
	return t == TypeIn || t == TypeOut
}

// Delta returns the signed stock effect of a quantity moved under this type.
func (t Type) Delta(quantity int64) int64 {
	if t == TypeOut {
		return -quantity
	}
	return quantity
}

// Transaction represents a stock transaction header.
type Transaction struct {
	// ID is the primary key (UUIDv7)
	ID id.ID `db:"id" json:"id"`

	// Code is the globally unique transaction code (e.g. GRN-001, DO-001)
	Code string `db:"code" json:"code"`

	// Type is the movement direction for every line in this transaction
	Type Type `db:"type" json:"type"`

	// Date is the business date (defaults to creation time)
	Date time.Time `db:"date" json:"date"`

	// Notes is an optional free-form comment
	Notes string `db:"notes" json:"notes,omitempty"`

	// Version for optimistic locking
	Version int `db:"version" json:"version"`

	// Audit fields
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`

	// Lines is the table part; loaded separately from the header
	Lines []Detail `db:"-" json:"lines,omitempty"`
}

// Detail represents a line item within a transaction.
// At most one line per (transaction, product) pair may exist.
type Detail struct {
	// ID is the primary key (UUIDv7)
	ID id.ID `db:"id" json:"id"`

	// TransactionID is the owning transaction
	TransactionID id.ID `db:"transaction_id" json:"transactionId"`

	// ProductID is the referenced product (protected from deletion)
	ProductID id.ID `db:"product_id" json:"productId"`

	// Quantity moved by this line, strictly positive
	Quantity int64 `db:"quantity" json:"quantity"`

	// CreatedAt is when the line was recorded
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// New creates a new transaction header with generated ID.
// A zero date defaults to the current time.
func New(code string, txType Type, date time.Time, notes string) *Transaction {
	now := time.Now().UTC()
	if date.IsZero() {
		date = now
	}
	return &Transaction{
		ID:        id.New(),
		Code:      code,
		Type:      txType,
		Date:      date,
		Notes:     notes,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewDetail creates a new detail line bound to a transaction and product.
func NewDetail(transactionID, productID id.ID, quantity int64) Detail {
	return Detail{
		ID:            id.New(),
		TransactionID: transactionID,
		ProductID:     productID,
		Quantity:      quantity,
		CreatedAt:     time.Now().UTC(),
	}
}

// Validate checks header invariants.
func (t *Transaction) Validate(ctx context.Context) error {
	if t.Code == "" {
		return apperror.NewValidation("transaction code is required").
			WithDetail("field", "code")
	}

	if !t.Type.Valid() {
		return apperror.NewValidation("transaction type must be IN or OUT").
			WithDetail("field", "type").
			WithDetail("value", string(t.Type))
	}

	if t.Date.IsZero() {
		return apperror.NewValidation("date is required").
			WithDetail("field", "date")
	}

	return nil
}

// Validate checks line invariants.
func (d *Detail) Validate(ctx context.Context) error {
	if id.IsNil(d.ProductID) {
		return apperror.NewValidation("product is required").
			WithDetail("field", "productId")
	}

	if d.Quantity <= 0 {
		return apperror.NewInvalidQuantity(d.Quantity)
	}

	return nil
}

// Touch updates the UpdatedAt timestamp and increments the version.
func (t *Transaction) Touch() {
	t.UpdatedAt = time.Now().UTC()
	t.Version++
}

// Movement is a read model joining a detail line with its header,
// used for per-product movement history.
type Movement struct {
	LineID        id.ID     `db:"line_id" json:"lineId"`
	TransactionID id.ID     `db:"transaction_id" json:"transactionId"`
	Code          string    `db:"code" json:"code"`
	Type          Type      `db:"type" json:"type"`
	Date          time.Time `db:"date" json:"date"`
	ProductID     id.ID     `db:"product_id" json:"productId"`
	Quantity      int64     `db:"quantity" json:"quantity"`
}

// SignedQuantity returns the quantity with the sign of its stock effect.
func (m *Movement) SignedQuantity() int64 {
	return m.Type.Delta(m.Quantity)
}
