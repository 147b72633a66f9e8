package dto

import (
	"time"

	"stockbook/internal/domain/transaction"
)

// TransactionLineRequest is one requested detail line.
type TransactionLineRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int64  `json:"quantity" binding:"required"`
}

// CreateTransactionRequest submits a transaction with its lines.
type CreateTransactionRequest struct {
	Code  string                   `json:"code" binding:"required"`
	Type  string                   `json:"type" binding:"required"`
	Date  *time.Time               `json:"date"`
	Notes string                   `json:"notes"`
	Lines []TransactionLineRequest `json:"lines" binding:"required"`
}

// UpdateLineRequest edits a single line. Omitted fields are kept.
type UpdateLineRequest struct {
	ProductID *string `json:"productId"`
	Quantity  *int64  `json:"quantity"`
}

// TransactionLineResponse is the API shape of a detail line.
type TransactionLineResponse struct {
	ID        string `json:"id"`
	ProductID string `json:"productId"`
	Quantity  int64  `json:"quantity"`
}

// TransactionResponse is the API shape of a transaction with lines.
type TransactionResponse struct {
	ID        string                    `json:"id"`
	Code      string                    `json:"code"`
	Type      string                    `json:"type"`
	Date      time.Time                 `json:"date"`
	Notes     string                    `json:"notes,omitempty"`
	CreatedAt time.Time                 `json:"createdAt"`
	Lines     []TransactionLineResponse `json:"lines,omitempty"`
}

// FromTransaction converts a domain transaction to its API shape.
func FromTransaction(t *transaction.Transaction) TransactionResponse {
	lines := make([]TransactionLineResponse, 0, len(t.Lines))
	for _, d := range t.Lines {
		lines = append(lines, TransactionLineResponse{
			ID:        d.ID.String(),
			ProductID: d.ProductID.String(),
			Quantity:  d.Quantity,
		})
	}
	return TransactionResponse{
		ID:        t.ID.String(),
		Code:      t.Code,
		Type:      string(t.Type),
		Date:      t.Date,
		Notes:     t.Notes,
		CreatedAt: t.CreatedAt,
		Lines:     lines,
	}
}

// FromTransactions converts header rows (lines not loaded).
func FromTransactions(transactions []*transaction.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(transactions))
	for _, t := range transactions {
		out = append(out, FromTransaction(t))
	}
	return out
}

// MovementResponse is one row of a product's movement history.
type MovementResponse struct {
	LineID         string    `json:"lineId"`
	TransactionID  string    `json:"transactionId"`
	Code           string    `json:"code"`
	Type           string    `json:"type"`
	Date           time.Time `json:"date"`
	Quantity       int64     `json:"quantity"`
	SignedQuantity int64     `json:"signedQuantity"`
}

// FromMovements converts movement read models.
func FromMovements(movements []transaction.Movement) []MovementResponse {
	out := make([]MovementResponse, 0, len(movements))
	for i := range movements {
		m := &movements[i]
		out = append(out, MovementResponse{
			LineID:         m.LineID.String(),
			TransactionID:  m.TransactionID.String(),
			Code:           m.Code,
			Type:           string(m.Type),
			Date:           m.Date,
			Quantity:       m.Quantity,
			SignedQuantity: m.SignedQuantity(),
		})
	}
	return out
}
