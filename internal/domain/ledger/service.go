// Package ledger provides the stock ledger engine: the sole authority
// for mutating product stock counters.
//
// Every operation runs inside one atomic unit. A line's effect is applied
// exactly once; edits and removals first reverse the prior effect and then
// re-apply the new one, never computing a direct delta diff. On any failure
// the whole unit rolls back, leaving every counter untouched.
package ledger

import (
	"context"
	"fmt"
	"time"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/id"
	"stockbook/internal/core/tx"
	"stockbook/internal/domain"
	"stockbook/internal/domain/product"
	"stockbook/internal/domain/transaction"
	"stockbook/pkg/logger"
)

// Service is the stock ledger engine.
type Service struct {
	products     product.Repository
	transactions transaction.Repository
	txManager    tx.Manager
}

// NewService creates a new ledger engine.
func NewService(
	products product.Repository,
	transactions transaction.Repository,
	txManager tx.Manager,
) *Service {
	return &Service{
		products:     products,
		transactions: transactions,
		txManager:    txManager,
	}
}

// LineInput describes one requested detail line.
type LineInput struct {
	ProductID id.ID
	Quantity  int64
}

// CreateTransactionInput describes a transaction submission.
type CreateTransactionInput struct {
	Code  string
	Type  transaction.Type
	Date  time.Time // zero value defaults to now
	Notes string
	Lines []LineInput
}

// UpdateLineInput describes a line edit. Nil fields keep the current value.
type UpdateLineInput struct {
	ProductID *id.ID
	Quantity  *int64
}

// CreateTransaction creates a header and applies every line atomically.
// If any line fails, nothing is persisted and no stock changes.
func (s *Service) CreateTransaction(ctx context.Context, input CreateTransactionInput) (*transaction.Transaction, error) {
	if len(input.Lines) == 0 {
		return nil, apperror.NewEmptyTransaction()
	}

	t := transaction.New(input.Code, input.Type, input.Date, input.Notes)
	if err := t.Validate(ctx); err != nil {
		return nil, err
	}

	// Uniqueness of (transaction, product) within the submission.
	seen := make(map[id.ID]struct{}, len(input.Lines))
	for _, line := range input.Lines {
		if line.Quantity <= 0 {
			return nil, apperror.NewInvalidQuantity(line.Quantity)
		}
		if _, dup := seen[line.ProductID]; dup {
			return nil, apperror.NewDuplicateLineProduct(line.ProductID.String())
		}
		seen[line.ProductID] = struct{}{}
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if exists, err := s.transactions.ExistsByCode(ctx, t.Code); err != nil {
			return fmt.Errorf("check code: %w", err)
		} else if exists {
			return apperror.NewDuplicate("transaction", "code", t.Code)
		}

		if err := s.transactions.Create(ctx, t); err != nil {
			return fmt.Errorf("create header: %w", err)
		}

		lines := make([]transaction.Detail, 0, len(input.Lines))
		for _, line := range input.Lines {
			if err := s.applyDelta(ctx, line.ProductID, t.Type.Delta(line.Quantity)); err != nil {
				return err
			}
			lines = append(lines, transaction.NewDetail(t.ID, line.ProductID, line.Quantity))
		}

		if err := s.transactions.InsertLines(ctx, lines); err != nil {
			return fmt.Errorf("insert lines: %w", err)
		}

		t.Lines = lines
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "transaction created",
		"id", t.ID,
		"code", t.Code,
		"type", t.Type,
		"lines", len(t.Lines))

	return t, nil
}

// UpdateLine edits a line's quantity or product. The prior effect is
// reversed against the old product and the new effect applied against the
// (possibly different) new product, both inside one atomic unit. If the
// re-apply fails, the reversal is not committed either.
func (s *Service) UpdateLine(ctx context.Context, lineID id.ID, input UpdateLineInput) (*transaction.Detail, error) {
	var updated *transaction.Detail

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		d, err := s.transactions.GetLine(ctx, lineID)
		if err != nil {
			return err
		}

		t, err := s.transactions.GetByID(ctx, d.TransactionID)
		if err != nil {
			return err
		}

		newProductID := d.ProductID
		if input.ProductID != nil {
			newProductID = *input.ProductID
		}
		newQuantity := d.Quantity
		if input.Quantity != nil {
			newQuantity = *input.Quantity
		}

		if newQuantity <= 0 {
			return apperror.NewInvalidQuantity(newQuantity)
		}

		// Reassigning the product must not collide with a sibling line.
		if newProductID != d.ProductID {
			siblings, err := s.transactions.GetLines(ctx, t.ID)
			if err != nil {
				return fmt.Errorf("get sibling lines: %w", err)
			}
			for _, sibling := range siblings {
				if sibling.ID != d.ID && sibling.ProductID == newProductID {
					return apperror.NewDuplicateLineProduct(newProductID.String())
				}
			}
		}

		// Reverse the old effect, then apply the new one.
		if err := s.applyDelta(ctx, d.ProductID, -t.Type.Delta(d.Quantity)); err != nil {
			return err
		}
		if err := s.applyDelta(ctx, newProductID, t.Type.Delta(newQuantity)); err != nil {
			return err
		}

		d.ProductID = newProductID
		d.Quantity = newQuantity
		if err := s.transactions.UpdateLine(ctx, d); err != nil {
			return fmt.Errorf("update line: %w", err)
		}

		updated = d
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "transaction line updated",
		"line_id", updated.ID,
		"product_id", updated.ProductID,
		"quantity", updated.Quantity)

	return updated, nil
}

// RemoveLine reverses a line's effect and deletes it atomically.
func (s *Service) RemoveLine(ctx context.Context, lineID id.ID) error {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		d, err := s.transactions.GetLine(ctx, lineID)
		if err != nil {
			return err
		}

		t, err := s.transactions.GetByID(ctx, d.TransactionID)
		if err != nil {
			return err
		}

		if err := s.applyDelta(ctx, d.ProductID, -t.Type.Delta(d.Quantity)); err != nil {
			return err
		}

		return s.transactions.DeleteLine(ctx, d.ID)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "transaction line removed", "line_id", lineID)
	return nil
}

// DeleteTransaction reverses every line's effect and deletes the header
// with its lines atomically.
func (s *Service) DeleteTransaction(ctx context.Context, transactionID id.ID) error {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		t, err := s.transactions.GetByID(ctx, transactionID)
		if err != nil {
			return err
		}

		lines, err := s.transactions.GetLines(ctx, t.ID)
		if err != nil {
			return fmt.Errorf("get lines: %w", err)
		}

		for _, d := range lines {
			if err := s.applyDelta(ctx, d.ProductID, -t.Type.Delta(d.Quantity)); err != nil {
				return err
			}
		}

		// Lines cascade with the header.
		return s.transactions.Delete(ctx, t.ID)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "transaction deleted", "id", transactionID)
	return nil
}

// GetTransaction retrieves a header with its lines.
func (s *Service) GetTransaction(ctx context.Context, transactionID id.ID) (*transaction.Transaction, error) {
	t, err := s.transactions.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	lines, err := s.transactions.GetLines(ctx, t.ID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	t.Lines = lines

	return t, nil
}

// ListTransactions retrieves headers with filtering.
func (s *Service) ListTransactions(ctx context.Context, filter transaction.ListFilter) (domain.ListResult[*transaction.Transaction], error) {
	return s.transactions.List(ctx, filter)
}

// MovementHistory returns all movements referencing a product, newest first.
func (s *Service) MovementHistory(ctx context.Context, productID id.ID, filter transaction.MovementFilter) ([]transaction.Movement, error) {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return nil, err
	}
	return s.transactions.ListMovements(ctx, productID, filter)
}

// applyDelta mutates a product's stock counter under a row lock.
// A negative delta (an OUT movement, or the reversal of an IN movement)
// requires sufficient stock; the counter can never be driven below zero.
func (s *Service) applyDelta(ctx context.Context, productID id.ID, delta int64) error {
	p, err := s.products.GetForUpdate(ctx, productID)
	if err != nil {
		return err
	}

	if delta < 0 && p.CurrentStock+delta < 0 {
		return apperror.NewInsufficientStock(p.PartNo, p.CurrentStock, -delta)
	}

	if err := s.products.AdjustStock(ctx, p.ID, delta); err != nil {
		return fmt.Errorf("adjust stock for %s: %w", p.PartNo, err)
	}

	return nil
}
