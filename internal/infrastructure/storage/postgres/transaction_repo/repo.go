// Package transaction_repo provides the PostgreSQL implementation of the
// transaction repository.
package transaction_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/id"
	"stockbook/internal/domain"
	"stockbook/internal/domain/transaction"
	"stockbook/internal/infrastructure/storage/postgres"
)

const (
	transactionsTable = "stock_transactions"
	detailsTable      = "stock_transaction_details"
)

var headerColumns = []string{
	"id", "code", "type", "date", "notes",
	"version", "created_at", "updated_at",
}

var detailColumns = []string{
	"id", "transaction_id", "product_id", "quantity", "created_at",
}

var _ transaction.Repository = (*Repo)(nil)

// Repo implements transaction.Repository.
type Repo struct {
	txManager *postgres.TxManager
	inserter  *postgres.BatchInserter
	builder   squirrel.StatementBuilderType
}

// NewRepo creates a new transaction repository.
func NewRepo(txManager *postgres.TxManager) *Repo {
	return &Repo{
		txManager: txManager,
		inserter:  postgres.NewBatchInserter(txManager),
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *Repo) baseSelect() squirrel.SelectBuilder {
	return r.builder.Select(headerColumns...).From(transactionsTable)
}

// Create inserts a transaction header. A code collision maps to a
// duplicate error.
func (r *Repo) Create(ctx context.Context, t *transaction.Transaction) error {
	q := r.builder.Insert(transactionsTable).SetMap(map[string]any{
		"id":         t.ID,
		"code":       t.Code,
		"type":       t.Type,
		"date":       t.Date,
		"notes":      t.Notes,
		"version":    t.Version,
		"created_at": t.CreatedAt,
		"updated_at": t.UpdatedAt,
	})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		if isUniqueViolation(err) {
			return apperror.NewDuplicate("transaction", "code", t.Code)
		}
		return apperror.NewDatabase(fmt.Errorf("insert transaction: %w", err))
	}

	return nil
}

// GetByID retrieves a header by ID.
func (r *Repo) GetByID(ctx context.Context, transactionID id.ID) (*transaction.Transaction, error) {
	q := r.baseSelect().Where(squirrel.Eq{"id": transactionID}).Limit(1)
	return r.get(ctx, q, transactionID.String())
}

// GetByCode retrieves a header by code.
func (r *Repo) GetByCode(ctx context.Context, code string) (*transaction.Transaction, error) {
	q := r.baseSelect().Where(squirrel.Eq{"code": code}).Limit(1)
	return r.get(ctx, q, code)
}

func (r *Repo) get(ctx context.Context, q squirrel.SelectBuilder, ref string) (*transaction.Transaction, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var t transaction.Transaction
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &t, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("transaction", ref)
		}
		return nil, apperror.NewDatabase(fmt.Errorf("get transaction: %w", err))
	}

	return &t, nil
}

// ExistsByCode reports whether a transaction with the code exists.
func (r *Repo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	q := r.builder.
		Select("1").
		From(transactionsTable).
		Where(squirrel.Eq{"code": code}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var one int
	querier := r.txManager.GetQuerier(ctx)
	err = querier.QueryRow(ctx, sql, args...).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, apperror.NewDatabase(fmt.Errorf("check code: %w", err))
	}

	return true, nil
}

// Delete removes a header. Lines cascade via the foreign key.
func (r *Repo) Delete(ctx context.Context, transactionID id.ID) error {
	q := r.builder.Delete(transactionsTable).
		Where(squirrel.Eq{"id": transactionID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return apperror.NewDatabase(fmt.Errorf("delete transaction: %w", err))
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("transaction", transactionID.String())
	}

	return nil
}

// List retrieves headers newest first (by business date, then creation).
func (r *Repo) List(ctx context.Context, filter transaction.ListFilter) (domain.ListResult[*transaction.Transaction], error) {
	result := domain.ListResult[*transaction.Transaction]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect()

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"code": pattern},
			squirrel.ILike{"notes": pattern},
		})
	}
	if filter.Type != nil {
		q = q.Where(squirrel.Eq{"type": *filter.Type})
	}
	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"date": *filter.DateTo})
	}

	querier := r.txManager.GetQuerier(ctx)

	countSQL, countArgs, err := r.builder.
		Select("COUNT(*)").
		FromSelect(q, "sub").
		ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, apperror.NewDatabase(fmt.Errorf("count transactions: %w", err))
	}

	q = q.OrderBy("date DESC", "created_at DESC")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit)).Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, apperror.NewDatabase(fmt.Errorf("list transactions: %w", err))
	}

	return result, nil
}

// InsertLines batch inserts detail lines. Inside a transaction the COPY
// protocol is used; otherwise a multi-row insert.
func (r *Repo) InsertLines(ctx context.Context, lines []transaction.Detail) error {
	if len(lines) == 0 {
		return nil
	}

	if t := r.txManager.GetTx(ctx); t != nil {
		rows := make([][]any, 0, len(lines))
		for _, d := range lines {
			rows = append(rows, []any{
				d.ID, d.TransactionID, d.ProductID, d.Quantity, d.CreatedAt,
			})
		}
		if _, err := r.inserter.InsertRows(ctx, detailsTable, detailColumns, rows); err != nil {
			if isUniqueViolation(err) {
				return apperror.NewDuplicateLineProduct(lines[0].TransactionID.String())
			}
			return apperror.NewDatabase(fmt.Errorf("copy lines: %w", err))
		}
		return nil
	}

	q := r.builder.Insert(detailsTable).Columns(detailColumns...)
	for _, d := range lines {
		q = q.Values(d.ID, d.TransactionID, d.ProductID, d.Quantity, d.CreatedAt)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		if isUniqueViolation(err) {
			return apperror.NewDuplicateLineProduct(lines[0].TransactionID.String())
		}
		return apperror.NewDatabase(fmt.Errorf("insert lines: %w", err))
	}

	return nil
}

// GetLines retrieves all lines of a transaction in insertion order.
func (r *Repo) GetLines(ctx context.Context, transactionID id.ID) ([]transaction.Detail, error) {
	q := r.builder.Select(detailColumns...).
		From(detailsTable).
		Where(squirrel.Eq{"transaction_id": transactionID}).
		OrderBy("created_at ASC", "id ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []transaction.Detail
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &lines, sql, args...); err != nil {
		return nil, apperror.NewDatabase(fmt.Errorf("get lines: %w", err))
	}

	return lines, nil
}

// GetLine retrieves a single line by ID.
func (r *Repo) GetLine(ctx context.Context, lineID id.ID) (*transaction.Detail, error) {
	q := r.builder.Select(detailColumns...).
		From(detailsTable).
		Where(squirrel.Eq{"id": lineID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var d transaction.Detail
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &d, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("transaction line", lineID.String())
		}
		return nil, apperror.NewDatabase(fmt.Errorf("get line: %w", err))
	}

	return &d, nil
}

// UpdateLine modifies a line's product or quantity. Moving the line onto
// a product already present in the transaction violates the unique
// constraint and maps to a duplicate-line error.
func (r *Repo) UpdateLine(ctx context.Context, d *transaction.Detail) error {
	q := r.builder.Update(detailsTable).
		SetMap(map[string]any{
			"product_id": d.ProductID,
			"quantity":   d.Quantity,
		}).
		Where(squirrel.Eq{"id": d.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.NewDuplicateLineProduct(d.ProductID.String())
		}
		return apperror.NewDatabase(fmt.Errorf("update line: %w", err))
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("transaction line", d.ID.String())
	}

	return nil
}

// DeleteLine removes a single line.
func (r *Repo) DeleteLine(ctx context.Context, lineID id.ID) error {
	q := r.builder.Delete(detailsTable).
		Where(squirrel.Eq{"id": lineID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return apperror.NewDatabase(fmt.Errorf("delete line: %w", err))
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("transaction line", lineID.String())
	}

	return nil
}

// ListMovements joins lines with headers for a product, newest first.
func (r *Repo) ListMovements(ctx context.Context, productID id.ID, filter transaction.MovementFilter) ([]transaction.Movement, error) {
	q := r.builder.Select(
		"d.id AS line_id",
		"d.transaction_id",
		"t.code",
		"t.type",
		"t.date",
		"d.product_id",
		"d.quantity",
	).
		From(detailsTable + " d").
		Join(transactionsTable + " t ON t.id = d.transaction_id").
		Where(squirrel.Eq{"d.product_id": productID})

	if filter.Type != nil {
		q = q.Where(squirrel.Eq{"t.type": *filter.Type})
	}
	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"t.date": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"t.date": *filter.DateTo})
	}

	q = q.OrderBy("t.date DESC", "d.created_at DESC")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit)).Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var movements []transaction.Movement
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &movements, sql, args...); err != nil {
		return nil, apperror.NewDatabase(fmt.Errorf("list movements: %w", err))
	}

	return movements, nil
}

// isUniqueViolation reports a PostgreSQL unique constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
