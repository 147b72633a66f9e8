// Package product_repo provides the PostgreSQL implementation of the
// product repository.
package product_repo

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
	"stockbook/internal/domain/product"
	"stockbook/internal/infrastructure/storage/postgres"
)

const productsTable = "products"

var productColumns = []string{
	"id", "part_no", "description", "current_stock",
	"version", "created_at", "updated_at",
}

var _ product.Repository = (*Repo)(nil)

// Repo implements product.Repository.
type Repo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewRepo creates a new product repository.
func NewRepo(txManager *postgres.TxManager) *Repo {
	return &Repo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *Repo) baseSelect() squirrel.SelectBuilder {
	return r.builder.Select(productColumns...).From(productsTable)
}

// Create inserts a new product. A part number collision maps to a
// duplicate error.
func (r *Repo) Create(ctx context.Context, p *product.Product) error {
	q := r.builder.Insert(productsTable).SetMap(map[string]any{
		"id":            p.ID,
		"part_no":       p.PartNo,
		"description":   p.Description,
		"current_stock": p.CurrentStock,
		"version":       p.Version,
		"created_at":    p.CreatedAt,
		"updated_at":    p.UpdatedAt,
	})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		if isUniqueViolation(err) {
			return apperror.NewDuplicate("product", "part_no", p.PartNo)
		}
		return apperror.NewDatabase(fmt.Errorf("insert product: %w", err))
	}

	return nil
}

// GetByID retrieves a product by ID.
func (r *Repo) GetByID(ctx context.Context, productID id.ID) (*product.Product, error) {
	q := r.baseSelect().Where(squirrel.Eq{"id": productID}).Limit(1)
	return r.get(ctx, q, productID.String())
}

// GetByPartNo retrieves a product by part number.
func (r *Repo) GetByPartNo(ctx context.Context, partNo string) (*product.Product, error) {
	q := r.baseSelect().Where(squirrel.Eq{"part_no": partNo}).Limit(1)
	return r.get(ctx, q, partNo)
}

// GetForUpdate retrieves a product with a row lock. Must run inside a
// transaction; the lock holds until commit or rollback.
func (r *Repo) GetForUpdate(ctx context.Context, productID id.ID) (*product.Product, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"id": productID}).
		Suffix("FOR UPDATE")
	return r.get(ctx, q, productID.String())
}

func (r *Repo) get(ctx context.Context, q squirrel.SelectBuilder, ref string) (*product.Product, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var p product.Product
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("product", ref)
		}
		return nil, apperror.NewDatabase(fmt.Errorf("get product: %w", err))
	}

	return &p, nil
}

// AdjustStock applies a signed delta to the stock counter. The WHERE
// clause guards against driving the counter negative, backing up the
// row-lock sufficiency check in the service.
func (r *Repo) AdjustStock(ctx context.Context, productID id.ID, delta int64) error {
	q := r.builder.Update(productsTable).
		Set("current_stock", squirrel.Expr("current_stock + ?", delta)).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": productID}).
		Where(squirrel.Expr("current_stock + ? >= 0", delta))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return apperror.NewDatabase(fmt.Errorf("adjust stock: %w", err))
	}

	if result.RowsAffected() == 0 {
		return apperror.NewConflict(fmt.Sprintf("stock adjustment rejected for product %s", productID))
	}

	return nil
}

// Update modifies a product with optimistic locking.
func (r *Repo) Update(ctx context.Context, p *product.Product) error {
	q := r.builder.Update(productsTable).
		SetMap(map[string]any{
			"part_no":     p.PartNo,
			"description": p.Description,
			"updated_at":  p.UpdatedAt,
		}).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": p.ID}).
		Where(squirrel.Eq{"version": p.Version})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.NewDuplicate("product", "part_no", p.PartNo)
		}
		return apperror.NewDatabase(fmt.Errorf("update product: %w", err))
	}

	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("product", p.ID)
	}

	p.Version++
	return nil
}

// Delete removes a product. Referenced products are protected by the
// foreign key on transaction lines; the violation maps to a conflict.
func (r *Repo) Delete(ctx context.Context, productID id.ID) error {
	q := r.builder.Delete(productsTable).
		Where(squirrel.Eq{"id": productID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperror.NewConflict("product is referenced by transaction lines")
		}
		return apperror.NewDatabase(fmt.Errorf("delete product: %w", err))
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("product", productID.String())
	}

	return nil
}

// List retrieves products ordered by part number. A non-positive Limit
// returns the full set, which serves the inventory snapshot.
func (r *Repo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*product.Product], error) {
	result := domain.ListResult[*product.Product]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect()

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"part_no": pattern},
			squirrel.ILike{"description": pattern},
		})
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
		return result, apperror.NewDatabase(fmt.Errorf("count products: %w", err))
	}

	q = q.OrderBy("part_no ASC")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit)).Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, apperror.NewDatabase(fmt.Errorf("list products: %w", err))
	}

	return result, nil
}

// ExistsByPartNo reports whether a product with the part number exists.
func (r *Repo) ExistsByPartNo(ctx context.Context, partNo string) (bool, error) {
	q := r.builder.
		Select("1").
		From(productsTable).
		Where(squirrel.Eq{"part_no": partNo}).
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
		return false, apperror.NewDatabase(fmt.Errorf("check part_no: %w", err))
	}

	return true, nil
}

// isUniqueViolation reports a PostgreSQL unique constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// isForeignKeyViolation reports a PostgreSQL foreign key violation.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
