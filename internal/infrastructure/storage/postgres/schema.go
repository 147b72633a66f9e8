package postgres

import (
	"context"
	"fmt"

	"stockbook/pkg/logger"
)

// schemaDDL is the full schema, idempotent so EnsureSchema can run on
// every startup of the seeding tool.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS products (
    id            UUID PRIMARY KEY,
    part_no       TEXT NOT NULL,
    description   TEXT NOT NULL DEFAULT '',
    current_stock BIGINT NOT NULL DEFAULT 0,
    version       INTEGER NOT NULL DEFAULT 1,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT now(),

    CONSTRAINT products_part_no_key       UNIQUE (part_no),
    CONSTRAINT products_stock_nonnegative CHECK (current_stock >= 0)
);

CREATE TABLE IF NOT EXISTS stock_transactions (
    id         UUID PRIMARY KEY,
    code       TEXT NOT NULL,
    type       TEXT NOT NULL,
    date       TIMESTAMPTZ NOT NULL,
    notes      TEXT NOT NULL DEFAULT '',
    version    INTEGER NOT NULL DEFAULT 1,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),

    CONSTRAINT stock_transactions_code_key UNIQUE (code),
    CONSTRAINT stock_transactions_type_chk CHECK (type IN ('IN', 'OUT'))
);

CREATE TABLE IF NOT EXISTS stock_transaction_details (
    id             UUID PRIMARY KEY,
    transaction_id UUID NOT NULL REFERENCES stock_transactions (id) ON DELETE CASCADE,
    product_id     UUID NOT NULL REFERENCES products (id) ON DELETE RESTRICT,
    quantity       BIGINT NOT NULL,
    created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),

    CONSTRAINT details_quantity_positive CHECK (quantity > 0),
    CONSTRAINT details_transaction_product_key UNIQUE (transaction_id, product_id)
);

CREATE INDEX IF NOT EXISTS idx_details_product_id
    ON stock_transaction_details (product_id);

CREATE INDEX IF NOT EXISTS idx_details_transaction_id
    ON stock_transaction_details (transaction_id);

CREATE INDEX IF NOT EXISTS idx_transactions_date
    ON stock_transactions (date DESC);
`

// EnsureSchema creates the tables and indexes if they do not exist.
func EnsureSchema(ctx context.Context, pool *Pool) error {
	if _, err := pool.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	logger.Info(ctx, "database schema ensured")
	return nil
}
