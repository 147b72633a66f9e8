// Package main seeds a development database: schema plus a small set of
// products and stock transactions applied through the ledger engine.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"stockbook/internal/domain/ledger"
	"stockbook/internal/domain/product"
	"stockbook/internal/domain/transaction"
	"stockbook/internal/infrastructure/storage/postgres"
	"stockbook/internal/infrastructure/storage/postgres/product_repo"
	"stockbook/internal/infrastructure/storage/postgres/transaction_repo"
	"stockbook/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dsn))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		log.Fatalw("failed to ensure schema", "error", err)
	}

	txManager := postgres.NewTxManager(pool)
	productRepo := product_repo.NewRepo(txManager)
	transactionRepo := transaction_repo.NewRepo(txManager)

	products := product.NewService(productRepo)
	ledgerService := ledger.NewService(productRepo, transactionRepo, txManager)

	seed := []struct {
		partNo      string
		description string
	}{
		{"BRG-6204", "Deep groove ball bearing 20x47x14"},
		{"BLT-M8X40", "Hex bolt M8x40 zinc plated"},
		{"FLT-OIL-01", "Oil filter cartridge"},
		{"GSK-120", "Flange gasket DN120"},
	}

	created := make(map[string]*product.Product, len(seed))
	for _, s := range seed {
		p, err := products.Create(ctx, s.partNo, s.description)
		if err != nil {
			log.Warnw("skipping product", "part_no", s.partNo, "error", err)
			continue
		}
		created[s.partNo] = p
	}

	if len(created) < len(seed) {
		log.Info("seed data already present, done")
		return
	}

	receipt := ledger.CreateTransactionInput{
		Code: "GRN-0001",
		Type: transaction.TypeIn,
		Date: time.Now().UTC(),
		Lines: []ledger.LineInput{
			{ProductID: created["BRG-6204"].ID, Quantity: 120},
			{ProductID: created["BLT-M8X40"].ID, Quantity: 5000},
			{ProductID: created["FLT-OIL-01"].ID, Quantity: 60},
			{ProductID: created["GSK-120"].ID, Quantity: 25},
		},
	}
	if _, err := ledgerService.CreateTransaction(ctx, receipt); err != nil {
		log.Fatalw("failed to create receipt", "error", err)
	}

	issue := ledger.CreateTransactionInput{
		Code: "DO-0001",
		Type: transaction.TypeOut,
		Date: time.Now().UTC(),
		Lines: []ledger.LineInput{
			{ProductID: created["BRG-6204"].ID, Quantity: 8},
			{ProductID: created["BLT-M8X40"].ID, Quantity: 200},
		},
	}
	if _, err := ledgerService.CreateTransaction(ctx, issue); err != nil {
		log.Fatalw("failed to create issue", "error", err)
	}

	log.Info("seed complete")
}
