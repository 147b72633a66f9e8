// Package v1 wires the HTTP API surface.
package v1

import (
	"github.com/gin-gonic/gin"

	"stockbook/internal/domain/ledger"
	"stockbook/internal/domain/product"
	"stockbook/internal/infrastructure/http/v1/handlers"
	"stockbook/internal/infrastructure/http/v1/middleware"
	"stockbook/internal/infrastructure/storage/postgres"
	"stockbook/pkg/logger"
)

// RouterConfig carries router dependencies.
type RouterConfig struct {
	Pool     *postgres.Pool
	Logger   *logger.Logger
	Products *product.Service
	Ledger   *ledger.Service
}

// NewRouter builds the gin engine with middleware and all routes.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	productHandler := handlers.NewProductHandler(cfg.Products, cfg.Ledger)
	transactionHandler := handlers.NewTransactionHandler(cfg.Ledger)

	api := router.Group("/api/v1")
	{
		products := api.Group("/products")
		{
			products.POST("", productHandler.Create)
			products.GET("", productHandler.List)
			products.GET("/:ref", productHandler.Get)
			products.PATCH("/:ref", productHandler.Update)
			products.DELETE("/:ref", productHandler.Delete)
			products.GET("/:ref/movements", productHandler.Movements)
		}

		api.GET("/inventory", productHandler.Inventory)

		transactions := api.Group("/transactions")
		{
			transactions.POST("", transactionHandler.Create)
			transactions.GET("", transactionHandler.List)
			transactions.GET("/:id", transactionHandler.Get)
			transactions.DELETE("/:id", transactionHandler.Delete)
			transactions.PATCH("/:id/lines/:lineId", transactionHandler.UpdateLine)
			transactions.DELETE("/:id/lines/:lineId", transactionHandler.DeleteLine)
		}
	}

	return router
}
