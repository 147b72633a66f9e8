package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/id"
	"stockbook/internal/domain"
	"stockbook/internal/domain/ledger"
	"stockbook/internal/domain/product"
	"stockbook/internal/domain/transaction"
	"stockbook/internal/infrastructure/http/v1/dto"
)

// ProductHandler serves the product registry and inventory snapshot.
type ProductHandler struct {
	BaseHandler
	products *product.Service
	ledger   *ledger.Service
}

// NewProductHandler creates a new product handler.
func NewProductHandler(products *product.Service, ledger *ledger.Service) *ProductHandler {
	return &ProductHandler{products: products, ledger: ledger}
}

// Create handles POST /api/v1/products.
func (h *ProductHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := h.products.Create(c.Request.Context(), req.PartNo, req.Description)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.CreatedBody(c, dto.FromProduct(p))
}

// Get handles GET /api/v1/products/:ref.
// The reference may be a product ID or a part number.
func (h *ProductHandler) Get(c *gin.Context) {
	p, err := h.products.Get(c.Request.Context(), c.Param("ref"))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromProduct(p))
}

// Update handles PATCH /api/v1/products/:ref.
func (h *ProductHandler) Update(c *gin.Context) {
	p, err := h.products.Get(c.Request.Context(), c.Param("ref"))
	if err != nil {
		h.Error(c, err)
		return
	}

	var req dto.UpdateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	updated, err := h.products.Update(c.Request.Context(), p.ID, product.UpdateInput{
		PartNo:      req.PartNo,
		Description: req.Description,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromProduct(updated))
}

// Delete handles DELETE /api/v1/products/:ref.
func (h *ProductHandler) Delete(c *gin.Context) {
	p, err := h.products.Get(c.Request.Context(), c.Param("ref"))
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.products.Delete(c.Request.Context(), p.ID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// List handles GET /api/v1/products.
func (h *ProductHandler) List(c *gin.Context) {
	filter := domain.ListFilter{
		Search: c.Query("search"),
		Limit:  h.ParseIntQuery(c, "limit", 50),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}

	result, err := h.products.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse[dto.ProductResponse]{
		Items:      dto.FromProducts(result.Items),
		TotalCount: int(result.TotalCount),
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Inventory handles GET /api/v1/inventory: the full stock snapshot,
// ordered by part number.
func (h *ProductHandler) Inventory(c *gin.Context) {
	products, err := h.products.Snapshot(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromInventory(products, time.Now().UTC()))
}

// Movements handles GET /api/v1/products/:ref/movements.
func (h *ProductHandler) Movements(c *gin.Context) {
	p, err := h.products.Get(c.Request.Context(), c.Param("ref"))
	if err != nil {
		h.Error(c, err)
		return
	}

	filter := transaction.MovementFilter{
		Limit:  h.ParseIntQuery(c, "limit", 50),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}
	if typeParam := c.Query("type"); typeParam != "" {
		t := transaction.Type(typeParam)
		if !t.Valid() {
			h.Error(c, apperror.NewValidation("type must be IN or OUT").
				WithDetail("value", typeParam))
			return
		}
		filter.Type = &t
	}
	if from, ok := parseTimeQuery(c, "from"); ok {
		filter.DateFrom = from
	} else {
		h.Error(c, apperror.NewValidation("invalid 'from' date").
			WithDetail("value", c.Query("from")))
		return
	}
	if to, ok := parseTimeQuery(c, "to"); ok {
		filter.DateTo = to
	} else {
		h.Error(c, apperror.NewValidation("invalid 'to' date").
			WithDetail("value", c.Query("to")))
		return
	}

	movements, err := h.ledger.MovementHistory(c.Request.Context(), p.ID, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromMovements(movements))
}

// parseTimeQuery parses an RFC 3339 or date-only query parameter.
// Returns (nil, true) when the parameter is absent.
func parseTimeQuery(c *gin.Context, key string) (*time.Time, bool) {
	val := c.Query(key)
	if val == "" {
		return nil, true
	}
	if t, err := time.Parse(time.RFC3339, val); err == nil {
		return &t, true
	}
	if t, err := time.Parse("2006-01-02", val); err == nil {
		return &t, true
	}
	return nil, false
}

// parseID parses a path parameter as an ID, reporting a validation
// error on failure.
func parseID(c *gin.Context, h *BaseHandler, param string) (id.ID, bool) {
	parsed, err := id.Parse(c.Param(param))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id").
			WithDetail("param", param).
			WithDetail("value", c.Param(param)))
		return id.Nil(), false
	}
	return parsed, true
}
