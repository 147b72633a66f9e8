package handlers

import (
	"github.com/gin-gonic/gin"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/id"
	"stockbook/internal/domain"
	"stockbook/internal/domain/ledger"
	"stockbook/internal/domain/transaction"
	"stockbook/internal/infrastructure/http/v1/dto"
)

// TransactionHandler serves stock transactions through the ledger engine.
type TransactionHandler struct {
	BaseHandler
	ledger *ledger.Service
}

// NewTransactionHandler creates a new transaction handler.
func NewTransactionHandler(ledger *ledger.Service) *TransactionHandler {
	return &TransactionHandler{ledger: ledger}
}

// Create handles POST /api/v1/transactions.
func (h *TransactionHandler) Create(c *gin.Context) {
	var req dto.CreateTransactionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	lines := make([]ledger.LineInput, 0, len(req.Lines))
	for _, line := range req.Lines {
		productID, err := id.Parse(line.ProductID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid product id").
				WithDetail("value", line.ProductID))
			return
		}
		lines = append(lines, ledger.LineInput{
			ProductID: productID,
			Quantity:  line.Quantity,
		})
	}

	input := ledger.CreateTransactionInput{
		Code:  req.Code,
		Type:  transaction.Type(req.Type),
		Notes: req.Notes,
		Lines: lines,
	}
	if req.Date != nil {
		input.Date = *req.Date
	}

	t, err := h.ledger.CreateTransaction(c.Request.Context(), input)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.CreatedBody(c, dto.FromTransaction(t))
}

// Get handles GET /api/v1/transactions/:id.
func (h *TransactionHandler) Get(c *gin.Context) {
	transactionID, ok := parseID(c, &h.BaseHandler, "id")
	if !ok {
		return
	}

	t, err := h.ledger.GetTransaction(c.Request.Context(), transactionID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromTransaction(t))
}

// List handles GET /api/v1/transactions.
func (h *TransactionHandler) List(c *gin.Context) {
	filter := transaction.ListFilter{
		ListFilter: domain.ListFilter{
			Search: c.Query("search"),
			Limit:  h.ParseIntQuery(c, "limit", 50),
			Offset: h.ParseIntQuery(c, "offset", 0),
		},
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

	result, err := h.ledger.ListTransactions(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse[dto.TransactionResponse]{
		Items:      dto.FromTransactions(result.Items),
		TotalCount: int(result.TotalCount),
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Delete handles DELETE /api/v1/transactions/:id.
// Every line's stock effect is reversed before the document goes.
func (h *TransactionHandler) Delete(c *gin.Context) {
	transactionID, ok := parseID(c, &h.BaseHandler, "id")
	if !ok {
		return
	}

	if err := h.ledger.DeleteTransaction(c.Request.Context(), transactionID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// UpdateLine handles PATCH /api/v1/transactions/:id/lines/:lineId.
func (h *TransactionHandler) UpdateLine(c *gin.Context) {
	lineID, ok := parseID(c, &h.BaseHandler, "lineId")
	if !ok {
		return
	}

	var req dto.UpdateLineRequest
	if !h.BindJSON(c, &req) {
		return
	}

	input := ledger.UpdateLineInput{Quantity: req.Quantity}
	if req.ProductID != nil {
		productID, err := id.Parse(*req.ProductID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid product id").
				WithDetail("value", *req.ProductID))
			return
		}
		input.ProductID = &productID
	}

	d, err := h.ledger.UpdateLine(c.Request.Context(), lineID, input)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.TransactionLineResponse{
		ID:        d.ID.String(),
		ProductID: d.ProductID.String(),
		Quantity:  d.Quantity,
	})
}

// DeleteLine handles DELETE /api/v1/transactions/:id/lines/:lineId.
func (h *TransactionHandler) DeleteLine(c *gin.Context) {
	lineID, ok := parseID(c, &h.BaseHandler, "lineId")
	if !ok {
		return
	}

	if err := h.ledger.RemoveLine(c.Request.Context(), lineID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}
