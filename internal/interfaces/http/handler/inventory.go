package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	inventoryapp "github.com/retailpos/backend/internal/application/inventory"
	"github.com/retailpos/backend/internal/interfaces/http/dto"
)

// InventoryHandler handles stock and ledger API endpoints
type InventoryHandler struct {
	BaseHandler
	stockService *inventoryapp.StockService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(stockService *inventoryapp.StockService) *InventoryHandler {
	return &InventoryHandler{stockService: stockService}
}

// AdjustStockRequest is the request body for a stock count correction
type AdjustStockRequest struct {
	ProductID       string `json:"product_id" binding:"required,uuid"`
	CountedQuantity int64  `json:"counted_quantity" binding:"min=0"`
	Notes           string `json:"notes" binding:"max=500"`
}

// ReceiveStockRequest is the request body for an inbound stock receipt
type ReceiveStockRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Quantity  int64  `json:"quantity" binding:"required,gt=0"`
	Reference string `json:"reference" binding:"max=100"`
}

// StockQuantityResponse is the current stock level of one product
type StockQuantityResponse struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int64     `json:"quantity"`
}

// GetStock returns the current stock level for a product
func (h *InventoryHandler) GetStock(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("product_id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	quantity, err := h.stockService.CurrentStock(c.Request.Context(), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, StockQuantityResponse{ProductID: productID, Quantity: quantity})
}

// Adjust corrects the stock level to a counted quantity. The delta is
// recorded in the movement ledger with the counted balance.
func (h *InventoryHandler) Adjust(c *gin.Context) {
	var req AdjustStockRequest
	if !h.bindJSON(c, &req) {
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	movement, err := h.stockService.Adjust(c.Request.Context(), inventoryapp.AdjustStockInput{
		ProductID:       productID,
		CountedQuantity: req.CountedQuantity,
		Notes:           req.Notes,
		OperatorID:      getOperatorID(c),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, movement)
}

// Receive records an inbound stock receipt (restock)
func (h *InventoryHandler) Receive(c *gin.Context) {
	var req ReceiveStockRequest
	if !h.bindJSON(c, &req) {
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	movement, err := h.stockService.Receive(c.Request.Context(), inventoryapp.ReceiveStockInput{
		ProductID:  productID,
		Quantity:   req.Quantity,
		Reference:  req.Reference,
		OperatorID: getOperatorID(c),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, movement)
}

// listMovementsQuery holds the query parameters for the movement ledger
type listMovementsQuery struct {
	dto.ListRequest
	ProductID string `form:"product_id" binding:"omitempty,uuid"`
	Kind      string `form:"kind" binding:"omitempty,oneof=INBOUND OUTBOUND ADJUSTMENT"`
	Reason    string `form:"reason"`
	Reference string `form:"reference"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
}

// ListMovements returns ledger entries matching the given filters,
// newest first
func (h *InventoryHandler) ListMovements(c *gin.Context) {
	var query listMovementsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	query.Normalize()

	filter := inventoryapp.MovementListFilter{
		Page:     query.Page,
		PageSize: query.PageSize,
	}

	if query.ProductID != "" {
		productID, err := uuid.Parse(query.ProductID)
		if err != nil {
			h.BadRequest(c, "Invalid product ID format")
			return
		}
		filter.ProductID = &productID
	}
	if query.Kind != "" {
		filter.Kind = &query.Kind
	}
	if query.Reason != "" {
		filter.Reason = &query.Reason
	}
	if query.Reference != "" {
		filter.Reference = &query.Reference
	}

	startDate, endDate, ok := h.parseDateRange(c, query.StartDate, query.EndDate)
	if !ok {
		return
	}
	filter.StartDate = startDate
	filter.EndDate = endDate

	movements, total, err := h.stockService.ListMovements(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, movements, total, query.Page, query.PageSize)
}

// ListLowStock returns products at or below their configured minimum
func (h *InventoryHandler) ListLowStock(c *gin.Context) {
	items, err := h.stockService.ListLowStock(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, items)
}

// Report returns an aggregate snapshot of the stock position
func (h *InventoryHandler) Report(c *gin.Context) {
	report, err := h.stockService.Report(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, report)
}
