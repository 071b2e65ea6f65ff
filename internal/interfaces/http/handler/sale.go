package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	salesapp "github.com/retailpos/backend/internal/application/sales"
	"github.com/retailpos/backend/internal/interfaces/http/dto"
)

// IdempotencyKeyHeader carries the client-chosen key that makes sale
// creation safe to retry.
const IdempotencyKeyHeader = "Idempotency-Key"

// SaleHandler handles sale (checkout) API endpoints
type SaleHandler struct {
	BaseHandler
	orderService *salesapp.OrderService
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(orderService *salesapp.OrderService) *SaleHandler {
	return &SaleHandler{orderService: orderService}
}

// SaleItemRequest is one line of a sale creation request. The client
// sends the price the item was sold at; it is frozen on the line item.
type SaleItemRequest struct {
	ProductID string          `json:"product_id" binding:"required,uuid"`
	Quantity  int64           `json:"quantity" binding:"required,gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price" binding:"required"`
}

// CreateSaleRequest is the request body for registering a sale
type CreateSaleRequest struct {
	Items         []SaleItemRequest `json:"items" binding:"required,min=1,dive"`
	PaymentMethod string            `json:"payment_method" binding:"required"`
	CustomerID    *string           `json:"customer_id" binding:"omitempty,uuid"`
	Discount      *decimal.Decimal  `json:"discount"`
	Notes         string            `json:"notes" binding:"max=500"`
}

// CancelSaleRequest is the request body for canceling a sale
type CancelSaleRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// Create registers a new sale. Stock is decremented and ledger entries
// written in the same transaction; any failure voids the whole sale.
func (h *SaleHandler) Create(c *gin.Context) {
	var req CreateSaleRequest
	if !h.bindJSON(c, &req) {
		return
	}

	input := salesapp.CreateSaleInput{
		PaymentMethod:  req.PaymentMethod,
		Discount:       req.Discount,
		Notes:          req.Notes,
		OperatorID:     getOperatorID(c),
		IdempotencyKey: c.GetHeader(IdempotencyKeyHeader),
	}

	for _, item := range req.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			h.BadRequest(c, "Invalid product ID format")
			return
		}
		input.Items = append(input.Items, salesapp.CreateSaleItemInput{
			ProductID: productID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	if req.CustomerID != nil && *req.CustomerID != "" {
		customerID, err := uuid.Parse(*req.CustomerID)
		if err != nil {
			h.BadRequest(c, "Invalid customer ID format")
			return
		}
		input.CustomerID = &customerID
	}

	sale, err := h.orderService.Create(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, sale)
}

// Cancel voids a completed sale, returning its items to stock
func (h *SaleHandler) Cancel(c *gin.Context) {
	saleID, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	var req CancelSaleRequest
	if !h.bindJSON(c, &req) {
		return
	}

	sale, err := h.orderService.Cancel(c.Request.Context(), salesapp.CancelSaleInput{
		SaleID:     saleID,
		Reason:     req.Reason,
		OperatorID: getOperatorID(c),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, sale)
}

// GetByID returns a sale with its items
func (h *SaleHandler) GetByID(c *gin.Context) {
	saleID, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	sale, err := h.orderService.GetByID(c.Request.Context(), saleID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, sale)
}

// GetByCode returns a sale looked up by its receipt code
func (h *SaleHandler) GetByCode(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		h.BadRequest(c, "Sale code is required")
		return
	}

	sale, err := h.orderService.GetBySaleCode(c.Request.Context(), code)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, sale)
}

// listSalesQuery holds the query parameters for listing sales
type listSalesQuery struct {
	dto.ListRequest
	Status        string `form:"status" binding:"omitempty,oneof=completed canceled"`
	PaymentMethod string `form:"payment_method"`
	CustomerID    string `form:"customer_id" binding:"omitempty,uuid"`
	StartDate     string `form:"start_date"`
	EndDate       string `form:"end_date"`
}

// List returns sales matching the given filters, newest first
func (h *SaleHandler) List(c *gin.Context) {
	var query listSalesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	query.Normalize()

	filter := salesapp.SaleListFilter{
		Page:     query.Page,
		PageSize: query.PageSize,
		OrderBy:  query.OrderBy,
		OrderDir: query.OrderDir,
	}

	if query.Status != "" {
		filter.Status = &query.Status
	}
	if query.PaymentMethod != "" {
		filter.PaymentMethod = &query.PaymentMethod
	}
	if query.CustomerID != "" {
		customerID, err := uuid.Parse(query.CustomerID)
		if err != nil {
			h.BadRequest(c, "Invalid customer ID format")
			return
		}
		filter.CustomerID = &customerID
	}

	startDate, endDate, ok := h.parseDateRange(c, query.StartDate, query.EndDate)
	if !ok {
		return
	}
	filter.StartDate = startDate
	filter.EndDate = endDate

	sales, total, err := h.orderService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, sales, total, query.Page, query.PageSize)
}

// parseDateRange parses optional RFC 3339 date range query parameters
func (h *BaseHandler) parseDateRange(c *gin.Context, start, end string) (*time.Time, *time.Time, bool) {
	var startDate, endDate *time.Time

	if start != "" {
		parsed, err := time.Parse(time.RFC3339, start)
		if err != nil {
			h.BadRequest(c, "Invalid start_date, expected RFC 3339 format")
			return nil, nil, false
		}
		startDate = &parsed
	}
	if end != "" {
		parsed, err := time.Parse(time.RFC3339, end)
		if err != nil {
			h.BadRequest(c, "Invalid end_date, expected RFC 3339 format")
			return nil, nil, false
		}
		endDate = &parsed
	}

	return startDate, endDate, true
}
