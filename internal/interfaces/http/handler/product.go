package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	catalogapp "github.com/retailpos/backend/internal/application/catalog"
	"github.com/retailpos/backend/internal/interfaces/http/dto"
)

// ProductHandler handles product catalog API endpoints
type ProductHandler struct {
	BaseHandler
	productService *catalogapp.ProductService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService *catalogapp.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// CreateProductRequest is the request body for creating a product
type CreateProductRequest struct {
	Name            string           `json:"name" binding:"required,min=1,max=200"`
	Description     string           `json:"description" binding:"max=2000"`
	Barcode         string           `json:"barcode" binding:"max=50"`
	CategoryID      *string          `json:"category_id" binding:"omitempty,uuid"`
	Price           decimal.Decimal  `json:"price" binding:"required"`
	CostPrice       *decimal.Decimal `json:"cost_price"`
	MinStock        int64            `json:"min_stock" binding:"min=0"`
	MaxStock        int64            `json:"max_stock" binding:"min=0"`
	HasStockControl *bool            `json:"has_stock_control"`
	InitialStock    int64            `json:"initial_stock" binding:"min=0"`
}

// UpdateProductRequest is the request body for updating a product
type UpdateProductRequest struct {
	Name        string           `json:"name" binding:"required,min=1,max=200"`
	Description string           `json:"description" binding:"max=2000"`
	Barcode     *string          `json:"barcode" binding:"omitempty,max=50"`
	CategoryID  *string          `json:"category_id" binding:"omitempty,uuid"`
	Price       *decimal.Decimal `json:"price"`
	CostPrice   *decimal.Decimal `json:"cost_price"`
	MinStock    *int64           `json:"min_stock" binding:"omitempty,min=0"`
	MaxStock    *int64           `json:"max_stock" binding:"omitempty,min=0"`
}

// Create adds a product to the catalog, optionally seeding its opening
// stock balance
func (h *ProductHandler) Create(c *gin.Context) {
	var req CreateProductRequest
	if !h.bindJSON(c, &req) {
		return
	}

	appReq := catalogapp.CreateProductRequest{
		Name:            req.Name,
		Description:     req.Description,
		Barcode:         req.Barcode,
		Price:           req.Price,
		CostPrice:       req.CostPrice,
		MinStock:        req.MinStock,
		MaxStock:        req.MaxStock,
		HasStockControl: req.HasStockControl,
		InitialStock:    req.InitialStock,
		OperatorID:      getOperatorID(c),
	}

	categoryID, ok := h.parseOptionalUUID(c, req.CategoryID, "category ID")
	if !ok {
		return
	}
	appReq.CategoryID = categoryID

	product, err := h.productService.Create(c.Request.Context(), appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, product)
}

// Update modifies a product's catalog attributes
func (h *ProductHandler) Update(c *gin.Context) {
	productID, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	var req UpdateProductRequest
	if !h.bindJSON(c, &req) {
		return
	}

	appReq := catalogapp.UpdateProductRequest{
		Name:        req.Name,
		Description: req.Description,
		Barcode:     req.Barcode,
		Price:       req.Price,
		CostPrice:   req.CostPrice,
		MinStock:    req.MinStock,
		MaxStock:    req.MaxStock,
	}

	categoryID, ok := h.parseOptionalUUID(c, req.CategoryID, "category ID")
	if !ok {
		return
	}
	appReq.CategoryID = categoryID

	product, err := h.productService.Update(c.Request.Context(), productID, appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// GetByID returns a single product
func (h *ProductHandler) GetByID(c *gin.Context) {
	productID, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	product, err := h.productService.GetByID(c.Request.Context(), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// GetByBarcode returns a product looked up by barcode, the primary
// lookup path at the register
func (h *ProductHandler) GetByBarcode(c *gin.Context) {
	barcode := c.Param("barcode")
	if barcode == "" {
		h.BadRequest(c, "Barcode is required")
		return
	}

	product, err := h.productService.GetByBarcode(c.Request.Context(), barcode)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// listProductsQuery holds the query parameters for listing products
type listProductsQuery struct {
	dto.ListRequest
	CategoryID string `form:"category_id" binding:"omitempty,uuid"`
	ActiveOnly bool   `form:"active_only"`
}

// List returns products matching the given filters
func (h *ProductHandler) List(c *gin.Context) {
	var query listProductsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	query.Normalize()

	filter := catalogapp.ProductListFilter{
		Page:       query.Page,
		PageSize:   query.PageSize,
		Search:     query.Search,
		ActiveOnly: query.ActiveOnly,
	}

	if query.CategoryID != "" {
		categoryID, err := uuid.Parse(query.CategoryID)
		if err != nil {
			h.BadRequest(c, "Invalid category ID format")
			return
		}
		filter.CategoryID = &categoryID
	}

	products, total, err := h.productService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, products, total, query.Page, query.PageSize)
}

// Activate returns a product to sale
func (h *ProductHandler) Activate(c *gin.Context) {
	productID, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	if err := h.productService.Activate(c.Request.Context(), productID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Deactivate removes a product from sale without deleting its history
func (h *ProductHandler) Deactivate(c *gin.Context) {
	productID, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	if err := h.productService.Deactivate(c.Request.Context(), productID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// parseOptionalUUID parses an optional string UUID, replying 400 on a
// malformed value
func (h *BaseHandler) parseOptionalUUID(c *gin.Context, value *string, label string) (*uuid.UUID, bool) {
	if value == nil || *value == "" {
		return nil, true
	}
	parsed, err := uuid.Parse(*value)
	if err != nil {
		h.BadRequest(c, "Invalid "+label+" format")
		return nil, false
	}
	return &parsed, true
}
