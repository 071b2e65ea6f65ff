package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// CreateProductRequest is the request to create a product
type CreateProductRequest struct {
	Name            string           `json:"name" binding:"required"`
	Description     string           `json:"description"`
	Barcode         string           `json:"barcode"`
	CategoryID      *uuid.UUID       `json:"category_id"`
	Price           decimal.Decimal  `json:"price" binding:"required"`
	CostPrice       *decimal.Decimal `json:"cost_price"`
	MinStock        int64            `json:"min_stock"`
	MaxStock        int64            `json:"max_stock"`
	HasStockControl *bool            `json:"has_stock_control"`
	InitialStock    int64            `json:"initial_stock"`
	OperatorID      *uuid.UUID
}

// UpdateProductRequest is the request to update a product
type UpdateProductRequest struct {
	Name        string           `json:"name" binding:"required"`
	Description string           `json:"description"`
	Barcode     *string          `json:"barcode"`
	CategoryID  *uuid.UUID       `json:"category_id"`
	Price       *decimal.Decimal `json:"price"`
	CostPrice   *decimal.Decimal `json:"cost_price"`
	MinStock    *int64           `json:"min_stock"`
	MaxStock    *int64           `json:"max_stock"`
}

// ProductListFilter filters product listings
type ProductListFilter struct {
	Page       int
	PageSize   int
	Search     string
	CategoryID *uuid.UUID
	ActiveOnly bool
}

// ProductResponse is the product returned to clients
type ProductResponse struct {
	ID              uuid.UUID       `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	Barcode         string          `json:"barcode,omitempty"`
	CategoryID      *uuid.UUID      `json:"category_id,omitempty"`
	Price           decimal.Decimal `json:"price"`
	CostPrice       decimal.Decimal `json:"cost_price"`
	MinStock        int64           `json:"min_stock"`
	MaxStock        int64           `json:"max_stock"`
	HasStockControl bool            `json:"has_stock_control"`
	IsActive        bool            `json:"is_active"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// CreateCategoryRequest is the request to create a category
type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// UpdateCategoryRequest is the request to update a category
type UpdateCategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// CategoryResponse is the category returned to clients
type CategoryResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToProductResponse converts a product to its response form
func ToProductResponse(product *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:              product.ID,
		Name:            product.Name,
		Description:     product.Description,
		Barcode:         product.Barcode,
		CategoryID:      product.CategoryID,
		Price:           product.Price,
		CostPrice:       product.CostPrice,
		MinStock:        product.MinStock,
		MaxStock:        product.MaxStock,
		HasStockControl: product.HasStockControl,
		IsActive:        product.IsActive,
		CreatedAt:       product.CreatedAt,
		UpdatedAt:       product.UpdatedAt,
	}
}

// ToCategoryResponse converts a category to its response form
func ToCategoryResponse(category *catalog.Category) CategoryResponse {
	return CategoryResponse{
		ID:          category.ID,
		Name:        category.Name,
		Description: category.Description,
		IsActive:    category.IsActive,
		CreatedAt:   category.CreatedAt,
		UpdatedAt:   category.UpdatedAt,
	}
}
