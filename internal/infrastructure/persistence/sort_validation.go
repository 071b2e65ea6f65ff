package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
// Sort fields reach the ORDER BY clause verbatim, so everything not
// whitelisted is discarded rather than escaped.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// ProductSortFields contains allowed sort fields for products
var ProductSortFields = map[string]bool{
	"id":         true,
	"name":       true,
	"barcode":    true,
	"price":      true,
	"min_stock":  true,
	"is_active":  true,
	"created_at": true,
	"updated_at": true,
}

// CategorySortFields contains allowed sort fields for categories
var CategorySortFields = map[string]bool{
	"id":         true,
	"name":       true,
	"created_at": true,
	"updated_at": true,
}

// CustomerSortFields contains allowed sort fields for customers
var CustomerSortFields = map[string]bool{
	"id":         true,
	"name":       true,
	"email":      true,
	"document":   true,
	"synced_at":  true,
	"created_at": true,
	"updated_at": true,
}

// SaleSortFields contains allowed sort fields for sales
var SaleSortFields = map[string]bool{
	"id":           true,
	"sale_code":    true,
	"total_amount": true,
	"status":       true,
	"sold_at":      true,
	"created_at":   true,
}

// MovementSortFields contains allowed sort fields for stock movements
var MovementSortFields = map[string]bool{
	"id":          true,
	"kind":        true,
	"reason":      true,
	"occurred_at": true,
	"created_at":  true,
}

// StockSortFields contains allowed sort fields for product stock records
var StockSortFields = map[string]bool{
	"id":         true,
	"product_id": true,
	"quantity":   true,
	"updated_at": true,
}

// UserSortFields contains allowed sort fields for users
var UserSortFields = map[string]bool{
	"id":         true,
	"username":   true,
	"name":       true,
	"role":       true,
	"created_at": true,
}
