package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		expected int
	}{
		{"not found", ErrCodeNotFound, http.StatusNotFound},
		{"insufficient stock", ErrCodeInsufficientStock, http.StatusUnprocessableEntity},
		{"already canceled", ErrCodeAlreadyCanceled, http.StatusUnprocessableEntity},
		{"concurrency conflict", ErrCodeConcurrencyConflict, http.StatusConflict},
		{"duplicate request", ErrCodeDuplicateRequest, http.StatusConflict},
		{"unavailable", ErrCodeUnavailable, http.StatusServiceUnavailable},
		{"unauthorized", ErrCodeUnauthorized, http.StatusUnauthorized},
		{"unknown code falls back to 500", "SOMETHING_ELSE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		expected string
	}{
		{"product not found", "PRODUCT_NOT_FOUND", ErrCodeNotFound},
		{"order not found", "ORDER_NOT_FOUND", ErrCodeNotFound},
		{"already canceled", "ALREADY_CANCELED", ErrCodeAlreadyCanceled},
		{"insufficient stock", "INSUFFICIENT_STOCK", ErrCodeInsufficientStock},
		{"duplicate request", "DUPLICATE_REQUEST", ErrCodeDuplicateRequest},
		{"persistence failure", "PERSISTENCE_FAILURE", ErrCodeUnavailable},
		{"unmapped INVALID prefix", "INVALID_BARCODE", ErrCodeInvalidInput},
		{"invalid order", "INVALID_ORDER", ErrCodeInvalidInput},
		{"unknown passes through", "CUSTOM_CODE", "CUSTOM_CODE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeErrorCode(tt.code))
		})
	}
}

func TestNormalizedDomainErrorsResolveToClientStatus(t *testing.T) {
	// Every mapped domain code must resolve to a non-500 status once normalized
	for domainCode := range DomainErrorCodeMapping {
		status := GetHTTPStatus(NormalizeErrorCode(domainCode))
		assert.NotEqual(t, http.StatusInternalServerError, status, "code %s", domainCode)
	}
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	resp := NewSuccessResponseWithMeta([]string{"a"}, 45, 2, 20)

	assert.True(t, resp.Success)
	assert.Equal(t, int64(45), resp.Meta.Total)
	assert.Equal(t, 3, resp.Meta.TotalPages)
}

func TestListRequestNormalize(t *testing.T) {
	var req ListRequest
	req.Normalize()

	assert.Equal(t, 1, req.Page)
	assert.Equal(t, 20, req.PageSize)
}
