package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	partnerapp "github.com/retailpos/backend/internal/application/partner"
	"github.com/retailpos/backend/internal/interfaces/http/dto"
)

// CustomerHandler handles customer API endpoints
type CustomerHandler struct {
	BaseHandler
	customerService *partnerapp.CustomerService
	syncService     *partnerapp.DirectorySyncService
}

// NewCustomerHandler creates a new CustomerHandler. The sync service is
// optional, without it the sync endpoint reports the feature disabled.
func NewCustomerHandler(customerService *partnerapp.CustomerService, syncService *partnerapp.DirectorySyncService) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
		syncService:     syncService,
	}
}

// CustomerRequest is the request body for creating or updating a customer
type CustomerRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=200"`
	Email    string `json:"email" binding:"omitempty,email"`
	Phone    string `json:"phone" binding:"max=30"`
	Document string `json:"document" binding:"max=20"`
}

// SyncRequest is the request body for triggering a directory sync run
type SyncRequest struct {
	Since string `json:"since"`
}

// Create registers a new customer
func (h *CustomerHandler) Create(c *gin.Context) {
	var req CustomerRequest
	if !h.bindJSON(c, &req) {
		return
	}

	customer, err := h.customerService.Create(c.Request.Context(), partnerapp.CreateCustomerRequest{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Document: req.Document,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, customer)
}

// Update modifies a customer's contact information
func (h *CustomerHandler) Update(c *gin.Context) {
	customerID, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	var req CustomerRequest
	if !h.bindJSON(c, &req) {
		return
	}

	customer, err := h.customerService.Update(c.Request.Context(), customerID, partnerapp.UpdateCustomerRequest{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Document: req.Document,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, customer)
}

// GetByID returns a single customer
func (h *CustomerHandler) GetByID(c *gin.Context) {
	customerID, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	customer, err := h.customerService.GetByID(c.Request.Context(), customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, customer)
}

// List returns customers matching the given filters
func (h *CustomerHandler) List(c *gin.Context) {
	var query dto.ListRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	query.Normalize()

	customers, total, err := h.customerService.List(c.Request.Context(), partnerapp.CustomerListFilter{
		Page:     query.Page,
		PageSize: query.PageSize,
		Search:   query.Search,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, customers, total, query.Page, query.PageSize)
}

// Deactivate marks a customer inactive without deleting their history
func (h *CustomerHandler) Deactivate(c *gin.Context) {
	customerID, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	if err := h.customerService.Deactivate(c.Request.Context(), customerID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Sync triggers one push/pull reconciliation run against the external
// customer directory
func (h *CustomerHandler) Sync(c *gin.Context) {
	if h.syncService == nil {
		h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeUnavailable, "Directory sync is not configured")
		return
	}

	var req SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		h.BadRequest(c, err.Error())
		return
	}

	// Default to the last 24 hours when no cutoff is given
	since := time.Now().UTC().Add(-24 * time.Hour)
	if req.Since != "" {
		parsed, err := time.Parse(time.RFC3339, req.Since)
		if err != nil {
			h.BadRequest(c, "Invalid since, expected RFC 3339 format")
			return
		}
		since = parsed
	}

	result, err := h.syncService.Sync(c.Request.Context(), since)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
