package partner

import (
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/partner"
)

// CreateCustomerRequest is the request to create a customer
type CreateCustomerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Document string `json:"document"`
}

// UpdateCustomerRequest is the request to update a customer
type UpdateCustomerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Document string `json:"document"`
}

// CustomerListFilter filters customer listings
type CustomerListFilter struct {
	Page     int
	PageSize int
	Search   string
}

// CustomerResponse is the customer returned to clients
type CustomerResponse struct {
	ID         uuid.UUID  `json:"id"`
	ExternalID string     `json:"external_id,omitempty"`
	Name       string     `json:"name"`
	Email      string     `json:"email,omitempty"`
	Phone      string     `json:"phone,omitempty"`
	Document   string     `json:"document,omitempty"`
	IsActive   bool       `json:"is_active"`
	SyncedAt   *time.Time `json:"synced_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// SyncResult summarizes one directory synchronization run
type SyncResult struct {
	Pushed    int       `json:"pushed"`
	Pulled    int       `json:"pulled"`
	Failed    int       `json:"failed"`
	StartedAt time.Time `json:"started_at"`
	Duration  string    `json:"duration"`
}

// ToCustomerResponse converts a customer to its response form
func ToCustomerResponse(customer *partner.Customer) CustomerResponse {
	return CustomerResponse{
		ID:         customer.ID,
		ExternalID: customer.ExternalID,
		Name:       customer.Name,
		Email:      customer.Email,
		Phone:      customer.Phone,
		Document:   customer.Document,
		IsActive:   customer.IsActive,
		SyncedAt:   customer.SyncedAt,
		CreatedAt:  customer.CreatedAt,
		UpdatedAt:  customer.UpdatedAt,
	}
}
