package partner

import (
	"strings"
	"time"

	"github.com/retailpos/backend/internal/domain/shared"
)

// Customer is a locally cached entry of the external customer directory.
// The directory is the source of truth; this cache keeps checkout working
// when the directory is unreachable and lets sales reference customers by ID.
type Customer struct {
	shared.BaseAggregateRoot
	ExternalID string     `gorm:"type:varchar(100);uniqueIndex:idx_customers_external,where:external_id <> ''"`
	Name       string     `gorm:"type:varchar(200);not null"`
	Email      string     `gorm:"type:varchar(200);index"`
	Phone      string     `gorm:"type:varchar(30)"`
	Document   string     `gorm:"type:varchar(20);index"` // CPF/CNPJ
	IsActive   bool       `gorm:"not null;default:true"`
	SyncedAt   *time.Time // Last successful directory sync
}

// TableName returns the table name for GORM
func (Customer) TableName() string {
	return "customers"
}

// NewCustomer creates a new active customer
func NewCustomer(name, email, phone string) (*Customer, error) {
	if err := validateCustomerName(name); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	return &Customer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Email:             email,
		Phone:             phone,
		IsActive:          true,
	}, nil
}

// Update updates the customer's contact information
func (c *Customer) Update(name, email, phone string) error {
	if err := validateCustomerName(name); err != nil {
		return err
	}
	if err := validateEmail(email); err != nil {
		return err
	}

	c.Name = name
	c.Email = email
	c.Phone = phone
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// SetDocument sets the customer's CPF or CNPJ
func (c *Customer) SetDocument(document string) error {
	if len(document) > 20 {
		return shared.NewDomainError("INVALID_DOCUMENT", "Document cannot exceed 20 characters")
	}
	c.Document = document
	c.UpdatedAt = time.Now()
	return nil
}

// MarkSynced records a successful directory sync and links the external ID
func (c *Customer) MarkSynced(externalID string, at time.Time) error {
	if externalID == "" {
		return shared.NewDomainError("INVALID_EXTERNAL_ID", "External ID cannot be empty")
	}
	c.ExternalID = externalID
	c.SyncedAt = &at
	c.UpdatedAt = time.Now()
	return nil
}

// Deactivate hides the customer without deleting purchase history
func (c *Customer) Deactivate() error {
	if !c.IsActive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Customer is already inactive")
	}
	c.IsActive = false
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// Activate makes the customer visible again
func (c *Customer) Activate() error {
	if c.IsActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Customer is already active")
	}
	c.IsActive = true
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

func validateCustomerName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Customer name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Customer name cannot exceed 200 characters")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return nil
	}
	if len(email) > 200 || !strings.Contains(email, "@") {
		return shared.NewDomainError("INVALID_EMAIL", "Email address is not valid")
	}
	return nil
}
