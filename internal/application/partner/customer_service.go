package partner

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/partner"
	"github.com/retailpos/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CustomerService handles customer management
type CustomerService struct {
	customerRepo partner.CustomerRepository
	logger       *zap.Logger
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(customerRepo partner.CustomerRepository, logger *zap.Logger) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
		logger:       logger,
	}
}

// Create registers a new customer
func (s *CustomerService) Create(ctx context.Context, req CreateCustomerRequest) (*CustomerResponse, error) {
	if req.Document != "" {
		existing, err := s.customerRepo.FindByDocument(ctx, req.Document)
		if err == nil && existing != nil {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Customer with this document already exists")
		}
		if err != nil && !isNotFound(err) {
			return nil, wrapStorageError(err)
		}
	}

	customer, err := partner.NewCustomer(req.Name, req.Email, req.Phone)
	if err != nil {
		return nil, err
	}
	if req.Document != "" {
		if err := customer.SetDocument(req.Document); err != nil {
			return nil, err
		}
	}

	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, wrapStorageError(err)
	}

	s.logger.Info("Customer created", zap.String("customer_id", customer.ID.String()))

	response := ToCustomerResponse(customer)
	return &response, nil
}

// Update modifies an existing customer
func (s *CustomerService) Update(ctx context.Context, id uuid.UUID, req UpdateCustomerRequest) (*CustomerResponse, error) {
	customer, err := s.requireCustomer(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := customer.Update(req.Name, req.Email, req.Phone); err != nil {
		return nil, err
	}
	if req.Document != "" && req.Document != customer.Document {
		existing, err := s.customerRepo.FindByDocument(ctx, req.Document)
		if err == nil && existing != nil && existing.ID != id {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Customer with this document already exists")
		}
		if err != nil && !isNotFound(err) {
			return nil, wrapStorageError(err)
		}
		if err := customer.SetDocument(req.Document); err != nil {
			return nil, err
		}
	}

	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, wrapStorageError(err)
	}

	response := ToCustomerResponse(customer)
	return &response, nil
}

// GetByID retrieves a customer by ID
func (s *CustomerService) GetByID(ctx context.Context, id uuid.UUID) (*CustomerResponse, error) {
	customer, err := s.requireCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToCustomerResponse(customer)
	return &response, nil
}

// List retrieves customers with pagination
func (s *CustomerService) List(ctx context.Context, filter CustomerListFilter) ([]CustomerResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  "name",
		OrderDir: "asc",
		Search:   filter.Search,
	}

	customers, err := s.customerRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, wrapStorageError(err)
	}
	total, err := s.customerRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, wrapStorageError(err)
	}

	responses := make([]CustomerResponse, 0, len(customers))
	for i := range customers {
		responses = append(responses, ToCustomerResponse(&customers[i]))
	}
	return responses, total, nil
}

// Deactivate hides a customer from new sales without losing history
func (s *CustomerService) Deactivate(ctx context.Context, id uuid.UUID) error {
	customer, err := s.requireCustomer(ctx, id)
	if err != nil {
		return err
	}
	if err := customer.Deactivate(); err != nil {
		return err
	}
	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return wrapStorageError(err)
	}
	return nil
}

func (s *CustomerService) requireCustomer(ctx context.Context, id uuid.UUID) (*partner.Customer, error) {
	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, shared.NewDomainError("NOT_FOUND", "Customer not found")
		}
		return nil, wrapStorageError(err)
	}
	return customer, nil
}

func isNotFound(err error) bool {
	var domainErr *shared.DomainError
	return errors.As(err, &domainErr) && domainErr.Code == shared.ErrNotFound.Code
}

// wrapStorageError keeps domain errors intact and converts anything
// else to PERSISTENCE_FAILURE.
func wrapStorageError(err error) error {
	if err == nil {
		return nil
	}
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	return shared.NewDomainError(shared.ErrPersistenceFailure.Code, "Storage operation failed: "+err.Error())
}
