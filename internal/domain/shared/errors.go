package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrUnauthorized        = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrForbidden           = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
)

// Sale and inventory errors
var (
	ErrInvalidOrder       = NewDomainError("INVALID_ORDER", "Order payload is malformed")
	ErrProductNotFound    = NewDomainError("PRODUCT_NOT_FOUND", "Product not found")
	ErrInsufficientStock  = NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock available")
	ErrOrderNotFound      = NewDomainError("ORDER_NOT_FOUND", "Sale not found")
	ErrAlreadyCanceled    = NewDomainError("ALREADY_CANCELED", "Sale has already been canceled")
	ErrDuplicateRequest   = NewDomainError("DUPLICATE_REQUEST", "Request with this idempotency key was already processed")
	ErrPersistenceFailure = NewDomainError("PERSISTENCE_FAILURE", "Storage operation failed")
)
