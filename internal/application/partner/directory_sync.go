package partner

import (
	"context"
	"time"

	"github.com/retailpos/backend/internal/domain/partner"
	"github.com/retailpos/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DirectoryCustomer is a customer record as the external directory
// returns it.
type DirectoryCustomer struct {
	ExternalID string
	Name       string
	Email      string
	Phone      string
	Document   string
	UpdatedAt  time.Time
}

// DirectoryClient talks to the external customer directory. The HTTP
// implementation lives in the infrastructure layer.
type DirectoryClient interface {
	// PushCustomer uploads a local customer and returns its directory ID
	PushCustomer(ctx context.Context, customer *partner.Customer) (string, error)

	// PullCustomers fetches directory records changed since the given time
	PullCustomers(ctx context.Context, since time.Time) ([]DirectoryCustomer, error)
}

// DirectorySyncService reconciles local customers with the external
// directory: unsynced locals are pushed, remote changes are pulled and
// merged by external ID. Individual record failures are counted, not
// fatal, so one bad record never stalls the run.
type DirectorySyncService struct {
	customerRepo partner.CustomerRepository
	client       DirectoryClient
	logger       *zap.Logger
}

// NewDirectorySyncService creates a new DirectorySyncService
func NewDirectorySyncService(
	customerRepo partner.CustomerRepository,
	client DirectoryClient,
	logger *zap.Logger,
) *DirectorySyncService {
	return &DirectorySyncService{
		customerRepo: customerRepo,
		client:       client,
		logger:       logger,
	}
}

// Sync runs one full push/pull cycle against the directory
func (s *DirectorySyncService) Sync(ctx context.Context, since time.Time) (*SyncResult, error) {
	startedAt := time.Now().UTC()
	result := SyncResult{StartedAt: startedAt}

	if err := s.push(ctx, &result); err != nil {
		return nil, err
	}
	if err := s.pull(ctx, since, &result); err != nil {
		return nil, err
	}

	result.Duration = time.Since(startedAt).String()
	s.logger.Info("Directory sync finished",
		zap.Int("pushed", result.Pushed),
		zap.Int("pulled", result.Pulled),
		zap.Int("failed", result.Failed))
	return &result, nil
}

func (s *DirectorySyncService) push(ctx context.Context, result *SyncResult) error {
	customers, err := s.customerRepo.FindAll(ctx, shared.Filter{Page: 1, PageSize: 1000})
	if err != nil {
		return wrapStorageError(err)
	}

	now := time.Now().UTC()
	for i := range customers {
		customer := &customers[i]
		if customer.SyncedAt != nil && !customer.UpdatedAt.After(*customer.SyncedAt) {
			continue
		}
		externalID, err := s.client.PushCustomer(ctx, customer)
		if err != nil {
			s.logger.Warn("Failed to push customer to directory",
				zap.String("customer_id", customer.ID.String()),
				zap.Error(err))
			result.Failed++
			continue
		}
		if err := customer.MarkSynced(externalID, now); err != nil {
			result.Failed++
			continue
		}
		if err := s.customerRepo.Save(ctx, customer); err != nil {
			return wrapStorageError(err)
		}
		result.Pushed++
	}
	return nil
}

func (s *DirectorySyncService) pull(ctx context.Context, since time.Time, result *SyncResult) error {
	records, err := s.client.PullCustomers(ctx, since)
	if err != nil {
		return shared.NewDomainError("SYNC_FAILURE", "Directory pull failed: "+err.Error())
	}

	now := time.Now().UTC()
	for _, record := range records {
		if err := s.applyRemote(ctx, record, now); err != nil {
			s.logger.Warn("Failed to apply directory record",
				zap.String("external_id", record.ExternalID),
				zap.Error(err))
			result.Failed++
			continue
		}
		result.Pulled++
	}
	return nil
}

func (s *DirectorySyncService) applyRemote(ctx context.Context, record DirectoryCustomer, now time.Time) error {
	customer, err := s.customerRepo.FindByExternalID(ctx, record.ExternalID)
	switch {
	case err == nil:
		if err := customer.Update(record.Name, record.Email, record.Phone); err != nil {
			return err
		}
	case isNotFound(err):
		customer, err = partner.NewCustomer(record.Name, record.Email, record.Phone)
		if err != nil {
			return err
		}
	default:
		return wrapStorageError(err)
	}

	if record.Document != "" && record.Document != customer.Document {
		if err := customer.SetDocument(record.Document); err != nil {
			return err
		}
	}
	if err := customer.MarkSynced(record.ExternalID, now); err != nil {
		return err
	}
	return s.customerRepo.Save(ctx, customer)
}
