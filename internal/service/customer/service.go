package customer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"customer-api/internal/domain"
	"customer-api/internal/events"
	custrepo "customer-api/internal/repository/customer"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service enforces customer business rules and emits domain events after
// each successful write.
type Service struct {
	repo      custrepo.Repository
	publisher events.Publisher
	logger    *zap.Logger
}

func New(repo custrepo.Repository, publisher events.Publisher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger.Named("customer_service"),
	}
}

// Create stores a new customer. The email must not belong to any existing
// row, soft-deleted rows included.
func (s *Service) Create(ctx context.Context, data domain.CustomerData) (*domain.Customer, error) {
	if data.Status == "" {
		data.Status = domain.CustomerStatusActive
	}
	if data.Metadata == nil {
		data.Metadata = map[string]any{}
	}

	exists, err := s.repo.ExistsByEmail(ctx, data.Email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, domain.ErrCustomerAlreadyExists
	}

	c := domain.Customer{UUID: uuid.NewString()}
	data.Apply(&c)
	created, err := s.repo.Create(ctx, c)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, domain.ErrCustomerAlreadyExists
		}
		return nil, fmt.Errorf("create customer: %w", err)
	}

	s.logger.Info("customer created", zap.String("uuid", created.UUID))
	events.Emit(ctx, s.publisher, s.logger, events.CustomerCreated, events.CustomerCreatedPayload{
		CustomerUUID: created.UUID,
		Name:         created.Name,
		Email:        created.Email,
	})
	return created, nil
}

// Update overwrites the writable fields of c. Email uniqueness is only
// re-checked when the email changes.
func (s *Service) Update(ctx context.Context, c *domain.Customer, data domain.CustomerData) (*domain.Customer, error) {
	if data.Status == "" {
		data.Status = c.Status
	}
	if data.Email != c.Email {
		exists, err := s.repo.ExistsByEmail(ctx, data.Email)
		if err != nil {
			return nil, fmt.Errorf("check email: %w", err)
		}
		if exists {
			return nil, domain.ErrCustomerAlreadyExists
		}
	}

	next := *c
	data.Apply(&next)
	changes := Changes(*c, next)

	updated, err := s.repo.Update(ctx, next)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return nil, domain.ErrCustomerNotFound
		case errors.Is(err, domain.ErrAlreadyExists):
			return nil, domain.ErrCustomerAlreadyExists
		}
		return nil, fmt.Errorf("update customer: %w", err)
	}

	events.Emit(ctx, s.publisher, s.logger, events.CustomerUpdated, events.CustomerUpdatedPayload{
		CustomerUUID: updated.UUID,
		Changes:      changes,
	})
	return updated, nil
}

// Delete soft-deletes c, or removes the row for good when force is set.
func (s *Service) Delete(ctx context.Context, c *domain.Customer, force bool) error {
	var err error
	if force {
		err = s.repo.ForceDelete(ctx, c.ID)
	} else {
		err = s.repo.SoftDelete(ctx, c.ID)
	}
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrCustomerNotFound
		}
		return fmt.Errorf("delete customer: %w", err)
	}

	s.logger.Info("customer deleted", zap.String("uuid", c.UUID), zap.Bool("force", force))
	events.Emit(ctx, s.publisher, s.logger, events.CustomerDeleted, events.CustomerDeletedPayload{
		CustomerUUID: c.UUID,
		Force:        force,
	})
	return nil
}

// Restore clears the deleted timestamp. Restoring a live customer is a no-op
// write.
func (s *Service) Restore(ctx context.Context, c *domain.Customer) (*domain.Customer, error) {
	restored, err := s.repo.Restore(ctx, c.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("restore customer: %w", err)
	}
	events.Emit(ctx, s.publisher, s.logger, events.CustomerRestored, events.CustomerRestoredPayload{
		CustomerUUID: restored.UUID,
	})
	return restored, nil
}

func (s *Service) Find(ctx context.Context, id int64) (*domain.Customer, error) {
	return notFound(s.repo.FindByID(ctx, id, false))
}

func (s *Service) FindByUUID(ctx context.Context, uuid string) (*domain.Customer, error) {
	return notFound(s.repo.FindByUUID(ctx, uuid, false))
}

// FindByUUIDWithTrashed also matches soft-deleted customers.
func (s *Service) FindByUUIDWithTrashed(ctx context.Context, uuid string) (*domain.Customer, error) {
	return notFound(s.repo.FindByUUID(ctx, uuid, true))
}

// FindByEmail returns (nil, nil) when no live customer has the email.
func (s *Service) FindByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	c, err := s.repo.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	return c, err
}

func (s *Service) Paginate(ctx context.Context, filter domain.CustomerFilter) (domain.Page[domain.Customer], error) {
	page, err := s.repo.Paginate(ctx, filter)
	if err != nil {
		return page, fmt.Errorf("list customers: %w", err)
	}
	return page, nil
}

func notFound(c *domain.Customer, err error) (*domain.Customer, error) {
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, err
	}
	return c, nil
}

// Changes lists the writable fields whose value differs between before and
// after, keyed by their JSON name and carrying the new value.
func Changes(before, after domain.Customer) map[string]any {
	changes := map[string]any{}
	if before.Name != after.Name {
		changes["name"] = after.Name
	}
	if before.Email != after.Email {
		changes["email"] = after.Email
	}
	diffOptional(changes, "phone", before.Phone, after.Phone)
	diffOptional(changes, "address", before.Address, after.Address)
	diffOptional(changes, "company", before.Company, after.Company)
	if before.Status != after.Status {
		changes["status"] = string(after.Status)
	}
	if !sameJSON(before.Metadata, after.Metadata) {
		changes["metadata"] = after.Metadata
	}
	return changes
}

func diffOptional(changes map[string]any, key string, before, after *string) {
	switch {
	case before == nil && after == nil:
		return
	case before != nil && after != nil && *before == *after:
		return
	case after == nil:
		changes[key] = nil
	default:
		changes[key] = *after
	}
}

// sameJSON compares values the way they are stored, so an int and a float
// holding the same number count as equal.
func sameJSON(a, b map[string]any) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return reflect.DeepEqual(a, b)
	}
	return string(ja) == string(jb)
}
