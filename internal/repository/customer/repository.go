package customer

import (
	"context"

	"customer-api/internal/domain"
)

// Repository persists and fetches customers. Soft-deleted rows are excluded
// unless a method takes an explicit withTrashed flag or the filter sets
// WithTrashed.
type Repository interface {
	Create(ctx context.Context, c domain.Customer) (*domain.Customer, error)
	Update(ctx context.Context, c domain.Customer) (*domain.Customer, error)
	SoftDelete(ctx context.Context, id int64) error
	ForceDelete(ctx context.Context, id int64) error
	Restore(ctx context.Context, id int64) (*domain.Customer, error)

	FindByID(ctx context.Context, id int64, withTrashed bool) (*domain.Customer, error)
	FindByUUID(ctx context.Context, uuid string, withTrashed bool) (*domain.Customer, error)
	FindByEmail(ctx context.Context, email string) (*domain.Customer, error)
	// ExistsByEmail checks every row, soft-deleted ones included.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	Count(ctx context.Context, filter domain.CustomerFilter) (int, error)
	Paginate(ctx context.Context, filter domain.CustomerFilter) (domain.Page[domain.Customer], error)
}
