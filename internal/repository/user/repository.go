package user

import (
	"context"

	"customer-api/internal/domain"
)

// Repository looks up and creates API users. Missing rows yield
// domain.ErrNotFound.
type Repository interface {
	Create(ctx context.Context, u domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByUUID(ctx context.Context, uuid string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}
