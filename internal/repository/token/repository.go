package token

import (
	"context"

	"customer-api/internal/domain"
)

// Repository stores hashed bearer tokens. Delete methods are idempotent:
// removing zero rows is not an error.
type Repository interface {
	// Issue replaces any token the user holds for t.Name with t, atomically.
	Issue(ctx context.Context, t domain.AccessToken) (*domain.AccessToken, error)
	FindByHash(ctx context.Context, hash string) (*domain.AccessToken, error)
	Touch(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
	DeleteByDevice(ctx context.Context, userID int64, name string) (int64, error)
	DeleteAllForUser(ctx context.Context, userID int64) (int64, error)
	CountForUser(ctx context.Context, userID int64) (int, error)
}
