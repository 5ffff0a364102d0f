package user

import (
	"context"
	"errors"

	"customer-api/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const userColumns = `id, uuid::text, name, username, email, password, is_active, email_verified_at, created_at, updated_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &postgresRepo{pool: pool, logger: logger.Named("user_repo")}
}

func (r *postgresRepo) Create(ctx context.Context, u domain.User) (*domain.User, error) {
	const q = `
INSERT INTO users (uuid, name, username, email, password, is_active, email_verified_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + userColumns
	return r.scanUser(r.pool.QueryRow(ctx, q,
		u.UUID,
		u.Name,
		u.Username,
		u.Email,
		u.PasswordHash,
		u.IsActive,
		u.EmailVerifiedAt,
	))
}

func (r *postgresRepo) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *postgresRepo) FindByUUID(ctx context.Context, uuid string) (*domain.User, error) {
	return r.scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE uuid::text = $1`, uuid))
}

func (r *postgresRepo) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1 LIMIT 1`, username))
}

func (r *postgresRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1 LIMIT 1`, email))
}

func (r *postgresRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *postgresRepo) scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.UUID,
		&u.Name,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.IsActive,
		&u.EmailVerifiedAt,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Error("scan user", zap.Error(err))
		return nil, err
	}
	return &u, nil
}
