package token

import (
	"context"
	"errors"
	"fmt"

	"customer-api/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const tokenColumns = `id, user_id, name, token_hash, last_used_at, created_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &postgresRepo{pool: pool, logger: logger.Named("token_repo")}
}

func (r *postgresRepo) Issue(ctx context.Context, t domain.AccessToken) (*domain.AccessToken, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Concurrent logins for the same user queue on the row lock.
	var locked int64
	if err := tx.QueryRow(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, t.UserID).Scan(&locked); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("lock user: %w", err)
	}

	cmd, err := tx.Exec(ctx, `DELETE FROM personal_access_tokens WHERE user_id = $1 AND name = $2`, t.UserID, t.Name)
	if err != nil {
		return nil, fmt.Errorf("revoke device tokens: %w", err)
	}
	if n := cmd.RowsAffected(); n > 0 {
		r.logger.Debug("revoked device tokens", zap.Int64("user_id", t.UserID), zap.String("device", t.Name), zap.Int64("count", n))
	}

	const q = `
INSERT INTO personal_access_tokens (user_id, name, token_hash)
VALUES ($1, $2, $3)
RETURNING ` + tokenColumns
	out, err := scanToken(tx.QueryRow(ctx, q, t.UserID, t.Name, t.TokenHash))
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *postgresRepo) FindByHash(ctx context.Context, hash string) (*domain.AccessToken, error) {
	const q = `SELECT ` + tokenColumns + ` FROM personal_access_tokens WHERE token_hash = $1 LIMIT 1`
	return scanToken(r.pool.QueryRow(ctx, q, hash))
}

func (r *postgresRepo) Touch(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `UPDATE personal_access_tokens SET last_used_at = now() WHERE id = $1`, id)
	return err
}

func (r *postgresRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM personal_access_tokens WHERE id = $1`, id)
	return err
}

func (r *postgresRepo) DeleteByDevice(ctx context.Context, userID int64, name string) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM personal_access_tokens WHERE user_id = $1 AND name = $2`, userID, name)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *postgresRepo) DeleteAllForUser(ctx context.Context, userID int64) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM personal_access_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *postgresRepo) CountForUser(ctx context.Context, userID int64) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM personal_access_tokens WHERE user_id = $1`, userID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func scanToken(row pgx.Row) (*domain.AccessToken, error) {
	var t domain.AccessToken
	if err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.Name,
		&t.TokenHash,
		&t.LastUsedAt,
		&t.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}
	return &t, nil
}
