package customer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"customer-api/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const customerColumns = `id, uuid::text, name, email, phone, address, company, status, metadata, created_at, updated_at, deleted_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &postgresRepo{pool: pool, logger: logger.Named("customer_repo")}
}

func (r *postgresRepo) Create(ctx context.Context, c domain.Customer) (*domain.Customer, error) {
	meta, err := encodeMetadata(c.Metadata)
	if err != nil {
		return nil, err
	}
	const q = `
INSERT INTO customers (uuid, name, email, phone, address, company, status, metadata)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + customerColumns
	return r.scanCustomer(r.pool.QueryRow(ctx, q,
		c.UUID,
		c.Name,
		c.Email,
		c.Phone,
		c.Address,
		c.Company,
		string(c.Status),
		meta,
	))
}

func (r *postgresRepo) Update(ctx context.Context, c domain.Customer) (*domain.Customer, error) {
	meta, err := encodeMetadata(c.Metadata)
	if err != nil {
		return nil, err
	}
	const q = `
UPDATE customers
SET name = $2, email = $3, phone = $4, address = $5, company = $6, status = $7, metadata = $8, updated_at = now()
WHERE id = $1 AND deleted_at IS NULL
RETURNING ` + customerColumns
	return r.scanCustomer(r.pool.QueryRow(ctx, q,
		c.ID,
		c.Name,
		c.Email,
		c.Phone,
		c.Address,
		c.Company,
		string(c.Status),
		meta,
	))
}

func (r *postgresRepo) SoftDelete(ctx context.Context, id int64) error {
	const q = `UPDATE customers SET deleted_at = now(), updated_at = now() WHERE id = $1 AND deleted_at IS NULL`
	return r.execOne(ctx, q, id)
}

func (r *postgresRepo) ForceDelete(ctx context.Context, id int64) error {
	return r.execOne(ctx, `DELETE FROM customers WHERE id = $1`, id)
}

func (r *postgresRepo) Restore(ctx context.Context, id int64) (*domain.Customer, error) {
	const q = `
UPDATE customers SET deleted_at = NULL, updated_at = now()
WHERE id = $1
RETURNING ` + customerColumns
	return r.scanCustomer(r.pool.QueryRow(ctx, q, id))
}

func (r *postgresRepo) FindByID(ctx context.Context, id int64, withTrashed bool) (*domain.Customer, error) {
	q := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`
	if !withTrashed {
		q += ` AND deleted_at IS NULL`
	}
	return r.scanCustomer(r.pool.QueryRow(ctx, q, id))
}

func (r *postgresRepo) FindByUUID(ctx context.Context, uuid string, withTrashed bool) (*domain.Customer, error) {
	// uuid is compared as text so malformed identifiers read as "not found"
	// instead of a cast error.
	q := `SELECT ` + customerColumns + ` FROM customers WHERE uuid::text = $1`
	if !withTrashed {
		q += ` AND deleted_at IS NULL`
	}
	return r.scanCustomer(r.pool.QueryRow(ctx, q, uuid))
}

func (r *postgresRepo) FindByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	const q = `SELECT ` + customerColumns + ` FROM customers WHERE email = $1 AND deleted_at IS NULL LIMIT 1`
	return r.scanCustomer(r.pool.QueryRow(ctx, q, email))
}

func (r *postgresRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM customers WHERE email = $1)`, email).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *postgresRepo) Count(ctx context.Context, filter domain.CustomerFilter) (int, error) {
	lq := buildListQuery(filter)
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM customers `+lq.where, lq.args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count customers: %w", err)
	}
	return total, nil
}

func (r *postgresRepo) Paginate(ctx context.Context, filter domain.CustomerFilter) (domain.Page[domain.Customer], error) {
	filter.Pagination = filter.Pagination.Normalized()
	page := domain.Page[domain.Customer]{
		Items:   []domain.Customer{},
		Page:    filter.Page,
		PerPage: filter.PerPage,
	}

	total, err := r.Count(ctx, filter)
	if err != nil {
		return page, err
	}
	page.Total = total
	if total == 0 {
		return page, nil
	}

	lq := buildListQuery(filter)
	args := append(lq.args, filter.PerPage, (filter.Page-1)*filter.PerPage)
	q := fmt.Sprintf(`SELECT %s FROM customers %s %s LIMIT $%d OFFSET $%d`,
		customerColumns, lq.where, lq.orderBy, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return page, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		c, err := r.scanCustomer(rows)
		if err != nil {
			return page, err
		}
		page.Items = append(page.Items, *c)
	}
	if err := rows.Err(); err != nil {
		return page, fmt.Errorf("iterate customers: %w", err)
	}
	return page, nil
}

func (r *postgresRepo) execOne(ctx context.Context, q string, args ...any) error {
	cmd, err := r.pool.Exec(ctx, q, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) scanCustomer(row pgx.Row) (*domain.Customer, error) {
	var (
		c      domain.Customer
		status string
		meta   []byte
	)
	err := row.Scan(
		&c.ID,
		&c.UUID,
		&c.Name,
		&c.Email,
		&c.Phone,
		&c.Address,
		&c.Company,
		&status,
		&meta,
		&c.CreatedAt,
		&c.UpdatedAt,
		&c.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Error("scan customer", zap.Error(err))
		return nil, err
	}
	c.Status = domain.CustomerStatus(status)
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &c.Metadata); err != nil {
			r.logger.Error("decode customer metadata", zap.Int64("id", c.ID), zap.Error(err))
			return nil, err
		}
	}
	return &c, nil
}

func encodeMetadata(m map[string]any) ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}
	return b, nil
}
