package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhasumit/busline/internal/domain"
)

type CustomerRepository interface {
	Create(ctx context.Context, req *domain.SignupRequest, passwordHash string) (*domain.Customer, error)
	FindByEmail(ctx context.Context, email string) (*domain.Customer, error)
	FindByID(ctx context.Context, id int64) (*domain.Customer, error)
	MarkVerified(ctx context.Context, id int64) error
}

type customerRepository struct {
	pool *pgxpool.Pool
}

func NewCustomerRepository(pool *pgxpool.Pool) CustomerRepository {
	return &customerRepository{pool: pool}
}

const customerCols = `id, first_name, last_name, email, password_hash, email_verified, created_at, updated_at`

func (r *customerRepository) Create(ctx context.Context, req *domain.SignupRequest, passwordHash string) (*domain.Customer, error) {
	const q = `
		INSERT INTO customers (first_name, last_name, email, password_hash, email_verified)
		VALUES ($1, $2, $3, $4, 'unverified')
		RETURNING ` + customerCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var c domain.Customer
	err := r.pool.QueryRow(ctx, q, req.FirstName, req.LastName, req.Email, passwordHash).Scan(
		&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.PasswordHash, &c.EmailVerified, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.E(domain.CodeConflict, "email already taken")
		}
		return nil, err
	}
	return &c, nil
}

func (r *customerRepository) FindByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	const q = `SELECT ` + customerCols + ` FROM customers WHERE lower(email) = lower($1)`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var c domain.Customer
	err := r.pool.QueryRow(ctx, q, email).Scan(
		&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.PasswordHash, &c.EmailVerified, &c.CreatedAt, &c.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *customerRepository) FindByID(ctx context.Context, id int64) (*domain.Customer, error) {
	const q = `SELECT ` + customerCols + ` FROM customers WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var c domain.Customer
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.PasswordHash, &c.EmailVerified, &c.CreatedAt, &c.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *customerRepository) MarkVerified(ctx context.Context, id int64) error {
	const q = `UPDATE customers SET email_verified = 'verified', updated_at = now() WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
