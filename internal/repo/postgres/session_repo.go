package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhasumit/busline/internal/domain"
)

type SessionRepository interface {
	Create(ctx context.Context, customerID int64, token string, validTill time.Time) (*domain.Session, error)
	FindByToken(ctx context.Context, token string) (*domain.Session, error)
	// MarkLoggedOut flips an active session to logged_out. It reports
	// whether a row was actually flipped, so concurrent resolvers of the
	// same expired session race harmlessly.
	MarkLoggedOut(ctx context.Context, id int64) (bool, error)
}

type sessionRepository struct {
	pool *pgxpool.Pool
}

func NewSessionRepository(pool *pgxpool.Pool) SessionRepository {
	return &sessionRepository{pool: pool}
}

const sessionCols = `id, customer_id, token, status, valid_till, created_at, updated_at`

func (r *sessionRepository) Create(ctx context.Context, customerID int64, token string, validTill time.Time) (*domain.Session, error) {
	const q = `
		INSERT INTO sessions (customer_id, token, status, valid_till)
		VALUES ($1, $2, 'active', $3)
		RETURNING ` + sessionCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var s domain.Session
	err := r.pool.QueryRow(ctx, q, customerID, token, validTill).Scan(
		&s.ID, &s.CustomerID, &s.Token, &s.Status, &s.ValidTill, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepository) FindByToken(ctx context.Context, token string) (*domain.Session, error) {
	const q = `SELECT ` + sessionCols + ` FROM sessions WHERE token = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var s domain.Session
	err := r.pool.QueryRow(ctx, q, token).Scan(
		&s.ID, &s.CustomerID, &s.Token, &s.Status, &s.ValidTill, &s.CreatedAt, &s.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepository) MarkLoggedOut(ctx context.Context, id int64) (bool, error) {
	const q = `UPDATE sessions SET status = 'logged_out', updated_at = now() WHERE id = $1 AND status = 'active'`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}
