package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhasumit/busline/internal/domain"
)

type PaymentRepository interface {
	// Record persists a payment attempt and, when the outcome is success,
	// promotes a pending booking to confirmed in the same transaction.
	// It returns the booking status after the call. Confirmed bookings
	// stay confirmed; cancelled bookings are never promoted.
	Record(ctx context.Context, bookingID, amount int64, method string, outcome domain.PaymentStatus) (*domain.Payment, domain.BookingStatus, error)
	ListByBooking(ctx context.Context, bookingID int64) ([]domain.Payment, error)
}

type paymentRepository struct {
	pool *pgxpool.Pool
}

func NewPaymentRepository(pool *pgxpool.Pool) PaymentRepository {
	return &paymentRepository{pool: pool}
}

const paymentCols = `id, booking_id, amount, payment_method, payment_status, created_at`

func (r *paymentRepository) Record(ctx context.Context, bookingID, amount int64, method string, outcome domain.PaymentStatus) (*domain.Payment, domain.BookingStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, "", domain.Wrap(domain.CodeStorageFailure, "failed to begin payment", err)
	}
	defer tx.Rollback(ctx)

	var status domain.BookingStatus
	err = tx.QueryRow(ctx, `SELECT status FROM bookings WHERE id = $1 FOR UPDATE`, bookingID).Scan(&status)
	if err == pgx.ErrNoRows {
		return nil, "", domain.E(domain.CodeNotFound, "booking not found")
	}
	if err != nil {
		return nil, "", domain.Wrap(domain.CodeStorageFailure, "failed to load booking", err)
	}

	var p domain.Payment
	err = tx.QueryRow(ctx, `
		INSERT INTO payments (booking_id, amount, payment_method, payment_status)
		VALUES ($1, $2, $3, $4)
		RETURNING `+paymentCols, bookingID, amount, method, outcome).Scan(
		&p.ID, &p.BookingID, &p.Amount, &p.Method, &p.Status, &p.CreatedAt,
	)
	if err != nil {
		return nil, "", domain.Wrap(domain.CodeStorageFailure, "failed to record payment", err)
	}

	if outcome == domain.PaymentSuccess && status == domain.BookingPending {
		_, err = tx.Exec(ctx, `UPDATE bookings SET status = 'confirmed', updated_at = now() WHERE id = $1`, bookingID)
		if err != nil {
			return nil, "", domain.Wrap(domain.CodeStorageFailure, "failed to confirm booking", err)
		}
		status = domain.BookingConfirmed
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, "", domain.Wrap(domain.CodeStorageFailure, "failed to commit payment", err)
	}
	return &p, status, nil
}

func (r *paymentRepository) ListByBooking(ctx context.Context, bookingID int64) ([]domain.Payment, error) {
	const q = `SELECT ` + paymentCols + ` FROM payments WHERE booking_id = $1 ORDER BY id`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		var p domain.Payment
		if err := rows.Scan(&p.ID, &p.BookingID, &p.Amount, &p.Method, &p.Status, &p.CreatedAt); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
