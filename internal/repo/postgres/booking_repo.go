package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhasumit/busline/internal/domain"
)

type BookingRepository interface {
	// CreateReserved runs the capacity check and the booking insert as one
	// atomic unit, serialized per route. It returns a capacity_exceeded
	// domain error, with nothing written, when the route is full.
	CreateReserved(ctx context.Context, customerID, routeID int64, seats int) (*domain.Booking, error)
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]domain.BookingSummary, error)
	CommittedSeats(ctx context.Context, routeID int64) (int, error)
}

type bookingRepository struct {
	pool *pgxpool.Pool
}

func NewBookingRepository(pool *pgxpool.Pool) BookingRepository {
	return &bookingRepository{pool: pool}
}

const bookingCols = `id, customer_id, route_id, seats_booked, status, created_at, updated_at`

func (r *bookingRepository) CreateReserved(ctx context.Context, customerID, routeID int64, seats int) (*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, domain.Wrap(domain.CodeStorageFailure, "failed to begin reservation", err)
	}
	defer tx.Rollback(ctx)

	// Serialize the check-then-insert per route. The advisory lock is
	// transaction scoped, so an abandoned caller releases it on rollback.
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, routeID); err != nil {
		return nil, domain.Wrap(domain.CodeStorageFailure, "failed to lock route", err)
	}

	var capacity int
	err = tx.QueryRow(ctx, `
		SELECT bu.capacity
		FROM routes rt
		JOIN buses bu ON bu.id = rt.bus_id
		WHERE rt.id = $1`, routeID).Scan(&capacity)
	if err == pgx.ErrNoRows {
		return nil, domain.E(domain.CodeNotFound, "route not found")
	}
	if err != nil {
		return nil, domain.Wrap(domain.CodeStorageFailure, "failed to load route capacity", err)
	}

	var committed int
	err = tx.QueryRow(ctx, `
		SELECT COALESCE(SUM(seats_booked), 0)
		FROM bookings
		WHERE route_id = $1 AND status IN ('pending', 'confirmed')`, routeID).Scan(&committed)
	if err != nil {
		return nil, domain.Wrap(domain.CodeStorageFailure, "failed to count committed seats", err)
	}

	if committed+seats > capacity {
		return nil, domain.E(domain.CodeCapacityExceeded, "not enough seats available")
	}

	var b domain.Booking
	err = tx.QueryRow(ctx, `
		INSERT INTO bookings (customer_id, route_id, seats_booked, status)
		VALUES ($1, $2, $3, 'pending')
		RETURNING `+bookingCols, customerID, routeID, seats).Scan(
		&b.ID, &b.CustomerID, &b.RouteID, &b.SeatsBooked, &b.Status, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, domain.Wrap(domain.CodeStorageFailure, "failed to create booking", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.Wrap(domain.CodeStorageFailure, "failed to commit reservation", err)
	}
	return &b, nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	const q = `SELECT ` + bookingCols + ` FROM bookings WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var b domain.Booking
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&b.ID, &b.CustomerID, &b.RouteID, &b.SeatsBooked, &b.Status, &b.CreatedAt, &b.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bookingRepository) ListByCustomer(ctx context.Context, customerID int64) ([]domain.BookingSummary, error) {
	const q = `
		SELECT bk.id, bu.name, bu.bus_no, rt.id, oc.name, dc.name,
		       bk.seats_booked, bk.status, bk.created_at
		FROM bookings bk
		JOIN routes rt ON rt.id = bk.route_id
		JOIN buses bu ON bu.id = rt.bus_id
		JOIN cities oc ON oc.id = rt.origin_city_id
		JOIN cities dc ON dc.id = rt.destination_city_id
		WHERE bk.customer_id = $1
		ORDER BY bk.created_at DESC, bk.id DESC`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []domain.BookingSummary
	for rows.Next() {
		var s domain.BookingSummary
		if err := rows.Scan(
			&s.ID, &s.BusName, &s.BusNo, &s.RouteID, &s.OriginCity, &s.DestinationCity,
			&s.SeatsBooked, &s.Status, &s.BookedAt,
		); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

func (r *bookingRepository) CommittedSeats(ctx context.Context, routeID int64) (int, error) {
	const q = `
		SELECT COALESCE(SUM(seats_booked), 0)
		FROM bookings
		WHERE route_id = $1 AND status IN ('pending', 'confirmed')`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var committed int
	err := r.pool.QueryRow(ctx, q, routeID).Scan(&committed)
	return committed, err
}
