package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhasumit/busline/internal/domain"
)

// CatalogRepository is read-only: cities, buses, and routes are seeded out
// of band and never mutated by this service.
type CatalogRepository interface {
	FindCities(ctx context.Context, query string) ([]domain.CityListing, error)
	ListBuses(ctx context.Context) ([]domain.Bus, error)
	GetBus(ctx context.Context, id int64) (*domain.Bus, error)
	GetRoute(ctx context.Context, id int64) (*domain.Route, error)
	ListRoutes(ctx context.Context, busID *int64) ([]domain.Route, error)
}

type catalogRepository struct {
	pool *pgxpool.Pool
}

func NewCatalogRepository(pool *pgxpool.Pool) CatalogRepository {
	return &catalogRepository{pool: pool}
}

func (r *catalogRepository) FindCities(ctx context.Context, query string) ([]domain.CityListing, error) {
	const q = `
		SELECT c.id, c.name, c.created_at, b.name
		FROM cities c
		LEFT JOIN LATERAL (
			SELECT bu.name
			FROM routes rt
			JOIN buses bu ON bu.id = rt.bus_id
			WHERE rt.origin_city_id = c.id
			ORDER BY rt.id
			LIMIT 1
		) b ON true
		WHERE $1 = '' OR c.name ILIKE '%' || $1 || '%'
		ORDER BY c.id`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []domain.CityListing
	for rows.Next() {
		var l domain.CityListing
		if err := rows.Scan(&l.City.ID, &l.City.Name, &l.City.CreatedAt, &l.BusName); err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

const busCols = `id, name, bus_no, capacity, created_at`

func (r *catalogRepository) ListBuses(ctx context.Context) ([]domain.Bus, error) {
	const q = `SELECT ` + busCols + ` FROM buses ORDER BY id`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var buses []domain.Bus
	for rows.Next() {
		var b domain.Bus
		if err := rows.Scan(&b.ID, &b.Name, &b.BusNo, &b.Capacity, &b.CreatedAt); err != nil {
			return nil, err
		}
		buses = append(buses, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range buses {
		routes, err := r.ListRoutes(ctx, &buses[i].ID)
		if err != nil {
			return nil, err
		}
		buses[i].Routes = routes
	}
	return buses, nil
}

func (r *catalogRepository) GetBus(ctx context.Context, id int64) (*domain.Bus, error) {
	const q = `SELECT ` + busCols + ` FROM buses WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var b domain.Bus
	err := r.pool.QueryRow(ctx, q, id).Scan(&b.ID, &b.Name, &b.BusNo, &b.Capacity, &b.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	routes, err := r.ListRoutes(ctx, &b.ID)
	if err != nil {
		return nil, err
	}
	b.Routes = routes
	return &b, nil
}

func (r *catalogRepository) GetRoute(ctx context.Context, id int64) (*domain.Route, error) {
	const q = `
		SELECT rt.id, rt.bus_id, rt.origin_city_id, rt.destination_city_id,
		       rt.departure_time, rt.arrival_time,
		       bu.id, bu.name, bu.bus_no, bu.capacity, bu.created_at,
		       oc.id, oc.name, oc.created_at,
		       dc.id, dc.name, dc.created_at
		FROM routes rt
		JOIN buses bu ON bu.id = rt.bus_id
		JOIN cities oc ON oc.id = rt.origin_city_id
		JOIN cities dc ON dc.id = rt.destination_city_id
		WHERE rt.id = $1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var (
		rt          domain.Route
		bus         domain.Bus
		origin      domain.City
		destination domain.City
	)
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&rt.ID, &rt.BusID, &rt.OriginCityID, &rt.DestinationCityID,
		&rt.DepartureTime, &rt.ArrivalTime,
		&bus.ID, &bus.Name, &bus.BusNo, &bus.Capacity, &bus.CreatedAt,
		&origin.ID, &origin.Name, &origin.CreatedAt,
		&destination.ID, &destination.Name, &destination.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rt.Bus = &bus
	rt.OriginCity = &origin
	rt.DestinationCity = &destination
	rt.OriginName = origin.Name
	rt.DestinationName = destination.Name
	return &rt, nil
}

func (r *catalogRepository) ListRoutes(ctx context.Context, busID *int64) ([]domain.Route, error) {
	const q = `
		SELECT rt.id, rt.bus_id, rt.origin_city_id, rt.destination_city_id,
		       rt.departure_time, rt.arrival_time, oc.name, dc.name
		FROM routes rt
		JOIN cities oc ON oc.id = rt.origin_city_id
		JOIN cities dc ON dc.id = rt.destination_city_id
		WHERE $1::bigint IS NULL OR rt.bus_id = $1
		ORDER BY rt.departure_time, rt.id`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, busID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var routes []domain.Route
	for rows.Next() {
		var rt domain.Route
		if err := rows.Scan(
			&rt.ID, &rt.BusID, &rt.OriginCityID, &rt.DestinationCityID,
			&rt.DepartureTime, &rt.ArrivalTime, &rt.OriginName, &rt.DestinationName,
		); err != nil {
			return nil, err
		}
		routes = append(routes, rt)
	}
	return routes, rows.Err()
}
