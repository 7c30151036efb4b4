package service

import (
	"context"

	"github.com/jhasumit/busline/internal/domain"
	"github.com/jhasumit/busline/internal/repo/postgres"
)

type CatalogService interface {
	FindCities(ctx context.Context, query string) ([]domain.CityListing, error)
	ListBuses(ctx context.Context) ([]domain.Bus, error)
	GetBus(ctx context.Context, id int64) (*domain.Bus, error)
	GetRoute(ctx context.Context, id int64) (*domain.Route, error)
	ListRoutes(ctx context.Context, busID *int64) ([]domain.Route, error)
}

type catalogService struct {
	catalog postgres.CatalogRepository
}

func NewCatalogService(catalog postgres.CatalogRepository) CatalogService {
	return &catalogService{catalog: catalog}
}

func (s *catalogService) FindCities(ctx context.Context, query string) ([]domain.CityListing, error) {
	listings, err := s.catalog.FindCities(ctx, query)
	if err != nil {
		return nil, domain.Wrap(domain.CodeStorageFailure, "failed to list cities", err)
	}
	return listings, nil
}

func (s *catalogService) ListBuses(ctx context.Context) ([]domain.Bus, error) {
	buses, err := s.catalog.ListBuses(ctx)
	if err != nil {
		return nil, domain.Wrap(domain.CodeStorageFailure, "failed to list buses", err)
	}
	return buses, nil
}

func (s *catalogService) GetBus(ctx context.Context, id int64) (*domain.Bus, error) {
	bus, err := s.catalog.GetBus(ctx, id)
	if err != nil {
		return nil, domain.Wrap(domain.CodeStorageFailure, "failed to load bus", err)
	}
	if bus == nil {
		return nil, domain.E(domain.CodeNotFound, "bus with given ID does not exist")
	}
	return bus, nil
}

func (s *catalogService) GetRoute(ctx context.Context, id int64) (*domain.Route, error) {
	route, err := s.catalog.GetRoute(ctx, id)
	if err != nil {
		return nil, domain.Wrap(domain.CodeStorageFailure, "failed to load route", err)
	}
	if route == nil {
		return nil, domain.E(domain.CodeNotFound, "route not found")
	}
	return route, nil
}

func (s *catalogService) ListRoutes(ctx context.Context, busID *int64) ([]domain.Route, error) {
	routes, err := s.catalog.ListRoutes(ctx, busID)
	if err != nil {
		return nil, domain.Wrap(domain.CodeStorageFailure, "failed to list routes", err)
	}
	return routes, nil
}
