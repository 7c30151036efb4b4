package handlers

import (
	"strconv"

	"github.com/jhasumit/busline/internal/service"
)

type Handlers struct {
	auth         service.AuthService
	sessions     service.SessionService
	catalog      service.CatalogService
	reservations service.ReservationService
	payments     service.PaymentService
}

func New(
	auth service.AuthService,
	sessions service.SessionService,
	catalog service.CatalogService,
	reservations service.ReservationService,
	payments service.PaymentService,
) *Handlers {
	return &Handlers{
		auth:         auth,
		sessions:     sessions,
		catalog:      catalog,
		reservations: reservations,
		payments:     payments,
	}
}

func parseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
