package handlers

import (
	"net/http"

	"github.com/jhasumit/busline/internal/domain"
	"github.com/jhasumit/busline/internal/http/response"
)

// Cities lists cities, optionally filtered by a case-insensitive
// substring, each with the first bus leaving it.
func (h *Handlers) Cities(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")

	listings, err := h.catalog.FindCities(r.Context(), query)
	if err != nil {
		response.Domain(w, err)
		return
	}

	type cityItem struct {
		CityName string  `json:"city_name"`
		Bus      *string `json:"bus"`
	}
	items := make([]cityItem, 0, len(listings))
	for _, l := range listings {
		items = append(items, cityItem{CityName: l.City.Name, Bus: l.BusName})
	}

	response.WriteJSON(w, http.StatusOK, map[string]any{"cities": items})
}

// Buses lists all buses with their routes, or a single bus when bus_id
// is given.
func (h *Handlers) Buses(w http.ResponseWriter, r *http.Request) {
	var buses []domain.Bus

	if raw := r.URL.Query().Get("bus_id"); raw != "" {
		id, ok := parseID(raw)
		if !ok {
			response.BadRequest(w, "bus_id must be a positive integer")
			return
		}
		bus, err := h.catalog.GetBus(r.Context(), id)
		if err != nil {
			response.Domain(w, err)
			return
		}
		buses = []domain.Bus{*bus}
	} else {
		all, err := h.catalog.ListBuses(r.Context())
		if err != nil {
			response.Domain(w, err)
			return
		}
		buses = all
	}

	response.WriteJSON(w, http.StatusOK, map[string]any{"buses": buses})
}

// Routes lists routes, optionally restricted to one bus.
func (h *Handlers) Routes(w http.ResponseWriter, r *http.Request) {
	var busID *int64
	if raw := r.URL.Query().Get("bus_id"); raw != "" {
		id, ok := parseID(raw)
		if !ok {
			response.BadRequest(w, "bus_id must be a positive integer")
			return
		}
		busID = &id
	}

	routes, err := h.catalog.ListRoutes(r.Context(), busID)
	if err != nil {
		response.Domain(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]any{"routes": routes})
}
