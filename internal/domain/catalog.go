package domain

import "time"

type City struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// CityListing annotates a city with the first route leaving it, if any.
// "First" means the route with the lowest id.
type CityListing struct {
	City    City    `json:"city"`
	BusName *string `json:"bus,omitempty"`
}

type Bus struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	BusNo     string    `json:"bus_number"`
	Capacity  int       `json:"capacity"`
	Routes    []Route   `json:"routes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Route is a directed edge between two cities served by one bus.
// Schedules are immutable once created.
type Route struct {
	ID                int64     `json:"id"`
	BusID             int64     `json:"bus_id"`
	OriginCityID      int64     `json:"origin_city_id"`
	DestinationCityID int64     `json:"destination_city_id"`
	DepartureTime     time.Time `json:"departure_time"`
	ArrivalTime       time.Time `json:"arrival_time"`

	Bus             *Bus   `json:"bus,omitempty"`
	OriginCity      *City  `json:"origin_city,omitempty"`
	DestinationCity *City  `json:"destination_city,omitempty"`
	OriginName      string `json:"origin_city_name,omitempty"`
	DestinationName string `json:"destination_city_name,omitempty"`
}
