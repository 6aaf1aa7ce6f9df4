package model

import "time"

type OfferKind string

const (
	OfferKindFlight OfferKind = "flight"
	OfferKindHotel  OfferKind = "hotel"
)

// Offer is one normalized inventory result. Offers are transient:
// produced per search cycle and consumed immediately by the package
// builder and scorer, never persisted on their own.
type Offer struct {
	Kind       OfferKind `json:"kind"`
	ProviderID string    `json:"provider_id"` // provider's offer/hotel identifier

	Origin      string `json:"origin,omitempty"`
	Destination string `json:"destination"`

	// Flight fields. Dates are the provider's YYYY-MM-DD strings,
	// times HH:MM; an empty ReturnDate means one-way.
	DepartureDate string `json:"departure_date,omitempty"`
	DepartureTime string `json:"departure_time,omitempty"`
	ReturnDate    string `json:"return_date,omitempty"`
	ReturnTime    string `json:"return_time,omitempty"`
	Airline       string `json:"airline,omitempty"`
	Stops         int    `json:"stops,omitempty"`
	Duration      string `json:"duration,omitempty"` // ISO 8601, e.g. "PT2H30M"
	BookingClass  string `json:"booking_class,omitempty"`
	Seats         int    `json:"seats_available,omitempty"`

	// Hotel fields.
	HotelName string `json:"hotel_name,omitempty"`
	Rating    string `json:"rating,omitempty"`
	RoomType  string `json:"room_type,omitempty"`
	CheckIn   string `json:"check_in,omitempty"`
	CheckOut  string `json:"check_out,omitempty"`

	TotalPrice float64   `json:"total_price"`
	Currency   string    `json:"currency"`
	FoundAt    time.Time `json:"found_at"`
}

// Package is a flight+hotel combination for one destination, built once
// per destination per cycle from the cheapest offers of each kind.
type Package struct {
	ID              string    `json:"id"` // synthetic: PKG-<dest>-<flight id prefix>
	Destination     string    `json:"destination"`
	DestinationName string    `json:"destination_name"`
	DepartureDate   string    `json:"departure_date"`
	ReturnDate      string    `json:"return_date,omitempty"`
	Nights          int       `json:"duration_nights"`
	Flight          Offer     `json:"flight"`
	Hotel           Offer     `json:"hotel"`
	TotalPrice      float64   `json:"total_price"` // flight + hotel
	Currency        string    `json:"currency"`
	Savings         float64   `json:"savings"` // heuristic estimate, see packager
	FoundAt         time.Time `json:"found_at"`
}
