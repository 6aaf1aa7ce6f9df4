package model

import "time"

type DealKind string

const (
	DealKindPackage    DealKind = "package"
	DealKindFlightOnly DealKind = "flight_only"
)

type Recommendation string

const (
	RecommendationBookNow Recommendation = "BOOK_NOW"
	RecommendationWatch   Recommendation = "WATCH"
	RecommendationIgnore  Recommendation = "IGNORE"
)

// Candidate is a deal before scoring: either a full package or a
// flight-only offer flattened into a common shape for duplicate
// filtering and scoring.
type Candidate struct {
	Kind          DealKind  `json:"kind"`
	ProviderID    string    `json:"provider_id"`
	Origin        string    `json:"origin,omitempty"`
	Destination   string    `json:"destination"`
	DepartureDate string    `json:"departure_date"`
	DepartureTime string    `json:"departure_time,omitempty"`
	ReturnDate    string    `json:"return_date,omitempty"`
	ReturnTime    string    `json:"return_time,omitempty"`
	TotalPrice    float64   `json:"total_price"`
	Currency      string    `json:"currency"`
	Airline       string    `json:"airline,omitempty"`
	Stops         int       `json:"stops,omitempty"`
	Duration      string    `json:"duration,omitempty"`
	HotelName     string    `json:"hotel_name,omitempty"`
	Nights        int       `json:"nights,omitempty"`
	Savings       float64   `json:"savings,omitempty"`
	FoundAt       time.Time `json:"found_at"`
}

// DealAnalysis is the scorer's verdict. Score is always in [1,10] and
// Recommendation one of the three enum values after validation. Failed
// marks the deterministic fallback produced when scoring itself broke,
// so a 1/IGNORE from a genuinely bad deal can be told apart from one
// the analyzer never saw properly.
type DealAnalysis struct {
	Score             int            `json:"score"`
	Recommendation    Recommendation `json:"recommendation"`
	ValueAssessment   string         `json:"value_assessment"`
	FamilySuitability string         `json:"family_suitability"`
	KeyPros           []string       `json:"key_pros"`
	KeyCons           []string       `json:"key_cons"`
	ActionSummary     string         `json:"action_summary"`
	Failed            bool           `json:"-"`
}

// Deal is the persisted output artifact: a scored candidate linked back
// to its brief. Immutable after creation except NotificationSent.
type Deal struct {
	ID               int64        `json:"id"`
	BriefID          int64        `json:"brief_id"`
	Kind             DealKind     `json:"kind"`
	Candidate        Candidate    `json:"candidate"`
	Analysis         DealAnalysis `json:"analysis"`
	NotificationSent bool         `json:"notification_sent"`
	CreatedAt        time.Time    `json:"created_at"`
}

// CandidateFromFlight flattens a flight offer into a flight-only
// candidate, the orchestrator's fallback when package building yields
// nothing for a destination.
func CandidateFromFlight(o Offer) Candidate {
	return Candidate{
		Kind:          DealKindFlightOnly,
		ProviderID:    o.ProviderID,
		Origin:        o.Origin,
		Destination:   o.Destination,
		DepartureDate: o.DepartureDate,
		DepartureTime: o.DepartureTime,
		ReturnDate:    o.ReturnDate,
		ReturnTime:    o.ReturnTime,
		TotalPrice:    o.TotalPrice,
		Currency:      o.Currency,
		Airline:       o.Airline,
		Stops:         o.Stops,
		Duration:      o.Duration,
		FoundAt:       o.FoundAt,
	}
}

// CandidateFromPackage flattens a package for filtering and scoring.
func CandidateFromPackage(p Package) Candidate {
	return Candidate{
		Kind:          DealKindPackage,
		ProviderID:    p.ID,
		Origin:        p.Flight.Origin,
		Destination:   p.Destination,
		DepartureDate: p.DepartureDate,
		DepartureTime: p.Flight.DepartureTime,
		ReturnDate:    p.ReturnDate,
		ReturnTime:    p.Flight.ReturnTime,
		TotalPrice:    p.TotalPrice,
		Currency:      p.Currency,
		Airline:       p.Flight.Airline,
		Stops:         p.Flight.Stops,
		Duration:      p.Flight.Duration,
		HotelName:     p.Hotel.HotelName,
		Nights:        p.Nights,
		Savings:       p.Savings,
		FoundAt:       p.FoundAt,
	}
}
