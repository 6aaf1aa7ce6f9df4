package model

import "time"

type BriefStatus string

const (
	BriefStatusActive    BriefStatus = "active"
	BriefStatusPaused    BriefStatus = "paused"
	BriefStatusCompleted BriefStatus = "completed"
	BriefStatusCancelled BriefStatus = "cancelled"
)

// Brief is a user's standing travel-search request. The pipeline only
// reads active briefs and writes back LastChecked; creation, edits and
// deletion belong to the web application.
type Brief struct {
	ID             int64       `json:"id"`
	UserID         int64       `json:"user_id"`
	Name           string      `json:"name"`
	Destinations   string      `json:"destinations"`    // free text or comma-separated IATA codes
	TravelDates    string      `json:"travel_dates"`    // free text, parsed by the query expander
	Travelers      string      `json:"travelers"`       // free text, e.g. "2 adults, 2 children"
	BudgetMax      float64     `json:"budget_max"`      // ceiling in the search currency
	AIInstructions string      `json:"ai_instructions"` // free-text preferences passed to the scorer
	Notes          string      `json:"notes"`
	Status         BriefStatus `json:"status"`
	LastChecked    *time.Time  `json:"last_checked,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
}

// Travelers is the parsed traveler composition of a brief.
type Travelers struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
}

func (t Travelers) Total() int {
	return t.Adults + t.Children
}
