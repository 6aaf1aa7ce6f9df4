// Package query turns a free-text travel brief into a bounded set of
// concrete search tuples. All parsing is deterministic: the same brief
// and clock always produce the same plan.
package query

import (
	"time"

	"travelaigent.app/agent/core/config"
	"travelaigent.app/agent/internal/model"
)

// maxDateOptions caps the date axis of the cross-product so a brief
// with a wide range still produces a tractable request count.
const maxDateOptions = 2

// Tuple is one concrete flight search: origin x destination x date.
type Tuple struct {
	Origin      string
	Destination string
	Departure   time.Time
	Return      *time.Time
}

// Plan is the expanded search space for one brief.
type Plan struct {
	Destinations []string
	Dates        []time.Time
	Travelers    model.Travelers
	Tuples       []Tuple
}

type Expander struct {
	family config.FamilyProfile
	now    func() time.Time
}

// NewExpander creates an Expander. The clock is injected so the
// "30 days from now" date fallback stays assertable in tests.
func NewExpander(family config.FamilyProfile, now func() time.Time) *Expander {
	if now == nil {
		now = time.Now
	}
	return &Expander{family: family, now: now}
}

// Expand produces the bounded cross-product of destination, home
// origin and date option for a brief. Unrecognized destinations are
// dropped; a brief with no usable destination yields an empty plan.
func (e *Expander) Expand(brief model.Brief) Plan {
	plan := Plan{
		Destinations: ParseDestinations(brief.Destinations),
		Dates:        e.ParseTravelDates(brief.TravelDates),
		Travelers:    e.ParseTravelers(brief.Travelers),
	}

	dates := plan.Dates
	if len(dates) > maxDateOptions {
		dates = dates[:maxDateOptions]
	}

	var ret *time.Time
	if len(plan.Dates) > 1 {
		ret = &plan.Dates[1]
	}

	for _, dest := range plan.Destinations {
		for _, origin := range e.family.HomeAirports {
			for _, departure := range dates {
				plan.Tuples = append(plan.Tuples, Tuple{
					Origin:      origin,
					Destination: dest,
					Departure:   departure,
					Return:      ret,
				})
			}
		}
	}

	return plan
}
