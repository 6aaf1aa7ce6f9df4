// Package packager combines flight and hotel offers into bundled
// packages, one per destination per cycle.
package packager

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"travelaigent.app/agent/common/logger"
	"travelaigent.app/agent/internal/inventory"
	"travelaigent.app/agent/internal/model"
	"travelaigent.app/agent/internal/query"
)

// DefaultSavingsRate is the bundling-discount heuristic applied to a
// package's combined price. Amadeus prices components independently,
// so the estimate stands in for a negotiated bundle rate.
const DefaultSavingsRate = 0.05

const (
	defaultLeadDays = 30
	defaultNights   = 5
)

// Builder pairs the cheapest flight per destination with the cheapest
// hotel for the stay window.
type Builder struct {
	searcher inventory.Searcher
	now      func() time.Time
}

func NewBuilder(searcher inventory.Searcher) *Builder {
	return &Builder{searcher: searcher, now: time.Now}
}

// Build produces at most one package per destination found in the
// flight offers. Destinations with no hotel availability simply yield
// no package; the flights remain usable as flight-only candidates.
func (b *Builder) Build(ctx context.Context, plan query.Plan, flights []model.Offer) []model.Package {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "agent.packager"})

	cheapest := cheapestByDestination(flights)
	checkIn, checkOut := b.stayWindow(plan)

	var packages []model.Package
	for _, dest := range destinationOrder(flights) {
		flight := cheapest[dest]

		hotels, err := b.searcher.SearchHotels(ctx, dest, checkIn, checkOut)
		if err != nil {
			slog.ErrorContext(ctx, "hotel search failed, skipping package",
				"error", err, "destination", dest)
			continue
		}
		if len(hotels) == 0 {
			slog.InfoContext(ctx, "no hotels available, skipping package", "destination", dest)
			continue
		}

		hotel := cheapestOffer(hotels)
		total := flight.TotalPrice + hotel.TotalPrice

		packages = append(packages, model.Package{
			ID:              packageID(dest, flight.ProviderID),
			Destination:     dest,
			DestinationName: query.DestinationName(dest),
			DepartureDate:   flight.DepartureDate,
			ReturnDate:      flight.ReturnDate,
			Nights:          int(checkOut.Sub(checkIn).Hours() / 24),
			Flight:          flight,
			Hotel:           hotel,
			TotalPrice:      total,
			Currency:        flight.Currency,
			Savings:         round2(DefaultSavingsRate * total),
			FoundAt:         b.now(),
		})
	}

	slog.InfoContext(ctx, "package building completed",
		"flights", len(flights), "packages", len(packages))
	return packages
}

// stayWindow derives the hotel check-in/check-out from the plan dates.
// A single date gets a five-night stay; no dates at all gets a
// five-night stay thirty days out.
func (b *Builder) stayWindow(plan query.Plan) (time.Time, time.Time) {
	if len(plan.Dates) > 1 {
		return plan.Dates[0], plan.Dates[1]
	}
	if len(plan.Dates) == 1 {
		return plan.Dates[0], plan.Dates[0].AddDate(0, 0, defaultNights)
	}
	checkIn := b.now().AddDate(0, 0, defaultLeadDays)
	return checkIn, checkIn.AddDate(0, 0, defaultNights)
}

func packageID(destination, flightID string) string {
	if len(flightID) > 8 {
		flightID = flightID[:8]
	}
	return fmt.Sprintf("PKG-%s-%s", destination, flightID)
}

// cheapestByDestination keeps the minimum-priced flight per
// destination.
func cheapestByDestination(flights []model.Offer) map[string]model.Offer {
	out := make(map[string]model.Offer, len(flights))
	for _, flight := range flights {
		best, ok := out[flight.Destination]
		if !ok || flight.TotalPrice < best.TotalPrice {
			out[flight.Destination] = flight
		}
	}
	return out
}

// destinationOrder preserves first-seen order so output is stable
// across cycles.
func destinationOrder(flights []model.Offer) []string {
	seen := make(map[string]bool, len(flights))
	var order []string
	for _, flight := range flights {
		if !seen[flight.Destination] {
			seen[flight.Destination] = true
			order = append(order, flight.Destination)
		}
	}
	return order
}

func cheapestOffer(offers []model.Offer) model.Offer {
	best := offers[0]
	for _, offer := range offers[1:] {
		if offer.TotalPrice < best.TotalPrice {
			best = offer
		}
	}
	return best
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
