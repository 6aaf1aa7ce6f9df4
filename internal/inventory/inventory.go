// Package inventory adapts the external travel-inventory provider
// (Amadeus-style REST API) into normalized offers. The rest of the
// pipeline only sees model.Offer; everything provider-specific stays
// behind the Searcher interface so a deterministic mock can stand in
// when credentials are absent.
package inventory

import (
	"context"
	"time"

	"travelaigent.app/agent/internal/model"
	"travelaigent.app/agent/internal/query"
)

// Searcher is the provider-facing search contract.
type Searcher interface {
	// SearchFlights executes every tuple in the plan, skipping tuples
	// that fail, and returns merged offers up to the per-brief cap.
	SearchFlights(ctx context.Context, plan query.Plan) ([]model.Offer, error)

	// SearchHotels resolves hotels for a city and returns best-rate
	// offers for the stay window.
	SearchHotels(ctx context.Context, cityCode string, checkIn, checkOut time.Time) ([]model.Offer, error)
}

// CallCounter is optionally implemented by searchers that track how
// many provider requests they have issued; the orchestrator uses the
// delta for search-activity telemetry.
type CallCounter interface {
	APICalls() int64
}
