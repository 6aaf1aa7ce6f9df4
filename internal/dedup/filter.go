// Package dedup suppresses candidates that were already recorded
// recently, so repeated cycles over stable inventory do not pile up
// identical deals.
package dedup

import (
	"context"
	"log/slog"
	"time"

	"travelaigent.app/agent/internal/model"
	"travelaigent.app/agent/internal/store"
)

// Filter checks candidates against recently persisted deals. Identity
// is (destination, departure date, total price) within the lookback
// window; a price change of any size makes a candidate new again.
type Filter struct {
	deals  store.DealStore
	window time.Duration
	now    func() time.Time
}

func New(deals store.DealStore, window time.Duration) *Filter {
	if window <= 0 {
		window = 24 * time.Hour
	}
	return &Filter{deals: deals, window: window, now: time.Now}
}

// IsDuplicate reports whether an equivalent deal was recorded within
// the window. Lookup errors are logged and treated as not-duplicate;
// an occasional repeat alert beats silently dropping a fresh deal.
func (f *Filter) IsDuplicate(ctx context.Context, candidate model.Candidate) bool {
	since := f.now().Add(-f.window)
	exists, err := f.deals.ExistsRecentMatch(ctx, candidate.Destination, candidate.DepartureDate, candidate.TotalPrice, since)
	if err != nil {
		slog.ErrorContext(ctx, "duplicate lookup failed, treating candidate as new",
			"error", err,
			"destination", candidate.Destination,
			"departure_date", candidate.DepartureDate)
		return false
	}
	if exists {
		slog.DebugContext(ctx, "duplicate candidate suppressed",
			"destination", candidate.Destination,
			"departure_date", candidate.DepartureDate,
			"total_price", candidate.TotalPrice)
	}
	return exists
}
