package store

import (
	"context"
	"time"

	"travelaigent.app/agent/internal/model"
)

// BriefStore reads standing travel briefs. The pipeline never creates
// or deletes briefs; it only reads active ones and stamps LastChecked.
type BriefStore interface {
	ListActive(ctx context.Context) ([]model.Brief, error)
	GetByID(ctx context.Context, id int64) (model.Brief, error)
	UpdateLastChecked(ctx context.Context, id int64, checkedAt time.Time) error
	CountActive(ctx context.Context) (int64, error)
}

// DealStore persists scored deals.
type DealStore interface {
	Create(ctx context.Context, deal *model.Deal) error
	MarkNotified(ctx context.Context, id int64) error
	ListRecent(ctx context.Context, limit int32) ([]model.Deal, error)
	// ExistsRecentMatch reports whether a deal with the same
	// destination, departure date and total price was recorded at or
	// after the cutoff. Backs the duplicate filter's lookback window.
	ExistsRecentMatch(ctx context.Context, destination, departureDate string, totalPrice float64, since time.Time) (bool, error)
}

// ActivityStore records per-brief search telemetry.
type ActivityStore interface {
	Create(ctx context.Context, activity *model.SearchActivity) error
	Complete(ctx context.Context, activity *model.SearchActivity) error
	// Latest returns the most recently started activity, or ErrNotFound
	// when no search has ever run. Backs the status endpoint.
	Latest(ctx context.Context) (model.SearchActivity, error)
}
