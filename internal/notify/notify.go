// Package notify delivers high-score deal alerts. Telegram is the real
// channel; a log-only notifier stands in when no bot is configured so
// the orchestrator's flow is identical either way.
package notify

import (
	"context"
	"log/slog"

	"travelaigent.app/agent/common/logger"
	"travelaigent.app/agent/internal/model"
)

// Notifier sends one alert for one scored deal.
type Notifier interface {
	Send(ctx context.Context, brief model.Brief, deal model.Deal) error
}

// LogNotifier writes the alert to the log instead of a chat channel.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Send(ctx context.Context, brief model.Brief, deal model.Deal) error {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "agent.notify.log",
		BriefID:   logger.Ptr(brief.ID),
		DealID:    logger.Ptr(deal.ID),
	})
	slog.InfoContext(ctx, "deal alert (no notifier configured)",
		"destination", deal.Candidate.Destination,
		"score", deal.Analysis.Score,
		"recommendation", deal.Analysis.Recommendation,
		"total_price", deal.Candidate.TotalPrice,
		"currency", deal.Candidate.Currency)
	return nil
}
