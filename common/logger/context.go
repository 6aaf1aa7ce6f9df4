package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs
// within a context. Business context (brief_id, deal_id, destination)
// flows through context enrichment so individual log statements don't
// have to repeat it.
type LogFields struct {
	BriefID     *int64  // Travel brief being processed
	DealID      *int64  // Persisted deal ID
	ActivityID  *int64  // Search activity (telemetry) ID
	Destination *string // IATA destination code for the current search
	MessageID   *string // Redis stream message ID for manual triggers
	Component   string  // Component name (e.g. "agent.inventory.amadeus")
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-nil/non-empty values
// taking precedence.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	merged := mergeFields(GetLogFields(ctx), fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context.
// Returns empty LogFields if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, next LogFields) LogFields {
	result := existing

	if next.BriefID != nil {
		result.BriefID = next.BriefID
	}
	if next.DealID != nil {
		result.DealID = next.DealID
	}
	if next.ActivityID != nil {
		result.ActivityID = next.ActivityID
	}
	if next.Destination != nil {
		result.Destination = next.Destination
	}
	if next.MessageID != nil {
		result.MessageID = next.MessageID
	}
	if next.Component != "" {
		result.Component = next.Component
	}

	return result
}

// Ptr is a helper to create a pointer from a value, for setting
// LogFields inline: logger.WithLogFields(ctx, logger.LogFields{BriefID: logger.Ptr(id)})
func Ptr[T any](v T) *T {
	return &v
}

// Truncate truncates a string to maxLen characters, appending "..." if
// truncated. Useful for logging provider payloads and error bodies.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
