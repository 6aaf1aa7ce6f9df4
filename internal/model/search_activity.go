package model

import "time"

type ActivityStatus string

const (
	ActivityStatusStarted   ActivityStatus = "started"
	ActivityStatusSuccess   ActivityStatus = "success"
	ActivityStatusFailed    ActivityStatus = "failed"
	ActivityStatusNoResults ActivityStatus = "no_results"
)

// SearchActivity is one telemetry record per brief-processing attempt.
// Written at the start of processing, completed at the end; never read
// back by the pipeline itself.
type SearchActivity struct {
	ID                   int64          `json:"id"`
	BriefID              int64          `json:"brief_id"`
	Status               ActivityStatus `json:"status"`
	DestinationsSearched int            `json:"destinations_searched"`
	APICalls             int            `json:"api_calls"`
	ResultsFound         int            `json:"results_found"`
	DealsCreated         int            `json:"deals_created"`
	DurationMS           int64          `json:"duration_ms"`
	StartedAt            time.Time      `json:"started_at"`
	CompletedAt          *time.Time     `json:"completed_at,omitempty"`
}
