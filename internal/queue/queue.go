// Package queue carries manual search triggers from the API server to
// the worker over a Redis stream. Triggers are advisory: a lost or
// failed trigger is covered by the next scheduled cycle, so there is no
// retry or dead-letter handling.
package queue

import (
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"travelaigent.app/agent/core/config"
)

// Trigger asks the worker to run a search cycle. BriefID zero means
// all active briefs.
type Trigger struct {
	BriefID     int64
	Source      string // "api", "scheduler"
	RequestedAt time.Time
}

func (t Trigger) values() map[string]any {
	return map[string]any{
		"brief_id":     strconv.FormatInt(t.BriefID, 10),
		"source":       t.Source,
		"requested_at": t.RequestedAt.UTC().Format(time.RFC3339),
	}
}

func triggerFromValues(values map[string]any) Trigger {
	var t Trigger
	if raw, ok := values["brief_id"].(string); ok {
		t.BriefID, _ = strconv.ParseInt(raw, 10, 64)
	}
	if raw, ok := values["source"].(string); ok {
		t.Source = raw
	}
	if raw, ok := values["requested_at"].(string); ok {
		t.RequestedAt, _ = time.Parse(time.RFC3339, raw)
	}
	return t
}

// NewClient connects to Redis from a URL-style config.
func NewClient(cfg config.RedisConfig) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opts), nil
}
