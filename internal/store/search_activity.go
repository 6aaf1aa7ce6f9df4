package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"travelaigent.app/agent/common/id"
	"travelaigent.app/agent/internal/model"
)

type activityStore struct {
	q Querier
}

func (s *activityStore) Create(ctx context.Context, activity *model.SearchActivity) error {
	if activity.ID == 0 {
		activity.ID = id.New()
	}
	if activity.Status == "" {
		activity.Status = model.ActivityStatusStarted
	}

	_, err := s.q.Exec(ctx, `
		INSERT INTO search_activities (
			id, brief_id, status, destinations_searched, api_calls,
			results_found, deals_created, duration_ms, started_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		activity.ID, activity.BriefID, string(activity.Status),
		activity.DestinationsSearched, activity.APICalls,
		activity.ResultsFound, activity.DealsCreated, activity.DurationMS,
		activity.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting search activity: %w", err)
	}
	return nil
}

func (s *activityStore) Complete(ctx context.Context, activity *model.SearchActivity) error {
	tag, err := s.q.Exec(ctx, `
		UPDATE search_activities
		SET status = $2,
		    destinations_searched = $3,
		    api_calls = $4,
		    results_found = $5,
		    deals_created = $6,
		    duration_ms = $7,
		    completed_at = $8
		WHERE id = $1`,
		activity.ID, string(activity.Status),
		activity.DestinationsSearched, activity.APICalls,
		activity.ResultsFound, activity.DealsCreated, activity.DurationMS,
		activity.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("completing search activity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *activityStore) Latest(ctx context.Context) (model.SearchActivity, error) {
	row := s.q.QueryRow(ctx, `
		SELECT id, brief_id, status, destinations_searched, api_calls,
		       results_found, deals_created, duration_ms, started_at,
		       completed_at
		FROM search_activities
		ORDER BY started_at DESC
		LIMIT 1`)

	var (
		a      model.SearchActivity
		status string
	)
	err := row.Scan(&a.ID, &a.BriefID, &status, &a.DestinationsSearched,
		&a.APICalls, &a.ResultsFound, &a.DealsCreated, &a.DurationMS,
		&a.StartedAt, &a.CompletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.SearchActivity{}, ErrNotFound
	}
	if err != nil {
		return model.SearchActivity{}, fmt.Errorf("loading latest search activity: %w", err)
	}
	a.Status = model.ActivityStatus(status)
	return a, nil
}
