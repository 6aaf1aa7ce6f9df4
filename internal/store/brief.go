package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"travelaigent.app/agent/internal/model"
)

type briefStore struct {
	q Querier
}

const briefColumns = `id, user_id, name, destinations, travel_dates, travelers,
	budget_max, ai_instructions, notes, status, last_checked, created_at`

func (s *briefStore) ListActive(ctx context.Context) ([]model.Brief, error) {
	rows, err := s.q.Query(ctx, fmt.Sprintf(
		`SELECT %s FROM travel_briefs WHERE status = $1 ORDER BY created_at`, briefColumns),
		string(model.BriefStatusActive))
	if err != nil {
		return nil, fmt.Errorf("listing active briefs: %w", err)
	}
	defer rows.Close()

	var briefs []model.Brief
	for rows.Next() {
		brief, err := scanBrief(rows)
		if err != nil {
			return nil, err
		}
		briefs = append(briefs, brief)
	}
	return briefs, rows.Err()
}

func (s *briefStore) GetByID(ctx context.Context, id int64) (model.Brief, error) {
	row := s.q.QueryRow(ctx, fmt.Sprintf(
		`SELECT %s FROM travel_briefs WHERE id = $1`, briefColumns), id)

	brief, err := scanBrief(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Brief{}, ErrNotFound
		}
		return model.Brief{}, err
	}
	return brief, nil
}

func (s *briefStore) UpdateLastChecked(ctx context.Context, id int64, checkedAt time.Time) error {
	tag, err := s.q.Exec(ctx,
		`UPDATE travel_briefs SET last_checked = $2 WHERE id = $1`, id, checkedAt)
	if err != nil {
		return fmt.Errorf("updating brief last_checked: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *briefStore) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := s.q.QueryRow(ctx,
		`SELECT count(*) FROM travel_briefs WHERE status = $1`,
		string(model.BriefStatusActive)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting active briefs: %w", err)
	}
	return count, nil
}

func scanBrief(row pgx.Row) (model.Brief, error) {
	var (
		b      model.Brief
		status string
	)
	err := row.Scan(&b.ID, &b.UserID, &b.Name, &b.Destinations, &b.TravelDates,
		&b.Travelers, &b.BudgetMax, &b.AIInstructions, &b.Notes, &status,
		&b.LastChecked, &b.CreatedAt)
	if err != nil {
		return model.Brief{}, err
	}
	b.Status = model.BriefStatus(status)
	return b, nil
}
