package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"travelaigent.app/agent/common/id"
	"travelaigent.app/agent/internal/model"
)

type dealStore struct {
	q Querier
}

const dealColumns = `id, brief_id, deal_type, provider_id, origin, destination,
	departure_date, return_date, total_price, currency, airline, stops,
	duration, hotel_name, nights, savings, score, recommendation,
	value_assessment, family_suitability, key_pros, key_cons,
	action_summary, analysis_failed, notification_sent, found_at, created_at`

func (s *dealStore) Create(ctx context.Context, deal *model.Deal) error {
	if deal.ID == 0 {
		deal.ID = id.New()
	}

	c := deal.Candidate
	a := deal.Analysis

	row := s.q.QueryRow(ctx, `
		INSERT INTO deals (
			id, brief_id, deal_type, provider_id, origin, destination,
			departure_date, return_date, total_price, currency, airline,
			stops, duration, hotel_name, nights, savings, score,
			recommendation, value_assessment, family_suitability,
			key_pros, key_cons, action_summary, analysis_failed,
			notification_sent, found_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26
		)
		RETURNING created_at`,
		deal.ID, deal.BriefID, string(deal.Kind), c.ProviderID, c.Origin,
		c.Destination, c.DepartureDate, c.ReturnDate, c.TotalPrice,
		c.Currency, c.Airline, c.Stops, c.Duration, c.HotelName, c.Nights,
		c.Savings, a.Score, string(a.Recommendation), a.ValueAssessment,
		a.FamilySuitability, a.KeyPros, a.KeyCons, a.ActionSummary,
		a.Failed, deal.NotificationSent, c.FoundAt,
	)
	if err := row.Scan(&deal.CreatedAt); err != nil {
		return fmt.Errorf("inserting deal: %w", err)
	}
	return nil
}

func (s *dealStore) MarkNotified(ctx context.Context, dealID int64) error {
	tag, err := s.q.Exec(ctx,
		`UPDATE deals SET notification_sent = TRUE WHERE id = $1`, dealID)
	if err != nil {
		return fmt.Errorf("marking deal notified: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *dealStore) ListRecent(ctx context.Context, limit int32) ([]model.Deal, error) {
	rows, err := s.q.Query(ctx, fmt.Sprintf(
		`SELECT %s FROM deals ORDER BY created_at DESC LIMIT $1`, dealColumns), limit)
	if err != nil {
		return nil, fmt.Errorf("listing recent deals: %w", err)
	}
	defer rows.Close()

	var deals []model.Deal
	for rows.Next() {
		deal, err := scanDeal(rows)
		if err != nil {
			return nil, err
		}
		deals = append(deals, deal)
	}
	return deals, rows.Err()
}

func (s *dealStore) ExistsRecentMatch(ctx context.Context, destination, departureDate string, totalPrice float64, since time.Time) (bool, error) {
	var exists bool
	err := s.q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM deals
			WHERE destination = $1
			  AND departure_date = $2
			  AND total_price = $3
			  AND created_at >= $4
		)`,
		destination, departureDate, totalPrice, since).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking recent deal match: %w", err)
	}
	return exists, nil
}

func scanDeal(row pgx.Row) (model.Deal, error) {
	var (
		d              model.Deal
		kind           string
		recommendation string
	)
	err := row.Scan(&d.ID, &d.BriefID, &kind, &d.Candidate.ProviderID,
		&d.Candidate.Origin, &d.Candidate.Destination,
		&d.Candidate.DepartureDate, &d.Candidate.ReturnDate,
		&d.Candidate.TotalPrice, &d.Candidate.Currency,
		&d.Candidate.Airline, &d.Candidate.Stops, &d.Candidate.Duration,
		&d.Candidate.HotelName, &d.Candidate.Nights, &d.Candidate.Savings,
		&d.Analysis.Score, &recommendation, &d.Analysis.ValueAssessment,
		&d.Analysis.FamilySuitability, &d.Analysis.KeyPros,
		&d.Analysis.KeyCons, &d.Analysis.ActionSummary, &d.Analysis.Failed,
		&d.NotificationSent, &d.Candidate.FoundAt, &d.CreatedAt)
	if err != nil {
		return model.Deal{}, err
	}
	d.Kind = model.DealKind(kind)
	d.Candidate.Kind = d.Kind
	d.Analysis.Recommendation = model.Recommendation(recommendation)
	return d, nil
}
