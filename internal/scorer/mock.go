package scorer

import (
	"context"
	"fmt"

	"travelaigent.app/agent/internal/model"
)

// MockScorer produces deterministic rule-based verdicts so the pipeline
// runs end to end without an LLM key. The rules are crude on purpose;
// they only need to be stable and plausible.
type MockScorer struct{}

func NewMockScorer() *MockScorer {
	return &MockScorer{}
}

func (m *MockScorer) Analyze(ctx context.Context, brief model.Brief, travelers model.Travelers, candidate model.Candidate) model.DealAnalysis {
	score := 5

	perPerson := candidate.TotalPrice
	if total := travelers.Total(); total > 0 {
		perPerson = candidate.TotalPrice / float64(total)
	}
	switch {
	case perPerson < 120:
		score += 3
	case perPerson < 200:
		score += 2
	case perPerson < 300:
		score++
	}

	if candidate.Stops == 0 && candidate.Kind == model.DealKindFlightOnly {
		score++
	}
	if candidate.Savings > 0 {
		score++
	}
	if brief.BudgetMax > 0 && candidate.TotalPrice > brief.BudgetMax {
		score -= 3
	}

	if score < 1 {
		score = 1
	}
	if score > 10 {
		score = 10
	}

	rec := model.RecommendationIgnore
	switch {
	case score >= 8:
		rec = model.RecommendationBookNow
	case score >= 6:
		rec = model.RecommendationWatch
	}

	return model.DealAnalysis{
		Score:             score,
		Recommendation:    rec,
		ValueAssessment:   fmt.Sprintf("Roughly %.0f %s per person", perPerson, candidate.Currency),
		FamilySuitability: "Rule-based estimate, no model available",
		ActionSummary:     "Verify price before booking",
	}
}
