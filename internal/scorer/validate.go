package scorer

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"travelaigent.app/agent/common/logger"
	"travelaigent.app/agent/internal/model"
)

const (
	maxListItems      = 5
	maxAssessmentLen  = 200
	maxSuitabilityLen = 200
	maxSummaryLen     = 300
)

// parseVerdict decodes the model's response. Strict JSON first; if the
// model wrapped the object in prose or code fences, salvage the
// outermost braces and retry.
func parseVerdict(raw string) (verdict, error) {
	var v verdict
	if err := json.Unmarshal([]byte(raw), &v); err == nil {
		return v, nil
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end <= start {
		return verdict{}, fmt.Errorf("no JSON object in response")
	}
	if err := json.Unmarshal([]byte(raw[start:end+1]), &v); err != nil {
		return verdict{}, fmt.Errorf("salvaged JSON still invalid: %w", err)
	}
	return v, nil
}

// validateVerdict normalizes a parsed verdict into a DealAnalysis the
// rest of the pipeline can trust: score in [1,10], a known
// recommendation, bounded list and text sizes.
func validateVerdict(v verdict) model.DealAnalysis {
	score := int(math.Round(v.Score))
	if score < 1 {
		score = 1
	}
	if score > 10 {
		score = 10
	}

	rec := model.Recommendation(strings.ToUpper(strings.TrimSpace(v.Recommendation)))
	switch rec {
	case model.RecommendationBookNow, model.RecommendationWatch, model.RecommendationIgnore:
	default:
		rec = model.RecommendationIgnore
	}

	return model.DealAnalysis{
		Score:             score,
		Recommendation:    rec,
		ValueAssessment:   logger.Truncate(v.ValueAssessment, maxAssessmentLen),
		FamilySuitability: logger.Truncate(v.FamilySuitability, maxSuitabilityLen),
		KeyPros:           capList(v.KeyPros),
		KeyCons:           capList(v.KeyCons),
		ActionSummary:     logger.Truncate(v.ActionSummary, maxSummaryLen),
	}
}

func capList(items []string) []string {
	var out []string
	for _, item := range items {
		if item = strings.TrimSpace(item); item == "" {
			continue
		}
		out = append(out, item)
		if len(out) == maxListItems {
			break
		}
	}
	return out
}
