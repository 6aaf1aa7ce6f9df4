// Package scorer evaluates deal candidates against the family's
// standing preferences. The LLM-backed analyzer never fails a cycle:
// anything that goes wrong degrades to a deterministic low-score
// verdict flagged for manual review.
package scorer

import (
	"context"
	"log/slog"
	"time"

	"travelaigent.app/agent/common/llm"
	"travelaigent.app/agent/common/logger"
	"travelaigent.app/agent/core/config"
	"travelaigent.app/agent/internal/model"
	"travelaigent.app/agent/internal/ratelimit"
)

// Analyzer scores one candidate for one brief. Implementations must
// always return a usable analysis; failures are encoded in the verdict
// (Failed=true), never surfaced as errors that would abort a cycle.
type Analyzer interface {
	Analyze(ctx context.Context, brief model.Brief, travelers model.Travelers, candidate model.Candidate) model.DealAnalysis
}

// verdict is the shape requested from the model. Score is a float so a
// model answering "7.5" still parses; validation rounds and clamps.
type verdict struct {
	Score             float64  `json:"score" jsonschema_description:"Deal quality from 1 (poor) to 10 (exceptional)"`
	Recommendation    string   `json:"recommendation" jsonschema:"enum=BOOK_NOW,enum=WATCH,enum=IGNORE"`
	ValueAssessment   string   `json:"value_assessment" jsonschema_description:"One or two sentences on price versus typical"`
	FamilySuitability string   `json:"family_suitability" jsonschema_description:"How well this works for the specific family"`
	KeyPros           []string `json:"key_pros" jsonschema_description:"Up to five strongest points"`
	KeyCons           []string `json:"key_cons" jsonschema_description:"Up to five weakest points"`
	ActionSummary     string   `json:"action_summary" jsonschema_description:"One actionable sentence"`
}

// LLMScorer asks a chat model for a structured verdict, one candidate
// per call, paced by its own rate limiter.
type LLMScorer struct {
	client    llm.Client
	limiter   *ratelimit.Limiter
	family    config.FamilyProfile
	maxTokens int
	schema    any
}

func NewLLMScorer(client llm.Client, cfg config.LLMConfig, family config.FamilyProfile) *LLMScorer {
	return &LLMScorer{
		client:    client,
		limiter:   ratelimit.New(cfg.RequestsPerMinute),
		family:    family,
		maxTokens: cfg.MaxTokens,
		schema:    llm.GenerateSchema[verdict](),
	}
}

func (s *LLMScorer) Analyze(ctx context.Context, brief model.Brief, travelers model.Travelers, candidate model.Candidate) model.DealAnalysis {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component:   "agent.scorer",
		BriefID:     logger.Ptr(brief.ID),
		Destination: logger.Ptr(candidate.Destination),
	})

	if err := s.limiter.Wait(ctx); err != nil {
		slog.WarnContext(ctx, "scoring aborted before request", "error", err)
		return fallbackAnalysis()
	}

	start := time.Now()
	raw, err := s.client.Complete(ctx, llm.Request{
		SystemPrompt: systemPrompt,
		UserPrompt:   buildUserPrompt(s.family, brief, travelers, candidate),
		SchemaName:   "deal_verdict",
		Schema:       s.schema,
		MaxTokens:    s.maxTokens,
		Temperature:  llm.Temp(0.3),
	})
	if err != nil {
		slog.ErrorContext(ctx, "scoring request failed, using fallback verdict",
			"error", err, "model", s.client.Model())
		return fallbackAnalysis()
	}

	v, err := parseVerdict(raw)
	if err != nil {
		slog.ErrorContext(ctx, "scoring response unparseable, using fallback verdict",
			"error", err, "response", logger.Truncate(raw, 200))
		return fallbackAnalysis()
	}

	analysis := validateVerdict(v)
	slog.InfoContext(ctx, "candidate scored",
		"score", analysis.Score,
		"recommendation", analysis.Recommendation,
		"duration_ms", time.Since(start).Milliseconds())
	return analysis
}

// fallbackAnalysis is the deterministic verdict used whenever scoring
// itself broke. Failed distinguishes it from a genuine 1/IGNORE.
func fallbackAnalysis() model.DealAnalysis {
	return model.DealAnalysis{
		Score:             1,
		Recommendation:    model.RecommendationIgnore,
		ValueAssessment:   "Automated analysis unavailable",
		FamilySuitability: "Unknown",
		ActionSummary:     "Manual review required",
		Failed:            true,
	}
}
