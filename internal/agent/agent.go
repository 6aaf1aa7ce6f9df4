// Package agent runs the deal-discovery cycle: load active briefs,
// expand each into search tuples, pull inventory, bundle packages,
// filter duplicates, score candidates and persist and alert on the
// survivors. One cycle at a time; per-brief failures never abort the
// remaining briefs.
package agent

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"travelaigent.app/agent/common/logger"
	"travelaigent.app/agent/core/config"
	"travelaigent.app/agent/internal/dedup"
	"travelaigent.app/agent/internal/inventory"
	"travelaigent.app/agent/internal/model"
	"travelaigent.app/agent/internal/notify"
	"travelaigent.app/agent/internal/packager"
	"travelaigent.app/agent/internal/query"
	"travelaigent.app/agent/internal/scorer"
	"travelaigent.app/agent/internal/store"
)

// ErrCycleInFlight is returned when RunCycle is called while a previous
// cycle is still running.
var ErrCycleInFlight = errors.New("search cycle already in flight")

// Stats are the lifetime counters exposed on the status endpoint.
type Stats struct {
	CyclesCompleted   int64      `json:"cycles_completed"`
	BriefsProcessed   int64      `json:"briefs_processed"`
	BriefsFailed      int64      `json:"briefs_failed"`
	DealsFound        int64      `json:"deals_found"`
	NotificationsSent int64      `json:"notifications_sent"`
	LastCycleAt       *time.Time `json:"last_cycle_at,omitempty"`
	LastCycleDuration string     `json:"last_cycle_duration,omitempty"`
}

// Status is a point-in-time snapshot for the HTTP status endpoint.
type Status struct {
	Running bool  `json:"running"`
	Stats   Stats `json:"stats"`
}

// Orchestrator wires the pipeline stages together.
type Orchestrator struct {
	cfg        config.SearchConfig
	briefs     store.BriefStore
	deals      store.DealStore
	activities store.ActivityStore
	searcher   inventory.Searcher
	expander   *query.Expander
	builder    *packager.Builder
	filter     *dedup.Filter
	analyzer   scorer.Analyzer
	notifier   notify.Notifier
	now        func() time.Time

	running atomic.Bool

	mu                sync.Mutex
	cyclesCompleted   int64
	briefsProcessed   int64
	briefsFailed      int64
	dealsFound        int64
	notificationsSent int64
	lastCycleAt       *time.Time
	lastCycleDuration time.Duration
}

func New(
	cfg config.SearchConfig,
	family config.FamilyProfile,
	briefs store.BriefStore,
	deals store.DealStore,
	activities store.ActivityStore,
	searcher inventory.Searcher,
	analyzer scorer.Analyzer,
	notifier notify.Notifier,
) *Orchestrator {
	return &Orchestrator{
		cfg:        cfg,
		briefs:     briefs,
		deals:      deals,
		activities: activities,
		searcher:   searcher,
		expander:   query.NewExpander(family, time.Now),
		builder:    packager.NewBuilder(searcher),
		filter:     dedup.New(deals, cfg.DuplicateWindow),
		analyzer:   analyzer,
		notifier:   notifier,
		now:        time.Now,
	}
}

// RunCycle processes every active brief once. Only one cycle may run at
// a time; concurrent callers get ErrCycleInFlight.
func (o *Orchestrator) RunCycle(ctx context.Context) error {
	if !o.running.CompareAndSwap(false, true) {
		return ErrCycleInFlight
	}
	defer o.running.Store(false)

	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "agent.orchestrator"})
	start := o.now()

	briefs, err := o.briefs.ListActive(ctx)
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "search cycle started", "active_briefs", len(briefs))

	for i, brief := range briefs {
		if err := o.processBrief(ctx, brief); err != nil {
			o.mu.Lock()
			o.briefsFailed++
			o.mu.Unlock()
			slog.ErrorContext(ctx, "brief processing failed, continuing with next",
				"error", err, "brief_id", brief.ID)
		}
		o.mu.Lock()
		o.briefsProcessed++
		o.mu.Unlock()

		if i < len(briefs)-1 {
			if err := pause(ctx, o.cfg.BriefPause); err != nil {
				return err
			}
		}
	}

	elapsed := o.now().Sub(start)
	completedAt := o.now()
	o.mu.Lock()
	o.cyclesCompleted++
	o.lastCycleAt = &completedAt
	o.lastCycleDuration = elapsed
	o.mu.Unlock()

	slog.InfoContext(ctx, "search cycle completed",
		"briefs", len(briefs), "duration_ms", elapsed.Milliseconds())
	return nil
}

// Running reports whether a cycle is currently executing.
func (o *Orchestrator) Running() bool {
	return o.running.Load()
}

// Status returns a snapshot of the lifetime counters.
func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()

	stats := Stats{
		CyclesCompleted:   o.cyclesCompleted,
		BriefsProcessed:   o.briefsProcessed,
		BriefsFailed:      o.briefsFailed,
		DealsFound:        o.dealsFound,
		NotificationsSent: o.notificationsSent,
		LastCycleAt:       o.lastCycleAt,
	}
	if o.lastCycleDuration > 0 {
		stats.LastCycleDuration = o.lastCycleDuration.String()
	}
	return Status{Running: o.running.Load(), Stats: stats}
}

func (o *Orchestrator) processBrief(ctx context.Context, brief model.Brief) error {
	ctx = logger.WithLogFields(ctx, logger.LogFields{BriefID: logger.Ptr(brief.ID)})
	start := o.now()

	activity := &model.SearchActivity{
		BriefID:   brief.ID,
		Status:    model.ActivityStatusStarted,
		StartedAt: start,
	}
	if err := o.activities.Create(ctx, activity); err != nil {
		slog.WarnContext(ctx, "search activity not recorded", "error", err)
	}

	plan := o.expander.Expand(brief)
	if len(plan.Tuples) == 0 {
		slog.InfoContext(ctx, "brief yields no searchable destinations", "destinations", brief.Destinations)
		o.completeActivity(ctx, activity, model.ActivityStatusNoResults, plan, 0, 0, 0)
		o.touchBrief(ctx, brief.ID)
		return nil
	}

	apiBefore := o.apiCalls()

	flights, err := o.searcher.SearchFlights(ctx, plan)
	if err != nil {
		o.completeActivity(ctx, activity, model.ActivityStatusFailed, plan, 0, 0, int(o.apiCalls()-apiBefore))
		return err
	}

	packages := o.builder.Build(ctx, plan, flights)
	candidates := collectCandidates(flights, packages)

	dealsCreated, notified := o.scoreAndPersist(ctx, brief, plan, candidates)

	status := model.ActivityStatusSuccess
	if dealsCreated == 0 {
		status = model.ActivityStatusNoResults
	}
	o.completeActivity(ctx, activity, status, plan, len(flights), dealsCreated, int(o.apiCalls()-apiBefore))
	o.touchBrief(ctx, brief.ID)

	slog.InfoContext(ctx, "brief processed",
		"flights", len(flights),
		"packages", len(packages),
		"deals_created", dealsCreated,
		"notifications", notified,
		"duration_ms", o.now().Sub(start).Milliseconds())
	return nil
}

// scoreAndPersist runs the dedup-score-persist-notify tail of the
// pipeline. Individual candidate failures are logged and skipped.
func (o *Orchestrator) scoreAndPersist(ctx context.Context, brief model.Brief, plan query.Plan, candidates []model.Candidate) (created, notified int) {
	for i, candidate := range candidates {
		if o.filter.IsDuplicate(ctx, candidate) {
			continue
		}

		analysis := o.analyzer.Analyze(ctx, brief, plan.Travelers, candidate)

		deal := &model.Deal{
			BriefID:   brief.ID,
			Kind:      candidate.Kind,
			Candidate: candidate,
			Analysis:  analysis,
		}
		if err := o.deals.Create(ctx, deal); err != nil {
			slog.ErrorContext(ctx, "deal not persisted",
				"error", err, "destination", candidate.Destination)
			continue
		}
		created++
		o.mu.Lock()
		o.dealsFound++
		o.mu.Unlock()

		if !analysis.Failed && analysis.Score >= o.cfg.AlertThreshold {
			if err := o.notify(ctx, brief, *deal); err != nil {
				slog.ErrorContext(ctx, "deal alert failed",
					"error", err, "deal_id", deal.ID)
			} else {
				notified++
			}
		}

		if i < len(candidates)-1 {
			if err := pause(ctx, o.cfg.DealPause); err != nil {
				return created, notified
			}
		}
	}
	return created, notified
}

func (o *Orchestrator) notify(ctx context.Context, brief model.Brief, deal model.Deal) error {
	if err := o.notifier.Send(ctx, brief, deal); err != nil {
		return err
	}
	if err := o.deals.MarkNotified(ctx, deal.ID); err != nil {
		slog.WarnContext(ctx, "notification sent but not marked", "error", err, "deal_id", deal.ID)
	}
	o.mu.Lock()
	o.notificationsSent++
	o.mu.Unlock()
	return nil
}

func (o *Orchestrator) completeActivity(ctx context.Context, activity *model.SearchActivity, status model.ActivityStatus, plan query.Plan, results, deals, apiCalls int) {
	completedAt := o.now()
	activity.Status = status
	activity.DestinationsSearched = len(plan.Destinations)
	activity.APICalls = apiCalls
	activity.ResultsFound = results
	activity.DealsCreated = deals
	activity.DurationMS = completedAt.Sub(activity.StartedAt).Milliseconds()
	activity.CompletedAt = &completedAt

	if err := o.activities.Complete(ctx, activity); err != nil {
		slog.WarnContext(ctx, "search activity not completed", "error", err)
	}
}

func (o *Orchestrator) touchBrief(ctx context.Context, id int64) {
	if err := o.briefs.UpdateLastChecked(ctx, id, o.now()); err != nil {
		slog.WarnContext(ctx, "brief last-checked not updated", "error", err, "brief_id", id)
	}
}

func (o *Orchestrator) apiCalls() int64 {
	if counter, ok := o.searcher.(inventory.CallCounter); ok {
		return counter.APICalls()
	}
	return 0
}

// collectCandidates turns packages into candidates and falls back to
// the cheapest flight for destinations that got no package (typically
// no hotel availability).
func collectCandidates(flights []model.Offer, packages []model.Package) []model.Candidate {
	var candidates []model.Candidate
	packaged := make(map[string]bool, len(packages))
	for _, p := range packages {
		packaged[p.Destination] = true
		candidates = append(candidates, model.CandidateFromPackage(p))
	}

	cheapest := map[string]model.Offer{}
	var order []string
	for _, flight := range flights {
		if packaged[flight.Destination] {
			continue
		}
		best, ok := cheapest[flight.Destination]
		if !ok {
			order = append(order, flight.Destination)
		}
		if !ok || flight.TotalPrice < best.TotalPrice {
			cheapest[flight.Destination] = flight
		}
	}
	for _, dest := range order {
		candidates = append(candidates, model.CandidateFromFlight(cheapest[dest]))
	}
	return candidates
}

func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
