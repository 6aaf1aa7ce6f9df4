package agent_test

import (
	"context"
	"errors"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"travelaigent.app/agent/core/config"
	"travelaigent.app/agent/internal/agent"
	"travelaigent.app/agent/internal/model"
	"travelaigent.app/agent/internal/query"
)

type fakeBriefs struct {
	mu          sync.Mutex
	briefs      []model.Brief
	lastChecked map[int64]time.Time
	listErr     error
}

func (f *fakeBriefs) ListActive(ctx context.Context) ([]model.Brief, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.briefs, nil
}

func (f *fakeBriefs) GetByID(ctx context.Context, id int64) (model.Brief, error) {
	for _, b := range f.briefs {
		if b.ID == id {
			return b, nil
		}
	}
	return model.Brief{}, errors.New("not found")
}

func (f *fakeBriefs) UpdateLastChecked(ctx context.Context, id int64, checkedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lastChecked == nil {
		f.lastChecked = map[int64]time.Time{}
	}
	f.lastChecked[id] = checkedAt
	return nil
}

func (f *fakeBriefs) CountActive(ctx context.Context) (int64, error) {
	return int64(len(f.briefs)), nil
}

type fakeDeals struct {
	mu       sync.Mutex
	deals    []model.Deal
	notified []int64
	nextID   int64
}

func (f *fakeDeals) Create(ctx context.Context, deal *model.Deal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	deal.ID = f.nextID
	deal.CreatedAt = time.Now()
	f.deals = append(f.deals, *deal)
	return nil
}

func (f *fakeDeals) MarkNotified(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notified = append(f.notified, id)
	return nil
}

func (f *fakeDeals) ListRecent(ctx context.Context, limit int32) ([]model.Deal, error) {
	return f.deals, nil
}

func (f *fakeDeals) ExistsRecentMatch(ctx context.Context, destination, departureDate string, totalPrice float64, since time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, deal := range f.deals {
		if deal.CreatedAt.Before(since) {
			continue
		}
		if deal.Candidate.Destination == destination &&
			deal.Candidate.DepartureDate == departureDate &&
			deal.Candidate.TotalPrice == totalPrice {
			return true, nil
		}
	}
	return false, nil
}

type fakeActivities struct {
	mu        sync.Mutex
	completed []model.SearchActivity
}

func (f *fakeActivities) Create(ctx context.Context, activity *model.SearchActivity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	activity.ID = int64(len(f.completed) + 1)
	return nil
}

func (f *fakeActivities) Complete(ctx context.Context, activity *model.SearchActivity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completed = append(f.completed, *activity)
	return nil
}

func (f *fakeActivities) Latest(ctx context.Context) (model.SearchActivity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.completed) == 0 {
		return model.SearchActivity{}, errors.New("not found")
	}
	return f.completed[len(f.completed)-1], nil
}

type fakeSearcher struct {
	flightsFn func(ctx context.Context, plan query.Plan) ([]model.Offer, error)
	hotelsFn  func(ctx context.Context, cityCode string, checkIn, checkOut time.Time) ([]model.Offer, error)
}

func (f *fakeSearcher) SearchFlights(ctx context.Context, plan query.Plan) ([]model.Offer, error) {
	return f.flightsFn(ctx, plan)
}

func (f *fakeSearcher) SearchHotels(ctx context.Context, cityCode string, checkIn, checkOut time.Time) ([]model.Offer, error) {
	if f.hotelsFn == nil {
		return nil, nil
	}
	return f.hotelsFn(ctx, cityCode, checkIn, checkOut)
}

type fakeAnalyzer struct {
	fn func(candidate model.Candidate) model.DealAnalysis
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, brief model.Brief, travelers model.Travelers, candidate model.Candidate) model.DealAnalysis {
	return f.fn(candidate)
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []model.Deal
	err  error
}

func (f *fakeNotifier) Send(ctx context.Context, brief model.Brief, deal model.Deal) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, deal)
	return nil
}

func flightOffer(dest string, price float64) model.Offer {
	return model.Offer{
		Kind:          model.OfferKindFlight,
		ProviderID:    "F-" + dest,
		Origin:        "LHR",
		Destination:   dest,
		DepartureDate: "2025-08-15",
		ReturnDate:    "2025-08-22",
		Airline:       "BA",
		TotalPrice:    price,
		Currency:      "GBP",
	}
}

var _ = Describe("Orchestrator", func() {
	var (
		briefs     *fakeBriefs
		deals      *fakeDeals
		activities *fakeActivities
		searcher   *fakeSearcher
		analyzer   *fakeAnalyzer
		notifier   *fakeNotifier
		orch       *agent.Orchestrator
		ctx        context.Context
	)

	family := config.FamilyProfile{
		HomeAirports:         []string{"LHR"},
		DefaultAdults:        2,
		DefaultChildren:      2,
		FiveTravelerAdults:   2,
		FiveTravelerChildren: 3,
	}

	searchCfg := config.SearchConfig{
		MaxDealsPerBrief: 20,
		AlertThreshold:   8,
		DuplicateWindow:  24 * time.Hour,
	}

	newOrchestrator := func() *agent.Orchestrator {
		return agent.New(searchCfg, family, briefs, deals, activities, searcher, analyzer, notifier)
	}

	BeforeEach(func() {
		ctx = context.Background()
		briefs = &fakeBriefs{briefs: []model.Brief{{
			ID:           1,
			Name:         "Summer in Europe",
			Destinations: "Paris,Rome",
			TravelDates:  "2025-08-15 to 2025-08-22",
			Travelers:    "2 adults, 2 children",
			Status:       model.BriefStatusActive,
		}}}
		deals = &fakeDeals{}
		activities = &fakeActivities{}
		searcher = &fakeSearcher{
			flightsFn: func(ctx context.Context, plan query.Plan) ([]model.Offer, error) {
				return []model.Offer{flightOffer("CDG", 450), flightOffer("FCO", 520)}, nil
			},
		}
		analyzer = &fakeAnalyzer{fn: func(candidate model.Candidate) model.DealAnalysis {
			return model.DealAnalysis{Score: 6, Recommendation: model.RecommendationWatch}
		}}
		notifier = &fakeNotifier{}
		orch = newOrchestrator()
	})

	It("falls back to flight-only deals when no hotels are available", func() {
		Expect(orch.RunCycle(ctx)).To(Succeed())

		Expect(deals.deals).To(HaveLen(2))
		for _, deal := range deals.deals {
			Expect(deal.Kind).To(Equal(model.DealKindFlightOnly))
			Expect(deal.BriefID).To(Equal(int64(1)))
		}
		Expect([]string{deals.deals[0].Candidate.Destination, deals.deals[1].Candidate.Destination}).
			To(ConsistOf("CDG", "FCO"))
	})

	It("builds package deals when hotels exist", func() {
		searcher.hotelsFn = func(ctx context.Context, cityCode string, checkIn, checkOut time.Time) ([]model.Offer, error) {
			return []model.Offer{{
				Kind:        model.OfferKindHotel,
				Destination: cityCode,
				HotelName:   "Hotel " + cityCode,
				TotalPrice:  800,
				Currency:    "GBP",
			}}, nil
		}

		Expect(orch.RunCycle(ctx)).To(Succeed())

		Expect(deals.deals).To(HaveLen(2))
		for _, deal := range deals.deals {
			Expect(deal.Kind).To(Equal(model.DealKindPackage))
			Expect(deal.Candidate.TotalPrice).To(BeNumerically(">", 800))
		}
	})

	It("notifies exactly once for a deal at or above the threshold", func() {
		analyzer.fn = func(candidate model.Candidate) model.DealAnalysis {
			score := 5
			if candidate.Destination == "CDG" {
				score = 9
			}
			return model.DealAnalysis{Score: score, Recommendation: model.RecommendationBookNow}
		}

		Expect(orch.RunCycle(ctx)).To(Succeed())

		Expect(notifier.sent).To(HaveLen(1))
		Expect(notifier.sent[0].Candidate.Destination).To(Equal("CDG"))
		Expect(deals.notified).To(HaveLen(1))
		Expect(orch.Status().Stats.NotificationsSent).To(Equal(int64(1)))
	})

	It("never notifies on a fallback verdict even at a high threshold of one", func() {
		analyzer.fn = func(candidate model.Candidate) model.DealAnalysis {
			return model.DealAnalysis{Score: 1, Recommendation: model.RecommendationIgnore, Failed: true}
		}
		cfg := searchCfg
		cfg.AlertThreshold = 1
		orch = agent.New(cfg, family, briefs, deals, activities, searcher, analyzer, notifier)

		Expect(orch.RunCycle(ctx)).To(Succeed())
		Expect(deals.deals).To(HaveLen(2))
		Expect(notifier.sent).To(BeEmpty())
	})

	It("suppresses duplicates on the next cycle over identical inventory", func() {
		Expect(orch.RunCycle(ctx)).To(Succeed())
		Expect(deals.deals).To(HaveLen(2))

		Expect(orch.RunCycle(ctx)).To(Succeed())
		Expect(deals.deals).To(HaveLen(2))
	})

	It("treats a price change as a fresh deal", func() {
		Expect(orch.RunCycle(ctx)).To(Succeed())

		searcher.flightsFn = func(ctx context.Context, plan query.Plan) ([]model.Offer, error) {
			return []model.Offer{flightOffer("CDG", 399), flightOffer("FCO", 520)}, nil
		}
		Expect(orch.RunCycle(ctx)).To(Succeed())

		Expect(deals.deals).To(HaveLen(3))
	})

	It("isolates a failing brief from the rest of the cycle", func() {
		briefs.briefs = []model.Brief{
			{ID: 1, Destinations: "Rome", TravelDates: "2025-08-15", Status: model.BriefStatusActive},
			{ID: 2, Destinations: "Paris", TravelDates: "2025-08-15", Status: model.BriefStatusActive},
		}
		searcher.flightsFn = func(ctx context.Context, plan query.Plan) ([]model.Offer, error) {
			if plan.Destinations[0] == "FCO" {
				return nil, errors.New("provider unavailable")
			}
			return []model.Offer{flightOffer("CDG", 450)}, nil
		}

		Expect(orch.RunCycle(ctx)).To(Succeed())

		Expect(deals.deals).To(HaveLen(1))
		Expect(deals.deals[0].Candidate.Destination).To(Equal("CDG"))
		Expect(orch.Status().Stats.BriefsFailed).To(Equal(int64(1)))
		Expect(orch.Status().Stats.BriefsProcessed).To(Equal(int64(2)))

		var failed, success int
		for _, activity := range activities.completed {
			switch activity.Status {
			case model.ActivityStatusFailed:
				failed++
			case model.ActivityStatusSuccess:
				success++
			}
		}
		Expect(failed).To(Equal(1))
		Expect(success).To(Equal(1))
	})

	It("records a no-results activity for an unresolvable brief", func() {
		briefs.briefs = []model.Brief{{ID: 1, Destinations: "Narnia", Status: model.BriefStatusActive}}

		Expect(orch.RunCycle(ctx)).To(Succeed())

		Expect(deals.deals).To(BeEmpty())
		Expect(activities.completed).To(HaveLen(1))
		Expect(activities.completed[0].Status).To(Equal(model.ActivityStatusNoResults))
		Expect(briefs.lastChecked).To(HaveKey(int64(1)))
	})

	It("stamps the brief and completes telemetry on success", func() {
		Expect(orch.RunCycle(ctx)).To(Succeed())

		Expect(briefs.lastChecked).To(HaveKey(int64(1)))
		Expect(activities.completed).To(HaveLen(1))
		activity := activities.completed[0]
		Expect(activity.Status).To(Equal(model.ActivityStatusSuccess))
		Expect(activity.DestinationsSearched).To(Equal(2))
		Expect(activity.ResultsFound).To(Equal(2))
		Expect(activity.DealsCreated).To(Equal(2))
		Expect(activity.CompletedAt).NotTo(BeNil())
	})

	It("rejects a second cycle while one is in flight", func() {
		release := make(chan struct{})
		searcher.flightsFn = func(ctx context.Context, plan query.Plan) ([]model.Offer, error) {
			<-release
			return nil, nil
		}

		done := make(chan error, 1)
		go func() { done <- orch.RunCycle(ctx) }()

		Eventually(orch.Running).Should(BeTrue())
		Expect(orch.RunCycle(ctx)).To(MatchError(agent.ErrCycleInFlight))

		close(release)
		Eventually(done).Should(Receive(Succeed()))
		Expect(orch.Running()).To(BeFalse())
	})

	It("surfaces a brief-listing failure", func() {
		briefs.listErr = errors.New("connection refused")
		Expect(orch.RunCycle(ctx)).To(MatchError(briefs.listErr))
	})
})
