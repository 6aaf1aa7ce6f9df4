package inventory

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"travelaigent.app/agent/common/logger"
	"travelaigent.app/agent/internal/model"
	"travelaigent.app/agent/internal/query"
)

// MockSearcher produces deterministic offers without touching the
// network. It is wired in whenever provider credentials are absent so
// the rest of the pipeline can run end to end in development.
type MockSearcher struct {
	origin string
	now    func() time.Time
}

func NewMockSearcher(origin string) *MockSearcher {
	if origin == "" {
		origin = "LHR"
	}
	return &MockSearcher{origin: origin, now: time.Now}
}

// mockBasePrice derives a stable per-destination price so repeated
// cycles produce identical offers (and the duplicate filter gets
// exercised in development).
func mockBasePrice(destination string) float64 {
	var sum int
	for _, r := range destination {
		sum += int(r)
	}
	return 350 + float64(sum%200)
}

func (m *MockSearcher) SearchFlights(ctx context.Context, plan query.Plan) ([]model.Offer, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "agent.inventory.mock"})

	var offers []model.Offer
	for i, destination := range plan.Destinations {
		departure := m.now().AddDate(0, 0, 30)
		ret := departure.AddDate(0, 0, 7)
		if len(plan.Dates) > 0 {
			departure = plan.Dates[0]
			ret = departure.AddDate(0, 0, 7)
		}
		if len(plan.Dates) > 1 {
			ret = plan.Dates[1]
		}

		offers = append(offers, model.Offer{
			Kind:          model.OfferKindFlight,
			ProviderID:    fmt.Sprintf("MOCK-%s-%d", destination, i+1),
			Origin:        m.origin,
			Destination:   destination,
			DepartureDate: departure.Format("2006-01-02"),
			DepartureTime: "08:30",
			ReturnDate:    ret.Format("2006-01-02"),
			ReturnTime:    "18:45",
			Airline:       "BA",
			Stops:         0,
			Duration:      "PT2H30M",
			BookingClass:  "Y",
			Seats:         9,
			TotalPrice:    mockBasePrice(destination),
			Currency:      "GBP",
			FoundAt:       m.now(),
		})
	}

	slog.InfoContext(ctx, "mock flight search completed", "offers", len(offers))
	return offers, nil
}

func (m *MockSearcher) SearchHotels(ctx context.Context, cityCode string, checkIn, checkOut time.Time) ([]model.Offer, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component:   "agent.inventory.mock",
		Destination: logger.Ptr(cityCode),
	})

	offer := model.Offer{
		Kind:        model.OfferKindHotel,
		ProviderID:  "MOCKHOTEL" + cityCode,
		Destination: cityCode,
		HotelName:   "Grand " + query.DestinationName(cityCode) + " Family Hotel",
		Rating:      "4",
		RoomType:    "FAMILY_ROOM",
		CheckIn:     checkIn.Format("2006-01-02"),
		CheckOut:    checkOut.Format("2006-01-02"),
		TotalPrice:  mockBasePrice(cityCode) * 1.2,
		Currency:    "GBP",
		FoundAt:     m.now(),
	}

	slog.InfoContext(ctx, "mock hotel search completed", "offers", 1)
	return []model.Offer{offer}, nil
}
