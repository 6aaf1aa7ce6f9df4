package inventory

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"travelaigent.app/agent/common/logger"
	"travelaigent.app/agent/internal/model"
	"travelaigent.app/agent/internal/query"
)

type flightOffersResponse struct {
	Data []flightOffer `json:"data"`
}

type flightOffer struct {
	ID               string            `json:"id"`
	Price            offerPrice        `json:"price"`
	Itineraries      []itinerary       `json:"itineraries"`
	TravelerPricings []travelerPricing `json:"travelerPricings"`
	BookableSeats    int               `json:"numberOfBookableSeats"`
}

type offerPrice struct {
	Total    string `json:"total"`
	Currency string `json:"currency"`
}

type itinerary struct {
	Duration string    `json:"duration"`
	Segments []segment `json:"segments"`
}

type segment struct {
	Departure   endpoint `json:"departure"`
	Arrival     endpoint `json:"arrival"`
	CarrierCode string   `json:"carrierCode"`
}

type endpoint struct {
	IATACode string `json:"iataCode"`
	At       string `json:"at"` // ISO timestamp, e.g. "2025-08-15T08:30:00"
}

type travelerPricing struct {
	FareDetails []fareDetail `json:"fareDetailsBySegment"`
}

type fareDetail struct {
	Class string `json:"class"`
}

// SearchFlights runs every tuple of the plan against the flight-offers
// endpoint. A failing tuple is logged and skipped; it never aborts the
// remaining tuples. Results are merged and capped per brief.
func (c *Client) SearchFlights(ctx context.Context, plan query.Plan) ([]model.Offer, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "agent.inventory.amadeus"})

	var offers []model.Offer
	for _, tuple := range plan.Tuples {
		params := url.Values{
			"originLocationCode":      {tuple.Origin},
			"destinationLocationCode": {tuple.Destination},
			"departureDate":           {tuple.Departure.Format("2006-01-02")},
			"adults":                  {strconv.Itoa(plan.Travelers.Adults)},
			"children":                {strconv.Itoa(plan.Travelers.Children)},
			"max":                     {strconv.Itoa(c.cfg.ResultsPerRequest)},
			"currencyCode":            {c.cfg.Currency},
		}
		if tuple.Return != nil {
			params.Set("returnDate", tuple.Return.Format("2006-01-02"))
		}

		var resp flightOffersResponse
		if err := c.get(ctx, "/v2/shopping/flight-offers", params, &resp); err != nil {
			slog.ErrorContext(ctx, "flight search failed, skipping tuple",
				"error", err,
				"origin", tuple.Origin,
				"destination", tuple.Destination,
				"departure", tuple.Departure.Format("2006-01-02"))
			continue
		}

		mapped := mapFlightOffers(ctx, resp, c.now())
		offers = append(offers, mapped...)
		slog.InfoContext(ctx, "flight search completed",
			"origin", tuple.Origin,
			"destination", tuple.Destination,
			"offers", len(mapped))
	}

	if len(offers) > c.maxPerPlan {
		offers = offers[:c.maxPerPlan]
	}
	return offers, nil
}

// mapFlightOffers normalizes a provider response. The outbound leg is
// the first segment of the first itinerary; the inbound leg (round
// trips only) is the last segment of the second itinerary. Malformed
// entries are skipped, not fatal.
func mapFlightOffers(ctx context.Context, resp flightOffersResponse, foundAt time.Time) []model.Offer {
	var offers []model.Offer
	for _, raw := range resp.Data {
		if len(raw.Itineraries) == 0 || len(raw.Itineraries[0].Segments) == 0 {
			slog.WarnContext(ctx, "flight offer missing itinerary segments", "offer_id", raw.ID)
			continue
		}

		price, err := strconv.ParseFloat(raw.Price.Total, 64)
		if err != nil {
			slog.WarnContext(ctx, "flight offer has unparseable price",
				"offer_id", raw.ID, "total", raw.Price.Total)
			continue
		}

		outbound := raw.Itineraries[0].Segments[0]
		offer := model.Offer{
			Kind:          model.OfferKindFlight,
			ProviderID:    raw.ID,
			Origin:        outbound.Departure.IATACode,
			Destination:   outbound.Arrival.IATACode,
			DepartureDate: datePart(outbound.Departure.At),
			DepartureTime: timePart(outbound.Departure.At),
			Airline:       outbound.CarrierCode,
			Stops:         len(raw.Itineraries[0].Segments) - 1,
			Duration:      raw.Itineraries[0].Duration,
			Seats:         raw.BookableSeats,
			TotalPrice:    price,
			Currency:      raw.Price.Currency,
			FoundAt:       foundAt,
		}

		if len(raw.Itineraries) > 1 {
			segments := raw.Itineraries[1].Segments
			if len(segments) > 0 {
				inbound := segments[len(segments)-1]
				offer.ReturnDate = datePart(inbound.Arrival.At)
				offer.ReturnTime = timePart(inbound.Arrival.At)
			}
		}

		if len(raw.TravelerPricings) > 0 && len(raw.TravelerPricings[0].FareDetails) > 0 {
			offer.BookingClass = raw.TravelerPricings[0].FareDetails[0].Class
		}

		offers = append(offers, offer)
	}
	return offers
}

func datePart(at string) string {
	if len(at) < 10 {
		return at
	}
	return at[:10]
}

func timePart(at string) string {
	if len(at) < 16 {
		return ""
	}
	return at[11:16]
}
