package inventory

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"travelaigent.app/agent/common/logger"
	"travelaigent.app/agent/internal/model"
)

// maxHotelsPerCity bounds the hotel-ID batch resolved per city before
// asking for best-rate offers.
const maxHotelsPerCity = 10

type hotelListResponse struct {
	Data []hotelRef `json:"data"`
}

type hotelRef struct {
	HotelID string `json:"hotelId"`
}

type hotelOffersResponse struct {
	Data []hotelEntry `json:"data"`
}

type hotelEntry struct {
	Hotel  hotelInfo    `json:"hotel"`
	Offers []hotelOffer `json:"offers"`
}

type hotelInfo struct {
	HotelID string `json:"hotelId"`
	Name    string `json:"name"`
	Rating  string `json:"rating"`
}

type hotelOffer struct {
	Price        offerPrice `json:"price"`
	CheckInDate  string     `json:"checkInDate"`
	CheckOutDate string     `json:"checkOutDate"`
	Room         hotelRoom  `json:"room"`
}

type hotelRoom struct {
	TypeEstimated roomType `json:"typeEstimated"`
}

type roomType struct {
	Category string `json:"category"`
}

// SearchHotels resolves up to ten hotel IDs for the city, then fetches
// best-rate offers for the batch in a single call. Per hotel, the
// minimum-priced offer wins.
func (c *Client) SearchHotels(ctx context.Context, cityCode string, checkIn, checkOut time.Time) ([]model.Offer, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component:   "agent.inventory.amadeus",
		Destination: logger.Ptr(cityCode),
	})

	var list hotelListResponse
	err := c.get(ctx, "/v1/reference-data/locations/hotels/by-city", url.Values{
		"cityCode":    {cityCode},
		"radius":      {"20"},
		"radiusUnit":  {"KM"},
		"hotelSource": {"ALL"},
	}, &list)
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, ref := range list.Data {
		if ref.HotelID == "" {
			continue
		}
		ids = append(ids, ref.HotelID)
		if len(ids) == maxHotelsPerCity {
			break
		}
	}
	if len(ids) == 0 {
		slog.InfoContext(ctx, "no hotels found in city")
		return nil, nil
	}

	var resp hotelOffersResponse
	err = c.get(ctx, "/v3/shopping/hotel-offers", url.Values{
		"hotelIds":     {strings.Join(ids, ",")},
		"checkInDate":  {checkIn.Format("2006-01-02")},
		"checkOutDate": {checkOut.Format("2006-01-02")},
		"adults":       {"2"},
		"roomQuantity": {"1"},
		"currency":     {c.cfg.Currency},
		"bestRateOnly": {"true"},
	}, &resp)
	if err != nil {
		return nil, err
	}

	offers := mapHotelOffers(ctx, resp, cityCode, c.now())
	slog.InfoContext(ctx, "hotel search completed", "offers", len(offers))
	return offers, nil
}

func mapHotelOffers(ctx context.Context, resp hotelOffersResponse, cityCode string, foundAt time.Time) []model.Offer {
	var offers []model.Offer
	for _, entry := range resp.Data {
		best, ok := cheapestHotelOffer(entry.Offers)
		if !ok {
			continue
		}

		price, err := strconv.ParseFloat(best.Price.Total, 64)
		if err != nil {
			slog.WarnContext(ctx, "hotel offer has unparseable price",
				"hotel_id", entry.Hotel.HotelID, "total", best.Price.Total)
			continue
		}

		offers = append(offers, model.Offer{
			Kind:        model.OfferKindHotel,
			ProviderID:  entry.Hotel.HotelID,
			Destination: cityCode,
			HotelName:   entry.Hotel.Name,
			Rating:      entry.Hotel.Rating,
			RoomType:    best.Room.TypeEstimated.Category,
			CheckIn:     best.CheckInDate,
			CheckOut:    best.CheckOutDate,
			TotalPrice:  price,
			Currency:    best.Price.Currency,
			FoundAt:     foundAt,
		})
	}
	return offers
}

func cheapestHotelOffer(offers []hotelOffer) (hotelOffer, bool) {
	var (
		best      hotelOffer
		bestPrice float64
		found     bool
	)
	for _, offer := range offers {
		price, err := strconv.ParseFloat(offer.Price.Total, 64)
		if err != nil {
			continue
		}
		if !found || price < bestPrice {
			best = offer
			bestPrice = price
			found = true
		}
	}
	return best, found
}
