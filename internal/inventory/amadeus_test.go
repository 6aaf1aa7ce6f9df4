package inventory_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"travelaigent.app/agent/core/config"
	"travelaigent.app/agent/internal/inventory"
	"travelaigent.app/agent/internal/model"
	"travelaigent.app/agent/internal/query"
)

// fixtureServer stands in for the provider API. Handlers are swappable
// per spec; the token endpoint is always present and counts issuance.
type fixtureServer struct {
	*httptest.Server
	tokenRequests atomic.Int64

	flightHandler http.HandlerFunc
	hotelList     http.HandlerFunc
	hotelOffers   http.HandlerFunc
}

func newFixtureServer() *fixtureServer {
	f := &fixtureServer{}
	mux := http.NewServeMux()

	mux.HandleFunc("/v1/security/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		f.tokenRequests.Add(1)
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		_ = r.ParseForm()
		if r.PostForm.Get("client_id") != "test-id" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid_client"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "test-token",
			"expires_in":   1799,
		})
	})

	mux.HandleFunc("/v2/shopping/flight-offers", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if f.flightHandler != nil {
			f.flightHandler(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"data":[]}`))
	})

	mux.HandleFunc("/v1/reference-data/locations/hotels/by-city", func(w http.ResponseWriter, r *http.Request) {
		if f.hotelList != nil {
			f.hotelList(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"data":[]}`))
	})

	mux.HandleFunc("/v3/shopping/hotel-offers", func(w http.ResponseWriter, r *http.Request) {
		if f.hotelOffers != nil {
			f.hotelOffers(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"data":[]}`))
	})

	f.Server = httptest.NewServer(mux)
	return f
}

func fixtureConfig(baseURL string) config.AmadeusConfig {
	return config.AmadeusConfig{
		ClientID:          "test-id",
		ClientSecret:      "test-secret",
		BaseURL:           baseURL,
		RequestsPerMinute: 0, // no pacing in tests
		Currency:          "GBP",
		ResultsPerRequest: 5,
	}
}

const flightOffersFixture = `{
  "data": [
    {
      "id": "1",
      "numberOfBookableSeats": 4,
      "price": {"total": "412.50", "currency": "GBP"},
      "itineraries": [
        {
          "duration": "PT2H25M",
          "segments": [
            {
              "departure": {"iataCode": "LHR", "at": "2025-08-15T08:30:00"},
              "arrival": {"iataCode": "CDG", "at": "2025-08-15T10:55:00"},
              "carrierCode": "BA"
            }
          ]
        },
        {
          "duration": "PT2H20M",
          "segments": [
            {
              "departure": {"iataCode": "CDG", "at": "2025-08-22T18:00:00"},
              "arrival": {"iataCode": "LHR", "at": "2025-08-22T20:20:00"},
              "carrierCode": "BA"
            }
          ]
        }
      ],
      "travelerPricings": [
        {"fareDetailsBySegment": [{"class": "Y"}]}
      ]
    },
    {
      "id": "2",
      "price": {"total": "not-a-number", "currency": "GBP"},
      "itineraries": [
        {
          "segments": [
            {
              "departure": {"iataCode": "LHR", "at": "2025-08-15T09:00:00"},
              "arrival": {"iataCode": "CDG", "at": "2025-08-15T11:20:00"},
              "carrierCode": "AF"
            }
          ]
        }
      ]
    }
  ]
}`

const hotelListFixture = `{
  "data": [
    {"hotelId": "HTLCDG001"},
    {"hotelId": "HTLCDG002"}
  ]
}`

const hotelOffersFixture = `{
  "data": [
    {
      "hotel": {"hotelId": "HTLCDG001", "name": "Hotel Lumiere", "rating": "4"},
      "offers": [
        {
          "price": {"total": "980.00", "currency": "GBP"},
          "checkInDate": "2025-08-15",
          "checkOutDate": "2025-08-22",
          "room": {"typeEstimated": {"category": "FAMILY_ROOM"}}
        },
        {
          "price": {"total": "840.00", "currency": "GBP"},
          "checkInDate": "2025-08-15",
          "checkOutDate": "2025-08-22",
          "room": {"typeEstimated": {"category": "STANDARD_ROOM"}}
        }
      ]
    }
  ]
}`

var _ = Describe("Client", func() {
	var (
		server *fixtureServer
		client *inventory.Client
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		server = newFixtureServer()
		DeferCleanup(server.Close)

		var err error
		client, err = inventory.NewClient(ctx, fixtureConfig(server.URL), 20)
		Expect(err).NotTo(HaveOccurred())
	})

	It("obtains a token eagerly and reuses it across requests", func() {
		_, err := client.SearchFlights(ctx, query.Plan{
			Travelers: model.Travelers{Adults: 2, Children: 2},
			Tuples: []query.Tuple{
				{Origin: "LHR", Destination: "CDG", Departure: time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC)},
				{Origin: "LGW", Destination: "CDG", Departure: time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC)},
			},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(server.tokenRequests.Load()).To(Equal(int64(1)))
		Expect(client.APICalls()).To(Equal(int64(2)))
	})

	It("refuses to construct without credentials", func() {
		cfg := fixtureConfig(server.URL)
		cfg.ClientID = ""
		_, err := inventory.NewClient(ctx, cfg, 20)
		Expect(err).To(HaveOccurred())
	})

	It("surfaces a failed initial token as a constructor error", func() {
		cfg := fixtureConfig(server.URL)
		cfg.ClientID = "wrong-id"
		_, err := inventory.NewClient(ctx, cfg, 20)
		Expect(err).To(MatchError(ContainSubstring("obtaining initial token")))
	})

	Describe("SearchFlights", func() {
		BeforeEach(func() {
			server.flightHandler = func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(flightOffersFixture))
			}
		})

		It("maps provider offers into normalized flight offers", func() {
			offers, err := client.SearchFlights(ctx, query.Plan{
				Travelers: model.Travelers{Adults: 2, Children: 2},
				Tuples: []query.Tuple{
					{Origin: "LHR", Destination: "CDG", Departure: time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC)},
				},
			})
			Expect(err).NotTo(HaveOccurred())

			// The malformed-price offer is dropped.
			Expect(offers).To(HaveLen(1))
			offer := offers[0]
			Expect(offer.Kind).To(Equal(model.OfferKindFlight))
			Expect(offer.Origin).To(Equal("LHR"))
			Expect(offer.Destination).To(Equal("CDG"))
			Expect(offer.DepartureDate).To(Equal("2025-08-15"))
			Expect(offer.DepartureTime).To(Equal("08:30"))
			Expect(offer.ReturnDate).To(Equal("2025-08-22"))
			Expect(offer.ReturnTime).To(Equal("20:20"))
			Expect(offer.Airline).To(Equal("BA"))
			Expect(offer.Stops).To(Equal(0))
			Expect(offer.BookingClass).To(Equal("Y"))
			Expect(offer.Seats).To(Equal(4))
			Expect(offer.TotalPrice).To(Equal(412.50))
			Expect(offer.Currency).To(Equal("GBP"))
		})

		It("passes traveler counts and the return date to the provider", func() {
			var seen url.Values
			server.flightHandler = func(w http.ResponseWriter, r *http.Request) {
				seen = r.URL.Query()
				_, _ = w.Write([]byte(`{"data":[]}`))
			}

			ret := time.Date(2025, 8, 22, 0, 0, 0, 0, time.UTC)
			_, err := client.SearchFlights(ctx, query.Plan{
				Travelers: model.Travelers{Adults: 2, Children: 3},
				Tuples: []query.Tuple{
					{Origin: "LHR", Destination: "FCO", Departure: time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC), Return: &ret},
				},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(seen.Get("adults")).To(Equal("2"))
			Expect(seen.Get("children")).To(Equal("3"))
			Expect(seen.Get("returnDate")).To(Equal("2025-08-22"))
			Expect(seen.Get("max")).To(Equal("5"))
		})

		It("skips a failing tuple and keeps the rest", func() {
			var calls atomic.Int64
			server.flightHandler = func(w http.ResponseWriter, r *http.Request) {
				if calls.Add(1) == 1 {
					w.WriteHeader(http.StatusInternalServerError)
					_, _ = w.Write([]byte(`{"errors":[{"detail":"boom"}]}`))
					return
				}
				_, _ = w.Write([]byte(flightOffersFixture))
			}

			offers, err := client.SearchFlights(ctx, query.Plan{
				Travelers: model.Travelers{Adults: 2, Children: 2},
				Tuples: []query.Tuple{
					{Origin: "LHR", Destination: "FCO", Departure: time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC)},
					{Origin: "LHR", Destination: "CDG", Departure: time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC)},
				},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(offers).To(HaveLen(1))
		})

		It("caps merged results at the per-brief maximum", func() {
			capped, err := inventory.NewClient(ctx, fixtureConfig(server.URL), 1)
			Expect(err).NotTo(HaveOccurred())

			offers, err := capped.SearchFlights(ctx, query.Plan{
				Travelers: model.Travelers{Adults: 2, Children: 2},
				Tuples: []query.Tuple{
					{Origin: "LHR", Destination: "CDG", Departure: time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC)},
					{Origin: "LGW", Destination: "CDG", Departure: time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC)},
				},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(offers).To(HaveLen(1))
		})
	})

	Describe("SearchHotels", func() {
		checkIn := time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC)
		checkOut := time.Date(2025, 8, 22, 0, 0, 0, 0, time.UTC)

		It("resolves city hotels then returns the cheapest offer per hotel", func() {
			var listQuery, offersQuery url.Values
			server.hotelList = func(w http.ResponseWriter, r *http.Request) {
				listQuery = r.URL.Query()
				_, _ = w.Write([]byte(hotelListFixture))
			}
			server.hotelOffers = func(w http.ResponseWriter, r *http.Request) {
				offersQuery = r.URL.Query()
				_, _ = w.Write([]byte(hotelOffersFixture))
			}

			offers, err := client.SearchHotels(ctx, "CDG", checkIn, checkOut)
			Expect(err).NotTo(HaveOccurred())
			Expect(listQuery.Get("cityCode")).To(Equal("CDG"))
			Expect(offersQuery.Get("hotelIds")).To(Equal("HTLCDG001,HTLCDG002"))
			Expect(offersQuery.Get("checkInDate")).To(Equal("2025-08-15"))
			Expect(offersQuery.Get("bestRateOnly")).To(Equal("true"))
			Expect(offers).To(HaveLen(1))
			Expect(offers[0].Kind).To(Equal(model.OfferKindHotel))
			Expect(offers[0].HotelName).To(Equal("Hotel Lumiere"))
			Expect(offers[0].RoomType).To(Equal("STANDARD_ROOM"))
			Expect(offers[0].TotalPrice).To(Equal(840.00))
		})

		It("returns nothing when the city has no hotels", func() {
			var offersCalled atomic.Bool
			server.hotelOffers = func(w http.ResponseWriter, r *http.Request) {
				offersCalled.Store(true)
				_, _ = w.Write([]byte(`{"data":[]}`))
			}

			offers, err := client.SearchHotels(ctx, "CDG", checkIn, checkOut)
			Expect(err).NotTo(HaveOccurred())
			Expect(offers).To(BeEmpty())
			Expect(offersCalled.Load()).To(BeFalse())
		})

		It("truncates the hotel-ID batch to ten", func() {
			server.hotelList = func(w http.ResponseWriter, r *http.Request) {
				refs := make([]map[string]string, 15)
				for i := range refs {
					refs[i] = map[string]string{"hotelId": fmt.Sprintf("HTL%03d", i)}
				}
				_ = json.NewEncoder(w).Encode(map[string]any{"data": refs})
			}
			var seenIDs string
			server.hotelOffers = func(w http.ResponseWriter, r *http.Request) {
				seenIDs = r.URL.Query().Get("hotelIds")
				_, _ = w.Write([]byte(`{"data":[]}`))
			}

			_, err := client.SearchHotels(ctx, "CDG", checkIn, checkOut)
			Expect(err).NotTo(HaveOccurred())
			Expect(strings.Split(seenIDs, ",")).To(HaveLen(10))
		})
	})
})
