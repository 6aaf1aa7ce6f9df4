package notify_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"travelaigent.app/agent/core/config"
	"travelaigent.app/agent/internal/model"
	"travelaigent.app/agent/internal/notify"
)

var _ = Describe("Telegram", func() {
	var (
		server   *httptest.Server
		received map[string]any
		status   int
	)

	cfg := config.TelegramConfig{BotToken: "test-token", ChatID: "12345"}

	brief := model.Brief{ID: 42, Name: "Summer in Europe"}

	deal := model.Deal{
		ID:   7,
		Kind: model.DealKindPackage,
		Candidate: model.Candidate{
			Kind:          model.DealKindPackage,
			Origin:        "LHR",
			Destination:   "CDG",
			DepartureDate: "2025-08-15",
			ReturnDate:    "2025-08-22",
			TotalPrice:    1190,
			Currency:      "GBP",
			HotelName:     "Hotel Lumiere",
			Nights:        7,
		},
		Analysis: model.DealAnalysis{
			Score:          9,
			Recommendation: model.RecommendationBookNow,
			KeyPros:        []string{"Direct"},
			ActionSummary:  "Book within 48 hours",
		},
	}

	var requestPath string

	BeforeEach(func() {
		received = nil
		requestPath = ""
		status = http.StatusOK
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestPath = r.URL.Path
			_ = json.NewDecoder(r.Body).Decode(&received)
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"ok":true}`))
		}))
		DeferCleanup(server.Close)
	})

	It("posts a formatted alert to the configured chat", func() {
		t := notify.NewTelegramWithBaseURL(cfg, server.URL)
		Expect(t.Send(context.Background(), brief, deal)).To(Succeed())

		Expect(requestPath).To(Equal("/bottest-token/sendMessage"))
		Expect(received["chat_id"]).To(Equal("12345"))
		text, _ := received["text"].(string)
		Expect(text).To(ContainSubstring("Paris"))
		Expect(text).To(ContainSubstring("score 9/10"))
		Expect(text).To(ContainSubstring("7 nights at Hotel Lumiere"))
		Expect(text).To(ContainSubstring("1190.00 GBP"))
		Expect(text).To(ContainSubstring("Summer in Europe"))
	})

	It("returns an error on a non-200 response", func() {
		status = http.StatusForbidden
		t := notify.NewTelegramWithBaseURL(cfg, server.URL)
		Expect(t.Send(context.Background(), brief, deal)).To(MatchError(ContainSubstring("status 403")))
	})
})

var _ = Describe("LogNotifier", func() {
	It("never fails", func() {
		n := notify.NewLogNotifier()
		Expect(n.Send(context.Background(), model.Brief{ID: 1}, model.Deal{ID: 2})).To(Succeed())
	})
})
