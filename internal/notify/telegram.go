package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"travelaigent.app/agent/common/logger"
	"travelaigent.app/agent/core/config"
	"travelaigent.app/agent/internal/model"
	"travelaigent.app/agent/internal/query"
)

const telegramAPIBase = "https://api.telegram.org"

const sendTimeout = 15 * time.Second

// Telegram posts deal alerts to a chat via the Bot API sendMessage
// endpoint.
type Telegram struct {
	cfg        config.TelegramConfig
	baseURL    string
	httpClient *http.Client
}

func NewTelegram(cfg config.TelegramConfig) *Telegram {
	return &Telegram{
		cfg:        cfg,
		baseURL:    telegramAPIBase,
		httpClient: &http.Client{Timeout: sendTimeout},
	}
}

// NewTelegramWithBaseURL exists for tests pointing at a fixture server.
func NewTelegramWithBaseURL(cfg config.TelegramConfig, baseURL string) *Telegram {
	t := NewTelegram(cfg)
	t.baseURL = baseURL
	return t
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

func (t *Telegram) Send(ctx context.Context, brief model.Brief, deal model.Deal) error {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "agent.notify.telegram",
		BriefID:   logger.Ptr(brief.ID),
		DealID:    logger.Ptr(deal.ID),
	})

	payload, err := json.Marshal(sendMessageRequest{
		ChatID:    t.cfg.ChatID,
		Text:      formatAlert(brief, deal),
		ParseMode: "Markdown",
	})
	if err != nil {
		return fmt.Errorf("encoding alert: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.cfg.BotToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(payload)))
	if err != nil {
		return fmt.Errorf("building alert request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending alert: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("alert rejected: status %d: %s", resp.StatusCode, logger.Truncate(string(body), 200))
	}

	slog.InfoContext(ctx, "deal alert sent",
		"destination", deal.Candidate.Destination, "score", deal.Analysis.Score)
	return nil
}

// formatAlert renders the chat message. Telegram Markdown, kept short
// enough to read on a phone lock screen.
func formatAlert(brief model.Brief, deal model.Deal) string {
	c := deal.Candidate
	a := deal.Analysis

	var b strings.Builder
	fmt.Fprintf(&b, "*Deal alert: %s* (score %d/10, %s)\n\n",
		query.DestinationName(c.Destination), a.Score, a.Recommendation)

	if c.Kind == model.DealKindPackage {
		fmt.Fprintf(&b, "Package, %d nights at %s\n", c.Nights, c.HotelName)
	} else {
		b.WriteString("Flight only\n")
	}
	fmt.Fprintf(&b, "%s -> %s, out %s", c.Origin, c.Destination, c.DepartureDate)
	if c.ReturnDate != "" {
		fmt.Fprintf(&b, ", back %s", c.ReturnDate)
	}
	fmt.Fprintf(&b, "\n*%.2f %s total*\n", c.TotalPrice, c.Currency)

	if a.ActionSummary != "" {
		fmt.Fprintf(&b, "\n%s\n", a.ActionSummary)
	}
	for _, pro := range a.KeyPros {
		fmt.Fprintf(&b, "+ %s\n", pro)
	}
	for _, con := range a.KeyCons {
		fmt.Fprintf(&b, "- %s\n", con)
	}

	fmt.Fprintf(&b, "\nBrief: %s", brief.Name)
	return b.String()
}
