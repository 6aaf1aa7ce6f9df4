package inventory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"travelaigent.app/agent/common/logger"
	"travelaigent.app/agent/core/config"
	"travelaigent.app/agent/internal/ratelimit"
)

// tokenRefreshMargin renews the OAuth token this long before its
// stated expiry, so in-flight searches never race an expiring token.
const tokenRefreshMargin = 60 * time.Second

const requestTimeout = 30 * time.Second

// Client talks to the Amadeus self-service API: client-credentials
// token lifecycle, flight-offer search and hotel search. Every request
// goes through the injected rate limiter.
type Client struct {
	cfg        config.AmadeusConfig
	maxPerPlan int
	httpClient *http.Client
	limiter    *ratelimit.Limiter
	now        func() time.Time
	calls      atomic.Int64

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewClient creates a Client and eagerly obtains a token. An error
// here means the provider is unavailable (bad or missing credentials);
// the caller is expected to fall back to the mock searcher.
func NewClient(ctx context.Context, cfg config.AmadeusConfig, maxDealsPerBrief int) (*Client, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("amadeus credentials not configured")
	}

	c := &Client{
		cfg:        cfg,
		maxPerPlan: maxDealsPerBrief,
		httpClient: &http.Client{Timeout: requestTimeout},
		limiter:    ratelimit.New(cfg.RequestsPerMinute),
		now:        time.Now,
	}

	if err := c.refreshToken(ctx); err != nil {
		return nil, fmt.Errorf("obtaining initial token: %w", err)
	}

	return c, nil
}

// APICalls reports the number of provider requests issued so far
// (token requests excluded).
func (c *Client) APICalls() int64 {
	return c.calls.Load()
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

func (c *Client) refreshToken(ctx context.Context) error {
	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {c.cfg.ClientID},
		"client_secret": {c.cfg.ClientSecret},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/v1/security/oauth2/token",
		strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("building token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("token request failed: status %d: %s", resp.StatusCode, logger.Truncate(string(body), 200))
	}

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return fmt.Errorf("decoding token response: %w", err)
	}
	if token.AccessToken == "" {
		return fmt.Errorf("token response missing access_token")
	}

	expiresIn := token.ExpiresIn
	if expiresIn == 0 {
		expiresIn = 3600
	}

	c.mu.Lock()
	c.token = token.AccessToken
	c.tokenExpiry = c.now().Add(time.Duration(expiresIn)*time.Second - tokenRefreshMargin)
	c.mu.Unlock()

	slog.InfoContext(ctx, "inventory access token obtained", "expires_in_s", expiresIn)
	return nil
}

func (c *Client) ensureToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	token, expiry := c.token, c.tokenExpiry
	c.mu.Unlock()

	if token != "" && c.now().Before(expiry) {
		return token, nil
	}

	if err := c.refreshToken(ctx); err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token, nil
}

// get issues one rate-limited authorized GET and decodes the JSON
// response into out.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return fmt.Errorf("ensuring token: %w", err)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	c.calls.Add(1)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.cfg.BaseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("provider error %d on %s: %s", resp.StatusCode, path, logger.Truncate(string(body), 200))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response from %s: %w", path, err)
	}
	return nil
}
