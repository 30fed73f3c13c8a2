// Package ecommerce holds the channel adapters and the compile-time registry
// that binds channel names to them.
package ecommerce

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/erp/omnisync/internal/domain/channel"
	"github.com/erp/omnisync/internal/infrastructure/config"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

// maxResponseSize bounds how much of a channel response is read (10MB)
const maxResponseSize = 10 * 1024 * 1024

// maxPages stops a sequence whose remote keeps returning a next page
const maxPages = 1000

// credential keys understood by the built-in adapters
const (
	CredAccessToken   = "access_token"
	CredAPIKey        = "api_key"
	CredMarketplaceID = "marketplace_id"
	// CredBaseURL overrides the channel endpoint for one connection
	CredBaseURL = "base_url"
)

// Settings are the polling settings shared by every adapter
type Settings struct {
	HTTPTimeout       time.Duration
	PageSize          int
	RequestsPerSecond float64
	Burst             int
	LookbackWindow    time.Duration
	AmazonBaseURL     string
	EbayBaseURL       string
	WootBaseURL       string
	// Now is the clock used for the lookback window; defaults to time.Now
	Now func() time.Time
}

// SettingsFromConfig converts the sync section of the application config
func SettingsFromConfig(cfg config.SyncConfig) Settings {
	return Settings{
		HTTPTimeout:       cfg.HTTPTimeout,
		PageSize:          cfg.PageSize,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Burst:             cfg.Burst,
		LookbackWindow:    cfg.LookbackWindow,
		AmazonBaseURL:     cfg.AmazonBaseURL,
		EbayBaseURL:       cfg.EbayBaseURL,
		WootBaseURL:       cfg.WootBaseURL,
	}
}

func (s Settings) withDefaults() Settings {
	if s.HTTPTimeout <= 0 {
		s.HTTPTimeout = 30 * time.Second
	}
	if s.PageSize <= 0 {
		s.PageSize = 50
	}
	if s.Burst <= 0 {
		s.Burst = 1
	}
	if s.LookbackWindow <= 0 {
		s.LookbackWindow = 24 * time.Hour
	}
	if s.Now == nil {
		s.Now = time.Now
	}
	return s
}

// since is the lower bound of the order window polled by this pass
func (s Settings) since() time.Time {
	return s.Now().Add(-s.LookbackWindow).UTC()
}

// apiClient is the rate-limited JSON client every adapter talks through
type apiClient struct {
	name       string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	headers    http.Header
}

func newAPIClient(name, baseURL string, s Settings, headers http.Header) *apiClient {
	limit := rate.Inf
	if s.RequestsPerSecond > 0 {
		limit = rate.Limit(s.RequestsPerSecond)
	}
	return &apiClient{
		name:       name,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: s.HTTPTimeout},
		limiter:    rate.NewLimiter(limit, s.Burst),
		headers:    headers,
	}
}

// getJSON issues a GET and decodes the body into out. Every failure wraps a
// transient channel error.
func (c *apiClient) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%w: %s: %w", channel.ErrChannelUnavailable, c.name, ctxErr)
		}
		return fmt.Errorf("%w: %s: %v", channel.ErrChannelRateLimited, c.name, err)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("%w: %s: failed to create request: %v", channel.ErrChannelRequestFailed, c.name, err)
	}
	for k, vs := range c.headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", channel.ErrChannelUnavailable, c.name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("%w: %s: failed to read response: %v", channel.ErrChannelUnavailable, c.name, err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s: HTTP %d", channel.ErrChannelRateLimited, c.name, resp.StatusCode)
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: %s: HTTP %d", channel.ErrChannelUnavailable, c.name, resp.StatusCode)
	case resp.StatusCode >= 400:
		return fmt.Errorf("%w: %s: HTTP %d", channel.ErrChannelRequestFailed, c.name, resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %s: %v", channel.ErrChannelInvalidResponse, c.name, err)
	}
	return nil
}

// ParseDecimal parses a money string, returning zero for empty or invalid input
func ParseDecimal(s string) decimal.Decimal {
	d, ok := parseMoney(s)
	if !ok {
		return decimal.Zero
	}
	return d
}

func parseMoney(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// unitPrice divides a line amount by its quantity. Channels that report line
// totals instead of unit prices go through here.
func unitPrice(lineAmount string, quantity int) decimal.NullDecimal {
	d, ok := parseMoney(lineAmount)
	if !ok || quantity <= 0 {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d.DivRound(decimal.NewFromInt(int64(quantity)), 4))
}

// exactPrice parses a unit price as reported
func exactPrice(s string) decimal.NullDecimal {
	d, ok := parseMoney(s)
	if !ok {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

// parseTimestamp reads an RFC 3339 timestamp; zero when absent or invalid
func parseTimestamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

func baseURLFor(creds channel.Credentials, configured, fallback string) string {
	if v := strings.TrimSpace(creds.Get(CredBaseURL)); v != "" {
		return v
	}
	if configured != "" {
		return configured
	}
	return fallback
}
