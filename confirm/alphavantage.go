// Package confirm implements the optional third-party confirmation check
// consulted before opening a position. The collaborator is advisory: any
// transport failure, rate limit, or missing credential defaults to allow so
// the engine never depends on its availability.
package confirm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"auto_trend_go_1/logs"
)

const defaultAlphaVantageBaseURL = "https://www.alphavantage.co"

// Confirmer answers whether a proposed entry may proceed.
type Confirmer interface {
	// Confirm reports whether a position in the given direction ("BUY" or
	// "SELL") may be opened for the symbol.
	Confirm(ctx context.Context, symbol, direction string) bool
}

// Ensure AlphaVantageClient implements Confirmer.
var _ Confirmer = (*AlphaVantageClient)(nil)

// AlphaVantageClient checks a proposed entry against the Alpha Vantage SMA
// endpoint. An empty API key disables the check entirely (always allow).
type AlphaVantageClient struct {
	ApiKey  string
	BaseURL string
	Http    *http.Client
}

// NewAlphaVantageClient creates a confirmation client with the given request timeout.
func NewAlphaVantageClient(apiKey, baseURL string, timeoutSeconds int) *AlphaVantageClient {
	if baseURL == "" {
		baseURL = defaultAlphaVantageBaseURL
	}
	return &AlphaVantageClient{
		ApiKey:  apiKey,
		BaseURL: baseURL,
		Http:    &http.Client{Timeout: time.Duration(timeoutSeconds) * time.Second},
	}
}

// Confirm queries the SMA endpoint for the symbol. No observed response
// currently produces a deny: rate limits, transport errors, and even a
// payload with no SMA data all fall through to allow. A deny can only come
// from another Confirmer implementation.
func (c *AlphaVantageClient) Confirm(ctx context.Context, symbol, direction string) bool {
	if c.ApiKey == "" {
		return true
	}

	endpoint := fmt.Sprintf("%s/query", c.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		logs.Warnf("[Confirm] Failed to build request for %s: %v", symbol, err)
		return true
	}
	q := url.Values{}
	q.Set("function", "SMA")
	q.Set("symbol", symbol)
	q.Set("interval", "15min")
	q.Set("time_period", "20")
	q.Set("series_type", "close")
	q.Set("apikey", c.ApiKey)
	req.URL.RawQuery = q.Encode()

	resp, err := c.Http.Do(req)
	if err != nil {
		logs.Warnf("[Confirm] Request failed for %s (%s), defaulting to allow: %v", symbol, direction, err)
		return true
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		logs.Warnf("[Confirm] Failed to read response for %s, defaulting to allow: %v", symbol, err)
		return true
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		logs.Warnf("[Confirm] Failed to parse response for %s, defaulting to allow: %v", symbol, err)
		return true
	}

	if _, limited := payload["Note"]; limited {
		logs.Warnf("[Confirm] Alpha Vantage rate limit reached for %s, defaulting to allow.", symbol)
		return true
	}
	if _, ok := payload["Technical Analysis: SMA"]; ok {
		logs.Debugf("[Confirm] %s %s confirmed.", symbol, direction)
		return true
	}
	return true
}

// AllowAll is a Confirmer that always allows. Used when no credential is
// configured and as a test stub.
type AllowAll struct{}

func (AllowAll) Confirm(context.Context, string, string) bool { return true }
