package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"auto_trend_go_1/logs"
)

const defaultYahooBaseURL = "https://query1.finance.yahoo.com"

// Ensure YahooClient implements the Feed interface.
var _ Feed = (*YahooClient)(nil)

// YahooClient fetches OHLC history from the Yahoo Finance chart API.
// It is read-only and unauthenticated; all requests carry the client timeout
// plus whatever deadline the caller's context imposes.
type YahooClient struct {
	BaseURL string
	Http    *http.Client
	minBars int
}

// chartResponse mirrors the subset of the chart API payload we consume.
// Quote arrays use pointers because Yahoo emits null for missing bars.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					High  []*float64 `json:"high"`
					Low   []*float64 `json:"low"`
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// NewYahooClient creates a Yahoo chart API client. minBars is the shortest
// series FetchSeries will accept before reporting ErrInsufficientHistory.
func NewYahooClient(baseURL string, timeoutSeconds, minBars int) *YahooClient {
	if baseURL == "" {
		baseURL = defaultYahooBaseURL
	}
	return &YahooClient{
		BaseURL: baseURL,
		Http:    &http.Client{Timeout: time.Duration(timeoutSeconds) * time.Second},
		minBars: minBars,
	}
}

// FetchSeries downloads the trailing history for a ticker and returns the
// clean bars, oldest first. Bars with missing fields are dropped.
func (c *YahooClient) FetchSeries(ctx context.Context, ticker string, lookbackDays int, barInterval string) ([]Candle, error) {
	body, err := c.fetchChart(ctx, ticker, fmt.Sprintf("%dd", lookbackDays), barInterval)
	if err != nil {
		return nil, err
	}

	candles, _, err := parseChart(body)
	if err != nil {
		return nil, fmt.Errorf("ticker %s: %w", ticker, err)
	}
	if len(candles) < c.minBars {
		logs.Debugf("[Market] %s returned %d bars, need %d", ticker, len(candles), c.minBars)
		return nil, fmt.Errorf("ticker %s: got %d bars, need %d: %w", ticker, len(candles), c.minBars, ErrInsufficientHistory)
	}
	return candles, nil
}

// LatestPrice returns the most recent close for a ticker using a one-day window.
func (c *YahooClient) LatestPrice(ctx context.Context, ticker string) (float64, error) {
	body, err := c.fetchChart(ctx, ticker, "1d", "15m")
	if err != nil {
		return 0, err
	}

	candles, marketPrice, err := parseChart(body)
	if err != nil {
		return 0, fmt.Errorf("ticker %s: %w", ticker, err)
	}
	if len(candles) > 0 {
		return candles[len(candles)-1].Close, nil
	}
	if marketPrice > 0 {
		return marketPrice, nil
	}
	return 0, fmt.Errorf("ticker %s: no price data in chart response", ticker)
}

func (c *YahooClient) fetchChart(ctx context.Context, ticker, rng, interval string) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s", c.BaseURL, url.PathEscape(ticker))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build chart request: %w", err)
	}
	q := req.URL.Query()
	q.Set("range", rng)
	q.Set("interval", interval)
	req.URL.RawQuery = q.Encode()
	// Yahoo rejects requests without a browser-looking agent.
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64)")

	resp, err := c.Http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chart request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read chart response body: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("chart API error: HTTP %d, body: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

// parseChart decodes a chart payload into candles plus the meta market price.
func parseChart(body []byte) ([]Candle, float64, error) {
	var parsed chartResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, 0, fmt.Errorf("failed to parse chart JSON: %w", err)
	}
	if parsed.Chart.Error != nil {
		return nil, 0, fmt.Errorf("chart API error: %s (%s)", parsed.Chart.Error.Description, parsed.Chart.Error.Code)
	}
	if len(parsed.Chart.Result) == 0 {
		return nil, 0, fmt.Errorf("chart response contains no result")
	}

	result := parsed.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, result.Meta.RegularMarketPrice, nil
	}
	quote := result.Indicators.Quote[0]

	n := len(quote.Close)
	candles := make([]Candle, 0, n)
	for i := 0; i < n; i++ {
		if i >= len(quote.High) || i >= len(quote.Low) {
			break
		}
		h, l, cl := quote.High[i], quote.Low[i], quote.Close[i]
		if h == nil || l == nil || cl == nil {
			continue
		}
		if math.IsNaN(*h) || math.IsNaN(*l) || math.IsNaN(*cl) {
			continue
		}
		candles = append(candles, Candle{High: *h, Low: *l, Close: *cl})
	}
	return candles, result.Meta.RegularMarketPrice, nil
}
