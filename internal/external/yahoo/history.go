package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/adityavk/nsescreener/internal/contracts"
)

// chartResponse mirrors the v8 chart API payload, restricted to the
// fields the screener reads
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []float64 `json:"open"`
					High   []float64 `json:"high"`
					Low    []float64 `json:"low"`
					Close  []float64 `json:"close"`
					Volume []int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// BulkHistory fetches daily bars for each symbol in turn. A symbol that
// errors or comes back empty is left out of the result map; only a
// cancelled context fails the whole call. Pacing between calls is the
// HTTP client's rate limiter, not this loop.
func (c *Client) BulkHistory(ctx context.Context, symbols []string, trailingDays int) (map[string][]contracts.Bar, error) {
	result := make(map[string][]contracts.Bar, len(symbols))

	for _, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		bars, err := c.History(ctx, symbol, trailingDays)
		if err != nil {
			c.logger.WithField("symbol", symbol).WithError(err).Debug("History fetch failed, skipping symbol")
			continue
		}
		if len(bars) == 0 {
			continue
		}

		result[symbol] = bars
	}

	c.logger.WithFields(map[string]interface{}{
		"requested": len(symbols),
		"fetched":   len(result),
	}).Info("Bulk history fetch completed")

	return result, nil
}

// History fetches up to trailingDays of daily bars for one symbol.
// Rows with a zero close are dropped; the exchange publishes those for
// holidays and halted sessions.
func (c *Client) History(ctx context.Context, symbol string, trailingDays int) ([]contracts.Bar, error) {
	// Ask for extra calendar days so weekends and holidays still leave
	// enough trading sessions
	rangeDays := trailingDays*2 + 5

	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=%dd",
		c.chartBaseURL, url.PathEscape(c.providerSymbol(symbol)), rangeDays)

	resp, err := c.httpClient.Get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("chart request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, contracts.ErrDataUnavailable
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var payload chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode chart response: %w", err)
	}

	if payload.Chart.Error != nil {
		return nil, fmt.Errorf("chart API error: %s", payload.Chart.Error.Code)
	}
	if len(payload.Chart.Result) == 0 || len(payload.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, contracts.ErrDataUnavailable
	}

	res := payload.Chart.Result[0]
	quote := res.Indicators.Quote[0]

	bars := make([]contracts.Bar, 0, len(res.Timestamp))
	for i, ts := range res.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == 0 {
			continue
		}

		bar := contracts.Bar{
			Date:  time.Unix(ts, 0).UTC(),
			Close: quote.Close[i],
		}
		if i < len(quote.Open) {
			bar.Open = quote.Open[i]
		}
		if i < len(quote.High) {
			bar.High = quote.High[i]
		}
		if i < len(quote.Low) {
			bar.Low = quote.Low[i]
		}
		if i < len(quote.Volume) {
			bar.Volume = quote.Volume[i]
		}

		bars = append(bars, bar)
	}

	if len(bars) > trailingDays {
		bars = bars[len(bars)-trailingDays:]
	}

	return bars, nil
}
