package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/adityavk/nsescreener/internal/contracts"
)

// quoteSummaryResponse mirrors the quoteSummary API payload for the
// price module
type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			Price struct {
				MarketCap struct {
					Raw float64 `json:"raw"`
				} `json:"marketCap"`
			} `json:"price"`
		} `json:"result"`
		Error *struct {
			Code string `json:"code"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

// Metadata fetches valuation figures for one symbol. The quoteSummary
// JSON API is tried first; when it is blocked or returns nothing the
// quote page HTML is scraped as a fallback. MarketCap stays nil when
// neither source yields a figure.
func (c *Client) Metadata(ctx context.Context, symbol string) (*contracts.SymbolMeta, error) {
	meta := &contracts.SymbolMeta{Symbol: symbol}

	mcap, err := c.marketCapFromAPI(ctx, symbol)
	if err != nil {
		c.logger.WithField("symbol", symbol).WithError(err).Debug("quoteSummary fetch failed, trying HTML")
		mcap, err = c.marketCapFromHTML(ctx, symbol)
		if err != nil {
			return nil, fmt.Errorf("metadata for %s: %w", symbol, err)
		}
	}

	if mcap > 0 {
		meta.MarketCap = &mcap
	}

	return meta, nil
}

func (c *Client) marketCapFromAPI(ctx context.Context, symbol string) (float64, error) {
	endpoint := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=price",
		c.quoteBaseURL, url.PathEscape(c.providerSymbol(symbol)))

	resp, err := c.httpClient.Get(ctx, endpoint)
	if err != nil {
		return 0, fmt.Errorf("quoteSummary request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var payload quoteSummaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("decode quoteSummary response: %w", err)
	}

	if payload.QuoteSummary.Error != nil {
		return 0, fmt.Errorf("quoteSummary API error: %s", payload.QuoteSummary.Error.Code)
	}
	if len(payload.QuoteSummary.Result) == 0 {
		return 0, contracts.ErrDataUnavailable
	}

	return payload.QuoteSummary.Result[0].Price.MarketCap.Raw, nil
}

// marketCapFromHTML scrapes the market cap off the quote page. The page
// labels the figure with a data-field attribute, so the selector
// survives layout changes better than positional scraping would.
func (c *Client) marketCapFromHTML(ctx context.Context, symbol string) (float64, error) {
	endpoint := fmt.Sprintf("https://finance.yahoo.com/quote/%s", url.PathEscape(c.providerSymbol(symbol)))

	resp, err := c.httpClient.Get(ctx, endpoint)
	if err != nil {
		return 0, fmt.Errorf("quote page request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("parse quote page: %w", err)
	}

	text := doc.Find(`[data-field="marketCap"]`).First().Text()
	if text == "" {
		text = doc.Find(`td[data-test="MARKET_CAP-value"]`).First().Text()
	}
	if text == "" {
		return 0, contracts.ErrDataUnavailable
	}

	mcap, err := parseAbbreviatedNumber(text)
	if err != nil {
		return 0, fmt.Errorf("parse market cap %q: %w", text, err)
	}

	return mcap, nil
}

// parseAbbreviatedNumber converts display values like "1.23T", "456.7B"
// or "89,120,000" to a plain float
func parseAbbreviatedNumber(s string) (float64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" || s == "N/A" || s == "--" {
		return 0, fmt.Errorf("empty value")
	}

	multiplier := 1.0
	switch s[len(s)-1] {
	case 'K', 'k':
		multiplier = 1e3
		s = s[:len(s)-1]
	case 'M':
		multiplier = 1e6
		s = s[:len(s)-1]
	case 'B':
		multiplier = 1e9
		s = s[:len(s)-1]
	case 'T':
		multiplier = 1e12
		s = s[:len(s)-1]
	}

	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}

	return value * multiplier, nil
}
