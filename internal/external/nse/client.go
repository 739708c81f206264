package nse

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/adityavk/nsescreener/internal/contracts"
	"github.com/adityavk/nsescreener/pkg/config"
	"github.com/adityavk/nsescreener/pkg/httputil"
	"github.com/adityavk/nsescreener/pkg/logger"
)

// Client downloads the NSE equity master list. All NSE archive calls
// go through this client.
type Client struct {
	httpClient    *httputil.Client
	logger        *logger.Logger
	equityListURL string
	bhavDataURL   string
}

// NewClient creates a new NSE archive client
func NewClient(httpClient *httputil.Client, cfg *config.Config, log *logger.Logger) *Client {
	return &Client{
		httpClient:    httpClient,
		logger:        log,
		equityListURL: cfg.NSE.EquityListURL,
		bhavDataURL:   cfg.NSE.BhavDataURL,
	}
}

// FetchMasterList downloads and parses the equity master list. The
// primary equity-list CSV is tried first; the daily bhav dump is the
// fallback since it carries the same symbol/series columns.
func (c *Client) FetchMasterList(ctx context.Context) ([]contracts.Symbol, error) {
	symbols, err := c.fetchCSV(ctx, c.equityListURL)
	if err == nil && len(symbols) > 0 {
		return symbols, nil
	}
	if err != nil {
		c.logger.WithError(err).Warn("Primary equity list fetch failed, trying bhav data")
	}

	symbols, err = c.fetchCSV(ctx, c.bhavDataURL)
	if err != nil {
		return nil, fmt.Errorf("fetch master list: %w: %v", contracts.ErrDataUnavailable, err)
	}
	if len(symbols) == 0 {
		return nil, fmt.Errorf("fetch master list: %w: no rows", contracts.ErrDataUnavailable)
	}

	return symbols, nil
}

// fetchCSV downloads one CSV source and parses its rows
func (c *Client) fetchCSV(ctx context.Context, url string) ([]contracts.Symbol, error) {
	resp, err := c.httpClient.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body failed: %w", err)
	}

	symbols, err := ParseMasterCSV(body)
	if err != nil {
		return nil, fmt.Errorf("parse master CSV: %w", err)
	}

	c.logger.WithFields(map[string]interface{}{
		"url":   url,
		"count": len(symbols),
	}).Info("Fetched symbol master list")

	return symbols, nil
}
