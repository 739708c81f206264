package yahoo

import (
	"strings"

	"github.com/adityavk/nsescreener/pkg/config"
	"github.com/adityavk/nsescreener/pkg/httputil"
	"github.com/adityavk/nsescreener/pkg/logger"
)

// Client talks to the Yahoo Finance chart and quote endpoints. It
// implements contracts.MarketDataProvider for NSE symbols, which carry
// an exchange suffix on Yahoo (RELIANCE -> RELIANCE.NS).
type Client struct {
	httpClient   *httputil.Client
	logger       *logger.Logger
	chartBaseURL string
	quoteBaseURL string
	suffix       string
}

// NewClient creates a new Yahoo Finance client
func NewClient(httpClient *httputil.Client, cfg *config.Config, log *logger.Logger) *Client {
	return &Client{
		httpClient:   httpClient,
		logger:       log,
		chartBaseURL: strings.TrimRight(cfg.Yahoo.ChartBaseURL, "/"),
		quoteBaseURL: strings.TrimRight(cfg.Yahoo.QuoteBaseURL, "/"),
		suffix:       cfg.Yahoo.SymbolSuffix,
	}
}

// providerSymbol maps an NSE ticker to its Yahoo symbol
func (c *Client) providerSymbol(ticker string) string {
	if strings.HasSuffix(ticker, c.suffix) {
		return ticker
	}
	return ticker + c.suffix
}
