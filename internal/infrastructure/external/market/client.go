// Package market fetches spot prices from the CoinGecko public API.
// No API key is required for the simple price endpoint.
package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ayaka-hub/ayaka-learning-bot/internal/domain/shared"
)

const defaultBaseURL = "https://api.coingecko.com"

// ErrUnknownSymbol - CoinGecko has no listing for the requested coin.
var ErrUnknownSymbol = errors.New("unknown coin symbol")

// tickerAliases maps common tickers to CoinGecko coin ids. Anything not
// listed here is passed through lowercased, so full ids like "solana"
// work directly.
var tickerAliases = map[string]string{
	"btc":   "bitcoin",
	"eth":   "ethereum",
	"sol":   "solana",
	"bnb":   "binancecoin",
	"xrp":   "ripple",
	"ada":   "cardano",
	"doge":  "dogecoin",
	"dot":   "polkadot",
	"matic": "matic-network",
	"ltc":   "litecoin",
}

// ClientConfig contains configuration for the price client.
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
	Logger  *slog.Logger
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		BaseURL: defaultBaseURL,
		Timeout: 5 * time.Second,
	}
}

// Quote is a spot price with its 24h movement.
type Quote struct {
	Symbol    string
	CoinID    string
	PriceUSD  float64
	Change24h float64
}

// Format renders the quote the way the bot posts it to chat.
func (q Quote) Format() string {
	emoji := "🟢"
	if q.Change24h < 0 {
		emoji = "🔴"
	}
	return fmt.Sprintf("`%s`: $%s %s %.2f%%", strings.ToUpper(q.Symbol), formatPrice(q.PriceUSD), emoji, q.Change24h)
}

// formatPrice groups the integer part with commas, two decimals.
func formatPrice(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	dot := strings.IndexByte(s, '.')
	intPart, frac := s[:dot], s[dot:]

	neg := strings.HasPrefix(intPart, "-")
	if neg {
		intPart = intPart[1:]
	}

	var sb strings.Builder
	for i, d := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(d)
	}
	out := sb.String() + frac
	if neg {
		out = "-" + out
	}
	return out
}

// Client is the CoinGecko price client.
type Client struct {
	config     ClientConfig
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new price client.
func NewClient(config ClientConfig) *Client {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger: config.Logger,
	}
}

// CoinID resolves a user-typed ticker to a CoinGecko coin id.
func CoinID(symbol string) string {
	key := strings.ToLower(strings.TrimSpace(symbol))
	if id, ok := tickerAliases[key]; ok {
		return id
	}
	return key
}

// GetCryptoPrice fetches the USD spot price and 24h change for a coin.
func (c *Client) GetCryptoPrice(ctx context.Context, symbol string) (*Quote, error) {
	coinID := CoinID(symbol)
	if coinID == "" {
		return nil, fmt.Errorf("empty symbol: %w", shared.ErrValidation)
	}

	params := url.Values{}
	params.Set("ids", coinID)
	params.Set("vs_currencies", "usd")
	params.Set("include_24hr_change", "true")
	fullURL := c.config.BaseURL + "/api/v3/simple/price?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch price: %v: %w", err, shared.ErrExternalService)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", shared.ErrExternalService)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("coingecko request failed", "status", resp.StatusCode, "coin", coinID)
		return nil, fmt.Errorf("coingecko status %d: %w", resp.StatusCode, shared.ErrExternalService)
	}

	var payload map[string]struct {
		USD       *float64 `json:"usd"`
		Change24h float64  `json:"usd_24h_change"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("parse response: %w", shared.ErrExternalService)
	}

	coin, ok := payload[coinID]
	if !ok || coin.USD == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}

	return &Quote{
		Symbol:    symbol,
		CoinID:    coinID,
		PriceUSD:  *coin.USD,
		Change24h: coin.Change24h,
	}, nil
}
