// Package yahoo wraps the go-yfinance library as the market-data
// provider for historical closes, current prices and company names.
package yahoo

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/wnjoon/go-yfinance/pkg/models"
	"github.com/wnjoon/go-yfinance/pkg/ticker"
)

// Client fetches market data from Yahoo Finance
type Client struct {
	log zerolog.Logger
}

// NewClient creates a new Yahoo Finance client
func NewClient(log zerolog.Logger) *Client {
	return &Client{
		log: log.With().Str("client", "yahoo").Logger(),
	}
}

// NormalizeSymbol trims and uppercases a user-supplied ticker symbol.
// No format-level validation is applied: whether a symbol exists is
// decided by whether Yahoo returns data for it.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// GetHistoricalPrices fetches daily OHLCV bars for the given period.
// Supported periods: 1d, 5d, 1mo, 3mo, 6mo, 1y, 2y, 5y, 10y, ytd, max.
func (c *Client) GetHistoricalPrices(symbol string, period string) ([]HistoricalPrice, error) {
	yfSymbol := NormalizeSymbol(symbol)

	t, err := ticker.New(yfSymbol)
	if err != nil {
		return nil, fmt.Errorf("failed to create ticker: %w", err)
	}
	defer t.Close()

	params := models.HistoryParams{
		Period:     period,
		Interval:   "1d",
		AutoAdjust: true,
	}

	bars, err := t.History(params)
	if err != nil {
		return nil, fmt.Errorf("failed to get historical prices: %w", err)
	}

	prices := make([]HistoricalPrice, 0, len(bars))
	for _, bar := range bars {
		prices = append(prices, HistoricalPrice{
			Date:     bar.Date,
			Open:     bar.Open,
			High:     bar.High,
			Low:      bar.Low,
			Close:    bar.Close,
			Volume:   int64(bar.Volume),
			AdjClose: bar.AdjClose,
		})
	}

	c.log.Info().
		Str("symbol", yfSymbol).
		Str("period", period).
		Int("count", len(prices)).
		Msg("Fetched historical prices")

	return prices, nil
}

// GetQuoteName gets the security's display name (longName, falling
// back to shortName). Returns nil when Yahoo reports no name.
func (c *Client) GetQuoteName(symbol string) (*string, error) {
	yfSymbol := NormalizeSymbol(symbol)

	t, err := ticker.New(yfSymbol)
	if err != nil {
		return nil, fmt.Errorf("failed to create ticker: %w", err)
	}
	defer t.Close()

	info, err := t.Info()
	if err != nil {
		return nil, fmt.Errorf("failed to get info: %w", err)
	}

	if info.LongName != "" {
		longName := info.LongName
		return &longName, nil
	}
	if info.ShortName != "" {
		shortName := info.ShortName
		return &shortName, nil
	}

	return nil, nil
}

// GetCurrentPrice gets the current price for a symbol with retries
func (c *Client) GetCurrentPrice(symbol string, maxRetries int) (*float64, error) {
	if maxRetries == 0 {
		maxRetries = 3 // default
	}

	yfSymbol := NormalizeSymbol(symbol)

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		t, err := ticker.New(yfSymbol)
		if err != nil {
			lastErr = fmt.Errorf("failed to create ticker: %w", err)
			if attempt < maxRetries-1 {
				waitTime := time.Duration(1<<uint(attempt)) * time.Second
				c.log.Warn().Err(err).Str("symbol", yfSymbol).Int("attempt", attempt+1).Dur("wait", waitTime).Msg("Retrying")
				time.Sleep(waitTime)
				continue
			}
			return nil, lastErr
		}
		defer t.Close()

		// Try Quote first (faster)
		quote, err := t.Quote()
		if err == nil && quote != nil && quote.RegularMarketPrice > 0 {
			price := quote.RegularMarketPrice
			return &price, nil
		}

		// Fallback to Info
		info, err := t.Info()
		if err == nil && info != nil {
			if info.CurrentPrice > 0 {
				price := info.CurrentPrice
				return &price, nil
			}
			if info.RegularMarketPreviousClose > 0 {
				price := info.RegularMarketPreviousClose
				return &price, nil
			}
		}

		if attempt < maxRetries-1 {
			waitTime := time.Duration(1<<uint(attempt)) * time.Second
			c.log.Warn().Str("symbol", yfSymbol).Int("attempt", attempt+1).Dur("wait", waitTime).Msg("Price was invalid, retrying")
			time.Sleep(waitTime)
			continue
		}

		lastErr = fmt.Errorf("failed to get valid price after %d attempts", maxRetries)
	}

	return nil, lastErr
}
