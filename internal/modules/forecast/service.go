// Package forecast implements the price forecasting pipeline: fetch
// history, stabilize, fit/predict, post-process and summarize at fixed
// future checkpoints.
package forecast

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hoshiyanatsu/stock-prediction/internal/cache"
	"github.com/hoshiyanatsu/stock-prediction/internal/clients/yahoo"
	"github.com/hoshiyanatsu/stock-prediction/internal/domain"
	"github.com/hoshiyanatsu/stock-prediction/pkg/formulas"
)

const (
	// DefaultHorizonDays is roughly five years of daily forecast
	DefaultHorizonDays = 1825

	// fetchPeriod is the training window requested from the provider
	fetchPeriod = "5y"

	// freshness window for the raw-fetch memoization
	historyMaxAge = time.Hour

	// CacheTTL bounds the fit/predict memoization
	CacheTTL = time.Hour

	// emaWindow is the long-term trend reference period
	emaWindow = 200
)

// MarketDataClient is the provider boundary the service depends on
type MarketDataClient interface {
	GetHistoricalPrices(symbol string, period string) ([]yahoo.HistoricalPrice, error)
	GetQuoteName(symbol string) (*string, error)
	GetCurrentPrice(symbol string, maxRetries int) (*float64, error)
}

// HistoryStore is the price-cache boundary the service depends on
type HistoryStore interface {
	GetSecurity(symbol string) (*domain.Security, error)
	GetDailyPrices(symbol string) ([]domain.PricePoint, error)
	ReplacePrices(symbol, name string, prices []domain.PricePoint, syncedAt time.Time) error
	IsFresh(symbol string, maxAge time.Duration, now time.Time) (bool, error)
}

// Result is the outcome of one forecast run.
//
// CurrentPrice is the last actual close of the training series and is
// the baseline every summary change rate is computed against.
// LivePrice is the provider's latest quote, echoed for display only;
// it may drift from CurrentPrice intraday and never feeds the summary.
type Result struct {
	RunID                string                   `json:"run_id"`
	Symbol               string                   `json:"symbol"`
	CompanyName          string                   `json:"company_name"`
	CurrentPrice         float64                  `json:"current_price"`
	LivePrice            *float64                 `json:"live_price,omitempty"`
	EMA200               *float64                 `json:"ema_200,omitempty"`
	LastActualDate       time.Time                `json:"last_actual_date"`
	AnnualizedVolatility float64                  `json:"annualized_volatility"`
	Points               []domain.ForecastPoint   `json:"points"`
	Summary              []domain.CheckpointEntry `json:"summary"`
}

// Service runs the forecasting pipeline for a symbol
type Service struct {
	client      MarketDataClient
	store       HistoryStore
	resultCache *cache.Store
	newModel    func() Model
	horizonDays int
	log         zerolog.Logger
	now         func() time.Time
}

// NewService creates a forecast service with the default model and horizon
func NewService(client MarketDataClient, store HistoryStore, resultCache *cache.Store, log zerolog.Logger) *Service {
	return &Service{
		client:      client,
		store:       store,
		resultCache: resultCache,
		newModel:    func() Model { return NewSeasonalTrendModel() },
		horizonDays: DefaultHorizonDays,
		log:         log.With().Str("service", "forecast").Logger(),
		now:         time.Now,
	}
}

// Run executes the full pipeline for a ticker symbol. Results are
// memoized per symbol for CacheTTL; within that window the model is
// not re-fitted.
func (s *Service) Run(symbol string) (*Result, error) {
	symbol = yahoo.NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, fmt.Errorf("%w: symbol is required", domain.ErrInvalidInput)
	}

	if cached, ok := s.resultCache.Get(symbol); ok {
		if res, ok := cached.(*Result); ok {
			s.log.Debug().Str("symbol", symbol).Str("run_id", res.RunID).Msg("Serving cached forecast")
			return res, nil
		}
	}

	series, name, err := s.loadSeries(symbol)
	if err != nil {
		return nil, err
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("%w: no price data for %s", domain.ErrDataUnavailable, symbol)
	}

	lastActual := series[len(series)-1]
	currentPrice := lastActual.Close

	closes := make([]float64, len(series))
	dates := make([]time.Time, len(series))
	for i, p := range series {
		closes[i] = p.Close
		dates[i] = p.Date
	}

	stabilized, err := Stabilize(closes)
	if err != nil {
		return nil, err
	}

	model := s.newModel()
	if err := model.Fit(dates, stabilized); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrForecast, err)
	}

	raw, err := model.Predict(s.horizonDays)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrForecast, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: model returned no predictions", domain.ErrForecast)
	}

	points := PostProcess(series, raw)

	summary, err := Summarize(points, lastActual.Date, currentPrice)
	if err != nil {
		return nil, err
	}

	// Best effort: a missing quote never fails the run
	livePrice, err := s.client.GetCurrentPrice(symbol, 0)
	if err != nil {
		s.log.Debug().Err(err).Str("symbol", symbol).Msg("Live quote unavailable")
	}

	result := &Result{
		RunID:                uuid.New().String(),
		Symbol:               symbol,
		CompanyName:          name,
		CurrentPrice:         currentPrice,
		LivePrice:            livePrice,
		EMA200:               formulas.CalculateEMA(closes, emaWindow),
		LastActualDate:       lastActual.Date,
		AnnualizedVolatility: formulas.AnnualizedVolatility(formulas.CalculateReturns(closes)),
		Points:               points,
		Summary:              summary,
	}

	s.resultCache.Set(symbol, result)

	s.log.Info().
		Str("symbol", symbol).
		Str("run_id", result.RunID).
		Int("training_points", len(series)).
		Int("horizon_days", s.horizonDays).
		Float64("current_price", currentPrice).
		Msg("Forecast run completed")

	return result, nil
}

// loadSeries returns the training series, serving from the SQLite
// cache when the symbol was synced within historyMaxAge and refetching
// from the provider otherwise.
func (s *Service) loadSeries(symbol string) ([]domain.PricePoint, string, error) {
	fresh, err := s.store.IsFresh(symbol, historyMaxAge, s.now())
	if err != nil {
		return nil, "", fmt.Errorf("failed to check history freshness: %w", err)
	}

	if fresh {
		sec, err := s.store.GetSecurity(symbol)
		if err != nil {
			return nil, "", err
		}
		prices, err := s.store.GetDailyPrices(symbol)
		if err != nil {
			return nil, "", err
		}
		if len(prices) > 0 {
			name := symbol
			if sec != nil && sec.Name != "" {
				name = sec.Name
			}
			s.log.Debug().Str("symbol", symbol).Int("count", len(prices)).Msg("Serving prices from cache")
			return prices, name, nil
		}
	}

	bars, err := s.client.GetHistoricalPrices(symbol, fetchPeriod)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", domain.ErrDataUnavailable, err)
	}
	if len(bars) == 0 {
		return nil, "", fmt.Errorf("%w: provider returned no data for %s", domain.ErrDataUnavailable, symbol)
	}

	series := normalizeSeries(bars)

	name := symbol
	if quoteName, err := s.client.GetQuoteName(symbol); err == nil && quoteName != nil && *quoteName != "" {
		name = *quoteName
	}

	if err := s.store.ReplacePrices(symbol, name, series, s.now()); err != nil {
		// Cache write failure is not fatal for the run
		s.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to cache price series")
	}

	return series, name, nil
}

// normalizeSeries collapses provider bars to one close per calendar
// date in chronological order. Duplicate dates keep the latest bar.
func normalizeSeries(bars []yahoo.HistoricalPrice) []domain.PricePoint {
	series := make([]domain.PricePoint, 0, len(bars))
	for _, bar := range bars {
		d := bar.Date.UTC()
		date := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)

		point := domain.PricePoint{Date: date, Close: bar.Close}
		if n := len(series); n > 0 && series[n-1].Date.Equal(date) {
			series[n-1] = point
			continue
		}
		series = append(series, point)
	}
	return series
}
