package forecast

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoshiyanatsu/stock-prediction/internal/cache"
	"github.com/hoshiyanatsu/stock-prediction/internal/clients/yahoo"
	"github.com/hoshiyanatsu/stock-prediction/internal/domain"
)

// stubClient is a canned market-data provider
type stubClient struct {
	bars      []yahoo.HistoricalPrice
	err       error
	name      string
	live      *float64
	histCalls int
}

func (c *stubClient) GetHistoricalPrices(symbol, period string) ([]yahoo.HistoricalPrice, error) {
	c.histCalls++
	return c.bars, c.err
}

func (c *stubClient) GetQuoteName(symbol string) (*string, error) {
	if c.name == "" {
		return nil, nil
	}
	return &c.name, nil
}

func (c *stubClient) GetCurrentPrice(symbol string, maxRetries int) (*float64, error) {
	if c.live == nil {
		return nil, errors.New("no quote")
	}
	return c.live, nil
}

// stubStore is an in-memory HistoryStore
type stubStore struct {
	security *domain.Security
	prices   []domain.PricePoint
	fresh    bool
}

func (s *stubStore) GetSecurity(symbol string) (*domain.Security, error) {
	return s.security, nil
}

func (s *stubStore) GetDailyPrices(symbol string) ([]domain.PricePoint, error) {
	return s.prices, nil
}

func (s *stubStore) ReplacePrices(symbol, name string, prices []domain.PricePoint, syncedAt time.Time) error {
	s.security = &domain.Security{Symbol: symbol, Name: name, LastUpdated: syncedAt}
	s.prices = prices
	return nil
}

func (s *stubStore) IsFresh(symbol string, maxAge time.Duration, now time.Time) (bool, error) {
	return s.fresh, nil
}

// stubModel lets tests force fit/predict failures
type stubModel struct {
	fitErr     error
	predictErr error
	raw        []Prediction
}

func (m *stubModel) Fit(ts []time.Time, y []float64) error { return m.fitErr }

func (m *stubModel) Predict(horizonDays int) ([]Prediction, error) {
	return m.raw, m.predictErr
}

func testBars(n int) []yahoo.HistoricalPrice {
	start := time.Date(2022, 1, 3, 14, 30, 0, 0, time.UTC)
	bars := make([]yahoo.HistoricalPrice, n)
	for i := 0; i < n; i++ {
		bars[i] = yahoo.HistoricalPrice{
			Date:  start.AddDate(0, 0, i),
			Close: 100 + 0.1*float64(i),
		}
	}
	return bars
}

func newTestService(client MarketDataClient, store HistoryStore) *Service {
	log := zerolog.New(nil).Level(zerolog.Disabled)
	svc := NewService(client, store, cache.New(time.Hour), log)
	svc.horizonDays = 40 // keep tests fast
	return svc
}

func TestRun_EmptySymbol(t *testing.T) {
	client := &stubClient{}
	svc := newTestService(client, &stubStore{})

	_, err := svc.Run("   ")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 0, client.histCalls, "no external call for blank symbol")
}

func TestRun_SymbolNotFound(t *testing.T) {
	client := &stubClient{bars: nil}
	modelBuilt := false

	svc := newTestService(client, &stubStore{})
	svc.newModel = func() Model {
		modelBuilt = true
		return NewSeasonalTrendModel()
	}

	_, err := svc.Run("NOPE")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDataUnavailable)
	assert.False(t, modelBuilt, "no forecast attempted for empty provider result")
}

func TestRun_ProviderError(t *testing.T) {
	client := &stubClient{err: errors.New("connection refused")}
	svc := newTestService(client, &stubStore{})

	_, err := svc.Run("AAPL")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDataUnavailable)
}

func TestRun_Success(t *testing.T) {
	client := &stubClient{bars: testBars(300), name: "Apple Inc."}
	store := &stubStore{}
	svc := newTestService(client, store)

	res, err := svc.Run("aapl")
	require.NoError(t, err)

	assert.Equal(t, "AAPL", res.Symbol)
	assert.Equal(t, "Apple Inc.", res.CompanyName)
	assert.NotEmpty(t, res.RunID)
	assert.InDelta(t, 100+0.1*299, res.CurrentPrice, 1e-9)

	// Points cover history plus horizon
	assert.Len(t, res.Points, 300+40)
	for _, p := range res.Points {
		assert.GreaterOrEqual(t, p.Predicted, 0.0)
		assert.GreaterOrEqual(t, p.Lower, 0.0)
		assert.GreaterOrEqual(t, p.Upper, 0.0)
	}

	// 40-day horizon reaches only the 1-month checkpoint
	require.Len(t, res.Summary, 1)
	assert.Equal(t, "1 month", res.Summary[0].Label)

	// Fetched series landed in the store
	assert.NotEmpty(t, store.prices)
	require.NotNil(t, store.security)
	assert.Equal(t, "Apple Inc.", store.security.Name)

	// 300 rising closes give a defined 200-day EMA below the last close
	require.NotNil(t, res.EMA200)
	assert.Greater(t, *res.EMA200, 100.0)
	assert.Less(t, *res.EMA200, res.CurrentPrice)
}

func TestRun_LiveQuoteEchoedNotUsedAsBaseline(t *testing.T) {
	live := 250.0
	client := &stubClient{bars: testBars(300), live: &live}
	svc := newTestService(client, &stubStore{})

	res, err := svc.Run("AAPL")
	require.NoError(t, err)

	require.NotNil(t, res.LivePrice)
	assert.Equal(t, 250.0, *res.LivePrice)

	// Change rates stay anchored to the last actual close
	assert.InDelta(t, 100+0.1*299, res.CurrentPrice, 1e-9)
	require.NotEmpty(t, res.Summary)
	expected := (res.Summary[0].PredictedPrice - res.CurrentPrice) / res.CurrentPrice * 100
	assert.InDelta(t, expected, res.Summary[0].ChangeRatePct, 1e-9)
}

func TestRun_MissingLiveQuoteIsNotFatal(t *testing.T) {
	client := &stubClient{bars: testBars(300)}
	svc := newTestService(client, &stubStore{})

	res, err := svc.Run("AAPL")
	require.NoError(t, err)
	assert.Nil(t, res.LivePrice)
}

func TestRun_ResultIsMemoized(t *testing.T) {
	client := &stubClient{bars: testBars(300)}
	svc := newTestService(client, &stubStore{})

	first, err := svc.Run("AAPL")
	require.NoError(t, err)

	second, err := svc.Run("AAPL")
	require.NoError(t, err)

	assert.Equal(t, first.RunID, second.RunID, "second run served from cache")
	assert.Equal(t, 1, client.histCalls)
}

func TestRun_ServesFreshSeriesFromStore(t *testing.T) {
	series := normalizeSeries(testBars(300))
	store := &stubStore{
		fresh:    true,
		prices:   series,
		security: &domain.Security{Symbol: "AAPL", Name: "Apple Inc."},
	}
	client := &stubClient{}
	svc := newTestService(client, store)

	res, err := svc.Run("AAPL")
	require.NoError(t, err)
	assert.Equal(t, "Apple Inc.", res.CompanyName)
	assert.Equal(t, 0, client.histCalls, "fresh store short-circuits the provider")
}

func TestRun_ModelFitFailure(t *testing.T) {
	client := &stubClient{bars: testBars(300)}
	svc := newTestService(client, &stubStore{})
	svc.newModel = func() Model {
		return &stubModel{fitErr: errors.New("singular system")}
	}

	_, err := svc.Run("AAPL")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrForecast)
}

func TestRun_ModelDegenerateOutput(t *testing.T) {
	client := &stubClient{bars: testBars(300)}
	svc := newTestService(client, &stubStore{})
	svc.newModel = func() Model {
		return &stubModel{raw: nil}
	}

	_, err := svc.Run("AAPL")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrForecast)
}

func TestNormalizeSeries_CollapsesDuplicateDates(t *testing.T) {
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := []yahoo.HistoricalPrice{
		{Date: day.Add(14 * time.Hour), Close: 100},
		{Date: day.Add(20 * time.Hour), Close: 101},
		{Date: day.AddDate(0, 0, 1), Close: 102},
	}

	series := normalizeSeries(bars)
	require.Len(t, series, 2)
	assert.Equal(t, 101.0, series[0].Close, "latest bar wins for a duplicate date")
	assert.Equal(t, day, series[0].Date)
	assert.Equal(t, 102.0, series[1].Close)
}
