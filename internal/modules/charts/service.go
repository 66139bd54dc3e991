// Package charts provides services for generating chart data from
// historical prices and forecast output.
package charts

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/hoshiyanatsu/stock-prediction/internal/domain"
	"github.com/hoshiyanatsu/stock-prediction/pkg/formulas"
)

const smaWindow = 50

// HistoryReader is the price access the chart service needs
type HistoryReader interface {
	GetDailyPrices(symbol string) ([]domain.PricePoint, error)
}

// Service provides chart data operations
type Service struct {
	history HistoryReader
	log     zerolog.Logger
}

// NewService creates a new charts service
func NewService(history HistoryReader, log zerolog.Logger) *Service {
	return &Service{
		history: history,
		log:     log.With().Str("service", "charts").Logger(),
	}
}

// BuildForecastChart assembles the chart overlay for a completed
// forecast run. The band covers only dates strictly after the last
// actual date; the historical region has no band.
func BuildForecastChart(points []domain.ForecastPoint, summary []domain.CheckpointEntry) *ForecastChart {
	chart := &ForecastChart{}

	maxValue := 0.0
	var actualCloses []float64
	var actualTimes []string

	for _, p := range points {
		timeStr := p.Date.Format("2006-01-02")

		if p.Actual != nil {
			chart.Actual = append(chart.Actual, ChartPoint{Time: timeStr, Value: *p.Actual})
			actualCloses = append(actualCloses, *p.Actual)
			actualTimes = append(actualTimes, timeStr)
			maxValue = math.Max(maxValue, *p.Actual)
		}

		if p.IsForecast {
			chart.Predicted = append(chart.Predicted, ChartPoint{Time: timeStr, Value: p.Predicted})
			chart.Band = append(chart.Band, BandPoint{Time: timeStr, Lower: p.Lower, Upper: p.Upper})
		}
		maxValue = math.Max(maxValue, p.Predicted)
	}

	// 50-day moving average over the actual region only
	if sma := formulas.SMASeries(actualCloses, smaWindow); sma != nil {
		for i, v := range sma {
			if math.IsNaN(v) {
				continue
			}
			chart.SMA = append(chart.SMA, ChartPoint{Time: actualTimes[i], Value: v})
		}
	}

	for _, entry := range summary {
		chart.Markers = append(chart.Markers, Marker{
			Time:  entry.Date,
			Label: entry.Label,
			Value: entry.PredictedPrice,
		})
	}

	// Y axis starts at zero and leaves 20% headroom above the peak
	chart.YAxis = YAxisRange{Min: 0, Max: maxValue * 1.2}

	return chart
}

// GetSecurityChart returns historical close prices for a symbol within
// the requested date range.
func (s *Service) GetSecurityChart(symbol string, dateRange string) ([]ChartPoint, error) {
	if symbol == "" {
		return nil, fmt.Errorf("%w: symbol cannot be empty", domain.ErrInvalidInput)
	}

	prices, err := s.history.GetDailyPrices(symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to get prices: %w", err)
	}

	startDate := parseDateRange(dateRange)

	var points []ChartPoint
	for _, p := range prices {
		dateStr := p.Date.Format("2006-01-02")
		if startDate != "" && dateStr < startDate {
			continue
		}
		points = append(points, ChartPoint{Time: dateStr, Value: p.Close})
	}

	return points, nil
}

// parseDateRange converts a range string to a start date
func parseDateRange(rangeStr string) string {
	if rangeStr == "all" || rangeStr == "" {
		return ""
	}

	now := time.Now()
	var startDate time.Time

	switch rangeStr {
	case "1M":
		startDate = now.AddDate(0, -1, 0)
	case "3M":
		startDate = now.AddDate(0, -3, 0)
	case "6M":
		startDate = now.AddDate(0, -6, 0)
	case "1Y":
		startDate = now.AddDate(-1, 0, 0)
	case "5Y":
		startDate = now.AddDate(-5, 0, 0)
	default:
		return ""
	}

	return startDate.Format("2006-01-02")
}
