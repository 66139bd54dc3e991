package forecast

import (
	"fmt"
	"time"

	"github.com/hoshiyanatsu/stock-prediction/internal/domain"
)

// checkpoint is one fixed future horizon reported in the summary
type checkpoint struct {
	Label      string
	OffsetDays int
}

// checkpoints in ascending horizon order. Summary entries follow this
// order, never discovery order.
var checkpoints = []checkpoint{
	{"1 month", 30},
	{"3 months", 90},
	{"6 months", 180},
	{"1 year", 365},
	{"3 years", 1095},
	{"5 years", 1825},
}

// Summarize extracts predicted price, bounds and percent change at the
// fixed future checkpoints. Lookup is by exact calendar date: when the
// forecast grid has no point at lastActualDate + offset, that
// checkpoint is silently omitted.
func Summarize(points []domain.ForecastPoint, lastActualDate time.Time, currentPrice float64) ([]domain.CheckpointEntry, error) {
	if currentPrice == 0 {
		return nil, fmt.Errorf("%w: current price is zero, change rate undefined", domain.ErrInvalidInput)
	}

	byDate := make(map[string]domain.ForecastPoint, len(points))
	for _, p := range points {
		byDate[dateKey(p.Date)] = p
	}

	var entries []domain.CheckpointEntry
	for _, cp := range checkpoints {
		targetDate := lastActualDate.AddDate(0, 0, cp.OffsetDays)
		point, ok := byDate[dateKey(targetDate)]
		if !ok {
			continue
		}

		changeRate := (point.Predicted - currentPrice) / currentPrice * 100
		entries = append(entries, domain.CheckpointEntry{
			Label:          cp.Label,
			OffsetDays:     cp.OffsetDays,
			Date:           dateKey(targetDate),
			PredictedPrice: point.Predicted,
			ChangeRatePct:  changeRate,
			UpperBound:     point.Upper,
			LowerBound:     point.Lower,
		})
	}

	return entries, nil
}
