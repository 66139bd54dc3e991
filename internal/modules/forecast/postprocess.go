package forecast

import (
	"time"

	"github.com/hoshiyanatsu/stock-prediction/internal/domain"
)

// PostProcess converts the model's raw stabilized-space output into
// real price space and merges the original actual closes back in.
//
// The three columns are destabilized and clipped to >= 0 independently.
// If clipping leaves a lower bound above the point forecast that
// inversion is tolerated, not corrected: re-sorting the columns would
// silently change what the model said.
//
// Actual closes are joined onto exact calendar-date matches. Dates past
// the last actual date carry no actual and are flagged as forecast
// region.
func PostProcess(actuals []domain.PricePoint, raw []Prediction) []domain.ForecastPoint {
	actualByDate := make(map[string]float64, len(actuals))
	var lastActual time.Time
	for _, p := range actuals {
		actualByDate[dateKey(p.Date)] = p.Close
		if p.Date.After(lastActual) {
			lastActual = p.Date
		}
	}

	predicted := make([]float64, len(raw))
	lower := make([]float64, len(raw))
	upper := make([]float64, len(raw))
	for i, r := range raw {
		predicted[i] = r.Predicted
		lower[i] = r.Lower
		upper[i] = r.Upper
	}
	predicted = Destabilize(predicted)
	lower = Destabilize(lower)
	upper = Destabilize(upper)

	points := make([]domain.ForecastPoint, len(raw))
	for i, r := range raw {
		point := domain.ForecastPoint{
			Date:       r.Date,
			Predicted:  predicted[i],
			Lower:      lower[i],
			Upper:      upper[i],
			IsForecast: r.Date.After(lastActual),
		}
		if actual, ok := actualByDate[dateKey(r.Date)]; ok {
			actualCopy := actual
			point.Actual = &actualCopy
		}
		points[i] = point
	}

	return points
}

// dateKey collapses a timestamp to its calendar date
func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
