package forecast

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Prediction is one raw model output row in stabilized space
type Prediction struct {
	Date      time.Time
	Predicted float64
	Lower     float64
	Upper     float64
}

// Model is the fit/predict boundary the pipeline depends on. Predict
// covers the training date range plus a daily grid of horizonDays past
// the last training date. The pipeline does not inspect the model's
// internal decomposition.
type Model interface {
	Fit(ts []time.Time, y []float64) error
	Predict(horizonDays int) ([]Prediction, error)
}

// Model constants, not runtime-tunable.
const (
	yearlyOrder    = 10
	weeklyOrder    = 3
	intervalWidth  = 0.95
	numChangepoint = 25
	// Changepoints are placed over the first 80% of the history
	changepointRange = 0.8
	// Trend flexibility steps up for longer series
	flexibleSeriesThreshold = 500
	priorScaleFlexible      = 0.10
	priorScaleDefault       = 0.05

	minTrainingPoints = 10
)

// SeasonalTrendModel fits an additive piecewise-linear trend with
// yearly and weekly Fourier seasonality by ridge-regularized least
// squares. Uncertainty bands come from the in-sample residual spread
// and widen with distance into the horizon.
type SeasonalTrendModel struct {
	fitted bool

	ts    []time.Time
	start time.Time
	end   time.Time
	span  float64 // training span in days

	theta    *mat.VecDense
	residStd float64
	zScore   float64
}

// NewSeasonalTrendModel creates an unfitted model
func NewSeasonalTrendModel() *SeasonalTrendModel {
	return &SeasonalTrendModel{}
}

// Fit estimates the trend and seasonality coefficients from the
// stabilized series. ts and y must be parallel, chronological and at
// least minTrainingPoints long.
func (m *SeasonalTrendModel) Fit(ts []time.Time, y []float64) error {
	if len(ts) != len(y) {
		return fmt.Errorf("timestamps and values length mismatch: %d vs %d", len(ts), len(y))
	}
	if len(ts) < minTrainingPoints {
		return fmt.Errorf("insufficient data: %d points, need at least %d", len(ts), minTrainingPoints)
	}
	for i, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("non-finite value at index %d", i)
		}
	}
	if stat.Variance(y, nil) == 0 {
		return fmt.Errorf("series has zero variance")
	}

	m.ts = ts
	m.start = ts[0]
	m.end = ts[len(ts)-1]
	m.span = m.end.Sub(m.start).Hours() / 24
	if m.span <= 0 {
		return fmt.Errorf("training range spans zero days")
	}

	n := len(ts)
	p := m.featureCount()

	data := make([]float64, 0, n*p)
	for _, t := range ts {
		data = append(data, m.features(t)...)
	}
	x := mat.NewDense(n, p, data)
	yVec := mat.NewVecDense(n, y)

	// Normal equations with a per-column ridge penalty. The penalty on
	// changepoint columns encodes trend flexibility: a longer series
	// gets a weaker penalty.
	var xtx mat.Dense
	xtx.Mul(x.T(), x)
	for j, penalty := range m.penalties() {
		xtx.Set(j, j, xtx.At(j, j)+penalty)
	}

	var xty mat.VecDense
	xty.MulVec(x.T(), yVec)

	theta := new(mat.VecDense)
	if err := theta.SolveVec(&xtx, &xty); err != nil {
		return fmt.Errorf("failed to solve trend system: %w", err)
	}
	m.theta = theta

	// In-sample residual spread drives the uncertainty band
	residuals := make([]float64, n)
	for i, t := range ts {
		residuals[i] = y[i] - m.evaluate(t)
	}
	m.residStd = stat.StdDev(residuals, nil)
	if math.IsNaN(m.residStd) || math.IsInf(m.residStd, 0) {
		return fmt.Errorf("degenerate residual spread")
	}

	normal := distuv.Normal{Mu: 0, Sigma: 1}
	m.zScore = normal.Quantile(0.5 + intervalWidth/2)

	m.fitted = true
	return nil
}

// Predict evaluates the fitted model over the training dates plus a
// daily future grid of horizonDays beyond the last training date.
func (m *SeasonalTrendModel) Predict(horizonDays int) ([]Prediction, error) {
	if !m.fitted {
		return nil, fmt.Errorf("model is not fitted")
	}
	if horizonDays < 0 {
		return nil, fmt.Errorf("horizon must be non-negative, got %d", horizonDays)
	}

	out := make([]Prediction, 0, len(m.ts)+horizonDays)
	for _, t := range m.ts {
		out = append(out, m.predictAt(t))
	}
	for i := 1; i <= horizonDays; i++ {
		out = append(out, m.predictAt(m.end.AddDate(0, 0, i)))
	}
	return out, nil
}

func (m *SeasonalTrendModel) predictAt(t time.Time) Prediction {
	yhat := m.evaluate(t)

	// The band widens with distance past the training range,
	// proportionally to the span the trend was estimated on.
	futureDays := math.Max(0, t.Sub(m.end).Hours()/24)
	sigma := m.residStd * math.Sqrt(1+futureDays/m.span)
	margin := m.zScore * sigma

	return Prediction{
		Date:      t,
		Predicted: yhat,
		Lower:     yhat - margin,
		Upper:     yhat + margin,
	}
}

// evaluate computes theta · features(t)
func (m *SeasonalTrendModel) evaluate(t time.Time) float64 {
	feats := m.features(t)
	sum := 0.0
	for j, f := range feats {
		sum += m.theta.AtVec(j) * f
	}
	return sum
}

func (m *SeasonalTrendModel) featureCount() int {
	// intercept + slope + changepoints + yearly and weekly sin/cos pairs
	return 2 + numChangepoint + 2*yearlyOrder + 2*weeklyOrder
}

// features builds one design-matrix row for time t: linear trend with
// hinge terms at the changepoints, then yearly and weekly Fourier
// terms anchored to absolute time so the phase carries into the
// horizon.
func (m *SeasonalTrendModel) features(t time.Time) []float64 {
	feats := make([]float64, 0, m.featureCount())

	xn := t.Sub(m.start).Hours() / 24 / m.span
	feats = append(feats, 1, xn)

	for i := 0; i < numChangepoint; i++ {
		cp := changepointRange * float64(i+1) / float64(numChangepoint+1)
		feats = append(feats, math.Max(0, xn-cp))
	}

	dayIndex := t.Sub(time.Unix(0, 0).UTC()).Hours() / 24
	for k := 1; k <= yearlyOrder; k++ {
		arg := 2 * math.Pi * float64(k) * dayIndex / 365.25
		feats = append(feats, math.Sin(arg), math.Cos(arg))
	}
	for k := 1; k <= weeklyOrder; k++ {
		arg := 2 * math.Pi * float64(k) * dayIndex / 7
		feats = append(feats, math.Sin(arg), math.Cos(arg))
	}

	return feats
}

// penalties returns the per-column ridge penalty
func (m *SeasonalTrendModel) penalties() []float64 {
	scale := priorScaleDefault
	if len(m.ts) > flexibleSeriesThreshold {
		scale = priorScaleFlexible
	}
	changepointPenalty := 1.0 / scale
	seasonalPenalty := 0.01

	out := make([]float64, 0, m.featureCount())
	out = append(out, 1e-8, 1e-8)
	for i := 0; i < numChangepoint; i++ {
		out = append(out, changepointPenalty)
	}
	for i := 0; i < 2*(yearlyOrder+weeklyOrder); i++ {
		out = append(out, seasonalPenalty)
	}
	return out
}
