package charts

// ChartPoint represents a single point on a chart line
type ChartPoint struct {
	Time  string  `json:"time"` // YYYY-MM-DD format
	Value float64 `json:"value"`
}

// BandPoint is one slice of the shaded uncertainty band
type BandPoint struct {
	Time  string  `json:"time"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Marker is a discrete checkpoint annotation on the forecast line
type Marker struct {
	Time  string  `json:"time"`
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// YAxisRange clamps the chart's vertical extent
type YAxisRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// ForecastChart is the full overlay consumed by the frontend: solid
// actual line, dashed predicted line starting strictly after the last
// actual date, shaded band over the forecast region only, and one
// marker per checkpoint.
type ForecastChart struct {
	Actual    []ChartPoint `json:"actual"`
	Predicted []ChartPoint `json:"predicted"`
	Band      []BandPoint  `json:"band"`
	SMA       []ChartPoint `json:"sma,omitempty"` // 50-day moving average overlay
	Markers   []Marker     `json:"markers"`
	YAxis     YAxisRange   `json:"y_axis"`
}
