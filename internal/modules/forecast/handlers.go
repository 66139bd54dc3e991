package forecast

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/hoshiyanatsu/stock-prediction/internal/domain"
	"github.com/hoshiyanatsu/stock-prediction/internal/modules/charts"
)

// Runner runs the forecast pipeline for a symbol
type Runner interface {
	Run(symbol string) (*Result, error)
}

// Handler handles forecast HTTP requests
type Handler struct {
	service Runner
	log     zerolog.Logger
}

// NewHandler creates a new forecast handler
func NewHandler(service Runner, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "forecast").Logger(),
	}
}

// forecastResponse is the payload for a successful run
type forecastResponse struct {
	*Result
	Chart *charts.ForecastChart `json:"chart"`
}

// HandleGetForecast runs the pipeline for the symbol in the URL and
// returns the forecast, checkpoint summary and chart overlay.
func (h *Handler) HandleGetForecast(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	result, err := h.service.Run(symbol)
	if err != nil {
		h.log.Warn().Err(err).Str("symbol", symbol).Msg("Forecast run failed")
		h.writeError(w, statusFor(err), err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, forecastResponse{
		Result: result,
		Chart:  charts.BuildForecastChart(result.Points, result.Summary),
	})
}

// statusFor maps the error taxonomy to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrDataUnavailable):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrForecast):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}

// writeError writes a JSON error response
func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]interface{}{
		"error": message,
	})
}
