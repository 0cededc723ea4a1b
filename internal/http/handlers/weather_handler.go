package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"tripmate/internal/modules/weather"
)

const weatherTimeout = 30 * time.Second

// Forecaster looks up weather for a batch of place names.
type Forecaster interface {
	Forecast(ctx context.Context, locations []string) ([]weather.Report, error)
}

type WeatherHandler struct {
	weather Forecaster
}

func NewWeatherHandler(w Forecaster) *WeatherHandler {
	return &WeatherHandler{weather: w}
}

type weatherReq struct {
	Locations []struct {
		Name string `json:"name"`
	} `json:"locations"`
}

// TripWeather handles POST /trip-weather.
func (h *WeatherHandler) TripWeather(c *gin.Context) {
	var req weatherReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	var names []string
	for _, l := range req.Locations {
		if n := strings.TrimSpace(l.Name); n != "" {
			names = append(names, n)
		}
	}
	if len(names) == 0 {
		writeError(c, http.StatusBadRequest, "No locations provided")
		return
	}
	if h.weather == nil {
		writeError(c, http.StatusServiceUnavailable, "weather lookups are not configured")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), weatherTimeout)
	defer cancel()

	reports, err := h.weather.Forecast(ctx, names)
	if err != nil && !errors.Is(err, weather.ErrNoWeather) {
		writeServiceError(c, err)
		return
	}
	if err != nil {
		writeJSON(c, http.StatusBadGateway, gin.H{"error": err.Error(), "locations": reports})
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"locations": reports})
}
