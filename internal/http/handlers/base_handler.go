// README: Base handler utilities (JSON helpers, caller checks, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tripmate/internal/http/middleware"
	"tripmate/internal/modules/quota"
	"tripmate/internal/modules/trips"
	"tripmate/internal/modules/weather"
)

type errorResponse struct {
	Error string `json:"error"`
}

// isValidID accepts the ids our auth and trips backends issue: 1-128 chars of [A-Za-z0-9_-].
func isValidID(v string) bool {
	if v == "" || len(v) > 128 {
		return false
	}
	for _, c := range v {
		if (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '-' || c == '_' {
			continue
		}
		return false
	}
	return true
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// authorizeUser enforces that an authenticated caller only acts as themselves.
// Without auth middleware on the route every user id is accepted.
func authorizeUser(c *gin.Context, userID string) bool {
	if uid := middleware.CallerUID(c); uid != "" && uid != userID {
		writeError(c, http.StatusForbidden, "user_id does not match the authenticated user")
		return false
	}
	return true
}

func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, quota.ErrQuotaExceeded):
		writeError(c, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, trips.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, trips.ErrInvalidTrip), errors.Is(err, weather.ErrNoLocations):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, trips.ErrUnavailable), errors.Is(err, weather.ErrUnavailable), errors.Is(err, weather.ErrNoWeather):
		writeError(c, http.StatusBadGateway, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
