package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"tripmate/internal/modules/trips"
)

// TripLister lists a user's trips.
type TripLister interface {
	List(ctx context.Context, userID string) ([]trips.Trip, error)
}

type TripsHandler struct {
	trips TripLister
	now   func() time.Time
}

func NewTripsHandler(t TripLister) *TripsHandler {
	return &TripsHandler{trips: t, now: time.Now}
}

// Calendar handles GET /api/trips/calendar?user_id= and returns an .ics file.
func (h *TripsHandler) Calendar(c *gin.Context) {
	userID := strings.TrimSpace(c.Query("user_id"))
	if !isValidID(userID) {
		writeError(c, http.StatusBadRequest, "missing or invalid user_id")
		return
	}
	if !authorizeUser(c, userID) {
		return
	}

	list, err := h.trips.List(c.Request.Context(), userID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="trips.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(trips.Calendar(list, h.now())))
}
