package trips

import (
	"errors"

	"tripmate/internal/types"
)

var (
	// ErrUnavailable is returned when the trips backend answers non-2xx, times out, or is unreachable.
	ErrUnavailable = errors.New("trips service unavailable")
	// ErrNotFound is returned when no trip matches a lookup.
	ErrNotFound = errors.New("trip not found")
	// ErrInvalidTrip is returned when a create request is missing required fields.
	ErrInvalidTrip = errors.New("invalid trip")
)

// Trip mirrors the trips backend representation. Dates are ISO strings as the backend sends them.
type Trip struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Summary     string           `json:"summary,omitempty"`
	StartDate   string           `json:"startDate"`
	EndDate     string           `json:"endDate"`
	Locations   []types.Location `json:"locations"`
}

// StartDay returns the YYYY-MM-DD prefix of StartDate.
func (t Trip) StartDay() string { return day(t.StartDate) }

// EndDay returns the YYYY-MM-DD prefix of EndDate.
func (t Trip) EndDay() string { return day(t.EndDate) }

// LocationNames lists location names in trip order.
func (t Trip) LocationNames() []string {
	names := make([]string, 0, len(t.Locations))
	for _, l := range t.Locations {
		names = append(names, l.Name)
	}
	return names
}

func day(iso string) string {
	if len(iso) >= 10 {
		return iso[:10]
	}
	return iso
}

// CreateRequest is what the create_trip tool collects from the conversation.
type CreateRequest struct {
	UserID      string
	Title       string
	Description string
	Summary     string
	StartDate   string
	EndDate     string
	Locations   []string
}

// createBody is the POST /trips/create payload.
type createBody struct {
	UserID      string           `json:"userId"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Summary     string           `json:"summary,omitempty"`
	StartDate   string           `json:"startDate"`
	EndDate     string           `json:"endDate"`
	Locations   []types.Location `json:"locations"`
}

// addLocationBody is the POST /trips/{id}/locations payload.
type addLocationBody struct {
	UserID string  `json:"userId"`
	Name   string  `json:"name"`
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
}
