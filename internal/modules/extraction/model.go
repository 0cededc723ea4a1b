package extraction

// DefaultTripLength is the span synthesized when only a start date is found.
const DefaultTripLength = 7

// DateRange holds canonical YYYY-MM-DD dates; empty strings mean absent.
type DateRange struct {
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
}

// TripInfo is derived from user-authored messages on every turn and never stored.
type TripInfo struct {
	Destinations   []string `json:"destinations"`
	StartDate      string   `json:"start_date,omitempty"`
	EndDate        string   `json:"end_date,omitempty"`
	HasDestination bool     `json:"has_destination"`
	HasDates       bool     `json:"has_dates"`
}

// ReadyToCreate reports whether both a destination and dates are known.
func (t TripInfo) ReadyToCreate() bool {
	return t.HasDestination && t.HasDates
}
