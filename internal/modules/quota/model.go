package quota

import "errors"

// ErrQuotaExceeded is returned when a user has no turns remaining for the current month.
var ErrQuotaExceeded = errors.New("monthly turn quota exceeded")

// DefaultMonthlyTurns is the number of chat turns granted per month.
const DefaultMonthlyTurns = 100

// monthLayout keys the counter so it rolls over on the first of each month.
const monthLayout = "2006-01"
