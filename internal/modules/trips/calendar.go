package trips

import (
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"tripmate/internal/modules/extraction"
)

// Calendar renders trips as an iCalendar document with one all-day event per trip.
// Trips whose dates do not parse are skipped.
func Calendar(list []Trip, stamp time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//tripmate//trips//EN")
	cal.SetName("Trips")

	for _, t := range list {
		start, err := time.Parse(extraction.DateLayout, t.StartDay())
		if err != nil {
			continue
		}
		end, err := time.Parse(extraction.DateLayout, t.EndDay())
		if err != nil || end.Before(start) {
			end = start
		}

		uid := t.ID
		if uid == "" {
			uid = start.Format("20060102") + "-" + strings.ToLower(strings.ReplaceAll(t.Title, " ", "-"))
		}
		ev := cal.AddEvent(uid + "@tripmate")
		ev.SetDtStampTime(stamp.UTC())
		ev.SetSummary(t.Title)
		ev.SetAllDayStartAt(start)
		// DTEND is exclusive for all-day events.
		ev.SetAllDayEndAt(end.AddDate(0, 0, 1))
		if t.Description != "" {
			ev.SetDescription(t.Description)
		}
		if len(t.Locations) > 0 {
			ev.SetLocation(strings.Join(t.LocationNames(), " / "))
		}
	}
	return cal.Serialize()
}
