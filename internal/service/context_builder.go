// README: Builds the per-step instruction payload. Derived from the conversation every time, never stored.
package service

import (
	"fmt"
	"strings"

	"tripmate/internal/modules/extraction"
)

const preamble = `You are a friendly travel planning assistant. You help the user plan trips, check the weather at their destinations, and keep their saved trips up to date.

Available tools:
- search_web: look up travel information on the web.
- get_weather: current weather and a short forecast for a list of places.
- get_trip_weather: weather for the places in the user's saved trips, optionally one trip by title.
- get_user_trips: list the user's saved trips.
- create_trip: save a new trip with a title, dates (YYYY-MM-DD) and locations.
- add_location: add one place to an existing trip.
- analyze_trip_request: extract destinations and dates from free text.

Rules:
- Never ask again for a destination or dates the user already gave. Check the analysis and the messages below first.
- When the analysis says the trip is ready to create and the user wants it saved, call create_trip with exactly those dates and destinations.
- Ask one short question when something required is still missing.
- The user's identity is handled for you. Never ask for or invent a user id.
- If a tool returns an error, explain it briefly and suggest what to do next.
- Keep answers concise and well organised.`

const noTripsMarker = "The user has no trips yet."

// ContextBuilder assembles the system instructions for one reasoning step.
type ContextBuilder struct {
	engine *extraction.Engine
}

func NewContextBuilder(engine *extraction.Engine) *ContextBuilder {
	return &ContextBuilder{engine: engine}
}

// Build renders preamble, analysis, transcript and trip context for state.
func (b *ContextBuilder) Build(state ConversationState) string {
	userTexts := state.UserTexts()
	info := b.engine.Analyze(userTexts)

	var sb strings.Builder
	sb.WriteString(preamble)
	fmt.Fprintf(&sb, "\n\nToday is %s.\n", b.engine.Now().Format("Monday, 2006-01-02"))

	sb.WriteString("\n## Conversation analysis\n")
	if info.HasDestination {
		fmt.Fprintf(&sb, "- Destination: FOUND (%s)\n", strings.Join(info.Destinations, ", "))
	} else {
		sb.WriteString("- Destination: still needed\n")
	}
	if info.HasDates {
		fmt.Fprintf(&sb, "- Dates: FOUND (%s to %s)\n", info.StartDate, info.EndDate)
	} else {
		sb.WriteString("- Dates: still needed\n")
	}
	if info.ReadyToCreate() {
		sb.WriteString("- Status: READY TO CREATE TRIP. Do not ask for these details again.\n")
	}

	sb.WriteString("\n## What the user has said so far\n")
	if len(userTexts) == 0 {
		sb.WriteString("(nothing yet)\n")
	}
	for i, text := range userTexts {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, text)
	}

	sb.WriteString("\n## User's trips\n")
	if ctx := strings.TrimSpace(state.TripContext); ctx != "" {
		sb.WriteString(ctx)
		sb.WriteString("\n")
	} else {
		sb.WriteString(noTripsMarker + "\n")
	}
	return sb.String()
}
