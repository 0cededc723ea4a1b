package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"tripmate/internal/ai"
	"tripmate/internal/modules/extraction"
	"tripmate/internal/modules/tools"
	"tripmate/internal/modules/trips"
	"tripmate/internal/modules/weather"
	"tripmate/internal/types"
)

// ToolDeps are the services behind the tool catalog. Nil services leave their tools unregistered.
type ToolDeps struct {
	Trips   *trips.Service
	Weather *weather.Service
	Engine  *extraction.Engine
}

// RegisterTools adds the travel tool set to reg.
func RegisterTools(reg *tools.Registry, deps ToolDeps) error {
	ts := toolset(deps)
	var all []tools.Tool
	if deps.Weather != nil {
		all = append(all, ts.searchWeb(), ts.getWeather())
	}
	if deps.Trips != nil {
		all = append(all, ts.getUserTrips(), ts.createTrip(), ts.addLocation())
	}
	if deps.Trips != nil && deps.Weather != nil {
		all = append(all, ts.getTripWeather())
	}
	if deps.Engine != nil {
		all = append(all, ts.analyzeTripRequest())
	}
	for _, t := range all {
		if err := reg.Register(t); err != nil {
			return err
		}
	}
	return nil
}

type toolset ToolDeps

func str(desc string) *ai.Schema { return &ai.Schema{Type: "string", Description: desc} }

func object(required []string, props map[string]*ai.Schema) *ai.Schema {
	return &ai.Schema{Type: "object", Properties: props, Required: required}
}

var userIDField = str("The user's id. Filled in automatically.")

func (t toolset) searchWeb() tools.Tool {
	return tools.Tool{
		Name:        "search_web",
		Description: "Search the web for travel information such as attractions, events, visa rules or opening hours.",
		Schema:      object([]string{"query"}, map[string]*ai.Schema{"query": str("What to search for.")}),
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			results, err := t.Weather.WebSearch(ctx, stringArg(args, "query"))
			if err != nil {
				return "", err
			}
			if len(results) == 0 {
				return "No results found.", nil
			}
			var b strings.Builder
			for i, r := range results {
				fmt.Fprintf(&b, "%d. %s\n   %s\n   %s\n", i+1, r.Title, r.Link, r.Snippet)
			}
			return b.String(), nil
		},
	}
}

func (t toolset) getWeather() tools.Tool {
	return tools.Tool{
		Name:        "get_weather",
		Description: "Get the current weather and a short forecast for one or more places.",
		Schema: object([]string{"locations"}, map[string]*ai.Schema{
			"locations": {Type: "array", Description: "Place names, e.g. [\"Rome\", \"Paris\"].", Items: str("")},
		}),
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			reports, err := t.Weather.Forecast(ctx, stringsArg(args, "locations"))
			if err != nil {
				return "", err
			}
			return toJSON(map[string]any{"locations": reports})
		},
	}
}

func (t toolset) getTripWeather() tools.Tool {
	return tools.Tool{
		Name:        "get_trip_weather",
		Description: "Get the weather for the places in the user's saved trips. Give trip_title to check one trip only.",
		Schema: object([]string{tools.UserIDKey}, map[string]*ai.Schema{
			tools.UserIDKey: userIDField,
			"trip_title":    str("Part of the trip title, case-insensitive."),
		}),
		InjectsUserID: true,
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			list, err := t.Trips.FindByTitle(ctx, stringArg(args, tools.UserIDKey), stringArg(args, "trip_title"))
			if err != nil {
				return "", err
			}
			if len(list) == 0 {
				return "You don't have any trips to check weather for.", nil
			}
			var b strings.Builder
			for _, trip := range list {
				names := trip.LocationNames()
				if len(names) == 0 {
					fmt.Fprintf(&b, "%s: No locations added yet.\n\n", trip.Title)
					continue
				}
				reports, err := t.Weather.Forecast(ctx, names)
				if errors.Is(err, weather.ErrNoWeather) {
					fmt.Fprintf(&b, "%s: %s\n\n", trip.Title, err)
					continue
				}
				if err != nil {
					return "", err
				}
				fmt.Fprintf(&b, "%s (%s to %s):\n\n", trip.Title, trip.StartDay(), trip.EndDay())
				for i, r := range reports {
					b.WriteString(weather.FormatReport(names[i], r))
					b.WriteString("\n")
				}
			}
			return b.String(), nil
		},
	}
}

func (t toolset) getUserTrips() tools.Tool {
	return tools.Tool{
		Name:          "get_user_trips",
		Description:   "List the user's saved trips with their dates and locations.",
		Schema:        object([]string{tools.UserIDKey}, map[string]*ai.Schema{tools.UserIDKey: userIDField}),
		InjectsUserID: true,
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			list, err := t.Trips.List(ctx, stringArg(args, tools.UserIDKey))
			if err != nil {
				return "", err
			}
			if len(list) == 0 {
				return "You don't have any trips yet.", nil
			}
			return trips.FormatContext(list), nil
		},
	}
}

func (t toolset) createTrip() tools.Tool {
	return tools.Tool{
		Name:        "create_trip",
		Description: "Save a new trip for the user. Use it once destination and dates are known and the user wants the trip created.",
		Schema: object([]string{tools.UserIDKey, "start_date", "end_date", "locations"}, map[string]*ai.Schema{
			tools.UserIDKey: userIDField,
			"title":         str("Trip title. Defaults to \"Trip to <first location>\"."),
			"description":   str("Short description."),
			"summary":       str("Optional itinerary summary."),
			"start_date":    str("First day, YYYY-MM-DD."),
			"end_date":      str("Last day, YYYY-MM-DD."),
			"locations":     {Type: "array", Description: "Places to visit, in order.", Items: str("")},
		}),
		InjectsUserID: true,
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			trip, err := t.Trips.Create(ctx, trips.CreateRequest{
				UserID:      stringArg(args, tools.UserIDKey),
				Title:       stringArg(args, "title"),
				Description: stringArg(args, "description"),
				Summary:     stringArg(args, "summary"),
				StartDate:   stringArg(args, "start_date"),
				EndDate:     stringArg(args, "end_date"),
				Locations:   stringsArg(args, "locations"),
			})
			if err != nil {
				return "", err
			}
			msg := fmt.Sprintf("Created trip %q (id %s) from %s to %s.", trip.Title, trip.ID, trip.StartDay(), trip.EndDay())
			if len(trip.Locations) > 0 {
				msg += " Locations: " + strings.Join(trip.LocationNames(), ", ") + "."
			}
			unresolved := lo.FilterMap(trip.Locations, func(l types.Location, _ int) (string, bool) {
				return l.Name, l.Unresolved()
			})
			if len(unresolved) > 0 {
				msg += " Could not find coordinates for: " + strings.Join(unresolved, ", ") + "."
			}
			return msg, nil
		},
	}
}

func (t toolset) addLocation() tools.Tool {
	return tools.Tool{
		Name:        "add_location",
		Description: "Add one place to an existing trip. Get the trip id from get_user_trips or create_trip first.",
		Schema: object([]string{tools.UserIDKey, "trip_id", "location"}, map[string]*ai.Schema{
			tools.UserIDKey: userIDField,
			"trip_id":       str("Id of the trip to extend."),
			"location":      str("Place to add, e.g. \"Florence\"."),
		}),
		InjectsUserID: true,
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			loc, err := t.Trips.AddLocation(ctx, stringArg(args, tools.UserIDKey), stringArg(args, "trip_id"), stringArg(args, "location"))
			if err != nil {
				return "", err
			}
			if loc.Unresolved() {
				return fmt.Sprintf("Added %s to the trip, but could not find it on the map.", loc.Name), nil
			}
			return fmt.Sprintf("Added %s to the trip.", loc.Name), nil
		},
	}
}

func (t toolset) analyzeTripRequest() tools.Tool {
	return tools.Tool{
		Name:        "analyze_trip_request",
		Description: "Extract destinations and a start/end date from free text.",
		Schema:      object([]string{"text"}, map[string]*ai.Schema{"text": str("Text to analyse.")}),
		Handler: func(_ context.Context, args map[string]any) (string, error) {
			info := t.Engine.Analyze([]string{stringArg(args, "text")})
			return toJSON(map[string]any{
				"destinations":    info.Destinations,
				"start_date":      info.StartDate,
				"end_date":        info.EndDate,
				"has_destination": info.HasDestination,
				"has_dates":       info.HasDates,
				"ready_to_create": info.ReadyToCreate(),
			})
		},
	}
}

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return strings.TrimSpace(s)
}

func stringsArg(args map[string]any, key string) []string {
	raw, _ := args[key].([]any)
	return lo.FilterMap(raw, func(v any, _ int) (string, bool) {
		s, ok := v.(string)
		return strings.TrimSpace(s), ok && strings.TrimSpace(s) != ""
	})
}

func toJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
