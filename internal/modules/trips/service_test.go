package trips

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tripmate/internal/types"
)

type fakeLocator struct {
	places map[string]types.Location
}

func (f fakeLocator) Lookup(_ context.Context, name string) (types.Location, bool) {
	if loc, ok := f.places[name]; ok {
		return loc, true
	}
	return types.Location{Name: name}, false
}

func (f fakeLocator) Resolve(ctx context.Context, names []string) []types.Location {
	out := make([]types.Location, len(names))
	for i, n := range names {
		loc, _ := f.Lookup(ctx, n)
		loc.Name = n
		out[i] = loc
	}
	return out
}

type fakeBackend struct {
	trips   []Trip
	err     error
	created []createBody
	added   []addLocationBody
}

func (f *fakeBackend) List(context.Context, string) ([]Trip, error) { return f.trips, f.err }

func (f *fakeBackend) Create(_ context.Context, body createBody) (Trip, error) {
	if f.err != nil {
		return Trip{}, f.err
	}
	f.created = append(f.created, body)
	return Trip{ID: "t1", Title: body.Title, StartDate: body.StartDate, EndDate: body.EndDate, Locations: body.Locations}, nil
}

func (f *fakeBackend) AddLocation(_ context.Context, _ string, body addLocationBody) (types.Location, error) {
	f.added = append(f.added, body)
	return types.Location{Name: body.Name, Lat: body.Lat, Lng: body.Lng}, nil
}

var testLocator = fakeLocator{places: map[string]types.Location{
	"Rome":  {Name: "Rome, Italy", Lat: 41.9028, Lng: 12.4964},
	"Paris": {Name: "Paris, France", Lat: 48.8566, Lng: 2.3522},
}}

func newTestService(b *fakeBackend) *Service {
	s := NewService(b, testLocator, nil)
	s.now = func() time.Time { return time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC) }
	return s
}

func TestFormatContext(t *testing.T) {
	if got := FormatContext(nil); got != "" {
		t.Fatalf("empty list should format to \"\", got %q", got)
	}
	out := FormatContext([]Trip{
		{
			Title:       "Italy",
			Description: "Food",
			StartDate:   "2025-10-18T00:00:00.000Z",
			EndDate:     "2025-10-28T00:00:00.000Z",
			Locations: []types.Location{
				{Name: "Rome", Lat: 41.9028, Lng: 12.4964},
				{Name: "Paris", Lat: 48.8566, Lng: 2.3522},
			},
		},
		{Title: "Somewhere", StartDate: "2026-01-01", EndDate: "2026-01-02"},
	})
	for _, want := range []string{
		"You have 2 trip(s):",
		"1. Italy\n",
		"   Dates: 2025-10-18 to 2025-10-28\n",
		"   Locations: Rome, Paris\n",
		"   Route: about 11",
		"2. Somewhere\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("context missing %q:\n%s", want, out)
		}
	}
}

func TestContextDegradesOnError(t *testing.T) {
	s := newTestService(&fakeBackend{err: ErrUnavailable})
	if got := s.Context(context.Background(), "u1"); got != "" {
		t.Fatalf("Context = %q, want empty", got)
	}
	if got := s.Context(context.Background(), ""); got != "" {
		t.Fatalf("Context without user = %q", got)
	}
}

func TestCreate(t *testing.T) {
	b := &fakeBackend{}
	s := newTestService(b)

	trip, err := s.Create(context.Background(), CreateRequest{
		UserID:    "u1",
		StartDate: "2025-10-18",
		EndDate:   "October 28, 2025",
		Locations: []string{"Rome", " ", "Atlantis", "Rome"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if trip.Title != "Trip to Rome" {
		t.Errorf("title = %q", trip.Title)
	}
	body := b.created[0]
	if body.UserID != "u1" || body.StartDate != "2025-10-18" || body.EndDate != "2025-10-28" {
		t.Errorf("body = %+v", body)
	}
	if len(body.Locations) != 2 {
		t.Fatalf("locations = %+v", body.Locations)
	}
	if body.Locations[0].Name != "Rome" || body.Locations[0].Unresolved() {
		t.Errorf("rome = %+v", body.Locations[0])
	}
	if body.Locations[1].Name != "Atlantis" || !body.Locations[1].Unresolved() {
		t.Errorf("unresolved location must be kept with the sentinel: %+v", body.Locations[1])
	}
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name string
		req  CreateRequest
	}{
		{"bad start", CreateRequest{Title: "x", StartDate: "soon", EndDate: "2025-10-28"}},
		{"bad end", CreateRequest{Title: "x", StartDate: "2025-10-18", EndDate: ""}},
		{"end before start", CreateRequest{Title: "x", StartDate: "2025-10-18", EndDate: "2025-10-01"}},
		{"no title no locations", CreateRequest{StartDate: "2025-10-18", EndDate: "2025-10-20"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &fakeBackend{}
			_, err := newTestService(b).Create(context.Background(), tt.req)
			if !errors.Is(err, ErrInvalidTrip) {
				t.Fatalf("expected ErrInvalidTrip, got %v", err)
			}
			if len(b.created) != 0 {
				t.Fatal("backend must not be called for invalid requests")
			}
		})
	}
}

func TestAddLocationUsesDisplayName(t *testing.T) {
	b := &fakeBackend{}
	s := newTestService(b)

	loc, err := s.AddLocation(context.Background(), "u1", "t1", "Paris")
	if err != nil {
		t.Fatalf("AddLocation: %v", err)
	}
	if loc.Name != "Paris, France" || b.added[0].UserID != "u1" {
		t.Errorf("added %+v via %+v", loc, b.added[0])
	}

	loc, err = s.AddLocation(context.Background(), "u1", "t1", "Atlantis")
	if err != nil {
		t.Fatalf("AddLocation: %v", err)
	}
	if loc.Name != "Atlantis" || !loc.Unresolved() {
		t.Errorf("unresolved add = %+v", loc)
	}
}

func TestFindByTitle(t *testing.T) {
	s := newTestService(&fakeBackend{trips: []Trip{{Title: "Summer in Italy"}, {Title: "Tokyo Winter"}}})
	ctx := context.Background()

	got, err := s.FindByTitle(ctx, "u1", "tokyo")
	if err != nil || len(got) != 1 || got[0].Title != "Tokyo Winter" {
		t.Fatalf("FindByTitle = %+v, %v", got, err)
	}
	all, _ := s.FindByTitle(ctx, "u1", "")
	if len(all) != 2 {
		t.Fatalf("empty filter returned %d trips", len(all))
	}
	if _, err := s.FindByTitle(ctx, "u1", "mars"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestClientListShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"wrapped", `{"trips": [{"id": "a", "title": "A", "locations": [{"name": "Rome", "lat": 1, "lng": 2}]}]}`, 1},
		{"bare array", `[{"id": "a"}, {"id": "b"}]`, 2},
		{"empty wrapper", `{}`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/ai/trips" || r.URL.Query().Get("userId") != "u 1" {
					t.Errorf("unexpected request %s", r.URL)
				}
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			got, err := NewClient(srv.URL+"/api/ai/", time.Second).List(context.Background(), "u 1")
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(got) != tt.want {
				t.Fatalf("got %d trips, want %d", len(got), tt.want)
			}
		})
	}
}

func TestClientCreateAndAddLocation(t *testing.T) {
	var gotCreate createBody
	var gotAdd addLocationBody
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/trips/create":
			_ = json.NewDecoder(r.Body).Decode(&gotCreate)
			_, _ = w.Write([]byte(`{"success": true, "trip": {"id": "t9", "title": "Rome"}}`))
		case "/trips/t9/locations":
			_ = json.NewDecoder(r.Body).Decode(&gotAdd)
			w.WriteHeader(http.StatusCreated)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	ctx := context.Background()

	trip, err := c.Create(ctx, createBody{UserID: "u1", Title: "Rome", StartDate: "2025-10-18", EndDate: "2025-10-28"})
	if err != nil || trip.ID != "t9" {
		t.Fatalf("Create = %+v, %v", trip, err)
	}
	if gotCreate.UserID != "u1" || gotCreate.StartDate != "2025-10-18" {
		t.Errorf("create body = %+v", gotCreate)
	}
	if _, err := c.AddLocation(ctx, "t9", addLocationBody{UserID: "u1", Name: "Rome, Italy", Lat: 41.9, Lng: 12.5}); err != nil {
		t.Fatalf("AddLocation: %v", err)
	}
	if gotAdd.Name != "Rome, Italy" {
		t.Errorf("add body = %+v", gotAdd)
	}
	if _, err := c.AddLocation(ctx, "other", addLocationBody{}); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestClientTimeoutIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, 20*time.Millisecond).List(context.Background(), "u1")
	if !IsUnavailable(err) {
		t.Fatalf("expected unavailable, got %v", err)
	}
}

func TestCalendar(t *testing.T) {
	out := Calendar([]Trip{
		{ID: "t1", Title: "Italy", Description: "Food", StartDate: "2025-10-18T00:00:00Z", EndDate: "2025-10-28T00:00:00Z",
			Locations: []types.Location{{Name: "Rome"}, {Name: "Florence"}}},
		{ID: "bad", Title: "Broken", StartDate: "someday"},
	}, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC))

	for _, want := range []string{
		"BEGIN:VCALENDAR",
		"UID:t1@tripmate",
		"SUMMARY:Italy",
		"DTSTART;VALUE=DATE:20251018",
		"DTEND;VALUE=DATE:20251029",
		"LOCATION:Rome / Florence",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("calendar missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Broken") {
		t.Errorf("undated trip should be skipped")
	}
}
