package extraction

import (
	"reflect"
	"testing"
)

func TestParseTripRequest(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  DateRange
	}{
		{"from named months", "Paris from July 1 to July 10", DateRange{"2025-07-01", "2025-07-10"}},
		{"from iso", "Create a trip to Rome from 2025-10-18 to 2025-10-28", DateRange{"2025-10-18", "2025-10-28"}},
		{"x to y", "Lisbon march 3 to march 9", DateRange{"2025-03-03", "2025-03-09"}},
		{"dash slash dates", "10/01/2025 - 10/05/2025", DateRange{"2025-10-01", "2025-10-05"}},
		{"dash named", "March 3 - March 9", DateRange{"2025-03-03", "2025-03-09"}},
		{"relative start", "Tokyo next week", DateRange{"2025-03-22", "2025-03-29"}},
		{"half range falls back to single date", "from 2025-10-18 to someday", DateRange{"2025-10-18", "2025-10-25"}},
		{"unparseable start falls back", "from someday to July 10", DateRange{"2025-07-10", "2025-07-17"}},
		{"nothing", "I want to go somewhere warm", DateRange{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseTripRequest(tt.input, fixedNow); got != tt.want {
				t.Fatalf("ParseTripRequest(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestRangeRuleOrder(t *testing.T) {
	want := []string{"from X to Y", "X to Y", "X - Y"}
	if got := RangeRuleOrder(); !reflect.DeepEqual(got, want) {
		t.Fatalf("RangeRuleOrder() = %v, want %v", got, want)
	}
}
