package types

import (
	"math"
	"testing"
)

func TestDistanceKm(t *testing.T) {
	tests := []struct {
		name string
		a, b Location
		want float64
		tol  float64
	}{
		{"same point", Location{Lat: 41.9, Lng: 12.5}, Location{Lat: 41.9, Lng: 12.5}, 0, 0.001},
		{"rome to florence", Location{Lat: 41.9028, Lng: 12.4964}, Location{Lat: 43.7696, Lng: 11.2558}, 230, 10},
		{"paris to london", Location{Lat: 48.8566, Lng: 2.3522}, Location{Lat: 51.5074, Lng: -0.1278}, 344, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistanceKm(tt.a, tt.b)
			if math.Abs(got-tt.want) > tt.tol {
				t.Errorf("DistanceKm = %.2f, want %.2f ± %.2f", got, tt.want, tt.tol)
			}
		})
	}
}

func TestUnresolved(t *testing.T) {
	if !(Location{Name: "Atlantis"}).Unresolved() {
		t.Error("zero coordinates should be unresolved")
	}
	if (Location{Name: "Quito", Lat: -0.18, Lng: -78.47}).Unresolved() {
		t.Error("non-zero coordinates should be resolved")
	}
}
