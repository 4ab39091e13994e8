package geo

import (
	"math"
	"testing"
)

func TestEuclidean(t *testing.T) {
	tests := []struct {
		name string
		a, b Point
		want float64
	}{
		{name: "same point", a: Point{100, 200}, b: Point{100, 200}, want: 0},
		{name: "3-4-5 triangle", a: Point{0, 0}, b: Point{300, 400}, want: 500},
		{name: "negative coordinates", a: Point{-50, -50}, b: Point{-50, 70}, want: 120},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Euclidean(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Euclidean() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestEuclidean_Symmetry(t *testing.T) {
	a := Point{12.5, -7.25}
	b := Point{-903.1, 441.9}
	if Euclidean(a, b) != Euclidean(b, a) {
		t.Error("Euclidean not symmetric")
	}
}

func TestHaversine_KnownDistances(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		wantMeters             float64
		tolerance              float64
	}{
		{
			name: "Bern to Zurich (~95 km)",
			lat1: 46.9480, lon1: 7.4474,
			lat2: 47.3769, lon2: 8.5417,
			wantMeters: 95_200,
			tolerance:  500,
		},
		{
			name: "same point returns zero",
			lat1: 46.9480, lon1: 7.4474,
			lat2: 46.9480, lon2: 7.4474,
			wantMeters: 0,
			tolerance:  0.001,
		},
		{
			name: "equator quarter circumference",
			lat1: 0, lon1: 0,
			lat2: 0, lon2: 90,
			wantMeters: math.Pi / 2 * earthRadiusMeters,
			tolerance:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Haversine(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if math.Abs(got-tt.wantMeters) > tt.tolerance {
				t.Errorf("Haversine() = %.1f m, want %.1f m (±%.0f)", got, tt.wantMeters, tt.tolerance)
			}
		})
	}
}

func TestProjection_MatchesHaversineNearAnchor(t *testing.T) {
	// Projected Euclidean distances should agree with great-circle
	// distances to well under 1% inside a typical study area.
	proj := NewProjection(46.95, 7.45)

	pairs := []struct {
		lat1, lon1, lat2, lon2 float64
	}{
		{46.9480, 7.4474, 46.9610, 7.4650},  // ~2 km
		{46.9480, 7.4474, 47.0500, 7.6200},  // ~17 km
		{46.8000, 7.1000, 47.1000, 7.8000},  // ~62 km
	}

	for _, p := range pairs {
		want := Haversine(p.lat1, p.lon1, p.lat2, p.lon2)
		got := Euclidean(proj.Project(p.lat1, p.lon1), proj.Project(p.lat2, p.lon2))
		if math.Abs(got-want)/want > 0.01 {
			t.Errorf("projected distance %.1f m deviates more than 1%% from great-circle %.1f m", got, want)
		}
	}
}

func TestProjection_AnchorMapsToOrigin(t *testing.T) {
	proj := NewProjection(46.95, 7.45)
	p := proj.Project(46.95, 7.45)
	if math.Abs(p.X) > 1e-6 || math.Abs(p.Y) > 1e-6 {
		t.Errorf("anchor projected to (%f, %f), want origin", p.X, p.Y)
	}
}
