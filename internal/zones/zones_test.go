package zones

import (
	"strings"
	"testing"

	"github.com/jiayunsun/ptskim/internal/geo"
)

func TestLoad(t *testing.T) {
	csv := `zone_id,lat,lon
B,47.01,8.01
A,47.02,8.02
B,47.03,8.03
`
	set, err := Load(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	// First-appearance order, not sorted.
	if len(set.IDs) != 2 || set.IDs[0] != "B" || set.IDs[1] != "A" {
		t.Errorf("IDs = %v, want [B A]", set.IDs)
	}
	if len(set.Points["B"]) != 2 {
		t.Errorf("zone B has %d points, want 2", len(set.Points["B"]))
	}
	if len(set.Points["A"]) != 1 {
		t.Errorf("zone A has %d points, want 1", len(set.Points["A"]))
	}
	if got := set.Points["A"][0]; got.Lat != 47.02 || got.Lon != 8.02 {
		t.Errorf("zone A point = %+v", got)
	}
}

func TestLoadWithBOM(t *testing.T) {
	csv := "\xef\xbb\xbfzone_id,lat,lon\nA,47,8\n"
	set, err := Load(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(set.IDs) != 1 || set.IDs[0] != "A" {
		t.Errorf("IDs = %v, want [A]", set.IDs)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		csv  string
	}{
		{"wrong header", "id,x,y\nA,47,8\n"},
		{"empty zone id", "zone_id,lat,lon\n,47,8\n"},
		{"bad lat", "zone_id,lat,lon\nA,north,8\n"},
		{"bad lon", "zone_id,lat,lon\nA,47,east\n"},
		{"no zones", "zone_id,lat,lon\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(strings.NewReader(tt.csv)); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestProject(t *testing.T) {
	csv := "zone_id,lat,lon\nA,47.0,8.0\nA,47.0,8.0\n"
	set, err := Load(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	proj := geo.NewProjection(47.0, 8.0)
	samples := set.Project(proj)

	pts, ok := samples["A"]
	if !ok || len(pts) != 2 {
		t.Fatalf("zone A samples = %v", samples)
	}
	// Points at the projection anchor land at the origin.
	if pts[0].X != 0 || pts[0].Y != 0 {
		t.Errorf("anchor point projected to %+v, want origin", pts[0])
	}
}
