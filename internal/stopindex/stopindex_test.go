package stopindex

import (
	"testing"

	"github.com/jiayunsun/ptskim/internal/geo"
	"github.com/jiayunsun/ptskim/internal/skim"
)

func testStops() []skim.Stop {
	return []skim.Stop{
		{ID: "center", Pos: geo.Point{X: 0, Y: 0}},
		{ID: "near", Pos: geo.Point{X: 300, Y: 400}}, // 500 m from origin
		{ID: "mid", Pos: geo.Point{X: 2_000, Y: 0}},
		{ID: "far", Pos: geo.Point{X: 50_000, Y: 50_000}},
		{ID: "negative", Pos: geo.Point{X: -700, Y: -100}},
	}
}

func TestNearbyStops(t *testing.T) {
	g := New(testStops(), DefaultCellSize)

	tests := []struct {
		name   string
		p      geo.Point
		radius float64
		want   []skim.StopID
	}{
		{
			name: "tight radius finds only the center stop",
			p:    geo.Point{X: 10, Y: 10}, radius: 100,
			want: []skim.StopID{"center"},
		},
		{
			name: "radius exactly reaching a stop includes it",
			p:    geo.Point{X: 0, Y: 0}, radius: 500,
			want: []skim.StopID{"center", "near"},
		},
		{
			name: "wide radius spans cells and negative coordinates",
			p:    geo.Point{X: 0, Y: 0}, radius: 2_500,
			want: []skim.StopID{"negative", "center", "near", "mid"},
		},
		{
			name: "no stops in range",
			p:    geo.Point{X: 10_000, Y: -10_000}, radius: 1_000,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := g.NearbyStops(tt.p, tt.radius)
			if len(got) != len(tt.want) {
				t.Fatalf("NearbyStops() returned %d stops, want %d: %v", len(got), len(tt.want), got)
			}
			found := make(map[skim.StopID]bool)
			for _, s := range got {
				found[s.ID] = true
			}
			for _, id := range tt.want {
				if !found[id] {
					t.Errorf("NearbyStops() missing stop %s", id)
				}
			}
		})
	}
}

func TestNearbyStops_DeterministicOrder(t *testing.T) {
	g := New(testStops(), DefaultCellSize)
	first := g.NearbyStops(geo.Point{X: 0, Y: 0}, 3_000)
	for i := 0; i < 50; i++ {
		again := g.NearbyStops(geo.Point{X: 0, Y: 0}, 3_000)
		for j := range first {
			if again[j].ID != first[j].ID {
				t.Fatalf("iteration %d: order changed at position %d", i, j)
			}
		}
	}
}

func TestNearestStop(t *testing.T) {
	g := New(testStops(), DefaultCellSize)

	tests := []struct {
		name string
		p    geo.Point
		want skim.StopID
	}{
		{name: "on top of a stop", p: geo.Point{X: 0, Y: 0}, want: "center"},
		{name: "closer to mid", p: geo.Point{X: 1_800, Y: 100}, want: "mid"},
		{name: "remote point finds the far stop", p: geo.Point{X: 49_000, Y: 52_000}, want: "far"},
		{
			// Query cell is empty; the true nearest sits one ring over.
			name: "cell boundary does not hide the true nearest",
			p:    geo.Point{X: 740, Y: 10},
			want: "near",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := g.NearestStop(tt.p)
			if !ok {
				t.Fatal("NearestStop() returned ok=false on a non-empty network")
			}
			if got.ID != tt.want {
				t.Errorf("NearestStop() = %s, want %s", got.ID, tt.want)
			}
		})
	}
}

func TestNearestStop_EmptyNetwork(t *testing.T) {
	g := New(nil, 0)
	if _, ok := g.NearestStop(geo.Point{}); ok {
		t.Error("NearestStop() on an empty network should return ok=false")
	}
}
