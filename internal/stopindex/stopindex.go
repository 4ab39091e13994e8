// Package stopindex provides an in-memory spatial index over transit
// stops, backing the access/egress stop resolution of the skim
// computation. The index is read-only after construction and safe for
// concurrent queries.
package stopindex

import (
	"math"

	"github.com/jiayunsun/ptskim/internal/geo"
	"github.com/jiayunsun/ptskim/internal/skim"
)

// DefaultCellSize is a reasonable cell edge for urban stop densities.
const DefaultCellSize = 500.0 // meters

type cellKey struct {
	cx, cy int
}

// Grid is a uniform-cell spatial index over projected stop coordinates.
type Grid struct {
	cellSize float64
	cells    map[cellKey][]skim.Stop
	count    int
	minCX    int
	maxCX    int
	minCY    int
	maxCY    int
}

// New builds a grid index over the given stops. cellSize <= 0 selects
// DefaultCellSize.
func New(stops []skim.Stop, cellSize float64) *Grid {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	g := &Grid{
		cellSize: cellSize,
		cells:    make(map[cellKey][]skim.Stop),
		count:    len(stops),
	}
	for i, s := range stops {
		k := g.key(s.Pos)
		g.cells[k] = append(g.cells[k], s)
		if i == 0 {
			g.minCX, g.maxCX = k.cx, k.cx
			g.minCY, g.maxCY = k.cy, k.cy
			continue
		}
		g.minCX = min(g.minCX, k.cx)
		g.maxCX = max(g.maxCX, k.cx)
		g.minCY = min(g.minCY, k.cy)
		g.maxCY = max(g.maxCY, k.cy)
	}
	return g
}

func (g *Grid) key(p geo.Point) cellKey {
	return cellKey{
		cx: int(math.Floor(p.X / g.cellSize)),
		cy: int(math.Floor(p.Y / g.cellSize)),
	}
}

// NearbyStops returns every stop within radius meters of p. The result
// order is deterministic: cells are scanned in fixed order and stops
// keep their insertion order within a cell.
func (g *Grid) NearbyStops(p geo.Point, radius float64) []skim.Stop {
	lo := g.key(geo.Point{X: p.X - radius, Y: p.Y - radius})
	hi := g.key(geo.Point{X: p.X + radius, Y: p.Y + radius})

	var out []skim.Stop
	for cx := lo.cx; cx <= hi.cx; cx++ {
		for cy := lo.cy; cy <= hi.cy; cy++ {
			for _, s := range g.cells[cellKey{cx, cy}] {
				if geo.Euclidean(p, s.Pos) <= radius {
					out = append(out, s)
				}
			}
		}
	}
	return out
}

// NearestStop returns the stop closest to p, expanding the search ring
// by ring. ok is false only for an empty network.
func (g *Grid) NearestStop(p geo.Point) (skim.Stop, bool) {
	if g.count == 0 {
		return skim.Stop{}, false
	}

	center := g.key(p)
	maxRing := max(
		max(center.cx-g.minCX, g.maxCX-center.cx),
		max(center.cy-g.minCY, g.maxCY-center.cy),
	)

	var best skim.Stop
	bestDist := math.Inf(1)
	for ring := 0; ring <= maxRing; ring++ {
		// Once a candidate is found, one extra ring covers the case of
		// a closer stop just across a cell boundary.
		if !math.IsInf(bestDist, 1) && float64(ring-1)*g.cellSize > bestDist {
			break
		}
		for cx := center.cx - ring; cx <= center.cx+ring; cx++ {
			for cy := center.cy - ring; cy <= center.cy+ring; cy++ {
				onRing := cx == center.cx-ring || cx == center.cx+ring ||
					cy == center.cy-ring || cy == center.cy+ring
				if !onRing {
					continue
				}
				for _, s := range g.cells[cellKey{cx, cy}] {
					if d := geo.Euclidean(p, s.Pos); d < bestDist {
						best = s
						bestDist = d
					}
				}
			}
		}
	}
	return best, true
}
