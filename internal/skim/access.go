package skim

import "github.com/jiayunsun/ptskim/internal/geo"

// stopWalk is a candidate stop together with the beeline walking time
// between it and the sample point it was resolved for.
type stopWalk struct {
	stop Stop
	walk float64 // seconds
}

// stopCandidates resolves the stops usable from a sample point. It
// searches within the configured radius first; when that comes up empty
// it extends the search to the nearest stop plus the extension radius,
// so a non-empty network always yields at least one candidate.
func stopCandidates(index StopIndex, p geo.Point, params WalkParams) []stopWalk {
	stops := index.NearbyStops(p, params.SearchRadius)
	if len(stops) == 0 {
		nearest, ok := index.NearestStop(p)
		if !ok {
			return nil
		}
		radius := geo.Euclidean(p, nearest.Pos) + params.ExtensionRadius
		stops = index.NearbyStops(p, radius)
	}

	candidates := make([]stopWalk, len(stops))
	for i, stop := range stops {
		candidates[i] = stopWalk{
			stop: stop,
			walk: geo.Euclidean(p, stop.Pos) / params.Speed,
		}
	}
	return candidates
}
