package skim

import (
	"log/slog"

	"github.com/jiayunsun/ptskim/internal/geo"
)

// StopID identifies a transit stop.
type StopID string

// Stop is a transit boarding/alighting point with a projected position.
type Stop struct {
	ID  StopID
	Pos geo.Point
}

// OriginStop is a departure stop candidate together with the walking
// time from the sample point it was resolved for. The router embeds the
// access time into every TravelInfo of the tree it builds.
type OriginStop struct {
	ID         StopID
	AccessTime float64 // seconds
}

// Leg is one part of a reconstructed route: either a transit stage or a
// walk/transfer stage (LineID empty).
type Leg struct {
	LineID       string  // transit line (empty for walk/transfer legs)
	RouteID      string  // service run within the line
	BoardingTime float64 // seconds since midnight
	ArrivalTime  float64 // seconds since midnight
	Distance     float64 // meters covered in vehicle
}

// Transit reports whether the leg is an in-vehicle stage.
func (l Leg) Transit() bool {
	return l.LineID != ""
}

// TravelInfo describes the best journey from an origin stop set to one
// reachable stop, as produced by the routing oracle for one departure
// instant.
type TravelInfo struct {
	DepartureStop StopID
	DepartureTime float64 // departure at the first boarding stop
	TravelTime    float64 // in-system time, excludes access and egress
	AccessTime    float64 // walk time to DepartureStop, copied from the origin set
	Transfers     int
	Legs          []Leg
}

// Router builds a shortest-path tree from a set of origin stops at a
// given departure instant. Implementations are not assumed safe for
// concurrent use; every worker owns a private instance.
type Router interface {
	BuildTree(origins []OriginStop, departureTime float64) map[StopID]TravelInfo
}

// StopIndex answers spatial queries over the stop set. It is read-only
// during a computation and shared by all workers.
type StopIndex interface {
	// NearbyStops returns all stops within radius meters of p, in a
	// deterministic order.
	NearbyStops(p geo.Point, radius float64) []Stop
	// NearestStop returns the stop closest to p, or ok=false if the
	// network has no stops at all.
	NearestStop(p geo.Point) (Stop, bool)
}

// TrainClassifier decides whether a transit leg counts as a train stage.
type TrainClassifier func(lineID, routeID string) bool

// WalkParams controls access and egress stop resolution.
type WalkParams struct {
	Speed           float64 // beeline walk speed, m/s
	SearchRadius    float64 // meters
	ExtensionRadius float64 // meters added beyond the nearest stop when the search radius is empty
}

// Config describes one matrix computation.
type Config[T comparable] struct {
	// Zones in a fixed order; the order defines matrix layout and makes
	// results independent of the number of workers.
	Zones []T
	// SamplesPerZone maps each zone to its sample points. A zone with a
	// missing entry or an empty slice gets its whole row invalidated.
	SamplesPerZone map[T][]geo.Point

	// Departure window [MinDepartureTime, MaxDepartureTime) sampled at
	// StepSize, all in seconds since midnight.
	MinDepartureTime float64
	MaxDepartureTime float64
	StepSize         float64

	Walk    WalkParams
	Workers int

	// NewRouter constructs one private routing oracle per worker.
	NewRouter func() Router
	Stops     StopIndex
	IsTrain   TrainClassifier

	Logger *slog.Logger
}
