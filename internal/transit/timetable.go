// Package transit models the scheduled transit network the routing
// oracle operates on: stops with projected coordinates, trips with
// their timed stop-to-stop connections, and walking transfers between
// nearby stops. A Timetable is built once from imported GTFS data and
// is read-only afterwards, so it can back any number of routers.
package transit

import (
	"fmt"
	"sort"

	"github.com/jiayunsun/ptskim/internal/geo"
	"github.com/jiayunsun/ptskim/internal/skim"
	"github.com/jiayunsun/ptskim/internal/stopindex"
)

// StopRecord is one imported stop in WGS84 coordinates.
type StopRecord struct {
	ID  string
	Lat float64
	Lon float64
}

// StopTimeRecord is one imported stop-time event. Records must arrive
// grouped by trip and ordered by stop sequence.
type StopTimeRecord struct {
	TripID    string
	LineID    string // GTFS route_id
	RouteType int
	StopID    string
	Arrival   float64 // seconds since service-day midnight
	Departure float64
}

// Trip is one service run of a line.
type Trip struct {
	ID        string
	LineID    string
	RouteType int
}

// Connection is one timed stop-to-stop vehicle movement.
type Connection struct {
	From     int // stop index
	To       int
	DepTime  float64
	ArrTime  float64
	Trip     int // index into Trips
	Distance float64
	// CumDist is the distance covered along the trip up to and
	// including this connection, used to price multi-connection legs.
	CumDist float64
}

// Footpath is a walking transfer to a nearby stop.
type Footpath struct {
	To   int
	Walk float64 // seconds
}

// Options controls timetable construction.
type Options struct {
	TransferRadius  float64 // footpaths link stops within this many meters
	WalkSpeed       float64 // m/s, for footpath durations
	MinTransferTime float64 // seconds required to change vehicles at a stop
}

// DefaultOptions matches typical regional-model assumptions.
func DefaultOptions() Options {
	return Options{
		TransferRadius:  400,
		WalkSpeed:       1.1,
		MinTransferTime: 120,
	}
}

// Timetable is the immutable routing network.
type Timetable struct {
	Stops       []skim.Stop
	Trips       []Trip
	Connections []Connection // ascending departure time
	Footpaths   [][]Footpath // indexed by origin stop

	MinTransferTime float64

	stopIdx    map[skim.StopID]int
	lineTypes  map[string]int
	projection *geo.Projection
}

// New builds a timetable from imported records. Stop-time records must
// be grouped by trip in stop-sequence order; consecutive events of a
// trip become connections.
func New(stops []StopRecord, stopTimes []StopTimeRecord, opts Options) (*Timetable, error) {
	if len(stops) == 0 {
		return nil, fmt.Errorf("transit: no stops")
	}
	if opts.WalkSpeed <= 0 {
		return nil, fmt.Errorf("transit: walk speed must be positive")
	}

	// Anchor the local projection at the stop centroid.
	var sumLat, sumLon float64
	for _, s := range stops {
		sumLat += s.Lat
		sumLon += s.Lon
	}
	projection := geo.NewProjection(sumLat/float64(len(stops)), sumLon/float64(len(stops)))

	tt := &Timetable{
		Stops:           make([]skim.Stop, len(stops)),
		MinTransferTime: opts.MinTransferTime,
		stopIdx:         make(map[skim.StopID]int, len(stops)),
		lineTypes:       make(map[string]int),
		projection:      projection,
	}
	for i, s := range stops {
		id := skim.StopID(s.ID)
		if _, dup := tt.stopIdx[id]; dup {
			return nil, fmt.Errorf("transit: duplicate stop %s", s.ID)
		}
		tt.Stops[i] = skim.Stop{ID: id, Pos: projection.Project(s.Lat, s.Lon)}
		tt.stopIdx[id] = i
	}

	if err := tt.buildConnections(stopTimes); err != nil {
		return nil, err
	}
	tt.buildFootpaths(opts)
	return tt, nil
}

func (tt *Timetable) buildConnections(stopTimes []StopTimeRecord) error {
	tripIdx := make(map[string]int)
	for i := 1; i < len(stopTimes); i++ {
		if stopTimes[i].TripID != stopTimes[i-1].TripID {
			continue
		}
		prev, cur := stopTimes[i-1], stopTimes[i]

		from, ok := tt.stopIdx[skim.StopID(prev.StopID)]
		if !ok {
			return fmt.Errorf("transit: trip %s references unknown stop %s", prev.TripID, prev.StopID)
		}
		to, ok := tt.stopIdx[skim.StopID(cur.StopID)]
		if !ok {
			return fmt.Errorf("transit: trip %s references unknown stop %s", cur.TripID, cur.StopID)
		}
		if cur.Arrival < prev.Departure {
			return fmt.Errorf("transit: trip %s runs backwards in time at stop %s", cur.TripID, cur.StopID)
		}

		trip, ok := tripIdx[cur.TripID]
		if !ok {
			trip = len(tt.Trips)
			tripIdx[cur.TripID] = trip
			tt.Trips = append(tt.Trips, Trip{ID: cur.TripID, LineID: cur.LineID, RouteType: cur.RouteType})
			tt.lineTypes[cur.LineID] = cur.RouteType
		}

		distance := geo.Euclidean(tt.Stops[from].Pos, tt.Stops[to].Pos)
		cum := distance
		if n := len(tt.Connections); n > 0 && tt.Connections[n-1].Trip == trip {
			cum += tt.Connections[n-1].CumDist
		}
		tt.Connections = append(tt.Connections, Connection{
			From:     from,
			To:       to,
			DepTime:  prev.Departure,
			ArrTime:  cur.Arrival,
			Trip:     trip,
			Distance: distance,
			CumDist:  cum,
		})
	}

	sort.SliceStable(tt.Connections, func(i, j int) bool {
		return tt.Connections[i].DepTime < tt.Connections[j].DepTime
	})
	return nil
}

func (tt *Timetable) buildFootpaths(opts Options) {
	index := stopindex.New(tt.Stops, 0)
	tt.Footpaths = make([][]Footpath, len(tt.Stops))
	for i, from := range tt.Stops {
		for _, to := range index.NearbyStops(from.Pos, opts.TransferRadius) {
			j := tt.stopIdx[to.ID]
			if j == i {
				continue
			}
			walk := geo.Euclidean(from.Pos, to.Pos)/opts.WalkSpeed + opts.MinTransferTime
			tt.Footpaths[i] = append(tt.Footpaths[i], Footpath{To: j, Walk: walk})
		}
	}
}

// Projection returns the lat/lon projection the timetable was built
// with; zone sample points must be projected with the same one.
func (tt *Timetable) Projection() *geo.Projection {
	return tt.projection
}

// StopIdx resolves a stop ID to its index, ok=false when unknown.
func (tt *Timetable) StopIdx(id skim.StopID) (int, bool) {
	i, ok := tt.stopIdx[id]
	return i, ok
}

// TrainClassifier returns the train/non-train predicate for skim
// computations: GTFS route type 2 plus the extended 100-series rail
// types count as train.
func (tt *Timetable) TrainClassifier() skim.TrainClassifier {
	return func(lineID, routeID string) bool {
		rt, ok := tt.lineTypes[lineID]
		return ok && (rt == 2 || (rt >= 100 && rt < 200))
	}
}

// ApplyDelays shifts all connections of the given trips by their
// current realtime delay in seconds and restores ascending departure
// order. Intended to be applied once, before routers are built.
func (tt *Timetable) ApplyDelays(delaysByTrip map[string]float64) int {
	if len(delaysByTrip) == 0 {
		return 0
	}
	shifted := 0
	for i := range tt.Connections {
		c := &tt.Connections[i]
		delay, ok := delaysByTrip[tt.Trips[c.Trip].ID]
		if !ok || delay == 0 {
			continue
		}
		c.DepTime += delay
		c.ArrTime += delay
		shifted++
	}
	if shifted > 0 {
		sort.SliceStable(tt.Connections, func(i, j int) bool {
			return tt.Connections[i].DepTime < tt.Connections[j].DepTime
		})
	}
	return shifted
}
