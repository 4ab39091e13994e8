// Package router implements the routing oracle of the skim
// computation: a connection-scan engine that builds earliest-arrival
// shortest-path trees from a set of origin stops at a given departure
// instant.
//
// A Scanner keeps per-query scratch state and is therefore not safe for
// concurrent use; the skim orchestrator constructs one per worker.
package router

import (
	"sort"

	"github.com/jiayunsun/ptskim/internal/skim"
	"github.com/jiayunsun/ptskim/internal/transit"
)

// node is one entry of the journey tree. Nodes are immutable once
// linked, so snapshotting a journey is just keeping a pointer.
type node struct {
	stop      int
	arr       float64
	boardConn int     // first connection of the ride, -1 for origin/walk nodes
	exitConn  int     // last connection of the ride, -1 for origin/walk nodes
	walk      float64 // footpath duration for walk nodes
	access    float64 // access walk time, origin nodes only
	prev      *node
}

// Scanner answers BuildTree queries over one timetable.
type Scanner struct {
	tt        *transit.Timetable
	nodes     []*node
	tripBoard []int // boarding connection per trip during a scan, -1 = not boarded
	tripNode  []*node
}

// New creates a Scanner for the given timetable.
func New(tt *transit.Timetable) *Scanner {
	return &Scanner{
		tt:        tt,
		nodes:     make([]*node, len(tt.Stops)),
		tripBoard: make([]int, len(tt.Trips)),
		tripNode:  make([]*node, len(tt.Trips)),
	}
}

// BuildTree computes the earliest-arrival journey from the origin stop
// set to every reachable stop, for a traveller present at each origin
// stop at departureTime. Stops reachable only by walking are not part
// of the tree; a tree entry always contains at least one ride.
func (s *Scanner) BuildTree(origins []skim.OriginStop, departureTime float64) map[skim.StopID]skim.TravelInfo {
	for i := range s.nodes {
		s.nodes[i] = nil
	}
	for i := range s.tripBoard {
		s.tripBoard[i] = -1
		s.tripNode[i] = nil
	}

	for _, o := range origins {
		idx, ok := s.tt.StopIdx(o.ID)
		if !ok {
			continue
		}
		if s.nodes[idx] != nil && s.nodes[idx].access <= o.AccessTime {
			continue
		}
		s.nodes[idx] = &node{stop: idx, arr: departureTime, boardConn: -1, exitConn: -1, access: o.AccessTime}
	}

	conns := s.tt.Connections
	start := sort.Search(len(conns), func(i int) bool {
		return conns[i].DepTime >= departureTime
	})

	for i := start; i < len(conns); i++ {
		c := conns[i]

		if s.tripBoard[c.Trip] < 0 {
			if n := s.nodes[c.From]; n != nil && n.arr+s.boardingSlack(n) <= c.DepTime {
				s.tripBoard[c.Trip] = i
				s.tripNode[c.Trip] = n
			}
		}
		if s.tripBoard[c.Trip] < 0 {
			continue
		}

		cur := s.nodes[c.To]
		if cur != nil && cur.arr <= c.ArrTime {
			continue
		}
		ride := &node{
			stop:      c.To,
			arr:       c.ArrTime,
			boardConn: s.tripBoard[c.Trip],
			exitConn:  i,
			prev:      s.tripNode[c.Trip],
		}
		s.nodes[c.To] = ride

		for _, fp := range s.tt.Footpaths[c.To] {
			walkArr := c.ArrTime + fp.Walk
			if w := s.nodes[fp.To]; w == nil || walkArr < w.arr {
				s.nodes[fp.To] = &node{
					stop:      fp.To,
					arr:       walkArr,
					boardConn: -1,
					exitConn:  -1,
					walk:      fp.Walk,
					prev:      ride,
				}
			}
		}
	}

	tree := make(map[skim.StopID]skim.TravelInfo)
	for idx, n := range s.nodes {
		if n == nil {
			continue
		}
		info, ok := s.travelInfo(n)
		if !ok {
			continue
		}
		tree[s.tt.Stops[idx].ID] = info
	}
	return tree
}

// boardingSlack is the buffer required before boarding at a stop. After
// a ride the minimum transfer time applies; footpath durations already
// include it, and origins board directly.
func (s *Scanner) boardingSlack(n *node) float64 {
	if n.exitConn >= 0 {
		return s.tt.MinTransferTime
	}
	return 0
}

// travelInfo reconstructs the journey chain ending in n. ok is false
// for walk-only journeys.
func (s *Scanner) travelInfo(n *node) (skim.TravelInfo, bool) {
	var legs []skim.Leg
	transfers := 0
	root := n
	for cur := n; cur != nil; cur = cur.prev {
		root = cur
		switch {
		case cur.exitConn >= 0:
			board := s.tt.Connections[cur.boardConn]
			exit := s.tt.Connections[cur.exitConn]
			trip := s.tt.Trips[board.Trip]
			legs = append(legs, skim.Leg{
				LineID:       trip.LineID,
				RouteID:      trip.ID,
				BoardingTime: board.DepTime,
				ArrivalTime:  exit.ArrTime,
				Distance:     exit.CumDist - board.CumDist + board.Distance,
			})
			transfers++
		case cur.prev != nil: // walk node
			legs = append(legs, skim.Leg{
				BoardingTime: cur.arr - cur.walk,
				ArrivalTime:  cur.arr,
			})
		}
	}
	if transfers == 0 {
		return skim.TravelInfo{}, false
	}

	// Legs were collected destination-first.
	for i, j := 0, len(legs)-1; i < j; i, j = i+1, j-1 {
		legs[i], legs[j] = legs[j], legs[i]
	}

	var firstBoarding float64
	for _, l := range legs {
		if l.Transit() {
			firstBoarding = l.BoardingTime
			break
		}
	}

	return skim.TravelInfo{
		DepartureStop: s.tt.Stops[root.stop].ID,
		DepartureTime: firstBoarding,
		TravelTime:    n.arr - firstBoarding,
		AccessTime:    root.access,
		Transfers:     transfers - 1,
		Legs:          legs,
	}, true
}
