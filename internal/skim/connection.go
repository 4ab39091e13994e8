package skim

import "sort"

// odConnection is one candidate door-to-door trip for a specific
// (origin sample, destination sample) pair. Immutable once built;
// constructed per tree and egress stop, filtered, and discarded after
// one OD evaluation.
type odConnection struct {
	departureTime float64 // observed at the first boarding stop
	travelTime    float64 // in-system, excludes access and egress
	accessTime    float64
	egressTime    float64
	transferCount int
	travelInfo    TravelInfo
}

// totalTravelTime is the complete door-to-door duration.
func (c odConnection) totalTravelTime() float64 {
	return c.accessTime + c.travelTime + c.egressTime
}

// effectiveDeparture is the instant a traveller must leave the sample
// point to catch the connection.
func (c odConnection) effectiveDeparture() float64 {
	return c.departureTime - c.accessTime
}

// buildConnections emits one candidate connection per (tree, egress
// stop) combination where the tree reaches the egress stop.
func buildConnections(trees []map[StopID]TravelInfo, egress []stopWalk) []odConnection {
	var connections []odConnection
	for _, tree := range trees {
		for _, e := range egress {
			info, ok := tree[e.stop.ID]
			if !ok {
				continue
			}
			connections = append(connections, odConnection{
				departureTime: info.DepartureTime,
				travelTime:    info.TravelTime,
				accessTime:    info.AccessTime,
				egressTime:    e.walk,
				transferCount: info.Transfers,
				travelInfo:    info,
			})
		}
	}
	return connections
}

// sortAndFilterConnections reduces candidate connections to the minimal
// non-dominated set over the criterion pair (effective departure, total
// travel time): for every instant in the window, the best reachable
// connection survives. Runs a forward pass discarding connections a
// traveller already waiting for an earlier one would never take, then a
// backward pass discarding connections a traveller could just as well
// skip by waiting for a later one. The input is not modified; the
// result is ascending in effective departure time.
func sortAndFilterConnections(connections []odConnection) []odConnection {
	sorted := make([]odConnection, len(connections))
	copy(sorted, connections)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].effectiveDeparture() < sorted[j].effectiveDeparture()
	})

	// Forward pass: keep c after kept predecessor e iff shifting the
	// departure forward still pays off in total travel time.
	forward := make([]odConnection, 0, len(sorted))
	for _, c := range sorted {
		if len(forward) == 0 {
			forward = append(forward, c)
			continue
		}
		e := forward[len(forward)-1]
		timeDiff := c.effectiveDeparture() - e.effectiveDeparture()
		if e.totalTravelTime()+timeDiff > c.totalTravelTime() {
			forward = append(forward, c)
		}
	}

	// Backward pass over the survivors, symmetric.
	backward := make([]odConnection, 0, len(forward))
	for i := len(forward) - 1; i >= 0; i-- {
		c := forward[i]
		if len(backward) == 0 {
			backward = append(backward, c)
			continue
		}
		l := backward[len(backward)-1]
		timeDiff := l.effectiveDeparture() - c.effectiveDeparture()
		if l.totalTravelTime()+timeDiff > c.totalTravelTime() {
			backward = append(backward, c)
		}
	}

	// Restore ascending effective-departure order.
	for i, j := 0, len(backward)-1; i < j; i, j = i+1, j-1 {
		backward[i], backward[j] = backward[j], backward[i]
	}
	return backward
}

// findFastestConnection returns the connection with the minimal total
// travel time, preferring the earliest on ties.
func findFastestConnection(connections []odConnection) odConnection {
	fastest := connections[0]
	for _, c := range connections[1:] {
		if c.totalTravelTime() < fastest.totalTravelTime() {
			fastest = c
		}
	}
	return fastest
}
