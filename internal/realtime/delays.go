// Package realtime reads GTFS-RT TripUpdates feeds and turns them into
// per-trip delays that can be applied to a timetable before a skim run.
package realtime

import (
	gtfs "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
)

// DelaysFromFeed extracts one delay in seconds per trip from a decoded
// TripUpdates message. A trip's delay is the first explicit delay found
// among its stop-time updates, preferring departure over arrival; trips
// without any explicit delay are omitted.
func DelaysFromFeed(feed *gtfs.FeedMessage) map[string]float64 {
	delays := make(map[string]float64)
	for _, entity := range feed.GetEntity() {
		tu := entity.GetTripUpdate()
		if tu == nil {
			continue
		}
		tripID := tu.GetTrip().GetTripId()
		if tripID == "" {
			continue
		}
		if d, ok := tripDelay(tu); ok {
			delays[tripID] = d
		}
	}
	return delays
}

func tripDelay(tu *gtfs.TripUpdate) (float64, bool) {
	for _, stu := range tu.GetStopTimeUpdate() {
		if dep := stu.GetDeparture(); dep != nil && dep.Delay != nil {
			return float64(dep.GetDelay()), true
		}
		if arr := stu.GetArrival(); arr != nil && arr.Delay != nil {
			return float64(arr.GetDelay()), true
		}
	}
	// Trip-level delay is a deprecated but still common fallback.
	if tu.Delay != nil {
		return float64(tu.GetDelay()), true
	}
	return 0, false
}
