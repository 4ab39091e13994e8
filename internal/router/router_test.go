package router

import (
	"math"
	"testing"

	"github.com/jiayunsun/ptskim/internal/skim"
	"github.com/jiayunsun/ptskim/internal/transit"
)

// Test network: a rail line q1→q2→q3, a bus from the b1 stop next to
// q2 heading north to q4, and two later rail runs q2→q5 used to probe
// the same-stop transfer buffer.
func testTimetable(t *testing.T) *transit.Timetable {
	t.Helper()
	stops := []transit.StopRecord{
		{ID: "q1", Lat: 47.0000, Lon: 8.0000},
		{ID: "q2", Lat: 47.0000, Lon: 8.0105},
		{ID: "q3", Lat: 47.0000, Lon: 8.0210},
		{ID: "b1", Lat: 47.0003, Lon: 8.0105},
		{ID: "q4", Lat: 47.0060, Lon: 8.0105},
		{ID: "q5", Lat: 47.0000, Lon: 8.0320},
	}
	stopTimes := []transit.StopTimeRecord{
		{TripID: "tripX", LineID: "L1", RouteType: 2, StopID: "q1", Arrival: 1000, Departure: 1000},
		{TripID: "tripX", LineID: "L1", RouteType: 2, StopID: "q2", Arrival: 1600, Departure: 1660},
		{TripID: "tripX", LineID: "L1", RouteType: 2, StopID: "q3", Arrival: 2200, Departure: 2200},

		{TripID: "tripY", LineID: "B1", RouteType: 3, StopID: "b1", Arrival: 1900, Departure: 1900},
		{TripID: "tripY", LineID: "B1", RouteType: 3, StopID: "q4", Arrival: 2400, Departure: 2400},

		// Departs 100s after tripX arrives at q2: too tight to transfer.
		{TripID: "tripZ", LineID: "L2", RouteType: 2, StopID: "q2", Arrival: 1700, Departure: 1700},
		{TripID: "tripZ", LineID: "L2", RouteType: 2, StopID: "q5", Arrival: 2000, Departure: 2000},

		{TripID: "tripZ2", LineID: "L2", RouteType: 2, StopID: "q2", Arrival: 1750, Departure: 1750},
		{TripID: "tripZ2", LineID: "L2", RouteType: 2, StopID: "q5", Arrival: 2100, Departure: 2100},
	}
	tt, err := transit.New(stops, stopTimes, transit.DefaultOptions())
	if err != nil {
		t.Fatalf("building timetable: %v", err)
	}
	return tt
}

func origins(access float64) []skim.OriginStop {
	return []skim.OriginStop{{ID: "q1", AccessTime: access}}
}

func TestBuildTree_DirectRide(t *testing.T) {
	s := New(testTimetable(t))
	tree := s.BuildTree(origins(60), 900)

	info, ok := tree["q3"]
	if !ok {
		t.Fatal("q3 should be reachable")
	}
	if info.DepartureStop != "q1" {
		t.Errorf("DepartureStop = %s, want q1", info.DepartureStop)
	}
	if info.DepartureTime != 1000 {
		t.Errorf("DepartureTime = %f, want 1000", info.DepartureTime)
	}
	if info.TravelTime != 1200 {
		t.Errorf("TravelTime = %f, want 1200", info.TravelTime)
	}
	if info.AccessTime != 60 {
		t.Errorf("AccessTime = %f, want 60 (embedded from origin)", info.AccessTime)
	}
	if info.Transfers != 0 {
		t.Errorf("Transfers = %d, want 0", info.Transfers)
	}
	if len(info.Legs) != 1 || !info.Legs[0].Transit() {
		t.Fatalf("expected a single transit leg, got %v", info.Legs)
	}
	// Both rail connections merge into one leg covering ~1.6 km.
	if math.Abs(info.Legs[0].Distance-1594) > 25 {
		t.Errorf("leg distance = %f, want ~1594", info.Legs[0].Distance)
	}
	if info.Legs[0].BoardingTime != 1000 || info.Legs[0].ArrivalTime != 2200 {
		t.Errorf("leg times = (%f, %f), want (1000, 2200)", info.Legs[0].BoardingTime, info.Legs[0].ArrivalTime)
	}
}

func TestBuildTree_FootpathTransfer(t *testing.T) {
	s := New(testTimetable(t))
	tree := s.BuildTree(origins(60), 900)

	info, ok := tree["q4"]
	if !ok {
		t.Fatal("q4 should be reachable via the b1 footpath")
	}
	if info.Transfers != 1 {
		t.Errorf("Transfers = %d, want 1", info.Transfers)
	}
	if info.DepartureTime != 1000 {
		t.Errorf("DepartureTime = %f, want 1000", info.DepartureTime)
	}
	if info.TravelTime != 1400 {
		t.Errorf("TravelTime = %f, want 2400-1000", info.TravelTime)
	}
	if len(info.Legs) != 3 {
		t.Fatalf("expected ride+walk+ride, got %d legs", len(info.Legs))
	}
	if !info.Legs[0].Transit() || info.Legs[1].Transit() || !info.Legs[2].Transit() {
		t.Errorf("leg pattern wrong: %v", info.Legs)
	}
	if info.Legs[2].LineID != "B1" {
		t.Errorf("final leg line = %s, want B1", info.Legs[2].LineID)
	}
}

func TestBuildTree_MinTransferTime(t *testing.T) {
	s := New(testTimetable(t))
	tree := s.BuildTree(origins(60), 900)

	// tripZ at 1700 is 100s after arrival, under the 120s buffer; the
	// 1750 run is the first catchable one.
	info, ok := tree["q5"]
	if !ok {
		t.Fatal("q5 should be reachable via tripZ2")
	}
	if got := info.DepartureTime + info.TravelTime; got != 2100 {
		t.Errorf("arrival at q5 = %f, want 2100 (tripZ2, not the tight tripZ)", got)
	}
	if info.Transfers != 1 {
		t.Errorf("Transfers = %d, want 1", info.Transfers)
	}
}

func TestBuildTree_DepartureAfterLastService(t *testing.T) {
	s := New(testTimetable(t))
	tree := s.BuildTree(origins(60), 1100)

	// tripX already left q1; nothing else serves the origin.
	if len(tree) != 0 {
		t.Errorf("expected empty tree, got %d entries", len(tree))
	}
}

func TestBuildTree_OriginStopsNotInTree(t *testing.T) {
	s := New(testTimetable(t))
	tree := s.BuildTree(origins(60), 900)

	if _, ok := tree["q1"]; ok {
		t.Error("walk-only entries (the origin itself) must not appear in the tree")
	}
	if _, ok := tree["b1"]; ok {
		t.Error("stops reached only by walking must not appear in the tree")
	}
}

func TestBuildTree_ScratchStateResets(t *testing.T) {
	s := New(testTimetable(t))

	first := s.BuildTree(origins(60), 900)
	late := s.BuildTree(origins(60), 1100)
	again := s.BuildTree(origins(60), 900)

	if len(late) != 0 {
		t.Fatalf("late query should be empty, got %d", len(late))
	}
	if len(again) != len(first) {
		t.Fatalf("repeated query returned %d entries, want %d", len(again), len(first))
	}
	for id, want := range first {
		got, ok := again[id]
		if !ok {
			t.Fatalf("repeated query lost stop %s", id)
		}
		if got.DepartureTime != want.DepartureTime || got.TravelTime != want.TravelTime || got.Transfers != want.Transfers {
			t.Errorf("repeated query differs for stop %s: %+v vs %+v", id, got, want)
		}
	}
}

func TestBuildTree_MultipleOrigins(t *testing.T) {
	s := New(testTimetable(t))
	tree := s.BuildTree([]skim.OriginStop{
		{ID: "q1", AccessTime: 300},
		{ID: "b1", AccessTime: 45},
	}, 900)

	// q4 is now best reached directly from b1 without any transfer.
	info, ok := tree["q4"]
	if !ok {
		t.Fatal("q4 should be reachable")
	}
	if info.DepartureStop != "b1" {
		t.Errorf("DepartureStop = %s, want b1", info.DepartureStop)
	}
	if info.AccessTime != 45 {
		t.Errorf("AccessTime = %f, want the b1 access of 45", info.AccessTime)
	}
	if info.Transfers != 0 {
		t.Errorf("Transfers = %d, want 0", info.Transfers)
	}
}
