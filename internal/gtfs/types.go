// Package gtfs downloads and parses static GTFS feeds. Only the files
// the skim pipeline needs are read: stops, routes, trips and the
// service calendar are held in memory, stop_times is streamed straight
// into storage during import.
package gtfs

// Feed holds the in-memory part of a parsed GTFS zip.
type Feed struct {
	Routes        []Route
	Stops         []Stop
	Trips         []Trip
	Calendar      []CalendarEntry
	CalendarDates []CalendarDate

	// Conditional-request headers of the download this feed came from.
	LastModified string
	ETag         string
}

type Route struct {
	RouteID   string `csv:"route_id"`
	ShortName string `csv:"route_short_name"`
	LongName  string `csv:"route_long_name"`
	RouteType string `csv:"route_type"`
}

type Stop struct {
	StopID       string `csv:"stop_id"`
	Name         string `csv:"stop_name"`
	Lat          string `csv:"stop_lat"`
	Lon          string `csv:"stop_lon"`
	LocationType string `csv:"location_type"`
}

type Trip struct {
	TripID    string `csv:"trip_id"`
	RouteID   string `csv:"route_id"`
	ServiceID string `csv:"service_id"`
}

type StopTime struct {
	TripID        string `csv:"trip_id"`
	ArrivalTime   string `csv:"arrival_time"`
	DepartureTime string `csv:"departure_time"`
	StopID        string `csv:"stop_id"`
	StopSequence  string `csv:"stop_sequence"`
}

type CalendarEntry struct {
	ServiceID string `csv:"service_id"`
	Monday    string `csv:"monday"`
	Tuesday   string `csv:"tuesday"`
	Wednesday string `csv:"wednesday"`
	Thursday  string `csv:"thursday"`
	Friday    string `csv:"friday"`
	Saturday  string `csv:"saturday"`
	Sunday    string `csv:"sunday"`
	StartDate string `csv:"start_date"`
	EndDate   string `csv:"end_date"`
}

type CalendarDate struct {
	ServiceID     string `csv:"service_id"`
	Date          string `csv:"date"`
	ExceptionType string `csv:"exception_type"`
}
