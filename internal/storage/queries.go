package storage

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/jiayunsun/ptskim/internal/skim"
	"github.com/jiayunsun/ptskim/internal/transit"
)

// GetMetadata retrieves a value from the feed_metadata table.
func (db *DB) GetMetadata(ctx context.Context, key string) (string, error) {
	var value string
	err := db.QueryRowContext(ctx, `SELECT value FROM feed_metadata WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// SetMetadata stores a key-value pair in the feed_metadata table.
func (db *DB) SetMetadata(ctx context.Context, key, value string) error {
	_, err := db.ExecContext(ctx,
		`INSERT OR REPLACE INTO feed_metadata (key, value) VALUES (?, ?)`,
		key, value)
	return err
}

// HasData returns true if GTFS data has been imported.
func (db *DB) HasData(ctx context.Context) bool {
	var count int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM routes`).Scan(&count)
	return err == nil && count > 0
}

// LoadStops returns all boardable stops (location_type 0) in WGS84.
func (db *DB) LoadStops(ctx context.Context) ([]transit.StopRecord, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT stop_id, stop_lat, stop_lon
		FROM stops
		WHERE location_type = 0
		ORDER BY stop_id`)
	if err != nil {
		return nil, fmt.Errorf("load stops: %w", err)
	}
	defer rows.Close()

	var stops []transit.StopRecord
	for rows.Next() {
		var s transit.StopRecord
		if err := rows.Scan(&s.ID, &s.Lat, &s.Lon); err != nil {
			return nil, fmt.Errorf("scan stop: %w", err)
		}
		stops = append(stops, s)
	}
	return stops, rows.Err()
}

// LoadStopTimes returns the stop-time events of every trip whose
// service runs on the given date, grouped by trip in stop-sequence
// order, which is the layout the timetable builder requires. GTFS
// clock strings are converted to seconds since service-day midnight.
func (db *DB) LoadStopTimes(ctx context.Context, date time.Time) ([]transit.StopTimeRecord, error) {
	dateStr := date.Format("20060102")
	dayCol := dayColumn(date.Weekday())

	rows, err := db.QueryContext(ctx, fmt.Sprintf(`
		SELECT st.trip_id, t.route_id, r.route_type,
		       st.stop_id, st.arrival_time, st.departure_time
		FROM stop_times st
		JOIN trips t ON t.trip_id = st.trip_id
		JOIN routes r ON r.route_id = t.route_id
		WHERE (
		    (t.service_id IN (
		      SELECT service_id FROM calendar
		      WHERE %s = 1 AND start_date <= ? AND end_date >= ?
		    ) AND t.service_id NOT IN (
		      SELECT service_id FROM calendar_dates
		      WHERE date = ? AND exception_type = 2
		    ))
		    OR t.service_id IN (
		      SELECT service_id FROM calendar_dates
		      WHERE date = ? AND exception_type = 1
		    )
		  )
		ORDER BY st.trip_id, st.stop_sequence`, dayCol),
		dateStr, dateStr,
		dateStr,
		dateStr,
	)
	if err != nil {
		return nil, fmt.Errorf("load stop_times: %w", err)
	}
	defer rows.Close()

	var records []transit.StopTimeRecord
	for rows.Next() {
		var rec transit.StopTimeRecord
		var arrival, departure string
		if err := rows.Scan(&rec.TripID, &rec.LineID, &rec.RouteType,
			&rec.StopID, &arrival, &departure); err != nil {
			return nil, fmt.Errorf("scan stop_time: %w", err)
		}
		if rec.Arrival, err = transit.ParseTime(arrival); err != nil {
			return nil, fmt.Errorf("trip %s: %w", rec.TripID, err)
		}
		if rec.Departure, err = transit.ParseTime(departure); err != nil {
			return nil, fmt.Errorf("trip %s: %w", rec.TripID, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// RunInfo describes one skim computation for the skim_runs table.
type RunInfo struct {
	RunID          string
	ServiceDate    string
	MinDeparture   float64
	MaxDeparture   float64
	StepSize       float64
	SamplesPerZone int
}

// SaveSkims persists the finalized matrices of one run in a single
// transaction. Only finite cells are stored; unconnected pairs are
// implicit in their absence.
func (db *DB) SaveSkims(ctx context.Context, run RunInfo, ind *skim.Indicators[string]) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO skim_runs (run_id, created_at, service_date, min_departure,
		 max_departure, step_size, samples_per_zone)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, time.Now().UTC().Format(time.RFC3339), run.ServiceDate,
		run.MinDeparture, run.MaxDeparture, run.StepSize, run.SamplesPerZone); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO skim_values (run_id, from_zone, to_zone, indicator, value)
		 VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare skim_values: %w", err)
	}
	defer stmt.Close()

	matrices := []*struct {
		name string
		get  func(from, to string) float32
	}{
		{"adaption_time", ind.AdaptionTime.Get},
		{"frequency", ind.Frequency.Get},
		{"travel_time", ind.TravelTime.Get},
		{"access_time", ind.AccessTime.Get},
		{"egress_time", ind.EgressTime.Get},
		{"transfer_count", ind.TransferCount.Get},
		{"train_time_share", ind.TrainTimeShare.Get},
		{"train_distance_share", ind.TrainDistanceShare.Get},
		{"data_count", ind.DataCount.Get},
	}

	count := 0
	zones := ind.TravelTime.Zones()
	for _, from := range zones {
		for _, to := range zones {
			for _, m := range matrices {
				v := float64(m.get(from, to))
				if math.IsInf(v, 0) || math.IsNaN(v) {
					continue
				}
				if _, err := stmt.ExecContext(ctx, run.RunID, from, to, m.name, v); err != nil {
					return fmt.Errorf("insert skim value: %w", err)
				}
				count++
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	db.logger.Info("skims saved", "run_id", run.RunID, "values", count)
	return nil
}

// dayColumn returns the calendar column for a weekday.
func dayColumn(d time.Weekday) string {
	switch d {
	case time.Monday:
		return "monday"
	case time.Tuesday:
		return "tuesday"
	case time.Wednesday:
		return "wednesday"
	case time.Thursday:
		return "thursday"
	case time.Friday:
		return "friday"
	case time.Saturday:
		return "saturday"
	case time.Sunday:
		return "sunday"
	default:
		return "monday"
	}
}
