// Package zones loads the zone system a skim run is computed over.
// Zones come from a CSV file with one row per sample point; a zone's
// row may repeat to give it several sample points.
package zones

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jiayunsun/ptskim/internal/geo"
)

// Coordinate is a WGS84 sample point of a zone.
type Coordinate struct {
	Lat float64
	Lon float64
}

// Set is an ordered zone system with WGS84 sample points.
type Set struct {
	// IDs in first-appearance order. The order is part of the result:
	// it defines the matrix layout.
	IDs    []string
	Points map[string][]Coordinate
}

// LoadFile reads a zone CSV from disk.
func LoadFile(path string) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open zones file: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load reads zone sample points from CSV data with a
// zone_id,lat,lon header. Column order is fixed.
func Load(r io.Reader) (*Set, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read zones header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\xef\xbb\xbf")
	}
	if len(header) < 3 || header[0] != "zone_id" || header[1] != "lat" || header[2] != "lon" {
		return nil, fmt.Errorf("unexpected zones header %v, want zone_id,lat,lon", header)
	}

	set := &Set{Points: make(map[string][]Coordinate)}
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read zones record: %w", err)
		}
		line++

		id := strings.TrimSpace(record[0])
		if id == "" {
			return nil, fmt.Errorf("line %d: empty zone_id", line)
		}
		lat, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad lat %q", line, record[1])
		}
		lon, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad lon %q", line, record[2])
		}

		if _, seen := set.Points[id]; !seen {
			set.IDs = append(set.IDs, id)
		}
		set.Points[id] = append(set.Points[id], Coordinate{Lat: lat, Lon: lon})
	}

	if len(set.IDs) == 0 {
		return nil, fmt.Errorf("zones file contains no zones")
	}
	return set, nil
}

// Project converts all sample points into the local plane of proj,
// keyed by zone ID, in the shape the skim configuration expects.
func (s *Set) Project(proj *geo.Projection) map[string][]geo.Point {
	samples := make(map[string][]geo.Point, len(s.IDs))
	for _, id := range s.IDs {
		for _, c := range s.Points[id] {
			samples[id] = append(samples[id], proj.Project(c.Lat, c.Lon))
		}
	}
	return samples
}
