package gtfs

import (
	"archive/zip"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"strings"
)

// ParseZip parses the in-memory GTFS files from a zip archive.
// stop_times.txt is deliberately not loaded here; it is streamed during
// import because it dwarfs everything else.
func ParseZip(path string, logger *slog.Logger) (*Feed, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	defer r.Close()

	feed := &Feed{}
	for _, f := range r.File {
		switch f.Name {
		case "routes.txt":
			feed.Routes, err = parseCSVFile[Route](f)
		case "stops.txt":
			feed.Stops, err = parseCSVFile[Stop](f)
		case "trips.txt":
			feed.Trips, err = parseCSVFile[Trip](f)
		case "calendar.txt":
			feed.Calendar, err = parseCSVFile[CalendarEntry](f)
		case "calendar_dates.txt":
			feed.CalendarDates, err = parseCSVFile[CalendarDate](f)
		}
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", f.Name, err)
		}
	}

	if len(feed.Stops) == 0 {
		return nil, fmt.Errorf("feed contains no stops")
	}
	if len(feed.Trips) == 0 {
		return nil, fmt.Errorf("feed contains no trips")
	}

	logger.Info("GTFS feed parsed",
		"routes", len(feed.Routes),
		"stops", len(feed.Stops),
		"trips", len(feed.Trips),
		"calendar", len(feed.Calendar),
		"calendar_dates", len(feed.CalendarDates),
	)
	return feed, nil
}

// parseCSVFile decodes one CSV file from the zip into a slice of T,
// matching columns to struct fields via `csv` tags.
func parseCSVFile[T any](f *zip.File) ([]T, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer rc.Close()

	reader := newGTFSReader(rc)
	header, err := readHeader(reader)
	if err != nil {
		return nil, err
	}
	fieldMap := buildFieldMap[T](header)

	var results []T
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		var item T
		decodeRecord(&item, record, fieldMap)
		results = append(results, item)
	}
	return results, nil
}

// StopTimeStream yields stop_times.txt rows one at a time.
type StopTimeStream struct {
	closer   io.Closer
	reader   *csv.Reader
	fieldMap []fieldMapping
}

// OpenStopTimes opens stop_times.txt inside the zip for streaming.
func OpenStopTimes(path string) (*StopTimeStream, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}

	for _, f := range r.File {
		if f.Name != "stop_times.txt" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("open stop_times: %w", err)
		}
		reader := newGTFSReader(rc)
		header, err := readHeader(reader)
		if err != nil {
			rc.Close()
			r.Close()
			return nil, err
		}
		return &StopTimeStream{
			closer:   closerChain{rc, r},
			reader:   reader,
			fieldMap: buildFieldMap[StopTime](header),
		}, nil
	}
	r.Close()
	return nil, fmt.Errorf("stop_times.txt not found in zip")
}

// Next reads the next stop-time row. Returns io.EOF when exhausted.
func (s *StopTimeStream) Next(out *StopTime) error {
	record, err := s.reader.Read()
	if err != nil {
		return err
	}
	decodeRecord(out, record, s.fieldMap)
	return nil
}

// Close releases the underlying zip and file readers.
func (s *StopTimeStream) Close() error {
	return s.closer.Close()
}

type closerChain struct {
	first  io.Closer
	second io.Closer
}

func (c closerChain) Close() error {
	err := c.first.Close()
	if err2 := c.second.Close(); err == nil {
		err = err2
	}
	return err
}

func newGTFSReader(rc io.Reader) *csv.Reader {
	reader := csv.NewReader(rc)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	return reader
}

// readHeader reads the column row, stripping a UTF-8 BOM when present.
func readHeader(reader *csv.Reader) ([]string, error) {
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\xef\xbb\xbf")
	}
	return header, nil
}

type fieldMapping struct {
	csvIndex   int
	fieldIndex int
}

// buildFieldMap maps CSV column positions to struct fields by `csv` tag.
func buildFieldMap[T any](header []string) []fieldMapping {
	var t T
	typ := reflect.TypeOf(t)

	tagToField := make(map[string]int)
	for i := 0; i < typ.NumField(); i++ {
		if tag := typ.Field(i).Tag.Get("csv"); tag != "" {
			tagToField[tag] = i
		}
	}

	var mappings []fieldMapping
	for csvIdx, colName := range header {
		if fieldIdx, ok := tagToField[strings.TrimSpace(colName)]; ok {
			mappings = append(mappings, fieldMapping{csvIndex: csvIdx, fieldIndex: fieldIdx})
		}
	}
	return mappings
}

func decodeRecord(out any, record []string, fieldMap []fieldMapping) {
	v := reflect.ValueOf(out).Elem()
	for _, fm := range fieldMap {
		if fm.csvIndex < len(record) {
			v.Field(fm.fieldIndex).SetString(record[fm.csvIndex])
		}
	}
}
