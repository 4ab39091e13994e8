package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jiayunsun/ptskim/internal/config"
	"github.com/jiayunsun/ptskim/internal/gtfs"
	"github.com/jiayunsun/ptskim/internal/realtime"
	"github.com/jiayunsun/ptskim/internal/router"
	"github.com/jiayunsun/ptskim/internal/skim"
	"github.com/jiayunsun/ptskim/internal/stopindex"
	"github.com/jiayunsun/ptskim/internal/storage"
	"github.com/jiayunsun/ptskim/internal/transit"
	"github.com/jiayunsun/ptskim/internal/zones"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg := config.Load()

	importOnly := flag.Bool("import-gtfs", false, "Download and import GTFS data, then exit")
	zonesPath := flag.String("zones", "", "Zone sample-point CSV (zone_id,lat,lon)")
	dateStr := flag.String("date", time.Now().Format("2006-01-02"), "Service date (YYYY-MM-DD)")
	outPath := flag.String("out", "", "Also export the skims to this CSV file")
	runID := flag.String("run-id", "", "Identifier for the skim_runs table (default: date + timestamp)")
	flag.StringVar(&cfg.GTFSDir, "gtfs-dir", cfg.GTFSDir, "Directory for downloaded GTFS zips")
	flag.IntVar(&cfg.Workers, "workers", cfg.Workers, "Parallel row workers")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, *importOnly, *zonesPath, *dateStr, *outPath, *runID, logger); err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, importOnly bool, zonesPath, dateStr, outPath, runID string, logger *slog.Logger) error {
	db, err := storage.Open(cfg.DBPath, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if importOnly && cfg.GTFSURL == "" {
		return fmt.Errorf("-import-gtfs requires PTSKIM_GTFS_URL")
	}
	if cfg.GTFSURL != "" {
		sync := gtfs.NewSync(gtfs.NewDownloader(cfg.GTFSURL, cfg.GTFSDir, logger), db, logger)
		if importOnly {
			if err := sync.Refresh(ctx); err != nil {
				return err
			}
		}
		if err := sync.EnsureData(ctx); err != nil {
			return err
		}
	}
	if importOnly {
		logger.Info("GTFS import complete")
		return nil
	}

	if zonesPath == "" {
		return fmt.Errorf("-zones is required")
	}
	if !db.HasData(ctx) {
		return fmt.Errorf("no GTFS data imported; set PTSKIM_GTFS_URL or run -import-gtfs")
	}

	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return fmt.Errorf("parse -date: %w", err)
	}

	tt, err := buildTimetable(ctx, db, cfg, date, logger)
	if err != nil {
		return err
	}

	zoneSet, err := zones.LoadFile(zonesPath)
	if err != nil {
		return err
	}
	logger.Info("zones loaded", "zones", len(zoneSet.IDs))

	indicators, err := skim.Calculate(skim.Config[string]{
		Zones:            zoneSet.IDs,
		SamplesPerZone:   zoneSet.Project(tt.Projection()),
		MinDepartureTime: cfg.MinDeparture,
		MaxDepartureTime: cfg.MaxDeparture,
		StepSize:         cfg.StepSize,
		Walk: skim.WalkParams{
			Speed:           cfg.WalkSpeed,
			SearchRadius:    cfg.SearchRadius,
			ExtensionRadius: cfg.ExtensionRadius,
		},
		Workers:   cfg.Workers,
		NewRouter: func() skim.Router { return router.New(tt) },
		Stops:     stopindex.New(tt.Stops, stopindex.DefaultCellSize),
		IsTrain:   tt.TrainClassifier(),
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	if runID == "" {
		runID = fmt.Sprintf("%s-%d", dateStr, time.Now().Unix())
	}
	if err := db.SaveSkims(ctx, storage.RunInfo{
		RunID:          runID,
		ServiceDate:    dateStr,
		MinDeparture:   cfg.MinDeparture,
		MaxDeparture:   cfg.MaxDeparture,
		StepSize:       cfg.StepSize,
		SamplesPerZone: countSamples(zoneSet),
	}, indicators); err != nil {
		return err
	}

	if outPath != "" {
		if err := exportCSV(outPath, indicators); err != nil {
			return err
		}
		logger.Info("skims exported", "path", outPath)
	}
	return nil
}

// buildTimetable loads the schedule for one service date and applies
// realtime delays when a TripUpdates feed is configured.
func buildTimetable(ctx context.Context, db *storage.DB, cfg *config.Config, date time.Time, logger *slog.Logger) (*transit.Timetable, error) {
	stops, err := db.LoadStops(ctx)
	if err != nil {
		return nil, err
	}
	stopTimes, err := db.LoadStopTimes(ctx, date)
	if err != nil {
		return nil, err
	}
	logger.Info("schedule loaded",
		"date", date.Format("2006-01-02"),
		"stops", len(stops),
		"stop_times", len(stopTimes),
	)

	tt, err := transit.New(stops, stopTimes, transit.Options{
		TransferRadius:  cfg.TransferRadius,
		WalkSpeed:       cfg.WalkSpeed,
		MinTransferTime: cfg.MinTransferTime,
	})
	if err != nil {
		return nil, err
	}

	if cfg.RTURL != "" {
		delays, err := realtime.NewFetcher(cfg.RTURL, logger).FetchDelays(ctx)
		if err != nil {
			// Delays are best-effort; the scheduled timetable still stands.
			logger.Warn("realtime delays unavailable", "error", err)
		} else {
			applied := tt.ApplyDelays(delays)
			logger.Info("realtime delays applied", "connections", applied)
		}
	}
	return tt, nil
}

func countSamples(set *zones.Set) int {
	n := 0
	for _, pts := range set.Points {
		n += len(pts)
	}
	return n
}

// exportCSV writes one row per zone pair with all nine indicators.
func exportCSV(path string, ind *skim.Indicators[string]) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"from_zone", "to_zone", "adaption_time", "frequency", "travel_time",
		"access_time", "egress_time", "transfer_count", "train_time_share",
		"train_distance_share", "data_count",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	zoneIDs := ind.TravelTime.Zones()
	row := make([]string, len(header))
	for _, from := range zoneIDs {
		for _, to := range zoneIDs {
			row[0] = from
			row[1] = to
			for i, v := range []float32{
				ind.AdaptionTime.Get(from, to),
				ind.Frequency.Get(from, to),
				ind.TravelTime.Get(from, to),
				ind.AccessTime.Get(from, to),
				ind.EgressTime.Get(from, to),
				ind.TransferCount.Get(from, to),
				ind.TrainTimeShare.Get(from, to),
				ind.TrainDistanceShare.Get(from, to),
				ind.DataCount.Get(from, to),
			} {
				row[2+i] = formatValue(v)
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}

	w.Flush()
	return w.Error()
}

func formatValue(v float32) string {
	f := float64(v)
	if math.IsInf(f, 1) {
		return "inf"
	}
	if math.IsNaN(f) {
		return "nan"
	}
	return strconv.FormatFloat(f, 'g', -1, 32)
}
