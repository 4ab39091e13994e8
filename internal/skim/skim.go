// Package skim computes zone-to-zone public-transport skim matrices:
// travel time, access/egress time, transfer count, train-mode shares,
// and a perceived service frequency over a departure-time window.
//
// For every ordered zone pair the computation samples door-to-door
// connections between the zones' sample points, reduces them to the
// non-dominated set, and applies the rooftop method: the average
// minute-by-minute schedule-adaption time over the window, from which
// an equivalent service frequency is derived.
//
// Zone pairs without any usable connection are ordinary outcomes, not
// errors: their finalized cells hold +Inf for all indicators except the
// perceived frequency, which holds 0, and the data count, which stays 0.
package skim

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

var (
	// ErrNoZones indicates an empty zone set.
	ErrNoZones = errors.New("skim: no zones")
	// ErrBadWindow indicates an empty or inverted departure window or a
	// non-positive step size.
	ErrBadWindow = errors.New("skim: invalid departure window")
)

// Calculate runs one full matrix computation. It blocks until every
// origin zone has been processed and returns the finalized indicator
// matrices. There is no mid-run cancellation: a run either completes
// all zones or fails as a whole; partial matrices are never returned.
func Calculate[T comparable](cfg Config[T]) (*Indicators[T], error) {
	if len(cfg.Zones) == 0 {
		return nil, ErrNoZones
	}
	if cfg.StepSize <= 0 || cfg.MaxDepartureTime <= cfg.MinDepartureTime {
		return nil, ErrBadWindow
	}
	if cfg.Walk.Speed <= 0 {
		return nil, errors.New("skim: walk speed must be positive")
	}
	if cfg.NewRouter == nil || cfg.Stops == nil || cfg.IsTrain == nil {
		return nil, errors.New("skim: router factory, stop index and train classifier are required")
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	indicators := newIndicators(cfg.Zones)

	// Shared origin-zone queue, filled once and closed. Each zone is
	// consumed by exactly one worker, so each matrix row has a single
	// writer for the entire parallel phase.
	queue := make(chan T, len(cfg.Zones))
	for _, zone := range cfg.Zones {
		queue <- zone
	}
	close(queue)

	logger.Info("computing skim matrices",
		"zones", len(cfg.Zones),
		"window_start", cfg.MinDepartureTime,
		"window_end", cfg.MaxDepartureTime,
		"step", cfg.StepSize,
		"workers", workers,
	)

	var progress atomic.Int64
	var wg sync.WaitGroup
	var mu sync.Mutex
	var workerErr error

	for i := 0; i < workers; i++ {
		w := &rowWorker[T]{
			queue:            queue,
			destinationZones: cfg.Zones,
			samples:          cfg.SamplesPerZone,
			indicators:       indicators,
			router:           cfg.NewRouter(),
			stops:            cfg.Stops,
			walk:             cfg.Walk,
			minDepartureTime: cfg.MinDepartureTime,
			maxDepartureTime: cfg.MaxDepartureTime,
			stepSize:         cfg.StepSize,
			isTrain:          cfg.IsTrain,
			progress:         &progress,
			logger:           logger,
		}
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			// A crashing worker would silently drop its remaining
			// zones; turn it into a failure of the whole run instead.
			defer func() {
				if r := recover(); r != nil {
					mu.Lock()
					if workerErr == nil {
						workerErr = fmt.Errorf("skim: worker %d failed: %v", id, r)
					}
					mu.Unlock()
				}
			}()
			w.run()
		}(i)
	}

	wg.Wait()
	if workerErr != nil {
		return nil, workerErr
	}

	indicators.finalize(cfg.MaxDepartureTime - cfg.MinDepartureTime)

	logger.Info("skim matrices complete", "zones", progress.Load())
	return indicators, nil
}
