package skim

import (
	"log/slog"
	"sync/atomic"

	"github.com/jiayunsun/ptskim/internal/geo"
)

// rowWorker computes whole origin-zone rows pulled from a shared queue.
// Each worker owns a private Router; the Indicators store is shared,
// but row partitioning keeps every cell written by exactly one worker.
type rowWorker[T comparable] struct {
	queue            <-chan T
	destinationZones []T
	samples          map[T][]geo.Point
	indicators       *Indicators[T]
	router           Router
	stops            StopIndex
	walk             WalkParams
	minDepartureTime float64
	maxDepartureTime float64
	stepSize         float64
	isTrain          TrainClassifier
	progress         *atomic.Int64
	logger           *slog.Logger
}

func (w *rowWorker[T]) run() {
	for fromZone := range w.queue {
		done := w.progress.Add(1)
		w.logger.Debug("processing origin zone", "zone", fromZone, "done", done)

		fromCoords := w.samples[fromZone]
		if len(fromCoords) == 0 {
			// No sample points, e.g. a zone without geometry: the whole
			// row is unconnected by definition.
			for _, toZone := range w.destinationZones {
				w.indicators.invalidate(fromZone, toZone)
			}
			continue
		}
		for _, fromCoord := range fromCoords {
			w.calcForRow(fromZone, fromCoord)
		}
	}
}

// calcForRow routes once from a single origin sample point and then
// evaluates it against every destination zone. Building the trees once
// per origin sample, instead of once per OD pair, is what keeps the
// total routing effort linear in zones rather than quadratic.
func (w *rowWorker[T]) calcForRow(fromZone T, fromCoord geo.Point) {
	access := stopCandidates(w.stops, fromCoord, w.walk)
	origins := make([]OriginStop, len(access))
	for i, a := range access {
		origins[i] = OriginStop{ID: a.stop.ID, AccessTime: a.walk}
	}

	var trees []map[StopID]TravelInfo
	for time := w.minDepartureTime; time < w.maxDepartureTime; time += w.stepSize {
		trees = append(trees, w.router.BuildTree(origins, time))
	}

	for _, toZone := range w.destinationZones {
		toCoords := w.samples[toZone]
		if len(toCoords) == 0 {
			w.indicators.invalidate(fromZone, toZone)
			continue
		}
		for _, toCoord := range toCoords {
			w.calcForOD(fromZone, toZone, toCoord, trees)
		}
	}
}

// calcForOD evaluates one (origin sample, destination sample) pair
// against the origin's trees and accumulates the results.
func (w *rowWorker[T]) calcForOD(fromZone, toZone T, toCoord geo.Point, trees []map[StopID]TravelInfo) {
	egress := stopCandidates(w.stops, toCoord, w.walk)

	connections := buildConnections(trees, egress)
	if len(connections) == 0 {
		w.indicators.invalidate(fromZone, toZone)
		return
	}

	connections = sortAndFilterConnections(connections)

	avgAdaptionTime := averageAdaptionTime(connections, w.minDepartureTime, w.maxDepartureTime)
	w.indicators.AdaptionTime.Add(fromZone, toZone, float32(avgAdaptionTime))

	fastest := findFastestConnection(connections)

	var totalDistance, trainDistance float64
	var totalInVehTime, trainInVehTime float64
	for _, leg := range fastest.travelInfo.Legs {
		if !leg.Transit() {
			continue
		}
		inVehicleTime := leg.ArrivalTime - leg.BoardingTime
		totalDistance += leg.Distance
		totalInVehTime += inVehicleTime
		if w.isTrain(leg.LineID, leg.RouteID) {
			trainDistance += leg.Distance
			trainInVehTime += inVehicleTime
		}
	}

	// 0/0 yields NaN for degenerate journeys and is deliberately left
	// to propagate so consumers can detect them.
	trainShareByTime := trainInVehTime / totalInVehTime
	trainShareByDistance := trainDistance / totalDistance

	w.indicators.AccessTime.Add(fromZone, toZone, float32(fastest.accessTime))
	w.indicators.EgressTime.Add(fromZone, toZone, float32(fastest.egressTime))
	w.indicators.TransferCount.Add(fromZone, toZone, float32(fastest.transferCount))
	w.indicators.TravelTime.Add(fromZone, toZone, float32(fastest.totalTravelTime()))
	w.indicators.TrainTimeShare.Add(fromZone, toZone, float32(trainShareByTime))
	w.indicators.TrainDistanceShare.Add(fromZone, toZone, float32(trainShareByDistance))

	w.indicators.DataCount.Add(fromZone, toZone, 1)
}
