package skim

import (
	"math"

	"github.com/jiayunsun/ptskim/internal/matrix"
)

// Indicators holds the zone-to-zone skim matrices of one computation.
//
// During the parallel phase every matrix accumulates per-sample-pair
// sums; the finalization pass divides them by DataCount and derives
// Frequency from the averaged adaption time. For a zone pair with no
// usable connection between any of its sample points, the finalized
// matrices hold +Inf everywhere except Frequency, which holds 0, and
// DataCount, which stays 0.
type Indicators[T comparable] struct {
	AdaptionTime *matrix.Matrix[T]
	Frequency    *matrix.Matrix[T]

	TravelTime         *matrix.Matrix[T]
	AccessTime         *matrix.Matrix[T]
	EgressTime         *matrix.Matrix[T]
	TransferCount      *matrix.Matrix[T]
	TrainTimeShare     *matrix.Matrix[T]
	TrainDistanceShare *matrix.Matrix[T]

	// DataCount records how many sample-point pairs contributed to each
	// cell's accumulated sums.
	DataCount *matrix.Matrix[T]
}

func newIndicators[T comparable](zones []T) *Indicators[T] {
	return &Indicators[T]{
		AdaptionTime:       matrix.New(zones),
		Frequency:          matrix.New(zones),
		TravelTime:         matrix.New(zones),
		AccessTime:         matrix.New(zones),
		EgressTime:         matrix.New(zones),
		TransferCount:      matrix.New(zones),
		TrainTimeShare:     matrix.New(zones),
		TrainDistanceShare: matrix.New(zones),
		DataCount:          matrix.New(zones),
	}
}

// invalidate marks a zone pair as unconnected. The +Inf sums absorb any
// accumulation from other sample pairs of the same zone pair, so the
// outcome does not depend on evaluation order. DataCount is left alone;
// the finalization pass turns the poisoned sums into the documented
// +Inf / Frequency-0 cell.
func (ind *Indicators[T]) invalidate(origin, destination T) {
	inf := float32(math.Inf(1))
	ind.AdaptionTime.Set(origin, destination, inf)
	ind.Frequency.Set(origin, destination, inf)
	ind.TravelTime.Set(origin, destination, inf)
	ind.AccessTime.Set(origin, destination, inf)
	ind.EgressTime.Set(origin, destination, inf)
	ind.TransferCount.Set(origin, destination, inf)
	ind.TrainTimeShare.Set(origin, destination, inf)
	ind.TrainDistanceShare.Set(origin, destination, inf)
}

// finalize turns accumulated sums into averages and derives the
// frequency matrix. Runs once, after all workers have joined.
func (ind *Indicators[T]) finalize(windowLength float64) {
	zones := ind.DataCount.Zones()
	for _, o := range zones {
		for _, d := range zones {
			count := ind.DataCount.Get(o, d)
			avgFactor := 1 / count // count 0 yields +Inf, which keeps poisoned sums poisoned
			adaptionTime := ind.AdaptionTime.Multiply(o, d, avgFactor)
			ind.TravelTime.Multiply(o, d, avgFactor)
			ind.AccessTime.Multiply(o, d, avgFactor)
			ind.EgressTime.Multiply(o, d, avgFactor)
			ind.TransferCount.Multiply(o, d, avgFactor)
			ind.TrainTimeShare.Multiply(o, d, avgFactor)
			ind.TrainDistanceShare.Multiply(o, d, avgFactor)
			frequency := float32(windowLength / float64(adaptionTime) / frequencyDivisor)
			ind.Frequency.Set(o, d, frequency)
		}
	}
}

// frequencyDivisor relates the averaged rooftop adaption time to an
// equivalent service frequency. Calibrated model constant, not tunable.
const frequencyDivisor = 4.0
