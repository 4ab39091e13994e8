package skim

import "math"

// adaptionSampleStep is the fixed sampling interval of the rooftop
// walk, independent of the tree-building step size.
const adaptionSampleStep = 60.0

// averageAdaptionTime implements the rooftop method (Niek Guis, ca.
// 2015): walk the departure window in fixed steps and average, over all
// sampled instants, the time a traveller at that instant must shift to
// reach the nearest usable connection, either the previous one or the
// next one. The connections must be non-dominated and ascending in
// effective departure time.
func averageAdaptionTime(connections []odConnection, minDepartureTime, maxDepartureTime float64) float64 {
	prevDeparture := math.NaN()
	nextDeparture := math.NaN()

	next := 0
	if next < len(connections) {
		nextDeparture = connections[next].effectiveDeparture()
		next++
	}

	sum := 0.0
	count := 0
	for time := minDepartureTime; time < maxDepartureTime; time += adaptionSampleStep {
		if time >= nextDeparture {
			prevDeparture = nextDeparture
			if next < len(connections) {
				nextDeparture = connections[next].effectiveDeparture()
				next++
			} else {
				nextDeparture = math.NaN()
			}
		}

		var adaptionTime float64
		switch {
		case math.IsNaN(prevDeparture):
			adaptionTime = nextDeparture - time
		case math.IsNaN(nextDeparture):
			adaptionTime = time - prevDeparture
		default:
			adaptionTime = math.Min(time-prevDeparture, nextDeparture-time)
		}

		sum += adaptionTime
		count++
	}
	return sum / float64(count)
}
