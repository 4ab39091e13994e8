// Package matrix provides a dense float32 matrix keyed by caller-defined
// zone identifiers, used as the accumulator for skim indicators.
package matrix

import "fmt"

// Matrix is a dense 2-D float32 accumulator over a fixed zone set.
// Every ordered (origin, destination) pair is addressable, including the
// diagonal, and every cell starts at 0.
//
// Concurrency contract: concurrent calls that touch disjoint cells are
// safe; concurrent access to the same cell is not synchronized and must
// be prevented by the caller. The skim orchestrator guarantees this by
// partitioning work per origin zone, so rows are owned by exactly one
// worker at a time.
type Matrix[T comparable] struct {
	zones []T
	index map[T]int
	data  []float32
}

// New creates a zero-filled matrix over the given zone set. The zone
// slice order defines the internal layout; it is copied, not retained.
func New[T comparable](zones []T) *Matrix[T] {
	m := &Matrix[T]{
		zones: append([]T(nil), zones...),
		index: make(map[T]int, len(zones)),
		data:  make([]float32, len(zones)*len(zones)),
	}
	for i, z := range m.zones {
		m.index[z] = i
	}
	return m
}

// Zones returns the zone identifiers in layout order. The returned slice
// must not be modified.
func (m *Matrix[T]) Zones() []T {
	return m.zones
}

// Get returns the value stored for (origin, destination).
func (m *Matrix[T]) Get(origin, destination T) float32 {
	return m.data[m.cell(origin, destination)]
}

// Set overwrites the value for (origin, destination).
func (m *Matrix[T]) Set(origin, destination T, value float32) {
	m.data[m.cell(origin, destination)] = value
}

// Add accumulates value into (origin, destination) and returns the new
// cell value.
func (m *Matrix[T]) Add(origin, destination T, value float32) float32 {
	i := m.cell(origin, destination)
	m.data[i] += value
	return m.data[i]
}

// Multiply scales (origin, destination) in place and returns the new
// cell value.
func (m *Matrix[T]) Multiply(origin, destination T, factor float32) float32 {
	i := m.cell(origin, destination)
	m.data[i] *= factor
	return m.data[i]
}

func (m *Matrix[T]) cell(origin, destination T) int {
	o, ok := m.index[origin]
	if !ok {
		panic(fmt.Sprintf("matrix: unknown origin zone %v", origin))
	}
	d, ok := m.index[destination]
	if !ok {
		panic(fmt.Sprintf("matrix: unknown destination zone %v", destination))
	}
	return o*len(m.zones) + d
}
