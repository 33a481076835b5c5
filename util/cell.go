// Package util holds small shared helpers.
package util

import "sync/atomic"

// Cell is a single-slot "latest value" box. One writer publishes, any number
// of readers load the most recent value. There is no queue; intermediate
// values a reader never saw are simply lost.
type Cell[T any] struct {
	v atomic.Pointer[T]
}

// NewCell returns a cell holding initial.
func NewCell[T any](initial T) *Cell[T] {
	c := &Cell[T]{}
	c.Store(initial)
	return c
}

// Store publishes v, replacing the previous value.
func (c *Cell[T]) Store(v T) {
	c.v.Store(&v)
}

// Load returns the latest value, or the zero value if nothing was stored.
func (c *Cell[T]) Load() T {
	if p := c.v.Load(); p != nil {
		return *p
	}
	var zero T
	return zero
}
