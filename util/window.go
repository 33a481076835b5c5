package util

import (
	"math"
)

// MovingWindow keeps running statistics over the last capacity values.
//
// Values live in a fixed ring; the oldest one is overwritten once the
// window is full. The render loop uses it to track frame durations.
type MovingWindow struct {
	ring []float64
	head int

	length   int
	capacity int

	sum     float64
	squares float64

	average float64
	stddev  float64
}

// NewMovingWindow returns a new moving window.
func NewMovingWindow(size int) *MovingWindow {
	if size < 1 {
		size = 1
	}

	return &MovingWindow{
		ring:     make([]float64, size),
		capacity: size,
	}
}

func (mw *MovingWindow) calcFinal() (float64, float64) {
	if mw.length > 0 {
		mw.average = mw.sum / float64(mw.length)
	} else {
		mw.average = 0
	}

	if mw.length > 1 {
		// population variance; clamp tiny negatives from rounding
		variance := (mw.squares / float64(mw.length)) - (mw.average * mw.average)
		mw.stddev = math.Sqrt(math.Max(variance, 0))
	} else {
		mw.stddev = 0
	}

	return mw.average, mw.stddev
}

// Update pushes value, dropping the oldest value if the window is full.
func (mw *MovingWindow) Update(value float64) (float64, float64) {
	if mw.length == mw.capacity {
		old := mw.ring[mw.head]
		mw.sum -= old
		mw.squares -= old * old
	} else {
		mw.length++
	}

	mw.ring[mw.head] = value
	mw.head = (mw.head + 1) % mw.capacity

	mw.sum += value
	mw.squares += value * value

	return mw.calcFinal()
}

// Drop removes the count oldest items from the window
func (mw *MovingWindow) Drop(count int) (float64, float64) {
	for ; count > 0 && mw.length > 0; count-- {
		tail := (mw.head - mw.length + mw.capacity) % mw.capacity
		old := mw.ring[tail]
		mw.sum -= old
		mw.squares -= old * old
		mw.length--
	}

	if mw.length < 1 {
		// just clear it so we dont carry a rounding error
		mw.sum = 0
		mw.squares = 0
	}

	return mw.calcFinal()
}

// Len returns how many items in the window
func (mw *MovingWindow) Len() int {
	return mw.length
}

// Cap returns max size of window
func (mw *MovingWindow) Cap() int {
	return mw.capacity
}

// Mean is the moving window average
func (mw *MovingWindow) Mean() float64 {
	return mw.average
}

// StdDev is the moving window standard deviation
func (mw *MovingWindow) StdDev() float64 {
	return mw.stddev
}

// Stats returns the statistics of this window
func (mw *MovingWindow) Stats() (float64, float64) {
	return mw.average, mw.stddev
}
