// Package topk wraps a sliding top-k sketch with locking and tick
// management for request-rate tracking.
package topk

import (
	"sync"

	"github.com/keilerkonzept/topk/sliding"
)

// thresholdPercent of the window capacity an item must exceed to be
// reported.
const thresholdPercent = 80

// SketchParams configures a sketch.
type SketchParams struct {
	K          int
	WindowSize int
	Width      int
	Depth      int
	// TickSize is the number of observations between sketch ticks.
	TickSize uint64
}

type TopKSketch struct {
	mu        sync.Mutex
	sketch    *sliding.Sketch
	tickSize  uint64
	tickReq   uint64
	tickCount uint64
	threshold int
}

func New(p SketchParams) *TopKSketch {
	if p.TickSize == 0 {
		p.TickSize = 1000
	}

	windowCapacity := uint64(p.WindowSize) * p.TickSize
	threshold := int((windowCapacity * thresholdPercent) / 100)

	return &TopKSketch{
		sketch: sliding.New(p.K, p.WindowSize,
			sliding.WithWidth(p.Width),
			sliding.WithDepth(p.Depth)),
		tickSize:  p.TickSize,
		threshold: threshold,
	}
}

// ProcessTick records one observation of item. Every tickSize
// observations the window advances and the items above the threshold
// are returned.
func (cs *TopKSketch) ProcessTick(item string) []string {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.sketch.Incr(item)
	cs.tickReq++

	if cs.tickReq < cs.tickSize {
		return nil
	}

	cs.sketch.Tick()
	cs.tickCount++
	cs.tickReq = 0

	items := cs.sketch.SortedSlice()
	over := make([]string, 0)
	for _, it := range items {
		if it.Count > uint32(cs.threshold) {
			over = append(over, it.Item)
		} else {
			// sorted, nothing further can exceed the threshold
			break
		}
	}
	return over
}
