package sng

import (
	"sort"

	"github.com/starford/sngforge/internal/song"
)

// BoundaryMode selects how a timestamp that falls exactly on an iteration
// start is attributed.
type BoundaryMode int

const (
	// StartInclusive attributes a boundary timestamp to the iteration that
	// starts there. Used for events and section starts.
	StartInclusive BoundaryMode = iota
	// EndExclusive attributes a boundary timestamp to the iteration that
	// ends there. Used for section ends.
	EndExclusive
)

// Timeline resolves timestamps to phrase-iteration indices.
type Timeline struct {
	starts []float32
	end    float32
}

// NewTimeline indexes the iteration start times of a document. Iterations
// must be in ascending time order.
func NewTimeline(iterations []song.PhraseIteration, songLength float32) *Timeline {
	starts := make([]float32, len(iterations))
	for i, it := range iterations {
		starts[i] = it.Time
	}
	return &Timeline{starts: starts, end: songLength}
}

// Len returns the number of iterations.
func (t *Timeline) Len() int {
	return len(t.starts)
}

// Index returns the iteration containing time. Times before the first start
// resolve to 0 and times past the last start resolve to the last iteration.
func (t *Timeline) Index(time float32, mode BoundaryMode) int {
	var k int
	switch mode {
	case EndExclusive:
		k = sort.Search(len(t.starts), func(i int) bool { return t.starts[i] >= time })
	default:
		k = sort.Search(len(t.starts), func(i int) bool { return t.starts[i] > time })
	}
	return max(k-1, 0)
}

// Start returns the start time of iteration i.
func (t *Timeline) Start(i int) float32 {
	return t.starts[i]
}

// End returns the end time of iteration i: the next start, or the song
// length for the last iteration.
func (t *Timeline) End(i int) float32 {
	if i+1 < len(t.starts) {
		return t.starts[i+1]
	}
	return t.end
}

// Contains reports whether time falls in [Start(i), End(i)).
func (t *Timeline) Contains(i int, time float32) bool {
	return time >= t.starts[i] && time < t.End(i)
}

// PhraseIterationIndex resolves time against a list of iterations.
func PhraseIterationIndex(iterations []song.PhraseIteration, time float32, mode BoundaryMode) int {
	return NewTimeline(iterations, 0).Index(time, mode)
}
