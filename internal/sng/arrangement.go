package sng

import (
	"cmp"
	"slices"

	"github.com/viterin/vek/vek32"

	"github.com/starford/sngforge/internal/song"
)

// arrangement compiles one difficulty level. Notes are built before chords
// and the merge sort is stable, so a note and a chord sharing a timestamp
// keep that order.
func (c *compilation) arrangement(level *song.Level) Arrangement {
	counts := make([]int32, c.timeline.Len())
	notes := make([]Note, 0, len(level.Notes)+len(level.Chords))

	for i := range level.Notes {
		n := &level.Notes[i]
		notes = append(notes, c.note(n))
		c.countEvent(counts, n.Time)
	}
	for i := range level.Chords {
		ch := &level.Chords[i]
		notes = append(notes, c.chord(ch))
		c.countEvent(counts, ch.Time)
	}
	slices.SortStableFunc(notes, func(a, b Note) int {
		return cmp.Compare(a.Time, b.Time)
	})

	return Arrangement{
		Difficulty:               level.Difficulty,
		Anchors:                  c.anchors(level.Anchors),
		AnchorExtensions:         []AnchorExtension{},
		Fingerprints1:            []Fingerprint{},
		Fingerprints2:            []Fingerprint{},
		Notes:                    notes,
		AverageNotesPerIteration: c.averagePerPhrase(counts),
		NotesInIteration:         counts,
	}
}

// countEvent records time in the run's unique timestamp set and counts it
// against the iteration window [start, end) that contains it.
func (c *compilation) countEvent(counts []int32, time float32) {
	c.noteTimes[time] = struct{}{}
	k := c.timeline.Index(time, StartInclusive)
	if c.timeline.Contains(k, time) {
		counts[k]++
	}
}

// averagePerPhrase averages iteration counts over the iterations of each
// phrase. Phrases without iterations average 0.
func (c *compilation) averagePerPhrase(counts []int32) []float32 {
	sums := make([]float32, len(c.doc.Phrases))
	iters := make([]float32, len(c.doc.Phrases))
	for j, it := range c.doc.PhraseIterations {
		sums[it.PhraseID] += float32(counts[j])
		iters[it.PhraseID]++
	}
	for j := range iters {
		if iters[j] == 0 {
			iters[j] = 1
		}
	}
	return vek32.Div(sums, iters)
}

func (c *compilation) note(n *song.Note) Note {
	pi := c.timeline.Index(n.Time, StartInclusive)
	return Note{
		Mask:              NoteMask(n),
		Time:              n.Time,
		String:            Some(uint8(n.String)),
		Fret:              optUint8(n.Fret),
		AnchorWidth:       defaultAnchorWidth,
		PhraseID:          c.doc.PhraseIterations[pi].PhraseID,
		PhraseIterationID: int32(pi),
		PickDirection:     optUint8(n.PickDirection),
		Slap:              optUint8(n.Slap),
		Pluck:             optUint8(n.Pluck),
		Vibrato:           n.Vibrato,
		Sustain:           n.Sustain,
		MaxBend:           n.Bend,
		Bends:             []BendPoint{},
	}
}

func (c *compilation) chord(ch *song.Chord) Note {
	notesID := None[int32]()
	if len(ch.ChordNotes) > 0 {
		notesID = Some(c.chordNotes.Add(ch))
	}
	pi := c.timeline.Index(ch.Time, StartInclusive)
	return Note{
		Mask:              ChordMask(notesID.Valid()),
		Time:              ch.Time,
		AnchorFret:        Some(c.chordFretIDs[ch.ChordID]),
		AnchorWidth:       defaultAnchorWidth,
		ChordID:           Some(ch.ChordID),
		ChordNotesID:      notesID,
		PhraseID:          c.doc.PhraseIterations[pi].PhraseID,
		PhraseIterationID: int32(pi),
		Bends:             []BendPoint{},
	}
}

// anchors compiles fret-hand positions. Each anchor lasts until the next
// one; the last lasts until the start of the last phrase iteration.
func (c *compilation) anchors(src []song.Anchor) []Anchor {
	iters := c.doc.PhraseIterations
	last := iters[len(iters)-1].Time
	out := make([]Anchor, len(src))
	for j, a := range src {
		end := last
		if j+1 < len(src) {
			end = src[j+1].Time
		}
		out[j] = Anchor{
			StartTime:         a.Time,
			EndTime:           end,
			FretID:            int32(a.Fret),
			Width:             int32(a.Width),
			PhraseIterationID: int32(c.timeline.Index(a.Time, StartInclusive)),
		}
	}
	return out
}
