package sng

import "github.com/starford/sngforge/internal/song"

// ChordFretMode selects how a chord template's primary fret id is derived.
type ChordFretMode string

const (
	// ChordFretObserved reproduces the reference charts, where the running
	// minimum restarts on every string and the id is always 0.
	ChordFretObserved ChordFretMode = "observed"
	// ChordFretLowest uses the lowest strictly positive fret, or 0.
	ChordFretLowest ChordFretMode = "lowest"
)

// PrimaryFretID computes the fret id chords of a template carry in their
// anchor fret slot.
func PrimaryFretID(frets [song.StringCount]int8, mode ChordFretMode) uint8 {
	if mode != ChordFretLowest {
		return 0
	}
	var id int8
	for _, f := range frets {
		if f > 0 && (id == 0 || f < id) {
			id = f
		}
	}
	return uint8(id)
}

// CompileChord builds the compiled template and its primary fret id.
func CompileChord(t song.ChordTemplate, tuning [song.StringCount]int16, bass bool, mode ChordFretMode) (Chord, uint8) {
	frets, fingers := t.Frets(), t.Fingers()
	var c Chord
	for s := range song.StringCount {
		c.Frets[s] = optUint8(frets[s])
		c.Fingers[s] = optUint8(fingers[s])
		c.Notes[s] = MidiNote(tuning, s, frets[s], bass)
	}
	c.Name = NewName32(t.ChordName)
	return c, PrimaryFretID(frets, mode)
}

func (c *compilation) chords() []Chord {
	out := make([]Chord, len(c.doc.ChordTemplates))
	c.chordFretIDs = make([]uint8, len(c.doc.ChordTemplates))
	for i, t := range c.doc.ChordTemplates {
		out[i], c.chordFretIDs[i] = CompileChord(t, c.tuning, c.bass, c.opts.chordFretMode)
		out[i].Name = c.name32(t.ChordName)
	}
	return out
}
