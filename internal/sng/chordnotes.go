package sng

import "github.com/starford/sngforge/internal/song"

// ChordNotesTable collects the per-string detail blocks of chord events.
// A table belongs to one compilation and grows across its difficulty levels.
// Blocks are appended without deduplication; identical chords repeated in
// several levels each get their own block.
type ChordNotesTable struct {
	entries []ChordNotes
}

// NewChordNotesTable returns an empty table.
func NewChordNotesTable() *ChordNotesTable {
	return &ChordNotesTable{entries: []ChordNotes{}}
}

// Add expands chord into a detail block and returns its index.
func (t *ChordNotesTable) Add(chord *song.Chord) int32 {
	var cn ChordNotes
	for s := range song.StringCount {
		n := chord.NoteOn(int8(s))
		cn.NoteMask[s] = NoteMask(n)
		if n != nil && n.SlideTo != -1 {
			cn.StartFret[s] = optUint8(n.Fret)
			cn.EndFret[s] = optUint8(n.SlideTo)
		}
	}
	t.entries = append(t.entries, cn)
	return int32(len(t.entries) - 1)
}

// Len returns the number of blocks.
func (t *ChordNotesTable) Len() int {
	return len(t.entries)
}

// Entries returns the blocks in insertion order.
func (t *ChordNotesTable) Entries() []ChordNotes {
	return t.entries
}
