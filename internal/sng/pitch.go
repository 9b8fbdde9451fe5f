package sng

import "github.com/starford/sngforge/internal/song"

// standardPitches are the open-string MIDI notes of E standard guitar tuning.
var standardPitches = [song.StringCount]int32{40, 45, 50, 55, 59, 64}

// bassOffset lowers bass pitches by one octave.
const bassOffset = 12

// MidiNote resolves the pitch of a fretted string. An unplayed string
// (fret -1) has no pitch and resolves to -1.
func MidiNote(tuning [song.StringCount]int16, str int, fret int8, bass bool) int32 {
	if fret < 0 {
		return -1
	}
	pitch := standardPitches[str] + int32(tuning[str]) + int32(fret)
	if bass {
		pitch -= bassOffset
	}
	return pitch
}
