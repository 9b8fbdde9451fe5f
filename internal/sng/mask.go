package sng

import "github.com/starford/sngforge/internal/song"

// Note mask bits. Values are fixed by the chart format.
const (
	MaskUndefined        uint32 = 0x0
	MaskChord            uint32 = 0x02
	MaskOpen             uint32 = 0x04
	MaskFretHandMute     uint32 = 0x08
	MaskTremolo          uint32 = 0x10
	MaskHarmonic         uint32 = 0x20
	MaskPalmMute         uint32 = 0x40
	MaskSlap             uint32 = 0x80
	MaskPluck            uint32 = 0x0100
	MaskHammerOn         uint32 = 0x0200
	MaskPullOff          uint32 = 0x0400
	MaskSlide            uint32 = 0x0800
	MaskBend             uint32 = 0x1000
	MaskSustain          uint32 = 0x2000
	MaskTap              uint32 = 0x4000
	MaskPinchHarmonic    uint32 = 0x8000
	MaskVibrato          uint32 = 0x010000
	MaskMute             uint32 = 0x020000
	MaskIgnore           uint32 = 0x040000
	MaskHighDensity      uint32 = 0x200000
	MaskSlideUnpitchedTo uint32 = 0x400000
	MaskSingle           uint32 = 0x00800000
	MaskChordNotes       uint32 = 0x01000000
	MaskDoubleStop       uint32 = 0x02000000
	MaskAccent           uint32 = 0x04000000
	MaskParent           uint32 = 0x08000000
	MaskChild            uint32 = 0x10000000
	MaskArpeggio         uint32 = 0x20000000
	MaskStrum            uint32 = 0x80000000
)

// FlagNumbered is the value of every note's second mask word.
const FlagNumbered uint32 = 0x1

// NoteMask encodes the technique flags of a single note. A nil note, used
// for strings a chord does not detail, encodes as MaskUndefined.
func NoteMask(n *song.Note) uint32 {
	if n == nil {
		return MaskUndefined
	}
	mask := MaskSingle
	set := func(cond bool, bit uint32) {
		if cond {
			mask |= bit
		}
	}
	set(n.Fret == 0, MaskOpen)
	set(n.Accent != 0, MaskAccent)
	set(n.Bend != 0, MaskBend)
	set(n.HammerOn != 0, MaskHammerOn)
	set(n.Harmonic != 0, MaskHarmonic)
	set(n.Ignore != 0, MaskIgnore)
	set(n.Mute != 0, MaskMute)
	set(n.PalmMute != 0, MaskPalmMute)
	set(n.Pluck != -1, MaskPluck)
	set(n.PullOff != 0, MaskPullOff)
	set(n.Slap != -1, MaskSlap)
	set(n.SlideTo != -1, MaskSlide)
	set(n.Sustain != 0, MaskSustain)
	set(n.Tremolo != 0, MaskTremolo)
	set(n.HarmonicPinch != 0, MaskPinchHarmonic)
	set(n.SlideUnpitchTo != -1, MaskSlideUnpitchedTo)
	set(n.Tap != 0, MaskTap)
	set(n.Vibrato != 0, MaskVibrato)
	return mask
}

// ChordMask encodes a chord event. Chords carrying per-string detail are
// also marked as strummed chord-notes.
func ChordMask(hasChordNotes bool) uint32 {
	mask := MaskChord
	if hasChordNotes {
		mask |= MaskChordNotes | MaskStrum
	}
	return mask
}
