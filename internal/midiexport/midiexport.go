// Package midiexport renders a compiled chart as a Standard MIDI File so a
// chart can be auditioned in any sequencer.
package midiexport

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/starford/sngforge/internal/sng"
	"github.com/starford/sngforge/internal/song"
)

// Resolution is the number of ticks per quarter note in rendered files.
const Resolution = 480

// General MIDI programs used for the preview track.
const (
	programGuitar = 29 // overdriven guitar
	programBass   = 33 // electric bass (finger)
)

const (
	channel        = 0
	velocity       = 100
	accentVelocity = 127
	// minDuration is the length of notes without sustain, in seconds.
	minDuration = 0.25
)

// ErrEmptyChart is returned when the chart has no arrangement to render.
var ErrEmptyChart = errors.New("midiexport: chart has no arrangements")

// Options controls rendering.
type Options struct {
	// Tempo in beats per minute. Zero means 120.
	Tempo float64
	// Bass lowers pitches by an octave and selects a bass program.
	Bass bool
	// Name is written as the track name.
	Name string
}

type event struct {
	tick uint32
	off  bool
	key  uint8
	vel  uint8
}

// Render writes the hardest arrangement of f as a single-track SMF.
func Render(f *sng.File, opts Options) ([]byte, error) {
	if len(f.Arrangements) == 0 {
		return nil, ErrEmptyChart
	}
	if opts.Tempo <= 0 {
		opts.Tempo = 120
	}

	var tuning [song.StringCount]int16
	copy(tuning[:], f.Metadata.Tuning)

	arr := f.Arrangements[len(f.Arrangements)-1]
	ticks := func(seconds float32) uint32 {
		if seconds < 0 {
			seconds = 0
		}
		return uint32(math.Round(float64(seconds) * opts.Tempo / 60 * Resolution))
	}

	var events []event
	add := func(start, sustain float32, key int32, accent bool) {
		if key < 0 || key > 127 {
			return
		}
		vel := uint8(velocity)
		if accent {
			vel = accentVelocity
		}
		end := start + max(sustain, minDuration)
		events = append(events,
			event{tick: ticks(start), key: uint8(key), vel: vel},
			event{tick: ticks(end), off: true, key: uint8(key)},
		)
	}

	for _, n := range arr.Notes {
		accent := n.Mask&sng.MaskAccent != 0
		if id, ok := n.ChordID.Get(); ok {
			if int(id) >= len(f.Chords) {
				return nil, fmt.Errorf("midiexport: note at %.3f: chord %d: %w", n.Time, id, sng.ErrChordTemplateRange)
			}
			for _, key := range f.Chords[id].Notes {
				add(n.Time, n.Sustain, key, accent)
			}
			continue
		}
		str, sok := n.String.Get()
		fret, fok := n.Fret.Get()
		if !sok || !fok || int(str) >= song.StringCount {
			continue
		}
		add(n.Time, n.Sustain, sng.MidiNote(tuning, int(str), int8(fret), opts.Bass), accent)
	}

	// note-offs sort before note-ons on the same tick so repeated keys retrigger
	slices.SortStableFunc(events, func(a, b event) int {
		if c := cmp.Compare(a.tick, b.tick); c != 0 {
			return c
		}
		switch {
		case a.off && !b.off:
			return -1
		case !a.off && b.off:
			return 1
		}
		return 0
	})

	program := uint8(programGuitar)
	if opts.Bass {
		program = programBass
	}

	var tr smf.Track
	if opts.Name != "" {
		tr.Add(0, smf.MetaTrackSequenceName(opts.Name))
	}
	tr.Add(0, smf.MetaTempo(opts.Tempo))
	tr.Add(0, midi.ProgramChange(channel, program))

	var last uint32
	for _, ev := range events {
		delta := ev.tick - last
		last = ev.tick
		if ev.off {
			tr.Add(delta, midi.NoteOff(channel, ev.key))
		} else {
			tr.Add(delta, midi.NoteOn(channel, ev.key, ev.vel))
		}
	}
	tr.Close(0)

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(Resolution)
	if err := s.Add(tr); err != nil {
		return nil, fmt.Errorf("midiexport: add track: %w", err)
	}

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("midiexport: write: %w", err)
	}
	return buf.Bytes(), nil
}
