package sng

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/starford/sngforge/internal/song"
)

var (
	ErrNoPhrases          = errors.New("document has no phrases")
	ErrNoPhraseIterations = errors.New("document has no phrase iterations")
	ErrTooFewBeats        = errors.New("document needs at least two beats")
	ErrMissingLevel       = errors.New("difficulty level missing")
	ErrPhraseRange        = errors.New("phrase reference out of range")
	ErrStringRange        = errors.New("string index out of range")
	ErrChordTemplateRange = errors.New("chord template reference out of range")
	ErrNoNotes            = errors.New("no notes or chords")
)

// Option configures a compilation.
type Option func(*options)

type options struct {
	bass          *bool
	chordFretMode ChordFretMode
	foldNames     bool
	logger        *slog.Logger
}

// WithBass forces the arrangement type instead of deriving it from the
// document's arrangement name.
func WithBass(bass bool) Option {
	return func(o *options) {
		o.bass = &bass
	}
}

// WithChordFretMode sets how chord primary fret ids are derived.
func WithChordFretMode(mode ChordFretMode) Option {
	return func(o *options) {
		o.chordFretMode = mode
	}
}

// WithFoldedNames strips diacritics from names before they are narrowed to
// ASCII, so "Café" is written as "Cafe" instead of "Caf?".
func WithFoldedNames(fold bool) Option {
	return func(o *options) {
		o.foldNames = fold
	}
}

// WithLogger sets the logger used for phase diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// compilation is the state of one run. Nothing in it outlives the run.
type compilation struct {
	doc           *song.Song
	opts          options
	log           *slog.Logger
	timeline      *Timeline
	tuning        [song.StringCount]int16
	bass          bool
	maxDifficulty int32
	chordNotes    *ChordNotesTable
	chordFretIDs  []uint8
	noteTimes     map[float32]struct{}
}

// Compile builds the chart of doc. The document is not modified.
func Compile(doc *song.Song, opts ...Option) (*File, error) {
	o := options{chordFretMode: ChordFretObserved}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	if err := checkDocument(doc); err != nil {
		return nil, err
	}

	c := &compilation{
		doc:           doc,
		opts:          o,
		log:           o.logger,
		timeline:      NewTimeline(doc.PhraseIterations, doc.SongLength),
		tuning:        doc.Tuning.Offsets(),
		bass:          doc.IsBass(),
		maxDifficulty: MaxDifficulty(doc.Phrases),
		chordNotes:    NewChordNotesTable(),
		noteTimes:     make(map[float32]struct{}),
	}
	if o.bass != nil {
		c.bass = *o.bass
	}
	return c.run()
}

func (c *compilation) run() (*File, error) {
	f := &File{
		BPMs:             c.beats(),
		Phrases:          c.phrases(),
		Chords:           c.chords(),
		Vocals:           []Vocal{},
		PhraseIterations: c.phraseIterations(),
		PhraseExtraInfo:  []PhraseExtraInfo{},
		NLD:              c.linkedDifficulties(),
		Actions:          []Action{},
		Events:           c.events(),
		Tones:            []Tone{},
		DNAs:             DNATimeline(c.doc.Sections),
		Sections:         c.sections(),
	}
	c.log.Debug("sections compiled",
		slog.Int("beats", len(f.BPMs)),
		slog.Int("phrases", len(f.Phrases)),
		slog.Int("chords", len(f.Chords)),
		slog.Int("sections", len(f.Sections)),
	)

	f.Arrangements = make([]Arrangement, c.maxDifficulty+1)
	for i := range f.Arrangements {
		f.Arrangements[i] = c.arrangement(&c.doc.Levels[i])
		c.log.Debug("arrangement compiled",
			slog.Int("difficulty", i),
			slog.Int("notes", len(f.Arrangements[i].Notes)),
		)
	}
	f.ChordNotes = c.chordNotes.Entries()

	md, err := c.metadata(f.Arrangements)
	if err != nil {
		return nil, err
	}
	f.Metadata = md
	return f, nil
}

// MaxDifficulty returns the highest difficulty any phrase reaches.
func MaxDifficulty(phrases []song.Phrase) int32 {
	var m int32
	for _, p := range phrases {
		m = max(m, p.MaxDifficulty)
	}
	return m
}

// checkDocument rejects documents whose references cannot be resolved.
func checkDocument(doc *song.Song) error {
	switch {
	case len(doc.Phrases) == 0:
		return fmt.Errorf("sng: %w", ErrNoPhrases)
	case len(doc.PhraseIterations) == 0:
		return fmt.Errorf("sng: %w", ErrNoPhraseIterations)
	case len(doc.Ebeats) < 2:
		return fmt.Errorf("sng: %d beats: %w", len(doc.Ebeats), ErrTooFewBeats)
	}
	for i, it := range doc.PhraseIterations {
		if it.PhraseID < 0 || int(it.PhraseID) >= len(doc.Phrases) {
			return fmt.Errorf("sng: phrase iteration %d: phrase %d: %w", i, it.PhraseID, ErrPhraseRange)
		}
	}
	maxDiff := MaxDifficulty(doc.Phrases)
	if int(maxDiff) >= len(doc.Levels) {
		return fmt.Errorf("sng: difficulty %d: %w", maxDiff, ErrMissingLevel)
	}
	for i := 0; i <= int(maxDiff); i++ {
		lvl := &doc.Levels[i]
		for _, n := range lvl.Notes {
			if n.String < 0 || n.String >= song.StringCount {
				return fmt.Errorf("sng: level %d: note at %.3f: string %d: %w", i, n.Time, n.String, ErrStringRange)
			}
		}
		for _, ch := range lvl.Chords {
			if ch.ChordID < 0 || int(ch.ChordID) >= len(doc.ChordTemplates) {
				return fmt.Errorf("sng: level %d: chord at %.3f: template %d: %w", i, ch.Time, ch.ChordID, ErrChordTemplateRange)
			}
		}
	}
	return nil
}
