package song

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/sngforge/internal/apperr"
)

// Parse decodes and validates a notation document.
func Parse(r io.Reader) (*Song, error) {
	var s Song
	if err := xml.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("song: decode: %w: %w", apperr.ErrInvalidDocument, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("song: validate: %w: %w", apperr.ErrInvalidDocument, err)
	}
	return &s, nil
}

// ParseBytes is Parse over an in-memory document.
func ParseBytes(data []byte) (*Song, error) {
	return Parse(bytes.NewReader(data))
}

// Validate checks the structural preconditions a document must satisfy to be
// compiled: a beat grid of at least two beats, at least one phrase and one
// iteration, in-range references and a level for every authored difficulty.
func (s *Song) Validate() error {
	err := validation.ValidateStruct(s,
		validation.Field(&s.SongLength, validation.Min(float32(0))),
		validation.Field(&s.Phrases, validation.Required),
		validation.Field(&s.PhraseIterations, validation.Required,
			validation.Each(validation.By(s.phraseRef))),
		validation.Field(&s.Ebeats, validation.Length(2, 0)),
		validation.Field(&s.Levels, validation.Required),
	)
	if err != nil {
		return err
	}

	var maxDiff int32
	for _, p := range s.Phrases {
		maxDiff = max(maxDiff, p.MaxDifficulty)
	}
	if int(maxDiff) >= len(s.Levels) {
		return fmt.Errorf("levels: difficulty %d has no level (have %d)", maxDiff, len(s.Levels))
	}

	for i, lvl := range s.Levels {
		for _, n := range lvl.Notes {
			if n.String < 0 || n.String >= StringCount {
				return fmt.Errorf("levels[%d]: note at %.3f: string %d out of range", i, n.Time, n.String)
			}
		}
		for _, c := range lvl.Chords {
			if c.ChordID < 0 || int(c.ChordID) >= len(s.ChordTemplates) {
				return fmt.Errorf("levels[%d]: chord at %.3f: template %d out of range", i, c.Time, c.ChordID)
			}
		}
	}
	return nil
}

func (s *Song) phraseRef(v any) error {
	it, ok := v.(PhraseIteration)
	if !ok {
		return errors.New("not a phrase iteration")
	}
	if it.PhraseID < 0 || int(it.PhraseID) >= len(s.Phrases) {
		return fmt.Errorf("phrase %d out of range", it.PhraseID)
	}
	return nil
}

// IsBass reports whether the document's arrangement name marks a bass part.
func (s *Song) IsBass() bool {
	return strings.EqualFold(strings.TrimSpace(s.Arrangement), "bass")
}
