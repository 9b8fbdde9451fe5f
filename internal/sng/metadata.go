package sng

import (
	"fmt"

	"github.com/starford/sngforge/internal/song"
)

// MaxScore is the score of a perfect play.
const MaxScore = 100000

func (c *compilation) metadata(arrangements []Arrangement) (Metadata, error) {
	count := len(c.noteTimes)
	if count == 0 {
		return Metadata{}, fmt.Errorf("sng: metadata: %w", ErrNoNotes)
	}
	hardest := arrangements[c.maxDifficulty]
	if len(hardest.Notes) == 0 {
		return Metadata{}, fmt.Errorf("sng: metadata: difficulty %d: %w", c.maxDifficulty, ErrNoNotes)
	}

	capo := None[uint8]()
	if c.doc.Capo != 0 {
		capo = Some(uint8(c.doc.Capo))
	}
	tuning := c.tuning

	return Metadata{
		MaxScore:               MaxScore,
		MaxNotesAndChords:      float64(count),
		PointsPerNote:          float64(MaxScore / count),
		FirstBeatLength:        c.doc.Ebeats[1].Time - c.doc.Ebeats[0].Time,
		StartTime:              -c.doc.Offset,
		CapoFretID:             capo,
		LastConversionDateTime: c.name32(c.doc.LastConversionDateTime),
		Part:                   c.doc.Part,
		SongLength:             c.doc.SongLength,
		StringCount:            song.StringCount,
		Tuning:                 tuning[:],
		FirstNoteTime:          hardest.Notes[0].Time,
		MaxDifficulty:          c.maxDifficulty,
	}, nil
}
