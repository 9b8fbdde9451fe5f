// Package chartservice ties the compiler to the songs directory, the output
// directory and the catalogue.
package chartservice

import (
	"fmt"
	"io"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/starford/sngforge/internal/apperr"
	"github.com/starford/sngforge/internal/midiexport"
	"github.com/starford/sngforge/internal/models"
	"github.com/starford/sngforge/internal/report"
	"github.com/starford/sngforge/internal/sng"
	"github.com/starford/sngforge/internal/song"
)

// Output extensions written next to each other in the output directory.
const (
	RecordExt = ".sng.yaml"
	MIDIExt   = ".mid"
)

// Config tunes compilation.
type Config struct {
	// Workers bounds parallel compiles in CompileAll.
	Workers int
	// MIDIPreview also writes a MIDI rendering of every chart.
	MIDIPreview bool
	// Bass forces the arrangement type when non-nil.
	Bass          *bool
	ChordFretMode sng.ChordFretMode
	// FoldNames strips diacritics from names instead of writing '?'.
	FoldNames bool
}

// Result is one successful compilation.
type Result struct {
	Song *song.Song
	File *sng.File
	Bass bool
}

// Record returns the writer-facing records of the chart.
func (r *Result) Record() *sng.FileRecord {
	return r.File.Emit()
}

// MIDI renders the hardest difficulty as a Standard MIDI File.
func (r *Result) MIDI() ([]byte, error) {
	return midiexport.Render(r.File, midiexport.Options{
		Tempo: float64(r.Song.AverageTempo),
		Bass:  r.Bass,
		Name:  r.Song.Arrangement,
	})
}

// Report writes the text summary of the chart.
func (r *Result) Report(w io.Writer) error {
	return report.Write(w, report.Summarize(r.Song, r.File, r.Bass))
}

// Chart fills the catalogue entry of the result.
func (r *Result) Chart(path, sum string) models.Chart {
	m := r.File.Metadata
	return models.Chart{
		Path:          path,
		Checksum:      sum,
		Title:         r.Song.Title,
		Artist:        r.Song.ArtistName,
		Arrangement:   r.Song.Arrangement,
		Bass:          r.Bass,
		MaxDifficulty: m.MaxDifficulty,
		NotesCount:    int32(m.MaxNotesAndChords),
		SongLength:    m.SongLength,
		PointsPerNote: m.PointsPerNote,
		Status:        models.StatusCompiled,
	}
}

// CompileDocument parses and compiles a notation document. Malformed
// documents fail with apperr.ErrInvalidDocument and documents the compiler
// rejects fail with apperr.ErrCompileFailed.
func CompileDocument(data []byte, cfg Config, logger *slog.Logger) (*Result, error) {
	doc, err := song.ParseBytes(data)
	if err != nil {
		return nil, err
	}
	bass := doc.IsBass()
	if cfg.Bass != nil {
		bass = *cfg.Bass
	}
	mode := cfg.ChordFretMode
	if mode == "" {
		mode = sng.ChordFretObserved
	}

	f, err := sng.Compile(doc,
		sng.WithBass(bass),
		sng.WithChordFretMode(mode),
		sng.WithFoldedNames(cfg.FoldNames),
		sng.WithLogger(logger),
	)
	if err != nil {
		return &Result{Song: doc, Bass: bass}, fmt.Errorf("%w: %w", apperr.ErrCompileFailed, err)
	}
	return &Result{Song: doc, File: f, Bass: bass}, nil
}

// EncodeRecord renders the chart records as YAML.
func EncodeRecord(rec *sng.FileRecord) ([]byte, error) {
	out, err := yaml.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("chartservice: encode record: %w", err)
	}
	return out, nil
}
