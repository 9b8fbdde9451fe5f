// Package report renders a human-readable summary of a compiled chart.
package report

import (
	"embed"
	"fmt"
	"io"
	"strconv"
	"text/template"

	"github.com/Masterminds/sprig"

	"github.com/starford/sngforge/internal/sng"
	"github.com/starford/sngforge/internal/song"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var tmpl = template.Must(template.New("base").Funcs(sprig.TxtFuncMap()).ParseFS(templateFS, "templates/*.tmpl"))

// Level summarises one compiled difficulty.
type Level struct {
	Difficulty   int32
	Notes        int
	Chords       int
	Anchors      int
	PerIteration []string
}

// Summary is the data the report template is executed with.
type Summary struct {
	Title          string
	Artist         string
	Arrangement    string
	Bass           bool
	Tuning         []string
	Capo           int8
	Meta           sng.Metadata
	Phrases        []sng.Phrase
	Sections       []sng.Section
	Levels         []Level
	Beats          int
	Events         int
	ChordTemplates int
	ChordNotes     int
}

// Summarize collects the report data of doc and its compiled chart.
func Summarize(doc *song.Song, f *sng.File, bass bool) Summary {
	s := Summary{
		Title:          doc.Title,
		Artist:         doc.ArtistName,
		Arrangement:    doc.Arrangement,
		Bass:           bass,
		Capo:           doc.Capo,
		Meta:           f.Metadata,
		Phrases:        f.Phrases,
		Sections:       f.Sections,
		Beats:          len(f.BPMs),
		Events:         len(f.Events),
		ChordTemplates: len(f.Chords),
		ChordNotes:     len(f.ChordNotes),
	}
	for _, off := range doc.Tuning.Offsets() {
		s.Tuning = append(s.Tuning, strconv.Itoa(int(off)))
	}
	for _, arr := range f.Arrangements {
		lvl := Level{Difficulty: arr.Difficulty, Anchors: len(arr.Anchors)}
		for _, n := range arr.Notes {
			if n.ChordID.Valid() {
				lvl.Chords++
			} else {
				lvl.Notes++
			}
		}
		for _, c := range arr.NotesInIteration {
			lvl.PerIteration = append(lvl.PerIteration, strconv.Itoa(int(c)))
		}
		s.Levels = append(s.Levels, lvl)
	}
	return s
}

// Write renders the report of s to w.
func Write(w io.Writer, s Summary) error {
	if err := tmpl.ExecuteTemplate(w, "report", s); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	return nil
}
