// Package testutil provides shared test helpers for song fixtures, songs
// directories and catalogue databases.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/sngforge/internal/index"
	"github.com/starford/sngforge/internal/song"
	"github.com/starford/sngforge/internal/storage"
)

// SongXML is a small two-difficulty document. Its compiled shape:
//   - iterations start at 0 and 10, song length 20
//   - unique event times 5, 12 and 15 (three notes and chords)
//   - difficulty 1 has a note and a chord sharing time 12
//   - one chord carries per-string detail, the other does not
//   - sections "intro" at 0 and "noguitar" at 10
const SongXML = `<?xml version="1.0" encoding="UTF-8"?>
<song version="7">
  <title>Fixture Song</title>
  <arrangement>Lead</arrangement>
  <part>1</part>
  <offset>-10.000</offset>
  <songLength>20.000</songLength>
  <lastConversionDateTime>6-15-14 14:23</lastConversionDateTime>
  <startBeat>0.000</startBeat>
  <averageTempo>120.000</averageTempo>
  <tuning string0="0" string1="0" string2="0" string3="0" string4="0" string5="0" />
  <capo>0</capo>
  <artistName>Fixture Artist</artistName>
  <albumName>Fixture Album</albumName>
  <albumYear>2014</albumYear>
  <phrases count="2">
    <phrase disparity="0" ignore="0" maxDifficulty="0" name="COUNT" solo="0" />
    <phrase disparity="0" ignore="0" maxDifficulty="1" name="riff" solo="1" />
  </phrases>
  <phraseIterations count="2">
    <phraseIteration time="0.000" phraseId="0" />
    <phraseIteration time="10.000" phraseId="1" />
  </phraseIterations>
  <newLinkedDiffs count="1">
    <newLinkedDiff levelBreak="-1" ratio="1.000" phrases="1">
      <nld_phrase id="1" />
    </newLinkedDiff>
  </newLinkedDiffs>
  <ebeats count="5">
    <ebeat time="0.000" measure="1" />
    <ebeat time="0.500" />
    <ebeat time="1.000" />
    <ebeat time="1.500" />
    <ebeat time="2.000" measure="2" />
  </ebeats>
  <sections count="2">
    <section name="intro" number="1" startTime="0.000" />
    <section name="noguitar" number="1" startTime="10.000" />
  </sections>
  <events count="1">
    <event time="10.000" code="B0" />
  </events>
  <chordTemplates count="1">
    <chordTemplate chordName="G" displayName="G" finger0="2" finger1="1" finger5="3" fret0="3" fret1="2" fret2="0" fret3="0" fret4="0" fret5="3" />
  </chordTemplates>
  <levels count="2">
    <level difficulty="0">
      <notes count="1">
        <note time="5.000" string="0" fret="3" />
      </notes>
      <chords count="0" />
      <anchors count="1">
        <anchor time="0.000" fret="1" width="4.000" />
      </anchors>
    </level>
    <level difficulty="1">
      <notes count="2">
        <note time="5.000" string="0" fret="3" sustain="0.500" vibrato="80" />
        <note time="12.000" string="1" fret="0" hammerOn="1" />
      </notes>
      <chords count="2">
        <chord time="12.000" chordId="0">
          <chordNote time="12.000" string="0" fret="3" slideTo="5" />
          <chordNote time="12.000" string="1" fret="2" />
        </chord>
        <chord time="15.000" chordId="0" />
      </chords>
      <anchors count="2">
        <anchor time="0.000" fret="1" width="4.000" />
        <anchor time="11.000" fret="3" width="4.000" />
      </anchors>
    </level>
  </levels>
</song>
`

// Song parses SongXML.
func Song(t *testing.T) *song.Song {
	t.Helper()
	s, err := song.ParseBytes([]byte(SongXML))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return s
}

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "sngforge-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestSongs creates a temporary songs directory with a storage.Provider.
func TestSongs(t *testing.T) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// WriteSong writes SongXML under dir at rel.
func WriteSong(t *testing.T, dir, rel string) {
	t.Helper()
	p := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(SongXML), 0o644); err != nil {
		t.Fatal(err)
	}
}
