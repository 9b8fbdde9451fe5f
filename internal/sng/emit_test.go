package sng

import (
	"encoding/json"
	"slices"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestEmit_NoteRecords(t *testing.T) {
	rec := compileFixture(t).Emit()
	notes := rec.Arrangements[1].Notes

	single := notes[0]
	if single.FretID != [2]uint8{3, 3} {
		t.Errorf("note FretID = %v, want [3 3]", single.FretID)
	}
	if single.NoteMask[1] != FlagNumbered {
		t.Errorf("NoteMask[1] = %#x, want %#x", single.NoteMask[1], FlagNumbered)
	}
	if single.ChordID != -1 || single.ChordNotesID != -1 {
		t.Errorf("ChordID = %d, ChordNotesID = %d, want -1", single.ChordID, single.ChordNotesID)
	}
	if single.FingerPrintID != [2]int16{-1, -1} || single.NextIterNote != -1 {
		t.Errorf("unknown fields = %v, %d", single.FingerPrintID, single.NextIterNote)
	}
	if single.FingerID != [4]uint8{0xFF, 0xFF, 0xFF, 0xFF} {
		t.Errorf("FingerID = %v", single.FingerID)
	}
	if single.Slap != 0xFF || single.Pluck != 0xFF || single.PickDirection != 0 {
		t.Errorf("Slap = %d, Pluck = %d, PickDirection = %d", single.Slap, single.Pluck, single.PickDirection)
	}

	chord := notes[2]
	if chord.FretID != [2]uint8{0xFF, 0} {
		t.Errorf("chord FretID = %v, want [255 0]", chord.FretID)
	}
	if chord.StringIndex != 0xFF {
		t.Errorf("chord StringIndex = %d, want 255", chord.StringIndex)
	}
	if chord.ChordNotesID != 0 || notes[3].ChordNotesID != -1 {
		t.Errorf("ChordNotesID = %d, %d, want 0, -1", chord.ChordNotesID, notes[3].ChordNotesID)
	}
}

func TestEmit_CopiedPairs(t *testing.T) {
	rec := compileFixture(t).Emit()

	a := rec.Arrangements[1]
	if a.PhraseIterationCount1 != 2 || a.PhraseIterationCount2 != 2 {
		t.Errorf("iteration counts = %d, %d, want 2", a.PhraseIterationCount1, a.PhraseIterationCount2)
	}
	if !slices.Equal(a.NotesInIteration1, a.NotesInIteration2) {
		t.Errorf("NotesInIteration = %v vs %v", a.NotesInIteration1, a.NotesInIteration2)
	}
	if a.PhraseCount != 2 {
		t.Errorf("PhraseCount = %d, want 2", a.PhraseCount)
	}

	an := a.Anchors[1]
	if an.Unknown3StartTime != an.StartBeatTime || an.Unknown4StartTime != an.StartBeatTime {
		t.Errorf("anchor = %+v", an)
	}

	md := rec.Metadata
	if md.MaxNotesAndChordsReal != md.MaxNotesAndChords || md.FirstNoteTime1 != md.FirstNoteTime2 {
		t.Errorf("metadata = %+v", md)
	}
	if md.CapoFretID != 0xFF {
		t.Errorf("CapoFretID = %d, want 255", md.CapoFretID)
	}
}

func TestOpt_Encodings(t *testing.T) {
	v := struct {
		Absent  Opt[int16] `json:"absent" yaml:"absent"`
		Present Opt[uint8] `json:"present" yaml:"present"`
	}{Present: Some[uint8](7)}

	js, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("json: %v", err)
	}
	if got := string(js); got != `{"absent":-1,"present":7}` {
		t.Errorf("json = %s", got)
	}

	ys, err := yaml.Marshal(v)
	if err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if !strings.Contains(string(ys), "absent: -1") || !strings.Contains(string(ys), "present: 7") {
		t.Errorf("yaml = %s", ys)
	}
}

func TestEmit_NamesEncodeAsText(t *testing.T) {
	rec := compileFixture(t).Emit()
	js, err := json.Marshal(rec.Sections[0])
	if err != nil {
		t.Fatalf("json: %v", err)
	}
	if !strings.Contains(string(js), `"name":"intro"`) {
		t.Errorf("json = %s", js)
	}
}
