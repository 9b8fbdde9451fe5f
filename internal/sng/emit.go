package sng

// Records are the flat shapes a binary writer serializes. Every sentinel is
// resolved to its raw encoding and every field the format stores twice is
// copied here rather than kept twice in the compiled graph.
type (
	// FileRecord is the emitted chart.
	FileRecord struct {
		BPMs             []BPM               `json:"bpms" yaml:"bpms"`
		Phrases          []Phrase            `json:"phrases" yaml:"phrases"`
		Chords           []Chord             `json:"chords" yaml:"chords"`
		ChordNotes       []ChordNotes        `json:"chord_notes" yaml:"chord_notes"`
		Vocals           []Vocal             `json:"vocals" yaml:"vocals"`
		PhraseIterations []PhraseIteration   `json:"phrase_iterations" yaml:"phrase_iterations"`
		PhraseExtraInfo  []PhraseExtraInfo   `json:"phrase_extra_info" yaml:"phrase_extra_info"`
		NLD              []LinkedDifficulty  `json:"linked_difficulties" yaml:"linked_difficulties"`
		Actions          []Action            `json:"actions" yaml:"actions"`
		Events           []Event             `json:"events" yaml:"events"`
		Tones            []Tone              `json:"tones" yaml:"tones"`
		DNAs             []DNA               `json:"dnas" yaml:"dnas"`
		Sections         []Section           `json:"sections" yaml:"sections"`
		Arrangements     []ArrangementRecord `json:"arrangements" yaml:"arrangements"`
		Metadata         MetadataRecord      `json:"metadata" yaml:"metadata"`
	}

	// NoteRecord carries both fret slots and both mask words.
	NoteRecord struct {
		NoteMask          [2]uint32          `json:"note_mask" yaml:"note_mask,flow"`
		Hash              uint32             `json:"hash" yaml:"hash"`
		Time              float32            `json:"time" yaml:"time"`
		StringIndex       uint8              `json:"string_index" yaml:"string_index"`
		FretID            [2]uint8           `json:"fret_id" yaml:"fret_id,flow"`
		AnchorWidth       uint8              `json:"anchor_width" yaml:"anchor_width"`
		ChordID           int32              `json:"chord_id" yaml:"chord_id"`
		ChordNotesID      int32              `json:"chord_notes_id" yaml:"chord_notes_id"`
		PhraseID          int32              `json:"phrase_id" yaml:"phrase_id"`
		PhraseIterationID int32              `json:"phrase_iteration_id" yaml:"phrase_iteration_id"`
		FingerPrintID     [2]int16           `json:"finger_print_id" yaml:"finger_print_id,flow"`
		NextIterNote      int16              `json:"next_iter_note" yaml:"next_iter_note"`
		PrevIterNote      int16              `json:"prev_iter_note" yaml:"prev_iter_note"`
		ParentPrevNote    int16              `json:"parent_prev_note" yaml:"parent_prev_note"`
		FingerID          [FingerSlots]uint8 `json:"finger_id" yaml:"finger_id,flow"`
		PickDirection     uint8              `json:"pick_direction" yaml:"pick_direction"`
		Slap              uint8              `json:"slap" yaml:"slap"`
		Pluck             uint8              `json:"pluck" yaml:"pluck"`
		Vibrato           int16              `json:"vibrato" yaml:"vibrato"`
		Sustain           float32            `json:"sustain" yaml:"sustain"`
		MaxBend           float32            `json:"max_bend" yaml:"max_bend"`
		BendData          []BendPoint        `json:"bend_data" yaml:"bend_data"`
	}

	// AnchorRecord carries the two extra copies of the start time.
	AnchorRecord struct {
		StartBeatTime     float32 `json:"start_beat_time" yaml:"start_beat_time"`
		EndBeatTime       float32 `json:"end_beat_time" yaml:"end_beat_time"`
		Unknown3StartTime float32 `json:"unknown3_start_time" yaml:"unknown3_start_time"`
		Unknown4StartTime float32 `json:"unknown4_start_time" yaml:"unknown4_start_time"`
		FretID            int32   `json:"fret_id" yaml:"fret_id"`
		Width             int32   `json:"width" yaml:"width"`
		PhraseIterationID int32   `json:"phrase_iteration_id" yaml:"phrase_iteration_id"`
	}

	// ArrangementRecord carries both iteration count arrays.
	ArrangementRecord struct {
		Difficulty               int32             `json:"difficulty" yaml:"difficulty"`
		Anchors                  []AnchorRecord    `json:"anchors" yaml:"anchors"`
		AnchorExtensions         []AnchorExtension `json:"anchor_extensions" yaml:"anchor_extensions"`
		Fingerprints1            []Fingerprint     `json:"fingerprints1" yaml:"fingerprints1"`
		Fingerprints2            []Fingerprint     `json:"fingerprints2" yaml:"fingerprints2"`
		Notes                    []NoteRecord      `json:"notes" yaml:"notes"`
		PhraseCount              int32             `json:"phrase_count" yaml:"phrase_count"`
		AverageNotesPerIteration []float32         `json:"average_notes_per_iteration" yaml:"average_notes_per_iteration,flow"`
		PhraseIterationCount1    int32             `json:"phrase_iteration_count1" yaml:"phrase_iteration_count1"`
		NotesInIteration1        []int32           `json:"notes_in_iteration1" yaml:"notes_in_iteration1,flow"`
		PhraseIterationCount2    int32             `json:"phrase_iteration_count2" yaml:"phrase_iteration_count2"`
		NotesInIteration2        []int32           `json:"notes_in_iteration2" yaml:"notes_in_iteration2,flow"`
	}

	// MetadataRecord carries the duplicated note count and first note time.
	MetadataRecord struct {
		MaxScore               float64 `json:"max_score" yaml:"max_score"`
		MaxNotesAndChords      float64 `json:"max_notes_and_chords" yaml:"max_notes_and_chords"`
		MaxNotesAndChordsReal  float64 `json:"max_notes_and_chords_real" yaml:"max_notes_and_chords_real"`
		PointsPerNote          float64 `json:"points_per_note" yaml:"points_per_note"`
		FirstBeatLength        float32 `json:"first_beat_length" yaml:"first_beat_length"`
		StartTime              float32 `json:"start_time" yaml:"start_time"`
		CapoFretID             uint8   `json:"capo_fret_id" yaml:"capo_fret_id"`
		LastConversionDateTime Name32  `json:"last_conversion_date_time" yaml:"last_conversion_date_time"`
		Part                   int16   `json:"part" yaml:"part"`
		SongLength             float32 `json:"song_length" yaml:"song_length"`
		StringCount            int32   `json:"string_count" yaml:"string_count"`
		Tuning                 []int16 `json:"tuning" yaml:"tuning,flow"`
		FirstNoteTime1         float32 `json:"first_note_time1" yaml:"first_note_time1"`
		FirstNoteTime2         float32 `json:"first_note_time2" yaml:"first_note_time2"`
		MaxDifficulty          int32   `json:"max_difficulty" yaml:"max_difficulty"`
	}
)

// Emit produces the writer-facing records of f.
func (f *File) Emit() *FileRecord {
	arrs := make([]ArrangementRecord, len(f.Arrangements))
	for i := range f.Arrangements {
		arrs[i] = f.Arrangements[i].Emit(len(f.Phrases))
	}
	return &FileRecord{
		BPMs:             f.BPMs,
		Phrases:          f.Phrases,
		Chords:           f.Chords,
		ChordNotes:       f.ChordNotes,
		Vocals:           f.Vocals,
		PhraseIterations: f.PhraseIterations,
		PhraseExtraInfo:  f.PhraseExtraInfo,
		NLD:              f.NLD,
		Actions:          f.Actions,
		Events:           f.Events,
		Tones:            f.Tones,
		DNAs:             f.DNAs,
		Sections:         f.Sections,
		Arrangements:     arrs,
		Metadata:         f.Metadata.Emit(),
	}
}

// Emit resolves sentinels and fills the anchor fret slot.
func (n Note) Emit() NoteRecord {
	anchorFret := n.AnchorFret
	if !anchorFret.Valid() {
		anchorFret = n.Fret
	}
	var fingers [FingerSlots]uint8
	for i, f := range n.FingerID {
		fingers[i] = f.Raw()
	}
	return NoteRecord{
		NoteMask:          [2]uint32{n.Mask, FlagNumbered},
		Hash:              n.Hash,
		Time:              n.Time,
		StringIndex:       n.String.Raw(),
		FretID:            [2]uint8{n.Fret.Raw(), anchorFret.Raw()},
		AnchorWidth:       n.AnchorWidth,
		ChordID:           n.ChordID.Raw(),
		ChordNotesID:      n.ChordNotesID.Raw(),
		PhraseID:          n.PhraseID,
		PhraseIterationID: n.PhraseIterationID,
		FingerPrintID:     [2]int16{n.FingerPrintID[0].Raw(), n.FingerPrintID[1].Raw()},
		NextIterNote:      n.NextIterNote.Raw(),
		PrevIterNote:      n.PrevIterNote.Raw(),
		ParentPrevNote:    n.ParentPrevNote.Raw(),
		FingerID:          fingers,
		PickDirection:     n.PickDirection.Raw(),
		Slap:              n.Slap.Raw(),
		Pluck:             n.Pluck.Raw(),
		Vibrato:           n.Vibrato,
		Sustain:           n.Sustain,
		MaxBend:           n.MaxBend,
		BendData:          n.Bends,
	}
}

// Emit copies the start time into the two extra slots.
func (a Anchor) Emit() AnchorRecord {
	return AnchorRecord{
		StartBeatTime:     a.StartTime,
		EndBeatTime:       a.EndTime,
		Unknown3StartTime: a.StartTime,
		Unknown4StartTime: a.StartTime,
		FretID:            a.FretID,
		Width:             a.Width,
		PhraseIterationID: a.PhraseIterationID,
	}
}

// Emit duplicates the iteration counts into both arrays.
func (a *Arrangement) Emit(phraseCount int) ArrangementRecord {
	anchors := make([]AnchorRecord, len(a.Anchors))
	for i, an := range a.Anchors {
		anchors[i] = an.Emit()
	}
	notes := make([]NoteRecord, len(a.Notes))
	for i, n := range a.Notes {
		notes[i] = n.Emit()
	}
	iterations := int32(len(a.NotesInIteration))
	return ArrangementRecord{
		Difficulty:               a.Difficulty,
		Anchors:                  anchors,
		AnchorExtensions:         a.AnchorExtensions,
		Fingerprints1:            a.Fingerprints1,
		Fingerprints2:            a.Fingerprints2,
		Notes:                    notes,
		PhraseCount:              int32(phraseCount),
		AverageNotesPerIteration: a.AverageNotesPerIteration,
		PhraseIterationCount1:    iterations,
		NotesInIteration1:        a.NotesInIteration,
		PhraseIterationCount2:    iterations,
		NotesInIteration2:        a.NotesInIteration,
	}
}

// Emit duplicates the note count and first note time.
func (m Metadata) Emit() MetadataRecord {
	return MetadataRecord{
		MaxScore:               m.MaxScore,
		MaxNotesAndChords:      m.MaxNotesAndChords,
		MaxNotesAndChordsReal:  m.MaxNotesAndChords,
		PointsPerNote:          m.PointsPerNote,
		FirstBeatLength:        m.FirstBeatLength,
		StartTime:              m.StartTime,
		CapoFretID:             m.CapoFretID.Raw(),
		LastConversionDateTime: m.LastConversionDateTime,
		Part:                   m.Part,
		SongLength:             m.SongLength,
		StringCount:            m.StringCount,
		Tuning:                 m.Tuning,
		FirstNoteTime1:         m.FirstNoteTime,
		FirstNoteTime2:         m.FirstNoteTime,
		MaxDifficulty:          m.MaxDifficulty,
	}
}
