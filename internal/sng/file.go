// Package sng compiles a notation document into the section graph of the
// fixed-layout chart format. Compilation is synchronous and performs no I/O;
// byte-level serialization belongs to a downstream writer that consumes the
// records produced by (*File).Emit.
package sng

// Fixed sizes of the chart format.
const (
	BendPoints        = 32
	SectionLevelSlots = 36
	FingerSlots       = 4
)

// File is the compiled chart.
type File struct {
	BPMs             []BPM              `json:"bpms" yaml:"bpms"`
	Phrases          []Phrase           `json:"phrases" yaml:"phrases"`
	Chords           []Chord            `json:"chords" yaml:"chords"`
	ChordNotes       []ChordNotes       `json:"chord_notes" yaml:"chord_notes"`
	Vocals           []Vocal            `json:"vocals" yaml:"vocals"`
	PhraseIterations []PhraseIteration  `json:"phrase_iterations" yaml:"phrase_iterations"`
	PhraseExtraInfo  []PhraseExtraInfo  `json:"phrase_extra_info" yaml:"phrase_extra_info"`
	NLD              []LinkedDifficulty `json:"linked_difficulties" yaml:"linked_difficulties"`
	Actions          []Action           `json:"actions" yaml:"actions"`
	Events           []Event            `json:"events" yaml:"events"`
	Tones            []Tone             `json:"tones" yaml:"tones"`
	DNAs             []DNA              `json:"dnas" yaml:"dnas"`
	Sections         []Section          `json:"sections" yaml:"sections"`
	Arrangements     []Arrangement      `json:"arrangements" yaml:"arrangements"`
	Metadata         Metadata           `json:"metadata" yaml:"metadata"`
}

// BPM is one beat of the tempo grid.
type BPM struct {
	Time            float32 `json:"time" yaml:"time"`
	Measure         int16   `json:"measure" yaml:"measure"`
	Beat            int16   `json:"beat" yaml:"beat"`
	PhraseIteration int32   `json:"phrase_iteration" yaml:"phrase_iteration"`
	Mask            int32   `json:"mask" yaml:"mask"`
}

// Beat mask bits.
const (
	BeatFirst       int32 = 0x1
	BeatEvenMeasure int32 = 0x2
)

// Phrase is a compiled phrase definition.
type Phrase struct {
	Solo                 uint8  `json:"solo" yaml:"solo"`
	Disparity            uint8  `json:"disparity" yaml:"disparity"`
	Ignore               uint8  `json:"ignore" yaml:"ignore"`
	MaxDifficulty        int32  `json:"max_difficulty" yaml:"max_difficulty"`
	PhraseIterationLinks int32  `json:"phrase_iteration_links" yaml:"phrase_iteration_links"`
	Name                 Name32 `json:"name" yaml:"name"`
}

// Chord is a compiled chord template.
type Chord struct {
	Mask    uint32        `json:"mask" yaml:"mask"`
	Frets   [6]Opt[uint8] `json:"frets" yaml:"frets"`
	Fingers [6]Opt[uint8] `json:"fingers" yaml:"fingers"`
	Notes   [6]int32      `json:"notes" yaml:"notes"`
	Name    Name32        `json:"name" yaml:"name"`
}

// BendPoint is one sample of a bend curve.
type BendPoint struct {
	Time     float32 `json:"time" yaml:"time"`
	Step     float32 `json:"step" yaml:"step"`
	Unknown3 int16   `json:"unknown3" yaml:"unknown3"`
	Unknown4 uint8   `json:"unknown4" yaml:"unknown4"`
	Unknown5 uint8   `json:"unknown5" yaml:"unknown5"`
}

// BendCurve is the fixed-size bend block of a chord-notes string.
type BendCurve struct {
	Points    [BendPoints]BendPoint `json:"points" yaml:"points,flow"`
	UsedCount int32                 `json:"used_count" yaml:"used_count"`
}

// ChordNotes is the per-string expansion of a chord event.
type ChordNotes struct {
	NoteMask  [6]uint32     `json:"note_mask" yaml:"note_mask"`
	Bends     [6]BendCurve  `json:"bends" yaml:"bends"`
	StartFret [6]Opt[uint8] `json:"start_fret" yaml:"start_fret"`
	EndFret   [6]Opt[uint8] `json:"end_fret" yaml:"end_fret"`
	Unknown   [6]int16      `json:"unknown" yaml:"unknown"`
}

// Vocal is a lyric syllable. Vocal timelines are compiled separately, so
// instrument charts carry none.
type Vocal struct {
	Time   float32 `json:"time" yaml:"time"`
	Note   int32   `json:"note" yaml:"note"`
	Length float32 `json:"length" yaml:"length"`
	Lyric  Name32  `json:"lyric" yaml:"lyric"`
}

// PhraseIteration is a compiled phrase occurrence.
type PhraseIteration struct {
	PhraseID       int32    `json:"phrase_id" yaml:"phrase_id"`
	StartTime      float32  `json:"start_time" yaml:"start_time"`
	NextPhraseTime float32  `json:"next_phrase_time" yaml:"next_phrase_time"`
	Difficulty     [3]int32 `json:"difficulty" yaml:"difficulty"`
}

// PhraseExtraInfo is per-level phrase detail; no document field feeds it.
type PhraseExtraInfo struct {
	PhraseID   int32 `json:"phrase_id" yaml:"phrase_id"`
	Difficulty int32 `json:"difficulty" yaml:"difficulty"`
	Empty      int32 `json:"empty" yaml:"empty"`
	LevelJump  uint8 `json:"level_jump" yaml:"level_jump"`
	Redundant  int16 `json:"redundant" yaml:"redundant"`
}

// LinkedDifficulty groups phrases sharing a level break.
type LinkedDifficulty struct {
	LevelBreak int32   `json:"level_break" yaml:"level_break"`
	PhraseIDs  []int32 `json:"phrase_ids" yaml:"phrase_ids"`
}

// Action is a timed engine action; no document field feeds it.
type Action struct {
	Time float32 `json:"time" yaml:"time"`
	Name Name256 `json:"name" yaml:"name"`
}

// Event is a timed cue.
type Event struct {
	Time float32 `json:"time" yaml:"time"`
	Name Name256 `json:"name" yaml:"name"`
}

// Tone is a tone change. Single-tone charts carry none.
type Tone struct {
	Time   float32 `json:"time" yaml:"time"`
	ToneID int32   `json:"tone_id" yaml:"tone_id"`
}

// DNA is one entry of the mood timeline.
type DNA struct {
	Time float32 `json:"time" yaml:"time"`
	ID   int32   `json:"id" yaml:"id"`
}

// Section is a compiled structural section.
type Section struct {
	Name                   Name32                   `json:"name" yaml:"name"`
	Number                 int32                    `json:"number" yaml:"number"`
	StartTime              float32                  `json:"start_time" yaml:"start_time"`
	EndTime                float32                  `json:"end_time" yaml:"end_time"`
	StartPhraseIterationID int32                    `json:"start_phrase_iteration_id" yaml:"start_phrase_iteration_id"`
	EndPhraseIterationID   int32                    `json:"end_phrase_iteration_id" yaml:"end_phrase_iteration_id"`
	Levels                 [SectionLevelSlots]uint8 `json:"levels" yaml:"levels,flow"`
}

// Anchor is a compiled fret-hand position.
type Anchor struct {
	StartTime         float32 `json:"start_time" yaml:"start_time"`
	EndTime           float32 `json:"end_time" yaml:"end_time"`
	FretID            int32   `json:"fret_id" yaml:"fret_id"`
	Width             int32   `json:"width" yaml:"width"`
	PhraseIterationID int32   `json:"phrase_iteration_id" yaml:"phrase_iteration_id"`
}

// AnchorExtension and Fingerprint have no document source and stay empty.
type AnchorExtension struct {
	Time   float32 `json:"time" yaml:"time"`
	FretID uint8   `json:"fret_id" yaml:"fret_id"`
}

// Fingerprint is a hand-shape span.
type Fingerprint struct {
	ChordID   int32   `json:"chord_id" yaml:"chord_id"`
	StartTime float32 `json:"start_time" yaml:"start_time"`
	EndTime   float32 `json:"end_time" yaml:"end_time"`
}

// Note is a compiled single note or chord event.
//
// Fret holds the played fret of a single note and is absent for chords.
// AnchorFret holds a chord's primary fret id and is absent for single notes;
// emission fills the anchor fret slot from Fret when it is absent.
type Note struct {
	Mask              uint32                  `json:"mask" yaml:"mask"`
	Hash              uint32                  `json:"hash" yaml:"hash"`
	Time              float32                 `json:"time" yaml:"time"`
	String            Opt[uint8]              `json:"string" yaml:"string"`
	Fret              Opt[uint8]              `json:"fret" yaml:"fret"`
	AnchorFret        Opt[uint8]              `json:"anchor_fret" yaml:"anchor_fret"`
	AnchorWidth       uint8                   `json:"anchor_width" yaml:"anchor_width"`
	ChordID           Opt[int32]              `json:"chord_id" yaml:"chord_id"`
	ChordNotesID      Opt[int32]              `json:"chord_notes_id" yaml:"chord_notes_id"`
	PhraseID          int32                   `json:"phrase_id" yaml:"phrase_id"`
	PhraseIterationID int32                   `json:"phrase_iteration_id" yaml:"phrase_iteration_id"`
	FingerPrintID     [2]Opt[int16]           `json:"finger_print_id" yaml:"finger_print_id"`
	NextIterNote      Opt[int16]              `json:"next_iter_note" yaml:"next_iter_note"`
	PrevIterNote      Opt[int16]              `json:"prev_iter_note" yaml:"prev_iter_note"`
	ParentPrevNote    Opt[int16]              `json:"parent_prev_note" yaml:"parent_prev_note"`
	FingerID          [FingerSlots]Opt[uint8] `json:"finger_id" yaml:"finger_id"`
	PickDirection     Opt[uint8]              `json:"pick_direction" yaml:"pick_direction"`
	Slap              Opt[uint8]              `json:"slap" yaml:"slap"`
	Pluck             Opt[uint8]              `json:"pluck" yaml:"pluck"`
	Vibrato           int16                   `json:"vibrato" yaml:"vibrato"`
	Sustain           float32                 `json:"sustain" yaml:"sustain"`
	MaxBend           float32                 `json:"max_bend" yaml:"max_bend"`
	Bends             []BendPoint             `json:"bends" yaml:"bends"`
}

// defaultAnchorWidth is written for every note and chord.
const defaultAnchorWidth = 4

// Arrangement is the compiled timeline of one difficulty.
type Arrangement struct {
	Difficulty               int32             `json:"difficulty" yaml:"difficulty"`
	Anchors                  []Anchor          `json:"anchors" yaml:"anchors"`
	AnchorExtensions         []AnchorExtension `json:"anchor_extensions" yaml:"anchor_extensions"`
	Fingerprints1            []Fingerprint     `json:"fingerprints1" yaml:"fingerprints1"`
	Fingerprints2            []Fingerprint     `json:"fingerprints2" yaml:"fingerprints2"`
	Notes                    []Note            `json:"notes" yaml:"notes"`
	AverageNotesPerIteration []float32         `json:"average_notes_per_iteration" yaml:"average_notes_per_iteration"`
	NotesInIteration         []int32           `json:"notes_in_iteration" yaml:"notes_in_iteration"`
}

// Metadata is the chart-wide summary.
type Metadata struct {
	MaxScore               float64    `json:"max_score" yaml:"max_score"`
	MaxNotesAndChords      float64    `json:"max_notes_and_chords" yaml:"max_notes_and_chords"`
	PointsPerNote          float64    `json:"points_per_note" yaml:"points_per_note"`
	FirstBeatLength        float32    `json:"first_beat_length" yaml:"first_beat_length"`
	StartTime              float32    `json:"start_time" yaml:"start_time"`
	CapoFretID             Opt[uint8] `json:"capo_fret_id" yaml:"capo_fret_id"`
	LastConversionDateTime Name32     `json:"last_conversion_date_time" yaml:"last_conversion_date_time"`
	Part                   int16      `json:"part" yaml:"part"`
	SongLength             float32    `json:"song_length" yaml:"song_length"`
	StringCount            int32      `json:"string_count" yaml:"string_count"`
	Tuning                 []int16    `json:"tuning" yaml:"tuning"`
	FirstNoteTime          float32    `json:"first_note_time" yaml:"first_note_time"`
	MaxDifficulty          int32      `json:"max_difficulty" yaml:"max_difficulty"`
}
