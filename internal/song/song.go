// Package song models the authored notation document that the chart compiler
// consumes: tuning, beat grid, phrases, sections and per-difficulty timelines.
package song

import "encoding/xml"

// Song is the root of a notation document.
type Song struct {
	XMLName                xml.Name `xml:"song"`
	Version                string   `xml:"version,attr,omitempty"`
	Title                  string   `xml:"title"`
	Arrangement            string   `xml:"arrangement"`
	Part                   int16    `xml:"part"`
	Offset                 float32  `xml:"offset"`
	CentOffset             float32  `xml:"centOffset"`
	SongLength             float32  `xml:"songLength"`
	LastConversionDateTime string   `xml:"lastConversionDateTime"`
	StartBeat              float32  `xml:"startBeat"`
	AverageTempo           float32  `xml:"averageTempo"`
	Tuning                 Tuning   `xml:"tuning"`
	Capo                   int8     `xml:"capo"`
	ArtistName             string   `xml:"artistName"`
	AlbumName              string   `xml:"albumName"`
	AlbumYear              string   `xml:"albumYear"`

	Phrases          []Phrase          `xml:"phrases>phrase"`
	PhraseIterations []PhraseIteration `xml:"phraseIterations>phraseIteration"`
	NewLinkedDiffs   []NewLinkedDiff   `xml:"newLinkedDiffs>newLinkedDiff"`
	Ebeats           []Ebeat           `xml:"ebeats>ebeat"`
	Sections         []Section         `xml:"sections>section"`
	Events           []Event           `xml:"events>event"`
	ChordTemplates   []ChordTemplate   `xml:"chordTemplates>chordTemplate"`
	Levels           []Level           `xml:"levels>level"`
}

// StringCount is the number of strings every tuning and template describes.
const StringCount = 6

// Tuning holds per-string semitone offsets from standard tuning.
type Tuning struct {
	String0 int16 `xml:"string0,attr"`
	String1 int16 `xml:"string1,attr"`
	String2 int16 `xml:"string2,attr"`
	String3 int16 `xml:"string3,attr"`
	String4 int16 `xml:"string4,attr"`
	String5 int16 `xml:"string5,attr"`
}

// Offsets returns the tuning as an array indexed by string.
func (t Tuning) Offsets() [StringCount]int16 {
	return [StringCount]int16{t.String0, t.String1, t.String2, t.String3, t.String4, t.String5}
}

// Phrase is a named musical unit. Iterations reference phrases by index.
type Phrase struct {
	Name          string `xml:"name,attr"`
	MaxDifficulty int32  `xml:"maxDifficulty,attr"`
	Disparity     int8   `xml:"disparity,attr"`
	Ignore        int8   `xml:"ignore,attr"`
	Solo          int8   `xml:"solo,attr"`
}

// PhraseIteration is one occurrence of a phrase on the timeline.
type PhraseIteration struct {
	Time      float32 `xml:"time,attr"`
	PhraseID  int32   `xml:"phraseId,attr"`
	Variation string  `xml:"variation,attr,omitempty"`
}

// NewLinkedDiff links phrases that share a difficulty break.
type NewLinkedDiff struct {
	LevelBreak int32       `xml:"levelBreak,attr"`
	Ratio      string      `xml:"ratio,attr,omitempty"`
	Phrases    []NLDPhrase `xml:"nld_phrase"`
}

// NLDPhrase references a phrase by index.
type NLDPhrase struct {
	ID int32 `xml:"id,attr"`
}

// Ebeat is a beat on the tempo grid. Measure is -1 for beats that do not
// start a measure.
type Ebeat struct {
	Time    float32 `xml:"time,attr"`
	Measure int16   `xml:"measure,attr"`
}

// UnmarshalXML defaults an absent measure attribute to -1.
func (e *Ebeat) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	type plain Ebeat
	p := plain{Measure: -1}
	if err := d.DecodeElement(&p, &start); err != nil {
		return err
	}
	*e = Ebeat(p)
	return nil
}

// Section is a structural marker such as "verse" or "chorus".
type Section struct {
	Name      string  `xml:"name,attr"`
	Number    int32   `xml:"number,attr"`
	StartTime float32 `xml:"startTime,attr"`
}

// Event is a timed cue.
type Event struct {
	Time float32 `xml:"time,attr"`
	Code string  `xml:"code,attr"`
}

// ChordTemplate describes a chord shape. Unplayed strings carry fret and
// finger -1.
type ChordTemplate struct {
	ChordName   string `xml:"chordName,attr"`
	DisplayName string `xml:"displayName,attr"`
	Finger0     int8   `xml:"finger0,attr"`
	Finger1     int8   `xml:"finger1,attr"`
	Finger2     int8   `xml:"finger2,attr"`
	Finger3     int8   `xml:"finger3,attr"`
	Finger4     int8   `xml:"finger4,attr"`
	Finger5     int8   `xml:"finger5,attr"`
	Fret0       int8   `xml:"fret0,attr"`
	Fret1       int8   `xml:"fret1,attr"`
	Fret2       int8   `xml:"fret2,attr"`
	Fret3       int8   `xml:"fret3,attr"`
	Fret4       int8   `xml:"fret4,attr"`
	Fret5       int8   `xml:"fret5,attr"`
}

// UnmarshalXML defaults absent fret and finger attributes to -1.
func (c *ChordTemplate) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	type plain ChordTemplate
	var p plain
	p.Finger0, p.Finger1, p.Finger2, p.Finger3, p.Finger4, p.Finger5 = -1, -1, -1, -1, -1, -1
	p.Fret0, p.Fret1, p.Fret2, p.Fret3, p.Fret4, p.Fret5 = -1, -1, -1, -1, -1, -1
	if err := d.DecodeElement(&p, &start); err != nil {
		return err
	}
	*c = ChordTemplate(p)
	return nil
}

// Frets returns the template frets indexed by string.
func (c ChordTemplate) Frets() [StringCount]int8 {
	return [StringCount]int8{c.Fret0, c.Fret1, c.Fret2, c.Fret3, c.Fret4, c.Fret5}
}

// Fingers returns the template fingers indexed by string.
func (c ChordTemplate) Fingers() [StringCount]int8 {
	return [StringCount]int8{c.Finger0, c.Finger1, c.Finger2, c.Finger3, c.Finger4, c.Finger5}
}

// Level is the timeline of one difficulty.
type Level struct {
	Difficulty int32       `xml:"difficulty,attr"`
	Notes      []Note      `xml:"notes>note"`
	Chords     []Chord     `xml:"chords>chord"`
	Anchors    []Anchor    `xml:"anchors>anchor"`
	HandShapes []HandShape `xml:"handShapes>handShape"`
}

// Anchor fixes the fret-hand position from its time on.
type Anchor struct {
	Time  float32 `xml:"time,attr"`
	Fret  int8    `xml:"fret,attr"`
	Width float32 `xml:"width,attr"`
}

// HandShape spans a chord shape over time.
type HandShape struct {
	ChordID   int32   `xml:"chordId,attr"`
	StartTime float32 `xml:"startTime,attr"`
	EndTime   float32 `xml:"endTime,attr"`
}

// Note is a single played string. Chord notes share the same shape.
// Pluck, Slap, SlideTo and SlideUnpitchTo are -1 when unset.
type Note struct {
	Time           float32     `xml:"time,attr"`
	String         int8        `xml:"string,attr"`
	Fret           int8        `xml:"fret,attr"`
	Sustain        float32     `xml:"sustain,attr"`
	Bend           float32     `xml:"bend,attr"`
	Accent         int8        `xml:"accent,attr"`
	HammerOn       int8        `xml:"hammerOn,attr"`
	PullOff        int8        `xml:"pullOff,attr"`
	Harmonic       int8        `xml:"harmonic,attr"`
	HarmonicPinch  int8        `xml:"harmonicPinch,attr"`
	Hopo           int8        `xml:"hopo,attr"`
	Ignore         int8        `xml:"ignore,attr"`
	LinkNext       int8        `xml:"linkNext,attr"`
	Mute           int8        `xml:"mute,attr"`
	PalmMute       int8        `xml:"palmMute,attr"`
	Pluck          int8        `xml:"pluck,attr"`
	Slap           int8        `xml:"slap,attr"`
	SlideTo        int8        `xml:"slideTo,attr"`
	SlideUnpitchTo int8        `xml:"slideUnpitchTo,attr"`
	Tremolo        int8        `xml:"tremolo,attr"`
	Vibrato        int16       `xml:"vibrato,attr"`
	Tap            int8        `xml:"tap,attr"`
	PickDirection  int8        `xml:"pickDirection,attr"`
	LeftHand       int8        `xml:"leftHand,attr"`
	RightHand      int8        `xml:"rightHand,attr"`
	BendValues     []BendValue `xml:"bendValues>bendValue"`
}

// NewNote returns a note with every -1 attribute unset.
func NewNote() Note {
	return Note{
		Pluck:          -1,
		Slap:           -1,
		SlideTo:        -1,
		SlideUnpitchTo: -1,
		LeftHand:       -1,
		RightHand:      -1,
	}
}

// UnmarshalXML applies NewNote defaults before decoding.
func (n *Note) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	type plain Note
	p := plain(NewNote())
	if err := d.DecodeElement(&p, &start); err != nil {
		return err
	}
	*n = Note(p)
	return nil
}

// BendValue is one point of a bend curve.
type BendValue struct {
	Time float32 `xml:"time,attr"`
	Step float32 `xml:"step,attr"`
}

// Chord is a struck chord referencing a template by index. ChordNotes holds
// the optional per-string detail.
type Chord struct {
	Time         float32 `xml:"time,attr"`
	ChordID      int32   `xml:"chordId,attr"`
	Accent       int8    `xml:"accent,attr"`
	FretHandMute int8    `xml:"fretHandMute,attr"`
	HighDensity  int8    `xml:"highDensity,attr"`
	Ignore       int8    `xml:"ignore,attr"`
	LinkNext     int8    `xml:"linkNext,attr"`
	PalmMute     int8    `xml:"palmMute,attr"`
	Strum        string  `xml:"strum,attr,omitempty"`
	ChordNotes   []Note  `xml:"chordNote"`
}

// NoteOn returns the chord note on the given string, or nil.
func (c *Chord) NoteOn(str int8) *Note {
	for i := range c.ChordNotes {
		if c.ChordNotes[i].String == str {
			return &c.ChordNotes[i]
		}
	}
	return nil
}
