package sng

import "github.com/starford/sngforge/internal/song"

// Mood ids of the DNA timeline.
const (
	DNANoGuitar int32 = 0
	DNADefault  int32 = 3
)

// noGuitarSection is the section name that marks a stretch without the
// instrument.
const noGuitarSection = "noguitar"

// MoodID classifies a section name.
func MoodID(name string) int32 {
	if name == noGuitarSection {
		return DNANoGuitar
	}
	return DNADefault
}

// DNATimeline run-length encodes the mood ids of consecutive sections.
func DNATimeline(sections []song.Section) []DNA {
	out := []DNA{}
	for i, s := range sections {
		id := MoodID(s.Name)
		if i > 0 && out[len(out)-1].ID == id {
			continue
		}
		out = append(out, DNA{Time: s.StartTime, ID: id})
	}
	return out
}

func (c *compilation) sections() []Section {
	src := c.doc.Sections
	out := make([]Section, len(src))
	for i, s := range src {
		end := c.doc.SongLength
		if i+1 < len(src) {
			end = src[i+1].StartTime
		}
		sec := Section{
			Name:                   c.name32(s.Name),
			Number:                 s.Number,
			StartTime:              s.StartTime,
			EndTime:                end,
			StartPhraseIterationID: int32(c.timeline.Index(s.StartTime, StartInclusive)),
			EndPhraseIterationID:   int32(c.timeline.Index(end, EndExclusive)),
		}
		// Every authored level is marked present; the engine rejects zero.
		for lvl := 0; lvl <= int(c.maxDifficulty) && lvl < SectionLevelSlots; lvl++ {
			sec.Levels[lvl] = 1
		}
		out[i] = sec
	}
	return out
}
