package sng

func (c *compilation) phrases() []Phrase {
	links := make([]int32, len(c.doc.Phrases))
	for _, it := range c.doc.PhraseIterations {
		links[it.PhraseID]++
	}
	out := make([]Phrase, len(c.doc.Phrases))
	for i, p := range c.doc.Phrases {
		out[i] = Phrase{
			Solo:                 uint8(p.Solo),
			Disparity:            uint8(p.Disparity),
			Ignore:               uint8(p.Ignore),
			MaxDifficulty:        p.MaxDifficulty,
			PhraseIterationLinks: links[i],
			Name:                 c.name32(p.Name),
		}
	}
	return out
}

func (c *compilation) phraseIterations() []PhraseIteration {
	out := make([]PhraseIteration, len(c.doc.PhraseIterations))
	for i, it := range c.doc.PhraseIterations {
		out[i] = PhraseIteration{
			PhraseID:       it.PhraseID,
			StartTime:      it.Time,
			NextPhraseTime: c.timeline.End(i),
		}
	}
	return out
}

func (c *compilation) linkedDifficulties() []LinkedDifficulty {
	out := make([]LinkedDifficulty, len(c.doc.NewLinkedDiffs))
	for i, nld := range c.doc.NewLinkedDiffs {
		ids := make([]int32, len(nld.Phrases))
		for j, p := range nld.Phrases {
			ids[j] = p.ID
		}
		out[i] = LinkedDifficulty{LevelBreak: nld.LevelBreak, PhraseIDs: ids}
	}
	return out
}

func (c *compilation) events() []Event {
	out := make([]Event, len(c.doc.Events))
	for i, e := range c.doc.Events {
		out[i] = Event{Time: e.Time, Name: c.name256(e.Code)}
	}
	return out
}
