package sng

// beats builds the tempo grid. A beat with a measure number starts a new
// measure; any other beat advances the beat counter of the current one.
func (c *compilation) beats() []BPM {
	out := make([]BPM, len(c.doc.Ebeats))
	var measure, beat int16
	for i, eb := range c.doc.Ebeats {
		if eb.Measure >= 0 {
			measure = eb.Measure
			beat = 0
		} else {
			beat++
		}
		b := BPM{
			Time:            eb.Time,
			Measure:         measure,
			Beat:            beat,
			PhraseIteration: int32(c.timeline.Index(eb.Time, StartInclusive)),
		}
		if beat == 0 {
			b.Mask |= BeatFirst
			if measure%2 == 0 {
				b.Mask |= BeatEvenMeasure
			}
		}
		out[i] = b
	}
	return out
}
