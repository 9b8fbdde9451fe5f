package mcpserver

// DocumentFormat describes the notation XML that sngforge compiles. LLM
// consumers should read it before writing or importing documents.
const DocumentFormat = `# sngforge Notation Document Format

A document is one arrangement of one song, stored as UTF-8 XML with the
` + "`" + `.xml` + "`" + ` extension. Times are seconds from the start of the audio.

## Structure

` + "```" + `xml
<song version="7">
  <title>Song title</title>
  <arrangement>Lead</arrangement>        <!-- "Bass" selects bass pitches -->
  <songLength>180.000</songLength>
  <averageTempo>120.000</averageTempo>
  <tuning string0="0" string1="0" string2="0" string3="0" string4="0" string5="0" />
  <capo>0</capo>
  <artistName>Artist</artistName>
  <phrases>
    <phrase name="COUNT" maxDifficulty="0" />
    <phrase name="riff" maxDifficulty="1" />
  </phrases>
  <phraseIterations>
    <phraseIteration time="0.000" phraseId="0" />
    <phraseIteration time="10.000" phraseId="1" />
  </phraseIterations>
  <ebeats>
    <ebeat time="0.000" measure="1" />
    <ebeat time="0.500" />
  </ebeats>
  <sections>
    <section name="verse" number="1" startTime="10.000" />
  </sections>
  <chordTemplates>
    <chordTemplate chordName="G" fret0="3" fret1="2" fret2="0" fret3="0" fret4="0" fret5="3" />
  </chordTemplates>
  <levels>
    <level difficulty="0">
      <notes><note time="10.000" string="0" fret="3" /></notes>
      <chords><chord time="11.000" chordId="0" /></chords>
      <anchors><anchor time="10.000" fret="1" width="4" /></anchors>
    </level>
  </levels>
</song>
` + "```" + `

## Rules

1. **At least two ebeats.** The first beat length comes from the first pair.
2. **Every phraseIteration.phraseId** must index the phrases list.
3. **Levels** must exist for every difficulty up to the highest phrase
   maxDifficulty. The hardest level must contain notes or chords.
4. **Strings** are numbered 0 (lowest) to 5. Frets of -1 mark unplayed strings.
5. **Chords** reference chordTemplates by index. Optional ` + "`" + `chordNote` + "`" + ` children
   carry per-string techniques (slides, bends, vibrato).
6. **Technique attributes** (hammerOn, pullOff, palmMute, tremolo, ...) are 0 or 1;
   slideTo, pluck and slap are -1 when unset.
7. **Sections** named ` + "`" + `noguitar` + "`" + ` switch the guitar track off in the
   compiled chart.
8. **Names** (phrases, sections, chord names) are folded to ASCII and truncated
   to 32 bytes when compiled.

## Tools

- ` + "`" + `compile_chart` + "`" + ` compiles a catalogued path or an inline document.
- ` + "`" + `import_document` + "`" + ` downloads a document into the songs directory and compiles it.
- ` + "`" + `list_charts` + "`" + `, ` + "`" + `get_chart` + "`" + ` and ` + "`" + `search_charts` + "`" + ` query the catalogue.
`
