package chartservice

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/starford/sngforge/internal/apperr"
	"github.com/starford/sngforge/internal/index"
	"github.com/starford/sngforge/internal/models"
	"github.com/starford/sngforge/internal/sng"
	"github.com/starford/sngforge/internal/storage"
	"github.com/starford/sngforge/internal/testutil"
)

// emptyHardestXML parses but has no notes on its hardest level.
var emptyHardestXML = strings.Replace(
	strings.Replace(testutil.SongXML, `<note time="5.000" string="0" fret="3" />`, "", 1),
	`maxDifficulty="1"`, `maxDifficulty="0"`, 1)

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) record(kind, path, _ string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, kind+":"+path)
}

func (r *recorder) has(ev string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e == ev {
			return true
		}
	}
	return false
}

type env struct {
	songsDir string
	outDir   string
	db       *index.DB
	svc      *Service
	events   *recorder
}

func newEnv(t *testing.T, cfg Config) *env {
	t.Helper()
	songsDir, songs := testutil.TestSongs(t)
	outDir := t.TempDir()
	out, err := storage.NewFS(outDir)
	if err != nil {
		t.Fatal(err)
	}
	db := testutil.TestDB(t)
	svc := New(songs, out, db, cfg, nil)
	rec := &recorder{}
	svc.OnEvent(rec.record)
	return &env{songsDir: songsDir, outDir: outDir, db: db, svc: svc, events: rec}
}

func (e *env) write(t *testing.T, rel, body string) {
	t.Helper()
	p := filepath.Join(e.songsDir, rel)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestCompileDocument(t *testing.T) {
	res, err := CompileDocument([]byte(testutil.SongXML), Config{}, nil)
	if err != nil {
		t.Fatalf("CompileDocument: %v", err)
	}
	if res.Bass {
		t.Error("Lead arrangement should not be bass")
	}
	c := res.Chart("a.xml", "sum")
	if c.Title != "Fixture Song" || c.MaxDifficulty != 1 || c.NotesCount != 3 || c.PointsPerNote != 33333 {
		t.Errorf("chart = %+v", c)
	}
	if c.Status != models.StatusCompiled {
		t.Errorf("status = %q, want %q", c.Status, models.StatusCompiled)
	}
}

func TestCompileDocument_ForcedBass(t *testing.T) {
	bass := true
	res, err := CompileDocument([]byte(testutil.SongXML), Config{Bass: &bass}, nil)
	if err != nil {
		t.Fatalf("CompileDocument: %v", err)
	}
	if !res.Bass {
		t.Error("forced bass ignored")
	}
	// low E third fret, one octave down
	if got := res.File.Chords[0].Notes[0]; got != 31 {
		t.Errorf("bass chord pitch = %d, want 31", got)
	}
}

func TestCompileDocument_Errors(t *testing.T) {
	if _, err := CompileDocument([]byte("<song><title>"), Config{}, nil); !errors.Is(err, apperr.ErrInvalidDocument) {
		t.Errorf("malformed err = %v, want ErrInvalidDocument", err)
	}
	res, err := CompileDocument([]byte(emptyHardestXML), Config{}, nil)
	if !errors.Is(err, apperr.ErrCompileFailed) || !errors.Is(err, sng.ErrNoNotes) {
		t.Errorf("empty err = %v, want ErrCompileFailed wrapping ErrNoNotes", err)
	}
	if res == nil || res.Song == nil || res.Song.Title != "Fixture Song" {
		t.Error("failed compile should still return the parsed document")
	}
}

func TestEncodeRecord(t *testing.T) {
	res, err := CompileDocument([]byte(testutil.SongXML), Config{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	out, err := EncodeRecord(res.Record())
	if err != nil {
		t.Fatalf("EncodeRecord: %v", err)
	}
	var decoded struct {
		Metadata struct {
			MaxDifficulty int32 `yaml:"max_difficulty"`
			CapoFretID    int   `yaml:"capo_fret_id"`
		} `yaml:"metadata"`
		Arrangements []struct {
			NotesInIteration1 []int32 `yaml:"notes_in_iteration1"`
		} `yaml:"arrangements"`
	}
	if err := yaml.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.Metadata.MaxDifficulty != 1 {
		t.Errorf("max difficulty = %d, want 1", decoded.Metadata.MaxDifficulty)
	}
	if decoded.Metadata.CapoFretID != 0xFF {
		t.Errorf("capo = %#x, want raw 0xff", decoded.Metadata.CapoFretID)
	}
	if len(decoded.Arrangements) != 2 {
		t.Fatalf("arrangements = %d, want 2", len(decoded.Arrangements))
	}
}

func TestService_Compile(t *testing.T) {
	e := newEnv(t, Config{MIDIPreview: true})
	e.write(t, "rock/lead.xml", testutil.SongXML)

	chart, err := e.svc.Compile(context.Background(), "rock/lead.xml")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if chart.Output != "rock/lead.sng.yaml" {
		t.Errorf("output = %q, want rock/lead.sng.yaml", chart.Output)
	}
	for _, rel := range []string{"rock/lead.sng.yaml", "rock/lead.mid"} {
		if _, err := os.Stat(filepath.Join(e.outDir, rel)); err != nil {
			t.Errorf("missing artifact %s: %v", rel, err)
		}
	}

	got, err := e.db.GetChart("rock/lead.xml")
	if err != nil {
		t.Fatalf("GetChart: %v", err)
	}
	if got.Failed() || got.NotesCount != 3 || got.Title != "Fixture Song" {
		t.Errorf("catalogued = %+v", got)
	}
	if !e.events.has("compiled:rock/lead.xml") {
		t.Errorf("events = %v, want compiled", e.events.events)
	}
}

func TestService_CompileMissing(t *testing.T) {
	e := newEnv(t, Config{})
	if _, err := e.svc.Compile(context.Background(), "nope.xml"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if _, err := e.svc.Compile(context.Background(), "../escape.xml"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("escape err = %v, want ErrNotFound", err)
	}
}

func TestService_CompileFailureIsCatalogued(t *testing.T) {
	e := newEnv(t, Config{})
	e.write(t, "empty.xml", emptyHardestXML)

	chart, err := e.svc.Compile(context.Background(), "empty.xml")
	if !errors.Is(err, apperr.ErrCompileFailed) {
		t.Fatalf("err = %v, want ErrCompileFailed", err)
	}
	if chart == nil || !chart.Failed() {
		t.Fatalf("chart = %+v, want failed entry", chart)
	}

	got, err := e.db.GetChart("empty.xml")
	if err != nil {
		t.Fatalf("GetChart: %v", err)
	}
	if !got.Failed() || got.Title != "Fixture Song" || !strings.Contains(got.Error, "no notes") {
		t.Errorf("catalogued = %+v", got)
	}
	if _, err := os.Stat(filepath.Join(e.outDir, "empty.sng.yaml")); !os.IsNotExist(err) {
		t.Errorf("failed compile wrote a record: %v", err)
	}
	if !e.events.has("failed:empty.xml") {
		t.Errorf("events = %v, want failed", e.events.events)
	}
}

func TestService_CompileCancelled(t *testing.T) {
	e := newEnv(t, Config{})
	e.write(t, "a.xml", testutil.SongXML)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := e.svc.Compile(ctx, "a.xml"); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestService_CompileAll(t *testing.T) {
	e := newEnv(t, Config{Workers: 3})
	e.write(t, "a.xml", testutil.SongXML)
	e.write(t, "sub/b.xml", testutil.SongXML)
	e.write(t, "bad.xml", emptyHardestXML)
	ctx := context.Background()

	sum, err := e.svc.CompileAll(ctx, false)
	if err != nil {
		t.Fatalf("CompileAll: %v", err)
	}
	if sum.Compiled != 2 || sum.Failed != 1 || sum.Removed != 0 {
		t.Errorf("first pass = %+v, want 2 compiled 1 failed", sum)
	}
	if sum.RunID == "" {
		t.Error("run id missing")
	}
	last, err := e.db.LastRun()
	if err != nil {
		t.Fatalf("LastRun: %v", err)
	}
	if last.ID != sum.RunID || last.Total != 3 || last.Failed != 1 {
		t.Errorf("recorded run = %+v", last)
	}

	sum, _ = e.svc.CompileAll(ctx, false)
	if sum.Compiled != 0 || sum.Failed != 0 {
		t.Errorf("unchanged pass = %+v, want nothing compiled", sum)
	}

	sum, _ = e.svc.CompileAll(ctx, true)
	if sum.Compiled != 2 || sum.Failed != 1 {
		t.Errorf("forced pass = %+v, want everything recompiled", sum)
	}

	if err := os.Remove(filepath.Join(e.songsDir, "sub", "b.xml")); err != nil {
		t.Fatal(err)
	}
	sum, _ = e.svc.CompileAll(ctx, false)
	if sum.Removed != 1 {
		t.Errorf("removal pass = %+v, want 1 removed", sum)
	}
	if !e.events.has("deleted:sub/b.xml") {
		t.Errorf("events = %v, want deleted", e.events.events)
	}

	charts, total, err := e.svc.List(10, 0, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 2 || len(charts) != 2 {
		t.Errorf("catalogue = %d entries (total %d), want 2", len(charts), total)
	}
}

func TestService_CompileAllRemovesOutputs(t *testing.T) {
	e := newEnv(t, Config{MIDIPreview: true})
	e.write(t, "rock/a.xml", testutil.SongXML)
	e.write(t, "rock/b.xml", testutil.SongXML)
	ctx := context.Background()

	if _, err := e.svc.CompileAll(ctx, false); err != nil {
		t.Fatalf("CompileAll: %v", err)
	}
	if err := os.Remove(filepath.Join(e.songsDir, "rock", "a.xml")); err != nil {
		t.Fatal(err)
	}
	sum, err := e.svc.CompileAll(ctx, false)
	if err != nil {
		t.Fatalf("CompileAll: %v", err)
	}
	if sum.Removed != 1 {
		t.Fatalf("removal pass = %+v, want 1 removed", sum)
	}

	for _, rel := range []string{"rock/a.sng.yaml", "rock/a.mid"} {
		if _, err := os.Stat(filepath.Join(e.outDir, rel)); !os.IsNotExist(err) {
			t.Errorf("%s still present: %v", rel, err)
		}
	}
	for _, rel := range []string{"rock/b.sng.yaml", "rock/b.mid"} {
		if _, err := os.Stat(filepath.Join(e.outDir, rel)); err != nil {
			t.Errorf("%s removed: %v", rel, err)
		}
	}
}

func TestService_ReportAndPreview(t *testing.T) {
	e := newEnv(t, Config{})
	e.write(t, "a.xml", testutil.SongXML)

	text, err := e.svc.Report("a.xml")
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if !strings.Contains(text, "Fixture Song by Fixture Artist") {
		t.Errorf("report = %q", text)
	}

	mid, err := e.svc.Preview("a.xml")
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if !strings.HasPrefix(string(mid), "MThd") {
		t.Errorf("preview is not a MIDI file: %q", mid[:min(8, len(mid))])
	}
}
