package chartservice

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/starford/sngforge/internal/apperr"
	"github.com/starford/sngforge/internal/checksum"
	"github.com/starford/sngforge/internal/index"
	"github.com/starford/sngforge/internal/models"
	"github.com/starford/sngforge/internal/storage"
)

// Event kinds passed to an EventFunc.
const (
	EventCompiled = "compiled"
	EventFailed   = "failed"
	EventDeleted  = "deleted"
)

// EventFunc observes catalogue changes. errMsg is set for failed compiles.
type EventFunc func(kind, path, errMsg string)

// Service compiles documents from the songs directory, writes the artifacts
// to the output directory and keeps the catalogue current.
type Service struct {
	songs  storage.Provider
	out    storage.Provider
	db     index.ChartIndex
	cfg    Config
	logger *slog.Logger
	notify EventFunc
}

// New creates a Service. A nil logger discards output.
func New(songs, out storage.Provider, db index.ChartIndex, cfg Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &Service{songs: songs, out: out, db: db, cfg: cfg, logger: logger}
}

// OnEvent registers fn to observe catalogue changes.
func (s *Service) OnEvent(fn EventFunc) {
	s.notify = fn
}

func (s *Service) emit(kind, path, errMsg string) {
	if s.notify != nil {
		s.notify(kind, path, errMsg)
	}
}

func (s *Service) read(path string) ([]byte, error) {
	data, err := s.songs.Read(path)
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, storage.ErrOutsideRoot) {
		return nil, fmt.Errorf("chartservice: %s: %w", path, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("chartservice: %w", err)
	}
	return data, nil
}

// Load compiles the document at path without touching outputs or the catalogue.
func (s *Service) Load(path string) (*Result, error) {
	data, err := s.read(path)
	if err != nil {
		return nil, err
	}
	res, err := CompileDocument(data, s.cfg, s.logger.With(slog.String("path", path)))
	if err != nil {
		return nil, fmt.Errorf("chartservice: %s: %w", path, err)
	}
	return res, nil
}

// CompileBytes compiles an uploaded document with the service settings.
// Nothing is written or catalogued.
func (s *Service) CompileBytes(data []byte) (*Result, error) {
	return CompileDocument(data, s.cfg, s.logger)
}

// Compile compiles the document at path, writes its artifacts and records
// the outcome in the catalogue. A failed compile is catalogued as failed and
// its error returned along with the entry.
func (s *Service) Compile(ctx context.Context, path string) (*models.Chart, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := s.read(path)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger := s.logger.With(slog.String("run_id", runID), slog.String("path", path))
	start := time.Now()

	res, err := CompileDocument(data, s.cfg, logger)
	if err == nil {
		var chart models.Chart
		chart, err = s.persist(path, data, res)
		if err == nil {
			logger.Info("chart compiled",
				slog.Int("notes", int(chart.NotesCount)),
				slog.Duration("took", time.Since(start)))
			s.emit(EventCompiled, path, "")
			return &chart, nil
		}
	}

	chart := models.Chart{
		Path:     path,
		Checksum: checksum.Sum(data),
		Status:   models.StatusFailed,
		Error:    err.Error(),
	}
	if res != nil && res.Song != nil {
		chart.Title = res.Song.Title
		chart.Artist = res.Song.ArtistName
		chart.Arrangement = res.Song.Arrangement
		chart.Bass = res.Bass
	}
	if dbErr := s.db.UpsertChart(chart); dbErr != nil {
		logger.Warn("catalogue failed compile", slog.String("error", dbErr.Error()))
	}
	logger.Warn("chart failed", slog.String("error", err.Error()))
	s.emit(EventFailed, path, err.Error())
	return &chart, fmt.Errorf("chartservice: %s: %w", path, err)
}

func (s *Service) persist(path string, data []byte, res *Result) (models.Chart, error) {
	chart := res.Chart(path, checksum.Sum(data))

	rec, err := EncodeRecord(res.Record())
	if err != nil {
		return chart, err
	}
	chart.Output = storage.OutputPath(path, RecordExt)
	if err := s.out.Write(chart.Output, rec); err != nil {
		return chart, err
	}

	if s.cfg.MIDIPreview {
		mid, err := res.MIDI()
		if err != nil {
			return chart, err
		}
		if err := s.out.Write(storage.OutputPath(path, MIDIExt), mid); err != nil {
			return chart, err
		}
	}

	chart.CompiledAt = time.Now().UTC()
	if err := s.db.UpsertChart(chart); err != nil {
		return chart, err
	}
	return chart, nil
}

// Summary describes one CompileAll pass.
type Summary struct {
	RunID    string `json:"run_id"`
	Compiled int    `json:"compiled"`
	Failed   int    `json:"failed"`
	Removed  int    `json:"removed"`
}

// CompileAll compiles every new or changed document in parallel and drops
// catalogue entries whose document is gone. With force set every document
// is recompiled. Individual failures are catalogued, not returned.
func (s *Service) CompileAll(ctx context.Context, force bool) (Summary, error) {
	started := time.Now().UTC()
	sum := Summary{RunID: uuid.NewString()}
	logger := s.logger.With(slog.String("batch_id", sum.RunID))

	plan, err := index.PlanSync(s.db, s.songs, force)
	if err != nil {
		return sum, fmt.Errorf("chartservice: %w", err)
	}

	var compiled, failed atomic.Int32
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)
	for _, f := range plan.Changed {
		g.Go(func() error {
			if _, err := s.Compile(gctx, f.Path); err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				failed.Add(1)
				return nil
			}
			compiled.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return sum, fmt.Errorf("chartservice: compile all: %w", err)
	}

	for _, p := range index.RemoveStale(s.db, plan, logger) {
		s.removeOutputs(p, logger)
		s.emit(EventDeleted, p, "")
		sum.Removed++
	}
	sum.Compiled = int(compiled.Load())
	sum.Failed = int(failed.Load())

	if err := s.db.RecordRun(index.Run{
		ID:         sum.RunID,
		StartedAt:  started,
		FinishedAt: time.Now().UTC(),
		Total:      len(plan.Changed),
		Failed:     sum.Failed,
	}); err != nil {
		logger.Warn("record run failed", slog.String("error", err.Error()))
	}

	if !plan.Empty() {
		logger.Info("compile pass finished",
			slog.Int("compiled", sum.Compiled),
			slog.Int("failed", sum.Failed),
			slog.Int("removed", sum.Removed))
	}
	return sum, nil
}

// removeOutputs deletes the artifacts of a document that left the songs
// directory. The preview is removed even when previews are now disabled.
func (s *Service) removeOutputs(path string, logger *slog.Logger) {
	for _, ext := range []string{RecordExt, MIDIExt} {
		out := storage.OutputPath(path, ext)
		if err := s.out.Delete(out); err != nil && !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("remove output failed", slog.String("output", out), slog.String("error", err.Error()))
		}
	}
}

// Resync is the watcher callback: an incremental CompileAll whose error is
// logged.
func (s *Service) Resync(ctx context.Context) {
	if _, err := s.CompileAll(ctx, false); err != nil && ctx.Err() == nil {
		s.logger.Warn("resync failed", slog.String("error", err.Error()))
	}
}

// Get returns the catalogue entry for path.
func (s *Service) Get(path string) (*models.Chart, error) {
	return s.db.GetChart(path)
}

// List returns one page of the catalogue.
func (s *Service) List(limit, offset int, status string) ([]models.Chart, int, error) {
	return s.db.ListCharts(limit, offset, status)
}

// Search finds charts by path, title, artist or arrangement.
func (s *Service) Search(query string, limit int) ([]models.Chart, error) {
	return s.db.Search(query, limit)
}

// Preview compiles the document at path and renders it as MIDI.
func (s *Service) Preview(path string) ([]byte, error) {
	res, err := s.Load(path)
	if err != nil {
		return nil, err
	}
	return res.MIDI()
}

// Report compiles the document at path and renders the text summary.
func (s *Service) Report(path string) (string, error) {
	res, err := s.Load(path)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	if err := res.Report(&b); err != nil {
		return "", err
	}
	return b.String(), nil
}
