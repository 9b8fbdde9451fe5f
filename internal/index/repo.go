package index

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/starford/sngforge/internal/apperr"
	"github.com/starford/sngforge/internal/models"
)

// likeEscaper makes user input match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

const chartColumns = `path, checksum, title, artist, arrangement, bass, max_difficulty,
	notes_count, song_length, points_per_note, output, status, error, compiled_at`

// Run summarises one batch compile.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Total      int
	Failed     int
}

type scanner interface {
	Scan(dest ...any) error
}

func scanChart(s scanner) (models.Chart, error) {
	var c models.Chart
	err := s.Scan(&c.Path, &c.Checksum, &c.Title, &c.Artist, &c.Arrangement, &c.Bass,
		&c.MaxDifficulty, &c.NotesCount, &c.SongLength, &c.PointsPerNote,
		&c.Output, &c.Status, &c.Error, &c.CompiledAt)
	return c, err
}

// UpsertChart inserts or replaces the catalogue entry for c.Path.
func (db *DB) UpsertChart(c models.Chart) error {
	if c.Status == "" {
		c.Status = models.StatusCompiled
	}
	if c.CompiledAt.IsZero() {
		c.CompiledAt = time.Now().UTC()
	}
	_, err := db.conn.Exec(`
		INSERT INTO charts (`+chartColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			checksum        = excluded.checksum,
			title           = excluded.title,
			artist          = excluded.artist,
			arrangement     = excluded.arrangement,
			bass            = excluded.bass,
			max_difficulty  = excluded.max_difficulty,
			notes_count     = excluded.notes_count,
			song_length     = excluded.song_length,
			points_per_note = excluded.points_per_note,
			output          = excluded.output,
			status          = excluded.status,
			error           = excluded.error,
			compiled_at     = excluded.compiled_at
	`, c.Path, c.Checksum, c.Title, c.Artist, c.Arrangement, c.Bass, c.MaxDifficulty,
		c.NotesCount, c.SongLength, c.PointsPerNote, c.Output, c.Status, c.Error, c.CompiledAt)
	if err != nil {
		return fmt.Errorf("index: upsert chart: %w", err)
	}
	return nil
}

// DeleteChart removes the catalogue entry for path. Deleting a missing entry
// is not an error.
func (db *DB) DeleteChart(path string) error {
	if _, err := db.conn.Exec(`DELETE FROM charts WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: delete chart: %w", err)
	}
	return nil
}

// GetChart returns the entry for path or apperr.ErrNotFound.
func (db *DB) GetChart(path string) (*models.Chart, error) {
	row := db.conn.QueryRow(`SELECT `+chartColumns+` FROM charts WHERE path = ?`, path)
	c, err := scanChart(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("index: chart %s: %w", path, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("index: get chart: %w", err)
	}
	return &c, nil
}

// ListCharts returns one page of entries ordered by path, optionally filtered
// by status, together with the total number of matching entries.
func (db *DB) ListCharts(limit, offset int, status string) ([]models.Chart, int, error) {
	if limit <= 0 {
		limit = 50
	}
	where := ""
	args := []any{}
	if status != "" {
		where = ` WHERE status = ?`
		args = append(args, status)
	}

	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM charts`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count charts: %w", err)
	}

	rows, err := db.conn.Query(`SELECT `+chartColumns+` FROM charts`+where+` ORDER BY path LIMIT ? OFFSET ?`,
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list charts: %w", err)
	}
	defer rows.Close()

	out, err := collect(rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Search matches query against path, title, artist and arrangement.
func (db *DB) Search(query string, limit int) ([]models.Chart, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + likeEscaper.Replace(query) + "%"
	rows, err := db.conn.Query(`
		SELECT `+chartColumns+`
		FROM charts
		WHERE path LIKE ? ESCAPE '\'
			OR title LIKE ? ESCAPE '\'
			OR artist LIKE ? ESCAPE '\'
			OR arrangement LIKE ? ESCAPE '\'
		ORDER BY title, path
		LIMIT ?
	`, like, like, like, like, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()
	return collect(rows)
}

func collect(rows *sql.Rows) ([]models.Chart, error) {
	out := []models.Chart{}
	for rows.Next() {
		c, err := scanChart(rows)
		if err != nil {
			return nil, fmt.Errorf("index: scan chart: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// AllChecksums maps every catalogued path to the checksum it was compiled from.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM charts`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// RecordRun stores the summary of a batch compile.
func (db *DB) RecordRun(r Run) error {
	_, err := db.conn.Exec(`
		INSERT INTO compile_runs (id, started_at, finished_at, total, failed)
		VALUES (?, ?, ?, ?, ?)
	`, r.ID, r.StartedAt, r.FinishedAt, r.Total, r.Failed)
	if err != nil {
		return fmt.Errorf("index: record run: %w", err)
	}
	return nil
}

// LastRun returns the most recently finished batch compile.
func (db *DB) LastRun() (*Run, error) {
	var r Run
	err := db.conn.QueryRow(`
		SELECT id, started_at, finished_at, total, failed
		FROM compile_runs ORDER BY finished_at DESC LIMIT 1
	`).Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &r.Total, &r.Failed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("index: last run: %w", apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("index: last run: %w", err)
	}
	return &r, nil
}
