// Package models defines the catalogue types shared by storage, the index and
// the outer surfaces.
package models

import "time"

// Chart statuses.
const (
	StatusCompiled = "compiled"
	StatusFailed   = "failed"
)

// SongFile is a notation document found in the songs directory.
type SongFile struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Chart is the catalogue entry of one compiled (or failed) document.
type Chart struct {
	Path          string    `json:"path"`
	Checksum      string    `json:"checksum"`
	Title         string    `json:"title"`
	Artist        string    `json:"artist"`
	Arrangement   string    `json:"arrangement"`
	Bass          bool      `json:"bass"`
	MaxDifficulty int32     `json:"max_difficulty"`
	NotesCount    int32     `json:"notes_count"`
	SongLength    float32   `json:"song_length"`
	PointsPerNote float64   `json:"points_per_note"`
	Output        string    `json:"output,omitempty"`
	Status        string    `json:"status"`
	Error         string    `json:"error,omitempty"`
	CompiledAt    time.Time `json:"compiled_at"`
}

// Failed reports whether the last compile of the chart failed.
func (c *Chart) Failed() bool {
	return c.Status == StatusFailed
}
