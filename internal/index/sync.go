package index

import (
	"fmt"
	"log/slog"

	"github.com/starford/sngforge/internal/models"
	"github.com/starford/sngforge/internal/storage"
)

// Plan is the difference between the songs directory and the catalogue.
type Plan struct {
	// Changed lists documents that are new or whose checksum moved.
	Changed []models.SongFile
	// Stale lists catalogued paths whose document is gone.
	Stale []string
}

// Empty reports whether the catalogue is already up to date.
func (p Plan) Empty() bool {
	return len(p.Changed) == 0 && len(p.Stale) == 0
}

// PlanSync walks the songs directory and compares it with the catalogue.
// With force set every document counts as changed.
func PlanSync(db ChartIndex, store storage.Provider, force bool) (Plan, error) {
	files, err := store.List("")
	if err != nil {
		return Plan{}, fmt.Errorf("index: plan: %w", err)
	}
	checksums, err := db.AllChecksums()
	if err != nil {
		return Plan{}, fmt.Errorf("index: plan: %w", err)
	}

	var plan Plan
	disk := make(map[string]struct{}, len(files))
	for _, f := range files {
		disk[f.Path] = struct{}{}
		if !force && checksums[f.Path] == f.Checksum {
			continue
		}
		plan.Changed = append(plan.Changed, f)
	}
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			plan.Stale = append(plan.Stale, p)
		}
	}
	return plan, nil
}

// RemoveStale deletes the catalogue entries of plan.Stale and returns the
// paths actually removed.
func RemoveStale(db ChartIndex, plan Plan, logger *slog.Logger) []string {
	var removed []string
	for _, p := range plan.Stale {
		if err := db.DeleteChart(p); err != nil {
			logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			continue
		}
		logger.Debug("sync: removed stale", slog.String("path", p))
		removed = append(removed, p)
	}
	return removed
}
