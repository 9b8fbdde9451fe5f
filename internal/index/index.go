package index

import "github.com/starford/sngforge/internal/models"

// ChartIndex is the catalogue surface used by the service and transports.
type ChartIndex interface {
	UpsertChart(c models.Chart) error
	DeleteChart(path string) error
	GetChart(path string) (*models.Chart, error)
	ListCharts(limit, offset int, status string) ([]models.Chart, int, error)
	Search(query string, limit int) ([]models.Chart, error)
	AllChecksums() (map[string]string, error)
	RecordRun(r Run) error
	Close() error
}

// Verify *DB satisfies ChartIndex at compile time.
var _ ChartIndex = (*DB)(nil)
