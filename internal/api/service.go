package api

import (
	"context"

	"github.com/starford/sngforge/internal/chartservice"
	"github.com/starford/sngforge/internal/models"
)

// ChartService is the part of the chart service the handlers use.
type ChartService interface {
	List(limit, offset int, status string) ([]models.Chart, int, error)
	Search(query string, limit int) ([]models.Chart, error)
	Get(path string) (*models.Chart, error)
	Compile(ctx context.Context, path string) (*models.Chart, error)
	CompileAll(ctx context.Context, force bool) (chartservice.Summary, error)
	CompileBytes(data []byte) (*chartservice.Result, error)
	Preview(path string) ([]byte, error)
	Report(path string) (string, error)
}

var _ ChartService = (*chartservice.Service)(nil)
