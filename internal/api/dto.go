package api

import (
	"github.com/starford/sngforge/internal/chartservice"
	"github.com/starford/sngforge/internal/models"
	"github.com/starford/sngforge/internal/sng"
)

// Chart is a catalogue entry (aliased from the domain layer).
type Chart = models.Chart

// ChartListResponse wraps paginated chart listings.
type ChartListResponse struct {
	Charts []Chart `json:"charts" validate:"required"`
	Total  int     `json:"total" example:"42" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []Chart `json:"results" validate:"required"`
}

// CompileResponse is returned for an uploaded document.
type CompileResponse struct {
	Title       string          `json:"title" example:"Fixture Song"`
	Artist      string          `json:"artist" example:"Fixture Artist"`
	Arrangement string          `json:"arrangement" example:"Lead"`
	Bass        bool            `json:"bass"`
	Record      *sng.FileRecord `json:"record" validate:"required"`
}

// CompileAllResponse reports one batch pass.
type CompileAllResponse = chartservice.Summary

func newCompileResponse(res *chartservice.Result) CompileResponse {
	return CompileResponse{
		Title:       res.Song.Title,
		Artist:      res.Song.ArtistName,
		Arrangement: res.Song.Arrangement,
		Bass:        res.Bass,
		Record:      res.Record(),
	}
}
