// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes sngforge tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/sngforge/internal/apperr"
	"github.com/starford/sngforge/internal/chartservice"
	"github.com/starford/sngforge/internal/storage"
)

// DocumentFormatURI names the document format resource.
const DocumentFormatURI = "sngforge://document-format"

// Server wraps the MCP server with sngforge tools.
type Server struct {
	mcp   *server.MCPServer
	svc   *chartservice.Service
	songs storage.Provider
}

// New creates a new MCP server with all sngforge tools registered.
func New(svc *chartservice.Service, songs storage.Provider) *Server {
	s := &Server{svc: svc, songs: songs}

	s.mcp = server.NewMCPServer(
		"sngforge",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("compile_chart",
		mcp.WithDescription("Compile a notation document. Pass path to compile a document from "+
			"the songs directory and refresh its catalogue entry, or xml to compile an inline "+
			"document without storing it. Read the format first via get_document_format."),
		mcp.WithString("path", mcp.Description("Document path relative to the songs directory (e.g. album/song.xml)")),
		mcp.WithString("xml", mcp.Description("Inline notation document")),
	), s.compileChart)

	s.mcp.AddTool(mcp.NewTool("list_charts",
		mcp.WithDescription("List catalogued charts."),
		mcp.WithString("status", mcp.Description("Optional status filter: compiled or failed")),
		mcp.WithNumber("limit", mcp.Description("Page size (default 50)")),
		mcp.WithNumber("offset", mcp.Description("Page offset")),
	), s.listCharts)

	s.mcp.AddTool(mcp.NewTool("get_chart",
		mcp.WithDescription("Read the catalogue entry of one document."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Document path")),
	), s.getChart)

	s.mcp.AddTool(mcp.NewTool("search_charts",
		mcp.WithDescription("Search charts by path, title, artist or arrangement."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchCharts)

	s.mcp.AddTool(mcp.NewTool("chart_report",
		mcp.WithDescription("Plain text summary of a compiled document: levels, phrases and counts."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Document path")),
	), s.chartReport)

	s.mcp.AddTool(mcp.NewTool("import_document",
		mcp.WithDescription("Download a notation document from an http(s) URL or a base64 data URI "+
			"into the songs directory and compile it."),
		mcp.WithString("url", mcp.Required(), mcp.Description("http(s) URL or data:application/xml;base64,... URI")),
		mcp.WithString("filename", mcp.Description("Target path (must end with .xml); derived from the URL when empty")),
	), s.importDocument)

	s.mcp.AddTool(mcp.NewTool("get_document_format",
		mcp.WithDescription("Returns the notation document format. "+
			"Call this before writing or importing documents."),
	), s.getDocumentFormat)

	s.mcp.AddResource(
		mcp.NewResource(DocumentFormatURI, "Notation Document Format",
			mcp.WithResourceDescription("Notation XML that sngforge compiles into charts."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readDocumentFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

func errorResult(path string, err error) *mcp.CallToolResult {
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path))
	}
	return mcp.NewToolResultError(err.Error())
}

func (s *Server) compileChart(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := req.GetString("path", "")
	doc := req.GetString("xml", "")
	switch {
	case path != "" && doc != "":
		return mcp.NewToolResultError("pass either path or xml, not both"), nil
	case path != "":
		chart, err := s.svc.Compile(ctx, path)
		if err != nil {
			return errorResult(path, err), nil
		}
		return jsonResult(chart), nil
	case doc != "":
		res, err := s.svc.CompileBytes([]byte(doc))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(res.Record()), nil
	default:
		return mcp.NewToolResultError("path or xml is required"), nil
	}
}

func (s *Server) listCharts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", 50)
	offset := req.GetInt("offset", 0)
	charts, total, err := s.svc.List(limit, offset, req.GetString("status", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{"charts": charts, "total": total}), nil
}

func (s *Server) getChart(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	chart, err := s.svc.Get(path)
	if err != nil {
		return errorResult(path, err), nil
	}
	return jsonResult(chart), nil
}

func (s *Server) searchCharts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultText("no charts found"), nil
	}
	return jsonResult(results), nil
}

func (s *Server) chartReport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text, err := s.svc.Report(path)
	if err != nil {
		return errorResult(path, err), nil
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) getDocumentFormat(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(DocumentFormat), nil
}

func (s *Server) readDocumentFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      DocumentFormatURI,
			MIMEType: "text/markdown",
			Text:     DocumentFormat,
		},
	}, nil
}
