package mcpserver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/sngforge/internal/chartservice"
	"github.com/starford/sngforge/internal/models"
	"github.com/starford/sngforge/internal/storage"
	"github.com/starford/sngforge/internal/testutil"
)

func testServer(t *testing.T) (*Server, string) {
	t.Helper()
	songsDir, songs := testutil.TestSongs(t)
	out, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	db := testutil.TestDB(t)
	svc := chartservice.New(songs, out, db, chartservice.Config{Workers: 1}, nil)
	return New(svc, songs), songsDir
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so handlers are called
	// directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "compile_chart":
		result, err = srv.compileChart(ctx, req)
	case "list_charts":
		result, err = srv.listCharts(ctx, req)
	case "get_chart":
		result, err = srv.getChart(ctx, req)
	case "search_charts":
		result, err = srv.searchCharts(ctx, req)
	case "chart_report":
		result, err = srv.chartReport(ctx, req)
	case "import_document":
		result, err = srv.importDocument(ctx, req)
	case "get_document_format":
		result, err = srv.getDocumentFormat(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestCompileChart_Path(t *testing.T) {
	srv, dir := testServer(t)
	testutil.WriteSong(t, dir, "song.xml")

	r := callTool(t, srv, "compile_chart", map[string]interface{}{"path": "song.xml"})
	if r.IsError {
		t.Fatalf("compile error: %s", resultText(r))
	}
	var chart models.Chart
	if err := json.Unmarshal([]byte(resultText(r)), &chart); err != nil {
		t.Fatal(err)
	}
	if chart.Path != "song.xml" || chart.Title != "Fixture Song" {
		t.Errorf("chart = %+v", chart)
	}

	r = callTool(t, srv, "get_chart", map[string]interface{}{"path": "song.xml"})
	if r.IsError {
		t.Fatalf("get error: %s", resultText(r))
	}
}

func TestCompileChart_Inline(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "compile_chart", map[string]interface{}{"xml": testutil.SongXML})
	if r.IsError {
		t.Fatalf("compile error: %s", resultText(r))
	}
	var rec struct {
		Sections []json.RawMessage `json:"sections"`
	}
	if err := json.Unmarshal([]byte(resultText(r)), &rec); err != nil {
		t.Fatal(err)
	}
	if len(rec.Sections) != 2 {
		t.Errorf("sections = %d, want 2", len(rec.Sections))
	}
}

func TestCompileChart_BadArguments(t *testing.T) {
	srv, _ := testServer(t)
	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"none", map[string]interface{}{}},
		{"both", map[string]interface{}{"path": "a.xml", "xml": testutil.SongXML}},
		{"missing path", map[string]interface{}{"path": "nope.xml"}},
		{"malformed xml", map[string]interface{}{"xml": "<song>"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if r := callTool(t, srv, "compile_chart", tt.args); !r.IsError {
				t.Errorf("expected error, got %q", resultText(r))
			}
		})
	}
}

func TestGetChartMissing(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "get_chart", map[string]interface{}{"path": "nope.xml"})
	if !r.IsError {
		t.Fatal("expected error for missing chart")
	}
	if got := resultText(r); got != "not found: nope.xml" {
		t.Errorf("error = %q", got)
	}
}

func TestListAndSearchCharts(t *testing.T) {
	srv, dir := testServer(t)
	testutil.WriteSong(t, dir, "a.xml")
	testutil.WriteSong(t, dir, "b.xml")
	if _, err := srv.svc.CompileAll(context.Background(), false); err != nil {
		t.Fatal(err)
	}

	r := callTool(t, srv, "list_charts", map[string]interface{}{"limit": 1})
	var page struct {
		Charts []models.Chart `json:"charts"`
		Total  int            `json:"total"`
	}
	if err := json.Unmarshal([]byte(resultText(r)), &page); err != nil {
		t.Fatal(err)
	}
	if page.Total != 2 || len(page.Charts) != 1 {
		t.Errorf("page = %d charts of %d, want 1 of 2", len(page.Charts), page.Total)
	}

	r = callTool(t, srv, "search_charts", map[string]interface{}{"query": "Fixture"})
	if !strings.Contains(resultText(r), `"a.xml"`) {
		t.Errorf("search = %s", resultText(r))
	}
	r = callTool(t, srv, "search_charts", map[string]interface{}{"query": "zzz"})
	if got := resultText(r); got != "no charts found" {
		t.Errorf("empty search = %q", got)
	}
}

func TestChartReport(t *testing.T) {
	srv, dir := testServer(t)
	testutil.WriteSong(t, dir, "song.xml")
	r := callTool(t, srv, "chart_report", map[string]interface{}{"path": "song.xml"})
	if r.IsError || !strings.Contains(resultText(r), "Fixture Artist") {
		t.Errorf("report = %q", resultText(r))
	}
}

func TestImportDocument_DataURI(t *testing.T) {
	srv, _ := testServer(t)
	uri := "data:application/xml;base64," + base64.StdEncoding.EncodeToString([]byte(testutil.SongXML))

	r := callTool(t, srv, "import_document", map[string]interface{}{
		"url":      uri,
		"filename": "imports/new song.xml",
	})
	if r.IsError {
		t.Fatalf("import error: %s", resultText(r))
	}
	var res importResult
	if err := json.Unmarshal([]byte(resultText(r)), &res); err != nil {
		t.Fatal(err)
	}
	if res.SavedPath != "imports/new_song.xml" {
		t.Errorf("saved path = %q", res.SavedPath)
	}
	if res.Chart == nil || res.Chart.Failed() || res.Error != "" {
		t.Errorf("import result = %+v", res)
	}

	// A second import to the same path is refused.
	r = callTool(t, srv, "import_document", map[string]interface{}{
		"url":      uri,
		"filename": "imports/new_song.xml",
	})
	if !r.IsError {
		t.Error("expected error for existing document")
	}
}

func TestImportDocument_Rejects(t *testing.T) {
	srv, _ := testServer(t)
	enc := func(s string) string { return base64.StdEncoding.EncodeToString([]byte(s)) }
	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"not a document", map[string]interface{}{"url": "data:application/xml;base64," + enc("<html/>")}},
		{"wrong extension", map[string]interface{}{"url": "data:application/xml;base64," + enc(testutil.SongXML), "filename": "song.txt"}},
		{"image mime", map[string]interface{}{"url": "data:image/png;base64," + enc(testutil.SongXML)}},
		{"plain data uri", map[string]interface{}{"url": "data:text/xml," + testutil.SongXML}},
		{"ftp scheme", map[string]interface{}{"url": "ftp://example.com/song.xml"}},
		{"loopback", map[string]interface{}{"url": "http://127.0.0.1/song.xml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if r := callTool(t, srv, "import_document", tt.args); !r.IsError {
				t.Errorf("expected error, got %q", resultText(r))
			}
		})
	}
}

func TestSanitizePath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"song.xml", "song.xml"},
		{"../../etc/passwd.xml", "etc/passwd.xml"},
		{`a\b c.xml`, "a/b_c.xml"},
		{"/abs/x.xml", "abs/x.xml"},
	}
	for _, tt := range tests {
		if got := sanitizePath(tt.in); got != tt.want {
			t.Errorf("sanitizePath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if got := sanitizePath(".."); !strings.HasSuffix(got, ".xml") {
		t.Errorf("sanitizePath(..) = %q, want generated name", got)
	}
}

func TestDocumentFormat(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "get_document_format", map[string]interface{}{})
	if resultText(r) != DocumentFormat {
		t.Error("format tool should return DocumentFormat")
	}
	contents, err := srv.readDocumentFormatResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok || tc.URI != DocumentFormatURI {
		t.Errorf("resource = %+v", contents[0])
	}
}
