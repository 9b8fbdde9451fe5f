package mcpserver

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/sngforge/internal/models"
	"github.com/starford/sngforge/internal/storage"
)

const maxDocumentSize = 10 << 20 // 10 MB

var (
	xmlMIMETypes = map[string]bool{
		"application/xml": true,
		"text/xml":        true,
		"text/plain":      true,
	}

	safeSegmentRe = regexp.MustCompile(`[^a-zA-Z0-9._-]`)
)

type importResult struct {
	SavedPath string        `json:"savedPath"`
	Chart     *models.Chart `json:"chart,omitempty"`
	Error     string        `json:"error,omitempty"`
}

func (s *Server) importDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rawURL, err := req.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	filename := req.GetString("filename", "")

	var data []byte
	if strings.HasPrefix(rawURL, "data:") {
		data, err = decodeDataURI(rawURL)
	} else {
		data, err = fetchHTTP(ctx, rawURL)
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(data) > maxDocumentSize {
		return mcp.NewToolResultError(fmt.Sprintf("document too large: %d bytes (max %d)", len(data), maxDocumentSize)), nil
	}
	if err := validateDocument(data); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if filename == "" {
		filename = filenameFromURL(rawURL)
	}
	savePath := sanitizePath(filename)
	if !storage.IsDocument(savePath) {
		return mcp.NewToolResultError(fmt.Sprintf("unsupported file name: %s (must end with .xml)", savePath)), nil
	}

	if _, readErr := s.songs.Read(savePath); readErr == nil {
		return mcp.NewToolResultError(fmt.Sprintf("document already exists: %s", savePath)), nil
	}
	if err := s.songs.Write(savePath, data); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to save document: %v", err)), nil
	}

	out := importResult{SavedPath: savePath}
	chart, err := s.svc.Compile(ctx, savePath)
	out.Chart = chart
	if err != nil {
		out.Error = err.Error()
	}
	return jsonResult(out), nil
}

// decodeDataURI parses a data:[<mediatype>][;base64],<data> URI.
func decodeDataURI(uri string) ([]byte, error) {
	meta, encoded, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("invalid data URI: missing comma separator")
	}
	if !strings.Contains(meta, ";base64") {
		return nil, fmt.Errorf("only base64 data URIs are supported")
	}
	mime := strings.Split(strings.TrimSuffix(meta, ";base64"), ";")[0]
	if mime != "" && !xmlMIMETypes[mime] {
		return nil, fmt.Errorf("unsupported MIME type in data URI: %s", mime)
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("invalid base64 data: %w", err)
		}
	}
	return data, nil
}

// fetchHTTP downloads a document from an HTTP/HTTPS URL with security checks.
func fetchHTTP(ctx context.Context, rawURL string) ([]byte, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme: %s (only http/https)", parsed.Scheme)
	}
	if err := checkBlockedHost(parsed.Hostname()); err != nil {
		return nil, err
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return fmt.Errorf("too many redirects (max 5)")
			}
			return checkBlockedHost(req.URL.Hostname())
		},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download failed: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize+1))
	if err != nil {
		return nil, fmt.Errorf("read body failed: %w", err)
	}
	if len(data) > maxDocumentSize {
		return nil, fmt.Errorf("document too large: exceeds %d bytes", maxDocumentSize)
	}
	return data, nil
}

// checkBlockedHost rejects loopback and cloud metadata addresses.
func checkBlockedHost(host string) error {
	if host == "metadata.google.internal" {
		return fmt.Errorf("blocked host: %s", host)
	}

	ip := net.ParseIP(host)
	if ip == nil {
		ips, lookupErr := net.LookupIP(host)
		if lookupErr != nil || len(ips) == 0 {
			return nil //nolint:nilerr // let http.Client handle DNS failures
		}
		ip = ips[0]
	}

	if ip.IsLoopback() {
		return fmt.Errorf("blocked host: loopback address %s", host)
	}
	if ip.Equal(net.ParseIP("169.254.169.254")) {
		return fmt.Errorf("blocked host: cloud metadata address %s", host)
	}
	return nil
}

// filenameFromURL takes the last URL path segment, falling back to a UUID.
func filenameFromURL(rawURL string) string {
	if !strings.HasPrefix(rawURL, "data:") {
		if parsed, err := url.Parse(rawURL); err == nil {
			base := path.Base(parsed.Path)
			if storage.IsDocument(base) {
				return base
			}
		}
	}
	return uuid.New().String() + storage.DocumentExt
}

// sanitizePath keeps folder structure but strips unsafe characters and
// parent references from every segment.
func sanitizePath(name string) string {
	var segs []string
	for _, seg := range strings.Split(path.Clean("/"+strings.ReplaceAll(name, `\`, "/")), "/") {
		seg = safeSegmentRe.ReplaceAllString(seg, "_")
		if seg == "" || seg == "." || seg == ".." {
			continue
		}
		segs = append(segs, seg)
	}
	if len(segs) == 0 {
		return uuid.New().String() + storage.DocumentExt
	}
	return strings.Join(segs, "/")
}

// validateDocument checks that data looks like a notation document before
// it lands in the songs directory.
func validateDocument(data []byte) error {
	prefix := bytes.TrimSpace(data)
	if len(prefix) > 1024 {
		prefix = prefix[:1024]
	}
	if !bytes.Contains(prefix, []byte("<song")) {
		return fmt.Errorf("content does not appear to be a notation document (missing <song tag)")
	}
	return nil
}
