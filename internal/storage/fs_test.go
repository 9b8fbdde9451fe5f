package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func tempSongs(t *testing.T) *FS {
	t.Helper()
	fs, err := NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestWriteAndRead(t *testing.T) {
	s := tempSongs(t)
	content := []byte("<song/>")
	if err := s.Write("song.xml", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("song.xml")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content = %q, want %q", got, content)
	}
}

func TestWriteCreatesSubdirs(t *testing.T) {
	s := tempSongs(t)
	if err := s.Write("rock/band/lead.sng.yaml", []byte("deep")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("rock/band/lead.sng.yaml")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != "deep" {
		t.Errorf("content = %q, want %q", got, "deep")
	}
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	s := tempSongs(t)
	_ = s.Write("a.xml", []byte("one"))
	if err := s.Write("a.xml", []byte("two")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := s.Read("a.xml")
	if string(got) != "two" {
		t.Errorf("content = %q, want %q", got, "two")
	}
	matches, _ := filepath.Glob(filepath.Join(s.Root(), ".sngforge-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestDelete(t *testing.T) {
	s := tempSongs(t)
	_ = s.Write("del.xml", []byte("bye"))
	if err := s.Delete("del.xml"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Read("del.xml"); err == nil {
		t.Error("expected error reading deleted file")
	}
}

func TestList_DocumentsOnly(t *testing.T) {
	s := tempSongs(t)
	_ = s.Write("a.xml", []byte("a"))
	_ = s.Write("sub/B.XML", []byte("b"))
	_ = s.Write("sub/b.sng.yaml", []byte("out"))
	_ = s.Write(".hidden.xml", []byte("h"))
	_ = s.Write("readme.txt", []byte("not a song"))

	items, err := s.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
	paths := map[string]bool{}
	for _, it := range items {
		paths[it.Path] = true
		if len(it.Checksum) != 64 {
			t.Errorf("checksum %q is not a sha256 hex digest", it.Checksum)
		}
	}
	if !paths["a.xml"] || !paths["sub/B.XML"] {
		t.Errorf("paths = %v", paths)
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempSongs(t)
	for _, p := range []string{"../../etc/passwd", "../outside.xml", "/etc/shadow"} {
		if _, err := s.Read(p); !errors.Is(err, ErrOutsideRoot) {
			t.Errorf("Read(%q) err = %v, want ErrOutsideRoot", p, err)
		}
		if err := s.Write(p, []byte("x")); !errors.Is(err, ErrOutsideRoot) {
			t.Errorf("Write(%q) err = %v, want ErrOutsideRoot", p, err)
		}
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		doc, ext, want string
	}{
		{"song.xml", ".sng.yaml", "song.sng.yaml"},
		{"rock/lead.xml", ".mid", "rock/lead.mid"},
		{"noext", ".mid", "noext.mid"},
	}
	for _, tt := range tests {
		if got := OutputPath(tt.doc, tt.ext); got != tt.want {
			t.Errorf("OutputPath(%q, %q) = %q, want %q", tt.doc, tt.ext, got, tt.want)
		}
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	if _, err := NewFS(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	p := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(p, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFS(p); err == nil {
		t.Error("expected error when root is a file")
	}
}
