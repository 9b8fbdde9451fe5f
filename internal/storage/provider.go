// Package storage defines the songs-directory file-system abstraction.
package storage

import "github.com/starford/sngforge/internal/models"

// DocumentExt is the extension of notation documents.
const DocumentExt = ".xml"

// Provider is the interface for songs-directory file operations. Paths are
// relative to the provider root.
type Provider interface {
	// List returns metadata for every notation document under dir.
	List(dir string) ([]models.SongFile, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// Root returns the absolute directory the provider is rooted at.
	Root() string
}
