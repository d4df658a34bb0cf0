// Package storage defines the file-system abstraction used for content
// sources and build output.
package storage

import "github.com/starford/depot/internal/models"

// Provider is the interface for rooted file operations.
type Provider interface {
	// Root returns the absolute root directory.
	Root() string
	// List returns metadata for every file with suffix ext under dir (relative
	// to root), skipping hidden entries and the excluded directories.
	List(dir, ext string, excludes []string) ([]models.FileMeta, error)
	// Exists reports whether path (relative to root) is an existing file.
	Exists(path string) bool
	// Read returns the raw bytes of the file at path (relative to root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to root).
	Write(path string, content []byte) error
	// Delete removes the file at path (relative to root).
	Delete(path string) error
}
