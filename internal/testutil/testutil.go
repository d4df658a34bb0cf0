// Package testutil provides shared test helpers for content trees, caches and
// the content pipeline.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/depot/internal/cache"
	"github.com/starford/depot/internal/markup"
	"github.com/starford/depot/internal/reader"
	"github.com/starford/depot/internal/storage"
)

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestCache creates a temporary SQLite content cache that is automatically
// cleaned up.
func TestCache(t *testing.T) *cache.DB {
	t.Helper()
	db, err := cache.Open(filepath.Join(t.TempDir(), "depot-test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestStore creates a temporary directory with a storage provider and writes
// files into it, keyed by slash-separated path.
func TestStore(t *testing.T, files map[string]string) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	for p, body := range files {
		if err := store.Write(p, []byte(body)); err != nil {
			t.Fatal(err)
		}
	}
	return dir, store
}

// TestReader returns a content reader over store with default Markdown
// extensions and a silent logger.
func TestReader(store storage.Provider, opts ...reader.Option) *reader.Reader {
	opts = append([]reader.Option{reader.WithLogger(Logger())}, opts...)
	return reader.New(store, markup.New(nil), opts...)
}

// ReadFile returns the content of a file under dir, failing the test if it
// cannot be read.
func ReadFile(t *testing.T, dir, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatalf("read %s: %v", rel, err)
	}
	return string(data)
}
