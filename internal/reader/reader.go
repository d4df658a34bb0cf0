// Package reader turns content files into models.Source values: header
// parsing, Markdown rendering, default metadata and the optional content
// cache.
package reader

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"strings"
	"time"

	"github.com/starford/depot/internal/cache"
	"github.com/starford/depot/internal/markup"
	"github.com/starford/depot/internal/models"
	"github.com/starford/depot/internal/parser"
	"github.com/starford/depot/internal/storage"
)

// Ext is the file extension of content sources.
const Ext = ".md"

// Cache is the subset of the content cache the reader uses.
type Cache interface {
	Get(path, checksum string) (*cache.Entry, bool, error)
	Put(e cache.Entry) error
	Prune(live map[string]struct{}) (int, error)
}

// Reader reads content files from a storage root.
type Reader struct {
	store    storage.Provider
	md       *markup.Renderer
	cache    Cache
	loc      *time.Location
	defaults map[string]any
	logger   *slog.Logger
}

// Option configures a Reader.
type Option func(*Reader)

// WithCache enables the content cache.
func WithCache(c Cache) Option {
	return func(r *Reader) { r.cache = c }
}

// WithLocation sets the time zone for dates without one.
func WithLocation(loc *time.Location) Option {
	return func(r *Reader) { r.loc = loc }
}

// WithDefaultMetadata sets metadata applied under every file's own header.
func WithDefaultMetadata(m map[string]string) Option {
	return func(r *Reader) {
		for k, v := range m {
			r.defaults[strings.ToLower(k)] = v
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Reader) { r.logger = l }
}

// New creates a Reader over store.
func New(store storage.Provider, md *markup.Renderer, opts ...Option) *Reader {
	r := &Reader{
		store:    store,
		md:       md,
		loc:      time.UTC,
		defaults: map[string]any{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Files returns the slash-separated paths of content files under dir,
// skipping the excluded directories. dir is normalised first, so trailing
// slashes are harmless. A missing dir yields an error wrapping
// os.ErrNotExist.
func (r *Reader) Files(dir string, excludes []string) ([]string, error) {
	dir = normalise(dir)
	metas, err := r.store.List(dir, Ext, excludes)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(metas))
	for _, m := range metas {
		out = append(out, m.Path)
	}
	return out, nil
}

// ReadFile reads, parses and renders the content file at p.
func (r *Reader) ReadFile(p string) (*models.Source, error) {
	data, err := r.store.Read(p)
	if err != nil {
		return nil, err
	}
	sum := storage.Checksum(data)

	raw, html, err := r.parse(p, r.cacheKey(sum), data)
	if err != nil {
		return nil, err
	}

	merged := make(map[string]any, len(r.defaults)+len(raw))
	for k, v := range r.defaults {
		merged[k] = v
	}
	for k, v := range raw {
		merged[k] = v
	}
	meta, err := parser.ProcessMetadata(merged, r.loc)
	if err != nil {
		return nil, fmt.Errorf("reader: %s: %w", p, err)
	}

	return &models.Source{
		Filename: p,
		Metadata: meta,
		Content:  html,
		Checksum: sum,
	}, nil
}

// cacheKey ties a cache entry to both the file contents and the Markdown
// extension set that rendered it.
func (r *Reader) cacheKey(sum string) string {
	fp := r.md.Fingerprint()
	if fp == "" {
		return sum
	}
	return storage.Checksum([]byte(sum + "\x00" + fp))
}

func (r *Reader) parse(p, key string, data []byte) (map[string]any, string, error) {
	if r.cache != nil {
		e, ok, err := r.cache.Get(p, key)
		if err != nil {
			r.logger.Warn("reader: cache get failed", slog.String("path", p), slog.String("error", err.Error()))
		} else if ok {
			r.logger.Debug("reader: cache hit", slog.String("path", p))
			return e.Metadata, e.HTML, nil
		}
	}

	res, err := parser.Parse(data)
	if err != nil {
		return nil, "", fmt.Errorf("reader: %s: %w", p, err)
	}
	html, err := r.md.Render([]byte(res.Body))
	if err != nil {
		return nil, "", fmt.Errorf("reader: %s: %w", p, err)
	}

	if r.cache != nil {
		if err := r.cache.Put(cache.Entry{Path: p, Checksum: key, Metadata: res.Metadata, HTML: html}); err != nil {
			r.logger.Warn("reader: cache put failed", slog.String("path", p), slog.String("error", err.Error()))
		}
	}
	return res.Metadata, html, nil
}

// PruneCache drops cache entries for content files that no longer exist.
func (r *Reader) PruneCache() error {
	if r.cache == nil {
		return nil
	}
	metas, err := r.store.List("", Ext, nil)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	live := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		live[m.Path] = struct{}{}
	}
	n, err := r.cache.Prune(live)
	if err != nil {
		return err
	}
	if n > 0 {
		r.logger.Debug("reader: pruned cache", slog.Int("removed", n))
	}
	return nil
}

func normalise(dir string) string {
	if dir == "" {
		return ""
	}
	cleaned := path.Clean(strings.ReplaceAll(dir, "\\", "/"))
	if cleaned == "." {
		return ""
	}
	return cleaned
}
