package bookmark

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/depot/internal/apperr"
	"github.com/starford/depot/internal/storage"
)

// Store manages bookmark files in one directory of the content root.
type Store struct {
	content storage.Provider
	reader  Reader
	dir     string
	client  *http.Client
	now     func() time.Time
	logger  *slog.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithHTTPClient sets the client used to fetch page titles.
func WithHTTPClient(c *http.Client) StoreOption {
	return func(s *Store) { s.client = c }
}

// WithClock replaces time.Now for new bookmarks.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// WithStoreLogger sets the logger.
func WithStoreLogger(l *slog.Logger) StoreOption {
	return func(s *Store) { s.logger = l }
}

// NewStore creates a Store for dir, relative to the content root.
func NewStore(content storage.Provider, reader Reader, dir string, opts ...StoreOption) *Store {
	s := &Store{
		content: content,
		reader:  reader,
		dir:     dir,
		client:  &http.Client{Timeout: 10 * time.Second},
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the bookmarks directory relative to the content root.
func (s *Store) Dir() string { return s.dir }

// Validate implements validation.Validatable.
func (d Draft) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.URL, validation.Required, validation.By(httpURL)),
	)
}

func httpURL(value interface{}) error {
	raw, _ := value.(string)
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("must be an absolute http(s) URL")
	}
	return nil
}

// Save writes d as a new bookmark file and returns its path relative to the
// content root. A missing title is fetched from the page, falling back to
// the URL; a zero date becomes the current time. Save refuses to overwrite
// an existing file.
func (s *Store) Save(ctx context.Context, d Draft) (string, error) {
	d.URL = strings.TrimSpace(d.URL)
	if err := d.Validate(); err != nil {
		return "", fmt.Errorf("bookmark: %w", err)
	}
	if d.Date.IsZero() {
		d.Date = s.now()
	}
	if strings.TrimSpace(d.Title) == "" {
		d.Title = FetchTitle(ctx, s.client, d.URL)
		if d.Title == "" {
			s.logger.Debug("bookmark: no title found", slog.String("url", d.URL))
			d.Title = d.URL
		}
	}

	p := path.Join(s.dir, FileName(d))
	if s.content.Exists(p) {
		return "", fmt.Errorf("bookmark: %s: %w", p, apperr.ErrAlreadyExists)
	}
	data, err := Compose(d)
	if err != nil {
		return "", err
	}
	if err := s.content.Write(p, data); err != nil {
		return "", err
	}
	s.logger.Info("bookmark: saved", slog.String("path", p), slog.String("url", d.URL))
	return p, nil
}

// List returns every valid bookmark, newest first. Invalid files are
// skipped.
func (s *Store) List() ([]*Bookmark, error) {
	return Collect(s.reader, s.dir, false, s.logger)
}

// Read returns the raw content of the bookmark file name, given relative to
// the bookmarks directory or to the content root.
func (s *Store) Read(name string) ([]byte, error) {
	p, err := s.resolve(name)
	if err != nil {
		return nil, err
	}
	data, err := s.content.Read(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("bookmark: %s: %w", p, apperr.ErrNotFound)
	}
	return data, err
}

// Remove deletes the bookmark file name.
func (s *Store) Remove(name string) error {
	p, err := s.resolve(name)
	if err != nil {
		return err
	}
	if !s.content.Exists(p) {
		return fmt.Errorf("bookmark: %s: %w", p, apperr.ErrNotFound)
	}
	if err := s.content.Delete(p); err != nil {
		return err
	}
	s.logger.Info("bookmark: removed", slog.String("path", p))
	return nil
}

// resolve maps name to a content path inside the bookmarks directory.
func (s *Store) resolve(name string) (string, error) {
	name = strings.TrimPrefix(path.Clean("/"+strings.ReplaceAll(name, "\\", "/")), "/")
	if dir := strings.Trim(s.dir, "/"); dir != "" {
		name = strings.TrimPrefix(name, dir+"/")
	}
	if name == "" || path.Ext(name) != ".md" {
		return "", fmt.Errorf("bookmark: invalid file name %q", name)
	}
	return path.Join(s.dir, name), nil
}
