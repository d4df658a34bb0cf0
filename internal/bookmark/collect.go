package bookmark

import (
	"errors"
	"log/slog"
	"os"

	"github.com/starford/depot/internal/models"
)

// Reader is the content reader used to load bookmark files.
type Reader interface {
	Files(dir string, excludes []string) ([]string, error)
	ReadFile(path string) (*models.Source, error)
}

// Collect loads every bookmark under dir and returns them newest first.
//
// Files that cannot be read or parsed are logged and skipped. Files missing a
// mandatory property are skipped the same way unless strict is set, in which
// case the *MissingPropertyError is returned. A missing dir yields no
// bookmarks.
func Collect(r Reader, dir string, strict bool, logger *slog.Logger) ([]*Bookmark, error) {
	files, err := r.Files(dir, nil)
	if errors.Is(err, os.ErrNotExist) {
		logger.Debug("bookmarks: directory not found", slog.String("dir", dir))
		return []*Bookmark{}, nil
	}
	if err != nil {
		return nil, err
	}

	bookmarks := make([]*Bookmark, 0, len(files))
	for _, f := range files {
		src, err := r.ReadFile(f)
		if err != nil {
			logger.Warn("bookmarks: could not process", slog.String("path", f), slog.String("error", err.Error()))
			continue
		}
		b, err := New(src)
		if err != nil {
			var missing *MissingPropertyError
			if strict && errors.As(err, &missing) {
				return nil, err
			}
			logger.Warn("bookmarks: could not process", slog.String("path", f), slog.String("error", err.Error()))
			continue
		}
		bookmarks = append(bookmarks, b)
	}

	Sort(bookmarks)
	return bookmarks, nil
}
