// Package bookmark is the content model for saved external links.
package bookmark

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/depot/internal/apperr"
	"github.com/starford/depot/internal/models"
)

// mandatoryProperties are checked in this order; the first one missing is
// reported.
var mandatoryProperties = []string{"date", "title", "url"}

// Keys are required by the map rule itself; present only rejects values that
// carry nothing, so a title of 0 or false still counts.
var metadataRule = validation.Map(
	validation.Key("date", validation.By(present)),
	validation.Key("title", validation.By(present)),
	validation.Key("url", validation.By(present)),
).AllowExtraKeys()

var errBlank = errors.New("is blank")

func present(v any) error {
	switch t := v.(type) {
	case nil:
		return errBlank
	case string:
		if strings.TrimSpace(t) == "" {
			return errBlank
		}
	}
	return nil
}

// MissingPropertyError reports a bookmark file without one of the mandatory
// properties.
type MissingPropertyError struct {
	Property string
	Filename string
}

func (e *MissingPropertyError) Error() string {
	return fmt.Sprintf("property %s is missing from %s", e.Property, e.Filename)
}

// Unwrap lets callers match with errors.Is(err, apperr.ErrMissingProperty).
func (e *MissingPropertyError) Unwrap() error {
	return apperr.ErrMissingProperty
}

// Bookmark is a saved link built from one content file.
type Bookmark struct {
	Date     time.Time
	Title    string
	URL      string
	Domain   string
	Content  string
	Filename string
	// Metadata holds every field of the file, including the ones above.
	Metadata map[string]any
}

// New builds a Bookmark from a parsed source. It fails with a
// *MissingPropertyError when date, title or url is absent or blank.
func New(src *models.Source) (*Bookmark, error) {
	if err := validation.Validate(src.Metadata, metadataRule); err != nil {
		var verrs validation.Errors
		if !errors.As(err, &verrs) {
			return nil, err
		}
		for _, prop := range mandatoryProperties {
			if verrs[prop] != nil {
				return nil, &MissingPropertyError{Property: prop, Filename: src.Filename}
			}
		}
		return nil, err
	}

	date, ok := src.Time("date")
	if !ok {
		return nil, fmt.Errorf("bookmark: %s: date is not a time", src.Filename)
	}

	b := &Bookmark{
		Date:     date,
		Title:    fmt.Sprint(src.Metadata["title"]),
		URL:      fmt.Sprint(src.Metadata["url"]),
		Content:  src.Content,
		Filename: src.Filename,
		Metadata: src.Metadata,
	}
	b.Domain = domainOf(b.URL)
	return b, nil
}

// Get returns an arbitrary metadata field, or nil.
func (b *Bookmark) Get(key string) any {
	return b.Metadata[strings.ToLower(key)]
}

// Tags returns the bookmark's tags, if any.
func (b *Bookmark) Tags() []string {
	tags, _ := b.Metadata["tags"].([]string)
	return tags
}

// Sort orders bookmarks newest first. Bookmarks with equal dates keep their
// relative order.
func Sort(bs []*Bookmark) {
	slices.SortStableFunc(bs, func(a, b *Bookmark) int {
		return b.Date.Compare(a.Date)
	})
}

func domainOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Host
}
