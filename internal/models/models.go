// Package models defines the content types shared by the reader, the site
// host and the plugins.
package models

import "time"

// Source is a content file after its header has been parsed, its metadata
// processed and its body rendered to HTML.
type Source struct {
	// Filename is relative to the content root.
	Filename string
	Metadata map[string]any
	Content  string
	Checksum string
}

// String returns the metadata value for key as a string, or "".
func (s *Source) String(key string) string {
	v, ok := s.Metadata[key]
	if !ok || v == nil {
		return ""
	}
	if str, ok := v.(string); ok {
		return str
	}
	return ""
}

// Time returns the metadata value for key if it is a time.
func (s *Source) Time(key string) (time.Time, bool) {
	t, ok := s.Metadata[key].(time.Time)
	return t, ok
}

// FileMeta is a lightweight entry returned by directory listings.
type FileMeta struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Article is a dated piece of content that appears in the feed.
type Article struct {
	Title        string
	Date         time.Time
	Slug         string
	Lang         string
	URL          string
	SaveAs       string
	Content      string
	Filename     string
	Metadata     map[string]any
	Translations []*Article
}
