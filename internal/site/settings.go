// Package site is the build host: it owns the generator pipeline, the
// signals plugins connect to and the writer that renders output files.
package site

import (
	"strings"
	"time"
)

// Settings are the values generators and templates read.
type Settings struct {
	SiteName        string
	SiteURL         string
	Author          string
	AuthorEmail     string
	Location        *time.Location
	DefaultLang     string
	LangsLabels     map[string]string
	DefaultMetadata map[string]string
	RelativeURLs    bool

	ContentPath string
	OutputPath  string

	ArticleExcludes   []string
	ArticleURL        string
	ArticleSaveAs     string
	ArticleLangURL    string
	ArticleLangSaveAs string

	BookmarksDir    string
	BookmarksSaveAs string
	FeedSaveAs      string
}

// SiteURLBase returns SiteURL without a trailing slash.
func (s *Settings) SiteURLBase() string {
	return strings.TrimRight(s.SiteURL, "/")
}

// TemplateVars returns the settings exposed to templates under their
// conventional upper-case names.
func (s *Settings) TemplateVars() map[string]any {
	return map[string]any{
		"SITENAME":          s.SiteName,
		"SITEURL":           s.SiteURLBase(),
		"AUTHOR":            s.Author,
		"AUTHOR_EMAIL":      s.AuthorEmail,
		"DEFAULT_LANG":      s.DefaultLang,
		"LANGS_LABELS":      s.LangsLabels,
		"BOOKMARKS_SAVE_AS": s.BookmarksSaveAs,
		"FEED_SAVE_AS":      s.FeedSaveAs,
	}
}
