package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Plugin names accepted in the plugins list.
const (
	PluginCustomAtom = "custom_atom"
	PluginBookmarks  = "bookmarks"
	PluginDevMode    = "devmode"
)

// Log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	Site      SiteConfig        `yaml:"site"`
	Content   ContentConfig     `yaml:"content"`
	Output    OutputConfig      `yaml:"output"`
	Theme     ThemeConfig       `yaml:"theme"`
	Markdown  MarkdownConfig    `yaml:"markdown"`
	Bookmarks BookmarksConfig   `yaml:"bookmarks"`
	Feed      FeedConfig        `yaml:"feed"`
	Cache     CacheConfig       `yaml:"cache"`
	Serve     ServeConfig       `yaml:"serve"`
	Plugins   []string          `yaml:"plugins"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validators := []interface{ Validate() error }{
		&c.App, &c.Site, &c.Content, &c.Output, &c.Markdown,
		&c.Bookmarks, &c.Feed, &c.Cache, &c.Serve,
	}
	for _, v := range validators {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Plugins,
			validation.Each(validation.In(PluginCustomAtom, PluginBookmarks, PluginDevMode).
				Error("unknown plugin name")),
		),
	)
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel  slog.Level `yaml:"log_level"`
	LogFormat string     `yaml:"log_format"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.LogFormat, validation.Required, validation.In(LogFormatText, LogFormatJSON)),
	)
}

// SiteConfig holds the values describing the published site.
type SiteConfig struct {
	Name            string            `yaml:"name"`
	URL             string            `yaml:"url"`
	Author          string            `yaml:"author"`
	AuthorEmail     string            `yaml:"author_email"`
	Timezone        string            `yaml:"timezone"`
	DefaultLang     string            `yaml:"default_lang"`
	LangsLabels     map[string]string `yaml:"langs_labels"`
	DefaultMetadata map[string]string `yaml:"default_metadata"`
	RelativeURLs    bool              `yaml:"relative_urls"`
}

// Validate validates the site configuration.
func (c *SiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Name, validation.Required),
		validation.Field(&c.DefaultLang, validation.Required),
		validation.Field(&c.Timezone, validation.Required, validation.By(loadableLocation)),
	)
}

// Location returns the configured time zone, falling back to UTC.
func (c *SiteConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func loadableLocation(v any) error {
	name, _ := v.(string)
	if _, err := time.LoadLocation(name); err != nil {
		return errors.New("unknown time zone")
	}
	return nil
}

// ContentConfig holds the content source layout and article URL patterns.
type ContentConfig struct {
	Path              string   `yaml:"path"`
	ArticleExcludes   []string `yaml:"article_excludes"`
	ArticleURL        string   `yaml:"article_url"`
	ArticleSaveAs     string   `yaml:"article_save_as"`
	ArticleLangURL    string   `yaml:"article_lang_url"`
	ArticleLangSaveAs string   `yaml:"article_lang_save_as"`
}

// Validate validates the content configuration.
func (c *ContentConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.ArticleURL, validation.Required),
		validation.Field(&c.ArticleSaveAs, validation.Required),
		validation.Field(&c.ArticleLangURL, validation.Required),
		validation.Field(&c.ArticleLangSaveAs, validation.Required),
	)
}

// OutputConfig holds the output directory.
type OutputConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the output configuration.
func (c *OutputConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// ThemeConfig points at an optional theme directory. An empty path selects
// the built-in theme.
type ThemeConfig struct {
	Path string `yaml:"path"`
}

// MarkdownConfig lists the Markdown extensions enabled for content.
type MarkdownConfig struct {
	Extensions []string `yaml:"extensions"`
}

// Validate validates the markdown configuration.
func (c *MarkdownConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Extensions,
			validation.Each(validation.In("extra", "toc", "fenced_code", "typographer", "tables", "codehilite")),
		),
	)
}

// BookmarksConfig configures the bookmarks page.
//
// Strict controls what happens to a bookmark file that lacks a mandatory
// property: when false it is logged and skipped, when true the build fails.
type BookmarksConfig struct {
	Dir    string `yaml:"dir"`
	SaveAs string `yaml:"save_as"`
	Strict bool   `yaml:"strict"`
}

// Validate validates the bookmarks configuration.
func (c *BookmarksConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
		validation.Field(&c.SaveAs, validation.Required),
	)
}

// FeedConfig configures the Atom feed.
type FeedConfig struct {
	SaveAs string `yaml:"save_as"`
}

// Validate validates the feed configuration.
func (c *FeedConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.SaveAs, validation.Required),
	)
}

// CacheConfig holds the SQLite content cache configuration.
type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Validate validates the cache configuration.
func (c *CacheConfig) Validate() error {
	if c.Enabled && c.Path == "" {
		return fmt.Errorf("cache: enabled but path is empty")
	}
	return nil
}

// ServeConfig holds the development server configuration.
type ServeConfig struct {
	Listen   string        `yaml:"listen"`
	Debounce time.Duration `yaml:"debounce"`
}

// Validate validates the serve configuration.
func (c *ServeConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Listen, validation.Required, validation.By(listenAddress)),
		validation.Field(&c.Debounce, validation.Min(time.Duration(0))),
	)
}

func listenAddress(v any) error {
	addr, _ := v.(string)
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return errors.New("must be host:port")
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return errors.New("port must be between 1 and 65535")
	}
	return nil
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel:  slog.LevelInfo,
			LogFormat: LogFormatText,
		},
		Site: SiteConfig{
			Name:        "depot",
			URL:         "http://localhost:8000",
			Timezone:    "UTC",
			DefaultLang: "en",
		},
		Content: ContentConfig{
			Path:              "./content",
			ArticleExcludes:   []string{"pages", "bookmarks"},
			ArticleURL:        "{date:%Y}/{date:%m}/{date:%d}/{slug}/",
			ArticleSaveAs:     "{date:%Y}/{date:%m}/{date:%d}/{slug}/index.html",
			ArticleLangURL:    "{date:%Y}/{date:%m}/{date:%d}/{slug}-{lang}/",
			ArticleLangSaveAs: "{date:%Y}/{date:%m}/{date:%d}/{slug}-{lang}/index.html",
		},
		Output: OutputConfig{
			Path: "./output",
		},
		Markdown: MarkdownConfig{
			Extensions: []string{"codehilite", "extra", "toc", "fenced_code"},
		},
		Bookmarks: BookmarksConfig{
			Dir:    "bookmarks",
			SaveAs: "bookmarks.html",
		},
		Feed: FeedConfig{
			SaveAs: "atom.xml",
		},
		Cache: CacheConfig{
			Path: "./.depot-cache.db",
		},
		Serve: ServeConfig{
			Listen:   ":8000",
			Debounce: 200 * time.Millisecond,
		},
		Plugins: []string{PluginCustomAtom, PluginBookmarks, PluginDevMode},
	}
}
