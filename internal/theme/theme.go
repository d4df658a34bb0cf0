// Package theme loads the HTML templates used by the writer. A built-in
// theme is embedded; a theme directory overrides it file by file.
package theme

import (
	"embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"
)

//go:embed templates/*.html
var builtin embed.FS

// Funcs are available to every template.
var Funcs = template.FuncMap{
	"safe": func(s string) template.HTML { return template.HTML(s) },
	"date": func(layout string, t time.Time) string { return t.Format(layout) },
	"isodate": func(t time.Time) string {
		return t.Format(time.RFC3339)
	},
}

// Load parses the built-in templates and then, when dir is not empty, every
// dir/templates/*.html on top of them. Templates are named by file name, so
// "bookmarks.html" in the theme replaces the built-in one.
func Load(dir string) (*template.Template, error) {
	t, err := template.New("").Funcs(Funcs).ParseFS(builtin, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("theme: parse builtin: %w", err)
	}
	if dir == "" {
		return t, nil
	}

	matches, err := filepath.Glob(filepath.Join(dir, "templates", "*.html"))
	if err != nil {
		return nil, fmt.Errorf("theme: glob: %w", err)
	}
	if len(matches) == 0 {
		if _, err := os.Stat(dir); err != nil {
			return nil, fmt.Errorf("theme: %w", err)
		}
		return t, nil
	}
	if t, err = t.ParseFiles(matches...); err != nil {
		return nil, fmt.Errorf("theme: parse %s: %w", dir, err)
	}
	return t, nil
}
