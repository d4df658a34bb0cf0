package site

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"path"
	"path/filepath"
	"strings"

	"github.com/starford/depot/internal/storage"
)

// Writer renders templates and writes files under the output root.
type Writer struct {
	out       storage.Provider
	templates *template.Template
	settings  *Settings
	logger    *slog.Logger
}

// NewWriter creates a Writer.
func NewWriter(out storage.Provider, templates *template.Template, settings *Settings, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{out: out, templates: templates, settings: settings, logger: logger}
}

// HasTemplate reports whether the theme defines name.
func (w *Writer) HasTemplate(name string) bool {
	return w.templates.Lookup(name+".html") != nil
}

// WriteFile renders the theme template name into the output file at
// outPath. Template data is the settings variables overlaid with ctx and
// extra, in that order. With relativeURLs, SITEURL becomes a path prefix
// that leads back to the output root from outPath.
func (w *Writer) WriteFile(outPath, name string, ctx Context, relativeURLs bool, extra map[string]any) error {
	t := w.templates.Lookup(name + ".html")
	if t == nil {
		return fmt.Errorf("site: template %q not found", name)
	}

	data := w.settings.TemplateVars()
	for k, v := range ctx {
		data[k] = v
	}
	for k, v := range extra {
		data[k] = v
	}
	data["output_file"] = outPath
	if relativeURLs {
		data["SITEURL"] = relativePrefix(outPath)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return fmt.Errorf("site: render %s: %w", outPath, err)
	}
	return w.WriteRaw(outPath, buf.Bytes())
}

// WriteRaw writes content to outPath atomically.
func (w *Writer) WriteRaw(outPath string, content []byte) error {
	if err := w.out.Write(outPath, content); err != nil {
		return err
	}
	w.logger.Debug("site: wrote", slog.String("path", w.Path(outPath)))
	return nil
}

// Path returns the absolute file path for outPath.
func (w *Writer) Path(outPath string) string {
	return filepath.Join(w.out.Root(), filepath.FromSlash(outPath))
}

func relativePrefix(outPath string) string {
	depth := strings.Count(path.Clean("/"+outPath), "/") - 1
	if depth <= 0 {
		return "."
	}
	return strings.TrimSuffix(strings.Repeat("../", depth), "/")
}
