// Package markup converts Markdown content bodies to HTML.
package markup

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer turns Markdown into HTML with a fixed set of extensions.
type Renderer struct {
	md          goldmark.Markdown
	fingerprint string
}

// HighlightStyle is the chroma style named in the generated markup. Output
// uses CSS classes, so the theme stylesheet decides the colours.
const HighlightStyle = "github"

// New builds a Renderer. Extension names follow the Python-Markdown ones the
// site configs were written against:
//   - extra: tables, footnotes and definition lists
//   - toc: heading ids
//   - fenced_code: always on in CommonMark, accepted for compatibility
//   - typographer: smart quotes and dashes
//   - tables: tables only
//   - codehilite: syntax highlighting of fenced code blocks with chroma
//
// Raw HTML in the source is passed through.
func New(extensions []string) *Renderer {
	enabled := make(map[string]bool, len(extensions))
	for _, e := range extensions {
		enabled[e] = true
	}

	var exts []goldmark.Extender
	var parserOpts []parser.Option

	if enabled["extra"] || enabled["tables"] {
		exts = append(exts, extension.Table)
	}
	if enabled["extra"] {
		exts = append(exts, extension.Footnote, extension.DefinitionList)
	}
	if enabled["typographer"] {
		exts = append(exts, extension.Typographer)
	}
	if enabled["toc"] {
		parserOpts = append(parserOpts, parser.WithAutoHeadingID())
	}
	if enabled["codehilite"] {
		exts = append(exts, highlighting.NewHighlighting(
			highlighting.WithStyle(HighlightStyle),
			highlighting.WithFormatOptions(chromahtml.WithClasses(true)),
		))
	}

	names := make([]string, 0, len(enabled))
	for name := range enabled {
		names = append(names, name)
	}
	slices.Sort(names)

	return &Renderer{
		fingerprint: strings.Join(names, ","),
		md: goldmark.New(
			goldmark.WithExtensions(exts...),
			goldmark.WithParserOptions(parserOpts...),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
	}
}

// Fingerprint identifies the extension set, so cached HTML rendered with a
// different set can be told apart. It is empty when no extension is enabled.
func (r *Renderer) Fingerprint() string {
	return r.fingerprint
}

// Render converts src to HTML.
func (r *Renderer) Render(src []byte) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(src, &buf); err != nil {
		return "", fmt.Errorf("markup: render: %w", err)
	}
	return buf.String(), nil
}
