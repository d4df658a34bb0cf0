package bookmark

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/starford/depot/internal/slug"
)

// Draft is a bookmark that has not been written to disk yet.
type Draft struct {
	URL         string
	Title       string
	Date        time.Time
	Tags        []string
	Description string
}

type frontMatter struct {
	Title string   `yaml:"title"`
	Date  string   `yaml:"date"`
	URL   string   `yaml:"url"`
	Tags  []string `yaml:"tags,omitempty"`
}

// Compose renders d as a content file: YAML front matter followed by the
// description as Markdown body.
func Compose(d Draft) ([]byte, error) {
	fm, err := yaml.Marshal(frontMatter{
		Title: d.Title,
		Date:  d.Date.Format("2006-01-02 15:04"),
		URL:   d.URL,
		Tags:  d.Tags,
	})
	if err != nil {
		return nil, fmt.Errorf("bookmark: encode front matter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(fm)
	buf.WriteString("---\n")
	if desc := strings.TrimSpace(d.Description); desc != "" {
		buf.WriteString("\n")
		buf.WriteString(desc)
		buf.WriteString("\n")
	}
	return buf.Bytes(), nil
}

// FileName returns the file name a draft is saved under,
// "<yyyy-mm-dd>-<slug>.md". The slug falls back to the URL when the title
// has no usable characters.
func FileName(d Draft) string {
	s := slug.Make(d.Title)
	if s == "" {
		s = slug.Make(domainOf(d.URL))
	}
	if s == "" {
		s = "bookmark"
	}
	return d.Date.Format("2006-01-02") + "-" + s + ".md"
}
