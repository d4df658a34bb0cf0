package atom

import (
	"io"
	"slices"
	"strings"
	"text/template"
	"time"
	"unicode/utf8"

	"github.com/starford/depot/internal/models"
)

// Feed is the data rendered into the Atom document.
type Feed struct {
	SiteName    string
	SiteURL     string
	SaveAs      string
	Author      string
	AuthorEmail string
	Updated     time.Time
	Entries     []Entry
}

// Entry is one <entry> of the feed.
type Entry struct {
	Title   string
	URL     string
	Date    time.Time
	Content string
}

const feedTemplate = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
 <title>{{xml .SiteName}}</title>
 <link href="{{xml .SiteURL}}/{{xml .SaveAs}}" rel="self"/>
 <link href="{{xml .SiteURL}}/"/>
 <updated>{{stamp .Updated}}</updated>
 <id>{{xml .SiteURL}}/</id>
 <author>
   <name>{{xml .Author}}</name>
   <email>{{xml .AuthorEmail}}</email>
 </author>
{{range .Entries}}
<entry>
   <title>{{xml .Title}}</title>
   <link href="{{xml .URL}}"/>
   <published>{{stamp .Date}}</published>
   <updated>{{stamp .Date}}</updated>
   <id>{{xml .URL}}</id>
   <content type="html">{{xml .Content}}</content>
 </entry>
{{end}}
</feed>
`

var xmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

var tmpl = template.Must(template.New("atom").Funcs(template.FuncMap{
	"xml":   escape,
	"stamp": Stamp,
}).Parse(feedTemplate))

// Render writes f as an Atom document.
func Render(w io.Writer, f Feed) error {
	return tmpl.Execute(w, f)
}

// Stamp formats t as an Atom date in UTC.
func Stamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}

// escape escapes s for element text and attribute values and drops the
// characters XML 1.0 does not allow at all.
func escape(s string) string {
	s = strings.Map(func(r rune) rune {
		if isXMLChar(r) {
			return r
		}
		return -1
	}, s)
	return xmlReplacer.Replace(s)
}

func isXMLChar(r rune) bool {
	switch {
	case r == '\t' || r == '\n' || r == '\r':
		return true
	case r == utf8.RuneError:
		return false
	case r >= 0x20 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	case r >= 0x10000 && r <= 0x10FFFF:
		return true
	}
	return false
}

// Entries flattens articles and their translations into feed entries
// sorted newest first. siteURL is prefixed to every article URL.
func Entries(articles []*models.Article, siteURL string) []Entry {
	var all []*models.Article
	for _, a := range articles {
		all = append(all, a)
		all = append(all, a.Translations...)
	}
	slices.SortStableFunc(all, func(a, b *models.Article) int {
		return b.Date.Compare(a.Date)
	})

	entries := make([]Entry, 0, len(all))
	for _, a := range all {
		entries = append(entries, Entry{
			Title:   a.Title,
			URL:     siteURL + "/" + a.URL,
			Date:    a.Date,
			Content: a.Content,
		})
	}
	return entries
}
