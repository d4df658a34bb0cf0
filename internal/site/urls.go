package site

import (
	"fmt"
	"regexp"
	"time"

	"github.com/ncruces/go-strftime"

	"github.com/starford/depot/internal/models"
	"github.com/starford/depot/internal/slug"
)

var placeholderRe = regexp.MustCompile(`\{(\w+)(?::([^}]*))?\}`)

// FormatURL expands an article URL pattern such as
// "{date:%Y}/{date:%m}/{slug}/". Known keys are slug, lang and date; any
// other key is looked up in the article metadata and slugified. Date formats
// use C strftime directives.
func FormatURL(pattern string, a *models.Article) string {
	return placeholderRe.ReplaceAllStringFunc(pattern, func(m string) string {
		sub := placeholderRe.FindStringSubmatch(m)
		key, format := sub[1], sub[2]
		switch key {
		case "slug":
			return a.Slug
		case "lang":
			return a.Lang
		case "date":
			if format == "" {
				return a.Date.Format("2006-01-02")
			}
			return strftime.Format(format, a.Date)
		}
		v, ok := a.Metadata[key]
		if !ok {
			return ""
		}
		if t, ok := v.(time.Time); ok && format != "" {
			return strftime.Format(format, t)
		}
		return slug.Make(fmt.Sprint(v))
	})
}
