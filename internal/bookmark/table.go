package bookmark

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

const (
	dateWidth      = 10
	maxDomainWidth = 28
	minTitleWidth  = 20
)

// WriteTable prints bookmarks as aligned DATE / DOMAIN / TITLE columns fitted
// to width terminal cells. Wide characters are measured by display width.
func WriteTable(w io.Writer, bs []*Bookmark, width int) error {
	domainWidth := len("DOMAIN")
	for _, b := range bs {
		domainWidth = max(domainWidth, runewidth.StringWidth(b.Domain))
	}
	domainWidth = min(domainWidth, maxDomainWidth)
	titleWidth := max(width-dateWidth-domainWidth-4, minTitleWidth)

	row := func(date, domain, title string) string {
		return strings.TrimRight(
			runewidth.FillRight(date, dateWidth)+"  "+
				runewidth.FillRight(runewidth.Truncate(domain, domainWidth, "…"), domainWidth)+"  "+
				runewidth.Truncate(title, titleWidth, "…"),
			" ")
	}

	if _, err := fmt.Fprintln(w, row("DATE", "DOMAIN", "TITLE")); err != nil {
		return err
	}
	for _, b := range bs {
		if _, err := fmt.Fprintln(w, row(b.Date.Format("2006-01-02"), b.Domain, b.Title)); err != nil {
			return err
		}
	}
	return nil
}
