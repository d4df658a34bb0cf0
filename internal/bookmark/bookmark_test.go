package bookmark

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/starford/depot/internal/apperr"
	"github.com/starford/depot/internal/models"
)

func source(filename string, meta map[string]any) *models.Source {
	return &models.Source{Filename: filename, Metadata: meta, Content: "<p>note</p>"}
}

func day(d int) time.Time {
	return time.Date(2013, 5, d, 0, 0, 0, 0, time.UTC)
}

func TestNew(t *testing.T) {
	b, err := New(source("bookmarks/a.md", map[string]any{
		"date":  day(1),
		"title": "A link",
		"url":   "https://example.com:8443/path?q=1",
		"via":   "someone",
	}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if b.Domain != "example.com:8443" {
		t.Errorf("domain = %q", b.Domain)
	}
	if b.Title != "A link" || !b.Date.Equal(day(1)) {
		t.Errorf("bookmark = %+v", b)
	}
	if b.Get("Via") != "someone" {
		t.Errorf("extra field = %v", b.Get("Via"))
	}
	if b.Content != "<p>note</p>" {
		t.Errorf("content = %q", b.Content)
	}
}

func TestNew_MissingProperty(t *testing.T) {
	cases := []struct {
		name string
		meta map[string]any
		want string
	}{
		{"no date", map[string]any{"title": "t", "url": "http://x"}, "date"},
		{"no title", map[string]any{"date": day(1), "url": "http://x"}, "title"},
		{"no url", map[string]any{"date": day(1), "title": "t"}, "url"},
		{"nothing", map[string]any{}, "date"},
		{"blank title", map[string]any{"date": day(1), "title": "", "url": "http://x"}, "title"},
		{"space url", map[string]any{"date": day(1), "title": "t", "url": "  "}, "url"},
		{"null title", map[string]any{"date": day(1), "title": nil, "url": "http://x"}, "title"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := New(source("bookmarks/x.md", c.meta))
			if !errors.Is(err, apperr.ErrMissingProperty) {
				t.Fatalf("err = %v, want ErrMissingProperty", err)
			}
			var missing *MissingPropertyError
			if !errors.As(err, &missing) || missing.Property != c.want {
				t.Fatalf("err = %v, want property %s", err, c.want)
			}
			want := "property " + c.want + " is missing from bookmarks/x.md"
			if err.Error() != want {
				t.Errorf("message = %q, want %q", err.Error(), want)
			}
		})
	}
}

func TestNew_NonStringTitleIsPresent(t *testing.T) {
	for _, title := range []any{0, false, 2013} {
		b, err := New(source("a.md", map[string]any{"date": day(1), "title": title, "url": "http://x"}))
		if err != nil {
			t.Fatalf("title %v: New: %v", title, err)
		}
		if want := fmt.Sprint(title); b.Title != want {
			t.Errorf("title = %q, want %q", b.Title, want)
		}
	}
}

func TestNew_UnparseableURLHasNoDomain(t *testing.T) {
	b, err := New(source("a.md", map[string]any{"date": day(1), "title": "t", "url": "://bad"}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if b.Domain != "" {
		t.Errorf("domain = %q, want empty", b.Domain)
	}
}

func TestSort_NewestFirstStable(t *testing.T) {
	a := &Bookmark{Title: "a", Date: day(1)}
	b := &Bookmark{Title: "b", Date: day(3)}
	c := &Bookmark{Title: "c", Date: day(2)}
	d := &Bookmark{Title: "d", Date: day(3)}

	bs := []*Bookmark{a, b, c, d}
	Sort(bs)

	var got []string
	for _, x := range bs {
		got = append(got, x.Title)
	}
	if strings.Join(got, "") != "bdca" {
		t.Errorf("order = %v, want [b d c a]", got)
	}
}
