package bookmarks

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/starford/depot/internal/apperr"
	"github.com/starford/depot/internal/bookmark"
	"github.com/starford/depot/internal/site"
	"github.com/starford/depot/internal/testutil"
	"github.com/starford/depot/internal/theme"
)

func newSite(t *testing.T, files map[string]string, opts ...Option) (*site.Site, string) {
	t.Helper()
	_, content := testutil.TestStore(t, files)
	outDir, out := testutil.TestStore(t, nil)
	tmpl, err := theme.Load("")
	if err != nil {
		t.Fatal(err)
	}

	settings := &site.Settings{
		SiteName:        "Test",
		SiteURL:         "http://example.org",
		DefaultLang:     "en",
		ArticleExcludes: []string{"bookmarks"},
		ArticleURL:      "{slug}.html",
		ArticleSaveAs:   "{slug}.html",
		BookmarksDir:    "bookmarks",
		BookmarksSaveAs: "bookmarks.html",
		FeedSaveAs:      "atom.xml",
	}
	logger := testutil.Logger()
	w := site.NewWriter(out, tmpl, settings, logger)
	return site.New(settings, testutil.TestReader(content), w, logger, Plugin(opts...)), outDir
}

func TestPlugin_RendersBookmarksPage(t *testing.T) {
	s, outDir := newSite(t, map[string]string{
		"bookmarks/old.md": "---\ntitle: Old link\ndate: 2012-01-01\nurl: http://old.example.com/x\n---\n",
		"bookmarks/new.md": "---\ntitle: New link\ndate: 2013-05-01\nurl: https://www.example.com/a\n---\nA *note*.\n",
	})

	ctx, err := s.Build(context.Background())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	bs, ok := ctx["bookmarks"].([]*bookmark.Bookmark)
	if !ok || len(bs) != 2 {
		t.Fatalf("context bookmarks = %#v", ctx["bookmarks"])
	}
	if bs[0].Title != "New link" || bs[1].Title != "Old link" {
		t.Errorf("order = %q, %q; want newest first", bs[0].Title, bs[1].Title)
	}

	html := testutil.ReadFile(t, outDir, "bookmarks.html")
	for _, want := range []string{"https://www.example.com/a", "www.example.com", "<em>note</em>", "old.example.com"} {
		if !strings.Contains(html, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if strings.Index(html, "New link") > strings.Index(html, "Old link") {
		t.Error("newest bookmark should be listed first")
	}
}

func TestPlugin_SkipsIncompleteBookmarks(t *testing.T) {
	s, _ := newSite(t, map[string]string{
		"bookmarks/ok.md":     "---\ntitle: Ok\ndate: 2013-05-01\nurl: http://a.example\n---\n",
		"bookmarks/no-url.md": "---\ntitle: Broken\ndate: 2013-05-01\n---\n",
	})

	ctx, err := s.Build(context.Background())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if bs := ctx["bookmarks"].([]*bookmark.Bookmark); len(bs) != 1 || bs[0].Title != "Ok" {
		t.Errorf("bookmarks = %v", bs)
	}
}

func TestPlugin_StrictFailsBuild(t *testing.T) {
	s, _ := newSite(t, map[string]string{
		"bookmarks/no-url.md": "---\ntitle: Broken\ndate: 2013-05-01\n---\n",
	}, WithStrict(true))

	_, err := s.Build(context.Background())
	if !errors.Is(err, apperr.ErrMissingProperty) {
		t.Fatalf("err = %v, want ErrMissingProperty", err)
	}
	var missing *bookmark.MissingPropertyError
	if !errors.As(err, &missing) || missing.Property != "url" {
		t.Errorf("missing = %+v", missing)
	}
}

func TestPlugin_EmptyDirectory(t *testing.T) {
	s, outDir := newSite(t, nil)

	ctx, err := s.Build(context.Background())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if bs := ctx["bookmarks"].([]*bookmark.Bookmark); len(bs) != 0 {
		t.Errorf("bookmarks = %v, want none", bs)
	}
	if !strings.Contains(testutil.ReadFile(t, outDir, "bookmarks.html"), "No bookmarks yet.") {
		t.Error("empty page should say so")
	}
}

func TestPlugin_Name(t *testing.T) {
	if got := Plugin().Name(); got != Name {
		t.Errorf("Name() = %q", got)
	}
}
