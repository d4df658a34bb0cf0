package site

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/starford/depot/internal/models"
	"github.com/starford/depot/internal/testutil"
)

func day(d int) time.Time {
	return time.Date(2013, 5, d, 10, 0, 0, 0, time.UTC)
}

func generateArticles(t *testing.T, sources map[string]*models.Source) []*models.Article {
	t.Helper()
	env := &Env{
		Settings: testSettings(),
		Context:  Context{},
		Reader:   &fakeReader{sources: sources},
		Logger:   testutil.Logger(),
	}
	if err := NewArticlesGenerator(env).GenerateContext(context.Background()); err != nil {
		t.Fatalf("GenerateContext: %v", err)
	}
	return env.Context["articles"].([]*models.Article)
}

func TestArticles_TranslationsAndOrder(t *testing.T) {
	articles := generateArticles(t, map[string]*models.Source{
		"hello.md":          article("Hello", day(1), map[string]any{"slug": "hello"}),
		"hello-fr.md":       article("Bonjour", day(4), map[string]any{"slug": "hello", "lang": "fr"}),
		"second.md":         article("Second post", day(2), nil),
		"bookmarks/link.md": article("Not an article", day(5), nil),
	})

	var got []string
	for _, a := range articles {
		got = append(got, a.URL)
	}
	if diff := cmp.Diff([]string{"second-post.html", "hello.html"}, got); diff != "" {
		t.Errorf("articles mismatch (-want +got):\n%s", diff)
	}

	hello := articles[1]
	if len(hello.Translations) != 1 {
		t.Fatalf("translations = %v", hello.Translations)
	}
	fr := hello.Translations[0]
	if fr.Lang != "fr" || fr.URL != "hello-fr.html" || fr.SaveAs != "hello-fr.html" {
		t.Errorf("translation = %+v", fr)
	}
}

func TestArticles_NoDefaultLanguageVariant(t *testing.T) {
	articles := generateArticles(t, map[string]*models.Source{
		"a.md": article("Salut", day(1), map[string]any{"slug": "salut", "lang": "fr"}),
	})
	if len(articles) != 1 || articles[0].Lang != "fr" || articles[0].URL != "salut-fr.html" {
		t.Errorf("articles = %+v", articles)
	}
}

func TestArticles_SkipsIncomplete(t *testing.T) {
	articles := generateArticles(t, map[string]*models.Source{
		"ok.md":       article("Ok", day(1), nil),
		"no-date.md":  {Metadata: map[string]any{"title": "No date"}},
		"no-title.md": {Metadata: map[string]any{"date": day(1)}},
	})
	if len(articles) != 1 || articles[0].Title != "Ok" {
		t.Errorf("articles = %+v", articles)
	}
}

func TestArticles_MissingContentDir(t *testing.T) {
	if articles := generateArticles(t, nil); len(articles) != 0 {
		t.Errorf("articles = %+v", articles)
	}
}

func TestSortByDateDesc_Stable(t *testing.T) {
	as := []*models.Article{
		{Title: "old", Date: day(1)},
		{Title: "first", Date: day(3)},
		{Title: "second", Date: day(3)},
	}
	SortByDateDesc(as)
	var got []string
	for _, a := range as {
		got = append(got, a.Title)
	}
	if diff := cmp.Diff([]string{"first", "second", "old"}, got); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestArticles_RenderedWithTemplate(t *testing.T) {
	settings := testSettings()
	w, dir := testWriter(t, settings, `{{define "article.html"}}{{.article.Title}} @ {{.SITEURL}}{{end}}`)
	r := &fakeReader{sources: map[string]*models.Source{
		"hello.md": article("Hello", day(1), nil),
	}}
	s := New(settings, r, w, testutil.Logger())
	if _, err := s.Build(context.Background()); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got := testutil.ReadFile(t, dir, "hello.html"); !strings.HasPrefix(got, "Hello @ http://example.org") {
		t.Errorf("page = %q", got)
	}
}
