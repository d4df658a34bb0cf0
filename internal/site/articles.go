package site

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/starford/depot/internal/models"
	"github.com/starford/depot/internal/slug"
)

// ArticlesGenerator reads dated articles, groups translations and publishes
// the primaries as context["articles"].
type ArticlesGenerator struct {
	env *Env
}

// NewArticlesGenerator creates the built-in articles generator.
func NewArticlesGenerator(env *Env) *ArticlesGenerator {
	return &ArticlesGenerator{env: env}
}

// GenerateContext implements ContextGenerator.
func (g *ArticlesGenerator) GenerateContext(_ context.Context) error {
	settings := g.env.Settings
	logger := g.env.Logger

	files, err := g.env.Reader.Files("", settings.ArticleExcludes)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	var all []*models.Article
	for _, f := range files {
		src, err := g.env.Reader.ReadFile(f)
		if err != nil {
			logger.Warn("articles: could not process", slog.String("path", f), slog.String("error", err.Error()))
			continue
		}
		a, err := newArticle(src, settings.DefaultLang)
		if err != nil {
			logger.Warn("articles: could not process", slog.String("path", f), slog.String("error", err.Error()))
			continue
		}
		all = append(all, a)
	}

	for _, a := range all {
		urlPattern, saveAsPattern := settings.ArticleURL, settings.ArticleSaveAs
		if a.Lang != settings.DefaultLang {
			urlPattern, saveAsPattern = settings.ArticleLangURL, settings.ArticleLangSaveAs
		}
		a.URL = FormatURL(urlPattern, a)
		a.SaveAs = FormatURL(saveAsPattern, a)
	}

	articles := groupTranslations(all, settings.DefaultLang, logger)
	SortByDateDesc(articles)
	g.env.Context["articles"] = articles
	return nil
}

// GenerateOutput renders one page per article and translation when the
// theme provides an "article" template. Without one nothing is written.
func (g *ArticlesGenerator) GenerateOutput(ctx context.Context, w *Writer) error {
	if !w.HasTemplate("article") {
		return nil
	}
	articles, _ := g.env.Context["articles"].([]*models.Article)
	for _, a := range articles {
		for _, page := range append([]*models.Article{a}, a.Translations...) {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := w.WriteFile(page.SaveAs, "article", g.env.Context, g.env.Settings.RelativeURLs,
				map[string]any{"article": page}); err != nil {
				return err
			}
		}
	}
	return nil
}

func newArticle(src *models.Source, defaultLang string) (*models.Article, error) {
	title := src.String("title")
	if title == "" {
		return nil, fmt.Errorf("property title is missing from %s", src.Filename)
	}
	date, ok := src.Time("date")
	if !ok {
		return nil, fmt.Errorf("property date is missing from %s", src.Filename)
	}
	s := src.String("slug")
	if s == "" {
		s = slug.Make(title)
	}
	lang := src.String("lang")
	if lang == "" {
		lang = defaultLang
	}
	return &models.Article{
		Title:    title,
		Date:     date,
		Slug:     s,
		Lang:     lang,
		Content:  src.Content,
		Filename: src.Filename,
		Metadata: src.Metadata,
	}, nil
}

// groupTranslations groups articles sharing a slug. The variant in the
// default language becomes the primary and carries the others as
// Translations. Groups without a default-language variant fall back to their
// first member.
func groupTranslations(all []*models.Article, defaultLang string, logger *slog.Logger) []*models.Article {
	groups := make(map[string][]*models.Article)
	var order []string
	for _, a := range all {
		if _, seen := groups[a.Slug]; !seen {
			order = append(order, a.Slug)
		}
		groups[a.Slug] = append(groups[a.Slug], a)
	}

	out := make([]*models.Article, 0, len(order))
	for _, s := range order {
		group := groups[s]
		primary := slices.IndexFunc(group, func(a *models.Article) bool { return a.Lang == defaultLang })
		if primary < 0 {
			logger.Warn("articles: no variant in default language",
				slog.String("slug", s), slog.String("lang", defaultLang), slog.String("using", group[0].Filename))
			primary = 0
		}
		p := group[primary]
		p.Translations = nil
		for i, a := range group {
			if i == primary {
				continue
			}
			if a.Lang == p.Lang {
				logger.Warn("articles: duplicate variant", slog.String("slug", s), slog.String("lang", a.Lang), slog.String("path", a.Filename))
			}
			p.Translations = append(p.Translations, a)
		}
		out = append(out, p)
	}
	return out
}

// SortByDateDesc sorts articles newest first, keeping the input order of
// articles with equal dates.
func SortByDateDesc(articles []*models.Article) {
	slices.SortStableFunc(articles, func(a, b *models.Article) int {
		return b.Date.Compare(a.Date)
	})
}
