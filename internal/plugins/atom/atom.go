// Package atom is the plugin that writes the site's Atom feed from a fixed
// template instead of a theme template.
package atom

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/starford/depot/internal/models"
	"github.com/starford/depot/internal/site"
)

// Name is the plugin name used in the config plugins list.
const Name = "custom_atom"

// Option configures the plugin.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces time.Now for the feed's updated stamp.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// Plugin returns the custom Atom plugin.
func Plugin(opts ...Option) site.Plugin {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return site.NewPlugin(Name, func(s *site.Signals) {
		s.GetGenerators.Connect(func(reg *site.Registry) {
			reg.Add(Name, func(env *site.Env) (site.Generator, error) {
				return newGenerator(env, o.now()), nil
			})
		})
	})
}

// Generator writes the feed. It captures the site identity and the build
// time when constructed.
type Generator struct {
	env         *site.Env
	now         time.Time
	siteURL     string
	siteName    string
	author      string
	authorEmail string
	saveAs      string
}

func newGenerator(env *site.Env, now time.Time) *Generator {
	s := env.Settings
	return &Generator{
		env:         env,
		now:         now,
		siteURL:     s.SiteURLBase(),
		siteName:    s.SiteName,
		author:      s.Author,
		authorEmail: s.AuthorEmail,
		saveAs:      s.FeedSaveAs,
	}
}

// GenerateOutput implements site.Generator.
func (g *Generator) GenerateOutput(_ context.Context, w *site.Writer) error {
	articles, _ := g.env.Context["articles"].([]*models.Article)

	feed := Feed{
		SiteName:    g.siteName,
		SiteURL:     g.siteURL,
		SaveAs:      g.saveAs,
		Author:      g.author,
		AuthorEmail: g.authorEmail,
		Updated:     g.now,
		Entries:     Entries(articles, g.siteURL),
	}

	var buf bytes.Buffer
	if err := Render(&buf, feed); err != nil {
		return fmt.Errorf("atom: render: %w", err)
	}

	g.env.Logger.Info("atom: writing", slog.String("path", w.Path(g.saveAs)), slog.Int("entries", len(feed.Entries)))
	return w.WriteRaw(g.saveAs, buf.Bytes())
}
