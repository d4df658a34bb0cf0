// Package bookmarks is the plugin that publishes the bookmarks page.
package bookmarks

import (
	"context"
	"log/slog"

	"github.com/starford/depot/internal/bookmark"
	"github.com/starford/depot/internal/site"
)

// Name is the plugin name used in the config plugins list.
const Name = "bookmarks"

// Option configures the plugin.
type Option func(*Generator)

// WithStrict makes a bookmark without a mandatory property fail the build
// instead of being skipped.
func WithStrict(strict bool) Option {
	return func(g *Generator) { g.strict = strict }
}

// Plugin returns the bookmarks plugin.
func Plugin(opts ...Option) site.Plugin {
	return site.NewPlugin(Name, func(s *site.Signals) {
		s.GetGenerators.Connect(func(reg *site.Registry) {
			reg.Add(Name, func(env *site.Env) (site.Generator, error) {
				g := &Generator{env: env}
				for _, opt := range opts {
					opt(g)
				}
				return g, nil
			})
		})
	})
}

// Generator loads bookmarks into context["bookmarks"] and renders the
// "bookmarks" template.
type Generator struct {
	env    *site.Env
	strict bool
}

// GenerateContext implements site.ContextGenerator.
func (g *Generator) GenerateContext(_ context.Context) error {
	dir := g.env.Settings.BookmarksDir
	bs, err := bookmark.Collect(g.env.Reader, dir, g.strict, g.env.Logger)
	if err != nil {
		return err
	}
	g.env.Logger.Debug("bookmarks: collected", slog.String("dir", dir), slog.Int("count", len(bs)))
	g.env.Context["bookmarks"] = bs
	return nil
}

// GenerateOutput implements site.Generator.
func (g *Generator) GenerateOutput(_ context.Context, w *site.Writer) error {
	return w.WriteFile(g.env.Settings.BookmarksSaveAs, "bookmarks", g.env.Context, false, nil)
}
