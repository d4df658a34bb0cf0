package site

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Pruner is implemented by readers that keep a content cache.
type Pruner interface {
	PruneCache() error
}

type namedGenerator struct {
	name string
	gen  Generator
}

// Site runs builds: it constructs the generators, lets plugins hook into
// them and drives context and output generation.
type Site struct {
	settings *Settings
	reader   ContentReader
	writer   *Writer
	logger   *slog.Logger
	signals  Signals
	plugins  []string
}

// New creates a Site and registers plugins in order.
func New(settings *Settings, reader ContentReader, writer *Writer, logger *slog.Logger, plugins ...Plugin) *Site {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Site{
		settings: settings,
		reader:   reader,
		writer:   writer,
		logger:   logger,
	}
	for _, p := range plugins {
		p.Register(&s.signals)
		s.plugins = append(s.plugins, p.Name())
		logger.Debug("site: plugin registered", slog.String("plugin", p.Name()))
	}
	return s
}

// Plugins returns the names of the registered plugins.
func (s *Site) Plugins() []string {
	return s.plugins
}

// Build runs one generation pass and returns the final shared context.
//
// The built-in articles generator always runs first, followed by plugin
// generators in registration order. All context generation completes before
// any output is written. The first error aborts the build.
func (s *Site) Build(ctx context.Context) (Context, error) {
	start := time.Now()
	env := &Env{
		Settings: s.settings,
		Context:  Context{},
		Reader:   s.reader,
		Logger:   s.logger,
	}

	gens := []namedGenerator{{name: "articles", gen: NewArticlesGenerator(env)}}

	reg := &Registry{}
	s.signals.GetGenerators.Send(reg)
	for _, f := range reg.Factories() {
		g, err := f.New(env)
		if err != nil {
			return nil, fmt.Errorf("site: init %s: %w", f.Name, err)
		}
		gens = append(gens, namedGenerator{name: f.Name, gen: g})
	}

	for range gens {
		s.signals.GeneratorInit.Send(env)
	}

	for _, g := range gens {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cg, ok := g.gen.(ContextGenerator)
		if !ok {
			continue
		}
		if err := cg.GenerateContext(ctx); err != nil {
			return nil, fmt.Errorf("site: %s: generate context: %w", g.name, err)
		}
	}

	for _, g := range gens {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := g.gen.GenerateOutput(ctx, s.writer); err != nil {
			return nil, fmt.Errorf("site: %s: generate output: %w", g.name, err)
		}
	}

	if p, ok := s.reader.(Pruner); ok {
		if err := p.PruneCache(); err != nil {
			s.logger.Warn("site: cache prune failed", slog.String("error", err.Error()))
		}
	}

	s.logger.Info("site: build done",
		slog.Int("generators", len(gens)),
		slog.Duration("elapsed", time.Since(start)))
	return env.Context, nil
}
