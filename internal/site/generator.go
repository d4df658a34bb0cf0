package site

import (
	"context"
	"log/slog"

	"github.com/starford/depot/internal/models"
)

// Context is the state shared by all generators of one build and passed to
// templates.
type Context map[string]any

// ContentReader reads content sources.
type ContentReader interface {
	Files(dir string, excludes []string) ([]string, error)
	ReadFile(path string) (*models.Source, error)
}

// Env is what a generator is constructed with.
type Env struct {
	Settings *Settings
	Context  Context
	Reader   ContentReader
	Logger   *slog.Logger
}

// Generator produces output files.
type Generator interface {
	GenerateOutput(ctx context.Context, w *Writer) error
}

// ContextGenerator is a Generator that also contributes to the shared
// context before any output is written.
type ContextGenerator interface {
	Generator
	GenerateContext(ctx context.Context) error
}

// Factory constructs a named generator.
type Factory struct {
	Name string
	New  func(env *Env) (Generator, error)
}

// Registry collects the factories returned by GetGenerators receivers.
type Registry struct {
	factories []Factory
}

// Add registers a generator factory.
func (r *Registry) Add(name string, fn func(env *Env) (Generator, error)) {
	r.factories = append(r.factories, Factory{Name: name, New: fn})
}

// Factories returns the registered factories in order.
func (r *Registry) Factories() []Factory {
	return r.factories
}
