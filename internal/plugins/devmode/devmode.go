// Package devmode exposes the DEV_MODE environment variable to templates as
// devMode.
package devmode

import (
	"os"

	"github.com/starford/depot/internal/site"
)

const (
	// Name is the plugin name used in the config plugins list.
	Name = "devmode"
	// EnvVar is the environment variable read on every generator init.
	EnvVar = "DEV_MODE"
	// ContextKey is the context entry the value is stored under.
	ContextKey = "devMode"
)

// Option configures the plugin.
type Option func(*plugin)

type plugin struct {
	getenv func(string) string
}

// WithGetenv replaces os.Getenv.
func WithGetenv(fn func(string) string) Option {
	return func(p *plugin) { p.getenv = fn }
}

// Plugin returns the devmode plugin.
func Plugin(opts ...Option) site.Plugin {
	p := &plugin{getenv: os.Getenv}
	for _, opt := range opts {
		opt(p)
	}
	return site.NewPlugin(Name, func(s *site.Signals) {
		s.GeneratorInit.Connect(func(env *site.Env) {
			env.Context[ContextKey] = p.getenv(EnvVar)
		})
	})
}
