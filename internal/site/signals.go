package site

// Signal is a list of receivers called in connection order.
type Signal[T any] struct {
	receivers []func(T)
}

// Connect adds a receiver.
func (s *Signal[T]) Connect(fn func(T)) {
	s.receivers = append(s.receivers, fn)
}

// Send calls every receiver with v.
func (s *Signal[T]) Send(v T) {
	for _, fn := range s.receivers {
		fn(v)
	}
}

// Signals are the hooks plugins register on.
type Signals struct {
	// GetGenerators receivers add generator factories to the registry.
	GetGenerators Signal[*Registry]
	// GeneratorInit receivers are called once for every constructed
	// generator with the build environment.
	GeneratorInit Signal[*Env]
}

// Plugin is a named extension that connects receivers to Signals.
type Plugin interface {
	Name() string
	Register(s *Signals)
}

type funcPlugin struct {
	name     string
	register func(*Signals)
}

func (p funcPlugin) Name() string        { return p.name }
func (p funcPlugin) Register(s *Signals) { p.register(s) }

// NewPlugin returns a Plugin that calls register.
func NewPlugin(name string, register func(*Signals)) Plugin {
	return funcPlugin{name: name, register: register}
}
