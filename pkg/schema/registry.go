package schema

import "sync"

// Layout declares a protocol's field layout. Declare must register the
// same fields on every call: resolved schemas are cached by layout name
// and configuration, so names must be unique process-wide.
type Layout interface {
	// Name identifies the layout.
	Name() string

	// Declare registers the layout's fields against the builder.
	Declare(b *Builder)
}

// NewLayout adapts a name and a declaration function to a Layout.
func NewLayout(name string, declare func(b *Builder)) Layout {
	return &layoutFunc{name: name, declare: declare}
}

type layoutFunc struct {
	name    string
	declare func(b *Builder)
}

func (l *layoutFunc) Name() string       { return l.name }
func (l *layoutFunc) Declare(b *Builder) { l.declare(b) }

type cacheKey struct {
	name string
	cfg  Config
}

var (
	cacheMu sync.RWMutex
	cache   = make(map[cacheKey]*Schema)
)

// Resolve builds the schema for a layout under a configuration. The
// result is cached for the process lifetime; resolving the same
// (layout name, configuration) pair again returns the cached schema.
func Resolve(l Layout, cfg Config) (*Schema, error) {
	key := cacheKey{name: l.Name(), cfg: cfg}

	cacheMu.RLock()
	if s, ok := cache[key]; ok {
		cacheMu.RUnlock()
		return s, nil
	}
	cacheMu.RUnlock()

	b := NewBuilder(cfg).Named(l.Name())
	l.Declare(b)
	s, err := b.Resolve()
	if err != nil {
		return nil, err
	}

	cacheMu.Lock()
	cache[key] = s
	cacheMu.Unlock()

	return s, nil
}
