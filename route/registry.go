package route

import "sync"

// View is the unit the registry materializes for an authorized path.
// Implementations render whatever the host UI needs; the client core only
// routes to them.
type View interface {
	Path() string
	Name() string
}

// ViewFactory builds the view for a path. Factories run once per resolve;
// caching is the factory's business.
type ViewFactory func(path string) View

// Registry maps route paths to view factories. Paths the menu authorizes but
// no factory claims resolve to a placeholder view, so a permitted route is
// never a dead end.
type Registry struct {
	mu          sync.RWMutex
	factories   map[string]ViewFactory
	placeholder ViewFactory
}

// NewRegistry creates an empty [Registry] with the default placeholder.
func NewRegistry() *Registry {
	return &Registry{
		factories:   map[string]ViewFactory{},
		placeholder: newPlaceholder,
	}
}

// Register binds a factory to a path, replacing any previous binding.
func (r *Registry) Register(path string, factory ViewFactory) {
	if path == "" || factory == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[path] = factory
}

// SetPlaceholder replaces the factory used for unmapped paths.
func (r *Registry) SetPlaceholder(factory ViewFactory) {
	if factory == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.placeholder = factory
}

// Resolve returns the view for an already-authorized path, falling back to
// the placeholder for unmapped paths. The second result reports whether a
// registered factory served the path.
func (r *Registry) Resolve(path string) (View, bool) {
	r.mu.RLock()
	factory, ok := r.factories[path]
	placeholder := r.placeholder
	r.mu.RUnlock()

	if ok {
		return factory(path), true
	}
	return placeholder(path), false
}

type placeholderView struct {
	path string
}

func newPlaceholder(path string) View {
	return placeholderView{path: path}
}

func (v placeholderView) Path() string { return v.path }
func (v placeholderView) Name() string { return "placeholder" }
