package piglow

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// Registry tracks named controllers so callers can address multiple boards
// (or share one) through an explicit handle instead of a process-wide
// singleton.
type Registry struct {
	mu          sync.Mutex
	controllers map[string]*Controller
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{controllers: make(map[string]*Controller)}
}

// Start starts a controller under the given name. A start failure is
// logged and the name stays unregistered; an already-registered name is an
// error and starts nothing.
func (r *Registry) Start(name string, opts Options) (*Controller, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.controllers[name]; ok {
		return nil, errors.Errorf("controller %q is already registered", name)
	}

	opts.Name = name
	c, err := Start(opts)
	if err != nil {
		logger := opts.Logger
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error("controller failed to start", "piglow", name, "error", err)
		return nil, err
	}

	r.controllers[name] = c
	return c, nil
}

// Get returns the controller registered under name.
func (r *Registry) Get(name string) (*Controller, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.controllers[name]
	return c, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.controllers))
	for name := range r.controllers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Stop stops the named controller and removes it from the registry. The
// entry is removed even when Stop times out, since the controller keeps
// shutting down on its own.
func (r *Registry) Stop(name string, timeout time.Duration) error {
	r.mu.Lock()
	c, ok := r.controllers[name]
	delete(r.controllers, name)
	r.mu.Unlock()

	if !ok {
		return errors.Errorf("no controller registered as %q", name)
	}
	return c.Stop(timeout)
}
