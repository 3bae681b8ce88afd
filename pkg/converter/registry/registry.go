// Package registry maps estimator types to converter factories.
//
// A Registry is populated at start-up, sealed, and then only read:
//
//	reg := registry.NewRegistry(log)
//	regression.Register(reg, opts)
//	reg.Seal()
//
//	factory, ok := reg.Find(est)
//
// Lookup matches the estimator's exact dynamic type. A pointer type and its
// element type are different keys, and no interface or embedding based
// matching is attempted.
package registry

import (
	"reflect"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/ajitpratap0/pmmlconv/pkg/converter"
	"github.com/ajitpratap0/pmmlconv/pkg/errors"
	"github.com/ajitpratap0/pmmlconv/pkg/logger"
)

// Factory creates a converter bound to est
type Factory func(est any) (*converter.Converter, error)

// Info describes a registered converter
type Info struct {
	Name        string           `json:"name" yaml:"name"`
	Description string           `json:"description" yaml:"description"`
	Modes       []converter.Mode `json:"modes" yaml:"modes"`
	// Type is the estimator's Go type, filled in on registration
	Type string `json:"type" yaml:"type"`
}

// SupportsMode reports whether the converter declares mode
func (i Info) SupportsMode(mode converter.Mode) bool {
	for _, m := range i.Modes {
		if m == mode {
			return true
		}
	}
	return false
}

type entry struct {
	info    Info
	factory Factory
}

// Registry manages converter registration and lookup
type Registry struct {
	entries map[reflect.Type]entry
	sealed  bool
	mu      sync.RWMutex
	logger  *zap.Logger
}

// NewRegistry creates an empty registry. A nil logger means the global one.
func NewRegistry(l *zap.Logger) *Registry {
	if l == nil {
		l = logger.Get()
	}
	return &Registry{
		entries: make(map[reflect.Type]entry),
		logger:  l.With(zap.String("component", "converter_registry")),
	}
}

// Register associates the dynamic type of sample with factory
func (r *Registry) Register(sample any, info Info, factory Factory) error {
	if sample == nil {
		return errors.New(errors.ErrorTypeConfig, "cannot register a converter for a nil estimator")
	}
	if factory == nil {
		return errors.New(errors.ErrorTypeConfig, "converter factory is nil")
	}

	t := reflect.TypeOf(sample)
	info.Type = t.String()
	if info.Name == "" {
		info.Name = info.Type
	}
	for _, m := range info.Modes {
		if !m.Valid() {
			return errors.Newf(errors.ErrorTypeConfig, "converter %s declares unknown mode %q", info.Name, m).
				WithDetail("converter", info.Name)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return errors.Newf(errors.ErrorTypeConfig, "registry is sealed; cannot register %s", info.Name).
			WithDetail("type", info.Type)
	}
	if existing, exists := r.entries[t]; exists {
		return errors.Newf(errors.ErrorTypeConfig, "converter for %s already registered as %s", info.Type, existing.info.Name).
			WithDetail("type", info.Type)
	}

	r.entries[t] = entry{info: info, factory: factory}
	r.logger.Debug("converter registered",
		zap.String("name", info.Name),
		zap.String("type", info.Type))
	return nil
}

// Find returns the factory registered for est's exact type
func (r *Registry) Find(est any) (Factory, bool) {
	e, ok := r.lookup(est)
	return e.factory, ok
}

// Describe returns the catalog entry registered for est's exact type
func (r *Registry) Describe(est any) (Info, bool) {
	e, ok := r.lookup(est)
	return e.info, ok
}

// Create finds the factory for est and builds a converter. A miss is an
// ErrorTypeNotFound error naming the estimator type.
func (r *Registry) Create(est any) (*converter.Converter, error) {
	e, ok := r.lookup(est)
	if !ok {
		typeName := "<nil>"
		if est != nil {
			typeName = reflect.TypeOf(est).String()
		}
		return nil, errors.Newf(errors.ErrorTypeNotFound, "no converter registered for %s", typeName).
			WithDetail("type", typeName)
	}

	conv, err := e.factory(est)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to create converter "+e.info.Name)
	}
	return conv, nil
}

func (r *Registry) lookup(est any) (entry, bool) {
	if est == nil {
		return entry{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[reflect.TypeOf(est)]
	return e, ok
}

// Seal makes the registry read-only
func (r *Registry) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed = true
}

// Sealed reports whether Seal has been called
func (r *Registry) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}

// List returns the catalog sorted by name
func (r *Registry) List() []Info {
	r.mu.RLock()
	infos := make([]Info, 0, len(r.entries))
	for _, e := range r.entries {
		infos = append(infos, e.info)
	}
	r.mu.RUnlock()

	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// Len returns the number of registered converters
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
