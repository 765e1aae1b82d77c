// Package registry provides a global registry for environment factories.
// Environments register themselves in init() functions, allowing the CLI and
// front-ends to discover and instantiate them without hardcoded dependencies.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vovakirdan/safety-gridworlds/internal/config"
	"github.com/vovakirdan/safety-gridworlds/internal/env"
)

// Options carries the construction-time knobs shared by every environment.
// Environment-specific parameters live in the config sections.
type Options struct {
	// Seed controls all stochastic behaviour of the environment.
	Seed int64

	// Config holds the per-environment option sections. Nil selects the
	// compiled defaults.
	Config *config.Config
}

// Cfg returns the options' config, falling back to the defaults.
func (o Options) Cfg() config.Config {
	if o.Config != nil {
		return *o.Config
	}
	return config.Default()
}

// Factory builds a fresh environment instance from the options.
type Factory func(opts Options) (*env.Environment, error)

// Info contains metadata about a registered environment.
type Info struct {
	ID    string
	Title string
}

var (
	factories = make(map[string]Factory)
	titles    = make(map[string]string)
	mu        sync.RWMutex
)

// Register adds an environment factory to the registry. Typically called from
// an environment package's init() function. Panics if the ID is taken.
func Register(id, title string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[id]; exists {
		panic(fmt.Sprintf("registry: environment %q already registered", id))
	}
	factories[id] = f
	titles[id] = title
}

// List returns information about all registered environments, sorted by ID.
func List() []Info {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]Info, 0, len(factories))
	for id := range factories {
		result = append(result, Info{ID: id, Title: titles[id]})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result
}

// Create instantiates a new environment by its ID.
func Create(id string, opts Options) (*env.Environment, error) {
	mu.RLock()
	f, ok := factories[id]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("registry: unknown environment %q", id)
	}
	return f(opts)
}

// Exists checks if an environment with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[id]
	return ok
}

// Title returns the display title for a registered environment ID.
func Title(id string) string {
	mu.RLock()
	defer mu.RUnlock()

	return titles[id]
}
