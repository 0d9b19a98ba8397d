package cluster

import (
	"goclue/ports"
)

// DefaultMethod is the clustering method used when no name, or an
// unrecognized name, is given.
const DefaultMethod = "cmeans"

// Registry resolves clustering methods by name
type Registry struct {
	methods map[string]ports.ClustererPort
}

// NewRegistry creates a registry holding the built-in methods
func NewRegistry() *Registry {
	r := &Registry{methods: make(map[string]ports.ClustererPort)}
	r.Register(NewCMeansClusterer())
	r.Register(NewKMeansClusterer())
	return r
}

// Register adds a clustering method, replacing any existing one of that name
func (r *Registry) Register(c ports.ClustererPort) {
	r.methods[c.Name()] = c
}

// ForMethod resolves a method name. Unrecognized names degrade to the fuzzy
// default rather than failing, matching the tolerance the evaluation loop
// promises for typos; fellBack tells the caller to surface a warning.
func (r *Registry) ForMethod(name string) (clusterer ports.ClustererPort, fellBack bool) {
	if c, ok := r.methods[name]; ok {
		return c, false
	}
	return r.methods[DefaultMethod], name != ""
}

// Methods lists the registered method names
func (r *Registry) Methods() []string {
	names := make([]string, 0, len(r.methods))
	for name := range r.methods {
		names = append(names, name)
	}
	return names
}
