package plugin

import (
	"context"
	"sort"
	"sync"

	"jettower/pkg/logging"
)

// Instance is a host-managed plugin handle that knows the GraphQL endpoint of
// a Tower deployment.
type Instance interface {
	// Endpoint returns the current GraphQL endpoint URL of the instance.
	Endpoint(ctx context.Context) (string, error)
}

// Registry resolves plugin instances by name.
type Registry interface {
	// Lookup returns the named instance or a *NotFoundError.
	Lookup(name string) (Instance, error)
}

// EndpointFunc adapts a plain function to the Instance interface.
type EndpointFunc func(ctx context.Context) (string, error)

// Endpoint calls f(ctx).
func (f EndpointFunc) Endpoint(ctx context.Context) (string, error) {
	return f(ctx)
}

// StaticRegistry is an in-memory Registry keyed by instance name.
// It is safe for concurrent use.
type StaticRegistry struct {
	mu        sync.RWMutex
	endpoints map[string]string
}

// NewStaticRegistry creates an empty registry.
func NewStaticRegistry() *StaticRegistry {
	return &StaticRegistry{
		endpoints: make(map[string]string),
	}
}

// Register adds or replaces the endpoint of the named instance.
// Instances already handed out by Lookup observe the new endpoint on their
// next Endpoint call.
func (r *StaticRegistry) Register(name, endpoint string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if previous, ok := r.endpoints[name]; ok && previous != endpoint {
		logging.Info("PluginRegistry", "Endpoint of plugin %s changed to %s", name, endpoint)
	} else if !ok {
		logging.Debug("PluginRegistry", "Registered plugin %s at %s", name, endpoint)
	}
	r.endpoints[name] = endpoint
}

// Unregister removes the named instance. It is a no-op for unknown names.
func (r *StaticRegistry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.endpoints[name]; ok {
		logging.Debug("PluginRegistry", "Unregistered plugin %s", name)
	}
	delete(r.endpoints, name)
}

// Names returns the registered instance names in sorted order.
func (r *StaticRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.endpoints))
	for name := range r.endpoints {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup implements Registry.
func (r *StaticRegistry) Lookup(name string) (Instance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.endpoints[name]; !ok {
		return nil, NewNotFoundError(name)
	}
	return &staticInstance{registry: r, name: name}, nil
}

// endpoint reads the current endpoint of the named instance.
func (r *StaticRegistry) endpoint(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	endpoint, ok := r.endpoints[name]
	return endpoint, ok
}

// staticInstance is the Instance handed out by StaticRegistry. It reads the
// endpoint at call time rather than capturing it at lookup.
type staticInstance struct {
	registry *StaticRegistry
	name     string
}

func (i *staticInstance) Endpoint(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	endpoint, ok := i.registry.endpoint(i.name)
	if !ok {
		return "", NewNotFoundError(i.name)
	}
	return endpoint, nil
}
