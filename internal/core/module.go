package core

import "sync"

// ModuleID uniquely identifies a module, namespaced by dots
// (e.g. "provider.openai", "storage.sqlite", "weaver").
type ModuleID string

// Module is the minimal interface every loom module implements.
// Lifecycle hooks (Configurable, Provisioner, Validator, Starter, Stopper)
// are optional and discovered by interface assertion.
type Module interface {
	ModuleInfo() ModuleInfo
}

// ModuleInfo describes a registered module.
type ModuleInfo struct {
	// ID is the unique module identifier.
	ID ModuleID

	// New returns a fresh, unconfigured instance of the module.
	New func() Module
}

// serviceRegistry holds named runtime services that modules expose to each
// other. It is shared across all AppContext copies for one application.
type serviceRegistry struct {
	mu       sync.RWMutex
	services map[string]any
}

func newServiceRegistry() *serviceRegistry {
	return &serviceRegistry{services: make(map[string]any)}
}

func (r *serviceRegistry) register(name string, svc any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.services[name] = svc
}

func (r *serviceRegistry) lookup(name string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	svc, ok := r.services[name]
	return svc, ok
}

// RegisterService makes a runtime service available to other modules under
// the given name. Typically called from Provision.
func (ctx *AppContext) RegisterService(name string, svc any) {
	ctx.services.register(name, svc)
}

// Service returns the service registered under the given name, or false if
// no module has registered it.
func (ctx *AppContext) Service(name string) (any, bool) {
	return ctx.services.lookup(name)
}
