package cacheable

import (
	"github.com/goliatone/go-cacheable/cache"
	"github.com/puzpuzpuz/xsync/v3"
)

// Registry maps operations to the cache options attached to them.
// It is safe for concurrent use.
type Registry struct {
	entries *xsync.MapOf[string, cache.Options]
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: xsync.NewMapOf[string, cache.Options]()}
}

// Register marks class.method as cacheable. The options are copied, so later
// changes by the caller have no effect. Registering twice replaces the options.
func (r *Registry) Register(class, method string, opts cache.Options) {
	r.entries.Store(operationID(class, method), opts.Clone())
}

// Unregister removes the options for class.method, if any.
func (r *Registry) Unregister(class, method string) {
	r.entries.Delete(operationID(class, method))
}

// Lookup returns the options registered for class.method.
func (r *Registry) Lookup(class, method string) (cache.Options, bool) {
	opts, ok := r.entries.Load(operationID(class, method))
	if !ok {
		return cache.Options{}, false
	}
	return opts.Clone(), true
}

// Len returns the number of registered operations.
func (r *Registry) Len() int {
	return r.entries.Size()
}

func operationID(class, method string) string {
	return class + "." + method
}
