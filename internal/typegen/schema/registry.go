package schema

import (
	"fmt"
	"sort"
	"sync"
)

// Oracle is the read-only view of the metadata graph the generator consumes
type Oracle interface {
	// Resource returns the resource with the given qualified name
	Resource(name string) (*Resource, bool)
}

// UnknownResourceError is returned when a reference names a resource the oracle
// does not know about
type UnknownResourceError struct {
	Name string
	From string
}

func (e *UnknownResourceError) Error() string {
	if e.From != "" {
		return fmt.Sprintf("unknown resource %s (referenced from %s)", e.Name, e.From)
	}
	return fmt.Sprintf("unknown resource %s", e.Name)
}

// Registry manages all resources of one metadata document
type Registry struct {
	resources map[string]*Resource
	order     []string
	mu        sync.RWMutex
}

// NewRegistry creates a new resource registry
func NewRegistry() *Registry {
	return &Registry{
		resources: make(map[string]*Resource),
	}
}

// Register registers a new resource
func (r *Registry) Register(res *Resource) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if res.Name == "" {
		return fmt.Errorf("resource name cannot be empty")
	}
	if _, exists := r.resources[res.Name]; exists {
		return fmt.Errorf("resource %s is already registered", res.Name)
	}

	seen := make(map[string]bool, len(res.Fields))
	for _, f := range res.Fields {
		if seen[f.Name] {
			return fmt.Errorf("resource %s declares field %s twice", res.Name, f.Name)
		}
		seen[f.Name] = true
	}

	r.resources[res.Name] = res
	r.order = append(r.order, res.Name)
	return nil
}

// MustRegister registers resources and panics on failure; for fixtures
func (r *Registry) MustRegister(resources ...*Resource) *Registry {
	for _, res := range resources {
		if err := r.Register(res); err != nil {
			panic(err)
		}
	}
	return r
}

// Resource implements Oracle
func (r *Registry) Resource(name string) (*Resource, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res, exists := r.resources[name]
	return res, exists
}

// IsEmbedded reports whether name is a registered embedded resource
func (r *Registry) IsEmbedded(name string) bool {
	res, ok := r.Resource(name)
	return ok && res.Embedded
}

// List returns all resource names in registration order
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Sorted returns all resource names sorted alphabetically
func (r *Registry) Sorted() []string {
	names := r.List()
	sort.Strings(names)
	return names
}

// Len returns the number of registered resources
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.resources)
}

// ValidateReferences checks that every relationship destination and resource
// reference in the registry points at a registered resource
func (r *Registry) ValidateReferences() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range r.order {
		res := r.resources[name]
		for _, f := range res.Fields {
			from := res.Name + "." + f.Name
			if f.Relationship != nil {
				if _, ok := r.resources[f.Relationship.Destination]; !ok {
					return &UnknownResourceError{Name: f.Relationship.Destination, From: from}
				}
			}
			var missing string
			WalkType(f.Type, func(t Type) bool {
				if ref, ok := t.(*ResourceRef); ok {
					if _, ok := r.resources[ref.Resource]; !ok && missing == "" {
						missing = ref.Resource
					}
				}
				return missing == ""
			})
			if missing != "" {
				return &UnknownResourceError{Name: missing, From: from}
			}
		}
	}
	return nil
}

// WalkType calls fn for t and every type nested in it, depth first. Returning false
// from fn skips the children of that type.
func WalkType(t Type, fn func(Type) bool) {
	if t == nil || !fn(t) {
		return
	}
	switch v := t.(type) {
	case *Array:
		WalkType(v.Of, fn)
	case *Struct:
		for _, f := range v.Fields {
			WalkType(f.Type, fn)
		}
	case *Record:
		for _, f := range v.Fields {
			WalkType(f.Type, fn)
		}
	case *Union:
		for _, m := range v.Members {
			WalkType(m.Type, fn)
		}
	case *NewType:
		for _, f := range v.Constraints.Fields {
			WalkType(f.Type, fn)
		}
		WalkType(v.Of, fn)
	}
}
