package activity

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"sync"
)

var (
	// ErrUnknownKind is returned when a kind identifier has not been registered.
	ErrUnknownKind = errors.New("unknown activity kind")
	// ErrDuplicateKind is returned when a kind identifier is registered twice.
	ErrDuplicateKind = errors.New("duplicate activity kind")
	// ErrInvalidKind is returned when a KindSpec fails validation.
	ErrInvalidKind = errors.New("invalid activity kind")
)

// Registry maps kind identifiers to their descriptors and hooks. It is
// populated at startup and read concurrently afterwards.
type Registry struct {
	mu    sync.RWMutex
	kinds map[string]*Kind
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		kinds: make(map[string]*Kind),
	}
}

// Register validates spec and stores it with its hooks. A nil hooks value
// means the kind has neither a progress nor a finish action.
func (r *Registry) Register(spec KindSpec, hooks Hooks) (*Kind, error) {
	if spec.ID == "" {
		return nil, fmt.Errorf("%w: empty id", ErrInvalidKind)
	}
	if !spec.TimeBasis.valid() {
		return nil, fmt.Errorf("%w: %s has time basis %d", ErrInvalidKind, spec.ID, int(spec.TimeBasis))
	}
	if _, ok := categoryNames[spec.Category]; !ok {
		return nil, fmt.Errorf("%w: %s has category %d", ErrInvalidKind, spec.ID, int(spec.Category))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.kinds[spec.ID]; ok {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateKind, spec.ID)
	}
	k := newKind(spec, hooks)
	r.kinds[spec.ID] = k
	return k, nil
}

// Lookup returns the kind registered under id.
func (r *Registry) Lookup(id string) (*Kind, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	k, ok := r.kinds[id]
	return k, ok
}

// MustLookup returns the kind registered under id and panics if there is
// none. Asking for an unregistered kind is a programming error.
func (r *Registry) MustLookup(id string) *Kind {
	k, ok := r.Lookup(id)
	if !ok {
		panic(fmt.Sprintf("activity: %v: %q", ErrUnknownKind, id))
	}
	return k
}

// Hooks returns the hooks bound to id.
func (r *Registry) Hooks(id string) (Hooks, bool) {
	k, ok := r.Lookup(id)
	if !ok {
		return nil, false
	}
	return k.hooks, true
}

// Kinds returns all registered kinds sorted by identifier.
func (r *Registry) Kinds() []*Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Kind, 0, len(r.kinds))
	for _, k := range r.kinds {
		out = append(out, k)
	}
	slices.SortFunc(out, func(a, b *Kind) int {
		return cmp.Compare(a.id, b.id)
	})
	return out
}
