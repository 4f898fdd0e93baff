package naming

import (
	"errors"
	"fmt"
	"sync"
)

// ErrPathConflict is returned when a unit asks for an output path that
// another unit of the same run already owns.
var ErrPathConflict = errors.New("output path already claimed by another unit")

// Registry tracks which unit owns each output path during a run. Claims
// are all-or-nothing per unit. All methods are goroutine-safe.
type Registry struct {
	mu     sync.Mutex
	owners map[string]string // output path → owning unit ID
}

// NewRegistry creates a ready-to-use registry.
func NewRegistry() *Registry {
	return &Registry{owners: make(map[string]string)}
}

// Claim records owner for every path. If any path is held by a different
// owner nothing is recorded and the error names the first conflict.
// Re-claiming paths already held by owner succeeds.
func (r *Registry) Claim(owner string, paths []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range paths {
		if held, ok := r.owners[p]; ok && held != owner {
			return fmt.Errorf("%w: %s (held by %s)", ErrPathConflict, p, held)
		}
	}
	for _, p := range paths {
		r.owners[p] = owner
	}
	return nil
}

// Owner returns the unit that claimed path, if any.
func (r *Registry) Owner(path string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.owners[path]
	return o, ok
}
