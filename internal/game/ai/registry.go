package ai

import "fmt"

// Registry indexes Profiles by ID.
//
// Invariant: each profile ID is registered at most once.
type Registry struct {
	profiles map[string]*Profile
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{profiles: make(map[string]*Profile)}
}

// Register stores p.
//
// Precondition: p must not be nil.
// Postcondition: returns error on ID collision.
func (r *Registry) Register(p *Profile) error {
	if _, exists := r.profiles[p.ID]; exists {
		return fmt.Errorf("ai.Registry: profile %q already registered", p.ID)
	}
	r.profiles[p.ID] = p
	return nil
}

// Profile returns the profile for id, or false if not registered.
func (r *Registry) Profile(id string) (*Profile, bool) {
	p, ok := r.profiles[id]
	return p, ok
}

// Len returns the number of registered profiles.
func (r *Registry) Len() int { return len(r.profiles) }
