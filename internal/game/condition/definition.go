package condition

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Well-known flag ids written by the combat core.
const (
	Armed        = "armed"
	Attacking    = "attacking"
	Guarding     = "guarding"
	Dodging      = "dodging"
	Invulnerable = "invulnerable"
	HitReact     = "hit_react"
	Dead         = "dead"
)

// Def is the static definition of a status flag, loaded from YAML.
type Def struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	// ExclusiveWith lists flag ids that may not be present at the same time.
	ExclusiveWith []string `yaml:"exclusive_with"`
	// RestrictActions lists ability action kinds ("attack", "guard", "dodge", "skill")
	// refused while the flag is present.
	RestrictActions []string `yaml:"restrict_actions"`
	// RestrictMovement stops locomotion while the flag is present.
	RestrictMovement bool `yaml:"restrict_movement"`
}

// Validate checks the definition is usable.
func (d *Def) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("condition: id must not be empty")
	}
	for _, x := range d.ExclusiveWith {
		if x == d.ID {
			return fmt.Errorf("condition %q: may not be exclusive with itself", d.ID)
		}
	}
	return nil
}

// Registry holds all known Defs keyed by ID. Exclusivity is symmetric: if a
// lists b, b is treated as listing a.
type Registry struct {
	defs      map[string]*Def
	exclusive map[string]map[string]bool
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		defs:      make(map[string]*Def),
		exclusive: make(map[string]map[string]bool),
	}
}

// Register adds def to the registry, overwriting any existing entry with the same ID.
//
// Precondition: def must not be nil.
// Postcondition: Returns an error and leaves the registry unchanged if def is invalid.
func (r *Registry) Register(def *Def) error {
	if err := def.Validate(); err != nil {
		return err
	}
	r.defs[def.ID] = def
	for _, other := range def.ExclusiveWith {
		r.link(def.ID, other)
		r.link(other, def.ID)
	}
	return nil
}

func (r *Registry) link(a, b string) {
	m, ok := r.exclusive[a]
	if !ok {
		m = make(map[string]bool)
		r.exclusive[a] = m
	}
	m[b] = true
}

// Get returns the Def for id, or (nil, false) if not found.
func (r *Registry) Get(id string) (*Def, bool) {
	d, ok := r.defs[id]
	return d, ok
}

// Exclusive reports whether flags a and b may not coexist.
func (r *Registry) Exclusive(a, b string) bool {
	return r.exclusive[a][b]
}

// All returns the registered Defs sorted by ID.
func (r *Registry) All() []*Def {
	out := make([]*Def, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LoadDirectory reads every *.yaml file in dir, parses each as a Def,
// and returns a populated Registry.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a non-nil Registry, or an error if any file fails to parse or validate.
func LoadDirectory(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading condition dir %q: %w", dir, err)
	}
	reg := NewRegistry()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		var def Def
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&def); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		if err := reg.Register(&def); err != nil {
			return nil, fmt.Errorf("registering %q: %w", path, err)
		}
	}
	return reg, nil
}
