// Package npc provides combatant template definitions and spawn-point
// respawn scheduling.
package npc

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/skirmish/internal/game/stats"
)

// Template defines a reusable combatant archetype loaded from YAML.
type Template struct {
	ID          string     `yaml:"id"`
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Team        string     `yaml:"team"`
	Stats       stats.Base `yaml:"stats"`
	// Abilities is the loadout resolved against the ability catalog at spawn.
	Abilities []string `yaml:"abilities"`
	Armed     bool     `yaml:"armed"`
	// AIProfile is the ai profile ID; empty means the entity is not AI driven.
	AIProfile string  `yaml:"ai_profile"`
	MoveSpeed float64 `yaml:"move_speed"`
	// RespawnDelay is the duration string (e.g. "20s") before a dead
	// combatant of this template respawns. Empty means it does not respawn.
	RespawnDelay string `yaml:"respawn_delay"`
}

// Validate checks that the template satisfies basic invariants.
//
// Precondition: t must not be nil.
// Postcondition: Returns nil iff ID, Name and Team are non-empty, the stat
// line is spawnable, MoveSpeed >= 0, and RespawnDelay is empty or a valid
// non-negative duration.
func (t *Template) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("npc template: id must not be empty")
	}
	if t.Name == "" {
		return fmt.Errorf("npc template %q: name must not be empty", t.ID)
	}
	if t.Team == "" {
		return fmt.Errorf("npc template %q: team must not be empty", t.ID)
	}
	if err := t.Stats.Validate(); err != nil {
		return fmt.Errorf("npc template %q: %w", t.ID, err)
	}
	if t.MoveSpeed < 0 {
		return fmt.Errorf("npc template %q: move_speed must be >= 0", t.ID)
	}
	if t.RespawnDelay != "" {
		d, err := time.ParseDuration(t.RespawnDelay)
		if err != nil {
			return fmt.Errorf("npc template %q: respawn_delay %q is not a valid duration: %w", t.ID, t.RespawnDelay, err)
		}
		if d < 0 {
			return fmt.Errorf("npc template %q: respawn_delay must be >= 0", t.ID)
		}
	}
	return nil
}

// Delay returns the parsed RespawnDelay, or 0 when unset.
//
// Precondition: t has passed Validate.
func (t *Template) Delay() time.Duration {
	if t.RespawnDelay == "" {
		return 0
	}
	d, _ := time.ParseDuration(t.RespawnDelay)
	return d
}

// LoadTemplateFromBytes parses a single template from raw YAML bytes.
// Unknown fields are rejected.
//
// Postcondition: Returns a validated *Template, or an error.
func LoadTemplateFromBytes(data []byte) (*Template, error) {
	var tmpl Template
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&tmpl); err != nil {
		return nil, fmt.Errorf("parsing template YAML: %w", err)
	}
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// LoadTemplates reads all *.yaml files in dir and returns the parsed templates.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all templates or an error on the first parse or validate
// failure; on error, the partial result is discarded.
func LoadTemplates(dir string) ([]*Template, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading npc dir %q: %w", dir, err)
	}

	var templates []*Template
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}

		tmpl, err := LoadTemplateFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		templates = append(templates, tmpl)
	}
	return templates, nil
}
