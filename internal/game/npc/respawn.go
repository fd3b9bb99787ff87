package npc

import (
	"bytes"
	"fmt"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/skirmish/internal/game/geom"
)

// SpawnPoint holds the spawn configuration for one template at one place.
//
// Invariant: Max >= 1; RespawnDelay == 0 defers to the template's delay.
type SpawnPoint struct {
	// Group names the spawn point; population caps are counted per group.
	Group      string    `yaml:"group"`
	TemplateID string    `yaml:"template"`
	Max        int       `yaml:"max"`
	Home       geom.Vec3 `yaml:"home"`
	// Scatter is the radius around Home new spawns are placed within.
	Scatter      float64       `yaml:"scatter"`
	RespawnDelay time.Duration `yaml:"respawn_delay"`
}

// Population is the host that owns live combatants.
type Population interface {
	// Spawn creates one combatant from tmpl at sp.
	Spawn(tmpl *Template, sp SpawnPoint) error
	// Count returns the live combatants of templateID in group.
	Count(group, templateID string) int
}

// respawnEntry represents a single pending respawn.
type respawnEntry struct {
	templateID string
	group      string
	readyAt    time.Duration
}

// RespawnManager schedules and executes respawns against simulation time.
// It is safe for concurrent use.
//
// Invariant: entries with zero delay are never queued.
//
// Concurrency: Tick and Populate must not be called concurrently with each
// other or with themselves. Schedule may be called from any goroutine.
type RespawnManager struct {
	mu        sync.RWMutex
	spawns    map[string][]SpawnPoint // group → configs
	groups    []string                // group names in first-seen order
	templates map[string]*Template    // templateID → Template
	pending   []respawnEntry
}

// NewRespawnManager creates a RespawnManager from spawn points and a template map.
//
// Precondition: spawns and templates may be nil (manager becomes a no-op).
// Postcondition: Returns a non-nil RespawnManager.
func NewRespawnManager(spawns []SpawnPoint, templates map[string]*Template) *RespawnManager {
	if templates == nil {
		templates = make(map[string]*Template)
	}
	byGroup := make(map[string][]SpawnPoint)
	var groups []string
	for _, sp := range spawns {
		if _, seen := byGroup[sp.Group]; !seen {
			groups = append(groups, sp.Group)
		}
		byGroup[sp.Group] = append(byGroup[sp.Group], sp)
	}
	return &RespawnManager{
		spawns:    byGroup,
		groups:    groups,
		templates: templates,
	}
}

// Groups returns the configured group names in the order their first
// spawn point was listed.
func (r *RespawnManager) Groups() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.groups...)
}

// Populate fills group up to each spawn point's Max.
//
// Postcondition: for each template config in group, new combatants are
// spawned until the count reaches Max (subject to Spawn succeeding).
func (r *RespawnManager) Populate(group string, pop Population) {
	r.mu.RLock()
	configs := append([]SpawnPoint(nil), r.spawns[group]...)
	r.mu.RUnlock()

	for _, cfg := range configs {
		// r.templates is read-only after construction; no lock required.
		tmpl, ok := r.templates[cfg.TemplateID]
		if !ok {
			continue
		}
		for i := pop.Count(group, cfg.TemplateID); i < cfg.Max; i++ {
			if err := pop.Spawn(tmpl, cfg); err != nil {
				// Spawn failure is non-fatal; the next Populate call will retry.
				continue
			}
		}
	}
}

// Schedule enqueues a respawn for templateID in group at now+delay.
// No-op when delay == 0 (template does not respawn).
//
// Postcondition: entry is added to pending with readyAt = now+delay iff delay > 0.
func (r *RespawnManager) Schedule(templateID, group string, now, delay time.Duration) {
	if delay <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = append(r.pending, respawnEntry{
		templateID: templateID,
		group:      group,
		readyAt:    now + delay,
	})
}

// Pending returns the number of queued respawns.
func (r *RespawnManager) Pending() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.pending)
}

// Tick drains all entries whose readyAt <= now, checks the population cap for
// each, and spawns up to the remaining capacity.
//
// Postcondition: pending entries with readyAt <= now are consumed.
func (r *RespawnManager) Tick(now time.Duration, pop Population) {
	r.mu.Lock()
	var ready, future []respawnEntry
	for _, e := range r.pending {
		if e.readyAt <= now {
			ready = append(ready, e)
		} else {
			future = append(future, e)
		}
	}
	r.pending = future
	r.mu.Unlock()

	for _, e := range ready {
		tmpl, ok := r.templates[e.templateID]
		if !ok {
			continue
		}
		cfg, ok := r.configFor(e.group, e.templateID)
		if !ok {
			continue
		}
		if pop.Count(e.group, e.templateID) >= cfg.Max {
			continue
		}
		_ = pop.Spawn(tmpl, cfg)
	}
}

// ResolvedDelay returns the effective respawn delay for templateID in group:
// the spawn point's RespawnDelay if non-zero, otherwise the template's.
// Returns 0 when neither is set or the template is unknown.
//
// Postcondition: Returns >= 0.
func (r *RespawnManager) ResolvedDelay(templateID, group string) time.Duration {
	if cfg, ok := r.configFor(group, templateID); ok && cfg.RespawnDelay > 0 {
		return cfg.RespawnDelay
	}
	tmpl, ok := r.templates[templateID]
	if !ok {
		return 0
	}
	return tmpl.Delay()
}

func (r *RespawnManager) configFor(group, templateID string) (SpawnPoint, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, cfg := range r.spawns[group] {
		if cfg.TemplateID == templateID {
			return cfg, true
		}
	}
	return SpawnPoint{}, false
}

// encounterFile is the YAML layout of a spawn list.
type encounterFile struct {
	Spawns []SpawnPoint `yaml:"spawns"`
}

// LoadSpawnPoints reads the spawn list at path and checks every entry names
// a template in templates.
func LoadSpawnPoints(path string, templates map[string]*Template) ([]SpawnPoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}
	var f encounterFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parsing %q: %w", path, err)
	}
	for i, sp := range f.Spawns {
		if sp.Group == "" {
			return nil, fmt.Errorf("%s: spawns[%d]: group must not be empty", path, i)
		}
		if _, ok := templates[sp.TemplateID]; !ok {
			return nil, fmt.Errorf("%s: spawns[%d]: unknown template %q", path, i, sp.TemplateID)
		}
		if sp.Max < 1 {
			return nil, fmt.Errorf("%s: spawns[%d]: max must be >= 1", path, i)
		}
		if sp.Scatter < 0 || sp.RespawnDelay < 0 {
			return nil, fmt.Errorf("%s: spawns[%d]: scatter and respawn_delay must be >= 0", path, i)
		}
	}
	return f.Spawns, nil
}
