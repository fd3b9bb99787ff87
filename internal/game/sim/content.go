package sim

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cory-johannsen/skirmish/internal/game/ability"
	"github.com/cory-johannsen/skirmish/internal/game/ai"
	"github.com/cory-johannsen/skirmish/internal/game/anim"
	"github.com/cory-johannsen/skirmish/internal/game/condition"
	"github.com/cory-johannsen/skirmish/internal/game/hitreact"
	"github.com/cory-johannsen/skirmish/internal/game/npc"
)

// ContentDirs locates the YAML content a world is built from.
type ContentDirs struct {
	Conditions string `mapstructure:"conditions"`
	Clips      string `mapstructure:"clips"`
	Abilities  string `mapstructure:"abilities"`
	NPCs       string `mapstructure:"npcs"`
	AI         string `mapstructure:"ai"`
	Scripts    string `mapstructure:"scripts"`
	// Encounters is a single YAML file of spawn points.
	Encounters string `mapstructure:"encounters"`
}

// DefaultContentDirs returns the repository layout under root.
func DefaultContentDirs(root string) ContentDirs {
	return ContentDirs{
		Conditions: filepath.Join(root, "conditions"),
		Clips:      filepath.Join(root, "clips"),
		Abilities:  filepath.Join(root, "abilities"),
		NPCs:       filepath.Join(root, "npcs"),
		AI:         filepath.Join(root, "ai"),
		Scripts:    filepath.Join(root, "scripts"),
		Encounters: filepath.Join(root, "encounters", "arena.yaml"),
	}
}

// Content is every static definition a World needs.
type Content struct {
	Conditions *condition.Registry
	Clips      *anim.Library
	Abilities  *ability.Catalog
	Templates  map[string]*npc.Template
	Profiles   *ai.Registry
	Spawns     []npc.SpawnPoint
}

// LoadContent reads every content directory and cross-checks the result.
//
// Postcondition: Returns a Content that passes Validate, or a wrapped error.
func LoadContent(dirs ContentDirs) (*Content, error) {
	conds, err := condition.LoadDirectory(dirs.Conditions)
	if err != nil {
		return nil, fmt.Errorf("loading conditions: %w", err)
	}
	clips, err := anim.LoadDirectory(dirs.Clips)
	if err != nil {
		return nil, fmt.Errorf("loading clips: %w", err)
	}
	abilities, err := ability.LoadDirectory(dirs.Abilities)
	if err != nil {
		return nil, fmt.Errorf("loading abilities: %w", err)
	}
	tmpls, err := npc.LoadTemplates(dirs.NPCs)
	if err != nil {
		return nil, fmt.Errorf("loading npc templates: %w", err)
	}
	templates := make(map[string]*npc.Template, len(tmpls))
	for _, t := range tmpls {
		if _, dup := templates[t.ID]; dup {
			return nil, fmt.Errorf("loading npc templates: duplicate id %q", t.ID)
		}
		templates[t.ID] = t
	}
	profs, err := ai.LoadProfiles(dirs.AI)
	if err != nil {
		return nil, fmt.Errorf("loading ai profiles: %w", err)
	}
	profiles := ai.NewRegistry()
	for _, p := range profs {
		if err := profiles.Register(p); err != nil {
			return nil, fmt.Errorf("loading ai profiles: %w", err)
		}
	}
	spawns, err := npc.LoadSpawnPoints(dirs.Encounters, templates)
	if err != nil {
		return nil, fmt.Errorf("loading encounters: %w", err)
	}
	c := &Content{
		Conditions: conds,
		Clips:      clips,
		Abilities:  abilities,
		Templates:  templates,
		Profiles:   profiles,
		Spawns:     spawns,
	}
	if err := c.Validate(hitreact.DefaultTuning()); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks every cross reference: template loadouts and profiles,
// ability clips, and the reaction clips named by tuning.
//
// Postcondition: Returns nil or one error naming every dangling reference.
func (c *Content) Validate(reactions hitreact.Tuning) error {
	var errs []string
	clip := func(owner, id string) {
		if _, ok := c.Clips.Get(id); !ok {
			errs = append(errs, fmt.Sprintf("%s: unknown clip %q", owner, id))
		}
	}
	for _, id := range c.Abilities.IDs() {
		def, _ := c.Abilities.Get(id)
		owner := "ability " + id
		switch def.Kind {
		case ability.KindCombo:
			for _, s := range def.Steps {
				clip(owner, s.Clip)
			}
		case ability.KindDodge:
			for d := ability.DirForward; d <= ability.DirForwardLeft; d++ {
				clip(owner, def.ClipPrefix+d.String())
			}
		case ability.KindSkill:
			clip(owner, def.Clip)
		}
		for _, flag := range def.BlockedBy {
			if _, ok := c.Conditions.Get(flag); !ok {
				errs = append(errs, fmt.Sprintf("%s: unknown blocked_by flag %q", owner, flag))
			}
		}
	}
	for _, q := range []hitreact.Quadrant{hitreact.Front, hitreact.Back, hitreact.Left, hitreact.Right} {
		clip("hit_reaction", reactions.ClipPrefix+q.String())
	}
	clip("hit_reaction", reactions.KnockdownClip)

	ids := make([]string, 0, len(c.Templates))
	for id := range c.Templates {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		t := c.Templates[id]
		owner := "npc template " + id
		for _, a := range t.Abilities {
			if _, ok := c.Abilities.Get(a); !ok {
				errs = append(errs, fmt.Sprintf("%s: unknown ability %q", owner, a))
			}
		}
		if t.AIProfile != "" {
			if _, ok := c.Profiles.Profile(t.AIProfile); !ok {
				errs = append(errs, fmt.Sprintf("%s: unknown ai profile %q", owner, t.AIProfile))
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("content validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
