package ability

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
)

// Kind selects which ability implementation a definition builds.
type Kind string

const (
	KindCombo Kind = "combo"
	KindGuard Kind = "guard"
	KindDodge Kind = "dodge"
	KindSkill Kind = "skill"
)

// TagAttack marks every in-flight offensive ability.
const TagAttack = "ability.attack"

// HitSpec describes the strike a timeline `hit` event delivers.
type HitSpec struct {
	PowerScale float64 `yaml:"power_scale"`
	DamageKind string  `yaml:"damage_kind"`
	// Reach is the strike distance in world units.
	Reach float64 `yaml:"reach"`
	// Arc is the full cone width in degrees centred on the attacker's forward.
	Arc      float64 `yaml:"arc"`
	Reaction string  `yaml:"reaction"`
}

func (h HitSpec) validate(where string) []string {
	var errs []string
	if h.PowerScale <= 0 {
		errs = append(errs, fmt.Sprintf("%s: power_scale must be > 0", where))
	}
	if _, err := combat.ParseKind(h.DamageKind); err != nil {
		errs = append(errs, fmt.Sprintf("%s: %v", where, err))
	}
	if h.Reach <= 0 {
		errs = append(errs, fmt.Sprintf("%s: reach must be > 0", where))
	}
	if h.Arc <= 0 || h.Arc > 360 {
		errs = append(errs, fmt.Sprintf("%s: arc must be in (0, 360]", where))
	}
	return errs
}

// Kind returns the parsed damage kind; invalid values were rejected by Validate.
func (h HitSpec) Kind() combat.Kind {
	k, _ := combat.ParseKind(h.DamageKind)
	return k
}

// Step is one combo step.
type Step struct {
	Tag  string  `yaml:"tag"`
	Clip string  `yaml:"clip"`
	Cost float64 `yaml:"cost"`
	Hit  HitSpec `yaml:"hit"`
}

// Def is the static definition of one ability, loaded from YAML. Fields not
// used by an ability's Kind must be left empty.
type Def struct {
	ID   string `yaml:"id"`
	Kind Kind   `yaml:"kind"`
	// Action is the action class checked against condition restrictions.
	Action string   `yaml:"action"`
	Tags   []string `yaml:"tags"`
	// BlockedBy lists status flags that refuse activation.
	BlockedBy []string `yaml:"blocked_by"`
	// Cancels lists tags whose in-flight abilities are cancelled on activation.
	Cancels       []string `yaml:"cancels"`
	RequiresArmed bool     `yaml:"requires_armed"`
	FullBody      bool     `yaml:"full_body"`
	Cost          float64  `yaml:"cost"`

	// combo
	Steps []Step `yaml:"steps"`

	// dodge
	ClipPrefix     string        `yaml:"clip_prefix"`
	IFrameOffset   time.Duration `yaml:"iframe_offset"`
	IFrameDuration time.Duration `yaml:"iframe_duration"`

	// skill
	Clip         string        `yaml:"clip"`
	Cooldown     time.Duration `yaml:"cooldown"`
	Hit          HitSpec       `yaml:"hit"`
	SuperArmor   bool          `yaml:"super_armor"`
	Precondition string        `yaml:"precondition"`
}

// Validate checks the definition against the rules for its Kind.
//
// Postcondition: Returns nil or one error naming every violation.
func (d *Def) Validate() error {
	var errs []string
	if d.ID == "" {
		errs = append(errs, "id must not be empty")
	}
	if d.Cost < 0 {
		errs = append(errs, "cost must be >= 0")
	}
	switch d.Kind {
	case KindCombo:
		if len(d.Steps) == 0 {
			errs = append(errs, "combo needs at least one step")
		}
		seen := make(map[string]bool, len(d.Steps))
		for i, s := range d.Steps {
			where := fmt.Sprintf("steps[%d]", i)
			if s.Tag == "" || s.Clip == "" {
				errs = append(errs, where+": tag and clip are required")
			}
			if seen[s.Tag] {
				errs = append(errs, fmt.Sprintf("%s: duplicate tag %q", where, s.Tag))
			}
			seen[s.Tag] = true
			if s.Cost < 0 {
				errs = append(errs, where+": cost must be >= 0")
			}
			errs = append(errs, s.Hit.validate(where+".hit")...)
		}
	case KindGuard:
	case KindDodge:
		if d.ClipPrefix == "" {
			errs = append(errs, "dodge needs clip_prefix")
		}
		if d.IFrameOffset < 0 || d.IFrameDuration < 0 {
			errs = append(errs, "iframe_offset and iframe_duration must be >= 0")
		}
	case KindSkill:
		if d.Clip == "" {
			errs = append(errs, "skill needs clip")
		}
		if d.Cooldown < 0 {
			errs = append(errs, "cooldown must be >= 0")
		}
		errs = append(errs, d.Hit.validate("hit")...)
	default:
		errs = append(errs, fmt.Sprintf("unknown kind %q", d.Kind))
	}
	if len(errs) > 0 {
		return fmt.Errorf("ability %q: %s", d.ID, strings.Join(errs, "; "))
	}
	return nil
}

// HasTag reports whether tag is one of the definition's own tags.
func (d *Def) HasTag(tag string) bool {
	for _, t := range d.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Catalog holds ability definitions keyed by ID.
type Catalog struct {
	defs map[string]*Def
}

// NewCatalog creates an empty Catalog.
func NewCatalog() *Catalog {
	return &Catalog{defs: make(map[string]*Def)}
}

// Register validates and adds def.
func (c *Catalog) Register(def *Def) error {
	if err := def.Validate(); err != nil {
		return err
	}
	c.defs[def.ID] = def
	return nil
}

// Get returns the definition for id.
func (c *Catalog) Get(id string) (*Def, bool) {
	d, ok := c.defs[id]
	return d, ok
}

// IDs returns every registered id sorted.
func (c *Catalog) IDs() []string {
	out := make([]string, 0, len(c.defs))
	for id := range c.defs {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

type defFile struct {
	Abilities []*Def `yaml:"abilities"`
}

// LoadDirectory reads every *.yaml file in dir; each holds a top-level
// `abilities:` list.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a non-nil Catalog, or an error naming the first bad file.
func LoadDirectory(dir string) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading ability dir %q: %w", dir, err)
	}
	cat := NewCatalog()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		var f defFile
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		for _, d := range f.Abilities {
			if err := cat.Register(d); err != nil {
				return nil, fmt.Errorf("loading %q: %w", path, err)
			}
		}
	}
	return cat, nil
}
