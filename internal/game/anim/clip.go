// Package anim provides the animation-playback collaborator: a YAML clip
// library and a per-entity Timeline that plays one clip at a time and
// delivers named timeline events.
package anim

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Timeline event names the combat core subscribes to.
const (
	EventWindowOpen  = "window_open"
	EventWindowClose = "window_close"
	EventHit         = "hit"
)

// Notify is a named event at an offset into a clip.
type Notify struct {
	Name string        `yaml:"name"`
	At   time.Duration `yaml:"at"`
}

// Clip is the static definition of one animation clip.
type Clip struct {
	ID       string        `yaml:"id"`
	Duration time.Duration `yaml:"duration"`
	Events   []Notify      `yaml:"events"`
}

// Validate checks the clip is playable.
//
// Postcondition: Returns nil iff ID is set, Duration > 0, and every event
// is named and lies in [0, Duration].
func (c *Clip) Validate() error {
	var errs []string
	if c.ID == "" {
		errs = append(errs, "id must not be empty")
	}
	if c.Duration <= 0 {
		errs = append(errs, fmt.Sprintf("duration must be > 0, got %s", c.Duration))
	}
	for i, e := range c.Events {
		if e.Name == "" {
			errs = append(errs, fmt.Sprintf("events[%d]: name must not be empty", i))
		}
		if e.At < 0 || e.At > c.Duration {
			errs = append(errs, fmt.Sprintf("events[%d] %q: at %s outside [0, %s]", i, e.Name, e.At, c.Duration))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("clip %q: %s", c.ID, strings.Join(errs, "; "))
	}
	return nil
}

// EventAt returns the offset of the first event named name.
func (c *Clip) EventAt(name string) (time.Duration, bool) {
	for _, e := range c.Events {
		if e.Name == name {
			return e.At, true
		}
	}
	return 0, false
}

// Library holds clip definitions keyed by ID. Events of registered clips are
// sorted by offset.
type Library struct {
	clips map[string]*Clip
}

// NewLibrary creates an empty Library.
func NewLibrary() *Library {
	return &Library{clips: make(map[string]*Clip)}
}

// Register validates and adds c, replacing any clip with the same ID.
func (l *Library) Register(c *Clip) error {
	if err := c.Validate(); err != nil {
		return err
	}
	sort.SliceStable(c.Events, func(i, j int) bool { return c.Events[i].At < c.Events[j].At })
	l.clips[c.ID] = c
	return nil
}

// Get returns the clip for id.
func (l *Library) Get(id string) (*Clip, bool) {
	c, ok := l.clips[id]
	return c, ok
}

// Len returns the number of registered clips.
func (l *Library) Len() int { return len(l.clips) }

type clipFile struct {
	Clips []*Clip `yaml:"clips"`
}

// LoadDirectory reads every *.yaml file in dir; each file holds a top-level
// `clips:` list.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a non-nil Library, or an error naming the first bad file.
func LoadDirectory(dir string) (*Library, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading clip dir %q: %w", dir, err)
	}
	lib := NewLibrary()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		var f clipFile
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		for _, c := range f.Clips {
			if err := lib.Register(c); err != nil {
				return nil, fmt.Errorf("loading %q: %w", path, err)
			}
		}
	}
	return lib, nil
}
