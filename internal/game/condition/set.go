package condition

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/cory-johannsen/skirmish/internal/game/clock"
)

// ErrExclusive is returned when adding a flag would violate an exclusivity rule.
var ErrExclusive = errors.New("condition: mutually exclusive flag present")

// Flags is the status-flag collaborator: named boolean flags other systems
// may query.
type Flags interface {
	Add(id string) error
	Remove(id string)
	Has(id string) bool
}

// Set tracks the status flags currently applied to one entity, each with an
// absolute expiry (clock.Never for flags removed explicitly).
// It is not safe for concurrent use; the caller must serialise access.
type Set struct {
	reg   *Registry
	flags map[string]time.Duration
}

// NewSet creates an empty Set. A nil registry disables exclusivity and
// restriction rules.
func NewSet(reg *Registry) *Set {
	if reg == nil {
		reg = NewRegistry()
	}
	return &Set{reg: reg, flags: make(map[string]time.Duration)}
}

// Add sets id with no expiry.
func (s *Set) Add(id string) error {
	return s.AddUntil(id, clock.Never)
}

// AddUntil sets id until expiresAt. Re-adding a present flag keeps the later
// of the two expiries.
//
// Postcondition: On success Has(id) is true. Returns an error wrapping
// ErrExclusive, leaving the set unchanged, if an exclusive flag is present.
func (s *Set) AddUntil(id string, expiresAt time.Duration) error {
	for other := range s.flags {
		if s.reg.Exclusive(id, other) {
			return fmt.Errorf("adding %q while %q is set: %w", id, other, ErrExclusive)
		}
	}
	if cur, ok := s.flags[id]; ok && cur >= expiresAt {
		return nil
	}
	s.flags[id] = expiresAt
	return nil
}

// Remove clears id. Removing an absent flag is a no-op.
//
// Postcondition: Has(id) is false.
func (s *Set) Remove(id string) {
	delete(s.flags, id)
}

// Has reports whether id is currently set.
func (s *Set) Has(id string) bool {
	_, ok := s.flags[id]
	return ok
}

// ExpiresAt returns the expiry of id, or (0, false) if it is not set.
func (s *Set) ExpiresAt(id string) (time.Duration, bool) {
	t, ok := s.flags[id]
	return t, ok
}

// Expire removes every flag whose expiry is at or before now and returns
// their ids sorted.
//
// Postcondition: For every id in the returned slice, Has(id) is false.
func (s *Set) Expire(now time.Duration) []string {
	var expired []string
	for id, at := range s.flags {
		if at != clock.Never && at <= now {
			expired = append(expired, id)
			delete(s.flags, id)
		}
	}
	sort.Strings(expired)
	return expired
}

// FirstPresent returns the first of ids that is set.
func (s *Set) FirstPresent(ids []string) (string, bool) {
	for _, id := range ids {
		if s.Has(id) {
			return id, true
		}
	}
	return "", false
}

// All returns the set flag ids sorted.
func (s *Set) All() []string {
	out := make([]string, 0, len(s.flags))
	for id := range s.flags {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Clear removes every flag.
func (s *Set) Clear() {
	clear(s.flags)
}
