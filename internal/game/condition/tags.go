package condition

// Tags is a counted tag set: each Add must be matched by a Remove before the
// tag disappears. In-flight abilities register their tags here so a step
// ending after its successor started does not strip the successor's tags.
type Tags struct {
	counts map[string]int
}

// NewTags creates an empty Tags.
func NewTags() *Tags {
	return &Tags{counts: make(map[string]int)}
}

// Add increments every tag.
func (t *Tags) Add(tags ...string) {
	for _, tag := range tags {
		t.counts[tag]++
	}
}

// Remove decrements every tag, dropping it at zero. Removing an absent tag is a no-op.
func (t *Tags) Remove(tags ...string) {
	for _, tag := range tags {
		n := t.counts[tag]
		if n <= 1 {
			delete(t.counts, tag)
			continue
		}
		t.counts[tag] = n - 1
	}
}

// Has reports whether tag has a positive count.
func (t *Tags) Has(tag string) bool {
	return t.counts[tag] > 0
}

// HasAny reports whether any of tags is present.
func (t *Tags) HasAny(tags ...string) bool {
	for _, tag := range tags {
		if t.Has(tag) {
			return true
		}
	}
	return false
}

// Count returns the current count for tag.
func (t *Tags) Count(tag string) int {
	return t.counts[tag]
}

// Clear drops every tag.
func (t *Tags) Clear() {
	clear(t.counts)
}
