package ai_test

import (
	"sort"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/geom"
	"github.com/cory-johannsen/skirmish/internal/testutil"
)

type fakeWorld struct {
	locs     map[string]geom.Vec3
	dead     map[string]bool
	walkable func(p geom.Vec3) bool
}

func newWorld() *fakeWorld {
	return &fakeWorld{locs: map[string]geom.Vec3{}, dead: map[string]bool{}}
}

func (w *fakeWorld) ProjectToWalkable(p geom.Vec3, _ float64) (geom.Vec3, bool) {
	if w.walkable != nil && !w.walkable(p) {
		return geom.Vec3{}, false
	}
	return p, true
}

func (w *fakeWorld) Location(id string) (geom.Vec3, bool) {
	l, ok := w.locs[id]
	return l, ok
}

func (w *fakeWorld) IsAlive(id string) bool {
	_, ok := w.locs[id]
	return ok && !w.dead[id]
}

func (w *fakeWorld) Hostiles(self string) []string {
	var out []string
	for id := range w.locs {
		if id != self {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

type fakeNav struct {
	unreachable bool
	pathLen     int
	dest        map[string]geom.Vec3
}

func newNav() *fakeNav { return &fakeNav{pathLen: 2, dest: map[string]geom.Vec3{}} }

func (n *fakeNav) SetDestination(id string, p geom.Vec3) { n.dest[id] = p }
func (n *fakeNav) IsReachable(_, _ geom.Vec3) bool       { return !n.unreachable }
func (n *fakeNav) FindPath(from, to geom.Vec3) []geom.Vec3 {
	out := []geom.Vec3{from}
	for i := 1; i < n.pathLen; i++ {
		out = append(out, to)
	}
	return out
}

func roller(floats []float64, ints []int) *dice.Roller {
	return dice.NewLoggedRoller(&testutil.FixedSource{Floats: floats, Ints: ints}, zap.NewNop())
}
