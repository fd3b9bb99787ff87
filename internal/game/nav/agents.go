package nav

import "github.com/cory-johannsen/skirmish/internal/game/geom"

type route struct {
	dest   geom.Vec3
	points []geom.Vec3
	next   int
}

// Agents tracks one destination per entity over an Arena and turns it into
// a steering direction each tick. It is not safe for concurrent use.
type Agents struct {
	*Arena
	routes map[string]*route
}

// NewAgents returns an empty tracker over arena.
func NewAgents(arena *Arena) *Agents {
	return &Agents{Arena: arena, routes: make(map[string]*route)}
}

// SetDestination replaces id's destination. The path is planned on the
// next Steer.
func (g *Agents) SetDestination(id string, p geom.Vec3) {
	g.routes[id] = &route{dest: p.Flat()}
}

// Destination returns id's pending destination.
func (g *Agents) Destination(id string) (geom.Vec3, bool) {
	r, ok := g.routes[id]
	if !ok {
		return geom.Vec3{}, false
	}
	return r.dest, true
}

// Clear drops id's destination.
func (g *Agents) Clear(id string) { delete(g.routes, id) }

// Steer returns the unit direction from from toward id's next waypoint.
//
// Postcondition: Returns false and drops the route when id has arrived or
// no path exists.
func (g *Agents) Steer(id string, from geom.Vec3) (geom.Vec3, bool) {
	r, ok := g.routes[id]
	if !ok {
		return geom.Vec3{}, false
	}
	if r.points == nil {
		r.points = g.FindPath(from, r.dest)
		r.next = 1
		if len(r.points) < 2 {
			delete(g.routes, id)
			return geom.Vec3{}, false
		}
	}
	eps := g.cfg.CellSize / 4
	for r.next < len(r.points) && from.Dist2D(r.points[r.next]) <= eps {
		r.next++
	}
	if r.next >= len(r.points) {
		delete(g.routes, id)
		return geom.Vec3{}, false
	}
	return r.points[r.next].Sub(from).Normal2D(), true
}
