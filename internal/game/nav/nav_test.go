package nav_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/game/geom"
	"github.com/cory-johannsen/skirmish/internal/game/nav"
)

// wall splits a 1000×1000 arena with a gap at the top.
func wallArena(t testing.TB) *nav.Arena {
	a, err := nav.NewArena(nav.Config{
		Width: 1000, Height: 1000, CellSize: 50, AgentRadius: 20,
		Obstacles: []nav.Rect{{X: 450, Y: 0, Width: 100, Height: 800}},
	})
	require.NoError(t, err)
	return a
}

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, nav.DefaultConfig().Validate())
	err := nav.Config{Width: 0, Height: 10, CellSize: 0, Obstacles: []nav.Rect{{}}}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cell_size")
	assert.Contains(t, err.Error(), "obstacles[0]")
}

func TestArena_Walkable(t *testing.T) {
	a := wallArena(t)
	assert.True(t, a.Walkable(geom.V(100, 100)))
	assert.False(t, a.Walkable(geom.V(10, 100)), "agent radius crosses the edge")
	assert.False(t, a.Walkable(geom.V(500, 100)), "inside wall")
	assert.False(t, a.Walkable(geom.V(440, 100)), "radius overlaps wall")
	assert.False(t, a.Walkable(geom.V(-5, -5)))
}

func TestArena_ProjectToWalkable(t *testing.T) {
	a := wallArena(t)
	p, ok := a.ProjectToWalkable(geom.V(300, 300), 10)
	require.True(t, ok)
	assert.Equal(t, geom.V(300, 300), p)

	p, ok = a.ProjectToWalkable(geom.V(490, 300), 100)
	require.True(t, ok)
	assert.True(t, a.Walkable(p))
	assert.LessOrEqual(t, p.Dist2D(geom.V(490, 300)), 100.0)

	_, ok = a.ProjectToWalkable(geom.V(500, 300), 10)
	assert.False(t, ok, "nothing walkable within extent")
}

func TestArena_FindPath_StraightLine(t *testing.T) {
	a := wallArena(t)
	path := a.FindPath(geom.V(100, 100), geom.V(300, 400))
	assert.Equal(t, []geom.Vec3{geom.V(100, 100), geom.V(300, 400)}, path)
}

func TestArena_FindPath_AroundWall(t *testing.T) {
	a := wallArena(t)
	from, to := geom.V(200, 200), geom.V(800, 200)
	path := a.FindPath(from, to)
	require.GreaterOrEqual(t, len(path), 3)
	assert.Equal(t, from, path[0])
	assert.Equal(t, to, path[len(path)-1])
	over := false
	for _, p := range path {
		if p.Y > 800 {
			over = true
		}
	}
	assert.True(t, over, "detours through the gap")
	assert.True(t, a.IsReachable(from, to))
}

func TestArena_FindPath_Unreachable(t *testing.T) {
	a, err := nav.NewArena(nav.Config{
		Width: 1000, Height: 1000, CellSize: 50, AgentRadius: 20,
		Obstacles: []nav.Rect{{X: 450, Y: 0, Width: 100, Height: 1000}},
	})
	require.NoError(t, err)
	assert.Nil(t, a.FindPath(geom.V(200, 200), geom.V(800, 200)))
	assert.False(t, a.IsReachable(geom.V(200, 200), geom.V(800, 200)))
	assert.Nil(t, a.FindPath(geom.V(200, 200), geom.V(500, 200)), "goal inside obstacle")
}

func TestAgents_SteerFollowsRouteThenArrives(t *testing.T) {
	g := nav.NewAgents(wallArena(t))
	g.SetDestination("e", geom.V(300, 100))
	dest, ok := g.Destination("e")
	require.True(t, ok)
	assert.Equal(t, geom.V(300, 100), dest)

	dir, ok := g.Steer("e", geom.V(100, 100))
	require.True(t, ok)
	assert.True(t, dir.Equal(geom.V(1, 0), 1e-9))

	_, ok = g.Steer("e", geom.V(295, 100))
	assert.False(t, ok, "within arrival radius")
	_, ok = g.Destination("e")
	assert.False(t, ok)
}

func TestAgents_SteerDropsUnroutable(t *testing.T) {
	g := nav.NewAgents(wallArena(t))
	g.SetDestination("e", geom.V(500, 100))
	_, ok := g.Steer("e", geom.V(100, 100))
	assert.False(t, ok)
	g.SetDestination("e", geom.V(300, 300))
	g.Clear("e")
	_, ok = g.Steer("e", geom.V(100, 100))
	assert.False(t, ok)
}

func TestPropertyFindPath_EndpointsAndWalkable(t *testing.T) {
	a := wallArena(t)
	rapid.Check(t, func(rt *rapid.T) {
		from := geom.V(rapid.Float64Range(30, 970).Draw(rt, "fx"), rapid.Float64Range(30, 970).Draw(rt, "fy"))
		to := geom.V(rapid.Float64Range(30, 970).Draw(rt, "tx"), rapid.Float64Range(30, 970).Draw(rt, "ty"))
		if !a.Walkable(from) || !a.Walkable(to) {
			rt.Skip("endpoint blocked")
		}
		path := a.FindPath(from, to)
		if len(path) < 2 {
			rt.Fatalf("no path from %v to %v", from, to)
		}
		if path[0] != from || path[len(path)-1] != to {
			rt.Fatalf("endpoints not preserved: %v", path)
		}
		for _, p := range path[1 : len(path)-1] {
			if !a.Walkable(p) {
				rt.Fatalf("waypoint %v not walkable", p)
			}
		}
	})
}
