// Package nav is the flat-arena navigation collaborator: a walkability grid
// built from rectangular obstacles, grid A* path finding, and per-entity
// destination tracking.
package nav

import (
	"fmt"
	"math"
	"strings"

	"github.com/cory-johannsen/skirmish/internal/game/geom"
)

// Rect is an axis-aligned obstacle with its minimum corner at X, Y.
type Rect struct {
	X      float64 `mapstructure:"x" yaml:"x"`
	Y      float64 `mapstructure:"y" yaml:"y"`
	Width  float64 `mapstructure:"width" yaml:"width"`
	Height float64 `mapstructure:"height" yaml:"height"`
}

// Config describes an arena spanning [0, Width] × [0, Height].
type Config struct {
	Width       float64 `mapstructure:"width" yaml:"width"`
	Height      float64 `mapstructure:"height" yaml:"height"`
	CellSize    float64 `mapstructure:"cell_size" yaml:"cell_size"`
	AgentRadius float64 `mapstructure:"agent_radius" yaml:"agent_radius"`
	Obstacles   []Rect  `mapstructure:"obstacles" yaml:"obstacles"`
}

// DefaultConfig returns an open 4000×4000 arena with a few pillars.
func DefaultConfig() Config {
	return Config{
		Width:       4000,
		Height:      4000,
		CellSize:    50,
		AgentRadius: 40,
		Obstacles: []Rect{
			{X: 1200, Y: 1200, Width: 200, Height: 200},
			{X: 2600, Y: 1200, Width: 200, Height: 200},
			{X: 1900, Y: 2500, Width: 200, Height: 600},
		},
	}
}

// Validate checks the arena dimensions.
func (c Config) Validate() error {
	var errs []string
	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, "width and height must be > 0")
	}
	if c.CellSize <= 0 {
		errs = append(errs, "cell_size must be > 0")
	}
	if c.AgentRadius < 0 || 2*c.AgentRadius >= math.Min(c.Width, c.Height) {
		errs = append(errs, "agent_radius must be >= 0 and fit inside the arena")
	}
	for i, o := range c.Obstacles {
		if o.Width <= 0 || o.Height <= 0 {
			errs = append(errs, fmt.Sprintf("obstacles[%d]: width and height must be > 0", i))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("arena: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Arena answers walkability and path queries. It is immutable after
// construction.
type Arena struct {
	cfg        Config
	cols, rows int
	walkable   []bool
}

// NewArena builds the walkability grid for cfg.
func NewArena(cfg Config) (*Arena, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	a := &Arena{
		cfg:  cfg,
		cols: int(math.Ceil(cfg.Width / cfg.CellSize)),
		rows: int(math.Ceil(cfg.Height / cfg.CellSize)),
	}
	a.walkable = make([]bool, a.cols*a.rows)
	for row := 0; row < a.rows; row++ {
		for col := 0; col < a.cols; col++ {
			a.walkable[a.index(col, row)] = a.Walkable(a.center(col, row))
		}
	}
	return a, nil
}

// Config returns the arena description.
func (a *Arena) Config() Config { return a.cfg }

// Walkable reports whether an agent centred at p fits inside the bounds
// without overlapping an obstacle.
func (a *Arena) Walkable(p geom.Vec3) bool {
	r := a.cfg.AgentRadius
	if p.X < r || p.Y < r || p.X > a.cfg.Width-r || p.Y > a.cfg.Height-r {
		return false
	}
	for _, o := range a.cfg.Obstacles {
		if circleRectOverlap(p.X, p.Y, r, o) {
			return false
		}
	}
	return true
}

// ProjectToWalkable returns p when walkable, else the closest walkable cell
// centre within extent of p.
func (a *Arena) ProjectToWalkable(p geom.Vec3, extent float64) (geom.Vec3, bool) {
	p = p.Flat()
	if a.Walkable(p) {
		return p, true
	}
	col, row := a.locate(p)
	c, r, ok := a.closestWalkable(col, row)
	if !ok {
		return geom.Vec3{}, false
	}
	q := a.center(c, r)
	if q.Dist2D(p) > extent {
		return geom.Vec3{}, false
	}
	return q, true
}

// IsReachable reports whether to is walkable and connected to from.
func (a *Arena) IsReachable(from, to geom.Vec3) bool {
	return a.Walkable(to) && len(a.FindPath(from, to)) >= 2
}

// FindPath returns waypoints from from to to, starting with from and ending
// with to, with line-of-sight shortcuts applied. It returns nil when to is
// not walkable or no route exists.
func (a *Arena) FindPath(from, to geom.Vec3) []geom.Vec3 {
	from, to = from.Flat(), to.Flat()
	if !a.Walkable(to) {
		return nil
	}
	if a.clearLine(from, to) {
		return []geom.Vec3{from, to}
	}
	sc, sr := a.locate(from)
	if !a.isWalkable(sc, sr) {
		var ok bool
		if sc, sr, ok = a.closestWalkable(sc, sr); !ok {
			return nil
		}
	}
	gc, gr := a.locate(to)
	if !a.isWalkable(gc, gr) {
		var ok bool
		if gc, gr, ok = a.closestWalkable(gc, gr); !ok {
			return nil
		}
	}
	cells, ok := a.astar(cell{sc, sr}, cell{gc, gr})
	if !ok {
		return nil
	}
	raw := make([]geom.Vec3, 0, len(cells)+2)
	raw = append(raw, from)
	for _, c := range cells {
		raw = append(raw, a.center(c.col, c.row))
	}
	raw = append(raw, to)
	return a.smooth(raw)
}

// smooth drops waypoints that have line of sight past them.
func (a *Arena) smooth(path []geom.Vec3) []geom.Vec3 {
	out := []geom.Vec3{path[0]}
	i := 0
	for i < len(path)-1 {
		j := len(path) - 1
		for j > i+1 && !a.clearLine(path[i], path[j]) {
			j--
		}
		out = append(out, path[j])
		i = j
	}
	return out
}

// clearLine samples the segment at quarter-cell steps.
func (a *Arena) clearLine(from, to geom.Vec3) bool {
	d := from.Dist2D(to)
	steps := int(math.Ceil(d/(a.cfg.CellSize/4))) + 1
	for i := 1; i <= steps; i++ {
		if !a.Walkable(geom.Lerp(from, to, float64(i)/float64(steps))) {
			return false
		}
	}
	return true
}

func (a *Arena) index(col, row int) int { return row*a.cols + col }

func (a *Arena) inBounds(col, row int) bool {
	return col >= 0 && row >= 0 && col < a.cols && row < a.rows
}

func (a *Arena) isWalkable(col, row int) bool {
	return a.inBounds(col, row) && a.walkable[a.index(col, row)]
}

func (a *Arena) center(col, row int) geom.Vec3 {
	return geom.V((float64(col)+0.5)*a.cfg.CellSize, (float64(row)+0.5)*a.cfg.CellSize)
}

// locate returns the cell containing p, clamped into the grid.
func (a *Arena) locate(p geom.Vec3) (int, int) {
	col := int(clamp(p.X, 0, a.cfg.Width-1e-9) / a.cfg.CellSize)
	row := int(clamp(p.Y, 0, a.cfg.Height-1e-9) / a.cfg.CellSize)
	return min(col, a.cols-1), min(row, a.rows-1)
}

// closestWalkable breadth-first searches outward from a cell.
func (a *Arena) closestWalkable(col, row int) (int, int, bool) {
	if !a.inBounds(col, row) {
		return 0, 0, false
	}
	visited := map[int]struct{}{a.index(col, row): {}}
	queue := []cell{{col, row}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if a.walkable[a.index(cur.col, cur.row)] {
			return cur.col, cur.row, true
		}
		for _, d := range neighbors {
			nc, nr := cur.col+d.col, cur.row+d.row
			if !a.inBounds(nc, nr) {
				continue
			}
			idx := a.index(nc, nr)
			if _, seen := visited[idx]; seen {
				continue
			}
			visited[idx] = struct{}{}
			queue = append(queue, cell{nc, nr})
		}
	}
	return 0, 0, false
}

// circleRectOverlap reports whether a circle intersects an obstacle.
func circleRectOverlap(cx, cy, radius float64, o Rect) bool {
	dx := cx - clamp(cx, o.X, o.X+o.Width)
	dy := cy - clamp(cy, o.Y, o.Y+o.Height)
	return dx*dx+dy*dy < radius*radius
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
