package nav

import (
	"container/heap"
	"math"
)

type cell struct {
	col, row int
}

type neighbor struct {
	col, row int
	cost     float64
	diagonal bool
}

var neighbors = [...]neighbor{
	{col: 0, row: -1, cost: 1},
	{col: 1, row: 0, cost: 1},
	{col: 0, row: 1, cost: 1},
	{col: -1, row: 0, cost: 1},
	{col: 1, row: -1, cost: math.Sqrt2, diagonal: true},
	{col: 1, row: 1, cost: math.Sqrt2, diagonal: true},
	{col: -1, row: 1, cost: math.Sqrt2, diagonal: true},
	{col: -1, row: -1, cost: math.Sqrt2, diagonal: true},
}

// octile distance
func heuristic(a, b cell) float64 {
	dx := math.Abs(float64(a.col - b.col))
	dy := math.Abs(float64(a.row - b.row))
	if dx > dy {
		return dx + (math.Sqrt2-1)*dy
	}
	return dy + (math.Sqrt2-1)*dx
}

type node struct {
	at     cell
	g, f   float64
	index  int
	parent *node
}

type openSet []*node

func (q openSet) Len() int           { return len(q) }
func (q openSet) Less(i, j int) bool { return q[i].f < q[j].f }
func (q openSet) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *openSet) Push(x any) {
	n := x.(*node)
	n.index = len(*q)
	*q = append(*q, n)
}

func (q *openSet) Pop() any {
	old := *q
	n := old[len(old)-1]
	old[len(old)-1] = nil
	n.index = -1
	*q = old[:len(old)-1]
	return n
}

// canCut forbids diagonal moves that clip a blocked corner.
func (a *Arena) canCut(from cell, d neighbor) bool {
	if !d.diagonal {
		return true
	}
	return a.isWalkable(from.col+d.col, from.row) && a.isWalkable(from.col, from.row+d.row)
}

func (a *Arena) astar(start, goal cell) ([]cell, bool) {
	open := &openSet{}
	heap.Init(open)
	heap.Push(open, &node{at: start, f: heuristic(start, goal)})
	gScore := map[int]float64{a.index(start.col, start.row): 0}
	closed := make(map[int]struct{})

	for open.Len() > 0 {
		cur := heap.Pop(open).(*node)
		idx := a.index(cur.at.col, cur.at.row)
		if _, seen := closed[idx]; seen {
			continue
		}
		closed[idx] = struct{}{}
		if cur.at == goal {
			return reconstruct(cur), true
		}
		for _, d := range neighbors {
			next := cell{cur.at.col + d.col, cur.at.row + d.row}
			if !a.isWalkable(next.col, next.row) || !a.canCut(cur.at, d) {
				continue
			}
			nIdx := a.index(next.col, next.row)
			if _, seen := closed[nIdx]; seen {
				continue
			}
			g := cur.g + d.cost
			if prev, ok := gScore[nIdx]; ok && g >= prev {
				continue
			}
			gScore[nIdx] = g
			heap.Push(open, &node{at: next, g: g, f: g + heuristic(next, goal), parent: cur})
		}
	}
	return nil, false
}

func reconstruct(end *node) []cell {
	var path []cell
	for n := end; n != nil; n = n.parent {
		path = append(path, n.at)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
