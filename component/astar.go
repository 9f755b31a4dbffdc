package component

import (
	"container/heap"
	"math"
)

// GridCell is a cell on the level's ground grid.
type GridCell struct {
	X int
	Z int
}

// AStar finds a path from start to goal on an 8-way grid. Diagonal steps are
// only taken when both adjacent orthogonal cells are free so paths never cut
// wall corners. isBlocked should return true for cells that cannot be
// traversed. maxNodes limits the number of expanded nodes.
func AStar(start, goal GridCell, width, depth int, isBlocked func(x, z int) bool, maxNodes int) []GridCell {
	if width <= 0 || depth <= 0 {
		return nil
	}
	inside := func(c GridCell) bool { return c.X >= 0 && c.Z >= 0 && c.X < width && c.Z < depth }
	if !inside(start) || !inside(goal) {
		return nil
	}
	if start == goal {
		return []GridCell{start}
	}
	blocked := func(x, z int) bool {
		if x < 0 || z < 0 || x >= width || z >= depth {
			return true
		}
		return isBlocked != nil && isBlocked(x, z)
	}
	if blocked(goal.X, goal.Z) {
		return nil
	}

	index := func(c GridCell) int { return c.Z*width + c.X }
	startIdx := index(start)
	goalIdx := index(goal)

	open := &cellQueue{}
	heap.Push(open, queuedCell{idx: startIdx, f: octile(start, goal)})
	cameFrom := make(map[int]int, 128)
	gScore := map[int]float64{startIdx: 0}
	closed := make(map[int]bool, 128)

	expanded := 0
	for open.Len() > 0 && expanded < maxNodes {
		cur := heap.Pop(open).(queuedCell)
		if closed[cur.idx] {
			continue
		}
		if cur.idx == goalIdx {
			return reconstructPath(cameFrom, goalIdx, startIdx, width)
		}
		closed[cur.idx] = true
		expanded++

		cx, cz := cur.idx%width, cur.idx/width
		for _, d := range neighbours {
			nx, nz := cx+d[0], cz+d[1]
			if blocked(nx, nz) {
				continue
			}
			step := 1.0
			if d[0] != 0 && d[1] != 0 {
				if blocked(cx+d[0], cz) || blocked(cx, cz+d[1]) {
					continue
				}
				step = math.Sqrt2
			}
			n := GridCell{X: nx, Z: nz}
			nIdx := index(n)
			if closed[nIdx] {
				continue
			}
			tentative := gScore[cur.idx] + step
			if prev, seen := gScore[nIdx]; seen && tentative >= prev {
				continue
			}
			cameFrom[nIdx] = cur.idx
			gScore[nIdx] = tentative
			heap.Push(open, queuedCell{idx: nIdx, f: tentative + octile(n, goal)})
		}
	}

	return nil
}

var neighbours = [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}, {1, 1}, {1, -1}, {-1, 1}, {-1, -1}}

func reconstructPath(cameFrom map[int]int, currentIdx, startIdx, width int) []GridCell {
	path := make([]GridCell, 0, 32)
	for {
		path = append(path, GridCell{X: currentIdx % width, Z: currentIdx / width})
		if currentIdx == startIdx {
			break
		}
		prev, ok := cameFrom[currentIdx]
		if !ok {
			return nil
		}
		currentIdx = prev
	}
	// reverse
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

func octile(a, b GridCell) float64 {
	dx := math.Abs(float64(a.X - b.X))
	dz := math.Abs(float64(a.Z - b.Z))
	return math.Max(dx, dz) + (math.Sqrt2-1)*math.Min(dx, dz)
}

type queuedCell struct {
	idx int
	f   float64
}

type cellQueue []queuedCell

func (q cellQueue) Len() int           { return len(q) }
func (q cellQueue) Less(i, j int) bool { return q[i].f < q[j].f }
func (q cellQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *cellQueue) Push(x any)        { *q = append(*q, x.(queuedCell)) }
func (q *cellQueue) Pop() any {
	old := *q
	n := len(old)
	it := old[n-1]
	*q = old[:n-1]
	return it
}
