package obj

import (
	"github.com/milk9111/stalker/common"
	"github.com/milk9111/stalker/component"
)

// defaultMaxNodes bounds A* expansion on the level grid.
const defaultMaxNodes = 4096

// planPath returns world waypoints from `from` to `to`, ending exactly at
// `to`. It returns nil when no path exists.
func planPath(level *Level, from, to common.Vec3, blocked func(x, z int) bool, maxNodes int) []common.Vec3 {
	if level == nil || level.Level == nil {
		return nil
	}
	if maxNodes <= 0 {
		maxNodes = defaultMaxNodes
	}
	start := level.CellOf(from)
	goal := level.CellOf(to)
	cells := component.AStar(start, goal, level.Width, level.Height, func(x, z int) bool {
		// the agent may stand in a cell it could not enter
		if x == start.X && z == start.Z {
			return false
		}
		return blocked != nil && blocked(x, z)
	}, maxNodes)
	if cells == nil {
		return nil
	}

	path := make([]common.Vec3, 0, len(cells))
	for i, c := range cells {
		if i == 0 {
			continue
		}
		if i == len(cells)-1 {
			break
		}
		p := level.CellCenter(c)
		p.Y = to.Y
		path = append(path, p)
	}
	return append(path, to)
}

func pathLength(from common.Vec3, path []common.Vec3) float64 {
	total := 0.0
	prev := from
	for _, p := range path {
		total += common.GroundDistance(prev, p)
		prev = p
	}
	return total
}
