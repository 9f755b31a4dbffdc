package obj

import (
	"fmt"
	"math"

	"github.com/milk9111/stalker/common"
	"github.com/milk9111/stalker/component"
	"github.com/milk9111/stalker/levels"
)

// Level is the runtime view of a tile level. Columns map to world X and rows
// to world Z; one tile is common.TileSize world units.
type Level struct {
	*levels.Level
}

// NewLevel wraps a parsed level.
func NewLevel(l *levels.Level) *Level {
	return &Level{Level: l}
}

// LoadLevel loads a level from disk or the embedded levels.
func LoadLevel(name string) (*Level, error) {
	if name == "" {
		return nil, fmt.Errorf("level path is empty")
	}
	l, err := levels.Load(name)
	if err != nil {
		return nil, fmt.Errorf("load level %s: %w", name, err)
	}
	return NewLevel(l), nil
}

// WorldSize returns the level extent in world units.
func (l *Level) WorldSize() (width, depth float64) {
	return float64(l.Width) * common.TileSize, float64(l.Height) * common.TileSize
}

// CellOf returns the grid cell containing p.
func (l *Level) CellOf(p common.Vec3) component.GridCell {
	return component.GridCell{
		X: int(math.Floor(p.X / common.TileSize)),
		Z: int(math.Floor(p.Z / common.TileSize)),
	}
}

// CellCenter returns the world position at the middle of a cell.
func (l *Level) CellCenter(c component.GridCell) common.Vec3 {
	return common.Vec3{
		X: (float64(c.X) + 0.5) * common.TileSize,
		Z: (float64(c.Z) + 0.5) * common.TileSize,
	}
}

// EntityPosition returns the world position of a placed entity.
func (l *Level) EntityPosition(e levels.Entity) common.Vec3 {
	return l.CellCenter(component.GridCell{X: e.X, Z: e.Y})
}

// Wall reports whether the cell holds a solid tile.
func (l *Level) Wall(x, z int) bool {
	return l.Solid(x, z)
}
