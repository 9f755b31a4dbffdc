package obj

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/stalker/common"
	"github.com/milk9111/stalker/component"
)

const (
	collisionTypeWall cp.CollisionType = iota + 1
	collisionTypeDoor
	collisionTypeTarget
)

const allCategories = ^uint(0)

// CollisionWorld is a chipmunk space built from the level's solid tiles. The
// ground plane maps to chipmunk's X/Y, with world Z on the Y axis. It
// implements component.SpatialQuery.
type CollisionWorld struct {
	level *Level
	space *cp.Space

	walls []*cp.Shape
	doors map[*Door]*cp.Shape

	targetBody  *cp.Body
	targetShape *cp.Shape
	target      *Player
}

func NewCollisionWorld(level *Level) *CollisionWorld {
	space := cp.NewSpace()
	cw := &CollisionWorld{level: level, space: space, doors: map[*Door]*cp.Shape{}}
	cw.buildStaticShapes()
	return cw
}

func toCP(p common.Vec3) cp.Vector { return cp.Vector{X: p.X, Y: p.Z} }

func filterFor(layer component.LayerMask) cp.ShapeFilter {
	return cp.ShapeFilter{Group: 0, Categories: uint(layer), Mask: allCategories}
}

func (cw *CollisionWorld) buildStaticShapes() {
	if cw == nil || cw.space == nil || cw.level == nil || cw.level.Level == nil {
		return
	}
	lvl := cw.level
	// Merge contiguous solid tiles into larger rectangles so the space holds
	// a few boxes instead of one per tile.
	processed := make([]bool, lvl.Width*lvl.Height)
	for y := 0; y < lvl.Height; y++ {
		for x := 0; x < lvl.Width; x++ {
			idx := y*lvl.Width + x
			if processed[idx] {
				continue
			}
			if !lvl.Wall(x, y) {
				processed[idx] = true
				continue
			}

			w := 1
			for x+w < lvl.Width {
				idx2 := y*lvl.Width + (x + w)
				if processed[idx2] || !lvl.Wall(x+w, y) {
					break
				}
				w++
			}

			h := 1
		heightLoop:
			for y+h < lvl.Height {
				for xi := x; xi < x+w; xi++ {
					idx2 := (y+h)*lvl.Width + xi
					if processed[idx2] || !lvl.Wall(xi, y+h) {
						break heightLoop
					}
				}
				h++
			}

			x0 := float64(x) * common.TileSize
			y0 := float64(y) * common.TileSize
			bb := cp.BB{L: x0, B: y0, R: x0 + float64(w)*common.TileSize, T: y0 + float64(h)*common.TileSize}
			shape := cp.NewBox2(cw.space.StaticBody, bb, 0)
			shape.SetCollisionType(collisionTypeWall)
			shape.SetFilter(filterFor(component.LayerObstacle))
			cw.space.AddShape(shape)
			cw.walls = append(cw.walls, shape)

			for yy := y; yy < y+h; yy++ {
				for xx := x; xx < x+w; xx++ {
					processed[yy*lvl.Width+xx] = true
				}
			}
		}
	}
}

// WallShapes returns the number of merged wall boxes.
func (cw *CollisionWorld) WallShapes() int { return len(cw.walls) }

// AddDoor places a door box on its cell. A closed door blocks sightlines; an
// open one is only found by overlap queries.
func (cw *CollisionWorld) AddDoor(d *Door) {
	if cw == nil || d == nil {
		return
	}
	if _, ok := cw.doors[d]; ok {
		return
	}
	x0 := float64(d.Cell.X) * common.TileSize
	y0 := float64(d.Cell.Z) * common.TileSize
	inset := 0.05 * common.TileSize
	bb := cp.BB{L: x0 + inset, B: y0 + inset, R: x0 + common.TileSize - inset, T: y0 + common.TileSize - inset}
	shape := cp.NewBox2(cw.space.StaticBody, bb, 0)
	shape.SetCollisionType(collisionTypeDoor)
	shape.UserData = d
	cw.space.AddShape(shape)
	cw.doors[d] = shape
	cw.syncDoor(d)
	d.Watch(cw.syncDoor)
}

func (cw *CollisionWorld) syncDoor(d *Door) {
	shape, ok := cw.doors[d]
	if !ok {
		return
	}
	if d.IsOpen() {
		shape.SetFilter(filterFor(component.LayerDoor))
		return
	}
	shape.SetFilter(filterFor(component.LayerDoor | component.LayerObstacle))
}

// AttachTarget adds the player as a kinematic circle.
func (cw *CollisionWorld) AttachTarget(p *Player) {
	if cw == nil || cw.space == nil || p == nil || cw.targetBody != nil {
		return
	}
	body := cp.NewKinematicBody()
	body.SetPosition(toCP(p.Position()))
	shape := cp.NewCircle(body, PlayerRadius, cp.Vector{})
	shape.SetCollisionType(collisionTypeTarget)
	shape.SetFilter(filterFor(component.LayerTarget))
	shape.UserData = p

	cw.space.AddBody(body)
	cw.space.AddShape(shape)
	cw.targetBody = body
	cw.targetShape = shape
	cw.target = p
}

// SyncTarget moves the target's shape to the player's position.
func (cw *CollisionWorld) SyncTarget() {
	if cw == nil || cw.targetBody == nil || cw.target == nil {
		return
	}
	cw.targetBody.SetPosition(toCP(cw.target.Position()))
	// re-adding the shape refreshes its cached bounds in the spatial index
	cw.space.RemoveShape(cw.targetShape)
	cw.space.AddShape(cw.targetShape)
}

// Linecast reports the first shape crossed between from and to. Height is
// ignored; walls are full height.
func (cw *CollisionWorld) Linecast(from, to common.Vec3, mask component.LayerMask) (bool, any) {
	if cw == nil || cw.space == nil {
		return false, nil
	}
	filter := cp.ShapeFilter{Group: 0, Categories: allCategories, Mask: uint(mask)}
	info := cw.space.SegmentQueryFirst(toCP(from), toCP(to), 0, filter)
	if info.Shape == nil {
		return false, nil
	}
	if info.Shape.UserData != nil {
		return true, info.Shape.UserData
	}
	return true, info.Shape
}

// OverlapSphere returns the user objects of every shape within radius of
// center. Walls are skipped.
func (cw *CollisionWorld) OverlapSphere(center common.Vec3, radius float64) []any {
	if cw == nil || cw.space == nil {
		return nil
	}
	var out []any
	p := toCP(center)
	filter := cp.ShapeFilter{Group: 0, Categories: allCategories, Mask: uint(component.LayerDoor | component.LayerTarget)}
	cw.space.BBQuery(cp.NewBBForCircle(p, radius), filter, func(shape *cp.Shape, data interface{}) {
		if shape == nil || shape.UserData == nil {
			return
		}
		// the box query is coarse; keep shapes whose surface is within radius
		if shape.PointQuery(p).Distance > radius {
			return
		}
		out = append(out, shape.UserData)
	}, nil)
	return out
}

// Space exposes the chipmunk space for debug drawing.
func (cw *CollisionWorld) Space() *cp.Space {
	if cw == nil {
		return nil
	}
	return cw.space
}
