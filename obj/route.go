package obj

import (
	"github.com/milk9111/stalker/common"
	"github.com/milk9111/stalker/component"
)

// PlayerRoute walks the player along scripted points for headless runs.
type PlayerRoute struct {
	Points []common.Vec3
	Run    bool
	Loop   bool

	// Blocked is used for planning between points.
	Blocked func(x, z int) bool
	// DoorAt lets the route open doors in its way.
	DoorAt func(c component.GridCell) *Door

	player *Player
	level  *Level
	index  int
	path   []common.Vec3
	done   bool
}

func NewPlayerRoute(player *Player, level *Level, points []common.Vec3) *PlayerRoute {
	return &PlayerRoute{Points: points, Loop: true, player: player, level: level, index: -1}
}

// Done reports whether a non-looping route reached its last point.
func (r *PlayerRoute) Done() bool { return r.done }

// Update steers the player towards the next point.
func (r *PlayerRoute) Update(dt float64) {
	if r == nil || r.player == nil || r.done || len(r.Points) == 0 {
		return
	}
	if r.player.Concealed() {
		return
	}
	if len(r.path) == 0 && !r.advance() {
		return
	}

	next := r.path[0]
	if r.DoorAt != nil {
		cell := r.level.CellOf(next)
		if d := r.DoorAt(cell); d != nil && !d.IsOpen() && cell != r.level.CellOf(r.player.Position()) {
			if !d.Interact() {
				// locked: skip the point
				r.path = nil
			}
			return
		}
	}

	to := next.Sub(r.player.Position()).Flat()
	if to.Len() < 0.15 {
		r.path = r.path[1:]
		return
	}
	r.player.Move(to.Normalize(), r.Run, dt)
	if r.player.Velocity().IsZero() {
		// stuck on a corner: replan from here
		r.path = planPath(r.level, r.player.Position(), r.Points[r.index], r.Blocked, 0)
	}
}

func (r *PlayerRoute) advance() bool {
	for tries := 0; tries < len(r.Points); tries++ {
		r.index++
		if r.index >= len(r.Points) {
			if !r.Loop {
				r.done = true
				return false
			}
			r.index = 0
		}
		if path := planPath(r.level, r.player.Position(), r.Points[r.index], r.Blocked, 0); len(path) > 0 {
			r.path = path
			return true
		}
	}
	return false
}
