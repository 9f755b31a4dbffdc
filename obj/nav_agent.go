package obj

import (
	"github.com/milk9111/stalker/common"
	"github.com/milk9111/stalker/component"
)

// doorStallTimeout is how long the agent waits at a closed door before
// pushing it open itself.
const doorStallTimeout = 0.75

// NavAgent moves along grid A* paths. It implements component.Locomotion.
type NavAgent struct {
	level *Level

	// Blocked marks cells the planner must route around.
	Blocked func(x, z int) bool
	// DoorAt returns the door occupying a cell, if any. Closed doors stop
	// movement until they open.
	DoorAt func(c component.GridCell) *Door

	StoppingDistance float64
	MaxNodes         int

	position    common.Vec3
	forward     common.Vec3
	speed       float64
	destination common.Vec3
	path        []common.Vec3
	arrived     bool
	unreachable bool
	stalled     float64
}

func NewNavAgent(level *Level, position common.Vec3) *NavAgent {
	return &NavAgent{
		level:            level,
		StoppingDistance: 0.1,
		MaxNodes:         defaultMaxNodes,
		position:         position,
		forward:          common.Forward,
		destination:      position,
		arrived:          true,
	}
}

func (a *NavAgent) SetSpeed(v float64) {
	if v < 0 {
		v = 0
	}
	a.speed = v
}

func (a *NavAgent) Speed() float64 { return a.speed }

// SetDestination plans a new path. An unreachable destination leaves the
// agent where it is and counts as arrived.
func (a *NavAgent) SetDestination(p common.Vec3) {
	a.destination = p
	a.stalled = 0
	if common.GroundDistance(a.position, p) <= a.StoppingDistance {
		a.path = nil
		a.arrived = true
		a.unreachable = false
		return
	}
	path := planPath(a.level, a.position, p, a.Blocked, a.MaxNodes)
	if path == nil {
		a.path = nil
		a.arrived = true
		a.unreachable = true
		return
	}
	a.path = path
	a.arrived = false
	a.unreachable = false
}

func (a *NavAgent) Destination() common.Vec3 { return a.destination }

// Unreachable reports whether the last destination had no path.
func (a *NavAgent) Unreachable() bool { return a.unreachable }

// Path returns the remaining waypoints.
func (a *NavAgent) Path() []common.Vec3 {
	out := make([]common.Vec3, len(a.path))
	copy(out, a.path)
	return out
}

func (a *NavAgent) HasArrived() bool { return a.arrived }

func (a *NavAgent) RemainingDistance() float64 { return pathLength(a.position, a.path) }

func (a *NavAgent) HasPendingPath() bool { return len(a.path) > 0 }

func (a *NavAgent) Position() common.Vec3 { return a.position }

func (a *NavAgent) Forward() common.Vec3 { return a.forward }

func (a *NavAgent) LookAt(p common.Vec3) {
	dir := p.Sub(a.position).Flat()
	if dir.Len() > 1e-6 {
		a.forward = dir.Normalize()
	}
}

// Warp moves the agent without pathing and drops its path.
func (a *NavAgent) Warp(p common.Vec3) {
	a.position = p
	a.destination = p
	a.path = nil
	a.arrived = true
}

// Update advances the agent along its path.
func (a *NavAgent) Update(dt float64) {
	if len(a.path) == 0 || dt <= 0 {
		return
	}
	budget := a.speed * dt
	for budget > 0 && len(a.path) > 0 {
		next := a.path[0]
		if door := a.closedDoorAhead(next); door != nil {
			a.stalled += dt
			if a.stalled >= doorStallTimeout {
				door.Open()
				a.stalled = 0
			}
			return
		}
		a.stalled = 0

		to := next.Sub(a.position).Flat()
		dist := to.Len()
		if dist > 1e-9 {
			a.forward = to.Scale(1 / dist)
		}
		if dist <= budget {
			a.position = common.Vec3{X: next.X, Y: a.position.Y, Z: next.Z}
			a.path = a.path[1:]
			budget -= dist
			continue
		}
		a.position = a.position.Add(to.Scale(budget / dist))
		budget = 0
	}
	if len(a.path) == 0 {
		a.arrived = true
	}
}

func (a *NavAgent) closedDoorAhead(next common.Vec3) *Door {
	if a.DoorAt == nil || a.level == nil {
		return nil
	}
	cell := a.level.CellOf(next)
	if cell == a.level.CellOf(a.position) {
		return nil
	}
	door := a.DoorAt(cell)
	if door == nil || door.IsOpen() {
		return nil
	}
	return door
}
