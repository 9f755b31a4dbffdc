package component

import "github.com/milk9111/stalker/common"

// LayerMask selects collision categories for sightline queries.
type LayerMask uint

const (
	LayerObstacle LayerMask = 1 << iota
	LayerTarget
	LayerDoor
	LayerAgent

	LayerAll LayerMask = ^LayerMask(0)
)

// Locomotion moves the agent. The engine never plans routes itself.
type Locomotion interface {
	SetSpeed(v float64)
	SetDestination(p common.Vec3)
	HasArrived() bool
	RemainingDistance() float64
	HasPendingPath() bool
	Position() common.Vec3
	Forward() common.Vec3
	LookAt(p common.Vec3)
}

// SpatialQuery answers geometric questions about the level.
type SpatialQuery interface {
	// Linecast reports the first object struck between from and to,
	// restricted to mask. hit is false when the line is unobstructed.
	Linecast(from, to common.Vec3, mask LayerMask) (hit bool, object any)
	// OverlapSphere returns the objects whose shapes lie within radius of center.
	OverlapSphere(center common.Vec3, radius float64) []any
}

// Target is the pursued actor.
type Target interface {
	Position() common.Vec3
	// Concealed is true while the target hides in a locker or closet.
	Concealed() bool
	// MovingFast is true while the target runs without crouching.
	MovingFast() bool
	// Owns reports whether a collider returned by SpatialQuery belongs to
	// the target or one of its attachments.
	Owns(object any) bool
}

// Door is a level door the agent can open on its way.
type Door interface {
	Position() common.Vec3
	IsLocked() bool
	IsOpen() bool
	Open()
}

// GameManager receives the terminal capture signal.
type GameManager interface {
	NotifyCaptured()
}

// GameManagerFunc adapts a function to GameManager.
type GameManagerFunc func()

func (f GameManagerFunc) NotifyCaptured() {
	if f != nil {
		f()
	}
}
