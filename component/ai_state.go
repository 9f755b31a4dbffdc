package component

import "math"

// StateID identifies a behaviour state of the stalker.
type StateID string

const (
	StatePatrol       StateID = "patrol"
	StateInvestigate  StateID = "investigate"
	StateDistracted   StateID = "distracted"
	StateChase        StateID = "chase"
	StateSearch       StateID = "search"
	StateTacticalHide StateID = "tactical_hide"
	StateCaptured     StateID = "captured"
)

// Terminal reports whether no transition may leave the state.
func (s StateID) Terminal() bool { return s == StateCaptured }

// Pursuing reports whether the state belongs to an active visual chase.
// External noise and door events are ignored while pursuing.
func (s StateID) Pursuing() bool { return s == StateChase || s == StateTacticalHide }

// Pose names the animation pose a renderer should play.
type Pose string

const (
	PoseIdle      Pose = "idle"
	PoseWalk      Pose = "walk"
	PoseRun       Pose = "run"
	PosePeekLeft  Pose = "peek_left"
	PosePeekRight Pose = "peek_right"
	PoseKill      Pose = "kill"
)

// AIContext stores per-agent timers. All timers are monotonic accumulators
// in seconds and are only reset at explicit transition points.
type AIContext struct {
	// StateTimer is the dwell timer of the active state.
	StateTimer float64
	// TimeSinceSeen accumulates while patrolling without a detection.
	TimeSinceSeen float64
	// ChaseBoredom accumulates only while chasing at medium range.
	ChaseBoredom float64
	// HideDwell accumulates while holding at a claimed hiding spot.
	HideDwell float64
	// DoorCheck counts towards the next door scan.
	DoorCheck float64
	// WaypointWait counts the hold time at a patrol waypoint.
	WaypointWait float64
}

// Clamp resets negative or NaN timers to zero and reports whether any
// timer had to be corrected.
func (c *AIContext) Clamp() bool {
	if c == nil {
		return false
	}
	fixed := false
	for _, t := range []*float64{&c.StateTimer, &c.TimeSinceSeen, &c.ChaseBoredom, &c.HideDwell, &c.DoorCheck, &c.WaypointWait} {
		if *t < 0 || math.IsNaN(*t) {
			*t = 0
			fixed = true
		}
	}
	return fixed
}
