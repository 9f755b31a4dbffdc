package system

import (
	"github.com/milk9111/stalker/common"
	"github.com/milk9111/stalker/component"
)

// doorFacingLimit is the widest angle from forward at which a door counts as
// being in front of the agent.
const doorFacingLimit = 90.0

// scanDoors opens doors on the agent's way. It runs on a cooldown and only
// while the agent still has a path longer than the door range ahead.
func (e *Engine) scanDoors() {
	if e.state.Terminal() || e.deps.Spatial == nil {
		return
	}
	if e.ctx.DoorCheck < e.tuning.DoorCheckInterval {
		return
	}
	e.ctx.DoorCheck = 0

	loc := e.deps.Locomotion
	if !loc.HasPendingPath() || loc.RemainingDistance() <= e.tuning.DoorRange {
		return
	}

	agent := loc.Position()
	forward := loc.Forward().Flat()
	for _, obj := range e.deps.Spatial.OverlapSphere(agent, e.tuning.DoorRange) {
		door, ok := obj.(component.Door)
		if !ok || door.IsLocked() || door.IsOpen() {
			continue
		}
		to := door.Position().Sub(agent).Flat()
		if to.Len() > e.tuning.DoorRange {
			continue
		}
		if common.AngleBetween(forward, to) > doorFacingLimit {
			continue
		}
		door.Open()
		e.emit(component.AIEvent{Type: component.EventDoorOpened, From: e.state, Position: door.Position()})
		e.log.Debug("ai: opened door", "x", door.Position().X, "z", door.Position().Z)
	}
}
