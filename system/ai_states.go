package system

import (
	"github.com/milk9111/stalker/common"
	"github.com/milk9111/stalker/component"
)

// StateDef holds the hooks of one behaviour state.
type StateDef struct {
	OnEnter func(e *Engine, from component.StateID)
	While   func(e *Engine, dt float64)
	OnExit  func(e *Engine, to component.StateID)
}

var stateDefs map[component.StateID]StateDef

func init() {
	stateDefs = map[component.StateID]StateDef{
		component.StatePatrol: {
			OnEnter: func(e *Engine, _ component.StateID) {
				e.patrolReady = false
				e.returnToLastSeen = false
			},
			While: patrolWhile,
		},
		component.StateInvestigate: {While: travelToGoalWhile},
		component.StateDistracted:  {While: travelToGoalWhile},
		component.StateChase: {
			OnEnter: func(e *Engine, from component.StateID) {
				e.returnToLastSeen = false
				if !from.Pursuing() {
					e.ctx.ChaseBoredom = 0
					e.unreachable = nil
				}
			},
			While: chaseWhile,
		},
		component.StateSearch: {While: searchWhile},
		component.StateTacticalHide: {
			OnEnter: func(e *Engine, _ component.StateID) {
				e.ctx.HideDwell = 0
			},
			While: tacticalHideWhile,
			OnExit: func(e *Engine, _ component.StateID) {
				e.release()
			},
		},
		component.StateCaptured: {
			OnEnter: func(e *Engine, _ component.StateID) {
				e.release()
				e.pending = nil
				e.pose = component.PoseKill
				e.hold()
			},
		},
	}
}

func (e *Engine) runState(dt float64) {
	def, ok := stateDefs[e.state]
	if !ok || def.While == nil {
		return
	}
	def.While(e, dt)
}

func patrolWhile(e *Engine, dt float64) {
	e.setSpeed(e.tuning.PatrolSpeed)
	if !e.patrolReady {
		e.patrolReady = true
		e.nextPatrolDestination()
		e.pose = component.PoseWalk
		return
	}
	if e.hasDestination && !e.arrived() {
		e.pose = component.PoseWalk
		return
	}
	e.pose = component.PoseIdle
	e.ctx.WaypointWait += dt
	if e.ctx.WaypointWait >= e.tuning.WaypointWaitTime {
		e.ctx.WaypointWait = 0
		e.nextPatrolDestination()
	}
}

// nextPatrolDestination picks where to walk next. With no waypoints the agent
// wanders between hot zones, or holds when memory is empty too.
func (e *Engine) nextPatrolDestination() {
	wps := e.deps.Waypoints
	if e.memory.Len() > 0 && (len(wps) == 0 || e.rng.Float64() < e.tuning.HotZoneChance) {
		if p, ok := e.memory.Random(e.rng); ok {
			e.moveTo(p)
			return
		}
	}
	if len(wps) == 0 {
		e.hold()
		return
	}
	next := e.memory.PickWeighted(e.waypoint, wps, e.tuning.InvestigationRadius)
	if next < 0 {
		e.hold()
		return
	}
	e.waypoint = next
	e.moveTo(wps[next])
}

// travelToGoalWhile drives Investigate and Distracted.
func travelToGoalWhile(e *Engine, dt float64) {
	e.setSpeed(e.tuning.RunSpeed)
	e.moveTo(e.goal)
	if !e.arrived() {
		e.pose = component.PoseRun
		return
	}
	e.pose = component.PoseIdle
	e.ctx.StateTimer += dt
	dwell := e.tuning.DwellTime
	if e.returnToLastSeen {
		dwell *= e.tuning.LostTargetDwellMultiplier
	}
	if e.ctx.StateTimer >= dwell {
		e.changeState(component.StatePatrol)
	}
}

func searchWhile(e *Engine, dt float64) {
	e.setSpeed(e.tuning.WalkSpeed)
	if e.haveLastKnown {
		e.moveTo(e.lastKnown)
	} else {
		e.hold()
	}
	if !e.arrived() {
		e.pose = component.PoseWalk
		return
	}
	e.pose = component.PoseIdle
	e.ctx.StateTimer += dt
	if e.ctx.StateTimer >= e.tuning.DwellTime {
		e.changeState(component.StatePatrol)
	}
}

func chaseWhile(e *Engine, dt float64) {
	t := e.tuning
	target := e.deps.Target.Position()
	d := e.targetDistance()

	switch {
	case d <= t.CloseRange:
		e.release()
		e.setSpeed(t.RunSpeed)
		e.pose = component.PoseRun
	case d <= t.MediumRange:
		if e.ctx.ChaseBoredom < t.ChaseBoredomTime {
			e.ctx.ChaseBoredom += dt
		}
		bored := e.ctx.ChaseBoredom >= t.ChaseBoredomTime
		if !bored && d > t.HideMinTargetDistance {
			if s := e.deps.Registry.GetClosest(target, t.HidingSpotSearchRadius, true); s != nil && s != e.unreachable {
				e.claim(s)
				e.changeState(component.StateTacticalHide)
				return
			}
		}
		if bored {
			e.setSpeed(t.RunSpeed)
			e.pose = component.PoseRun
		} else {
			e.setSpeed(t.WalkSpeed)
			e.pose = component.PoseWalk
		}
	default:
		e.ctx.ChaseBoredom = 0
		e.setSpeed(t.RunSpeed)
		e.pose = component.PoseRun
	}
	e.moveTo(target)
}

func tacticalHideWhile(e *Engine, dt float64) {
	t := e.tuning
	spot := e.claimed
	if spot == nil {
		e.changeState(component.StateChase)
		return
	}
	if e.deps.Target.Concealed() {
		e.changeState(component.StateSearch)
		return
	}

	agent := e.deps.Locomotion.Position()
	target := e.deps.Target.Position()
	if common.GroundDistance(agent, target) <= t.CloseRange || common.GroundDistance(spot.Position, target) > t.MediumRange {
		e.changeState(component.StateChase)
		return
	}

	e.setSpeed(t.RunSpeed)
	e.moveTo(spot.Position)
	if e.arrived() && common.GroundDistance(e.deps.Locomotion.Position(), spot.Position) > t.HideArrivalTolerance {
		// locomotion gave up short of the spot
		e.unreachable = spot
		e.changeState(component.StateChase)
		return
	}
	if common.GroundDistance(agent, spot.Position) > t.HideArrivalTolerance {
		e.pose = component.PoseRun
		return
	}

	e.deps.Locomotion.LookAt(target)
	e.pose = spot.Pose()
	e.ctx.HideDwell += dt
	if e.ctx.HideDwell > t.ChaseBoredomTime {
		e.ctx.ChaseBoredom = t.ChaseBoredomTime
		e.changeState(component.StateChase)
		return
	}
	if !e.perception.CanSeeTarget() {
		e.goal = e.lastKnown
		e.returnToLastSeen = true
		e.changeState(component.StateDistracted)
	}
}
