package system

import (
	"github.com/milk9111/stalker/component"
)

// evaluateTransitions applies the transition rules in priority order. At most
// one rule fires per tick.
func (e *Engine) evaluateTransitions() {
	pending := e.pending
	e.pending = nil
	target := e.deps.Target

	if target.Concealed() {
		e.detected = false
		e.recordEvents(pending)
		if e.state == component.StateChase {
			e.changeState(component.StateSearch)
		}
		return
	}

	if det, ok := e.perception.Detect(); ok {
		e.detected = true
		e.lastKnown = det.Position
		e.haveLastKnown = true
		e.ctx.TimeSinceSeen = 0
		e.recordEvents(pending)
		if e.state.Pursuing() {
			return
		}
		e.memory.Record(det.Position)
		e.emit(component.AIEvent{Type: component.EventDetected, From: e.state, Position: det.Position, Detail: string(det.Kind)})
		e.changeState(component.StateChase)
		return
	}
	e.detected = false

	if e.state == component.StateChase {
		e.recordEvents(pending)
		e.goal = e.lastKnown
		if !e.haveLastKnown {
			e.goal = target.Position()
		}
		e.returnToLastSeen = true
		e.changeState(component.StateDistracted)
		return
	}

	if e.state == component.StatePatrol && e.ctx.TimeSinceSeen > e.tuning.PatrolBoredomTime {
		e.recordEvents(pending)
		p := target.Position()
		e.memory.Record(p)
		e.lastKnown = p
		e.haveLastKnown = true
		e.ctx.TimeSinceSeen = 0
		e.goal = p
		e.returnToLastSeen = false
		e.changeState(component.StateDistracted)
		return
	}

	if promote, ok := e.consumeEvents(pending); ok {
		e.goal = promote.at
		e.returnToLastSeen = false
		e.changeState(component.StateInvestigate)
	}
}

// recordEvents stores queued event positions without promoting.
func (e *Engine) recordEvents(pending []pendingEvent) {
	for _, ev := range pending {
		e.memory.Record(ev.at)
	}
}

// consumeEvents records every queued event and returns the last one allowed
// to promote the current state. Noises promote from any non-pursuit state,
// door events only from Patrol.
func (e *Engine) consumeEvents(pending []pendingEvent) (pendingEvent, bool) {
	var promote pendingEvent
	found := false
	for _, ev := range pending {
		e.memory.Record(ev.at)
		switch ev.kind {
		case pendingNoise:
			e.emit(component.AIEvent{Type: component.EventNoiseHeard, From: e.state, Position: ev.at})
			if !e.state.Pursuing() && !e.state.Terminal() {
				promote, found = ev, true
			}
		case pendingDoor:
			e.emit(component.AIEvent{Type: component.EventDoorNoticed, From: e.state, Position: ev.at})
			if e.state == component.StatePatrol {
				promote, found = ev, true
			}
		}
	}
	return promote, found
}

// changeState leaves the active state and enters to. Entering the active
// state again restarts it.
func (e *Engine) changeState(to component.StateID) {
	from := e.state
	if from.Terminal() {
		return
	}
	if e.deps.Script != nil {
		e.deps.Script.exit(e, from)
	}
	if def, ok := stateDefs[from]; ok && def.OnExit != nil {
		def.OnExit(e, to)
	}

	e.state = to
	e.ctx.StateTimer = 0
	e.ctx.WaypointWait = 0
	if def, ok := stateDefs[to]; ok && def.OnEnter != nil {
		def.OnEnter(e, from)
	}

	e.log.Debug("ai: state changed", "from", from, "to", to, "tick", e.tick)
	e.emit(component.AIEvent{Type: component.EventStateChanged, From: from, To: to, Position: e.Position()})

	if e.deps.Script != nil {
		e.deps.Script.enter(e, to)
	}
}
