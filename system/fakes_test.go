package system

import (
	"math/rand/v2"
	"testing"

	"github.com/milk9111/stalker/common"
	"github.com/milk9111/stalker/component"
	"github.com/milk9111/stalker/internal/log"
)

type fakeLocomotion struct {
	pos       common.Vec3
	fwd       common.Vec3
	speed     float64
	dest      common.Vec3
	dests     []common.Vec3
	arrived   bool
	teleport  bool
	stuck     bool // gives up on every destination without moving
	pending   bool
	remaining float64
}

func (l *fakeLocomotion) SetSpeed(v float64) { l.speed = v }

func (l *fakeLocomotion) SetDestination(p common.Vec3) {
	l.dest = p
	l.dests = append(l.dests, p)
	if l.teleport {
		l.pos = p
		l.arrived = true
		return
	}
	if l.stuck {
		l.arrived = true
		return
	}
	l.arrived = common.GroundDistance(p, l.pos) < 1e-9
}

func (l *fakeLocomotion) HasArrived() bool           { return l.arrived }
func (l *fakeLocomotion) RemainingDistance() float64 { return l.remaining }
func (l *fakeLocomotion) HasPendingPath() bool       { return l.pending }
func (l *fakeLocomotion) Position() common.Vec3      { return l.pos }
func (l *fakeLocomotion) Forward() common.Vec3       { return l.fwd }

func (l *fakeLocomotion) LookAt(p common.Vec3) {
	d := p.Sub(l.pos).Flat()
	if !d.IsZero() {
		l.fwd = d.Normalize()
	}
}

type fakeTarget struct {
	pos       common.Vec3
	concealed bool
	fast      bool
}

func (t *fakeTarget) Position() common.Vec3 { return t.pos }
func (t *fakeTarget) Concealed() bool       { return t.concealed }
func (t *fakeTarget) MovingFast() bool      { return t.fast }
func (t *fakeTarget) Owns(object any) bool  { return object == any(t) }

// fakeSpatial reports the blocker first, then the target, as the object a
// linecast strikes.
type fakeSpatial struct {
	blocker any
	target  *fakeTarget
	objects []any
}

func (s *fakeSpatial) Linecast(from, to common.Vec3, mask component.LayerMask) (bool, any) {
	if s.blocker != nil {
		return true, s.blocker
	}
	if s.target != nil {
		return true, s.target
	}
	return false, nil
}

func (s *fakeSpatial) OverlapSphere(center common.Vec3, radius float64) []any {
	return s.objects
}

type fakeDoor struct {
	pos    common.Vec3
	locked bool
	open   bool
	opened int
}

func (d *fakeDoor) Position() common.Vec3 { return d.pos }
func (d *fakeDoor) IsLocked() bool        { return d.locked }
func (d *fakeDoor) IsOpen() bool          { return d.open }

func (d *fakeDoor) Open() {
	d.open = true
	d.opened++
}

type countingManager struct {
	calls int
}

func (m *countingManager) NotifyCaptured() { m.calls++ }

// rig bundles an engine with the fakes driving it. The agent stands at the
// origin facing +X.
type rig struct {
	e       *Engine
	loco    *fakeLocomotion
	target  *fakeTarget
	spatial *fakeSpatial
	manager *countingManager
	events  []component.AIEvent
}

func newRig(t *testing.T, target common.Vec3, opts ...func(*component.AITuning, *Deps)) *rig {
	t.Helper()
	r := &rig{
		loco:    &fakeLocomotion{fwd: common.V3(1, 0, 0)},
		target:  &fakeTarget{pos: target},
		manager: &countingManager{},
	}
	r.spatial = &fakeSpatial{target: r.target}

	tuning := component.DefaultAITuning()
	deps := Deps{
		Locomotion: r.loco,
		Target:     r.target,
		Spatial:    r.spatial,
		Manager:    r.manager,
		Emitter:    &component.AIEventEmitter{},
		Rand:       rand.New(rand.NewPCG(1, 2)),
		Logger:     log.Discard(),
	}
	for _, opt := range opts {
		opt(&tuning, &deps)
	}
	deps.Emitter.Subscribe(func(evt component.AIEvent) {
		r.events = append(r.events, evt)
	})

	e, err := NewEngine(tuning, deps)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	r.e = e
	return r
}

func (r *rig) tick(n int, dt float64) {
	for i := 0; i < n; i++ {
		r.e.Tick(dt)
	}
}

// hide puts a wall between the agent and the target.
func (r *rig) hide() { r.spatial.blocker = "wall" }

func (r *rig) count(typ component.AIEventType) int {
	n := 0
	for _, evt := range r.events {
		if evt.Type == typ {
			n++
		}
	}
	return n
}

func near(a, b common.Vec3) bool {
	return common.Distance(a, b) < 1e-9
}
