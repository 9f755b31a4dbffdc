package system

import (
	"errors"
	"log/slog"
	"math"
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/milk9111/stalker/common"
	"github.com/milk9111/stalker/component"
	"github.com/milk9111/stalker/internal/log"
)

var (
	ErrMissingLocomotion = errors.New("ai: locomotion collaborator is missing")
	ErrMissingTarget     = errors.New("ai: target collaborator is missing")
)

// Deps are the collaborators an Engine is built from. Locomotion and Target
// are required; everything else is optional.
type Deps struct {
	Locomotion component.Locomotion
	Target     component.Target
	Spatial    component.SpatialQuery
	Registry   *component.HidingSpotRegistry
	Manager    component.GameManager
	Emitter    *component.AIEventEmitter

	Waypoints []common.Vec3
	// Rand drives patrol choices. A time-seeded source is used when nil.
	Rand   *rand.Rand
	Logger *slog.Logger
	Script *ScriptHooks
}

type pendingKind int

const (
	pendingNoise pendingKind = iota
	pendingDoor
)

type pendingEvent struct {
	kind pendingKind
	at   common.Vec3
}

// Engine is the stalker's behaviour state machine. It is advanced by Tick
// once per frame and is not safe for concurrent use.
type Engine struct {
	ID string

	tuning     component.AITuning
	deps       Deps
	perception *Perception
	capture    *component.CaptureResolver
	memory     *component.HotZones
	rng        *rand.Rand
	log        *slog.Logger

	enabled bool
	state   component.StateID
	ctx     component.AIContext
	tick    uint64

	lastKnown     common.Vec3
	haveLastKnown bool

	goal             common.Vec3
	returnToLastSeen bool
	claimed          *component.HidingSpot

	// unreachable is the last spot locomotion gave up on; chase skips it
	// until the pursuit ends.
	unreachable *component.HidingSpot

	waypoint    int
	patrolReady bool

	destination    common.Vec3
	hasDestination bool
	speed          float64
	pose           component.Pose

	detected bool
	pending  []pendingEvent
}

// NewEngine builds an engine in Patrol. A missing locomotion or target yields
// a disabled engine and the joined diagnostic error, never a nil engine.
func NewEngine(t component.AITuning, deps Deps) (*Engine, error) {
	e := &Engine{
		ID:       uuid.NewString(),
		tuning:   t,
		deps:     deps,
		state:    component.StatePatrol,
		waypoint: -1,
		speed:    -1,
		pose:     component.PoseIdle,
	}

	logger := deps.Logger
	if logger == nil {
		logger = log.L()
	}
	e.log = logger.With("agent", e.ID)

	if err := t.Validate(); err != nil {
		e.log.Warn("ai: tuning failed validation, using defaults", "error", err)
		e.tuning = component.DefaultAITuning()
		e.tuning.Script = t.Script
	}

	e.rng = deps.Rand
	if e.rng == nil {
		e.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if e.deps.Emitter == nil {
		e.deps.Emitter = &component.AIEventEmitter{}
	}

	e.memory = component.NewHotZones(e.tuning.MaxHotZones)
	e.memory.OnClamp = func(have, max int) {
		e.log.Warn("ai: hot zone list exceeded its bound, truncated", "have", have, "max", max)
	}
	e.capture = component.NewCaptureResolver(e.tuning, deps.Manager, e.deps.Emitter)
	e.perception = &Perception{
		Locomotion: deps.Locomotion,
		Target:     deps.Target,
		Spatial:    deps.Spatial,
		Tuning:     &e.tuning,
	}

	var errs []error
	if deps.Locomotion == nil {
		errs = append(errs, ErrMissingLocomotion)
	}
	if deps.Target == nil {
		errs = append(errs, ErrMissingTarget)
	}
	if err := errors.Join(errs...); err != nil {
		e.log.Error("ai: engine disabled", "error", err)
		return e, err
	}
	e.enabled = true

	if deps.Script != nil {
		deps.Script.enter(e, e.state)
	}
	return e, nil
}

// Enabled reports whether the engine runs at all.
func (e *Engine) Enabled() bool { return e != nil && e.enabled }

// Tick advances the engine by dt seconds.
func (e *Engine) Tick(dt float64) {
	if !e.Enabled() || e.state.Terminal() {
		return
	}
	if dt < 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		e.log.Warn("ai: invalid delta time clamped", "dt", dt)
		dt = 0
	}
	e.tick++

	agent := e.deps.Locomotion.Position()
	e.deps.Registry.RefreshDistances(agent)

	if e.state == component.StatePatrol {
		e.ctx.TimeSinceSeen += dt
	}
	e.ctx.DoorCheck += dt
	if e.ctx.Clamp() {
		e.log.Warn("ai: negative timer clamped", "state", e.state)
	}

	e.evaluateTransitions()
	e.runState(dt)
	e.scanDoors()

	if !e.state.Terminal() {
		captured := e.capture.Resolve(agent, e.deps.Target.Position(), e.deps.Target.Concealed(), e.perception.HasSightline, e.tick)
		if captured {
			e.changeState(component.StateCaptured)
		}
	}

	if e.deps.Script != nil {
		e.deps.Script.update(e, e.state)
	}
}

// HearNoise queues a noise at p. Noises are ignored during an active chase.
func (e *Engine) HearNoise(p common.Vec3) {
	e.queue(pendingNoise, p)
}

// NotifyDoorOpened queues a door-opened event at p. It is ignored during an
// active chase.
func (e *Engine) NotifyDoorOpened(p common.Vec3) {
	e.queue(pendingDoor, p)
}

func (e *Engine) queue(kind pendingKind, p common.Vec3) {
	if !e.Enabled() || e.state.Terminal() || e.state.Pursuing() {
		return
	}
	e.pending = append(e.pending, pendingEvent{kind: kind, at: p})
}

// SetTuning swaps thresholds at runtime. Invalid tuning is rejected.
func (e *Engine) SetTuning(t component.AITuning) error {
	if e == nil {
		return nil
	}
	if err := t.Validate(); err != nil {
		return err
	}
	e.tuning = t
	e.memory.SetMax(t.MaxHotZones)
	e.capture.SetThresholds(t)
	e.speed = -1
	return nil
}

// Tuning returns the thresholds in use.
func (e *Engine) Tuning() component.AITuning { return e.tuning }

// State returns the active behaviour state.
func (e *Engine) State() component.StateID { return e.state }

// HotZones returns the remembered points of interest, most recent first.
func (e *Engine) HotZones() []common.Vec3 { return e.memory.All() }

// Memory exposes the hot-zone store.
func (e *Engine) Memory() *component.HotZones { return e.memory }

// Context returns a copy of the timers.
func (e *Engine) Context() component.AIContext { return e.ctx }

func (e *Engine) VisionRange() float64 { return e.tuning.VisionRange }

func (e *Engine) FOV() float64 { return e.tuning.FOV }

// LastKnownPosition is the most recent confirmed target position.
func (e *Engine) LastKnownPosition() (common.Vec3, bool) { return e.lastKnown, e.haveLastKnown }

func (e *Engine) ClaimedSpot() *component.HidingSpot { return e.claimed }

func (e *Engine) Pose() component.Pose { return e.pose }

// Destination returns the last destination handed to locomotion.
func (e *Engine) Destination() (common.Vec3, bool) { return e.destination, e.hasDestination }

// Goal is the travel goal of Investigate and Distracted.
func (e *Engine) Goal() common.Vec3 { return e.goal }

func (e *Engine) ReturningToLastSeen() bool { return e.returnToLastSeen }

// Detected reports whether the target was perceived on the last tick.
func (e *Engine) Detected() bool { return e.detected }

// Position returns the agent's position, which makes the engine a NoiseListener.
func (e *Engine) Position() common.Vec3 {
	if e == nil || e.deps.Locomotion == nil {
		return common.Vec3{}
	}
	return e.deps.Locomotion.Position()
}

// CanSeeTarget runs the vision test against the current world.
func (e *Engine) CanSeeTarget() bool { return e.perception.CanSeeTarget() }

// Events returns the emitter AI events are published on.
func (e *Engine) Events() *component.AIEventEmitter { return e.deps.Emitter }

// Ticks returns the number of processed ticks.
func (e *Engine) Ticks() uint64 { return e.tick }

func (e *Engine) emit(evt component.AIEvent) {
	evt.Tick = e.tick
	e.deps.Emitter.Emit(evt)
}

func (e *Engine) setSpeed(v float64) {
	if v == e.speed {
		return
	}
	e.speed = v
	e.deps.Locomotion.SetSpeed(v)
}

func (e *Engine) moveTo(p common.Vec3) {
	if e.hasDestination && e.destination == p {
		return
	}
	e.destination = p
	e.hasDestination = true
	e.deps.Locomotion.SetDestination(p)
}

// hold stops travel by targeting the agent's own position.
func (e *Engine) hold() {
	e.moveTo(e.deps.Locomotion.Position())
}

// arrived reports whether locomotion reached the current destination.
func (e *Engine) arrived() bool {
	return e.hasDestination && e.deps.Locomotion.HasArrived()
}

func (e *Engine) targetDistance() float64 {
	return common.GroundDistance(e.deps.Locomotion.Position(), e.deps.Target.Position())
}

func (e *Engine) claim(s *component.HidingSpot) {
	e.claimed = s
	e.emit(component.AIEvent{Type: component.EventSpotClaimed, From: e.state, Position: s.Position, Detail: s.ID})
}

func (e *Engine) release() {
	if e.claimed == nil {
		return
	}
	s := e.claimed
	e.claimed = nil
	e.ctx.HideDwell = 0
	e.emit(component.AIEvent{Type: component.EventSpotReleased, From: e.state, Position: s.Position, Detail: s.ID})
}

// Snapshot is a read-only view of the engine for debug overlays and streams.
type Snapshot struct {
	Agent         string            `json:"agent" yaml:"agent"`
	Tick          uint64            `json:"tick" yaml:"tick"`
	State         component.StateID `json:"state" yaml:"state"`
	Pose          component.Pose    `json:"pose" yaml:"pose"`
	Position      common.Vec3       `json:"position" yaml:"position"`
	Forward       common.Vec3       `json:"forward" yaml:"forward"`
	Target        common.Vec3       `json:"target" yaml:"target"`
	Concealed     bool              `json:"concealed" yaml:"concealed"`
	Detected      bool              `json:"detected" yaml:"detected"`
	Destination   *common.Vec3      `json:"destination,omitempty" yaml:"destination,omitempty"`
	LastKnown     *common.Vec3      `json:"last_known,omitempty" yaml:"last_known,omitempty"`
	HotZones      []common.Vec3     `json:"hot_zones" yaml:"hot_zones"`
	ClaimedSpot   string            `json:"claimed_spot,omitempty" yaml:"claimed_spot,omitempty"`
	VisionRange   float64           `json:"vision_range" yaml:"vision_range"`
	FOV           float64           `json:"fov" yaml:"fov"`
	TimeSinceSeen float64           `json:"time_since_seen" yaml:"time_since_seen"`
	ChaseBoredom  float64           `json:"chase_boredom" yaml:"chase_boredom"`
	HideDwell     float64           `json:"hide_dwell" yaml:"hide_dwell"`
	StateTimer    float64           `json:"state_timer" yaml:"state_timer"`
}

// Snapshot captures the current engine state.
func (e *Engine) Snapshot() Snapshot {
	s := Snapshot{
		Agent:         e.ID,
		Tick:          e.tick,
		State:         e.state,
		Pose:          e.pose,
		Detected:      e.detected,
		HotZones:      e.memory.All(),
		VisionRange:   e.tuning.VisionRange,
		FOV:           e.tuning.FOV,
		TimeSinceSeen: e.ctx.TimeSinceSeen,
		ChaseBoredom:  e.ctx.ChaseBoredom,
		HideDwell:     e.ctx.HideDwell,
		StateTimer:    e.ctx.StateTimer,
	}
	if e.deps.Locomotion != nil {
		s.Position = e.deps.Locomotion.Position()
		s.Forward = e.deps.Locomotion.Forward()
	}
	if e.deps.Target != nil {
		s.Target = e.deps.Target.Position()
		s.Concealed = e.deps.Target.Concealed()
	}
	if e.hasDestination {
		d := e.destination
		s.Destination = &d
	}
	if e.haveLastKnown {
		lk := e.lastKnown
		s.LastKnown = &lk
	}
	if e.claimed != nil {
		s.ClaimedSpot = e.claimed.ID
	}
	return s
}
