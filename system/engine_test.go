package system

import (
	"errors"
	"math"
	"testing"

	"github.com/milk9111/stalker/common"
	"github.com/milk9111/stalker/component"
	"github.com/milk9111/stalker/internal/log"
)

func TestNewEngineMissingDependencies(t *testing.T) {
	cases := []struct {
		name    string
		loco    component.Locomotion
		target  component.Target
		wantErr []error
	}{
		{"no_locomotion", nil, &fakeTarget{}, []error{ErrMissingLocomotion}},
		{"no_target", &fakeLocomotion{}, nil, []error{ErrMissingTarget}},
		{"neither", nil, nil, []error{ErrMissingLocomotion, ErrMissingTarget}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			e, err := NewEngine(component.DefaultAITuning(), Deps{
				Locomotion: c.loco,
				Target:     c.target,
				Logger:     log.Discard(),
			})
			if e == nil {
				t.Fatalf("NewEngine must return an engine even when disabled")
			}
			for _, want := range c.wantErr {
				if !errors.Is(err, want) {
					t.Fatalf("error %v does not wrap %v", err, want)
				}
			}
			if e.Enabled() {
				t.Fatalf("engine should be disabled")
			}

			e.HearNoise(common.V3(1, 0, 1))
			e.Tick(1)
			if e.Ticks() != 0 || e.State() != component.StatePatrol || e.Memory().Len() != 0 {
				t.Fatalf("disabled engine changed: ticks=%d state=%s zones=%d", e.Ticks(), e.State(), e.Memory().Len())
			}
		})
	}
}

func TestNewEngineInvalidTuningFallsBack(t *testing.T) {
	bad := component.DefaultAITuning()
	bad.VisionRange = -1
	bad.Script = "custom.tengo"

	e, err := NewEngine(bad, Deps{Locomotion: &fakeLocomotion{}, Target: &fakeTarget{}, Logger: log.Discard()})
	if err != nil {
		t.Fatalf("invalid tuning should not fail construction: %v", err)
	}
	want := component.DefaultAITuning()
	want.Script = "custom.tengo"
	if e.Tuning() != want {
		t.Fatalf("expected default tuning, got %+v", e.Tuning())
	}
}

func TestSetTuning(t *testing.T) {
	r := newRig(t, common.V3(10, 0, 0))

	bad := component.DefaultAITuning()
	bad.CloseRange = 30
	if err := r.e.SetTuning(bad); !errors.Is(err, component.ErrInvalidTuning) {
		t.Fatalf("SetTuning(bad) = %v, want ErrInvalidTuning", err)
	}
	if r.e.Tuning().CloseRange != component.DefaultAITuning().CloseRange {
		t.Fatalf("rejected tuning must not be applied")
	}

	good := component.DefaultAITuning()
	good.MaxHotZones = 3
	good.VisionRange = 8
	if err := r.e.SetTuning(good); err != nil {
		t.Fatalf("SetTuning(good): %v", err)
	}
	if r.e.Memory().Max() != 3 || r.e.VisionRange() != 8 {
		t.Fatalf("tuning not applied: max=%d range=%g", r.e.Memory().Max(), r.e.VisionRange())
	}

	// the target at 10 is now out of sight
	r.tick(1, 0.1)
	if r.e.State() != component.StatePatrol {
		t.Fatalf("state = %s, want patrol", r.e.State())
	}
}

func TestTickClampsInvalidDelta(t *testing.T) {
	cases := []struct {
		name string
		dt   float64
	}{
		{"negative", -1},
		{"nan", math.NaN()},
		{"inf", math.Inf(1)},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := newRig(t, common.V3(10, 0, 10))
			r.hide()
			r.e.Tick(c.dt)
			ctx := r.e.Context()
			if ctx.TimeSinceSeen != 0 || ctx.DoorCheck != 0 {
				t.Fatalf("timers moved on a bad delta: %+v", ctx)
			}
			if r.e.Ticks() != 1 {
				t.Fatalf("ticks = %d, want 1", r.e.Ticks())
			}
		})
	}
}

func TestDetectionStartsChase(t *testing.T) {
	r := newRig(t, common.V3(10, 0, 0))
	r.tick(1, 0.1)

	if r.e.State() != component.StateChase {
		t.Fatalf("state = %s, want chase", r.e.State())
	}
	if !r.e.Detected() {
		t.Fatalf("expected target detected")
	}
	lk, ok := r.e.LastKnownPosition()
	if !ok || !near(lk, r.target.pos) {
		t.Fatalf("last known = %v %v, want %v", lk, ok, r.target.pos)
	}
	if zones := r.e.HotZones(); len(zones) != 1 || !near(zones[0], r.target.pos) {
		t.Fatalf("hot zones = %v, want the target position once", zones)
	}
	if r.count(component.EventDetected) != 1 || r.count(component.EventStateChanged) != 1 {
		t.Fatalf("unexpected events: %+v", r.events)
	}

	// staying in sight keeps the chase without new memories
	r.tick(3, 0.1)
	if r.e.State() != component.StateChase || r.e.Memory().Len() != 1 {
		t.Fatalf("state=%s zones=%d, want chase with one zone", r.e.State(), r.e.Memory().Len())
	}
}

func TestDetectionBeatsNoiseInSameTick(t *testing.T) {
	r := newRig(t, common.V3(10, 0, 0))
	noise := common.V3(-4, 0, 6)
	r.e.HearNoise(noise)
	r.tick(1, 0.1)

	if r.e.State() != component.StateChase {
		t.Fatalf("state = %s, want chase", r.e.State())
	}
	if front, _ := r.e.Memory().At(0); !near(front, r.target.pos) {
		t.Fatalf("most recent zone = %v, want target", front)
	}
	if r.count(component.EventNoiseHeard) != 0 {
		t.Fatalf("noise should be recorded without being acted on")
	}
}

func TestHearingStartsChase(t *testing.T) {
	r := newRig(t, common.V3(-3, 0, 0))
	r.hide()
	r.target.fast = true
	r.tick(1, 0.1)

	if r.e.State() != component.StateChase {
		t.Fatalf("state = %s, want chase", r.e.State())
	}
	if r.events[0].Detail != string(DetectedByHearing) {
		t.Fatalf("detection kind = %q, want hearing", r.events[0].Detail)
	}
}

func TestNoiseInPatrolInvestigates(t *testing.T) {
	r := newRig(t, common.V3(10, 0, 0))
	r.hide()
	p := common.V3(3, 0, 4)
	r.e.HearNoise(p)
	r.tick(1, 0.1)

	if r.e.State() != component.StateInvestigate {
		t.Fatalf("state = %s, want investigate", r.e.State())
	}
	if !near(r.e.Goal(), p) || r.e.ReturningToLastSeen() {
		t.Fatalf("goal = %v returning=%v, want %v", r.e.Goal(), r.e.ReturningToLastSeen(), p)
	}
	if dest, ok := r.e.Destination(); !ok || !near(dest, p) {
		t.Fatalf("destination = %v, want %v", dest, p)
	}
	if zones := r.e.HotZones(); len(zones) != 1 || !near(zones[0], p) {
		t.Fatalf("hot zones = %v, want exactly the noise", zones)
	}
	if r.loco.speed != r.e.Tuning().RunSpeed || r.e.Pose() != component.PoseRun {
		t.Fatalf("speed=%g pose=%s, want run", r.loco.speed, r.e.Pose())
	}

	// dwell at the noise, then return to patrol
	r.loco.arrived = true
	r.tick(4, 1)
	if r.e.State() != component.StateInvestigate || r.e.Pose() != component.PoseIdle {
		t.Fatalf("state=%s pose=%s, want idle investigate", r.e.State(), r.e.Pose())
	}
	r.tick(1, 1)
	if r.e.State() != component.StatePatrol {
		t.Fatalf("state = %s, want patrol after dwell", r.e.State())
	}
}

func TestNoiseIgnoredDuringChase(t *testing.T) {
	r := newRig(t, common.V3(10, 0, 0))
	r.tick(1, 0.1)

	r.e.HearNoise(common.V3(0, 0, 8))
	r.e.HearNoise(common.V3(0, 0, -8))
	r.e.NotifyDoorOpened(common.V3(2, 0, 2))
	if len(r.e.pending) != 0 {
		t.Fatalf("events queued during chase: %v", r.e.pending)
	}
	r.tick(1, 0.1)

	if r.e.State() != component.StateChase {
		t.Fatalf("state = %s, want chase", r.e.State())
	}
	if r.e.Memory().Len() != 1 {
		t.Fatalf("hot zones = %v, want only the detection", r.e.HotZones())
	}
}

func TestEventRouting(t *testing.T) {
	old := common.V3(-6, 0, -6)
	at := common.V3(3, 0, 4)
	cases := []struct {
		name  string
		from  component.StateID
		door  bool
		want  component.StateID
		moved bool
	}{
		{"patrol_noise", component.StatePatrol, false, component.StateInvestigate, true},
		{"patrol_door", component.StatePatrol, true, component.StateInvestigate, true},
		{"investigate_noise", component.StateInvestigate, false, component.StateInvestigate, true},
		{"investigate_door", component.StateInvestigate, true, component.StateInvestigate, false},
		{"distracted_noise", component.StateDistracted, false, component.StateInvestigate, true},
		{"distracted_door", component.StateDistracted, true, component.StateDistracted, false},
		{"search_noise", component.StateSearch, false, component.StateInvestigate, true},
		{"search_door", component.StateSearch, true, component.StateSearch, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := newRig(t, common.V3(10, 0, 0))
			r.hide()
			if c.from != component.StatePatrol {
				r.e.changeState(c.from)
			}
			r.e.goal = old

			if c.door {
				r.e.NotifyDoorOpened(at)
			} else {
				r.e.HearNoise(at)
			}
			r.tick(1, 0.1)

			if r.e.State() != c.want {
				t.Fatalf("state = %s, want %s", r.e.State(), c.want)
			}
			wantGoal := old
			if c.moved {
				wantGoal = at
			}
			if !near(r.e.Goal(), wantGoal) {
				t.Fatalf("goal = %v, want %v", r.e.Goal(), wantGoal)
			}
			if front, ok := r.e.Memory().At(0); !ok || !near(front, at) {
				t.Fatalf("event not remembered: %v", r.e.HotZones())
			}
		})
	}
}

func TestConcealedTargetOnlyRecordsEvents(t *testing.T) {
	r := newRig(t, common.V3(10, 0, 0))
	r.target.concealed = true
	p := common.V3(3, 0, 4)
	r.e.HearNoise(p)
	r.tick(1, 0.1)

	if r.e.State() != component.StatePatrol {
		t.Fatalf("state = %s, want patrol", r.e.State())
	}
	if zones := r.e.HotZones(); len(zones) != 1 || !near(zones[0], p) {
		t.Fatalf("hot zones = %v, want the noise", zones)
	}
}

func TestLostChaseGoesToLastSeen(t *testing.T) {
	r := newRig(t, common.V3(10, 0, 0))
	r.tick(1, 0.1)
	seen := r.target.pos

	r.hide()
	r.target.pos = common.V3(12, 0, 6)
	r.tick(1, 0.1)

	if r.e.State() != component.StateDistracted {
		t.Fatalf("state = %s, want distracted", r.e.State())
	}
	if !r.e.ReturningToLastSeen() || !near(r.e.Goal(), seen) {
		t.Fatalf("goal = %v returning=%v, want last seen %v", r.e.Goal(), r.e.ReturningToLastSeen(), seen)
	}

	// lost-target dwell is three times the normal one
	r.loco.arrived = true
	dwell := r.e.Tuning().DwellTime * r.e.Tuning().LostTargetDwellMultiplier
	r.tick(int(dwell)-1, 1)
	if r.e.State() != component.StateDistracted {
		t.Fatalf("state = %s before the long dwell ended", r.e.State())
	}
	r.tick(1, 1)
	if r.e.State() != component.StatePatrol || r.e.ReturningToLastSeen() {
		t.Fatalf("state=%s returning=%v, want patrol", r.e.State(), r.e.ReturningToLastSeen())
	}
}

func TestConcealmentDuringChaseSearches(t *testing.T) {
	r := newRig(t, common.V3(10, 0, 0))
	r.tick(1, 0.1)

	r.target.concealed = true
	r.tick(1, 0.1)
	if r.e.State() != component.StateSearch {
		t.Fatalf("state = %s, want search", r.e.State())
	}
	if r.e.Pose() != component.PoseWalk || r.loco.speed != r.e.Tuning().WalkSpeed {
		t.Fatalf("pose=%s speed=%g, want walking search", r.e.Pose(), r.loco.speed)
	}
	if dest, _ := r.e.Destination(); !near(dest, common.V3(10, 0, 0)) {
		t.Fatalf("search destination = %v, want last known", dest)
	}

	r.loco.arrived = true
	r.tick(4, 1)
	if r.e.State() != component.StateSearch {
		t.Fatalf("state = %s, want search while dwelling", r.e.State())
	}
	r.tick(1, 1)
	if r.e.State() != component.StatePatrol {
		t.Fatalf("state = %s, want patrol after search", r.e.State())
	}
}

func TestPatrolBoredom(t *testing.T) {
	r := newRig(t, common.V3(8, 0, 3))
	r.hide()

	r.tick(1, 59)
	if r.e.State() != component.StatePatrol {
		t.Fatalf("state = %s, want patrol before boredom", r.e.State())
	}
	r.tick(1, 2)

	if r.e.State() != component.StateDistracted {
		t.Fatalf("state = %s, want distracted", r.e.State())
	}
	if r.e.ReturningToLastSeen() || !near(r.e.Goal(), r.target.pos) {
		t.Fatalf("goal = %v returning=%v, want target position", r.e.Goal(), r.e.ReturningToLastSeen())
	}
	if zones := r.e.HotZones(); len(zones) != 1 || !near(zones[0], r.target.pos) {
		t.Fatalf("hot zones = %v, want the target position", zones)
	}
	if r.e.Context().TimeSinceSeen != 0 {
		t.Fatalf("time since seen = %g, want reset", r.e.Context().TimeSinceSeen)
	}
}

func TestTimeSinceSeenOnlyInPatrol(t *testing.T) {
	r := newRig(t, common.V3(10, 0, 0))
	r.hide()
	r.e.HearNoise(common.V3(3, 0, 4))
	r.tick(1, 0.5)
	before := r.e.Context().TimeSinceSeen

	r.tick(10, 1)
	if r.e.State() != component.StateInvestigate {
		t.Fatalf("state = %s, want investigate", r.e.State())
	}
	if got := r.e.Context().TimeSinceSeen; got != before {
		t.Fatalf("time since seen moved outside patrol: %g -> %g", before, got)
	}
}

func TestCaptureNotifiesOnce(t *testing.T) {
	r := newRig(t, common.V3(10, 0, 0))
	r.tick(1, 0.1)
	for _, x := range []float64{5, 3, 2} {
		r.target.pos = common.V3(x, 0, 0)
		r.tick(1, 0.1)
		if r.e.State() == component.StateCaptured {
			t.Fatalf("captured too early at distance %g", x)
		}
	}

	r.target.pos = common.V3(1.2, 0, 0)
	r.tick(1, 0.1)
	if r.e.State() != component.StateCaptured {
		t.Fatalf("state = %s, want captured", r.e.State())
	}
	ticks := r.e.Ticks()
	r.tick(5, 0.1)

	if r.manager.calls != 1 || r.count(component.EventCaptured) != 1 {
		t.Fatalf("manager calls=%d capture events=%d, want 1", r.manager.calls, r.count(component.EventCaptured))
	}
	if r.e.Ticks() != ticks {
		t.Fatalf("captured engine kept ticking")
	}
	if r.e.Pose() != component.PoseKill {
		t.Fatalf("pose = %s, want kill", r.e.Pose())
	}
	r.e.HearNoise(common.V3(1, 0, 1))
	if len(r.e.pending) != 0 {
		t.Fatalf("captured engine queued an event")
	}
}

func TestCaptureRules(t *testing.T) {
	cases := []struct {
		name      string
		dist      float64
		wall      bool
		concealed bool
		want      bool
	}{
		{"touching", 0.9, false, false, true},
		{"touching_through_wall", 0.9, true, false, true},
		{"sight_range", 1.2, false, false, true},
		{"sight_range_blocked", 1.2, true, false, false},
		{"outside", 1.6, false, false, false},
		{"concealed", 0.5, false, true, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := newRig(t, common.V3(c.dist, 0, 0))
			if c.wall {
				r.hide()
			}
			r.target.concealed = c.concealed
			r.tick(1, 0.1)
			if got := r.e.State() == component.StateCaptured; got != c.want {
				t.Fatalf("captured = %v, want %v (state %s)", got, c.want, r.e.State())
			}
			if want := map[bool]int{true: 1, false: 0}[c.want]; r.manager.calls != want {
				t.Fatalf("manager calls = %d, want %d", r.manager.calls, want)
			}
		})
	}
}

func TestSnapshot(t *testing.T) {
	r := newRig(t, common.V3(10, 0, 0))
	r.tick(1, 0.1)

	s := r.e.Snapshot()
	if s.State != component.StateChase || !s.Detected || s.Agent != r.e.ID || s.Tick != 1 {
		t.Fatalf("unexpected snapshot: %+v", s)
	}
	if s.LastKnown == nil || !near(*s.LastKnown, r.target.pos) {
		t.Fatalf("snapshot last known = %v", s.LastKnown)
	}
	if s.Destination == nil || len(s.HotZones) != 1 || s.FOV != 90 {
		t.Fatalf("snapshot missing fields: %+v", s)
	}
}
