package component

import (
	"testing"

	"github.com/milk9111/stalker/common"
)

type countingManager struct{ calls int }

func (m *countingManager) NotifyCaptured() { m.calls++ }

func TestCaptureResolverInRange(t *testing.T) {
	r := NewCaptureResolver(DefaultAITuning(), nil, nil)
	clear := func() bool { return true }
	blocked := func() bool { return false }

	cases := []struct {
		name      string
		distance  float64
		concealed bool
		sightline func() bool
		want      bool
	}{
		{"touching", 0.5, false, blocked, true},
		{"sight_band_clear", 1.2, false, clear, true},
		{"sight_band_blocked", 1.2, false, blocked, false},
		{"sight_band_nil_check", 1.2, false, nil, false},
		{"too_far", 1.5, false, clear, false},
		{"concealed_touching", 0.2, true, clear, false},
		{"boundary_distance", 1.0, false, blocked, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := r.InRange(c.distance, c.concealed, c.sightline); got != c.want {
				t.Fatalf("expected %v, got %v", c.want, got)
			}
		})
	}
}

func TestCaptureResolverNotifiesOnce(t *testing.T) {
	m := &countingManager{}
	emitter := &AIEventEmitter{}
	var events []AIEvent
	emitter.Subscribe(func(evt AIEvent) { events = append(events, evt) })

	r := NewCaptureResolver(DefaultAITuning(), m, emitter)
	target := common.V3(0.5, 0, 0)

	if r.Resolve(common.V3(5, 0, 0), target, false, nil, 1) {
		t.Fatalf("far target should not be captured")
	}
	for tick := uint64(2); tick < 6; tick++ {
		if !r.Resolve(common.V3(0, 0, 0), target, false, nil, tick) {
			t.Fatalf("capture should latch on tick %d", tick)
		}
	}
	// latched even when the target walks away
	if !r.Resolve(common.V3(50, 0, 0), target, true, nil, 7) {
		t.Fatalf("capture should stay latched")
	}
	if m.calls != 1 {
		t.Fatalf("expected exactly one notification, got %d", m.calls)
	}
	if len(events) != 1 || events[0].Type != EventCaptured || events[0].Tick != 2 {
		t.Fatalf("expected one capture event on tick 2, got %+v", events)
	}
}

func TestCaptureResolverSetThresholds(t *testing.T) {
	r := NewCaptureResolver(DefaultAITuning(), nil, nil)
	tuning := DefaultAITuning()
	tuning.CaptureDistance = 3
	tuning.SightCaptureDistance = 4
	r.SetThresholds(tuning)
	if !r.InRange(2.5, false, nil) {
		t.Fatalf("raised capture distance should apply")
	}
	var nilResolver *CaptureResolver
	if nilResolver.Resolve(common.Vec3{}, common.Vec3{}, false, nil, 0) || nilResolver.Captured() {
		t.Fatalf("nil resolver should never capture")
	}
}
