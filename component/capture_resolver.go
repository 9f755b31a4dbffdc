package component

import "github.com/milk9111/stalker/common"

// CaptureResolver decides the terminal capture condition and signals the
// game manager exactly once.
type CaptureResolver struct {
	Emitter *AIEventEmitter
	Manager GameManager

	// Distance captures unconditionally below this range.
	Distance float64
	// SightDistance captures below this range when a sightline exists.
	SightDistance float64

	captured bool
}

// NewCaptureResolver creates a resolver using the tuning's thresholds.
func NewCaptureResolver(t AITuning, manager GameManager, emitter *AIEventEmitter) *CaptureResolver {
	return &CaptureResolver{
		Emitter:       emitter,
		Manager:       manager,
		Distance:      t.CaptureDistance,
		SightDistance: t.SightCaptureDistance,
	}
}

// Captured reports whether the resolver already fired.
func (r *CaptureResolver) Captured() bool {
	return r != nil && r.captured
}

// InRange reports whether the capture condition holds for the given distance.
// hasSightline is only consulted inside the larger visibility-gated range.
func (r *CaptureResolver) InRange(distance float64, concealed bool, hasSightline func() bool) bool {
	if r == nil || concealed {
		return false
	}
	if distance < r.Distance {
		return true
	}
	return distance < r.SightDistance && hasSightline != nil && hasSightline()
}

// Resolve checks the capture condition and latches it. It returns true on the
// tick the capture happens and on every later call.
func (r *CaptureResolver) Resolve(agent, target common.Vec3, concealed bool, hasSightline func() bool, tick uint64) bool {
	if r == nil {
		return false
	}
	if r.captured {
		return true
	}
	if !r.InRange(common.GroundDistance(agent, target), concealed, hasSightline) {
		return false
	}
	r.Force(target, tick)
	return true
}

// Force latches the capture without checking distances.
func (r *CaptureResolver) Force(at common.Vec3, tick uint64) {
	if r == nil || r.captured {
		return
	}
	r.captured = true
	if r.Manager != nil {
		r.Manager.NotifyCaptured()
	}
	if r.Emitter != nil {
		r.Emitter.Emit(AIEvent{Type: EventCaptured, To: StateCaptured, Position: at, Tick: tick})
	}
}

// SetThresholds updates the capture ranges after a tuning reload.
func (r *CaptureResolver) SetThresholds(t AITuning) {
	if r == nil {
		return
	}
	r.Distance = t.CaptureDistance
	r.SightDistance = t.SightCaptureDistance
}
