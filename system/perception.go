package system

import (
	"github.com/milk9111/stalker/common"
	"github.com/milk9111/stalker/component"
)

// DetectionKind tells how a target was detected.
type DetectionKind string

const (
	DetectedBySight   DetectionKind = "sight"
	DetectedByHearing DetectionKind = "hearing"
)

// Detection is a successful perception result.
type Detection struct {
	Kind     DetectionKind
	Position common.Vec3
}

// Perception answers whether the agent currently perceives the target.
type Perception struct {
	Locomotion component.Locomotion
	Target     component.Target
	// Spatial may be nil; sightlines are then treated as clear.
	Spatial component.SpatialQuery
	Tuning  *component.AITuning
}

func (p *Perception) ready() bool {
	return p != nil && p.Locomotion != nil && p.Target != nil && p.Tuning != nil
}

// CanSeeTarget runs the vision test: range, cone and sightline.
func (p *Perception) CanSeeTarget() bool {
	if !p.ready() || p.Target.Concealed() {
		return false
	}
	up := common.Up.Scale(p.Tuning.EyeHeight)
	eye := p.Locomotion.Position().Add(up)
	head := p.Target.Position().Add(up)

	if common.Distance(eye, head) > p.Tuning.VisionRange {
		return false
	}
	if common.AngleBetween(p.Locomotion.Forward(), head.Sub(eye)) > p.Tuning.HalfFOV() {
		return false
	}
	return p.HasSightline()
}

// HasSightline casts from the agent's eye to the target's head and reports
// whether the first thing struck belongs to the target.
func (p *Perception) HasSightline() bool {
	if !p.ready() {
		return false
	}
	if p.Spatial == nil {
		return true
	}
	up := common.Up.Scale(p.Tuning.EyeHeight)
	eye := p.Locomotion.Position().Add(up)
	head := p.Target.Position().Add(up)
	hit, object := p.Spatial.Linecast(eye, head, component.LayerObstacle|component.LayerTarget)
	if !hit {
		return true
	}
	return p.Target.Owns(object)
}

// CanHearTarget is the close-range footstep rule. It ignores the vision cone
// and walls.
func (p *Perception) CanHearTarget() bool {
	if !p.ready() || p.Target.Concealed() || !p.Target.MovingFast() {
		return false
	}
	return common.GroundDistance(p.Locomotion.Position(), p.Target.Position()) <= p.Tuning.HearingRadius
}

// Detect evaluates sight first, then hearing.
func (p *Perception) Detect() (Detection, bool) {
	if !p.ready() {
		return Detection{}, false
	}
	if p.CanSeeTarget() {
		return Detection{Kind: DetectedBySight, Position: p.Target.Position()}, true
	}
	if p.CanHearTarget() {
		return Detection{Kind: DetectedByHearing, Position: p.Target.Position()}, true
	}
	return Detection{}, false
}
