package component

import (
	"errors"
	"fmt"
)

// ErrInvalidTuning is wrapped by every AITuning validation failure.
var ErrInvalidTuning = errors.New("ai: invalid tuning")

// AITuning holds every threshold the behaviour engine compares against.
// Distances are world units, times are seconds, speeds are units per second.
type AITuning struct {
	PatrolSpeed float64
	WalkSpeed   float64
	RunSpeed    float64

	VisionRange   float64
	FOV           float64 // full cone angle in degrees
	EyeHeight     float64
	HearingRadius float64

	WaypointWaitTime  float64
	PatrolBoredomTime float64
	HotZoneChance     float64

	DwellTime                 float64
	LostTargetDwellMultiplier float64
	InvestigationRadius       float64
	MaxHotZones               int

	CloseRange       float64
	MediumRange      float64
	ChaseBoredomTime float64

	HidingSpotSearchRadius float64
	HideMinTargetDistance  float64
	HideArrivalTolerance   float64

	DoorRange         float64
	DoorCheckInterval float64

	CaptureDistance      float64
	SightCaptureDistance float64

	// Script is an optional tengo hook script path.
	Script string
}

// DefaultAITuning returns the stock stalker tuning.
func DefaultAITuning() AITuning {
	return AITuning{
		PatrolSpeed: 3.5,
		WalkSpeed:   3.5,
		RunSpeed:    6,

		VisionRange:   20,
		FOV:           90,
		EyeHeight:     1.5,
		HearingRadius: 5,

		WaypointWaitTime:  2,
		PatrolBoredomTime: 60,
		HotZoneChance:     0.5,

		DwellTime:                 5,
		LostTargetDwellMultiplier: 3,
		InvestigationRadius:       10,
		MaxHotZones:               10,

		CloseRange:       4,
		MediumRange:      20,
		ChaseBoredomTime: 15,

		HidingSpotSearchRadius: 5,
		HideMinTargetDistance:  5,
		HideArrivalTolerance:   1,

		DoorRange:         2,
		DoorCheckInterval: 0.5,

		CaptureDistance:      1,
		SightCaptureDistance: 1.5,
	}
}

// Validate checks ranges and orderings the engine relies on.
func (t AITuning) Validate() error {
	var errs []error
	positive := []struct {
		name string
		v    float64
	}{
		{"patrol_speed", t.PatrolSpeed},
		{"walk_speed", t.WalkSpeed},
		{"run_speed", t.RunSpeed},
		{"vision_range", t.VisionRange},
		{"fov", t.FOV},
		{"dwell_time", t.DwellTime},
		{"close_range", t.CloseRange},
		{"medium_range", t.MediumRange},
		{"capture_distance", t.CaptureDistance},
		{"door_check_interval", t.DoorCheckInterval},
	}
	for _, p := range positive {
		if p.v <= 0 {
			errs = append(errs, fmt.Errorf("%w: %s must be > 0, got %g", ErrInvalidTuning, p.name, p.v))
		}
	}
	nonNegative := []struct {
		name string
		v    float64
	}{
		{"eye_height", t.EyeHeight},
		{"hearing_radius", t.HearingRadius},
		{"waypoint_wait_time", t.WaypointWaitTime},
		{"patrol_boredom_time", t.PatrolBoredomTime},
		{"investigation_radius", t.InvestigationRadius},
		{"chase_boredom_time", t.ChaseBoredomTime},
		{"hiding_spot_search_radius", t.HidingSpotSearchRadius},
		{"hide_min_target_distance", t.HideMinTargetDistance},
		{"hide_arrival_tolerance", t.HideArrivalTolerance},
		{"door_range", t.DoorRange},
	}
	for _, p := range nonNegative {
		if p.v < 0 {
			errs = append(errs, fmt.Errorf("%w: %s must be >= 0, got %g", ErrInvalidTuning, p.name, p.v))
		}
	}
	if t.FOV > 360 {
		errs = append(errs, fmt.Errorf("%w: fov must be <= 360, got %g", ErrInvalidTuning, t.FOV))
	}
	if t.HotZoneChance < 0 || t.HotZoneChance > 1 {
		errs = append(errs, fmt.Errorf("%w: hot_zone_chance must be within [0,1], got %g", ErrInvalidTuning, t.HotZoneChance))
	}
	if t.LostTargetDwellMultiplier < 1 {
		errs = append(errs, fmt.Errorf("%w: lost_target_dwell_multiplier must be >= 1, got %g", ErrInvalidTuning, t.LostTargetDwellMultiplier))
	}
	if t.MaxHotZones <= 0 {
		errs = append(errs, fmt.Errorf("%w: max_hot_zones must be > 0, got %d", ErrInvalidTuning, t.MaxHotZones))
	}
	if t.CloseRange >= t.MediumRange {
		errs = append(errs, fmt.Errorf("%w: close_range (%g) must be below medium_range (%g)", ErrInvalidTuning, t.CloseRange, t.MediumRange))
	}
	if t.SightCaptureDistance < t.CaptureDistance {
		errs = append(errs, fmt.Errorf("%w: sight_capture_distance (%g) must be >= capture_distance (%g)", ErrInvalidTuning, t.SightCaptureDistance, t.CaptureDistance))
	}
	return errors.Join(errs...)
}

// HalfFOV returns half the vision cone in degrees.
func (t AITuning) HalfFOV() float64 { return t.FOV / 2 }
