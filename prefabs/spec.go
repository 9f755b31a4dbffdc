package prefabs

import (
	"fmt"
	"image/color"
	"sort"
	"strconv"
	"strings"

	"github.com/milk9111/stalker/component"
	"gopkg.in/yaml.v3"
)

// DefaultAgentSpec is the prefab the viewer and the simulator start from.
const DefaultAgentSpec = "stalker.yaml"

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// AgentSpec is the YAML form of the stalker tuning.
type AgentSpec struct {
	Name       string         `yaml:"name"`
	Script     string         `yaml:"script"`
	Movement   MovementSpec   `yaml:"movement"`
	Perception PerceptionSpec `yaml:"perception"`
	Patrol     PatrolSpec     `yaml:"patrol"`
	Memory     MemorySpec     `yaml:"memory"`
	Chase      ChaseSpec      `yaml:"chase"`
	Hide       HideSpec       `yaml:"hide"`
	Doors      DoorSpec       `yaml:"doors"`
	Capture    CaptureSpec    `yaml:"capture"`
	Debug      DebugSpec      `yaml:"debug"`

	// Profiles hold partial overrides applied on top of the base values.
	Profiles map[string]yaml.Node `yaml:"profiles"`
}

type MovementSpec struct {
	PatrolSpeed float64 `yaml:"patrol_speed"`
	WalkSpeed   float64 `yaml:"walk_speed"`
	RunSpeed    float64 `yaml:"run_speed"`
}

type PerceptionSpec struct {
	VisionRange   float64 `yaml:"vision_range"`
	FOV           float64 `yaml:"fov"`
	EyeHeight     float64 `yaml:"eye_height"`
	HearingRadius float64 `yaml:"hearing_radius"`
}

type PatrolSpec struct {
	WaypointWait  float64 `yaml:"waypoint_wait"`
	BoredomTime   float64 `yaml:"boredom_time"`
	HotZoneChance float64 `yaml:"hot_zone_chance"`
}

type MemorySpec struct {
	MaxHotZones               int     `yaml:"max_hot_zones"`
	InvestigationRadius       float64 `yaml:"investigation_radius"`
	DwellTime                 float64 `yaml:"dwell_time"`
	LostTargetDwellMultiplier float64 `yaml:"lost_target_dwell_multiplier"`
}

type ChaseSpec struct {
	CloseRange  float64 `yaml:"close_range"`
	MediumRange float64 `yaml:"medium_range"`
	BoredomTime float64 `yaml:"boredom_time"`
}

type HideSpec struct {
	SearchRadius      float64 `yaml:"search_radius"`
	MinTargetDistance float64 `yaml:"min_target_distance"`
	ArrivalTolerance  float64 `yaml:"arrival_tolerance"`
}

type DoorSpec struct {
	Range         float64 `yaml:"range"`
	CheckInterval float64 `yaml:"check_interval"`
}

type CaptureSpec struct {
	Distance      float64 `yaml:"distance"`
	SightDistance float64 `yaml:"sight_distance"`
}

// DebugSpec colours the viewer overlay.
type DebugSpec struct {
	VisionColor  *YAMLColor `yaml:"vision_color"`
	HotZoneColor *YAMLColor `yaml:"hot_zone_color"`
	SpotColor    *YAMLColor `yaml:"spot_color"`
	PathColor    *YAMLColor `yaml:"path_color"`
}

func LoadAgentSpec(name string) (*AgentSpec, error) {
	if name == "" {
		name = DefaultAgentSpec
	}
	spec, err := LoadSpec[AgentSpec](name)
	if err != nil {
		return nil, err
	}
	return &spec, nil
}

// WithProfile returns a copy of the spec with the named profile applied.
// An empty name returns the base spec.
func (s *AgentSpec) WithProfile(profile string) (*AgentSpec, error) {
	out := *s
	if profile == "" {
		return &out, nil
	}
	node, ok := s.Profiles[profile]
	if !ok {
		return nil, fmt.Errorf("prefabs: %s: unknown profile %q", s.Name, profile)
	}
	if err := node.Decode(&out); err != nil {
		return nil, fmt.Errorf("prefabs: %s: decode profile %q: %w", s.Name, profile, err)
	}
	out.Profiles = s.Profiles
	return &out, nil
}

// ProfileNames lists the profiles defined by the spec in name order.
func (s *AgentSpec) ProfileNames() []string {
	names := make([]string, 0, len(s.Profiles))
	for name := range s.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Tuning converts the spec into engine thresholds. Zero values fall back to
// the stock tuning.
func (s *AgentSpec) Tuning() component.AITuning {
	t := component.DefaultAITuning()
	set := func(dst *float64, v float64) {
		if v != 0 {
			*dst = v
		}
	}

	set(&t.PatrolSpeed, s.Movement.PatrolSpeed)
	set(&t.WalkSpeed, s.Movement.WalkSpeed)
	set(&t.RunSpeed, s.Movement.RunSpeed)

	set(&t.VisionRange, s.Perception.VisionRange)
	set(&t.FOV, s.Perception.FOV)
	set(&t.EyeHeight, s.Perception.EyeHeight)
	set(&t.HearingRadius, s.Perception.HearingRadius)

	set(&t.WaypointWaitTime, s.Patrol.WaypointWait)
	set(&t.PatrolBoredomTime, s.Patrol.BoredomTime)
	set(&t.HotZoneChance, s.Patrol.HotZoneChance)

	if s.Memory.MaxHotZones != 0 {
		t.MaxHotZones = s.Memory.MaxHotZones
	}
	set(&t.InvestigationRadius, s.Memory.InvestigationRadius)
	set(&t.DwellTime, s.Memory.DwellTime)
	set(&t.LostTargetDwellMultiplier, s.Memory.LostTargetDwellMultiplier)

	set(&t.CloseRange, s.Chase.CloseRange)
	set(&t.MediumRange, s.Chase.MediumRange)
	set(&t.ChaseBoredomTime, s.Chase.BoredomTime)

	set(&t.HidingSpotSearchRadius, s.Hide.SearchRadius)
	set(&t.HideMinTargetDistance, s.Hide.MinTargetDistance)
	set(&t.HideArrivalTolerance, s.Hide.ArrivalTolerance)

	set(&t.DoorRange, s.Doors.Range)
	set(&t.DoorCheckInterval, s.Doors.CheckInterval)

	set(&t.CaptureDistance, s.Capture.Distance)
	set(&t.SightCaptureDistance, s.Capture.SightDistance)

	t.Script = s.Script
	return t
}

// LoadTuning loads an agent prefab, applies the profile and validates the
// resulting tuning.
func LoadTuning(name, profile string) (component.AITuning, error) {
	spec, err := LoadAgentSpec(name)
	if err != nil {
		return component.AITuning{}, err
	}
	spec, err = spec.WithProfile(profile)
	if err != nil {
		return component.AITuning{}, err
	}
	t := spec.Tuning()
	if err := t.Validate(); err != nil {
		return component.AITuning{}, fmt.Errorf("prefabs: %s: %w", spec.Name, err)
	}
	return t, nil
}

// YAMLColor decodes "#rrggbb" or "#rrggbbaa".
type YAMLColor struct {
	color.Color
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}

	s := strings.TrimPrefix(value.Value, "#")

	if len(s) != 6 && len(s) != 8 {
		return fmt.Errorf("invalid color format: %s", value.Value)
	}

	parse := func(start int) (uint8, error) {
		v, err := strconv.ParseUint(s[start:start+2], 16, 8)
		return uint8(v), err
	}

	var rgba [4]uint8
	rgba[3] = 255
	for i := 0; i < len(s)/2; i++ {
		v, err := parse(i * 2)
		if err != nil {
			return fmt.Errorf("invalid color format: %s: %w", value.Value, err)
		}
		rgba[i] = v
	}

	c.Color = color.NRGBA{R: rgba[0], G: rgba[1], B: rgba[2], A: rgba[3]}
	return nil
}

// Or returns the colour, or fallback when unset.
func (c *YAMLColor) Or(fallback color.Color) color.Color {
	if c == nil || c.Color == nil {
		return fallback
	}
	return c.Color
}
