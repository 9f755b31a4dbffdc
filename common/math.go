package common

import "math"

// Vec3 is a world-space point or direction. Y is up; the ground plane is X/Z.
type Vec3 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

var (
	Up      = Vec3{Y: 1}
	Forward = Vec3{Z: 1}
)

func V3(x, y, z float64) Vec3 { return Vec3{X: x, Y: y, Z: z} }

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

func (v Vec3) Len() float64 { return math.Sqrt(v.Dot(v)) }

// Flat drops the height component.
func (v Vec3) Flat() Vec3 { return Vec3{X: v.X, Z: v.Z} }

func (v Vec3) Normalize() Vec3 {
	l := v.Len()
	if l < 1e-9 {
		return Vec3{}
	}
	return v.Scale(1 / l)
}

func (v Vec3) IsZero() bool { return v.X == 0 && v.Y == 0 && v.Z == 0 }

func Distance(a, b Vec3) float64 { return a.Sub(b).Len() }

// GroundDistance ignores height, matching how the agent and the player stand
// on the same floor.
func GroundDistance(a, b Vec3) float64 { return a.Sub(b).Flat().Len() }

// AngleBetween returns the unsigned angle in degrees between two directions.
// A zero-length input yields 0.
func AngleBetween(a, b Vec3) float64 {
	la := a.Len()
	lb := b.Len()
	if la < 1e-9 || lb < 1e-9 {
		return 0
	}
	c := a.Dot(b) / (la * lb)
	if c > 1 {
		c = 1
	} else if c < -1 {
		c = -1
	}
	return math.Acos(c) * 180 / math.Pi
}

// Yaw returns the heading of a direction on the ground plane in radians,
// measured from +X towards +Z.
func Yaw(dir Vec3) float64 {
	return math.Atan2(dir.Z, dir.X)
}

// FromYaw is the inverse of Yaw.
func FromYaw(yaw float64) Vec3 {
	return Vec3{X: math.Cos(yaw), Z: math.Sin(yaw)}
}
