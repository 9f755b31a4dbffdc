package main

import (
	"math"

	"github.com/milk9111/stalker/common"
)

// Camera maps the ground plane to the screen. World X runs right and world Z
// runs down; one world unit is common.PixelsPerUnit pixels at zoom 1.
type Camera struct {
	PosX float64
	PosZ float64

	screenW int
	screenH int
	zoom    float64

	// smoothing factor (0..1). higher -> faster follow.
	smooth float64
	// world bounds in world units (0 means unbounded)
	worldW float64
	worldD float64
}

func NewCamera(screenW, screenH int, zoom float64) *Camera {
	return &Camera{screenW: screenW, screenH: screenH, zoom: zoom, smooth: 0.15}
}

func (c *Camera) SetZoom(z float64) {
	if z <= 0 {
		return
	}
	c.zoom = z
}

func (c *Camera) Zoom() float64 { return c.zoom }

// SetWorldBounds sets the level extent for clamping.
func (c *Camera) SetWorldBounds(w, d float64) {
	c.worldW = w
	c.worldD = d
}

func (c *Camera) scale() float64 { return common.PixelsPerUnit * c.zoom }

// ToScreen converts a world position to screen pixels.
func (c *Camera) ToScreen(p common.Vec3) (float64, float64) {
	s := c.scale()
	return (p.X-c.PosX)*s + float64(c.screenW)/2, (p.Z-c.PosZ)*s + float64(c.screenH)/2
}

// ToWorld converts screen pixels to a ground-plane position.
func (c *Camera) ToWorld(x, y float64) common.Vec3 {
	s := c.scale()
	return common.Vec3{
		X: (x-float64(c.screenW)/2)/s + c.PosX,
		Z: (y-float64(c.screenH)/2)/s + c.PosZ,
	}
}

// Pixels converts a world length to screen pixels.
func (c *Camera) Pixels(d float64) float64 { return d * c.scale() }

// Update moves the camera toward the target.
func (c *Camera) Update(target common.Vec3) {
	if c.smooth <= 0 {
		c.PosX, c.PosZ = target.X, target.Z
	} else {
		c.PosX += (target.X - c.PosX) * c.smooth
		c.PosZ += (target.Z - c.PosZ) * c.smooth
	}
	c.constrain()
}

// SnapTo places the camera without smoothing, e.g. after a level load.
func (c *Camera) SnapTo(target common.Vec3) {
	c.PosX, c.PosZ = target.X, target.Z
	c.constrain()
}

func (c *Camera) constrain() {
	s := c.scale()
	if s == 0 {
		return
	}
	// snap to the pixel grid
	c.PosX = math.Round(c.PosX*s) / s
	c.PosZ = math.Round(c.PosZ*s) / s

	halfW := float64(c.screenW) / s / 2
	halfD := float64(c.screenH) / s / 2
	c.PosX = clampAxis(c.PosX, halfW, c.worldW)
	c.PosZ = clampAxis(c.PosZ, halfD, c.worldD)
}

func clampAxis(v, half, size float64) float64 {
	if size <= 0 {
		return v
	}
	lo, hi := half, size-half
	if hi < lo {
		// world smaller than view: center on world
		return size / 2
	}
	return math.Max(lo, math.Min(hi, v))
}
