package component

import (
	"math"
	"sync"

	"github.com/google/uuid"
	"github.com/milk9111/stalker/common"
)

// Side selects which peek pose a hiding spot uses.
type Side int

const (
	SideRight Side = iota
	SideLeft
)

func (s Side) String() string {
	if s == SideLeft {
		return "left"
	}
	return "right"
}

// HidingSpot is a fixed tactical vantage point owned by the level.
type HidingSpot struct {
	ID       string
	Position common.Vec3
	// Forward is the direction the agent faces while peeking from the spot.
	Forward common.Vec3
	Side    Side

	mu       sync.RWMutex
	distance float64
	registry *HidingSpotRegistry
}

// NewHidingSpot creates a spot with a fresh id.
func NewHidingSpot(pos, forward common.Vec3, side Side) *HidingSpot {
	return &HidingSpot{
		ID:       uuid.NewString(),
		Position: pos,
		Forward:  forward.Normalize(),
		Side:     side,
		distance: math.Inf(1),
	}
}

// DistanceToAgent returns the distance computed by the last refresh.
func (s *HidingSpot) DistanceToAgent() float64 {
	if s == nil {
		return math.Inf(1)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.distance
}

func (s *HidingSpot) setDistance(d float64) {
	s.mu.Lock()
	s.distance = d
	s.mu.Unlock()
}

// Pose returns the peek pose for the spot's side.
func (s *HidingSpot) Pose() Pose {
	if s != nil && s.Side == SideLeft {
		return PosePeekLeft
	}
	return PosePeekRight
}

// Enable registers the spot with r.
func (s *HidingSpot) Enable(r *HidingSpotRegistry) {
	if s == nil || r == nil {
		return
	}
	r.Register(s)
}

// Disable removes the spot from the registry it was enabled on.
func (s *HidingSpot) Disable() {
	if s == nil {
		return
	}
	s.mu.RLock()
	r := s.registry
	s.mu.RUnlock()
	if r != nil {
		r.Unregister(s)
	}
}

// Enabled reports whether the spot is currently registered.
func (s *HidingSpot) Enabled() bool {
	if s == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry != nil
}

// HidingSpotRegistry tracks enabled hiding spots in registration order.
// Level objects may register and unregister while the agent queries.
type HidingSpotRegistry struct {
	mu    sync.RWMutex
	spots []*HidingSpot
}

// NewHidingSpotRegistry creates an empty registry.
func NewHidingSpotRegistry() *HidingSpotRegistry {
	return &HidingSpotRegistry{}
}

// Register adds a spot; registering twice is a no-op.
func (r *HidingSpotRegistry) Register(s *HidingSpot) {
	if r == nil || s == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.spots {
		if existing == s {
			return
		}
	}
	r.spots = append(r.spots, s)
	s.mu.Lock()
	s.registry = r
	s.mu.Unlock()
}

// Unregister removes a spot while preserving the order of the rest.
func (r *HidingSpotRegistry) Unregister(s *HidingSpot) {
	if r == nil || s == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.spots {
		if existing == s {
			r.spots = append(r.spots[:i], r.spots[i+1:]...)
			s.mu.Lock()
			s.registry = nil
			s.mu.Unlock()
			return
		}
	}
}

// Len returns the number of registered spots.
func (r *HidingSpotRegistry) Len() int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.spots)
}

// Spots returns a snapshot of the registered spots.
func (r *HidingSpotRegistry) Spots() []*HidingSpot {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*HidingSpot, len(r.spots))
	copy(out, r.spots)
	return out
}

// RefreshDistances recomputes every spot's distance to the agent.
func (r *HidingSpotRegistry) RefreshDistances(agent common.Vec3) {
	for _, s := range r.Spots() {
		s.setDistance(common.GroundDistance(s.Position, agent))
	}
}

// GetClosest returns the registered spot nearest to the agent whose distance
// is within maxDistance. With requireInFront, spots whose facing direction
// points away from `from` (the target is behind them) are skipped. Ties go to
// the earliest registered spot.
func (r *HidingSpotRegistry) GetClosest(from common.Vec3, maxDistance float64, requireInFront bool) *HidingSpot {
	var closest *HidingSpot
	closestDistance := math.MaxFloat64
	for _, s := range r.Spots() {
		d := s.DistanceToAgent()
		if d > maxDistance {
			continue
		}
		if requireInFront && s.Forward.Flat().Dot(from.Sub(s.Position).Flat()) < 0 {
			continue
		}
		if d < closestDistance {
			closestDistance = d
			closest = s
		}
	}
	return closest
}
