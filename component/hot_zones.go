package component

import (
	"math/rand/v2"

	"github.com/milk9111/stalker/common"
)

// DefaultMaxHotZones bounds the memory when no explicit size is configured.
const DefaultMaxHotZones = 10

// HotZones is the stalker's bounded memory of recent points of interest.
// Entries are ordered most recent first and never expire by time; the oldest
// entry is evicted when the bound is exceeded.
type HotZones struct {
	max   int
	zones []common.Vec3

	// OnClamp is called when an invariant violation had to be repaired.
	OnClamp func(have, max int)
}

// NewHotZones creates a memory bounded to max entries.
func NewHotZones(max int) *HotZones {
	if max <= 0 {
		max = DefaultMaxHotZones
	}
	return &HotZones{max: max, zones: make([]common.Vec3, 0, max+1)}
}

// Record inserts p at the front.
func (h *HotZones) Record(p common.Vec3) {
	if h == nil {
		return
	}
	h.zones = append(h.zones, common.Vec3{})
	copy(h.zones[1:], h.zones)
	h.zones[0] = p
	h.clamp()
}

// SetMax changes the bound, evicting the oldest entries if needed.
func (h *HotZones) SetMax(max int) {
	if h == nil || max <= 0 {
		return
	}
	h.max = max
	if len(h.zones) > max {
		h.zones = h.zones[:max]
	}
}

func (h *HotZones) clamp() {
	switch {
	case len(h.zones) == h.max+1:
		h.zones = h.zones[:h.max]
	case len(h.zones) > h.max:
		if h.OnClamp != nil {
			h.OnClamp(len(h.zones), h.max)
		}
		h.zones = h.zones[:h.max]
	}
}

// Len returns the number of remembered zones.
func (h *HotZones) Len() int {
	if h == nil {
		return 0
	}
	return len(h.zones)
}

// Max returns the bound.
func (h *HotZones) Max() int {
	if h == nil {
		return 0
	}
	return h.max
}

// At returns the i-th most recent zone.
func (h *HotZones) At(i int) (common.Vec3, bool) {
	if h == nil || i < 0 || i >= len(h.zones) {
		return common.Vec3{}, false
	}
	return h.zones[i], true
}

// All returns a copy of the zones, most recent first.
func (h *HotZones) All() []common.Vec3 {
	if h == nil {
		return nil
	}
	out := make([]common.Vec3, len(h.zones))
	copy(out, h.zones)
	return out
}

// Random returns a uniformly chosen zone.
func (h *HotZones) Random(r *rand.Rand) (common.Vec3, bool) {
	if h == nil || len(h.zones) == 0 {
		return common.Vec3{}, false
	}
	var i int
	if r != nil {
		i = r.IntN(len(h.zones))
	} else {
		i = rand.IntN(len(h.zones))
	}
	return h.zones[i], true
}

// Score sums 1/(d+1) over every zone within radius of p.
func (h *HotZones) Score(p common.Vec3, radius float64) float64 {
	if h == nil {
		return 0
	}
	score := 0.0
	for _, z := range h.zones {
		d := common.GroundDistance(p, z)
		if d <= radius {
			score += 1 / (d + 1)
		}
	}
	return score
}

// PickWeighted chooses the waypoint index closest to the remembered zones.
// The current waypoint is never chosen unless it is the only one. When no
// zone lies within radius of any candidate the next sequential waypoint is
// returned. Ties keep the earliest candidate.
func (h *HotZones) PickWeighted(current int, waypoints []common.Vec3, radius float64) int {
	n := len(waypoints)
	if n == 0 {
		return -1
	}
	next := 0
	if current >= 0 {
		next = (current + 1) % n
	}
	if h.Len() == 0 {
		return next
	}

	best := -1
	bestScore := 0.0
	for i, wp := range waypoints {
		if i == current && n > 1 {
			continue
		}
		s := h.Score(wp, radius)
		if s > bestScore {
			best = i
			bestScore = s
		}
	}
	if best < 0 {
		return next
	}
	return best
}
