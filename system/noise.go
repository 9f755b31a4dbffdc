package system

import (
	"sync"

	"github.com/milk9111/stalker/common"
)

// NoiseListener receives noises raised in the level.
type NoiseListener interface {
	Position() common.Vec3
	HearNoise(at common.Vec3)
}

// NoiseBus forwards level noises to listeners in earshot.
type NoiseBus struct {
	mu        sync.Mutex
	listeners []NoiseListener
}

// Listen adds a listener. Adding the same listener twice is a no-op.
func (b *NoiseBus) Listen(l NoiseListener) {
	if b == nil || l == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, existing := range b.listeners {
		if existing == l {
			return
		}
	}
	b.listeners = append(b.listeners, l)
}

// Forget removes a listener.
func (b *NoiseBus) Forget(l NoiseListener) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, existing := range b.listeners {
		if existing == l {
			b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
			return
		}
	}
}

// Generate raises a noise at p. Listeners within radius hear it; a radius of
// zero or less reaches everyone. It returns how many listeners were reached.
func (b *NoiseBus) Generate(p common.Vec3, radius float64) int {
	if b == nil {
		return 0
	}
	b.mu.Lock()
	listeners := make([]NoiseListener, len(b.listeners))
	copy(listeners, b.listeners)
	b.mu.Unlock()

	reached := 0
	for _, l := range listeners {
		if radius > 0 && common.GroundDistance(l.Position(), p) > radius {
			continue
		}
		l.HearNoise(p)
		reached++
	}
	return reached
}
