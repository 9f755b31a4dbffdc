package obj

import (
	"sync"
)

// GameManager ends the session on the first capture and ignores later ones.
type GameManager struct {
	mu       sync.Mutex
	ended    bool
	notified int

	// OnGameOver runs once, on the first capture.
	OnGameOver func()
}

func (g *GameManager) NotifyCaptured() {
	g.mu.Lock()
	g.notified++
	if g.ended {
		g.mu.Unlock()
		return
	}
	g.ended = true
	fn := g.OnGameOver
	g.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Ended reports whether the game is over.
func (g *GameManager) Ended() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ended
}

// Notifications counts every NotifyCaptured call, including ignored ones.
func (g *GameManager) Notifications() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.notified
}

// Reset starts a new session.
func (g *GameManager) Reset() {
	g.mu.Lock()
	g.ended = false
	g.notified = 0
	g.mu.Unlock()
}
