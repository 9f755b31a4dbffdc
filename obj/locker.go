package obj

import (
	"github.com/google/uuid"
	"github.com/milk9111/stalker/common"
)

// Locker conceals whoever is inside it.
type Locker struct {
	ID       string
	Position common.Vec3

	occupant *Player
}

func NewLocker(position common.Vec3) *Locker {
	return &Locker{ID: uuid.NewString(), Position: position}
}

func (l *Locker) Occupant() *Player { return l.occupant }

func (l *Locker) Occupied() bool { return l.occupant != nil }
