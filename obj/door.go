package obj

import (
	"github.com/google/uuid"
	"github.com/milk9111/stalker/common"
	"github.com/milk9111/stalker/component"
)

// Door blocks a single cell while closed.
type Door struct {
	ID   string
	Cell component.GridCell

	position common.Vec3
	locked   bool
	open     bool

	// OnOpened is called when the player opens the door. Doors opened by the
	// stalker on its way stay silent.
	OnOpened func(at common.Vec3)

	watchers []func(*Door)
}

func NewDoor(cell component.GridCell, position common.Vec3, locked bool) *Door {
	return &Door{ID: uuid.NewString(), Cell: cell, position: position, locked: locked}
}

func (d *Door) Position() common.Vec3 { return d.position }

func (d *Door) IsLocked() bool { return d.locked }

func (d *Door) IsOpen() bool { return d.open }

// Open opens an unlocked door without raising a noise.
func (d *Door) Open() {
	if d.locked || d.open {
		return
	}
	d.open = true
	d.changed()
}

// Close shuts the door.
func (d *Door) Close() {
	if !d.open {
		return
	}
	d.open = false
	d.changed()
}

// SetLocked locks or unlocks the door. Locking closes it.
func (d *Door) SetLocked(locked bool) {
	d.locked = locked
	if locked && d.open {
		d.open = false
	}
	d.changed()
}

// Interact toggles the door for the player and reports whether it is now
// open. Opening notifies OnOpened.
func (d *Door) Interact() bool {
	if d.locked {
		return false
	}
	if d.open {
		d.Close()
		return false
	}
	d.Open()
	if d.OnOpened != nil {
		d.OnOpened(d.position)
	}
	return true
}

// Watch registers a callback fired whenever the door opens, closes or
// changes its lock.
func (d *Door) Watch(fn func(*Door)) {
	if fn != nil {
		d.watchers = append(d.watchers, fn)
	}
}

func (d *Door) changed() {
	for _, fn := range d.watchers {
		fn(d)
	}
}
