package obj

import (
	"math"

	"github.com/google/uuid"
	"github.com/milk9111/stalker/common"
)

const (
	// PlayerRadius is the player's footprint on the ground plane.
	PlayerRadius = 0.3
	// FastThreshold is the speed above which footsteps can be heard.
	FastThreshold = 3.0
)

// Player is the pursued actor. It implements component.Target.
type Player struct {
	ID        string
	WalkSpeed float64
	RunSpeed  float64

	// Blocked reports cells the player cannot enter.
	Blocked func(x, z int) bool

	position common.Vec3
	velocity common.Vec3
	facing   common.Vec3
	locker   *Locker
}

func NewPlayer(position common.Vec3, blocked func(x, z int) bool) *Player {
	return &Player{
		ID:        uuid.NewString(),
		WalkSpeed: 2.5,
		RunSpeed:  5,
		Blocked:   blocked,
		position:  position,
		facing:    common.Forward,
	}
}

func (p *Player) Position() common.Vec3 { return p.position }

func (p *Player) Velocity() common.Vec3 { return p.velocity }

func (p *Player) Facing() common.Vec3 { return p.facing }

func (p *Player) Concealed() bool { return p.locker != nil }

func (p *Player) MovingFast() bool {
	return !p.Concealed() && p.velocity.Flat().Len() > FastThreshold
}

// Owns reports whether a collider handed out by the collision world is the
// player.
func (p *Player) Owns(object any) bool {
	other, ok := object.(*Player)
	return ok && other == p
}

// Move walks or runs in dir for dt seconds, sliding along walls.
func (p *Player) Move(dir common.Vec3, run bool, dt float64) {
	if dt <= 0 {
		return
	}
	if p.Concealed() {
		p.velocity = common.Vec3{}
		return
	}
	dir = dir.Flat()
	if dir.Len() > 1 {
		dir = dir.Normalize()
	}
	if dir.IsZero() {
		p.velocity = common.Vec3{}
		return
	}
	p.facing = dir.Normalize()

	speed := p.WalkSpeed
	if run {
		speed = p.RunSpeed
	}
	step := dir.Scale(speed * dt)
	start := p.position

	next := p.position
	next.X += step.X
	if !p.collides(next) {
		p.position = next
	}
	next = p.position
	next.Z += step.Z
	if !p.collides(next) {
		p.position = next
	}
	p.velocity = p.position.Sub(start).Scale(1 / dt)
}

// Teleport places the player without collision checks.
func (p *Player) Teleport(pos common.Vec3) {
	p.position = pos
	p.velocity = common.Vec3{}
}

func (p *Player) collides(at common.Vec3) bool {
	if p.Blocked == nil {
		return false
	}
	minX := int(math.Floor((at.X - PlayerRadius) / common.TileSize))
	maxX := int(math.Floor((at.X + PlayerRadius) / common.TileSize))
	minZ := int(math.Floor((at.Z - PlayerRadius) / common.TileSize))
	maxZ := int(math.Floor((at.Z + PlayerRadius) / common.TileSize))
	for z := minZ; z <= maxZ; z++ {
		for x := minX; x <= maxX; x++ {
			if p.Blocked(x, z) {
				return true
			}
		}
	}
	return false
}

// EnterLocker hides the player in l.
func (p *Player) EnterLocker(l *Locker) bool {
	if l == nil || l.occupant != nil || p.locker != nil {
		return false
	}
	l.occupant = p
	p.locker = l
	p.velocity = common.Vec3{}
	p.position = l.Position
	return true
}

// LeaveLocker steps out of the current locker.
func (p *Player) LeaveLocker() {
	if p.locker == nil {
		return
	}
	p.locker.occupant = nil
	p.locker = nil
}

func (p *Player) Locker() *Locker { return p.locker }
