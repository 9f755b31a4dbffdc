package system

import (
	"fmt"
	"math"
	"strings"

	"github.com/milk9111/stalker/common"
	"github.com/milk9111/stalker/component"
	"github.com/milk9111/stalker/levels"
	"github.com/milk9111/stalker/obj"
)

func (w *World) spawnDoorsFromEntities(entities []levels.Entity) ([]*obj.Door, []levels.Entity) {
	doors := make([]*obj.Door, 0)
	remaining := make([]levels.Entity, 0, len(entities))
	for _, pe := range entities {
		if !isEntity(pe, levels.EntityDoor) {
			remaining = append(remaining, pe)
			continue
		}
		cell := component.GridCell{X: pe.X, Z: pe.Y}
		door := obj.NewDoor(cell, w.Level.EntityPosition(pe), pe.BoolProp("locked"))
		door.OnOpened = func(at common.Vec3) {
			if w.Engine != nil {
				w.Engine.NotifyDoorOpened(at)
			}
		}
		w.CollisionWorld.AddDoor(door)
		w.doorAt[cell] = door
		doors = append(doors, door)
	}
	return doors, remaining
}

func (w *World) spawnLockersFromEntities(entities []levels.Entity) ([]*obj.Locker, []levels.Entity) {
	lockers := make([]*obj.Locker, 0)
	remaining := make([]levels.Entity, 0, len(entities))
	for _, pe := range entities {
		if !isEntity(pe, levels.EntityLocker) {
			remaining = append(remaining, pe)
			continue
		}
		lockers = append(lockers, obj.NewLocker(w.Level.EntityPosition(pe)))
	}
	return lockers, remaining
}

// spawnHidingSpotsFromEntities reads "facing" in degrees (0 is +X, 90 is +Z)
// and "side" (left or right).
func (w *World) spawnHidingSpotsFromEntities(entities []levels.Entity) ([]*component.HidingSpot, []levels.Entity) {
	spots := make([]*component.HidingSpot, 0)
	remaining := make([]levels.Entity, 0, len(entities))
	for _, pe := range entities {
		if !isEntity(pe, levels.EntityHidingSpot) {
			remaining = append(remaining, pe)
			continue
		}
		side := component.SideRight
		if strings.EqualFold(pe.StringProp("side", "right"), "left") {
			side = component.SideLeft
		}
		yaw := pe.FloatProp("facing", 0) * math.Pi / 180
		spot := component.NewHidingSpot(w.Level.EntityPosition(pe), common.FromYaw(yaw), side)
		spot.Enable(w.Registry)
		spots = append(spots, spot)
	}
	return spots, remaining
}

func (w *World) waypointsFromEntities(entities []levels.Entity) ([]common.Vec3, []levels.Entity) {
	return w.pointsFromEntities(entities, levels.EntityWaypoint)
}

func (w *World) routeFromEntities(entities []levels.Entity) (*obj.PlayerRoute, []levels.Entity) {
	points, remaining := w.pointsFromEntities(entities, levels.EntityPlayerRoute)
	if len(points) == 0 {
		return nil, remaining
	}
	route := obj.NewPlayerRoute(w.Player, w.Level, points)
	route.Blocked = w.wallOrLockedDoor
	route.DoorAt = func(c component.GridCell) *obj.Door { return w.DoorAt(c) }
	return route, remaining
}

// pointsFromEntities collects positions of one entity type ordered by their
// "order" prop.
func (w *World) pointsFromEntities(entities []levels.Entity, typ string) ([]common.Vec3, []levels.Entity) {
	matched := make([]levels.Entity, 0)
	remaining := make([]levels.Entity, 0, len(entities))
	for _, pe := range entities {
		if isEntity(pe, typ) {
			matched = append(matched, pe)
			continue
		}
		remaining = append(remaining, pe)
	}
	ordered := (&levels.Level{Entities: matched}).EntitiesOf(typ)
	points := make([]common.Vec3, 0, len(ordered))
	for _, pe := range ordered {
		points = append(points, w.Level.EntityPosition(pe))
	}
	return points, remaining
}

func (w *World) spawnPlayerFromEntities(entities []levels.Entity) (*obj.Player, []levels.Entity, error) {
	pe, remaining, ok := takeEntity(entities, levels.EntityPlayerSpawn)
	if !ok {
		return nil, entities, fmt.Errorf("level %s has no %s", w.Level.Name, levels.EntityPlayerSpawn)
	}
	player := obj.NewPlayer(w.Level.EntityPosition(pe), w.wallOrClosedDoor)
	w.CollisionWorld.AttachTarget(player)
	return player, remaining, nil
}

func (w *World) spawnStalkerFromEntities(entities []levels.Entity) (*obj.NavAgent, []levels.Entity, error) {
	pe, remaining, ok := takeEntity(entities, levels.EntityStalkerSpawn)
	if !ok {
		return nil, entities, fmt.Errorf("level %s has no %s", w.Level.Name, levels.EntityStalkerSpawn)
	}
	agent := obj.NewNavAgent(w.Level, w.Level.EntityPosition(pe))
	agent.Blocked = w.wallOrLockedDoor
	agent.DoorAt = func(c component.GridCell) *obj.Door { return w.DoorAt(c) }
	return agent, remaining, nil
}

func takeEntity(entities []levels.Entity, typ string) (levels.Entity, []levels.Entity, bool) {
	for i, pe := range entities {
		if isEntity(pe, typ) {
			remaining := make([]levels.Entity, 0, len(entities)-1)
			remaining = append(remaining, entities[:i]...)
			remaining = append(remaining, entities[i+1:]...)
			return pe, remaining, true
		}
	}
	return levels.Entity{}, entities, false
}

func isEntity(pe levels.Entity, typ string) bool {
	return strings.EqualFold(strings.TrimSpace(pe.Type), typ)
}
