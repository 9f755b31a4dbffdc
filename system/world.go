package system

import (
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/milk9111/stalker/common"
	"github.com/milk9111/stalker/component"
	"github.com/milk9111/stalker/internal/log"
	"github.com/milk9111/stalker/obj"
)

// WorldConfig selects the level and the stalker tuning of a World.
type WorldConfig struct {
	Level  string
	Tuning component.AITuning
	// Seed makes patrol choices reproducible. Zero picks a random seed.
	Seed uint64
	// Autopilot walks the player along the level's player_route.
	Autopilot bool
	Logger    *slog.Logger
}

// World owns level loading, spawning and the per-frame update order of the
// stalker and its collaborators.
type World struct {
	Config WorldConfig

	Level          *obj.Level
	CollisionWorld *obj.CollisionWorld
	Player         *obj.Player
	Stalker        *obj.NavAgent
	Engine         *Engine
	Registry       *component.HidingSpotRegistry
	Spots          []*component.HidingSpot
	Doors          []*obj.Door
	Lockers        []*obj.Locker
	Waypoints      []common.Vec3
	Route          *obj.PlayerRoute
	Noise          *NoiseBus
	Manager        *obj.GameManager
	Events         *component.AIEventEmitter

	doorAt map[component.GridCell]*obj.Door
	log    *slog.Logger
}

// NewWorld creates a world and loads the requested level.
func NewWorld(cfg WorldConfig) (*World, error) {
	w := &World{Config: cfg}
	w.log = cfg.Logger
	if w.log == nil {
		w.log = log.L()
	}
	if err := w.Load(cfg.Level); err != nil {
		return nil, err
	}
	return w, nil
}

// Load loads a level and respawns everything in it.
func (w *World) Load(levelPath string) error {
	if w == nil {
		return fmt.Errorf("world is nil")
	}
	lvl, err := obj.LoadLevel(levelPath)
	if err != nil {
		return err
	}
	w.Config.Level = levelPath
	w.Level = lvl
	w.CollisionWorld = obj.NewCollisionWorld(lvl)
	w.Registry = component.NewHidingSpotRegistry()
	w.Noise = &NoiseBus{}
	if w.Events == nil {
		w.Events = &component.AIEventEmitter{}
	}
	w.doorAt = map[component.GridCell]*obj.Door{}
	if w.Manager == nil {
		w.Manager = &obj.GameManager{}
	}
	w.Manager.Reset()
	w.Spots, w.Doors, w.Lockers, w.Waypoints, w.Route = nil, nil, nil, nil, nil

	return w.SpawnEntities()
}

// Restart reloads the current level.
func (w *World) Restart() error {
	return w.Load(w.Config.Level)
}

// SpawnEntities spawns the player, the stalker and level props from the
// level's entities, then builds the behaviour engine.
func (w *World) SpawnEntities() error {
	if w == nil || w.Level == nil {
		return fmt.Errorf("world has no level")
	}
	entities := w.Level.Entities
	w.Doors, entities = w.spawnDoorsFromEntities(entities)
	w.Lockers, entities = w.spawnLockersFromEntities(entities)
	w.Spots, entities = w.spawnHidingSpotsFromEntities(entities)
	w.Waypoints, entities = w.waypointsFromEntities(entities)

	var err error
	if w.Player, entities, err = w.spawnPlayerFromEntities(entities); err != nil {
		return err
	}
	if w.Stalker, entities, err = w.spawnStalkerFromEntities(entities); err != nil {
		return err
	}
	w.Route, entities = w.routeFromEntities(entities)
	for _, e := range entities {
		w.log.Warn("world: unknown entity ignored", "type", e.Type, "x", e.X, "y", e.Y)
	}

	return w.buildEngine()
}

func (w *World) buildEngine() error {
	var rng *rand.Rand
	if w.Config.Seed != 0 {
		rng = rand.New(rand.NewPCG(w.Config.Seed, w.Config.Seed^0x9e3779b97f4a7c15))
	}

	var hooks *ScriptHooks
	if w.Config.Tuning.Script != "" {
		h, err := LoadScriptHooks(w.Config.Tuning.Script)
		if err != nil {
			w.log.Warn("world: script hooks disabled", "script", w.Config.Tuning.Script, "error", err)
		} else {
			hooks = h
		}
	}

	engine, err := NewEngine(w.Config.Tuning, Deps{
		Locomotion: w.Stalker,
		Target:     w.Player,
		Spatial:    w.CollisionWorld,
		Registry:   w.Registry,
		Manager:    w.Manager,
		Emitter:    w.Events,
		Waypoints:  w.Waypoints,
		Rand:       rng,
		Logger:     w.log,
		Script:     hooks,
	})
	if err != nil {
		return fmt.Errorf("world: build engine: %w", err)
	}
	w.Engine = engine
	w.Noise.Listen(engine)
	return nil
}

// Update advances one frame: player, physics sync, stalker movement, then
// the behaviour engine.
func (w *World) Update(dt float64) {
	if w == nil || w.Engine == nil {
		return
	}
	if w.Config.Autopilot && !w.Manager.Ended() {
		w.Route.Update(dt)
	}
	w.CollisionWorld.SyncTarget()
	if !w.Manager.Ended() {
		w.Stalker.Update(dt)
	}
	w.Engine.Tick(dt)
}

// SetTuning applies new thresholds to the running engine.
func (w *World) SetTuning(t component.AITuning) error {
	if err := w.Engine.SetTuning(t); err != nil {
		return err
	}
	w.Config.Tuning = t
	return nil
}

// MakeNoise raises a noise at the player's position.
func (w *World) MakeNoise(radius float64) int {
	return w.Noise.Generate(w.Player.Position(), radius)
}

// interactRange is how close the player must be to use a door or locker.
const interactRange = 1.5

// InteractDoor toggles the closest door in reach.
func (w *World) InteractDoor() (*obj.Door, bool) {
	var best *obj.Door
	bestDist := interactRange
	for _, d := range w.Doors {
		if dist := common.GroundDistance(d.Position(), w.Player.Position()); dist <= bestDist {
			best, bestDist = d, dist
		}
	}
	if best == nil {
		return nil, false
	}
	return best, best.Interact()
}

// ToggleLocker hides the player in the closest locker, or lets them out.
func (w *World) ToggleLocker() bool {
	if w.Player.Concealed() {
		w.Player.LeaveLocker()
		return false
	}
	var best *obj.Locker
	bestDist := interactRange
	for _, l := range w.Lockers {
		if dist := common.GroundDistance(l.Position, w.Player.Position()); dist <= bestDist {
			best, bestDist = l, dist
		}
	}
	return best != nil && w.Player.EnterLocker(best)
}

// DoorAt returns the door occupying a cell.
func (w *World) DoorAt(c component.GridCell) *obj.Door {
	return w.doorAt[c]
}

func (w *World) wallOrLockedDoor(x, z int) bool {
	if w.Level.Wall(x, z) {
		return true
	}
	d := w.doorAt[component.GridCell{X: x, Z: z}]
	return d != nil && d.IsLocked()
}

func (w *World) wallOrClosedDoor(x, z int) bool {
	if w.Level.Wall(x, z) {
		return true
	}
	d := w.doorAt[component.GridCell{X: x, Z: z}]
	return d != nil && !d.IsOpen()
}
