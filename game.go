package main

import (
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/milk9111/stalker/common"
	"github.com/milk9111/stalker/component"
	"github.com/milk9111/stalker/internal/log"
	"github.com/milk9111/stalker/prefabs"
	"github.com/milk9111/stalker/system"
	"golang.design/x/clipboard"
	"golang.org/x/image/colornames"
	"gopkg.in/yaml.v3"
)

const (
	// noiseRadius is how far a thrown distraction carries.
	noiseRadius = 12.0
	// maxEventLines caps the event log on the HUD.
	maxEventLines = 6
)

type debugColors struct {
	vision  color.Color
	hotZone color.Color
	spot    color.Color
	path    color.Color
}

type Game struct {
	frames int

	input  *Input
	camera *Camera
	world  *system.World

	levelName string
	specName  string
	profile   string
	seed      uint64
	colors    debugColors

	paused  bool
	pauseUI *ebitenui.UI
	debug   bool

	clipboardReady bool
	watcher        *prefabs.Watcher

	events []component.AIEvent
	status string
	log    *slog.Logger
}

func NewGame(levelName, profile string, seed uint64, debug bool) (*Game, error) {
	g := &Game{
		input:     NewInput(),
		camera:    NewCamera(common.BaseWidth, common.BaseHeight, 1.5),
		levelName: levelName,
		specName:  prefabs.DefaultAgentSpec,
		profile:   profile,
		seed:      seed,
		debug:     debug,
		log:       log.With("component", "viewer"),
	}

	spec, err := prefabs.LoadAgentSpec(g.specName)
	if err != nil {
		return nil, err
	}
	if err := g.loadWorld(); err != nil {
		return nil, err
	}
	g.applyColors(spec)

	profiles := append([]string{""}, spec.ProfileNames()...)
	g.pauseUI = NewPauseUI(g, profiles)

	if err := clipboard.Init(); err != nil {
		g.log.Warn("clipboard unavailable", "error", err)
	} else {
		g.clipboardReady = true
	}
	g.watchPrefabs()

	return g, nil
}

func (g *Game) loadWorld() error {
	tuning, err := prefabs.LoadTuning(g.specName, g.profile)
	if err != nil {
		return err
	}
	world, err := system.NewWorld(system.WorldConfig{
		Level:  g.levelName,
		Tuning: tuning,
		Seed:   g.seed,
		Logger: g.log,
	})
	if err != nil {
		return err
	}
	g.world = world
	g.events = nil
	g.world.Events.Subscribe(g.recordEvent)

	w, d := world.Level.WorldSize()
	g.camera.SetWorldBounds(w, d)
	g.camera.SnapTo(world.Player.Position())
	return nil
}

func (g *Game) applyColors(spec *prefabs.AgentSpec) {
	g.colors = debugColors{
		vision:  spec.Debug.VisionColor.Or(color.RGBA{R: 0xff, G: 0x40, B: 0x40, A: 0x60}),
		hotZone: spec.Debug.HotZoneColor.Or(colornames.Orange),
		spot:    spec.Debug.SpotColor.Or(colornames.Deepskyblue),
		path:    spec.Debug.PathColor.Or(colornames.White),
	}
}

func (g *Game) recordEvent(evt component.AIEvent) {
	g.events = append(g.events, evt)
	if len(g.events) > maxEventLines {
		g.events = g.events[len(g.events)-maxEventLines:]
	}
}

func (g *Game) restart() {
	if err := g.loadWorld(); err != nil {
		g.status = "restart failed: " + err.Error()
		g.log.Error("restart failed", "error", err)
		return
	}
	g.status = "restarted"
}

func (g *Game) switchProfile(profile string) {
	tuning, err := prefabs.LoadTuning(g.specName, profile)
	if err != nil {
		g.status = "profile: " + err.Error()
		return
	}
	if err := g.world.SetTuning(tuning); err != nil {
		g.status = "profile: " + err.Error()
		return
	}
	g.profile = profile
	g.status = "profile " + profileLabel(profile)
}

// watchPrefabs enables hot reload when running from the repository root.
func (g *Game) watchPrefabs() {
	dirs := []string{prefabs.Dir, filepath.Join(prefabs.Dir, "scripts")}
	for _, dir := range dirs {
		if _, err := os.Stat(dir); err != nil {
			return
		}
	}
	w, err := prefabs.NewWatcher(dirs...)
	if err != nil {
		g.log.Warn("prefab watcher disabled", "error", err)
		return
	}
	g.watcher = w
}

func (g *Game) pollWatcher() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case change, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			g.reload(change)
		case err, ok := <-g.watcher.Errors:
			if ok {
				g.log.Warn("prefab watcher", "error", err)
			}
		default:
			return
		}
	}
}

func (g *Game) reload(change prefabs.Change) {
	if change.Script {
		// hooks are compiled when the engine is built
		g.restart()
		g.status = "reloaded " + change.Name()
		return
	}
	if change.Name() != g.specName {
		return
	}
	spec, err := prefabs.LoadAgentSpec(g.specName)
	if err != nil {
		g.status = "reload: " + err.Error()
		return
	}
	g.applyColors(spec)
	g.switchProfile(g.profile)
	g.status = "reloaded " + change.Name()
}

func (g *Game) copySnapshot() {
	data, err := yaml.Marshal(g.world.Engine.Snapshot())
	if err != nil {
		g.status = "snapshot: " + err.Error()
		return
	}
	if !g.clipboardReady {
		g.status = "clipboard unavailable"
		return
	}
	clipboard.Write(clipboard.FmtText, data)
	g.status = "snapshot copied"
}

func (g *Game) Update() error {
	g.frames++
	g.pollWatcher()
	g.input.Update()

	if g.input.PausePressed {
		g.paused = !g.paused
	}
	if g.paused {
		g.pauseUI.Update()
		return nil
	}
	if g.input.DebugPressed {
		g.debug = !g.debug
	}
	if g.input.CopyPressed {
		g.copySnapshot()
	}
	if g.input.RestartPressed {
		g.restart()
	}

	dt := 1 / float64(ebiten.TPS())
	world := g.world
	if !world.Manager.Ended() {
		if g.input.LockerPressed {
			world.ToggleLocker()
		}
		if g.input.DoorPressed {
			world.InteractDoor()
		}
		if g.input.NoisePressed {
			heard := world.MakeNoise(noiseRadius)
			g.status = fmt.Sprintf("noise heard by %d", heard)
		}
		world.Player.Move(g.input.Move, g.input.Run, dt)
	}
	world.Update(dt)
	g.camera.Update(world.Player.Position())
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 0x12, G: 0x14, B: 0x18, A: 0xff})
	g.drawLevel(screen)
	g.drawMemory(screen)
	g.drawAgent(screen)
	g.drawPlayer(screen)
	if g.debug {
		drawCollision(screen, g.world.CollisionWorld, g.camera)
	}
	g.drawHUD(screen)
	if g.paused {
		g.pauseUI.Draw(screen)
	}
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	e := g.world.Engine
	ctx := e.Context()
	lines := []string{
		fmt.Sprintf("FPS: %.1f  tick: %d  profile: %s", ebiten.ActualFPS(), e.Ticks(), profileLabel(g.profile)),
		fmt.Sprintf("state: %s  pose: %s  detected: %v", e.State(), e.Pose(), e.Detected()),
		fmt.Sprintf("since seen: %.1f  chase boredom: %.1f  hide dwell: %.1f", ctx.TimeSinceSeen, ctx.ChaseBoredom, ctx.HideDwell),
		fmt.Sprintf("hot zones: %d/%d", e.Memory().Len(), e.Memory().Max()),
		"WASD move  Shift run  E door  H locker  N noise  C copy  F1 debug  R restart  Esc pause",
	}
	if g.status != "" {
		lines = append(lines, g.status)
	}
	for _, evt := range slices.Backward(g.events) {
		line := fmt.Sprintf("[%d] %s", evt.Tick, evt.Type)
		if evt.To != "" {
			line += fmt.Sprintf(" %s -> %s", evt.From, evt.To)
		}
		if evt.Detail != "" {
			line += " " + evt.Detail
		}
		lines = append(lines, line)
	}
	for i, line := range lines {
		ebitenutil.DebugPrintAt(screen, line, 8, 8+i*16)
	}
	if g.world.Manager.Ended() {
		ebitenutil.DebugPrintAt(screen, "CAUGHT  (R to restart)", common.BaseWidth/2-70, common.BaseHeight/2)
	}
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return common.BaseWidth, common.BaseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}
