package main

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/milk9111/stalker/common"
	"github.com/milk9111/stalker/component"
	"golang.org/x/image/colornames"
)

// visionArcSteps is the number of segments used for the vision cone arc.
const visionArcSteps = 16

func (g *Game) drawLevel(screen *ebiten.Image) {
	lvl := g.world.Level
	tile := g.camera.Pixels(common.TileSize)
	for z := 0; z < lvl.Height; z++ {
		for x := 0; x < lvl.Width; x++ {
			if !lvl.Wall(x, z) {
				continue
			}
			sx, sy := g.camera.ToScreen(common.Vec3{X: float64(x) * common.TileSize, Z: float64(z) * common.TileSize})
			ebitenutil.DrawRect(screen, sx, sy, tile, tile, colornames.Dimgray)
		}
	}

	for _, d := range g.world.Doors {
		c := color.Color(colornames.Saddlebrown)
		switch {
		case d.IsLocked():
			c = colornames.Darkred
		case d.IsOpen():
			c = color.RGBA{R: 0x8b, G: 0x45, B: 0x13, A: 0x50}
		}
		sx, sy := g.camera.ToScreen(common.Vec3{X: float64(d.Cell.X) * common.TileSize, Z: float64(d.Cell.Z) * common.TileSize})
		ebitenutil.DrawRect(screen, sx+1, sy+1, tile-2, tile-2, c)
	}

	for _, l := range g.world.Lockers {
		sx, sy := g.camera.ToScreen(l.Position)
		c := color.Color(colornames.Steelblue)
		if l.Occupied() {
			c = colornames.Lightsteelblue
		}
		ebitenutil.DrawRect(screen, sx-tile*0.35, sy-tile*0.35, tile*0.7, tile*0.7, c)
	}

	claimed := g.world.Engine.ClaimedSpot()
	for _, s := range g.world.Spots {
		c := g.colors.spot
		if s == claimed {
			c = colornames.Yellow
		}
		sx, sy := g.camera.ToScreen(s.Position)
		tx, ty := g.camera.ToScreen(s.Position.Add(s.Forward.Scale(0.6)))
		ebitenutil.DrawCircle(screen, sx, sy, tile*0.2, c)
		ebitenutil.DrawLine(screen, sx, sy, tx, ty, c)
	}
}

func (g *Game) drawMemory(screen *ebiten.Image) {
	e := g.world.Engine
	for _, p := range e.HotZones() {
		sx, sy := g.camera.ToScreen(p)
		ebitenutil.DrawCircle(screen, sx, sy, g.camera.Pixels(0.25), g.colors.hotZone)
	}
	if p, ok := e.LastKnownPosition(); ok {
		sx, sy := g.camera.ToScreen(p)
		r := g.camera.Pixels(0.3)
		ebitenutil.DrawLine(screen, sx-r, sy-r, sx+r, sy+r, colornames.Red)
		ebitenutil.DrawLine(screen, sx-r, sy+r, sx+r, sy-r, colornames.Red)
	}

	last := g.world.Stalker.Position()
	for _, p := range g.world.Stalker.Path() {
		ax, ay := g.camera.ToScreen(last)
		bx, by := g.camera.ToScreen(p)
		ebitenutil.DrawLine(screen, ax, ay, bx, by, g.colors.path)
		last = p
	}
}

func (g *Game) drawAgent(screen *ebiten.Image) {
	e := g.world.Engine
	pos := g.world.Stalker.Position()
	fwd := g.world.Stalker.Forward()
	sx, sy := g.camera.ToScreen(pos)

	// vision cone
	yaw := common.Yaw(fwd)
	half := e.FOV() / 2 * math.Pi / 180
	rng := e.VisionRange()
	prev := pos.Add(common.FromYaw(yaw - half).Scale(rng))
	px, py := g.camera.ToScreen(prev)
	ebitenutil.DrawLine(screen, sx, sy, px, py, g.colors.vision)
	for i := 1; i <= visionArcSteps; i++ {
		a := yaw - half + 2*half*float64(i)/visionArcSteps
		nx, ny := g.camera.ToScreen(pos.Add(common.FromYaw(a).Scale(rng)))
		ebitenutil.DrawLine(screen, px, py, nx, ny, g.colors.vision)
		px, py = nx, ny
	}
	ebitenutil.DrawLine(screen, sx, sy, px, py, g.colors.vision)

	c := color.Color(colornames.Crimson)
	switch e.State() {
	case component.StatePatrol:
		c = colornames.Indianred
	case component.StateInvestigate, component.StateDistracted, component.StateSearch:
		c = colornames.Orange
	case component.StateTacticalHide:
		c = colornames.Mediumpurple
	}
	ebitenutil.DrawCircle(screen, sx, sy, g.camera.Pixels(0.4), c)
	tx, ty := g.camera.ToScreen(pos.Add(fwd.Scale(0.6)))
	ebitenutil.DrawLine(screen, sx, sy, tx, ty, colornames.White)
}

func (g *Game) drawPlayer(screen *ebiten.Image) {
	p := g.world.Player
	sx, sy := g.camera.ToScreen(p.Position())
	c := color.Color(colornames.Limegreen)
	switch {
	case p.Concealed():
		c = color.RGBA{R: 0x32, G: 0xcd, B: 0x32, A: 0x40}
	case p.MovingFast():
		c = colornames.Yellowgreen
	}
	ebitenutil.DrawCircle(screen, sx, sy, g.camera.Pixels(0.3), c)
}
