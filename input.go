package main

import (
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/stalker/common"
)

// Input holds the player's intent for one frame.
type Input struct {
	// Move is the desired direction on the ground plane, length <= 1.
	Move common.Vec3
	// Run is true while the run key is held.
	Run bool

	LockerPressed  bool
	DoorPressed    bool
	NoisePressed   bool
	PausePressed   bool
	CopyPressed    bool
	DebugPressed   bool
	RestartPressed bool
}

func NewInput() *Input {
	return &Input{}
}

// Update polls keyboard and the first gamepad.
func (i *Input) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		os.Exit(0)
	}

	var move common.Vec3
	if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyLeft) {
		move.X -= 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyRight) {
		move.X += 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyUp) {
		move.Z -= 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyDown) {
		move.Z += 1
	}
	run := ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight)

	var gpLocker, gpDoor, gpNoise, gpPause bool
	if ids := ebiten.GamepadIDs(); len(ids) > 0 {
		gid := ids[0]
		lx := ebiten.StandardGamepadAxisValue(gid, ebiten.StandardGamepadAxisLeftStickHorizontal)
		ly := ebiten.StandardGamepadAxisValue(gid, ebiten.StandardGamepadAxisLeftStickVertical)
		if lx*lx+ly*ly > 0.09 {
			move = common.Vec3{X: lx, Z: ly}
		}
		run = run || ebiten.IsStandardGamepadButtonPressed(gid, ebiten.StandardGamepadButtonFrontBottomRight)
		gpDoor = inpututil.IsStandardGamepadButtonJustPressed(gid, ebiten.StandardGamepadButtonRightBottom)
		gpLocker = inpututil.IsStandardGamepadButtonJustPressed(gid, ebiten.StandardGamepadButtonRightLeft)
		gpNoise = inpututil.IsStandardGamepadButtonJustPressed(gid, ebiten.StandardGamepadButtonRightTop)
		gpPause = inpututil.IsStandardGamepadButtonJustPressed(gid, ebiten.StandardGamepadButtonCenterRight)
	}
	if move.Len() > 1 {
		move = move.Normalize()
	}

	i.Move = move
	i.Run = run
	i.LockerPressed = inpututil.IsKeyJustPressed(ebiten.KeyH) || gpLocker
	i.DoorPressed = inpututil.IsKeyJustPressed(ebiten.KeyE) || gpDoor
	i.NoisePressed = inpututil.IsKeyJustPressed(ebiten.KeyN) || gpNoise
	i.PausePressed = inpututil.IsKeyJustPressed(ebiten.KeyEscape) || gpPause
	i.CopyPressed = inpututil.IsKeyJustPressed(ebiten.KeyC)
	i.DebugPressed = inpututil.IsKeyJustPressed(ebiten.KeyF1)
	i.RestartPressed = inpututil.IsKeyJustPressed(ebiten.KeyR)
}
