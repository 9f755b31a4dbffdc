package obj

import (
	"testing"

	"github.com/milk9111/stalker/common"
	"github.com/milk9111/stalker/component"
)

func TestNavAgentReachesDestination(t *testing.T) {
	lvl := levelFromRows(
		"#######",
		"#.....#",
		"#.###.#",
		"#.....#",
		"#######",
	)
	agent := NewNavAgent(lvl, cellCenter(1, 1))
	agent.Blocked = lvl.Wall
	agent.SetSpeed(2)

	goal := cellCenter(5, 3)
	agent.SetDestination(goal)
	if agent.HasArrived() || !agent.HasPendingPath() || agent.Unreachable() {
		t.Fatalf("expected a pending path")
	}
	if d := agent.RemainingDistance(); d < 6-1e-9 {
		t.Fatalf("remaining distance = %g, want at least 6 around the block", d)
	}
	last := agent.Path()[len(agent.Path())-1]
	if !near(last, goal) {
		t.Fatalf("path ends at %v, want %v", last, goal)
	}

	before := agent.RemainingDistance()
	agent.Update(0.5)
	if agent.RemainingDistance() >= before {
		t.Fatalf("agent did not progress")
	}
	for i := 0; i < 100 && !agent.HasArrived(); i++ {
		agent.Update(0.1)
	}
	if !agent.HasArrived() || !near(agent.Position(), goal) {
		t.Fatalf("agent at %v arrived=%v, want %v", agent.Position(), agent.HasArrived(), goal)
	}
}

func TestNavAgentSetDestination(t *testing.T) {
	lvl := levelFromRows(
		"#######",
		"#..#..#",
		"#..#..#",
		"#######",
	)

	cases := []struct {
		name        string
		to          common.Vec3
		wantArrived bool
		unreachable bool
	}{
		{"same_spot", common.V3(1.55, 0, 1.5), true, false},
		{"reachable", cellCenter(2, 2), false, false},
		{"walled_off", cellCenter(5, 1), true, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			agent := NewNavAgent(lvl, cellCenter(1, 1))
			agent.Blocked = lvl.Wall
			agent.SetDestination(c.to)
			if agent.HasArrived() != c.wantArrived || agent.Unreachable() != c.unreachable {
				t.Fatalf("arrived=%v unreachable=%v, want %v %v", agent.HasArrived(), agent.Unreachable(), c.wantArrived, c.unreachable)
			}
			if !near(agent.Destination(), c.to) {
				t.Fatalf("destination = %v, want %v", agent.Destination(), c.to)
			}
			if c.wantArrived && agent.HasPendingPath() {
				t.Fatalf("arrived agent kept a path")
			}
		})
	}
}

func TestNavAgentOpensStalledDoor(t *testing.T) {
	lvl := levelFromRows(
		"#######",
		"#.....#",
		"#######",
	)
	door := NewDoor(component.GridCell{X: 3, Z: 1}, cellCenter(3, 1), false)
	agent := NewNavAgent(lvl, cellCenter(1, 1))
	agent.Blocked = lvl.Wall
	agent.DoorAt = func(c component.GridCell) *Door {
		if c == door.Cell {
			return door
		}
		return nil
	}
	agent.SetSpeed(4)
	agent.SetDestination(cellCenter(5, 1))

	agent.Update(0.25)
	if !near(agent.Position(), cellCenter(2, 1)) {
		t.Fatalf("agent at %v, want waiting before the door", agent.Position())
	}
	agent.Update(0.25)
	agent.Update(0.25)
	if door.IsOpen() || !near(agent.Position(), cellCenter(2, 1)) {
		t.Fatalf("agent should wait at the closed door")
	}
	agent.Update(0.25)
	if !door.IsOpen() {
		t.Fatalf("agent should push the door open after stalling")
	}

	for i := 0; i < 10 && !agent.HasArrived(); i++ {
		agent.Update(0.25)
	}
	if !agent.HasArrived() || !near(agent.Position(), cellCenter(5, 1)) {
		t.Fatalf("agent at %v, want through the door", agent.Position())
	}
}

func TestNavAgentLockedDoorIsUnreachable(t *testing.T) {
	lvl := levelFromRows(
		"#######",
		"#.....#",
		"#######",
	)
	door := NewDoor(component.GridCell{X: 3, Z: 1}, cellCenter(3, 1), true)
	agent := NewNavAgent(lvl, cellCenter(1, 1))
	agent.Blocked = func(x, z int) bool {
		return lvl.Wall(x, z) || (x == door.Cell.X && z == door.Cell.Z && door.IsLocked())
	}
	agent.SetDestination(cellCenter(5, 1))
	if !agent.Unreachable() || !agent.HasArrived() {
		t.Fatalf("locked door should make the far side unreachable")
	}
}

func TestNavAgentLookAtAndWarp(t *testing.T) {
	agent := NewNavAgent(levelFromRows("...", "..."), cellCenter(0, 0))
	if !near(agent.Forward(), common.Forward) {
		t.Fatalf("default forward = %v", agent.Forward())
	}
	agent.LookAt(cellCenter(2, 0))
	if !near(agent.Forward(), common.V3(1, 0, 0)) {
		t.Fatalf("forward = %v, want +X", agent.Forward())
	}
	agent.LookAt(agent.Position())
	if !near(agent.Forward(), common.V3(1, 0, 0)) {
		t.Fatalf("looking at itself changed forward to %v", agent.Forward())
	}

	agent.SetSpeed(-3)
	if agent.Speed() != 0 {
		t.Fatalf("negative speed not clamped")
	}
	agent.SetDestination(cellCenter(2, 1))
	agent.Warp(cellCenter(1, 1))
	if !agent.HasArrived() || agent.HasPendingPath() || !near(agent.Position(), cellCenter(1, 1)) {
		t.Fatalf("warp should drop the path")
	}
}

func near(a, b common.Vec3) bool {
	return common.GroundDistance(a, b) < 1e-6 && a.Y == b.Y
}
