package obj

import (
	"testing"

	"github.com/milk9111/stalker/common"
	"github.com/milk9111/stalker/component"
	"github.com/milk9111/stalker/levels"
)

// levelFromRows builds a level where '#' marks a wall.
func levelFromRows(rows ...string) *Level {
	l := &levels.Level{Name: "test", Width: len(rows[0]), Height: len(rows)}
	layer := make([]int, 0, l.Width*l.Height)
	for _, row := range rows {
		for _, ch := range row {
			if ch == '#' {
				layer = append(layer, 1)
			} else {
				layer = append(layer, 0)
			}
		}
	}
	l.Layers = [][]int{layer}
	return NewLevel(l)
}

func cellCenter(x, z int) common.Vec3 {
	return common.V3(float64(x)+0.5, 0, float64(z)+0.5)
}

func TestLevelCells(t *testing.T) {
	lvl := levelFromRows(
		"#####",
		"#...#",
		"#####",
	)

	cases := []struct {
		name string
		p    common.Vec3
		want component.GridCell
	}{
		{"center", common.V3(2.5, 0, 1.5), component.GridCell{X: 2, Z: 1}},
		{"edge", common.V3(3, 0, 1), component.GridCell{X: 3, Z: 1}},
		{"height_ignored", common.V3(1.2, 9, 1.9), component.GridCell{X: 1, Z: 1}},
		{"negative", common.V3(-0.5, 0, -0.5), component.GridCell{X: -1, Z: -1}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := lvl.CellOf(c.p); got != c.want {
				t.Fatalf("CellOf(%v) = %v, want %v", c.p, got, c.want)
			}
		})
	}

	if !lvl.Wall(0, 0) || lvl.Wall(2, 1) || !lvl.Wall(-1, 1) || !lvl.Wall(5, 1) {
		t.Fatalf("unexpected wall layout")
	}
	if w, d := lvl.WorldSize(); w != 5 || d != 3 {
		t.Fatalf("WorldSize = %g x %g, want 5 x 3", w, d)
	}
	if got := lvl.EntityPosition(levels.Entity{X: 2, Y: 1}); !common.V3(2.5, 0, 1.5).Sub(got).IsZero() {
		t.Fatalf("EntityPosition = %v", got)
	}
}

func TestLoadLevel(t *testing.T) {
	if _, err := LoadLevel(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
	lvl, err := LoadLevel(levels.Default)
	if err != nil {
		t.Fatalf("LoadLevel: %v", err)
	}
	if lvl.Name != "school" || lvl.Width != 32 || lvl.Height != 20 {
		t.Fatalf("unexpected level %s %dx%d", lvl.Name, lvl.Width, lvl.Height)
	}
}
