package levels

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

//go:embed *.json
var LevelsFS embed.FS

// Default is the level the viewer and simulator open without arguments.
const Default = "school.json"

// Entity types placed by level authors.
const (
	EntityStalkerSpawn = "stalker_spawn"
	EntityPlayerSpawn  = "player_spawn"
	EntityWaypoint     = "waypoint"
	EntityHidingSpot   = "hiding_spot"
	EntityDoor         = "door"
	EntityLocker       = "locker"
	EntityPlayerRoute  = "player_route"
)

// Level is a top-down tile map. X runs along columns, Y along rows; rows map
// to the world Z axis.
type Level struct {
	Name      string      `json:"name"`
	Width     int         `json:"width"`
	Height    int         `json:"height"`
	Layers    [][]int     `json:"layers"`
	LayerMeta []LayerMeta `json:"layer_meta,omitempty"`
	Entities  []Entity    `json:"entities,omitempty"`
}

type LayerMeta struct {
	Physics bool   `json:"physics"`
	Color   string `json:"color,omitempty"`
}

type Entity struct {
	Type  string                 `json:"type"`
	X     int                    `json:"x"`
	Y     int                    `json:"y"`
	Props map[string]interface{} `json:"props,omitempty"`
}

// FloatProp reads a numeric prop.
func (e Entity) FloatProp(key string, def float64) float64 {
	switch v := e.Props[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return def
}

// StringProp reads a string prop.
func (e Entity) StringProp(key, def string) string {
	if v, ok := e.Props[key].(string); ok {
		return v
	}
	return def
}

// BoolProp reads a boolean prop.
func (e Entity) BoolProp(key string) bool {
	v, _ := e.Props[key].(bool)
	return v
}

// LoadLevelFromFS reads an embedded level.
func LoadLevelFromFS(name string) (*Level, error) {
	data, err := fs.ReadFile(LevelsFS, cleanLevelPath(name))
	if err != nil {
		return nil, fmt.Errorf("read level: %w", err)
	}
	return parse(data)
}

// Load reads a level from disk, falling back to the embedded copy.
func Load(name string) (*Level, error) {
	if data, err := os.ReadFile(name); err == nil {
		return parse(data)
	}
	return LoadLevelFromFS(name)
}

func parse(data []byte) (*Level, error) {
	var lvl Level
	if err := json.Unmarshal(data, &lvl); err != nil {
		return nil, fmt.Errorf("unmarshal level: %w", err)
	}
	if err := lvl.Validate(); err != nil {
		return nil, err
	}
	return &lvl, nil
}

func cleanLevelPath(name string) string {
	s := filepath.ToSlash(name)
	s = strings.TrimPrefix(s, "levels/")
	if filepath.Ext(s) == "" {
		s += ".json"
	}
	return s
}

// Validate checks the dimensions and layer sizes.
func (l *Level) Validate() error {
	if l.Width <= 0 || l.Height <= 0 {
		return fmt.Errorf("invalid level dimensions: %dx%d", l.Width, l.Height)
	}
	for i, layer := range l.Layers {
		if len(layer) != l.Width*l.Height {
			return fmt.Errorf("layer %d has %d cells, want %d", i, len(layer), l.Width*l.Height)
		}
	}
	for _, e := range l.Entities {
		if e.X < 0 || e.Y < 0 || e.X >= l.Width || e.Y >= l.Height {
			return fmt.Errorf("entity %s at %d,%d is outside the level", e.Type, e.X, e.Y)
		}
	}
	return nil
}

// Solid reports whether a physics layer has a tile at x, y. Cells outside the
// level are solid.
func (l *Level) Solid(x, y int) bool {
	if x < 0 || y < 0 || x >= l.Width || y >= l.Height {
		return true
	}
	idx := y*l.Width + x
	for i, layer := range l.Layers {
		if !l.physics(i) {
			continue
		}
		if layer[idx] != 0 {
			return true
		}
	}
	return false
}

// physics defaults to true for layers without metadata.
func (l *Level) physics(layer int) bool {
	if layer >= len(l.LayerMeta) {
		return true
	}
	return l.LayerMeta[layer].Physics
}

// EntitiesOf returns the entities of one type. Entities with an "order" prop
// are sorted by it.
func (l *Level) EntitiesOf(typ string) []Entity {
	var out []Entity
	for _, e := range l.Entities {
		if strings.EqualFold(strings.TrimSpace(e.Type), typ) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].FloatProp("order", 0) < out[j].FloatProp("order", 0)
	})
	return out
}

// First returns the first entity of a type.
func (l *Level) First(typ string) (Entity, bool) {
	for _, e := range l.Entities {
		if strings.EqualFold(strings.TrimSpace(e.Type), typ) {
			return e, true
		}
	}
	return Entity{}, false
}
