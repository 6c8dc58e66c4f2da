package maps

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrUnknownMap is returned when a reference names a map that was not loaded.
var ErrUnknownMap = errors.New("unknown map")

// ANSI foreground codes by the names used in map files.
var colorCodes = map[string]int{
	"black":          30,
	"red":            31,
	"green":          32,
	"yellow":         33,
	"blue":           34,
	"magenta":        35,
	"cyan":           36,
	"white":          37,
	"gray":           90,
	"grey":           90,
	"bright_red":     91,
	"bright_green":   92,
	"bright_yellow":  93,
	"bright_blue":    94,
	"bright_magenta": 95,
	"bright_cyan":    96,
	"bright_white":   97,
}

const defaultColor = 37

func colorCode(name string) int {
	if code, ok := colorCodes[name]; ok {
		return code
	}
	return defaultColor
}

// Tile describes how a tile looks and whether it can be walked on.
type Tile struct {
	Char     rune
	Fg       int
	Bg       int // 0 for the default background
	Walkable bool
	Name     string
}

var (
	voidTile    = Tile{Char: ' ', Fg: defaultColor, Name: "void"}
	unknownTile = Tile{Char: '?', Fg: defaultColor, Name: "unknown"}
)

// Portal links a tile on one map to a tile on another.
type Portal struct {
	X, Y             int
	TargetMap        string
	TargetX, TargetY int
}

// Map is a loaded tile map.
type Map struct {
	Name    string
	Width   int
	Height  int
	SpawnX  int
	SpawnY  int
	Tiles   [][]int // [y][x] legend index
	Legend  []Tile
	Portals []Portal
}

type mapFile struct {
	Name    string              `json:"name"`
	Width   int                 `json:"width"`
	Height  int                 `json:"height"`
	Spawn   struct{ X, Y int }  `json:"spawn"`
	Tiles   [][]int             `json:"tiles"`
	Legend  map[string]tileFile `json:"legend"`
	Portals []portalFile        `json:"portals,omitempty"`
}

type portalFile struct {
	X         int    `json:"x"`
	Y         int    `json:"y"`
	TargetMap string `json:"target_map"`
	TargetX   int    `json:"target_x"`
	TargetY   int    `json:"target_y"`
}

type tileFile struct {
	Char     string `json:"char"`
	Fg       string `json:"fg"`
	Bg       string `json:"bg,omitempty"`
	Walkable bool   `json:"walkable"`
	Name     string `json:"name"`
}

// LoadMap reads a JSON map file.
func LoadMap(path string) (*Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read map file: %w", err)
	}
	return ParseMap(data)
}

// ParseMap decodes and checks a JSON map.
func ParseMap(data []byte) (*Map, error) {
	var mf mapFile
	if err := json.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("parse map JSON: %w", err)
	}
	if mf.Name == "" {
		return nil, errors.New("map has no name")
	}

	legend, err := buildLegend(mf.Legend)
	if err != nil {
		return nil, fmt.Errorf("map %q: %w", mf.Name, err)
	}

	if len(mf.Tiles) != mf.Height {
		return nil, fmt.Errorf("map %q: %d tile rows, declared height %d", mf.Name, len(mf.Tiles), mf.Height)
	}
	for y, row := range mf.Tiles {
		if len(row) != mf.Width {
			return nil, fmt.Errorf("map %q: row %d has %d tiles, declared width %d", mf.Name, y, len(row), mf.Width)
		}
	}

	m := &Map{
		Name:   mf.Name,
		Width:  mf.Width,
		Height: mf.Height,
		SpawnX: mf.Spawn.X,
		SpawnY: mf.Spawn.Y,
		Tiles:  mf.Tiles,
		Legend: legend,
	}
	if !m.InBounds(m.SpawnX, m.SpawnY) {
		return nil, fmt.Errorf("map %q: spawn (%d,%d) out of bounds", m.Name, m.SpawnX, m.SpawnY)
	}
	for _, p := range mf.Portals {
		m.Portals = append(m.Portals, Portal{X: p.X, Y: p.Y, TargetMap: p.TargetMap, TargetX: p.TargetX, TargetY: p.TargetY})
	}
	return m, nil
}

func buildLegend(entries map[string]tileFile) ([]Tile, error) {
	size := 0
	for key := range entries {
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 {
			return nil, fmt.Errorf("legend key %q is not a tile index", key)
		}
		if idx+1 > size {
			size = idx + 1
		}
	}

	legend := make([]Tile, size)
	for i := range legend {
		legend[i] = unknownTile
	}
	for key, tf := range entries {
		idx, _ := strconv.Atoi(key)
		ch := '?'
		if r := []rune(tf.Char); len(r) > 0 {
			ch = r[0]
		}
		bg := 0
		if tf.Bg != "" {
			bg = colorCode(tf.Bg)
		}
		legend[idx] = Tile{
			Char:     ch,
			Fg:       colorCode(tf.Fg),
			Bg:       bg,
			Walkable: tf.Walkable,
			Name:     tf.Name,
		}
	}
	return legend, nil
}

// InBounds reports whether x,y lies on the map.
func (m *Map) InBounds(x, y int) bool {
	return x >= 0 && x < m.Width && y >= 0 && y < m.Height
}

// TileAt returns the tile at x,y. Off-map and unmapped indices are not walkable.
func (m *Map) TileAt(x, y int) Tile {
	if !m.InBounds(x, y) {
		return voidTile
	}
	idx := m.Tiles[y][x]
	if idx < 0 || idx >= len(m.Legend) {
		return unknownTile
	}
	return m.Legend[idx]
}

// IsWalkable reports whether the tile at x,y can be entered.
func (m *Map) IsWalkable(x, y int) bool {
	return m.TileAt(x, y).Walkable
}

// PortalAt returns the portal on x,y, or nil.
func (m *Map) PortalAt(x, y int) *Portal {
	for i := range m.Portals {
		if m.Portals[i].X == x && m.Portals[i].Y == y {
			return &m.Portals[i]
		}
	}
	return nil
}

// LoadMaps loads every *.json file in dir, keyed by map name, and checks that
// portals only point at loaded maps.
func LoadMaps(dir string) (map[string]*Map, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read maps directory: %w", err)
	}

	loaded := make(map[string]*Map)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		m, err := LoadMap(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", entry.Name(), err)
		}
		if _, dup := loaded[m.Name]; dup {
			return nil, fmt.Errorf("duplicate map name %q in %s", m.Name, entry.Name())
		}
		loaded[m.Name] = m
	}

	for name, m := range loaded {
		for _, p := range m.Portals {
			target, ok := loaded[p.TargetMap]
			if !ok {
				return nil, fmt.Errorf("map %q portal at (%d,%d): %w %q", name, p.X, p.Y, ErrUnknownMap, p.TargetMap)
			}
			if !target.InBounds(p.TargetX, p.TargetY) {
				return nil, fmt.Errorf("map %q portal at (%d,%d) lands off map %q", name, p.X, p.Y, p.TargetMap)
			}
		}
	}
	return loaded, nil
}

// Tile indices of FallbackMap.
const (
	fallbackGrass = iota
	fallbackWall
	fallbackTallGrass
	fallbackWater
)

// FallbackMap is a walled meadow with a patch of tall grass, used when no
// map files are available.
func FallbackMap(name string) *Map {
	w, h := 48, 24
	tiles := make([][]int, h)
	for y := range tiles {
		tiles[y] = make([]int, w)
		for x := range tiles[y] {
			switch {
			case x == 0 || x == w-1 || y == 0 || y == h-1:
				tiles[y][x] = fallbackWall
			case x >= 30 && x < 44 && y >= 4 && y < 14:
				tiles[y][x] = fallbackTallGrass
			case x >= 6 && x < 12 && y >= 15 && y < 20:
				tiles[y][x] = fallbackWater
			default:
				tiles[y][x] = fallbackGrass
			}
		}
	}

	return &Map{
		Name:   name,
		Width:  w,
		Height: h,
		SpawnX: 10,
		SpawnY: 8,
		Tiles:  tiles,
		Legend: []Tile{
			fallbackGrass:     {Char: '.', Fg: 32, Walkable: true, Name: "grass"},
			fallbackWall:      {Char: '#', Fg: 90, Name: "wall"},
			fallbackTallGrass: {Char: '"', Fg: 92, Walkable: true, Name: "tall_grass"},
			fallbackWater:     {Char: '~', Fg: 34, Name: "water"},
		},
	}
}
