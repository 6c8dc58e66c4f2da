package game

import (
	"fmt"

	"wildstep/internal/maps"
)

// World is the static content every session plays on.
type World struct {
	Maps       map[string]*maps.Map
	Zones      []maps.ZoneDef
	Bestiary   *Bestiary
	DefaultMap string
}

// NewWorld checks that the default map exists and that every zone sits on a
// loaded map inside its bounds.
func NewWorld(allMaps map[string]*maps.Map, zones []maps.ZoneDef, bestiary *Bestiary, defaultMap string) (*World, error) {
	if _, ok := allMaps[defaultMap]; !ok {
		return nil, fmt.Errorf("default map: %w %q", maps.ErrUnknownMap, defaultMap)
	}
	if err := maps.ValidateRegions(zones, allMaps); err != nil {
		return nil, fmt.Errorf("zone regions: %w", err)
	}
	if bestiary == nil {
		bestiary, _ = NewBestiary()
	}
	return &World{Maps: allMaps, Zones: zones, Bestiary: bestiary, DefaultMap: defaultMap}, nil
}

// SpawnPoint returns the default map's name and spawn tile.
func (w *World) SpawnPoint() (string, int, int) {
	m := w.Maps[w.DefaultMap]
	return w.DefaultMap, m.SpawnX, m.SpawnY
}

// CanMoveTo reports whether the tile on the named map is walkable.
func (w *World) CanMoveTo(mapName string, x, y int) bool {
	m, ok := w.Maps[mapName]
	if !ok {
		return false
	}
	return m.IsWalkable(x, y)
}

// PortalAt returns the portal on the named map at x,y, or nil.
func (w *World) PortalAt(mapName string, x, y int) *maps.Portal {
	m, ok := w.Maps[mapName]
	if !ok {
		return nil
	}
	return m.PortalAt(x, y)
}

// ZoneAt returns the encounter zone covering the tile, if any.
func (w *World) ZoneAt(mapName string, x, y int) (maps.ZoneDef, bool) {
	return maps.ZoneAt(w.Zones, mapName, x, y)
}

// GetMap returns the named map, or nil.
func (w *World) GetMap(name string) *maps.Map {
	return w.Maps[name]
}
