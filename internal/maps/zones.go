package maps

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"wildstep/internal/encounter"
)

// Rect is a tile rectangle; X,Y is the top-left corner.
type Rect struct {
	X int `yaml:"x" validate:"min=0"`
	Y int `yaml:"y" validate:"min=0"`
	W int `yaml:"w" validate:"min=1"`
	H int `yaml:"h" validate:"min=1"`
}

// Contains reports whether x,y lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// ZoneDef places an encounter zone on a region of a map.
type ZoneDef struct {
	Map    string               `yaml:"map" validate:"required"`
	Rect   Rect                 `yaml:"rect"`
	Config encounter.ZoneConfig `yaml:",inline"`
}

// UnmarshalYAML fills unset zone settings from encounter.DefaultZoneConfig.
func (d *ZoneDef) UnmarshalYAML(node *yaml.Node) error {
	type plain ZoneDef
	p := plain{Config: encounter.DefaultZoneConfig()}
	if err := node.Decode(&p); err != nil {
		return err
	}
	*d = ZoneDef(p)
	return nil
}

// Name returns the zone name.
func (d ZoneDef) Name() string { return d.Config.Name }

// Contains reports whether the tile x,y on mapName is inside the zone.
func (d ZoneDef) Contains(mapName string, x, y int) bool {
	return d.Map == mapName && d.Rect.Contains(x, y)
}

type zonesFile struct {
	Zones []ZoneDef `yaml:"zones"`
}

var validate = validator.New()

// LoadZones reads and validates a zones YAML file.
func LoadZones(path string) ([]ZoneDef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read zones file: %w", err)
	}
	return ParseZones(data)
}

// ParseZones decodes zone definitions and checks each one. Names must be unique.
func ParseZones(data []byte) ([]ZoneDef, error) {
	var zf zonesFile
	if err := yaml.Unmarshal(data, &zf); err != nil {
		return nil, fmt.Errorf("parse zones YAML: %w", err)
	}

	seen := make(map[string]bool, len(zf.Zones))
	for i, def := range zf.Zones {
		if err := validate.Struct(def); err != nil {
			return nil, fmt.Errorf("zone #%d (%q): %w", i, def.Name(), err)
		}
		if seen[def.Name()] {
			return nil, fmt.Errorf("duplicate zone name %q", def.Name())
		}
		seen[def.Name()] = true
	}
	return zf.Zones, nil
}

// ValidateRegions checks that every zone sits on a loaded map and inside its bounds.
// All problems are reported together.
func ValidateRegions(defs []ZoneDef, loaded map[string]*Map) error {
	var errs []error
	for _, def := range defs {
		m, ok := loaded[def.Map]
		if !ok {
			errs = append(errs, fmt.Errorf("zone %q: %w %q", def.Name(), ErrUnknownMap, def.Map))
			continue
		}
		r := def.Rect
		if !m.InBounds(r.X, r.Y) || !m.InBounds(r.X+r.W-1, r.Y+r.H-1) {
			errs = append(errs, fmt.Errorf("zone %q: rect %dx%d at (%d,%d) exceeds %q (%dx%d)",
				def.Name(), r.W, r.H, r.X, r.Y, m.Name, m.Width, m.Height))
		}
	}
	return errors.Join(errs...)
}

// ZoneAt returns the first zone in defs containing x,y on mapName.
// Earlier definitions win where regions overlap.
func ZoneAt(defs []ZoneDef, mapName string, x, y int) (ZoneDef, bool) {
	for _, def := range defs {
		if def.Contains(mapName, x, y) {
			return def, true
		}
	}
	return ZoneDef{}, false
}
