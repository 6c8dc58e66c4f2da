package game

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// EnemyDef is an enemy type's base stats.
type EnemyDef struct {
	ID      string `yaml:"id" validate:"required"`
	Name    string `yaml:"name"`
	MaxHP   int    `yaml:"hp" validate:"min=1"`
	Attack  int    `yaml:"attack" validate:"min=0"`
	Defense int    `yaml:"defense" validate:"min=0"`
	EXP     int    `yaml:"exp" validate:"min=0"`
}

var titleCase = cases.Title(language.English)

// DisplayName returns Name, or a title-cased form of the id.
func (d EnemyDef) DisplayName() string {
	if d.Name != "" {
		return d.Name
	}
	return titleCase.String(strings.ReplaceAll(d.ID, "_", " "))
}

// EnemyInstance is a live enemy in a fight.
type EnemyInstance struct {
	Def   EnemyDef
	HP    int
	Slot  int
	Label string // e.g. "Slime B"
}

// Alive reports whether the enemy has HP left.
func (e *EnemyInstance) Alive() bool {
	return e.HP > 0
}

// spawnEnemies creates one instance per def. Repeated names get letter
// suffixes in order of appearance; unique names stay bare.
func spawnEnemies(defs []EnemyDef) []*EnemyInstance {
	counts := make(map[string]int, len(defs))
	for _, d := range defs {
		counts[d.DisplayName()]++
	}

	seen := make(map[string]int, len(defs))
	enemies := make([]*EnemyInstance, len(defs))
	for i, d := range defs {
		name := d.DisplayName()
		label := name
		if counts[name] > 1 {
			label = name + " " + string(rune('A'+seen[name]))
			seen[name]++
		}
		enemies[i] = &EnemyInstance{Def: d, HP: d.MaxHP, Slot: i, Label: label}
	}
	return enemies
}
