package game

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/agnivade/levenshtein"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"wildstep/internal/maps"
)

// ErrUnknownEnemy is returned for enemy ids missing from the bestiary.
var ErrUnknownEnemy = errors.New("unknown enemy")

// maxSuggestDistance is the largest edit distance offered as a suggestion.
const maxSuggestDistance = 3

var validate = validator.New()

// Bestiary holds enemy definitions by id.
type Bestiary struct {
	defs map[string]EnemyDef
	ids  []string
}

type bestiaryFile struct {
	Enemies []EnemyDef `yaml:"enemies"`
}

// LoadBestiary reads enemy definitions from a YAML file.
func LoadBestiary(path string) (*Bestiary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bestiary: %w", err)
	}
	return ParseBestiary(data)
}

// ParseBestiary decodes and validates enemy definitions. Ids must be unique.
func ParseBestiary(data []byte) (*Bestiary, error) {
	var bf bestiaryFile
	if err := yaml.Unmarshal(data, &bf); err != nil {
		return nil, fmt.Errorf("parse bestiary YAML: %w", err)
	}
	return NewBestiary(bf.Enemies...)
}

// NewBestiary builds a bestiary from definitions.
func NewBestiary(defs ...EnemyDef) (*Bestiary, error) {
	b := &Bestiary{defs: make(map[string]EnemyDef, len(defs))}
	for _, d := range defs {
		if err := validate.Struct(d); err != nil {
			return nil, fmt.Errorf("enemy %q: %w", d.ID, err)
		}
		if _, dup := b.defs[d.ID]; dup {
			return nil, fmt.Errorf("duplicate enemy id %q", d.ID)
		}
		b.defs[d.ID] = d
		b.ids = append(b.ids, d.ID)
	}
	sort.Strings(b.ids)
	return b, nil
}

// IDs returns every enemy id, sorted.
func (b *Bestiary) IDs() []string {
	out := make([]string, len(b.ids))
	copy(out, b.ids)
	return out
}

// Lookup returns the definition for id. Unknown ids wrap ErrUnknownEnemy and
// name the closest known id when one is near enough.
func (b *Bestiary) Lookup(id string) (EnemyDef, error) {
	if d, ok := b.defs[id]; ok {
		return d, nil
	}
	if s, ok := b.Suggest(id); ok {
		return EnemyDef{}, fmt.Errorf("%w %q (did you mean %q?)", ErrUnknownEnemy, id, s)
	}
	return EnemyDef{}, fmt.Errorf("%w %q", ErrUnknownEnemy, id)
}

// Suggest returns the known id closest to id by edit distance.
// Ties go to the alphabetically first id.
func (b *Bestiary) Suggest(id string) (string, bool) {
	best, bestDist := "", maxSuggestDistance+1
	for _, known := range b.ids {
		if d := levenshtein.ComputeDistance(id, known); d < bestDist {
			best, bestDist = known, d
		}
	}
	return best, best != ""
}

// CheckZones reports every enemy id used by a zone that the bestiary lacks.
func (b *Bestiary) CheckZones(defs []maps.ZoneDef) error {
	var errs []error
	for _, def := range defs {
		cfg := def.Config
		for _, pool := range [][]string{cfg.Common, cfg.Uncommon, cfg.Rare} {
			for _, id := range pool {
				if _, err := b.Lookup(id); err != nil {
					errs = append(errs, fmt.Errorf("zone %q: %w", def.Name(), err))
				}
			}
		}
	}
	return errors.Join(errs...)
}
