package encounter

import (
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// DefaultBattleScene is used when a zone does not name its own battle scene.
const DefaultBattleScene = "battle"

// Rarity tier thresholds on a 1..100 roll.
const (
	rareThreshold     = 5
	uncommonThreshold = 30
)

// Rarity classifies an enemy pool.
type Rarity int

const (
	RarityCommon Rarity = iota
	RarityUncommon
	RarityRare
)

func (r Rarity) String() string {
	switch r {
	case RarityRare:
		return "rare"
	case RarityUncommon:
		return "uncommon"
	default:
		return "common"
	}
}

// ZoneConfig is the static configuration of an encounter zone.
type ZoneConfig struct {
	Name          string   `yaml:"name" validate:"required"`
	BaseChance    int      `yaml:"base_chance" validate:"min=1,max=100"`
	CheckInterval int      `yaml:"check_interval" validate:"min=1"`
	Enabled       bool     `yaml:"enabled"`
	Common        []string `yaml:"common"`
	Uncommon      []string `yaml:"uncommon"`
	Rare          []string `yaml:"rare"`
	MinEnemies    int      `yaml:"min_enemies" validate:"min=1"`
	MaxEnemies    int      `yaml:"max_enemies" validate:"min=1,gtefield=MinEnemies"`
	IsBoss        bool     `yaml:"is_boss"`
	CanEscape     bool     `yaml:"can_escape"`
	BattleScene   string   `yaml:"battle_scene"`
	Music         string   `yaml:"music"`
	Background    string   `yaml:"background"`
	Tint          string   `yaml:"tint" validate:"omitempty,hexcolor"`
}

// DefaultZoneConfig returns the values a zone gets for anything left unset.
func DefaultZoneConfig() ZoneConfig {
	return ZoneConfig{
		BaseChance:    10,
		CheckInterval: 30,
		Enabled:       true,
		MinEnemies:    1,
		MaxEnemies:    3,
		CanEscape:     true,
		BattleScene:   DefaultBattleScene,
	}
}

var validate = validator.New()

// Validate checks ranges and the MinEnemies <= MaxEnemies invariant.
func (c ZoneConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("zone %q: %w", c.Name, err)
	}
	return nil
}

// Pool returns the enemy ids of one rarity tier.
func (c ZoneConfig) Pool(r Rarity) []string {
	switch r {
	case RarityRare:
		return c.Rare
	case RarityUncommon:
		return c.Uncommon
	default:
		return c.Common
	}
}

// ExpectedSteps is the mean number of steps between encounters at the given
// effective rate: checks come every CheckInterval steps and each one passes
// both gates with probability BaseChance/100 * min(rate, 1). Disabled zones
// return +Inf.
func (c ZoneConfig) ExpectedSteps(rate float64) float64 {
	p := float64(c.BaseChance) / 100 * min(clampRate(rate), 1)
	if !c.Enabled || p <= 0 || c.CheckInterval < 1 {
		return math.Inf(1)
	}
	return float64(c.CheckInterval) / p
}

// Zone is a configured region with its own encounter probability and enemy pools.
type Zone struct {
	cfg     ZoneConfig
	rng     RandomSource
	present bool
}

// NewZone builds a zone from a validated config. A nil rng uses DefaultRNG.
func NewZone(cfg ZoneConfig, rng RandomSource) (*Zone, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = DefaultRNG()
	}
	if cfg.BattleScene == "" {
		cfg.BattleScene = DefaultBattleScene
	}
	cfg.Common = append([]string(nil), cfg.Common...)
	cfg.Uncommon = append([]string(nil), cfg.Uncommon...)
	cfg.Rare = append([]string(nil), cfg.Rare...)
	return &Zone{cfg: cfg, rng: rng}, nil
}

// Name returns the zone identity.
func (z *Zone) Name() string { return z.cfg.Name }

// Config returns a copy of the zone configuration.
func (z *Zone) Config() ZoneConfig { return z.cfg }

// Enabled reports whether the zone rolls at all.
func (z *Zone) Enabled() bool { return z.cfg.Enabled }

// SetEnabled switches the zone on or off.
func (z *Zone) SetEnabled(enabled bool) { z.cfg.Enabled = enabled }

// RegisterPlayerPresence marks the player as inside the zone.
func (z *Zone) RegisterPlayerPresence() { z.present = true }

// ClearPlayerPresence marks the player as outside the zone.
func (z *Zone) ClearPlayerPresence() { z.present = false }

// PlayerPresent reports whether the player is inside the zone.
func (z *Zone) PlayerPresent() bool { return z.present }

// CheckForEncounter rolls the zone's base chance on every CheckInterval-th step.
// It fails closed while the zone is disabled or the player is absent.
func (z *Zone) CheckForEncounter(stepCount int) bool {
	if !z.cfg.Enabled || !z.present {
		return false
	}
	if stepCount%z.cfg.CheckInterval != 0 {
		return false
	}
	return rollPercent(z.rng) <= z.cfg.BaseChance
}

// DrawEncounterParty draws between MinEnemies and MaxEnemies enemy ids.
// Each slot rolls its own tier; an empty tier falls through to the next lower
// one and a slot with no non-empty tier below it adds nothing.
func (z *Zone) DrawEncounterParty() []string {
	count := rollRange(z.rng, z.cfg.MinEnemies, z.cfg.MaxEnemies)
	party := make([]string, 0, count)
	for i := 0; i < count; i++ {
		if id, ok := z.drawSlot(); ok {
			party = append(party, id)
		}
	}
	return party
}

func (z *Zone) drawSlot() (string, bool) {
	roll := rollPercent(z.rng)
	tier := RarityCommon
	switch {
	case roll <= rareThreshold:
		tier = RarityRare
	case roll <= uncommonThreshold:
		tier = RarityUncommon
	}

	for r := tier; r >= RarityCommon; r-- {
		pool := z.cfg.Pool(r)
		if len(pool) > 0 {
			return pool[z.rng.IntN(len(pool))], true
		}
	}
	return "", false
}

// Snapshot bundles the zone config with a freshly drawn party.
func (z *Zone) Snapshot() Data {
	return Data{
		ID:          uuid.NewString(),
		Zone:        z.cfg.Name,
		Enemies:     z.DrawEncounterParty(),
		IsBoss:      z.cfg.IsBoss,
		CanEscape:   z.cfg.CanEscape,
		BattleScene: z.cfg.BattleScene,
		Music:       z.cfg.Music,
		Background:  z.cfg.Background,
		Tint:        z.cfg.Tint,
	}
}
