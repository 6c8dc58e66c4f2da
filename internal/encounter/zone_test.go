package encounter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZoneConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ZoneConfig)
		wantErr bool
	}{
		{"valid", func(*ZoneConfig) {}, false},
		{"missing name", func(c *ZoneConfig) { c.Name = "" }, true},
		{"chance zero", func(c *ZoneConfig) { c.BaseChance = 0 }, true},
		{"chance over 100", func(c *ZoneConfig) { c.BaseChance = 101 }, true},
		{"interval zero", func(c *ZoneConfig) { c.CheckInterval = 0 }, true},
		{"min enemies zero", func(c *ZoneConfig) { c.MinEnemies = 0 }, true},
		{"max below min", func(c *ZoneConfig) { c.MinEnemies = 3; c.MaxEnemies = 2 }, true},
		{"bad tint", func(c *ZoneConfig) { c.Tint = "green" }, true},
		{"hex tint", func(c *ZoneConfig) { c.Tint = "#33aa55" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := slimeZoneConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewZone_CopiesPools(t *testing.T) {
	cfg := slimeZoneConfig()
	cfg.BattleScene = ""
	z, err := NewZone(cfg, alwaysHit())
	require.NoError(t, err)

	cfg.Common[0] = "dragon"
	assert.Equal(t, []string{"slime"}, z.Config().Common)
	assert.Equal(t, DefaultBattleScene, z.Config().BattleScene)
}

func TestCheckForEncounter_ModulusGate(t *testing.T) {
	z := mustZone(slimeZoneConfig(), alwaysHit())
	z.RegisterPlayerPresence()

	for step := 1; step <= 300; step++ {
		got := z.CheckForEncounter(step)
		if step%30 == 0 {
			assert.True(t, got, "step %d is due and the roll always hits", step)
		} else {
			assert.False(t, got, "step %d is not a multiple of the interval", step)
		}
	}
}

func TestCheckForEncounter_FailsClosed(t *testing.T) {
	z := mustZone(slimeZoneConfig(), alwaysHit())
	assert.False(t, z.CheckForEncounter(30), "player absent")

	z.RegisterPlayerPresence()
	z.SetEnabled(false)
	assert.False(t, z.CheckForEncounter(30), "zone disabled")

	z.SetEnabled(true)
	assert.True(t, z.CheckForEncounter(30))

	z.ClearPlayerPresence()
	assert.False(t, z.CheckForEncounter(30))
}

func TestCheckForEncounter_RollAgainstBaseChance(t *testing.T) {
	cfg := slimeZoneConfig()
	cfg.BaseChance = 10

	// IntN(100) = 9 -> roll 10, exactly the chance
	z := mustZone(cfg, &scriptedRNG{ints: []int{9, 10}})
	z.RegisterPlayerPresence()
	assert.True(t, z.CheckForEncounter(30))
	assert.False(t, z.CheckForEncounter(60), "roll 11 is above a 10% chance")

	z = mustZone(cfg, neverHit())
	z.RegisterPlayerPresence()
	assert.False(t, z.CheckForEncounter(30))
}

func TestDrawEncounterParty_SizeWithinRange(t *testing.T) {
	cfg := slimeZoneConfig()
	cfg.MinEnemies = 2
	cfg.MaxEnemies = 5
	cfg.Uncommon = []string{"wolf"}
	cfg.Rare = []string{"griffin"}
	z := mustZone(cfg, NewSeededRNG(42))

	seen := map[int]bool{}
	for i := 0; i < 2000; i++ {
		party := z.DrawEncounterParty()
		require.GreaterOrEqual(t, len(party), 2)
		require.LessOrEqual(t, len(party), 5)
		seen[len(party)] = true
	}
	assert.Len(t, seen, 4, "every size in range shows up")
}

func TestDrawEncounterParty_RarityTiers(t *testing.T) {
	cfg := slimeZoneConfig()
	cfg.Uncommon = []string{"wolf"}
	cfg.Rare = []string{"griffin"}

	tests := []struct {
		name string
		roll int // IntN(100) result, roll = value+1
		want string
	}{
		{"roll 1 is rare", 0, "griffin"},
		{"roll 5 is rare", 4, "griffin"},
		{"roll 6 is uncommon", 5, "wolf"},
		{"roll 30 is uncommon", 29, "wolf"},
		{"roll 31 is common", 30, "slime"},
		{"roll 100 is common", 99, "slime"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			z := mustZone(cfg, &scriptedRNG{ints: []int{tt.roll, 0}})
			assert.Equal(t, []string{tt.want}, z.DrawEncounterParty())
		})
	}
}

func TestDrawEncounterParty_FallsThroughEmptyTiers(t *testing.T) {
	cfg := slimeZoneConfig()
	cfg.Common = nil
	cfg.Uncommon = []string{"wolf"}

	// rare roll with empty rare pool lands in uncommon
	z := mustZone(cfg, &scriptedRNG{ints: []int{0, 0}})
	assert.Equal(t, []string{"wolf"}, z.DrawEncounterParty())

	// common roll with empty common pool has nothing lower to fall to
	z = mustZone(cfg, &scriptedRNG{ints: []int{80}})
	assert.Empty(t, z.DrawEncounterParty())
}

func TestDrawEncounterParty_AllPoolsEmpty(t *testing.T) {
	cfg := slimeZoneConfig()
	cfg.Common = nil
	cfg.MaxEnemies = 4
	z := mustZone(cfg, NewSeededRNG(7))

	for i := 0; i < 50; i++ {
		assert.Empty(t, z.DrawEncounterParty())
	}
}

func TestSnapshot(t *testing.T) {
	cfg := slimeZoneConfig()
	cfg.IsBoss = true
	cfg.CanEscape = false
	cfg.Music = "boss_theme"
	cfg.Background = "meadow_bg"
	cfg.Tint = "#ffeedd"
	z := mustZone(cfg, alwaysHit())

	a := z.Snapshot()
	b := z.Snapshot()

	assert.Equal(t, "meadow", a.Zone)
	assert.Equal(t, []string{"slime"}, a.Enemies)
	assert.True(t, a.IsBoss)
	assert.False(t, a.CanEscape)
	assert.Equal(t, DefaultBattleScene, a.BattleScene)
	assert.Equal(t, "boss_theme", a.Music)
	assert.Equal(t, "meadow_bg", a.Background)
	assert.Equal(t, "#ffeedd", a.Tint)
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)

	ids := a.EnemyIDs()
	ids[0] = "changed"
	assert.Equal(t, "slime", a.Enemies[0])
}

func TestRarityString(t *testing.T) {
	assert.Equal(t, "common", RarityCommon.String())
	assert.Equal(t, "uncommon", RarityUncommon.String())
	assert.Equal(t, "rare", RarityRare.String())
}

func TestExpectedSteps(t *testing.T) {
	cfg := DefaultZoneConfig() // 10% every 30 steps

	assert.InDelta(t, 300.0, cfg.ExpectedSteps(1), 1e-9)
	assert.InDelta(t, 300.0, cfg.ExpectedSteps(MaxRate), 1e-9, "the second gate always passes at or above 1")
	assert.InDelta(t, 600.0, cfg.ExpectedSteps(0.5), 1e-9)
	assert.InDelta(t, 3000.0, cfg.ExpectedSteps(0), 1e-9, "rates clamp to the minimum")

	cfg.Enabled = false
	assert.True(t, math.IsInf(cfg.ExpectedSteps(1), 1))
}
