package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wildstep/internal/ambient"
	"wildstep/internal/encounter"
	"wildstep/internal/game"
)

func TestParseInput(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected []game.Action
	}{
		{"wasd", "wasd", []game.Action{game.ActionUp, game.ActionLeft, game.ActionDown, game.ActionRight}},
		{"upper case", "WD", []game.Action{game.ActionUp, game.ActionRight}},
		{"arrows", "\x1b[A\x1b[B\x1b[C\x1b[D", []game.Action{game.ActionUp, game.ActionDown, game.ActionRight, game.ActionLeft}},
		{"combat keys", "123", []game.Action{game.ActionAttack, game.ActionDefend, game.ActionFlee}},
		{"toggles", "rL", []game.Action{game.ActionToggleRepel, game.ActionToggleLure}},
		{"quit", "q", []game.Action{game.ActionQuit}},
		{"ctrl-c", "\x03", []game.Action{game.ActionQuit}},
		{"unknown keys ignored", "xyz\x1b[Z", nil},
		{"mixed", "d\x1b[C1", []game.Action{game.ActionRight, game.ActionRight, game.ActionAttack}},
		{"multibyte rune", "é1", []game.Action{game.ActionAttack}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseInput([]byte(tt.in)))
		})
	}
}

func TestFrameFor_Overworld(t *testing.T) {
	state := game.GameState{
		Tick:    7,
		Online:  2,
		Self:    game.PlayerSnapshot{ID: "ash", Name: "ash", HP: 20, MaxHP: 30, EXP: 65, Level: 2, Color: 3},
		Players: []game.PlayerSnapshot{{ID: "ash", Name: "ash", X: 4, Y: 5}, {ID: "misty", Name: "misty", InBattle: true}},
		Encounter: encounter.Status{
			Zone: "grass", Steps: 12, Repel: true, Enabled: true,
		},
		Flash:    0.5,
		ZoneTint: "#336633",
		DayPhase: ambient.Dusk,
		Weather:  ambient.Fog,
	}

	f := FrameFor("ash", state)
	assert.Equal(t, "ash", f.ViewerID)
	assert.Equal(t, uint64(7), f.Tick)
	require.Len(t, f.Players, 2)
	assert.Equal(t, 4, f.Players[0].X)
	assert.True(t, f.Players[1].InBattle)
	assert.Equal(t, 15, f.HUD.EXP)
	assert.Equal(t, game.ExpPerLevel, f.HUD.EXPNeeded)
	assert.Equal(t, "grass", f.HUD.Zone)
	assert.Equal(t, 12, f.HUD.Steps)
	assert.True(t, f.HUD.Repel)
	assert.InDelta(t, 0.5, f.Flash, 1e-9)
	assert.Equal(t, ambient.Fog, f.Weather)
	assert.Nil(t, f.Combat)
}

func TestFrameFor_Combat(t *testing.T) {
	state := game.GameState{
		Combat: &game.CombatSnapshot{
			Phase:   game.CombatDefeat,
			Round:   3,
			Enemies: []game.EnemySnapshot{{Label: "Wolf", HP: 35, MaxHP: 40, Alive: true}},
			IsBoss:  true,
		},
	}

	f := FrameFor("ash", state)
	require.NotNil(t, f.Combat)
	assert.Equal(t, "defeat", f.Combat.Result)
	assert.False(t, f.Combat.PlayerTurn)
	assert.Equal(t, 3, f.Combat.Round)
	assert.True(t, f.Combat.IsBoss)
	assert.Equal(t, "Wolf", f.Combat.Enemies[0].Label)

	state.Combat.Phase = game.CombatPlayerTurn
	f = FrameFor("ash", state)
	assert.Empty(t, f.Combat.Result)
	assert.True(t, f.Combat.PlayerTurn)
}
