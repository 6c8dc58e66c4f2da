package game

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"wildstep/internal/audio"
	"wildstep/internal/encounter"
	"wildstep/internal/event"
	"wildstep/internal/logger"
	"wildstep/internal/maps"
)

// fixedRNG always returns the same draws, clamped into range.
type fixedRNG struct {
	i int
	f float64
}

func (r *fixedRNG) IntN(n int) int {
	if r.i >= n {
		return n - 1
	}
	return r.i
}

func (r *fixedRNG) Float64() float64 { return r.f }

func alwaysHit() encounter.RandomSource { return &fixedRNG{} }

func testBestiary(t *testing.T) *Bestiary {
	t.Helper()
	b, err := NewBestiary(
		EnemyDef{ID: "slime", MaxHP: 5, Attack: 1, EXP: 10},
		EnemyDef{ID: "wolf", MaxHP: 40, Attack: 9, Defense: 2, EXP: 25},
		EnemyDef{ID: "golden_slime", Name: "Golden Slime", MaxHP: 8, Attack: 1, EXP: 100},
	)
	require.NoError(t, err)
	return b
}

// grassZone covers the fallback map's spawn and fires on every step.
func grassZone(common ...string) maps.ZoneDef {
	cfg := encounter.DefaultZoneConfig()
	cfg.Name = "grass"
	cfg.BaseChance = 100
	cfg.CheckInterval = 1
	cfg.MinEnemies = 1
	cfg.MaxEnemies = 1
	cfg.Common = common
	return maps.ZoneDef{Map: "Meadow", Rect: maps.Rect{X: 8, Y: 6, W: 6, H: 5}, Config: cfg}
}

func testWorld(t *testing.T, zones ...maps.ZoneDef) *World {
	t.Helper()
	w, err := NewWorld(map[string]*maps.Map{"Meadow": maps.FallbackMap("Meadow")}, zones, testBestiary(t), "Meadow")
	require.NoError(t, err)
	return w
}

type recordingSounds struct {
	encounters int
	played     []audio.Sound
}

func (r *recordingSounds) PlayEncounterSound() { r.encounters++ }
func (r *recordingSounds) Play(s audio.Sound)  { r.played = append(r.played, s) }

type recorder struct {
	*event.MemoryBus
	events []event.Event
}

func newRecorder(types ...event.Type) *recorder {
	r := &recorder{MemoryBus: event.NewMemoryBus()}
	for _, typ := range types {
		r.Subscribe(typ, func(_ context.Context, e event.Event) error {
			r.events = append(r.events, e)
			return nil
		})
	}
	return r
}

func (r *recorder) count(typ event.Type) int {
	n := 0
	for _, e := range r.events {
		if e.Type == typ {
			n++
		}
	}
	return n
}

func newTestLoop(w *World, bus event.Bus, sound SoundBoard) *GameLoop {
	opts := Options{
		Logger:     logger.Discard(),
		FlashTicks: 4,
		NewRNG:     alwaysHit,
		Bus:        bus,
	}
	if sound != nil {
		opts.Sound = sound
	}
	return NewGameLoop(w, opts)
}

// step queues an action for id and runs one tick.
func step(gl *GameLoop, id string, a Action) {
	gl.InputChan() <- InputEvent{PlayerID: id, Action: a}
	gl.tick()
}

// tickUntil ticks until cond holds, failing after limit ticks.
func tickUntil(t *testing.T, gl *GameLoop, limit int, cond func() bool) {
	t.Helper()
	for i := 0; i < limit; i++ {
		if cond() {
			return
		}
		gl.tick()
	}
	require.True(t, cond(), "condition not reached after %d ticks", limit)
}
