package encounter

import (
	"context"
	"errors"

	"wildstep/internal/event"
	"wildstep/internal/logger"
)

// scriptedRNG replays queued values and falls back to the defaults once empty.
// Int values are clamped into [0, n).
type scriptedRNG struct {
	ints       []int
	floats     []float64
	defaultInt int
	defaultF   float64
}

func (s *scriptedRNG) IntN(n int) int {
	v := s.defaultInt
	if len(s.ints) > 0 {
		v, s.ints = s.ints[0], s.ints[1:]
	}
	if v >= n {
		v = n - 1
	}
	if v < 0 {
		v = 0
	}
	return v
}

func (s *scriptedRNG) Float64() float64 {
	v := s.defaultF
	if len(s.floats) > 0 {
		v, s.floats = s.floats[0], s.floats[1:]
	}
	return v
}

// alwaysHit makes every percent roll come up 1 and every float 0.
func alwaysHit() *scriptedRNG { return &scriptedRNG{} }

// neverHit makes every percent roll come up 100 and every float just under 1.
func neverHit() *scriptedRNG { return &scriptedRNG{defaultInt: 99, defaultF: 0.999} }

func slimeZoneConfig() ZoneConfig {
	cfg := DefaultZoneConfig()
	cfg.Name = "meadow"
	cfg.CheckInterval = 30
	cfg.BaseChance = 10
	cfg.MinEnemies = 1
	cfg.MaxEnemies = 1
	cfg.Common = []string{"slime"}
	return cfg
}

func mustZone(cfg ZoneConfig, rng RandomSource) *Zone {
	z, err := NewZone(cfg, rng)
	if err != nil {
		panic(err)
	}
	return z
}

// fakeHost is a scene host with a single player and instant scene loads
// unless loadDelay is set.
type fakeHost struct {
	scene     string
	pos       Position
	noPlayer  bool
	changeErr error
	loadDelay int
	loading   int
	handoffs  []Data
	teleports []Position
	restored  []string
}

func newFakeHost() *fakeHost {
	return &fakeHost{scene: "Meadow", pos: Position{X: 12, Y: 7}}
}

func (h *fakeHost) CurrentScene() (string, bool) { return h.scene, h.scene != "" }

func (h *fakeHost) PlayerPosition() (Position, bool) { return h.pos, !h.noPlayer }

func (h *fakeHost) ChangeScene(scene string, handoff Data) error {
	if h.changeErr != nil {
		return h.changeErr
	}
	h.scene = scene
	h.handoffs = append(h.handoffs, handoff)
	// the battle scene spawns the player elsewhere
	h.pos = Position{}
	return nil
}

func (h *fakeHost) RestoreScene(scene string) error {
	h.restored = append(h.restored, scene)
	h.scene = scene
	h.loading = h.loadDelay
	return nil
}

func (h *fakeHost) SceneActive(scene string) bool {
	if h.loading > 0 {
		h.loading--
		return false
	}
	return h.scene == scene
}

func (h *fakeHost) TeleportPlayer(pos Position) {
	h.teleports = append(h.teleports, pos)
	h.pos = pos
}

type countingSound struct{ plays int }

func (c *countingSound) PlayEncounterSound() { c.plays++ }

type recordingBus struct {
	*event.MemoryBus
	events []event.Event
}

func newRecordingBus() *recordingBus {
	b := &recordingBus{MemoryBus: event.NewMemoryBus()}
	for _, t := range []event.Type{event.StepCountChanged, event.BattleStarting, event.EncounterAborted, event.BattleEnded} {
		b.Subscribe(t, func(_ context.Context, e event.Event) error {
			b.events = append(b.events, e)
			return nil
		})
	}
	return b
}

func (b *recordingBus) ofType(t event.Type) []event.Event {
	var out []event.Event
	for _, e := range b.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func newTestManager(host SceneHost, rng RandomSource, bus event.Bus) *Manager {
	return NewManager(Options{
		Source:     "p1",
		Host:       host,
		Bus:        bus,
		RNG:        rng,
		Logger:     logger.Discard(),
		FlashTicks: 10,
	})
}

// runTicks ticks m n times.
func runTicks(m *Manager, n int) {
	for i := 0; i < n; i++ {
		m.Tick()
	}
}

var errSceneMissing = errors.New("scene missing")
