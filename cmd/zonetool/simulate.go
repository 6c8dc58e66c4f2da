package main

import (
	"context"
	"fmt"
	"io"
	"sort"

	"wildstep/internal/encounter"
	"wildstep/internal/event"
	"wildstep/internal/logger"
)

// simFlashTicks keeps the headless transition short; its length does not
// change encounter statistics.
const simFlashTicks = 2

// simulation walks a player through one zone with a headless scene host.
type simulation struct {
	rng     encounter.RandomSource
	bus     *event.MemoryBus
	host    *simHost
	aborted int
}

func newSimulation(rng encounter.RandomSource) *simulation {
	s := &simulation{rng: rng, bus: event.NewMemoryBus(), host: &simHost{}}
	s.bus.Subscribe(event.EncounterAborted, func(context.Context, event.Event) error {
		s.aborted++
		return nil
	})
	return s
}

func (s *simulation) newManager(rate float64, repel, lure bool) *encounter.Manager {
	m := encounter.NewManager(encounter.Options{
		Source:         "zonetool",
		Host:           s.host,
		Bus:            s.bus,
		RNG:            s.rng,
		Logger:         logger.Discard(),
		FlashTicks:     simFlashTicks,
		RateMultiplier: rate,
	})
	m.SetRepelActive(repel)
	m.SetLureActive(lure)
	return m
}

type simResult struct {
	Steps      int
	Encounters int
	Aborted    int
	Gaps       []int
	Enemies    map[string]int
}

// run takes steps through the zone, winning every battle at once.
func (s *simulation) run(m *encounter.Manager, cfg encounter.ZoneConfig, steps int) (simResult, error) {
	zone, err := encounter.NewZone(cfg, s.rng)
	if err != nil {
		return simResult{}, err
	}
	zone.RegisterPlayerPresence()
	m.RegisterZone(zone)
	defer m.UnregisterZone(zone)

	res := simResult{Steps: steps, Enemies: make(map[string]int)}
	since := 0
	for i := 0; i < steps; i++ {
		since++
		m.OnPlayerStep()
		if !m.InBattle() {
			continue
		}

		res.Encounters++
		res.Gaps = append(res.Gaps, since)
		since = 0

		for m.InBattle() && m.Phase() != encounter.PhaseInBattle {
			m.Tick()
		}
		for _, id := range s.host.last.Enemies {
			res.Enemies[id]++
		}
		if m.InBattle() {
			m.ReturnToOverworld(true)
		}
		for m.InBattle() {
			m.Tick()
		}
	}
	res.Aborted = s.aborted
	return res, nil
}

func (r simResult) meanGap() float64 {
	if len(r.Gaps) == 0 {
		return 0
	}
	sum := 0
	for _, g := range r.Gaps {
		sum += g
	}
	return float64(sum) / float64(len(r.Gaps))
}

func (r simResult) print(w io.Writer, cfg encounter.ZoneConfig, rate float64) {
	fmt.Fprintf(w, "Zone %q: %d steps, effective rate %.2f\n", cfg.Name, r.Steps, rate)
	fmt.Fprintf(w, "  encounters: %d (aborted %d)\n", r.Encounters, r.Aborted)
	fmt.Fprintf(w, "  steps/encounter: %.1f observed, %.1f expected\n", r.meanGap(), cfg.ExpectedSteps(rate))

	ids := make([]string, 0, len(r.Enemies))
	total := 0
	for id, n := range r.Enemies {
		ids = append(ids, id)
		total += n
	}
	sort.Slice(ids, func(i, j int) bool {
		if r.Enemies[ids[i]] != r.Enemies[ids[j]] {
			return r.Enemies[ids[i]] > r.Enemies[ids[j]]
		}
		return ids[i] < ids[j]
	})
	for _, id := range ids {
		fmt.Fprintf(w, "  %-16s %6d  %5.1f%%\n", id, r.Enemies[id], 100*float64(r.Enemies[id])/float64(total))
	}
}

// simHost is a scene host with one overworld scene and instant loads.
type simHost struct {
	pos    encounter.Position
	inside bool
	last   encounter.Data
}

func (h *simHost) CurrentScene() (string, bool) {
	if h.inside {
		return encounter.DefaultBattleScene, true
	}
	return "overworld", true
}

func (h *simHost) PlayerPosition() (encounter.Position, bool) { return h.pos, true }

func (h *simHost) ChangeScene(_ string, handoff encounter.Data) error {
	h.inside = true
	h.last = handoff
	return nil
}

func (h *simHost) RestoreScene(string) error {
	h.inside = false
	return nil
}

func (h *simHost) SceneActive(scene string) bool {
	current, _ := h.CurrentScene()
	return current == scene
}

func (h *simHost) TeleportPlayer(pos encounter.Position) { h.pos = pos }
