package encounter

import (
	"context"
	"log/slog"
	"math"
	"weak"

	"wildstep/internal/event"
	"wildstep/internal/logger"
	"wildstep/internal/metrics"
)

// Rate modifier bounds and factors.
const (
	MinRate     = 0.1
	MaxRate     = 5.0
	RepelFactor = 0.5
	LureFactor  = 2.0
)

// DefaultFlashTicks is the flash length used when Options.FlashTicks is unset.
const DefaultFlashTicks = 20

// Position is a tile position in a scene.
type Position struct {
	X, Y int
}

// SceneHost is the slice of the engine the manager drives during a transition.
type SceneHost interface {
	// CurrentScene returns the scene the player is in, if any.
	CurrentScene() (string, bool)
	// PlayerPosition returns the player's position, if a player exists.
	PlayerPosition() (Position, bool)
	// ChangeScene switches to the battle scene, handing off the encounter.
	ChangeScene(scene string, handoff Data) error
	// RestoreScene switches back to a previously captured scene.
	RestoreScene(scene string) error
	// SceneActive reports whether scene is loaded and current.
	SceneActive(scene string) bool
	// TeleportPlayer moves the player within the current scene.
	TeleportPlayer(pos Position)
}

// SoundPlayer plays the encounter sting at the start of a transition.
type SoundPlayer interface {
	PlayEncounterSound()
}

// Options configures a Manager. Zero values fall back to sensible defaults.
type Options struct {
	Source         string // player or session id stamped on events
	Host           SceneHost
	Bus            event.Bus
	Sound          SoundPlayer
	RNG            RandomSource
	Logger         *slog.Logger
	FlashTicks     int
	RateMultiplier float64
	Background     string // seeded from a previous session's exit data
}

// Status is a read-only view of the manager for HUDs and the admin API.
type Status struct {
	Zone           string  `json:"zone"`
	Steps          int     `json:"steps"`
	InBattle       bool    `json:"in_battle"`
	Phase          string  `json:"phase"`
	RateMultiplier float64 `json:"rate_multiplier"`
	EffectiveRate  float64 `json:"effective_rate"`
	Repel          bool    `json:"repel"`
	Lure           bool    `json:"lure"`
	Enabled        bool    `json:"enabled"`
	Encounter      string  `json:"encounter,omitempty"`
}

// Manager coordinates step counting, the active zone, rate modifiers and the
// battle transition. It is not safe for concurrent use: every method must run
// on the game loop goroutine.
type Manager struct {
	source string
	host   SceneHost
	bus    event.Bus
	sound  SoundPlayer
	rng    RandomSource
	log    *slog.Logger

	stepCount  int
	activeZone weak.Pointer[Zone]
	zoneName   string

	inBattle          bool
	victory           bool
	rateMultiplier    float64
	repelActive       bool
	lureActive        bool
	encountersEnabled bool

	phase       Phase
	phaseTicks  int
	flash       FlashTiming
	pending     Data
	preBattle   Position
	hasPosition bool
	returnScene string
	background  string
}

// NewManager builds a manager. Tests construct managers directly; the game
// server installs one per player session.
func NewManager(opts Options) *Manager {
	if opts.RNG == nil {
		opts.RNG = DefaultRNG()
	}
	if opts.Logger == nil {
		opts.Logger = logger.FromContext(context.Background())
	}
	if opts.FlashTicks <= 0 {
		opts.FlashTicks = DefaultFlashTicks
	}
	if opts.RateMultiplier == 0 {
		opts.RateMultiplier = 1
	}
	return &Manager{
		source:            opts.Source,
		host:              opts.Host,
		bus:               opts.Bus,
		sound:             opts.Sound,
		rng:               opts.RNG,
		log:               opts.Logger.With("component", "encounter"),
		rateMultiplier:    clampRate(opts.RateMultiplier),
		encountersEnabled: true,
		flash:             NewFlashTiming(opts.FlashTicks),
		background:        opts.Background,
	}
}

// ActiveZone returns the registered zone, or nil.
func (m *Manager) ActiveZone() *Zone {
	return m.activeZone.Value()
}

// StepCount returns the steps counted since the zone was registered or the last battle.
func (m *Manager) StepCount() int { return m.stepCount }

// InBattle reports whether a transition or battle is in progress.
func (m *Manager) InBattle() bool { return m.inBattle }

// Phase returns the current state machine phase.
func (m *Manager) Phase() Phase {
	if m.phase != PhaseIdle {
		return m.phase
	}
	if m.ActiveZone() != nil {
		return PhaseTracking
	}
	return PhaseIdle
}

// FlashLevel returns the flash overlay opacity in [0,1].
func (m *Manager) FlashLevel() float64 {
	return m.flash.level(m.phase, m.phaseTicks)
}

// Pending returns the encounter being transitioned to or fought, if any.
func (m *Manager) Pending() (Data, bool) {
	if !m.inBattle {
		return Data{}, false
	}
	return m.pending, true
}

// Status returns a snapshot of the manager state.
func (m *Manager) Status() Status {
	s := Status{
		Zone:           m.zoneName,
		Steps:          m.stepCount,
		InBattle:       m.inBattle,
		Phase:          m.Phase().String(),
		RateMultiplier: m.rateMultiplier,
		EffectiveRate:  m.EffectiveRate(),
		Repel:          m.repelActive,
		Lure:           m.lureActive,
		Enabled:        m.encountersEnabled,
	}
	if m.ActiveZone() == nil {
		s.Zone = ""
	}
	if m.inBattle {
		s.Encounter = m.pending.ID
	}
	return s
}

// RegisterZone makes z the active zone and starts a fresh counting window.
func (m *Manager) RegisterZone(z *Zone) {
	if z == nil {
		return
	}
	m.activeZone = weak.Make(z)
	m.zoneName = z.Name()
	m.stepCount = 0
	m.log.Debug("zone registered", "zone", z.Name())
}

// UnregisterZone clears the active zone if z is the one registered.
func (m *Manager) UnregisterZone(z *Zone) {
	if z == nil || m.ActiveZone() != z {
		return
	}
	m.activeZone = weak.Pointer[Zone]{}
	m.zoneName = ""
	m.log.Debug("zone unregistered", "zone", z.Name())
}

// OnPlayerStep counts one player step and runs the encounter check.
// It does nothing while encounters are disabled, a battle is in progress or
// no zone is active.
func (m *Manager) OnPlayerStep() {
	zone := m.ActiveZone()
	if !m.encountersEnabled || m.inBattle || zone == nil {
		return
	}
	m.stepCount++
	metrics.StepsTotal.WithLabelValues(zone.Name()).Inc()
	m.publish(event.NewStepCountChangedEvent(m.source, m.stepCount, zone.Name()))
	m.CheckEncounter()
}

// EffectiveRate is the global multiplier after repel and lure, clamped to [MinRate, MaxRate].
func (m *Manager) EffectiveRate() float64 {
	rate := m.rateMultiplier
	if m.repelActive {
		rate *= RepelFactor
	}
	if m.lureActive {
		rate *= LureFactor
	}
	return clampRate(rate)
}

// CheckEncounter runs the two independent gates: the zone's own roll, then a
// roll against the effective global rate. It reports whether a battle started.
func (m *Manager) CheckEncounter() bool {
	zone := m.ActiveZone()
	if zone == nil || m.inBattle {
		return false
	}

	due := zone.cfg.Enabled && zone.present && m.stepCount%zone.cfg.CheckInterval == 0
	hit := zone.CheckForEncounter(m.stepCount)
	if due {
		metrics.ZoneChecksTotal.WithLabelValues(zone.Name(), metrics.HitLabel(hit)).Inc()
	}
	if !hit {
		return false
	}

	rate := m.EffectiveRate()
	draw := m.rng.Float64() * 100
	if draw > rate*100 {
		m.log.Debug("global rate gate missed", "zone", zone.Name(), "draw", draw, "rate", rate)
		return false
	}
	return m.TriggerEncounter()
}

// TriggerEncounter snapshots the active zone and starts the battle sequence.
// An empty party aborts the encounter; nothing is transitioned.
func (m *Manager) TriggerEncounter() bool {
	zone := m.ActiveZone()
	if zone == nil {
		m.log.Warn("encounter triggered without an active zone")
		return false
	}

	data := zone.Snapshot()
	if data.Empty() {
		m.log.Warn("encounter aborted: zone has no enemies to draw", "zone", zone.Name())
		metrics.EncountersAborted.WithLabelValues(zone.Name()).Inc()
		m.publish(event.NewEncounterAbortedEvent(m.source, zone.Name(), "empty party"))
		return false
	}
	if data.Background == "" {
		data.Background = m.background
	}
	m.StartBattleSequence(data)
	return true
}

// StartBattleSequence captures where the player is and starts the flash.
// The scene change happens from Tick once the flash completes.
func (m *Manager) StartBattleSequence(data Data) {
	if m.inBattle {
		m.log.Warn("battle sequence already running", "encounter", m.pending.ID)
		return
	}
	if data.BattleScene == "" {
		data.BattleScene = DefaultBattleScene
	}

	m.inBattle = true
	m.pending = data
	metrics.EncountersTotal.WithLabelValues(data.Zone).Inc()
	metrics.PlayersInBattle.Inc()

	m.log.Info("battle starting", "zone", data.Zone, "encounter", data.ID, "enemies", data.Enemies, "boss", data.IsBoss)
	m.publish(event.NewBattleStartingEvent(m.source, data.ID, data.Zone, data.Enemies, data.IsBoss))

	m.hasPosition = false
	m.returnScene = ""
	if m.host != nil {
		if pos, ok := m.host.PlayerPosition(); ok {
			m.preBattle = pos
			m.hasPosition = true
		}
		if scene, ok := m.host.CurrentScene(); ok {
			m.returnScene = scene
		}
	}
	if !m.hasPosition {
		m.log.Warn("no player position to capture; return will not teleport")
	}

	if m.sound != nil {
		m.sound.PlayEncounterSound()
	}
	m.enter(PhaseFadeIn)
}

// ReturnToOverworld starts restoring the captured scene after a battle.
// victory is only logged and counted here.
func (m *Manager) ReturnToOverworld(victory bool) {
	if m.phase != PhaseInBattle {
		m.log.Warn("return to overworld ignored", "phase", m.Phase().String())
		return
	}
	m.log.Info("returning to overworld", "zone", m.pending.Zone, "encounter", m.pending.ID, "victory", victory)
	metrics.BattlesEndedTotal.WithLabelValues(m.pending.Zone, metrics.BattleResultLabel(victory)).Inc()

	if m.host != nil && m.returnScene != "" {
		if err := m.host.RestoreScene(m.returnScene); err != nil {
			m.log.Error("restore scene failed", "scene", m.returnScene, "error", err)
			m.returnScene = ""
		}
	}
	m.victory = victory
	m.enter(PhaseReturning)
}

// Abort cancels a running flash before the scene change. Battles that already
// handed off to the battle scene must end through ReturnToOverworld.
func (m *Manager) Abort() bool {
	if !m.phase.Transitioning() {
		return false
	}
	m.log.Info("battle sequence aborted", "encounter", m.pending.ID)
	m.publish(event.NewEncounterAbortedEvent(m.source, m.pending.Zone, "aborted"))
	m.finish()
	return true
}

// Tick advances the transition state machine by one game tick.
func (m *Manager) Tick() {
	switch m.phase {
	case PhaseFadeIn:
		m.phaseTicks++
		if m.phaseTicks >= m.flash.FadeIn {
			if m.flash.Hold > 0 {
				m.enter(PhaseHold)
			} else {
				m.enter(PhaseFadeOut)
			}
		}
	case PhaseHold:
		m.phaseTicks++
		if m.phaseTicks >= m.flash.Hold {
			m.enter(PhaseFadeOut)
		}
	case PhaseFadeOut:
		m.phaseTicks++
		if m.phaseTicks >= m.flash.FadeOut {
			m.changeToBattle()
		}
	case PhaseReturning:
		if m.host == nil || m.returnScene == "" || m.host.SceneActive(m.returnScene) {
			m.enter(PhaseSettling)
		}
	case PhaseSettling:
		if m.host != nil && m.hasPosition {
			m.host.TeleportPlayer(m.preBattle)
		}
		m.publish(event.NewBattleEndedEvent(m.source, m.pending.ID, m.pending.Zone, m.victory))
		m.finish()
	}
}

func (m *Manager) changeToBattle() {
	if m.host == nil {
		m.log.Error("no scene host; cannot enter battle", "encounter", m.pending.ID)
		m.finish()
		return
	}
	if err := m.host.ChangeScene(m.pending.BattleScene, m.pending); err != nil {
		m.log.Error("battle scene change failed", "scene", m.pending.BattleScene, "error", err)
		m.finish()
		return
	}
	m.enter(PhaseInBattle)
}

// finish leaves the battle state and opens a fresh counting window.
func (m *Manager) finish() {
	if m.inBattle {
		metrics.PlayersInBattle.Dec()
	}
	m.inBattle = false
	m.stepCount = 0
	m.pending = Data{}
	m.victory = false
	m.enter(PhaseIdle)
}

func (m *Manager) enter(p Phase) {
	m.phase = p
	m.phaseTicks = 0
}

// SetRepelActive toggles the repel modifier.
func (m *Manager) SetRepelActive(active bool) {
	m.repelActive = active
	m.log.Info("repel toggled", "active", active)
}

// SetLureActive toggles the lure modifier.
func (m *Manager) SetLureActive(active bool) {
	m.lureActive = active
	m.log.Info("lure toggled", "active", active)
}

// SetEncountersEnabled switches step processing on or off.
func (m *Manager) SetEncountersEnabled(enabled bool) {
	m.encountersEnabled = enabled
	m.log.Info("encounters toggled", "enabled", enabled)
}

// SetRateMultiplier sets the global rate multiplier, clamped to [MinRate, MaxRate].
func (m *Manager) SetRateMultiplier(mult float64) {
	m.rateMultiplier = clampRate(mult)
	m.log.Info("rate multiplier set", "multiplier", m.rateMultiplier)
}

// SeedBackground sets the background used when a zone has none of its own.
func (m *Manager) SeedBackground(ref string) {
	m.background = ref
}

func (m *Manager) publish(e event.Event) {
	if m.bus == nil {
		return
	}
	if err := m.bus.Publish(context.Background(), e); err != nil {
		m.log.Warn("event handler failed", "type", e.Type, "error", err)
	}
}

func clampRate(rate float64) float64 {
	if math.IsNaN(rate) {
		return 1
	}
	if rate < MinRate {
		return MinRate
	}
	if rate > MaxRate {
		return MaxRate
	}
	return rate
}
