package game

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"wildstep/internal/ambient"
	"wildstep/internal/audio"
	"wildstep/internal/encounter"
	"wildstep/internal/event"
	"wildstep/internal/maps"
	"wildstep/internal/metrics"
)

const (
	InputChanSize   = 256
	CommandChanSize = 16

	defaultSavedCapacity = 1024
	defaultSavedTTL      = 30 * time.Minute
	defaultDayLength     = 20 * time.Minute
)

// ErrUnknownPlayer is returned for commands naming a player who is not online.
var ErrUnknownPlayer = errors.New("unknown player")

// SoundBoard plays the game's generated sounds.
type SoundBoard interface {
	encounter.SoundPlayer
	Play(s audio.Sound)
}

// Options configures a GameLoop. Zero values get defaults.
type Options struct {
	Bus            event.Bus
	Sound          SoundBoard
	Logger         *slog.Logger
	FlashTicks     int
	RateMultiplier float64
	SavedTTL       time.Duration
	SavedCapacity  int
	DayLength      time.Duration
	// NewRNG returns the randomness for one session. Defaults to encounter.DefaultRNG.
	NewRNG func() encounter.RandomSource
}

// GameState is the per-viewer snapshot sent to a session for rendering.
type GameState struct {
	Tick    uint64
	Map     *maps.Map
	Self    PlayerSnapshot
	Players []PlayerSnapshot // everyone on the viewer's map, viewer included
	Online  int

	Encounter encounter.Status
	Phase     encounter.Phase
	Flash     float64
	Combat    *CombatSnapshot
	ZoneTint  string

	DayPhase ambient.DayPhase
	Light    ambient.Tint
	Weather  ambient.Kind
}

// RenderChan is the per-session channel that receives game state snapshots.
type RenderChan chan GameState

// PlayerStatus is the admin view of one online player.
type PlayerStatus struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Map       string           `json:"map"`
	X         int              `json:"x"`
	Y         int              `json:"y"`
	Encounter encounter.Status `json:"encounter"`
}

// ModifierUpdate changes a player's encounter modifiers. Nil fields are left
// alone. The multiplier is clamped by the manager after validation.
type ModifierUpdate struct {
	Repel      *bool    `json:"repel,omitempty"`
	Lure       *bool    `json:"lure,omitempty"`
	Enabled    *bool    `json:"enabled,omitempty"`
	Multiplier *float64 `json:"multiplier,omitempty" validate:"omitempty,gt=0,lte=100"`
}

type command struct {
	playerID string
	update   ModifierUpdate
	reply    chan error
}

// savedState is what a player keeps across reconnects.
type savedState struct {
	MapName    string
	X, Y       int
	Color      int
	HP, EXP    int
	Repel      bool
	Lure       bool
	Background string
}

// GameLoop owns all game state. Sessions talk to it through the input and
// command channels; the tick goroutine is the only one driving managers.
type GameLoop struct {
	world     *World
	opts      Options
	log       *slog.Logger
	inputCh   chan InputEvent
	cmdCh     chan command
	tickCount uint64

	clock   *ambient.Clock
	weather *ambient.Weather

	mu        sync.RWMutex
	sessions  map[string]*session
	saved     *expirable.LRU[string, savedState] // keyed by username
	nextColor int

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewGameLoop creates a game loop over world.
func NewGameLoop(world *World, opts Options) *GameLoop {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.NewRNG == nil {
		opts.NewRNG = encounter.DefaultRNG
	}
	if opts.SavedTTL <= 0 {
		opts.SavedTTL = defaultSavedTTL
	}
	if opts.SavedCapacity <= 0 {
		opts.SavedCapacity = defaultSavedCapacity
	}
	if opts.DayLength <= 0 {
		opts.DayLength = defaultDayLength
	}

	gl := &GameLoop{
		world:    world,
		opts:     opts,
		log:      opts.Logger.With("component", "gameloop"),
		inputCh:  make(chan InputEvent, InputChanSize),
		cmdCh:    make(chan command, CommandChanSize),
		clock:    ambient.NewClock(opts.DayLength, TickRate, 0.35),
		weather:  ambient.NewWeather(ambient.DefaultWeatherConfig(), opts.NewRNG()),
		sessions: make(map[string]*session),
		saved:    expirable.NewLRU[string, savedState](opts.SavedCapacity, nil, opts.SavedTTL),
		stopCh:   make(chan struct{}),
	}
	gl.weather.OnChange(func(from, to ambient.Kind) {
		metrics.WeatherChangesTotal.WithLabelValues(to.String()).Inc()
		gl.log.Info("weather changed", "from", from.String(), "to", to.String())
		gl.publish(event.NewAmbientEvent(event.WeatherChanged, from.String(), to.String()))
	})
	return gl
}

// InputChan returns the shared input channel for sessions to send events.
func (gl *GameLoop) InputChan() chan<- InputEvent {
	return gl.inputCh
}

// AddPlayer registers a player using their username as identity. A username
// seen within the saved-player TTL gets its position, stats and modifiers back.
// Returns the effective player ID and the render channel.
func (gl *GameLoop) AddPlayer(name string) (string, RenderChan) {
	gl.mu.Lock()
	defer gl.mu.Unlock()

	id := name
	if _, online := gl.sessions[id]; online {
		id = name + "_" + uuid.NewString()[:8]
	}

	mapName, x, y := gl.world.SpawnPoint()
	color := gl.nextColor % numPlayerTint
	saved, restored := gl.saved.Get(name)
	if restored && gl.world.CanMoveTo(saved.MapName, saved.X, saved.Y) {
		mapName, x, y, color = saved.MapName, saved.X, saved.Y, saved.Color
	} else {
		gl.nextColor++
	}

	p := newPlayer(id, name, mapName, x, y, color)
	rng := gl.opts.NewRNG()
	log := gl.log.With("player", id)
	s := &session{
		world:  gl.world,
		player: p,
		rng:    rng,
		log:    log,
		render: make(RenderChan, 2),
		zones:  make(map[string]*encounter.Zone),
		scene:  mapName,
	}
	s.manager = encounter.NewManager(encounter.Options{
		Source:         id,
		Host:           s,
		Bus:            gl.opts.Bus,
		Sound:          gl.opts.Sound,
		RNG:            rng,
		Logger:         log,
		FlashTicks:     gl.opts.FlashTicks,
		RateMultiplier: gl.opts.RateMultiplier,
		Background:     saved.Background,
	})
	if restored {
		p.HP, p.EXP = max(saved.HP, 1), saved.EXP
		s.lastBackground = saved.Background
		if saved.Repel {
			s.manager.SetRepelActive(true)
		}
		if saved.Lure {
			s.manager.SetLureActive(true)
		}
	}

	gl.sessions[id] = s
	metrics.PlayersOnline.Set(float64(len(gl.sessions)))
	gl.log.Info("player joined", "player", id, "map", mapName, "restored", restored)
	return id, s.render
}

// RemovePlayer ends any running battle, saves the player and unregisters them.
func (gl *GameLoop) RemovePlayer(id string) {
	gl.mu.Lock()
	defer gl.mu.Unlock()

	s, ok := gl.sessions[id]
	if !ok {
		return
	}
	s.leaveBattle()
	if s.zone != nil {
		s.zone.ClearPlayerPresence()
		s.manager.UnregisterZone(s.zone)
	}

	p := s.player
	status := s.manager.Status()
	gl.saved.Add(p.Name, savedState{
		MapName:    p.MapName,
		X:          p.X,
		Y:          p.Y,
		Color:      p.Color,
		HP:         p.HP,
		EXP:        p.EXP,
		Repel:      status.Repel,
		Lure:       status.Lure,
		Background: s.lastBackground,
	})
	delete(gl.sessions, id)
	close(s.render)
	metrics.PlayersOnline.Set(float64(len(gl.sessions)))
	gl.log.Info("player left", "player", id)
}

// UpdateModifiers applies an admin modifier change on the next tick and
// waits for it to land.
func (gl *GameLoop) UpdateModifiers(ctx context.Context, playerID string, update ModifierUpdate) error {
	cmd := command{playerID: playerID, update: update, reply: make(chan error, 1)}
	select {
	case gl.cmdCh <- cmd:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-cmd.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Statuses returns the encounter state of every online player, sorted by id.
func (gl *GameLoop) Statuses() []PlayerStatus {
	gl.mu.RLock()
	defer gl.mu.RUnlock()

	out := make([]PlayerStatus, 0, len(gl.sessions))
	for _, s := range gl.sessions {
		p := s.player
		out = append(out, PlayerStatus{
			ID:        p.ID,
			Name:      p.Name,
			Map:       p.MapName,
			X:         p.X,
			Y:         p.Y,
			Encounter: s.manager.Status(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Online returns the number of connected players.
func (gl *GameLoop) Online() int {
	gl.mu.RLock()
	defer gl.mu.RUnlock()
	return len(gl.sessions)
}

// Run ticks the loop until Stop is called.
func (gl *GameLoop) Run() {
	ticker := time.NewTicker(time.Second / TickRate)
	defer ticker.Stop()

	for {
		select {
		case <-gl.stopCh:
			return
		case <-ticker.C:
			gl.tick()
		}
	}
}

// Stop shuts down the game loop. It is safe to call more than once.
func (gl *GameLoop) Stop() {
	gl.stopOnce.Do(func() { close(gl.stopCh) })
}

func (gl *GameLoop) tick() {
	var inputs []InputEvent
	var cmds []command
drain:
	for {
		select {
		case ev := <-gl.inputCh:
			inputs = append(inputs, ev)
		case cmd := <-gl.cmdCh:
			cmds = append(cmds, cmd)
		default:
			break drain
		}
	}

	gl.mu.Lock()
	defer gl.mu.Unlock()

	gl.tickCount++
	if from, to, changed := gl.clock.Tick(); changed {
		gl.log.Debug("day phase changed", "from", from.String(), "to", to.String())
		gl.publish(event.NewAmbientEvent(event.DayPhaseChanged, from.String(), to.String()))
	}
	gl.weather.Tick()

	for _, cmd := range cmds {
		cmd.reply <- gl.applyModifiers(cmd)
	}
	for _, s := range gl.sessions {
		if !s.synced {
			gl.syncZone(s)
			s.synced = true
		}
	}
	for _, ev := range inputs {
		gl.processInput(ev)
	}
	for _, s := range gl.sessions {
		gl.tickSession(s)
	}
	gl.broadcast()
}

func (gl *GameLoop) applyModifiers(cmd command) error {
	s, ok := gl.sessions[cmd.playerID]
	if !ok {
		return ErrUnknownPlayer
	}
	u := cmd.update
	if u.Repel != nil {
		s.manager.SetRepelActive(*u.Repel)
	}
	if u.Lure != nil {
		s.manager.SetLureActive(*u.Lure)
	}
	if u.Enabled != nil {
		s.manager.SetEncountersEnabled(*u.Enabled)
	}
	if u.Multiplier != nil {
		s.manager.SetRateMultiplier(*u.Multiplier)
	}
	return nil
}

func (gl *GameLoop) processInput(ev InputEvent) {
	s, ok := gl.sessions[ev.PlayerID]
	if !ok {
		return
	}
	p := s.player

	dx, dy := 0, 0
	switch ev.Action {
	case ActionUp:
		dy = -1
	case ActionDown:
		dy = 1
	case ActionLeft:
		dx = -1
	case ActionRight:
		dx = 1
	case ActionAttack, ActionDefend, ActionFlee:
		if s.fight != nil && s.manager.Phase() == encounter.PhaseInBattle {
			s.fight.Act(p, ev.Action)
		}
		return
	case ActionToggleRepel:
		s.manager.SetRepelActive(!s.manager.Status().Repel)
		return
	case ActionToggleLure:
		s.manager.SetLureActive(!s.manager.Status().Lure)
		return
	default:
		return
	}

	if s.manager.InBattle() {
		return
	}
	nx, ny := p.X+dx, p.Y+dy
	if !gl.world.CanMoveTo(p.MapName, nx, ny) {
		return
	}
	p.X, p.Y = nx, ny

	if portal := gl.world.PortalAt(p.MapName, nx, ny); portal != nil {
		p.MapName, p.X, p.Y = portal.TargetMap, portal.TargetX, portal.TargetY
		s.scene = portal.TargetMap
		gl.syncZone(s)
		return
	}
	gl.syncZone(s)
	s.manager.OnPlayerStep()
}

// syncZone registers the zone under the player, leaving the previous one.
func (gl *GameLoop) syncZone(s *session) {
	p := s.player
	def, ok := gl.world.ZoneAt(p.MapName, p.X, p.Y)
	name := ""
	if ok {
		name = def.Name()
	}
	if name == s.zoneName {
		return
	}

	if s.zone != nil {
		s.zone.ClearPlayerPresence()
		s.manager.UnregisterZone(s.zone)
		gl.publish(event.NewZoneEvent(event.ZoneLeft, p.ID, s.zoneName, p.MapName))
	}
	s.zone, s.zoneName = nil, name
	if !ok {
		return
	}

	z, err := s.zoneFor(def)
	if err != nil {
		s.log.Error("zone unusable", "zone", name, "error", err)
		return
	}
	z.RegisterPlayerPresence()
	s.manager.RegisterZone(z)
	s.zone = z
	gl.publish(event.NewZoneEvent(event.ZoneEntered, p.ID, name, p.MapName))
}

func (gl *GameLoop) tickSession(s *session) {
	if s.fight != nil && s.manager.Phase() == encounter.PhaseInBattle && s.fight.Tick(s.player) {
		victory := s.fight.Victory()
		switch s.fight.Phase {
		case CombatVictory:
			gl.play(audio.SoundVictory)
		case CombatDefeat:
			gl.play(audio.SoundDefeat)
			s.player.Heal()
		}
		s.manager.ReturnToOverworld(victory)
	}
	s.manager.Tick()
}

func (gl *GameLoop) play(sound audio.Sound) {
	if gl.opts.Sound != nil {
		gl.opts.Sound.Play(sound)
	}
}

func (gl *GameLoop) publish(e event.Event) {
	if gl.opts.Bus == nil {
		return
	}
	if err := gl.opts.Bus.Publish(context.Background(), e); err != nil {
		gl.log.Warn("event handler failed", "type", e.Type, "error", err)
	}
}

func (gl *GameLoop) broadcast() {
	byMap := make(map[string][]PlayerSnapshot)
	for _, s := range gl.sessions {
		snap := s.player.Snapshot()
		snap.InBattle = s.manager.InBattle()
		byMap[snap.MapName] = append(byMap[snap.MapName], snap)
	}

	for _, s := range gl.sessions {
		state := gl.stateFor(s, byMap[s.player.MapName])
		select {
		case s.render <- state:
		default:
			// slow client, drop the frame
		}
	}
}

func (gl *GameLoop) stateFor(s *session, players []PlayerSnapshot) GameState {
	self := s.player.Snapshot()
	self.InBattle = s.manager.InBattle()
	state := GameState{
		Tick:      gl.tickCount,
		Map:       gl.world.GetMap(s.player.MapName),
		Self:      self,
		Players:   players,
		Online:    len(gl.sessions),
		Encounter: s.manager.Status(),
		Phase:     s.manager.Phase(),
		Flash:     s.manager.FlashLevel(),
		DayPhase:  gl.clock.Phase(),
		Light:     gl.clock.Tint(),
		Weather:   gl.weather.Current(),
	}
	if s.zone != nil {
		state.ZoneTint = s.zone.Config().Tint
	}
	if s.fight != nil && state.Phase == encounter.PhaseInBattle {
		state.Combat = s.fight.Snapshot()
	}
	return state
}
