package game

import (
	"fmt"
	"log/slog"

	"wildstep/internal/encounter"
	"wildstep/internal/maps"
)

// session is one connected player: their avatar, their encounter manager and
// their own instances of the zones they have visited. It is the manager's
// scene host. Only the game loop touches it.
type session struct {
	world   *World
	player  *Player
	manager *encounter.Manager
	rng     encounter.RandomSource
	log     *slog.Logger
	render  RenderChan

	zones    map[string]*encounter.Zone
	zone     *encounter.Zone
	zoneName string
	synced   bool

	scene   string
	loading int
	fight   *Fight

	lastBackground string
}

var _ encounter.SceneHost = (*session)(nil)

// CurrentScene is the overworld map, or the battle scene during a fight.
func (s *session) CurrentScene() (string, bool) {
	return s.scene, s.scene != ""
}

func (s *session) PlayerPosition() (encounter.Position, bool) {
	if s.player == nil {
		return encounter.Position{}, false
	}
	return encounter.Position{X: s.player.X, Y: s.player.Y}, true
}

// ChangeScene enters the battle scene by building a fight from the handoff.
func (s *session) ChangeScene(scene string, handoff encounter.Data) error {
	fight, err := NewFight(handoff, s.world.Bestiary, s.rng)
	if err != nil {
		return fmt.Errorf("change scene to %q: %w", scene, err)
	}
	s.fight = fight
	s.scene = scene
	s.log.Debug("battle scene entered", "scene", scene, "encounter", handoff.ID)
	return nil
}

// RestoreScene puts the player back on an overworld map. The map becomes
// active after SceneLoadTicks.
func (s *session) RestoreScene(scene string) error {
	if s.world.GetMap(scene) == nil {
		return fmt.Errorf("restore scene: %w %q", maps.ErrUnknownMap, scene)
	}
	if s.fight != nil && s.fight.Encounter.Background != "" {
		s.lastBackground = s.fight.Encounter.Background
	}
	s.fight = nil
	s.scene = scene
	s.player.MapName = scene
	s.loading = SceneLoadTicks
	return nil
}

func (s *session) SceneActive(scene string) bool {
	if s.loading > 0 {
		s.loading--
		return false
	}
	return s.scene == scene
}

func (s *session) TeleportPlayer(pos encounter.Position) {
	s.player.X, s.player.Y = pos.X, pos.Y
}

// zoneFor returns this player's instance of the zone, creating it on first visit.
func (s *session) zoneFor(def maps.ZoneDef) (*encounter.Zone, error) {
	if z, ok := s.zones[def.Name()]; ok {
		return z, nil
	}
	z, err := encounter.NewZone(def.Config, s.rng)
	if err != nil {
		return nil, err
	}
	s.zones[def.Name()] = z
	return z, nil
}

// leaveBattle ends whatever battle is running, counting it as a loss.
// Used when the player disconnects mid-fight.
func (s *session) leaveBattle() {
	if s.manager.Abort() {
		return
	}
	if s.manager.Phase() == encounter.PhaseInBattle {
		s.manager.ReturnToOverworld(false)
	}
	for i := 0; s.manager.InBattle() && i < SceneLoadTicks+4; i++ {
		s.manager.Tick()
	}
}
