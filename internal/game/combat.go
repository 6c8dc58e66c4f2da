package game

import (
	"errors"
	"fmt"

	"wildstep/internal/encounter"
)

// CombatPhase tracks where a fight is.
type CombatPhase int

const (
	CombatPlayerTurn CombatPhase = iota
	CombatEnemyTurn
	CombatVictory
	CombatDefeat
	CombatFled
)

func (p CombatPhase) String() string {
	switch p {
	case CombatPlayerTurn:
		return "player_turn"
	case CombatEnemyTurn:
		return "enemy_turn"
	case CombatVictory:
		return "victory"
	case CombatDefeat:
		return "defeat"
	case CombatFled:
		return "fled"
	default:
		return "unknown"
	}
}

// Over reports whether the fight has a result.
func (p CombatPhase) Over() bool {
	return p == CombatVictory || p == CombatDefeat || p == CombatFled
}

const maxLogLines = 6

var errNoEnemies = errors.New("encounter has no enemies")

// Fight is one player's battle against an encounter party.
type Fight struct {
	Encounter encounter.Data
	Round     int
	Phase     CombatPhase
	Enemies   []*EnemyInstance
	Log       []string

	rng         encounter.RandomSource
	enemyIndex  int
	enemyTimer  int
	resultTimer int
	reported    bool
}

// NewFight builds a fight from an encounter handoff. Every enemy id must be
// in the bestiary.
func NewFight(data encounter.Data, b *Bestiary, rng encounter.RandomSource) (*Fight, error) {
	if data.Empty() {
		return nil, errNoEnemies
	}
	defs := make([]EnemyDef, 0, len(data.Enemies))
	for _, id := range data.Enemies {
		d, err := b.Lookup(id)
		if err != nil {
			return nil, fmt.Errorf("build fight: %w", err)
		}
		defs = append(defs, d)
	}

	f := &Fight{
		Encounter: data,
		Round:     1,
		Phase:     CombatPlayerTurn,
		Enemies:   spawnEnemies(defs),
		rng:       rng,
	}
	names := make([]string, len(f.Enemies))
	for i, e := range f.Enemies {
		names[i] = e.Label
	}
	if data.IsBoss {
		f.addLog(fmt.Sprintf("A fearsome %s blocks the way!", names[0]))
	} else {
		f.addLog(fmt.Sprintf("Wild %s appeared!", joinNames(names)))
	}
	return f, nil
}

func joinNames(names []string) string {
	switch len(names) {
	case 1:
		return names[0]
	case 2:
		return names[0] + " and " + names[1]
	default:
		out := ""
		for i, n := range names[:len(names)-1] {
			if i > 0 {
				out += ", "
			}
			out += n
		}
		return out + " and " + names[len(names)-1]
	}
}

func (f *Fight) addLog(msg string) {
	f.Log = append(f.Log, msg)
	if len(f.Log) > maxLogLines {
		f.Log = f.Log[len(f.Log)-maxLogLines:]
	}
}

// LivingEnemies returns the enemies still standing.
func (f *Fight) LivingEnemies() []*EnemyInstance {
	var out []*EnemyInstance
	for _, e := range f.Enemies {
		if e.Alive() {
			out = append(out, e)
		}
	}
	return out
}

// TotalEXP is the experience the party is worth.
func (f *Fight) TotalEXP() int {
	total := 0
	for _, e := range f.Enemies {
		total += e.Def.EXP
	}
	return total
}

// Victory reports whether the player won.
func (f *Fight) Victory() bool { return f.Phase == CombatVictory }

// Act applies a player action on the player's turn. It reports whether the
// action was taken; a failed escape still costs the turn.
func (f *Fight) Act(p *Player, a Action) bool {
	if f.Phase != CombatPlayerTurn {
		return false
	}

	switch a {
	case ActionAttack:
		living := f.LivingEnemies()
		if len(living) == 0 {
			return false
		}
		_, msg := ResolveAttack(p, living[0], f.rng)
		f.addLog(msg)
		if len(f.LivingEnemies()) == 0 {
			exp := f.TotalEXP()
			p.EXP += exp
			f.addLog(fmt.Sprintf("Victory! %s gains %d EXP.", p.Name, exp))
			f.end(CombatVictory)
			return true
		}
	case ActionDefend:
		f.addLog(ResolveDefend(p))
	case ActionFlee:
		ok, msg := ResolveFlee(p, f.Encounter.CanEscape)
		f.addLog(msg)
		if ok {
			f.end(CombatFled)
			return true
		}
	default:
		return false
	}

	f.startEnemyPhase()
	return true
}

func (f *Fight) startEnemyPhase() {
	f.Phase = CombatEnemyTurn
	f.enemyIndex = 0
	f.enemyTimer = CombatEnemyActDelay
}

func (f *Fight) end(phase CombatPhase) {
	f.Phase = phase
	f.resultTimer = CombatResultDelay
}

// Tick advances enemy turns and the result screen. It returns true exactly
// once, when the result screen has been shown long enough.
func (f *Fight) Tick(p *Player) bool {
	switch {
	case f.Phase == CombatEnemyTurn:
		f.enemyTimer--
		if f.enemyTimer > 0 {
			return false
		}
		for f.enemyIndex < len(f.Enemies) && !f.Enemies[f.enemyIndex].Alive() {
			f.enemyIndex++
		}
		if f.enemyIndex >= len(f.Enemies) {
			f.Round++
			f.Phase = CombatPlayerTurn
			p.Defending = false
			return false
		}
		_, msg := ResolveEnemyAttack(f.Enemies[f.enemyIndex], p, f.rng)
		f.addLog(msg)
		f.enemyIndex++
		f.enemyTimer = CombatEnemyActDelay
		if p.HP == 0 {
			f.end(CombatDefeat)
		}
	case f.Phase.Over() && !f.reported:
		f.resultTimer--
		if f.resultTimer <= 0 {
			f.reported = true
			return true
		}
	}
	return false
}

// CombatSnapshot is a read-only view of a fight for rendering.
type CombatSnapshot struct {
	Phase     CombatPhase
	Round     int
	Enemies   []EnemySnapshot
	Log       []string
	CanEscape bool
	IsBoss    bool
}

// EnemySnapshot is a read-only view of an enemy.
type EnemySnapshot struct {
	Label string
	HP    int
	MaxHP int
	Alive bool
}

// Snapshot copies the fight for rendering.
func (f *Fight) Snapshot() *CombatSnapshot {
	enemies := make([]EnemySnapshot, len(f.Enemies))
	for i, e := range f.Enemies {
		enemies[i] = EnemySnapshot{Label: e.Label, HP: e.HP, MaxHP: e.Def.MaxHP, Alive: e.Alive()}
	}
	logCopy := make([]string, len(f.Log))
	copy(logCopy, f.Log)
	return &CombatSnapshot{
		Phase:     f.Phase,
		Round:     f.Round,
		Enemies:   enemies,
		Log:       logCopy,
		CanEscape: f.Encounter.CanEscape,
		IsBoss:    f.Encounter.IsBoss,
	}
}
