package game

// Action is a player input.
type Action int

const (
	ActionNone Action = iota
	ActionUp
	ActionDown
	ActionLeft
	ActionRight
	ActionQuit
	ActionAttack
	ActionDefend
	ActionFlee
	ActionToggleRepel
	ActionToggleLure
)

// InputEvent carries a player action into the game loop.
type InputEvent struct {
	PlayerID string
	Action   Action
}

// Base player stats.
const (
	BaseMaxHP     = 30
	BaseAttack    = 6
	BaseDefense   = 2
	ExpPerLevel   = 50
	numPlayerTint = 6
)

// Player is the game state of a connected player.
type Player struct {
	ID      string
	Name    string
	MapName string
	X, Y    int
	Color   int

	HP, MaxHP int
	Attack    int
	Defense   int
	EXP       int
	Defending bool
}

func newPlayer(id, name, mapName string, x, y, color int) *Player {
	return &Player{
		ID:      id,
		Name:    name,
		MapName: mapName,
		X:       x,
		Y:       y,
		Color:   color,
		HP:      BaseMaxHP,
		MaxHP:   BaseMaxHP,
		Attack:  BaseAttack,
		Defense: BaseDefense,
	}
}

// Level derives the player level from experience.
func (p *Player) Level() int {
	return 1 + p.EXP/ExpPerLevel
}

// Heal restores full HP.
func (p *Player) Heal() {
	p.HP = p.MaxHP
}

// PlayerSnapshot is a read-only copy of a player for rendering.
type PlayerSnapshot struct {
	ID        string
	Name      string
	MapName   string
	X, Y      int
	Color     int
	HP, MaxHP int
	EXP       int
	Level     int
	InBattle  bool
}

// Snapshot copies the player.
func (p *Player) Snapshot() PlayerSnapshot {
	return PlayerSnapshot{
		ID:      p.ID,
		Name:    p.Name,
		MapName: p.MapName,
		X:       p.X,
		Y:       p.Y,
		Color:   p.Color,
		HP:      p.HP,
		MaxHP:   p.MaxHP,
		EXP:     p.EXP,
		Level:   p.Level(),
	}
}
