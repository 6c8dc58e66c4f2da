package encounter

// Data is the snapshot handed from a zone to the manager and on to the battle scene.
// It holds copies only and never refers back to the zone that produced it.
type Data struct {
	ID          string
	Zone        string
	Enemies     []string
	IsBoss      bool
	CanEscape   bool
	BattleScene string
	Music       string
	Background  string
	Tint        string
}

// EnemyIDs returns a copy of the resolved party.
func (d Data) EnemyIDs() []string {
	return append([]string(nil), d.Enemies...)
}

// Empty reports whether the party has no enemies.
func (d Data) Empty() bool {
	return len(d.Enemies) == 0
}
