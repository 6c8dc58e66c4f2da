package game

import "time"

const TickRate = 20 // ticks per second

// SecsToTicks converts seconds to game ticks, never less than one.
func SecsToTicks(s float64) int {
	t := int(s * TickRate)
	if t < 1 {
		t = 1
	}
	return t
}

// DurationToTicks converts a duration to game ticks, never less than one.
func DurationToTicks(d time.Duration) int {
	return SecsToTicks(d.Seconds())
}

// Timing constants, in ticks.
var (
	CombatEnemyActDelay = SecsToTicks(0.8)  // pause between enemy actions
	CombatResultDelay   = SecsToTicks(2.0)  // victory/defeat screen before returning
	SceneLoadTicks      = 2                 // ticks a restored overworld takes to become active
)
