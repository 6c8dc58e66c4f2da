package encounter

// Phase is the manager's position in the encounter state machine.
type Phase int

const (
	PhaseIdle      Phase = iota // no active zone
	PhaseTracking               // zone active, counting steps
	PhaseFadeIn                 // flash ramping up
	PhaseHold                   // flash fully on
	PhaseFadeOut                // flash ramping down
	PhaseInBattle               // battle scene owns the player
	PhaseReturning              // waiting for the overworld scene to become active
	PhaseSettling               // one frame after the overworld is back
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseTracking:
		return "tracking"
	case PhaseFadeIn:
		return "fade_in"
	case PhaseHold:
		return "hold"
	case PhaseFadeOut:
		return "fade_out"
	case PhaseInBattle:
		return "in_battle"
	case PhaseReturning:
		return "returning"
	case PhaseSettling:
		return "settling"
	default:
		return "unknown"
	}
}

// Transitioning reports whether the flash sequence is running.
func (p Phase) Transitioning() bool {
	return p == PhaseFadeIn || p == PhaseHold || p == PhaseFadeOut
}

// FlashTiming splits a flash of total ticks into fade-in (30%), hold (20%)
// and fade-out (the remaining 50%).
type FlashTiming struct {
	FadeIn  int
	Hold    int
	FadeOut int
}

// NewFlashTiming computes the split for a flash lasting total ticks.
// Fade-in and fade-out always get at least one tick.
func NewFlashTiming(total int) FlashTiming {
	if total < 2 {
		total = 2
	}
	fadeIn := total * 3 / 10
	if fadeIn < 1 {
		fadeIn = 1
	}
	hold := total * 2 / 10
	fadeOut := total - fadeIn - hold
	if fadeOut < 1 {
		fadeOut = 1
		hold = total - fadeIn - fadeOut
	}
	return FlashTiming{FadeIn: fadeIn, Hold: hold, FadeOut: fadeOut}
}

// Total returns the flash length in ticks.
func (t FlashTiming) Total() int {
	return t.FadeIn + t.Hold + t.FadeOut
}

// level returns the flash opacity in [0,1] for a phase and ticks spent in it.
func (t FlashTiming) level(p Phase, elapsed int) float64 {
	switch p {
	case PhaseFadeIn:
		return clampUnit(float64(elapsed) / float64(t.FadeIn))
	case PhaseHold:
		return 1
	case PhaseFadeOut:
		return clampUnit(1 - float64(elapsed)/float64(t.FadeOut))
	default:
		return 0
	}
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
