package ambient

import "time"

// DayPhase is a coarse time of day.
type DayPhase int

const (
	Night DayPhase = iota
	Dawn
	Day
	Dusk
)

func (p DayPhase) String() string {
	switch p {
	case Dawn:
		return "dawn"
	case Day:
		return "day"
	case Dusk:
		return "dusk"
	default:
		return "night"
	}
}

// Fractions of the day where each phase starts.
const (
	dawnStart  = 0.20
	dayStart   = 0.30
	duskStart  = 0.70
	nightStart = 0.80
)

// Tint is a per-channel color multiplier.
type Tint struct {
	R, G, B float64
}

var (
	dayTint   = Tint{R: 1, G: 1, B: 1}
	nightTint = Tint{R: 0.45, G: 0.5, B: 0.8}
	duskTint  = Tint{R: 1, G: 0.7, B: 0.55}
)

// Apply scales an 8-bit color by the tint.
func (t Tint) Apply(r, g, b uint8) (uint8, uint8, uint8) {
	return scale(r, t.R), scale(g, t.G), scale(b, t.B)
}

func scale(c uint8, f float64) uint8 {
	v := float64(c) * f
	if v > 255 {
		return 255
	}
	if v < 0 {
		return 0
	}
	return uint8(v + 0.5)
}

func lerp(a, b Tint, t float64) Tint {
	return Tint{
		R: a.R + (b.R-a.R)*t,
		G: a.G + (b.G-a.G)*t,
		B: a.B + (b.B-a.B)*t,
	}
}

// Clock tracks the time of day in game ticks.
type Clock struct {
	dayTicks int
	tick     int
	phase    DayPhase
}

// NewClock returns a clock whose day lasts dayLength at tps ticks per second,
// starting at the given fraction of the day.
func NewClock(dayLength time.Duration, tps int, start float64) *Clock {
	dayTicks := int(dayLength.Seconds() * float64(tps))
	if dayTicks < 1 {
		dayTicks = 1
	}
	c := &Clock{dayTicks: dayTicks}
	c.tick = int(wrapUnit(start) * float64(dayTicks))
	c.phase = phaseAt(c.TimeOfDay())
	return c
}

// Tick advances the clock one tick and reports whether the phase changed.
func (c *Clock) Tick() (from, to DayPhase, changed bool) {
	c.tick = (c.tick + 1) % c.dayTicks
	next := phaseAt(c.TimeOfDay())
	if next == c.phase {
		return c.phase, c.phase, false
	}
	from, c.phase = c.phase, next
	return from, next, true
}

// TimeOfDay returns the fraction of the day elapsed, in [0,1).
func (c *Clock) TimeOfDay() float64 {
	return float64(c.tick) / float64(c.dayTicks)
}

// Phase returns the current day phase.
func (c *Clock) Phase() DayPhase { return c.phase }

// Tint returns the light multiplier for the current time of day.
func (c *Clock) Tint() Tint {
	return tintAt(c.TimeOfDay())
}

func phaseAt(t float64) DayPhase {
	switch {
	case t >= dawnStart && t < dayStart:
		return Dawn
	case t >= dayStart && t < duskStart:
		return Day
	case t >= duskStart && t < nightStart:
		return Dusk
	default:
		return Night
	}
}

func tintAt(t float64) Tint {
	switch phaseAt(t) {
	case Dawn:
		return lerp(nightTint, dayTint, (t-dawnStart)/(dayStart-dawnStart))
	case Day:
		return dayTint
	case Dusk:
		half := (duskStart + nightStart) / 2
		if t < half {
			return lerp(dayTint, duskTint, (t-duskStart)/(half-duskStart))
		}
		return lerp(duskTint, nightTint, (t-half)/(nightStart-half))
	default:
		return nightTint
	}
}

func wrapUnit(v float64) float64 {
	if v < 0 || v >= 1 {
		v -= float64(int(v))
		if v < 0 {
			v++
		}
	}
	return v
}
