package ambient

// Kind is a weather condition.
type Kind int

const (
	Clear Kind = iota
	Rain
	Storm
	Fog
)

func (k Kind) String() string {
	switch k {
	case Rain:
		return "rain"
	case Storm:
		return "storm"
	case Fog:
		return "fog"
	default:
		return "clear"
	}
}

// Source is the randomness the weather draws from.
type Source interface {
	IntN(n int) int
	Float64() float64
}

// WeatherConfig bounds how long a condition lasts, in ticks.
type WeatherConfig struct {
	MinTicks int
	MaxTicks int
}

// DefaultWeatherConfig lasts 15 to 45 seconds at 20 ticks per second.
func DefaultWeatherConfig() WeatherConfig {
	return WeatherConfig{MinTicks: 300, MaxTicks: 900}
}

// Weather cycles randomly between conditions, never repeating the current one.
type Weather struct {
	cfg       WeatherConfig
	rng       Source
	current   Kind
	remaining int
	onChange  func(from, to Kind)
}

// NewWeather starts clear.
func NewWeather(cfg WeatherConfig, rng Source) *Weather {
	if cfg.MinTicks < 1 {
		cfg.MinTicks = 1
	}
	if cfg.MaxTicks < cfg.MinTicks {
		cfg.MaxTicks = cfg.MinTicks
	}
	w := &Weather{cfg: cfg, rng: rng, current: Clear}
	w.remaining = w.duration()
	return w
}

// OnChange registers fn to run after every change.
func (w *Weather) OnChange(fn func(from, to Kind)) { w.onChange = fn }

// Current returns the active condition.
func (w *Weather) Current() Kind { return w.current }

// Remaining returns the ticks left before the next change.
func (w *Weather) Remaining() int { return w.remaining }

// Tick counts down and rolls a new condition when the current one expires.
func (w *Weather) Tick() {
	w.remaining--
	if w.remaining > 0 {
		return
	}
	w.Set(w.roll())
}

// Set forces a condition and restarts its duration.
func (w *Weather) Set(k Kind) {
	from := w.current
	w.current = k
	w.remaining = w.duration()
	if from != k && w.onChange != nil {
		w.onChange(from, k)
	}
}

func (w *Weather) roll() Kind {
	next := w.current
	for i := 0; next == w.current && i < 16; i++ {
		r := w.rng.Float64()
		switch {
		case r < 0.55:
			next = Clear
		case r < 0.8:
			next = Rain
		case r < 0.9:
			next = Storm
		default:
			next = Fog
		}
	}
	if next == w.current {
		next = (w.current + 1) % (Fog + 1)
	}
	return next
}

func (w *Weather) duration() int {
	span := w.cfg.MaxTicks - w.cfg.MinTicks
	if span <= 0 {
		return w.cfg.MinTicks
	}
	return w.cfg.MinTicks + w.rng.IntN(span+1)
}
