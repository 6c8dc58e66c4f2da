package ambient

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClock_PhasesOverADay(t *testing.T) {
	// 100 ticks per day
	c := NewClock(5*time.Second, 20, 0)
	require.Equal(t, Night, c.Phase())

	var changes []DayPhase
	for i := 0; i < 100; i++ {
		if _, to, changed := c.Tick(); changed {
			changes = append(changes, to)
		}
	}
	assert.Equal(t, []DayPhase{Dawn, Day, Dusk, Night}, changes)
	assert.Zero(t, c.TimeOfDay(), "a full day wraps around")
}

func TestClock_StartFraction(t *testing.T) {
	assert.Equal(t, Day, NewClock(time.Minute, 20, 0.5).Phase())
	assert.Equal(t, Dusk, NewClock(time.Minute, 20, 0.75).Phase())
	assert.Equal(t, Day, NewClock(time.Minute, 20, 1.5).Phase())
	assert.Equal(t, Night, NewClock(time.Minute, 20, -0.05).Phase())
}

func TestClock_Tint(t *testing.T) {
	assert.Equal(t, dayTint, NewClock(time.Minute, 20, 0.5).Tint())
	assert.Equal(t, nightTint, NewClock(time.Minute, 20, 0.9).Tint())

	dawn := NewClock(time.Minute, 20, 0.25).Tint()
	assert.Greater(t, dawn.R, nightTint.R)
	assert.Less(t, dawn.R, dayTint.R)
}

func TestTint_Apply(t *testing.T) {
	r, g, b := Tint{R: 0.5, G: 1, B: 2}.Apply(200, 100, 200)
	assert.Equal(t, uint8(100), r)
	assert.Equal(t, uint8(100), g)
	assert.Equal(t, uint8(255), b)
}

type fixedSource struct {
	floats []float64
	n      int
}

func (f *fixedSource) IntN(n int) int { return 0 }

func (f *fixedSource) Float64() float64 {
	v := f.floats[f.n%len(f.floats)]
	f.n++
	return v
}

func TestWeather_ChangesAfterDuration(t *testing.T) {
	src := &fixedSource{floats: []float64{0.6}}
	w := NewWeather(WeatherConfig{MinTicks: 5, MaxTicks: 10}, src)
	require.Equal(t, Clear, w.Current())
	require.Equal(t, 5, w.Remaining())

	var seen [][2]Kind
	w.OnChange(func(from, to Kind) { seen = append(seen, [2]Kind{from, to}) })

	for i := 0; i < 4; i++ {
		w.Tick()
	}
	assert.Equal(t, Clear, w.Current())
	w.Tick()
	assert.Equal(t, Rain, w.Current())
	assert.Equal(t, [][2]Kind{{Clear, Rain}}, seen)
}

func TestWeather_NeverRepeats(t *testing.T) {
	// every roll lands on clear; the fallback still moves on
	src := &fixedSource{floats: []float64{0.1}}
	w := NewWeather(WeatherConfig{MinTicks: 1, MaxTicks: 1}, src)
	w.Tick()
	assert.Equal(t, Rain, w.Current())
}

func TestWeather_RandomWalk(t *testing.T) {
	w := NewWeather(DefaultWeatherConfig(), rand.New(rand.NewPCG(7, 7)))
	changes := 0
	w.OnChange(func(from, to Kind) {
		assert.NotEqual(t, from, to)
		changes++
	})
	for i := 0; i < 20*60*10; i++ {
		w.Tick()
		require.GreaterOrEqual(t, w.Remaining(), 0)
		require.LessOrEqual(t, w.Remaining(), 900)
	}
	assert.Greater(t, changes, 10)
}

func TestWeather_SetSameKindIsSilent(t *testing.T) {
	w := NewWeather(WeatherConfig{MinTicks: 3, MaxTicks: 3}, &fixedSource{floats: []float64{0}})
	called := false
	w.OnChange(func(Kind, Kind) { called = true })
	w.Set(Clear)
	assert.False(t, called)
	w.Set(Fog)
	assert.True(t, called)
	assert.Equal(t, "fog", w.Current().String())
}
