package audio

import (
	"testing"
	"time"

	"github.com/gopxl/beep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wildstep/internal/logger"
)

const bufSize = 512

// drain streams s to the end and returns the sample count and peak amplitude.
func drain(t *testing.T, s beep.Streamer) (int, float64) {
	t.Helper()
	buf := make([][2]float64, bufSize)
	total, peak := 0, 0.0
	for i := 0; i < 10000; i++ {
		n, ok := s.Stream(buf)
		for _, smp := range buf[:n] {
			if a := abs(smp[0]); a > peak {
				peak = a
			}
		}
		total += n
		if !ok {
			return total, peak
		}
	}
	require.Fail(t, "stream never ended")
	return total, peak
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func TestOscillator_Range(t *testing.T) {
	for _, wave := range []Wave{WaveSine, WaveSquare, WaveTriangle, WaveNoise} {
		osc := NewOscillator(440, 50*time.Millisecond, wave, SampleRate)
		total, peak := drain(t, osc)
		assert.Equal(t, SampleRate.N(50*time.Millisecond), total, "wave %d", wave)
		assert.LessOrEqual(t, peak, 1.0)
		assert.NoError(t, osc.Err())
	}
}

func TestOscillator_SquareValues(t *testing.T) {
	osc := NewOscillator(220, 10*time.Millisecond, WaveSquare, SampleRate)
	buf := make([][2]float64, 100)
	n, ok := osc.Stream(buf)
	require.True(t, ok)
	for _, smp := range buf[:n] {
		assert.Contains(t, []float64{-1, 1}, smp[0])
		assert.Equal(t, smp[0], smp[1])
	}
}

func TestEnvelope_RampsFromSilence(t *testing.T) {
	d := 20 * time.Millisecond
	env := NewEnvelope(NewOscillator(0, d, WaveSquare, SampleRate), d, 5*time.Millisecond, 5*time.Millisecond, SampleRate)
	buf := make([][2]float64, SampleRate.N(d))
	n, _ := env.Stream(buf)
	require.Equal(t, len(buf), n)

	assert.Zero(t, buf[0][0], "attack starts silent")
	assert.InDelta(t, 1.0, buf[n/2][0], 1e-9, "sustain at full level")
	assert.Less(t, buf[n-1][0], 0.01, "release ends near silence")
}

func TestEffects_EndWithinDuration(t *testing.T) {
	for _, s := range []Sound{SoundEncounter, SoundVictory, SoundDefeat} {
		total, peak := drain(t, Effect(s))
		want := SampleRate.N(Duration(s))
		assert.Greater(t, total, 0, s.String())
		assert.LessOrEqual(t, total, want+bufSize, s.String())
		assert.Greater(t, peak, 0.0, s.String())
	}
	assert.Nil(t, Effect(Sound(42)))
	assert.Zero(t, Duration(Sound(42)))
}

func TestPlayer_QueuesAndDrains(t *testing.T) {
	p := NewPlayer(0.8, logger.Discard())
	p.PlayEncounterSound()
	assert.Equal(t, 1, p.Played(SoundEncounter))
	assert.Equal(t, 1, p.Playing())

	buf := make([][2]float64, bufSize)
	limit := SampleRate.N(Duration(SoundEncounter))/bufSize + 4
	for i := 0; i < limit && p.Playing() > 0; i++ {
		n, ok := p.Stream(buf)
		require.True(t, ok)
		require.Equal(t, bufSize, n)
	}
	assert.Zero(t, p.Playing())

	// an empty player streams silence and stays alive
	n, ok := p.Stream(buf)
	assert.True(t, ok)
	assert.Equal(t, bufSize, n)
	assert.Zero(t, buf[0][0])
}

func TestPlayer_Disabled(t *testing.T) {
	p := NewPlayer(1, logger.Discard())
	p.SetEnabled(false)
	p.PlayEncounterSound()
	assert.Zero(t, p.Playing())
	assert.Zero(t, p.Played(SoundEncounter))

	p.SetEnabled(true)
	p.Play(SoundVictory)
	p.Play(Sound(42))
	assert.Equal(t, 1, p.Playing())

	p.Close()
	assert.Zero(t, p.Playing())
}
