package audio

import (
	"time"

	"github.com/gopxl/beep"
)

// SampleRate is the rate all generated sounds use.
const SampleRate = beep.SampleRate(44100)

// Sound identifies a generated effect.
type Sound int

const (
	SoundEncounter Sound = iota
	SoundVictory
	SoundDefeat
)

func (s Sound) String() string {
	switch s {
	case SoundEncounter:
		return "encounter"
	case SoundVictory:
		return "victory"
	case SoundDefeat:
		return "defeat"
	default:
		return "unknown"
	}
}

type note struct {
	freq float64
	dur  time.Duration
}

const (
	noteAttack  = 5 * time.Millisecond
	noteRelease = 30 * time.Millisecond
)

// the battle sting climbs a diminished arpeggio over a noise swell
var (
	encounterNotes = []note{
		{freq: 523.25, dur: 70 * time.Millisecond},
		{freq: 622.25, dur: 70 * time.Millisecond},
		{freq: 739.99, dur: 70 * time.Millisecond},
		{freq: 1046.50, dur: 70 * time.Millisecond},
		{freq: 1046.50, dur: 220 * time.Millisecond},
	}
	victoryNotes = []note{
		{freq: 659.25, dur: 90 * time.Millisecond},
		{freq: 783.99, dur: 90 * time.Millisecond},
		{freq: 1046.50, dur: 260 * time.Millisecond},
	}
	defeatNotes = []note{
		{freq: 392.00, dur: 160 * time.Millisecond},
		{freq: 349.23, dur: 160 * time.Millisecond},
		{freq: 261.63, dur: 360 * time.Millisecond},
	}
)

func melody(notes []note, wave Wave) beep.Streamer {
	parts := make([]beep.Streamer, 0, len(notes))
	for _, n := range notes {
		osc := NewOscillator(n.freq, n.dur, wave, SampleRate)
		parts = append(parts, NewEnvelope(osc, n.dur, noteAttack, noteRelease, SampleRate))
	}
	return beep.Seq(parts...)
}

func length(notes []note) time.Duration {
	var d time.Duration
	for _, n := range notes {
		d += n.dur
	}
	return d
}

// EncounterSting is the sound played as the battle flash begins.
func EncounterSting() beep.Streamer {
	d := length(encounterNotes)
	swell := NewEnvelope(NewOscillator(0, d, WaveNoise, SampleRate), d, d/2, d/4, SampleRate)
	return beep.Mix(
		withVolume(melody(encounterNotes, WaveSquare), 0.6),
		withVolume(swell, 0.15),
	)
}

// Duration returns how long a generated sound plays.
func Duration(s Sound) time.Duration {
	switch s {
	case SoundEncounter:
		return length(encounterNotes)
	case SoundVictory:
		return length(victoryNotes)
	case SoundDefeat:
		return length(defeatNotes)
	default:
		return 0
	}
}

// Effect builds a fresh streamer for s, or nil for an unknown sound.
func Effect(s Sound) beep.Streamer {
	switch s {
	case SoundEncounter:
		return EncounterSting()
	case SoundVictory:
		return withVolume(melody(victoryNotes, WaveTriangle), 0.7)
	case SoundDefeat:
		return withVolume(melody(defeatNotes, WaveSine), 0.7)
	default:
		return nil
	}
}
