package audio

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

// Player mixes generated effects into one stream. Without a speaker the
// stream is never drained; Stream can be pulled directly instead.
type Player struct {
	mu      sync.Mutex
	mixer   *beep.Mixer
	volume  float64
	enabled bool
	played  map[Sound]int
	log     *slog.Logger
}

// NewPlayer returns an enabled player at the given master volume.
func NewPlayer(volume float64, log *slog.Logger) *Player {
	if log == nil {
		log = slog.Default()
	}
	return &Player{
		mixer:   &beep.Mixer{},
		volume:  volume,
		enabled: true,
		played:  make(map[Sound]int),
		log:     log.With("component", "audio"),
	}
}

// SetEnabled mutes or unmutes new sounds. Sounds already queued keep playing.
func (p *Player) SetEnabled(enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.enabled = enabled
}

// Play queues a fresh instance of s.
func (p *Player) Play(s Sound) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.enabled {
		return
	}
	effect := Effect(s)
	if effect == nil {
		p.log.Warn("unknown sound", "sound", int(s))
		return
	}
	p.mixer.Add(withVolume(effect, p.volume))
	p.played[s]++
}

// PlayEncounterSound queues the battle sting.
func (p *Player) PlayEncounterSound() { p.Play(SoundEncounter) }

// Playing returns the number of sounds still queued in the mixer.
func (p *Player) Playing() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mixer.Len()
}

// Played returns how many times s has been queued.
func (p *Player) Played(s Sound) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.played[s]
}

// Stream drains the mixer, padding with silence so the speaker never drops it.
func (p *Player) Stream(samples [][2]float64) (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0
	if p.mixer.Len() > 0 {
		n, _ = p.mixer.Stream(samples)
	}
	for i := n; i < len(samples); i++ {
		samples[i] = [2]float64{}
	}
	return len(samples), true
}

func (p *Player) Err() error { return nil }

// StartSpeaker opens the default output device and starts streaming the mixer.
func (p *Player) StartSpeaker() error {
	if err := speaker.Init(SampleRate, SampleRate.N(100*time.Millisecond)); err != nil {
		return err
	}
	speaker.Play(p)
	p.log.Info("audio output started", "sample_rate", int(SampleRate))
	return nil
}

// Close stops everything queued.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mixer.Clear()
}
