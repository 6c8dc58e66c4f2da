package render

import "wildstep/internal/ambient"

const (
	zoneTintStrength = 0.18
	fogStrength      = 0.35
	rainDensity      = 23 // one drop per this many cells
	stormDensity     = 11
)

// applyZoneTint washes the world rows' backgrounds toward the zone color.
func (e *Engine) applyZoneTint(rows int, hex string) {
	r, g, b, ok := ParseHexColor(hex)
	if !ok {
		return
	}
	for y := 0; y < rows; y++ {
		for x := 0; x < e.width; x++ {
			c := &e.next[y][x]
			c.BgR = blend(c.BgR, r, zoneTintStrength)
			c.BgG = blend(c.BgG, g, zoneTintStrength)
			c.BgB = blend(c.BgB, b, zoneTintStrength)
		}
	}
}

// applyWeather draws falling drops for rain and storms and greys out fog.
// Storms flash for two ticks out of every 97.
func (e *Engine) applyWeather(rows int, kind ambient.Kind, tick uint64) {
	switch kind {
	case ambient.Rain, ambient.Storm:
		density := uint32(rainDensity)
		if kind == ambient.Storm {
			density = stormDensity
		}
		for y := 0; y < rows; y++ {
			for x := 0; x < e.width; x++ {
				if cellNoise(x, y-int(tick), 0)%density != 0 {
					continue
				}
				c := &e.next[y][x]
				c.Ch = '╱'
				c.FgR, c.FgG, c.FgB = 120, 150, 220
				c.Bold = false
			}
		}
		if kind == ambient.Storm && tick%97 < 2 {
			e.washRows(rows, 230, 230, 255, 0.5)
		}
	case ambient.Fog:
		e.washRows(rows, 140, 140, 150, fogStrength)
	}
}

func (e *Engine) washRows(rows int, r, g, b uint8, t float64) {
	for y := 0; y < rows; y++ {
		for x := 0; x < e.width; x++ {
			c := &e.next[y][x]
			c.FgR, c.FgG, c.FgB = blend(c.FgR, r, t), blend(c.FgG, g, t), blend(c.FgB, b, t)
			c.BgR, c.BgG, c.BgB = blend(c.BgR, r, t), blend(c.BgG, g, t), blend(c.BgB, b, t)
		}
	}
}

// applyLight multiplies the world rows by the time-of-day tint. A zero tint
// means no clock is running and leaves colors alone.
func (e *Engine) applyLight(rows int, light ambient.Tint) {
	if light == (ambient.Tint{}) {
		return
	}
	for y := 0; y < rows; y++ {
		for x := 0; x < e.width; x++ {
			c := &e.next[y][x]
			c.FgR, c.FgG, c.FgB = light.Apply(c.FgR, c.FgG, c.FgB)
			c.BgR, c.BgG, c.BgB = light.Apply(c.BgR, c.BgG, c.BgB)
		}
	}
}

// applyFlash fades the world rows to white by level.
func (e *Engine) applyFlash(rows int, level float64) {
	if level <= 0 {
		return
	}
	e.washRows(rows, 255, 255, 255, min(level, 1))
}

func cellNoise(x, y int, seed uint32) uint32 {
	h := uint32(x)*73856093 ^ uint32(y)*19349663 ^ seed*83492791
	h ^= h >> 13
	h *= 0x5bd1e995
	h ^= h >> 15
	return h
}
