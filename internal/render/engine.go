package render

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"wildstep/internal/ambient"
	"wildstep/internal/maps"
)

const HUDRows = 4

// Cell represents a single terminal cell with full RGB color.
type Cell struct {
	Ch            rune
	FgR, FgG, FgB uint8
	BgR, BgG, BgB uint8
	Bold          bool
}

var sentinel = Cell{Ch: '\x00', FgR: 255, BgB: 255, Bold: true}

// PlayerInfo is the minimal player data the renderer needs.
type PlayerInfo struct {
	ID       string
	Name     string
	X, Y     int
	Color    int // index into PlayerBGColors
	InBattle bool
}

// HUDInfo is what the bottom rows show about the viewer.
type HUDInfo struct {
	Name      string
	Color     int
	HP, MaxHP int
	Level     int
	EXP       int // progress into the current level
	EXPNeeded int

	Zone    string // empty outside encounter zones
	Steps   int
	Repel   bool
	Lure    bool
	Enabled bool
}

// Frame is everything one session needs to draw a tick.
type Frame struct {
	ViewerID string
	Map      *maps.Map
	Players  []PlayerInfo
	Tick     uint64
	Online   int
	HUD      HUDInfo

	Flash    float64 // encounter flash opacity in [0,1]
	ZoneTint string  // hex color of the viewer's zone, may be empty
	Light    ambient.Tint
	DayPhase ambient.DayPhase
	Weather  ambient.Kind

	Combat *CombatRenderData
}

// Engine is a per-session double-buffer diff renderer.
type Engine struct {
	width, height int
	current       [][]Cell
	next          [][]Cell
	firstFrame    bool
	lastInCombat  bool
}

// NewEngine creates a renderer for the given terminal dimensions.
func NewEngine(width, height int) *Engine {
	e := &Engine{}
	e.Resize(width, height)
	return e
}

// Resize adjusts the renderer for a new terminal size.
func (e *Engine) Resize(width, height int) {
	e.width = max(width, 0)
	e.height = max(height, 0)
	e.current = e.makeBuffer(sentinel)
	e.next = e.makeBuffer(Cell{})
	e.firstFrame = true
}

func (e *Engine) makeBuffer(fill Cell) [][]Cell {
	buf := make([][]Cell, e.height)
	for y := range buf {
		buf[y] = make([]Cell, e.width)
		for x := range buf[y] {
			buf[y][x] = fill
		}
	}
	return buf
}

// Render produces the ANSI byte output for the frame.
func (e *Engine) Render(f Frame, termW, termH int) string {
	if termW != e.width || termH != e.height {
		e.Resize(termW, termH)
	}

	inCombat := f.Combat != nil
	if inCombat != e.lastInCombat {
		e.firstFrame = true
		e.lastInCombat = inCombat
	}

	if inCombat {
		e.renderCombatView(f)
	} else {
		e.renderOverworld(f)
	}
	return e.emitDiff()
}

func (e *Engine) fill(c Cell) {
	for y := range e.next {
		for x := range e.next[y] {
			e.next[y][x] = c
		}
	}
}

func (e *Engine) set(x, y int, c Cell) {
	if x >= 0 && x < e.width && y >= 0 && y < e.height {
		e.next[y][x] = c
	}
}

func (e *Engine) renderOverworld(f Frame) {
	e.fill(Cell{Ch: ' ', BgR: 10, BgG: 10, BgB: 15})
	if f.Map == nil {
		e.drawCenteredText(e.height/2, "loading...", 160, 160, 175, 10, 10, 15, false)
		e.drawHUD(f)
		return
	}

	var self PlayerInfo
	for _, p := range f.Players {
		if p.ID == f.ViewerID {
			self = p
			break
		}
	}
	vp := NewViewport(self.X, self.Y, e.width, e.height, f.Map.Width, f.Map.Height, HUDRows)

	for ty := 0; ty < vp.ViewH; ty++ {
		for tx := 0; tx < vp.ViewW; tx++ {
			wx, wy := vp.CamX+tx, vp.CamY+ty
			if !f.Map.InBounds(wx, wy) {
				continue
			}
			c := tileCell(f.Map.TileAt(wx, wy))
			for i := 0; i < TileWidth; i++ {
				e.set(tx*TileWidth+i, ty, c)
			}
		}
	}

	for _, p := range f.Players {
		sx, sy := vp.WorldToScreen(p.X, p.Y)
		if sx < 0 {
			continue
		}
		e.drawPlayer(sx, sy, p, p.ID == f.ViewerID)
	}

	worldH := min(vp.ViewH, e.height)
	e.applyZoneTint(worldH, f.ZoneTint)
	e.applyWeather(worldH, f.Weather, f.Tick)
	e.applyLight(worldH, f.Light)
	e.applyFlash(worldH, f.Flash)

	e.drawHUD(f)
}

func tileCell(t maps.Tile) Cell {
	fr, fg, fb := AnsiToRGB(t.Fg)
	c := Cell{Ch: t.Char, FgR: fr, FgG: fg, FgB: fb, BgR: 10, BgG: 10, BgB: 15}
	if t.Bg != 0 {
		br, bg, bb := AnsiToRGB(t.Bg)
		c.BgR, c.BgG, c.BgB = br/3, bg/3, bb/3
	}
	return c
}

func (e *Engine) drawPlayer(sx, sy int, p PlayerInfo, isSelf bool) {
	r, g, b := playerColor(p.Color)
	glyph := '@'
	if p.InBattle {
		glyph = '!'
	}
	e.set(sx, sy, Cell{Ch: glyph, FgR: 255, FgG: 255, FgB: 255, BgR: r, BgG: g, BgB: b, Bold: isSelf})

	initial := ' '
	if rs := []rune(p.Name); len(rs) > 0 {
		initial = rs[0]
	}
	e.set(sx+1, sy, Cell{Ch: initial, FgR: 255, FgG: 255, FgB: 255, BgR: r, BgG: g, BgB: b})
}

// --- HUD ---

func (e *Engine) drawHUD(f Frame) {
	hudY := e.height - HUDRows
	if hudY < 0 {
		return
	}
	h := f.HUD

	splitCol := e.width / 2
	bgR, bgG, bgB := uint8(15), uint8(18), uint8(30)

	for x := 0; x < e.width; x++ {
		t := uint8(60 - x*40/max(e.width, 1))
		e.next[hudY][x] = Cell{
			Ch: '━', FgR: 40 + t, FgG: 70 + t, FgB: 90 + t,
			BgR: bgR, BgG: bgG, BgB: bgB,
		}
	}
	for row := 1; row < HUDRows; row++ {
		y := hudY + row
		for x := 0; x < e.width; x++ {
			e.next[y][x] = Cell{Ch: ' ', BgR: bgR, BgG: bgG, BgB: bgB}
		}
		if splitCol > 0 && splitCol < e.width {
			e.next[y][splitCol] = Cell{Ch: '│', FgR: 50, FgG: 60, FgB: 80, BgR: bgR, BgG: bgG, BgB: bgB}
		}
	}

	pR, pG, pB := playerColor(h.Color)
	pR = pR + (255-pR)/3
	pG = pG + (255-pG)/3
	pB = pB + (255-pB)/3

	mapName := ""
	if f.Map != nil {
		mapName = f.Map.Name
	}

	// Row 1: name, map, online count
	row1 := hudY + 1
	col := e.writeText(row1, 1, splitCol, h.Name, pR, pG, pB, bgR, bgG, bgB, true)
	col = e.writeText(row1, col, splitCol, "  │  ", 60, 65, 85, bgR, bgG, bgB, false)
	col = e.writeText(row1, col, splitCol, mapName, 180, 180, 195, bgR, bgG, bgB, false)
	col = e.writeText(row1, col, splitCol, "  │  ", 60, 65, 85, bgR, bgG, bgB, false)
	e.writeText(row1, col, splitCol, fmt.Sprintf("%d Online", f.Online), 180, 180, 195, bgR, bgG, bgB, false)

	// Row 2: level and EXP
	row2 := hudY + 2
	col = e.writeText(row2, 1, splitCol, fmt.Sprintf("Lv %d", h.Level), 100, 220, 220, bgR, bgG, bgB, true)
	col += 2
	expNums := fmt.Sprintf("%d/%d", h.EXP, h.EXPNeeded)
	expBarWidth := max(splitCol-col-len("EXP")-2-len(expNums), 4)
	e.drawStatBar(row2, col, "EXP", h.EXP, h.EXPNeeded, expBarWidth,
		60, 200, 180, 50, 190, 160, bgR, bgG, bgB)

	// Row 3: controls
	row3 := hudY + 3
	e.writeText(row3, 1, splitCol, "WASD Move  R Repel  L Lure  Q Quit", 130, 130, 145, bgR, bgG, bgB, false)

	// Right column: health, zone, sky
	rightStart := splitCol + 2
	hpNums := fmt.Sprintf("%d/%d", h.HP, h.MaxHP)
	barWidth := max((e.width-rightStart)-9-len(hpNums), 4)
	hpFillR, hpFillG, hpFillB := hpBarColor(h.HP, h.MaxHP)
	e.drawStatBar(row1, rightStart, "Health ", h.HP, h.MaxHP, barWidth,
		255, 80, 80, hpFillR, hpFillG, hpFillB, bgR, bgG, bgB)

	zone := "no zone"
	if h.Zone != "" {
		zone = fmt.Sprintf("%s · %d steps", h.Zone, h.Steps)
	}
	col = e.writeText(row2, rightStart, e.width, zone, 180, 200, 160, bgR, bgG, bgB, false)
	if !h.Enabled {
		col = e.writeText(row2, col+2, e.width, "OFF", 150, 150, 160, bgR, bgG, bgB, true)
	}
	if h.Repel {
		col = e.writeText(row2, col+2, e.width, "REPEL", 120, 180, 255, bgR, bgG, bgB, true)
	}
	if h.Lure {
		e.writeText(row2, col+2, e.width, "LURE", 255, 150, 90, bgR, bgG, bgB, true)
	}

	sky := titleWord(f.DayPhase.String()) + " · " + titleWord(f.Weather.String())
	e.writeText(row3, rightStart, e.width, sky, 170, 170, 200, bgR, bgG, bgB, false)
}

// titleWord capitalizes a label. Casers are not safe for concurrent use and
// every session renders on its own goroutine, so each call gets a fresh one.
func titleWord(s string) string {
	return cases.Title(language.English).String(s)
}

// hpBarColor returns the fill color for an HP bar based on current/max ratio.
func hpBarColor(current, maxHP int) (uint8, uint8, uint8) {
	if maxHP <= 0 {
		return 80, 80, 90
	}
	ratio := float64(current) / float64(maxHP)
	if ratio > 0.5 {
		return 70, 210, 70
	} else if ratio > 0.25 {
		return 220, 200, 40
	}
	return 220, 60, 40
}

// drawStatBar draws a labeled stat bar with fill. Returns columns consumed.
func (e *Engine) drawStatBar(row, col int, label string, current, maximum, barWidth int,
	labelR, labelG, labelB, fillR, fillG, fillB, bgR, bgG, bgB uint8) int {
	startCol := col

	for _, r := range label {
		e.set(col, row, Cell{Ch: r, FgR: labelR, FgG: labelG, FgB: labelB,
			BgR: bgR, BgG: bgG, BgB: bgB, Bold: true})
		col++
	}
	col++

	filled := 0
	if maximum > 0 {
		filled = min(max(barWidth*current/maximum, 0), barWidth)
	}
	for i := 0; i < barWidth; i++ {
		if i < filled {
			e.set(col+i, row, Cell{Ch: '█', FgR: fillR, FgG: fillG, FgB: fillB,
				BgR: bgR, BgG: bgG, BgB: bgB})
		} else {
			e.set(col+i, row, Cell{Ch: '░', FgR: 45, FgG: 45, FgB: 55,
				BgR: bgR, BgG: bgG, BgB: bgB})
		}
	}
	col += barWidth + 1

	for _, r := range fmt.Sprintf("%d/%d", current, maximum) {
		e.set(col, row, Cell{Ch: r, FgR: 180, FgG: 180, FgB: 195,
			BgR: bgR, BgG: bgG, BgB: bgB})
		col++
	}

	return col - startCol
}

// writeText writes colored text into a bounded region [col, maxCol). Returns the next column position.
func (e *Engine) writeText(row, col, maxCol int, text string, fgR, fgG, fgB, bgR, bgG, bgB uint8, bold bool) int {
	for _, r := range text {
		if col >= maxCol || col >= e.width {
			break
		}
		if col >= 0 {
			e.set(col, row, Cell{Ch: r, FgR: fgR, FgG: fgG, FgB: fgB, BgR: bgR, BgG: bgG, BgB: bgB, Bold: bold})
		}
		col++
	}
	return col
}

// drawCenteredText draws text centered on the given row.
func (e *Engine) drawCenteredText(row int, text string, fgR, fgG, fgB, bgR, bgG, bgB uint8, bold bool) {
	runes := []rune(text)
	cx := (e.width - len(runes)) / 2
	for i, r := range runes {
		e.set(cx+i, row, Cell{Ch: r, FgR: fgR, FgG: fgG, FgB: fgB, BgR: bgR, BgG: bgG, BgB: bgB, Bold: bold})
	}
}

// emitDiff performs the buffer diff and produces ANSI output.
func (e *Engine) emitDiff() string {
	var sb strings.Builder
	sb.Grow(16384)

	lastRow, lastCol := -1, -1
	for y := 0; y < e.height; y++ {
		for x := 0; x < e.width; x++ {
			nc := e.next[y][x]
			if e.firstFrame || nc != e.current[y][x] {
				// Only emit cursor position if not consecutive
				if y != lastRow || x != lastCol {
					sb.WriteString(MoveTo(y+1, x+1))
				}
				WriteCellSGR(&sb, nc)
				lastRow = y
				lastCol = x + 1
			}
		}
	}

	if sb.Len() > 0 {
		sb.WriteString(Reset)
	}

	e.current, e.next = e.next, e.current
	e.firstFrame = false

	return sb.String()
}
