package render

import "fmt"

// CombatRenderData holds the viewer's fight for the renderer.
type CombatRenderData struct {
	PlayerTurn bool
	Result     string // "victory", "defeat", "fled", or empty while fighting
	Round      int
	Enemies    []CombatEnemy
	Log        []string
	CanEscape  bool
	IsBoss     bool
}

// CombatEnemy is enemy data for rendering.
type CombatEnemy struct {
	Label string
	HP    int
	MaxHP int
	Alive bool
}

const combatBgR, combatBgG, combatBgB = uint8(12), uint8(12), uint8(18)

// renderCombatView draws the battle scene.
func (e *Engine) renderCombatView(f Frame) {
	combat := f.Combat
	bgR, bgG, bgB := combatBgR, combatBgG, combatBgB
	e.fill(Cell{Ch: ' ', BgR: bgR, BgG: bgG, BgB: bgB})

	hudY := e.height - HUDRows
	bR, bG, bB := uint8(100), uint8(70), uint8(55)
	if combat.IsBoss {
		bR, bG, bB = 170, 40, 60
	}

	e.drawBoxRow(0, '┌', '─', '┐', bR, bG, bB, bgR, bgG, bgB)
	for y := 1; y < hudY; y++ {
		e.set(0, y, Cell{Ch: '│', FgR: bR, FgG: bG, FgB: bB, BgR: bgR, BgG: bgG, BgB: bgB})
		if e.width > 1 {
			e.set(e.width-1, y, Cell{Ch: '│', FgR: bR, FgG: bG, FgB: bB, BgR: bgR, BgG: bgG, BgB: bgB})
		}
	}

	curY := 1
	target := true
	for _, enemy := range combat.Enemies {
		if curY+2 >= hudY-3 {
			break
		}
		targeted := combat.PlayerTurn && enemy.Alive && target
		if targeted {
			target = false
		}
		e.drawEnemyRow(curY, enemy, f.Tick, targeted)
		curY += 2
	}

	title := fmt.Sprintf(" BATTLE  Round %d ", combat.Round)
	if combat.IsBoss {
		title = fmt.Sprintf(" BOSS  Round %d ", combat.Round)
	}
	e.drawBoxDivider(curY, title, bR, bG, bB, 200, 180, 80, bgR, bgG, bgB)
	curY++

	logStart := max(hudY-len(combat.Log), curY)
	for i, msg := range combat.Log {
		row := logStart + i
		if row >= hudY {
			break
		}
		fgR, fgG, fgB := uint8(160), uint8(160), uint8(170)
		if i == len(combat.Log)-1 {
			fgR, fgG, fgB = 220, 220, 230
		}
		e.writeText(row, 2, e.width-1, msg, fgR, fgG, fgB, bgR, bgG, bgB, false)
	}

	switch combat.Result {
	case "victory":
		e.drawCenteredText(e.height/2-1, "★ VICTORY ★", 255, 220, 50, bgR, bgG, bgB, true)
	case "defeat":
		e.drawCenteredText(e.height/2-1, "✖ DEFEAT ✖", 255, 50, 50, bgR, bgG, bgB, true)
	case "fled":
		e.drawCenteredText(e.height/2-1, "Got away safely", 180, 200, 255, bgR, bgG, bgB, true)
	}

	e.drawCombatHUD(f, bR, bG, bB)
}

// drawBoxRow draws a full horizontal box line: left + fill + right.
func (e *Engine) drawBoxRow(row int, left, fill, right rune, fR, fG, fB, bR, bG, bB uint8) {
	if row < 0 || row >= e.height || e.width == 0 {
		return
	}
	e.next[row][0] = Cell{Ch: left, FgR: fR, FgG: fG, FgB: fB, BgR: bR, BgG: bG, BgB: bB}
	for x := 1; x < e.width-1; x++ {
		e.next[row][x] = Cell{Ch: fill, FgR: fR, FgG: fG, FgB: fB, BgR: bR, BgG: bG, BgB: bB}
	}
	if e.width > 1 {
		e.next[row][e.width-1] = Cell{Ch: right, FgR: fR, FgG: fG, FgB: fB, BgR: bR, BgG: bG, BgB: bB}
	}
}

// drawBoxDivider draws ├─ text ─┤ with optional centered text.
func (e *Engine) drawBoxDivider(row int, text string, fR, fG, fB, tR, tG, tB, bR, bG, bB uint8) {
	e.drawBoxRow(row, '├', '─', '┤', fR, fG, fB, bR, bG, bB)
	runes := []rune(text)
	cx := (e.width - len(runes)) / 2
	for i, r := range runes {
		if x := cx + i; x > 0 && x < e.width-1 {
			e.set(x, row, Cell{Ch: r, FgR: tR, FgG: tG, FgB: tB, BgR: bR, BgG: bG, BgB: bB, Bold: true})
		}
	}
}

// drawEnemyRow draws an enemy's name with its HP bar on the row below.
func (e *Engine) drawEnemyRow(row int, enemy CombatEnemy, tick uint64, targeted bool) {
	bgR, bgG, bgB := combatBgR, combatBgG, combatBgB

	if targeted {
		e.set(1, row, Cell{Ch: '▶', FgR: 255, FgG: 220, FgB: 80, BgR: bgR, BgG: bgG, BgB: bgB, Bold: true})
	}
	col := 2
	if enemy.Alive {
		glyph := []rune{'>', '·', '~'}
		if (tick/8)%2 == 1 {
			glyph[2] = '-'
		}
		for i, ch := range glyph {
			e.set(col+i, row, Cell{Ch: ch, FgR: 180, FgG: 160, FgB: 140, BgR: bgR, BgG: bgG, BgB: bgB})
		}
	}
	col += 4

	label := enemy.Label
	nameR, nameG, nameB := uint8(200), uint8(160), uint8(140)
	if !enemy.Alive {
		label += " (defeated)"
		nameR, nameG, nameB = 80, 80, 90
	}
	e.writeText(row, col, e.width-1, label, nameR, nameG, nameB, bgR, bgG, bgB, false)

	e.drawHPBar(row+1, 2, 20, enemy.HP, enemy.MaxHP, 200, 50, 50, enemy.Alive)
}

// drawHPBar draws an HP readout followed by a colored bar.
func (e *Engine) drawHPBar(row, col, width, hp, maxHP int, fgR, fgG, fgB uint8, alive bool) {
	bgR, bgG, bgB := combatBgR, combatBgG, combatBgB

	hpText := fmt.Sprintf("HP %d/%d", hp, maxHP)
	barStart := e.writeText(row, col, e.width-1, hpText, fgR, fgG, fgB, bgR, bgG, bgB, false) + 1
	if !alive || maxHP <= 0 {
		return
	}

	filled := max(width*hp/maxHP, 0)
	fillR, fillG, fillB := hpBarColor(hp, maxHP)
	for i := 0; i < width; i++ {
		x := barStart + i
		if x >= e.width-1 {
			break
		}
		c := Cell{Ch: '░', FgR: 40, FgG: 40, FgB: 50, BgR: bgR, BgG: bgG, BgB: bgB}
		if i < filled {
			c.Ch, c.FgR, c.FgG, c.FgB = '█', fillR, fillG, fillB
		}
		e.set(x, row, c)
	}
}

// drawCombatHUD shows the viewer's health and the available actions.
func (e *Engine) drawCombatHUD(f Frame, bdrR, bdrG, bdrB uint8) {
	hudY := e.height - HUDRows
	if hudY < 0 {
		return
	}
	h := f.HUD
	bgR, bgG, bgB := uint8(15), uint8(18), uint8(30)

	e.drawBoxRow(hudY, '└', '─', '┘', bdrR, bdrG, bdrB, bgR, bgG, bgB)
	for row := 1; row < HUDRows; row++ {
		for x := 0; x < e.width; x++ {
			e.next[hudY+row][x] = Cell{Ch: ' ', BgR: bgR, BgG: bgG, BgB: bgB}
		}
	}

	pR, pG, pB := playerColor(h.Color)
	row1 := hudY + 1
	col := e.writeText(row1, 1, e.width, h.Name, pR, pG, pB, bgR, bgG, bgB, true)
	hpFillR, hpFillG, hpFillB := hpBarColor(h.HP, h.MaxHP)
	e.drawStatBar(row1, col+2, "HP", h.HP, h.MaxHP, 20,
		255, 80, 80, hpFillR, hpFillG, hpFillB, bgR, bgG, bgB)

	row2 := hudY + 2
	combat := f.Combat
	switch {
	case combat.Result != "":
		e.writeText(row2, 1, e.width, "Returning to the overworld...", 150, 150, 165, bgR, bgG, bgB, false)
	case !combat.PlayerTurn:
		e.writeText(row2, 1, e.width, "Enemies are acting...", 200, 120, 100, bgR, bgG, bgB, false)
	default:
		col = e.writeText(row2, 1, e.width, "1 Attack", 230, 230, 240, bgR, bgG, bgB, true)
		col = e.writeText(row2, col+3, e.width, "2 Defend", 230, 230, 240, bgR, bgG, bgB, true)
		if combat.CanEscape {
			e.writeText(row2, col+3, e.width, "3 Flee", 230, 230, 240, bgR, bgG, bgB, true)
		} else {
			e.writeText(row2, col+3, e.width, "3 Flee (blocked)", 90, 90, 100, bgR, bgG, bgB, false)
		}
	}

	e.writeText(hudY+3, 1, e.width, fmt.Sprintf("Lv %d", h.Level), 100, 220, 220, bgR, bgG, bgB, true)
}
