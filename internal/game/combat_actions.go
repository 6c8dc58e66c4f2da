package game

import (
	"fmt"

	"wildstep/internal/encounter"
)

// damage applies base damage with a small random spread, never below one.
func damage(base, defense int, rng encounter.RandomSource) int {
	dmg := base + rng.IntN(3) - defense/2
	if dmg < 1 {
		dmg = 1
	}
	return dmg
}

// ResolveAttack has the player strike target.
func ResolveAttack(attacker *Player, target *EnemyInstance, rng encounter.RandomSource) (int, string) {
	dmg := damage(attacker.Attack, target.Def.Defense, rng)
	target.HP = max(target.HP-dmg, 0)

	msg := fmt.Sprintf("%s hits %s for %d damage!", attacker.Name, target.Label, dmg)
	if !target.Alive() {
		msg += fmt.Sprintf(" %s is defeated!", target.Label)
	}
	return dmg, msg
}

// ResolveDefend braces the player until their next turn.
func ResolveDefend(p *Player) string {
	p.Defending = true
	return fmt.Sprintf("%s braces for impact!", p.Name)
}

// ResolveFlee tries to leave the fight. Encounters that forbid escape always fail.
func ResolveFlee(p *Player, canEscape bool) (bool, string) {
	if !canEscape {
		return false, "There is no escape!"
	}
	return true, fmt.Sprintf("%s got away safely!", p.Name)
}

// ResolveEnemyAttack has enemy strike the player. Defending halves the damage.
func ResolveEnemyAttack(enemy *EnemyInstance, target *Player, rng encounter.RandomSource) (int, string) {
	dmg := damage(enemy.Def.Attack, target.Defense, rng)
	if target.Defending {
		dmg = max(dmg/2, 1)
	}
	target.HP = max(target.HP-dmg, 0)

	msg := fmt.Sprintf("%s attacks %s for %d damage!", enemy.Label, target.Name, dmg)
	if target.Defending {
		msg += " (defended)"
	}
	if target.HP == 0 {
		msg += fmt.Sprintf(" %s has fallen!", target.Name)
	}
	return dmg, msg
}
