package game

import (
	"github.com/gambition/combat-server-go/internal/game/effects"
)

// Combatant is one side of a combat session: current and maximum health, the
// ordered active status effects, and a turn counter incremented at the start
// of each of its turns. Both combatants are owned exclusively by their
// session for its lifetime.
type Combatant struct {
	Name    string
	HP      int
	MaxHP   int
	Defense int
	Effects effects.List
}

// NewCombatant creates a combatant at full health.
func NewCombatant(name string, maxHP, defense int) *Combatant {
	return &Combatant{Name: name, HP: maxHP, MaxHP: maxHP, Defense: defense}
}

// Alive reports whether the combatant still has health.
func (c *Combatant) Alive() bool {
	return c.HP > 0
}

// ApplyEffect applies an effect instance. Heal resolves instantly against
// health; everything else joins the active list.
func (c *Combatant) ApplyEffect(inst effects.Instance) error {
	if inst.Magnitude < 0 {
		return effects.ErrNegativeMagnitude
	}
	if inst.Kind == effects.Heal {
		c.HealHP(int(inst.Magnitude))
		return nil
	}
	return c.Effects.Add(inst)
}

// TakeDamage routes incoming attack damage through defense and the mitigation
// pipeline (shields first, then damage reduction) and clamps health at zero.
// It returns the mitigation breakdown with Final set to the health actually
// lost.
func (c *Combatant) TakeDamage(amount int) effects.Mitigation {
	if amount < 0 {
		amount = 0
	}
	amount -= c.Defense
	if amount < 0 {
		amount = 0
	}
	m := c.Effects.MitigateIncoming(amount)
	c.HP -= m.Final
	if c.HP < 0 {
		c.HP = 0
	}
	return m
}

// TakeDirectDamage reduces health with no mitigation whatsoever. Poison
// damage goes through here: it bypasses shields, damage reduction and
// defense.
func (c *Combatant) TakeDirectDamage(amount int) int {
	if amount < 0 {
		amount = 0
	}
	before := c.HP
	c.HP -= amount
	if c.HP < 0 {
		c.HP = 0
	}
	return before - c.HP
}

// HealHP restores health, clamped at the maximum. Returns the amount
// actually restored.
func (c *Combatant) HealHP(amount int) int {
	if amount < 0 {
		amount = 0
	}
	before := c.HP
	c.HP += amount
	if c.HP > c.MaxHP {
		c.HP = c.MaxHP
	}
	return c.HP - before
}

// TickEffects advances the combatant's effects by one turn, applying poison
// damage directly to health.
func (c *Combatant) TickEffects() effects.TickResult {
	res := c.Effects.Tick()
	if res.PoisonDamage > 0 {
		c.TakeDirectDamage(res.PoisonDamage)
	}
	return res
}
