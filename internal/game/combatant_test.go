package game

import (
	"testing"

	"github.com/gambition/combat-server-go/internal/game/effects"
)

func TestCombatantTakeDamageAppliesDefense(t *testing.T) {
	c := NewCombatant("Orc", 80, 2)

	m := c.TakeDamage(12)
	if m.Final != 10 {
		t.Fatalf("expected 10 through 2 defense, got %d", m.Final)
	}
	if c.HP != 70 {
		t.Fatalf("expected 70 HP, got %d", c.HP)
	}

	m = c.TakeDamage(1)
	if m.Final != 0 {
		t.Fatalf("damage below defense should be zeroed, got %d", m.Final)
	}
}

func TestCombatantHPClamps(t *testing.T) {
	c := NewCombatant("Goblin", 50, 0)

	c.TakeDamage(500)
	if c.HP != 0 {
		t.Fatalf("HP must clamp at zero, got %d", c.HP)
	}
	if c.Alive() {
		t.Fatal("combatant at zero HP is dead")
	}

	restored := c.HealHP(1000)
	if restored != 50 || c.HP != 50 {
		t.Fatalf("heal must clamp at max: restored %d, HP %d", restored, c.HP)
	}
}

func TestCombatantDirectDamageIgnoresMitigation(t *testing.T) {
	c := NewCombatant("Troll", 120, 4)
	if err := c.Effects.Add(effects.NewShield(100, "test")); err != nil {
		t.Fatal(err)
	}

	lost := c.TakeDirectDamage(10)
	if lost != 10 || c.HP != 110 {
		t.Fatalf("direct damage must bypass shield and defense: lost %d, HP %d", lost, c.HP)
	}
	if got := c.Effects.TotalMagnitude(effects.Shield); got != 100 {
		t.Fatalf("shield must be untouched, got %.0f", got)
	}
}

func TestCombatantHealEffectResolvesInstantly(t *testing.T) {
	c := NewCombatant("Goblin", 50, 0)
	c.TakeDamage(20)

	if err := c.ApplyEffect(effects.NewHeal(15, "test")); err != nil {
		t.Fatal(err)
	}
	if c.HP != 45 {
		t.Fatalf("expected 45 HP after instant heal, got %d", c.HP)
	}
	if c.Effects.Len() != 0 {
		t.Fatalf("heal must not join the active list, got %d effects", c.Effects.Len())
	}
}

func TestCombatantTickAppliesPoisonToHealth(t *testing.T) {
	c := NewCombatant("Bandit", 60, 0)
	if err := c.ApplyEffect(effects.NewPoison(5, 2, "test")); err != nil {
		t.Fatal(err)
	}

	res := c.TickEffects()
	if res.PoisonDamage != 5 {
		t.Fatalf("expected 5 poison, got %d", res.PoisonDamage)
	}
	if c.HP != 55 {
		t.Fatalf("expected 55 HP, got %d", c.HP)
	}

	c.TickEffects()
	res = c.TickEffects()
	if res.PoisonDamage != 0 {
		t.Fatalf("poison expired, expected no damage, got %d", res.PoisonDamage)
	}
	if c.HP != 50 {
		t.Fatalf("expected 50 HP after two poison ticks, got %d", c.HP)
	}
}
