package game

import (
	"fmt"

	"github.com/gambition/combat-server-go/internal/game/card"
	"github.com/gambition/combat-server-go/internal/game/effects"
	"github.com/gambition/combat-server-go/internal/game/poker"
)

// InstructionKind identifies one resolver output operation.
type InstructionKind int

const (
	// InstructionDamage deals Amount to the target through the mitigation
	// pipeline.
	InstructionDamage InstructionKind = iota
	// InstructionHeal restores Amount health to the target.
	InstructionHeal
	// InstructionApplyEffect applies Effect to the target.
	InstructionApplyEffect
	// InstructionHandMutation adds Card back into the owner's hand before the
	// next draw.
	InstructionHandMutation
	// InstructionDiscardBonus raises the per-turn discard limit by Amount for
	// the rest of the session.
	InstructionDiscardBonus
	// InstructionAttackBonus adds Amount flat damage to the next attack.
	InstructionAttackBonus
)

func (k InstructionKind) String() string {
	switch k {
	case InstructionDamage:
		return "DAMAGE"
	case InstructionHeal:
		return "HEAL"
	case InstructionApplyEffect:
		return "APPLY_EFFECT"
	case InstructionHandMutation:
		return "HAND_MUTATION"
	case InstructionDiscardBonus:
		return "DISCARD_BONUS"
	case InstructionAttackBonus:
		return "ATTACK_BONUS"
	default:
		return fmt.Sprintf("INSTRUCTION_%d", int(k))
	}
}

// TargetSide names which combatant an instruction acts on.
type TargetSide int

const (
	TargetDefender TargetSide = iota
	TargetAttacker
)

func (t TargetSide) String() string {
	if t == TargetAttacker {
		return "ATTACKER"
	}
	return "DEFENDER"
}

// Instruction is one ordered resolver output. The resolver never mutates
// combatant state itself; the session applies instructions in order, which
// keeps classification, probability resolution and state mutation
// independently testable.
type Instruction struct {
	Kind   InstructionKind
	Target TargetSide
	Amount int
	Effect *effects.Instance
	Card   *card.Card
	Note   string
}

// Probability gates for chance-based hand effects. Fixed configuration, kept
// stable across the test suite.
const (
	highCardStunChance    = 0.3
	twoPairDoubleChance   = 0.5
	straightBuffFraction  = 0.3
	flushShieldAmount     = 30
	fullHouseReduction    = 0.3
	poisonDuration        = 3
	flushFiveMaxHPPercent = 0.20
)

// Resolver maps a classified hand to damage and special-effect instructions,
// consulting the companion roster and the injected random source.
type Resolver struct {
	roster *Roster
	rng    RandomSource
}

// NewResolver builds a resolver over the player's companion roster and random
// source.
func NewResolver(roster *Roster, rng RandomSource) *Resolver {
	return &Resolver{roster: roster, rng: rng}
}

// gateOpen draws the probability gate, boosted by probability-modifier
// companions and capped at certainty. Gates always produce a valid outcome
// and never error.
func (r *Resolver) gateOpen(chance float64) bool {
	chance *= r.roster.ProbabilityFactor()
	if chance > 1 {
		chance = 1
	}
	return r.rng.Float64() < chance
}

// Resolve converts a classified hand into the ordered instruction list for
// one player attack. turn is the 1-based combat turn index; tarots is the
// attacker's held tarot list, consumed on Four/Five of a Kind (the session
// clears its copy when the returned tarotsUsed count is positive).
func (r *Resolver) Resolve(hand poker.Result, played []card.Card, defender *Combatant, tarots []Tarot, turn int) (instructions []Instruction, tarotsUsed int, companionsConsumed []string) {
	damage := float64(hand.FaceValueSum() * hand.Multiplier)

	// Probability-gated damage doubling comes before companion modifiers,
	// matching the order special abilities resolve in.
	if hand.Category == poker.TwoPair && r.gateOpen(twoPairDoubleChance) {
		damage *= 2
	}
	if hand.Category == poker.RoyalFlush {
		damage *= poker.RoyalFlushFinalMultiplier
	}

	damage, companionsConsumed = r.roster.ApplyDamageModifiers(played, damage, hand.Category)
	damage += float64(r.roster.RampBonus(turn))

	baseDamage := int(damage)
	instructions = append(instructions, Instruction{
		Kind:   InstructionDamage,
		Target: TargetDefender,
		Amount: baseDamage,
		Note:   hand.Category.String(),
	})

	instructions = append(instructions, r.categoryEffects(hand.Category, baseDamage, defender, tarots, &tarotsUsed)...)
	return instructions, tarotsUsed, companionsConsumed
}

// categoryEffects emits the special-effect instructions for a category.
// Composite categories apply the union of their constituents' effects.
func (r *Resolver) categoryEffects(category poker.Category, baseDamage int, defender *Combatant, tarots []Tarot, tarotsUsed *int) []Instruction {
	var out []Instruction
	source := category.String()

	stun := func() {
		if r.gateOpen(highCardStunChance) {
			inst := effects.NewStun(source)
			out = append(out, Instruction{Kind: InstructionApplyEffect, Target: TargetDefender, Effect: &inst, Note: "stun"})
		}
	}
	heal := func() {
		out = append(out, Instruction{Kind: InstructionHeal, Target: TargetAttacker, Amount: baseDamage / 2, Note: "lifesteal"})
	}
	poison := func() {
		perTurn := baseDamage / 10
		if perTurn < 3 {
			perTurn = 3
		}
		enemyPoison := effects.NewPoison(perTurn, poisonDuration, source)
		selfPoison := effects.NewPoison(perTurn/2, poisonDuration, source)
		out = append(out,
			Instruction{Kind: InstructionApplyEffect, Target: TargetDefender, Effect: &enemyPoison, Note: "poison"},
			Instruction{Kind: InstructionApplyEffect, Target: TargetAttacker, Effect: &selfPoison, Note: "poison blowback"},
		)
	}
	buff := func() {
		inst := effects.NewDamageBuff(straightBuffFraction, source)
		out = append(out, Instruction{Kind: InstructionApplyEffect, Target: TargetAttacker, Effect: &inst, Note: "damage buff"})
	}
	shield := func() {
		inst := effects.NewShield(flushShieldAmount, source)
		out = append(out, Instruction{Kind: InstructionApplyEffect, Target: TargetAttacker, Effect: &inst, Note: "shield"})
	}
	reduction := func() {
		inst := effects.NewDamageReduction(fullHouseReduction, source)
		out = append(out, Instruction{Kind: InstructionApplyEffect, Target: TargetAttacker, Effect: &inst, Note: "damage reduction"})
	}
	activateTarots := func() {
		for _, t := range tarots {
			out = append(out, t.Activate()...)
			*tarotsUsed++
		}
	}

	switch category {
	case poker.HighCard:
		stun()
	case poker.Pair:
		heal()
	case poker.TwoPair:
		// The double-damage gate resolved during damage computation.
	case poker.ThreeOfAKind:
		poison()
	case poker.Straight:
		buff()
	case poker.Flush:
		shield()
	case poker.FullHouse:
		reduction()
	case poker.FourOfAKind:
		activateTarots()
	case poker.StraightFlush:
		out = append(out, Instruction{Kind: InstructionDiscardBonus, Amount: 1, Note: "discard limit up"})
	case poker.RoyalFlush:
		// The 4x final multiplier resolved during damage computation.
	case poker.FiveOfAKind:
		heal()
		poison()
		activateTarots()
	case poker.FlushHouse:
		shield()
		reduction()
	case poker.FlushFive:
		bonus := int(r.rng.Float64() * flushFiveMaxHPPercent * float64(defender.MaxHP))
		out = append(out, Instruction{Kind: InstructionDamage, Target: TargetDefender, Amount: bonus, Note: "max HP burst"})
	}
	return out
}

// ResolveDiscard emits the hand-mutation instruction for a discard action.
// With a discard-echo companion and exactly one discarded card, a duplicate
// of that card returns to the owner's hand before the next draw.
func (r *Resolver) ResolveDiscard(discarded []card.Card) []Instruction {
	if !r.roster.Has(CapabilityDiscardEcho) || len(discarded) != 1 {
		return nil
	}
	echo := discarded[0]
	return []Instruction{{
		Kind:   InstructionHandMutation,
		Target: TargetAttacker,
		Card:   &echo,
		Note:   "discard echo",
	}}
}
