package game

import (
	"fmt"

	"github.com/gambition/combat-server-go/internal/game/card"
	"github.com/gambition/combat-server-go/internal/game/poker"
)

// Capability is the closed set of companion passive behaviors. The resolver
// and session query capabilities generically, so new companions are additive.
type Capability int

const (
	// CapabilityNone marks companions with no passive hook.
	CapabilityNone Capability = iota
	// CapabilityProbabilityBoost multiplies the probability of gated hand
	// effects by Factor, capped at certainty.
	CapabilityProbabilityBoost
	// CapabilityDamageRamp adds Increment x (combat turn - 1) bonus damage to
	// every attack by its owner.
	CapabilityDamageRamp
	// CapabilityDiscardEcho duplicates a card back into the hand when the
	// owner's discard action discarded exactly one card.
	CapabilityDiscardEcho
	// CapabilityDamageModifier reshapes attack damage via the Modify hook.
	CapabilityDamageModifier
	// CapabilityExtraDraw raises the hand top-up target by one per instance.
	CapabilityExtraDraw
	// CapabilityCardSwap allows swapping one hand card with the deck top.
	CapabilityCardSwap
	// CapabilityCardRetrieve allows pulling one card back from the discard
	// pile.
	CapabilityCardRetrieve
)

// DamageModifier reshapes an attack's damage given the played cards and the
// classified category.
type DamageModifier func(played []card.Card, damage float64, category poker.Category) float64

// Companion is a passive modifier entity attached to the player side.
type Companion struct {
	Key         string
	Name        string
	Description string
	Capability  Capability

	// Factor is the probability multiplier for CapabilityProbabilityBoost.
	Factor float64
	// Increment is the per-turn bonus for CapabilityDamageRamp.
	Increment int
	// SingleUse companions are consumed after their first modifier
	// application.
	SingleUse bool
	// Duplicator companions re-apply the modifiers of the first two other
	// companions in the roster.
	Duplicator bool

	Modify DamageModifier
}

func addPerCard(amount float64) DamageModifier {
	return func(played []card.Card, damage float64, _ poker.Category) float64 {
		return damage + amount*float64(len(played))
	}
}

func multiplyByCardCount() DamageModifier {
	return func(played []card.Card, damage float64, _ poker.Category) float64 {
		return damage * float64(len(played))
	}
}

func conditionalMultiplier(factor float64, categories ...poker.Category) DamageModifier {
	return func(_ []card.Card, damage float64, category poker.Category) float64 {
		for _, c := range categories {
			if c == category {
				return damage * factor
			}
		}
		return damage
	}
}

// Catalogue is the built-in companion registry, keyed by companion key.
var Catalogue = map[string]Companion{
	"blank": {
		Key: "blank", Name: "The Blank",
		Description: "No inherent effect.",
		Capability:  CapabilityNone,
	},
	"joker": {
		Key: "joker", Name: "The Joker",
		Description: "Adds +1 damage per card in the played hand.",
		Capability:  CapabilityDamageModifier,
		Modify:      addPerCard(1),
	},
	"archon": {
		Key: "archon", Name: "The Archon",
		Description: "Multiplies damage by the number of cards played.",
		Capability:  CapabilityDamageModifier,
		Modify:      multiplyByCardCount(),
	},
	"ruse": {
		Key: "ruse", Name: "The Ruse",
		Description: "Pairs and Three of a Kind deal 50% more damage.",
		Capability:  CapabilityDamageModifier,
		Modify:      conditionalMultiplier(1.5, poker.Pair, poker.ThreeOfAKind),
	},
	"emperor": {
		Key: "emperor", Name: "The Emperor",
		Description: "Straights and Flushes deal 50% more damage.",
		Capability:  CapabilityDamageModifier,
		Modify:      conditionalMultiplier(1.5, poker.Straight, poker.Flush),
	},
	"hierophant": {
		Key: "hierophant", Name: "The Hierophant",
		Description: "Four of a Kind and Straight Flushes deal 50% more damage.",
		Capability:  CapabilityDamageModifier,
		Modify:      conditionalMultiplier(1.5, poker.FourOfAKind, poker.StraightFlush),
	},
	"businessman": {
		Key: "businessman", Name: "The Businessman",
		Description: "Single use: triples the final damage of one hand.",
		Capability:  CapabilityDamageModifier,
		SingleUse:   true,
		Modify: func(_ []card.Card, damage float64, _ poker.Category) float64 {
			return damage * 3
		},
	},
	"gemini": {
		Key: "gemini", Name: "The Gemini",
		Description: "Duplicates the effects of the first two other companions.",
		Capability:  CapabilityDamageModifier,
		Duplicator:  true,
	},
	"fool": {
		Key: "fool", Name: "The Fool",
		Description: "Draw +1 card each draw phase.",
		Capability:  CapabilityExtraDraw,
	},
	"fortune_teller": {
		Key: "fortune_teller", Name: "The Fortune Teller",
		Description: "Chance-based hand effects are 50% more likely.",
		Capability:  CapabilityProbabilityBoost,
		Factor:      1.5,
	},
	"berserker": {
		Key: "berserker", Name: "The Berserker",
		Description: "Every attack gains 2 damage per combat turn elapsed.",
		Capability:  CapabilityDamageRamp,
		Increment:   2,
	},
	"echo_mage": {
		Key: "echo_mage", Name: "The Echo Mage",
		Description: "Discarding a single card echoes a copy back into hand.",
		Capability:  CapabilityDiscardEcho,
	},
	"magician": {
		Key: "magician", Name: "The Magician",
		Description: "Once per turn, swap a hand card with the top of the deck.",
		Capability:  CapabilityCardSwap,
	},
	"necromancer": {
		Key: "necromancer", Name: "The Necromancer",
		Description: "Once per turn, retrieve a card from the discard pile.",
		Capability:  CapabilityCardRetrieve,
	},
}

// Roster is the active companion set for the player side. The external
// collaborator enforces the 0..5 size limit; the roster itself only orders
// and queries companions.
type Roster struct {
	companions []Companion
}

// NewRoster builds a roster from catalogue keys, preserving order.
func NewRoster(keys ...string) (*Roster, error) {
	r := &Roster{}
	for _, key := range keys {
		comp, ok := Catalogue[key]
		if !ok {
			return nil, fmt.Errorf("unknown companion: %s", key)
		}
		r.companions = append(r.companions, comp)
	}
	return r, nil
}

// Companions returns the roster members in order.
func (r *Roster) Companions() []Companion {
	if r == nil {
		return nil
	}
	return r.companions
}

// Has reports whether any member carries the capability.
func (r *Roster) Has(capability Capability) bool {
	if r == nil {
		return false
	}
	for _, c := range r.companions {
		if c.Capability == capability {
			return true
		}
	}
	return false
}

// ProbabilityFactor returns the combined probability multiplier from every
// probability-boost companion. Factors compose multiplicatively.
func (r *Roster) ProbabilityFactor() float64 {
	factor := 1.0
	if r == nil {
		return factor
	}
	for _, c := range r.companions {
		if c.Capability == CapabilityProbabilityBoost {
			factor *= c.Factor
		}
	}
	return factor
}

// RampBonus returns the summed per-turn damage ramp for the given 1-based
// combat turn.
func (r *Roster) RampBonus(turn int) int {
	if r == nil || turn < 1 {
		return 0
	}
	bonus := 0
	for _, c := range r.companions {
		if c.Capability == CapabilityDamageRamp {
			bonus += c.Increment * (turn - 1)
		}
	}
	return bonus
}

// ExtraDraws returns the hand top-up bonus from extra-draw companions.
func (r *Roster) ExtraDraws() int {
	if r == nil {
		return 0
	}
	extra := 0
	for _, c := range r.companions {
		if c.Capability == CapabilityExtraDraw {
			extra++
		}
	}
	return extra
}

// ApplyDamageModifiers runs every damage-modifier companion over the attack
// damage in roster order, then re-applies the first two non-duplicator
// modifiers once per duplicator. Single-use companions are consumed and
// their keys returned.
func (r *Roster) ApplyDamageModifiers(played []card.Card, damage float64, category poker.Category) (float64, []string) {
	if r == nil {
		return damage, nil
	}

	var consumed []string
	duplicators := 0
	for _, c := range r.companions {
		if c.Duplicator {
			duplicators++
			continue
		}
		if c.Capability != CapabilityDamageModifier || c.Modify == nil {
			continue
		}
		damage = c.Modify(played, damage, category)
		if c.SingleUse {
			consumed = append(consumed, c.Key)
		}
	}

	if duplicators > 0 {
		var targets []Companion
		for _, c := range r.companions {
			if !c.Duplicator && c.Capability == CapabilityDamageModifier && c.Modify != nil {
				targets = append(targets, c)
				if len(targets) == 2 {
					break
				}
			}
		}
		for i := 0; i < duplicators; i++ {
			for _, c := range targets {
				damage = c.Modify(played, damage, category)
			}
		}
	}

	for _, key := range consumed {
		r.remove(key)
	}
	return damage, consumed
}

func (r *Roster) remove(key string) {
	for i, c := range r.companions {
		if c.Key == key {
			r.companions = append(r.companions[:i], r.companions[i+1:]...)
			return
		}
	}
}
