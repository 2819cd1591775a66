package game

import "fmt"

// Tarot is a consumable item held by the player side. Four of a Kind (and the
// composite Five of a Kind) activates and consumes every held tarot; tarots
// express their effect as resolver instructions so activation stays pure.
type Tarot struct {
	Key         string
	Name        string
	Description string
	Activate    func() []Instruction
}

// TarotCatalogue is the built-in tarot registry.
var TarotCatalogue = map[string]Tarot{
	"sun": {
		Key: "sun", Name: "The Sun",
		Description: "+5 damage to the next attack.",
		Activate: func() []Instruction {
			return []Instruction{{Kind: InstructionAttackBonus, Amount: 5, Note: "The Sun"}}
		},
	},
	"moon": {
		Key: "moon", Name: "The Moon",
		Description: "Heal 10 HP.",
		Activate: func() []Instruction {
			return []Instruction{{Kind: InstructionHeal, Target: TargetAttacker, Amount: 10, Note: "The Moon"}}
		},
	},
	"tower": {
		Key: "tower", Name: "The Tower",
		Description: "???",
		Activate: func() []Instruction {
			// TODO: tower effect once the story layer defines it.
			return nil
		},
	},
}

// NewTarots resolves catalogue keys to tarot values, preserving order.
func NewTarots(keys ...string) ([]Tarot, error) {
	out := make([]Tarot, 0, len(keys))
	for _, key := range keys {
		t, ok := TarotCatalogue[key]
		if !ok {
			return nil, fmt.Errorf("unknown tarot: %s", key)
		}
		out = append(out, t)
	}
	return out, nil
}
