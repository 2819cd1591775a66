// Package enemy holds the enemy catalogue and run encounter sequencing. The
// combat core treats enemies as opaque configuration: base stats plus a
// scripted action list supplied at session creation.
package enemy

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/gambition/combat-server-go/internal/game/effects"
)

// ActionKind identifies one scripted enemy move.
type ActionKind int

const (
	// ActionAttack deals the action's amount as damage, mitigated by the
	// player's shields and damage reduction.
	ActionAttack ActionKind = iota
	// ActionDefend grants the enemy a shield of the action's amount.
	ActionDefend
	// ActionAfflict applies the action's effect instance to the player.
	ActionAfflict
)

func (k ActionKind) String() string {
	switch k {
	case ActionAttack:
		return "ATTACK"
	case ActionDefend:
		return "DEFEND"
	case ActionAfflict:
		return "AFFLICT"
	default:
		return fmt.Sprintf("ACTION_%d", int(k))
	}
}

// Action is one entry of an enemy's scripted move list. Scripts loop: turn N
// executes entry N modulo script length.
type Action struct {
	Kind   ActionKind
	Amount int
	Effect *effects.Instance
}

// Definition is the opaque enemy configuration handed to a combat session.
type Definition struct {
	Name    string
	HP      int
	Attack  int
	Defense int
	Script  []Action
}

// ActionForTurn returns the scripted move for a 1-based enemy turn. Enemies
// without a script fall back to a plain attack at their base attack value.
func (d Definition) ActionForTurn(turn int) Action {
	if len(d.Script) == 0 {
		return Action{Kind: ActionAttack, Amount: d.Attack}
	}
	return d.Script[(turn-1)%len(d.Script)]
}

// Templates is the built-in enemy catalogue.
var Templates = map[string]Definition{
	"Goblin":     {Name: "Goblin", HP: 50, Attack: 10, Defense: 0},
	"Orc":        {Name: "Orc", HP: 80, Attack: 12, Defense: 2},
	"Skeleton":   {Name: "Skeleton", HP: 40, Attack: 8, Defense: 1},
	"Bandit":     {Name: "Bandit", HP: 60, Attack: 15, Defense: 0},
	"Troll":      {Name: "Troll", HP: 120, Attack: 18, Defense: 4},
	"Dragonling": {Name: "Dragonling", HP: 150, Attack: 25, Defense: 5},
}

// New returns the template definition for the named enemy.
func New(name string) (Definition, error) {
	tmpl, ok := Templates[name]
	if !ok {
		return Definition{}, fmt.Errorf("unknown enemy: %s", name)
	}
	return tmpl, nil
}

// EncounterManager generates the sequence of enemies for a run.
type EncounterManager struct {
	queue []Definition
}

// NewEncounterManager draws the given number of stage enemies from the
// catalogue using the supplied random source.
func NewEncounterManager(stages int, rng *rand.Rand) *EncounterManager {
	names := make([]string, 0, len(Templates))
	for name := range Templates {
		names = append(names, name)
	}
	sort.Strings(names)

	queue := make([]Definition, 0, stages)
	for i := 0; i < stages; i++ {
		queue = append(queue, Templates[names[rng.Intn(len(names))]])
	}
	return &EncounterManager{queue: queue}
}

// Next pops the next enemy of the run, or false when the run is complete.
func (m *EncounterManager) Next() (Definition, bool) {
	if len(m.queue) == 0 {
		return Definition{}, false
	}
	next := m.queue[0]
	m.queue = m.queue[1:]
	return next, true
}

// Remaining reports how many encounters are left.
func (m *EncounterManager) Remaining() int {
	return len(m.queue)
}
