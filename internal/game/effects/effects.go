// Package effects implements the layered status-effect model shared by both
// combatants: stackable effect instances with per-turn ticking, stun
// consumption, and the fixed shield-then-reduction damage pipeline.
package effects

import (
	"errors"
	"fmt"
)

// Kind identifies a status effect variant.
type Kind int

const (
	Stun Kind = iota
	Heal
	DamageBuff
	Shield
	DamageReduction
	Poison
)

var kindNames = map[Kind]string{
	Stun:            "Stun",
	Heal:            "Heal",
	DamageBuff:      "DamageBuff",
	Shield:          "Shield",
	DamageReduction: "DamageReduction",
	Poison:          "Poison",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("KIND_%d", int(k))
}

// ErrNegativeMagnitude reports a misconfigured effect instance. Effects with
// negative magnitude are never constructed through the public contract, so
// hitting this is a programmer error at the call site.
var ErrNegativeMagnitude = errors.New("effect magnitude must not be negative")

// DurationIndefinite marks effects with no turn-based expiry: shields persist
// until depleted, damage reduction until combat ends.
const DurationIndefinite = -1

// Instance is one applied status effect. Magnitude semantics depend on Kind:
// hit points for Heal and Shield, damage per turn for Poison, and a fraction
// (0.3 = 30%) for DamageBuff and DamageReduction. Remaining follows the
// duration contract: 0 is instantaneous, >0 ticks down each turn, and
// DurationIndefinite never expires by ticking.
type Instance struct {
	Kind      Kind
	Magnitude float64
	Remaining int
	Source    string
}

// NewStun builds the one-turn stun instance. Stun carries no magnitude.
func NewStun(source string) Instance {
	return Instance{Kind: Stun, Remaining: 1, Source: source}
}

// NewHeal builds an instantaneous heal.
func NewHeal(amount int, source string) Instance {
	return Instance{Kind: Heal, Magnitude: float64(amount), Source: source}
}

// NewDamageBuff builds a buff that raises the next outgoing attack by the
// given fraction. The buff is consumed by the attack, not by ticking.
func NewDamageBuff(fraction float64, source string) Instance {
	return Instance{Kind: DamageBuff, Magnitude: fraction, Remaining: DurationIndefinite, Source: source}
}

// NewShield builds a shield that absorbs the given amount of incoming damage
// and persists until depleted.
func NewShield(amount int, source string) Instance {
	return Instance{Kind: Shield, Magnitude: float64(amount), Remaining: DurationIndefinite, Source: source}
}

// NewDamageReduction builds a multiplicative incoming-damage discount.
func NewDamageReduction(fraction float64, source string) Instance {
	return Instance{Kind: DamageReduction, Magnitude: fraction, Remaining: DurationIndefinite, Source: source}
}

// NewPoison builds a ticking poison dealing damagePerTurn for the given
// number of turns.
func NewPoison(damagePerTurn, turns int, source string) Instance {
	return Instance{Kind: Poison, Magnitude: float64(damagePerTurn), Remaining: turns, Source: source}
}

// List holds a combatant's active effects in application order. Multiple
// instances of the same kind coexist and stack additively, each ticking down
// independently; Stun is the single refresh-not-stack kind.
type List struct {
	active []*Instance
}

// Add appends an effect instance. Heal is instantaneous and never stored; the
// caller applies it to health directly. A second Stun refreshes the existing
// instance's duration instead of stacking.
func (l *List) Add(inst Instance) error {
	if inst.Magnitude < 0 {
		return fmt.Errorf("%w: %s %.2f", ErrNegativeMagnitude, inst.Kind, inst.Magnitude)
	}
	if inst.Kind == Heal {
		return nil
	}
	if inst.Kind == Stun {
		for _, e := range l.active {
			if e.Kind == Stun {
				if inst.Remaining > e.Remaining {
					e.Remaining = inst.Remaining
				}
				e.Source = inst.Source
				return nil
			}
		}
	}
	copied := inst
	l.active = append(l.active, &copied)
	return nil
}

// TickResult reports what one turn of effect advancement produced.
type TickResult struct {
	// PoisonDamage is the summed poison damage for this tick. It bypasses
	// shields and damage reduction; the caller subtracts it from health
	// directly.
	PoisonDamage int
	Expired      []Instance
}

// Tick advances all ticking effects by one turn. It runs once at the start of
// the owning combatant's turn, before any action is attempted. Poison deals
// its magnitude, every positive duration decrements, and effects reaching
// zero are removed.
func (l *List) Tick() TickResult {
	var res TickResult
	kept := l.active[:0]
	for _, e := range l.active {
		if e.Kind == Poison {
			res.PoisonDamage += int(e.Magnitude)
		}
		// Stun never expires by ticking: it is consumed by the skipped
		// action attempt that follows this tick in the same turn.
		if e.Kind != Stun && e.Remaining > 0 {
			e.Remaining--
			if e.Remaining == 0 {
				res.Expired = append(res.Expired, *e)
				continue
			}
		}
		kept = append(kept, e)
	}
	l.active = kept
	return res
}

// ConsumeStun removes exactly one stun instance and reports whether the actor
// is stunned. A second call within the same action attempt finds nothing and
// reports not-stunned.
func (l *List) ConsumeStun() bool {
	for i, e := range l.active {
		if e.Kind == Stun {
			l.active = append(l.active[:i], l.active[i+1:]...)
			return true
		}
	}
	return false
}

// Mitigation breaks down how incoming damage was absorbed and reduced.
type Mitigation struct {
	Incoming int
	Absorbed int
	Reduced  int
	Final    int
}

// MitigateIncoming runs incoming damage through the fixed pipeline: summed
// shields absorb first (each instance depleted in application order, removed
// at zero), then summed damage reduction discounts the remainder
// multiplicatively. Poison damage must not be routed through here.
func (l *List) MitigateIncoming(damage int) Mitigation {
	m := Mitigation{Incoming: damage, Final: damage}
	if damage <= 0 {
		m.Final = 0
		return m
	}

	remaining := float64(damage)
	kept := l.active[:0]
	for _, e := range l.active {
		if e.Kind == Shield && remaining > 0 {
			absorbed := e.Magnitude
			if absorbed > remaining {
				absorbed = remaining
			}
			e.Magnitude -= absorbed
			remaining -= absorbed
			m.Absorbed += int(absorbed)
			if e.Magnitude <= 0 {
				continue
			}
		}
		kept = append(kept, e)
	}
	l.active = kept

	reduction := 0.0
	for _, e := range l.active {
		if e.Kind == DamageReduction {
			reduction += e.Magnitude
		}
	}
	if reduction > 1 {
		reduction = 1
	}
	if reduction > 0 && remaining > 0 {
		reduced := remaining * reduction
		m.Reduced = int(reduced)
		remaining -= reduced
	}

	m.Final = int(remaining)
	return m
}

// BuffOutgoing applies and consumes every active damage buff on an outgoing
// attack's damage.
func (l *List) BuffOutgoing(damage int) int {
	buffed := float64(damage)
	kept := l.active[:0]
	for _, e := range l.active {
		if e.Kind == DamageBuff {
			buffed *= 1 + e.Magnitude
			continue
		}
		kept = append(kept, e)
	}
	l.active = kept
	return int(buffed)
}

// Has reports whether at least one instance of the kind is active.
func (l *List) Has(kind Kind) bool {
	for _, e := range l.active {
		if e.Kind == kind {
			return true
		}
	}
	return false
}

// TotalMagnitude sums the magnitudes of all active instances of the kind.
func (l *List) TotalMagnitude(kind Kind) float64 {
	total := 0.0
	for _, e := range l.active {
		if e.Kind == kind {
			total += e.Magnitude
		}
	}
	return total
}

// Active returns a snapshot of the active instances in application order.
func (l *List) Active() []Instance {
	out := make([]Instance, len(l.active))
	for i, e := range l.active {
		out[i] = *e
	}
	return out
}

// Len reports the number of active instances.
func (l *List) Len() int {
	return len(l.active)
}

// Clear removes every active effect.
func (l *List) Clear() {
	l.active = nil
}
