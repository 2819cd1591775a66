package game

import (
	"sync"
	"time"
)

// EventType indicates the category of a turn-result event.
type EventType string

const (
	EventTurnStarted    EventType = "TURN_STARTED"
	EventHandPlayed     EventType = "HAND_PLAYED"
	EventDamageDealt    EventType = "DAMAGE_DEALT"
	EventDamageAbsorbed EventType = "DAMAGE_ABSORBED"
	EventHealed         EventType = "HEALED"
	EventEffectApplied  EventType = "EFFECT_APPLIED"
	EventEffectExpired  EventType = "EFFECT_EXPIRED"
	EventPoisonTick     EventType = "POISON_TICK"
	EventStunConsumed   EventType = "STUN_CONSUMED"
	EventHandMutation   EventType = "HAND_MUTATION"
	EventCardsDiscarded EventType = "CARDS_DISCARDED"
	EventCardsDrawn     EventType = "CARDS_DRAWN"
	EventTarotActivated EventType = "TAROT_ACTIVATED"
	EventCompanionUsed  EventType = "COMPANION_USED"
	EventEnemyAction    EventType = "ENEMY_ACTION"
	EventCombatEnded    EventType = "COMBAT_ENDED"
)

// Event is one entry of the turn-result stream consumed by the world/story
// layer. Fields are populated per type; zero values mean not applicable.
type Event struct {
	Type   EventType `json:"type"`
	Turn   int       `json:"turn"`
	Actor  string    `json:"actor,omitempty"`
	Target string    `json:"target,omitempty"`
	Amount int       `json:"amount,omitempty"`
	Detail string    `json:"detail,omitempty"`
	Time   time.Time `json:"time"`
}

// Recorder accumulates the ordered event stream for one session. It is safe
// for a transport goroutine to read while the session appends.
type Recorder struct {
	mu     sync.RWMutex
	events []Event
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record appends an event, stamping the current time.
func (r *Recorder) Record(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ev.Time = time.Now()
	r.events = append(r.events, ev)
}

// Events returns a snapshot of all recorded events in order.
func (r *Recorder) Events() []Event {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Since returns events recorded at or after the given index, plus the next
// index to poll from.
func (r *Recorder) Since(index int) ([]Event, int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if index < 0 {
		index = 0
	}
	if index >= len(r.events) {
		return nil, len(r.events)
	}
	out := make([]Event, len(r.events)-index)
	copy(out, r.events[index:])
	return out, len(r.events)
}

// Len reports the number of recorded events.
func (r *Recorder) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.events)
}
