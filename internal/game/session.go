package game

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gambition/combat-server-go/internal/game/card"
	"github.com/gambition/combat-server-go/internal/game/effects"
	"github.com/gambition/combat-server-go/internal/game/enemy"
	"github.com/gambition/combat-server-go/internal/game/poker"
	"github.com/gambition/combat-server-go/internal/game/rules"
)

// Outcome is the terminal result of a combat session. Exactly one of the
// three values holds at all times.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomePlayerVictory
	OutcomePlayerDefeat
)

func (o Outcome) String() string {
	switch o {
	case OutcomePlayerVictory:
		return "PLAYER_VICTORY"
	case OutcomePlayerDefeat:
		return "PLAYER_DEFEAT"
	default:
		return "NONE"
	}
}

// Config holds everything a session needs at creation: the opaque inputs
// supplied by the world/story layer.
type Config struct {
	// Seed drives deck shuffling and, when RNG is nil, the probability
	// draws.
	Seed int64
	// RNG overrides the probability source; tests inject scripted draws.
	RNG RandomSource

	PlayerName    string
	PlayerMaxHP   int
	PlayerHPBonus int
	HandSize      int
	DiscardLimit  int

	// CompanionKeys is the active companion roster (0..5, enforced by the
	// caller).
	CompanionKeys []string
	TarotKeys     []string

	Enemy enemy.Definition

	Logger *zap.Logger
}

// Defaults applied when Config fields are zero.
const (
	defaultPlayerHP     = 100
	defaultHandSize     = 8
	defaultDiscardLimit = 4
)

// TurnResult summarizes one processed turn event for the caller.
type TurnResult struct {
	Phase       rules.Phase
	Outcome     Outcome
	Stunned     bool
	Category    poker.Category
	DamageDealt int
	DamageTaken int
}

// Session owns exactly two combatants and advances the turn state machine
// until the encounter ends. One logical caller mutates a session at a time;
// the mutex exists so a transport goroutine may poll state safely.
type Session struct {
	mu sync.Mutex

	id      uuid.UUID
	log     *zap.Logger
	tracker *rules.TurnTracker
	outcome Outcome

	player   *Combatant
	enemy    *Combatant
	enemyDef enemy.Definition

	roster   *Roster
	tarots   []Tarot
	resolver *Resolver
	rng      RandomSource
	shuffle  *rand.Rand
	recorder *Recorder

	deck         *card.Deck
	hand         []card.Card
	discardPile  []card.Card
	handSize     int
	discardLimit int
	discardsLeft int
	pendingBonus int
	swapUsed     bool
	retrieveUsed bool
}

// NewSession creates a combat session against the configured enemy, shuffles
// the player deck and deals the opening hand.
func NewSession(cfg Config) (*Session, error) {
	if cfg.Enemy.HP <= 0 {
		return nil, fmt.Errorf("enemy %q has no health", cfg.Enemy.Name)
	}

	roster, err := NewRoster(cfg.CompanionKeys...)
	if err != nil {
		return nil, err
	}
	tarots, err := NewTarots(cfg.TarotKeys...)
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	rng := cfg.RNG
	if rng == nil {
		rng = NewSeededSource(cfg.Seed)
	}

	playerHP := cfg.PlayerMaxHP
	if playerHP <= 0 {
		playerHP = defaultPlayerHP
	}
	playerHP += cfg.PlayerHPBonus
	handSize := cfg.HandSize
	if handSize <= 0 {
		handSize = defaultHandSize
	}
	discardLimit := cfg.DiscardLimit
	if discardLimit <= 0 {
		discardLimit = defaultDiscardLimit
	}

	playerName := cfg.PlayerName
	if playerName == "" {
		playerName = "Player"
	}

	s := &Session{
		id:           uuid.New(),
		log:          logger,
		tracker:      rules.NewTurnTracker(),
		player:       NewCombatant(playerName, playerHP, 0),
		enemy:        NewCombatant(cfg.Enemy.Name, cfg.Enemy.HP, cfg.Enemy.Defense),
		enemyDef:     cfg.Enemy,
		roster:       roster,
		tarots:       tarots,
		rng:          rng,
		shuffle:      rand.New(rand.NewSource(cfg.Seed)),
		recorder:     NewRecorder(),
		deck:         card.NewDeck(),
		handSize:     handSize,
		discardLimit: discardLimit,
		discardsLeft: discardLimit,
	}
	s.resolver = NewResolver(roster, rng)
	s.deck.Shuffle(s.shuffle)

	if err := s.topUpHand(); err != nil {
		return s, err
	}
	s.log.Info("combat session created",
		zap.String("session_id", s.id.String()),
		zap.String("enemy", cfg.Enemy.Name),
		zap.Int("player_hp", playerHP),
	)
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Phase returns the current turn phase.
func (s *Session) Phase() rules.Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker.Phase()
}

// Outcome returns the terminal outcome flag.
func (s *Session) Outcome() Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcome
}

// Hand returns a snapshot of the player's current hand.
func (s *Session) Hand() []card.Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]card.Card, len(s.hand))
	copy(out, s.hand)
	return out
}

// Player returns the player combatant. The session retains ownership; the
// caller must not mutate it while combat is active.
func (s *Session) Player() *Combatant {
	return s.player
}

// Enemy returns the enemy combatant.
func (s *Session) Enemy() *Combatant {
	return s.enemy
}

// Turn returns the 1-based player turn counter.
func (s *Session) Turn() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker.PlayerTurn()
}

// DiscardsLeft reports the remaining discard actions this turn.
func (s *Session) DiscardsLeft() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.discardsLeft
}

// Events returns the session's event stream so far.
func (s *Session) Events() []Event {
	return s.recorder.Events()
}

// EventsSince returns events from the given index onward, plus the next
// polling index.
func (s *Session) EventsSince(index int) ([]Event, int) {
	return s.recorder.Since(index)
}

// SubmitPlayerAction processes one full player turn: effect tick, stun check
// and, when not stunned, classification and resolution of the selected hand
// indices. Legal only while waiting at the player turn boundary; terminal
// sessions reject it with ErrIllegalStateTransition.
func (s *Session) SubmitPlayerAction(indices []int) (*TurnResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.outcome != OutcomeNone || s.tracker.Phase() != rules.PhasePlayerTurnStart {
		return nil, fmt.Errorf("%w: submit in phase %s", ErrIllegalStateTransition, s.tracker.Phase())
	}
	// Validate the selection before any state changes so a rejected input
	// leaves the machine at the turn boundary for a resubmit.
	if err := s.validateSelection(indices); err != nil {
		return nil, err
	}

	if err := s.tracker.BeginPlayerTurn(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIllegalStateTransition, err)
	}
	turn := s.tracker.PlayerTurn()
	s.recorder.Record(Event{Type: EventTurnStarted, Turn: turn, Actor: s.player.Name})
	s.tickCombatant(s.player, turn)

	if !s.player.Alive() {
		return s.endCombat(OutcomePlayerDefeat, turn)
	}

	// Stun consumption precedes any other effect of the turn.
	if s.player.Effects.ConsumeStun() {
		s.recorder.Record(Event{Type: EventStunConsumed, Turn: turn, Actor: s.player.Name})
		if err := s.tracker.Advance(rules.PhaseEnemyTurnStart); err != nil {
			return nil, err
		}
		return &TurnResult{Phase: s.tracker.Phase(), Stunned: true}, nil
	}

	played := s.removeFromHand(indices)
	hand, err := poker.Classify(played)
	if err != nil {
		// Unreachable with a validated selection, but classification errors
		// stay visible rather than being swallowed.
		s.hand = append(s.hand, played...)
		return nil, err
	}
	s.recorder.Record(Event{
		Type:   EventHandPlayed,
		Turn:   turn,
		Actor:  s.player.Name,
		Amount: len(played),
		Detail: hand.Category.String(),
	})

	instructions, tarotsUsed, consumed := s.resolver.Resolve(hand, played, s.enemy, s.tarots, turn)
	for _, key := range consumed {
		s.recorder.Record(Event{Type: EventCompanionUsed, Turn: turn, Actor: s.player.Name, Detail: key})
	}
	if tarotsUsed > 0 {
		for _, t := range s.tarots {
			s.recorder.Record(Event{Type: EventTarotActivated, Turn: turn, Actor: s.player.Name, Detail: t.Name})
		}
		s.tarots = nil
	}

	dealt := s.applyInstructions(instructions, turn)
	s.discardPile = append(s.discardPile, played...)
	if err := s.topUpHand(); err != nil {
		// The deck and discard pile are both exhausted. The turn already
		// resolved; surface the draw failure with the result.
		res, endErr := s.finishPlayerAction(hand.Category, dealt, turn)
		if endErr != nil {
			return nil, endErr
		}
		return res, err
	}
	return s.finishPlayerAction(hand.Category, dealt, turn)
}

func (s *Session) finishPlayerAction(category poker.Category, dealt, turn int) (*TurnResult, error) {
	if !s.enemy.Alive() {
		res, err := s.endCombat(OutcomePlayerVictory, turn)
		if res != nil {
			res.Category = category
			res.DamageDealt = dealt
		}
		return res, err
	}
	if !s.player.Alive() {
		// Self-inflicted poison blowback can be lethal.
		res, err := s.endCombat(OutcomePlayerDefeat, turn)
		if res != nil {
			res.Category = category
			res.DamageDealt = dealt
		}
		return res, err
	}
	if err := s.tracker.Advance(rules.PhaseEnemyTurnStart); err != nil {
		return nil, err
	}
	return &TurnResult{
		Phase:       s.tracker.Phase(),
		Category:    category,
		DamageDealt: dealt,
	}, nil
}

// AdvanceEnemyTurn processes one full enemy turn: effect tick, stun check
// and, when not stunned, the enemy's scripted action. Legal only at the enemy
// turn boundary.
func (s *Session) AdvanceEnemyTurn() (*TurnResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.outcome != OutcomeNone || s.tracker.Phase() != rules.PhaseEnemyTurnStart {
		return nil, fmt.Errorf("%w: advance in phase %s", ErrIllegalStateTransition, s.tracker.Phase())
	}

	if err := s.tracker.BeginEnemyTurn(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIllegalStateTransition, err)
	}
	turn := s.tracker.EnemyTurn()
	s.recorder.Record(Event{Type: EventTurnStarted, Turn: turn, Actor: s.enemy.Name})
	s.tickCombatant(s.enemy, turn)

	if !s.enemy.Alive() {
		return s.endCombat(OutcomePlayerVictory, turn)
	}

	if s.enemy.Effects.ConsumeStun() {
		s.recorder.Record(Event{Type: EventStunConsumed, Turn: turn, Actor: s.enemy.Name})
		if err := s.backToPlayerTurn(); err != nil {
			return nil, err
		}
		return &TurnResult{Phase: s.tracker.Phase(), Stunned: true}, nil
	}

	action := s.enemyDef.ActionForTurn(turn)
	taken := 0
	switch action.Kind {
	case enemy.ActionAttack:
		amount := s.enemy.Effects.BuffOutgoing(action.Amount)
		m := s.player.TakeDamage(amount)
		taken = m.Final
		s.recorder.Record(Event{Type: EventEnemyAction, Turn: turn, Actor: s.enemy.Name, Detail: action.Kind.String(), Amount: amount})
		if m.Absorbed > 0 {
			s.recorder.Record(Event{Type: EventDamageAbsorbed, Turn: turn, Target: s.player.Name, Amount: m.Absorbed})
		}
		s.recorder.Record(Event{Type: EventDamageDealt, Turn: turn, Actor: s.enemy.Name, Target: s.player.Name, Amount: taken})
	case enemy.ActionDefend:
		if err := s.enemy.ApplyEffect(effects.NewShield(action.Amount, "defend")); err != nil {
			return nil, err
		}
		s.recorder.Record(Event{Type: EventEnemyAction, Turn: turn, Actor: s.enemy.Name, Detail: action.Kind.String(), Amount: action.Amount})
	case enemy.ActionAfflict:
		if action.Effect != nil {
			if err := s.player.ApplyEffect(*action.Effect); err != nil {
				return nil, err
			}
			s.recorder.Record(Event{Type: EventEffectApplied, Turn: turn, Target: s.player.Name, Detail: action.Effect.Kind.String()})
		}
		s.recorder.Record(Event{Type: EventEnemyAction, Turn: turn, Actor: s.enemy.Name, Detail: action.Kind.String()})
	}

	if !s.player.Alive() {
		res, err := s.endCombat(OutcomePlayerDefeat, turn)
		if res != nil {
			res.DamageTaken = taken
		}
		return res, err
	}
	if err := s.backToPlayerTurn(); err != nil {
		return nil, err
	}
	return &TurnResult{Phase: s.tracker.Phase(), DamageTaken: taken}, nil
}

// DiscardCards discards the selected hand cards and redraws replacements.
// Legal between turns (at the player turn boundary), limited per turn. With
// an echo companion, discarding exactly one card returns a duplicate to the
// hand before the redraw.
func (s *Session) DiscardCards(indices []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.outcome != OutcomeNone || s.tracker.Phase() != rules.PhasePlayerTurnStart {
		return fmt.Errorf("%w: discard in phase %s", ErrIllegalStateTransition, s.tracker.Phase())
	}
	if s.discardsLeft <= 0 {
		return ErrNoDiscardsLeft
	}
	if len(indices) == 0 {
		return fmt.Errorf("%w: no cards selected", ErrInvalidSelection)
	}

	if err := s.validateSelection(indices); err != nil {
		return err
	}
	discarded := s.removeFromHand(indices)
	s.discardPile = append(s.discardPile, discarded...)
	s.discardsLeft--
	s.recorder.Record(Event{
		Type:   EventCardsDiscarded,
		Turn:   s.tracker.PlayerTurn() + 1,
		Actor:  s.player.Name,
		Amount: len(discarded),
	})

	for _, inst := range s.resolver.ResolveDiscard(discarded) {
		if inst.Kind == InstructionHandMutation && inst.Card != nil {
			s.hand = append(s.hand, *inst.Card)
			s.recorder.Record(Event{
				Type:   EventHandMutation,
				Turn:   s.tracker.PlayerTurn() + 1,
				Actor:  s.player.Name,
				Detail: inst.Card.String(),
			})
		}
	}

	return s.topUpHand()
}

// MagicianSwap swaps the hand card at the index with the top of the deck.
// Requires a card-swap companion; once per turn.
func (s *Session) MagicianSwap(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.outcome != OutcomeNone || s.tracker.Phase() != rules.PhasePlayerTurnStart {
		return fmt.Errorf("%w: swap in phase %s", ErrIllegalStateTransition, s.tracker.Phase())
	}
	if !s.roster.Has(CapabilityCardSwap) {
		return fmt.Errorf("%w: no card-swap companion", ErrInvalidSelection)
	}
	if s.swapUsed {
		return fmt.Errorf("%w: swap already used this turn", ErrInvalidSelection)
	}
	if index < 0 || index >= len(s.hand) {
		return fmt.Errorf("%w: index %d", ErrInvalidSelection, index)
	}

	drawn, err := s.drawCards(1)
	if err != nil {
		return err
	}
	old := s.hand[index]
	s.hand[index] = drawn[0]
	s.discardPile = append(s.discardPile, old)
	s.swapUsed = true
	s.recorder.Record(Event{
		Type:   EventHandMutation,
		Turn:   s.tracker.PlayerTurn() + 1,
		Actor:  s.player.Name,
		Detail: fmt.Sprintf("swap %s for %s", old, drawn[0]),
	})
	return nil
}

// NecromancerRetrieve moves the discard-pile card at the index back into the
// hand. Requires a card-retrieve companion; once per turn.
func (s *Session) NecromancerRetrieve(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.outcome != OutcomeNone || s.tracker.Phase() != rules.PhasePlayerTurnStart {
		return fmt.Errorf("%w: retrieve in phase %s", ErrIllegalStateTransition, s.tracker.Phase())
	}
	if !s.roster.Has(CapabilityCardRetrieve) {
		return fmt.Errorf("%w: no card-retrieve companion", ErrInvalidSelection)
	}
	if s.retrieveUsed {
		return fmt.Errorf("%w: retrieve already used this turn", ErrInvalidSelection)
	}
	if index < 0 || index >= len(s.discardPile) {
		return fmt.Errorf("%w: index %d", ErrInvalidSelection, index)
	}

	c := s.discardPile[index]
	s.discardPile = append(s.discardPile[:index], s.discardPile[index+1:]...)
	s.hand = append(s.hand, c)
	s.retrieveUsed = true
	s.recorder.Record(Event{
		Type:   EventHandMutation,
		Turn:   s.tracker.PlayerTurn() + 1,
		Actor:  s.player.Name,
		Detail: fmt.Sprintf("retrieve %s", c),
	})
	return nil
}

// tickCombatant advances a combatant's effects at the start of its turn.
func (s *Session) tickCombatant(c *Combatant, turn int) {
	res := c.TickEffects()
	if res.PoisonDamage > 0 {
		s.recorder.Record(Event{Type: EventPoisonTick, Turn: turn, Target: c.Name, Amount: res.PoisonDamage})
	}
	for _, exp := range res.Expired {
		s.recorder.Record(Event{Type: EventEffectExpired, Turn: turn, Target: c.Name, Detail: exp.Kind.String()})
	}
}

// applyInstructions applies the resolver's ordered output and returns the
// total damage dealt to the defender.
func (s *Session) applyInstructions(instructions []Instruction, turn int) int {
	dealt := 0
	for _, inst := range instructions {
		switch inst.Kind {
		case InstructionDamage:
			amount := inst.Amount
			if s.pendingBonus > 0 {
				amount += s.pendingBonus
				s.pendingBonus = 0
			}
			amount = s.player.Effects.BuffOutgoing(amount)
			m := s.enemy.TakeDamage(amount)
			dealt += m.Final
			if m.Absorbed > 0 {
				s.recorder.Record(Event{Type: EventDamageAbsorbed, Turn: turn, Target: s.enemy.Name, Amount: m.Absorbed})
			}
			s.recorder.Record(Event{
				Type:   EventDamageDealt,
				Turn:   turn,
				Actor:  s.player.Name,
				Target: s.enemy.Name,
				Amount: m.Final,
				Detail: inst.Note,
			})
		case InstructionHeal:
			target := s.targetOf(inst.Target)
			healed := target.HealHP(inst.Amount)
			s.recorder.Record(Event{Type: EventHealed, Turn: turn, Target: target.Name, Amount: healed, Detail: inst.Note})
		case InstructionApplyEffect:
			if inst.Effect == nil {
				continue
			}
			target := s.targetOf(inst.Target)
			if err := target.ApplyEffect(*inst.Effect); err != nil {
				// Effects built by the resolver never carry negative
				// magnitudes; log and skip rather than abort the turn.
				s.log.Error("effect rejected", zap.Error(err), zap.String("target", target.Name))
				continue
			}
			s.recorder.Record(Event{Type: EventEffectApplied, Turn: turn, Target: target.Name, Detail: inst.Effect.Kind.String()})
		case InstructionHandMutation:
			if inst.Card != nil {
				s.hand = append(s.hand, *inst.Card)
				s.recorder.Record(Event{Type: EventHandMutation, Turn: turn, Actor: s.player.Name, Detail: inst.Card.String()})
			}
		case InstructionDiscardBonus:
			s.discardLimit += inst.Amount
			s.recorder.Record(Event{Type: EventHandMutation, Turn: turn, Actor: s.player.Name, Detail: inst.Note})
		case InstructionAttackBonus:
			s.pendingBonus += inst.Amount
			s.recorder.Record(Event{Type: EventCompanionUsed, Turn: turn, Actor: s.player.Name, Detail: inst.Note})
		}
	}
	return dealt
}

func (s *Session) targetOf(side TargetSide) *Combatant {
	if side == TargetAttacker {
		return s.player
	}
	return s.enemy
}

// validateSelection checks the hand indices without mutating anything.
func (s *Session) validateSelection(indices []int) error {
	if len(indices) < 1 || len(indices) > 5 {
		return ErrInvalidHandSize
	}
	seen := make(map[int]struct{}, len(indices))
	for _, idx := range indices {
		if idx < 0 || idx >= len(s.hand) {
			return fmt.Errorf("%w: index %d", ErrInvalidSelection, idx)
		}
		if _, dup := seen[idx]; dup {
			return fmt.Errorf("%w: duplicate index %d", ErrInvalidSelection, idx)
		}
		seen[idx] = struct{}{}
	}
	return nil
}

// removeFromHand removes a validated selection from the hand in index order.
func (s *Session) removeFromHand(indices []int) []card.Card {
	taken := make([]card.Card, 0, len(indices))
	for _, idx := range indices {
		taken = append(taken, s.hand[idx])
	}

	// Remove descending so earlier indices stay valid.
	sorted := append([]int(nil), indices...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
	for _, idx := range sorted {
		s.hand = append(s.hand[:idx], s.hand[idx+1:]...)
	}
	return taken
}

// topUpHand draws until the hand holds its target size (hand size plus
// extra-draw companions).
func (s *Session) topUpHand() error {
	target := s.handSize + s.roster.ExtraDraws()
	if len(s.hand) >= target {
		return nil
	}
	drawn, err := s.drawCards(target - len(s.hand))
	if len(drawn) > 0 {
		s.hand = append(s.hand, drawn...)
		s.recorder.Record(Event{
			Type:   EventCardsDrawn,
			Turn:   s.tracker.PlayerTurn(),
			Actor:  s.player.Name,
			Amount: len(drawn),
		})
	}
	return err
}

// drawCards draws from the deck, reshuffling the discard pile back in when
// the deck runs dry. ErrEmptyDeckDraw surfaces only when both are exhausted.
func (s *Session) drawCards(count int) ([]card.Card, error) {
	var out []card.Card
	for count > 0 {
		drawn, err := s.deck.Draw(count)
		if err != nil {
			if len(s.discardPile) == 0 {
				return out, ErrEmptyDeckDraw
			}
			s.deck.Return(s.discardPile)
			s.discardPile = nil
			s.deck.Shuffle(s.shuffle)
			continue
		}
		out = append(out, drawn...)
		count -= len(drawn)
	}
	return out, nil
}

// backToPlayerTurn returns the machine to the player boundary and prepares
// the next player turn.
func (s *Session) backToPlayerTurn() error {
	if err := s.tracker.Advance(rules.PhasePlayerTurnStart); err != nil {
		return err
	}
	s.discardsLeft = s.discardLimit
	s.swapUsed = false
	s.retrieveUsed = false
	return nil
}

func (s *Session) endCombat(outcome Outcome, turn int) (*TurnResult, error) {
	if err := s.tracker.Advance(rules.PhaseCombatEnd); err != nil {
		return nil, err
	}
	s.outcome = outcome
	s.recorder.Record(Event{Type: EventCombatEnded, Turn: turn, Detail: outcome.String()})
	s.log.Info("combat ended",
		zap.String("session_id", s.id.String()),
		zap.String("outcome", outcome.String()),
		zap.Int("player_hp", s.player.HP),
		zap.Int("enemy_hp", s.enemy.HP),
	)
	return &TurnResult{Phase: s.tracker.Phase(), Outcome: outcome}, nil
}
