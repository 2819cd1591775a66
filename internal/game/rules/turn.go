// Package rules defines the combat turn state machine: the closed set of
// phases and the legal transitions between them.
package rules

import "fmt"

// Phase represents a state of the combat turn machine.
type Phase int

const (
	PhasePlayerTurnStart Phase = iota
	PhasePlayerAction
	PhaseEnemyTurnStart
	PhaseEnemyAction
	PhaseCombatEnd
)

var phaseNames = map[Phase]string{
	PhasePlayerTurnStart: "PLAYER_TURN_START",
	PhasePlayerAction:    "PLAYER_ACTION",
	PhaseEnemyTurnStart:  "ENEMY_TURN_START",
	PhaseEnemyAction:     "ENEMY_ACTION",
	PhaseCombatEnd:       "COMBAT_END",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PHASE_%d", int(p))
}

// Terminal reports whether the phase ends the session.
func (p Phase) Terminal() bool {
	return p == PhaseCombatEnd
}

// legalTransitions enumerates every permitted phase edge. Anything else is a
// misuse of the session API.
var legalTransitions = map[Phase][]Phase{
	PhasePlayerTurnStart: {PhasePlayerAction},
	// A stunned player skips straight past the enemy turn boundary; a lethal
	// hand ends combat from the action phase.
	PhasePlayerAction:   {PhaseEnemyTurnStart, PhaseCombatEnd},
	PhaseEnemyTurnStart: {PhaseEnemyAction},
	PhaseEnemyAction:    {PhasePlayerTurnStart, PhaseCombatEnd},
	PhaseCombatEnd:      {},
}

// CanTransition reports whether moving from one phase to another is legal.
func CanTransition(from, to Phase) bool {
	for _, next := range legalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TurnTracker tracks the current phase and the per-side turn counters. The
// player's counter increments at the start of each of its turns, which the
// per-turn damage ramp companions read.
type TurnTracker struct {
	phase       Phase
	playerTurns int
	enemyTurns  int
}

// NewTurnTracker starts a tracker at the initial phase.
func NewTurnTracker() *TurnTracker {
	return &TurnTracker{phase: PhasePlayerTurnStart}
}

// Phase returns the current phase.
func (t *TurnTracker) Phase() Phase {
	return t.phase
}

// PlayerTurn returns the player's turn counter (1-based once combat starts).
func (t *TurnTracker) PlayerTurn() int {
	return t.playerTurns
}

// EnemyTurn returns the enemy's turn counter.
func (t *TurnTracker) EnemyTurn() int {
	return t.enemyTurns
}

// BeginPlayerTurn increments the player turn counter and moves to the action
// phase.
func (t *TurnTracker) BeginPlayerTurn() error {
	if err := t.Advance(PhasePlayerAction); err != nil {
		return err
	}
	t.playerTurns++
	return nil
}

// BeginEnemyTurn increments the enemy turn counter and moves to the enemy
// action phase.
func (t *TurnTracker) BeginEnemyTurn() error {
	if err := t.Advance(PhaseEnemyAction); err != nil {
		return err
	}
	t.enemyTurns++
	return nil
}

// Advance moves the tracker to the given phase, rejecting illegal edges.
func (t *TurnTracker) Advance(to Phase) error {
	if !CanTransition(t.phase, to) {
		return fmt.Errorf("illegal phase transition %s -> %s", t.phase, to)
	}
	t.phase = to
	return nil
}
