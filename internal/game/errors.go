package game

import (
	"errors"

	"github.com/gambition/combat-server-go/internal/game/card"
	"github.com/gambition/combat-server-go/internal/game/effects"
	"github.com/gambition/combat-server-go/internal/game/poker"
)

// Structured error values surfaced by the combat core. Classification and
// resolver failures are returned to the caller; a stunned or skipped action
// is a normal transition outcome, never an error.
var (
	// ErrIllegalStateTransition reports an action submitted while the session
	// is terminal or waiting on the other side's turn.
	ErrIllegalStateTransition = errors.New("illegal combat state transition")

	// ErrInvalidSelection reports hand indices outside the current hand.
	ErrInvalidSelection = errors.New("invalid card selection")

	// ErrNoDiscardsLeft reports a discard attempted past the per-turn limit.
	ErrNoDiscardsLeft = errors.New("no discards left this turn")

	// Re-exported sentinels from the leaf packages so callers can match
	// every core error kind in one place.
	ErrInvalidHandSize   = poker.ErrInvalidHandSize
	ErrEmptyDeckDraw     = card.ErrEmptyDraw
	ErrNegativeMagnitude = effects.ErrNegativeMagnitude
)
