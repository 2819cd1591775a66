package rules

import "testing"

func TestPhaseNames(t *testing.T) {
	if PhasePlayerTurnStart.String() != "PLAYER_TURN_START" {
		t.Errorf("unexpected name: %s", PhasePlayerTurnStart)
	}
	if !PhaseCombatEnd.Terminal() {
		t.Error("combat end must be terminal")
	}
	if PhasePlayerAction.Terminal() {
		t.Error("action phase must not be terminal")
	}
}

func TestLegalTransitions(t *testing.T) {
	legal := []struct{ from, to Phase }{
		{PhasePlayerTurnStart, PhasePlayerAction},
		{PhasePlayerAction, PhaseEnemyTurnStart},
		{PhasePlayerAction, PhaseCombatEnd},
		{PhaseEnemyTurnStart, PhaseEnemyAction},
		{PhaseEnemyAction, PhasePlayerTurnStart},
		{PhaseEnemyAction, PhaseCombatEnd},
	}
	for _, tr := range legal {
		if !CanTransition(tr.from, tr.to) {
			t.Errorf("expected %s -> %s to be legal", tr.from, tr.to)
		}
	}

	illegal := []struct{ from, to Phase }{
		{PhasePlayerTurnStart, PhaseEnemyTurnStart},
		{PhaseEnemyTurnStart, PhasePlayerAction},
		{PhaseCombatEnd, PhasePlayerTurnStart},
		{PhaseCombatEnd, PhaseCombatEnd},
		{PhasePlayerAction, PhasePlayerAction},
	}
	for _, tr := range illegal {
		if CanTransition(tr.from, tr.to) {
			t.Errorf("expected %s -> %s to be illegal", tr.from, tr.to)
		}
	}
}

func TestTurnTrackerCounters(t *testing.T) {
	tracker := NewTurnTracker()
	if tracker.Phase() != PhasePlayerTurnStart {
		t.Fatalf("expected initial phase PLAYER_TURN_START, got %s", tracker.Phase())
	}

	if err := tracker.BeginPlayerTurn(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tracker.PlayerTurn() != 1 {
		t.Errorf("expected player turn 1, got %d", tracker.PlayerTurn())
	}

	if err := tracker.Advance(PhaseEnemyTurnStart); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tracker.BeginEnemyTurn(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tracker.EnemyTurn() != 1 {
		t.Errorf("expected enemy turn 1, got %d", tracker.EnemyTurn())
	}

	if err := tracker.Advance(PhasePlayerTurnStart); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tracker.BeginPlayerTurn(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tracker.PlayerTurn() != 2 {
		t.Errorf("expected player turn 2, got %d", tracker.PlayerTurn())
	}
}

func TestTurnTrackerRejectsIllegalAdvance(t *testing.T) {
	tracker := NewTurnTracker()
	if err := tracker.Advance(PhaseEnemyAction); err == nil {
		t.Error("expected error for illegal transition")
	}
	if tracker.Phase() != PhasePlayerTurnStart {
		t.Errorf("failed advance must not change phase, got %s", tracker.Phase())
	}

	tracker.BeginPlayerTurn()
	tracker.Advance(PhaseCombatEnd)
	if err := tracker.Advance(PhasePlayerTurnStart); err == nil {
		t.Error("terminal phase must reject all transitions")
	}
}
