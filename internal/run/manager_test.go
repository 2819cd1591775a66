package run

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gambition/combat-server-go/internal/game"
	"github.com/gambition/combat-server-go/internal/repository"
)

type fakeSessionStore struct {
	saved []repository.SessionRecord
}

func (s *fakeSessionStore) Save(_ context.Context, rec repository.SessionRecord) error {
	s.saved = append(s.saved, rec)
	return nil
}

type fakeMetaStore struct {
	metas    map[string]repository.PlayerMeta
	runs     []bool
	hpGrants []int
}

func newFakeMetaStore() *fakeMetaStore {
	return &fakeMetaStore{metas: make(map[string]repository.PlayerMeta)}
}

func (s *fakeMetaStore) Get(_ context.Context, playerName string) (repository.PlayerMeta, error) {
	meta := s.metas[playerName]
	meta.PlayerName = playerName
	return meta, nil
}

func (s *fakeMetaStore) RecordRun(_ context.Context, playerName string, won bool, goldEarned int) error {
	meta := s.metas[playerName]
	meta.RunsPlayed++
	if won {
		meta.RunsWon++
	}
	meta.TotalGoldEarned += goldEarned
	s.metas[playerName] = meta
	s.runs = append(s.runs, won)
	return nil
}

func (s *fakeMetaStore) AddPermanentHP(_ context.Context, playerName string, amount int) error {
	meta := s.metas[playerName]
	meta.PermanentHPBonus += amount
	s.metas[playerName] = meta
	s.hpGrants = append(s.hpGrants, amount)
	return nil
}

// winCurrentEncounter drops the current enemy to a sliver and plays one hand
// to finish the session as a victory.
func winCurrentEncounter(t *testing.T, r *Run) {
	t.Helper()
	sess := r.Session()
	sess.Enemy().HP = 1
	sess.Enemy().Defense = 0
	_, err := sess.SubmitPlayerAction([]int{0, 1, 2, 3, 4})
	require.NoError(t, err)
	require.Equal(t, game.OutcomePlayerVictory, sess.Outcome())
}

func TestStartRunCreatesFirstSession(t *testing.T) {
	m := NewManager(Config{Stages: 3}, nil, nil, nil)

	r, err := m.StartRun(context.Background(), "Arlo", nil, nil, 42)
	require.NoError(t, err)

	snap := r.Snapshot()
	assert.Equal(t, StateInProgress, snap.State)
	assert.Equal(t, 3, snap.Stages)
	assert.Zero(t, snap.Completed)
	require.NotNil(t, r.Session())
	assert.Equal(t, "Arlo", r.Session().Player().Name)
	assert.Equal(t, 1, m.Count())

	got, ok := m.Get(r.ID())
	assert.True(t, ok)
	assert.Same(t, r, got)
}

func TestStartRunRejectsEmptyPlayer(t *testing.T) {
	m := NewManager(Config{}, nil, nil, nil)
	_, err := m.StartRun(context.Background(), "", nil, nil, 1)
	assert.Error(t, err)
}

func TestStartRunAppliesPermanentHPBonus(t *testing.T) {
	meta := newFakeMetaStore()
	meta.metas["Arlo"] = repository.PlayerMeta{PermanentHPBonus: 15}
	m := NewManager(Config{Stages: 1, PlayerHP: 100}, nil, meta, nil)

	r, err := m.StartRun(context.Background(), "Arlo", nil, nil, 7)
	require.NoError(t, err)
	assert.Equal(t, 115, r.Session().Player().MaxHP)
}

func TestCompleteEncounterRequiresTerminalSession(t *testing.T) {
	m := NewManager(Config{Stages: 2}, nil, nil, nil)
	r, err := m.StartRun(context.Background(), "Arlo", nil, nil, 9)
	require.NoError(t, err)

	_, err = m.CompleteEncounter(context.Background(), r)
	assert.Error(t, err, "session still in progress")
}

func TestRunWonAfterAllStages(t *testing.T) {
	sessions := &fakeSessionStore{}
	meta := newFakeMetaStore()
	m := NewManager(Config{Stages: 2}, sessions, meta, nil)

	r, err := m.StartRun(context.Background(), "Arlo", nil, nil, 11)
	require.NoError(t, err)
	require.NoError(t, r.AddGold(30))

	winCurrentEncounter(t, r)
	next, err := m.CompleteEncounter(context.Background(), r)
	require.NoError(t, err)
	require.NotNil(t, next, "a second encounter follows the first victory")
	assert.Equal(t, StateInProgress, r.Snapshot().State)
	assert.Equal(t, 1, r.Snapshot().Completed)

	winCurrentEncounter(t, r)
	next, err = m.CompleteEncounter(context.Background(), r)
	require.NoError(t, err)
	assert.Nil(t, next)

	snap := r.Snapshot()
	assert.Equal(t, StateWon, snap.State)
	assert.Equal(t, 2, snap.Completed)
	assert.NotNil(t, snap.EndTime)

	// Both sessions archived, the run recorded as won, HP reward granted.
	require.Len(t, sessions.saved, 2)
	assert.Equal(t, "PLAYER_VICTORY", sessions.saved[0].Outcome)
	assert.Equal(t, []bool{true}, meta.runs)
	assert.Equal(t, []int{runVictoryHPReward}, meta.hpGrants)
	assert.Equal(t, 30, meta.metas["Arlo"].TotalGoldEarned)

	// A finished run rejects further encounter completion.
	_, err = m.CompleteEncounter(context.Background(), r)
	assert.Error(t, err)
}

func TestRunCarriesHealthBetweenEncounters(t *testing.T) {
	m := NewManager(Config{Stages: 2}, nil, nil, nil)
	r, err := m.StartRun(context.Background(), "Arlo", nil, nil, 13)
	require.NoError(t, err)

	r.Session().Player().HP = 64
	winCurrentEncounter(t, r)

	next, err := m.CompleteEncounter(context.Background(), r)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, 64, next.Player().HP, "health carries into the next encounter")
	assert.Equal(t, next, r.Session())
}

func TestRunLostOnDefeat(t *testing.T) {
	sessions := &fakeSessionStore{}
	meta := newFakeMetaStore()
	m := NewManager(Config{Stages: 3}, sessions, meta, nil)

	r, err := m.StartRun(context.Background(), "Arlo", nil, nil, 17)
	require.NoError(t, err)

	// A player at zero health is defeated by the turn-start tick.
	sess := r.Session()
	sess.Player().HP = 0
	_, err = sess.SubmitPlayerAction([]int{0})
	require.NoError(t, err)
	require.Equal(t, game.OutcomePlayerDefeat, sess.Outcome())

	next, err := m.CompleteEncounter(context.Background(), r)
	require.NoError(t, err)
	assert.Nil(t, next)

	snap := r.Snapshot()
	assert.Equal(t, StateLost, snap.State)
	assert.Equal(t, []bool{false}, meta.runs)
	assert.Empty(t, meta.hpGrants)
	require.Len(t, sessions.saved, 1)
	assert.Equal(t, "PLAYER_DEFEAT", sessions.saved[0].Outcome)
}

func TestRunAddGoldRejectsNegative(t *testing.T) {
	m := NewManager(Config{Stages: 1}, nil, nil, nil)
	r, err := m.StartRun(context.Background(), "Arlo", nil, nil, 19)
	require.NoError(t, err)
	assert.Error(t, r.AddGold(-5))
}

func TestManagerRemove(t *testing.T) {
	m := NewManager(Config{Stages: 1}, nil, nil, nil)
	r, err := m.StartRun(context.Background(), "Arlo", nil, nil, 23)
	require.NoError(t, err)
	require.Equal(t, 1, m.Count())
	require.Len(t, m.Snapshots(), 1)

	m.Remove(r.ID())
	assert.Zero(t, m.Count())
}
