// Package run manages a player's campaign through a staged sequence of
// combat encounters and feeds the persistence layer with run results.
package run

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gambition/combat-server-go/internal/game"
	"github.com/gambition/combat-server-go/internal/game/enemy"
	"github.com/gambition/combat-server-go/internal/repository"
)

// State represents the state of a run.
type State int

const (
	StateInProgress State = iota
	StateWon
	StateLost
)

func (s State) String() string {
	switch s {
	case StateInProgress:
		return "IN_PROGRESS"
	case StateWon:
		return "WON"
	case StateLost:
		return "LOST"
	default:
		return "UNKNOWN"
	}
}

// Permanent HP granted for surviving every encounter of a run.
const runVictoryHPReward = 5

// SessionStore archives finished combat sessions.
type SessionStore interface {
	Save(ctx context.Context, rec repository.SessionRecord) error
}

// MetaStore persists per-player progression between runs.
type MetaStore interface {
	Get(ctx context.Context, playerName string) (repository.PlayerMeta, error)
	RecordRun(ctx context.Context, playerName string, won bool, goldEarned int) error
	AddPermanentHP(ctx context.Context, playerName string, amount int) error
}

// Config carries the combat tuning applied to every session of a run.
type Config struct {
	PlayerHP     int
	HandSize     int
	DiscardLimit int
	Stages       int
}

// Snapshot captures a consistent view of a run for external use.
type Snapshot struct {
	ID         string
	PlayerName string
	State      State
	Stages     int
	Completed  int
	GoldEarned int
	CreateTime time.Time
	EndTime    *time.Time
}

// Run is one player's campaign: a queue of encounters played as consecutive
// combat sessions, with health carried between them.
type Run struct {
	id         uuid.UUID
	playerName string
	state      State
	stages     int
	completed  int
	goldEarned int
	createTime time.Time
	endTime    *time.Time

	companionKeys []string
	tarotKeys     []string
	cfg           Config
	hpBonus       int
	seed          int64

	encounters *enemy.EncounterManager
	session    *game.Session

	logger *zap.Logger
	mu     sync.Mutex
}

// ID returns the run identifier.
func (r *Run) ID() uuid.UUID {
	return r.id
}

// Session returns the combat session for the current encounter.
func (r *Run) Session() *game.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session
}

// Snapshot returns a consistent copy of the run's state.
func (r *Run) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Snapshot{
		ID:         r.id.String(),
		PlayerName: r.playerName,
		State:      r.state,
		Stages:     r.stages,
		Completed:  r.completed,
		GoldEarned: r.goldEarned,
		CreateTime: r.createTime,
		EndTime:    r.endTime,
	}
}

// AddGold credits gold earned by the player outside combat. The world layer
// owns the economy; the run only keeps the tally for the final record.
func (r *Run) AddGold(amount int) error {
	if amount < 0 {
		return fmt.Errorf("gold amount must not be negative, got %d", amount)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.goldEarned += amount
	return nil
}

func (r *Run) newSession(def enemy.Definition, carriedHP int) (*game.Session, error) {
	sess, err := game.NewSession(game.Config{
		Seed:          r.seed + int64(r.completed),
		PlayerName:    r.playerName,
		PlayerMaxHP:   r.cfg.PlayerHP,
		PlayerHPBonus: r.hpBonus,
		HandSize:      r.cfg.HandSize,
		DiscardLimit:  r.cfg.DiscardLimit,
		CompanionKeys: r.companionKeys,
		TarotKeys:     r.tarotKeys,
		Enemy:         def,
		Logger:        r.logger,
	})
	if err != nil {
		return nil, err
	}
	if carriedHP > 0 && carriedHP < sess.Player().MaxHP {
		// Health carries between encounters of a run.
		sess.Player().HP = carriedHP
	}
	return sess, nil
}

// Manager tracks every active run.
type Manager struct {
	runs     map[uuid.UUID]*Run
	cfg      Config
	sessions SessionStore
	meta     MetaStore
	logger   *zap.Logger
	mu       sync.RWMutex
}

// NewManager creates a run manager. sessions and meta may be nil: the runs
// then play without persistence.
func NewManager(cfg Config, sessions SessionStore, meta MetaStore, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Stages <= 0 {
		cfg.Stages = 5
	}
	return &Manager{
		runs:     make(map[uuid.UUID]*Run),
		cfg:      cfg,
		sessions: sessions,
		meta:     meta,
		logger:   logger,
	}
}

// StartRun begins a run for the player: the encounter queue is drawn from the
// seed, the player's permanent HP bonus is loaded from the meta store, and
// the first combat session starts immediately.
func (m *Manager) StartRun(ctx context.Context, playerName string, companionKeys, tarotKeys []string, seed int64) (*Run, error) {
	if playerName == "" {
		return nil, fmt.Errorf("player name must not be empty")
	}

	hpBonus := 0
	if m.meta != nil {
		meta, err := m.meta.Get(ctx, playerName)
		if err != nil {
			return nil, fmt.Errorf("load player meta: %w", err)
		}
		hpBonus = meta.PermanentHPBonus
	}

	r := &Run{
		id:            uuid.New(),
		playerName:    playerName,
		state:         StateInProgress,
		stages:        m.cfg.Stages,
		createTime:    time.Now(),
		companionKeys: companionKeys,
		tarotKeys:     tarotKeys,
		cfg:           m.cfg,
		hpBonus:       hpBonus,
		seed:          seed,
		encounters:    enemy.NewEncounterManager(m.cfg.Stages, rand.New(rand.NewSource(seed))),
		logger:        m.logger,
	}

	first, ok := r.encounters.Next()
	if !ok {
		return nil, fmt.Errorf("encounter queue is empty")
	}
	sess, err := r.newSession(first, 0)
	if err != nil {
		return nil, err
	}
	r.session = sess

	m.mu.Lock()
	m.runs[r.id] = r
	m.mu.Unlock()

	m.logger.Info("run started",
		zap.String("run_id", r.id.String()),
		zap.String("player", playerName),
		zap.Int("stages", r.stages),
		zap.Int("hp_bonus", hpBonus),
	)
	return r, nil
}

// Get returns the run by ID.
func (m *Manager) Get(id uuid.UUID) (*Run, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.runs[id]
	return r, ok
}

// Remove drops a run from the manager.
func (m *Manager) Remove(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.runs, id)
}

// Count reports the number of tracked runs.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.runs)
}

// Snapshots returns a snapshot of every tracked run.
func (m *Manager) Snapshots() []Snapshot {
	m.mu.RLock()
	runs := make([]*Run, 0, len(m.runs))
	for _, r := range m.runs {
		runs = append(runs, r)
	}
	m.mu.RUnlock()

	out := make([]Snapshot, 0, len(runs))
	for _, r := range runs {
		out = append(out, r.Snapshot())
	}
	return out
}

// CompleteEncounter consumes the terminal outcome of the run's current
// session: it archives the session, then either starts the next encounter
// (carrying the player's remaining health), finishes the run as won when the
// queue is empty, or finishes it as lost on a defeat. It returns the next
// session, or nil when the run ended.
func (m *Manager) CompleteEncounter(ctx context.Context, r *Run) (*game.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateInProgress {
		return nil, fmt.Errorf("run %s already finished as %s", r.id, r.state)
	}
	sess := r.session
	outcome := sess.Outcome()
	if outcome == game.OutcomeNone {
		return nil, fmt.Errorf("current session %s is still in progress", sess.ID())
	}

	m.archiveSession(ctx, r, sess, outcome)

	if outcome == game.OutcomePlayerDefeat {
		return nil, m.finishRun(ctx, r, StateLost)
	}

	r.completed++
	next, ok := r.encounters.Next()
	if !ok {
		return nil, m.finishRun(ctx, r, StateWon)
	}

	nextSess, err := r.newSession(next, sess.Player().HP)
	if err != nil {
		return nil, fmt.Errorf("start next encounter: %w", err)
	}
	r.session = nextSess
	m.logger.Info("next encounter started",
		zap.String("run_id", r.id.String()),
		zap.String("enemy", next.Name),
		zap.Int("completed", r.completed),
		zap.Int("remaining", r.encounters.Remaining()),
	)
	return nextSess, nil
}

// archiveSession persists the finished session, logging and continuing on
// failure: losing an archive row never aborts a run.
func (m *Manager) archiveSession(ctx context.Context, r *Run, sess *game.Session, outcome game.Outcome) {
	if m.sessions == nil {
		return
	}
	rec := repository.SessionRecord{
		ID:          sess.ID(),
		PlayerName:  r.playerName,
		EnemyName:   sess.Enemy().Name,
		Outcome:     outcome.String(),
		Turns:       sess.Turn(),
		PlayerHP:    sess.Player().HP,
		DamageDealt: sess.Enemy().MaxHP - sess.Enemy().HP,
		DamageTaken: sess.Player().MaxHP - sess.Player().HP,
		EndedAt:     time.Now(),
	}
	if err := m.sessions.Save(ctx, rec); err != nil {
		m.logger.Error("failed to archive session",
			zap.String("session_id", sess.ID().String()),
			zap.Error(err),
		)
	}
}

func (m *Manager) finishRun(ctx context.Context, r *Run, state State) error {
	r.state = state
	now := time.Now()
	r.endTime = &now

	if m.meta != nil {
		won := state == StateWon
		if err := m.meta.RecordRun(ctx, r.playerName, won, r.goldEarned); err != nil {
			m.logger.Error("failed to record run", zap.String("run_id", r.id.String()), zap.Error(err))
		}
		if won {
			if err := m.meta.AddPermanentHP(ctx, r.playerName, runVictoryHPReward); err != nil {
				m.logger.Error("failed to grant hp reward", zap.String("run_id", r.id.String()), zap.Error(err))
			}
		}
	}

	m.logger.Info("run finished",
		zap.String("run_id", r.id.String()),
		zap.String("player", r.playerName),
		zap.String("state", state.String()),
		zap.Int("completed", r.completed),
		zap.Int("gold_earned", r.goldEarned),
	)
	return nil
}
