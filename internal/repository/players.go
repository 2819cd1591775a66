package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// PlayerMeta is the persistent per-player progression carried between runs.
type PlayerMeta struct {
	PlayerName       string
	RunsPlayed       int
	RunsWon          int
	TotalGoldEarned  int
	PermanentHPBonus int
}

// PlayerRepository stores player meta progression.
type PlayerRepository struct {
	db *DB
}

// NewPlayerRepository creates the repository over the shared pool.
func NewPlayerRepository(db *DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

// Get returns the player's meta, zero-valued for players never seen before.
func (r *PlayerRepository) Get(ctx context.Context, playerName string) (PlayerMeta, error) {
	meta := PlayerMeta{PlayerName: playerName}
	err := r.db.pool.QueryRow(ctx,
		`SELECT runs_played, runs_won, total_gold_earned, permanent_hp_bonus
		 FROM player_meta WHERE player_name = $1`,
		playerName,
	).Scan(&meta.RunsPlayed, &meta.RunsWon, &meta.TotalGoldEarned, &meta.PermanentHPBonus)
	if err == pgx.ErrNoRows {
		return meta, nil
	}
	if err != nil {
		return meta, fmt.Errorf("load meta for %s: %w", playerName, err)
	}
	return meta, nil
}

// RecordRun records one finished run: played count, won count when the run
// was a victory, and the gold earned along the way.
func (r *PlayerRepository) RecordRun(ctx context.Context, playerName string, won bool, goldEarned int) error {
	wonDelta := 0
	if won {
		wonDelta = 1
	}
	_, err := r.db.pool.Exec(ctx,
		`INSERT INTO player_meta (player_name, runs_played, runs_won, total_gold_earned)
		 VALUES ($1, 1, $2, $3)
		 ON CONFLICT (player_name) DO UPDATE SET
			runs_played       = player_meta.runs_played + 1,
			runs_won          = player_meta.runs_won + $2,
			total_gold_earned = player_meta.total_gold_earned + $3`,
		playerName, wonDelta, goldEarned,
	)
	if err != nil {
		return fmt.Errorf("record run for %s: %w", playerName, err)
	}
	return nil
}

// AddPermanentHP grants a permanent HP bonus applied to every future session.
func (r *PlayerRepository) AddPermanentHP(ctx context.Context, playerName string, amount int) error {
	if amount <= 0 {
		return fmt.Errorf("hp bonus must be positive, got %d", amount)
	}
	_, err := r.db.pool.Exec(ctx,
		`INSERT INTO player_meta (player_name, permanent_hp_bonus)
		 VALUES ($1, $2)
		 ON CONFLICT (player_name) DO UPDATE SET
			permanent_hp_bonus = player_meta.permanent_hp_bonus + $2`,
		playerName, amount,
	)
	if err != nil {
		return fmt.Errorf("add hp bonus for %s: %w", playerName, err)
	}
	return nil
}
