package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SessionRecord is the archived form of a finished combat session.
type SessionRecord struct {
	ID          uuid.UUID
	PlayerName  string
	EnemyName   string
	Outcome     string
	Turns       int
	PlayerHP    int
	DamageDealt int
	DamageTaken int
	EndedAt     time.Time
}

// SessionArchive stores finished sessions.
type SessionArchive struct {
	db *DB
}

// NewSessionArchive creates the archive over the shared pool.
func NewSessionArchive(db *DB) *SessionArchive {
	return &SessionArchive{db: db}
}

// Save archives one finished session. Saving the same session twice is a
// no-op: results are immutable once recorded.
func (a *SessionArchive) Save(ctx context.Context, rec SessionRecord) error {
	_, err := a.db.pool.Exec(ctx,
		`INSERT INTO combat_sessions
			(id, player_name, enemy_name, outcome, turns, player_hp, damage_dealt, damage_taken, ended_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (id) DO NOTHING`,
		rec.ID, rec.PlayerName, rec.EnemyName, rec.Outcome, rec.Turns,
		rec.PlayerHP, rec.DamageDealt, rec.DamageTaken, rec.EndedAt,
	)
	if err != nil {
		return fmt.Errorf("archive session %s: %w", rec.ID, err)
	}
	return nil
}

// RecentByPlayer returns a player's most recent sessions, newest first.
func (a *SessionArchive) RecentByPlayer(ctx context.Context, playerName string, limit int) ([]SessionRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := a.db.pool.Query(ctx,
		`SELECT id, player_name, enemy_name, outcome, turns, player_hp, damage_dealt, damage_taken, ended_at
		 FROM combat_sessions
		 WHERE player_name = $1
		 ORDER BY ended_at DESC
		 LIMIT $2`,
		playerName, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query sessions for %s: %w", playerName, err)
	}
	defer rows.Close()

	var out []SessionRecord
	for rows.Next() {
		var rec SessionRecord
		if err := rows.Scan(&rec.ID, &rec.PlayerName, &rec.EnemyName, &rec.Outcome,
			&rec.Turns, &rec.PlayerHP, &rec.DamageDealt, &rec.DamageTaken, &rec.EndedAt); err != nil {
			return nil, fmt.Errorf("scan session row: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
