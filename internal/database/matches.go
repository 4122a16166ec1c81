package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"kitten-defense/internal/game"
)

// MatchStatus represents the lifecycle of a match.
type MatchStatus string

const (
	MatchStatusRunning  MatchStatus = "running"
	MatchStatusFinished MatchStatus = "finished"
)

// Match is a persisted match record.
type Match struct {
	ID        string
	Name      string
	LayoutID  string
	Status    MatchStatus
	Config    game.Config
	CreatedAt time.Time
	EndedAt   *time.Time
}

// ErrMatchNotFound is returned when a match is not found.
var ErrMatchNotFound = errors.New("match not found")

// CreateMatch records a new running match.
func (db *DB) CreateMatch(name, layoutID string, cfg game.Config) (*Match, error) {
	id := uuid.New().String()

	configJSON, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	_, err = db.conn.Exec(`
		INSERT INTO matches (id, name, layout_id, status, config_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, name, layoutID, MatchStatusRunning, string(configJSON), now)
	if err != nil {
		return nil, err
	}

	return &Match{
		ID:        id,
		Name:      name,
		LayoutID:  layoutID,
		Status:    MatchStatusRunning,
		Config:    cfg,
		CreatedAt: now,
	}, nil
}

// GetMatch retrieves a match by ID.
func (db *DB) GetMatch(id string) (*Match, error) {
	var m Match
	var configJSON string
	var endedAt sql.NullTime

	err := db.conn.QueryRow(`
		SELECT id, name, layout_id, status, config_json, created_at, ended_at
		FROM matches WHERE id = ?
	`, id).Scan(&m.ID, &m.Name, &m.LayoutID, &m.Status, &configJSON, &m.CreatedAt, &endedAt)
	if err == sql.ErrNoRows {
		return nil, ErrMatchNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(configJSON), &m.Config); err != nil {
		return nil, err
	}
	if endedAt.Valid {
		m.EndedAt = &endedAt.Time
	}
	return &m, nil
}

// LatestRunningMatch returns the most recently created running match, if any.
func (db *DB) LatestRunningMatch() (*Match, error) {
	var id string
	err := db.conn.QueryRow(`
		SELECT id FROM matches WHERE status = ? ORDER BY created_at DESC LIMIT 1
	`, MatchStatusRunning).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, ErrMatchNotFound
	}
	if err != nil {
		return nil, err
	}
	return db.GetMatch(id)
}

// EndMatch marks a match as finished.
func (db *DB) EndMatch(id string) error {
	res, err := db.conn.Exec(`
		UPDATE matches SET status = ?, ended_at = ? WHERE id = ?
	`, MatchStatusFinished, time.Now(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrMatchNotFound
	}
	return nil
}
