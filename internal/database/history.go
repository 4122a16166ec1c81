package database

import (
	"time"

	"kitten-defense/internal/game"
)

// CaptureRecord is a single ownership transfer in the history log.
type CaptureRecord struct {
	ID            int64     `json:"id"`
	MatchID       string    `json:"match_id"`
	TerritoryID   string    `json:"territory_id"`
	NewOwner      string    `json:"new_owner"`
	TerritoryType string    `json:"territory_type"`
	CreatedAt     time.Time `json:"created_at"`
}

// AddCapture appends a capture event to the match history.
func (db *DB) AddCapture(matchID string, ev game.CaptureEvent) error {
	_, err := db.conn.Exec(`
		INSERT INTO capture_history (match_id, territory_id, new_owner, territory_type, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, matchID, ev.TerritoryID, ev.NewOwner, string(ev.TerritoryType), time.Now())
	return err
}

// GetTerritoryHistory retrieves all captures of one territory, oldest first.
func (db *DB) GetTerritoryHistory(matchID, territoryID string) ([]*CaptureRecord, error) {
	return db.queryCaptures(`
		SELECT id, match_id, territory_id, new_owner, territory_type, created_at
		FROM capture_history
		WHERE match_id = ? AND territory_id = ?
		ORDER BY id ASC
	`, matchID, territoryID)
}

// GetCaptureHistorySince retrieves captures after a given ID (for incremental updates).
func (db *DB) GetCaptureHistorySince(matchID string, afterID int64) ([]*CaptureRecord, error) {
	return db.queryCaptures(`
		SELECT id, match_id, territory_id, new_owner, territory_type, created_at
		FROM capture_history
		WHERE match_id = ? AND id > ?
		ORDER BY id ASC
	`, matchID, afterID)
}

func (db *DB) queryCaptures(query string, args ...any) ([]*CaptureRecord, error) {
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*CaptureRecord
	for rows.Next() {
		r := &CaptureRecord{}
		if err := rows.Scan(&r.ID, &r.MatchID, &r.TerritoryID, &r.NewOwner, &r.TerritoryType, &r.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
