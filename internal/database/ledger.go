package database

import (
	"context"
	"database/sql"

	"kitten-defense/internal/game"
)

// LedgerTotal is the net amount of one resource moved for one faction.
type LedgerTotal struct {
	Faction  string            `json:"faction"`
	Resource game.ResourceType `json:"resource"`
	Amount   float64           `json:"amount"`
}

// AddTransactions stores a batch of ledger transactions in one commit.
func (db *DB) AddTransactions(matchID string, txs []game.Transaction) error {
	if len(txs) == 0 {
		return nil
	}

	ctx := context.Background()
	return db.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT OR IGNORE INTO resource_ledger
				(id, match_id, kind, territory_id, faction, resource, amount, source, destination, tick, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, t := range txs {
			_, err := stmt.ExecContext(ctx, t.ID, matchID, string(t.Kind), t.TerritoryID, t.Faction, string(t.Resource),
				t.Amount, t.Source, t.Destination, int64(t.Tick), t.Timestamp)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// LedgerTotals sums the ledger per faction and resource, ordered by faction
// then resource.
func (db *DB) LedgerTotals(matchID string) ([]LedgerTotal, error) {
	rows, err := db.conn.Query(`
		SELECT faction, resource, SUM(amount)
		FROM resource_ledger
		WHERE match_id = ?
		GROUP BY faction, resource
		ORDER BY faction ASC, resource ASC
	`, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var totals []LedgerTotal
	for rows.Next() {
		var t LedgerTotal
		if err := rows.Scan(&t.Faction, &t.Resource, &t.Amount); err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}
