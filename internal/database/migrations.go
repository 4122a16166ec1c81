package database

type migration struct {
	id   int
	name string
	sql  string
}

var migrations = []migration{
	{
		id:   1,
		name: "initial_schema",
		sql: `
			-- Matches table: one row per simulated match
			CREATE TABLE matches (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				layout_id TEXT NOT NULL,
				status TEXT NOT NULL DEFAULT 'running',
				config_json TEXT NOT NULL,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				ended_at DATETIME
			);
			CREATE INDEX idx_matches_status ON matches(status);

			-- Capture history: one row per ownership transfer
			CREATE TABLE capture_history (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				match_id TEXT NOT NULL,
				territory_id TEXT NOT NULL,
				new_owner TEXT NOT NULL,
				territory_type TEXT NOT NULL,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				FOREIGN KEY (match_id) REFERENCES matches(id) ON DELETE CASCADE
			);
			CREATE INDEX idx_capture_history_territory ON capture_history(match_id, territory_id);
		`,
	},
	{
		id:   2,
		name: "add_resource_ledger",
		sql: `
			-- Resource ledger: production and harvest transactions
			CREATE TABLE resource_ledger (
				id TEXT PRIMARY KEY,
				match_id TEXT NOT NULL,
				kind TEXT NOT NULL,
				territory_id TEXT NOT NULL,
				faction TEXT NOT NULL,
				resource TEXT NOT NULL,
				amount REAL NOT NULL,
				source TEXT,
				destination TEXT,
				tick INTEGER NOT NULL DEFAULT 0,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				FOREIGN KEY (match_id) REFERENCES matches(id) ON DELETE CASCADE
			);
			CREATE INDEX idx_resource_ledger_faction ON resource_ledger(match_id, faction, resource);
		`,
	},
}
