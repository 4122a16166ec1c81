package eventlog

import (
	"log"
	"path/filepath"
	"time"

	"kitten-defense/internal/game"
)

// CaptureEntry is one line of the capture log.
type CaptureEntry struct {
	Time          time.Time          `json:"ts"`
	MatchID       string             `json:"match_id"`
	TerritoryID   string             `json:"territory_id"`
	NewOwner      string             `json:"new_owner"`
	TerritoryType game.TerritoryType `json:"territory_type"`
}

// CaptureLog writes capture events to compressed JSONL. It implements
// game.Notifier; write failures are logged and dropped.
type CaptureLog struct {
	matchID string
	w       *JSONLZstdWriter
	logger  *log.Logger
}

// NewCaptureLog writes under dir/captures.
func NewCaptureLog(dir, matchID string, logger *log.Logger) *CaptureLog {
	if logger == nil {
		logger = log.Default()
	}
	return &CaptureLog{
		matchID: matchID,
		w:       NewJSONLZstdWriter(filepath.Join(dir, "captures"), "captures"),
		logger:  logger,
	}
}

// NotifyCapture appends ev to the log.
func (c *CaptureLog) NotifyCapture(ev game.CaptureEvent) {
	entry := CaptureEntry{
		Time:          c.w.now().UTC(),
		MatchID:       c.matchID,
		TerritoryID:   ev.TerritoryID,
		NewOwner:      ev.NewOwner,
		TerritoryType: ev.TerritoryType,
	}
	if err := c.w.Write(entry); err != nil {
		c.logger.Printf("Failed to write capture log entry for %s: %v", ev.TerritoryID, err)
	}
}

// Path returns the file currently being written.
func (c *CaptureLog) Path() string {
	return c.w.CurrentPath()
}

// Close flushes the log.
func (c *CaptureLog) Close() error {
	return c.w.Close()
}
