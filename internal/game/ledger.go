package game

import "time"

// TransactionKind categorizes a resource movement.
type TransactionKind string

const (
	TransactionProduction TransactionKind = "production"
	TransactionHarvest    TransactionKind = "harvest"
)

// Transaction records resources moving into or out of a territory container.
type Transaction struct {
	ID          string          `json:"id"`
	Kind        TransactionKind `json:"kind"`
	TerritoryID string          `json:"territoryId"`
	Faction     string          `json:"faction"` // Territory owner at the time
	Resource    ResourceType    `json:"resource"`
	Amount      float64         `json:"amount"`
	Source      string          `json:"source"`
	Destination string          `json:"destination"`
	Tick        uint64          `json:"tick"`
	Timestamp   time.Time       `json:"timestamp"`
}

// LedgerSink receives the transactions produced by territory updates. Like
// Notifier, it must not block the simulation.
type LedgerSink interface {
	RecordTransactions([]Transaction)
}

// LedgerFunc adapts a function to the LedgerSink interface.
type LedgerFunc func([]Transaction)

// RecordTransactions calls f(txs).
func (f LedgerFunc) RecordTransactions(txs []Transaction) { f(txs) }
