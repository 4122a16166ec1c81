package database

import (
	"log"
	"sync"
	"sync/atomic"

	"kitten-defense/internal/game"
)

// Recorder persists capture events and ledger transactions of one match from
// a single writer goroutine. It implements game.Notifier and game.LedgerSink
// and never blocks the caller: when the queue is full, work is dropped.
type Recorder struct {
	db      *DB
	matchID string
	logger  *log.Logger

	ch      chan recordReq
	wg      sync.WaitGroup
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Uint64
}

type recordReq struct {
	capture *game.CaptureEvent
	txs     []game.Transaction
}

// NewRecorder starts a writer for matchID.
func NewRecorder(db *DB, matchID string, buffer int, logger *log.Logger) *Recorder {
	if buffer <= 0 {
		buffer = 1024
	}
	if logger == nil {
		logger = log.Default()
	}
	r := &Recorder{
		db:      db,
		matchID: matchID,
		logger:  logger,
		ch:      make(chan recordReq, buffer),
	}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.loop()
	}()
	return r
}

func (r *Recorder) loop() {
	for req := range r.ch {
		if req.capture != nil {
			if err := r.db.AddCapture(r.matchID, *req.capture); err != nil {
				r.logger.Printf("Failed to record capture of %s: %v", req.capture.TerritoryID, err)
			}
		}
		if len(req.txs) > 0 {
			if err := r.db.AddTransactions(r.matchID, req.txs); err != nil {
				r.logger.Printf("Failed to record %d ledger transactions: %v", len(req.txs), err)
			}
		}
	}
}

func (r *Recorder) enqueue(req recordReq) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		r.dropped.Add(1)
		return
	}
	select {
	case r.ch <- req:
	default:
		// Drop if the writer falls behind; the event log remains the source of truth.
		r.dropped.Add(1)
	}
}

// NotifyCapture queues a capture event for storage.
func (r *Recorder) NotifyCapture(ev game.CaptureEvent) {
	r.enqueue(recordReq{capture: &ev})
}

// RecordTransactions queues ledger transactions for storage.
func (r *Recorder) RecordTransactions(txs []game.Transaction) {
	batch := append([]game.Transaction(nil), txs...)
	r.enqueue(recordReq{txs: batch})
}

// Dropped returns how many requests were discarded.
func (r *Recorder) Dropped() uint64 {
	return r.dropped.Load()
}

// Close flushes queued work and stops the writer. The database stays open.
func (r *Recorder) Close() {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.ch)
	}
	r.mu.Unlock()
	r.wg.Wait()
}
