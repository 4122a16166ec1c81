package sim

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"kitten-defense/internal/game"
)

// Checkpointer persists the registry at a tick.
type Checkpointer interface {
	Checkpoint(tick uint64) error
}

// LoopConfig configures a Loop.
type LoopConfig struct {
	TickRateHz         int
	SnapshotEveryTicks int // 0 disables periodic checkpoints
	Checkpointer       Checkpointer
	Logger             *log.Logger
}

// Loop advances every territory once per tick with the units reported since
// the previous tick.
type Loop struct {
	reg    *game.Registry
	roster *Roster
	cfg    LoopConfig
	logger *log.Logger

	tick atomic.Uint64
}

// NewLoop creates a loop over reg. A non-positive tick rate defaults to 5 Hz.
func NewLoop(reg *game.Registry, roster *Roster, cfg LoopConfig) *Loop {
	if cfg.TickRateHz <= 0 {
		cfg.TickRateHz = 5
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Loop{reg: reg, roster: roster, cfg: cfg, logger: logger}
}

// Tick returns the number of completed ticks.
func (l *Loop) Tick() uint64 {
	return l.tick.Load()
}

// SetTick resumes counting from a restored checkpoint.
func (l *Loop) SetTick(tick uint64) {
	l.tick.Store(tick)
	l.reg.SetTick(tick)
}

// Step runs one tick synchronously and returns its number. Transactions
// produced during the tick are stamped with that number.
func (l *Loop) Step() uint64 {
	tick := l.tick.Load() + 1
	l.reg.SetTick(tick)
	for _, id := range l.reg.IDs() {
		l.reg.UpdateTerritory(id, l.roster.Take(id))
	}
	l.tick.Store(tick)

	every := uint64(l.cfg.SnapshotEveryTicks)
	if l.cfg.Checkpointer != nil && every > 0 && tick%every == 0 {
		if err := l.cfg.Checkpointer.Checkpoint(tick); err != nil {
			l.logger.Printf("Checkpoint at tick %d failed: %v", tick, err)
		}
	}
	return tick
}

// Run ticks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / time.Duration(l.cfg.TickRateHz))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			l.Step()
		}
	}
}
