// Package driver is a headless client that drives a territory server from
// outside: it reports scripted squads of units around target territories
// every tick and records the captures the server announces.
package driver

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"math/rand"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"kitten-defense/internal/game"
	"kitten-defense/internal/protocol"
)

// ErrNoTerritories is returned when the server has none of the targets.
var ErrNoTerritories = errors.New("no target territories on server")

// Squad is a group of units of one faction sent to every target.
type Squad struct {
	Faction string
	Size    int
	Role    game.UnitRole
}

// Config holds driver configuration.
type Config struct {
	Server   string
	TickRate time.Duration
	Ticks    int      // Stop after this many ticks, 0 runs until cancelled
	Targets  []string // Territory IDs, empty targets every territory
	Squads   []Squad
	Spread   float64 // Max distance of a unit from the territory center
	Seed     int64
}

// Driver runs a scripted skirmish against a server.
type Driver struct {
	cfg    Config
	net    *Network
	logger *log.Logger
	rng    *rand.Rand

	mu          sync.Mutex
	territories map[string]game.Territory
	captures    []protocol.TerritoryCapturedPayload
	listed      chan struct{}
	listOnce    sync.Once
	errors      atomic.Int64
}

// New creates a driver.
func New(cfg Config, logger *log.Logger) *Driver {
	if logger == nil {
		logger = log.Default()
	}
	if cfg.TickRate <= 0 {
		cfg.TickRate = 200 * time.Millisecond
	}
	if cfg.Spread <= 0 {
		cfg.Spread = 10
	}
	d := &Driver{
		cfg:         cfg,
		net:         NewNetwork(logger),
		logger:      logger,
		rng:         rand.New(rand.NewSource(cfg.Seed)),
		territories: make(map[string]game.Territory),
		listed:      make(chan struct{}),
	}
	d.net.OnMessage = d.handleMessage
	d.net.OnDisconnect = func(err error) {
		if err != nil {
			d.logger.Printf("Disconnected: %v", err)
		}
	}
	return d
}

// Run connects, fetches the territory list and reports squads every tick
// until ctx is done or the tick budget is used. Each tick is one
// report_units_batch message whatever the number of targets.
func (d *Driver) Run(ctx context.Context) error {
	if err := d.net.Connect(ctx, d.cfg.Server); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer d.net.Disconnect()

	if err := d.net.SendPayload(protocol.TypeListTerritories, struct{}{}); err != nil {
		return err
	}

	select {
	case <-d.listed:
	case <-time.After(5 * time.Second):
		return errors.New("timed out waiting for territory list")
	case <-ctx.Done():
		return ctx.Err()
	}

	targets := d.targets()
	if len(targets) == 0 {
		return ErrNoTerritories
	}
	d.logger.Printf("Driving %d squads against %d territories", len(d.cfg.Squads), len(targets))

	ticker := time.NewTicker(d.cfg.TickRate)
	defer ticker.Stop()

	for tick := 0; d.cfg.Ticks == 0 || tick < d.cfg.Ticks; tick++ {
		batch := protocol.ReportUnitsBatchPayload{
			Reports: make([]protocol.ReportUnitsPayload, 0, len(targets)),
		}
		for _, t := range targets {
			batch.Reports = append(batch.Reports, protocol.ReportUnitsPayload{
				TerritoryID: t.ID,
				Units:       d.Units(t),
			})
		}
		if err := d.net.SendPayload(protocol.TypeReportUnitsBatch, batch); err != nil {
			return err
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return nil
		}
	}
	return nil
}

// targets returns the known territories the driver should attack, by ID.
func (d *Driver) targets() []game.Territory {
	d.mu.Lock()
	defer d.mu.Unlock()

	var out []game.Territory
	if len(d.cfg.Targets) == 0 {
		for _, t := range d.territories {
			out = append(out, t)
		}
	} else {
		for _, id := range d.cfg.Targets {
			if t, ok := d.territories[id]; ok {
				out = append(out, t)
			} else {
				d.logger.Printf("Target %s not on server, skipping", id)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Units places every squad around a territory for one tick.
func (d *Driver) Units(t game.Territory) []game.Unit {
	var units []game.Unit
	for _, sq := range d.cfg.Squads {
		role := sq.Role
		if role == "" {
			role = game.RoleSupport
		}
		for i := 0; i < sq.Size; i++ {
			angle := d.rng.Float64() * 2 * math.Pi
			dist := d.rng.Float64() * d.cfg.Spread
			units = append(units, game.Unit{
				ID:    fmt.Sprintf("%s-%d", sq.Faction, i),
				Owner: sq.Faction,
				Role:  role,
				Position: game.Vector3{
					X: t.Position.X + math.Cos(angle)*dist,
					Y: t.Position.Y,
					Z: t.Position.Z + math.Sin(angle)*dist,
				},
			})
		}
	}
	return units
}

// Errors returns how many error replies the server has sent.
func (d *Driver) Errors() int64 {
	return d.errors.Load()
}

// Captures returns the capture announcements received so far.
func (d *Driver) Captures() []protocol.TerritoryCapturedPayload {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]protocol.TerritoryCapturedPayload(nil), d.captures...)
}

func (d *Driver) handleMessage(msg *protocol.Message) {
	switch msg.Type {
	case protocol.TypeWelcome:
		var p protocol.WelcomePayload
		if err := msg.ParsePayload(&p); err == nil {
			d.logger.Printf("Connected to match %s (layout %s, %d Hz)", p.MatchID, p.LayoutID, p.TickRateHz)
		}

	case protocol.TypeTerritoryList:
		var p protocol.TerritoryListPayload
		if err := msg.ParsePayload(&p); err != nil {
			d.logger.Printf("Bad territory list: %v", err)
			return
		}
		d.mu.Lock()
		for _, t := range p.Territories {
			d.territories[t.ID] = t
		}
		d.mu.Unlock()
		d.listOnce.Do(func() { close(d.listed) })

	case protocol.TypeTerritoryCaptured:
		var p protocol.TerritoryCapturedPayload
		if err := msg.ParsePayload(&p); err != nil {
			return
		}
		d.mu.Lock()
		d.captures = append(d.captures, p)
		d.mu.Unlock()
		d.logger.Printf("Territory %s (%s) captured by %s", p.TerritoryID, p.TerritoryType, p.NewOwner)

	case protocol.TypeError:
		d.errors.Add(1)
		var p protocol.ErrorPayload
		if err := msg.ParsePayload(&p); err == nil {
			d.logger.Printf("Server error %s: %s", p.Code, p.Message)
		}
	}
}
