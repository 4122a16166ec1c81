// Package game contains the territory simulation core: influence, capture
// and resource flow for contested territories.
package game

import (
	"fmt"
	"log"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Registry owns every territory of a match and is the entry point for
// creating, updating and reading them.
//
// Updates to one territory are serialized; different territories can be
// updated from different goroutines.
type Registry struct {
	cfg      Config
	notifier Notifier
	ledger   LedgerSink
	logger   *log.Logger

	mu      sync.RWMutex
	entries map[string]*entry

	tick atomic.Uint64 // Match tick stamped on transactions
}

type entry struct {
	mu        sync.Mutex
	territory *Territory
}

// Option configures a Registry.
type Option func(*Registry)

// WithNotifier sets where capture events are sent.
func WithNotifier(n Notifier) Option {
	return func(r *Registry) {
		if n != nil {
			r.notifier = n
		}
	}
}

// WithLedger sets where resource transactions are sent.
func WithLedger(l LedgerSink) Option {
	return func(r *Registry) { r.ledger = l }
}

// WithLogger sets the logger for dropped updates and recovered failures.
func WithLogger(l *log.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(cfg Config, opts ...Option) (*Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := &Registry{
		cfg:      cfg,
		notifier: NopNotifier{},
		logger:   log.Default(),
		entries:  make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Config returns the registry's simulation parameters.
func (r *Registry) Config() Config {
	return r.cfg
}

// SetTick sets the match tick recorded on transactions from now on. The
// tick loop calls it before each round of updates.
func (r *Registry) SetTick(tick uint64) {
	r.tick.Store(tick)
}

// Tick returns the current match tick.
func (r *Registry) Tick() uint64 {
	return r.tick.Load()
}

// CreateTerritory adds an unclaimed territory.
func (r *Registry) CreateTerritory(id string, position Vector3, territoryType TerritoryType) (Territory, error) {
	if id == "" {
		return Territory{}, fmt.Errorf("%w: empty id", ErrInvalidTerritory)
	}
	if !territoryType.Valid() {
		return Territory{}, fmt.Errorf("%w: unknown type %q", ErrInvalidTerritory, territoryType)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[id]; exists {
		return Territory{}, fmt.Errorf("%w: %s", ErrDuplicateTerritory, id)
	}
	t := NewTerritory(id, position, territoryType)
	r.entries[id] = &entry{territory: t}
	return t.Clone(), nil
}

// UpdateTerritory runs one simulation step for a territory with the units
// currently near it: influence, then capture, then resource flow. Unknown
// territories are logged and ignored. A failure inside one territory's step
// is recovered so the rest of the tick can continue.
func (r *Registry) UpdateTerritory(id string, units []Unit) {
	e := r.lookup(id)
	if e == nil {
		r.logger.Printf("update for unknown territory %q ignored", id)
		return
	}

	ev, txs := r.step(e, units, r.Tick())
	if ev != nil {
		r.notify(*ev)
	}
	if len(txs) > 0 {
		r.record(txs)
	}
}

func (r *Registry) step(e *entry, units []Unit, tick uint64) (ev *CaptureEvent, txs []Transaction) {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Printf("territory %s update failed: %v", e.territory.ID, rec)
			ev, txs = nil, nil
		}
	}()

	t := e.territory

	t.InfluenceZones = ComputeInfluenceZones(t.Position, units, r.cfg.InfluenceRadius)
	ev = AdvanceCapture(t, r.cfg)
	t.ContestedBy = contestingFactions(t.InfluenceZones, t.Owner)
	txs = FlowResources(t, r.cfg, tick)
	return ev, txs
}

func (r *Registry) notify(ev CaptureEvent) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Printf("capture notification for %s failed: %v", ev.TerritoryID, rec)
		}
	}()
	r.notifier.NotifyCapture(ev)
}

func (r *Registry) record(txs []Transaction) {
	if r.ledger == nil {
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Printf("ledger write failed: %v", rec)
		}
	}()
	r.ledger.RecordTransactions(txs)
}

func (r *Registry) lookup(id string) *entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entries[id]
}

// GetTerritory returns a copy of a territory.
func (r *Registry) GetTerritory(id string) (Territory, bool) {
	e := r.lookup(id)
	if e == nil {
		return Territory{}, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.territory.Clone(), true
}

// GetTerritoryByPosition returns the territory nearest to pos whose influence
// radius contains it. Equally distant territories resolve to the lowest ID.
func (r *Registry) GetTerritoryByPosition(pos Vector3) (Territory, bool) {
	r.mu.RLock()
	var best *entry
	bestID := ""
	bestDist := 0.0
	for id, e := range r.entries {
		// Position never changes after creation.
		d := Distance(pos, e.territory.Position)
		if d > r.cfg.InfluenceRadius {
			continue
		}
		if best == nil || d < bestDist || (d == bestDist && id < bestID) {
			best, bestID, bestDist = e, id, d
		}
	}
	r.mu.RUnlock()

	if best == nil {
		return Territory{}, false
	}
	best.mu.Lock()
	defer best.mu.Unlock()
	return best.territory.Clone(), true
}

// IDs returns all territory IDs in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of territories.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Territories returns copies of all territories sorted by ID.
func (r *Registry) Territories() []Territory {
	ids := r.IDs()
	out := make([]Territory, 0, len(ids))
	for _, id := range ids {
		if t, ok := r.GetTerritory(id); ok {
			out = append(out, t)
		}
	}
	return out
}

// Restore replaces every territory with the given states, as loaded from a
// checkpoint. Values outside their allowed ranges are clamped.
func (r *Registry) Restore(territories []Territory) error {
	entries := make(map[string]*entry, len(territories))
	for i := range territories {
		t := territories[i].Clone()
		if t.ID == "" {
			return fmt.Errorf("%w: empty id at index %d", ErrInvalidTerritory, i)
		}
		if _, dup := entries[t.ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateTerritory, t.ID)
		}
		r.normalize(&t)
		entries[t.ID] = &entry{territory: &t}
	}

	r.mu.Lock()
	r.entries = entries
	r.mu.Unlock()
	return nil
}

func (r *Registry) normalize(t *Territory) {
	if t.CaptureProgress < 0 {
		t.CaptureProgress = 0
	}
	if t.CaptureProgress > r.cfg.CaptureTime {
		t.CaptureProgress = r.cfg.CaptureTime
	}
	for i := range t.Resources.Storages {
		st := &t.Resources.Storages[i]
		if !finite(st.Capacity) || st.Capacity < 0 {
			st.Capacity = 0
		}
		if !finite(st.Current) {
			st.Current = 0
		}
		st.AddResources(0)
	}
}

// withTerritory runs fn with exclusive access to a territory.
func (r *Registry) withTerritory(id string, fn func(t *Territory) error) error {
	e := r.lookup(id)
	if e == nil {
		return fmt.Errorf("%w: %s", ErrUnknownTerritory, id)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.territory)
}

// AddGenerator places a generator in a territory. An ID is assigned if empty.
func (r *Registry) AddGenerator(territoryID string, gen ResourceGenerator) (ResourceGenerator, error) {
	if !gen.Type.Valid() {
		return gen, fmt.Errorf("%w: %q", ErrInvalidResource, gen.Type)
	}
	if gen.ID == "" {
		gen.ID = uuid.New().String()
	}
	err := r.withTerritory(territoryID, func(t *Territory) error {
		t.Resources.Generators = append(t.Resources.Generators, gen)
		return nil
	})
	return gen, err
}

// AddStorage places a storage in a territory. An ID is assigned if empty.
func (r *Registry) AddStorage(territoryID string, storage ResourceStorage) (ResourceStorage, error) {
	if !storage.Type.Valid() {
		return storage, fmt.Errorf("%w: %q", ErrInvalidResource, storage.Type)
	}
	if !finite(storage.Capacity) || storage.Capacity < 0 {
		return storage, fmt.Errorf("%w: storage capacity must be a non-negative number, got %g", ErrInvalidTerritory, storage.Capacity)
	}
	if !finite(storage.Current) {
		storage.Current = 0
	}
	if storage.ID == "" {
		storage.ID = uuid.New().String()
	}
	storage.AddResources(0)
	err := r.withTerritory(territoryID, func(t *Territory) error {
		t.Resources.Storages = append(t.Resources.Storages, storage)
		return nil
	})
	return storage, err
}

// AddCollectionPoint places a collection point in a territory. An ID is
// assigned if empty.
func (r *Registry) AddCollectionPoint(territoryID string, point CollectionPoint) (CollectionPoint, error) {
	if !point.ResourceType.Valid() {
		return point, fmt.Errorf("%w: %q", ErrInvalidResource, point.ResourceType)
	}
	if point.ID == "" {
		point.ID = uuid.New().String()
	}
	err := r.withTerritory(territoryID, func(t *Territory) error {
		t.Resources.CollectionPoints = append(t.Resources.CollectionPoints, point)
		return nil
	})
	return point, err
}

// SetGeneratorActive switches a generator on or off.
func (r *Registry) SetGeneratorActive(territoryID, generatorID string, active bool) error {
	return r.withTerritory(territoryID, func(t *Territory) error {
		gen := t.Resources.Generator(generatorID)
		if gen == nil {
			return fmt.Errorf("%w: %s", ErrUnknownGenerator, generatorID)
		}
		gen.Active = active
		return nil
	})
}

// AddStructure records a building in a territory. An ID is assigned if empty.
func (r *Registry) AddStructure(territoryID string, s Structure) (Structure, error) {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	err := r.withTerritory(territoryID, func(t *Territory) error {
		t.Structures = append(t.Structures, s)
		return nil
	})
	return s, err
}

// Harvest takes up to want units from a collection point and returns how
// many were taken.
func (r *Registry) Harvest(territoryID, pointID string, want int) (int, error) {
	var tx *Transaction
	taken := 0
	err := r.withTerritory(territoryID, func(t *Territory) error {
		p := t.Resources.CollectionPoint(pointID)
		if p == nil {
			return fmt.Errorf("%w: %s", ErrUnknownCollectionPoint, pointID)
		}
		taken = p.Harvest(want, r.cfg.CollectionRespawnTicks)
		if taken > 0 {
			tx = &Transaction{
				ID:          uuid.New().String(),
				Kind:        TransactionHarvest,
				TerritoryID: t.ID,
				Faction:     t.Owner,
				Resource:    p.ResourceType,
				Amount:      float64(taken),
				Source:      p.ID,
				Tick:        r.Tick(),
				Timestamp:   time.Now(),
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if tx != nil {
		r.record([]Transaction{*tx})
	}
	return taken, nil
}
