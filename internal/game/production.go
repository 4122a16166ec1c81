package game

import (
	"time"

	"github.com/google/uuid"
)

// FlowResources runs one production step for a territory. Active generators
// feed the first storage of their resource type, but only while the territory
// is owned. Production beyond a storage's capacity is lost, and a generator
// without a matching storage produces nothing. Empty collection points count
// down toward their refill.
//
// Production is a fixed amount per call; callers are expected to invoke it
// at a steady tick rate.
func FlowResources(t *Territory, cfg Config, tick uint64) []Transaction {
	var txs []Transaction

	if t.IsOwned() {
		now := time.Now()
		for _, gen := range t.Resources.Generators {
			if !gen.Active {
				continue
			}
			storage := t.Resources.StorageFor(gen.Type)
			if storage == nil {
				continue
			}
			stored := storage.AddResources(cfg.GenerationRate(gen.Type))
			if stored <= 0 {
				continue
			}
			txs = append(txs, Transaction{
				ID:          uuid.New().String(),
				Kind:        TransactionProduction,
				TerritoryID: t.ID,
				Faction:     t.Owner,
				Resource:    gen.Type,
				Amount:      stored,
				Source:      gen.ID,
				Destination: storage.ID,
				Tick:        tick,
				Timestamp:   now,
			})
		}
	}

	for i := range t.Resources.CollectionPoints {
		t.Resources.CollectionPoints[i].tickRespawn()
	}

	return txs
}
