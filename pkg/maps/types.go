// Package maps handles layout loading, processing, and generation.
package maps

import "kitten-defense/internal/game"

// RawLayout is the format stored in JSON files.
type RawLayout struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Width       float64        `json:"width"` // Extent along X
	Depth       float64        `json:"depth"` // Extent along Z
	Territories []RawTerritory `json:"territories"`
}

// RawTerritory is territory data from the JSON file.
type RawTerritory struct {
	ID               string               `json:"id"`
	Name             string               `json:"name"`
	Type             string               `json:"type"`
	Position         game.Vector3         `json:"position"`
	Generators       []RawGenerator       `json:"generators,omitempty"`
	Storages         []RawStorage         `json:"storages,omitempty"`
	CollectionPoints []RawCollectionPoint `json:"collectionPoints,omitempty"`
}

// RawGenerator places a generator at the territory center.
type RawGenerator struct {
	Resource string `json:"resource"`
	Active   *bool  `json:"active,omitempty"` // Defaults to true
}

// RawStorage places an empty storage at the territory center.
type RawStorage struct {
	Resource string  `json:"resource"`
	Capacity float64 `json:"capacity"`
}

// RawCollectionPoint places a pickup near the territory center.
type RawCollectionPoint struct {
	Resource string       `json:"resource"`
	Amount   int          `json:"amount,omitempty"` // Defaults to the resource's base amount
	Offset   game.Vector3 `json:"offset,omitempty"`
}

// Layout is the processed, runtime layout data.
type Layout struct {
	ID    string
	Name  string
	Width float64
	Depth float64

	// Territories sorted by ID
	Territories []*Territory

	index map[string]*Territory
}

// Territory is a territory ready to be created in a registry.
type Territory struct {
	ID               string
	Name             string
	Type             game.TerritoryType
	Position         game.Vector3
	Generators       []game.ResourceGenerator
	Storages         []game.ResourceStorage
	CollectionPoints []game.CollectionPoint
}

// GetTerritory returns a territory by ID.
func (l *Layout) GetTerritory(id string) *Territory {
	return l.index[id]
}

// TerritoryCount returns the number of territories.
func (l *Layout) TerritoryCount() int {
	return len(l.Territories)
}

// Neighbors returns the IDs of territories whose centers lie within dist of
// the given territory, sorted by ID.
func (l *Layout) Neighbors(id string, dist float64) []string {
	from := l.index[id]
	if from == nil {
		return nil
	}
	var out []string
	for _, t := range l.Territories {
		if t.ID != id && game.Distance(from.Position, t.Position) <= dist {
			out = append(out, t.ID)
		}
	}
	return out
}

// LayoutInfo contains basic layout information for listing.
type LayoutInfo struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Width          float64 `json:"width"`
	Depth          float64 `json:"depth"`
	TerritoryCount int     `json:"territory_count"`
}
