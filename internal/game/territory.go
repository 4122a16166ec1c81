package game

// TerritoryType tags what a territory is used for. It only matters to
// rendering and build costs, never to capture.
type TerritoryType string

const (
	TerritoryResidential TerritoryType = "residential"
	TerritoryIndustrial  TerritoryType = "industrial"
	TerritorySupply      TerritoryType = "supply"
	TerritoryStrategic   TerritoryType = "strategic"
)

// Valid reports whether t is a known territory type.
func (t TerritoryType) Valid() bool {
	switch t {
	case TerritoryResidential, TerritoryIndustrial, TerritorySupply, TerritoryStrategic:
		return true
	}
	return false
}

// StructureType identifies a building placed in a territory.
type StructureType string

const (
	StructureCatCondo    StructureType = "catCondo"
	StructureYarnFactory StructureType = "yarnFactory"
	StructureFoodBowl    StructureType = "foodBowl"
	StructureCatTree     StructureType = "catTree"
	StructureTunnel      StructureType = "tunnel"
)

// Structure is a building owned by the building system. Capture never touches it.
type Structure struct {
	ID       string        `json:"id"`
	Type     StructureType `json:"type"`
	Position Vector3       `json:"position"`
	Health   int           `json:"health"`
	Owner    string        `json:"owner"`
}

// InfluenceZone summarizes one faction's presence around a territory for a
// single tick.
type InfluenceZone struct {
	Position Vector3 `json:"position"` // Weighted centroid of the faction's units
	Radius   float64 `json:"radius"`
	Strength float64 `json:"strength"`
	Owner    string  `json:"owner"`
}

// Territory represents a single contestable territory.
type Territory struct {
	ID              string             `json:"id"`
	Position        Vector3            `json:"position"`
	Type            TerritoryType      `json:"type"`
	Owner           string             `json:"owner"` // Faction ID, empty if unclaimed
	ControlPoints   int                `json:"controlPoints"`
	InfluenceZones  []InfluenceZone    `json:"influenceZones"`
	Resources       TerritoryResources `json:"resources"`
	Structures      []Structure        `json:"structures"`
	ContestedBy     []string           `json:"contestedBy"`
	CaptureProgress int                `json:"captureProgress"`
}

// NewTerritory creates an unclaimed territory.
func NewTerritory(id string, position Vector3, territoryType TerritoryType) *Territory {
	return &Territory{
		ID:             id,
		Position:       position,
		Type:           territoryType,
		InfluenceZones: []InfluenceZone{},
		Resources: TerritoryResources{
			Generators:       []ResourceGenerator{},
			Storages:         []ResourceStorage{},
			CollectionPoints: []CollectionPoint{},
		},
		Structures:  []Structure{},
		ContestedBy: []string{},
	}
}

// IsOwned returns true if a faction holds the territory.
func (t *Territory) IsOwned() bool {
	return t.Owner != ""
}

// Clone creates a deep copy of the territory.
func (t *Territory) Clone() Territory {
	c := *t
	c.InfluenceZones = append([]InfluenceZone{}, t.InfluenceZones...)
	c.Resources = t.Resources.Clone()
	c.Structures = append([]Structure{}, t.Structures...)
	c.ContestedBy = append([]string{}, t.ContestedBy...)
	return c
}
