package game

// ResourceType represents a type of resource.
type ResourceType string

const (
	ResourceTuna   ResourceType = "tuna"
	ResourceMilk   ResourceType = "milk"
	ResourceCatnip ResourceType = "catnip"
	ResourceYarn   ResourceType = "yarn"
	ResourceFish   ResourceType = "fish"
)

// AllResources lists every resource type in display order.
var AllResources = []ResourceType{ResourceTuna, ResourceMilk, ResourceCatnip, ResourceYarn, ResourceFish}

// String returns the resource name.
func (r ResourceType) String() string {
	switch r {
	case ResourceTuna:
		return "Tuna"
	case ResourceMilk:
		return "Milk"
	case ResourceCatnip:
		return "Catnip"
	case ResourceYarn:
		return "Yarn"
	case ResourceFish:
		return "Fish"
	default:
		return "Unknown"
	}
}

// Valid reports whether r is one of the known resource types.
func (r ResourceType) Valid() bool {
	switch r {
	case ResourceTuna, ResourceMilk, ResourceCatnip, ResourceYarn, ResourceFish:
		return true
	}
	return false
}

// BaseAmount is what a depleted collection point of this type holds after respawning.
func (r ResourceType) BaseAmount() int {
	switch r {
	case ResourceTuna:
		return 100
	case ResourceMilk:
		return 75
	case ResourceCatnip:
		return 50
	case ResourceYarn:
		return 150
	case ResourceFish:
		return 125
	default:
		return 50
	}
}

// ResourceGenerator produces resources into a storage of the same type while
// the territory is owned and the generator is active.
type ResourceGenerator struct {
	ID             string       `json:"id"`
	Type           ResourceType `json:"type"`
	Position       Vector3      `json:"position"`
	ProductionRate float64      `json:"productionRate"`
	Active         bool         `json:"active"` // False while unpowered or under attack
}

// ResourceStorage holds up to Capacity units of a single resource.
type ResourceStorage struct {
	ID       string       `json:"id"`
	Type     ResourceType `json:"type"`
	Position Vector3      `json:"position"`
	Capacity float64      `json:"capacity"`
	Current  float64      `json:"current"`
}

// AddResources adds amount (which may be negative) and clamps the result to
// [0, Capacity]. Returns the change actually applied.
func (s *ResourceStorage) AddResources(amount float64) float64 {
	before := s.Current
	next := before + amount
	if next > s.Capacity {
		next = s.Capacity
	}
	if next < 0 {
		next = 0
	}
	s.Current = next
	return next - before
}

// CollectionPoint is a depletable pickup that refills after a cooldown.
type CollectionPoint struct {
	ID           string       `json:"id"`
	Position     Vector3      `json:"position"`
	ResourceType ResourceType `json:"resourceType"`
	Amount       int          `json:"amount"`
	RespawnTime  int          `json:"respawnTime"` // Ticks until refilled, counts down only while empty
}

// Harvest removes up to want units. When the point runs dry its respawn
// countdown is set to respawnTicks.
func (p *CollectionPoint) Harvest(want, respawnTicks int) int {
	if want <= 0 || p.Amount <= 0 {
		return 0
	}
	taken := want
	if taken > p.Amount {
		taken = p.Amount
	}
	p.Amount -= taken
	if p.Amount == 0 {
		p.RespawnTime = respawnTicks
	}
	return taken
}

// tickRespawn advances the respawn countdown of an empty point and refills it
// when the countdown ends. Returns true if the point was refilled.
func (p *CollectionPoint) tickRespawn() bool {
	if p.Amount > 0 || p.RespawnTime <= 0 {
		return false
	}
	p.RespawnTime--
	if p.RespawnTime <= 0 {
		p.RespawnTime = 0
		p.Amount = p.ResourceType.BaseAmount()
		return true
	}
	return false
}

// TerritoryResources are the resource containers owned by one territory.
type TerritoryResources struct {
	Generators       []ResourceGenerator `json:"generators"`
	Storages         []ResourceStorage   `json:"storages"`
	CollectionPoints []CollectionPoint   `json:"collectionPoints"`
}

// StorageFor returns the first storage holding the given resource, or nil.
func (r *TerritoryResources) StorageFor(resource ResourceType) *ResourceStorage {
	for i := range r.Storages {
		if r.Storages[i].Type == resource {
			return &r.Storages[i]
		}
	}
	return nil
}

// Generator returns the generator with the given ID, or nil.
func (r *TerritoryResources) Generator(id string) *ResourceGenerator {
	for i := range r.Generators {
		if r.Generators[i].ID == id {
			return &r.Generators[i]
		}
	}
	return nil
}

// CollectionPoint returns the collection point with the given ID, or nil.
func (r *TerritoryResources) CollectionPoint(id string) *CollectionPoint {
	for i := range r.CollectionPoints {
		if r.CollectionPoints[i].ID == id {
			return &r.CollectionPoints[i]
		}
	}
	return nil
}

// Stored returns the total amount held across storages of one resource.
func (r *TerritoryResources) Stored(resource ResourceType) float64 {
	total := 0.0
	for _, s := range r.Storages {
		if s.Type == resource {
			total += s.Current
		}
	}
	return total
}

// Clone creates a deep copy of the resources.
func (r TerritoryResources) Clone() TerritoryResources {
	return TerritoryResources{
		Generators:       append([]ResourceGenerator{}, r.Generators...),
		Storages:         append([]ResourceStorage{}, r.Storages...),
		CollectionPoints: append([]CollectionPoint{}, r.CollectionPoints...),
	}
}
