package maps

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"kitten-defense/internal/game"
)

// GeneratorOptions contains settings for layout generation.
type GeneratorOptions struct {
	Width       float64 // Extent along X: 100-2000
	Depth       float64 // Extent along Z: 100-2000
	Territories int     // Target territory count: 3-60
	MinSpacing  float64 // Preferred distance between territory centers
	Resources   int     // Percentage of territories with resource containers: 10-100
	Seed        int64   // 0 picks a time-based seed
}

// DefaultOptions returns default generator options.
func DefaultOptions() GeneratorOptions {
	return GeneratorOptions{
		Width:       400,
		Depth:       300,
		Territories: 12,
		MinSpacing:  100,
		Resources:   60,
	}
}

// Generator handles procedural layout generation.
type Generator struct {
	options GeneratorOptions
	rng     *rand.Rand
}

// NewGenerator creates a new layout generator.
func NewGenerator(opts GeneratorOptions) *Generator {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	opts.Width = math.Min(math.Max(opts.Width, 100), 2000)
	opts.Depth = math.Min(math.Max(opts.Depth, 100), 2000)
	opts.Territories = clamp(opts.Territories, 3, 60)
	opts.Resources = clamp(opts.Resources, 10, 100)
	if opts.MinSpacing <= 0 {
		opts.MinSpacing = DefaultOptions().MinSpacing
	}
	return &Generator{
		options: opts,
		rng:     rand.New(rand.NewSource(seed)),
	}
}

// Generate creates a layout.
func (g *Generator) Generate() *Layout {
	seeds := g.placeSeeds(g.options.Territories)

	raw := &RawLayout{
		ID:    fmt.Sprintf("gen_%d", time.Now().Unix()),
		Name:  "Generated Layout",
		Width: g.options.Width,
		Depth: g.options.Depth,
	}
	for i, pos := range seeds {
		raw.Territories = append(raw.Territories, RawTerritory{
			ID:       TerritoryIDToString(i + 1),
			Position: pos,
		})
	}

	g.assignTypes(raw)
	g.assignResources(raw)
	g.assignNames(raw)
	return Process(raw)
}

// placeSeeds scatters territory centers, shrinking the spacing when the
// target count does not fit. Territory count takes priority over spacing.
func (g *Generator) placeSeeds(count int) []game.Vector3 {
	seeds := make([]game.Vector3, 0, count)
	margin := math.Min(g.options.MinSpacing, math.Min(g.options.Width, g.options.Depth)) / 4

	for spacing := g.options.MinSpacing; spacing >= 1; spacing *= 0.8 {
		seeds = seeds[:0]
		attempts := 0
		maxAttempts := count * 150

		for len(seeds) < count && attempts < maxAttempts {
			attempts++

			p := game.Vector3{
				X: margin + g.rng.Float64()*(g.options.Width-2*margin),
				Z: margin + g.rng.Float64()*(g.options.Depth-2*margin),
			}

			tooClose := false
			for _, s := range seeds {
				if game.Distance(p, s) < spacing {
					tooClose = true
					break
				}
			}
			if !tooClose {
				seeds = append(seeds, p)
			}
		}

		if len(seeds) >= count {
			break
		}
	}

	return seeds
}

func (g *Generator) assignTypes(raw *RawLayout) {
	types := []game.TerritoryType{
		game.TerritoryResidential, game.TerritoryIndustrial,
		game.TerritorySupply, game.TerritoryStrategic,
	}
	for i := range raw.Territories {
		t := types[g.rng.Intn(len(types))]
		// The first few cycle through every type so each appears at least once.
		if i < len(types) {
			t = types[i]
		}
		raw.Territories[i].Type = string(t)
	}
}

func (g *Generator) assignResources(raw *RawLayout) {
	ratio := float64(g.options.Resources) / 100.0

	// Strategic points carry no economy.
	var order []int
	for _, idx := range g.rng.Perm(len(raw.Territories)) {
		if game.TerritoryType(raw.Territories[idx].Type) != game.TerritoryStrategic {
			order = append(order, idx)
		}
	}

	numWithRes := int(float64(len(order)) * ratio)
	if numWithRes < len(game.AllResources) {
		numWithRes = len(game.AllResources) // Minimum to guarantee one of each type
	}
	if numWithRes > len(order) {
		numWithRes = len(order)
	}

	for i, idx := range order[:numWithRes] {
		res := game.AllResources[g.rng.Intn(len(game.AllResources))]
		if i < len(game.AllResources) {
			res = game.AllResources[i]
		}

		t := &raw.Territories[idx]
		if game.TerritoryType(t.Type) == game.TerritorySupply {
			t.CollectionPoints = append(t.CollectionPoints, RawCollectionPoint{
				Resource: string(res),
				Offset:   game.Vector3{X: g.rng.Float64()*10 - 5, Z: g.rng.Float64()*10 - 5},
			})
			continue
		}
		t.Generators = append(t.Generators, RawGenerator{Resource: string(res)})
		t.Storages = append(t.Storages, RawStorage{
			Resource: string(res),
			Capacity: float64(100 * (1 + g.rng.Intn(5))),
		})
	}
}

var namesByType = map[game.TerritoryType][]string{
	game.TerritoryResidential: {"Den", "Nook", "Basket", "Cushion", "Blanket Fort", "Sunspot", "Windowsill", "Hideaway"},
	game.TerritoryIndustrial:  {"Cannery", "Yarn Mill", "Dairy", "Fishworks", "Scratch Works", "Toy Factory", "Kibble Plant"},
	game.TerritorySupply:      {"Pantry", "Pond", "Garden", "Bins", "Larder", "Creek", "Market"},
	game.TerritoryStrategic:   {"Tower", "Perch", "Fence", "Rooftop", "Lookout", "Shelf", "Ridge"},
}

func (g *Generator) assignNames(raw *RawLayout) {
	used := make(map[string]bool)
	for i := range raw.Territories {
		t := &raw.Territories[i]
		base := g.genName(t, raw)
		name := base
		for n := 2; used[name]; n++ {
			name = fmt.Sprintf("%s %d", base, n)
		}
		used[name] = true
		t.Name = name
	}
}

// genName picks a name from the territory's type pool, prefixed with a
// compass direction when the territory sits near an edge.
func (g *Generator) genName(t *RawTerritory, raw *RawLayout) string {
	pool := namesByType[game.TerritoryType(t.Type)]
	name := pool[g.rng.Intn(len(pool))]

	nx := t.Position.X / raw.Width
	nz := t.Position.Z / raw.Depth
	switch {
	case nz < 0.25:
		return "North " + name
	case nz > 0.75:
		return "South " + name
	case nx > 0.75:
		return "East " + name
	case nx < 0.25:
		return "West " + name
	}
	return name
}
