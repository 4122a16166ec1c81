package maps

import (
	"fmt"
	"sort"

	"kitten-defense/internal/game"
)

// Process takes a raw layout and builds the runtime territories. Container
// IDs are derived from the territory ID so they stay stable across restarts.
func Process(raw *RawLayout) *Layout {
	l := &Layout{
		ID:          raw.ID,
		Name:        raw.Name,
		Width:       raw.Width,
		Depth:       raw.Depth,
		Territories: make([]*Territory, 0, len(raw.Territories)),
		index:       make(map[string]*Territory, len(raw.Territories)),
	}

	for _, rt := range raw.Territories {
		t := processTerritory(rt)
		l.Territories = append(l.Territories, t)
		l.index[t.ID] = t
	}
	sort.Slice(l.Territories, func(i, j int) bool {
		return l.Territories[i].ID < l.Territories[j].ID
	})
	return l
}

func processTerritory(rt RawTerritory) *Territory {
	t := &Territory{
		ID:       rt.ID,
		Name:     rt.Name,
		Type:     game.TerritoryType(rt.Type),
		Position: rt.Position,
	}

	for i, g := range rt.Generators {
		active := true
		if g.Active != nil {
			active = *g.Active
		}
		t.Generators = append(t.Generators, game.ResourceGenerator{
			ID:       fmt.Sprintf("%s-gen-%d", rt.ID, i+1),
			Type:     game.ResourceType(g.Resource),
			Position: rt.Position,
			Active:   active,
		})
	}

	for i, s := range rt.Storages {
		t.Storages = append(t.Storages, game.ResourceStorage{
			ID:       fmt.Sprintf("%s-store-%d", rt.ID, i+1),
			Type:     game.ResourceType(s.Resource),
			Position: rt.Position,
			Capacity: s.Capacity,
		})
	}

	for i, p := range rt.CollectionPoints {
		resource := game.ResourceType(p.Resource)
		amount := p.Amount
		if amount <= 0 {
			amount = resource.BaseAmount()
		}
		t.CollectionPoints = append(t.CollectionPoints, game.CollectionPoint{
			ID:           fmt.Sprintf("%s-pickup-%d", rt.ID, i+1),
			Position:     rt.Position.Add(p.Offset),
			ResourceType: resource,
			Amount:       amount,
		})
	}

	return t
}

// Apply creates every territory of the layout in reg and provisions its
// resource containers.
func (l *Layout) Apply(reg *game.Registry) error {
	for _, t := range l.Territories {
		if _, err := reg.CreateTerritory(t.ID, t.Position, t.Type); err != nil {
			return fmt.Errorf("layout %s: %w", l.ID, err)
		}
		for _, g := range t.Generators {
			if _, err := reg.AddGenerator(t.ID, g); err != nil {
				return fmt.Errorf("layout %s: territory %s: %w", l.ID, t.ID, err)
			}
		}
		for _, s := range t.Storages {
			if _, err := reg.AddStorage(t.ID, s); err != nil {
				return fmt.Errorf("layout %s: territory %s: %w", l.ID, t.ID, err)
			}
		}
		for _, p := range t.CollectionPoints {
			if _, err := reg.AddCollectionPoint(t.ID, p); err != nil {
				return fmt.Errorf("layout %s: territory %s: %w", l.ID, t.ID, err)
			}
		}
	}
	return nil
}

// Raw converts the layout back to its file format.
func (l *Layout) Raw() *RawLayout {
	raw := &RawLayout{ID: l.ID, Name: l.Name, Width: l.Width, Depth: l.Depth}
	for _, t := range l.Territories {
		rt := RawTerritory{ID: t.ID, Name: t.Name, Type: string(t.Type), Position: t.Position}
		for _, g := range t.Generators {
			active := g.Active
			rt.Generators = append(rt.Generators, RawGenerator{Resource: string(g.Type), Active: &active})
		}
		for _, s := range t.Storages {
			rt.Storages = append(rt.Storages, RawStorage{Resource: string(s.Type), Capacity: s.Capacity})
		}
		for _, p := range t.CollectionPoints {
			rt.CollectionPoints = append(rt.CollectionPoints, RawCollectionPoint{
				Resource: string(p.ResourceType),
				Amount:   p.Amount,
				Offset:   game.Vector3{X: p.Position.X - t.Position.X, Y: p.Position.Y - t.Position.Y, Z: p.Position.Z - t.Position.Z},
			})
		}
		raw.Territories = append(raw.Territories, rt)
	}
	return raw
}
