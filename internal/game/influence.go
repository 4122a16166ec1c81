package game

import "sort"

// ComputeInfluenceZones groups units by faction and returns one zone per
// faction with positive strength, ordered by faction ID. Units without an
// owner are ignored.
func ComputeInfluenceZones(territoryPos Vector3, units []Unit, radius float64) []InfluenceZone {
	groups := groupUnitsByOwner(units)

	factions := make([]string, 0, len(groups))
	for owner := range groups {
		factions = append(factions, owner)
	}
	sort.Strings(factions)

	zones := make([]InfluenceZone, 0, len(factions))
	for _, owner := range factions {
		center, strength := weightedCentroid(territoryPos, groups[owner])
		if strength <= 0 {
			continue
		}
		zones = append(zones, InfluenceZone{
			Position: center,
			Radius:   radius,
			Strength: strength,
			Owner:    owner,
		})
	}
	return zones
}

func groupUnitsByOwner(units []Unit) map[string][]Unit {
	groups := make(map[string][]Unit)
	for _, u := range units {
		if u.Owner == "" {
			continue
		}
		groups[u.Owner] = append(groups[u.Owner], u)
	}
	return groups
}

// weightedCentroid returns the role-weighted mean position of units and the
// total weight. With no weight it falls back to the territory position.
func weightedCentroid(fallback Vector3, units []Unit) (Vector3, float64) {
	var sum Vector3
	total := 0.0
	for _, u := range units {
		w := u.Role.Weight()
		total += w
		sum = sum.Add(u.Position.Scale(w))
	}
	if total == 0 {
		return fallback, 0
	}
	return sum.Scale(1 / total), total
}

// FactionStrengths sums zone strength per faction.
func FactionStrengths(zones []InfluenceZone) map[string]float64 {
	totals := make(map[string]float64)
	for _, z := range zones {
		if z.Owner == "" {
			continue
		}
		totals[z.Owner] += z.Strength
	}
	return totals
}

// DominantForce returns the faction with strictly the greatest total strength.
// A tie at the top means nobody dominates. Factions are compared in ID order
// so the answer never depends on map iteration.
func DominantForce(zones []InfluenceZone) (string, bool) {
	totals := FactionStrengths(zones)

	factions := make([]string, 0, len(totals))
	for f := range totals {
		factions = append(factions, f)
	}
	sort.Strings(factions)

	dominant := ""
	best := 0.0
	tied := false
	for _, f := range factions {
		s := totals[f]
		switch {
		case s > best:
			dominant, best, tied = f, s, false
		case s == best && best > 0:
			tied = true
		}
	}
	if dominant == "" || tied {
		return "", false
	}
	return dominant, true
}

// contestingFactions lists zone owners other than the current owner, sorted.
func contestingFactions(zones []InfluenceZone, owner string) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, z := range zones {
		if z.Owner == "" || z.Owner == owner || seen[z.Owner] {
			continue
		}
		seen[z.Owner] = true
		out = append(out, z.Owner)
	}
	sort.Strings(out)
	return out
}
