package game

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestUnitRoleWeight(t *testing.T) {
	cases := map[UnitRole]float64{
		RoleHeavy:         2,
		RoleScout:         0.5,
		RoleMedic:         1,
		RoleEngineer:      1,
		RoleSupport:       1,
		UnitRole("ninja"): 1,
		UnitRole(""):      1,
	}
	for role, want := range cases {
		if got := role.Weight(); got != want {
			t.Errorf("Expected weight %v for role %q, got %v", want, role, got)
		}
	}
}

func TestDistance(t *testing.T) {
	d := Distance(Vector3{X: 1, Y: 2, Z: 3}, Vector3{X: 4, Y: 6, Z: 3})
	if !almostEqual(d, 5) {
		t.Errorf("Expected distance 5, got %v", d)
	}
}

func TestComputeInfluenceZones_GroupsByFaction(t *testing.T) {
	units := []Unit{
		{Owner: "B", Role: RoleScout, Position: Vector3{X: 10}},
		{Owner: "A", Role: RoleHeavy, Position: Vector3{X: 0, Z: 0}},
		{Owner: "A", Role: RoleMedic, Position: Vector3{X: 3, Z: 3}},
	}

	zones := ComputeInfluenceZones(Vector3{}, units, 25)
	if len(zones) != 2 {
		t.Fatalf("Expected 2 zones, got %d", len(zones))
	}

	// Sorted by faction
	a, b := zones[0], zones[1]
	if a.Owner != "A" || b.Owner != "B" {
		t.Fatalf("Expected zones for A then B, got %s then %s", a.Owner, b.Owner)
	}
	if !almostEqual(a.Strength, 3) {
		t.Errorf("Expected A strength 3, got %v", a.Strength)
	}
	// Heavy (weight 2) at origin and medic (weight 1) at (3,0,3)
	if !almostEqual(a.Position.X, 1) || !almostEqual(a.Position.Z, 1) {
		t.Errorf("Expected A centroid (1,0,1), got %+v", a.Position)
	}
	if !almostEqual(b.Strength, 0.5) {
		t.Errorf("Expected B strength 0.5, got %v", b.Strength)
	}
	if b.Position.X != 10 {
		t.Errorf("Expected B centroid at x=10, got %+v", b.Position)
	}
	for _, z := range zones {
		if z.Radius != 25 {
			t.Errorf("Expected every zone radius 25, got %v", z.Radius)
		}
	}
}

func TestComputeInfluenceZones_SkipsUnownedUnits(t *testing.T) {
	units := []Unit{
		{Owner: "", Role: RoleHeavy},
		{Owner: "A", Role: RoleScout},
	}
	zones := ComputeInfluenceZones(Vector3{}, units, 10)
	if len(zones) != 1 {
		t.Fatalf("Expected 1 zone, got %d", len(zones))
	}
	for _, z := range zones {
		if z.Owner == "" {
			t.Error("Expected no zone with an empty owner")
		}
	}
}

func TestComputeInfluenceZones_NoUnits(t *testing.T) {
	zones := ComputeInfluenceZones(Vector3{X: 5}, nil, 10)
	if len(zones) != 0 {
		t.Errorf("Expected no zones, got %d", len(zones))
	}
}

func TestWeightedCentroid_ZeroWeightFallsBack(t *testing.T) {
	fallback := Vector3{X: 7, Y: 8, Z: 9}
	pos, strength := weightedCentroid(fallback, nil)
	if strength != 0 {
		t.Errorf("Expected zero strength, got %v", strength)
	}
	if pos != fallback {
		t.Errorf("Expected fallback position %+v, got %+v", fallback, pos)
	}
}

func TestDominantForce(t *testing.T) {
	tests := []struct {
		name   string
		zones  []InfluenceZone
		want   string
		wantOK bool
	}{
		{"none", nil, "", false},
		{"single", []InfluenceZone{{Owner: "A", Strength: 1}}, "A", true},
		{"clear winner", []InfluenceZone{{Owner: "A", Strength: 1}, {Owner: "B", Strength: 2.5}}, "B", true},
		{"tie", []InfluenceZone{{Owner: "A", Strength: 2}, {Owner: "B", Strength: 2}}, "", false},
		{"tie below leader", []InfluenceZone{{Owner: "A", Strength: 1}, {Owner: "B", Strength: 1}, {Owner: "C", Strength: 3}}, "C", true},
		{"summed zones", []InfluenceZone{{Owner: "A", Strength: 1}, {Owner: "B", Strength: 1.5}, {Owner: "A", Strength: 1}}, "A", true},
		{"empty owner ignored", []InfluenceZone{{Owner: "", Strength: 9}, {Owner: "A", Strength: 1}}, "A", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DominantForce(tt.zones)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Expected (%q, %v), got (%q, %v)", tt.want, tt.wantOK, got, ok)
			}
		})
	}
}

func TestDominantForce_TieIsOrderIndependent(t *testing.T) {
	zones := []InfluenceZone{{Owner: "B", Strength: 2}, {Owner: "A", Strength: 2}}
	for i := 0; i < 50; i++ {
		if f, ok := DominantForce(zones); ok {
			t.Fatalf("Expected no dominant force on a tie, got %q", f)
		}
	}
}

func TestContestingFactions(t *testing.T) {
	zones := []InfluenceZone{{Owner: "C"}, {Owner: "A"}, {Owner: "B"}}
	got := contestingFactions(zones, "A")
	if len(got) != 2 || got[0] != "B" || got[1] != "C" {
		t.Errorf("Expected [B C], got %v", got)
	}
}
