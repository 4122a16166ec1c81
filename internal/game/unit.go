package game

// UnitRole is the battlefield role of a unit.
type UnitRole string

const (
	RoleScout    UnitRole = "scout"
	RoleHeavy    UnitRole = "heavy"
	RoleMedic    UnitRole = "medic"
	RoleEngineer UnitRole = "engineer"
	RoleSupport  UnitRole = "support"
)

// Weight returns how much influence a unit of this role projects.
// Unknown roles count as a regular unit.
func (r UnitRole) Weight() float64 {
	switch r {
	case RoleHeavy:
		return 2
	case RoleScout:
		return 0.5
	case RoleMedic, RoleEngineer, RoleSupport:
		return 1
	default:
		return 1
	}
}

// Unit is the per-tick view of a unit near a territory. The core never keeps
// units between updates.
type Unit struct {
	ID       string   `json:"id,omitempty"`
	Position Vector3  `json:"position"`
	Owner    string   `json:"owner"` // Faction ID
	Role     UnitRole `json:"role"`
}
