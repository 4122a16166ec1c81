package protocol

import "kitten-defense/internal/game"

// ==================== System Payloads ====================

// WelcomePayload is sent on connection.
type WelcomePayload struct {
	ServerVersion string  `json:"server_version"`
	MatchID       string  `json:"match_id"`
	LayoutID      string  `json:"layout_id"`
	TickRateHz    int     `json:"tick_rate_hz"`
	CaptureTime   int     `json:"capture_time"`
	Radius        float64 `json:"influence_radius"`
}

// PongPayload answers a ping.
type PongPayload struct {
	ServerTime int64  `json:"server_time"`
	Tick       uint64 `json:"tick"`
}

// ==================== Territory Payloads ====================

// CreateTerritoryPayload is sent to add an unclaimed territory.
type CreateTerritoryPayload struct {
	TerritoryID string             `json:"territory_id"`
	Position    game.Vector3       `json:"position"`
	Type        game.TerritoryType `json:"type"`
}

// ReportUnitsPayload queues the units near a territory for the next tick.
type ReportUnitsPayload struct {
	TerritoryID string      `json:"territory_id"`
	Units       []game.Unit `json:"units"`
}

// ReportUnitsBatchPayload queues units for several territories in one
// message, so a client can cover a whole layout every tick.
type ReportUnitsBatchPayload struct {
	Reports []ReportUnitsPayload `json:"reports"`
}

// UpdateTerritoryPayload queues units like report_units and asks for the
// territory's state in reply. The step itself runs on the next tick.
type UpdateTerritoryPayload struct {
	TerritoryID string      `json:"territory_id"`
	Units       []game.Unit `json:"units"`
}

// GetTerritoryPayload requests one territory.
type GetTerritoryPayload struct {
	TerritoryID string `json:"territory_id"`
}

// TerritoryAtPayload requests the territory covering a position.
type TerritoryAtPayload struct {
	Position game.Vector3 `json:"position"`
}

// TerritoryStatePayload carries a full territory.
type TerritoryStatePayload struct {
	Territory game.Territory `json:"territory"`
	State     string         `json:"capture_state"` // uncontested, held or challenged
}

// TerritoryListPayload carries every territory, sorted by ID.
type TerritoryListPayload struct {
	Territories []game.Territory `json:"territories"`
}

// TerritoryCapturedPayload announces an ownership transfer.
type TerritoryCapturedPayload struct {
	TerritoryID   string `json:"territory_id"`
	NewOwner      string `json:"new_owner"`
	TerritoryType string `json:"territory_type"`
}

// SetGeneratorActivePayload switches a generator on or off.
type SetGeneratorActivePayload struct {
	TerritoryID string `json:"territory_id"`
	GeneratorID string `json:"generator_id"`
	Active      bool   `json:"active"`
}

// HarvestPayload takes resources from a collection point.
type HarvestPayload struct {
	TerritoryID string `json:"territory_id"`
	PointID     string `json:"point_id"`
	Amount      int    `json:"amount"`
}

// HarvestResultPayload reports how much was taken.
type HarvestResultPayload struct {
	TerritoryID string            `json:"territory_id"`
	PointID     string            `json:"point_id"`
	Resource    game.ResourceType `json:"resource"`
	Taken       int               `json:"taken"`
}

// NewTerritoryState builds the state payload for a territory.
func NewTerritoryState(t game.Territory) TerritoryStatePayload {
	return TerritoryStatePayload{
		Territory: t,
		State:     game.CaptureStateOf(&t).String(),
	}
}

// NewCapturedPayload converts a capture event to its wire form.
func NewCapturedPayload(ev game.CaptureEvent) TerritoryCapturedPayload {
	return TerritoryCapturedPayload{
		TerritoryID:   ev.TerritoryID,
		NewOwner:      ev.NewOwner,
		TerritoryType: string(ev.TerritoryType),
	}
}
