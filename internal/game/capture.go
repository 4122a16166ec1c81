package game

// CaptureState describes how influence is acting on a territory this tick.
type CaptureState int

const (
	CaptureUncontested CaptureState = iota // Nobody dominates, progress decays
	CaptureHeld                            // Owner dominates, progress decays
	CaptureChallenged                      // Another faction dominates, progress accrues
)

// String returns the state name.
func (s CaptureState) String() string {
	switch s {
	case CaptureUncontested:
		return "uncontested"
	case CaptureHeld:
		return "held"
	case CaptureChallenged:
		return "challenged"
	default:
		return "unknown"
	}
}

// CaptureStateOf classifies a territory from its current influence zones.
func CaptureStateOf(t *Territory) CaptureState {
	dominant, ok := DominantForce(t.InfluenceZones)
	switch {
	case !ok:
		return CaptureUncontested
	case dominant == t.Owner:
		return CaptureHeld
	default:
		return CaptureChallenged
	}
}

// AdvanceCapture moves capture progress one step based on the territory's
// influence zones. Progress only accrues for a dominant faction that does not
// already own the territory; otherwise it decays toward zero. Returns the
// capture event when ownership changed hands.
func AdvanceCapture(t *Territory, cfg Config) *CaptureEvent {
	dominant, ok := DominantForce(t.InfluenceZones)
	if !ok || dominant == t.Owner {
		if t.CaptureProgress > 0 {
			t.CaptureProgress--
		}
		return nil
	}

	t.CaptureProgress++
	if t.CaptureProgress < cfg.CaptureTime {
		return nil
	}

	t.Owner = dominant
	t.CaptureProgress = 0
	t.ControlPoints = cfg.MaxControlPoints
	return &CaptureEvent{
		TerritoryID:   t.ID,
		NewOwner:      t.Owner,
		TerritoryType: t.Type,
	}
}
