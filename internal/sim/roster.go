// Package sim drives the territory registry at a fixed tick rate.
package sim

import (
	"sort"
	"sync"

	"kitten-defense/internal/game"
)

// Roster collects the units reported near each territory between ticks.
// Each reporting source replaces its own previous report; a tick takes the
// union of all sources and clears them, so units must be re-reported every
// tick to keep exerting influence.
type Roster struct {
	mu      sync.Mutex
	reports map[string]map[string][]game.Unit // territory -> source -> units
}

// NewRoster creates an empty roster.
func NewRoster() *Roster {
	return &Roster{reports: make(map[string]map[string][]game.Unit)}
}

// Report replaces the anonymous report for a territory.
func (r *Roster) Report(territoryID string, units []game.Unit) {
	r.ReportFrom(territoryID, "", units)
}

// ReportFrom replaces source's report for a territory.
func (r *Roster) ReportFrom(territoryID, source string, units []game.Unit) {
	r.mu.Lock()
	defer r.mu.Unlock()

	bySource := r.reports[territoryID]
	if bySource == nil {
		bySource = make(map[string][]game.Unit)
		r.reports[territoryID] = bySource
	}
	bySource[source] = append([]game.Unit(nil), units...)
}

// Take returns every unit reported for a territory and clears the reports.
// Sources are merged in name order.
func (r *Roster) Take(territoryID string) []game.Unit {
	r.mu.Lock()
	bySource := r.reports[territoryID]
	delete(r.reports, territoryID)
	r.mu.Unlock()

	if len(bySource) == 0 {
		return nil
	}
	sources := make([]string, 0, len(bySource))
	for s := range bySource {
		sources = append(sources, s)
	}
	sort.Strings(sources)

	var units []game.Unit
	for _, s := range sources {
		units = append(units, bySource[s]...)
	}
	return units
}

// Forget drops every report from source, e.g. when a client disconnects.
func (r *Roster) Forget(source string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, bySource := range r.reports {
		delete(bySource, source)
		if len(bySource) == 0 {
			delete(r.reports, id)
		}
	}
}

// Reported lists, in name order, the territories with reports pending.
func (r *Roster) Reported() []string {
	r.mu.Lock()
	ids := make([]string, 0, len(r.reports))
	for id := range r.reports {
		ids = append(ids, id)
	}
	r.mu.Unlock()
	sort.Strings(ids)
	return ids
}
