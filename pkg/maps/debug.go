package maps

import (
	"fmt"
	"strings"
)

const debugColumns = 40

const debugMarkers = "123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Debug returns a string visualization of the layout, viewed from above.
func (l *Layout) Debug() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Layout: %s (%s)\n", l.Name, l.ID))
	sb.WriteString(fmt.Sprintf("Size: %gx%g\n", l.Width, l.Depth))
	sb.WriteString(fmt.Sprintf("Territories: %d\n\n", len(l.Territories)))

	cell := l.Width / debugColumns
	rows := int(l.Depth/cell) + 1
	grid := make([][]byte, rows)
	for z := range grid {
		grid[z] = []byte(strings.Repeat(".", debugColumns+1))
	}
	for i, t := range l.Territories {
		if i >= len(debugMarkers) {
			break
		}
		x := clamp(int(t.Position.X/cell), 0, debugColumns)
		z := clamp(int(t.Position.Z/cell), 0, rows-1)
		grid[z][x] = debugMarkers[i]
	}

	sb.WriteString("Overview:\n")
	for _, row := range grid {
		sb.Write(row)
		sb.WriteString("\n")
	}

	sb.WriteString("\nTerritories:\n")
	for i, t := range l.Territories {
		marker := "?"
		if i < len(debugMarkers) {
			marker = string(debugMarkers[i])
		}
		sb.WriteString(fmt.Sprintf("  %s. %s (%s)\n", marker, t.Name, t.ID))
		sb.WriteString(fmt.Sprintf("     Type: %s\n", t.Type))
		sb.WriteString(fmt.Sprintf("     Position: (%.1f, %.1f, %.1f)\n", t.Position.X, t.Position.Y, t.Position.Z))
		for _, g := range t.Generators {
			sb.WriteString(fmt.Sprintf("     Generator: %s active=%v\n", g.Type, g.Active))
		}
		for _, s := range t.Storages {
			sb.WriteString(fmt.Sprintf("     Storage: %s capacity=%g\n", s.Type, s.Capacity))
		}
		for _, p := range t.CollectionPoints {
			sb.WriteString(fmt.Sprintf("     Pickup: %s amount=%d\n", p.ResourceType, p.Amount))
		}
	}

	return sb.String()
}
