package server

import (
	"kitten-defense/internal/game"
	"kitten-defense/internal/protocol"
)

// CaptureBroadcaster announces capture events to every connected client.
type CaptureBroadcaster struct {
	hub *Hub
}

// NewCaptureBroadcaster creates a notifier that broadcasts over hub.
func NewCaptureBroadcaster(hub *Hub) *CaptureBroadcaster {
	return &CaptureBroadcaster{hub: hub}
}

// NotifyCapture sends a territory_captured message to all clients.
func (b *CaptureBroadcaster) NotifyCapture(ev game.CaptureEvent) {
	b.hub.BroadcastAll(protocol.TypeTerritoryCaptured, protocol.NewCapturedPayload(ev))
}
