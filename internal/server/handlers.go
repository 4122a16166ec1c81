package server

import (
	"errors"
	"fmt"
	"time"

	"kitten-defense/internal/game"
	"kitten-defense/internal/protocol"
)

// Handlers processes client messages.
type Handlers struct {
	server *Server
}

// NewHandlers creates message handlers.
func NewHandlers(s *Server) *Handlers {
	return &Handlers{server: s}
}

// Handle routes a message to the appropriate handler.
func (h *Handlers) Handle(client *Client, msg *protocol.Message) {
	var err error

	switch msg.Type {
	case protocol.TypePing:
		err = h.handlePing(client, msg)
	case protocol.TypeCreateTerritory:
		err = h.handleCreateTerritory(client, msg)
	case protocol.TypeReportUnits:
		err = h.handleReportUnits(client, msg)
	case protocol.TypeReportUnitsBatch:
		err = h.handleReportUnitsBatch(client, msg)
	case protocol.TypeUpdateTerritory:
		err = h.handleUpdateTerritory(client, msg)
	case protocol.TypeGetTerritory:
		err = h.handleGetTerritory(client, msg)
	case protocol.TypeTerritoryAt:
		err = h.handleTerritoryAt(client, msg)
	case protocol.TypeListTerritories:
		err = h.handleListTerritories(client, msg)
	case protocol.TypeSetGeneratorActive:
		err = h.handleSetGeneratorActive(client, msg)
	case protocol.TypeHarvest:
		err = h.handleHarvest(client, msg)
	default:
		h.server.logger.Printf("Unknown message type from %s: %s", client.ID, msg.Type)
		client.sendError(msg.ID, protocol.ErrCodeUnknownMessage, "unknown message type")
		return
	}

	if err != nil {
		h.server.logger.Printf("Error handling %s from %s: %v", msg.Type, client.ID, err)
		client.sendError(msg.ID, errorCode(err), err.Error())
	}
}

var (
	// errInvalidPayload marks a payload that could not be decoded.
	errInvalidPayload = errors.New("invalid payload")

	errNoTerritoryAt = fmt.Errorf("%w: none covers that position", game.ErrUnknownTerritory)
)

func unknownTerritory(id string) error {
	return fmt.Errorf("%w: %s", game.ErrUnknownTerritory, id)
}

// errorCode maps simulation errors to wire error codes.
func errorCode(err error) protocol.ErrorCode {
	switch {
	case errors.Is(err, errInvalidPayload):
		return protocol.ErrCodeInvalidPayload
	case errors.Is(err, game.ErrUnknownTerritory):
		return protocol.ErrCodeUnknownTerritory
	case errors.Is(err, game.ErrDuplicateTerritory):
		return protocol.ErrCodeDuplicateTerritory
	case errors.Is(err, game.ErrInvalidTerritory):
		return protocol.ErrCodeInvalidTerritory
	case errors.Is(err, game.ErrUnknownGenerator):
		return protocol.ErrCodeUnknownGenerator
	case errors.Is(err, game.ErrUnknownCollectionPoint):
		return protocol.ErrCodeUnknownCollectionPoint
	case errors.Is(err, game.ErrInvalidResource):
		return protocol.ErrCodeInvalidResource
	default:
		return protocol.ErrCodeInternalError
	}
}

func parse(msg *protocol.Message, v interface{}) error {
	if err := msg.ParsePayload(v); err != nil {
		return errInvalidPayload
	}
	return nil
}

func reply(client *Client, requestID string, msgType protocol.MessageType, payload interface{}) error {
	msg, err := protocol.NewReply(requestID, msgType, payload)
	if err != nil {
		return err
	}
	client.Send(msg)
	return nil
}

// ==================== System Handlers ====================

func (h *Handlers) handlePing(client *Client, msg *protocol.Message) error {
	return reply(client, msg.ID, protocol.TypePong, protocol.PongPayload{
		ServerTime: time.Now().UnixMilli(),
		Tick:       h.server.currentTick(),
	})
}

// ==================== Territory Handlers ====================

func (h *Handlers) handleCreateTerritory(client *Client, msg *protocol.Message) error {
	var payload protocol.CreateTerritoryPayload
	if err := parse(msg, &payload); err != nil {
		return err
	}

	t, err := h.server.reg.CreateTerritory(payload.TerritoryID, payload.Position, payload.Type)
	if err != nil {
		return err
	}

	h.server.logger.Printf("Client %s created territory %s (%s)", client.ID, t.ID, t.Type)
	return reply(client, msg.ID, protocol.TypeTerritoryCreated, protocol.NewTerritoryState(t))
}

// handleReportUnits queues the client's units for the next tick. Each client
// replaces its own previous report for the territory.
func (h *Handlers) handleReportUnits(client *Client, msg *protocol.Message) error {
	var payload protocol.ReportUnitsPayload
	if err := parse(msg, &payload); err != nil {
		return err
	}
	if _, ok := h.server.reg.GetTerritory(payload.TerritoryID); !ok {
		return unknownTerritory(payload.TerritoryID)
	}

	h.server.roster.ReportFrom(payload.TerritoryID, client.ID, payload.Units)
	return nil
}

// handleReportUnitsBatch queues reports for several territories. Nothing is
// queued if any territory is unknown.
func (h *Handlers) handleReportUnitsBatch(client *Client, msg *protocol.Message) error {
	var payload protocol.ReportUnitsBatchPayload
	if err := parse(msg, &payload); err != nil {
		return err
	}
	for _, r := range payload.Reports {
		if _, ok := h.server.reg.GetTerritory(r.TerritoryID); !ok {
			return unknownTerritory(r.TerritoryID)
		}
	}

	for _, r := range payload.Reports {
		h.server.roster.ReportFrom(r.TerritoryID, client.ID, r.Units)
	}
	return nil
}

// handleUpdateTerritory queues the units for the next tick and replies with
// the territory as it stands. Only the tick loop advances territories.
func (h *Handlers) handleUpdateTerritory(client *Client, msg *protocol.Message) error {
	var payload protocol.UpdateTerritoryPayload
	if err := parse(msg, &payload); err != nil {
		return err
	}
	t, ok := h.server.reg.GetTerritory(payload.TerritoryID)
	if !ok {
		return unknownTerritory(payload.TerritoryID)
	}

	h.server.roster.ReportFrom(payload.TerritoryID, client.ID, payload.Units)
	return reply(client, msg.ID, protocol.TypeTerritoryState, protocol.NewTerritoryState(t))
}

func (h *Handlers) handleGetTerritory(client *Client, msg *protocol.Message) error {
	var payload protocol.GetTerritoryPayload
	if err := parse(msg, &payload); err != nil {
		return err
	}

	t, ok := h.server.reg.GetTerritory(payload.TerritoryID)
	if !ok {
		return unknownTerritory(payload.TerritoryID)
	}
	return reply(client, msg.ID, protocol.TypeTerritoryState, protocol.NewTerritoryState(t))
}

func (h *Handlers) handleTerritoryAt(client *Client, msg *protocol.Message) error {
	var payload protocol.TerritoryAtPayload
	if err := parse(msg, &payload); err != nil {
		return err
	}

	t, ok := h.server.reg.GetTerritoryByPosition(payload.Position)
	if !ok {
		return errNoTerritoryAt
	}
	return reply(client, msg.ID, protocol.TypeTerritoryState, protocol.NewTerritoryState(t))
}

func (h *Handlers) handleListTerritories(client *Client, msg *protocol.Message) error {
	return reply(client, msg.ID, protocol.TypeTerritoryList, protocol.TerritoryListPayload{
		Territories: h.server.reg.Territories(),
	})
}

// ==================== Resource Handlers ====================

func (h *Handlers) handleSetGeneratorActive(client *Client, msg *protocol.Message) error {
	var payload protocol.SetGeneratorActivePayload
	if err := parse(msg, &payload); err != nil {
		return err
	}

	if err := h.server.reg.SetGeneratorActive(payload.TerritoryID, payload.GeneratorID, payload.Active); err != nil {
		return err
	}

	t, _ := h.server.reg.GetTerritory(payload.TerritoryID)
	return reply(client, msg.ID, protocol.TypeTerritoryState, protocol.NewTerritoryState(t))
}

func (h *Handlers) handleHarvest(client *Client, msg *protocol.Message) error {
	var payload protocol.HarvestPayload
	if err := parse(msg, &payload); err != nil {
		return err
	}

	taken, err := h.server.reg.Harvest(payload.TerritoryID, payload.PointID, payload.Amount)
	if err != nil {
		return err
	}

	var resource game.ResourceType
	if t, ok := h.server.reg.GetTerritory(payload.TerritoryID); ok {
		if p := t.Resources.CollectionPoint(payload.PointID); p != nil {
			resource = p.ResourceType
		}
	}
	return reply(client, msg.ID, protocol.TypeHarvestResult, protocol.HarvestResultPayload{
		TerritoryID: payload.TerritoryID,
		PointID:     payload.PointID,
		Resource:    resource,
		Taken:       taken,
	})
}
