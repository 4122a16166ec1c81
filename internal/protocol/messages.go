// Package protocol defines the network message types exchanged with the
// territory server.
package protocol

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// MessageType identifies the type of message.
type MessageType string

// Territory message types
const (
	TypeCreateTerritory    MessageType = "create_territory"
	TypeTerritoryCreated   MessageType = "territory_created"
	TypeReportUnits        MessageType = "report_units"
	TypeReportUnitsBatch   MessageType = "report_units_batch"
	TypeUpdateTerritory    MessageType = "update_territory"
	TypeGetTerritory       MessageType = "get_territory"
	TypeTerritoryAt        MessageType = "territory_at"
	TypeTerritoryState     MessageType = "territory_state"
	TypeListTerritories    MessageType = "list_territories"
	TypeTerritoryList      MessageType = "territory_list"
	TypeTerritoryCaptured  MessageType = "territory_captured"
	TypeSetGeneratorActive MessageType = "set_generator_active"
	TypeHarvest            MessageType = "harvest"
	TypeHarvestResult      MessageType = "harvest_result"
)

// System message types
const (
	TypeWelcome MessageType = "welcome"
	TypeError   MessageType = "error"
	TypePing    MessageType = "ping"
	TypePong    MessageType = "pong"
)

// Message is the envelope for all messages.
type Message struct {
	Type      MessageType     `json:"type"`
	ID        string          `json:"id"`
	Timestamp int64           `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// NewMessage creates a new message with the given type and payload.
func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      msgType,
		ID:        uuid.New().String(),
		Timestamp: time.Now().UnixMilli(),
		Payload:   data,
	}, nil
}

// NewReply creates a message answering the request with ID requestID.
func NewReply(requestID string, msgType MessageType, payload interface{}) (*Message, error) {
	msg, err := NewMessage(msgType, payload)
	if err != nil {
		return nil, err
	}
	if requestID != "" {
		msg.ID = requestID
	}
	return msg, nil
}

// ParsePayload unmarshals the payload into the given type.
func (m *Message) ParsePayload(v interface{}) error {
	return json.Unmarshal(m.Payload, v)
}

// ErrorCode represents an error type.
type ErrorCode string

const (
	ErrCodeInvalidPayload         ErrorCode = "invalid_payload"
	ErrCodeUnknownMessage         ErrorCode = "unknown_message"
	ErrCodeUnknownTerritory       ErrorCode = "unknown_territory"
	ErrCodeDuplicateTerritory     ErrorCode = "duplicate_territory"
	ErrCodeInvalidTerritory       ErrorCode = "invalid_territory"
	ErrCodeUnknownGenerator       ErrorCode = "unknown_generator"
	ErrCodeUnknownCollectionPoint ErrorCode = "unknown_collection_point"
	ErrCodeInvalidResource        ErrorCode = "invalid_resource"
	ErrCodeRateLimited            ErrorCode = "rate_limited"
	ErrCodeInternalError          ErrorCode = "internal_error"
)

// ErrorPayload is the payload for error messages.
type ErrorPayload struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}
