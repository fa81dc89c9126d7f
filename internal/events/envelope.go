package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Envelope struct {
	EventType     string          `json:"event_type"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	RoomID        string          `json:"room_id"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Payload       json.RawMessage `json:"payload"`
}

func NewEnvelope(eventType, aggregateType string, aggregateID, roomID uuid.UUID, payload any, at time.Time) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	return Envelope{
		EventType:     eventType,
		AggregateType: aggregateType,
		AggregateID:   aggregateID.String(),
		RoomID:        roomID.String(),
		OccurredAt:    at.UTC(),
		Payload:       data,
	}, nil
}

// RoomChannel is the pub/sub channel carrying events of one room.
func RoomChannel(roomID string) string {
	return fmt.Sprintf("chat:room:%s", roomID)
}
