package events

import (
	"telemed-chat/internal/domain/message"
	"telemed-chat/internal/domain/room"

	"github.com/google/uuid"
)

// Event types follow the format domain.action
const (
	EventTypeMessageCreated = "message.created"
	EventTypeRoomCreated    = "room.created"
	EventTypeRoomRead       = "room.read"
)

const (
	AggregateRoom    = "room"
	AggregateMessage = "message"
)

// Payloads use the same camelCase keys and epoch millisecond times as the
// REST API, so a subscriber can decode a pushed message like a polled one.

type MessageCreatedPayload struct {
	ID         string `json:"id"`
	RoomID     string `json:"roomId"`
	Author     string `json:"author"`
	Source     string `json:"source"`
	Content    string `json:"content"`
	Attachment string `json:"attachment,omitempty"`
	Timestamp  int64  `json:"timestamp"`
}

func NewMessageCreatedPayload(m message.ChatMessage) MessageCreatedPayload {
	return MessageCreatedPayload{
		ID:         m.ID.String(),
		RoomID:     m.RoomID.String(),
		Author:     m.Author.String(),
		Source:     string(m.Source),
		Content:    m.Content,
		Attachment: m.Attachment,
		Timestamp:  m.Timestamp,
	}
}

type RoomCreatedPayload struct {
	RoomID       string   `json:"roomId"`
	Participants []string `json:"participants"`
	CreatedAt    int64    `json:"createdAt"`
}

func NewRoomCreatedPayload(r room.ChatRoom) RoomCreatedPayload {
	ids := r.ParticipantIDs()
	participants := make([]string, 0, len(ids))
	for _, id := range ids {
		participants = append(participants, id.String())
	}
	return RoomCreatedPayload{RoomID: r.ID.String(), Participants: participants, CreatedAt: r.CreatedAt}
}

type RoomReadPayload struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
	ReadAt int64  `json:"readAt"`
}

func NewRoomReadPayload(roomID, userID uuid.UUID, readAt int64) RoomReadPayload {
	return RoomReadPayload{RoomID: roomID.String(), UserID: userID.String(), ReadAt: readAt}
}
