package httpdto

import (
	"telemed-chat/internal/domain/room"

	"github.com/google/uuid"
)

// ChatRoomDTO is a room as seen by one participant.
type ChatRoomDTO struct {
	ID             string   `json:"id"`
	Participants   []string `json:"participants"`
	Unread         bool     `json:"unread"`
	CreatedAt      int64    `json:"createdAt"`
	LastActivityAt int64    `json:"lastActivityAt"`
}

func FromChatRoom(r room.ChatRoom, viewer uuid.UUID) ChatRoomDTO {
	ids := r.ParticipantIDs()
	participants := make([]string, 0, len(ids))
	for _, id := range ids {
		participants = append(participants, id.String())
	}
	return ChatRoomDTO{
		ID:             StringUUID(r.ID),
		Participants:   participants,
		Unread:         r.UnreadFor(viewer),
		CreatedAt:      r.CreatedAt,
		LastActivityAt: r.LastActivityAt,
	}
}

func FromChatRoomSlice(rooms []room.ChatRoom, viewer uuid.UUID) []ChatRoomDTO {
	out := make([]ChatRoomDTO, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, FromChatRoom(r, viewer))
	}
	return out
}
