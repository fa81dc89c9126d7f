package httpdto

import (
	"telemed-chat/internal/domain/message"
)

// ChatMessageRequest is used for POST /api/chat/message. Author and source
// are accepted for compatibility and replaced with the caller's identity;
// an unknown source still fails to decode.
type ChatMessageRequest struct {
	RoomID     string         `json:"roomId" binding:"required"`
	Author     string         `json:"author,omitempty"`
	Source     message.Source `json:"source,omitempty"`
	Content    string         `json:"content"`
	Attachment string         `json:"attachment,omitempty"`
}

type ChatMessageDTO struct {
	ID         string `json:"id"`
	RoomID     string `json:"roomId"`
	Author     string `json:"author"`
	Source     string `json:"source"`
	Content    string `json:"content"`
	Attachment string `json:"attachment,omitempty"`
	Timestamp  int64  `json:"timestamp"`
}

func FromChatMessage(m message.ChatMessage) ChatMessageDTO {
	return ChatMessageDTO{
		ID:         StringUUID(m.ID),
		RoomID:     StringUUID(m.RoomID),
		Author:     StringUUID(m.Author),
		Source:     string(m.Source),
		Content:    m.Content,
		Attachment: m.Attachment,
		Timestamp:  m.Timestamp,
	}
}
