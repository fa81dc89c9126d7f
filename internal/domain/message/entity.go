package message

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Source tells who produced a message.
type Source string

const (
	SourceUser   Source = "USER"
	SourceSystem Source = "SYSTEM"
)

func (s Source) Valid() bool {
	return s == SourceUser || s == SourceSystem
}

func (s *Source) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		*s = ""
		return nil
	}
	parsed := Source(strings.ToUpper(raw))
	if !parsed.Valid() {
		return fmt.Errorf("unknown message source %q", raw)
	}
	*s = parsed
	return nil
}

// ChatMessage represents the chat_messages table
type ChatMessage struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	RoomID     uuid.UUID `gorm:"type:uuid;index:idx_chat_messages_room_created,priority:1"`
	Author     uuid.UUID `gorm:"type:uuid"`
	Source     Source    `gorm:"size:16"`
	Content    string
	Attachment string
	Timestamp  int64 `gorm:"column:created_at;index:idx_chat_messages_room_created,priority:2"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
