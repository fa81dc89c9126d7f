package room

import (
	"sort"

	"github.com/google/uuid"
)

// ChatRoom represents the chat_rooms table. Timestamps are epoch milliseconds.
type ChatRoom struct {
	ID                uuid.UUID     `gorm:"type:uuid;primaryKey"`
	CreatedAt         int64         `gorm:"autoCreateTime:milli"`
	LastActivityAt    int64         `gorm:"index"`
	LastMessageAt     int64         `gorm:"index"`
	LastMessageAuthor uuid.NullUUID `gorm:"type:uuid"`

	// Relationships
	Participants []Participant `gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE"`
}

// Participant represents the chat_room_participants table
type Participant struct {
	RoomID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID     uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	JoinedAt   int64
	LastReadAt int64
}

func (ChatRoom) TableName() string {
	return "chat_rooms"
}

func (Participant) TableName() string {
	return "chat_room_participants"
}

// ParticipantIDs returns the participant user ids in ascending order.
func (r ChatRoom) ParticipantIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(r.Participants))
	for _, p := range r.Participants {
		ids = append(ids, p.UserID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

func (r ChatRoom) Participant(userID uuid.UUID) (Participant, bool) {
	for _, p := range r.Participants {
		if p.UserID == userID {
			return p, true
		}
	}
	return Participant{}, false
}

func (r ChatRoom) HasParticipant(userID uuid.UUID) bool {
	_, ok := r.Participant(userID)
	return ok
}

// UnreadFor reports whether the room holds a message newer than the user's
// last read mark that somebody else wrote.
func (r ChatRoom) UnreadFor(userID uuid.UUID) bool {
	p, ok := r.Participant(userID)
	if !ok || r.LastMessageAt == 0 {
		return false
	}
	if r.LastMessageAuthor.Valid && r.LastMessageAuthor.UUID == userID {
		return false
	}
	return r.LastMessageAt > p.LastReadAt
}

// SortByActivity orders rooms newest activity first, ties broken by id, and
// drops duplicate ids.
func SortByActivity(rooms []ChatRoom) []ChatRoom {
	seen := make(map[uuid.UUID]struct{}, len(rooms))
	out := make([]ChatRoom, 0, len(rooms))
	for _, r := range rooms {
		if _, dup := seen[r.ID]; dup {
			continue
		}
		seen[r.ID] = struct{}{}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].LastActivityAt != out[j].LastActivityAt {
			return out[i].LastActivityAt > out[j].LastActivityAt
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}
