package repository

import (
	"context"

	"telemed-chat/internal/domain/message"
	"telemed-chat/internal/domain/paging"
	"telemed-chat/internal/domain/room"

	"github.com/google/uuid"
)

type RoomRepository interface {
	// Create inserts the room together with its participants.
	Create(ctx context.Context, r *room.ChatRoom) error
	GetByID(ctx context.Context, id uuid.UUID) (room.ChatRoom, error)

	GetUserRooms(ctx context.Context, userID uuid.UUID, pageable paging.Pageable) ([]room.ChatRoom, error)
	CountUserRooms(ctx context.Context, userID uuid.UUID) (int64, error)
	// GetUserRoomsActiveSince returns the user's rooms that received a message
	// strictly after since (epoch ms).
	GetUserRoomsActiveSince(ctx context.Context, userID uuid.UUID, since int64) ([]room.ChatRoom, error)

	IsParticipant(ctx context.Context, roomID, userID uuid.UUID) (bool, error)
	MarkRead(ctx context.Context, roomID, userID uuid.UUID, at int64) error
	RecordMessage(ctx context.Context, roomID, authorID uuid.UUID, at int64) error
}

type MessageRepository interface {
	Create(ctx context.Context, m *message.ChatMessage) error
	GetByID(ctx context.Context, id uuid.UUID) (message.ChatMessage, error)
	GetRoomMessages(ctx context.Context, roomID uuid.UUID, pageable paging.Pageable) ([]message.ChatMessage, error)
	CountRoomMessages(ctx context.Context, roomID uuid.UUID) (int64, error)
}

// Repositories groups the repositories bound to one database handle.
type Repositories struct {
	Rooms    RoomRepository
	Messages MessageRepository
}

// Transactor runs fn with repositories bound to a single transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(repos Repositories) error) error
}
