package repository

import (
	"context"

	"telemed-chat/internal/domain/paging"
	"telemed-chat/internal/domain/room"
	telemed_errors "telemed-chat/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var roomSortColumns = map[string]string{
	"createdAt":      "created_at",
	"lastActivityAt": "last_activity_at",
}

var roomDefaultOrder = []clause.OrderByColumn{
	{Column: clause.Column{Name: "last_activity_at"}, Desc: true},
}

type PostgresRoomRepository struct {
	db *gorm.DB
}

func NewRoomRepository(db *gorm.DB) RoomRepository {
	return &PostgresRoomRepository{db: db}
}

func (r *PostgresRoomRepository) Create(ctx context.Context, c *room.ChatRoom) error {
	for i := range c.Participants {
		c.Participants[i].RoomID = c.ID
	}
	res := r.db.WithContext(ctx).Create(c)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return telemed_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresRoomRepository) GetByID(ctx context.Context, id uuid.UUID) (room.ChatRoom, error) {
	var c room.ChatRoom
	err := r.db.WithContext(ctx).
		Preload("Participants").
		Where("id = ?", id).
		First(&c).Error
	if err != nil {
		return room.ChatRoom{}, translateNotFound(err)
	}
	return c, nil
}

func (r *PostgresRoomRepository) memberOf(userID uuid.UUID) *gorm.DB {
	return r.db.Model(&room.Participant{}).
		Select("room_id").
		Where("user_id = ?", userID)
}

func (r *PostgresRoomRepository) GetUserRooms(ctx context.Context, userID uuid.UUID, pageable paging.Pageable) ([]room.ChatRoom, error) {
	var rooms []room.ChatRoom
	q := r.db.WithContext(ctx).
		Preload("Participants").
		Where("id IN (?)", r.memberOf(userID))

	if err := applyPaging(q, pageable, roomSortColumns, roomDefaultOrder, "id").Find(&rooms).Error; err != nil {
		return nil, err
	}
	return rooms, nil
}

func (r *PostgresRoomRepository) CountUserRooms(ctx context.Context, userID uuid.UUID) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&room.Participant{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	return total, err
}

// GetUserRoomsActiveSince returns userID's rooms whose last message is
// strictly newer than since.
func (r *PostgresRoomRepository) GetUserRoomsActiveSince(ctx context.Context, userID uuid.UUID, since int64) ([]room.ChatRoom, error) {
	var rooms []room.ChatRoom
	err := r.db.WithContext(ctx).
		Preload("Participants").
		Where("id IN (?) AND last_message_at > ?", r.memberOf(userID), since).
		Order("last_activity_at DESC").
		Order("id").
		Find(&rooms).Error
	if err != nil {
		return nil, err
	}
	return rooms, nil
}

func (r *PostgresRoomRepository) IsParticipant(ctx context.Context, roomID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&room.Participant{}).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresRoomRepository) MarkRead(ctx context.Context, roomID, userID uuid.UUID, at int64) error {
	res := r.db.WithContext(ctx).
		Model(&room.Participant{}).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Update("last_read_at", at)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return telemed_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresRoomRepository) RecordMessage(ctx context.Context, roomID, authorID uuid.UUID, at int64) error {
	res := r.db.WithContext(ctx).
		Model(&room.ChatRoom{}).
		Where("id = ?", roomID).
		Updates(map[string]interface{}{
			"last_activity_at":    at,
			"last_message_at":     at,
			"last_message_author": uuid.NullUUID{UUID: authorID, Valid: true},
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return telemed_errors.ErrNotFound
	}
	return nil
}
