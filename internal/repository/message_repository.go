package repository

import (
	"context"

	"telemed-chat/internal/domain/message"
	"telemed-chat/internal/domain/paging"
	telemed_errors "telemed-chat/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var messageSortColumns = map[string]string{
	"timestamp": "created_at",
}

var messageDefaultOrder = []clause.OrderByColumn{
	{Column: clause.Column{Name: "created_at"}, Desc: true},
}

type PostgresMessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &PostgresMessageRepository{db: db}
}

func (r *PostgresMessageRepository) Create(ctx context.Context, m *message.ChatMessage) error {
	res := r.db.WithContext(ctx).Create(m)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return telemed_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresMessageRepository) GetByID(ctx context.Context, id uuid.UUID) (message.ChatMessage, error) {
	var m message.ChatMessage
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if err != nil {
		return message.ChatMessage{}, translateNotFound(err)
	}
	return m, nil
}

func (r *PostgresMessageRepository) GetRoomMessages(ctx context.Context, roomID uuid.UUID, pageable paging.Pageable) ([]message.ChatMessage, error) {
	var messages []message.ChatMessage
	q := r.db.WithContext(ctx).Where("room_id = ?", roomID)

	if err := applyPaging(q, pageable, messageSortColumns, messageDefaultOrder, "id").Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *PostgresMessageRepository) CountRoomMessages(ctx context.Context, roomID uuid.UUID) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&message.ChatMessage{}).
		Where("room_id = ?", roomID).
		Count(&total).Error
	return total, err
}
