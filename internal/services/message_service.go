package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"telemed-chat/internal/domain/message"
	"telemed-chat/internal/domain/paging"
	"telemed-chat/internal/domain/room"
	"telemed-chat/internal/events"
	"telemed-chat/internal/repository"
	telemed_errors "telemed-chat/pkg/errors"
	"telemed-chat/pkg/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const MaxContentLength = 4000

type MessageService struct {
	repos     repository.Repositories
	tx        repository.Transactor
	publisher events.Publisher
	logger    *logger.Logger
	now       func() time.Time
}

func NewMessageService(repos repository.Repositories, tx repository.Transactor, publisher events.Publisher, l *logger.Logger) *MessageService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &MessageService{repos: repos, tx: tx, publisher: publisher, logger: l, now: time.Now}
}

func validateMessage(m message.ChatMessage) error {
	if m.RoomID == uuid.Nil {
		return fmt.Errorf("room id is required: %w", telemed_errors.ErrInvalidInput)
	}
	if m.Author == uuid.Nil {
		return fmt.Errorf("author is required: %w", telemed_errors.ErrInvalidInput)
	}
	if !m.Source.Valid() {
		return fmt.Errorf("unknown source %q: %w", m.Source, telemed_errors.ErrInvalidInput)
	}
	if strings.TrimSpace(m.Content) == "" && m.Attachment == "" {
		return fmt.Errorf("message has neither content nor attachment: %w", telemed_errors.ErrInvalidInput)
	}
	if utf8.RuneCountInString(m.Content) > MaxContentLength {
		return fmt.Errorf("content longer than %d characters: %w", MaxContentLength, telemed_errors.ErrInvalidInput)
	}
	return nil
}

// Send stores m in its room and announces it on the room channel. User
// messages are only accepted from room participants.
func (s *MessageService) Send(ctx context.Context, m message.ChatMessage) (message.ChatMessage, error) {
	if err := validateMessage(m); err != nil {
		return message.ChatMessage{}, err
	}

	m.ID = uuid.New()
	m.Timestamp = s.now().UnixMilli()

	err := s.tx.WithinTransaction(ctx, func(repos repository.Repositories) error {
		c, err := repos.Rooms.GetByID(ctx, m.RoomID)
		if err != nil {
			return err
		}
		if m.Source == message.SourceUser && !c.HasParticipant(m.Author) {
			return telemed_errors.ErrForbidden
		}
		if err := repos.Messages.Create(ctx, &m); err != nil {
			return err
		}
		return repos.Rooms.RecordMessage(ctx, m.RoomID, m.Author, m.Timestamp)
	})
	if err != nil {
		return message.ChatMessage{}, fmt.Errorf("failed to send message to room %s: %w", m.RoomID, err)
	}

	env, err := events.NewEnvelope(events.EventTypeMessageCreated, events.AggregateMessage, m.ID, m.RoomID, events.NewMessageCreatedPayload(m), s.now())
	if err == nil {
		err = s.publisher.Publish(ctx, env)
	}
	if err != nil && s.logger != nil {
		s.logger.WithContext(ctx).Sugar().Warnf("failed to publish message %s: %v", m.ID, err)
	}
	return m, nil
}

// Load returns one page of roomID's messages, newest first unless pageable
// says otherwise. viewerID must participate in the room.
func (s *MessageService) Load(ctx context.Context, viewerID, roomID uuid.UUID, pageable paging.Pageable) (paging.Page[message.ChatMessage], error) {
	c, err := s.repos.Rooms.GetByID(ctx, roomID)
	if err != nil {
		return paging.Page[message.ChatMessage]{}, fmt.Errorf("failed to load room %s: %w", roomID, err)
	}
	if !c.HasParticipant(viewerID) {
		return paging.Page[message.ChatMessage]{}, fmt.Errorf("user %s is not in room %s: %w", viewerID, roomID, telemed_errors.ErrForbidden)
	}

	var (
		messages []message.ChatMessage
		total    int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		messages, err = s.repos.Messages.GetRoomMessages(gctx, roomID, pageable)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.repos.Messages.CountRoomMessages(gctx, roomID)
		return err
	})
	if err := g.Wait(); err != nil {
		return paging.Page[message.ChatMessage]{}, fmt.Errorf("failed to load messages of room %s: %w", roomID, err)
	}
	return paging.NewPage(messages, pageable, total), nil
}

// Poll returns the rooms of userID that received messages after since
// (epoch ms), most recently active first.
func (s *MessageService) Poll(ctx context.Context, since int64, userID uuid.UUID) ([]room.ChatRoom, error) {
	rooms, err := s.repos.Rooms.GetUserRoomsActiveSince(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to poll rooms: %w", err)
	}
	return room.SortByActivity(rooms), nil
}
