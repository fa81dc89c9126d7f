package services

import (
	"context"
	"fmt"
	"time"

	"telemed-chat/internal/domain/paging"
	"telemed-chat/internal/domain/room"
	"telemed-chat/internal/events"
	"telemed-chat/internal/repository"
	telemed_errors "telemed-chat/pkg/errors"
	"telemed-chat/pkg/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type RoomService struct {
	repos     repository.Repositories
	tx        repository.Transactor
	publisher events.Publisher
	logger    *logger.Logger
	now       func() time.Time
}

func NewRoomService(repos repository.Repositories, tx repository.Transactor, publisher events.Publisher, l *logger.Logger) *RoomService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &RoomService{repos: repos, tx: tx, publisher: publisher, logger: l, now: time.Now}
}

// Load returns one page of the rooms userID participates in.
func (s *RoomService) Load(ctx context.Context, pageable paging.Pageable, userID uuid.UUID) (paging.Page[room.ChatRoom], error) {
	var (
		rooms []room.ChatRoom
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rooms, err = s.repos.Rooms.GetUserRooms(gctx, userID, pageable)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.repos.Rooms.CountUserRooms(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return paging.Page[room.ChatRoom]{}, fmt.Errorf("failed to load rooms: %w", err)
	}
	return paging.NewPage(rooms, pageable, total), nil
}

// Create opens a room for the given participants.
func (s *RoomService) Create(ctx context.Context, participants []uuid.UUID) (room.ChatRoom, error) {
	if len(participants) == 0 {
		return room.ChatRoom{}, fmt.Errorf("room needs participants: %w", telemed_errors.ErrInvalidInput)
	}

	now := s.now().UnixMilli()
	c := room.ChatRoom{
		ID:             uuid.New(),
		CreatedAt:      now,
		LastActivityAt: now,
	}
	seen := make(map[uuid.UUID]struct{}, len(participants))
	for _, userID := range participants {
		if userID == uuid.Nil {
			return room.ChatRoom{}, fmt.Errorf("nil participant id: %w", telemed_errors.ErrInvalidInput)
		}
		if _, dup := seen[userID]; dup {
			continue
		}
		seen[userID] = struct{}{}
		c.Participants = append(c.Participants, room.Participant{
			RoomID:     c.ID,
			UserID:     userID,
			JoinedAt:   now,
			LastReadAt: now,
		})
	}

	err := s.tx.WithinTransaction(ctx, func(repos repository.Repositories) error {
		return repos.Rooms.Create(ctx, &c)
	})
	if err != nil {
		return room.ChatRoom{}, fmt.Errorf("failed to create room: %w", err)
	}

	s.publish(ctx, events.EventTypeRoomCreated, c.ID, events.NewRoomCreatedPayload(c))
	return c, nil
}

// MarkAsRead moves userID's read mark in roomID to now.
func (s *RoomService) MarkAsRead(ctx context.Context, userID, roomID uuid.UUID) (room.ChatRoom, error) {
	now := s.now().UnixMilli()
	if err := s.repos.Rooms.MarkRead(ctx, roomID, userID, now); err != nil {
		return room.ChatRoom{}, fmt.Errorf("failed to mark room %s as read: %w", roomID, err)
	}

	c, err := s.repos.Rooms.GetByID(ctx, roomID)
	if err != nil {
		return room.ChatRoom{}, fmt.Errorf("failed to reload room %s: %w", roomID, err)
	}

	s.publish(ctx, events.EventTypeRoomRead, roomID, events.NewRoomReadPayload(roomID, userID, now))
	return c, nil
}

func (s *RoomService) publish(ctx context.Context, eventType string, roomID uuid.UUID, payload any) {
	env, err := events.NewEnvelope(eventType, events.AggregateRoom, roomID, roomID, payload, s.now())
	if err == nil {
		err = s.publisher.Publish(ctx, env)
	}
	if err != nil && s.logger != nil {
		s.logger.WithContext(ctx).Sugar().Warnf("failed to publish %s for room %s: %v", eventType, roomID, err)
	}
}
