// Package chat adapts chat requests from authenticated callers to the room
// and message services. It owns the session's last fetch bookkeeping and
// nothing else.
package chat

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"telemed-chat/internal/domain/auth"
	"telemed-chat/internal/domain/message"
	"telemed-chat/internal/domain/paging"
	"telemed-chat/internal/domain/room"

	"github.com/google/uuid"
)

type RoomStore interface {
	Load(ctx context.Context, pageable paging.Pageable, userID uuid.UUID) (paging.Page[room.ChatRoom], error)
	Create(ctx context.Context, participants []uuid.UUID) (room.ChatRoom, error)
	MarkAsRead(ctx context.Context, userID, roomID uuid.UUID) (room.ChatRoom, error)
}

type MessageStore interface {
	Send(ctx context.Context, m message.ChatMessage) (message.ChatMessage, error)
	Load(ctx context.Context, viewerID, roomID uuid.UUID, pageable paging.Pageable) (paging.Page[message.ChatMessage], error)
	Poll(ctx context.Context, since int64, userID uuid.UUID) ([]room.ChatRoom, error)
}

// Session is the per-client attribute bag the gateway records fetch times in.
type Session interface {
	LastFetch(ctx context.Context, now int64) (int64, error)
	SetLastFetch(ctx context.Context, ms int64) error
}

// Response pairs a payload with the HTTP status it is served under.
type Response[T any] struct {
	Status int
	Body   T
}

func ok[T any](body T) Response[T] {
	return Response[T]{Status: http.StatusOK, Body: body}
}

type Gateway struct {
	rooms    RoomStore
	messages MessageStore
	now      func() time.Time
}

type Option func(*Gateway)

// WithClock replaces time.Now as the source of fetch timestamps.
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) {
		g.now = now
	}
}

func NewGateway(rooms RoomStore, messages MessageStore, opts ...Option) *Gateway {
	g := &Gateway{rooms: rooms, messages: messages, now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Gateway) nowMillis() int64 {
	return g.now().UnixMilli()
}

// ListRooms records the fetch and returns a page of the caller's rooms.
func (g *Gateway) ListRooms(ctx context.Context, p auth.Principal, s Session, pageable paging.Pageable) (Response[paging.Page[room.ChatRoom]], error) {
	if err := s.SetLastFetch(ctx, g.nowMillis()); err != nil {
		return Response[paging.Page[room.ChatRoom]]{}, fmt.Errorf("failed to record last fetch: %w", err)
	}
	page, err := g.rooms.Load(ctx, pageable, p.ID)
	if err != nil {
		return Response[paging.Page[room.ChatRoom]]{}, err
	}
	return ok(page), nil
}

// CreateRoom opens a room for participants plus the caller.
func (g *Gateway) CreateRoom(ctx context.Context, p auth.Principal, participants []uuid.UUID) (Response[room.ChatRoom], error) {
	members := make([]uuid.UUID, 0, len(participants)+1)
	members = append(members, p.ID)
	for _, id := range participants {
		if id != p.ID {
			members = append(members, id)
		}
	}

	created, err := g.rooms.Create(ctx, members)
	if err != nil {
		return Response[room.ChatRoom]{}, err
	}
	return ok(created), nil
}

// SendMessage posts m as the caller. Author and source from the payload are
// ignored.
func (g *Gateway) SendMessage(ctx context.Context, p auth.Principal, m message.ChatMessage) (Response[message.ChatMessage], error) {
	m.Author = p.ID
	m.Source = message.SourceUser

	sent, err := g.messages.Send(ctx, m)
	if err != nil {
		return Response[message.ChatMessage]{}, err
	}
	return Response[message.ChatMessage]{Status: http.StatusAccepted, Body: sent}, nil
}

// LoadMessages records the fetch and returns a page of roomID's messages.
func (g *Gateway) LoadMessages(ctx context.Context, p auth.Principal, s Session, roomID uuid.UUID, pageable paging.Pageable) (Response[paging.Page[message.ChatMessage]], error) {
	if err := s.SetLastFetch(ctx, g.nowMillis()); err != nil {
		return Response[paging.Page[message.ChatMessage]]{}, fmt.Errorf("failed to record last fetch: %w", err)
	}
	page, err := g.messages.Load(ctx, p.ID, roomID, pageable)
	if err != nil {
		return Response[paging.Page[message.ChatMessage]]{}, err
	}
	return ok(page), nil
}

// Poll returns the caller's rooms with messages newer than the session's
// last fetch. The last fetch moves to the time of this call even when the
// session read or the lookup fails, so a failed poll does not replay on the
// next one.
func (g *Gateway) Poll(ctx context.Context, p auth.Principal, s Session) (resp Response[[]room.ChatRoom], err error) {
	now := g.nowMillis()
	defer func() {
		if serr := s.SetLastFetch(ctx, now); serr != nil && err == nil {
			resp, err = Response[[]room.ChatRoom]{}, fmt.Errorf("failed to record last fetch: %w", serr)
		}
	}()

	since, err := s.LastFetch(ctx, now)
	if err != nil {
		return Response[[]room.ChatRoom]{}, fmt.Errorf("failed to read last fetch: %w", err)
	}

	rooms, err := g.messages.Poll(ctx, since, p.ID)
	if err != nil {
		return Response[[]room.ChatRoom]{}, err
	}
	if rooms == nil {
		rooms = []room.ChatRoom{}
	}
	return ok(rooms), nil
}

// MarkAsRead clears the caller's unread state in roomID.
func (g *Gateway) MarkAsRead(ctx context.Context, p auth.Principal, roomID uuid.UUID) (Response[room.ChatRoom], error) {
	updated, err := g.rooms.MarkAsRead(ctx, p.ID, roomID)
	if err != nil {
		return Response[room.ChatRoom]{}, err
	}
	return ok(updated), nil
}
