package repository

import (
	"context"
	"errors"
	"testing"

	"telemed-chat/internal/domain/message"
	"telemed-chat/internal/domain/paging"
	"telemed-chat/internal/domain/room"
	"telemed-chat/pkg/database"
	telemed_errors "telemed-chat/pkg/errors"

	"github.com/google/uuid"
)

func newRoom(at int64, users ...uuid.UUID) *room.ChatRoom {
	r := &room.ChatRoom{ID: uuid.New(), CreatedAt: at, LastActivityAt: at}
	for _, u := range users {
		r.Participants = append(r.Participants, room.Participant{UserID: u, JoinedAt: at, LastReadAt: at})
	}
	return r
}

func TestRoomRepositoryCreateAndGet(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories(database.OpenTestDB(t))

	alice, bob := uuid.New(), uuid.New()
	created := newRoom(1000, alice, bob)
	if err := repos.Rooms.Create(ctx, created); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repos.Rooms.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(got.Participants) != 2 || !got.HasParticipant(alice) || !got.HasParticipant(bob) {
		t.Fatalf("participants = %+v", got.Participants)
	}
	if got.CreatedAt != 1000 {
		t.Errorf("CreatedAt = %d, want 1000", got.CreatedAt)
	}

	if err := repos.Rooms.Create(ctx, created); !errors.Is(err, telemed_errors.ErrAlreadyExists) {
		t.Errorf("duplicate Create err = %v, want ErrAlreadyExists", err)
	}

	if _, err := repos.Rooms.GetByID(ctx, uuid.New()); !errors.Is(err, telemed_errors.ErrNotFound) {
		t.Errorf("GetByID unknown err = %v, want ErrNotFound", err)
	}
}

func TestRoomRepositoryUserRoomsPaging(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories(database.OpenTestDB(t))

	alice, bob := uuid.New(), uuid.New()
	var ids []uuid.UUID
	for i := 0; i < 5; i++ {
		r := newRoom(int64(1000+i), alice)
		if err := repos.Rooms.Create(ctx, r); err != nil {
			t.Fatalf("Create: %v", err)
		}
		ids = append(ids, r.ID)
	}
	if err := repos.Rooms.Create(ctx, newRoom(5000, bob)); err != nil {
		t.Fatalf("Create: %v", err)
	}

	total, err := repos.Rooms.CountUserRooms(ctx, alice)
	if err != nil {
		t.Fatalf("CountUserRooms: %v", err)
	}
	if total != 5 {
		t.Fatalf("total = %d, want 5", total)
	}

	first, err := repos.Rooms.GetUserRooms(ctx, alice, paging.Of(0, 2))
	if err != nil {
		t.Fatalf("GetUserRooms: %v", err)
	}
	if len(first) != 2 || first[0].ID != ids[4] || first[1].ID != ids[3] {
		t.Fatalf("first page = %v, want newest activity first", roomIDs(first))
	}

	last, err := repos.Rooms.GetUserRooms(ctx, alice, paging.Of(2, 2))
	if err != nil {
		t.Fatalf("GetUserRooms: %v", err)
	}
	if len(last) != 1 || last[0].ID != ids[0] {
		t.Fatalf("last page = %v, want [%s]", roomIDs(last), ids[0])
	}

	asc, err := repos.Rooms.GetUserRooms(ctx, alice, paging.Of(0, 1, paging.Order{Property: "createdAt"}))
	if err != nil {
		t.Fatalf("GetUserRooms: %v", err)
	}
	if len(asc) != 1 || asc[0].ID != ids[0] {
		t.Fatalf("createdAt asc = %v, want [%s]", roomIDs(asc), ids[0])
	}

	ignored, err := repos.Rooms.GetUserRooms(ctx, alice, paging.Of(0, 1, paging.Order{Property: "1; DROP TABLE chat_rooms"}))
	if err != nil {
		t.Fatalf("GetUserRooms with unknown sort: %v", err)
	}
	if len(ignored) != 1 || ignored[0].ID != ids[4] {
		t.Fatalf("unknown sort should fall back to default order, got %v", roomIDs(ignored))
	}
}

func TestRoomRepositoryActivityAndReads(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories(database.OpenTestDB(t))

	alice, bob := uuid.New(), uuid.New()
	quiet := newRoom(1000, alice, bob)
	busy := newRoom(1000, alice, bob)
	foreign := newRoom(1000, bob)
	for _, r := range []*room.ChatRoom{quiet, busy, foreign} {
		if err := repos.Rooms.Create(ctx, r); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	if err := repos.Rooms.RecordMessage(ctx, busy.ID, bob, 2000); err != nil {
		t.Fatalf("RecordMessage: %v", err)
	}
	if err := repos.Rooms.RecordMessage(ctx, foreign.ID, bob, 2000); err != nil {
		t.Fatalf("RecordMessage: %v", err)
	}
	if err := repos.Rooms.RecordMessage(ctx, uuid.New(), bob, 2000); !errors.Is(err, telemed_errors.ErrNotFound) {
		t.Fatalf("RecordMessage unknown room err = %v, want ErrNotFound", err)
	}

	active, err := repos.Rooms.GetUserRoomsActiveSince(ctx, alice, 1500)
	if err != nil {
		t.Fatalf("GetUserRoomsActiveSince: %v", err)
	}
	if len(active) != 1 || active[0].ID != busy.ID {
		t.Fatalf("active = %v, want [%s]", roomIDs(active), busy.ID)
	}
	if !active[0].UnreadFor(alice) {
		t.Error("busy room should be unread for alice")
	}

	none, err := repos.Rooms.GetUserRoomsActiveSince(ctx, alice, 2000)
	if err != nil {
		t.Fatalf("GetUserRoomsActiveSince: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("since is exclusive, got %v", roomIDs(none))
	}

	if err := repos.Rooms.MarkRead(ctx, busy.ID, alice, 2500); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	got, err := repos.Rooms.GetByID(ctx, busy.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.UnreadFor(alice) {
		t.Error("busy room should be read for alice after MarkRead")
	}

	if err := repos.Rooms.MarkRead(ctx, foreign.ID, alice, 2500); !errors.Is(err, telemed_errors.ErrNotFound) {
		t.Errorf("MarkRead by non-participant err = %v, want ErrNotFound", err)
	}

	ok, err := repos.Rooms.IsParticipant(ctx, foreign.ID, alice)
	if err != nil || ok {
		t.Errorf("IsParticipant(foreign, alice) = %v, %v; want false, nil", ok, err)
	}
}

func TestMessageRepository(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories(database.OpenTestDB(t))

	alice := uuid.New()
	r := newRoom(1000, alice)
	if err := repos.Rooms.Create(ctx, r); err != nil {
		t.Fatalf("Create room: %v", err)
	}

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		m := &message.ChatMessage{
			ID:        uuid.New(),
			RoomID:    r.ID,
			Author:    alice,
			Source:    message.SourceUser,
			Content:   "hello",
			Timestamp: int64(2000 + i),
		}
		if err := repos.Messages.Create(ctx, m); err != nil {
			t.Fatalf("Create message: %v", err)
		}
		ids = append(ids, m.ID)
	}

	total, err := repos.Messages.CountRoomMessages(ctx, r.ID)
	if err != nil || total != 3 {
		t.Fatalf("CountRoomMessages = %d, %v; want 3", total, err)
	}

	page, err := repos.Messages.GetRoomMessages(ctx, r.ID, paging.Of(0, 2))
	if err != nil {
		t.Fatalf("GetRoomMessages: %v", err)
	}
	if len(page) != 2 || page[0].ID != ids[2] || page[1].ID != ids[1] {
		t.Fatalf("default order should be newest first")
	}

	oldest, err := repos.Messages.GetRoomMessages(ctx, r.ID, paging.Of(0, 1, paging.Order{Property: "timestamp"}))
	if err != nil {
		t.Fatalf("GetRoomMessages: %v", err)
	}
	if len(oldest) != 1 || oldest[0].ID != ids[0] {
		t.Fatalf("timestamp asc should return oldest first")
	}

	got, err := repos.Messages.GetByID(ctx, ids[1])
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Source != message.SourceUser || got.Timestamp != 2001 {
		t.Errorf("GetByID = %+v", got)
	}
}

func TestTransactorRollsBack(t *testing.T) {
	ctx := context.Background()
	db := database.OpenTestDB(t)
	repos := NewRepositories(db)
	tx := NewTransactor(db)

	alice := uuid.New()
	r := newRoom(1000, alice)
	boom := errors.New("boom")

	err := tx.WithinTransaction(ctx, func(txRepos Repositories) error {
		if err := txRepos.Rooms.Create(ctx, r); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithinTransaction err = %v, want boom", err)
	}

	if _, err := repos.Rooms.GetByID(ctx, r.ID); !errors.Is(err, telemed_errors.ErrNotFound) {
		t.Fatalf("room should not exist after rollback, err = %v", err)
	}
}

func roomIDs(rooms []room.ChatRoom) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(rooms))
	for _, r := range rooms {
		ids = append(ids, r.ID)
	}
	return ids
}
