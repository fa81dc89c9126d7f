package room

import (
	"testing"

	"github.com/google/uuid"
)

func TestUnreadFor(t *testing.T) {
	alice := uuid.New()
	bob := uuid.New()

	base := ChatRoom{
		ID: uuid.New(),
		Participants: []Participant{
			{UserID: alice, LastReadAt: 100},
			{UserID: bob, LastReadAt: 300},
		},
	}

	tests := []struct {
		name   string
		mutate func(r *ChatRoom)
		user   uuid.UUID
		want   bool
	}{
		{name: "no messages", mutate: func(r *ChatRoom) {}, user: alice, want: false},
		{
			name: "newer message from someone else",
			mutate: func(r *ChatRoom) {
				r.LastMessageAt = 200
				r.LastMessageAuthor = uuid.NullUUID{UUID: bob, Valid: true}
			},
			user: alice,
			want: true,
		},
		{
			name: "own message",
			mutate: func(r *ChatRoom) {
				r.LastMessageAt = 200
				r.LastMessageAuthor = uuid.NullUUID{UUID: alice, Valid: true}
			},
			user: alice,
			want: false,
		},
		{
			name: "already read",
			mutate: func(r *ChatRoom) {
				r.LastMessageAt = 200
				r.LastMessageAuthor = uuid.NullUUID{UUID: alice, Valid: true}
			},
			user: bob,
			want: false,
		},
		{
			name: "not a participant",
			mutate: func(r *ChatRoom) {
				r.LastMessageAt = 200
			},
			user: uuid.New(),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := base
			r.Participants = append([]Participant(nil), base.Participants...)
			tt.mutate(&r)
			if got := r.UnreadFor(tt.user); got != tt.want {
				t.Fatalf("UnreadFor() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSortByActivity(t *testing.T) {
	a := ChatRoom{ID: uuid.MustParse("00000000-0000-0000-0000-00000000000a"), LastActivityAt: 10}
	b := ChatRoom{ID: uuid.MustParse("00000000-0000-0000-0000-00000000000b"), LastActivityAt: 30}
	c := ChatRoom{ID: uuid.MustParse("00000000-0000-0000-0000-00000000000c"), LastActivityAt: 10}

	got := SortByActivity([]ChatRoom{c, a, b, a})

	want := []uuid.UUID{b.ID, a.ID, c.ID}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].ID != want[i] {
			t.Errorf("position %d = %s, want %s", i, got[i].ID, want[i])
		}
	}
}

func TestParticipantIDsSorted(t *testing.T) {
	lo := uuid.MustParse("10000000-0000-0000-0000-000000000000")
	hi := uuid.MustParse("f0000000-0000-0000-0000-000000000000")
	r := ChatRoom{Participants: []Participant{{UserID: hi}, {UserID: lo}}}

	ids := r.ParticipantIDs()
	if len(ids) != 2 || ids[0] != lo || ids[1] != hi {
		t.Fatalf("ParticipantIDs() = %v", ids)
	}
}
