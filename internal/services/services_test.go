package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"telemed-chat/internal/events"
	"telemed-chat/internal/repository"
	"telemed-chat/pkg/database"
	"telemed-chat/pkg/logger"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Envelope
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, env events.Envelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, env)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType)
	}
	return out
}

// testClock hands out strictly increasing instants one millisecond apart.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.UnixMilli(1_700_000_000_000)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Millisecond)
	return c.now
}

type fixture struct {
	repos     repository.Repositories
	rooms     *RoomService
	messages  *MessageService
	publisher *recordingPublisher
	clock     *testClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := database.OpenTestDB(t)
	repos := repository.NewRepositories(db)
	tx := repository.NewTransactor(db)
	pub := &recordingPublisher{}
	clock := newTestClock()

	rooms := NewRoomService(repos, tx, pub, logger.NewNop())
	rooms.now = clock.Now
	messages := NewMessageService(repos, tx, pub, logger.NewNop())
	messages.now = clock.Now

	return &fixture{repos: repos, rooms: rooms, messages: messages, publisher: pub, clock: clock}
}
