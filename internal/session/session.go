// Package session keeps server-side attributes for a client session. A
// session is identified by an opaque id carried in a cookie; its attributes
// live in a Store shared by all server instances.
package session

import (
	"context"
	"errors"
	"strconv"
)

// AttrLastFetch holds the epoch millisecond timestamp of the client's last
// read of rooms or messages.
const AttrLastFetch = "SESSION_ATTR_LAST_FETCH"

var ErrInvalidID = errors.New("invalid session id")

// Store holds string attributes keyed by session id.
type Store interface {
	Get(ctx context.Context, sessionID, key string) (string, bool, error)
	Set(ctx context.Context, sessionID, key, value string) error
	// Touch extends the lifetime of the session without changing it.
	Touch(ctx context.Context, sessionID string) error
}

// Session is a handle on one session's attributes.
type Session struct {
	id    string
	store Store
}

func New(id string, store Store) *Session {
	return &Session{id: id, store: store}
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Attribute(ctx context.Context, key string) (string, bool, error) {
	return s.store.Get(ctx, s.id, key)
}

func (s *Session) SetAttribute(ctx context.Context, key, value string) error {
	return s.store.Set(ctx, s.id, key, value)
}

// LastFetch returns the stored last fetch time, or now when the session has
// none. A value that does not parse counts as missing.
func (s *Session) LastFetch(ctx context.Context, now int64) (int64, error) {
	raw, ok, err := s.Attribute(ctx, AttrLastFetch)
	if err != nil {
		return 0, err
	}
	if !ok {
		return now, nil
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return now, nil
	}
	return ms, nil
}

func (s *Session) SetLastFetch(ctx context.Context, ms int64) error {
	return s.SetAttribute(ctx, AttrLastFetch, strconv.FormatInt(ms, 10))
}
