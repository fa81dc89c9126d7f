package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"telemed-chat/config"
	"telemed-chat/internal/chat"
	"telemed-chat/internal/domain/auth"
	"telemed-chat/internal/events"
	"telemed-chat/internal/handler"
	"telemed-chat/internal/repository"
	"telemed-chat/internal/services"
	"telemed-chat/internal/session"
	"telemed-chat/internal/transport/httpdto"
	"telemed-chat/pkg/database"
	"telemed-chat/pkg/logger"

	"github.com/google/uuid"
)

type testApp struct {
	handler http.Handler
	auth    *services.AuthService
	cookie  string
}

func newTestApp(t *testing.T, checks map[string]HealthCheck) *testApp {
	t.Helper()
	cfg := &config.Config{
		AppPort:       "0",
		AppMode:       TestMode,
		JWTSecret:     "test-secret",
		JWTIssuer:     "telemed",
		SessionCookie: "CHATSESSION",
		SessionTTL:    time.Hour,
	}
	l := logger.NewNop()

	db := database.OpenTestDB(t)
	repos := repository.NewRepositories(db)
	tx := repository.NewTransactor(db)
	rooms := services.NewRoomService(repos, tx, events.NopPublisher{}, l)
	messages := services.NewMessageService(repos, tx, events.NopPublisher{}, l)
	authService := services.NewAuthService(cfg)

	srv := New(cfg, l)
	srv.SetupRoutes(&Handlers{
		Chat:       handler.NewChatHandler(chat.NewGateway(rooms, messages)),
		Attachment: handler.NewAttachmentHandler(services.NewAttachmentService(repos.Rooms, nil, 0)),
	}, Dependencies{
		Auth:         authService,
		Sessions:     session.NewMemoryStore(time.Hour),
		HealthChecks: checks,
	})

	return &testApp{handler: srv.Handler(), auth: authService, cookie: cfg.SessionCookie}
}

type client struct {
	t       *testing.T
	app     *testApp
	token   string
	id      uuid.UUID
	session *http.Cookie
}

func (a *testApp) login(t *testing.T) *client {
	t.Helper()
	p := auth.Principal{ID: uuid.New(), Email: "user@example.com"}
	token, err := a.auth.IssueAccessToken(p, time.Hour)
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}
	return &client{t: t, app: a, token: token, id: p.ID}
}

func (c *client) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			c.t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.session != nil {
		req.AddCookie(c.session)
	}

	rec := httptest.NewRecorder()
	c.app.handler.ServeHTTP(rec, req)

	for _, ck := range rec.Result().Cookies() {
		if ck.Name == c.app.cookie {
			c.session = ck
		}
	}
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func contains(ids []string, id uuid.UUID) bool {
	for _, v := range ids {
		if v == id.String() {
			return true
		}
	}
	return false
}

func TestChatFlow(t *testing.T) {
	app := newTestApp(t, nil)
	doctor := app.login(t)
	patient := app.login(t)

	rec := doctor.do(http.MethodPost, "/api/chat/room", []string{patient.id.String()})
	if rec.Code != http.StatusOK {
		t.Fatalf("create room status = %d, body %s", rec.Code, rec.Body)
	}
	created := decode[httpdto.ChatRoomDTO](t, rec)
	if !contains(created.Participants, doctor.id) || !contains(created.Participants, patient.id) {
		t.Fatalf("participants = %v", created.Participants)
	}
	if doctor.session == nil {
		t.Fatal("session cookie not issued")
	}

	// First poll with no history sees nothing.
	rec = patient.do(http.MethodGet, "/api/chat/poll", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("poll status = %d", rec.Code)
	}
	if got := decode[[]httpdto.ChatRoomDTO](t, rec); len(got) != 0 {
		t.Fatalf("first poll = %d rooms", len(got))
	}
	patientSession := patient.session

	time.Sleep(2 * time.Millisecond)
	rec = doctor.do(http.MethodPost, "/api/chat/message", map[string]string{
		"roomId":  created.ID,
		"content": "Please take the medication twice a day",
		"author":  patient.id.String(),
		"source":  "SYSTEM",
	})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("send status = %d, body %s", rec.Code, rec.Body)
	}
	sent := decode[httpdto.ChatMessageDTO](t, rec)
	if sent.Author != doctor.id.String() || sent.Source != "USER" {
		t.Errorf("sent = %+v, want author %s source USER", sent, doctor.id)
	}

	rec = patient.do(http.MethodGet, "/api/chat/poll", nil)
	polled := decode[[]httpdto.ChatRoomDTO](t, rec)
	if len(polled) != 1 || polled[0].ID != created.ID || !polled[0].Unread {
		t.Fatalf("second poll = %+v", polled)
	}
	if patient.session.Value != patientSession.Value {
		t.Error("session cookie should be reused")
	}

	rec = patient.do(http.MethodGet, "/api/chat/poll", nil)
	if got := decode[[]httpdto.ChatRoomDTO](t, rec); len(got) != 0 {
		t.Errorf("third poll = %d rooms, want none", len(got))
	}

	rec = patient.do(http.MethodGet, "/api/chat/room/"+created.ID+"?size=5", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("load messages status = %d", rec.Code)
	}
	page := decode[httpdto.PageDTO[httpdto.ChatMessageDTO]](t, rec)
	if page.TotalElements != 1 || page.Size != 5 || !page.First || !page.Last {
		t.Errorf("page = %+v", page)
	}

	rec = patient.do(http.MethodPost, "/api/chat/room/"+created.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("mark read status = %d", rec.Code)
	}
	if read := decode[httpdto.ChatRoomDTO](t, rec); read.Unread {
		t.Error("room still unread after marking")
	}

	rec = patient.do(http.MethodGet, "/api/chat/room", nil)
	rooms := decode[httpdto.PageDTO[httpdto.ChatRoomDTO]](t, rec)
	if rooms.TotalElements != 1 || rooms.Size != 10 {
		t.Errorf("rooms page = %+v", rooms)
	}
}

func TestChatErrors(t *testing.T) {
	app := newTestApp(t, nil)
	owner := app.login(t)
	outsider := app.login(t)

	created := decode[httpdto.ChatRoomDTO](t, owner.do(http.MethodPost, "/api/chat/room", []string{}))

	anonymous := &client{t: t, app: app}

	tests := []struct {
		name   string
		client *client
		method string
		path   string
		body   any
		want   int
		code   string
	}{
		{"no token", anonymous, http.MethodGet, "/api/chat/room", nil, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"bad room id", owner, http.MethodGet, "/api/chat/room/not-a-uuid", nil, http.StatusBadRequest, "INVALID_REQUEST"},
		{"bad page", owner, http.MethodGet, "/api/chat/room?page=abc", nil, http.StatusBadRequest, "INVALID_REQUEST"},
		{"bad participant", owner, http.MethodPost, "/api/chat/room", []string{"nope"}, http.StatusBadRequest, "INVALID_REQUEST"},
		{"outsider reads", outsider, http.MethodGet, "/api/chat/room/" + created.ID, nil, http.StatusForbidden, "FORBIDDEN"},
		{"outsider writes", outsider, http.MethodPost, "/api/chat/message", map[string]string{"roomId": created.ID, "content": "hi"}, http.StatusForbidden, "FORBIDDEN"},
		{"unknown source", owner, http.MethodPost, "/api/chat/message", map[string]string{"roomId": created.ID, "content": "hi", "source": "BOT"}, http.StatusBadRequest, "INVALID_REQUEST"},
		{"blank message", owner, http.MethodPost, "/api/chat/message", map[string]string{"roomId": created.ID, "content": " "}, http.StatusBadRequest, "INVALID_REQUEST"},
		{"unknown room", owner, http.MethodPost, "/api/chat/room/" + uuid.NewString(), nil, http.StatusNotFound, "NOT_FOUND"},
		{"attachments disabled", owner, http.MethodPost, "/api/chat/attachment", map[string]any{"roomId": created.ID, "fileName": "a.png", "contentType": "image/png", "size": 10}, http.StatusServiceUnavailable, "UNAVAILABLE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.client.t = t
			rec := tt.client.do(tt.method, tt.path, tt.body)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body)
			}
			resp := decode[httpdto.Response[any]](t, rec)
			if resp.Success || resp.Code != tt.code {
				t.Errorf("response = %+v, want code %s", resp, tt.code)
			}
		})
	}
}

func TestHealth(t *testing.T) {
	healthy := newTestApp(t, map[string]HealthCheck{
		"database": func(context.Context) error { return nil },
	})
	rec := httptest.NewRecorder()
	healthy.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("healthy status = %d", rec.Code)
	}

	broken := newTestApp(t, map[string]HealthCheck{
		"database": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("connection refused") },
	})
	rec = httptest.NewRecorder()
	broken.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("broken status = %d", rec.Code)
	}
	if resp := decode[httpdto.Response[any]](t, rec); resp.Error != fmt.Sprintf("redis: %v", "connection refused") {
		t.Errorf("error = %q", resp.Error)
	}

	rec = httptest.NewRecorder()
	broken.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("ping status = %d", rec.Code)
	}
}
