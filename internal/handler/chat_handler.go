package handler

import (
	"net/http"
	"strconv"
	"strings"

	"telemed-chat/internal/chat"
	"telemed-chat/internal/domain/auth"
	"telemed-chat/internal/domain/message"
	"telemed-chat/internal/domain/paging"
	"telemed-chat/internal/domain/room"
	"telemed-chat/internal/middleware"
	"telemed-chat/internal/services"
	"telemed-chat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ChatHandler struct {
	gateway *chat.Gateway
}

func NewChatHandler(gateway *chat.Gateway) *ChatHandler {
	return &ChatHandler{gateway: gateway}
}

// ListRooms serves GET /api/chat/room
func (h *ChatHandler) ListRooms(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	pageable, err := parsePageable(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	resp, err := h.gateway.ListRooms(c.Request.Context(), principal, sess, pageable)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(resp.Status, httpdto.FromPage(resp.Body, func(r room.ChatRoom) httpdto.ChatRoomDTO {
		return httpdto.FromChatRoom(r, principal.ID)
	}))
}

// CreateRoom serves POST /api/chat/room with a JSON array of participant ids.
func (h *ChatHandler) CreateRoom(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}

	var raw []string
	if err := c.ShouldBindJSON(&raw); err != nil {
		badRequest(c, "invalid request")
		return
	}
	participants := make([]uuid.UUID, 0, len(raw))
	for _, value := range raw {
		id, err := parseUUID(value)
		if err != nil || id == uuid.Nil {
			badRequest(c, "invalid participant id")
			return
		}
		participants = append(participants, id)
	}

	resp, err := h.gateway.CreateRoom(c.Request.Context(), principal, participants)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(resp.Status, httpdto.FromChatRoom(resp.Body, principal.ID))
}

// SendMessage serves POST /api/chat/message
func (h *ChatHandler) SendMessage(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}

	var req httpdto.ChatMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	roomID, err := parseUUID(req.RoomID)
	if err != nil {
		badRequest(c, "invalid roomId")
		return
	}

	resp, err := h.gateway.SendMessage(c.Request.Context(), principal, message.ChatMessage{
		RoomID:     roomID,
		Content:    req.Content,
		Attachment: req.Attachment,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(resp.Status, httpdto.FromChatMessage(resp.Body))
}

// LoadMessages serves GET /api/chat/room/:roomId
func (h *ChatHandler) LoadMessages(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	roomID, err := parseUUID(c.Param("roomId"))
	if err != nil {
		badRequest(c, "invalid roomId")
		return
	}
	pageable, err := parsePageable(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	resp, err := h.gateway.LoadMessages(c.Request.Context(), principal, sess, roomID, pageable)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(resp.Status, httpdto.FromPage(resp.Body, httpdto.FromChatMessage))
}

// Poll serves GET /api/chat/poll
func (h *ChatHandler) Poll(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	sess, ok := requireSession(c)
	if !ok {
		return
	}

	resp, err := h.gateway.Poll(c.Request.Context(), principal, sess)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(resp.Status, httpdto.FromChatRoomSlice(resp.Body, principal.ID))
}

// MarkAsRead serves POST /api/chat/room/:roomId
func (h *ChatHandler) MarkAsRead(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	roomID, err := parseUUID(c.Param("roomId"))
	if err != nil {
		badRequest(c, "invalid roomId")
		return
	}

	resp, err := h.gateway.MarkAsRead(c.Request.Context(), principal, roomID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(resp.Status, httpdto.FromChatRoom(resp.Body, principal.ID))
}

func requirePrincipal(c *gin.Context) (auth.Principal, bool) {
	principal, ok := services.PrincipalFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return auth.Principal{}, false
	}
	return principal, true
}

func requireSession(c *gin.Context) (chat.Session, bool) {
	sess, ok := middleware.SessionFromContext(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse("no session", "INTERNAL_ERROR"))
		return nil, false
	}
	return sess, true
}

// parsePageable reads page, size and any number of sort=property[,asc|desc]
// query parameters.
func parsePageable(c *gin.Context) (paging.Pageable, error) {
	page, err := parseInt(c.Query("page"))
	if err != nil {
		return paging.Pageable{}, errInvalidParam("page")
	}
	size, err := parseInt(c.Query("size"))
	if err != nil {
		return paging.Pageable{}, errInvalidParam("size")
	}

	var orders []paging.Order
	for _, value := range c.QueryArray("sort") {
		parts := strings.Split(value, ",")
		property := strings.TrimSpace(parts[0])
		if property == "" {
			continue
		}
		order := paging.Order{Property: property}
		if len(parts) > 1 {
			switch strings.ToLower(strings.TrimSpace(parts[1])) {
			case "desc":
				order.Desc = true
			case "asc", "":
			default:
				return paging.Pageable{}, errInvalidParam("sort")
			}
		}
		orders = append(orders, order)
	}
	return paging.Of(page, size, orders...), nil
}

type errInvalidParam string

func (e errInvalidParam) Error() string {
	return "invalid " + string(e)
}

func parseUUID(value string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(value))
}

// parseInt treats an empty value as zero.
func parseInt(value string) (int, error) {
	if value == "" {
		return 0, nil
	}
	return strconv.Atoi(value)
}
