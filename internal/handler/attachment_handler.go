package handler

import (
	"net/http"

	"telemed-chat/internal/services"
	"telemed-chat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

type AttachmentHandler struct {
	service *services.AttachmentService
}

func NewAttachmentHandler(service *services.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{service: service}
}

// Presign serves POST /api/chat/attachment. The client uploads the file to
// uploadUrl and then sends a message whose attachment is the returned key.
func (h *AttachmentHandler) Presign(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}

	var req httpdto.AttachmentUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	roomID, err := parseUUID(req.RoomID)
	if err != nil {
		badRequest(c, "invalid roomId")
		return
	}

	upload, err := h.service.PresignUpload(c.Request.Context(), principal.ID, services.AttachmentRequest{
		RoomID:      roomID,
		FileName:    req.FileName,
		ContentType: req.ContentType,
		Size:        req.Size,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.AttachmentUploadResponse{
		Key:       upload.Key,
		UploadURL: upload.UploadURL,
		Headers:   upload.Headers,
		FileURL:   upload.FileURL,
	})
}
