package services

import (
	"context"
	"fmt"
	"path"
	"strings"

	"telemed-chat/internal/repository"
	telemed_errors "telemed-chat/pkg/errors"

	"github.com/google/uuid"
)

// Presigner issues upload URLs for object keys.
type Presigner interface {
	PresignPut(ctx context.Context, key, contentType string, sizeBytes int64) (string, map[string]string, error)
	FileURL(key string) string
}

type AttachmentRequest struct {
	RoomID      uuid.UUID
	FileName    string
	ContentType string
	Size        int64
}

type AttachmentUpload struct {
	Key       string
	UploadURL string
	Headers   map[string]string
	FileURL   string
}

type AttachmentService struct {
	rooms     repository.RoomRepository
	presigner Presigner
	maxBytes  int64
}

// NewAttachmentService returns a service that rejects every request with
// ErrServiceUnavailable when presigner is nil.
func NewAttachmentService(rooms repository.RoomRepository, presigner Presigner, maxBytes int64) *AttachmentService {
	return &AttachmentService{rooms: rooms, presigner: presigner, maxBytes: maxBytes}
}

func (s *AttachmentService) PresignUpload(ctx context.Context, userID uuid.UUID, req AttachmentRequest) (AttachmentUpload, error) {
	if s.presigner == nil {
		return AttachmentUpload{}, fmt.Errorf("attachment storage not configured: %w", telemed_errors.ErrServiceUnavailable)
	}

	name := sanitizeFileName(req.FileName)
	if req.RoomID == uuid.Nil || name == "" || req.ContentType == "" || req.Size <= 0 {
		return AttachmentUpload{}, fmt.Errorf("room, file name, content type and size are required: %w", telemed_errors.ErrInvalidInput)
	}
	if s.maxBytes > 0 && req.Size > s.maxBytes {
		return AttachmentUpload{}, fmt.Errorf("attachment of %d bytes exceeds %d: %w", req.Size, s.maxBytes, telemed_errors.ErrTooLarge)
	}

	ok, err := s.rooms.IsParticipant(ctx, req.RoomID, userID)
	if err != nil {
		return AttachmentUpload{}, fmt.Errorf("failed to check room membership: %w", err)
	}
	if !ok {
		return AttachmentUpload{}, fmt.Errorf("user %s is not in room %s: %w", userID, req.RoomID, telemed_errors.ErrForbidden)
	}

	key := fmt.Sprintf("rooms/%s/%s/%s", req.RoomID, uuid.New(), name)
	url, headers, err := s.presigner.PresignPut(ctx, key, req.ContentType, req.Size)
	if err != nil {
		return AttachmentUpload{}, fmt.Errorf("failed to presign upload: %w", err)
	}

	return AttachmentUpload{
		Key:       key,
		UploadURL: url,
		Headers:   headers,
		FileURL:   s.presigner.FileURL(key),
	}, nil
}

func sanitizeFileName(name string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if name == "." || name == "/" || name == ".." {
		return ""
	}
	return name
}
