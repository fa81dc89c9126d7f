package httpdto

// AttachmentUploadRequest is used for POST /api/chat/attachment
type AttachmentUploadRequest struct {
	RoomID      string `json:"roomId" binding:"required"`
	FileName    string `json:"fileName" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
	Size        int64  `json:"size" binding:"required"`
}

type AttachmentUploadResponse struct {
	Key       string            `json:"key"`
	UploadURL string            `json:"uploadUrl"`
	Headers   map[string]string `json:"headers,omitempty"`
	FileURL   string            `json:"fileUrl"`
}
