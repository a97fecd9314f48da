package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/storyjam-backend/internal/requestdata"
	"github.com/yungbote/storyjam-backend/internal/services"
)

// UploadHandler hands out short-lived signed PUT URLs so audio goes straight
// to the bucket instead of through the API.
type UploadHandler struct {
	bucket services.BucketService
}

func NewUploadHandler(bucket services.BucketService) *UploadHandler {
	return &UploadHandler{bucket: bucket}
}

func (uh *UploadHandler) SignAudioUpload(c *gin.Context) {
	var req struct {
		FileName    string `json:"file_name"`
		ContentType string `json:"content_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "validation_error", err)
		return
	}
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", fmt.Errorf("missing request identity"))
		return
	}
	contentType := strings.TrimSpace(req.ContentType)
	if !strings.HasPrefix(contentType, "audio/") {
		RespondError(c, http.StatusBadRequest, "validation_error", fmt.Errorf("content_type must be audio/*"))
		return
	}

	ext := audioExt(req.FileName, contentType)
	key := fmt.Sprintf("users/%s/audio/%s%s", rd.UserID, uuid.New(), ext)
	url, err := uh.bucket.SignedUploadURL(key, contentType, 15*time.Minute)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{
		"upload_url":     url,
		"audio_file_key": key,
	})
}

func audioExt(fileName, contentType string) string {
	if i := strings.LastIndex(fileName, "."); i > 0 && i < len(fileName)-1 {
		return strings.ToLower(fileName[i:])
	}
	switch contentType {
	case "audio/wav", "audio/x-wav":
		return ".wav"
	case "audio/mpeg", "audio/mp3":
		return ".mp3"
	case "audio/flac":
		return ".flac"
	case "audio/ogg":
		return ".ogg"
	default:
		return ""
	}
}
