package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stemsi/onlinexam-backend/internal/response"
	"github.com/stemsi/onlinexam-backend/internal/service"
)

// MediaHandler handles media upload endpoints.
type MediaHandler struct {
	mediaService *service.MediaService
}

// NewMediaHandler creates a new MediaHandler.
func NewMediaHandler(mediaService *service.MediaService) *MediaHandler {
	return &MediaHandler{mediaService: mediaService}
}

// UploadMedia godoc
// POST /api/v1/admin/media/upload
// Multipart fields: file, kind (course|subject|profile). Responds 201 with the image URL.
func (h *MediaHandler) UploadMedia(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}
	defer file.Close()

	kind := c.PostForm("kind")
	url, err := h.mediaService.SaveUpload(kind, file, header)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownMediaKind):
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
				map[string]string{"kind": "kind must be one of course, subject, profile"})
		case errors.Is(err, service.ErrUnsupportedFileType):
			response.Fail(c, http.StatusBadRequest, response.ErrUnsupportedFile)
		case errors.Is(err, service.ErrFileTooLarge):
			response.Fail(c, http.StatusBadRequest, response.ErrFileTooLarge)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"kind": kind, "url": url})
}
