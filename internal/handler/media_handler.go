package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/mentor-site-api/internal/models"
	"github.com/noah-isme/mentor-site-api/internal/service"
	appErrors "github.com/noah-isme/mentor-site-api/pkg/errors"
	"github.com/noah-isme/mentor-site-api/pkg/response"
)

// multipartOverhead leaves room for form boundaries and the folder field.
const multipartOverhead = 1 << 20

type mediaService interface {
	Upload(ctx context.Context, actor *models.JWTClaims, folder, filename string, size int64, r io.Reader) (*service.MediaUpload, error)
	Delete(ctx context.Context, actor *models.JWTClaims, key string) error
}

// MediaHandler accepts and removes admin image uploads.
type MediaHandler struct {
	service  mediaService
	maxBytes int64
}

// NewMediaHandler constructs the handler. maxFileSize bounds the request body.
func NewMediaHandler(svc mediaService, maxFileSize int64) *MediaHandler {
	return &MediaHandler{service: svc, maxBytes: maxFileSize}
}

// Upload godoc
// @Summary Upload an image
// @Description Stores the image and returns its public URL
// @Tags Media
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Image file"
// @Param folder formData string false "Target folder"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Failure 415 {object} response.Envelope
// @Router /admin/media [post]
func (h *MediaHandler) Upload(c *gin.Context) {
	if h.maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+multipartOverhead)
	}
	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, appErrors.Clone(appErrors.ErrPayloadTooLarge, "file exceeds the upload limit"))
			return
		}
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "file is required"))
		return
	}
	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload"))
		return
	}
	defer file.Close() //nolint:errcheck

	upload, err := h.service.Upload(c.Request.Context(), claimsFromContext(c), c.PostForm("folder"), header.Filename, header.Size, file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, upload)
}

// Delete godoc
// @Summary Delete an uploaded image
// @Tags Media
// @Security BearerAuth
// @Param key path string true "Media key returned by the upload"
// @Success 204
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/media/{key} [delete]
func (h *MediaHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), claimsFromContext(c), c.Param("key")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
