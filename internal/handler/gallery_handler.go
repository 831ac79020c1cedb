package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/mentor-site-api/internal/dashboard"
	"github.com/noah-isme/mentor-site-api/internal/dto"
	"github.com/noah-isme/mentor-site-api/internal/models"
	"github.com/noah-isme/mentor-site-api/pkg/response"
)

type galleryService interface {
	ContentService[models.GalleryImage, dto.GalleryImageRequest, dto.GalleryImageUpdate]
	BulkImport(ctx context.Context, actor *models.JWTClaims, req dto.GalleryBulkImportRequest) ([]models.GalleryImage, error)
}

// GalleryHandler adds bulk URL import to the gallery CRUD endpoints.
type GalleryHandler struct {
	*ContentHandler[models.GalleryImage, dto.GalleryImageRequest, dto.GalleryImageUpdate]
	gallery galleryService
}

// NewGalleryHandler constructs the handler.
func NewGalleryHandler(svc galleryService, logger *zap.Logger) *GalleryHandler {
	return &GalleryHandler{
		ContentHandler: NewContentHandler[models.GalleryImage, dto.GalleryImageRequest, dto.GalleryImageUpdate]("gallery image", svc, logger),
		gallery:        svc,
	}
}

// BulkImport godoc
// @Summary Import gallery images from a list of URLs
// @Description One image per non-blank line; all share section, event name and description
// @Tags Gallery
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.GalleryBulkImportRequest true "URLs, one per line"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/gallery/bulk [post]
func (h *GalleryHandler) BulkImport(c *gin.Context) {
	var req dto.GalleryBulkImportRequest
	if !bindJSON(c, &req, "invalid bulk import payload") {
		return
	}
	actor := claimsFromContext(c)
	editor := dashboard.NewGalleryEditor(h.ContentHandler.editor(c), func(ctx context.Context, r dto.GalleryBulkImportRequest) ([]models.GalleryImage, error) {
		return h.gallery.BulkImport(ctx, actor, r)
	})
	editor.SetBulkDraft(req)
	images, err := editor.BulkImport(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, images, map[string]interface{}{
		"imported": len(images),
		"list":     viewOf(editor.List()),
	})
}
