package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/mentor-site-api/internal/dto"
	"github.com/noah-isme/mentor-site-api/internal/models"
	appErrors "github.com/noah-isme/mentor-site-api/pkg/errors"
)

// GalleryService manages gallery images, including bulk URL import.
type GalleryService struct {
	c *contentCollection[models.GalleryImage]
}

// NewGalleryService constructs the service.
func NewGalleryService(deps ContentDeps) *GalleryService {
	return &GalleryService{c: newContentCollection[models.GalleryImage](deps, collectionConfig{
		collection: models.CollectionGallery,
		resource:   "gallery image",
		capability: models.CapGalleryWrite,
		order:      &models.OrderBy{Field: "uploadedAt", Direction: models.SortDesc},
		stampField: "uploadedAt",
	})}
}

// List returns images, most recently uploaded first.
func (s *GalleryService) List(ctx context.Context) ([]models.GalleryImage, error) {
	return s.c.list(ctx)
}

// ListGrouped returns the public gallery grouped by section. Known sections
// come first in their canonical order, followed by any other section values
// in the order they are first seen.
func (s *GalleryService) ListGrouped(ctx context.Context) ([]models.GalleryGroup, bool, error) {
	images, hit, err := s.c.listCached(ctx)
	if err != nil {
		return nil, false, err
	}
	return GroupGallery(images), hit, nil
}

// GroupGallery buckets images by section preserving their relative order.
func GroupGallery(images []models.GalleryImage) []models.GalleryGroup {
	buckets := map[models.GallerySection][]models.GalleryImage{}
	var adHoc []models.GallerySection
	for _, img := range images {
		if _, seen := buckets[img.Section]; !seen && !img.Section.Valid() {
			adHoc = append(adHoc, img.Section)
		}
		buckets[img.Section] = append(buckets[img.Section], img)
	}

	groups := make([]models.GalleryGroup, 0, len(buckets))
	for _, section := range append(append([]models.GallerySection{}, models.GallerySections...), adHoc...) {
		if imgs, ok := buckets[section]; ok {
			groups = append(groups, models.GalleryGroup{Section: section, Images: imgs})
		}
	}
	return groups
}

func (s *GalleryService) Get(ctx context.Context, id string) (*models.GalleryImage, error) {
	return s.c.get(ctx, id)
}

func (s *GalleryService) Create(ctx context.Context, actor *models.JWTClaims, req dto.GalleryImageRequest) (*models.GalleryImage, error) {
	return s.c.create(ctx, actor, &req)
}

func (s *GalleryService) Update(ctx context.Context, actor *models.JWTClaims, id string, req dto.GalleryImageUpdate) (*models.GalleryImage, error) {
	return s.c.update(ctx, actor, id, &req)
}

func (s *GalleryService) Delete(ctx context.Context, actor *models.JWTClaims, id string) error {
	return s.c.remove(ctx, actor, id)
}

// SplitURLLines splits raw text on newlines, trims each line and drops blanks.
// Lines are not checked for URL syntax.
func SplitURLLines(raw string) []string {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// BulkImport creates one image per URL line in a single atomic batch. All
// images share the metadata and one uploadedAt stamp.
func (s *GalleryService) BulkImport(ctx context.Context, actor *models.JWTClaims, req dto.GalleryBulkImportRequest) ([]models.GalleryImage, error) {
	if err := authorize(actor, s.c.cfg.capability); err != nil {
		return nil, err
	}
	req.Section = models.GallerySection(strings.TrimSpace(string(req.Section)))
	req.EventName = strings.TrimSpace(req.EventName)
	req.Description = strings.TrimSpace(req.Description)
	if err := validate(s.c.validator, &req, "invalid bulk import payload"); err != nil {
		return nil, err
	}
	urls := SplitURLLines(req.URLs)
	if len(urls) == 0 {
		return nil, appErrors.WithDetails(
			appErrors.Clone(appErrors.ErrValidation, "invalid bulk import payload"),
			map[string]string{"urls": "must contain at least one URL"},
		)
	}

	uploadedAt := models.Now()
	images := make([]models.GalleryImage, len(urls))
	batch := make([]models.Fields, len(urls))
	for i, url := range urls {
		images[i] = models.GalleryImage{
			URL:         url,
			Section:     req.Section,
			EventName:   req.EventName,
			Description: req.Description,
			UploadedAt:  uploadedAt,
		}
		fields, err := encodeFields(images[i])
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode gallery image")
		}
		batch[i] = fields
	}

	ids, err := s.c.store.CreateBatch(ctx, s.c.cfg.collection, batch)
	if err != nil {
		s.c.logger.Warn("gallery bulk import failed", zap.Int("count", len(batch)), zap.Error(err))
		return nil, storeError(err, "import", "gallery images")
	}
	for i := range images {
		images[i].ID = ids[i]
	}
	s.c.cache.InvalidateCollection(ctx, s.c.cfg.collection)
	return images, nil
}
