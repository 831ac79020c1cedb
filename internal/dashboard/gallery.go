package dashboard

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/mentor-site-api/internal/dto"
	"github.com/noah-isme/mentor-site-api/internal/models"
)

// BulkImporter creates many gallery images from one request.
type BulkImporter func(ctx context.Context, req dto.GalleryBulkImportRequest) ([]models.GalleryImage, error)

// GalleryEditor adds the bulk import form to the gallery editor.
type GalleryEditor struct {
	*Editor[models.GalleryImage, dto.GalleryImageRequest, dto.GalleryImageUpdate]

	importer BulkImporter
	bulk     operation

	bulkMu    sync.Mutex
	bulkDraft dto.GalleryBulkImportRequest
}

// NewGalleryEditor wraps editor with bulk import support.
func NewGalleryEditor(editor *Editor[models.GalleryImage, dto.GalleryImageRequest, dto.GalleryImageUpdate], importer BulkImporter) *GalleryEditor {
	return &GalleryEditor{Editor: editor, importer: importer}
}

// SetBulkDraft replaces the bulk form inputs.
func (g *GalleryEditor) SetBulkDraft(req dto.GalleryBulkImportRequest) {
	g.bulkMu.Lock()
	g.bulkDraft = req
	g.bulkMu.Unlock()
}

// BulkDraft returns the bulk form inputs.
func (g *GalleryEditor) BulkDraft() dto.GalleryBulkImportRequest {
	g.bulkMu.Lock()
	defer g.bulkMu.Unlock()
	return g.bulkDraft
}

// BulkState reports the latest bulk import attempt.
func (g *GalleryEditor) BulkState() RequestState { return g.bulk.State() }

// BulkImport submits the bulk form. On success all four inputs are cleared
// and the gallery re-fetched; on failure the inputs are kept.
func (g *GalleryEditor) BulkImport(ctx context.Context) ([]models.GalleryImage, error) {
	if err := g.bulk.begin(); err != nil {
		return nil, err
	}
	images, err := g.importer(ctx, g.BulkDraft())
	g.bulk.finish(err)
	if err != nil {
		g.logger.Warn("bulk import failed", zap.Error(err))
		return nil, err
	}
	g.SetBulkDraft(dto.GalleryBulkImportRequest{})
	g.refresh(ctx)
	return images, nil
}
