package service

import (
	"context"

	"github.com/noah-isme/mentor-site-api/internal/dto"
	"github.com/noah-isme/mentor-site-api/internal/models"
)

// WebinarService manages webinar listings.
type WebinarService struct {
	c *contentCollection[models.Webinar]
}

// NewWebinarService constructs the service.
func NewWebinarService(deps ContentDeps) *WebinarService {
	return &WebinarService{c: newContentCollection[models.Webinar](deps, collectionConfig{
		collection: models.CollectionWebinars,
		resource:   "webinar",
		capability: models.CapContentWrite,
		order:      &models.OrderBy{Field: "date", Direction: models.SortDesc},
		stampField: "createdAt",
		editable:   true,
	})}
}

// List returns every webinar, latest date first.
func (s *WebinarService) List(ctx context.Context) ([]models.Webinar, error) {
	return s.c.list(ctx)
}

// ListPublic is List served through the public cache.
func (s *WebinarService) ListPublic(ctx context.Context) ([]models.Webinar, bool, error) {
	return s.c.listCached(ctx)
}

// Get returns one webinar.
func (s *WebinarService) Get(ctx context.Context, id string) (*models.Webinar, error) {
	return s.c.get(ctx, id)
}

// Create stores a new webinar.
func (s *WebinarService) Create(ctx context.Context, actor *models.JWTClaims, req dto.WebinarRequest) (*models.Webinar, error) {
	if req.LearningOutcomes == nil {
		req.LearningOutcomes = []string{}
	}
	return s.c.create(ctx, actor, &req)
}

// Update merges the provided fields.
func (s *WebinarService) Update(ctx context.Context, actor *models.JWTClaims, id string, req dto.WebinarUpdate) (*models.Webinar, error) {
	return s.c.update(ctx, actor, id, &req)
}

// Delete removes a webinar.
func (s *WebinarService) Delete(ctx context.Context, actor *models.JWTClaims, id string) error {
	return s.c.remove(ctx, actor, id)
}
