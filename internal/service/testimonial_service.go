package service

import (
	"context"

	"github.com/noah-isme/mentor-site-api/internal/dto"
	"github.com/noah-isme/mentor-site-api/internal/models"
)

// TestimonialService manages curated testimonials.
type TestimonialService struct {
	c *contentCollection[models.Testimonial]
}

// NewTestimonialService constructs the service.
func NewTestimonialService(deps ContentDeps) *TestimonialService {
	return &TestimonialService{c: newContentCollection[models.Testimonial](deps, collectionConfig{
		collection: models.CollectionTestimonials,
		resource:   "testimonial",
		capability: models.CapContentWrite,
		order:      &models.OrderBy{Field: "createdAt", Direction: models.SortDesc},
		stampField: "createdAt",
		editable:   true,
	})}
}

// List returns testimonials, newest first.
func (s *TestimonialService) List(ctx context.Context) ([]models.Testimonial, error) {
	return s.c.list(ctx)
}

// ListPublic is List served through the public cache.
func (s *TestimonialService) ListPublic(ctx context.Context) ([]models.Testimonial, bool, error) {
	return s.c.listCached(ctx)
}

func (s *TestimonialService) Get(ctx context.Context, id string) (*models.Testimonial, error) {
	return s.c.get(ctx, id)
}

func (s *TestimonialService) Create(ctx context.Context, actor *models.JWTClaims, req dto.TestimonialRequest) (*models.Testimonial, error) {
	return s.c.create(ctx, actor, &req)
}

func (s *TestimonialService) Update(ctx context.Context, actor *models.JWTClaims, id string, req dto.TestimonialUpdate) (*models.Testimonial, error) {
	return s.c.update(ctx, actor, id, &req)
}

func (s *TestimonialService) Delete(ctx context.Context, actor *models.JWTClaims, id string) error {
	return s.c.remove(ctx, actor, id)
}
