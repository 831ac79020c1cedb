package service

import (
	"context"

	"github.com/noah-isme/mentor-site-api/internal/dto"
	"github.com/noah-isme/mentor-site-api/internal/models"
)

// EventService manages event listings.
type EventService struct {
	c *contentCollection[models.Event]
}

// NewEventService constructs the service.
func NewEventService(deps ContentDeps) *EventService {
	return &EventService{c: newContentCollection[models.Event](deps, collectionConfig{
		collection: models.CollectionEvents,
		resource:   "event",
		capability: models.CapContentWrite,
		order:      &models.OrderBy{Field: "date", Direction: models.SortDesc},
		stampField: "createdAt",
		editable:   true,
	})}
}

func (s *EventService) List(ctx context.Context) ([]models.Event, error) {
	return s.c.list(ctx)
}

func (s *EventService) ListPublic(ctx context.Context) ([]models.Event, bool, error) {
	return s.c.listCached(ctx)
}

func (s *EventService) Get(ctx context.Context, id string) (*models.Event, error) {
	return s.c.get(ctx, id)
}

func (s *EventService) Create(ctx context.Context, actor *models.JWTClaims, req dto.EventRequest) (*models.Event, error) {
	return s.c.create(ctx, actor, &req)
}

func (s *EventService) Update(ctx context.Context, actor *models.JWTClaims, id string, req dto.EventUpdate) (*models.Event, error) {
	return s.c.update(ctx, actor, id, &req)
}

func (s *EventService) Delete(ctx context.Context, actor *models.JWTClaims, id string) error {
	return s.c.remove(ctx, actor, id)
}
