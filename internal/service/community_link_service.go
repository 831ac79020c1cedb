package service

import (
	"context"

	"github.com/noah-isme/mentor-site-api/internal/dto"
	"github.com/noah-isme/mentor-site-api/internal/models"
)

// CommunityLinkService manages links to community channels.
type CommunityLinkService struct {
	c *contentCollection[models.CommunityLink]
}

// NewCommunityLinkService constructs the service.
func NewCommunityLinkService(deps ContentDeps) *CommunityLinkService {
	return &CommunityLinkService{c: newContentCollection[models.CommunityLink](deps, collectionConfig{
		collection: models.CollectionCommunityLinks,
		resource:   "community link",
		capability: models.CapContentWrite,
		order:      &models.OrderBy{Field: "createdAt", Direction: models.SortAsc},
		stampField: "createdAt",
	})}
}

// List returns all links in creation order, including unknown platforms.
func (s *CommunityLinkService) List(ctx context.Context) ([]models.CommunityLink, error) {
	return s.c.list(ctx)
}

// ListPublic returns links the site can render: records with an unknown
// platform are dropped.
func (s *CommunityLinkService) ListPublic(ctx context.Context) ([]models.CommunityLink, bool, error) {
	links, hit, err := s.c.listCached(ctx)
	if err != nil {
		return nil, false, err
	}
	visible := make([]models.CommunityLink, 0, len(links))
	for _, link := range links {
		if link.Platform.Valid() {
			visible = append(visible, link)
		}
	}
	return visible, hit, nil
}

func (s *CommunityLinkService) Get(ctx context.Context, id string) (*models.CommunityLink, error) {
	return s.c.get(ctx, id)
}

func (s *CommunityLinkService) Create(ctx context.Context, actor *models.JWTClaims, req dto.CommunityLinkRequest) (*models.CommunityLink, error) {
	return s.c.create(ctx, actor, &req)
}

func (s *CommunityLinkService) Update(ctx context.Context, actor *models.JWTClaims, id string, req dto.CommunityLinkUpdate) (*models.CommunityLink, error) {
	return s.c.update(ctx, actor, id, &req)
}

func (s *CommunityLinkService) Delete(ctx context.Context, actor *models.JWTClaims, id string) error {
	return s.c.remove(ctx, actor, id)
}
