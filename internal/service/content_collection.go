package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/mentor-site-api/internal/models"
	"github.com/noah-isme/mentor-site-api/internal/repository"
	appErrors "github.com/noah-isme/mentor-site-api/pkg/errors"
)

// collectionConfig describes how one admin-editable collection is stored.
type collectionConfig struct {
	collection string
	resource   string
	capability models.Capability
	order      *models.OrderBy
	// stampField receives the creation time; updatedAt is also stamped
	// when editable is set.
	stampField string
	editable   bool
}

// contentCollection holds the create/update/delete/list flow shared by the
// admin-managed content types.
type contentCollection[T any] struct {
	store     repository.DocumentStore
	validator *validator.Validate
	cache     *CacheService
	logger    *zap.Logger
	cfg       collectionConfig
}

// ContentDeps bundles collaborators shared by content services.
type ContentDeps struct {
	Store     repository.DocumentStore
	Validator *validator.Validate
	Cache     *CacheService
	Logger    *zap.Logger
}

func newContentCollection[T any](deps ContentDeps, cfg collectionConfig) *contentCollection[T] {
	if deps.Validator == nil {
		deps.Validator = NewValidator()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &contentCollection[T]{
		store:     deps.Store,
		validator: deps.Validator,
		cache:     deps.Cache,
		logger:    deps.Logger,
		cfg:       cfg,
	}
}

func (c *contentCollection[T]) list(ctx context.Context) ([]T, error) {
	docs, err := c.store.Query(ctx, models.DocumentQuery{Collection: c.cfg.collection, OrderBy: c.cfg.order})
	if err != nil {
		c.logger.Warn("list failed", zap.String("collection", c.cfg.collection), zap.Error(err))
		return nil, storeError(err, "list", c.cfg.resource+"s")
	}
	items, err := decodeDocuments[T](docs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode "+c.cfg.resource+"s")
	}
	return items, nil
}

func (c *contentCollection[T]) listCached(ctx context.Context) ([]T, bool, error) {
	return cachedList(ctx, c.cache, PublicKey(c.cfg.collection), c.list)
}

func (c *contentCollection[T]) get(ctx context.Context, id string) (*T, error) {
	doc, err := c.store.Get(ctx, c.cfg.collection, id)
	if err != nil {
		return nil, storeError(err, "get", c.cfg.resource)
	}
	var item T
	if err := decodeDocument(*doc, &item); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode "+c.cfg.resource)
	}
	return &item, nil
}

// create validates payload (a pointer to a request struct), stamps timestamps
// and writes one document.
func (c *contentCollection[T]) create(ctx context.Context, actor *models.JWTClaims, payload interface{}) (*T, error) {
	if err := authorize(actor, c.cfg.capability); err != nil {
		return nil, err
	}
	trimStrings(payload)
	if err := validate(c.validator, payload, "invalid "+c.cfg.resource+" payload"); err != nil {
		return nil, err
	}
	fields, err := encodeFields(payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode "+c.cfg.resource)
	}
	now := models.Now().String()
	fields[c.cfg.stampField] = now
	if c.cfg.editable {
		fields["updatedAt"] = now
	}

	id, err := c.store.Create(ctx, c.cfg.collection, fields)
	if err != nil {
		c.logger.Warn("create failed", zap.String("collection", c.cfg.collection), zap.Error(err))
		return nil, storeError(err, "create", c.cfg.resource)
	}
	c.cache.InvalidateCollection(ctx, c.cfg.collection)

	var item T
	if err := decodeDocument(models.Document{ID: id, Fields: fields}, &item); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode "+c.cfg.resource)
	}
	return &item, nil
}

// update merges the provided fields of payload into document id.
func (c *contentCollection[T]) update(ctx context.Context, actor *models.JWTClaims, id string, payload interface{}) (*T, error) {
	if err := authorize(actor, c.cfg.capability); err != nil {
		return nil, err
	}
	trimStrings(payload)
	if err := validate(c.validator, payload, "invalid "+c.cfg.resource+" payload"); err != nil {
		return nil, err
	}
	patch, err := encodeFields(payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode "+c.cfg.resource)
	}
	if len(patch) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no fields to update")
	}
	if c.cfg.editable {
		patch["updatedAt"] = models.Now().String()
	}

	if err := c.store.Update(ctx, c.cfg.collection, id, patch); err != nil {
		c.logger.Warn("update failed", zap.String("collection", c.cfg.collection), zap.String("id", id), zap.Error(err))
		return nil, storeError(err, "update", c.cfg.resource)
	}
	c.cache.InvalidateCollection(ctx, c.cfg.collection)
	return c.get(ctx, id)
}

func (c *contentCollection[T]) remove(ctx context.Context, actor *models.JWTClaims, id string) error {
	if err := authorize(actor, c.cfg.capability); err != nil {
		return err
	}
	if err := c.store.Delete(ctx, c.cfg.collection, id); err != nil {
		c.logger.Warn("delete failed", zap.String("collection", c.cfg.collection), zap.String("id", id), zap.Error(err))
		return storeError(err, "delete", c.cfg.resource)
	}
	c.cache.InvalidateCollection(ctx, c.cfg.collection)
	return nil
}
