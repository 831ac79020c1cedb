package service

import (
	"context"
	"errors"
	"sort"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/mentor-site-api/internal/dto"
	"github.com/noah-isme/mentor-site-api/internal/models"
	"github.com/noah-isme/mentor-site-api/internal/repository"
	appErrors "github.com/noah-isme/mentor-site-api/pkg/errors"
)

// ReviewService handles public review submission and moderation.
type ReviewService struct {
	store     repository.DocumentStore
	validator *validator.Validate
	cache     *CacheService
	notifier  *NotificationService
	logger    *zap.Logger
}

// NewReviewService constructs the service.
func NewReviewService(deps ContentDeps, notifier *NotificationService) *ReviewService {
	if deps.Validator == nil {
		deps.Validator = NewValidator()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &ReviewService{
		store:     deps.Store,
		validator: deps.Validator,
		cache:     deps.Cache,
		notifier:  notifier,
		logger:    deps.Logger,
	}
}

// Submit stores a visitor review. Reviews always start pending.
func (s *ReviewService) Submit(ctx context.Context, req dto.ReviewSubmission) (*models.Review, error) {
	trimStrings(&req)
	if err := validate(s.validator, &req, "invalid review"); err != nil {
		return nil, err
	}
	review := models.Review{
		Name:        req.Name,
		Email:       req.Email,
		Rating:      req.Rating,
		Title:       req.Title,
		Content:     req.Content,
		ProgramType: req.ProgramType,
		Status:      models.ReviewStatusPending,
		CreatedAt:   models.Now(),
	}
	fields, err := encodeFields(review)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode review")
	}
	id, err := s.store.Create(ctx, models.CollectionReviews, fields)
	if err != nil {
		s.logger.Warn("review submission failed", zap.Error(err))
		return nil, storeError(err, "submit", "review")
	}
	review.ID = id
	s.notifier.ReviewSubmitted(ctx, &review)
	return &review, nil
}

// ListPublic returns approved reviews, newest first. Pending and rejected
// reviews are never included, and reviewer emails are withheld.
func (s *ReviewService) ListPublic(ctx context.Context, programType models.ProgramType) ([]models.Review, bool, error) {
	query := dto.ReviewQuery{ProgramType: programType, Status: models.ReviewStatusApproved}
	if err := validate(s.validator, &query, "invalid review query"); err != nil {
		return nil, false, err
	}
	key := PublicKey(models.CollectionReviews, string(programType))
	return cachedList(ctx, s.cache, key, func(ctx context.Context) ([]models.Review, error) {
		reviews, err := s.query(ctx, query)
		if err != nil {
			return nil, err
		}
		for i := range reviews {
			reviews[i].Email = ""
		}
		return reviews, nil
	})
}

// List returns reviews for the moderation view, reviewer emails included.
func (s *ReviewService) List(ctx context.Context, actor *models.JWTClaims, query dto.ReviewQuery) ([]models.Review, error) {
	if err := authorize(actor, models.CapReviewsModerate); err != nil {
		return nil, err
	}
	if err := validate(s.validator, &query, "invalid review query"); err != nil {
		return nil, err
	}
	return s.query(ctx, query)
}

// query filters in the store and sorts in memory so no composite
// filter+order index is needed.
func (s *ReviewService) query(ctx context.Context, q dto.ReviewQuery) ([]models.Review, error) {
	filters := make([]models.Filter, 0, 2)
	if q.ProgramType != "" {
		filters = append(filters, models.Filter{Field: "programType", Value: q.ProgramType})
	}
	if q.Status != "" {
		filters = append(filters, models.Filter{Field: "status", Value: q.Status})
	}
	docs, err := s.store.Query(ctx, models.DocumentQuery{Collection: models.CollectionReviews, Filters: filters})
	if err != nil {
		s.logger.Warn("list reviews failed", zap.Error(err))
		return nil, storeError(err, "list", "reviews")
	}
	reviews, err := decodeDocuments[models.Review](docs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode reviews")
	}
	SortReviewsNewestFirst(reviews)
	return reviews, nil
}

// SortReviewsNewestFirst orders reviews by createdAt descending.
func SortReviewsNewestFirst(reviews []models.Review) {
	sort.SliceStable(reviews, func(i, j int) bool {
		return reviews[i].CreatedAt.After(reviews[j].CreatedAt.Time)
	})
}

// Approve publishes a pending review.
func (s *ReviewService) Approve(ctx context.Context, actor *models.JWTClaims, id string) (*models.Review, error) {
	return s.transition(ctx, actor, id, models.ReviewStatusApproved)
}

// Reject hides a pending review permanently.
func (s *ReviewService) Reject(ctx context.Context, actor *models.JWTClaims, id string) (*models.Review, error) {
	return s.transition(ctx, actor, id, models.ReviewStatusRejected)
}

func (s *ReviewService) transition(ctx context.Context, actor *models.JWTClaims, id string, to models.ReviewStatus) (*models.Review, error) {
	if err := authorize(actor, models.CapReviewsModerate); err != nil {
		return nil, err
	}
	review, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !review.Status.CanTransition(to) {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "review is already "+string(review.Status))
	}

	now := models.Now()
	err = s.store.UpdateWhere(ctx, models.CollectionReviews, id,
		[]models.Filter{{Field: "status", Value: review.Status}},
		models.Fields{"status": string(to), "updatedAt": now.String()},
	)
	if err != nil {
		if errors.Is(err, repository.ErrDocumentNotFound) {
			// Deleted or decided by someone else since the read.
			if _, getErr := s.get(ctx, id); getErr != nil {
				return nil, getErr
			}
			return nil, appErrors.Clone(appErrors.ErrConflict, "review was moderated concurrently")
		}
		s.logger.Warn("review moderation failed", zap.String("id", id), zap.Error(err))
		return nil, storeError(err, "moderate", "review")
	}
	s.cache.InvalidateCollection(ctx, models.CollectionReviews)

	review.Status = to
	review.UpdatedAt = &now
	return review, nil
}

// Delete removes a review.
func (s *ReviewService) Delete(ctx context.Context, actor *models.JWTClaims, id string) error {
	if err := authorize(actor, models.CapReviewsModerate); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, models.CollectionReviews, id); err != nil {
		s.logger.Warn("delete review failed", zap.String("id", id), zap.Error(err))
		return storeError(err, "delete", "review")
	}
	s.cache.InvalidateCollection(ctx, models.CollectionReviews)
	return nil
}

func (s *ReviewService) get(ctx context.Context, id string) (*models.Review, error) {
	doc, err := s.store.Get(ctx, models.CollectionReviews, id)
	if err != nil {
		return nil, storeError(err, "get", "review")
	}
	var review models.Review
	if err := decodeDocument(*doc, &review); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode review")
	}
	return &review, nil
}
