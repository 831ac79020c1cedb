package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/mentor-site-api/internal/dto"
	"github.com/noah-isme/mentor-site-api/internal/models"
	appErrors "github.com/noah-isme/mentor-site-api/pkg/errors"
)

func seedReview(t *testing.T, store *faultyStore, status models.ReviewStatus, program models.ProgramType, createdAt time.Time) string {
	t.Helper()
	fields, err := models.ToFields(models.Review{
		Name: "Visitor", Email: "v@example.com", Rating: 5, Title: "t", Content: "c",
		ProgramType: program, Status: status, CreatedAt: models.NewTimestamp(createdAt),
	})
	require.NoError(t, err)
	id, err := store.Create(context.Background(), models.CollectionReviews, fields)
	require.NoError(t, err)
	return id
}

func TestReviewSubmitForcesPending(t *testing.T) {
	store := newFaultyStore()
	dispatcher := &recordingDispatcher{}
	notifier := NewNotificationService(dispatcher, "Owner", "owner@example.com", nil, nil)
	svc := NewReviewService(ContentDeps{Store: store}, notifier)

	review, err := svc.Submit(context.Background(), dto.ReviewSubmission{
		Name: "Budi", Email: "budi@example.com", Rating: 4, Title: "Helpful", Content: "Loved it", ProgramType: models.ProgramWebinar,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ReviewStatusPending, review.Status)
	require.Len(t, dispatcher.messages, 1)
	assert.Equal(t, "owner@example.com", dispatcher.messages[0].ToEmail)

	_, err = svc.Submit(context.Background(), dto.ReviewSubmission{Name: "x", Email: "bad", Rating: 0, Title: "t", Content: "c", ProgramType: "course"})
	appErr := requireAppCode(t, err, appErrors.ErrValidation.Code)
	assert.Contains(t, appErr.Details, "email")
	assert.Contains(t, appErr.Details, "rating")
	assert.Contains(t, appErr.Details, "programType")
}

func TestPublicReviewsOnlyApproved(t *testing.T) {
	ctx := context.Background()
	store := newFaultyStore()
	svc := NewReviewService(ContentDeps{Store: store}, nil)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	approved := seedReview(t, store, models.ReviewStatusApproved, models.ProgramWebinar, base)
	seedReview(t, store, models.ReviewStatusPending, models.ProgramWebinar, base.Add(time.Hour))
	seedReview(t, store, models.ReviewStatusRejected, models.ProgramWebinar, base.Add(2*time.Hour))
	seedReview(t, store, models.ReviewStatusApproved, models.ProgramEvent, base.Add(3*time.Hour))

	reviews, _, err := svc.ListPublic(ctx, models.ProgramWebinar)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, approved, reviews[0].ID)
	assert.Empty(t, reviews[0].Email)

	all, _, err := svc.ListPublic(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	pending, err := svc.List(ctx, adminActor, dto.ReviewQuery{Status: models.ReviewStatusPending})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "v@example.com", pending[0].Email)

	_, err = svc.List(ctx, editorActor, dto.ReviewQuery{})
	requireAppCode(t, err, appErrors.ErrForbidden.Code)
	_, err = svc.List(ctx, nil, dto.ReviewQuery{})
	requireAppCode(t, err, appErrors.ErrUnauthorized.Code)

	_, _, err = svc.ListPublic(ctx, "course")
	requireAppCode(t, err, appErrors.ErrValidation.Code)
}

func TestReviewsSortedNewestFirstRegardlessOfStoreOrder(t *testing.T) {
	store := newFaultyStore()
	store.queryReverse = true
	svc := NewReviewService(ContentDeps{Store: store}, nil)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	oldest := seedReview(t, store, models.ReviewStatusApproved, models.ProgramEvent, base)
	newest := seedReview(t, store, models.ReviewStatusApproved, models.ProgramEvent, base.Add(48*time.Hour))
	middle := seedReview(t, store, models.ReviewStatusApproved, models.ProgramEvent, base.Add(24*time.Hour))

	reviews, err := svc.List(context.Background(), adminActor, dto.ReviewQuery{ProgramType: models.ProgramEvent})
	require.NoError(t, err)
	require.Len(t, reviews, 3)
	assert.Equal(t, []string{newest, middle, oldest}, []string{reviews[0].ID, reviews[1].ID, reviews[2].ID})
}

func TestReviewModerationTransitions(t *testing.T) {
	ctx := context.Background()
	store := newFaultyStore()
	svc := NewReviewService(ContentDeps{Store: store}, nil)
	id := seedReview(t, store, models.ReviewStatusPending, models.ProgramWebinar, time.Now())

	_, err := svc.Approve(ctx, editorActor, id)
	requireAppCode(t, err, appErrors.ErrForbidden.Code)

	review, err := svc.Approve(ctx, adminActor, id)
	require.NoError(t, err)
	assert.Equal(t, models.ReviewStatusApproved, review.Status)
	require.NotNil(t, review.UpdatedAt)

	_, err = svc.Reject(ctx, adminActor, id)
	requireAppCode(t, err, appErrors.ErrInvalidTransition.Code)

	_, err = svc.Approve(ctx, adminActor, "missing")
	requireAppCode(t, err, appErrors.ErrNotFound.Code)

	require.NoError(t, svc.Delete(ctx, adminActor, id))
	requireAppCode(t, svc.Delete(ctx, adminActor, id), appErrors.ErrNotFound.Code)
}

func TestReviewModerationLosesRace(t *testing.T) {
	ctx := context.Background()
	store := newFaultyStore()
	svc := NewReviewService(ContentDeps{Store: store}, nil)
	id := seedReview(t, store, models.ReviewStatusPending, models.ProgramWebinar, time.Now())

	svc.store = &racingStore{faultyStore: store, beforeUpdate: func() {
		// Another moderator decides between our read and our write.
		_ = store.DocumentStore.Update(ctx, models.CollectionReviews, id, models.Fields{"status": "rejected"})
	}}

	_, err := svc.Approve(ctx, adminActor, id)
	requireAppCode(t, err, appErrors.ErrConflict.Code)

	_, err = svc.Approve(ctx, adminActor, id)
	requireAppCode(t, err, appErrors.ErrInvalidTransition.Code)

	got, err := svc.get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.ReviewStatusRejected, got.Status)
}

// racingStore runs beforeUpdate just ahead of each conditional write.
type racingStore struct {
	*faultyStore
	beforeUpdate func()
}

func (r *racingStore) UpdateWhere(ctx context.Context, collection, id string, expect []models.Filter, patch models.Fields) error {
	r.beforeUpdate()
	return r.faultyStore.UpdateWhere(ctx, collection, id, expect, patch)
}
