package dashboard

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/mentor-site-api/internal/dto"
	"github.com/noah-isme/mentor-site-api/internal/models"
	"github.com/noah-isme/mentor-site-api/internal/repository"
	"github.com/noah-isme/mentor-site-api/internal/service"
	appErrors "github.com/noah-isme/mentor-site-api/pkg/errors"
)

var admin = &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin}

func newTestimonialEditor(t *testing.T, confirm Confirmer) (*Editor[models.Testimonial, dto.TestimonialRequest, dto.TestimonialUpdate], *service.TestimonialService) {
	t.Helper()
	svc := service.NewTestimonialService(service.ContentDeps{Store: repository.NewMemoryDocumentStore()})
	list := NewListController("testimonials", svc.List, nil)
	return NewEditor[models.Testimonial, dto.TestimonialRequest, dto.TestimonialUpdate]("testimonial", list, ForActor[models.Testimonial, dto.TestimonialRequest, dto.TestimonialUpdate](svc, admin), confirm, nil), svc
}

func TestListControllerKeepsItemsOnFailure(t *testing.T) {
	fail := false
	list := NewListController("webinars", func(ctx context.Context) ([]string, error) {
		if fail {
			return nil, appErrors.Clone(appErrors.ErrUnavailable, "store offline")
		}
		return []string{"a", "b"}, nil
	}, nil)
	assert.Equal(t, PhaseIdle, list.State().Phase)

	require.NoError(t, list.Refresh(context.Background()))
	assert.Equal(t, []string{"a", "b"}, list.Items())
	assert.Equal(t, PhaseSucceeded, list.State().Phase)

	fail = true
	require.Error(t, list.Refresh(context.Background()))
	assert.Equal(t, []string{"a", "b"}, list.Items())
	assert.Equal(t, RequestState{Phase: PhaseFailed, Reason: "store offline"}, list.State())
}

func TestListControllerDiscardsSupersededResult(t *testing.T) {
	release := make(chan struct{})
	var calls int32
	list := NewListController("events", func(ctx context.Context) ([]string, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			<-release
			return []string{"stale"}, nil
		}
		return []string{"fresh"}, nil
	}, nil)

	slow := make(chan error, 1)
	go func() { slow <- list.Refresh(context.Background()) }()
	require.Eventually(t, func() bool { return atomic.LoadInt32(&calls) == 1 }, time.Second, time.Millisecond)

	require.NoError(t, list.Refresh(context.Background()))
	close(release)
	assert.ErrorIs(t, <-slow, ErrSuperseded)
	assert.Equal(t, []string{"fresh"}, list.Items())
	assert.Equal(t, PhaseSucceeded, list.State().Phase)
}

func TestListControllerDiscardsCancelledResult(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	list := NewListController("gallery", func(ctx context.Context) ([]string, error) {
		cancel()
		return []string{"late"}, nil
	}, nil)

	err := list.Refresh(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, list.Items())
	assert.Equal(t, PhaseIdle, list.State().Phase)
}

func TestEditorCreateClearsDraftAndRefetches(t *testing.T) {
	editor, _ := newTestimonialEditor(t, nil)
	ctx := context.Background()

	editor.SetDraft(dto.TestimonialRequest{Name: "Rina", Content: "Great mentor", Rating: 5})
	created, err := editor.Create(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Rina", created.Name)
	assert.Equal(t, dto.TestimonialRequest{}, editor.Draft())
	assert.Equal(t, PhaseSucceeded, editor.CreateState().Phase)
	require.Len(t, editor.List().Items(), 1)

	editor.SetDraft(dto.TestimonialRequest{Name: "Bad", Rating: 9})
	_, err = editor.Create(ctx)
	require.Error(t, err)
	assert.Equal(t, PhaseFailed, editor.CreateState().Phase)
	assert.NotEmpty(t, editor.CreateState().Reason)
	assert.Equal(t, "Bad", editor.Draft().Name)
	assert.Len(t, editor.List().Items(), 1)
}

func TestEditorUpdateLeavesEditMode(t *testing.T) {
	editor, _ := newTestimonialEditor(t, nil)
	ctx := context.Background()
	editor.SetDraft(dto.TestimonialRequest{Name: "Rina", Content: "Great", Rating: 4})
	created, err := editor.Create(ctx)
	require.NoError(t, err)

	editor.BeginEdit(created.ID)
	rating := 5
	updated, err := editor.Update(ctx, created.ID, dto.TestimonialUpdate{Rating: &rating})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Rating)
	assert.Empty(t, editor.EditingID())
	assert.Equal(t, 5, editor.List().Items()[0].Rating)

	editor.BeginEdit(created.ID)
	_, err = editor.Update(ctx, "missing", dto.TestimonialUpdate{Rating: &rating})
	require.Error(t, err)
	assert.Equal(t, created.ID, editor.EditingID())
	assert.Equal(t, PhaseFailed, editor.UpdateState().Phase)
}

func TestEditorDeleteRequiresConfirmation(t *testing.T) {
	answer := false
	var prompts []string
	confirm := ConfirmFunc(func(ctx context.Context, prompt string) bool {
		prompts = append(prompts, prompt)
		return answer
	})
	editor, svc := newTestimonialEditor(t, confirm)
	ctx := context.Background()

	var ids []string
	for _, name := range []string{"A", "B"} {
		editor.SetDraft(dto.TestimonialRequest{Name: name, Content: "c", Rating: 3})
		created, err := editor.Create(ctx)
		require.NoError(t, err)
		ids = append(ids, created.ID)
	}

	deleted, err := editor.Delete(ctx, ids[0])
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Equal(t, PhaseIdle, editor.DeleteState().Phase)
	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	answer = true
	deleted, err = editor.Delete(ctx, ids[0])
	require.NoError(t, err)
	assert.True(t, deleted)
	all, err = svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, ids[1], all[0].ID)
	assert.Len(t, editor.List().Items(), 1)
	assert.Equal(t, []string{"Delete this testimonial?", "Delete this testimonial?"}, prompts)
}

func TestEditorWithoutConfirmerNeverDeletes(t *testing.T) {
	calls := 0
	editor := NewEditor[string, string, string]("link", nil, Mutations[string, string, string]{
		Delete: func(ctx context.Context, id string) error { calls++; return nil },
	}, nil, nil)

	deleted, err := editor.Delete(context.Background(), "x")
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Zero(t, calls)
}

func TestGalleryEditorBulkImportClearsInputs(t *testing.T) {
	svc := service.NewGalleryService(service.ContentDeps{Store: repository.NewMemoryDocumentStore()})
	list := NewListController("gallery", svc.List, nil)
	editor := NewGalleryEditor(
		NewEditor[models.GalleryImage, dto.GalleryImageRequest, dto.GalleryImageUpdate]("gallery image", list,
			ForActor[models.GalleryImage, dto.GalleryImageRequest, dto.GalleryImageUpdate](svc, admin), nil, nil),
		func(ctx context.Context, req dto.GalleryBulkImportRequest) ([]models.GalleryImage, error) {
			return svc.BulkImport(ctx, admin, req)
		},
	)
	ctx := context.Background()

	editor.SetBulkDraft(dto.GalleryBulkImportRequest{URLs: "\n\n", Section: models.SectionEvents, EventName: "Expo", Description: "d"})
	_, err := editor.BulkImport(ctx)
	require.Error(t, err)
	assert.Equal(t, PhaseFailed, editor.BulkState().Phase)
	assert.Equal(t, "Expo", editor.BulkDraft().EventName)

	editor.SetBulkDraft(dto.GalleryBulkImportRequest{URLs: "url1\nurl2\n\nurl3", Section: models.SectionEvents, EventName: "Expo", Description: "d"})
	images, err := editor.BulkImport(ctx)
	require.NoError(t, err)
	assert.Len(t, images, 3)
	assert.Equal(t, dto.GalleryBulkImportRequest{}, editor.BulkDraft())
	assert.Equal(t, PhaseSucceeded, editor.BulkState().Phase)
	assert.Len(t, editor.List().Items(), 3)
}

func TestDashboardLoadIsolatesFailures(t *testing.T) {
	d := New(Sources{
		Webinars:       func(ctx context.Context) ([]models.Webinar, error) { return []models.Webinar{{ID: "w"}}, nil },
		Events:         func(ctx context.Context) ([]models.Event, error) { return nil, nil },
		Testimonials:   func(ctx context.Context) ([]models.Testimonial, error) { return []models.Testimonial{{}, {}}, nil },
		CommunityLinks: func(ctx context.Context) ([]models.CommunityLink, error) { return nil, errors.New("boom") },
		Gallery:        func(ctx context.Context) ([]models.GalleryImage, error) { return []models.GalleryImage{{}}, nil },
		Messages: func(ctx context.Context) ([]models.ContactMessage, error) {
			return []models.ContactMessage{{Status: models.MessageStatusNew}, {Status: models.MessageStatusRead}}, nil
		},
		Reviews: func(ctx context.Context) ([]models.Review, error) {
			return []models.Review{{Status: models.ReviewStatusPending}, {Status: models.ReviewStatusApproved}, {Status: models.ReviewStatusPending}}, nil
		},
	}, nil)

	summary := d.Load(context.Background())
	require.Len(t, summary.Sections, 7)
	assert.Equal(t, SectionSummary{Name: "webinars", Count: 1, State: Succeeded()}, summary.Sections[0])
	assert.Equal(t, 0, summary.Sections[1].Count)
	assert.Equal(t, RequestState{Phase: PhaseFailed, Reason: "boom"}, summary.Sections[3].State)
	assert.Equal(t, 2, summary.PendingReviews)
	assert.Equal(t, 1, summary.NewMessages)
}
