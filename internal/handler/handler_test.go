package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/mentor-site-api/internal/dashboard"
	"github.com/noah-isme/mentor-site-api/internal/dto"
	"github.com/noah-isme/mentor-site-api/internal/middleware"
	"github.com/noah-isme/mentor-site-api/internal/models"
	"github.com/noah-isme/mentor-site-api/internal/repository"
	"github.com/noah-isme/mentor-site-api/internal/service"
	appErrors "github.com/noah-isme/mentor-site-api/pkg/errors"
)

type responseEnvelope struct {
	Data  json.RawMessage        `json:"data"`
	Error *appErrors.Error       `json:"error"`
	Meta  map[string]interface{} `json:"meta"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) responseEnvelope {
	t.Helper()
	var env responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

type stubTokens map[string]*models.JWTClaims

func (s stubTokens) ValidateToken(_ context.Context, token string) (*models.JWTClaims, error) {
	if claims, ok := s[token]; ok {
		return claims, nil
	}
	return nil, appErrors.ErrUnauthorized
}

type stubAuth struct{}

func (stubAuth) Login(_ context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if req.Password != "correct-horse" {
		return nil, appErrors.ErrInvalidCredentials
	}
	return &models.LoginResponse{AccessToken: "admin-token", User: models.UserInfo{Email: req.Email, Role: models.RoleAdmin}}, nil
}

func (stubAuth) Me(_ context.Context, claims *models.JWTClaims) (*models.UserInfo, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	return &models.UserInfo{ID: claims.UserID, Email: claims.Email, Role: claims.Role, Capabilities: claims.Role.Capabilities()}, nil
}

type memoryBlobs struct {
	keys    []string
	deleted []string
}

func (m *memoryBlobs) Upload(_ context.Context, key string, r io.Reader, _ int64, _ string) (string, error) {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	m.keys = append(m.keys, key)
	return "https://cdn.test/" + key, nil
}

func (m *memoryBlobs) Delete(_ context.Context, key string) error {
	m.deleted = append(m.deleted, key)
	return nil
}

type testSite struct {
	router *gin.Engine
	store  *repository.MemoryDocumentStore
	audit  *repository.AuditRepository
	blobs  *memoryBlobs
}

func newTestSite(t *testing.T) *testSite {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := repository.NewMemoryDocumentStore()
	deps := service.ContentDeps{Store: store}
	webinars := service.NewWebinarService(deps)
	events := service.NewEventService(deps)
	testimonials := service.NewTestimonialService(deps)
	links := service.NewCommunityLinkService(deps)
	gallery := service.NewGalleryService(deps)
	reviews := service.NewReviewService(deps, nil)
	messages := service.NewContactMessageService(deps, nil)
	blobs := &memoryBlobs{}
	media := service.NewMediaService(blobs, service.MediaConfig{}, nil)
	audit := repository.NewAuditRepository(store)

	sources := func(actor *models.JWTClaims) dashboard.Sources {
		return dashboard.Sources{
			Webinars:       webinars.List,
			Events:         events.List,
			Testimonials:   testimonials.List,
			CommunityLinks: links.List,
			Gallery:        gallery.List,
			Messages: func(ctx context.Context) ([]models.ContactMessage, error) {
				return messages.List(ctx, actor)
			},
			Reviews: func(ctx context.Context) ([]models.Review, error) {
				return reviews.List(ctx, actor, dto.ReviewQuery{})
			},
		}
	}

	r := gin.New()
	r.Use(middleware.WithResponseMeta())
	RegisterRoutes(r.Group("/api/v1"), Handlers{
		Auth: NewAuthHandler(stubAuth{}),
		Public: NewPublicHandler(PublicServices{
			Webinars: webinars, Events: events, Testimonials: testimonials,
			CommunityLinks: links, Gallery: gallery, Reviews: reviews, Contact: messages,
		}),
		Webinars:       NewContentHandler[models.Webinar, dto.WebinarRequest, dto.WebinarUpdate]("webinar", webinars, nil),
		Events:         NewContentHandler[models.Event, dto.EventRequest, dto.EventUpdate]("event", events, nil),
		Testimonials:   NewContentHandler[models.Testimonial, dto.TestimonialRequest, dto.TestimonialUpdate]("testimonial", testimonials, nil),
		CommunityLinks: NewContentHandler[models.CommunityLink, dto.CommunityLinkRequest, dto.CommunityLinkUpdate]("community link", links, nil),
		Gallery:        NewGalleryHandler(gallery, nil),
		Media:          NewMediaHandler(media, 1<<20),
		Reviews:        NewReviewHandler(reviews, nil),
		Messages:       NewMessageHandler(messages, nil),
		Dashboard:      NewDashboardHandler(sources, service.NewMetricsService(), nil),
		Audit:          NewAuditHandler(audit),
	}, RouteDeps{
		Tokens: stubTokens{
			"admin-token":  {UserID: "admin-1", Role: models.RoleAdmin, Email: "admin@mentor.test"},
			"editor-token": {UserID: "editor-1", Role: models.RoleEditor, Email: "editor@mentor.test"},
		},
		Audit: audit,
	})
	return &testSite{router: r, store: store, audit: audit, blobs: blobs}
}

func (s *testSite) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testSite) auditActions(t *testing.T) []string {
	t.Helper()
	logs, err := s.audit.ListRecent(context.Background(), 50)
	require.NoError(t, err)
	actions := make([]string, 0, len(logs))
	for _, l := range logs {
		actions = append(actions, l.Action+" "+l.Resource)
	}
	return actions
}

func TestAuthEndpoints(t *testing.T) {
	site := newTestSite(t)

	rec := site.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "admin@mentor.test", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, decode(t, rec).Error.Code)

	rec = site.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "admin@mentor.test", "password": "correct-horse"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = site.do(http.MethodGet, "/api/v1/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = site.do(http.MethodGet, "/api/v1/auth/me", "editor-token", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var info models.UserInfo
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &info))
	assert.Equal(t, models.RoleEditor, info.Role)
	assert.NotContains(t, info.Capabilities, models.CapMessagesManage)
}

func TestContentCreateReturnsRefreshedListAndAudits(t *testing.T) {
	site := newTestSite(t)

	rec := site.do(http.MethodPost, "/api/v1/admin/webinars", "editor-token", dto.WebinarRequest{
		Title: "Career Q&A", Date: "2024-03-01", Time: "19:00",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	env := decode(t, rec)
	var created models.Webinar
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.NotEmpty(t, created.ID)
	list := env.Meta["list"].(map[string]interface{})
	assert.Len(t, list["items"], 1)
	assert.Equal(t, "succeeded", list["state"].(map[string]interface{})["phase"])

	rec = site.do(http.MethodGet, "/api/v1/webinars", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	env = decode(t, rec)
	assert.Equal(t, float64(1), env.Meta["total"])
	assert.Equal(t, false, env.Meta["cacheHit"])
	assert.Contains(t, env.Meta, "processingTimeMs")

	assert.Equal(t, []string{"CREATE webinar"}, site.auditActions(t))
}

func TestContentValidationFailureIsNotAudited(t *testing.T) {
	site := newTestSite(t)

	rec := site.do(http.MethodPost, "/api/v1/admin/testimonials", "admin-token", dto.TestimonialRequest{Name: "Ana", Content: "Great", Rating: 9})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, appErrors.ErrValidation.Code, env.Error.Code)
	assert.Contains(t, env.Error.Details, "rating")
	assert.Empty(t, site.auditActions(t))
}

func TestContentDeleteRequiresConfirmation(t *testing.T) {
	site := newTestSite(t)
	rec := site.do(http.MethodPost, "/api/v1/admin/events", "admin-token", dto.EventRequest{Title: "Meetup", Date: "2024-05-02", Time: "10:00"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var event models.Event
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &event))

	rec = site.do(http.MethodDelete, "/api/v1/admin/events/"+event.ID, "admin-token", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	env := decode(t, rec)
	assert.JSONEq(t, `{"deleted":false}`, string(env.Data))
	assert.Equal(t, true, env.Meta["confirmRequired"])

	rec = site.do(http.MethodGet, "/api/v1/admin/events/"+event.ID, "admin-token", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = site.do(http.MethodDelete, "/api/v1/admin/events/"+event.ID+"?confirm=true", "admin-token", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"deleted":true}`, string(decode(t, rec).Data))

	rec = site.do(http.MethodGet, "/api/v1/admin/events/"+event.ID, "admin-token", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	assert.ElementsMatch(t, []string{"DELETE event", "CREATE event"}, site.auditActions(t))
}

func TestGalleryBulkImport(t *testing.T) {
	site := newTestSite(t)

	rec := site.do(http.MethodPost, "/api/v1/admin/gallery/bulk", "editor-token", dto.GalleryBulkImportRequest{
		URLs:      "https://img.test/1.jpg\nhttps://img.test/2.jpg\n\n  https://img.test/3.jpg  ",
		Section:   models.SectionWorkshops,
		EventName: "Spring workshop",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, float64(3), env.Meta["imported"])

	rec = site.do(http.MethodGet, "/api/v1/gallery", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var groups []models.GalleryGroup
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &groups))
	require.Len(t, groups, 1)
	assert.Len(t, groups[0].Images, 3)
}

func TestReviewModerationFlow(t *testing.T) {
	site := newTestSite(t)

	rec := site.do(http.MethodPost, "/api/v1/reviews", "", dto.ReviewSubmission{
		Name: "Budi", Email: "budi@mail.test", Rating: 5, Title: "Helpful", Content: "Clear session", ProgramType: models.ProgramWebinar,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var submitted struct {
		ID     string              `json:"id"`
		Status models.ReviewStatus `json:"status"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &submitted))
	assert.Equal(t, models.ReviewStatusPending, submitted.Status)

	rec = site.do(http.MethodGet, "/api/v1/reviews?programType=webinar", "", nil)
	assert.Equal(t, float64(0), decode(t, rec).Meta["total"])

	rec = site.do(http.MethodPost, "/api/v1/admin/reviews/"+submitted.ID+"/approve", "editor-token", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = site.do(http.MethodPost, "/api/v1/admin/reviews/"+submitted.ID+"/approve", "admin-token", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	pending := decode(t, rec).Meta["pending"].(map[string]interface{})
	assert.Empty(t, pending["items"])

	rec = site.do(http.MethodPost, "/api/v1/admin/reviews/"+submitted.ID+"/reject", "admin-token", nil)
	assert.Equal(t, appErrors.ErrInvalidTransition.Status, rec.Code)

	rec = site.do(http.MethodGet, "/api/v1/reviews?programType=webinar", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var public []models.Review
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &public))
	require.Len(t, public, 1)
	assert.Empty(t, public[0].Email)
}

func TestMessageInbox(t *testing.T) {
	site := newTestSite(t)

	rec := site.do(http.MethodPost, "/api/v1/contact", "", dto.ContactSubmission{Name: "Sari", Email: "sari@mail.test", Message: "Hello"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &created))

	rec = site.do(http.MethodGet, "/api/v1/admin/messages", "editor-token", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = site.do(http.MethodGet, "/api/v1/admin/messages", "admin-token", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decode(t, rec).Meta["unread"])

	rec = site.do(http.MethodGet, "/api/v1/admin/messages/"+created.ID, "admin-token", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var opened models.ContactMessage
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &opened))
	assert.Equal(t, models.MessageStatusRead, opened.Status)

	rec = site.do(http.MethodGet, "/api/v1/admin/messages/"+created.ID, "admin-token", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = site.do(http.MethodPost, "/api/v1/admin/messages/"+created.ID+"/replied", "admin-token", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.ElementsMatch(t, []string{"MARK_READ contact_message", "MARK_REPLIED contact_message"}, site.auditActions(t))

	rec = site.do(http.MethodGet, "/api/v1/admin/messages/export", "admin-token", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".csv")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "Received"))

	rec = site.do(http.MethodGet, "/api/v1/admin/messages/export?format=xlsx", "admin-token", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/admin/messages/"+created.ID, nil)
	req.Header.Set("Authorization", "Bearer admin-token")
	req.Header.Set("X-Confirm", "true")
	rec = httptest.NewRecorder()
	site.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"deleted":true}`, string(decode(t, rec).Data))
}

func TestMediaUpload(t *testing.T) {
	site := newTestSite(t)

	body := &bytes.Buffer{}
	form := multipart.NewWriter(body)
	part, err := form.CreateFormFile("file", "cover.png")
	require.NoError(t, err)
	_, _ = part.Write([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"))
	require.NoError(t, form.WriteField("folder", "events"))
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/media", body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer editor-token")
	rec := httptest.NewRecorder()
	site.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var upload service.MediaUpload
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &upload))
	assert.Equal(t, "image/png", upload.ContentType)
	require.Len(t, site.blobs.keys, 1)
	assert.True(t, strings.HasPrefix(site.blobs.keys[0], "events/"))
}

func TestMediaUploadRequiresFile(t *testing.T) {
	site := newTestSite(t)
	rec := site.do(http.MethodPost, "/api/v1/admin/media", "admin-token", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMediaDelete(t *testing.T) {
	site := newTestSite(t)

	rec := site.do(http.MethodDelete, "/api/v1/admin/media/events/0b5c1f9e-8f4e-4b43-9a57-1f7c2f0c9d11.png", "editor-token", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Equal(t, []string{"events/0b5c1f9e-8f4e-4b43-9a57-1f7c2f0c9d11.png"}, site.blobs.deleted)

	logs, err := site.audit.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "DELETE", logs[0].Action)
	assert.Equal(t, "media", logs[0].Resource)
	assert.Equal(t, "events/0b5c1f9e-8f4e-4b43-9a57-1f7c2f0c9d11.png", logs[0].ResourceID)

	rec = site.do(http.MethodDelete, "/api/v1/admin/media/../config.yaml", "editor-token", nil)
	assert.NotEqual(t, http.StatusNoContent, rec.Code)
	rec = site.do(http.MethodDelete, "/api/v1/admin/media/events/a.png", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Len(t, site.blobs.deleted, 1)
}

func TestDashboardIsolatesFailingSections(t *testing.T) {
	site := newTestSite(t)
	site.do(http.MethodPost, "/api/v1/contact", "", dto.ContactSubmission{Name: "Sari", Email: "sari@mail.test", Message: "Hello"})
	site.do(http.MethodPost, "/api/v1/reviews", "", dto.ReviewSubmission{
		Name: "Ana", Email: "ana@private.test", Rating: 4, Title: "Helpful", Content: "Clear session", ProgramType: models.ProgramWebinar,
	})

	rec := site.do(http.MethodGet, "/api/v1/admin/dashboard", "editor-token", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "ana@private.test")
	var payload struct {
		Summary dashboard.Summary `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &payload))
	require.Len(t, payload.Summary.Sections, 7)
	for _, section := range payload.Summary.Sections {
		if section.Name == "contact_messages" || section.Name == "reviews" {
			assert.Equal(t, dashboard.PhaseFailed, section.State.Phase, section.Name)
			assert.Zero(t, section.Count, section.Name)
			continue
		}
		assert.Equal(t, dashboard.PhaseSucceeded, section.State.Phase, section.Name)
	}

	rec = site.do(http.MethodGet, "/api/v1/admin/dashboard", "admin-token", nil)
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &payload))
	assert.Equal(t, 1, payload.Summary.NewMessages)
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func TestReadyReportsFailingDependency(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewMetricsHandler(nil, map[string]Pinger{
		"store": stubPinger{},
		"cache": stubPinger{err: errors.New("connection refused")},
	}, nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/ready", nil)
	h.Ready(c)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"degraded","checks":{"store":"up","cache":"down"}}`, rec.Body.String())
}

func TestAuditTrailIsAdminOnly(t *testing.T) {
	site := newTestSite(t)

	rec := site.do(http.MethodPost, "/api/v1/admin/webinars", "admin-token", dto.WebinarRequest{
		Title: "Go basics", Date: "2024-03-01", Time: "19:00", Duration: "90 min",
		FormLink: "https://forms.test/go", Description: "intro",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	assert.Equal(t, http.StatusForbidden, site.do(http.MethodGet, "/api/v1/admin/audit", "editor-token", nil).Code)
	assert.Equal(t, http.StatusBadRequest, site.do(http.MethodGet, "/api/v1/admin/audit?limit=0", "admin-token", nil).Code)

	rec = site.do(http.MethodGet, "/api/v1/admin/audit?limit=10", "admin-token", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	env := decode(t, rec)
	var logs []models.AuditLog
	require.NoError(t, json.Unmarshal(env.Data, &logs))
	require.Len(t, logs, 1)
	assert.Equal(t, models.AuditActionCreate, logs[0].Action)
	assert.Equal(t, "webinar", logs[0].Resource)
	assert.Equal(t, float64(1), env.Meta["total"])
}
