package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/mentor-site-api/internal/dashboard"
	"github.com/noah-isme/mentor-site-api/internal/models"
	"github.com/noah-isme/mentor-site-api/internal/service"
	appErrors "github.com/noah-isme/mentor-site-api/pkg/errors"
	"github.com/noah-isme/mentor-site-api/pkg/response"
)

// SourcesFor binds the dashboard loaders to the requesting admin.
type SourcesFor func(actor *models.JWTClaims) dashboard.Sources

// DashboardHandler serves the admin landing view.
type DashboardHandler struct {
	sources SourcesFor
	metrics *service.MetricsService
	logger  *zap.Logger
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(sources SourcesFor, metrics *service.MetricsService, logger *zap.Logger) *DashboardHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardHandler{sources: sources, metrics: metrics, logger: logger}
}

type dashboardLists struct {
	Webinars       listView[models.Webinar]        `json:"webinars"`
	Events         listView[models.Event]          `json:"events"`
	Testimonials   listView[models.Testimonial]    `json:"testimonials"`
	CommunityLinks listView[models.CommunityLink]  `json:"communityLinks"`
	Gallery        listView[models.GalleryImage]   `json:"gallery"`
	Messages       listView[models.ContactMessage] `json:"messages"`
	Reviews        listView[models.Review]         `json:"reviews"`
}

// Admin godoc
// @Summary Admin dashboard
// @Description Loads every admin list; a failing list is reported without failing the others
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /admin/dashboard [get]
func (h *DashboardHandler) Admin(c *gin.Context) {
	if h.sources == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	start := time.Now()
	board := dashboard.New(h.sources(claimsFromContext(c)), h.logger)
	summary := board.Load(c.Request.Context())

	meta := map[string]interface{}{
		"generatedAt":      time.Now().UTC(),
		"processingTimeMs": time.Since(start).Milliseconds(),
	}
	if h.metrics != nil {
		meta["metrics"] = h.metrics.Snapshot()
	}
	response.JSON(c, http.StatusOK, gin.H{
		"summary": summary,
		"lists": dashboardLists{
			Webinars:       viewOf(board.Webinars),
			Events:         viewOf(board.Events),
			Testimonials:   viewOf(board.Testimonials),
			CommunityLinks: viewOf(board.CommunityLinks),
			Gallery:        viewOf(board.Gallery),
			Messages:       viewOf(board.Messages),
			Reviews:        viewOf(board.Reviews),
		},
	}, meta)
}
