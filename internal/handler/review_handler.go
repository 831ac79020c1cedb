package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/mentor-site-api/internal/dashboard"
	"github.com/noah-isme/mentor-site-api/internal/dto"
	"github.com/noah-isme/mentor-site-api/internal/models"
	"github.com/noah-isme/mentor-site-api/pkg/response"
)

type reviewModeration interface {
	List(ctx context.Context, actor *models.JWTClaims, query dto.ReviewQuery) ([]models.Review, error)
	Approve(ctx context.Context, actor *models.JWTClaims, id string) (*models.Review, error)
	Reject(ctx context.Context, actor *models.JWTClaims, id string) (*models.Review, error)
	Delete(ctx context.Context, actor *models.JWTClaims, id string) error
}

// ReviewHandler serves the review moderation queue.
type ReviewHandler struct {
	service reviewModeration
	logger  *zap.Logger
}

// NewReviewHandler constructs the handler.
func NewReviewHandler(svc reviewModeration, logger *zap.Logger) *ReviewHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReviewHandler{service: svc, logger: logger}
}

func (h *ReviewHandler) moderator(c *gin.Context, query dto.ReviewQuery) *dashboard.ReviewModerator {
	actor := claimsFromContext(c)
	list := dashboard.NewListController("reviews", func(ctx context.Context) ([]models.Review, error) {
		return h.service.List(ctx, actor, query)
	}, h.logger)
	return dashboard.NewReviewModerator(list, dashboard.ReviewActions{
		Approve: func(ctx context.Context, id string) (*models.Review, error) { return h.service.Approve(ctx, actor, id) },
		Reject:  func(ctx context.Context, id string) (*models.Review, error) { return h.service.Reject(ctx, actor, id) },
		Delete:  func(ctx context.Context, id string) error { return h.service.Delete(ctx, actor, id) },
	}, confirmFromRequest(c), h.logger)
}

// List godoc
// @Summary List reviews for moderation
// @Tags Reviews
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, approved or rejected"
// @Param programType query string false "Program type"
// @Success 200 {object} response.Envelope
// @Router /admin/reviews [get]
func (h *ReviewHandler) List(c *gin.Context) {
	query := dto.ReviewQuery{
		Status:      models.ReviewStatus(c.Query("status")),
		ProgramType: models.ProgramType(c.Query("programType")),
	}
	items, err := h.service.List(c.Request.Context(), claimsFromContext(c), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, map[string]interface{}{"total": len(items)})
}

// Approve godoc
// @Summary Approve a pending review
// @Tags Reviews
// @Produce json
// @Security BearerAuth
// @Param id path string true "Review ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/reviews/{id}/approve [post]
func (h *ReviewHandler) Approve(c *gin.Context) {
	mod := h.moderator(c, dto.ReviewQuery{Status: models.ReviewStatusPending})
	h.respond(c, mod, func(ctx context.Context, id string) (*models.Review, error) { return mod.Approve(ctx, id) })
}

// Reject godoc
// @Summary Reject a pending review
// @Tags Reviews
// @Produce json
// @Security BearerAuth
// @Param id path string true "Review ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/reviews/{id}/reject [post]
func (h *ReviewHandler) Reject(c *gin.Context) {
	mod := h.moderator(c, dto.ReviewQuery{Status: models.ReviewStatusPending})
	h.respond(c, mod, func(ctx context.Context, id string) (*models.Review, error) { return mod.Reject(ctx, id) })
}

func (h *ReviewHandler) respond(c *gin.Context, mod *dashboard.ReviewModerator, decide func(context.Context, string) (*models.Review, error)) {
	review, err := decide(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, review, map[string]interface{}{"pending": viewOf(mod.List())})
}

// Delete godoc
// @Summary Delete a review
// @Tags Reviews
// @Produce json
// @Security BearerAuth
// @Param id path string true "Review ID"
// @Param confirm query bool false "Confirm the deletion"
// @Success 200 {object} response.Envelope
// @Router /admin/reviews/{id} [delete]
func (h *ReviewHandler) Delete(c *gin.Context) {
	mod := h.moderator(c, dto.ReviewQuery{})
	deleted, err := mod.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if !deleted {
		declined(c)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"deleted": true}, map[string]interface{}{"list": viewOf(mod.List())})
}
