package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/mentor-site-api/internal/dto"
	"github.com/noah-isme/mentor-site-api/internal/models"
	"github.com/noah-isme/mentor-site-api/pkg/response"
)

// publicLister serves one public list; the bool reports a cache hit.
type publicLister[T any] interface {
	ListPublic(ctx context.Context) ([]T, bool, error)
}

type publicGallery interface {
	ListGrouped(ctx context.Context) ([]models.GalleryGroup, bool, error)
}

type publicReviews interface {
	ListPublic(ctx context.Context, programType models.ProgramType) ([]models.Review, bool, error)
	Submit(ctx context.Context, req dto.ReviewSubmission) (*models.Review, error)
}

type contactForm interface {
	Submit(ctx context.Context, req dto.ContactSubmission) (*models.ContactMessage, error)
}

// PublicServices are the read paths and submissions the public site uses.
type PublicServices struct {
	Webinars       publicLister[models.Webinar]
	Events         publicLister[models.Event]
	Testimonials   publicLister[models.Testimonial]
	CommunityLinks publicLister[models.CommunityLink]
	Gallery        publicGallery
	Reviews        publicReviews
	Contact        contactForm
}

// PublicHandler serves the unauthenticated site endpoints.
type PublicHandler struct {
	svc PublicServices
}

// NewPublicHandler constructs the handler.
func NewPublicHandler(svc PublicServices) *PublicHandler {
	return &PublicHandler{svc: svc}
}

func respondPublic[T any](c *gin.Context, items []T, hit bool, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	meta := publicMeta(c, hit)
	meta["total"] = len(items)
	response.Public(c, items, meta)
}

// Webinars godoc
// @Summary List webinars
// @Tags Public
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /webinars [get]
func (h *PublicHandler) Webinars(c *gin.Context) {
	items, hit, err := h.svc.Webinars.ListPublic(c.Request.Context())
	respondPublic(c, items, hit, err)
}

// Events godoc
// @Summary List events
// @Tags Public
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /events [get]
func (h *PublicHandler) Events(c *gin.Context) {
	items, hit, err := h.svc.Events.ListPublic(c.Request.Context())
	respondPublic(c, items, hit, err)
}

// Testimonials godoc
// @Summary List testimonials
// @Tags Public
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /testimonials [get]
func (h *PublicHandler) Testimonials(c *gin.Context) {
	items, hit, err := h.svc.Testimonials.ListPublic(c.Request.Context())
	respondPublic(c, items, hit, err)
}

// CommunityLinks godoc
// @Summary List community links
// @Tags Public
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /community-links [get]
func (h *PublicHandler) CommunityLinks(c *gin.Context) {
	items, hit, err := h.svc.CommunityLinks.ListPublic(c.Request.Context())
	respondPublic(c, items, hit, err)
}

// Gallery godoc
// @Summary List gallery images grouped by section
// @Tags Public
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /gallery [get]
func (h *PublicHandler) Gallery(c *gin.Context) {
	groups, hit, err := h.svc.Gallery.ListGrouped(c.Request.Context())
	respondPublic(c, groups, hit, err)
}

// Reviews godoc
// @Summary List approved reviews
// @Tags Public
// @Produce json
// @Param programType query string false "Program type filter"
// @Success 200 {object} response.Envelope
// @Router /reviews [get]
func (h *PublicHandler) Reviews(c *gin.Context) {
	items, hit, err := h.svc.Reviews.ListPublic(c.Request.Context(), models.ProgramType(c.Query("programType")))
	respondPublic(c, items, hit, err)
}

// SubmitReview godoc
// @Summary Submit a review
// @Description Stores the review as pending until an admin approves it
// @Tags Public
// @Accept json
// @Produce json
// @Param payload body dto.ReviewSubmission true "Review"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /reviews [post]
func (h *PublicHandler) SubmitReview(c *gin.Context) {
	var req dto.ReviewSubmission
	if !bindJSON(c, &req, "invalid review payload") {
		return
	}
	review, err := h.svc.Reviews.Submit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"id": review.ID, "status": review.Status})
}

// SubmitContact godoc
// @Summary Send a contact message
// @Tags Public
// @Accept json
// @Produce json
// @Param payload body dto.ContactSubmission true "Message"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /contact [post]
func (h *PublicHandler) SubmitContact(c *gin.Context) {
	var req dto.ContactSubmission
	if !bindJSON(c, &req, "invalid contact payload") {
		return
	}
	msg, err := h.svc.Contact.Submit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, gin.H{"id": msg.ID, "status": msg.Status})
}
