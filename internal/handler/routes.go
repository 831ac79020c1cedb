package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/mentor-site-api/internal/dto"
	"github.com/noah-isme/mentor-site-api/internal/middleware"
	"github.com/noah-isme/mentor-site-api/internal/models"
)

// Handlers groups every HTTP handler mounted under the API prefix.
type Handlers struct {
	Auth           *AuthHandler
	Public         *PublicHandler
	Webinars       *ContentHandler[models.Webinar, dto.WebinarRequest, dto.WebinarUpdate]
	Events         *ContentHandler[models.Event, dto.EventRequest, dto.EventUpdate]
	Testimonials   *ContentHandler[models.Testimonial, dto.TestimonialRequest, dto.TestimonialUpdate]
	CommunityLinks *ContentHandler[models.CommunityLink, dto.CommunityLinkRequest, dto.CommunityLinkUpdate]
	Gallery        *GalleryHandler
	Media          *MediaHandler
	Reviews        *ReviewHandler
	Messages       *MessageHandler
	Dashboard      *DashboardHandler
	Audit          *AuditHandler
}

// RouteDeps are the cross-cutting collaborators of the admin routes.
type RouteDeps struct {
	Tokens middleware.TokenValidator
	Audit  middleware.AuditRecorder
	Logger *zap.Logger
}

// RegisterRoutes mounts the public and admin API on api.
func RegisterRoutes(api *gin.RouterGroup, h Handlers, deps RouteDeps) {
	audit := func(action, resource string) gin.HandlerFunc {
		return middleware.Audit(deps.Audit, deps.Logger, action, resource)
	}

	api.POST("/auth/login", h.Auth.Login)
	api.GET("/auth/me", middleware.JWT(deps.Tokens), h.Auth.Me)

	api.GET("/webinars", h.Public.Webinars)
	api.GET("/events", h.Public.Events)
	api.GET("/testimonials", h.Public.Testimonials)
	api.GET("/community-links", h.Public.CommunityLinks)
	api.GET("/gallery", h.Public.Gallery)
	api.GET("/reviews", h.Public.Reviews)
	api.POST("/reviews", h.Public.SubmitReview)
	api.POST("/contact", h.Public.SubmitContact)

	admin := api.Group("/admin", middleware.JWT(deps.Tokens))
	admin.GET("/dashboard", h.Dashboard.Admin)
	admin.GET("/audit", middleware.RequireRoles(models.RoleAdmin), h.Audit.List)

	content := admin.Group("")
	content.Use(middleware.RequireCapability(models.CapContentWrite))
	mountContent(content, "/webinars", "webinar", h.Webinars, audit)
	mountContent(content, "/events", "event", h.Events, audit)
	mountContent(content, "/testimonials", "testimonial", h.Testimonials, audit)
	mountContent(content, "/community-links", "community_link", h.CommunityLinks, audit)

	gallery := admin.Group("/gallery", middleware.RequireCapability(models.CapGalleryWrite))
	gallery.GET("", h.Gallery.List)
	gallery.GET("/:id", h.Gallery.Get)
	gallery.POST("", audit(models.AuditActionCreate, "gallery_image"), h.Gallery.Create)
	gallery.POST("/bulk", audit(models.AuditActionBulkImport, "gallery_image"), h.Gallery.BulkImport)
	gallery.PUT("/:id", audit(models.AuditActionUpdate, "gallery_image"), h.Gallery.Update)
	gallery.DELETE("/:id", audit(models.AuditActionDelete, "gallery_image"), h.Gallery.Delete)

	media := admin.Group("/media", middleware.RequireCapability(models.CapMediaUpload))
	media.POST("", audit(models.AuditActionUpload, "media"), h.Media.Upload)
	media.DELETE("/*key", audit(models.AuditActionDelete, "media"), h.Media.Delete)

	reviews := admin.Group("/reviews", middleware.RequireCapability(models.CapReviewsModerate))
	reviews.GET("", h.Reviews.List)
	reviews.POST("/:id/approve", audit(models.AuditActionApprove, "review"), h.Reviews.Approve)
	reviews.POST("/:id/reject", audit(models.AuditActionReject, "review"), h.Reviews.Reject)
	reviews.DELETE("/:id", audit(models.AuditActionDelete, "review"), h.Reviews.Delete)

	messages := admin.Group("/messages")
	messages.GET("/export", middleware.RequireCapability(models.CapMessagesExport), audit(models.AuditActionExport, "contact_message"), h.Messages.Export)
	messages.Use(middleware.RequireCapability(models.CapMessagesManage))
	messages.GET("", h.Messages.List)
	messages.GET("/:id", audit(models.AuditActionMarkRead, "contact_message"), h.Messages.Get)
	messages.POST("/:id/replied", audit(models.AuditActionMarkReply, "contact_message"), h.Messages.MarkReplied)
	messages.DELETE("/:id", audit(models.AuditActionDelete, "contact_message"), h.Messages.Delete)
}

type crudHandler interface {
	List(c *gin.Context)
	Get(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

func mountContent(group *gin.RouterGroup, path, resource string, h crudHandler, audit func(action, resource string) gin.HandlerFunc) {
	g := group.Group(path)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.POST("", audit(models.AuditActionCreate, resource), h.Create)
	g.PUT("/:id", audit(models.AuditActionUpdate, resource), h.Update)
	g.PATCH("/:id", audit(models.AuditActionUpdate, resource), h.Update)
	g.DELETE("/:id", audit(models.AuditActionDelete, resource), h.Delete)
}
