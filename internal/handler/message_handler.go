package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/mentor-site-api/internal/dashboard"
	"github.com/noah-isme/mentor-site-api/internal/dto"
	"github.com/noah-isme/mentor-site-api/internal/middleware"
	"github.com/noah-isme/mentor-site-api/internal/models"
	"github.com/noah-isme/mentor-site-api/internal/service"
	appErrors "github.com/noah-isme/mentor-site-api/pkg/errors"
	"github.com/noah-isme/mentor-site-api/pkg/response"
)

type inboxService interface {
	List(ctx context.Context, actor *models.JWTClaims) ([]models.ContactMessage, error)
	Open(ctx context.Context, actor *models.JWTClaims, id string) (*models.ContactMessage, bool, error)
	MarkReplied(ctx context.Context, actor *models.JWTClaims, id string) (*models.ContactMessage, error)
	Delete(ctx context.Context, actor *models.JWTClaims, id string) error
	Export(ctx context.Context, actor *models.JWTClaims, format string) (*service.ExportFile, error)
}

// MessageHandler serves the contact inbox.
type MessageHandler struct {
	service inboxService
	logger  *zap.Logger
}

// NewMessageHandler constructs the handler.
func NewMessageHandler(svc inboxService, logger *zap.Logger) *MessageHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MessageHandler{service: svc, logger: logger}
}

func (h *MessageHandler) inbox(c *gin.Context) *dashboard.Inbox {
	actor := claimsFromContext(c)
	list := dashboard.NewListController("contact_messages", func(ctx context.Context) ([]models.ContactMessage, error) {
		return h.service.List(ctx, actor)
	}, h.logger)
	return dashboard.NewInbox(list, dashboard.InboxActions{
		Open: func(ctx context.Context, id string) (*models.ContactMessage, bool, error) {
			return h.service.Open(ctx, actor, id)
		},
		MarkReplied: func(ctx context.Context, id string) (*models.ContactMessage, error) {
			return h.service.MarkReplied(ctx, actor, id)
		},
		Delete: func(ctx context.Context, id string) error {
			return h.service.Delete(ctx, actor, id)
		},
	}, confirmFromRequest(c), h.logger)
}

// List godoc
// @Summary List contact messages
// @Tags Messages
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /admin/messages [get]
func (h *MessageHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	unread := 0
	for _, m := range items {
		if m.Status == models.MessageStatusNew {
			unread++
		}
	}
	response.JSON(c, http.StatusOK, items, map[string]interface{}{"total": len(items), "unread": unread})
}

// Get godoc
// @Summary Open a contact message
// @Description Opening a new message marks it read
// @Tags Messages
// @Produce json
// @Security BearerAuth
// @Param id path string true "Message ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/messages/{id} [get]
func (h *MessageHandler) Get(c *gin.Context) {
	inbox := h.inbox(c)
	msg, markedRead, err := inbox.Open(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if !markedRead {
		middleware.SkipAudit(c)
	}
	response.JSON(c, http.StatusOK, msg, nil)
}

// MarkReplied godoc
// @Summary Mark a message as replied
// @Tags Messages
// @Produce json
// @Security BearerAuth
// @Param id path string true "Message ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/messages/{id}/replied [post]
func (h *MessageHandler) MarkReplied(c *gin.Context) {
	inbox := h.inbox(c)
	msg, err := inbox.MarkReplied(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, msg, map[string]interface{}{"list": viewOf(inbox.List())})
}

// Delete godoc
// @Summary Delete a contact message
// @Tags Messages
// @Produce json
// @Security BearerAuth
// @Param id path string true "Message ID"
// @Param confirm query bool false "Confirm the deletion"
// @Success 200 {object} response.Envelope
// @Router /admin/messages/{id} [delete]
func (h *MessageHandler) Delete(c *gin.Context) {
	inbox := h.inbox(c)
	deleted, err := inbox.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if !deleted {
		declined(c)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"deleted": true}, map[string]interface{}{"list": viewOf(inbox.List())})
}

// Export godoc
// @Summary Export the inbox
// @Tags Messages
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /admin/messages/export [get]
func (h *MessageHandler) Export(c *gin.Context) {
	var query dto.ExportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export query"))
		return
	}
	file, err := h.service.Export(c.Request.Context(), claimsFromContext(c), query.Format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
