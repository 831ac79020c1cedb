package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/mentor-site-api/internal/models"
	appErrors "github.com/noah-isme/mentor-site-api/pkg/errors"
	"github.com/noah-isme/mentor-site-api/pkg/response"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 200
)

type auditLog interface {
	ListRecent(ctx context.Context, limit int) ([]models.AuditLog, error)
}

// AuditHandler exposes the admin activity trail.
type AuditHandler struct {
	logs auditLog
}

// NewAuditHandler creates a new handler.
func NewAuditHandler(logs auditLog) *AuditHandler {
	return &AuditHandler{logs: logs}
}

// List godoc
// @Summary Recent admin activity
// @Tags Audit
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Maximum entries (1-200)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/audit [get]
func (h *AuditHandler) List(c *gin.Context) {
	limit := defaultAuditLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxAuditLimit {
			response.Error(c, appErrors.WithDetails(appErrors.Clone(appErrors.ErrValidation, "invalid limit"),
				map[string]string{"limit": "must be between 1 and 200"}))
			return
		}
		limit = n
	}

	logs, err := h.logs.ListRecent(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, logs, map[string]interface{}{"total": len(logs)})
}
