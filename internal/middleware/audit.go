package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/mentor-site-api/internal/models"
)

const auditSkipKey = "audit_skip"

// AuditRecorder persists audit entries.
type AuditRecorder interface {
	CreateAuditLog(ctx context.Context, entry *models.AuditLog) error
}

// SkipAudit marks the current request as a no-op that must not be audited,
// such as a delete the operator declined.
func SkipAudit(c *gin.Context) {
	c.Set(auditSkipKey, true)
}

// Audit records an audit entry after each successful request.
func Audit(recorder AuditRecorder, logger *zap.Logger, action, resource string) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		start := time.Now().UTC()
		c.Next()

		if recorder == nil || c.Writer.Status() >= 400 || c.GetBool(auditSkipKey) {
			return
		}

		resourceID := c.Param("id")
		if resourceID == "" {
			resourceID = strings.TrimPrefix(c.Param("key"), "/")
		}
		entry := &models.AuditLog{
			Action:     action,
			Resource:   resource,
			ResourceID: resourceID,
			Details: models.Fields{
				"path":      c.FullPath(),
				"method":    c.Request.Method,
				"status":    c.Writer.Status(),
				"latencyMs": time.Since(start).Milliseconds(),
			},
			IPAddress: c.ClientIP(),
			UserAgent: c.GetHeader("User-Agent"),
		}
		if claims := CurrentUser(c); claims != nil {
			entry.UserID = claims.UserID
		}
		if err := recorder.CreateAuditLog(context.WithoutCancel(c.Request.Context()), entry); err != nil {
			logger.Warn("failed to record audit log", zap.String("action", action), zap.String("resource", resource), zap.Error(err))
		}
	}
}
