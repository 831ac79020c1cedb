package models

// Audit actions recorded for admin activity.
const (
	AuditActionLogin      = "LOGIN"
	AuditActionCreate     = "CREATE"
	AuditActionUpdate     = "UPDATE"
	AuditActionDelete     = "DELETE"
	AuditActionBulkImport = "BULK_IMPORT"
	AuditActionApprove    = "APPROVE"
	AuditActionReject     = "REJECT"
	AuditActionMarkRead   = "MARK_READ"
	AuditActionMarkReply  = "MARK_REPLIED"
	AuditActionUpload     = "UPLOAD"
	AuditActionExport     = "EXPORT"
)

// AuditLog represents an audit trail record.
type AuditLog struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId,omitempty"`
	Action     string    `json:"action"`
	Resource   string    `json:"resource"`
	ResourceID string    `json:"resourceId,omitempty"`
	Details    Fields    `json:"details,omitempty"`
	IPAddress  string    `json:"ipAddress,omitempty"`
	UserAgent  string    `json:"userAgent,omitempty"`
	CreatedAt  Timestamp `json:"createdAt"`
}
