package repository

import (
	"context"
	"fmt"

	"github.com/noah-isme/mentor-site-api/internal/models"
)

// AuditRepository appends audit records to the document store.
type AuditRepository struct {
	store DocumentStore
}

// NewAuditRepository constructs the repository.
func NewAuditRepository(store DocumentStore) *AuditRepository {
	return &AuditRepository{store: store}
}

// CreateAuditLog stores entry and fills its id and timestamp.
func (r *AuditRepository) CreateAuditLog(ctx context.Context, entry *models.AuditLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = models.Now()
	}
	fields, err := models.ToFields(entry)
	if err != nil {
		return err
	}
	id, err := r.store.Create(ctx, models.CollectionAuditLogs, fields)
	if err != nil {
		return fmt.Errorf("create audit log: %w", err)
	}
	entry.ID = id
	return nil
}

// ListRecent returns up to limit entries, newest first.
func (r *AuditRepository) ListRecent(ctx context.Context, limit int) ([]models.AuditLog, error) {
	docs, err := r.store.Query(ctx, models.DocumentQuery{
		Collection: models.CollectionAuditLogs,
		OrderBy:    &models.OrderBy{Field: "createdAt", Direction: models.SortDesc},
	})
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	if limit > 0 && len(docs) > limit {
		docs = docs[:limit]
	}
	logs := make([]models.AuditLog, 0, len(docs))
	for _, doc := range docs {
		var entry models.AuditLog
		if err := doc.Decode(&entry); err != nil {
			return nil, err
		}
		logs = append(logs, entry)
	}
	return logs, nil
}
