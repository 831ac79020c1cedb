package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/mentor-site-api/internal/dto"
	"github.com/noah-isme/mentor-site-api/internal/models"
	"github.com/noah-isme/mentor-site-api/internal/repository"
	appErrors "github.com/noah-isme/mentor-site-api/pkg/errors"
	"github.com/noah-isme/mentor-site-api/pkg/export"
)

// Exporter renders a dataset to a downloadable file.
type Exporter interface {
	Render(data export.Dataset) ([]byte, error)
	ContentType() string
	Extension() string
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ContactMessageService handles the contact inbox. Status only moves forward
// through new, read and replied.
type ContactMessageService struct {
	store     repository.DocumentStore
	validator *validator.Validate
	notifier  *NotificationService
	exporters map[string]Exporter
	logger    *zap.Logger
}

// NewContactMessageService constructs the service with CSV and PDF export.
func NewContactMessageService(deps ContentDeps, notifier *NotificationService) *ContactMessageService {
	if deps.Validator == nil {
		deps.Validator = NewValidator()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &ContactMessageService{
		store:     deps.Store,
		validator: deps.Validator,
		notifier:  notifier,
		exporters: map[string]Exporter{
			"csv": export.NewCSVExporter(),
			"pdf": export.NewPDFExporter(),
		},
		logger: deps.Logger,
	}
}

// Submit stores a visitor message with status new.
func (s *ContactMessageService) Submit(ctx context.Context, req dto.ContactSubmission) (*models.ContactMessage, error) {
	trimStrings(&req)
	if err := validate(s.validator, &req, "invalid contact message"); err != nil {
		return nil, err
	}
	msg := models.ContactMessage{
		Name:      req.Name,
		Email:     req.Email,
		Subject:   req.Subject,
		Message:   req.Message,
		Status:    models.MessageStatusNew,
		CreatedAt: models.Now(),
	}
	fields, err := encodeFields(msg)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode contact message")
	}
	id, err := s.store.Create(ctx, models.CollectionContactMessages, fields)
	if err != nil {
		s.logger.Warn("contact submission failed", zap.Error(err))
		return nil, storeError(err, "submit", "contact message")
	}
	msg.ID = id
	s.notifier.ContactReceived(ctx, &msg)
	return &msg, nil
}

// List returns the inbox, newest first.
func (s *ContactMessageService) List(ctx context.Context, actor *models.JWTClaims) ([]models.ContactMessage, error) {
	if err := authorize(actor, models.CapMessagesManage); err != nil {
		return nil, err
	}
	return s.list(ctx)
}

func (s *ContactMessageService) list(ctx context.Context) ([]models.ContactMessage, error) {
	docs, err := s.store.Query(ctx, models.DocumentQuery{
		Collection: models.CollectionContactMessages,
		OrderBy:    &models.OrderBy{Field: "createdAt", Direction: models.SortDesc},
	})
	if err != nil {
		s.logger.Warn("list contact messages failed", zap.Error(err))
		return nil, storeError(err, "list", "contact messages")
	}
	msgs, err := decodeDocuments[models.ContactMessage](docs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode contact messages")
	}
	return msgs, nil
}

// Open returns a message for the detail view. Opening a new message marks it
// read and reports markedRead; if that write fails the message is still
// returned, unchanged.
func (s *ContactMessageService) Open(ctx context.Context, actor *models.JWTClaims, id string) (msg *models.ContactMessage, markedRead bool, err error) {
	if err := authorize(actor, models.CapMessagesManage); err != nil {
		return nil, false, err
	}
	msg, err = s.get(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if msg.Status != models.MessageStatusNew {
		return msg, false, nil
	}

	now := models.Now()
	err = s.store.UpdateWhere(ctx, models.CollectionContactMessages, id,
		[]models.Filter{{Field: "status", Value: models.MessageStatusNew}},
		models.Fields{"status": string(models.MessageStatusRead), "updatedAt": now.String()},
	)
	if err != nil {
		s.logger.Warn("auto mark read failed", zap.String("id", id), zap.Error(err))
		return msg, false, nil
	}
	msg.Status = models.MessageStatusRead
	msg.UpdatedAt = &now
	return msg, true, nil
}

// MarkReplied records that the admin answered the message.
func (s *ContactMessageService) MarkReplied(ctx context.Context, actor *models.JWTClaims, id string) (*models.ContactMessage, error) {
	if err := authorize(actor, models.CapMessagesManage); err != nil {
		return nil, err
	}
	msg, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !msg.Status.CanTransition(models.MessageStatusReplied) {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "message is already "+string(msg.Status))
	}

	now := models.Now()
	err = s.store.UpdateWhere(ctx, models.CollectionContactMessages, id,
		[]models.Filter{{Field: "status", Value: msg.Status}},
		models.Fields{"status": string(models.MessageStatusReplied), "updatedAt": now.String()},
	)
	if err != nil {
		if errors.Is(err, repository.ErrDocumentNotFound) {
			current, getErr := s.get(ctx, id)
			if getErr != nil {
				return nil, getErr
			}
			if current.Status == models.MessageStatusReplied {
				return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "message is already replied")
			}
			return nil, appErrors.Clone(appErrors.ErrConflict, "message changed concurrently")
		}
		s.logger.Warn("mark replied failed", zap.String("id", id), zap.Error(err))
		return nil, storeError(err, "update", "contact message")
	}
	msg.Status = models.MessageStatusReplied
	msg.UpdatedAt = &now
	return msg, nil
}

// Delete removes a message regardless of its status.
func (s *ContactMessageService) Delete(ctx context.Context, actor *models.JWTClaims, id string) error {
	if err := authorize(actor, models.CapMessagesManage); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, models.CollectionContactMessages, id); err != nil {
		s.logger.Warn("delete contact message failed", zap.String("id", id), zap.Error(err))
		return storeError(err, "delete", "contact message")
	}
	return nil
}

// Export renders the whole inbox as csv or pdf.
func (s *ContactMessageService) Export(ctx context.Context, actor *models.JWTClaims, format string) (*ExportFile, error) {
	if err := authorize(actor, models.CapMessagesExport); err != nil {
		return nil, err
	}
	if format == "" {
		format = "csv"
	}
	exporter, ok := s.exporters[format]
	if !ok {
		return nil, appErrors.WithDetails(appErrors.Clone(appErrors.ErrValidation, "unsupported export format"),
			map[string]string{"format": "must be one of csv pdf"})
	}
	msgs, err := s.list(ctx)
	if err != nil {
		return nil, err
	}

	data := export.Dataset{
		Title: "Contact messages",
		Columns: []export.Column{
			{Key: "createdAt", Label: "Received", Width: 1.3},
			{Key: "status", Label: "Status", Width: 0.7},
			{Key: "name", Label: "Name", Width: 1.2},
			{Key: "email", Label: "Email", Width: 1.6},
			{Key: "subject", Label: "Subject", Width: 1.5},
			{Key: "message", Label: "Message", Width: 3.7},
		},
		Rows: make([]map[string]string, 0, len(msgs)),
	}
	for _, m := range msgs {
		data.Rows = append(data.Rows, map[string]string{
			"createdAt": m.CreatedAt.Format("2006-01-02 15:04"),
			"status":    string(m.Status),
			"name":      m.Name,
			"email":     m.Email,
			"subject":   m.Subject,
			"message":   m.Message,
		})
	}
	body, err := exporter.Render(data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	return &ExportFile{
		Filename:    fmt.Sprintf("contact-messages-%s.%s", time.Now().UTC().Format("20060102"), exporter.Extension()),
		ContentType: exporter.ContentType(),
		Data:        body,
	}, nil
}

func (s *ContactMessageService) get(ctx context.Context, id string) (*models.ContactMessage, error) {
	doc, err := s.store.Get(ctx, models.CollectionContactMessages, id)
	if err != nil {
		return nil, storeError(err, "get", "contact message")
	}
	var msg models.ContactMessage
	if err := decodeDocument(*doc, &msg); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode contact message")
	}
	return &msg, nil
}
