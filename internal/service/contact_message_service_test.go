package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/mentor-site-api/internal/dto"
	"github.com/noah-isme/mentor-site-api/internal/models"
	appErrors "github.com/noah-isme/mentor-site-api/pkg/errors"
)

func submitMessage(t *testing.T, svc *ContactMessageService, name string) *models.ContactMessage {
	t.Helper()
	msg, err := svc.Submit(context.Background(), dto.ContactSubmission{
		Name: name, Email: "visitor@example.com", Subject: "Mentoring", Message: "Hello there",
	})
	require.NoError(t, err)
	return msg
}

func TestContactSubmitStartsNew(t *testing.T) {
	dispatcher := &recordingDispatcher{}
	svc := NewContactMessageService(ContentDeps{Store: newFaultyStore()},
		NewNotificationService(dispatcher, "Owner", "owner@example.com", nil, nil))

	msg := submitMessage(t, svc, "Sari")
	assert.Equal(t, models.MessageStatusNew, msg.Status)
	require.Len(t, dispatcher.messages, 1)
	assert.Contains(t, dispatcher.messages[0].Subject, "Mentoring")

	_, err := svc.Submit(context.Background(), dto.ContactSubmission{Name: " ", Email: "visitor@example.com", Message: "hi"})
	appErr := requireAppCode(t, err, appErrors.ErrValidation.Code)
	assert.Contains(t, appErr.Details, "name")
}

func TestContactStatusOnlyMovesForward(t *testing.T) {
	ctx := context.Background()
	svc := NewContactMessageService(ContentDeps{Store: newFaultyStore()}, nil)
	msg := submitMessage(t, svc, "Sari")

	opened, markedRead, err := svc.Open(ctx, adminActor, msg.ID)
	require.NoError(t, err)
	assert.True(t, markedRead)
	assert.Equal(t, models.MessageStatusRead, opened.Status)
	require.NotNil(t, opened.UpdatedAt)

	replied, err := svc.MarkReplied(ctx, adminActor, msg.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MessageStatusReplied, replied.Status)

	reopened, markedRead, err := svc.Open(ctx, adminActor, msg.ID)
	require.NoError(t, err)
	assert.False(t, markedRead)
	assert.Equal(t, models.MessageStatusReplied, reopened.Status)

	_, err = svc.MarkReplied(ctx, adminActor, msg.ID)
	requireAppCode(t, err, appErrors.ErrInvalidTransition.Code)

	direct := submitMessage(t, svc, "Joko")
	replied, err = svc.MarkReplied(ctx, adminActor, direct.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MessageStatusReplied, replied.Status)
}

func TestContactOpenKeepsMessageWhenAutoReadFails(t *testing.T) {
	store := newFaultyStore()
	svc := NewContactMessageService(ContentDeps{Store: store}, nil)
	msg := submitMessage(t, svc, "Sari")

	store.updateWhereErr = errors.New("store offline")
	opened, markedRead, err := svc.Open(context.Background(), adminActor, msg.ID)
	require.NoError(t, err)
	assert.False(t, markedRead)
	assert.Equal(t, models.MessageStatusNew, opened.Status)
	assert.Nil(t, opened.UpdatedAt)
}

func TestContactInboxRequiresMessageCapability(t *testing.T) {
	ctx := context.Background()
	svc := NewContactMessageService(ContentDeps{Store: newFaultyStore()}, nil)
	msg := submitMessage(t, svc, "Sari")

	_, err := svc.List(ctx, editorActor)
	requireAppCode(t, err, appErrors.ErrForbidden.Code)
	_, _, err = svc.Open(ctx, editorActor, msg.ID)
	requireAppCode(t, err, appErrors.ErrForbidden.Code)
	_, err = svc.Export(ctx, editorActor, "csv")
	requireAppCode(t, err, appErrors.ErrForbidden.Code)

	require.NoError(t, svc.Delete(ctx, adminActor, msg.ID))
	list, err := svc.List(ctx, adminActor)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestContactExport(t *testing.T) {
	ctx := context.Background()
	svc := NewContactMessageService(ContentDeps{Store: newFaultyStore()}, nil)
	submitMessage(t, svc, "Sari")
	submitMessage(t, svc, "Joko")

	file, err := svc.Export(ctx, adminActor, "")
	require.NoError(t, err)
	assert.Regexp(t, `^contact-messages-\d{8}\.csv$`, file.Filename)
	assert.Contains(t, file.ContentType, "text/csv")

	records, err := csv.NewReader(bytes.NewReader(file.Data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "Received", records[0][0])

	pdf, err := svc.Export(ctx, adminActor, "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", pdf.ContentType)
	assert.True(t, bytes.HasPrefix(pdf.Data, []byte("%PDF")))

	_, err = svc.Export(ctx, adminActor, "xlsx")
	requireAppCode(t, err, appErrors.ErrValidation.Code)
}
