package dashboard

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/mentor-site-api/internal/models"
)

// ReviewActions are the moderation writes on reviews.
type ReviewActions struct {
	Approve func(ctx context.Context, id string) (*models.Review, error)
	Reject  func(ctx context.Context, id string) (*models.Review, error)
	Delete  func(ctx context.Context, id string) error
}

// ReviewModerator drives the review moderation queue.
type ReviewModerator struct {
	list    *ListController[models.Review]
	actions ReviewActions
	confirm Confirmer
	logger  *zap.Logger
	op      operation
}

// NewReviewModerator constructs the moderator over list.
func NewReviewModerator(list *ListController[models.Review], actions ReviewActions, confirm Confirmer, logger *zap.Logger) *ReviewModerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReviewModerator{list: list, actions: actions, confirm: confirm, logger: logger}
}

// List exposes the moderation list.
func (m *ReviewModerator) List() *ListController[models.Review] { return m.list }

// State reports the latest moderation attempt.
func (m *ReviewModerator) State() RequestState { return m.op.State() }

// Approve publishes a pending review.
func (m *ReviewModerator) Approve(ctx context.Context, id string) (*models.Review, error) {
	return m.decide(ctx, "approve", id, m.actions.Approve)
}

// Reject hides a pending review.
func (m *ReviewModerator) Reject(ctx context.Context, id string) (*models.Review, error) {
	return m.decide(ctx, "reject", id, m.actions.Reject)
}

func (m *ReviewModerator) decide(ctx context.Context, action, id string, fn func(context.Context, string) (*models.Review, error)) (*models.Review, error) {
	if err := m.op.begin(); err != nil {
		return nil, err
	}
	review, err := fn(ctx, id)
	m.op.finish(err)
	if err != nil {
		m.logger.Warn("review moderation failed", zap.String("action", action), zap.String("id", id), zap.Error(err))
		return nil, err
	}
	_ = m.list.Refresh(ctx)
	return review, nil
}

// Delete removes a review once confirmed.
func (m *ReviewModerator) Delete(ctx context.Context, id string) (bool, error) {
	if !confirmed(ctx, m.confirm, "Delete this review?") {
		return false, nil
	}
	if err := m.op.begin(); err != nil {
		return false, err
	}
	err := m.actions.Delete(ctx, id)
	m.op.finish(err)
	if err != nil {
		m.logger.Warn("review delete failed", zap.String("id", id), zap.Error(err))
		return false, err
	}
	_ = m.list.Refresh(ctx)
	return true, nil
}

// InboxActions are the writes on contact messages.
type InboxActions struct {
	Open        func(ctx context.Context, id string) (msg *models.ContactMessage, markedRead bool, err error)
	MarkReplied func(ctx context.Context, id string) (*models.ContactMessage, error)
	Delete      func(ctx context.Context, id string) error
}

// Inbox drives the contact message list and detail view.
type Inbox struct {
	list    *ListController[models.ContactMessage]
	actions InboxActions
	confirm Confirmer
	logger  *zap.Logger
	op      operation

	mu       sync.Mutex
	selected *models.ContactMessage
}

// NewInbox constructs the inbox over list.
func NewInbox(list *ListController[models.ContactMessage], actions InboxActions, confirm Confirmer, logger *zap.Logger) *Inbox {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Inbox{list: list, actions: actions, confirm: confirm, logger: logger}
}

// List exposes the inbox list.
func (i *Inbox) List() *ListController[models.ContactMessage] { return i.list }

// State reports the latest inbox action.
func (i *Inbox) State() RequestState { return i.op.State() }

// Selected is the message shown in the detail view.
func (i *Inbox) Selected() *models.ContactMessage {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.selected
}

// Open shows a message. Opening a new message marks it read, in which case
// the list is re-fetched and markedRead is true.
func (i *Inbox) Open(ctx context.Context, id string) (msg *models.ContactMessage, markedRead bool, err error) {
	msg, markedRead, err = i.actions.Open(ctx, id)
	if err != nil {
		i.logger.Warn("open message failed", zap.String("id", id), zap.Error(err))
		return nil, false, err
	}
	i.mu.Lock()
	i.selected = msg
	i.mu.Unlock()
	if markedRead {
		_ = i.list.Refresh(ctx)
	}
	return msg, markedRead, nil
}

// MarkReplied records a reply to id.
func (i *Inbox) MarkReplied(ctx context.Context, id string) (*models.ContactMessage, error) {
	if err := i.op.begin(); err != nil {
		return nil, err
	}
	msg, err := i.actions.MarkReplied(ctx, id)
	i.op.finish(err)
	if err != nil {
		i.logger.Warn("mark replied failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	i.mu.Lock()
	if i.selected != nil && i.selected.ID == id {
		i.selected = msg
	}
	i.mu.Unlock()
	_ = i.list.Refresh(ctx)
	return msg, nil
}

// Delete removes a message in any status once confirmed.
func (i *Inbox) Delete(ctx context.Context, id string) (bool, error) {
	if !confirmed(ctx, i.confirm, "Delete this message?") {
		return false, nil
	}
	if err := i.op.begin(); err != nil {
		return false, err
	}
	err := i.actions.Delete(ctx, id)
	i.op.finish(err)
	if err != nil {
		i.logger.Warn("delete message failed", zap.String("id", id), zap.Error(err))
		return false, err
	}
	i.mu.Lock()
	if i.selected != nil && i.selected.ID == id {
		i.selected = nil
	}
	i.mu.Unlock()
	_ = i.list.Refresh(ctx)
	return true, nil
}
