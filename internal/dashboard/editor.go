package dashboard

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/mentor-site-api/internal/models"
)

// Confirmer asks the operator to approve a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) bool

// Confirm calls f.
func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool {
	return f(ctx, prompt)
}

// ContentService is the admin surface of one content type.
type ContentService[T, C, U any] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, actor *models.JWTClaims, req C) (*T, error)
	Update(ctx context.Context, actor *models.JWTClaims, id string, req U) (*T, error)
	Delete(ctx context.Context, actor *models.JWTClaims, id string) error
}

// Mutations are the writes an Editor performs.
type Mutations[T, C, U any] struct {
	Create func(ctx context.Context, draft C) (*T, error)
	Update func(ctx context.Context, id string, patch U) (*T, error)
	Delete func(ctx context.Context, id string) error
}

// ForActor binds svc's mutations to actor.
func ForActor[T, C, U any](svc ContentService[T, C, U], actor *models.JWTClaims) Mutations[T, C, U] {
	return Mutations[T, C, U]{
		Create: func(ctx context.Context, draft C) (*T, error) { return svc.Create(ctx, actor, draft) },
		Update: func(ctx context.Context, id string, patch U) (*T, error) { return svc.Update(ctx, actor, id, patch) },
		Delete: func(ctx context.Context, id string) error { return svc.Delete(ctx, actor, id) },
	}
}

// Editor drives the create form, the inline edit mode and deletes of one
// content list. Every successful write re-fetches the list.
type Editor[T, C, U any] struct {
	name    string
	list    *ListController[T]
	ops     Mutations[T, C, U]
	confirm Confirmer
	logger  *zap.Logger

	create operation
	update operation
	remove operation

	mu        sync.Mutex
	draft     C
	editingID string
}

// NewEditor constructs an editor over list. A nil confirm declines every
// delete.
func NewEditor[T, C, U any](name string, list *ListController[T], ops Mutations[T, C, U], confirm Confirmer, logger *zap.Logger) *Editor[T, C, U] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Editor[T, C, U]{name: name, list: list, ops: ops, confirm: confirm, logger: logger}
}

// List exposes the controlled list.
func (e *Editor[T, C, U]) List() *ListController[T] { return e.list }

// SetDraft replaces the create form contents.
func (e *Editor[T, C, U]) SetDraft(draft C) {
	e.mu.Lock()
	e.draft = draft
	e.mu.Unlock()
}

// Draft returns the create form contents.
func (e *Editor[T, C, U]) Draft() C {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft
}

// BeginEdit puts id into edit mode.
func (e *Editor[T, C, U]) BeginEdit(id string) {
	e.mu.Lock()
	e.editingID = id
	e.mu.Unlock()
}

// CancelEdit leaves edit mode.
func (e *Editor[T, C, U]) CancelEdit() {
	e.BeginEdit("")
}

// EditingID is the record in edit mode, or empty.
func (e *Editor[T, C, U]) EditingID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.editingID
}

// CreateState, UpdateState and DeleteState report the latest attempt of
// each action.
func (e *Editor[T, C, U]) CreateState() RequestState { return e.create.State() }
func (e *Editor[T, C, U]) UpdateState() RequestState { return e.update.State() }
func (e *Editor[T, C, U]) DeleteState() RequestState { return e.remove.State() }

// Create writes the current draft. On success the draft is cleared and the
// list re-fetched; on failure the draft is kept.
func (e *Editor[T, C, U]) Create(ctx context.Context) (*T, error) {
	if err := e.create.begin(); err != nil {
		return nil, err
	}
	item, err := e.ops.Create(ctx, e.Draft())
	e.create.finish(err)
	if err != nil {
		e.logger.Warn("create failed", zap.String("list", e.name), zap.Error(err))
		return nil, err
	}
	var empty C
	e.SetDraft(empty)
	e.refresh(ctx)
	return item, nil
}

// Update merges patch into id. On success edit mode for id ends and the
// list is re-fetched.
func (e *Editor[T, C, U]) Update(ctx context.Context, id string, patch U) (*T, error) {
	if err := e.update.begin(); err != nil {
		return nil, err
	}
	item, err := e.ops.Update(ctx, id, patch)
	e.update.finish(err)
	if err != nil {
		e.logger.Warn("update failed", zap.String("list", e.name), zap.String("id", id), zap.Error(err))
		return nil, err
	}
	e.mu.Lock()
	if e.editingID == id {
		e.editingID = ""
	}
	e.mu.Unlock()
	e.refresh(ctx)
	return item, nil
}

// Delete removes id once the operator confirms. A declined confirmation
// makes no store call, changes no state and reports deleted=false.
func (e *Editor[T, C, U]) Delete(ctx context.Context, id string) (bool, error) {
	if !confirmed(ctx, e.confirm, "Delete this "+e.name+"?") {
		return false, nil
	}
	if err := e.remove.begin(); err != nil {
		return false, err
	}
	err := e.ops.Delete(ctx, id)
	e.remove.finish(err)
	if err != nil {
		e.logger.Warn("delete failed", zap.String("list", e.name), zap.String("id", id), zap.Error(err))
		return false, err
	}
	e.refresh(ctx)
	return true, nil
}

func (e *Editor[T, C, U]) refresh(ctx context.Context) {
	if e.list == nil {
		return
	}
	// Failures are recorded on the list state.
	_ = e.list.Refresh(ctx)
}

func confirmed(ctx context.Context, c Confirmer, prompt string) bool {
	return c != nil && c.Confirm(ctx, prompt)
}
