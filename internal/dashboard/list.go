package dashboard

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// ErrSuperseded is returned by a refresh whose result arrived after a newer
// refresh had started. Its result is discarded.
var ErrSuperseded = errors.New("refresh superseded by a newer request")

// Loader fetches the full contents of one list.
type Loader[T any] func(ctx context.Context) ([]T, error)

// ListController owns the displayed items of one list. Only the most recent
// refresh may replace them, and a failed refresh keeps the previous items.
type ListController[T any] struct {
	name   string
	load   Loader[T]
	logger *zap.Logger

	mu         sync.Mutex
	items      []T
	state      RequestState
	generation uint64
}

// NewListController constructs a controller that fetches with load.
func NewListController[T any](name string, load Loader[T], logger *zap.Logger) *ListController[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ListController[T]{name: name, load: load, logger: logger, state: Idle()}
}

// Refresh fetches the list again. A result is applied only if no newer
// refresh started in the meantime and ctx was not cancelled.
func (c *ListController[T]) Refresh(ctx context.Context) error {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	previous := c.state
	c.state = Pending()
	c.mu.Unlock()

	items, err := c.load(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return ErrSuperseded
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		c.state = previous
		return ctxErr
	}
	if err != nil {
		c.state = Failed(err)
		c.logger.Warn("list refresh failed", zap.String("list", c.name), zap.Error(err))
		return err
	}
	if items == nil {
		items = []T{}
	}
	c.items = items
	c.state = Succeeded()
	return nil
}

// Items returns a copy of the displayed items.
func (c *ListController[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]T{}, c.items...)
}

// State returns the state of the latest refresh.
func (c *ListController[T]) State() RequestState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Name identifies the list in logs and summaries.
func (c *ListController[T]) Name() string {
	return c.name
}
