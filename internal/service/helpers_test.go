package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/mentor-site-api/internal/models"
	"github.com/noah-isme/mentor-site-api/internal/repository"
	appErrors "github.com/noah-isme/mentor-site-api/pkg/errors"
)

var (
	adminActor  = &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin, Email: "admin@example.com"}
	editorActor = &models.JWTClaims{UserID: "editor-1", Role: models.RoleEditor, Email: "editor@example.com"}
)

func requireAppCode(t *testing.T, err error, code string) *appErrors.Error {
	t.Helper()
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr), "expected *errors.Error, got %T: %v", err, err)
	require.Equal(t, code, appErr.Code, appErr.Message)
	return appErr
}

func strPtr(s string) *string { return &s }

// faultyStore wraps a store and fails selected operations.
type faultyStore struct {
	repository.DocumentStore
	batchErr       error
	updateWhereErr error
	queryErr       error
	queryReverse   bool
	calls          map[string]int
	mu             sync.Mutex
}

func newFaultyStore() *faultyStore {
	return &faultyStore{DocumentStore: repository.NewMemoryDocumentStore(), calls: map[string]int{}}
}

func (f *faultyStore) count(op string) {
	f.mu.Lock()
	f.calls[op]++
	f.mu.Unlock()
}

func (f *faultyStore) CreateBatch(ctx context.Context, collection string, batch []models.Fields) ([]string, error) {
	f.count("CreateBatch")
	if f.batchErr != nil {
		return nil, f.batchErr
	}
	return f.DocumentStore.CreateBatch(ctx, collection, batch)
}

func (f *faultyStore) UpdateWhere(ctx context.Context, collection, id string, expect []models.Filter, patch models.Fields) error {
	f.count("UpdateWhere")
	if f.updateWhereErr != nil {
		return f.updateWhereErr
	}
	return f.DocumentStore.UpdateWhere(ctx, collection, id, expect, patch)
}

func (f *faultyStore) Query(ctx context.Context, q models.DocumentQuery) ([]models.Document, error) {
	f.count("Query")
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	docs, err := f.DocumentStore.Query(ctx, q)
	if err != nil || !f.queryReverse {
		return docs, err
	}
	for i, j := 0, len(docs)-1; i < j; i, j = i+1, j-1 {
		docs[i], docs[j] = docs[j], docs[i]
	}
	return docs, nil
}

// memoryCache is a map-backed CacheRepository.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}}
}

func (c *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.entries[key] = raw
	c.mu.Unlock()
	return nil
}

func (c *memoryCache) DeleteByPattern(ctx context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	return nil
}

func (c *memoryCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}
