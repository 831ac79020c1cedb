package repository

import (
	"context"
	"reflect"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/noah-isme/mentor-site-api/internal/models"
)

type memoryCollection struct {
	docs  map[string]models.Fields
	order []string
}

// MemoryDocumentStore keeps documents in process memory. Values pass through
// JSON on the way in and out so callers see the same shapes as with the
// database backends.
type MemoryDocumentStore struct {
	mu          sync.RWMutex
	collections map[string]*memoryCollection
}

// NewMemoryDocumentStore returns an empty store.
func NewMemoryDocumentStore() *MemoryDocumentStore {
	return &MemoryDocumentStore{collections: map[string]*memoryCollection{}}
}

func (s *MemoryDocumentStore) collection(name string) *memoryCollection {
	c, ok := s.collections[name]
	if !ok {
		c = &memoryCollection{docs: map[string]models.Fields{}}
		s.collections[name] = c
	}
	return c
}

// Create inserts a document with a generated id.
func (s *MemoryDocumentStore) Create(ctx context.Context, collection string, fields models.Fields) (string, error) {
	ids, err := s.CreateBatch(ctx, collection, []models.Fields{fields})
	if err != nil {
		return "", err
	}
	return ids[0], nil
}

// CreateBatch inserts all documents or none.
func (s *MemoryDocumentStore) CreateBatch(ctx context.Context, collection string, batch []models.Fields) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateCollection(collection); err != nil {
		return nil, err
	}
	if len(batch) == 0 {
		return nil, nil
	}
	copies := make([]models.Fields, len(batch))
	for i, fields := range batch {
		if err := validateFields(fields); err != nil {
			return nil, err
		}
		plain, err := plainFields(fields)
		if err != nil {
			return nil, err
		}
		copies[i] = plain
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.collection(collection)
	ids := make([]string, len(copies))
	for i, fields := range copies {
		ids[i] = uuid.NewString()
		c.docs[ids[i]] = fields
		c.order = append(c.order, ids[i])
	}
	return ids, nil
}

// Update merges patch into the stored document.
func (s *MemoryDocumentStore) Update(ctx context.Context, collection, id string, patch models.Fields) error {
	return s.UpdateWhere(ctx, collection, id, nil, patch)
}

// UpdateWhere merges patch when every expected equality still holds.
func (s *MemoryDocumentStore) UpdateWhere(ctx context.Context, collection, id string, expect []models.Filter, patch models.Fields) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateCollection(collection); err != nil {
		return err
	}
	if err := validateFields(patch); err != nil {
		return err
	}
	if err := validateFilters(expect); err != nil {
		return err
	}
	plain, err := plainFields(patch)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.collection(collection).docs[id]
	if !ok {
		return ErrDocumentNotFound
	}
	matched, err := matches(current, expect)
	if err != nil {
		return err
	}
	if !matched {
		return ErrDocumentNotFound
	}
	for k, v := range plain {
		current[k] = v
	}
	return nil
}

// Delete removes the document.
func (s *MemoryDocumentStore) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.collection(collection)
	if _, ok := c.docs[id]; !ok {
		return ErrDocumentNotFound
	}
	delete(c.docs, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

// Get fetches a document by id.
func (s *MemoryDocumentStore) Get(ctx context.Context, collection, id string) (*models.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[collection]
	if !ok {
		return nil, ErrDocumentNotFound
	}
	fields, ok := c.docs[id]
	if !ok {
		return nil, ErrDocumentNotFound
	}
	copied, err := plainFields(fields)
	if err != nil {
		return nil, err
	}
	return &models.Document{ID: id, Fields: copied}, nil
}

// Query returns matching documents in insertion order unless ordered.
func (s *MemoryDocumentStore) Query(ctx context.Context, q models.DocumentQuery) ([]models.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateQuery(q); err != nil {
		return nil, err
	}

	s.mu.RLock()
	var docs []models.Document
	if c, ok := s.collections[q.Collection]; ok {
		for _, id := range c.order {
			fields := c.docs[id]
			matched, err := matches(fields, q.Filters)
			if err != nil {
				s.mu.RUnlock()
				return nil, err
			}
			if !matched {
				continue
			}
			copied, err := plainFields(fields)
			if err != nil {
				s.mu.RUnlock()
				return nil, err
			}
			docs = append(docs, models.Document{ID: id, Fields: copied})
		}
	}
	s.mu.RUnlock()

	if q.OrderBy != nil {
		field, desc := q.OrderBy.Field, q.OrderBy.Direction == models.SortDesc
		sort.SliceStable(docs, func(i, j int) bool {
			if desc {
				return lessValue(docs[j].Fields[field], docs[i].Fields[field])
			}
			return lessValue(docs[i].Fields[field], docs[j].Fields[field])
		})
	}
	if docs == nil {
		docs = []models.Document{}
	}
	return docs, nil
}

// Ping always succeeds.
func (s *MemoryDocumentStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func matches(fields models.Fields, filters []models.Filter) (bool, error) {
	for _, f := range filters {
		want, err := plainValue(f.Value)
		if err != nil {
			return false, err
		}
		if !reflect.DeepEqual(fields[f.Field], want) {
			return false, nil
		}
	}
	return true, nil
}

// lessValue orders missing values first, then numbers, then strings.
func lessValue(a, b interface{}) bool {
	rank := func(v interface{}) int {
		switch v.(type) {
		case nil:
			return 0
		case bool:
			return 1
		case float64:
			return 2
		case string:
			return 3
		default:
			return 4
		}
	}
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return ra < rb
	}
	switch av := a.(type) {
	case bool:
		return !av && b.(bool)
	case float64:
		return av < b.(float64)
	case string:
		return av < b.(string)
	}
	return false
}
