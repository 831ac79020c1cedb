package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/noah-isme/mentor-site-api/internal/models"
)

// ErrDocumentNotFound is returned when a keyed operation matches no document.
var ErrDocumentNotFound = errors.New("document not found")

// DocumentStore is a schemaless record store organised in named collections.
// Every call honours ctx cancellation.
type DocumentStore interface {
	Create(ctx context.Context, collection string, fields models.Fields) (string, error)
	// CreateBatch inserts all documents or none.
	CreateBatch(ctx context.Context, collection string, batch []models.Fields) ([]string, error)
	// Update merges patch into the stored fields.
	Update(ctx context.Context, collection, id string, patch models.Fields) error
	// UpdateWhere merges patch only while every expected equality still holds.
	UpdateWhere(ctx context.Context, collection, id string, expect []models.Filter, patch models.Fields) error
	Delete(ctx context.Context, collection, id string) error
	Get(ctx context.Context, collection, id string) (*models.Document, error)
	Query(ctx context.Context, query models.DocumentQuery) ([]models.Document, error)
	Ping(ctx context.Context) error
}

var fieldNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

func validateQuery(query models.DocumentQuery) error {
	if err := validateCollection(query.Collection); err != nil {
		return err
	}
	if err := validateFilters(query.Filters); err != nil {
		return err
	}
	if query.OrderBy != nil {
		if !fieldNamePattern.MatchString(query.OrderBy.Field) {
			return fmt.Errorf("invalid order field %q", query.OrderBy.Field)
		}
		switch query.OrderBy.Direction {
		case models.SortAsc, models.SortDesc, "":
		default:
			return fmt.Errorf("invalid sort direction %q", query.OrderBy.Direction)
		}
	}
	return nil
}

func validateCollection(name string) error {
	if !fieldNamePattern.MatchString(name) {
		return fmt.Errorf("invalid collection %q", name)
	}
	return nil
}

func validateFilters(filters []models.Filter) error {
	for _, f := range filters {
		if !fieldNamePattern.MatchString(f.Field) {
			return fmt.Errorf("invalid filter field %q", f.Field)
		}
	}
	return nil
}

func validateFields(fields models.Fields) error {
	for name := range fields {
		if name == "id" || name == "_id" || !fieldNamePattern.MatchString(name) {
			return fmt.Errorf("invalid field name %q", name)
		}
	}
	return nil
}

// StoreObserver receives timings of store operations.
type StoreObserver interface {
	ObserveStoreOperation(operation, collection string, duration time.Duration, err error)
}

// InstrumentedStore reports the duration and outcome of each call to an observer.
type InstrumentedStore struct {
	next     DocumentStore
	observer StoreObserver
}

// NewInstrumentedStore wraps next. A nil observer returns next unchanged.
func NewInstrumentedStore(next DocumentStore, observer StoreObserver) DocumentStore {
	if observer == nil {
		return next
	}
	return &InstrumentedStore{next: next, observer: observer}
}

func (s *InstrumentedStore) observe(op, collection string, start time.Time, err error) {
	s.observer.ObserveStoreOperation(op, collection, time.Since(start), err)
}

// Create implements DocumentStore.
func (s *InstrumentedStore) Create(ctx context.Context, collection string, fields models.Fields) (id string, err error) {
	defer func(start time.Time) { s.observe("create", collection, start, err) }(time.Now())
	return s.next.Create(ctx, collection, fields)
}

// CreateBatch implements DocumentStore.
func (s *InstrumentedStore) CreateBatch(ctx context.Context, collection string, batch []models.Fields) (ids []string, err error) {
	defer func(start time.Time) { s.observe("create_batch", collection, start, err) }(time.Now())
	return s.next.CreateBatch(ctx, collection, batch)
}

// Update implements DocumentStore.
func (s *InstrumentedStore) Update(ctx context.Context, collection, id string, patch models.Fields) (err error) {
	defer func(start time.Time) { s.observe("update", collection, start, err) }(time.Now())
	return s.next.Update(ctx, collection, id, patch)
}

// UpdateWhere implements DocumentStore.
func (s *InstrumentedStore) UpdateWhere(ctx context.Context, collection, id string, expect []models.Filter, patch models.Fields) (err error) {
	defer func(start time.Time) { s.observe("update_where", collection, start, err) }(time.Now())
	return s.next.UpdateWhere(ctx, collection, id, expect, patch)
}

// Delete implements DocumentStore.
func (s *InstrumentedStore) Delete(ctx context.Context, collection, id string) (err error) {
	defer func(start time.Time) { s.observe("delete", collection, start, err) }(time.Now())
	return s.next.Delete(ctx, collection, id)
}

// Get implements DocumentStore.
func (s *InstrumentedStore) Get(ctx context.Context, collection, id string) (doc *models.Document, err error) {
	defer func(start time.Time) { s.observe("get", collection, start, err) }(time.Now())
	return s.next.Get(ctx, collection, id)
}

// Query implements DocumentStore.
func (s *InstrumentedStore) Query(ctx context.Context, query models.DocumentQuery) (docs []models.Document, err error) {
	defer func(start time.Time) { s.observe("query", query.Collection, start, err) }(time.Now())
	return s.next.Query(ctx, query)
}

// Ping implements DocumentStore.
func (s *InstrumentedStore) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}

// plainValue reduces v to the JSON value model (string, float64, bool, nil,
// []interface{}, map[string]interface{}) so every backend compares alike.
func plainValue(v interface{}) (interface{}, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func plainFields(fields models.Fields) (models.Fields, error) {
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode fields: %w", err)
	}
	out := models.Fields{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode fields: %w", err)
	}
	return out, nil
}
