package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/mentor-site-api/internal/models"
)

// PostgresDocumentStore keeps every collection in a single JSONB table.
type PostgresDocumentStore struct {
	db *sqlx.DB
}

// NewPostgresDocumentStore constructs the store. The documents table is
// created by database.EnsureDocumentSchema.
func NewPostgresDocumentStore(db *sqlx.DB) *PostgresDocumentStore {
	return &PostgresDocumentStore{db: db}
}

type documentRow struct {
	ID   string `db:"id"`
	Data []byte `db:"data"`
}

func (r documentRow) toDocument() (models.Document, error) {
	fields := models.Fields{}
	if err := json.Unmarshal(r.Data, &fields); err != nil {
		return models.Document{}, fmt.Errorf("decode document %s: %w", r.ID, err)
	}
	return models.Document{ID: r.ID, Fields: fields}, nil
}

func encodeFields(fields models.Fields) (string, error) {
	if fields == nil {
		fields = models.Fields{}
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("encode fields: %w", err)
	}
	return string(raw), nil
}

// Create inserts a document with a generated id.
func (r *PostgresDocumentStore) Create(ctx context.Context, collection string, fields models.Fields) (string, error) {
	if err := validateCollection(collection); err != nil {
		return "", err
	}
	if err := validateFields(fields); err != nil {
		return "", err
	}
	data, err := encodeFields(fields)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	const query = `INSERT INTO documents (id, collection, data) VALUES ($1, $2, $3::jsonb)`
	if _, err := r.db.ExecContext(ctx, query, id, collection, data); err != nil {
		return "", fmt.Errorf("create %s document: %w", collection, err)
	}
	return id, nil
}

// CreateBatch inserts every document inside one transaction.
func (r *PostgresDocumentStore) CreateBatch(ctx context.Context, collection string, batch []models.Fields) (ids []string, err error) {
	if err := validateCollection(collection); err != nil {
		return nil, err
	}
	if len(batch) == 0 {
		return nil, nil
	}
	payloads := make([]string, len(batch))
	for i, fields := range batch {
		if err := validateFields(fields); err != nil {
			return nil, err
		}
		if payloads[i], err = encodeFields(fields); err != nil {
			return nil, err
		}
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin batch tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const query = `INSERT INTO documents (id, collection, data) VALUES ($1, $2, $3::jsonb)`
	ids = make([]string, len(batch))
	for i, data := range payloads {
		ids[i] = uuid.NewString()
		if _, err = tx.ExecContext(ctx, query, ids[i], collection, data); err != nil {
			return nil, fmt.Errorf("batch insert %s document %d: %w", collection, i, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit batch tx: %w", err)
	}
	return ids, nil
}

// Update merges patch into the stored document.
func (r *PostgresDocumentStore) Update(ctx context.Context, collection, id string, patch models.Fields) error {
	return r.UpdateWhere(ctx, collection, id, nil, patch)
}

// UpdateWhere merges patch when every expected field equality holds.
func (r *PostgresDocumentStore) UpdateWhere(ctx context.Context, collection, id string, expect []models.Filter, patch models.Fields) error {
	if err := validateCollection(collection); err != nil {
		return err
	}
	if err := validateFields(patch); err != nil {
		return err
	}
	if err := validateFilters(expect); err != nil {
		return err
	}
	data, err := encodeFields(patch)
	if err != nil {
		return err
	}
	args := []interface{}{data, collection, id}
	conditions, args, err := filterConditions(expect, args)
	if err != nil {
		return err
	}
	query := `UPDATE documents SET data = data || $1::jsonb WHERE collection = $2 AND id = $3`
	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update %s document: %w", collection, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check %s update rows: %w", collection, err)
	}
	if rows == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

// Delete removes the document physically.
func (r *PostgresDocumentStore) Delete(ctx context.Context, collection, id string) error {
	if err := validateCollection(collection); err != nil {
		return err
	}
	result, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE collection = $1 AND id = $2`, collection, id)
	if err != nil {
		return fmt.Errorf("delete %s document: %w", collection, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check %s delete rows: %w", collection, err)
	}
	if rows == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

// Get fetches a document by id.
func (r *PostgresDocumentStore) Get(ctx context.Context, collection, id string) (*models.Document, error) {
	if err := validateCollection(collection); err != nil {
		return nil, err
	}
	var row documentRow
	if err := r.db.GetContext(ctx, &row, `SELECT id, data FROM documents WHERE collection = $1 AND id = $2`, collection, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("get %s document: %w", collection, err)
	}
	doc, err := row.toDocument()
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// Query returns all matching documents of a collection.
func (r *PostgresDocumentStore) Query(ctx context.Context, q models.DocumentQuery) ([]models.Document, error) {
	if err := validateQuery(q); err != nil {
		return nil, err
	}
	builder := strings.Builder{}
	builder.WriteString(`SELECT id, data FROM documents WHERE collection = $1`)
	args := []interface{}{q.Collection}

	conditions, args, err := filterConditions(q.Filters, args)
	if err != nil {
		return nil, err
	}
	for _, cond := range conditions {
		builder.WriteString(" AND ")
		builder.WriteString(cond)
	}
	if q.OrderBy != nil {
		// jsonb comparison keeps numbers numeric; a missing field sorts as
		// the smallest value, as in the other backends.
		args = append(args, q.OrderBy.Field)
		direction := "ASC NULLS FIRST"
		if q.OrderBy.Direction == models.SortDesc {
			direction = "DESC NULLS LAST"
		}
		builder.WriteString(fmt.Sprintf(" ORDER BY data -> $%d %s, created_at ASC", len(args), direction))
	}

	var rows []documentRow
	if err := r.db.SelectContext(ctx, &rows, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("query %s documents: %w", q.Collection, err)
	}
	docs := make([]models.Document, 0, len(rows))
	for _, row := range rows {
		doc, err := row.toDocument()
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Ping checks database connectivity.
func (r *PostgresDocumentStore) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func filterConditions(filters []models.Filter, args []interface{}) ([]string, []interface{}, error) {
	conditions := make([]string, 0, len(filters))
	for _, f := range filters {
		value, err := json.Marshal(f.Value)
		if err != nil {
			return nil, nil, fmt.Errorf("encode filter %s: %w", f.Field, err)
		}
		args = append(args, f.Field, string(value))
		conditions = append(conditions, fmt.Sprintf("data -> $%d = $%d::jsonb", len(args)-1, len(args)))
	}
	return conditions, args, nil
}
