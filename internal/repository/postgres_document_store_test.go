package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/mentor-site-api/internal/models"
)

func newDocumentStoreMock(t *testing.T) (*PostgresDocumentStore, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewPostgresDocumentStore(sqlx.NewDb(db, "sqlmock")), mock, func() { db.Close() }
}

func TestPostgresDocumentStoreCreate(t *testing.T) {
	store, mock, cleanup := newDocumentStoreMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO documents (id, collection, data)")).
		WithArgs(sqlmock.AnyArg(), "webinars", `{"title":"Go"}`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	id, err := store.Create(context.Background(), "webinars", models.Fields{"title": "Go"})
	require.NoError(t, err)
	assert.Len(t, id, 36)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDocumentStoreRejectsBadFieldNames(t *testing.T) {
	store, mock, cleanup := newDocumentStoreMock(t)
	defer cleanup()

	_, err := store.Create(context.Background(), "webinars", models.Fields{"title'); DROP": "x"})
	require.Error(t, err)
	_, err = store.Query(context.Background(), models.DocumentQuery{Collection: "webinars", OrderBy: &models.OrderBy{Field: "date desc;"}})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDocumentStoreCreateBatchCommits(t *testing.T) {
	store, mock, cleanup := newDocumentStoreMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO documents")).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO documents")).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	ids, err := store.CreateBatch(context.Background(), "gallery", []models.Fields{{"url": "a"}, {"url": "b"}})
	require.NoError(t, err)
	assert.Len(t, ids, 2)
	assert.NotEqual(t, ids[0], ids[1])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDocumentStoreCreateBatchRollsBack(t *testing.T) {
	store, mock, cleanup := newDocumentStoreMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO documents")).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO documents")).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	ids, err := store.CreateBatch(context.Background(), "gallery", []models.Fields{{"url": "a"}, {"url": "b"}, {"url": "c"}})
	require.Error(t, err)
	assert.Nil(t, ids)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDocumentStoreUpdateWhere(t *testing.T) {
	store, mock, cleanup := newDocumentStoreMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE documents SET data = data || $1::jsonb WHERE collection = $2 AND id = $3 AND data -> $4 = $5::jsonb")).
		WithArgs(`{"status":"read"}`, "contact_messages", "msg-1", "status", `"new"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.UpdateWhere(context.Background(), "contact_messages", "msg-1",
		[]models.Filter{{Field: "status", Value: "new"}}, models.Fields{"status": "read"})
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE documents SET")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err = store.UpdateWhere(context.Background(), "contact_messages", "msg-1",
		[]models.Filter{{Field: "status", Value: "new"}}, models.Fields{"status": "read"})
	assert.ErrorIs(t, err, ErrDocumentNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDocumentStoreDeleteMissing(t *testing.T) {
	store, mock, cleanup := newDocumentStoreMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM documents WHERE collection = $1 AND id = $2")).
		WithArgs("events", "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.Delete(context.Background(), "events", "missing")
	assert.ErrorIs(t, err, ErrDocumentNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDocumentStoreGet(t *testing.T) {
	store, mock, cleanup := newDocumentStoreMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, data FROM documents WHERE collection = $1 AND id = $2")).
		WithArgs("reviews", "r-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "data"}).AddRow("r-1", []byte(`{"status":"pending","rating":5}`)))

	doc, err := store.Get(context.Background(), "reviews", "r-1")
	require.NoError(t, err)
	assert.Equal(t, "r-1", doc.ID)
	assert.Equal(t, "pending", doc.Fields["status"])
	assert.Equal(t, float64(5), doc.Fields["rating"])

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, data FROM documents")).
		WillReturnError(sql.ErrNoRows)
	_, err = store.Get(context.Background(), "reviews", "r-2")
	assert.ErrorIs(t, err, ErrDocumentNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDocumentStoreQueryFiltersAndOrder(t *testing.T) {
	store, mock, cleanup := newDocumentStoreMock(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"id", "data"}).
		AddRow("w-2", []byte(`{"date":"2024-03-01"}`)).
		AddRow("w-1", []byte(`{"date":"2024-01-01"}`))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, data FROM documents WHERE collection = $1 AND data -> $2 = $3::jsonb ORDER BY data -> $4 DESC NULLS LAST, created_at ASC")).
		WithArgs("webinars", "published", "true", "date").
		WillReturnRows(rows)

	docs, err := store.Query(context.Background(), models.DocumentQuery{
		Collection: "webinars",
		Filters:    []models.Filter{{Field: "published", Value: true}},
		OrderBy:    &models.OrderBy{Field: "date", Direction: models.SortDesc},
	})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "w-2", docs[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDocumentStoreAscendingOrderPutsMissingFirst(t *testing.T) {
	store, mock, cleanup := newDocumentStoreMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, data FROM documents WHERE collection = $1 ORDER BY data -> $2 ASC NULLS FIRST, created_at ASC")).
		WithArgs("community_links", "createdAt").
		WillReturnRows(sqlmock.NewRows([]string{"id", "data"}).AddRow("c-1", []byte(`{"platform":"youtube"}`)))

	docs, err := store.Query(context.Background(), models.DocumentQuery{
		Collection: "community_links",
		OrderBy:    &models.OrderBy{Field: "createdAt", Direction: models.SortAsc},
	})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}
