package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/noah-isme/mentor-site-api/internal/models"
)

func TestMongoDocumentStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("create", func(mt *mtest.T) {
		store := NewMongoDocumentStore(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		id, err := store.Create(context.Background(), "events", models.Fields{"title": "Meetup"})
		require.NoError(mt, err)
		assert.Len(mt, id, 36)
	})

	mt.Run("get missing", func(mt *mtest.T) {
		store := NewMongoDocumentStore(mt.DB)
		ns := mt.DB.Name() + "." + models.CollectionWebinars
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := store.Get(context.Background(), models.CollectionWebinars, "nope")
		assert.ErrorIs(mt, err, ErrDocumentNotFound)
	})

	mt.Run("query normalizes values", func(mt *mtest.T) {
		store := NewMongoDocumentStore(mt.DB)
		ns := mt.DB.Name() + "." + models.CollectionWebinars
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: "w-1"},
				{Key: "title", Value: "Go"},
				{Key: "rating", Value: int32(4)},
				{Key: "learningOutcomes", Value: bson.A{"a", "b"}},
			},
		))

		docs, err := store.Query(context.Background(), models.DocumentQuery{
			Collection: models.CollectionWebinars,
			OrderBy:    &models.OrderBy{Field: "date", Direction: models.SortDesc},
		})
		require.NoError(mt, err)
		require.Len(mt, docs, 1)
		assert.Equal(mt, "w-1", docs[0].ID)
		assert.Equal(mt, float64(4), docs[0].Fields["rating"])
		assert.Equal(mt, []interface{}{"a", "b"}, docs[0].Fields["learningOutcomes"])
	})

	mt.Run("update where no match", func(mt *mtest.T) {
		store := NewMongoDocumentStore(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		err := store.UpdateWhere(context.Background(), "reviews", "r-1",
			[]models.Filter{{Field: "status", Value: models.ReviewStatusPending}},
			models.Fields{"status": "approved"})
		assert.ErrorIs(mt, err, ErrDocumentNotFound)
	})

	mt.Run("delete", func(mt *mtest.T) {
		store := NewMongoDocumentStore(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))
		require.NoError(mt, store.Delete(context.Background(), "reviews", "r-1"))

		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))
		assert.ErrorIs(mt, store.Delete(context.Background(), "reviews", "r-1"), ErrDocumentNotFound)
	})
}

func TestNormalizeBSON(t *testing.T) {
	out := normalizeBSON(primitive.D{
		{Key: "n", Value: int64(3)},
		{Key: "nested", Value: primitive.M{"list": primitive.A{int32(1)}}},
	})
	assert.Equal(t, map[string]interface{}{
		"n":      float64(3),
		"nested": map[string]interface{}{"list": []interface{}{float64(1)}},
	}, out)
}
