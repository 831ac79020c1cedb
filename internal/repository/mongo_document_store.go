package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/noah-isme/mentor-site-api/internal/models"
)

// MongoDocumentStore maps each collection onto a MongoDB collection keyed by
// a string _id. Batch writes need a replica set for transactions.
type MongoDocumentStore struct {
	db *mongo.Database
}

// NewMongoDocumentStore constructs the store.
func NewMongoDocumentStore(db *mongo.Database) *MongoDocumentStore {
	return &MongoDocumentStore{db: db}
}

func toBSON(id string, fields models.Fields) (bson.M, error) {
	plain, err := plainFields(fields)
	if err != nil {
		return nil, err
	}
	doc := bson.M{}
	for k, v := range plain {
		doc[k] = v
	}
	if id != "" {
		doc["_id"] = id
	}
	return doc, nil
}

func filterBSON(id string, filters []models.Filter) (bson.M, error) {
	out := bson.M{}
	if id != "" {
		out["_id"] = id
	}
	for _, f := range filters {
		v, err := plainValue(f.Value)
		if err != nil {
			return nil, fmt.Errorf("encode filter %s: %w", f.Field, err)
		}
		out[f.Field] = v
	}
	return out, nil
}

// Create inserts a document with a generated id.
func (s *MongoDocumentStore) Create(ctx context.Context, collection string, fields models.Fields) (string, error) {
	if err := validateCollection(collection); err != nil {
		return "", err
	}
	if err := validateFields(fields); err != nil {
		return "", err
	}
	id := uuid.NewString()
	doc, err := toBSON(id, fields)
	if err != nil {
		return "", err
	}
	if _, err := s.db.Collection(collection).InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("create %s document: %w", collection, err)
	}
	return id, nil
}

// CreateBatch inserts all documents inside a session transaction.
func (s *MongoDocumentStore) CreateBatch(ctx context.Context, collection string, batch []models.Fields) ([]string, error) {
	if err := validateCollection(collection); err != nil {
		return nil, err
	}
	if len(batch) == 0 {
		return nil, nil
	}
	ids := make([]string, len(batch))
	docs := make([]interface{}, len(batch))
	for i, fields := range batch {
		if err := validateFields(fields); err != nil {
			return nil, err
		}
		ids[i] = uuid.NewString()
		doc, err := toBSON(ids[i], fields)
		if err != nil {
			return nil, err
		}
		docs[i] = doc
	}

	session, err := s.db.Client().StartSession()
	if err != nil {
		return nil, fmt.Errorf("start mongo session: %w", err)
	}
	defer session.EndSession(context.Background())

	coll := s.db.Collection(collection)
	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return coll.InsertMany(sc, docs, options.InsertMany().SetOrdered(true))
	})
	if err != nil {
		return nil, fmt.Errorf("batch insert %s documents: %w", collection, err)
	}
	return ids, nil
}

// Update merges patch with $set.
func (s *MongoDocumentStore) Update(ctx context.Context, collection, id string, patch models.Fields) error {
	return s.UpdateWhere(ctx, collection, id, nil, patch)
}

// UpdateWhere merges patch when every expected equality still holds.
func (s *MongoDocumentStore) UpdateWhere(ctx context.Context, collection, id string, expect []models.Filter, patch models.Fields) error {
	if err := validateCollection(collection); err != nil {
		return err
	}
	if err := validateFields(patch); err != nil {
		return err
	}
	if err := validateFilters(expect); err != nil {
		return err
	}
	filter, err := filterBSON(id, expect)
	if err != nil {
		return err
	}
	set, err := toBSON("", patch)
	if err != nil {
		return err
	}
	coll := s.db.Collection(collection)
	if len(set) == 0 {
		n, err := coll.CountDocuments(ctx, filter)
		if err != nil {
			return fmt.Errorf("check %s document: %w", collection, err)
		}
		if n == 0 {
			return ErrDocumentNotFound
		}
		return nil
	}
	result, err := coll.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update %s document: %w", collection, err)
	}
	if result.MatchedCount == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

// Delete removes the document physically.
func (s *MongoDocumentStore) Delete(ctx context.Context, collection, id string) error {
	if err := validateCollection(collection); err != nil {
		return err
	}
	result, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete %s document: %w", collection, err)
	}
	if result.DeletedCount == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

// Get fetches a document by id.
func (s *MongoDocumentStore) Get(ctx context.Context, collection, id string) (*models.Document, error) {
	if err := validateCollection(collection); err != nil {
		return nil, err
	}
	var raw bson.M
	if err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&raw); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("get %s document: %w", collection, err)
	}
	doc := fromBSON(raw)
	return &doc, nil
}

// Query returns all matching documents of a collection.
func (s *MongoDocumentStore) Query(ctx context.Context, q models.DocumentQuery) ([]models.Document, error) {
	if err := validateQuery(q); err != nil {
		return nil, err
	}
	filter, err := filterBSON("", q.Filters)
	if err != nil {
		return nil, err
	}
	opts := options.Find()
	if q.OrderBy != nil {
		direction := 1
		if q.OrderBy.Direction == models.SortDesc {
			direction = -1
		}
		opts.SetSort(bson.D{{Key: q.OrderBy.Field, Value: direction}})
	}

	cursor, err := s.db.Collection(q.Collection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("query %s documents: %w", q.Collection, err)
	}
	var raws []bson.M
	if err := cursor.All(ctx, &raws); err != nil {
		return nil, fmt.Errorf("read %s documents: %w", q.Collection, err)
	}
	docs := make([]models.Document, 0, len(raws))
	for _, raw := range raws {
		docs = append(docs, fromBSON(raw))
	}
	return docs, nil
}

// Ping checks connectivity to the primary.
func (s *MongoDocumentStore) Ping(ctx context.Context) error {
	return s.db.Client().Ping(ctx, readpref.Primary())
}

func fromBSON(raw bson.M) models.Document {
	doc := models.Document{Fields: models.Fields{}}
	for k, v := range raw {
		if k == "_id" {
			doc.ID = fmt.Sprint(v)
			continue
		}
		doc.Fields[k] = normalizeBSON(v)
	}
	return doc
}

func normalizeBSON(v interface{}) interface{} {
	switch val := v.(type) {
	case primitive.D:
		out := make(map[string]interface{}, len(val))
		for _, e := range val {
			out[e.Key] = normalizeBSON(e.Value)
		}
		return out
	case primitive.M:
		out := make(map[string]interface{}, len(val))
		for k, e := range val {
			out[k] = normalizeBSON(e)
		}
		return out
	case primitive.A:
		out := make([]interface{}, len(val))
		for i, e := range val {
			out[i] = normalizeBSON(e)
		}
		return out
	case int32:
		return float64(val)
	case int64:
		return float64(val)
	case primitive.DateTime:
		return val.Time().UTC().Format(models.TimestampLayout)
	case time.Time:
		return val.UTC().Format(models.TimestampLayout)
	default:
		return val
	}
}
