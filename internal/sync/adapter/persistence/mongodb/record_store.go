package mongodb

import (
	"context"
	"time"

	"itemsync/internal/shared/database"
	apperrors "itemsync/internal/shared/errors"
	"itemsync/internal/shared/logger"
	"itemsync/internal/sync/domain/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRecordStore implements the RecordStore port over MongoDB. Each
// partition maps to its own collection with a unique index on naturalKey;
// the index is what turns a concurrent double-create into the
// distinguishable conflict the upsert resolver retries on.
type MongoRecordStore struct {
	partitions *database.PartitionManager
	logger     logger.Logger
}

// NewMongoRecordStore creates a record store over a partition manager.
func NewMongoRecordStore(partitions *database.PartitionManager, log logger.Logger) *MongoRecordStore {
	return &MongoRecordStore{
		partitions: partitions,
		logger:     log.WithComponent("mongo-record-store"),
	}
}

// mongoRecord is the persisted shape of a record.
type mongoRecord struct {
	ID         primitive.ObjectID                  `bson:"_id,omitempty"`
	Partition  string                              `bson:"partition"`
	NaturalKey string                              `bson:"naturalKey"`
	Attributes map[string]interface{}              `bson:"attributes"`
	Lines      map[string][]map[string]interface{} `bson:"lines,omitempty"`
	Version    int64                               `bson:"version"`
	CreateTime time.Time                           `bson:"createTime"`
	UpdateTime time.Time                           `bson:"updateTime"`
}

// Find returns the references of records holding the natural key, sorted by
// object ID ascending so multi-match tie-breaks are deterministic.
func (s *MongoRecordStore) Find(ctx context.Context, partition, naturalKey string) ([]model.RecordRef, error) {
	coll, err := s.partitions.CollectionForPartition(ctx, partition)
	if err != nil {
		return nil, apperrors.NewStoreError("failed to access partition").WithCause(err)
	}

	opts := options.Find().
		SetProjection(bson.M{"_id": 1}).
		SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := coll.Find(ctx, bson.M{"naturalKey": naturalKey}, opts)
	if err != nil {
		return nil, apperrors.NewStoreError("natural key lookup failed").WithCause(err)
	}
	defer cursor.Close(ctx)

	var refs []model.RecordRef
	for cursor.Next(ctx) {
		var row struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, apperrors.NewStoreError("failed to decode lookup result").WithCause(err)
		}
		refs = append(refs, model.RecordRef(row.ID.Hex()))
	}
	if err := cursor.Err(); err != nil {
		return nil, apperrors.NewStoreError("natural key lookup failed").WithCause(err)
	}
	return refs, nil
}

// Create inserts a new record. A duplicate key error on the natural-key
// index surfaces as a conflict so the resolver can retry as an update.
func (s *MongoRecordStore) Create(ctx context.Context, record *model.Record) (model.RecordRef, error) {
	coll, err := s.partitions.CollectionForPartition(ctx, record.Partition)
	if err != nil {
		return "", apperrors.NewStoreError("failed to access partition").WithCause(err)
	}

	now := time.Now().UTC()
	doc := modelToMongo(record)
	doc.Version = 1
	doc.CreateTime = now
	doc.UpdateTime = now

	result, err := coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperrors.NewConflictError("natural key already exists").
				WithCause(apperrors.ErrUniquenessConflict).
				WithDetail("naturalKey", record.NaturalKey)
		}
		return "", apperrors.NewStoreError("insert failed").WithCause(err)
	}

	oid := result.InsertedID.(primitive.ObjectID)
	ref := model.RecordRef(oid.Hex())
	s.logger.WithFields(map[string]interface{}{
		"partition":   record.Partition,
		"natural_key": record.NaturalKey,
		"record_id":   string(ref),
	}).Debug("Record created")
	return ref, nil
}

// Load fetches one record by reference.
func (s *MongoRecordStore) Load(ctx context.Context, partition string, ref model.RecordRef) (*model.Record, error) {
	coll, err := s.partitions.CollectionForPartition(ctx, partition)
	if err != nil {
		return nil, apperrors.NewStoreError("failed to access partition").WithCause(err)
	}

	oid, err := primitive.ObjectIDFromHex(string(ref))
	if err != nil {
		return nil, apperrors.NewStoreError("malformed record reference").WithCause(err)
	}

	var doc mongoRecord
	if err := coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NewNotFoundError("record").
				WithCause(apperrors.ErrRecordNotFound).
				WithDetail("recordId", string(ref))
		}
		return nil, apperrors.NewStoreError("load failed").WithCause(err)
	}
	return mongoToModel(&doc), nil
}

// Save replaces the persisted record with the mutated draft. A duplicate key
// error here means the natural key was changed onto an existing record.
func (s *MongoRecordStore) Save(ctx context.Context, record *model.Record) (model.RecordRef, error) {
	coll, err := s.partitions.CollectionForPartition(ctx, record.Partition)
	if err != nil {
		return "", apperrors.NewStoreError("failed to access partition").WithCause(err)
	}

	oid, err := primitive.ObjectIDFromHex(string(record.Ref))
	if err != nil {
		return "", apperrors.NewStoreError("malformed record reference").WithCause(err)
	}

	doc := modelToMongo(record)
	doc.ID = oid
	doc.Version = record.Version + 1
	doc.UpdateTime = time.Now().UTC()

	result, err := coll.ReplaceOne(ctx, bson.M{"_id": oid}, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperrors.NewConflictError("natural key already exists").
				WithCause(apperrors.ErrUniquenessConflict).
				WithDetail("naturalKey", record.NaturalKey)
		}
		return "", apperrors.NewStoreError("save failed").WithCause(err)
	}
	if result.MatchedCount == 0 {
		return "", apperrors.NewNotFoundError("record").
			WithCause(apperrors.ErrRecordNotFound).
			WithDetail("recordId", string(record.Ref))
	}
	return record.Ref, nil
}

func modelToMongo(record *model.Record) *mongoRecord {
	doc := &mongoRecord{
		Partition:  record.Partition,
		NaturalKey: record.NaturalKey,
		Attributes: record.Attributes,
		Version:    record.Version,
		CreateTime: record.CreatedAt,
		UpdateTime: record.UpdatedAt,
	}
	if len(record.Lines) > 0 {
		doc.Lines = make(map[string][]map[string]interface{}, len(record.Lines))
		for name, entries := range record.Lines {
			rows := make([]map[string]interface{}, len(entries))
			for i, entry := range entries {
				rows[i] = map[string]interface{}(entry)
			}
			doc.Lines[name] = rows
		}
	}
	return doc
}

func mongoToModel(doc *mongoRecord) *model.Record {
	record := &model.Record{
		Ref:        model.RecordRef(doc.ID.Hex()),
		Partition:  doc.Partition,
		NaturalKey: doc.NaturalKey,
		Attributes: doc.Attributes,
		Lines:      make(map[string][]model.LineEntry, len(doc.Lines)),
		Version:    doc.Version,
		CreatedAt:  doc.CreateTime,
		UpdatedAt:  doc.UpdateTime,
	}
	if record.Attributes == nil {
		record.Attributes = make(map[string]interface{})
	}
	for name, rows := range doc.Lines {
		entries := make([]model.LineEntry, len(rows))
		for i, row := range rows {
			entries[i] = model.LineEntry(row)
		}
		record.Lines[name] = entries
	}
	return record
}
