package repository

import (
	"context"

	"itemsync/internal/sync/domain/model"
)

// RecordStore is the coarse-grained search-then-write surface of the external
// record store. There is no atomic upsert: Find is a point-in-time lookup
// against an eventually consistent search index, and Create/Save may fail
// with a distinguishable uniqueness conflict (errors.ErrUniquenessConflict,
// or an AppError of type CONFLICT_ERROR) when a concurrent writer won the
// race on the same natural key.
type RecordStore interface {
	// Find returns the references of all records holding the natural key
	// within the partition, in a deterministic order. An empty slice with a
	// nil error means not found.
	Find(ctx context.Context, partition, naturalKey string) ([]model.RecordRef, error)

	// Create persists a new record and returns its assigned reference.
	Create(ctx context.Context, record *model.Record) (model.RecordRef, error)

	// Load fetches a record draft by reference. Returns a not-found error
	// when the reference no longer resolves.
	Load(ctx context.Context, partition string, ref model.RecordRef) (*model.Record, error)

	// Save persists a mutated draft and returns its reference.
	Save(ctx context.Context, record *model.Record) (model.RecordRef, error)
}
