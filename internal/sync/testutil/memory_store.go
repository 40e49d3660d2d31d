package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"

	apperrors "itemsync/internal/shared/errors"
	"itemsync/internal/sync/domain/model"
)

// MemoryRecordStore is an in-memory RecordStore for tests. It mirrors the
// external store's contract: Create and Save enforce natural-key uniqueness
// at write time (the conflict the resolver retries on), and Find can be put
// behind a simulated stale search index to exercise the eventual-consistency
// window.
type MemoryRecordStore struct {
	mu      sync.Mutex
	records map[model.RecordRef]*model.Record
	seq     int

	indexLag  bool
	indexed   map[model.RecordRef]bool
	missFinds int

	failNextCreate error
	failNextSave   error
	failNextFind   error

	writes int
}

// NewMemoryRecordStore creates an empty store.
func NewMemoryRecordStore() *MemoryRecordStore {
	return &MemoryRecordStore{
		records: make(map[model.RecordRef]*model.Record),
		indexed: make(map[model.RecordRef]bool),
	}
}

// Find returns references matching the natural key, ascending. With index
// lag enabled only records indexed before the last FlushIndex are visible.
func (s *MemoryRecordStore) Find(ctx context.Context, partition, naturalKey string) ([]model.RecordRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failNextFind != nil {
		err := s.failNextFind
		s.failNextFind = nil
		return nil, err
	}
	if s.missFinds > 0 {
		s.missFinds--
		return nil, nil
	}

	var refs []model.RecordRef
	for ref, record := range s.records {
		if record.Partition != partition || record.NaturalKey != naturalKey {
			continue
		}
		if s.indexLag && !s.indexed[ref] {
			continue
		}
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i] < refs[j] })
	return refs, nil
}

// Create persists a new record, rejecting duplicate natural keys with a
// conflict error. The uniqueness check covers unindexed records too: the
// store's write path is strongly consistent even when its search index lags.
func (s *MemoryRecordStore) Create(ctx context.Context, record *model.Record) (model.RecordRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failNextCreate != nil {
		err := s.failNextCreate
		s.failNextCreate = nil
		return "", err
	}

	for _, existing := range s.records {
		if existing.Partition == record.Partition && existing.NaturalKey == record.NaturalKey {
			return "", apperrors.NewConflictError("natural key already exists").
				WithCause(apperrors.ErrUniquenessConflict)
		}
	}

	s.seq++
	ref := model.RecordRef(fmt.Sprintf("rec-%06d", s.seq))
	stored := record.Clone()
	stored.Ref = ref
	stored.Version = 1
	s.records[ref] = stored
	if !s.indexLag {
		s.indexed[ref] = true
	}
	s.writes++
	return ref, nil
}

// Load returns a deep copy so caller drafts never alias stored state.
func (s *MemoryRecordStore) Load(ctx context.Context, partition string, ref model.RecordRef) (*model.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[ref]
	if !ok || record.Partition != partition {
		return nil, apperrors.NewNotFoundError("record").WithCause(apperrors.ErrRecordNotFound)
	}
	return record.Clone(), nil
}

// Save replaces the stored record with the draft.
func (s *MemoryRecordStore) Save(ctx context.Context, record *model.Record) (model.RecordRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failNextSave != nil {
		err := s.failNextSave
		s.failNextSave = nil
		return "", err
	}

	existing, ok := s.records[record.Ref]
	if !ok {
		return "", apperrors.NewNotFoundError("record").WithCause(apperrors.ErrRecordNotFound)
	}

	stored := record.Clone()
	stored.Version = existing.Version + 1
	s.records[record.Ref] = stored
	s.writes++
	return record.Ref, nil
}

// MissNextFinds makes the next n Find calls report no matches regardless of
// stored records, simulating a stale search index around a write.
func (s *MemoryRecordStore) MissNextFinds(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.missFinds = n
}

// SeedRecord stores a record directly, bypassing the uniqueness check, so
// tests can stage the duplicate-key inconsistency the resolver tie-breaks.
func (s *MemoryRecordStore) SeedRecord(record *model.Record) model.RecordRef {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	ref := model.RecordRef(fmt.Sprintf("rec-%06d", s.seq))
	stored := record.Clone()
	stored.Ref = ref
	if stored.Version == 0 {
		stored.Version = 1
	}
	s.records[ref] = stored
	s.indexed[ref] = true
	return ref
}

// EnableIndexLag makes records created from now on invisible to Find until
// FlushIndex runs.
func (s *MemoryRecordStore) EnableIndexLag() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.indexLag = true
}

// FlushIndex makes every stored record visible to Find.
func (s *MemoryRecordStore) FlushIndex() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ref := range s.records {
		s.indexed[ref] = true
	}
}

// FailNextCreate injects an error for the next Create call.
func (s *MemoryRecordStore) FailNextCreate(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNextCreate = err
}

// FailNextSave injects an error for the next Save call.
func (s *MemoryRecordStore) FailNextSave(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNextSave = err
}

// FailNextFind injects an error for the next Find call.
func (s *MemoryRecordStore) FailNextFind(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNextFind = err
}

// WriteCount reports how many Create/Save calls succeeded.
func (s *MemoryRecordStore) WriteCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// RecordCount reports how many records exist.
func (s *MemoryRecordStore) RecordCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Get returns a copy of a stored record for assertions.
func (s *MemoryRecordStore) Get(ref model.RecordRef) (*model.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[ref]
	if !ok {
		return nil, false
	}
	return record.Clone(), true
}
