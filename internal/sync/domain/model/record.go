package model

import "time"

// RecordRef is the opaque store-assigned reference to a persisted record.
// It is assigned on creation and immutable thereafter.
type RecordRef string

// OperationType tags the outcome of an upsert.
type OperationType string

const (
	OperationCreated OperationType = "created"
	OperationUpdated OperationType = "updated"
)

// Record is the in-memory draft of one external record. It is loaded (or
// instantiated) once per upsert, mutated by the reconcilers, and persisted by
// a single Save. The store serializes writes per record; the draft is never
// shared between operations.
type Record struct {
	Ref        RecordRef              `json:"ref,omitempty"`
	Partition  string                 `json:"partition"`
	NaturalKey string                 `json:"naturalKey"`
	Attributes map[string]interface{} `json:"attributes"`
	Lines      map[string][]LineEntry `json:"lines,omitempty"`
	Version    int64                  `json:"version"`
	CreatedAt  time.Time              `json:"createdAt"`
	UpdatedAt  time.Time              `json:"updatedAt"`
}

// NewRecord instantiates an unsaved draft for the create path.
func NewRecord(partition, naturalKey string) *Record {
	return &Record{
		Partition:  partition,
		NaturalKey: naturalKey,
		Attributes: make(map[string]interface{}),
		Lines:      make(map[string][]LineEntry),
	}
}

// GetAttribute returns an attribute value and whether it is set.
func (r *Record) GetAttribute(name string) (interface{}, bool) {
	if r.Attributes == nil {
		return nil, false
	}
	v, ok := r.Attributes[name]
	return v, ok
}

// SetAttribute writes one attribute on the draft.
func (r *Record) SetAttribute(name string, value interface{}) {
	if r.Attributes == nil {
		r.Attributes = make(map[string]interface{})
	}
	r.Attributes[name] = value
}

// LineCollection returns the named sub-collection. The returned slice is the
// live collection; callers mutate it through SetLineCollection.
func (r *Record) LineCollection(name string) []LineEntry {
	if r.Lines == nil {
		return nil
	}
	return r.Lines[name]
}

// SetLineCollection replaces the named sub-collection on the draft.
func (r *Record) SetLineCollection(name string, entries []LineEntry) {
	if r.Lines == nil {
		r.Lines = make(map[string][]LineEntry)
	}
	r.Lines[name] = entries
}

// Clone produces a deep copy of the record. Stores hand out clones so one
// caller's draft never aliases another's.
func (r *Record) Clone() *Record {
	clone := &Record{
		Ref:        r.Ref,
		Partition:  r.Partition,
		NaturalKey: r.NaturalKey,
		Attributes: make(map[string]interface{}, len(r.Attributes)),
		Lines:      make(map[string][]LineEntry, len(r.Lines)),
		Version:    r.Version,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
	for k, v := range r.Attributes {
		clone.Attributes[k] = v
	}
	for name, entries := range r.Lines {
		copied := make([]LineEntry, len(entries))
		for i, entry := range entries {
			copied[i] = entry.Clone()
		}
		clone.Lines[name] = copied
	}
	return clone
}

// LineEntry is one row of a sub-collection: the key field plus zero or more
// payload fields. At most one entry per key value exists within a collection;
// the line reconciler enforces that, not the store.
type LineEntry map[string]interface{}

// Clone copies the entry.
func (e LineEntry) Clone() LineEntry {
	clone := make(LineEntry, len(e))
	for k, v := range e {
		clone[k] = v
	}
	return clone
}
