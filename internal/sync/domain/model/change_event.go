package model

import "time"

// MutationOrigin classifies what kind of actor produced a mutation on the
// external side. Only UI-originated (human-interactive) mutations may emit
// outbound change events; every programmatic origin is skipped, which is the
// mechanism that keeps the engine's own writes from re-triggering sync.
type MutationOrigin string

const (
	OriginUI        MutationOrigin = "ui"
	OriginAPI       MutationOrigin = "api"
	OriginImport    MutationOrigin = "import"
	OriginScheduled MutationOrigin = "scheduled"
	OriginWorkflow  MutationOrigin = "workflow"
)

// IsHuman reports whether the origin is a human-interactive edit.
func (o MutationOrigin) IsHuman() bool {
	return o == OriginUI
}

// MutationOperation is the kind of mutation the hook observed.
type MutationOperation string

const (
	MutationCreate MutationOperation = "create"
	MutationEdit   MutationOperation = "edit"
	MutationDelete MutationOperation = "delete"
)

// MutationContext carries everything the notifier needs about one external
// mutation. It is passed explicitly; the notifier never reads ambient
// platform state, so classification is independently testable.
type MutationContext struct {
	RecordID   RecordRef              `json:"recordId"`
	Partition  string                 `json:"partition"`
	NaturalKey string                 `json:"naturalKey"`
	Origin     MutationOrigin         `json:"origin"`
	Operation  MutationOperation      `json:"operation"`
	// Values holds the post-mutation attribute values.
	Values map[string]interface{} `json:"values"`
	// PriorValues holds the pre-mutation values of the same attributes.
	PriorValues map[string]interface{} `json:"priorValues"`
	// RoutingFlag is carried from the record into the emitted event; the
	// consuming system uses it as its own re-processing guard.
	RoutingFlag bool `json:"routingFlag"`
}

// AttributeDiff is one watched attribute whose value changed.
type AttributeDiff struct {
	Name     string      `json:"name"`
	OldValue interface{} `json:"oldValue"`
	NewValue interface{} `json:"newValue"`
}

// ChangeEvent is emitted at most once per qualifying mutation, carrying all
// changed watched attributes. It is transient; persistence, if any, belongs
// to the consumer.
type ChangeEvent struct {
	ID          string          `json:"id"`
	RecordID    RecordRef       `json:"recordId"`
	Partition   string          `json:"partition"`
	NaturalKey  string          `json:"naturalKey"`
	Changed     []AttributeDiff `json:"changedAttributes"`
	RoutingFlag bool            `json:"routingFlag"`
	EmittedAt   time.Time       `json:"emittedAt"`
}
