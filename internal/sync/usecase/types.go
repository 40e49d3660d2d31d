package usecase

import (
	"context"

	apperrors "itemsync/internal/shared/errors"
	"itemsync/internal/sync/domain/model"
)

// PartyLine is the optional party-line payload of an upsert request.
type PartyLine struct {
	PartyID   string `json:"partyId"`
	PartyCode string `json:"partyCode,omitempty"`
}

// UpsertRequest is the inbound contract of the upsert resolver. Attributes
// carries the open, possibly alias-laden payload; canonicalization happens
// inside the resolver before any business logic runs.
type UpsertRequest struct {
	Partition  string                 `json:"partition"`
	NaturalKey string                 `json:"naturalKey"`
	Attributes map[string]interface{} `json:"attributes"`
	Party      *PartyLine             `json:"party,omitempty"`
}

// UpsertResult reports a definite verdict. PersistedAttributes is a
// read-back of the key attributes actually stored, so callers can verify the
// write independently of the store's own response.
type UpsertResult struct {
	RecordID            model.RecordRef              `json:"recordId"`
	Operation           model.OperationType          `json:"operation"`
	PersistedAttributes map[string]interface{}       `json:"persistedAttributes"`
	Warnings            []apperrors.AttributeWarning `json:"warnings,omitempty"`
}

// UpsertUsecaseInterface is the public surface of the upsert resolver.
type UpsertUsecaseInterface interface {
	Upsert(ctx context.Context, req UpsertRequest) (*UpsertResult, error)
}

// NotifierUsecaseInterface is the public surface of the outbound notifier.
// HandleMutation never returns an error: notification failures are logged
// and swallowed so they cannot fail the mutation that triggered them. The
// returned event is nil whenever the mutation did not qualify.
type NotifierUsecaseInterface interface {
	HandleMutation(ctx context.Context, mutation model.MutationContext) *model.ChangeEvent
}
