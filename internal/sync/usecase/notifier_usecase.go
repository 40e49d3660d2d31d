package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"itemsync/internal/shared/eventbus"
	"itemsync/internal/shared/logger"
	"itemsync/internal/shared/metrics"
	"itemsync/internal/shared/utils"
	"itemsync/internal/sync/domain/model"
	"itemsync/internal/sync/domain/repository"

	"github.com/google/uuid"
)

// NotifierUsecase runs after an external-side mutation: it classifies the
// mutation's origin, filters by operation type, diffs the watched attributes
// and, only when all three gates pass, emits one change event. Origin
// classification is the loop breaker: the engine's own writes are
// API-originated by construction and never get past the first gate.
type NotifierUsecase struct {
	policy     *ReconciliationPolicy
	publishers []repository.ChangeEventPublisher
	bus        eventbus.EventBusInterface
	log        logger.Logger
}

// NewNotifierUsecase creates the outbound notifier. The bus may be nil when
// no embedded consumers exist; publishers may be empty in tests.
func NewNotifierUsecase(policy *ReconciliationPolicy, bus eventbus.EventBusInterface, log logger.Logger, publishers ...repository.ChangeEventPublisher) *NotifierUsecase {
	return &NotifierUsecase{
		policy:     policy,
		publishers: publishers,
		bus:        bus,
		log:        log.WithComponent("outbound-notifier"),
	}
}

// HandleMutation processes one mutation. It never fails the caller: every
// classification, diff, or delivery error is logged and swallowed, because a
// notification failure must not roll back the mutation that triggered it.
func (uc *NotifierUsecase) HandleMutation(ctx context.Context, mutation model.MutationContext) *model.ChangeEvent {
	ctx = utils.WithNaturalKey(utils.WithTenantID(ctx, mutation.Partition), mutation.NaturalKey)
	log := uc.log.WithContext(ctx)

	if !mutation.Origin.IsHuman() {
		metrics.ObserveChangeEvent("skipped_origin")
		log.WithFields(map[string]interface{}{
			"origin": string(mutation.Origin),
		}).Debug("Skipping programmatic-origin mutation")
		return nil
	}

	if mutation.Operation != model.MutationEdit {
		metrics.ObserveChangeEvent("skipped_operation")
		log.WithFields(map[string]interface{}{
			"operation": string(mutation.Operation),
		}).Debug("Skipping non-edit mutation")
		return nil
	}

	changed := uc.diffWatched(mutation)
	if len(changed) == 0 {
		metrics.ObserveChangeEvent("skipped_nochange")
		log.Debug("No watched attribute changed; nothing to emit")
		return nil
	}

	event := &model.ChangeEvent{
		ID:          uuid.NewString(),
		RecordID:    mutation.RecordID,
		Partition:   mutation.Partition,
		NaturalKey:  mutation.NaturalKey,
		Changed:     changed,
		RoutingFlag: mutation.RoutingFlag,
		EmittedAt:   time.Now().UTC(),
	}

	uc.deliver(ctx, event, log)
	return event
}

// deliver fans the event out to the in-process bus and every configured
// publisher. Failures are logged, counted, and swallowed.
func (uc *NotifierUsecase) deliver(ctx context.Context, event *model.ChangeEvent, log logger.Logger) {
	failed := false

	if uc.bus != nil {
		busEvent := eventbus.NewBasicEventWithSource(eventbus.EventTypeItemChanged, event, "outbound-notifier")
		if err := uc.bus.Publish(ctx, busEvent); err != nil {
			failed = true
			log.Errorf("In-process delivery failed: %v", err)
		}
	}

	for _, publisher := range uc.publishers {
		if err := publisher.Publish(ctx, *event); err != nil {
			failed = true
			log.Errorf("Change event delivery failed: %v", err)
		}
	}

	if failed {
		metrics.ObserveChangeEvent("failed")
	} else {
		metrics.ObserveChangeEvent("emitted")
	}
	log.WithFields(map[string]interface{}{
		"event_id": event.ID,
		"changed":  len(event.Changed),
	}).Info("Change event emitted")
}

// diffWatched compares prior and new values of every watched attribute.
// Numeric attributes are compared as parsed numbers, with missing or
// unparsable values defaulting to zero, so "10" versus 10.0 is not a change.
func (uc *NotifierUsecase) diffWatched(mutation model.MutationContext) []model.AttributeDiff {
	var changed []model.AttributeDiff

	for _, name := range uc.policy.WatchedAttributes() {
		spec, _ := uc.policy.Spec(name)
		oldValue := mutation.PriorValues[name]
		newValue := mutation.Values[name]

		var differs bool
		switch spec.Type {
		case model.AttributeTypeInt, model.AttributeTypeDecimal:
			differs = numericValue(oldValue) != numericValue(newValue)
		case model.AttributeTypeBool:
			oldB, _ := coerceBool(orFalse(oldValue))
			newB, _ := coerceBool(orFalse(newValue))
			differs = oldB != newB
		default:
			differs = stringValue(oldValue) != stringValue(newValue)
		}

		if differs {
			changed = append(changed, model.AttributeDiff{
				Name:     name,
				OldValue: oldValue,
				NewValue: newValue,
			})
		}
	}

	return changed
}

// numericValue parses any representation to a float, defaulting to zero, to
// avoid false positives from string formatting differences.
func numericValue(v interface{}) float64 {
	switch n := v.(type) {
	case nil:
		return 0
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func stringValue(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func orFalse(v interface{}) interface{} {
	if v == nil {
		return false
	}
	return v
}
