package usecase

import (
	"fmt"

	"itemsync/internal/shared/logger"
	"itemsync/internal/sync/domain/model"
)

// LineReconciler merges one sub-collection entry into a record draft by
// matching the key field: update in place when a line with the key exists,
// append otherwise. This is what keeps repeated upserts from appending
// duplicate lines indefinitely.
type LineReconciler struct {
	policy *ReconciliationPolicy
	log    logger.Logger
}

// NewLineReconciler creates a line reconciler bound to one policy version.
func NewLineReconciler(policy *ReconciliationPolicy, log logger.Logger) *LineReconciler {
	return &LineReconciler{
		policy: policy,
		log:    log.WithComponent("line-reconciler"),
	}
}

// Reconcile merges the payload under keyValue into the policy's line
// collection. The preferred flag is forced true on the reconciled line; when
// the policy demotes, every other line loses it, so at most one entry stays
// preferred.
func (r *LineReconciler) Reconcile(target *model.Record, keyValue string, payload map[string]interface{}) {
	collection := r.policy.LineCollection
	keyField := r.policy.LineKeyField
	lines := target.LineCollection(collection)

	matched := -1
	for i, line := range lines {
		if lineKey(line, keyField) == keyValue {
			matched = i
			break
		}
	}

	if matched >= 0 {
		line := lines[matched]
		for field, value := range payload {
			if value == nil {
				continue
			}
			if s, isStr := value.(string); isStr && s == "" {
				continue
			}
			line[field] = value
		}
		line[r.policy.PreferredField] = true
		r.log.WithFields(map[string]interface{}{
			"collection": collection,
			"key":        keyValue,
		}).Debug("Updated existing line in place")
	} else {
		line := model.LineEntry{keyField: keyValue}
		for field, value := range payload {
			line[field] = value
		}
		line[r.policy.PreferredField] = true
		lines = append(lines, line)
		matched = len(lines) - 1
		r.log.WithFields(map[string]interface{}{
			"collection": collection,
			"key":        keyValue,
		}).Debug("Appended new line")
	}

	if r.policy.DemotePreferred {
		for i, line := range lines {
			if i != matched {
				line[r.policy.PreferredField] = false
			}
		}
	}

	target.SetLineCollection(collection, lines)
}

// lineKey reads the key field of a line as a string, tolerating numeric keys.
func lineKey(line model.LineEntry, keyField string) string {
	v, ok := line[keyField]
	if !ok || v == nil {
		return ""
	}
	if s, isStr := v.(string); isStr {
		return s
	}
	return fmt.Sprintf("%v", v)
}
