package usecase

import (
	"itemsync/internal/shared/logger"
	"itemsync/internal/sync/domain/model"
)

// ReconcileMode distinguishes the create path from the update path.
type ReconcileMode int

const (
	ModeCreate ReconcileMode = iota
	ModeUpdate
)

func (m ReconcileMode) String() string {
	if m == ModeCreate {
		return "create"
	}
	return "update"
}

// AttributeReconciler applies a canonical attribute set to a record draft
// under the set-if-present policy: an attribute is written only when the
// canonical value is present, and absence leaves the target's current value
// untouched. That is what makes partial payloads safe on update.
type AttributeReconciler struct {
	policy *ReconciliationPolicy
	log    logger.Logger
}

// NewAttributeReconciler creates a reconciler bound to one policy version.
func NewAttributeReconciler(policy *ReconciliationPolicy, log logger.Logger) *AttributeReconciler {
	return &AttributeReconciler{
		policy: policy,
		log:    log.WithComponent("attribute-reconciler"),
	}
}

// Reconcile mutates the target draft in place. The canonicalizer has already
// rejected anything fatal and downgraded unparsable optional values to
// warnings, so every remaining decision here is set or skip.
func (r *AttributeReconciler) Reconcile(target *model.Record, canonical model.CanonicalAttributes, mode ReconcileMode) {
	for i := range r.policy.Attributes {
		spec := &r.policy.Attributes[i]

		if !canonical.Has(spec.Name) {
			continue
		}

		if spec.CreateOnly && mode == ModeUpdate {
			// The store forbids changing these post-creation.
			r.log.WithFields(map[string]interface{}{
				"attribute":   spec.Name,
				"natural_key": target.NaturalKey,
			}).Debug("Skipping create-only attribute in update mode")
			continue
		}

		target.SetAttribute(spec.Name, canonical[spec.Name])
		r.log.WithFields(map[string]interface{}{
			"attribute": spec.Name,
			"mode":      mode.String(),
		}).Debug("Attribute reconciled")
	}
}
