package usecase

import (
	"testing"

	"itemsync/internal/shared/logger"
	"itemsync/internal/sync/domain/model"

	"github.com/stretchr/testify/assert"
)

func newTestAttributeReconciler() *AttributeReconciler {
	return NewAttributeReconciler(DefaultPolicy(), logger.NewLoggerWithConfig("error", "text"))
}

func TestAttributeReconcile_SetIfPresent(t *testing.T) {
	r := newTestAttributeReconciler()
	record := model.NewRecord("tenant-1", "ITEM-001")
	record.SetAttribute(AttrDescription, "existing")
	record.SetAttribute(AttrWeight, 1.0)

	r.Reconcile(record, model.CanonicalAttributes{
		AttrWeight: 2.5,
	}, ModeUpdate)

	desc, _ := record.GetAttribute(AttrDescription)
	assert.Equal(t, "existing", desc, "absent attribute must stay untouched")
	weight, _ := record.GetAttribute(AttrWeight)
	assert.Equal(t, 2.5, weight)
}

func TestAttributeReconcile_CreateOnlySetOnCreate(t *testing.T) {
	r := newTestAttributeReconciler()
	record := model.NewRecord("tenant-1", "ITEM-001")

	r.Reconcile(record, model.CanonicalAttributes{AttrBaseUnit: "EA"}, ModeCreate)

	unit, ok := record.GetAttribute(AttrBaseUnit)
	assert.True(t, ok)
	assert.Equal(t, "EA", unit)
}

func TestAttributeReconcile_CreateOnlySkippedOnUpdate(t *testing.T) {
	r := newTestAttributeReconciler()
	record := model.NewRecord("tenant-1", "ITEM-001")
	record.SetAttribute(AttrBaseUnit, "EA")

	r.Reconcile(record, model.CanonicalAttributes{
		AttrBaseUnit:    "KG",
		AttrDescription: "still applied",
	}, ModeUpdate)

	unit, _ := record.GetAttribute(AttrBaseUnit)
	assert.Equal(t, "EA", unit)
	desc, _ := record.GetAttribute(AttrDescription)
	assert.Equal(t, "still applied", desc)
}

func TestAttributeReconcile_UnknownAttributesIgnored(t *testing.T) {
	r := newTestAttributeReconciler()
	record := model.NewRecord("tenant-1", "ITEM-001")

	// The reconciler walks the policy table, so values outside it never land.
	r.Reconcile(record, model.CanonicalAttributes{"color": "red"}, ModeCreate)

	_, ok := record.GetAttribute("color")
	assert.False(t, ok)
}
