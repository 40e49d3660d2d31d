package usecase

import (
	"testing"

	"itemsync/internal/shared/logger"
	"itemsync/internal/sync/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLineReconciler() *LineReconciler {
	return NewLineReconciler(DefaultPolicy(), logger.NewLoggerWithConfig("error", "text"))
}

func TestLineReconcile_AppendsWhenKeyAbsent(t *testing.T) {
	r := newTestLineReconciler()
	record := model.NewRecord("tenant-1", "ITEM-001")

	r.Reconcile(record, "party-1", map[string]interface{}{"partyCode": "A"})

	lines := record.LineCollection("partyLines")
	require.Len(t, lines, 1)
	assert.Equal(t, "party-1", lines[0]["partyId"])
	assert.Equal(t, "A", lines[0]["partyCode"])
	assert.Equal(t, true, lines[0]["preferred"])
}

func TestLineReconcile_UpdatesInPlaceWhenKeyMatches(t *testing.T) {
	r := newTestLineReconciler()
	record := model.NewRecord("tenant-1", "ITEM-001")

	r.Reconcile(record, "party-1", map[string]interface{}{"partyCode": "A"})
	r.Reconcile(record, "party-1", map[string]interface{}{"partyCode": "B"})

	lines := record.LineCollection("partyLines")
	require.Len(t, lines, 1)
	assert.Equal(t, "B", lines[0]["partyCode"])
}

func TestLineReconcile_EmptyPayloadValuesPreserved(t *testing.T) {
	r := newTestLineReconciler()
	record := model.NewRecord("tenant-1", "ITEM-001")

	r.Reconcile(record, "party-1", map[string]interface{}{"partyCode": "A", "region": "EU"})
	r.Reconcile(record, "party-1", map[string]interface{}{"partyCode": "", "region": nil})

	lines := record.LineCollection("partyLines")
	require.Len(t, lines, 1)
	assert.Equal(t, "A", lines[0]["partyCode"])
	assert.Equal(t, "EU", lines[0]["region"])
}

func TestLineReconcile_DemotesOtherPreferredLines(t *testing.T) {
	r := newTestLineReconciler()
	record := model.NewRecord("tenant-1", "ITEM-001")

	r.Reconcile(record, "party-1", map[string]interface{}{"partyCode": "A"})
	r.Reconcile(record, "party-2", map[string]interface{}{"partyCode": "B"})

	lines := record.LineCollection("partyLines")
	require.Len(t, lines, 2)
	for _, line := range lines {
		if line["partyId"] == "party-2" {
			assert.Equal(t, true, line["preferred"])
		} else {
			assert.Equal(t, false, line["preferred"])
		}
	}
}

func TestLineReconcile_NumericKeyMatchesStringKey(t *testing.T) {
	r := newTestLineReconciler()
	record := model.NewRecord("tenant-1", "ITEM-001")
	record.SetLineCollection("partyLines", []model.LineEntry{
		{"partyId": 42, "partyCode": "A", "preferred": false},
	})

	r.Reconcile(record, "42", map[string]interface{}{"partyCode": "B"})

	lines := record.LineCollection("partyLines")
	require.Len(t, lines, 1)
	assert.Equal(t, "B", lines[0]["partyCode"])
}
