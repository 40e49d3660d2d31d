package utils

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTenantID_RoundTrip(t *testing.T) {
	ctx := WithTenantID(context.Background(), "tenant-1")
	tenantID, err := GetTenantIDFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tenant-1", tenantID)
}

func TestTenantID_Missing(t *testing.T) {
	_, err := GetTenantIDFromContext(context.Background())
	assert.ErrorIs(t, err, ErrTenantIDNotFound)
}

func TestRequestID_RoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	requestID, err := GetRequestIDFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "req-1", requestID)
}

func TestNaturalKey_RoundTrip(t *testing.T) {
	ctx := WithNaturalKey(context.Background(), "ITEM-001")
	naturalKey, err := GetNaturalKeyFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ITEM-001", naturalKey)

	_, err = GetNaturalKeyFromContext(context.Background())
	assert.ErrorIs(t, err, ErrNaturalKeyNotFound)
}
