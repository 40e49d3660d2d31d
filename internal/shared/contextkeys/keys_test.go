package contextkeys

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextKey_String(t *testing.T) {
	key := contextKey("testKey")
	assert.Equal(t, "itemsync context key testKey", key.String())
}

func TestContextKeys_Usage(t *testing.T) {
	ctx := context.Background()
	ctx = context.WithValue(ctx, TenantIDKey, "tenant-abc")
	ctx = context.WithValue(ctx, NaturalKeyKey, "ITEM-001")
	ctx = context.WithValue(ctx, RequestIDKey, "req-456")
	ctx = context.WithValue(ctx, ComponentKey, "upsert-resolver")
	ctx = context.WithValue(ctx, OperationKey, "upsert")

	assert.Equal(t, "tenant-abc", ctx.Value(TenantIDKey))
	assert.Equal(t, "ITEM-001", ctx.Value(NaturalKeyKey))
	assert.Equal(t, "req-456", ctx.Value(RequestIDKey))
	assert.Equal(t, "upsert-resolver", ctx.Value(ComponentKey))
	assert.Equal(t, "upsert", ctx.Value(OperationKey))
}
