package contextkeys

// contextKey is an unexported type to prevent collisions with context keys defined in
// other packages.
type contextKey string

// String makes contextKey satisfy the Stringer interface to assist with debugging.
func (c contextKey) String() string {
	return "itemsync context key " + string(c)
}

// TenantIDKey is the key for the partition (tenant) identifier in context.Context.
const TenantIDKey = contextKey("tenantID")

// NaturalKeyKey is the key for the item natural key currently being processed.
const NaturalKeyKey = contextKey("naturalKey")

// RequestIDKey is the key for the per-call request identifier.
const RequestIDKey = contextKey("requestID")

// ComponentKey is the key for the component name emitting a log entry.
const ComponentKey = contextKey("component")

// OperationKey is the key for the operation name ("upsert", "notify").
const OperationKey = contextKey("operation")
