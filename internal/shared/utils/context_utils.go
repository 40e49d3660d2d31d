package utils

import (
	"context"
	"errors"

	"itemsync/internal/shared/contextkeys"
)

// Common context errors
var (
	ErrTenantIDNotFound    = errors.New("tenantID not found in context")
	ErrTenantIDNotString   = errors.New("tenantID in context is not a string")
	ErrRequestIDNotFound   = errors.New("requestID not found in context")
	ErrRequestIDNotString  = errors.New("requestID in context is not a string")
	ErrNaturalKeyNotFound  = errors.New("naturalKey not found in context")
	ErrNaturalKeyNotString = errors.New("naturalKey in context is not a string")
)

// GetTenantIDFromContext retrieves the partition (tenant) identifier from the
// context. It returns an error if the value is missing or not a string.
func GetTenantIDFromContext(ctx context.Context) (string, error) {
	val := ctx.Value(contextkeys.TenantIDKey)
	if val == nil {
		return "", ErrTenantIDNotFound
	}
	tenantID, ok := val.(string)
	if !ok {
		return "", ErrTenantIDNotString
	}
	return tenantID, nil
}

// GetRequestIDFromContext retrieves the request ID from the context.
func GetRequestIDFromContext(ctx context.Context) (string, error) {
	val := ctx.Value(contextkeys.RequestIDKey)
	if val == nil {
		return "", ErrRequestIDNotFound
	}
	requestID, ok := val.(string)
	if !ok {
		return "", ErrRequestIDNotString
	}
	return requestID, nil
}

// GetNaturalKeyFromContext retrieves the natural key being processed.
func GetNaturalKeyFromContext(ctx context.Context) (string, error) {
	val := ctx.Value(contextkeys.NaturalKeyKey)
	if val == nil {
		return "", ErrNaturalKeyNotFound
	}
	naturalKey, ok := val.(string)
	if !ok {
		return "", ErrNaturalKeyNotString
	}
	return naturalKey, nil
}

// WithTenantID returns a context carrying the partition identifier.
func WithTenantID(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, contextkeys.TenantIDKey, tenantID)
}

// WithRequestID returns a context carrying the request identifier.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextkeys.RequestIDKey, requestID)
}

// WithNaturalKey returns a context carrying the natural key being processed.
func WithNaturalKey(ctx context.Context, naturalKey string) context.Context {
	return context.WithValue(ctx, contextkeys.NaturalKeyKey, naturalKey)
}
