package repository

import (
	"context"

	"itemsync/internal/sync/domain/model"
)

// ChangeEventPublisher delivers emitted change events to a downstream
// consumer. Implementations must treat delivery as best-effort: the notifier
// logs and swallows every publish failure, and nothing retries here.
type ChangeEventPublisher interface {
	Publish(ctx context.Context, event model.ChangeEvent) error
}
