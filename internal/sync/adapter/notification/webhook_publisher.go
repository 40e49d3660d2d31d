package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	apperrors "itemsync/internal/shared/errors"
	"itemsync/internal/shared/logger"
	"itemsync/internal/sync/domain/model"

	"github.com/golang-jwt/jwt/v5"
)

const (
	defaultTimeout  = 10 * time.Second
	tokenLifetime   = 2 * time.Minute
	tokenIssuer     = "itemsync"
	headerEventID   = "X-Itemsync-Event-Id"
	headerPartition = "X-Itemsync-Partition"
)

// WebhookPublisher delivers change events to a configured endpoint over an
// authenticated channel: each POST carries a short-lived HS256 bearer token
// so the consumer can verify the sender. Non-2xx responses are logged and
// reported, never retried here.
type WebhookPublisher struct {
	endpoint string
	secret   []byte
	client   *http.Client
	logger   logger.Logger
}

// NewWebhookPublisher creates a webhook publisher. A zero timeout uses the
// default.
func NewWebhookPublisher(endpoint, secret string, timeout time.Duration, log logger.Logger) *WebhookPublisher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &WebhookPublisher{
		endpoint: endpoint,
		secret:   []byte(secret),
		client:   &http.Client{Timeout: timeout},
		logger:   log.WithComponent("webhook-publisher"),
	}
}

// Publish posts one change event to the endpoint.
func (p *WebhookPublisher) Publish(ctx context.Context, event model.ChangeEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return apperrors.NewNotificationError("failed to serialize change event").WithCause(err)
	}

	token, err := p.signToken(event)
	if err != nil {
		return apperrors.NewNotificationError("failed to sign delivery token").WithCause(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return apperrors.NewNotificationError("failed to build webhook request").WithCause(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set(headerEventID, event.ID)
	req.Header.Set(headerPartition, event.Partition)

	resp, err := p.client.Do(req)
	if err != nil {
		return apperrors.NewNotificationError("webhook delivery failed").WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		p.logger.WithFields(map[string]interface{}{
			"event_id": event.ID,
			"status":   resp.StatusCode,
		}).Error("Webhook endpoint rejected change event")
		return apperrors.NewNotificationError(
			fmt.Sprintf("webhook endpoint returned status %d", resp.StatusCode)).
			WithDetail("eventId", event.ID)
	}

	p.logger.WithFields(map[string]interface{}{
		"event_id": event.ID,
		"status":   resp.StatusCode,
	}).Debug("Change event delivered")
	return nil
}

// signToken issues the per-delivery bearer token.
func (p *WebhookPublisher) signToken(event model.ChangeEvent) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   string(event.RecordID),
		ID:        event.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenLifetime)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
}
