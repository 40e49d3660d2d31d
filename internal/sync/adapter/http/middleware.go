package http

import (
	"itemsync/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// HeaderTenantID carries the partition identifier on every API call.
const HeaderTenantID = "X-Tenant-ID"

// HeaderRequestID is echoed back so callers can correlate logs.
const HeaderRequestID = "X-Request-ID"

// TenantMiddleware places the partition and a request ID into the request
// context so use cases and the logger can pick them up via context keys.
func TenantMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		if tenantID := c.Get(HeaderTenantID); tenantID != "" {
			ctx = utils.WithTenantID(ctx, tenantID)
		}

		requestID := c.Get(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx = utils.WithRequestID(ctx, requestID)
		c.Set(HeaderRequestID, requestID)

		c.SetUserContext(ctx)
		return c.Next()
	}
}
