package http

import (
	"errors"

	apperrors "itemsync/internal/shared/errors"
	"itemsync/internal/shared/logger"
	"itemsync/internal/sync/domain/model"
	"itemsync/internal/sync/usecase"

	"github.com/gofiber/fiber/v2"
)

// SyncHTTPHandler exposes the upsert resolver and the mutation hook over HTTP.
type SyncHTTPHandler struct {
	upsert   usecase.UpsertUsecaseInterface
	notifier usecase.NotifierUsecaseInterface
	logger   logger.Logger
}

// NewSyncHTTPHandler creates the HTTP handler for the sync engine.
func NewSyncHTTPHandler(upsert usecase.UpsertUsecaseInterface, notifier usecase.NotifierUsecaseInterface, log logger.Logger) *SyncHTTPHandler {
	return &SyncHTTPHandler{
		upsert:   upsert,
		notifier: notifier,
		logger:   log.WithComponent("sync-http"),
	}
}

// SetupRoutes registers the sync engine routes on the router.
func (h *SyncHTTPHandler) SetupRoutes(router fiber.Router) {
	router.Post("/items/upsert", h.Upsert)
	router.Post("/hooks/mutation", h.MutationHook)
	router.Get("/health", h.Health)
}

// upsertHTTPRequest is the JSON body of the upsert endpoint. The partition
// may come from the body or the X-Tenant-ID header; the header wins.
type upsertHTTPRequest struct {
	Partition  string                 `json:"partition"`
	NaturalKey string                 `json:"naturalKey"`
	Attributes map[string]interface{} `json:"attributes"`
	Party      *usecase.PartyLine     `json:"party,omitempty"`
}

// upsertHTTPResponse is the definite verdict returned to every caller.
type upsertHTTPResponse struct {
	Success             bool                   `json:"success"`
	RecordID            string                 `json:"recordId,omitempty"`
	Operation           string                 `json:"operation,omitempty"`
	PersistedAttributes map[string]interface{} `json:"persistedAttributes,omitempty"`
	Warnings            interface{}            `json:"warnings,omitempty"`
	Error               string                 `json:"error,omitempty"`
	ErrorType           string                 `json:"errorType,omitempty"`
}

// Upsert handles POST /items/upsert.
func (h *SyncHTTPHandler) Upsert(c *fiber.Ctx) error {
	var body upsertHTTPRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(upsertHTTPResponse{
			Success:   false,
			Error:     "invalid request body",
			ErrorType: string(apperrors.ErrorTypeValidation),
		})
	}

	if tenantID := c.Get(HeaderTenantID); tenantID != "" {
		body.Partition = tenantID
	}

	result, err := h.upsert.Upsert(c.UserContext(), usecase.UpsertRequest{
		Partition:  body.Partition,
		NaturalKey: body.NaturalKey,
		Attributes: body.Attributes,
		Party:      body.Party,
	})
	if err != nil {
		return h.failureResponse(c, err)
	}

	response := upsertHTTPResponse{
		Success:             true,
		RecordID:            string(result.RecordID),
		Operation:           string(result.Operation),
		PersistedAttributes: result.PersistedAttributes,
	}
	if len(result.Warnings) > 0 {
		response.Warnings = result.Warnings
	}

	status := fiber.StatusOK
	if result.Operation == model.OperationCreated {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(response)
}

// mutationHookResponse reports whether the hook emitted a change event.
type mutationHookResponse struct {
	Emitted bool   `json:"emitted"`
	EventID string `json:"eventId,omitempty"`
}

// MutationHook handles POST /hooks/mutation: the external platform calls it
// after each record mutation. It always answers 200 once the body parses;
// notifier failures never surface to the mutation that triggered them.
func (h *SyncHTTPHandler) MutationHook(c *fiber.Ctx) error {
	var mutation model.MutationContext
	if err := c.BodyParser(&mutation); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid mutation payload",
		})
	}

	if tenantID := c.Get(HeaderTenantID); tenantID != "" {
		mutation.Partition = tenantID
	}

	event := h.notifier.HandleMutation(c.UserContext(), mutation)
	if event == nil {
		return c.JSON(mutationHookResponse{Emitted: false})
	}
	return c.JSON(mutationHookResponse{Emitted: true, EventID: event.ID})
}

// Health handles GET /health.
func (h *SyncHTTPHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// failureResponse maps an AppError onto the structured failure shape.
func (h *SyncHTTPHandler) failureResponse(c *fiber.Ctx, err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		response := upsertHTTPResponse{
			Success:   false,
			Error:     appErr.Message,
			ErrorType: string(appErr.Type),
		}
		return c.Status(appErr.HTTPCode).JSON(response)
	}

	h.logger.Errorf("Unclassified upsert failure: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(upsertHTTPResponse{
		Success:   false,
		Error:     err.Error(),
		ErrorType: string(apperrors.ErrorTypeInternal),
	})
}
