package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "itemsync/internal/shared/errors"
	"itemsync/internal/shared/logger"
	synchttp "itemsync/internal/sync/adapter/http"
	"itemsync/internal/sync/domain/model"
	"itemsync/internal/sync/usecase"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// Mock usecases
type mockUpsertUsecase struct {
	mock.Mock
}

func (m *mockUpsertUsecase) Upsert(ctx context.Context, req usecase.UpsertRequest) (*usecase.UpsertResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.UpsertResult), args.Error(1)
}

type mockNotifierUsecase struct {
	mock.Mock
}

func (m *mockNotifierUsecase) HandleMutation(ctx context.Context, mutation model.MutationContext) *model.ChangeEvent {
	args := m.Called(ctx, mutation)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*model.ChangeEvent)
}

type SyncHTTPTestSuite struct {
	suite.Suite
	app          *fiber.App
	mockUpsert   *mockUpsertUsecase
	mockNotifier *mockNotifierUsecase
}

func (suite *SyncHTTPTestSuite) SetupTest() {
	suite.mockUpsert = &mockUpsertUsecase{}
	suite.mockNotifier = &mockNotifierUsecase{}
	suite.app = fiber.New()

	handler := synchttp.NewSyncHTTPHandler(
		suite.mockUpsert,
		suite.mockNotifier,
		logger.NewLoggerWithConfig("error", "text"),
	)
	handler.SetupRoutes(suite.app)
}

func (suite *SyncHTTPTestSuite) postJSON(path string, payload interface{}, headers map[string]string) *http.Response {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest("POST", path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := suite.app.Test(req)
	require.NoError(suite.T(), err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	return decoded
}

func (suite *SyncHTTPTestSuite) TestUpsert_Created() {
	result := &usecase.UpsertResult{
		RecordID:  "rec-000001",
		Operation: model.OperationCreated,
		PersistedAttributes: map[string]interface{}{
			"naturalKey": "ITEM-001",
			"upcCode":    "012345678905",
		},
	}
	suite.mockUpsert.On("Upsert", mock.Anything, mock.MatchedBy(func(req usecase.UpsertRequest) bool {
		return req.Partition == "tenant-1" && req.NaturalKey == "ITEM-001"
	})).Return(result, nil)

	resp := suite.postJSON("/items/upsert", map[string]interface{}{
		"partition":  "tenant-1",
		"naturalKey": "ITEM-001",
		"attributes": map[string]interface{}{"upcCode": "012345678905"},
	}, nil)

	assert.Equal(suite.T(), http.StatusCreated, resp.StatusCode)
	body := decodeBody(suite.T(), resp)
	assert.Equal(suite.T(), true, body["success"])
	assert.Equal(suite.T(), "rec-000001", body["recordId"])
	assert.Equal(suite.T(), "created", body["operation"])
	suite.mockUpsert.AssertExpectations(suite.T())
}

func (suite *SyncHTTPTestSuite) TestUpsert_UpdatedReturns200() {
	result := &usecase.UpsertResult{
		RecordID:  "rec-000002",
		Operation: model.OperationUpdated,
	}
	suite.mockUpsert.On("Upsert", mock.Anything, mock.Anything).Return(result, nil)

	resp := suite.postJSON("/items/upsert", map[string]interface{}{
		"partition":  "tenant-1",
		"naturalKey": "ITEM-002",
		"attributes": map[string]interface{}{},
	}, nil)

	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)
	body := decodeBody(suite.T(), resp)
	assert.Equal(suite.T(), "updated", body["operation"])
}

func (suite *SyncHTTPTestSuite) TestUpsert_TenantHeaderOverridesBodyPartition() {
	result := &usecase.UpsertResult{RecordID: "rec-000003", Operation: model.OperationCreated}
	suite.mockUpsert.On("Upsert", mock.Anything, mock.MatchedBy(func(req usecase.UpsertRequest) bool {
		return req.Partition == "tenant-from-header"
	})).Return(result, nil)

	resp := suite.postJSON("/items/upsert", map[string]interface{}{
		"partition":  "tenant-from-body",
		"naturalKey": "ITEM-003",
		"attributes": map[string]interface{}{},
	}, map[string]string{synchttp.HeaderTenantID: "tenant-from-header"})

	assert.Equal(suite.T(), http.StatusCreated, resp.StatusCode)
	suite.mockUpsert.AssertExpectations(suite.T())
}

func (suite *SyncHTTPTestSuite) TestUpsert_ValidationErrorMapsTo400() {
	suite.mockUpsert.On("Upsert", mock.Anything, mock.Anything).
		Return(nil, apperrors.NewValidationError("required attribute \"crossLinkIdA\" is missing"))

	resp := suite.postJSON("/items/upsert", map[string]interface{}{
		"partition":  "tenant-1",
		"naturalKey": "ITEM-004",
		"attributes": map[string]interface{}{},
	}, nil)

	assert.Equal(suite.T(), http.StatusBadRequest, resp.StatusCode)
	body := decodeBody(suite.T(), resp)
	assert.Equal(suite.T(), false, body["success"])
	assert.Equal(suite.T(), string(apperrors.ErrorTypeValidation), body["errorType"])
	assert.Contains(suite.T(), body["error"], "crossLinkIdA")
}

func (suite *SyncHTTPTestSuite) TestUpsert_StoreErrorMapsTo502() {
	suite.mockUpsert.On("Upsert", mock.Anything, mock.Anything).
		Return(nil, apperrors.NewStoreError("create failed"))

	resp := suite.postJSON("/items/upsert", map[string]interface{}{
		"partition":  "tenant-1",
		"naturalKey": "ITEM-005",
		"attributes": map[string]interface{}{},
	}, nil)

	assert.Equal(suite.T(), http.StatusBadGateway, resp.StatusCode)
	body := decodeBody(suite.T(), resp)
	assert.Equal(suite.T(), string(apperrors.ErrorTypeStore), body["errorType"])
}

func (suite *SyncHTTPTestSuite) TestUpsert_MalformedBodyRejected() {
	req := httptest.NewRequest("POST", "/items/upsert", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")

	resp, err := suite.app.Test(req)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusBadRequest, resp.StatusCode)
	suite.mockUpsert.AssertNotCalled(suite.T(), "Upsert")
}

func (suite *SyncHTTPTestSuite) TestMutationHook_Emitted() {
	event := &model.ChangeEvent{ID: "evt-1", RecordID: "rec-000001"}
	suite.mockNotifier.On("HandleMutation", mock.Anything, mock.MatchedBy(func(m model.MutationContext) bool {
		return m.Origin == model.OriginUI && m.Operation == model.MutationEdit
	})).Return(event)

	resp := suite.postJSON("/hooks/mutation", map[string]interface{}{
		"recordId":   "rec-000001",
		"partition":  "tenant-1",
		"naturalKey": "ITEM-001",
		"origin":     "ui",
		"operation":  "edit",
		"values":     map[string]interface{}{"description": "after"},
		"priorValues": map[string]interface{}{
			"description": "before",
		},
	}, nil)

	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)
	body := decodeBody(suite.T(), resp)
	assert.Equal(suite.T(), true, body["emitted"])
	assert.Equal(suite.T(), "evt-1", body["eventId"])
}

func (suite *SyncHTTPTestSuite) TestMutationHook_SkippedStillReturns200() {
	suite.mockNotifier.On("HandleMutation", mock.Anything, mock.Anything).Return(nil)

	resp := suite.postJSON("/hooks/mutation", map[string]interface{}{
		"recordId":  "rec-000001",
		"partition": "tenant-1",
		"origin":    "import",
		"operation": "edit",
	}, nil)

	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)
	body := decodeBody(suite.T(), resp)
	assert.Equal(suite.T(), false, body["emitted"])
	_, hasEventID := body["eventId"]
	assert.False(suite.T(), hasEventID)
}

func (suite *SyncHTTPTestSuite) TestHealth() {
	req := httptest.NewRequest("GET", "/health", nil)
	resp, err := suite.app.Test(req)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)
}

func TestSyncHTTPTestSuite(t *testing.T) {
	suite.Run(t, new(SyncHTTPTestSuite))
}
