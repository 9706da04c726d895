package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rxbridge-service/internal/cache"
	"rxbridge-service/internal/compliance"
	"rxbridge-service/internal/domain"
	"rxbridge-service/internal/events"
	"rxbridge-service/internal/recommendation"
	"rxbridge-service/internal/repository"
	"rxbridge-service/internal/scan"
	"rxbridge-service/pkg/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockScanService is a mock implementation of ScanService
type MockScanService struct {
	mock.Mock
}

func (m *MockScanService) Run(ctx context.Context, session string) (*scan.Result, error) {
	args := m.Called(ctx, session)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*scan.Result), args.Error(1)
}

func (m *MockScanService) Latest(ctx context.Context, session string) (*scan.Result, error) {
	args := m.Called(ctx, session)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*scan.Result), args.Error(1)
}

func (m *MockScanService) Clear(ctx context.Context, session string) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func setupRouter(h *InventoryHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.ErrorHandler(zap.NewNop()))
	router.Use(func(c *gin.Context) {
		c.Set(middleware.SessionContextKey, "pharmacist")
		c.Next()
	})
	router.GET("/health", HealthCheck)
	inventory := router.Group("/api/v1/inventory")
	inventory.POST("/run", h.RunScan)
	inventory.GET("/scan/latest", h.GetLatestScan)
	inventory.DELETE("/scan/latest", h.ClearLatestScan)
	inventory.GET("/items", h.ListItems)
	inventory.GET("/items/:drug/recommendation", h.GetRecommendation)
	return router
}

func demoHandler() *InventoryHandler {
	return handlerFor(repository.NewInMemoryInventoryRepository(repository.DemoInventory()...))
}

func handlerFor(inventory repository.InventoryRepository) *InventoryHandler {
	logger := zap.NewNop()
	service := scan.NewService(
		inventory,
		compliance.NewAggregator([]compliance.Source{
			compliance.NewStaticSource(compliance.SourceRecallAPI, compliance.DemoSignals()),
		}, nil, logger),
		cache.NewInMemoryCache(),
		events.NewInMemoryEventPublisher(logger),
		nil,
		time.Hour,
		logger,
	)
	return NewInventoryHandler(service, recommendation.NewRuleBasedProvider(), logger)
}

func perform(router *gin.Engine, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func TestRunScan_Success(t *testing.T) {
	// Setup
	router := setupRouter(demoHandler())

	// Execute
	w := perform(router, http.MethodPost, "/api/v1/inventory/run")

	// Assert
	require.Equal(t, http.StatusOK, w.Code)

	var response ScanResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "success", response.Status)
	assert.NotEmpty(t, response.ScanID)
	assert.Equal(t, 8, response.Summary.TotalItemsChecked)
	assert.Equal(t, 5, response.Summary.ItemsRequiringAttention)
	assert.Equal(t, 3, response.Summary.ItemsRequiringImmediateAction)
	assert.Equal(t, map[string]int{"RED": 1, "PURPLE": 2, "YELLOW": 1, "BLUE": 1, "NONE": 3}, response.Summary.AlertBreakdown)
	assert.Len(t, response.Recalls, 3)
	assert.Len(t, response.OtherAlerts, 2)
	assert.Empty(t, response.Errors)
	assert.False(t, response.Degraded)

	assert.Equal(t, "Metformin 500mg Tablets", response.Recalls[1].DrugName)
	assert.Equal(t, "Recalled", response.Recalls[1].FDAStatus)
	assert.Equal(t, "Class II", response.Recalls[1].RecallClassification)
}

func TestRunScan_OrdersAlertsByUrgencyThenDays(t *testing.T) {
	// Setup
	router := setupRouter(handlerFor(repository.NewInMemoryInventoryRepository(
		domain.InventoryItem{DrugName: "Atorvastatin", CurrentStock: 900, AverageDailyDispense: 25},
		domain.InventoryItem{DrugName: "Ibuprofen", CurrentStock: 40, AverageDailyDispense: 2},
		domain.InventoryItem{DrugName: "Amlodipine", CurrentStock: 640, AverageDailyDispense: 20},
		domain.InventoryItem{DrugName: "Albuterol", CurrentStock: 30, AverageDailyDispense: 5},
		domain.InventoryItem{DrugName: "Lisinopril", CurrentStock: 120, AverageDailyDispense: 15},
	)))

	// Execute
	w := perform(router, http.MethodPost, "/api/v1/inventory/run")

	// Assert
	require.Equal(t, http.StatusOK, w.Code)
	var response ScanResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	drugNames := func(items []ItemResponse) []string {
		out := make([]string, len(items))
		for i, item := range items {
			out[i] = item.DrugName
		}
		return out
	}
	assert.Equal(t, []string{"Lisinopril", "Amlodipine", "Atorvastatin"}, drugNames(response.Recalls))
	assert.Equal(t, []string{"Albuterol", "Ibuprofen"}, drugNames(response.OtherAlerts))
}

func TestRunScan_WireFormat(t *testing.T) {
	router := setupRouter(demoHandler())
	require.Equal(t, http.StatusOK, perform(router, http.MethodPost, "/api/v1/inventory/run").Code)

	w := perform(router, http.MethodGet, "/api/v1/inventory/items?search=insulin")

	require.Equal(t, http.StatusOK, w.Code)
	var raw struct {
		Items []map[string]interface{} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	require.Len(t, raw.Items, 1)
	assert.Equal(t, "infinite", raw.Items[0]["days_of_supply"])
	assert.Equal(t, "NONE", raw.Items[0]["alert_level"])
	assert.Equal(t, "No Issues", raw.Items[0]["fda_status"])
	assert.NotContains(t, raw.Items[0], "recall_reason")
}

func TestRunScan_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
		code     string
	}{
		{"in progress", scan.ErrScanInProgress, http.StatusConflict, "ScanInProgress"},
		{"no inventory", scan.ErrNoInventory, http.StatusNotFound, "NoInventory"},
		{"inventory unavailable", errors.Join(scan.ErrInventoryUnavailable, errors.New("disk I/O error")), http.StatusBadGateway, "InventoryUnavailable"},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "InternalError"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup
			scans := new(MockScanService)
			scans.On("Run", mock.Anything, "pharmacist").Return(nil, tt.err)
			router := setupRouter(NewInventoryHandler(scans, recommendation.NewRuleBasedProvider(), zap.NewNop()))

			// Execute
			w := perform(router, http.MethodPost, "/api/v1/inventory/run")

			// Assert
			assert.Equal(t, tt.expected, w.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "error", body["status"])
			assert.Equal(t, tt.code, body["error"])
			assert.NotEmpty(t, body["message"])
			scans.AssertExpectations(t)
		})
	}
}

func TestLatestScan_LifeCycle(t *testing.T) {
	router := setupRouter(demoHandler())

	assert.Equal(t, http.StatusNotFound, perform(router, http.MethodGet, "/api/v1/inventory/scan/latest").Code)

	run := perform(router, http.MethodPost, "/api/v1/inventory/run")
	require.Equal(t, http.StatusOK, run.Code)
	var ran ScanResponse
	require.NoError(t, json.Unmarshal(run.Body.Bytes(), &ran))

	latest := perform(router, http.MethodGet, "/api/v1/inventory/scan/latest")
	require.Equal(t, http.StatusOK, latest.Code)
	var cached ScanResponse
	require.NoError(t, json.Unmarshal(latest.Body.Bytes(), &cached))
	assert.Equal(t, ran.ScanID, cached.ScanID)
	assert.Equal(t, ran.Summary, cached.Summary)
	assert.Equal(t, ran.Recalls, cached.Recalls)

	assert.Equal(t, http.StatusOK, perform(router, http.MethodDelete, "/api/v1/inventory/scan/latest").Code)
	assert.Equal(t, http.StatusNotFound, perform(router, http.MethodGet, "/api/v1/inventory/scan/latest").Code)
}

func TestListItems_FilterSearchSort(t *testing.T) {
	router := setupRouter(demoHandler())
	require.Equal(t, http.StatusOK, perform(router, http.MethodPost, "/api/v1/inventory/run").Code)

	tests := []struct {
		name     string
		query    string
		expected []string
	}{
		{"by level", "?level=purple", []string{"Metformin 500mg Tablets", "Atorvastatin 20mg Tablets"}},
		{"search then sort", "?search=TABLETS&sort=current_stock&direction=desc",
			[]string{"Sertraline 50mg Tablets", "Atorvastatin 20mg Tablets", "Amlodipine 5mg Tablets", "Metformin 500mg Tablets", "Lisinopril 10mg Tablets"}},
		{"days descending puts infinite first", "?level=all&sort=days_of_supply&direction=desc",
			[]string{"Insulin Glargine", "Sertraline 50mg Tablets", "Amlodipine 5mg Tablets", "Atorvastatin 20mg Tablets",
				"Metformin 500mg Tablets", "Lisinopril 10mg Tablets", "Albuterol Inhaler", "Amoxicillin 500mg Capsules"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := perform(router, http.MethodGet, "/api/v1/inventory/items"+tt.query)

			require.Equal(t, http.StatusOK, w.Code)
			var response ItemsResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			names := make([]string, 0, len(response.Items))
			for _, item := range response.Items {
				names = append(names, item.DrugName)
			}
			assert.Equal(t, tt.expected, names)
			assert.Equal(t, len(tt.expected), response.Total)
		})
	}
}

func TestListItems_Validation(t *testing.T) {
	router := setupRouter(demoHandler())
	require.Equal(t, http.StatusOK, perform(router, http.MethodPost, "/api/v1/inventory/run").Code)

	assert.Equal(t, http.StatusBadRequest, perform(router, http.MethodGet, "/api/v1/inventory/items?level=ORANGE").Code)
	assert.Equal(t, http.StatusBadRequest, perform(router, http.MethodGet, "/api/v1/inventory/items?sort=price").Code)
}

func TestGetRecommendation(t *testing.T) {
	router := setupRouter(demoHandler())

	assert.Equal(t, http.StatusNotFound, perform(router, http.MethodGet, "/api/v1/inventory/items/Metformin/recommendation").Code)
	require.Equal(t, http.StatusOK, perform(router, http.MethodPost, "/api/v1/inventory/run").Code)

	w := perform(router, http.MethodGet, "/api/v1/inventory/items/metformin%20500mg%20tablets/recommendation")
	require.Equal(t, http.StatusOK, w.Code)
	var response RecommendationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "PURPLE", string(response.Item.AlertLevel))
	assert.Equal(t, "HIGH", response.Recommendation.RiskLevel)
	assert.Contains(t, response.Recommendation.ImmediateActions, "Quarantine all affected inventory")

	assert.Equal(t, http.StatusNotFound, perform(router, http.MethodGet, "/api/v1/inventory/items/Unknown/recommendation").Code)
}

func TestHealthCheck(t *testing.T) {
	w := perform(setupRouter(demoHandler()), http.MethodGet, "/health")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","service":"rxbridge-service"}`, w.Body.String())
}
