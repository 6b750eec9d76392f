package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kosarica/grooming-service/internal/analytics"
	"github.com/kosarica/grooming-service/internal/calendar"
	"github.com/kosarica/grooming-service/internal/middleware"
	"github.com/kosarica/grooming-service/internal/signals"
	"github.com/kosarica/grooming-service/internal/types"
)

type mockCollector struct{}

func (mockCollector) Collect(_ context.Context, loc signals.Location) signals.Snapshot {
	return signals.Snapshot{
		Location: loc,
		Weather:  types.Weather{TemperatureC: 22, Condition: "Clear", Source: types.SourceMock},
		Traffic:  types.Traffic{Level: types.TrafficMedium, Source: types.SourceMock},
		Trends:   types.Trends{Interest: 65, Source: types.SourceMock},
	}
}

type downDB struct{}

func (downDB) Ping(context.Context) error { return errors.New("connection refused") }

func strp(s string) *string { return &s }

func dataset() types.Dataset {
	now := time.Now().UTC()
	ds := types.Dataset{
		Clients:   []types.Client{{ID: "c1", Name: "Ana"}},
		Employees: []types.Employee{{ID: "e1", Name: "Marta", Active: true}},
		Products:  []types.Product{{ID: "p1", Name: "Shampoo", Category: "higiene", Stock: 10, MinStock: 2}},
	}
	for i := 0; i < 5; i++ {
		ds.Transactions = append(ds.Transactions, types.Transaction{
			ID:          fmt.Sprintf("t%d", i),
			ClientID:    strp("c1"),
			CreatedAt:   now.AddDate(0, 0, -i),
			TotalAmount: 300,
			Items:       []types.LineItem{{Name: "Corte de pelo", Quantity: 1, UnitPrice: 300}},
		})
	}
	return ds
}

func setupRouter(t *testing.T, store analytics.Store, db Pinger) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := analytics.NewService(store, mockCollector{}, analytics.Config{}, zerolog.Nop())
	grid := calendar.Grid{Slot: 15 * time.Minute, DayStartHour: 8, DayEndHour: 20}
	h := New(svc, nil, db, grid, zerolog.Nop())

	router := gin.New()
	router.GET("/health", h.HealthCheck)
	internal := router.Group("/internal")
	internal.Use(middleware.StaffRole())
	h.Register(internal)
	return router
}

func do(t *testing.T, router *gin.Engine, method, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHealthCheck(t *testing.T) {
	router := setupRouter(t, analytics.NewMemoryStore(dataset()), nil)
	w := do(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "not configured", decode(t, w)["database"])

	router = setupRouter(t, analytics.NewMemoryStore(dataset()), downDB{})
	w = do(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestDashboard(t *testing.T) {
	router := setupRouter(t, analytics.NewMemoryStore(dataset()), nil)

	w := do(t, router, http.MethodGet, "/internal/analytics/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Len(t, body["segments"], 1)
	assert.Contains(t, body, "forecast")
	assert.Contains(t, body, "heatmap")
	assert.Contains(t, body, "signals")
}

func TestPeriodValidation(t *testing.T) {
	router := setupRouter(t, analytics.NewMemoryStore(dataset()), nil)

	tests := []struct {
		name   string
		query  string
		status int
	}{
		{"defaults", "", http.StatusOK},
		{"bare dates", "?from=2024-01-01&to=2024-01-31", http.StatusOK},
		{"rfc3339", "?from=2024-01-01T00:00:00Z&to=2024-02-01T00:00:00Z", http.StatusOK},
		{"bad from", "?from=yesterday", http.StatusBadRequest},
		{"inverted", "?from=2024-02-01&to=2024-01-01", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, http.MethodGet, "/internal/analytics/forecast"+tt.query, nil)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}

func TestHeatmapAndAlerts(t *testing.T) {
	router := setupRouter(t, analytics.NewMemoryStore(dataset()), nil)

	w := do(t, router, http.MethodGet, "/internal/analytics/heatmap", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.InDelta(t, 1500, decode(t, w)["total"], 0.001)

	w = do(t, router, http.MethodGet, "/internal/analytics/alerts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decode(t, w), "alerts")
}

func TestEvaluateAlerts(t *testing.T) {
	router := setupRouter(t, analytics.NewMemoryStore(dataset()), nil)

	body := map[string]interface{}{
		"inventory": []types.Product{{ID: "x", Name: "Collar", Stock: 0, MinStock: 3}},
	}
	w := do(t, router, http.MethodPost, "/internal/analytics/alerts/evaluate", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["total"])
}

func TestOpportunity(t *testing.T) {
	router := setupRouter(t, analytics.NewMemoryStore(dataset()), nil)

	w := do(t, router, http.MethodPost, "/internal/analytics/opportunity", OpportunityRequest{
		Weather: types.Weather{TemperatureC: 22, UVIndex: 5, Condition: "Clear"},
		Traffic: types.Traffic{Level: types.TrafficMedium},
		Trends:  types.Trends{Interest: 65},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 78, decode(t, w)["score"])
}

func TestAvailability(t *testing.T) {
	router := setupRouter(t, analytics.NewMemoryStore(dataset()), nil)

	w := do(t, router, http.MethodGet, "/internal/availability?date=2024-06-30", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "2024-06-30", body["date"])
	assert.Len(t, body["blocks"], 3)

	w = do(t, router, http.MethodGet, "/internal/availability?date=30/06/2024", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCalendarRoutes(t *testing.T) {
	ds := dataset()
	ds.Appointments = []types.RawAppointment{{
		ID:        "a1",
		StartTime: "2024-06-30T10:00:00Z",
		EndTime:   "2024-06-30T11:00:00Z",
		Pet:       json.RawMessage(`[{"name":"Toby"}]`),
	}}
	router := setupRouter(t, analytics.NewMemoryStore(ds), nil)

	w := do(t, router, http.MethodGet, "/internal/calendar/events?from=2024-06-30&to=2024-06-30", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Len(t, body["events"], 1)
	assert.Len(t, body["resources"], 1)

	w = do(t, router, http.MethodPost, "/internal/calendar/normalize", NormalizeRequest{
		Appointments: []types.RawAppointment{
			{ID: "ok", StartTime: "2024-06-30T10:00:00Z", EndTime: "2024-06-30T11:00:00Z"},
			{ID: "bad", StartTime: "", EndTime: "2024-06-30T11:00:00Z"},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.Len(t, body["events"], 1)
	assert.Len(t, body["dropped"], 1)
}

func TestReschedule(t *testing.T) {
	router := setupRouter(t, analytics.NewMemoryStore(dataset()), nil)
	start := time.Date(2024, 6, 30, 10, 0, 0, 0, time.UTC)
	ev := types.CalendarEvent{ID: "a1", Start: start, End: start.Add(time.Hour), ResourceID: "e1"}
	other := types.CalendarEvent{ID: "a2", Start: start.Add(time.Hour), End: start.Add(2 * time.Hour), ResourceID: "e1"}

	w := do(t, router, http.MethodPost, "/internal/calendar/reschedule", RescheduleRequest{
		Mode:         "move",
		Event:        ev,
		DeltaMinutes: 37,
		Column:       0,
		Resources:    []string{"e1"},
		Events:       []types.CalendarEvent{ev, other},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp RescheduleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Reschedule.Start.Equal(start.Add(30*time.Minute)))
	assert.Equal(t, []string{"a2"}, resp.Conflicts)

	w = do(t, router, http.MethodPost, "/internal/calendar/reschedule", RescheduleRequest{Mode: "teleport", Event: ev})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLayout(t *testing.T) {
	router := setupRouter(t, analytics.NewMemoryStore(dataset()), nil)
	start := time.Date(2024, 6, 30, 10, 0, 0, 0, time.UTC)

	w := do(t, router, http.MethodPost, "/internal/calendar/layout", LayoutRequest{Events: []types.CalendarEvent{
		{ID: "a", Start: start, End: start.Add(time.Hour)},
		{ID: "b", Start: start.Add(30 * time.Minute), End: start.Add(90 * time.Minute)},
	}})
	require.Equal(t, http.StatusOK, w.Code)

	var placements []calendar.Placement
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &placements))
	require.Len(t, placements, 2)
	for _, p := range placements {
		assert.Equal(t, 2, p.Columns)
	}
}

func TestClassification(t *testing.T) {
	store := analytics.NewMemoryStore(dataset())
	router := setupRouter(t, store, nil)

	w := do(t, router, http.MethodPost, "/internal/classification/classify", ClassifyRequest{
		Items: []types.LineItem{{Name: "Corte"}, {Name: "Correa"}},
	})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["is_grooming"])
	assert.Equal(t, true, body["is_store"])

	w = do(t, router, http.MethodPost, "/internal/transactions/t0/classify", nil)
	require.Equal(t, http.StatusOK, w.Code)
	tx, err := store.GetTransaction(context.Background(), "t0")
	require.NoError(t, err)
	assert.True(t, tx.IsGrooming)

	w = do(t, router, http.MethodPost, "/internal/transactions/missing/classify", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRules(t *testing.T) {
	router := setupRouter(t, analytics.NewMemoryStore(dataset()), nil)

	w := do(t, router, http.MethodPut, "/internal/classification/rules", RulesBody{Rules: []types.ClassificationRule{
		{Keyword: "collar", MatchType: types.MatchContains, Target: types.TargetStore, Position: 1},
	}})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, router, http.MethodGet, "/internal/classification/rules", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["rules"], 1)

	w = do(t, router, http.MethodPut, "/internal/classification/rules", RulesBody{Rules: []types.ClassificationRule{
		{Keyword: "collar", MatchType: "regex", Target: types.TargetStore},
	}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type failingCategoryStore struct {
	analytics.Store
}

func (failingCategoryStore) UpdateProductCategory(context.Context, string, string) (*types.Product, error) {
	return nil, errors.New("constraint violation")
}

func TestUpdateProductCategory(t *testing.T) {
	router := setupRouter(t, analytics.NewMemoryStore(dataset()), nil)

	w := do(t, router, http.MethodPatch, "/internal/catalog/products/p1/category", CategoryRequest{Category: "accesorios"})
	require.Equal(t, http.StatusOK, w.Code)
	var resp CategoryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "confirmed", string(resp.State))
	assert.Equal(t, "accesorios", resp.Product.Category)

	w = do(t, router, http.MethodPatch, "/internal/catalog/products/nope/category", CategoryRequest{Category: "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, router, http.MethodPatch, "/internal/catalog/products/p1/category", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateProductCategory_RollsBack(t *testing.T) {
	router := setupRouter(t, failingCategoryStore{analytics.NewMemoryStore(dataset())}, nil)

	w := do(t, router, http.MethodPatch, "/internal/catalog/products/p1/category", CategoryRequest{Category: "accesorios"})
	require.Equal(t, http.StatusConflict, w.Code)
	var resp CategoryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "rolled_back", string(resp.State))
	assert.Equal(t, "higiene", resp.Product.Category)
	assert.Contains(t, resp.Error, "constraint violation")
}

func TestComprehensiveReport(t *testing.T) {
	router := setupRouter(t, analytics.NewMemoryStore(dataset()), nil)

	w := do(t, router, http.MethodGet, "/internal/reports/comprehensive", nil, middleware.RoleHeader, "staff")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Contains(t, body, "financial")
	assert.Nil(t, body["financial"])
	assert.Nil(t, body["clients"])
	ops := body["operations"].(map[string]any)
	assert.Nil(t, ops["heatmap"])
	assert.Nil(t, ops["busiest"])

	w = do(t, router, http.MethodGet, "/internal/reports/comprehensive", nil, middleware.RoleHeader, "admin")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotNil(t, decode(t, w)["financial"])

	w = do(t, router, http.MethodGet, "/internal/reports/comprehensive?format=xlsx", nil, middleware.RoleHeader, "admin")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, contentTypeXLSX, w.Header().Get("Content-Type"))
	assert.Equal(t, "PK", string(w.Body.Bytes()[:2]))

	w = do(t, router, http.MethodGet, "/internal/reports/comprehensive?format=pdf", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "%PDF", string(w.Body.Bytes()[:4]))

	w = do(t, router, http.MethodGet, "/internal/reports/comprehensive?format=csv", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
