package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/expenseiq/expenseiq/internal/clock"
	"github.com/expenseiq/expenseiq/internal/model"
	"github.com/expenseiq/expenseiq/internal/persist"
	"github.com/expenseiq/expenseiq/internal/random"
	"github.com/expenseiq/expenseiq/internal/tracker"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var now = time.Date(2024, time.March, 15, 9, 30, 0, 0, time.UTC)

type testServer struct {
	router  *gin.Engine
	tracker *tracker.Tracker
	kv      *persist.MemoryKV
	// notices receives only warnings raised outside a request.
	notices *tracker.Collector
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	kv := persist.NewMemoryKV()
	notices := &tracker.Collector{}
	tr := tracker.Open(context.Background(), tracker.Options{
		KV:       kv,
		Clock:    clock.Fixed{T: now},
		Random:   random.New(7),
		Notifier: notices,
		Logger:   zap.NewNop().Sugar(),
	})
	return &testServer{
		router:  NewRouter(NewHandler(tr)),
		tracker: tr,
		kv:      kv,
		notices: notices,
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result), "body: %s", rec.Body.String())
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	require.True(t, ok, "expected error object in response")
	assert.Equal(t, code, errObj["code"])
}

func errorMessage(t *testing.T, result map[string]interface{}) string {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	require.True(t, ok, "expected error object in response")
	msg, _ := errObj["message"].(string)
	return msg
}

func (s *testServer) create(t *testing.T, body string) map[string]interface{} {
	t.Helper()
	rec := doRequest(s.router, http.MethodPost, "/api/v1/expenses", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return parseJSON(t, rec)["expense"].(map[string]interface{})
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(s.router, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", parseJSON(t, rec)["status"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(s.router, http.MethodOptions, "/api/v1/expenses", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCreateExpense(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(s.router, http.MethodPost, "/api/v1/expenses",
		`{"description":"Uber to airport","amount":23.5,"date":"2024-03-14"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	result := parseJSON(t, rec)
	e := result["expense"].(map[string]interface{})
	assert.Equal(t, "Uber to airport", e["description"])
	assert.Equal(t, 23.5, e["amount"])
	assert.Equal(t, "2024-03-14", e["date"])
	assert.Equal(t, "transport", e["category"])
	assert.Nil(t, e["receipt"])
	assert.Empty(t, result["warnings"])
	assert.Len(t, s.tracker.Expenses(), 1)
}

func TestCreateExpense_AmountAsString(t *testing.T) {
	s := newTestServer(t)
	e := s.create(t, `{"description":"Textbooks","amount":"89.99","date":"2024-03-02","category":"education","receipt":true}`)
	assert.Equal(t, 89.99, e["amount"])
	assert.Equal(t, "education", e["category"])
	assert.Equal(t, model.ReceiptUploaded, e["receipt"])
}

func TestCreateExpense_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		code string
		msg  string
	}{
		{"malformed json", `{"description":`, "INVALID_INPUT", ""},
		{"zero amount", `{"description":"coffee","amount":0,"date":"2024-03-01"}`, "VALIDATION_ERROR", "amount must be greater than 0"},
		{"blank description", `{"description":"  ","amount":3,"date":"2024-03-01"}`, "VALIDATION_ERROR", "description is required"},
		{"missing date", `{"description":"coffee","amount":3}`, "VALIDATION_ERROR", "date is required"},
		{"bad date", `{"description":"coffee","amount":3,"date":"March 1st"}`, "INVALID_INPUT", ""},
		{"unknown category", `{"description":"coffee","amount":3,"date":"2024-03-01","category":"pets"}`, "VALIDATION_ERROR", `category "pets" is not a known category`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			rec := doRequest(s.router, http.MethodPost, "/api/v1/expenses", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			result := parseJSON(t, rec)
			assertErrorCode(t, result, tt.code)
			if tt.msg != "" {
				assert.Equal(t, tt.msg, errorMessage(t, result))
			}
			assert.Empty(t, s.tracker.Expenses())
		})
	}
}

func TestCreateExpense_SaveFailureIsAWarning(t *testing.T) {
	s := newTestServer(t)
	s.kv.FailSave = errors.New("disk full")

	rec := doRequest(s.router, http.MethodPost, "/api/v1/expenses",
		`{"description":"Netflix","amount":15.99,"date":"2024-03-10"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	warnings := parseJSON(t, rec)["warnings"].([]interface{})
	require.Len(t, warnings, 1)
	w := warnings[0].(map[string]interface{})
	assert.Equal(t, "warning", w["level"])
	assert.Equal(t, "Failed to save data", w["message"])
	assert.Len(t, s.tracker.Expenses(), 1, "memory stays authoritative")
	assert.Empty(t, s.notices.Drain())
}

func TestSaveFailureWarningsStayWithTheirRequest(t *testing.T) {
	s := newTestServer(t)
	s.kv.FailSave = errors.New("disk full")

	const requests = 8
	recs := make([]*httptest.ResponseRecorder, requests)
	var wg sync.WaitGroup
	for i := range requests {
		wg.Add(1)
		go func() {
			defer wg.Done()
			recs[i] = doRequest(s.router, http.MethodPost, "/api/v1/expenses",
				`{"description":"Coffee","amount":4.5,"date":"2024-03-10"}`)
		}()
	}
	wg.Wait()

	for i, rec := range recs {
		require.Equal(t, http.StatusCreated, rec.Code, "request %d", i)
		warnings := parseJSON(t, rec)["warnings"].([]interface{})
		require.Len(t, warnings, 1, "request %d", i)
		assert.Equal(t, "Failed to save data", warnings[0].(map[string]interface{})["message"])
	}
	assert.Len(t, s.tracker.Expenses(), requests)
	assert.Empty(t, s.notices.Drain(), "request warnings must not reach the shared notifier")
}

func TestDeleteExpense_SaveFailureIsAWarning(t *testing.T) {
	s := newTestServer(t)
	e := s.create(t, `{"description":"Netflix","amount":15.99,"date":"2024-03-10"}`)
	s.kv.FailSave = errors.New("disk full")

	rec := doRequest(s.router, http.MethodDelete, "/api/v1/expenses/"+e["id"].(string), "")
	require.Equal(t, http.StatusOK, rec.Code)
	warnings := parseJSON(t, rec)["warnings"].([]interface{})
	require.Len(t, warnings, 1)

	s.kv.FailSave = nil
	rec = doRequest(s.router, http.MethodPost, "/api/v1/expenses",
		`{"description":"Pizza","amount":12,"date":"2024-03-11"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Empty(t, parseJSON(t, rec)["warnings"], "a warning is delivered once")
}

func TestListExpenses(t *testing.T) {
	s := newTestServer(t)
	s.create(t, `{"description":"Pizza night","amount":30,"date":"2024-03-01"}`)
	s.create(t, `{"description":"Electric bill","amount":80,"date":"2024-03-02"}`)
	s.create(t, `{"description":"Sushi lunch","amount":22,"date":"2024-03-03"}`)

	rec := doRequest(s.router, http.MethodGet, "/api/v1/expenses", "")
	require.Equal(t, http.StatusOK, rec.Code)
	result := parseJSON(t, rec)
	assert.Equal(t, float64(3), result["count"])
	first := result["expenses"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "Sushi lunch", first["description"], "newest first")

	rec = doRequest(s.router, http.MethodGet, "/api/v1/expenses?category=food", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), parseJSON(t, rec)["count"])

	rec = doRequest(s.router, http.MethodGet, "/api/v1/expenses?q=ELECTRIC", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), parseJSON(t, rec)["count"])

	rec = doRequest(s.router, http.MethodGet, "/api/v1/expenses?limit=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), parseJSON(t, rec)["count"])
}

func TestListExpenses_EmptyIsArray(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(s.router, http.MethodGet, "/api/v1/expenses", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []interface{}{}, parseJSON(t, rec)["expenses"])
}

func TestListExpenses_BadQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		msg   string
	}{
		{"unknown category", "?category=pets", `category "pets" is not a known category`},
		{"limit too large", "?limit=5000", "limit must be at most 1000"},
		{"negative limit", "?limit=-1", "limit must be at least 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			rec := doRequest(s.router, http.MethodGet, "/api/v1/expenses"+tt.query, "")
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			result := parseJSON(t, rec)
			assertErrorCode(t, result, "INVALID_INPUT")
			assert.Equal(t, tt.msg, errorMessage(t, result))
		})
	}
}

func TestGetAndDeleteExpense(t *testing.T) {
	s := newTestServer(t)
	created := s.create(t, `{"description":"Gym membership","amount":40,"date":"2024-03-05"}`)
	id := created["id"].(string)

	rec := doRequest(s.router, http.MethodGet, "/api/v1/expenses/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "health", parseJSON(t, rec)["expense"].(map[string]interface{})["category"])

	rec = doRequest(s.router, http.MethodDelete, "/api/v1/expenses/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, parseJSON(t, rec)["deleted"])
	assert.Empty(t, s.tracker.Expenses())

	rec = doRequest(s.router, http.MethodGet, "/api/v1/expenses/"+id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assertErrorCode(t, parseJSON(t, rec), "EXPENSE_NOT_FOUND")

	rec = doRequest(s.router, http.MethodDelete, "/api/v1/expenses/"+id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assertErrorCode(t, parseJSON(t, rec), "EXPENSE_NOT_FOUND")
}

func TestCategories(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(s.router, http.MethodGet, "/api/v1/categories", "")
	require.Equal(t, http.StatusOK, rec.Code)

	cats := parseJSON(t, rec)["categories"].([]interface{})
	require.Len(t, cats, len(model.Categories()))
	first := cats[0].(map[string]interface{})
	assert.Equal(t, "food", first["category"])
	assert.Equal(t, "Food & Dining", first["name"])
	assert.Equal(t, "#FF6384", first["color"])
	last := cats[len(cats)-1].(map[string]interface{})
	assert.Equal(t, "other", last["category"])
	assert.Empty(t, last["keywords"])
}

func TestSuggestCategory(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(s.router, http.MethodGet, "/api/v1/categories/suggest?description=bus", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, parseJSON(t, rec)["suggestion"], "too short to suggest")

	rec = doRequest(s.router, http.MethodGet, "/api/v1/categories/suggest?description=hotel+booking", "")
	require.Equal(t, http.StatusOK, rec.Code)
	sug := parseJSON(t, rec)["suggestion"].(map[string]interface{})
	assert.Equal(t, "travel", sug["category"])
	assert.Equal(t, "Travel", sug["name"])
	assert.Contains(t, sug["message"], "Travel")
}

func TestDashboard(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(s.router, http.MethodGet, "/api/v1/dashboard", "")
	require.Equal(t, http.StatusOK, rec.Code)
	result := parseJSON(t, rec)
	assert.Equal(t, float64(0), result["totalThisMonth"])
	assert.Equal(t, float64(0), result["transactionCountThisMonth"])
	assert.Nil(t, result["topCategoryThisMonth"])
	assert.Equal(t, "None", result["topCategoryName"])

	s.create(t, `{"description":"Rent","amount":1200,"date":"2024-03-01"}`)
	s.create(t, `{"description":"Coffee","amount":4.5,"date":"2024-03-02"}`)
	s.create(t, `{"description":"Old dinner","amount":60,"date":"2024-02-20"}`)

	rec = doRequest(s.router, http.MethodGet, "/api/v1/dashboard", "")
	require.Equal(t, http.StatusOK, rec.Code)
	result = parseJSON(t, rec)
	assert.Equal(t, 1204.5, result["totalThisMonth"])
	assert.Equal(t, float64(2), result["transactionCountThisMonth"])
	assert.Equal(t, "bills", result["topCategoryThisMonth"])
	assert.Equal(t, "Bills & Utilities", result["topCategoryName"])
}

func TestCharts(t *testing.T) {
	s := newTestServer(t)
	s.create(t, `{"description":"Taxi","amount":8,"date":"2024-03-13"}`)
	s.create(t, `{"description":"Pizza","amount":12,"date":"2024-03-15"}`)

	rec := doRequest(s.router, http.MethodGet, "/api/v1/charts/category", "")
	require.Equal(t, http.StatusOK, rec.Code)
	points := parseJSON(t, rec)["points"].([]interface{})
	require.Len(t, points, 2)
	first := points[0].(map[string]interface{})
	assert.Equal(t, "Food & Dining", first["label"])
	assert.Equal(t, float64(12), first["value"])
	assert.Equal(t, "#FF6384", first["color"])

	rec = doRequest(s.router, http.MethodGet, "/api/v1/charts/trend", "")
	require.Equal(t, http.StatusOK, rec.Code)
	points = parseJSON(t, rec)["points"].([]interface{})
	require.Len(t, points, 7)
	oldest := points[0].(map[string]interface{})
	assert.Equal(t, "2024-03-09", oldest["date"])
	assert.Equal(t, "Mar 9", oldest["label"])
	newest := points[6].(map[string]interface{})
	assert.Equal(t, "2024-03-15", newest["date"])
	assert.Equal(t, float64(12), newest["value"])
	assert.Equal(t, float64(8), points[4].(map[string]interface{})["value"])
}

func TestInsights_EmptyStoreOnboards(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(s.router, http.MethodGet, "/api/v1/insights", "")
	require.Equal(t, http.StatusOK, rec.Code)
	insights := parseJSON(t, rec)["insights"].([]interface{})
	assert.Len(t, insights, 3)
}

func TestInsights_AtMostFive(t *testing.T) {
	s := newTestServer(t)
	s.create(t, `{"description":"Rent","amount":1500,"date":"2024-03-01"}`)
	s.create(t, `{"description":"Groceries","amount":120,"date":"2024-03-10"}`)
	s.create(t, `{"description":"Movie tickets","amount":30,"date":"2024-03-12"}`)
	s.create(t, `{"description":"Dinner","amount":45,"date":"2024-02-11"}`)

	rec := doRequest(s.router, http.MethodGet, "/api/v1/insights", "")
	require.Equal(t, http.StatusOK, rec.Code)
	insights := parseJSON(t, rec)["insights"].([]interface{})
	assert.Len(t, insights, 5)
}

func TestExportImportRoundTrip(t *testing.T) {
	s := newTestServer(t)
	s.create(t, `{"description":"Hotel","amount":210,"date":"2024-03-08"}`)
	s.create(t, `{"description":"Flight","amount":340.25,"date":"2024-03-07","category":"travel"}`)

	rec := doRequest(s.router, http.MethodGet, "/api/v1/export", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="expenseiq_data_2024-03-15.json"`, rec.Header().Get("Content-Disposition"))
	exported := rec.Body.String()
	doc := parseJSON(t, rec)
	assert.Equal(t, "1.0", doc["formatVersion"])
	assert.Len(t, doc["expenses"], 2)

	other := newTestServer(t)
	rec = doRequest(other.router, http.MethodPost, "/api/v1/import", exported)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, float64(2), parseJSON(t, rec)["imported"])
	want, got := s.tracker.Expenses(), other.tracker.Expenses()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].ID, got[i].ID)
		assert.True(t, want[i].Amount.Equal(got[i].Amount))
		assert.Equal(t, want[i].Category, got[i].Category)
	}
}

func TestImport_RejectsBadDocumentAndKeepsData(t *testing.T) {
	s := newTestServer(t)
	s.create(t, `{"description":"Coffee","amount":3,"date":"2024-03-08"}`)

	tests := []struct {
		name string
		body string
	}{
		{"not json", `hello`},
		{"no expenses", `{"formatVersion":"1.0"}`},
		{"future major version", `{"formatVersion":"2.0","expenses":[]}`},
		{"invalid record", `{"expenses":[{"id":"a","description":"x","amount":-1,"date":"2024-03-01","category":"food"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(s.router, http.MethodPost, "/api/v1/import", tt.body)
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			result := parseJSON(t, rec)
			assertErrorCode(t, result, "IMPORT_FORMAT_ERROR")
			assert.True(t, strings.HasPrefix(errorMessage(t, result), "Error importing data: "))
			assert.Len(t, s.tracker.Expenses(), 1)
		})
	}
}

type failingService struct {
	Service
}

func (failingService) DeleteExpense(context.Context, string) error {
	return errors.New("boom")
}

func TestUnexpectedErrorIsInternal(t *testing.T) {
	r := NewRouter(NewHandler(failingService{}))
	rec := doRequest(r, http.MethodDelete, "/api/v1/expenses/x", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	result := parseJSON(t, rec)
	assertErrorCode(t, result, "INTERNAL_ERROR")
	assert.Equal(t, "An internal error occurred", errorMessage(t, result))
}
