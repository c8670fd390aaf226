package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pantry/backend/config"
	"github.com/pantry/backend/internal/domain"
	"github.com/pantry/backend/internal/infrastructure/sqlite"
	"github.com/pantry/backend/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testHousehold = "00000000-0000-0000-0000-000000000001"

// TestMain sets up test environment before running tests
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// fakeLookup knows a fixed set of products and counts calls
type fakeLookup struct {
	products map[string]domain.ProductDescriptor
	calls    int
}

func (f *fakeLookup) Lookup(ctx context.Context, barcode string) domain.ProductDescriptor {
	f.calls++
	if product, ok := f.products[barcode]; ok {
		product.Barcode = barcode
		product.Found = true
		return product
	}
	return *domain.NotFoundDescriptor(barcode)
}

type failingPinger struct{}

func (failingPinger) Ping(ctx context.Context) error { return errors.New("disk I/O error") }

type testEnv struct {
	router *gin.Engine
	lookup *fakeLookup
	store  *sqlite.Store
}

// setupTestRouter wires the real services over an in-memory database
func setupTestRouter(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	lookup := &fakeLookup{products: map[string]domain.ProductDescriptor{
		"5449000000996": {Name: "Coca-Cola", Brand: "Coca-Cola", Source: "openfoodfacts"},
	}}

	cfg := &config.Config{
		Server: config.ServerConfig{
			Port:           "8080",
			Environment:    "test",
			AllowedOrigins: []string{"http://localhost:4200"},
		},
		Household: config.HouseholdConfig{ID: testHousehold},
	}

	handler := NewHandler(
		lookup,
		usecase.NewInventoryService(store.Inventory(), lookup, testHousehold),
		usecase.NewShoppingListService(store.ShoppingList(), lookup, testHousehold),
		store,
	)

	return &testEnv{router: SetupRouter(cfg, handler), lookup: lookup, store: store}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealthCheckEndpoint(t *testing.T) {
	t.Run("returns healthy status", func(t *testing.T) {
		env := setupTestRouter(t)

		w := env.do(t, "GET", "/health", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		response := decode[map[string]interface{}](t, w)
		assert.Equal(t, "healthy", response["status"])
		assert.Equal(t, "pantry-backend", response["service"])
	})

	t.Run("reports unavailable database", func(t *testing.T) {
		handler := NewHandler(&fakeLookup{}, nil, nil, failingPinger{})
		router := SetupRouter(&config.Config{}, handler)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestMetricsEndpoint(t *testing.T) {
	env := setupTestRouter(t)

	w := env.do(t, "GET", "/metrics", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestLookupEndpoint(t *testing.T) {
	env := setupTestRouter(t)

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantName   string
		wantFound  bool
	}{
		{name: "known product", path: "/api/v1/products/lookup/5449000000996", wantStatus: http.StatusOK, wantName: "Coca-Cola", wantFound: true},
		{name: "leading zero is normalized", path: "/api/v1/products/lookup/05449000000996", wantStatus: http.StatusOK, wantName: "Coca-Cola", wantFound: true},
		{name: "alias route", path: "/api/v1/lookup/5449000000996", wantStatus: http.StatusOK, wantName: "Coca-Cola", wantFound: true},
		{name: "unknown product answers placeholder", path: "/api/v1/lookup/12345670", wantStatus: http.StatusOK, wantName: "Produkt 12345670", wantFound: false},
		{name: "no digits", path: "/api/v1/lookup/abc", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, "GET", tt.path, nil)

			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantStatus != http.StatusOK {
				return
			}
			product := decode[domain.ProductDescriptor](t, w)
			assert.Equal(t, tt.wantName, product.Name)
			assert.Equal(t, tt.wantFound, product.Found)
		})
	}
}

func TestNormalizeEndpoint(t *testing.T) {
	env := setupTestRouter(t)

	w := env.do(t, "POST", "/api/v1/barcodes/normalize", map[string]string{"raw": "(01)05449000000996(10)ABC"})

	require.Equal(t, http.StatusOK, w.Code)
	response := decode[normalizeResponse](t, w)
	assert.Equal(t, normalizeResponse{Barcode: "5449000000996", Valid: true}, response)

	w = env.do(t, "POST", "/api/v1/barcodes/normalize", map[string]string{"raw": "no digits"})
	assert.Equal(t, normalizeResponse{Barcode: "", Valid: false}, decode[normalizeResponse](t, w))
}

func TestParseEndpoint(t *testing.T) {
	env := setupTestRouter(t)

	w := env.do(t, "POST", "/api/v1/utterances/parse", map[string]string{"utterance": "2 Milch und Eier"})

	require.Equal(t, http.StatusOK, w.Code)
	response := decode[struct {
		Items []domain.LineItem `json:"items"`
	}](t, w)
	assert.Equal(t, []domain.LineItem{{Name: "milch", Quantity: 2}, {Name: "eier", Quantity: 1}}, response.Items)
}

func TestScanMergesIntoManualItemWithSameName(t *testing.T) {
	env := setupTestRouter(t)

	w := env.do(t, "POST", "/api/v1/items", map[string]interface{}{"name": "Coca-Cola"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	manual := decode[domain.Item](t, w)

	w = env.do(t, "POST", "/api/v1/items/scan", map[string]interface{}{"barcode": "5449000000996"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	scanned := decode[domain.Item](t, w)
	assert.Equal(t, manual.ID, scanned.ID)
	assert.Equal(t, 2, scanned.Quantity)
	assert.Equal(t, "5449000000996", scanned.Barcode)

	w = env.do(t, "GET", "/api/v1/items", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]domain.Item](t, w), 1)
}

func TestInventoryEndpoints(t *testing.T) {
	env := setupTestRouter(t)

	// scanning an unknown-to-inventory barcode creates an enriched item
	w := env.do(t, "POST", "/api/v1/items/scan", map[string]interface{}{"barcode": "05449000000996"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	scanned := decode[domain.Item](t, w)
	assert.Equal(t, "Coca-Cola", scanned.Name)
	assert.Equal(t, "5449000000996", scanned.Barcode)
	assert.Equal(t, 1, scanned.Quantity)

	// scanning it again merges
	w = env.do(t, "POST", "/api/v1/items/scan", map[string]interface{}{"barcode": "5449000000996", "quantity": 2})
	require.Equal(t, http.StatusCreated, w.Code)
	merged := decode[domain.Item](t, w)
	assert.Equal(t, scanned.ID, merged.ID)
	assert.Equal(t, 3, merged.Quantity)

	// a manual add by name with the same case-insensitive name merges as well
	w = env.do(t, "POST", "/api/v1/items", map[string]interface{}{"name": "coca-cola", "quantity": 1})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, scanned.ID, decode[domain.Item](t, w).ID)

	w = env.do(t, "POST", "/api/v1/items/"+scanned.ID+"/decrement", map[string]int{"amount": 2})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, decode[domain.Item](t, w).Quantity)

	w = env.do(t, "POST", "/api/v1/items/"+scanned.ID+"/increment", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, decode[domain.Item](t, w).Quantity)

	w = env.do(t, "POST", "/api/v1/items/"+scanned.ID+"/decrement", map[string]int{"amount": 10})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, "PUT", "/api/v1/items/"+scanned.ID, map[string]interface{}{"category": "Getränke", "minQuantity": 2})
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode[domain.Item](t, w)
	assert.Equal(t, "Getränke", updated.Category)
	assert.Equal(t, 2, updated.MinQuantity)

	w = env.do(t, "GET", "/api/v1/items", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]domain.Item](t, w), 1)

	w = env.do(t, "DELETE", "/api/v1/items/"+scanned.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, "GET", "/api/v1/items/"+scanned.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInventoryEndpoints_Validation(t *testing.T) {
	env := setupTestRouter(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		want   int
	}{
		{name: "create without name or barcode", method: "POST", path: "/api/v1/items", body: map[string]interface{}{}, want: http.StatusBadRequest},
		{name: "negative quantity", method: "POST", path: "/api/v1/items", body: map[string]interface{}{"name": "Reis", "quantity": -1}, want: http.StatusBadRequest},
		{name: "scan without barcode", method: "POST", path: "/api/v1/items/scan", body: map[string]interface{}{}, want: http.StatusBadRequest},
		{name: "scan digitless barcode", method: "POST", path: "/api/v1/items/scan", body: map[string]interface{}{"barcode": "???"}, want: http.StatusBadRequest},
		{name: "update unknown item", method: "PUT", path: "/api/v1/items/missing", body: map[string]interface{}{"quantity": 1}, want: http.StatusNotFound},
		{name: "delete unknown item", method: "DELETE", path: "/api/v1/items/missing", want: http.StatusNotFound},
		{name: "malformed json", method: "POST", path: "/api/v1/items", body: "not an object", want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
			if w.Code >= 400 {
				assert.Contains(t, decode[map[string]interface{}](t, w), "error")
			}
		})
	}
}

func TestShoppingListEndpoints(t *testing.T) {
	env := setupTestRouter(t)

	w := env.do(t, "POST", "/api/v1/shopping-list", map[string]interface{}{"name": "Butter"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	butter := decode[domain.Item](t, w)
	assert.Equal(t, 1, butter.Quantity)

	w = env.do(t, "PUT", "/api/v1/shopping-list/"+butter.ID, map[string]interface{}{"completed": true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[domain.Item](t, w).Completed)

	// completed entries are not revived by a new request
	w = env.do(t, "POST", "/api/v1/shopping-list", map[string]interface{}{"name": "butter"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.NotEqual(t, butter.ID, decode[domain.Item](t, w).ID)

	w = env.do(t, "PUT", "/api/v1/shopping-list/"+butter.ID, map[string]interface{}{"quantity": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, "GET", "/api/v1/shopping-list", nil)
	require.Equal(t, http.StatusOK, w.Code)
	items := decode[[]domain.Item](t, w)
	require.Len(t, items, 2)
	assert.False(t, items[0].Completed)
	assert.True(t, items[1].Completed)

	w = env.do(t, "DELETE", "/api/v1/shopping-list/"+butter.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestAlexaImportEndpoint(t *testing.T) {
	env := setupTestRouter(t)

	w := env.do(t, "POST", "/api/v1/shopping-list/alexa-import",
		map[string]string{"utterance": "Setze 2 Milch, Eier und butter zur Liste"})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := decode[domain.ImportResult](t, w)
	assert.Equal(t, []string{"milch", "eier", "butter"}, result.ParsedNames)
	require.Len(t, result.CreatedItems, 3)
	assert.Equal(t, 2, result.CreatedItems[0].Quantity)

	// importing again merges into the open entries
	w = env.do(t, "POST", "/api/v1/shopping-list/alexa-import", map[string]string{"utterance": "milch"})
	require.Equal(t, http.StatusOK, w.Code)
	again := decode[domain.ImportResult](t, w)
	require.Len(t, again.CreatedItems, 1)
	assert.Equal(t, result.CreatedItems[0].ID, again.CreatedItems[0].ID)
	assert.Equal(t, 3, again.CreatedItems[0].Quantity)

	w = env.do(t, "POST", "/api/v1/shopping-list/alexa-import", map[string]string{"utterance": "   "})
	require.Equal(t, http.StatusOK, w.Code)
	empty := decode[domain.ImportResult](t, w)
	assert.Empty(t, empty.CreatedItems)
	assert.Zero(t, env.lookup.calls)
}
