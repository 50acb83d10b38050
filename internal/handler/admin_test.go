package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"autohub-rest-api/internal/model"
	"autohub-rest-api/internal/service"
	"autohub-rest-api/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAdminFixture(t *testing.T) (*AdminHandler, *stubPlatform, *chi.Mux) {
	t.Helper()

	platform := &stubPlatform{}
	snaps := store.NewSnapshots(store.NewMemoryStore(), 0)
	catalog := service.NewCatalogService(snaps, platform)
	orders := service.NewOrderService(snaps, platform)

	h := NewAdminHandler(AdminHandlerConfig{
		Store:     snaps.Raw(),
		Orders:    orders,
		Catalog:   catalog,
		Settings:  service.NewSettingsService(snaps, platform),
		Importer:  service.NewImportService(catalog, platform),
		Remote:    platform,
		LoginKey:  "s3cret",
		StoreType: "memory",
	})

	r := chi.NewRouter()
	r.Post("/admin/login", h.VerifyLogin)
	r.Get("/admin/stats", h.GetStats)
	r.Post("/admin/import", h.Import)
	r.Get("/settings/{group}", h.GetSettings)
	return h, platform, r
}

func adminRequest(r *chi.Mux, method, target string, body interface{}) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(method, target, bytes.NewReader(data))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAdminHandler_VerifyLogin(t *testing.T) {
	_, _, r := newAdminFixture(t)

	rec := adminRequest(r, http.MethodPost, "/admin/login", LoginRequest{Password: "s3cret"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeEnvelope(t, rec).Success)

	rec = adminRequest(r, http.MethodPost, "/admin/login", LoginRequest{Password: "wrong"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", decodeEnvelope(t, rec).Error.Code)
}

func TestAdminHandler_VerifyLoginNoKeyConfigured(t *testing.T) {
	h := NewAdminHandler(AdminHandlerConfig{LoginKey: ""})

	r := chi.NewRouter()
	r.Post("/admin/login", h.VerifyLogin)

	// An unset login key locks the back office rather than opening it.
	rec := adminRequest(r, http.MethodPost, "/admin/login", LoginRequest{Password: ""})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminHandler_GetStats(t *testing.T) {
	_, _, r := newAdminFixture(t)

	rec := adminRequest(r, http.MethodGet, "/admin/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats map[string]interface{}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &stats))
	assert.Contains(t, stats, "uptime_seconds")
	assert.Contains(t, stats, "memory")
	assert.Contains(t, stats, "catalog")
	assert.Contains(t, stats, "orders")
	assert.Equal(t, "memory", stats["store_type"])
}

func TestAdminHandler_Import(t *testing.T) {
	_, _, r := newAdminFixture(t)

	rec := adminRequest(r, http.MethodPost, "/admin/import", []model.ScrapedCar{
		{Title: "Toyota Camry", RawPrice: "2 900 000"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		Imported int `json:"imported"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &result))
	assert.Equal(t, 1, result.Imported)

	// An empty batch is rejected outright.
	rec = adminRequest(r, http.MethodPost, "/admin/import", []model.ScrapedCar{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminHandler_GetSettings(t *testing.T) {
	_, platform, r := newAdminFixture(t)

	rec := adminRequest(r, http.MethodGet, "/settings/contacts", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	platform.down = true
	rec = adminRequest(r, http.MethodGet, "/settings/contacts", nil)
	assert.Equal(t, http.StatusOK, rec.Code, "cached settings serve through an outage")
}
