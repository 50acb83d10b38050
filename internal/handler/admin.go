package handler

import (
	"crypto/subtle"
	"encoding/json"
	"io"
	"net/http"
	"runtime"
	"time"

	"autohub-rest-api/internal/model"
	"autohub-rest-api/internal/remote"
	"autohub-rest-api/internal/service"
	"autohub-rest-api/internal/store"
	"autohub-rest-api/pkg/apierror"
	"autohub-rest-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// maxUploadBytes bounds admin image uploads.
const maxUploadBytes = 10 << 20

// AdminHandler handles back-office HTTP requests.
type AdminHandler struct {
	store     store.Store
	orders    *service.OrderService
	catalog   *service.CatalogService
	settings  *service.SettingsService
	importer  *service.ImportService
	tokens    *service.TokenService
	remote    remote.API
	loginKey  string
	storeType string
	startTime time.Time
}

// AdminHandlerConfig holds the admin handler dependencies.
type AdminHandlerConfig struct {
	Store     store.Store
	Orders    *service.OrderService
	Catalog   *service.CatalogService
	Settings  *service.SettingsService
	Importer  *service.ImportService
	Tokens    *service.TokenService
	Remote    remote.API
	LoginKey  string
	StoreType string
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(cfg AdminHandlerConfig) *AdminHandler {
	return &AdminHandler{
		store:     cfg.Store,
		orders:    cfg.Orders,
		catalog:   cfg.Catalog,
		settings:  cfg.Settings,
		importer:  cfg.Importer,
		tokens:    cfg.Tokens,
		remote:    cfg.Remote,
		loginKey:  cfg.LoginKey,
		storeType: cfg.StoreType,
		startTime: time.Now(),
	}
}

// LoginRequest is the back-office login payload.
type LoginRequest struct {
	Password string `json:"password"`
}

// VerifyLogin handles POST /api/v1/admin/login
func (h *AdminHandler) VerifyLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	defer r.Body.Close()

	if h.loginKey == "" || subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.loginKey)) != 1 {
		response.Error(w, apierror.Unauthorized("invalid password"))
		return
	}

	result := map[string]interface{}{"authenticated": true}
	if h.tokens != nil {
		token, err := h.tokens.GenerateToken(r.Context())
		if err != nil {
			response.Error(w, apierror.InternalError("failed to create session"))
			return
		}
		result["token"] = token
	}
	response.OK(w, result)
}

// Logout handles POST /api/v1/admin/logout
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if h.tokens != nil {
		if token := r.Header.Get("X-Admin-Token"); token != "" {
			h.tokens.RevokeToken(r.Context(), token)
		}
	}
	response.OK(w, map[string]bool{"logged_out": true})
}

// GetStats handles GET /api/v1/admin/stats
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stats := make(map[string]interface{})

	// System info
	stats["uptime_seconds"] = int64(time.Since(h.startTime).Seconds())
	stats["uptime_human"] = time.Since(h.startTime).Round(time.Second).String()
	stats["server_time"] = time.Now().Format(time.RFC3339)
	stats["store_type"] = h.storeType

	// Memory stats
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	stats["memory"] = map[string]interface{}{
		"alloc_mb":   float64(memStats.Alloc) / 1024 / 1024,
		"sys_mb":     float64(memStats.Sys) / 1024 / 1024,
		"num_gc":     memStats.NumGC,
		"goroutines": runtime.NumGoroutine(),
	}

	// Snapshot store stats
	if h.store != nil {
		storeStats, err := h.store.Stats(ctx)
		if err == nil {
			storeStats["status"] = "connected"
			stats["store"] = storeStats
		} else {
			stats["store"] = map[string]interface{}{
				"status": "error",
				"error":  err.Error(),
			}
		}
	}

	// Catalog state
	if h.catalog != nil {
		stats["catalog"] = map[string]interface{}{
			"size":    len(h.catalog.Cars()),
			"loading": h.catalog.Loading(),
			"error":   h.catalog.LastError(),
		}
	}

	// Order sync state
	if h.orders != nil {
		stats["orders"] = h.orders.SyncStats()
		stats["last_reconcile"] = h.orders.LastReconcile()
	}

	// Runtime info
	stats["runtime"] = map[string]interface{}{
		"go_version": runtime.Version(),
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
		"cpus":       runtime.NumCPU(),
	}

	response.OK(w, stats)
}

// GetSettings handles GET /api/v1/settings/{group}
func (h *AdminHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	group := chi.URLParam(r, "group")

	sg, err := h.settings.Get(r.Context(), group)
	if err != nil {
		response.Error(w, apierror.BadGateway(err.Error()))
		return
	}
	response.OK(w, sg)
}

// UpdateSettings handles PUT /api/v1/admin/settings/{group}
func (h *AdminHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	group := chi.URLParam(r, "group")

	var values map[string]string
	if err := json.NewDecoder(r.Body).Decode(&values); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	defer r.Body.Close()

	sg := &model.SettingsGroup{Group: group, Values: values}
	if err := h.settings.Update(r.Context(), sg); err != nil {
		response.Error(w, apierror.BadGateway(err.Error()))
		return
	}
	response.OK(w, sg)
}

// Import handles POST /api/v1/admin/import
func (h *AdminHandler) Import(w http.ResponseWriter, r *http.Request) {
	var records []model.ScrapedCar
	if err := json.NewDecoder(r.Body).Decode(&records); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	defer r.Body.Close()

	if len(records) == 0 {
		response.Error(w, apierror.BadRequest("empty import batch"))
		return
	}

	result, err := h.importer.Import(r.Context(), records)
	if err != nil {
		response.Error(w, apierror.BadGateway(err.Error()))
		return
	}
	response.OK(w, result)
}

// UploadImage handles POST /api/v1/admin/images
func (h *AdminHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		response.Error(w, apierror.BadRequest("invalid multipart form"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		response.Error(w, apierror.BadRequest("file field is required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		response.Error(w, apierror.BadRequest("failed to read file"))
		return
	}
	if len(data) > maxUploadBytes {
		response.Error(w, apierror.BadRequest("file too large"))
		return
	}

	img, err := h.remote.UploadImage(r.Context(), header.Filename, data)
	if err != nil {
		response.Error(w, apierror.BadGateway(err.Error()))
		return
	}
	response.Created(w, img)
}

// AssignImageRequest binds an uploaded image to a listing.
type AssignImageRequest struct {
	ImageID string `json:"image_id"`
}

// AssignImage handles POST /api/v1/admin/cars/{id}/images
func (h *AdminHandler) AssignImage(w http.ResponseWriter, r *http.Request) {
	carID := chi.URLParam(r, "id")

	var req AssignImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	defer r.Body.Close()

	if req.ImageID == "" {
		response.Error(w, apierror.BadRequest("image_id is required"))
		return
	}

	if err := h.remote.AssignImage(r.Context(), carID, req.ImageID); err != nil {
		response.Error(w, apierror.BadGateway(err.Error()))
		return
	}
	response.OK(w, map[string]string{"car_id": carID, "image_id": req.ImageID})
}
