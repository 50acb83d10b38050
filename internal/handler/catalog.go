package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"autohub-rest-api/internal/cache"
	"autohub-rest-api/internal/model"
	"autohub-rest-api/internal/service"
	"autohub-rest-api/pkg/apierror"
	"autohub-rest-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// CatalogHandler handles catalog-related HTTP requests.
type CatalogHandler struct {
	catalog *service.CatalogService
	views   *cache.RedisViewCounter
}

// NewCatalogHandler creates a new catalog handler. views may be nil;
// view increments are then applied directly.
func NewCatalogHandler(catalog *service.CatalogService, views *cache.RedisViewCounter) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		views:   views,
	}
}

// CatalogResponse is the storefront catalog payload. Error carries the
// user-facing message of the last failed refresh so the UI can offer a
// retry while still rendering cached listings.
type CatalogResponse struct {
	Cars    []model.Car `json:"cars"`
	Loading bool        `json:"loading"`
	Error   string      `json:"error,omitempty"`
}

// List handles GET /api/v1/cars
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		response.Error(w, apierror.BadRequest(err.Error()))
		return
	}

	cars := h.catalog.Filtered(filter, r.URL.Query().Get("sort"))
	response.OK(w, CatalogResponse{
		Cars:    cars,
		Loading: h.catalog.Loading(),
		Error:   h.catalog.LastError(),
	})
}

// Get handles GET /api/v1/cars/{id}
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	car, ok := h.catalog.Car(id)
	if !ok {
		response.Error(w, apierror.NotFound("car not found"))
		return
	}
	response.OK(w, car)
}

// Popular handles GET /api/v1/cars/popular
func (h *CatalogHandler) Popular(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.catalog.Popular())
}

// Stats handles GET /api/v1/cars/stats
func (h *CatalogHandler) Stats(w http.ResponseWriter, r *http.Request) {
	response.OK(w, model.Stats(h.catalog.Cars()))
}

// View handles POST /api/v1/cars/{id}/view
func (h *CatalogHandler) View(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.catalog.Car(id); !ok {
		response.Error(w, apierror.NotFound("car not found"))
		return
	}

	if h.views != nil {
		if err := h.views.Add(r.Context(), id); err == nil {
			response.OK(w, map[string]string{"viewed": id})
			return
		}
	}
	h.catalog.ApplyViewCounts(r.Context(), map[string]int64{id: 1})
	response.OK(w, map[string]string{"viewed": id})
}

// Create handles POST /api/v1/admin/cars
func (h *CatalogHandler) Create(w http.ResponseWriter, r *http.Request) {
	car, apiErr := decodeCar(r)
	if apiErr != nil {
		response.Error(w, apiErr)
		return
	}

	created, err := h.catalog.CreateCar(r.Context(), car)
	if err != nil {
		response.Error(w, apierror.BadGateway(err.Error()))
		return
	}
	response.Created(w, created)
}

// Update handles PUT /api/v1/admin/cars/{id}
func (h *CatalogHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.catalog.Car(id); !ok {
		response.Error(w, apierror.NotFound("car not found"))
		return
	}

	car, apiErr := decodeCar(r)
	if apiErr != nil {
		response.Error(w, apiErr)
		return
	}
	car.ID = id

	updated, err := h.catalog.UpdateCar(r.Context(), car)
	if err != nil {
		response.Error(w, apierror.BadGateway(err.Error()))
		return
	}
	response.OK(w, updated)
}

// Delete handles DELETE /api/v1/admin/cars/{id}
func (h *CatalogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.catalog.Car(id); !ok {
		response.Error(w, apierror.NotFound("car not found"))
		return
	}

	if err := h.catalog.DeleteCar(r.Context(), id); err != nil {
		response.Error(w, apierror.BadGateway(err.Error()))
		return
	}
	response.NoContent(w)
}

// Refresh handles POST /api/v1/admin/catalog/refresh
func (h *CatalogHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	// Detach from the request context so an admin-triggered refresh
	// survives the client hanging up mid-fetch.
	if err := h.catalog.Refresh(context.WithoutCancel(r.Context())); err != nil {
		response.Error(w, apierror.BadGateway(err.Error()))
		return
	}
	response.OK(w, map[string]interface{}{
		"refreshed": true,
		"count":     len(h.catalog.Cars()),
	})
}

func decodeCar(r *http.Request) (*model.Car, *apierror.Error) {
	var car model.Car
	if err := json.NewDecoder(r.Body).Decode(&car); err != nil {
		return nil, apierror.BadRequest("invalid JSON")
	}
	defer r.Body.Close()

	var details []apierror.FieldError
	if car.Brand == "" {
		details = append(details, apierror.FieldError{Field: "brand", Message: "required"})
	}
	if car.Model == "" {
		details = append(details, apierror.FieldError{Field: "model", Message: "required"})
	}
	if car.Price.Base <= 0 {
		details = append(details, apierror.FieldError{Field: "price.base", Message: "must be positive"})
	}
	if len(details) > 0 {
		return nil, apierror.ValidationError("invalid car listing", details...)
	}
	return &car, nil
}

// filterFromQuery builds a catalog filter out of request query params.
// Repeated params form inclusion lists; absent params constrain nothing.
func filterFromQuery(r *http.Request) (*model.Filter, error) {
	q := r.URL.Query()

	f := &model.Filter{
		Brands:      q["brand"],
		Models:      q["model"],
		BodyTypes:   q["body_type"],
		EngineTypes: q["engine_type"],
		Drivetrains: q["drivetrain"],
		Countries:   q["country"],
	}

	for _, raw := range q["year"] {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return nil, err
		}
		f.Years = append(f.Years, year)
	}

	if minRaw, maxRaw := q.Get("price_min"), q.Get("price_max"); minRaw != "" || maxRaw != "" {
		pr := &model.PriceRange{}
		if minRaw != "" {
			v, err := strconv.ParseInt(minRaw, 10, 64)
			if err != nil {
				return nil, err
			}
			pr.Min = v
		}
		if maxRaw != "" {
			v, err := strconv.ParseInt(maxRaw, 10, 64)
			if err != nil {
				return nil, err
			}
			pr.Max = v
		}
		f.PriceRange = pr
	}

	if raw := q.Get("only_new"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, err
		}
		f.OnlyNew = &v
	}

	return f, nil
}
